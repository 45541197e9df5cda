package db

import (
	"fmt"
	"time"

	"doi-frontend/config"
	"doi-frontend/log"

	"github.com/gomodule/redigo/redis"
	"github.com/pkg/errors"
)

// RedisConn 全局连接池，InitRedis 之后可用
var RedisConn *redis.Pool

// InitRedis 初始化Redis
func InitRedis() (*redis.Pool, error) {
	log.Logger.Info("Init Redis")
	redisConf := config.Config.Redis
	// 建立连接池
	RedisConn = &redis.Pool{
		MaxIdle:     redisConf.MaxIdle,   // 最大的空闲连接数
		MaxActive:   redisConf.MaxActive, // 最大的激活连接数，0 表示无穷大
		Wait:        true,                // 如果连接数不足则阻塞等待
		IdleTimeout: time.Duration(redisConf.IdleTimeout) * time.Second,
		Dial: func() (redis.Conn, error) {
			c, err := redis.Dial("tcp", fmt.Sprintf("%s:%s", redisConf.Address, redisConf.Port),
				redis.DialPassword(redisConf.Password),
				redis.DialDatabase(redisConf.Db),
			)
			if err != nil {
				return nil, err
			}
			return c, nil
		},
		TestOnBorrow: func(c redis.Conn, t time.Time) error {
			if time.Since(t) < time.Minute {
				return nil
			}
			_, err := c.Do("PING")
			return err
		},
	}
	// 获取一个连接测试一下，确保配置没写错
	conn := RedisConn.Get()
	defer func() {
		_ = conn.Close()
	}()
	if _, err := conn.Do("PING"); err != nil {
		return nil, errors.Wrap(err, "redis init")
	}
	return RedisConn, nil
}

/* ================== String（字符串）类型操作 ================== */

// RedisSetNX key 不存在时才写入，返回是否写入成功
func RedisSetNX(key string, data string) (bool, error) {
	conn := RedisConn.Get()
	defer func() {
		_ = conn.Close()
	}()
	reply, err := redis.String(conn.Do("set", key, data, "NX"))
	if err == redis.ErrNil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return reply == "OK", nil
}

// RedisDelete 删除Key
func RedisDelete(key string) (bool, error) {
	conn := RedisConn.Get()
	defer func() {
		_ = conn.Close()
	}()
	return redis.Bool(conn.Do("del", key))
}

/* ================== List（列表）类型操作 ================== */

// RedisListRpush 在列表右侧（队尾）插入数据
func RedisListRpush(listName string, value string) error {
	conn := RedisConn.Get()
	defer func() {
		_ = conn.Close()
	}()
	_, err := conn.Do("rpush", listName, value)
	return err
}

// RedisListLRange 取列表中的一段范围（0, -1 表示获取全部，负数从队尾算起）
func RedisListLRange(listName string, start, stop int) ([]string, error) {
	conn := RedisConn.Get()
	defer func() {
		_ = conn.Close()
	}()
	return redis.Strings(conn.Do("lrange", listName, start, stop))
}

// RedisListLength 列表长度
func RedisListLength(listName string) (int64, error) {
	conn := RedisConn.Get()
	defer func() {
		_ = conn.Close()
	}()
	return redis.Int64(conn.Do("llen", listName))
}

// RedisDelList 删除整个列表
func RedisDelList(listName string) error {
	conn := RedisConn.Get()
	defer func() {
		_ = conn.Close()
	}()
	_, err := conn.Do("del", listName)
	return err
}

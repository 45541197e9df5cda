package db

import (
	"fmt"
	"time"

	"doi-frontend/config"
	"doi-frontend/log"

	"github.com/pkg/errors"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Mysql 全局 gorm 连接，InitMysql 之后可用
var Mysql *gorm.DB

// InitMysql 初始化 MySQL 连接池
func InitMysql() (*gorm.DB, error) {
	mysqlConf := config.Config.Mysql
	log.Logger.Info("Init Mysql")
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		mysqlConf.UserName,
		mysqlConf.Password,
		mysqlConf.Address,
		mysqlConf.Port,
		mysqlConf.DbName)
	db, err := gorm.Open(mysql.New(mysql.Config{
		DSN:                       dsn,
		DefaultStringSize:         256,
		SkipInitializeWithVersion: false,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, errors.Wrap(err, "mysql init")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "mysql pool")
	}
	if mysqlConf.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(mysqlConf.MaxIdleConns)
	}
	if mysqlConf.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(mysqlConf.MaxOpenConns)
	}
	if mysqlConf.MaxLifeTime > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(mysqlConf.MaxLifeTime) * time.Second)
	}

	Mysql = db
	return db, nil
}

package repo

import (
	"context"
	"encoding/json"
	"strconv"

	"doi-frontend/db"

	"github.com/pkg/errors"
)

// Redis stores registrations as JSON in a list, oldest at the head.
// A "<prefix>:tx:<hash>" key guards against saving one transaction twice.
type Redis struct {
	prefix string
}

func NewRedis(prefix string) *Redis {
	return &Redis{prefix: prefix}
}

func (r *Redis) listKey() string { return r.prefix + ":registrations" }

func (r *Redis) txKey(hash string) string { return r.prefix + ":tx:" + hash }

func (r *Redis) Save(ctx context.Context, reg Registration) error {
	b, err := json.Marshal(reg)
	if err != nil {
		return err
	}
	fresh, err := db.RedisSetNX(r.txKey(reg.TxHash), strconv.FormatUint(reg.ID, 10))
	if err != nil {
		return errors.Wrap(err, "redis setnx")
	}
	if !fresh {
		return nil
	}
	if err = db.RedisListRpush(r.listKey(), string(b)); err != nil {
		// 写列表失败时撤销幂等标记，允许重试
		_, _ = db.RedisDelete(r.txKey(reg.TxHash))
		return errors.Wrap(err, "redis rpush")
	}
	return nil
}

func (r *Redis) Recent(ctx context.Context, limit int) ([]Registration, error) {
	start := 0
	if limit > 0 {
		start = -limit
	}
	items, err := db.RedisListLRange(r.listKey(), start, -1)
	if err != nil {
		return nil, errors.Wrap(err, "redis lrange")
	}
	out := make([]Registration, 0, len(items))
	for i := len(items) - 1; i >= 0; i-- {
		var reg Registration
		if err := json.Unmarshal([]byte(items[i]), &reg); err != nil {
			return nil, errors.Wrap(err, "decode registration")
		}
		out = append(out, reg)
	}
	return out, nil
}

// Len returns how many registrations are stored.
func (r *Redis) Len() (int64, error) {
	return db.RedisListLength(r.listKey())
}

// Clear removes the list and the guard keys of the listed registrations.
func (r *Redis) Clear() error {
	items, err := db.RedisListLRange(r.listKey(), 0, -1)
	if err != nil {
		return err
	}
	for _, item := range items {
		var reg Registration
		if json.Unmarshal([]byte(item), &reg) == nil {
			_, _ = db.RedisDelete(r.txKey(reg.TxHash))
		}
	}
	return db.RedisDelList(r.listKey())
}

package repo

import (
	"context"
	"strings"
	"time"

	"doi-frontend/config"

	"github.com/pkg/errors"
)

// Registration is one successful registerObject as seen by this front-end.
type Registration struct {
	ID          uint64 `json:"id"`
	Payload     string `json:"payload"`
	TxHash      string `json:"tx_hash"`
	BlockNumber uint64 `json:"block_number"`
	Sender      string `json:"sender"`
	NetworkID   string `json:"network_id"`
	// Fee is gas used times the effective gas price, in ether.
	Fee       string    `json:"fee"`
	CreatedAt time.Time `json:"created_at"`
}

// Journal records registrations. Saving the same TxHash twice is a no-op.
type Journal interface {
	Save(ctx context.Context, r Registration) error
	// Recent returns up to limit registrations, newest first.
	Recent(ctx context.Context, limit int) ([]Registration, error)
}

// Open returns the journal selected by conf.Driver, or nil when journaling
// is off. The redis and mysql drivers expect db.InitRedis / db.InitMysql to
// have been called.
func Open(conf config.JournalConfig) (Journal, error) {
	switch strings.ToLower(conf.Driver) {
	case "":
		return nil, nil
	case "memory":
		return NewMemory(), nil
	case "redis":
		return NewRedis(conf.KeyPrefix), nil
	case "mysql":
		j := NewMysql()
		if err := j.InitTable(); err != nil {
			return nil, err
		}
		return j, nil
	}
	return nil, errors.Errorf("unknown journal driver %q", conf.Driver)
}

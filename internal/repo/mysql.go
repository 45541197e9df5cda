package repo

import (
	"context"
	"time"

	"doi-frontend/db"
	"doi-frontend/utils"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// RegistrationRecord 注册记录表
type RegistrationRecord struct {
	Id          int    `json:"-" gorm:"column:id;primaryKey;autoIncrement"`
	ObjectId    uint64 `json:"object_id" gorm:"column:object_id;index"`
	Payload     string `json:"payload" gorm:"column:payload;type:text"`
	TxHash      string `json:"tx_hash" gorm:"column:tx_hash;size:66;uniqueIndex"`
	BlockNumber uint64 `json:"block_number" gorm:"column:block_number"`
	Sender      string `json:"sender" gorm:"column:sender;size:42"`
	NetworkId   string `json:"network_id" gorm:"column:network_id;size:32"`
	Fee         string `json:"fee" gorm:"column:fee;size:40"` // ether
	CreatedAt   string `json:"created_at" gorm:"column:created_at"`
}

func (RegistrationRecord) TableName() string {
	return "registrations"
}

func (rec *RegistrationRecord) toRegistration() Registration {
	created, _ := time.ParseInLocation(utils.DateTimeFormat, rec.CreatedAt, time.Local)
	return Registration{
		ID:          rec.ObjectId,
		Payload:     rec.Payload,
		TxHash:      rec.TxHash,
		BlockNumber: rec.BlockNumber,
		Sender:      rec.Sender,
		NetworkID:   rec.NetworkId,
		Fee:         rec.Fee,
		CreatedAt:   created,
	}
}

// Mysql is the gorm-backed journal; it uses db.Mysql.
type Mysql struct{}

func NewMysql() *Mysql {
	return &Mysql{}
}

// InitTable 自动同步表结构
func (m *Mysql) InitTable() error {
	return db.Mysql.AutoMigrate(&RegistrationRecord{})
}

func (m *Mysql) Save(ctx context.Context, r Registration) error {
	var existing RegistrationRecord
	err := db.Mysql.WithContext(ctx).Table("registrations").Where("tx_hash=?", r.TxHash).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return errors.Wrap(err, "registrations select")
	}

	created := utils.FormatDateTime(r.CreatedAt)
	if created == "" {
		created = utils.GetCurDateTimeFormat()
	}
	rec := RegistrationRecord{
		ObjectId:    r.ID,
		Payload:     r.Payload,
		TxHash:      r.TxHash,
		BlockNumber: r.BlockNumber,
		Sender:      r.Sender,
		NetworkId:   r.NetworkID,
		Fee:         r.Fee,
		CreatedAt:   created,
	}
	if err = db.Mysql.WithContext(ctx).Table("registrations").Create(&rec).Error; err != nil {
		return errors.Wrap(err, "registrations insert")
	}
	return nil
}

func (m *Mysql) Recent(ctx context.Context, limit int) ([]Registration, error) {
	var recs []RegistrationRecord
	q := db.Mysql.WithContext(ctx).Table("registrations").Order("id desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&recs).Error; err != nil {
		return nil, errors.Wrap(err, "registrations select")
	}
	out := make([]Registration, 0, len(recs))
	for i := range recs {
		out = append(out, recs[i].toRegistration())
	}
	return out, nil
}

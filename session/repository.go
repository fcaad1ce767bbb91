package session

import (
	"errors"
	"gorm.io/gorm"
	"time"
)

// storageKey is the fixed key the one session record lives under, carried
// over from the storage layout this client has always used.
const storageKey = "ld_auth_v1"

// Record is the persisted session row.
type Record struct {
	Key       string `gorm:"primaryKey;size:64"`
	Payload   string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

func (Record) TableName() string {
	return "client_sessions"
}

// Storage is the durable backing for the session store. Kept as an
// interface so tests can swap in an in-memory fake.
type Storage interface {
	Load() (string, bool, error)
	Save(payload string) error
	Delete() error
}

// Repository persists the session record through gorm.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Load() (string, bool, error) {
	var record Record
	err := r.db.Where("key = ?", storageKey).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return record.Payload, true, nil
}

func (r *Repository) Save(payload string) error {
	record := Record{Key: storageKey, Payload: payload, UpdatedAt: time.Now().UTC()}
	return r.db.Save(&record).Error
}

func (r *Repository) Delete() error {
	return r.db.Where("key = ?", storageKey).Delete(&Record{}).Error
}

package repositories

import (
	"delivery-tracking-client/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"time"
)

// OrderSnapshot is the locally cached view of a tracked order, refreshed
// by the sync worker so the last known state survives restarts and brief
// offline stretches.
type OrderSnapshot struct {
	OrderNo        string `gorm:"primaryKey;size:100"`
	TrackingNumber string `gorm:"size:100"`
	Status         string `gorm:"size:50;not null"`
	PkgKey         string `gorm:"size:50"`
	CustomerName   string `gorm:"size:200"`
	City           string `gorm:"size:100"`
	Country        string `gorm:"size:100"`
	OrderDate      *time.Time
	LastCheckedAt  *time.Time
	DeliveredAt    *time.Time
}

func (OrderSnapshot) TableName() string {
	return "order_snapshots"
}

// Repository is the repo for accessing cached order snapshots.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new repository with DB dependency.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetOpenSnapshots returns snapshots whose last known status is not final.
func (r *Repository) GetOpenSnapshots() ([]OrderSnapshot, error) {
	var snapshots []OrderSnapshot
	err := r.db.
		Where("status NOT IN ?", finalStatuses()).
		Find(&snapshots).Error
	return snapshots, err
}

// SaveSnapshot creates or updates a snapshot by order number.
func (r *Repository) SaveSnapshot(snapshot *OrderSnapshot) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "order_no"}},
		UpdateAll: true,
	}).Create(snapshot).Error
}

// MarkDelivered stamps a snapshot delivered without waiting for the next
// full refresh.
func (r *Repository) MarkDelivered(orderNo string, at time.Time) error {
	return r.db.Model(&OrderSnapshot{}).
		Where("order_no = ?", orderNo).
		Updates(map[string]any{
			"status":       string(models.StatusDelivered),
			"delivered_at": at,
		}).Error
}

func finalStatuses() []string {
	return []string{
		string(models.StatusDelivered),
		string(models.StatusReturned),
		string(models.StatusCancelled),
	}
}

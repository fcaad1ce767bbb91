package sync

import (
	"context"
	"delivery-tracking-client/models"
	"delivery-tracking-client/workers/sync/repositories"
	"go.uber.org/zap"
	"sync"
	"time"
)

// Gateway is the slice of the remote API the worker needs.
type Gateway interface {
	ListMyInTransit(ctx context.Context, page, limit int) (models.Page, error)
	GetOrderStatus(ctx context.Context, orderNo string) (models.Order, error)
}

// SnapshotStore is the persistence slice the worker writes through,
// satisfied by repositories.Repository.
type SnapshotStore interface {
	GetOpenSnapshots() ([]repositories.OrderSnapshot, error)
	SaveSnapshot(snapshot *repositories.OrderSnapshot) error
	MarkDelivered(orderNo string, at time.Time) error
}

const pageSize = 50

// Worker periodically refreshes the driver's in-transit orders into the
// local snapshot cache, and rechecks stale snapshots individually.
type Worker struct {
	logger   *zap.Logger
	repo     SnapshotStore
	gw       Gateway
	schedule string
	mu       sync.Mutex
	busy     bool
}

func NewWorker(logger *zap.Logger, repo SnapshotStore, gw Gateway, schedule string) *Worker {
	return &Worker{
		logger:   logger,
		repo:     repo,
		gw:       gw,
		schedule: schedule,
	}
}

func (w *Worker) Schedule() string {
	return w.schedule
}

func (w *Worker) Ready(time.Time) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return !w.busy
}

func (w *Worker) Execute(ctx context.Context) {
	w.mu.Lock()
	if w.busy {
		w.mu.Unlock()
		return
	}
	w.busy = true
	w.mu.Unlock()
	defer func() {
		w.mu.Lock()
		w.busy = false
		w.mu.Unlock()
	}()

	w.logger.Info("Starting order snapshot refresh.")

	orders, err := w.fetchInTransit(ctx)
	if err != nil {
		w.logger.Error("Failed to list in-transit orders", zap.Error(err))
		return
	}

	seen := make(map[string]bool, len(orders))
	var wg sync.WaitGroup
	for _, order := range orders {
		seen[order.OrderNo] = true
		wg.Add(1)
		go func(o models.Order) {
			defer wg.Done()
			w.saveSnapshot(o)
		}(order)
	}
	wg.Wait()

	w.recheckStale(ctx, seen)
	w.logger.Info("Order snapshot refresh completed.")
}

// fetchInTransit walks the paginated in-transit list to the end.
func (w *Worker) fetchInTransit(ctx context.Context) ([]models.Order, error) {
	var all []models.Order
	for page := 1; ; page++ {
		result, err := w.gw.ListMyInTransit(ctx, page, pageSize)
		if err != nil {
			return nil, err
		}
		all = append(all, result.Orders...)
		if len(result.Orders) == 0 || len(all) >= result.Count {
			return all, nil
		}
	}
}

// recheckStale refreshes snapshots that the in-transit list no longer
// covers: the order moved on and its terminal status is worth capturing.
func (w *Worker) recheckStale(ctx context.Context, seen map[string]bool) {
	snapshots, err := w.repo.GetOpenSnapshots()
	if err != nil {
		w.logger.Error("Failed to load open snapshots", zap.Error(err))
		return
	}

	for _, snapshot := range snapshots {
		if seen[snapshot.OrderNo] || !w.shouldRecheck(snapshot) {
			continue
		}

		order, err := w.gw.GetOrderStatus(ctx, snapshot.OrderNo)
		if err != nil {
			w.logger.Error("Failed to recheck order",
				zap.String("order_no", snapshot.OrderNo),
				zap.Error(err),
			)
			continue
		}

		if order.CurrentStatus == models.StatusDelivered {
			at := time.Now().UTC()
			if order.LastUpdated != nil {
				at = order.LastUpdated.UTC()
			}
			if err := w.repo.MarkDelivered(snapshot.OrderNo, at); err != nil {
				w.logger.Error("Failed to mark snapshot delivered",
					zap.String("order_no", snapshot.OrderNo),
					zap.Error(err),
				)
			}
			continue
		}
		w.saveSnapshot(order)
	}
}

func (w *Worker) shouldRecheck(snapshot repositories.OrderSnapshot) bool {
	const recheckDelay = 15 * time.Minute

	if models.ParseStatus(snapshot.Status).Final() {
		return false
	}
	if snapshot.LastCheckedAt == nil {
		return true
	}
	return time.Since(*snapshot.LastCheckedAt) > recheckDelay
}

func (w *Worker) saveSnapshot(order models.Order) {
	now := time.Now().UTC()
	snapshot := repositories.OrderSnapshot{
		OrderNo:        order.OrderNo,
		TrackingNumber: order.TrackingNumber,
		Status:         string(order.PackageStatus()),
		PkgKey:         order.PkgKey,
		CustomerName:   order.CustomerName,
		City:           order.City,
		Country:        order.Country,
		OrderDate:      order.OrderDate,
		LastCheckedAt:  &now,
	}
	if order.PackageStatus() == models.StatusDelivered {
		snapshot.DeliveredAt = &now
	}

	if err := w.repo.SaveSnapshot(&snapshot); err != nil {
		w.logger.Error("Failed to save snapshot",
			zap.String("order_no", order.OrderNo),
			zap.Error(err),
		)
		return
	}

	w.logger.Info("Snapshot refreshed",
		zap.String("order_no", order.OrderNo),
		zap.String("status", snapshot.Status),
	)
}

package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cosmo-agent/internal/model"

	"gorm.io/gorm"
)

// StoreRepository reads pending work straight from the store database and
// writes delivery state back to it. It serves the same contract as the HTTP
// store client.
type StoreRepository interface {
	FetchPending(ctx context.Context) (*model.PendingSnapshot, error)
	ReportDelivered(ctx context.Context, orderID uint64) error
	ReportActionCompleted(ctx context.Context, actionID uint64) error
	ReportActionExpired(ctx context.Context, actionID uint64) error
}

type storeRepoImpl struct {
	db       *gorm.DB
	serverID uint
	now      func() time.Time
}

func NewStoreRepository(db *gorm.DB, serverID uint) StoreRepository {
	return &storeRepoImpl{
		db:       db,
		serverID: serverID,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

type pendingOrderRow struct {
	ID          uint64
	Receiver    string
	PackageName string
}

func (r *storeRepoImpl) FetchPending(ctx context.Context) (*model.PendingSnapshot, error) {
	orders, err := r.pendingOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("query pending orders: %w", err)
	}

	actions, err := r.expiredActions(ctx)
	if err != nil {
		return nil, fmt.Errorf("query expired actions: %w", err)
	}

	snapshot := &model.PendingSnapshot{
		Orders:  orders,
		Actions: actions,
	}
	snapshot.Link()

	return snapshot, nil
}

// serverPackages selects the packages sold for this game server.
func (r *storeRepoImpl) serverPackages(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&model.PackageableRow{}).
		Select("package_id").
		Where("packageable_type = ? AND packageable_id = ?", model.ServerPackageableType, r.serverID)
}

func (r *storeRepoImpl) pendingOrders(ctx context.Context) ([]*model.Order, error) {
	var rows []pendingOrderRow
	err := r.db.WithContext(ctx).
		Table("orders AS o").
		Select("o.id, o.receiver, p.name AS package_name").
		Joins("INNER JOIN packages p ON o.package_id = p.id").
		Where("o.status = ?", model.OrderStatusWaiting).
		Where("o.package_id IN (?)", r.serverPackages(ctx)).
		Order("o.id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	orders := make([]*model.Order, 0, len(rows))
	for _, row := range rows {
		actions, err := r.pendingOrderActions(ctx, row.ID)
		if err != nil {
			return nil, fmt.Errorf("query actions of order %d: %w", row.ID, err)
		}
		orders = append(orders, &model.Order{
			ID:          row.ID,
			Receiver:    row.Receiver,
			PackageName: row.PackageName,
			Actions:     actions,
		})
	}
	return orders, nil
}

// pendingOrderActions never returns nil, so an order whose actions are all
// delivered shows up with an empty action list.
func (r *storeRepoImpl) pendingOrderActions(ctx context.Context, orderID uint64) ([]*model.Action, error) {
	var rows []*model.ActionRow
	err := r.db.WithContext(ctx).
		Where("delivered_at IS NULL AND order_id = ? AND active = ?", orderID, false).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	actions := make([]*model.Action, 0, len(rows))
	for _, row := range rows {
		actions = append(actions, toAction(row))
	}
	return actions, nil
}

func (r *storeRepoImpl) expiredActions(ctx context.Context) ([]*model.Action, error) {
	var rows []*model.ActionRow
	err := r.db.WithContext(ctx).
		Table("actions AS a").
		Select("a.*").
		Joins("INNER JOIN orders o ON a.order_id = o.id").
		Where("a.expires_at < ?", r.now()).
		Where("a.active = ?", true).
		Where("o.package_id IN (?)", r.serverPackages(ctx)).
		Order("a.id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	actions := make([]*model.Action, 0, len(rows))
	for _, row := range rows {
		actions = append(actions, toAction(row))
	}
	return actions, nil
}

func (r *storeRepoImpl) ReportDelivered(ctx context.Context, orderID uint64) error {
	result := r.db.WithContext(ctx).
		Model(&model.OrderRow{}).
		Where("id = ?", orderID).
		Updates(map[string]interface{}{
			"status":     model.OrderStatusDelivered,
			"updated_at": r.now(),
		})
	return checkUpdated(result, "deliver order", orderID)
}

func (r *storeRepoImpl) ReportActionCompleted(ctx context.Context, actionID uint64) error {
	result := r.db.WithContext(ctx).
		Model(&model.ActionRow{}).
		Where("id = ?", actionID).
		Updates(map[string]interface{}{
			"delivered_at": r.now(),
			"active":       true,
		})
	return checkUpdated(result, "complete action", actionID)
}

func (r *storeRepoImpl) ReportActionExpired(ctx context.Context, actionID uint64) error {
	result := r.db.WithContext(ctx).
		Model(&model.ActionRow{}).
		Where("id = ?", actionID).
		Update("active", false)
	return checkUpdated(result, "expire action", actionID)
}

func checkUpdated(result *gorm.DB, op string, id uint64) error {
	if result.Error != nil {
		return fmt.Errorf("%s %d: %w", op, id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%s %d: %w", op, id, gorm.ErrRecordNotFound)
	}
	return nil
}

func toAction(row *model.ActionRow) *model.Action {
	return &model.Action{
		ID:       row.ID,
		Receiver: row.Receiver,
		Name:     row.Name,
		Data:     json.RawMessage(row.Data),
	}
}

package model

import "time"

// Rows of the store database. The schema belongs to the store backend; the
// agent only reads pending rows and flips their status columns.

type OrderStatus string

const (
	OrderStatusWaiting   OrderStatus = "waiting_for_package"
	OrderStatusDelivered OrderStatus = "delivered"
)

// ServerPackageableType marks a packageables row that attaches a package to a game server.
const ServerPackageableType = `App\Models\Index\Server`

type PackageRow struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"size:255;not null"`
}

func (PackageRow) TableName() string { return "packages" }

type PackageableRow struct {
	ID              uint   `gorm:"primaryKey"`
	PackageID       uint   `gorm:"index;not null"`
	PackageableID   uint   `gorm:"index;not null"`
	PackageableType string `gorm:"size:255;not null"`
}

func (PackageableRow) TableName() string { return "packageables" }

type OrderRow struct {
	ID        uint64      `gorm:"primaryKey"`
	Receiver  string      `gorm:"size:64;index;not null"` // steam id
	PackageID uint        `gorm:"index;not null"`
	Status    OrderStatus `gorm:"size:32;index;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (OrderRow) TableName() string { return "orders" }

type ActionRow struct {
	ID       uint64 `gorm:"primaryKey"`
	OrderID  uint64 `gorm:"index;not null"`
	Name     string `gorm:"size:64;not null"`
	Data     string `gorm:"type:text"`
	Receiver string `gorm:"size:64;not null"`
	// Active is set once the action has been delivered and cleared again when it expires.
	Active      bool `gorm:"not null"`
	DeliveredAt *time.Time
	ExpiresAt   *time.Time
}

func (ActionRow) TableName() string { return "actions" }

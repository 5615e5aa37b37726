package service

import (
	"context"

	"cosmo-agent/internal/model"
)

// Store is the store backend, reached either over HTTP or through its database.
type Store interface {
	FetchPending(ctx context.Context) (*model.PendingSnapshot, error)
	ReportDelivered(ctx context.Context, orderID uint64) error
	ReportActionCompleted(ctx context.Context, actionID uint64) error
	ReportActionExpired(ctx context.Context, actionID uint64) error
}

// PlayerDirectory resolves a receiver. A nil player with a nil error means the
// player is not known to the server.
type PlayerDirectory interface {
	FindPlayerByID(ctx context.Context, id string) (*model.Player, error)
}

type CommandExecutor interface {
	RunServerCommand(ctx context.Context, command string) error
}

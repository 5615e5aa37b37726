package model

import (
	"encoding/json"
	"time"
)

const ActionNameConsoleCommand = "console_command"

// Order is one purchase waiting for delivery. A nil Actions slice means the
// backend sent no actions at all; an empty slice means none are left.
type Order struct {
	ID          uint64    `json:"id"`
	Receiver    string    `json:"receiver"`
	PackageName string    `json:"packageName"`
	Actions     []*Action `json:"actions"`
}

type Action struct {
	ID       uint64          `json:"id"`
	Receiver string          `json:"receiver"`
	Name     string          `json:"name"`
	Data     json.RawMessage `json:"data"`

	// Order is nil for standalone expired actions.
	Order *Order `json:"-"`
}

type PendingSnapshot struct {
	Orders  []*Order  `json:"orders"`
	Actions []*Action `json:"actions"`
}

// Link points every order action back at its order.
func (s *PendingSnapshot) Link() {
	for _, order := range s.Orders {
		if order == nil {
			continue
		}
		for _, action := range order.Actions {
			if action != nil {
				action.Order = order
			}
		}
	}
}

type Player struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Connected bool   `json:"connected"`
}

// CycleReport summarises one reconciliation pass.
type CycleReport struct {
	CycleID    string    `json:"cycle_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	OrdersSeen      int `json:"orders_seen"`
	OrdersDelivered int `json:"orders_delivered"`
	OrdersSkipped   int `json:"orders_skipped"`

	ActionsCompleted int `json:"actions_completed"`
	ActionsFailed    int `json:"actions_failed"`

	ExpiredSeen    int `json:"expired_seen"`
	ActionsExpired int `json:"actions_expired"`
	ExpiredSkipped int `json:"expired_skipped"`

	ReportFailures int    `json:"report_failures"`
	Error          string `json:"error,omitempty"`
}

type SchedulerStatus struct {
	Interval     string       `json:"interval"`
	Running      bool         `json:"running"`
	CyclesRun    int          `json:"cycles_run"`
	CyclesFailed int          `json:"cycles_failed"`
	LastCycle    *CycleReport `json:"last_cycle,omitempty"`
}

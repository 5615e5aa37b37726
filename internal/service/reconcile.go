package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cosmo-agent/internal/command"
	"cosmo-agent/internal/metrics"
	"cosmo-agent/internal/model"

	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
)

var errActionRejected = errors.New("action rejected")

type ReconcileService interface {
	// RunCycle fetches one pending snapshot and works through it. It only
	// returns an error when the snapshot could not be fetched.
	RunCycle(ctx context.Context) (*model.CycleReport, error)
}

type reconcileServiceImpl struct {
	store    Store
	players  PlayerDirectory
	executor CommandExecutor
	logger   *log.Logger
}

func NewReconcileService(
	store Store,
	players PlayerDirectory,
	executor CommandExecutor,
	logger *log.Logger,
) ReconcileService {
	return &reconcileServiceImpl{
		store:    store,
		players:  players,
		executor: executor,
		logger:   logger,
	}
}

func (s *reconcileServiceImpl) RunCycle(ctx context.Context) (*model.CycleReport, error) {
	report := &model.CycleReport{
		CycleID:   uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}
	metrics.CyclesTotal.Inc()

	s.logger.Debugj(log.JSON{"message": "checking for pending orders", "cycle_id": report.CycleID})

	snapshot, err := s.store.FetchPending(ctx)
	if err != nil {
		metrics.CycleFailuresTotal.Inc()
		report.Error = err.Error()
		report.FinishedAt = time.Now().UTC()
		s.logger.Errorj(log.JSON{
			"message":  "fetch pending snapshot",
			"cycle_id": report.CycleID,
			"error":    err.Error(),
		})
		return report, fmt.Errorf("fetch pending: %w", err)
	}

	report.OrdersSeen = len(snapshot.Orders)
	report.ExpiredSeen = len(snapshot.Actions)

	for _, order := range snapshot.Orders {
		s.handlePendingOrder(ctx, report, order)
	}
	for _, action := range snapshot.Actions {
		s.handleExpiredAction(ctx, report, action)
	}

	report.FinishedAt = time.Now().UTC()
	s.logger.Infoj(log.JSON{
		"message":           "cycle finished",
		"cycle_id":          report.CycleID,
		"orders_seen":       report.OrdersSeen,
		"orders_delivered":  report.OrdersDelivered,
		"actions_completed": report.ActionsCompleted,
		"actions_failed":    report.ActionsFailed,
		"actions_expired":   report.ActionsExpired,
		"report_failures":   report.ReportFailures,
	})
	return report, nil
}

func (s *reconcileServiceImpl) handlePendingOrder(ctx context.Context, report *model.CycleReport, order *model.Order) {
	if order == nil || order.Actions == nil {
		report.OrdersSkipped++
		return
	}

	s.logger.Debugj(log.JSON{"message": "handling pending order", "cycle_id": report.CycleID, "order_id": order.ID})

	player, err := s.resolvePlayer(ctx, order.Receiver)
	if err != nil {
		report.OrdersSkipped++
		s.logger.Debugj(log.JSON{
			"message":  "order receiver unavailable",
			"cycle_id": report.CycleID,
			"order_id": order.ID,
			"error":    err.Error(),
		})
		return
	}

	success := true
	for _, action := range order.Actions {
		if err := s.deliverAction(ctx, report, action, player, order); err != nil {
			success = false
			report.ActionsFailed++
			metrics.ActionsTotal.WithLabelValues(metrics.OutcomeFailed).Inc()
			s.logger.Warnj(log.JSON{
				"message":  "action not delivered",
				"cycle_id": report.CycleID,
				"order_id": order.ID,
				"error":    err.Error(),
			})
			continue
		}
		report.ActionsCompleted++
		metrics.ActionsTotal.WithLabelValues(metrics.OutcomeCompleted).Inc()
	}

	if !success {
		return
	}

	if err := s.store.ReportDelivered(ctx, order.ID); err != nil {
		report.ReportFailures++
		metrics.ReportFailuresTotal.WithLabelValues(metrics.ReportDelivered).Inc()
		s.logger.Errorj(log.JSON{
			"message":  "report order delivered",
			"cycle_id": report.CycleID,
			"order_id": order.ID,
			"error":    err.Error(),
		})
		return
	}

	report.OrdersDelivered++
	metrics.OrdersDeliveredTotal.Inc()
	s.logger.Infoj(log.JSON{
		"message":  "order delivered",
		"cycle_id": report.CycleID,
		"order_id": order.ID,
		"package":  order.PackageName,
		"receiver": order.Receiver,
	})
}

// deliverAction runs one order action. A failing completion report does not
// fail the action: the command already ran.
func (s *reconcileServiceImpl) deliverAction(
	ctx context.Context,
	report *model.CycleReport,
	action *model.Action,
	player *model.Player,
	order *model.Order,
) error {
	if action == nil {
		return fmt.Errorf("%w: empty action in order %d", errActionRejected, order.ID)
	}
	if action.Receiver != order.Receiver {
		return fmt.Errorf("%w: action %d receiver %q does not match order receiver %q",
			errActionRejected, action.ID, action.Receiver, order.Receiver)
	}
	if action.Name != model.ActionNameConsoleCommand {
		return fmt.Errorf("%w: action %d has unsupported kind %q", errActionRejected, action.ID, action.Name)
	}

	data, err := decodeConsoleCommand(action)
	if err != nil {
		return fmt.Errorf("action %d: %w", action.ID, err)
	}
	if data.Command == "" {
		return fmt.Errorf("action %d: %w", action.ID,
			&model.MalformedPayloadError{ActionName: action.Name, Err: errors.New("missing cmd")})
	}

	cmd := command.Render(data.Command, *player)
	if err := s.executor.RunServerCommand(ctx, cmd); err != nil {
		return fmt.Errorf("run command for action %d: %w", action.ID, err)
	}
	s.logger.Debugj(log.JSON{"message": "command executed", "cycle_id": report.CycleID, "action_id": action.ID, "command": cmd})

	if err := s.store.ReportActionCompleted(ctx, action.ID); err != nil {
		report.ReportFailures++
		metrics.ReportFailuresTotal.WithLabelValues(metrics.ReportCompleted).Inc()
		s.logger.Errorj(log.JSON{
			"message":   "report action completed",
			"cycle_id":  report.CycleID,
			"action_id": action.ID,
			"error":     err.Error(),
		})
	}
	return nil
}

func (s *reconcileServiceImpl) handleExpiredAction(ctx context.Context, report *model.CycleReport, action *model.Action) {
	if action == nil || action.Name != model.ActionNameConsoleCommand {
		report.ExpiredSkipped++
		return
	}

	player, err := s.resolvePlayer(ctx, action.Receiver)
	if err != nil {
		report.ExpiredSkipped++
		s.logger.Debugj(log.JSON{
			"message":   "expired action receiver unavailable",
			"cycle_id":  report.CycleID,
			"action_id": action.ID,
			"error":     err.Error(),
		})
		return
	}

	data, err := decodeConsoleCommand(action)
	if err != nil {
		report.ActionsFailed++
		metrics.ActionsTotal.WithLabelValues(metrics.OutcomeFailed).Inc()
		s.logger.Warnj(log.JSON{
			"message":   "expired action not handled",
			"cycle_id":  report.CycleID,
			"action_id": action.ID,
			"error":     err.Error(),
		})
		return
	}

	// nothing to undo, the action is still marked expired
	if data.ExpireCommand != "" {
		cmd := command.Render(data.ExpireCommand, *player)
		if err := s.executor.RunServerCommand(ctx, cmd); err != nil {
			report.ActionsFailed++
			metrics.ActionsTotal.WithLabelValues(metrics.OutcomeFailed).Inc()
			s.logger.Warnj(log.JSON{
				"message":   "run expire command",
				"cycle_id":  report.CycleID,
				"action_id": action.ID,
				"error":     err.Error(),
			})
			return
		}
		s.logger.Debugj(log.JSON{"message": "expire command executed", "cycle_id": report.CycleID, "action_id": action.ID, "command": cmd})
	}

	if err := s.store.ReportActionExpired(ctx, action.ID); err != nil {
		report.ReportFailures++
		metrics.ReportFailuresTotal.WithLabelValues(metrics.ReportExpired).Inc()
		s.logger.Errorj(log.JSON{
			"message":   "report action expired",
			"cycle_id":  report.CycleID,
			"action_id": action.ID,
			"error":     err.Error(),
		})
		return
	}

	report.ActionsExpired++
	metrics.ActionsTotal.WithLabelValues(metrics.OutcomeExpired).Inc()
	s.logger.Infoj(log.JSON{
		"message":   "action expired",
		"cycle_id":  report.CycleID,
		"action_id": action.ID,
		"receiver":  action.Receiver,
	})
}

func (s *reconcileServiceImpl) resolvePlayer(ctx context.Context, receiver string) (*model.Player, error) {
	if receiver == "" {
		return nil, fmt.Errorf("%w: empty receiver", model.ErrPlayerUnavailable)
	}

	player, err := s.players.FindPlayerByID(ctx, receiver)
	if err != nil {
		return nil, fmt.Errorf("%w: lookup %s: %v", model.ErrPlayerUnavailable, receiver, err)
	}
	if player == nil || !player.Connected {
		return nil, fmt.Errorf("%w: %s is not connected", model.ErrPlayerUnavailable, receiver)
	}
	return player, nil
}

func decodeConsoleCommand(action *model.Action) (model.ConsoleCommandData, error) {
	payload, err := model.DecodePayload(action.Name, action.Data)
	if err != nil {
		return model.ConsoleCommandData{}, err
	}

	data, ok := payload.(model.ConsoleCommandData)
	if !ok {
		return model.ConsoleCommandData{}, &model.MalformedPayloadError{
			ActionName: action.Name,
			Err:        fmt.Errorf("unexpected payload kind %q", payload.Kind()),
		}
	}
	return data, nil
}

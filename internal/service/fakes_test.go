package service

import (
	"context"
	"encoding/json"
	"sync"

	"cosmo-agent/internal/model"
)

type fakeStore struct {
	mu sync.Mutex

	snapshot *model.PendingSnapshot
	fetchErr error

	deliverErr  error
	completeErr error
	expireErr   error

	fetches   int
	delivered []uint64
	completed []uint64
	expired   []uint64
}

func (f *fakeStore) FetchPending(ctx context.Context) (*model.PendingSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	f.snapshot.Link()
	return f.snapshot, nil
}

func (f *fakeStore) ReportDelivered(ctx context.Context, orderID uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delivered = append(f.delivered, orderID)
	return f.deliverErr
}

func (f *fakeStore) ReportActionCompleted(ctx context.Context, actionID uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completed = append(f.completed, actionID)
	return f.completeErr
}

func (f *fakeStore) ReportActionExpired(ctx context.Context, actionID uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.expired = append(f.expired, actionID)
	return f.expireErr
}

func (f *fakeStore) backendCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.delivered) + len(f.completed) + len(f.expired)
}

type fakeDirectory struct {
	players map[string]*model.Player
	err     error
	lookups int
}

func (f *fakeDirectory) FindPlayerByID(ctx context.Context, id string) (*model.Player, error) {
	f.lookups++
	if f.err != nil {
		return nil, f.err
	}
	return f.players[id], nil
}

type fakeExecutor struct {
	commands []string
	failOn   map[string]error
}

func (f *fakeExecutor) RunServerCommand(ctx context.Context, command string) error {
	if err := f.failOn[command]; err != nil {
		return err
	}
	f.commands = append(f.commands, command)
	return nil
}

const (
	mexID = "76561198000000000"
	zeoID = "76561198000000001"
)

func onlinePlayers() *fakeDirectory {
	return &fakeDirectory{players: map[string]*model.Player{
		mexID: {ID: mexID, Name: "Mex", Connected: true},
		zeoID: {ID: zeoID, Name: "Zeo", Connected: false},
	}}
}

func consoleAction(id uint64, receiver, cmd, expireCmd string) *model.Action {
	data, _ := json.Marshal(model.ConsoleCommandData{Command: cmd, ExpireCommand: expireCmd})
	return &model.Action{
		ID:       id,
		Receiver: receiver,
		Name:     model.ActionNameConsoleCommand,
		Data:     data,
	}
}

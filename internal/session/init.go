package session

import (
	"context"
	"errors"
	"fmt"
)

// Init task names
const (
	TaskWalletCheck      = "wallet-check"
	TaskTransactionCheck = "transaction-check"
)

// Task 是一个可等待的初始化任务
type Task struct {
	Name string
	done chan struct{}
	err  error
}

func startTask(ctx context.Context, name string, fn func(context.Context) error) *Task {
	t := &Task{Name: name, done: make(chan struct{})}
	go func() {
		defer close(t.done)
		t.err = fn(ctx)
	}()
	return t
}

// Done is closed when the task has finished.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Err returns the task result; it is only meaningful after Done is closed.
func (t *Task) Err() error {
	select {
	case <-t.done:
		return t.err
	default:
		return nil
	}
}

// Initialization 对应界面挂载时的两个启动流程
type Initialization struct {
	WalletCheck      *Task
	TransactionCheck *Task
}

// Tasks lists the init tasks in start order.
func (i *Initialization) Tasks() []*Task {
	return []*Task{i.WalletCheck, i.TransactionCheck}
}

// Wait blocks until every task has finished (or ctx ends) and joins their errors.
func (i *Initialization) Wait(ctx context.Context) error {
	var errs []error
	for _, t := range i.Tasks() {
		select {
		case <-t.Done():
			if t.err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", t.Name, t.err))
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return errors.Join(errs...)
}

// Initialize 恢复缓存的计数, 然后并发启动钱包检查和交易计数检查
// 两个任务各自内部是顺序执行的
func (m *Manager) Initialize(ctx context.Context) *Initialization {
	m.restoreCachedCounter(ctx)

	return &Initialization{
		WalletCheck:      startTask(ctx, TaskWalletCheck, m.CheckIfWalletIsConnected),
		TransactionCheck: startTask(ctx, TaskTransactionCheck, m.CheckIfTransactionExist),
	}
}

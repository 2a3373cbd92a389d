// Package jobs — queue.go содержит единую очередь, в которой выполняются
// все чтения и изменения баллов. Обработчики апдейтов работают параллельно,
// но состояние трогает только горутина очереди.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	log "github.com/sirupsen/logrus"
)

// ErrQueueStopped возвращается, если очередь уже остановлена.
var ErrQueueStopped = errors.New("очередь остановлена")

type job struct {
	ctx    context.Context
	fn     func(ctx context.Context) error
	result chan error
}

// Queue выполняет задачи по одной в порядке поступления.
type Queue struct {
	jobs chan job
	done chan struct{}
}

// NewQueue создаёт очередь с буфером size.
func NewQueue(size int) *Queue {
	if size <= 0 {
		size = 1
	}
	return &Queue{
		jobs: make(chan job, size),
		done: make(chan struct{}),
	}
}

// Run выполняет задачи до отмены ctx. Вызывается в отдельной горутине один раз.
// Задачи, оставшиеся в буфере после остановки, получают ErrQueueStopped.
func (q *Queue) Run(ctx context.Context) {
	defer close(q.done)
	log.Info("Очередь задач запущена")

	for {
		select {
		case <-ctx.Done():
			q.drain()
			log.Info("Очередь задач остановлена")
			return
		case j := <-q.jobs:
			j.result <- q.execute(j)
		}
	}
}

// Done закрывается после выхода из Run.
func (q *Queue) Done() <-chan struct{} {
	return q.done
}

// Do ставит fn в очередь и ждёт результата.
// Если ctx отменён раньше, возвращается ctx.Err(), а задача может ещё выполниться.
func (q *Queue) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	j := job{ctx: ctx, fn: fn, result: make(chan error, 1)}

	select {
	case <-q.done:
		return ErrQueueStopped
	default:
	}

	select {
	case q.jobs <- j:
	case <-q.done:
		return ErrQueueStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-j.result:
		return err
	case <-q.done:
		// Run пишет результат до закрытия done
		select {
		case err := <-j.result:
			return err
		default:
			return ErrQueueStopped
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// execute запускает задачу, паника превращается в ошибку для вызывающего.
func (q *Queue) execute(j job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.WithFields(log.Fields{
				"panic": r,
				"stack": string(debug.Stack()),
			}).Error("Паника в задаче очереди")
			err = fmt.Errorf("паника в задаче: %v", r)
		}
	}()

	if err := j.ctx.Err(); err != nil {
		return err
	}
	return j.fn(j.ctx)
}

func (q *Queue) drain() {
	for {
		select {
		case j := <-q.jobs:
			j.result <- ErrQueueStopped
		default:
			return
		}
	}
}

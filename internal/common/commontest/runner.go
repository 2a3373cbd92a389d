// Package commontest содержит тестовые реализации интерфейсов из common.
package commontest

import "context"

// InlineRunner выполняет fn сразу в вызывающей горутине, без очереди.
type InlineRunner struct{}

func (InlineRunner) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

package database

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// SchemaGuard runs a schema migration at most once per process. Concurrent
// callers share one in-flight run. Only success is remembered, so a failed run
// is retried by the next caller.
type SchemaGuard struct {
	migrate func(ctx context.Context) error
	group   singleflight.Group
	ready   atomic.Bool
	log     *zap.Logger
}

// NewSchemaGuard creates a SchemaGuard around a migration function.
func NewSchemaGuard(migrate func(ctx context.Context) error, log *zap.Logger) *SchemaGuard {
	return &SchemaGuard{migrate: migrate, log: log}
}

// Ensure returns once the schema is known to be current.
func (g *SchemaGuard) Ensure(ctx context.Context) error {
	if g.ready.Load() {
		return nil
	}

	ch := g.group.DoChan("schema", func() (interface{}, error) {
		if g.ready.Load() {
			return nil, nil
		}
		// Detached so one caller's cancellation does not fail the shared run.
		if err := g.migrate(context.WithoutCancel(ctx)); err != nil {
			g.log.Error("schema migration failed", zap.Error(err))
			return nil, err
		}
		g.ready.Store(true)
		return nil, nil
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Ready reports whether a migration has completed successfully.
func (g *SchemaGuard) Ready() bool {
	return g.ready.Load()
}

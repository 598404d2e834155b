// Package bootstrap runs the startup sequence: ensure the database exists,
// apply pending migrations, then seed reference data. Each phase starts only
// after the previous one succeeded.
package bootstrap

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"
)

// EnsureFunc creates the target database if needed and reports whether it did.
type EnsureFunc func(ctx context.Context) (bool, error)

type Migrator interface {
	Run(ctx context.Context) ([]string, error)
}

type Seeder interface {
	Run(ctx context.Context) (int, error)
}

// Result summarises one successful bootstrap.
type Result struct {
	DatabaseCreated bool          `json:"database_created"`
	Applied         []string      `json:"applied_migrations"`
	SeededRoles     int           `json:"seeded_roles"`
	Duration        time.Duration `json:"duration"`
}

type Bootstrapper struct {
	ensure   EnsureFunc
	migrator Migrator
	seeder   Seeder
	logger   *log.Logger
	ready    atomic.Bool
}

// New wires the phases. ensure and seeder may be nil to skip those phases;
// migrator is required.
func New(ensure EnsureFunc, migrator Migrator, seeder Seeder, logger *log.Logger) *Bootstrapper {
	if logger == nil {
		logger = log.Default()
	}
	return &Bootstrapper{ensure: ensure, migrator: migrator, seeder: seeder, logger: logger}
}

// Ready reports whether Run has completed successfully.
func (b *Bootstrapper) Ready() bool {
	return b.ready.Load()
}

func (b *Bootstrapper) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	res := &Result{Applied: []string{}}

	if b.ensure != nil {
		created, err := b.ensure(ctx)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: ensure database: %w", err)
		}
		res.DatabaseCreated = created
		if created {
			b.logger.Println("INFO: target database created")
		} else {
			b.logger.Println("INFO: target database already exists")
		}
	}

	applied, err := b.migrator.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: migrate: %w", err)
	}
	res.Applied = append(res.Applied, applied...)
	if len(applied) == 0 {
		b.logger.Println("INFO: schema is up to date")
	}

	if b.seeder != nil {
		n, err := b.seeder.Run(ctx)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: seed: %w", err)
		}
		res.SeededRoles = n
	}

	res.Duration = time.Since(start)
	b.ready.Store(true)
	b.logger.Printf("INFO: bootstrap finished in %s (%d migrations applied, %d roles seeded)",
		res.Duration.Round(time.Millisecond), len(res.Applied), res.SeededRoles)
	return res, nil
}

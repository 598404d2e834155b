// Package seed loads the reference rows every environment needs after
// migration.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/Paulaf319/sas-db-generator/internal/domain"
	"github.com/Paulaf319/sas-db-generator/internal/store"
)

// ErrConflict reports a reference row whose id or name is taken by different data.
var ErrConflict = errors.New("seed: reference row conflicts with existing data")

// RoleStore is the slice of the store the loader needs.
type RoleStore interface {
	CountRoles(ctx context.Context) (int, error)
	InsertRoleIfAbsent(ctx context.Context, role domain.Role) (bool, error)
	GetRoleByID(ctx context.Context, id uuid.UUID) (*domain.Role, error)
}

type Loader struct {
	roles  RoleStore
	logger *log.Logger
}

func NewLoader(roles RoleStore, logger *log.Logger) *Loader {
	if logger == nil {
		logger = log.Default()
	}
	return &Loader{roles: roles, logger: logger}
}

// Run inserts the reference roles when the roles table is empty and returns how
// many rows it inserted. A populated table is left alone. Rows that already exist
// under the fixed id are accepted when their name matches.
func (l *Loader) Run(ctx context.Context) (int, error) {
	n, err := l.roles.CountRoles(ctx)
	if err != nil {
		return 0, fmt.Errorf("seed: failed to count roles: %w", err)
	}
	if n > 0 {
		l.logger.Printf("INFO: %d roles present, skipping role seed", n)
		return 0, nil
	}

	inserted := 0
	for _, role := range domain.ReferenceRoles() {
		ok, err := l.roles.InsertRoleIfAbsent(ctx, role)
		if err != nil {
			if errors.Is(err, store.ErrRoleNameExists) {
				return inserted, fmt.Errorf("%w: role name %q is used by another id", ErrConflict, role.Name)
			}
			return inserted, fmt.Errorf("seed: failed to insert role %q: %w", role.Name, err)
		}
		if ok {
			inserted++
			continue
		}
		existing, err := l.roles.GetRoleByID(ctx, role.ID)
		if err != nil {
			return inserted, fmt.Errorf("seed: failed to verify role %s: %w", role.ID, err)
		}
		if existing.Name != role.Name {
			return inserted, fmt.Errorf("%w: role %s is named %q, want %q", ErrConflict, role.ID, existing.Name, role.Name)
		}
	}
	l.logger.Printf("INFO: seeded %d reference roles", inserted)
	return inserted, nil
}

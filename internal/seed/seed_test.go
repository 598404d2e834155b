package seed

import (
	"context"
	"io"
	"log"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Paulaf319/sas-db-generator/internal/domain"
	"github.com/Paulaf319/sas-db-generator/internal/store"
)

type MockRoleStore struct {
	mock.Mock
}

func (m *MockRoleStore) CountRoles(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockRoleStore) InsertRoleIfAbsent(ctx context.Context, role domain.Role) (bool, error) {
	args := m.Called(ctx, role)
	return args.Bool(0), args.Error(1)
}

func (m *MockRoleStore) GetRoleByID(ctx context.Context, id uuid.UUID) (*domain.Role, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Role), args.Error(1)
}

// memoryRoles behaves like the roles table for idempotency checks.
type memoryRoles struct {
	rows map[uuid.UUID]string
}

func (m *memoryRoles) CountRoles(context.Context) (int, error) { return len(m.rows), nil }

func (m *memoryRoles) InsertRoleIfAbsent(_ context.Context, role domain.Role) (bool, error) {
	if _, ok := m.rows[role.ID]; ok {
		return false, nil
	}
	for _, name := range m.rows {
		if name == role.Name {
			return false, store.ErrRoleNameExists
		}
	}
	m.rows[role.ID] = role.Name
	return true, nil
}

func (m *memoryRoles) GetRoleByID(_ context.Context, id uuid.UUID) (*domain.Role, error) {
	name, ok := m.rows[id]
	if !ok {
		return nil, store.ErrRoleNotFound
	}
	return &domain.Role{ID: id, Name: name}, nil
}

func quietLogger() *log.Logger { return log.New(io.Discard, "", 0) }

func TestLoader_Run_IsIdempotent(t *testing.T) {
	roles := &memoryRoles{rows: map[uuid.UUID]string{}}
	loader := NewLoader(roles, quietLogger())

	inserted, err := loader.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, inserted)
	assert.Equal(t, domain.RoleAdminName, roles.rows[domain.RoleAdminID])
	assert.Equal(t, domain.RoleOperatorName, roles.rows[domain.RoleOperatorID])

	inserted, err = loader.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, inserted)
	assert.Len(t, roles.rows, 2)
}

func TestLoader_Run_SkipsPopulatedTable(t *testing.T) {
	roles := new(MockRoleStore)
	roles.On("CountRoles", mock.Anything).Return(3, nil)

	inserted, err := NewLoader(roles, quietLogger()).Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, inserted)
	roles.AssertExpectations(t)
	roles.AssertNotCalled(t, "InsertRoleIfAbsent", mock.Anything, mock.Anything)
}

func TestLoader_Run_AcceptsIdenticalRowInsertedConcurrently(t *testing.T) {
	admin, operator := domain.ReferenceRoles()[0], domain.ReferenceRoles()[1]
	roles := new(MockRoleStore)
	roles.On("CountRoles", mock.Anything).Return(0, nil)
	roles.On("InsertRoleIfAbsent", mock.Anything, admin).Return(false, nil)
	roles.On("GetRoleByID", mock.Anything, admin.ID).Return(&admin, nil)
	roles.On("InsertRoleIfAbsent", mock.Anything, operator).Return(true, nil)

	inserted, err := NewLoader(roles, quietLogger()).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)
	roles.AssertExpectations(t)
}

func TestLoader_Run_RejectsConflicts(t *testing.T) {
	admin := domain.ReferenceRoles()[0]

	t.Run("fixed id holds another name", func(t *testing.T) {
		roles := new(MockRoleStore)
		roles.On("CountRoles", mock.Anything).Return(0, nil)
		roles.On("InsertRoleIfAbsent", mock.Anything, admin).Return(false, nil)
		roles.On("GetRoleByID", mock.Anything, admin.ID).Return(&domain.Role{ID: admin.ID, Name: "Root"}, nil)

		_, err := NewLoader(roles, quietLogger()).Run(context.Background())
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("name taken by another id", func(t *testing.T) {
		roles := new(MockRoleStore)
		roles.On("CountRoles", mock.Anything).Return(0, nil)
		roles.On("InsertRoleIfAbsent", mock.Anything, admin).Return(false, store.ErrRoleNameExists)

		_, err := NewLoader(roles, quietLogger()).Run(context.Background())
		assert.ErrorIs(t, err, ErrConflict)
	})
}

package bootstrap

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	calls []string
}

type fakeMigrator struct {
	rec     *recorder
	applied []string
	err     error
}

func (f *fakeMigrator) Run(context.Context) ([]string, error) {
	f.rec.calls = append(f.rec.calls, "migrate")
	return f.applied, f.err
}

type fakeSeeder struct {
	rec *recorder
	n   int
	err error
}

func (f *fakeSeeder) Run(context.Context) (int, error) {
	f.rec.calls = append(f.rec.calls, "seed")
	return f.n, f.err
}

func ensureRecorded(rec *recorder, created bool, err error) EnsureFunc {
	return func(context.Context) (bool, error) {
		rec.calls = append(rec.calls, "ensure")
		return created, err
	}
}

func quietLogger() *log.Logger { return log.New(io.Discard, "", 0) }

func TestBootstrapper_Run_FreshStore(t *testing.T) {
	rec := &recorder{}
	b := New(
		ensureRecorded(rec, true, nil),
		&fakeMigrator{rec: rec, applied: []string{"0001_create_tables", "0002_create_indexes"}},
		&fakeSeeder{rec: rec, n: 2},
		quietLogger(),
	)
	require.False(t, b.Ready())

	res, err := b.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"ensure", "migrate", "seed"}, rec.calls)
	assert.True(t, res.DatabaseCreated)
	assert.Len(t, res.Applied, 2)
	assert.Equal(t, 2, res.SeededRoles)
	assert.True(t, b.Ready())
}

func TestBootstrapper_Run_SecondStartIsNoOp(t *testing.T) {
	rec := &recorder{}
	b := New(ensureRecorded(rec, false, nil), &fakeMigrator{rec: rec}, &fakeSeeder{rec: rec}, quietLogger())

	res, err := b.Run(context.Background())
	require.NoError(t, err)
	assert.False(t, res.DatabaseCreated)
	assert.Empty(t, res.Applied)
	assert.Zero(t, res.SeededRoles)
}

func TestBootstrapper_Run_StopsAtFirstFailure(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name      string
		ensureErr error
		migrErr   error
		seedErr   error
		wantCalls []string
	}{
		{"ensure fails", boom, nil, nil, []string{"ensure"}},
		{"migrate fails", nil, boom, nil, []string{"ensure", "migrate"}},
		{"seed fails", nil, nil, boom, []string{"ensure", "migrate", "seed"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			b := New(
				ensureRecorded(rec, false, tt.ensureErr),
				&fakeMigrator{rec: rec, err: tt.migrErr},
				&fakeSeeder{rec: rec, err: tt.seedErr},
				quietLogger(),
			)
			res, err := b.Run(context.Background())
			assert.Nil(t, res)
			assert.ErrorIs(t, err, boom)
			assert.Equal(t, tt.wantCalls, rec.calls)
			assert.False(t, b.Ready())
		})
	}
}

func TestBootstrapper_Run_OptionalPhases(t *testing.T) {
	rec := &recorder{}
	b := New(nil, &fakeMigrator{rec: rec}, nil, quietLogger())

	_, err := b.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"migrate"}, rec.calls)
}

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Paulaf319/sas-db-generator/internal/domain"
	"github.com/Paulaf319/sas-db-generator/internal/migrate"
	"github.com/Paulaf319/sas-db-generator/internal/store"
)

// MockStore is a mock implementation of the store surfaces the handler uses.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockStore) Status(ctx context.Context) (*migrate.Status, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*migrate.Status), args.Error(1)
}

func (m *MockStore) CountRoles(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockStore) InsertRoleIfAbsent(ctx context.Context, role domain.Role) (bool, error) {
	args := m.Called(ctx, role)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) CreateRole(ctx context.Context, role *domain.Role) error {
	return m.Called(ctx, role).Error(0)
}

func (m *MockStore) GetRoleByID(ctx context.Context, id uuid.UUID) (*domain.Role, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Role), args.Error(1)
}

func (m *MockStore) ListRoles(ctx context.Context) ([]domain.Role, error) {
	args := m.Called(ctx)
	var roles []domain.Role
	if arg0 := args.Get(0); arg0 != nil {
		roles = arg0.([]domain.Role)
	}
	return roles, args.Error(1)
}

func (m *MockStore) DeleteRole(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockStore) AppendAuditLog(ctx context.Context, entry *domain.AuditLog) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *MockStore) ListAuditLogs(ctx context.Context, params store.ListAuditLogsParams) ([]domain.AuditLog, int, error) {
	args := m.Called(ctx, params)
	var entries []domain.AuditLog
	if arg0 := args.Get(0); arg0 != nil {
		entries = arg0.([]domain.AuditLog)
	}
	return entries, args.Int(1), args.Error(2)
}

// Helper for setting up tests with a chi router and handler
func setupTestChiServer(t *testing.T, ms *MockStore, ready bool) *httptest.Server {
	handler := NewHTTPHandler(ms, func() bool { return ready }, ms, ms, ms)
	router := chi.NewRouter()
	handler.RegisterRoutes(router)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func getJSON(t *testing.T, url string, out interface{}) int {
	res, err := http.Get(url)
	require.NoError(t, err)
	defer res.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(res.Body).Decode(out))
	}
	return res.StatusCode
}

func TestHTTPHandler_Healthz_ReportsDatabase(t *testing.T) {
	ms := new(MockStore)
	ms.On("Ping", mock.Anything).Return(errors.New("connection refused")).Once()
	server := setupTestChiServer(t, ms, true)

	var body map[string]interface{}
	code := getJSON(t, server.URL+"/api/v1/healthz", &body)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "unhealthy", body["database"])
	ms.AssertExpectations(t)
}

func TestHTTPHandler_Readyz(t *testing.T) {
	tests := []struct {
		name     string
		ready    bool
		pingErr  error
		wantCode int
	}{
		{"bootstrapped and reachable", true, nil, http.StatusOK},
		{"bootstrap pending", false, nil, http.StatusServiceUnavailable},
		{"database down", true, errors.New("down"), http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ms := new(MockStore)
			ms.On("Ping", mock.Anything).Return(tt.pingErr)
			server := setupTestChiServer(t, ms, tt.ready)

			var body map[string]interface{}
			assert.Equal(t, tt.wantCode, getJSON(t, server.URL+"/api/v1/readyz", &body))
			assert.Equal(t, tt.wantCode == http.StatusOK, body["ready"])
		})
	}
}

func TestHTTPHandler_MigrationStatus(t *testing.T) {
	ms := new(MockStore)
	ms.On("Status", mock.Anything).Return(&migrate.Status{
		Applied: []migrate.Applied{{ID: "0001_create_tables", AppliedAt: time.Now()}},
		Pending: []string{"0002_create_indexes"},
	}, nil).Once()
	server := setupTestChiServer(t, ms, true)

	var st migrate.Status
	require.Equal(t, http.StatusOK, getJSON(t, server.URL+"/api/v1/migrations", &st))
	require.Len(t, st.Applied, 1)
	assert.Equal(t, "0001_create_tables", st.Applied[0].ID)
	assert.Equal(t, []string{"0002_create_indexes"}, st.Pending)
	ms.AssertExpectations(t)
}

func TestHTTPHandler_DescribeSchema(t *testing.T) {
	server := setupTestChiServer(t, new(MockStore), true)

	var body struct {
		Migrations []string `json:"migrations"`
		Tables     []struct {
			Name string `json:"name"`
		} `json:"tables"`
	}
	require.Equal(t, http.StatusOK, getJSON(t, server.URL+"/api/v1/schema", &body))
	assert.Len(t, body.Migrations, 3)
	assert.Len(t, body.Tables, 13)
	assert.Equal(t, "roles", body.Tables[0].Name)
}

func TestHTTPHandler_ListRoles(t *testing.T) {
	ms := new(MockStore)
	ms.On("ListRoles", mock.Anything).Return(domain.ReferenceRoles(), nil).Once()
	server := setupTestChiServer(t, ms, true)

	var roles []domain.Role
	require.Equal(t, http.StatusOK, getJSON(t, server.URL+"/api/v1/roles", &roles))
	assert.Equal(t, domain.ReferenceRoles(), roles)
	ms.AssertExpectations(t)
}

func TestHTTPHandler_ListAuditLogs(t *testing.T) {
	ms := new(MockStore)
	entityID := uuid.New()
	entry := domain.AuditLog{ID: uuid.New(), UserID: uuid.New(), Action: "update", Entity: "order", EntityID: entityID, CreatedAt: time.Now().UTC()}

	ms.On("ListAuditLogs", mock.Anything, store.ListAuditLogsParams{Limit: 5, Offset: 5, Entity: "order", EntityID: &entityID}).
		Return([]domain.AuditLog{entry}, 6, nil).Once()
	server := setupTestChiServer(t, ms, true)

	var body struct {
		Data       []domain.AuditLog `json:"data"`
		Pagination struct {
			Page       int `json:"page"`
			TotalItems int `json:"totalItems"`
			TotalPages int `json:"totalPages"`
		} `json:"pagination"`
	}
	url := server.URL + "/api/v1/audit-logs?entity=order&entity_id=" + entityID.String() + "&page=2&limit=5"
	require.Equal(t, http.StatusOK, getJSON(t, url, &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, entry.ID, body.Data[0].ID)
	assert.Equal(t, 2, body.Pagination.Page)
	assert.Equal(t, 6, body.Pagination.TotalItems)
	assert.Equal(t, 2, body.Pagination.TotalPages)
	ms.AssertExpectations(t)
}

func TestHTTPHandler_ListAuditLogs_InvalidQuery(t *testing.T) {
	ms := new(MockStore)
	server := setupTestChiServer(t, ms, true)

	for _, query := range []string{
		"user_id=not-a-uuid",
		"limit=500",
		"page=abc",
		"page=-1",
		"page=100001",
		"page=9223372036854775807&limit=100",
	} {
		var errResp ErrorResponse
		code := getJSON(t, server.URL+"/api/v1/audit-logs?"+query, &errResp)
		assert.Equal(t, http.StatusBadRequest, code, query)
		assert.NotEmpty(t, errResp.Error)
	}
	ms.AssertNotCalled(t, "ListAuditLogs", mock.Anything, mock.Anything)
}

package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/Paulaf319/sas-db-generator/internal/domain"
	"github.com/Paulaf319/sas-db-generator/internal/migrate"
	"github.com/Paulaf319/sas-db-generator/internal/schema"
	"github.com/Paulaf319/sas-db-generator/internal/store"
)

const serviceName = "sas-db-generator"

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// MigrationStatuser reports applied and pending migrations.
type MigrationStatuser interface {
	Status(ctx context.Context) (*migrate.Status, error)
}

// HTTPHandler holds dependencies for HTTP handlers.
type HTTPHandler struct {
	db         Pinger
	ready      func() bool
	migrations MigrationStatuser
	roleStore  store.RoleStorer
	auditStore store.AuditStorer
	validate   *validator.Validate
}

// NewHTTPHandler creates a new HTTPHandler with dependencies. ready reports
// whether bootstrap has finished.
func NewHTTPHandler(db Pinger, ready func() bool, ms MigrationStatuser, rs store.RoleStorer, as store.AuditStorer) *HTTPHandler {
	return &HTTPHandler{
		db:         db,
		ready:      ready,
		migrations: ms,
		roleStore:  rs,
		auditStore: as,
		validate:   validator.New(),
	}
}

// --- Helpers ---

// ErrorResponse defines the structure for JSON error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, ErrorResponse{Error: message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			log.Printf("ERROR: Failed to encode JSON response: %v", err)
		}
	}
}

func (h *HTTPHandler) pingDB(ctx context.Context) string {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := h.db.Ping(ctx); err != nil {
		log.Printf("WARN: Health check DB ping failed: %v", err)
		return "unhealthy"
	}
	return "healthy"
}

// --- Health Handlers ---

// Healthz always answers 200; the payload carries the database state.
func (h *HTTPHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "healthy",
		"serviceName": serviceName,
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"database":    h.pingDB(r.Context()),
	})
}

// Readyz answers 200 only once bootstrap finished and the database answers.
func (h *HTTPHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	bootstrapped := h.ready != nil && h.ready()
	dbStatus := h.pingDB(r.Context())
	code := http.StatusOK
	if !bootstrapped || dbStatus != "healthy" {
		code = http.StatusServiceUnavailable
	}
	respondWithJSON(w, code, map[string]interface{}{
		"ready":        code == http.StatusOK,
		"bootstrapped": bootstrapped,
		"database":     dbStatus,
	})
}

// --- Schema Handlers ---

func (h *HTTPHandler) MigrationStatus(w http.ResponseWriter, r *http.Request) {
	st, err := h.migrations.Status(r.Context())
	if err != nil {
		log.Printf("ERROR: MigrationStatus failed: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to read migration ledger")
		return
	}
	respondWithJSON(w, http.StatusOK, st)
}

func (h *HTTPHandler) DescribeSchema(w http.ResponseWriter, r *http.Request) {
	d, err := schema.Describe()
	if err != nil {
		log.Printf("ERROR: DescribeSchema failed: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to describe schema")
		return
	}
	respondWithJSON(w, http.StatusOK, d)
}

// --- Reference Data Handlers ---

func (h *HTTPHandler) ListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.roleStore.ListRoles(r.Context())
	if err != nil {
		log.Printf("ERROR: ListRoles store operation failed: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to retrieve roles")
		return
	}
	respondWithJSON(w, http.StatusOK, roles)
}

// AuditLogQuery holds the accepted query parameters of the audit log listing.
type AuditLogQuery struct {
	UserID   string `validate:"omitempty,uuid"`
	Entity   string `validate:"omitempty,max=100"`
	EntityID string `validate:"omitempty,uuid"`
	Page     int    `validate:"gte=0,lte=100000"`
	Limit    int    `validate:"gte=0,lte=100"`
}

func (h *HTTPHandler) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := AuditLogQuery{
		UserID:   q.Get("user_id"),
		Entity:   q.Get("entity"),
		EntityID: q.Get("entity_id"),
	}
	var err error
	if s := q.Get("page"); s != "" {
		if query.Page, err = strconv.Atoi(s); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid page parameter")
			return
		}
	}
	if s := q.Get("limit"); s != "" {
		if query.Limit, err = strconv.Atoi(s); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid limit parameter")
			return
		}
	}
	if err := h.validate.Struct(query); err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	if query.Limit == 0 {
		query.Limit = 20
	}
	if query.Page == 0 {
		query.Page = 1
	}
	params := store.ListAuditLogsParams{
		Limit:  query.Limit,
		Offset: (query.Page - 1) * query.Limit,
		Entity: query.Entity,
	}
	if query.UserID != "" {
		id := uuid.MustParse(query.UserID)
		params.UserID = &id
	}
	if query.EntityID != "" {
		id := uuid.MustParse(query.EntityID)
		params.EntityID = &id
	}

	entries, totalCount, err := h.auditStore.ListAuditLogs(r.Context(), params)
	if err != nil {
		log.Printf("ERROR: ListAuditLogs store operation failed: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to retrieve audit logs")
		return
	}

	totalPages := 0
	if totalCount > 0 {
		totalPages = (totalCount + query.Limit - 1) / query.Limit
	}
	response := struct {
		Data       []domain.AuditLog `json:"data"`
		Pagination struct {
			Page       int `json:"page"`
			Limit      int `json:"limit"`
			TotalItems int `json:"totalItems"`
			TotalPages int `json:"totalPages"`
		} `json:"pagination"`
	}{Data: entries}
	response.Pagination.Page = query.Page
	response.Pagination.Limit = query.Limit
	response.Pagination.TotalItems = totalCount
	response.Pagination.TotalPages = totalPages

	respondWithJSON(w, http.StatusOK, response)
}

// --- Route Registration ---

// RegisterRoutes sets up the HTTP routes for the service.
func (h *HTTPHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/healthz", h.Healthz)
		r.Get("/readyz", h.Readyz)
		r.Get("/migrations", h.MigrationStatus)
		r.Get("/schema", h.DescribeSchema)
		r.Get("/roles", h.ListRoles)
		r.Get("/audit-logs", h.ListAuditLogs)
	})
}

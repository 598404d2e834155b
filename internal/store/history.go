package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Paulaf319/sas-db-generator/internal/domain"
)

// --- InventoryStorer Implementation ---

const movementColumns = "id, variant_id, quantity, reason, performed_by, notes, " + auditColumns

// RecordMovement appends a movement to the inventory ledger. It does not touch
// the variant's stock; callers pair it with AdjustVariantStock inside WithTx.
func (s *PostgresStore) RecordMovement(ctx context.Context, movement *domain.InventoryMovement) error {
	query := `
		INSERT INTO inventory_movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	args := append([]interface{}{
		movement.ID, movement.VariantID, movement.Quantity, movement.Reason, movement.PerformedBy, movement.Notes,
	}, auditArgs(movement.Auditable)...)
	if _, err := s.conn.ExecContext(ctx, query, args...); err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: movement variant or user", ErrReferenceMissing)
		}
		return fmt.Errorf("store: RecordMovement failed: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListMovements(ctx context.Context, variantID uuid.UUID) ([]domain.InventoryMovement, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT `+movementColumns+` FROM inventory_movements WHERE variant_id = $1 ORDER BY created_at ASC;`, variantID)
	if err != nil {
		return nil, fmt.Errorf("store: ListMovements failed to query movements: %w", err)
	}
	defer rows.Close()

	movements := []domain.InventoryMovement{}
	for rows.Next() {
		var m domain.InventoryMovement
		dest := append([]interface{}{&m.ID, &m.VariantID, &m.Quantity, &m.Reason, &m.PerformedBy, &m.Notes}, auditDest(&m.Auditable)...)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("store: ListMovements failed to scan movement row: %w", err)
		}
		movements = append(movements, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: ListMovements iteration error: %w", err)
	}
	return movements, nil
}

// UpdateMovementNotes writes back the only mutable column of a movement.
func (s *PostgresStore) UpdateMovementNotes(ctx context.Context, movement *domain.InventoryMovement) error {
	result, err := s.conn.ExecContext(ctx,
		`UPDATE inventory_movements SET notes = $1, modified_at = $2, modified_by = $3 WHERE id = $4;`,
		movement.Notes, movement.ModifiedAt, movement.ModifiedBy, movement.ID)
	if err != nil {
		return fmt.Errorf("store: UpdateMovementNotes failed: %w", err)
	}
	return requireAffected(result, "UpdateMovementNotes", ErrMovementNotFound)
}

// --- AuditStorer Implementation ---

const auditLogColumns = "id, user_id, action, entity, entity_id, data_before, data_after, ip_address, created_at"

func (s *PostgresStore) AppendAuditLog(ctx context.Context, entry *domain.AuditLog) error {
	query := `
		INSERT INTO audit_logs (` + auditLogColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err := s.conn.ExecContext(ctx, query,
		entry.ID, entry.UserID, entry.Action, entry.Entity, entry.EntityID,
		jsonArg(entry.DataBefore), jsonArg(entry.DataAfter), entry.IPAddress, entry.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: user %s", ErrReferenceMissing, entry.UserID)
		}
		return fmt.Errorf("store: AppendAuditLog failed: %w", err)
	}
	return nil
}

// ListAuditLogs returns matching entries newest first, with the total count for
// pagination.
func (s *PostgresStore) ListAuditLogs(ctx context.Context, params ListAuditLogsParams) ([]domain.AuditLog, int, error) {
	var queryArgs []interface{}
	var whereClauses []string
	argID := 1

	if params.UserID != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("user_id = $%d", argID))
		queryArgs = append(queryArgs, *params.UserID)
		argID++
	}
	if params.Entity != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("entity = $%d", argID))
		queryArgs = append(queryArgs, params.Entity)
		argID++
	}
	if params.EntityID != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("entity_id = $%d", argID))
		queryArgs = append(queryArgs, *params.EntityID)
		argID++
	}

	whereCondition := ""
	if len(whereClauses) > 0 {
		whereCondition = " WHERE " + strings.Join(whereClauses, " AND ")
	}

	var totalCount int
	if err := s.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM audit_logs"+whereCondition, queryArgs...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("store: ListAuditLogs failed to count entries: %w", err)
	}
	if totalCount == 0 {
		return []domain.AuditLog{}, 0, nil
	}

	dataQuery := fmt.Sprintf("SELECT %s FROM audit_logs%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		auditLogColumns, whereCondition, argID, argID+1)
	rows, err := s.conn.QueryContext(ctx, dataQuery, append(queryArgs, params.Limit, params.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("store: ListAuditLogs failed to query entries: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.AuditLog, 0, params.Limit)
	for rows.Next() {
		var e domain.AuditLog
		var before, after []byte
		if err := rows.Scan(&e.ID, &e.UserID, &e.Action, &e.Entity, &e.EntityID, &before, &after, &e.IPAddress, &e.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("store: ListAuditLogs failed to scan entry row: %w", err)
		}
		e.DataBefore, e.DataAfter = before, after
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("store: ListAuditLogs iteration error: %w", err)
	}
	return entries, totalCount, nil
}

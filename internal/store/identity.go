package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Paulaf319/sas-db-generator/internal/domain"
)

const auditColumns = "created_at, created_by, modified_at, modified_by"

func auditDest(a *domain.Auditable) []interface{} {
	return []interface{}{&a.CreatedAt, &a.CreatedBy, &a.ModifiedAt, &a.ModifiedBy}
}

func auditArgs(a domain.Auditable) []interface{} {
	return []interface{}{a.CreatedAt, a.CreatedBy, a.ModifiedAt, a.ModifiedBy}
}

// --- RoleStorer Implementation ---

func (s *PostgresStore) CountRoles(ctx context.Context) (int, error) {
	var n int
	if err := s.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM roles;`).Scan(&n); err != nil {
		return 0, fmt.Errorf("store: CountRoles failed: %w", err)
	}
	return n, nil
}

// InsertRoleIfAbsent inserts role unless a row with the same id exists and
// reports whether it inserted. A name clash with a different id is an error.
func (s *PostgresStore) InsertRoleIfAbsent(ctx context.Context, role domain.Role) (bool, error) {
	result, err := s.conn.ExecContext(ctx,
		`INSERT INTO roles (id, name) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING;`,
		role.ID, role.Name)
	if err != nil {
		if mapped := uniqueViolation(err, roleConstraints); mapped != err {
			return false, mapped
		}
		return false, fmt.Errorf("store: InsertRoleIfAbsent failed: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("store: InsertRoleIfAbsent failed to get rows affected: %w", err)
	}
	return n == 1, nil
}

var roleConstraints = map[string]error{"ux_roles_name": ErrRoleNameExists}

func (s *PostgresStore) CreateRole(ctx context.Context, role *domain.Role) error {
	_, err := s.conn.ExecContext(ctx, `INSERT INTO roles (id, name) VALUES ($1, $2);`, role.ID, role.Name)
	if err != nil {
		if mapped := uniqueViolation(err, roleConstraints); mapped != err {
			return mapped
		}
		return fmt.Errorf("store: CreateRole failed: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetRoleByID(ctx context.Context, id uuid.UUID) (*domain.Role, error) {
	var role domain.Role
	err := s.conn.QueryRowContext(ctx, `SELECT id, name FROM roles WHERE id = $1;`, id).Scan(&role.ID, &role.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoleNotFound
		}
		return nil, fmt.Errorf("store: GetRoleByID failed to scan row: %w", err)
	}
	return &role, nil
}

func (s *PostgresStore) ListRoles(ctx context.Context) ([]domain.Role, error) {
	rows, err := s.conn.QueryContext(ctx, `SELECT id, name FROM roles ORDER BY name ASC;`)
	if err != nil {
		return nil, fmt.Errorf("store: ListRoles failed to query roles: %w", err)
	}
	defer rows.Close()

	roles := []domain.Role{}
	for rows.Next() {
		var r domain.Role
		if err := rows.Scan(&r.ID, &r.Name); err != nil {
			return nil, fmt.Errorf("store: ListRoles failed to scan role row: %w", err)
		}
		roles = append(roles, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: ListRoles iteration error: %w", err)
	}
	return roles, nil
}

func (s *PostgresStore) DeleteRole(ctx context.Context, id uuid.UUID) error {
	result, err := s.conn.ExecContext(ctx, `DELETE FROM roles WHERE id = $1;`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrRoleInUse
		}
		return fmt.Errorf("store: DeleteRole failed to execute delete: %w", err)
	}
	return requireAffected(result, "DeleteRole", ErrRoleNotFound)
}

// --- UserStorer Implementation ---

const userColumns = "id, email, password_hash, role_id, is_active, " + auditColumns

var userConstraints = map[string]error{"ux_users_email": ErrUserEmailExists}

func scanUser(row rowScanner) (*domain.User, error) {
	var u domain.User
	dest := append([]interface{}{&u.ID, &u.Email, &u.PasswordHash, &u.RoleID, &u.IsActive}, auditDest(&u.Auditable)...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *PostgresStore) CreateUser(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	args := append([]interface{}{user.ID, user.Email, user.PasswordHash, user.RoleID, user.IsActive}, auditArgs(user.Auditable)...)
	if _, err := s.conn.ExecContext(ctx, query, args...); err != nil {
		if mapped := uniqueViolation(err, userConstraints); mapped != err {
			return mapped
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: role %s", ErrReferenceMissing, user.RoleID)
		}
		return fmt.Errorf("store: CreateUser failed: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.getUser(ctx, "GetUserByID", `SELECT `+userColumns+` FROM users WHERE id = $1;`, id)
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.getUser(ctx, "GetUserByEmail", `SELECT `+userColumns+` FROM users WHERE email = lower($1);`, email)
}

func (s *PostgresStore) getUser(ctx context.Context, op, query string, arg interface{}) (*domain.User, error) {
	user, err := scanUser(s.conn.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("store: %s failed to scan row: %w", op, err)
	}
	return user, nil
}

func (s *PostgresStore) UpdateUser(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users
		SET email = $1, password_hash = $2, role_id = $3, is_active = $4, modified_at = $5, modified_by = $6
		WHERE id = $7;
	`
	result, err := s.conn.ExecContext(ctx, query,
		user.Email, user.PasswordHash, user.RoleID, user.IsActive, user.ModifiedAt, user.ModifiedBy, user.ID)
	if err != nil {
		if mapped := uniqueViolation(err, userConstraints); mapped != err {
			return mapped
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: role %s", ErrReferenceMissing, user.RoleID)
		}
		return fmt.Errorf("store: UpdateUser failed: %w", err)
	}
	return requireAffected(result, "UpdateUser", ErrUserNotFound)
}

// DeleteUser removes a user. Their orders and carts keep existing with the user
// reference cleared; audit and inventory history blocks the delete.
func (s *PostgresStore) DeleteUser(ctx context.Context, id uuid.UUID) error {
	result, err := s.conn.ExecContext(ctx, `DELETE FROM users WHERE id = $1;`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrUserInUse
		}
		return fmt.Errorf("store: DeleteUser failed to execute delete: %w", err)
	}
	return requireAffected(result, "DeleteUser", ErrUserNotFound)
}

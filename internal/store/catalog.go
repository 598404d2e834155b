package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Paulaf319/sas-db-generator/internal/domain"
)

// --- CategoryStorer Implementation ---

func (s *PostgresStore) CreateCategory(ctx context.Context, category *domain.Category) error {
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO categories (id, name, parent_id) VALUES ($1, $2, $3);`,
		category.ID, category.Name, category.ParentID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: parent category", ErrReferenceMissing)
		}
		return fmt.Errorf("store: CreateCategory failed: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetCategoryByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	var c domain.Category
	err := s.conn.QueryRowContext(ctx, `SELECT id, name, parent_id FROM categories WHERE id = $1;`, id).
		Scan(&c.ID, &c.Name, &c.ParentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("store: GetCategoryByID failed to scan row: %w", err)
	}
	return &c, nil
}

// ListCategories retrieves a paginated list of categories, optionally restricted to
// the children of one parent or to the roots.
func (s *PostgresStore) ListCategories(ctx context.Context, params ListCategoriesParams) ([]domain.Category, int, error) {
	var queryArgs []interface{}
	whereCondition := ""
	switch {
	case params.ParentID != nil:
		whereCondition = " WHERE parent_id = $1"
		queryArgs = append(queryArgs, *params.ParentID)
	case params.RootOnly:
		whereCondition = " WHERE parent_id IS NULL"
	}

	var totalCount int
	if err := s.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM categories"+whereCondition, queryArgs...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("store: ListCategories failed to count categories: %w", err)
	}
	if totalCount == 0 {
		return []domain.Category{}, 0, nil
	}

	argID := len(queryArgs) + 1
	dataQuery := fmt.Sprintf("SELECT id, name, parent_id FROM categories%s ORDER BY name ASC LIMIT $%d OFFSET $%d",
		whereCondition, argID, argID+1)
	rows, err := s.conn.QueryContext(ctx, dataQuery, append(queryArgs, params.Limit, params.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("store: ListCategories failed to query categories: %w", err)
	}
	defer rows.Close()

	categories := make([]domain.Category, 0, params.Limit)
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.ParentID); err != nil {
			return nil, 0, fmt.Errorf("store: ListCategories failed to scan category row: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("store: ListCategories iteration error: %w", err)
	}
	return categories, totalCount, nil
}

// ancestryQuery reports whether $2 is the category $1 or one of its ancestors.
const ancestryQuery = `
	WITH RECURSIVE ancestry AS (
		SELECT id, parent_id FROM categories WHERE id = $1
		UNION
		SELECT c.id, c.parent_id FROM categories c JOIN ancestry a ON c.id = a.parent_id
	)
	SELECT EXISTS (SELECT 1 FROM ancestry WHERE id = $2);
`

// categoryTreeLock is the advisory lock key held while a category is re-parented.
// Moves run one at a time, so each ancestry check sees every committed move.
const categoryTreeLock int64 = 7_301_001

// UpdateCategory renames or re-parents a category. Moving a category below one of
// its own descendants is rejected with domain.ErrCategoryCycle.
func (s *PostgresStore) UpdateCategory(ctx context.Context, category *domain.Category) error {
	if category.ParentID == nil {
		return s.updateCategory(ctx, category)
	}
	return s.WithTx(ctx, func(tx *PostgresStore) error {
		if _, err := tx.conn.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1);`, categoryTreeLock); err != nil {
			return fmt.Errorf("store: UpdateCategory failed to lock category tree: %w", err)
		}
		var cycle bool
		if err := tx.conn.QueryRowContext(ctx, ancestryQuery, *category.ParentID, category.ID).Scan(&cycle); err != nil {
			return fmt.Errorf("store: UpdateCategory failed to check ancestry: %w", err)
		}
		if cycle {
			return domain.ErrCategoryCycle
		}
		return tx.updateCategory(ctx, category)
	})
}

func (s *PostgresStore) updateCategory(ctx context.Context, category *domain.Category) error {
	result, err := s.conn.ExecContext(ctx,
		`UPDATE categories SET name = $1, parent_id = $2 WHERE id = $3;`,
		category.Name, category.ParentID, category.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: parent category", ErrReferenceMissing)
		}
		return fmt.Errorf("store: UpdateCategory failed: %w", err)
	}
	return requireAffected(result, "UpdateCategory", ErrCategoryNotFound)
}

func (s *PostgresStore) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	result, err := s.conn.ExecContext(ctx, `DELETE FROM categories WHERE id = $1;`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrCategoryInUse
		}
		return fmt.Errorf("store: DeleteCategory failed to execute delete: %w", err)
	}
	return requireAffected(result, "DeleteCategory", ErrCategoryNotFound)
}

// --- ProductStorer Implementation ---

const productColumns = "id, sku, name, description, brand_id, category_id, price, is_active, " + auditColumns

var productConstraints = map[string]error{"ux_products_sku": ErrProductSKUExists}

func (s *PostgresStore) CreateProduct(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	args := append([]interface{}{
		product.ID, product.SKU, product.Name, product.Description, product.BrandID,
		product.CategoryID, product.Price, product.IsActive,
	}, auditArgs(product.Auditable)...)
	if _, err := s.conn.ExecContext(ctx, query, args...); err != nil {
		if mapped := uniqueViolation(err, productConstraints); mapped != err {
			return mapped
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: category %s", ErrReferenceMissing, product.CategoryID)
		}
		return fmt.Errorf("store: CreateProduct failed: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetProductByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	var p domain.Product
	dest := append([]interface{}{
		&p.ID, &p.SKU, &p.Name, &p.Description, &p.BrandID, &p.CategoryID, &p.Price, &p.IsActive,
	}, auditDest(&p.Auditable)...)
	err := s.conn.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1;`, id).Scan(dest...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("store: GetProductByID failed to scan row: %w", err)
	}
	return &p, nil
}

func (s *PostgresStore) UpdateProduct(ctx context.Context, product *domain.Product) error {
	query := `
		UPDATE products
		SET sku = $1, name = $2, description = $3, brand_id = $4, category_id = $5, price = $6,
			is_active = $7, modified_at = $8, modified_by = $9
		WHERE id = $10;
	`
	result, err := s.conn.ExecContext(ctx, query,
		product.SKU, product.Name, product.Description, product.BrandID, product.CategoryID, product.Price,
		product.IsActive, product.ModifiedAt, product.ModifiedBy, product.ID)
	if err != nil {
		if mapped := uniqueViolation(err, productConstraints); mapped != err {
			return mapped
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: category %s", ErrReferenceMissing, product.CategoryID)
		}
		return fmt.Errorf("store: UpdateProduct failed: %w", err)
	}
	return requireAffected(result, "UpdateProduct", ErrProductNotFound)
}

// DeleteProduct removes a product and, by cascade, its variants. Variants with
// order or inventory history block the delete.
func (s *PostgresStore) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	result, err := s.conn.ExecContext(ctx, `DELETE FROM products WHERE id = $1;`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrVariantInUse
		}
		return fmt.Errorf("store: DeleteProduct failed to execute delete: %w", err)
	}
	return requireAffected(result, "DeleteProduct", ErrProductNotFound)
}

const variantColumns = "id, product_id, color, size, barcode, stock, " + auditColumns

var variantConstraints = map[string]error{"ux_product_variants_barcode": ErrVariantBarcodeExists}

func scanVariant(row rowScanner) (*domain.ProductVariant, error) {
	var v domain.ProductVariant
	dest := append([]interface{}{&v.ID, &v.ProductID, &v.Color, &v.Size, &v.Barcode, &v.Stock}, auditDest(&v.Auditable)...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *PostgresStore) CreateVariant(ctx context.Context, variant *domain.ProductVariant) error {
	query := `
		INSERT INTO product_variants (` + variantColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	args := append([]interface{}{
		variant.ID, variant.ProductID, variant.Color, variant.Size, variant.Barcode, variant.Stock,
	}, auditArgs(variant.Auditable)...)
	if _, err := s.conn.ExecContext(ctx, query, args...); err != nil {
		if mapped := uniqueViolation(err, variantConstraints); mapped != err {
			return mapped
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: product %s", ErrReferenceMissing, variant.ProductID)
		}
		return fmt.Errorf("store: CreateVariant failed: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetVariantByID(ctx context.Context, id uuid.UUID) (*domain.ProductVariant, error) {
	v, err := scanVariant(s.conn.QueryRowContext(ctx, `SELECT `+variantColumns+` FROM product_variants WHERE id = $1;`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrVariantNotFound
		}
		return nil, fmt.Errorf("store: GetVariantByID failed to scan row: %w", err)
	}
	return v, nil
}

func (s *PostgresStore) ListVariantsByProduct(ctx context.Context, productID uuid.UUID) ([]domain.ProductVariant, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT `+variantColumns+` FROM product_variants WHERE product_id = $1 ORDER BY barcode ASC;`, productID)
	if err != nil {
		return nil, fmt.Errorf("store: ListVariantsByProduct failed to query variants: %w", err)
	}
	defer rows.Close()

	variants := []domain.ProductVariant{}
	for rows.Next() {
		v, err := scanVariant(rows)
		if err != nil {
			return nil, fmt.Errorf("store: ListVariantsByProduct failed to scan variant row: %w", err)
		}
		variants = append(variants, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: ListVariantsByProduct iteration error: %w", err)
	}
	return variants, nil
}

func (s *PostgresStore) UpdateVariant(ctx context.Context, variant *domain.ProductVariant) error {
	query := `
		UPDATE product_variants
		SET color = $1, size = $2, barcode = $3, stock = $4, modified_at = $5, modified_by = $6
		WHERE id = $7;
	`
	result, err := s.conn.ExecContext(ctx, query,
		variant.Color, variant.Size, variant.Barcode, variant.Stock, variant.ModifiedAt, variant.ModifiedBy, variant.ID)
	if err != nil {
		if mapped := uniqueViolation(err, variantConstraints); mapped != err {
			return mapped
		}
		return fmt.Errorf("store: UpdateVariant failed: %w", err)
	}
	return requireAffected(result, "UpdateVariant", ErrVariantNotFound)
}

// DeleteVariant removes a variant and any cart lines pointing at it.
func (s *PostgresStore) DeleteVariant(ctx context.Context, id uuid.UUID) error {
	result, err := s.conn.ExecContext(ctx, `DELETE FROM product_variants WHERE id = $1;`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrVariantInUse
		}
		return fmt.Errorf("store: DeleteVariant failed to execute delete: %w", err)
	}
	return requireAffected(result, "DeleteVariant", ErrVariantNotFound)
}

// AdjustVariantStock atomically applies delta to a variant's stock and returns the
// new level. A delta that would drive stock below zero fails with
// ErrInsufficientStock and leaves the row untouched.
func (s *PostgresStore) AdjustVariantStock(ctx context.Context, id uuid.UUID, delta int) (int, error) {
	query := `
		UPDATE product_variants
		SET stock = stock + $1, modified_at = now()
		WHERE id = $2 AND stock + $1 >= 0
		RETURNING stock;
	`
	var stock int
	err := s.conn.QueryRowContext(ctx, query, delta, id).Scan(&stock)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Either the variant is gone or the guard rejected the change.
			if _, getErr := s.GetVariantByID(ctx, id); errors.Is(getErr, ErrVariantNotFound) {
				return 0, ErrVariantNotFound
			}
			return 0, ErrInsufficientStock
		}
		if code, _ := pqCode(err); code == pgCheckViolation {
			return 0, ErrInsufficientStock
		}
		return 0, fmt.Errorf("store: AdjustVariantStock failed: %w", err)
	}
	return stock, nil
}

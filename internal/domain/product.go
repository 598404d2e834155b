package domain

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents a sellable catalog entry. Physical stock lives on its variants.
type Product struct {
	ID          uuid.UUID       `json:"id"`
	SKU         string          `json:"sku" validate:"required,max=50"`
	Name        string          `json:"name" validate:"required,max=200"`
	Description *string         `json:"description,omitempty" validate:"omitempty,max=1000"`
	BrandID     *uuid.UUID      `json:"brand_id,omitempty"`
	CategoryID  uuid.UUID       `json:"category_id"`
	Price       decimal.Decimal `json:"price"`
	IsActive    bool            `json:"is_active"`
	Auditable
}

func NewProduct(sku, name string, description *string, categoryID uuid.UUID, price decimal.Decimal, brandID *uuid.UUID) (*Product, error) {
	if err := requireID("product.category_id", categoryID); err != nil {
		return nil, err
	}
	price, err := normalizeMoney("product.price", price)
	if err != nil {
		return nil, err
	}
	p := &Product{
		ID:          uuid.New(),
		SKU:         strings.TrimSpace(sku),
		Name:        strings.TrimSpace(name),
		Description: description,
		BrandID:     brandID,
		CategoryID:  categoryID,
		Price:       price,
		IsActive:    true,
		Auditable:   newAuditable(),
	}
	if err := validateEntity("product", p); err != nil {
		return nil, err
	}
	return p, nil
}

// Update replaces the editable attributes in one step.
func (p *Product) Update(name string, description *string, price decimal.Decimal, isActive bool) error {
	price, err := normalizeMoney("product.price", price)
	if err != nil {
		return err
	}
	next := *p
	next.Name = strings.TrimSpace(name)
	next.Description = description
	next.Price = price
	next.IsActive = isActive
	if err := validateEntity("product", &next); err != nil {
		return err
	}
	next.touch()
	*p = next
	return nil
}

func (p *Product) ChangePrice(price decimal.Decimal) error {
	price, err := normalizeMoney("product.price", price)
	if err != nil {
		return err
	}
	p.Price = price
	p.touch()
	return nil
}

func (p *Product) Activate() {
	p.IsActive = true
	p.touch()
}

func (p *Product) Deactivate() {
	p.IsActive = false
	p.touch()
}

// ProductVariant is a concrete, stockable version of a product (color/size).
type ProductVariant struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"product_id"`
	Color     *string   `json:"color,omitempty" validate:"omitempty,max=50"`
	Size      *string   `json:"size,omitempty" validate:"omitempty,max=20"`
	Barcode   string    `json:"barcode" validate:"required,max=50"`
	Stock     int       `json:"stock"`
	Auditable
}

func NewProductVariant(productID uuid.UUID, barcode string, stock int, color, size *string) (*ProductVariant, error) {
	if err := requireID("product_variant.product_id", productID); err != nil {
		return nil, err
	}
	if err := checkStock(stock); err != nil {
		return nil, err
	}
	v := &ProductVariant{
		ID:        uuid.New(),
		ProductID: productID,
		Color:     color,
		Size:      size,
		Barcode:   strings.TrimSpace(barcode),
		Stock:     stock,
		Auditable: newAuditable(),
	}
	if err := validateEntity("product_variant", v); err != nil {
		return nil, err
	}
	return v, nil
}

// SetStock overwrites the stock count, e.g. after a physical count.
func (v *ProductVariant) SetStock(stock int) error {
	if err := checkStock(stock); err != nil {
		return err
	}
	v.Stock = stock
	v.touch()
	return nil
}

// AdjustStock applies a signed delta. The result may not drop below zero.
func (v *ProductVariant) AdjustStock(delta int) error {
	if delta < -maxQuantity || delta > maxQuantity {
		return ErrQuantityOutOfRange
	}
	if err := checkStock(v.Stock + delta); err != nil {
		return err
	}
	v.Stock += delta
	v.touch()
	return nil
}

func (v *ProductVariant) UpdateAttributes(color, size *string, barcode string) error {
	next := *v
	next.Color = color
	next.Size = size
	next.Barcode = strings.TrimSpace(barcode)
	if err := validateEntity("product_variant", &next); err != nil {
		return err
	}
	next.touch()
	*v = next
	return nil
}

func checkStock(stock int) error {
	if stock < 0 {
		return ErrInsufficientStock
	}
	if stock > maxQuantity {
		return ErrQuantityOutOfRange
	}
	return nil
}

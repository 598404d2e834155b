package domain

import (
	"strings"

	"github.com/google/uuid"
)

// Category is a node in the product taxonomy. ParentID is nil for root categories.
// Deeper cycles than self-parenting are detected by the store, which can see the
// whole ancestry.
type Category struct {
	ID       uuid.UUID  `json:"id"`
	Name     string     `json:"name" validate:"required,max=100"`
	ParentID *uuid.UUID `json:"parent_id,omitempty"`
}

func NewCategory(name string, parentID *uuid.UUID) (*Category, error) {
	c := &Category{ID: uuid.New(), Name: strings.TrimSpace(name)}
	if err := validateEntity("category", c); err != nil {
		return nil, err
	}
	if err := c.MoveUnder(parentID); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Category) Rename(name string) error {
	next := *c
	next.Name = strings.TrimSpace(name)
	if err := validateEntity("category", &next); err != nil {
		return err
	}
	c.Name = next.Name
	return nil
}

// MoveUnder re-parents the category. A nil parent makes it a root.
func (c *Category) MoveUnder(parentID *uuid.UUID) error {
	if parentID == nil {
		c.ParentID = nil
		return nil
	}
	if *parentID == uuid.Nil {
		return ErrMissingReference
	}
	if *parentID == c.ID {
		return ErrCategoryCycle
	}
	p := *parentID
	c.ParentID = &p
	return nil
}

package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// AuditLog records an action a user performed on an entity, with optional JSON
// snapshots of the entity before and after. It is immutable once created.
type AuditLog struct {
	ID         uuid.UUID       `json:"id"`
	UserID     uuid.UUID       `json:"user_id"`
	Action     string          `json:"action" validate:"required,max=50"`
	Entity     string          `json:"entity" validate:"required,max=100"`
	EntityID   uuid.UUID       `json:"entity_id"`
	DataBefore json.RawMessage `json:"data_before,omitempty"`
	DataAfter  json.RawMessage `json:"data_after,omitempty"`
	IPAddress  *string         `json:"ip_address,omitempty" validate:"omitempty,max=45,ip"`
	CreatedAt  time.Time       `json:"created_at"`
}

// NewAuditLog snapshots before and after as JSON. Either may be nil; values that
// already are json.RawMessage are checked and kept as-is.
func NewAuditLog(userID uuid.UUID, action, entity string, entityID uuid.UUID, before, after interface{}, ipAddress *string) (*AuditLog, error) {
	if err := requireID("audit_log.user_id", userID); err != nil {
		return nil, err
	}
	if err := requireID("audit_log.entity_id", entityID); err != nil {
		return nil, err
	}
	dataBefore, err := snapshot(before)
	if err != nil {
		return nil, err
	}
	dataAfter, err := snapshot(after)
	if err != nil {
		return nil, err
	}
	l := &AuditLog{
		ID:         uuid.New(),
		UserID:     userID,
		Action:     strings.TrimSpace(action),
		Entity:     strings.TrimSpace(entity),
		EntityID:   entityID,
		DataBefore: dataBefore,
		DataAfter:  dataAfter,
		IPAddress:  ipAddress,
		CreatedAt:  now(),
	}
	if err := validateEntity("audit_log", l); err != nil {
		return nil, err
	}
	return l, nil
}

func snapshot(v interface{}) (json.RawMessage, error) {
	switch data := v.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		if data == nil {
			return nil, nil
		}
		if !json.Valid(data) {
			return nil, ErrMalformedPayload
		}
		return data, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return b, nil
}

package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Trigger string

const (
	TriggerItemCreated        Trigger = "item_created"
	TriggerColumnValueChanged Trigger = "column_value_changed"
)

const ActionArchiveItem = "archive_item"

// CompareOp selects how a condition compares an event value with the
// expected one.
type CompareOp string

const (
	// OpEquals is strict equality as defined by Equal.
	OpEquals CompareOp = "eq"
)

// ValueCondition is a typed value comparison decided when the automation is
// created.
type ValueCondition struct {
	Op       CompareOp
	Expected Value
}

// Matches reports whether actual satisfies the condition.
func (c ValueCondition) Matches(actual Value) bool {
	switch c.Op {
	case OpEquals, "":
		return Equal(c.Expected, actual)
	default:
		return false
	}
}

// Conditions narrows when an automation fires. Nil fields are wildcards.
// Only column_value_changed automations consult them today.
type Conditions struct {
	ColumnID *uuid.UUID
	Value    *ValueCondition
}

type conditionsJSON struct {
	ColumnID *uuid.UUID      `json:"column_id,omitempty"`
	Op       CompareOp       `json:"op,omitempty"`
	Value    json.RawMessage `json:"value,omitempty"`
}

// MarshalJSON writes the persisted {column_id, op, value} shape.
func (c Conditions) MarshalJSON() ([]byte, error) {
	out := conditionsJSON{ColumnID: c.ColumnID}
	if c.Value != nil {
		raw, err := MarshalValue(c.Value.Expected)
		if err != nil {
			return nil, fmt.Errorf("domain.Conditions.MarshalJSON: %w", err)
		}
		out.Op = c.Value.Op
		out.Value = raw
	}
	return json.Marshal(out)
}

// UnmarshalJSON parses {column_id, op, value}. A present "value" key, even
// when null, produces a value condition; an absent key does not.
func (c *Conditions) UnmarshalJSON(b []byte) error {
	parsed, err := ParseConditions(b)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseConditions validates raw conditions. Unknown keys are ignored and
// unknown ops are rejected.
func ParseConditions(raw []byte) (Conditions, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return Conditions{}, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Conditions{}, fmt.Errorf("domain.ParseConditions: %w: %w", ErrInvalidInput, err)
	}

	var c Conditions
	if rawCol, ok := fields["column_id"]; ok && string(rawCol) != "null" {
		var colID uuid.UUID
		if err := json.Unmarshal(rawCol, &colID); err != nil {
			return Conditions{}, fmt.Errorf("domain.ParseConditions: column_id: %w: %w", ErrInvalidInput, err)
		}
		c.ColumnID = &colID
	}

	op := OpEquals
	if rawOp, ok := fields["op"]; ok {
		var s string
		if err := json.Unmarshal(rawOp, &s); err != nil {
			return Conditions{}, fmt.Errorf("domain.ParseConditions: op: %w: %w", ErrInvalidInput, err)
		}
		if s != "" {
			op = CompareOp(s)
		}
	}
	if op != OpEquals {
		return Conditions{}, fmt.Errorf("domain.ParseConditions: unsupported op %q: %w", op, ErrInvalidInput)
	}

	if rawVal, ok := fields["value"]; ok {
		v, err := ParseValue(rawVal)
		if err != nil {
			return Conditions{}, fmt.Errorf("domain.ParseConditions: value: %w", err)
		}
		c.Value = &ValueCondition{Op: op, Expected: v}
	}

	return c, nil
}

type Automation struct {
	ID           uuid.UUID
	BoardID      uuid.UUID
	Trigger      Trigger
	Conditions   Conditions
	Action       string
	ActionParams map[string]any
	IsActive     bool
	CreatedAt    time.Time
}

type AutomationRepository interface {
	Create(ctx context.Context, a *Automation) error
	GetByID(ctx context.Context, id uuid.UUID) (*Automation, error)
	ListByBoard(ctx context.Context, boardID uuid.UUID) ([]*Automation, error)
	// ListActive returns active automations for (boardID, trigger) in creation order.
	ListActive(ctx context.Context, boardID uuid.UUID, trigger Trigger) ([]*Automation, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}

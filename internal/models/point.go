package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Priority is the operator-assigned urgency of a point.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ErrInvalidPriority is returned for values outside low, medium and high.
var ErrInvalidPriority = errors.New("invalid priority")

// ParsePriority parses a priority name. The empty string maps to low, and the
// marker colours green, orange and red are accepted as aliases.
func ParsePriority(value string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "low", "green":
		return PriorityLow, nil
	case "medium", "orange":
		return PriorityMedium, nil
	case "high", "red":
		return PriorityHigh, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPriority, value)
	}
}

// Valid reports whether p is one of the three known priorities.
func (p Priority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// Color returns the marker colour shown on the map: green, orange or red.
func (p Priority) Color() string {
	switch p {
	case PriorityMedium:
		return "#ff8c00"
	case PriorityHigh:
		return "#dc3545"
	default:
		return "#28a745"
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Priority) UnmarshalText(text []byte) error {
	parsed, err := ParsePriority(string(text))
	if err != nil {
		return err
	}
	*p = parsed

	return nil
}

// PointRecord is the persisted unit: a resolved location plus extracted and operator-entered metadata.
type PointRecord struct {
	ID            string      `json:"id"`
	Location      Coordinates `json:"location"`
	SourceAddress string      `json:"sourceAddress"`
	DisplayName   string      `json:"displayName,omitempty"`
	ReferenceCode string      `json:"referenceCode,omitempty"`
	DeviceID      string      `json:"deviceId,omitempty"`
	ReasonText    string      `json:"reasonText,omitempty"`
	Ticket        string      `json:"ticket,omitempty"`
	OrderNumber   string      `json:"orderNumber,omitempty"`
	Priority      Priority    `json:"priority"`
	CreatedAt     time.Time   `json:"createdAt"`
}

// NewPointRecord combines an extraction and its geocoding result into a fresh record with low priority.
func NewPointRecord(id string, extracted ExtractionResult, geo GeoResult, createdAt time.Time) PointRecord {
	return PointRecord{
		ID:            id,
		Location:      geo.Coordinates,
		SourceAddress: extracted.Address,
		DisplayName:   geo.DisplayName,
		ReferenceCode: extracted.ReferenceCode,
		DeviceID:      extracted.DeviceID,
		ReasonText:    extracted.ReasonText,
		Priority:      PriorityLow,
		CreatedAt:     createdAt.UTC(),
	}
}

// PointEdit carries the operator-editable fields. Nil fields are left untouched.
type PointEdit struct {
	Ticket      *string   `json:"ticket,omitempty"`
	OrderNumber *string   `json:"orderNumber,omitempty"`
	ReasonText  *string   `json:"reasonText,omitempty"`
	Priority    *Priority `json:"priority,omitempty"`
}

// WithEdit returns a copy of the record with the edit merged on top.
// Ticket and order number may be cleared with an empty value; an empty reason keeps the previous one.
func (p PointRecord) WithEdit(edit PointEdit) PointRecord {
	if edit.Ticket != nil {
		p.Ticket = strings.TrimSpace(*edit.Ticket)
	}
	if edit.OrderNumber != nil {
		p.OrderNumber = strings.TrimSpace(*edit.OrderNumber)
	}
	if edit.ReasonText != nil {
		if reason := strings.TrimSpace(*edit.ReasonText); reason != "" {
			p.ReasonText = reason
		}
	}
	if edit.Priority != nil {
		p.Priority = *edit.Priority
	}
	if !p.Priority.Valid() {
		p.Priority = PriorityLow
	}

	return p
}

package models

import (
	"database/sql/driver"
	"errors"
	"time"
)

type AuditTrail struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	EventID string `gorm:"size:36;uniqueIndex" json:"eventId"`

	Action string `gorm:"size:60;not null;index:idx_audit_action,priority:1" json:"action"`

	Actor   AuditActor   `gorm:"embedded;embeddedPrefix:actor_" json:"actor"`
	Context AuditContext `gorm:"embedded;embeddedPrefix:context_" json:"context"`

	Message string   `gorm:"size:500" json:"message"`
	Detail  JSONText `gorm:"type:text" json:"detail"`

	CreatedAt time.Time `gorm:"index:idx_audit_action,priority:2" json:"createdAt"`
}

type AuditActor struct {
	ID   string `gorm:"size:64;index" json:"id"`
	Name string `gorm:"size:100" json:"name"`
	Role string `gorm:"size:20" json:"role"`
}

type AuditContext struct {
	Method    string `gorm:"size:10" json:"method"`
	Endpoint  string `gorm:"size:255;index" json:"endpoint"`
	Location  string `gorm:"size:64" json:"location"`
	UserAgent string `gorm:"size:255" json:"userAgent"`
}

// JSONText keeps an already-encoded JSON document in a text column and
// emits it verbatim when the row is serialized.
type JSONText []byte

func (j JSONText) Value() (driver.Value, error) {
	if len(j) == 0 {
		return "{}", nil
	}
	return string(j), nil
}

func (j *JSONText) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*j = nil
	case string:
		*j = JSONText(v)
	case []byte:
		*j = append((*j)[:0], v...)
	default:
		return errors.New("models: unsupported JSONText source")
	}
	return nil
}

func (j JSONText) MarshalJSON() ([]byte, error) {
	if len(j) == 0 {
		return []byte("{}"), nil
	}
	return j, nil
}

func (j *JSONText) UnmarshalJSON(b []byte) error {
	*j = append((*j)[:0], b...)
	return nil
}

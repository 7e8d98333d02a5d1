package audit

import (
	"context"
	"encoding/json"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/BruksfildServices01/hospital-device-booking/internal/models"
)

// Store appends events to the audit_trails table.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Write(ctx context.Context, ev Event) error {
	detail, err := json.Marshal(ev.Detail)
	if err != nil {
		return err
	}

	row := models.AuditTrail{
		EventID: ev.ID,
		Action:  ev.Action,
		Actor: models.AuditActor{
			ID:   ev.Actor.ID,
			Name: ev.Actor.Name,
			Role: ev.Actor.Role,
		},
		Context: models.AuditContext{
			Method:    ev.Context.Method,
			Endpoint:  truncate(ev.Context.Endpoint, 255),
			Location:  ev.Context.Location,
			UserAgent: truncate(ev.Context.UserAgent, 255),
		},
		Message:   truncate(ev.Message, 500),
		Detail:    models.JSONText(detail),
		CreatedAt: ev.OccurredAt,
	}

	return s.db.WithContext(ctx).Create(&row).Error
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

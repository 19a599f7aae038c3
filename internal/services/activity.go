package services

import (
	"context"
	"time"

	"github.com/zaroda/school-backend/internal/models"
	"github.com/zaroda/school-backend/internal/storage"
	"github.com/zaroda/school-backend/internal/tenant"
)

// ActivityFilter narrows List results; Limit <= 0 means no limit.
type ActivityFilter struct {
	SchoolCode string
	UserID     string
	Action     models.ActivityAction
	Limit      int
}

// ActivityLog is the append-only event ledger.
type ActivityLog struct {
	events *storage.EntityStore[models.ActivityEvent, *models.ActivityEvent]
	now    func() time.Time
}

func NewActivityLog(kv storage.KV) *ActivityLog {
	return &ActivityLog{
		events: storage.NewEntityStore[models.ActivityEvent](kv, KeyActivityLog),
		now:    time.Now,
	}
}

func (l *ActivityLog) Bind(kv storage.KV) *ActivityLog {
	return &ActivityLog{events: l.events.Bind(kv), now: l.now}
}

// Append records an event for user. The timestamp is always set here.
func (l *ActivityLog) Append(ctx context.Context, user models.AuthUser, action models.ActivityAction, details string) (models.ActivityEvent, error) {
	return l.events.Add(ctx, models.ActivityEvent{
		UserID:     user.ID,
		Email:      user.Email,
		FullName:   user.FullName,
		Role:       user.Role,
		SchoolCode: user.SchoolCode,
		Action:     action,
		Details:    details,
		Timestamp:  l.now().UTC(),
	})
}

// List returns matching events, newest first.
func (l *ActivityLog) List(ctx context.Context, filter ActivityFilter) ([]models.ActivityEvent, error) {
	events, err := l.events.FindBy(ctx, func(e models.ActivityEvent) bool {
		if filter.SchoolCode != "" && !tenant.SameSchool(e.SchoolCode, filter.SchoolCode) {
			return false
		}
		if filter.UserID != "" && e.UserID != filter.UserID {
			return false
		}
		if filter.Action != "" && e.Action != filter.Action {
			return false
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	// stored in append order, so reversing gives newest first
	for i, j := 0, len(events)-1; i < j; i, j = i+1, j-1 {
		events[i], events[j] = events[j], events[i]
	}
	if filter.Limit > 0 && len(events) > filter.Limit {
		events = events[:filter.Limit]
	}
	return events, nil
}

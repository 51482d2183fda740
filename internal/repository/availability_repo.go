package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"studiobook/internal/domain"
	"studiobook/internal/stream"
)

type AvailabilityRepository struct {
	db     *gorm.DB
	events *stream.Broker
}

func NewAvailabilityRepository(db *gorm.DB, events *stream.Broker) *AvailabilityRepository {
	return &AvailabilityRepository{db: db, events: events}
}

// availabilityModel flattens the Temporal variant into columns; the mapping
// layer rebuilds the tagged union, so the "exactly one shape" rule never
// leaks past this file.
type availabilityModel struct {
	ID      string `gorm:"column:id;primaryKey"`
	Kind    string `gorm:"column:kind"`
	Scope   string `gorm:"column:scope;index:idx_availability_scope_owner"`
	OwnerID string `gorm:"column:owner_id;index:idx_availability_scope_owner"`

	StudioID   *string `gorm:"column:studio_id;index"`
	RoomID     *string `gorm:"column:room_id"`
	EngineerID *string `gorm:"column:engineer_id"`

	StartTime       *time.Time `gorm:"column:start_time"`
	EndTime         *time.Time `gorm:"column:end_time"`
	Weekday         *int       `gorm:"column:weekday"`
	StartMinutes    *int       `gorm:"column:start_minutes"`
	DurationMinutes *int       `gorm:"column:duration_minutes"`

	CreatedBy       *string `gorm:"column:created_by"`
	Notes           *string `gorm:"column:notes"`
	SourceBookingID *string `gorm:"column:source_booking_id;index"`

	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (availabilityModel) TableName() string { return "availability_entries" }

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func toAvailabilityModel(e *domain.AvailabilityEntry) availabilityModel {
	m := availabilityModel{
		ID:              e.ID,
		Kind:            string(e.Kind),
		Scope:           string(e.Scope),
		OwnerID:         e.OwnerID,
		StudioID:        strPtr(e.StudioID),
		RoomID:          strPtr(e.RoomID),
		EngineerID:      strPtr(e.EngineerID),
		CreatedBy:       strPtr(e.CreatedBy),
		Notes:           strPtr(e.Notes),
		SourceBookingID: strPtr(e.SourceBookingID),
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
	switch w := e.When.(type) {
	case domain.Absolute:
		start, end := w.Start, w.End
		m.StartTime = &start
		m.EndTime = &end
	case domain.Recurring:
		weekday, startMin, duration := w.Weekday, w.StartMinutes, w.DurationMinutes
		m.Weekday = &weekday
		m.StartMinutes = &startMin
		m.DurationMinutes = &duration
	}
	return m
}

func toDomainAvailability(m availabilityModel) domain.AvailabilityEntry {
	e := domain.AvailabilityEntry{
		ID:              m.ID,
		Kind:            domain.EntryKind(m.Kind),
		Scope:           domain.Scope(m.Scope),
		OwnerID:         m.OwnerID,
		StudioID:        deref(m.StudioID),
		RoomID:          deref(m.RoomID),
		EngineerID:      deref(m.EngineerID),
		CreatedBy:       deref(m.CreatedBy),
		Notes:           deref(m.Notes),
		SourceBookingID: deref(m.SourceBookingID),
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
	if m.Weekday != nil && m.StartMinutes != nil && m.DurationMinutes != nil {
		e.When = domain.Recurring{Weekday: *m.Weekday, StartMinutes: *m.StartMinutes, DurationMinutes: *m.DurationMinutes}
	} else if m.StartTime != nil && m.EndTime != nil {
		e.When = domain.Absolute{Start: *m.StartTime, End: *m.EndTime}
	}
	return e
}

func (r *AvailabilityRepository) Upsert(ctx context.Context, e *domain.AvailabilityEntry) error {
	m := toAvailabilityModel(e)
	if err := r.db.WithContext(ctx).Save(&m).Error; err != nil {
		return storeErr(err)
	}
	r.publish(ctx, e.Scope, e.OwnerID)
	return nil
}

func (r *AvailabilityRepository) Delete(ctx context.Context, scope domain.Scope, ownerID, entryID string) error {
	res := r.db.WithContext(ctx).
		Delete(&availabilityModel{}, "id = ? AND scope = ? AND owner_id = ?", entryID, string(scope), ownerID)
	if res.Error != nil {
		return storeErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	r.publish(ctx, scope, ownerID)
	return nil
}

func (r *AvailabilityRepository) GetByID(ctx context.Context, id string) (*domain.AvailabilityEntry, error) {
	var m availabilityModel
	err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error
	if err != nil {
		return nil, storeErr(err)
	}
	e := toDomainAvailability(m)
	return &e, nil
}

// ListByScope returns one owner namespace: studio-scoped and
// engineer-scoped entries never mix in a single query.
func (r *AvailabilityRepository) ListByScope(ctx context.Context, scope domain.Scope, ownerID string) ([]domain.AvailabilityEntry, error) {
	var rows []availabilityModel
	err := r.db.WithContext(ctx).
		Where("scope = ? AND owner_id = ?", string(scope), ownerID).
		Order("created_at").
		Find(&rows).Error
	if err != nil {
		return nil, storeErr(err)
	}
	return toDomainAvailabilities(rows), nil
}

// ListForStudio returns every entry affecting the studio's rooms: its own
// studio-scoped entries plus engineer-scoped ones pinned to it.
func (r *AvailabilityRepository) ListForStudio(ctx context.Context, studioID string) ([]domain.AvailabilityEntry, error) {
	var rows []availabilityModel
	err := r.db.WithContext(ctx).
		Where("(scope = ? AND owner_id = ?) OR studio_id = ?", string(domain.ScopeStudio), studioID, studioID).
		Order("created_at").
		Find(&rows).Error
	if err != nil {
		return nil, storeErr(err)
	}
	return toDomainAvailabilities(rows), nil
}

func (r *AvailabilityRepository) DeleteBySourceBooking(ctx context.Context, bookingID string) error {
	var rows []availabilityModel
	if err := r.db.WithContext(ctx).Where("source_booking_id = ?", bookingID).Find(&rows).Error; err != nil {
		return storeErr(err)
	}
	if len(rows) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Delete(&availabilityModel{}, "source_booking_id = ?", bookingID).Error; err != nil {
		return storeErr(err)
	}
	for _, m := range rows {
		r.publish(ctx, domain.Scope(m.Scope), m.OwnerID)
	}
	return nil
}

func toDomainAvailabilities(rows []availabilityModel) []domain.AvailabilityEntry {
	out := make([]domain.AvailabilityEntry, 0, len(rows))
	for _, m := range rows {
		out = append(out, toDomainAvailability(m))
	}
	return out
}

func (r *AvailabilityRepository) publish(ctx context.Context, scope domain.Scope, ownerID string) {
	if r.events == nil {
		return
	}
	if snapshot, err := r.ListByScope(ctx, scope, ownerID); err == nil {
		r.events.Publish(stream.TopicAvailability(string(scope), ownerID), snapshot)
	}
}

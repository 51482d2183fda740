package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"studiobook/internal/domain"
	"studiobook/internal/stream"
)

type BookingRepository struct {
	db     *gorm.DB
	events *stream.Broker
}

func NewBookingRepository(db *gorm.DB, events *stream.Broker) *BookingRepository {
	return &BookingRepository{db: db, events: events}
}

type bookingModel struct {
	ID         string `gorm:"column:id;primaryKey"`
	ArtistID   string `gorm:"column:artist_id;index"`
	EngineerID string `gorm:"column:engineer_id;index"`
	StudioID   string `gorm:"column:studio_id;index"`
	RoomID     string `gorm:"column:room_id;index"`

	RequestedStart  time.Time `gorm:"column:requested_start"`
	RequestedEnd    time.Time `gorm:"column:requested_end"`
	DurationMinutes int       `gorm:"column:duration_minutes"`

	ConfirmedStart *time.Time `gorm:"column:confirmed_start"`
	ConfirmedEnd   *time.Time `gorm:"column:confirmed_end"`

	Status                   string     `gorm:"column:status;index"`
	RequiresStudioApproval   bool       `gorm:"column:requires_studio_approval"`
	RequiresEngineerApproval bool       `gorm:"column:requires_engineer_approval"`
	ResolvedBy               *string    `gorm:"column:resolved_by"`
	ResolvedAt               *time.Time `gorm:"column:resolved_at"`
	InstantBook              bool       `gorm:"column:instant_book"`

	Notes              *string    `gorm:"column:notes"`
	CancellationReason *string    `gorm:"column:cancellation_reason"`
	CancelledAt        *time.Time `gorm:"column:cancelled_at"`
	CreatedAt          time.Time  `gorm:"column:created_at"`
	UpdatedAt          time.Time  `gorm:"column:updated_at"`
}

func (bookingModel) TableName() string { return "bookings" }

func toBookingModel(b *domain.Booking) bookingModel {
	m := bookingModel{
		ID:                       b.ID,
		ArtistID:                 b.ArtistID,
		EngineerID:               b.EngineerID,
		StudioID:                 b.StudioID,
		RoomID:                   b.RoomID,
		RequestedStart:           b.RequestedStart,
		RequestedEnd:             b.RequestedEnd,
		DurationMinutes:          b.DurationMinutes,
		ConfirmedStart:           b.ConfirmedStart,
		ConfirmedEnd:             b.ConfirmedEnd,
		Status:                   string(b.Status),
		RequiresStudioApproval:   b.Approval.RequiresStudioApproval,
		RequiresEngineerApproval: b.Approval.RequiresEngineerApproval,
		ResolvedAt:               b.Approval.ResolvedAt,
		InstantBook:              b.InstantBook,
		CancelledAt:              b.CancelledAt,
		CreatedAt:                b.CreatedAt,
		UpdatedAt:                b.UpdatedAt,
	}
	if b.Approval.ResolvedBy != "" {
		m.ResolvedBy = &b.Approval.ResolvedBy
	}
	if b.Notes != "" {
		m.Notes = &b.Notes
	}
	if b.CancellationReason != "" {
		m.CancellationReason = &b.CancellationReason
	}
	return m
}

func toDomainBooking(m bookingModel) *domain.Booking {
	b := &domain.Booking{
		ID:              m.ID,
		ArtistID:        m.ArtistID,
		EngineerID:      m.EngineerID,
		StudioID:        m.StudioID,
		RoomID:          m.RoomID,
		RequestedStart:  m.RequestedStart,
		RequestedEnd:    m.RequestedEnd,
		DurationMinutes: m.DurationMinutes,
		ConfirmedStart:  m.ConfirmedStart,
		ConfirmedEnd:    m.ConfirmedEnd,
		Status:          domain.BookingStatus(m.Status),
		Approval: domain.Approval{
			RequiresStudioApproval:   m.RequiresStudioApproval,
			RequiresEngineerApproval: m.RequiresEngineerApproval,
			ResolvedAt:               m.ResolvedAt,
		},
		InstantBook: m.InstantBook,
		CancelledAt: m.CancelledAt,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	if m.ResolvedBy != nil {
		b.Approval.ResolvedBy = *m.ResolvedBy
	}
	if m.Notes != nil {
		b.Notes = *m.Notes
	}
	if m.CancellationReason != nil {
		b.CancellationReason = *m.CancellationReason
	}
	return b
}

func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	m := toBookingModel(b)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return storeErr(err)
	}
	r.publish(ctx, b.StudioID)
	return nil
}

func (r *BookingRepository) Update(ctx context.Context, b *domain.Booking) error {
	m := toBookingModel(b)
	res := r.db.WithContext(ctx).Model(&bookingModel{}).Where("id = ?", m.ID).Select("*").Updates(m)
	if res.Error != nil {
		return storeErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	r.publish(ctx, b.StudioID)
	return nil
}

func (r *BookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	var m bookingModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, storeErr(err)
	}
	return toDomainBooking(m), nil
}

// ListByRoom returns bookings overlapping [from, to) on the room,
// regardless of status.
func (r *BookingRepository) ListByRoom(ctx context.Context, roomID string, from, to time.Time) ([]domain.Booking, error) {
	var rows []bookingModel
	err := r.db.WithContext(ctx).
		Where("room_id = ? AND requested_start < ? AND requested_end > ?", roomID, to, from).
		Order("requested_start").
		Find(&rows).Error
	if err != nil {
		return nil, storeErr(err)
	}
	return toDomainBookings(rows), nil
}

func (r *BookingRepository) ListByStudio(ctx context.Context, studioID string) ([]domain.Booking, error) {
	return r.listWhere(ctx, "studio_id = ?", studioID)
}

func (r *BookingRepository) ListByEngineer(ctx context.Context, engineerID string) ([]domain.Booking, error) {
	return r.listWhere(ctx, "engineer_id = ?", engineerID)
}

func (r *BookingRepository) ListByArtist(ctx context.Context, artistID string) ([]domain.Booking, error) {
	return r.listWhere(ctx, "artist_id = ?", artistID)
}

// ListByOwner returns bookings across every studio the owner runs.
func (r *BookingRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Booking, error) {
	var rows []bookingModel
	err := r.db.WithContext(ctx).
		Where("studio_id IN (?)", r.db.Model(&studioModel{}).Select("id").Where("owner_id = ?", ownerID)).
		Order("requested_start").
		Find(&rows).Error
	if err != nil {
		return nil, storeErr(err)
	}
	return toDomainBookings(rows), nil
}

func (r *BookingRepository) listWhere(ctx context.Context, query string, args ...any) ([]domain.Booking, error) {
	var rows []bookingModel
	err := r.db.WithContext(ctx).Where(query, args...).Order("requested_start").Find(&rows).Error
	if err != nil {
		return nil, storeErr(err)
	}
	return toDomainBookings(rows), nil
}

func toDomainBookings(rows []bookingModel) []domain.Booking {
	out := make([]domain.Booking, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainBooking(m))
	}
	return out
}

// publish pushes the studio's full booking snapshot to observers after a
// committed write.
func (r *BookingRepository) publish(ctx context.Context, studioID string) {
	if r.events == nil {
		return
	}
	if snapshot, err := r.ListByStudio(ctx, studioID); err == nil {
		r.events.Publish(stream.TopicBookings(studioID), snapshot)
	}
}

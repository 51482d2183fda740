package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"studiobook/internal/domain"
	"studiobook/internal/stream"
)

type RoomRepository struct {
	db     *gorm.DB
	events *stream.Broker
}

func NewRoomRepository(db *gorm.DB, events *stream.Broker) *RoomRepository {
	return &RoomRepository{db: db, events: events}
}

type roomModel struct {
	ID         string   `gorm:"column:id;primaryKey"`
	StudioID   string   `gorm:"column:studio_id;index"`
	Name       string   `gorm:"column:name"`
	HourlyRate *float64 `gorm:"column:hourly_rate"`
	Capacity   *int     `gorm:"column:capacity"`
	Amenities  []string `gorm:"column:amenities;serializer:json"`
	IsDefault  bool     `gorm:"column:is_default"`

	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (roomModel) TableName() string { return "rooms" }

func toRoomModel(r *domain.Room) roomModel {
	return roomModel{
		ID:         r.ID,
		StudioID:   r.StudioID,
		Name:       r.Name,
		HourlyRate: r.HourlyRate,
		Capacity:   r.Capacity,
		Amenities:  r.Amenities,
		IsDefault:  r.IsDefault,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

func toDomainRoom(m roomModel) domain.Room {
	return domain.Room{
		ID:         m.ID,
		StudioID:   m.StudioID,
		Name:       m.Name,
		HourlyRate: m.HourlyRate,
		Capacity:   m.Capacity,
		Amenities:  m.Amenities,
		IsDefault:  m.IsDefault,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

func (r *RoomRepository) Create(ctx context.Context, room *domain.Room) error {
	m := toRoomModel(room)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return storeErr(err)
	}
	r.publish(ctx, room.StudioID)
	return nil
}

func (r *RoomRepository) Update(ctx context.Context, room *domain.Room) error {
	m := toRoomModel(room)
	res := r.db.WithContext(ctx).Model(&roomModel{}).Where("id = ?", m.ID).Select("*").Updates(m)
	if res.Error != nil {
		return storeErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	r.publish(ctx, room.StudioID)
	return nil
}

func (r *RoomRepository) Delete(ctx context.Context, id string) error {
	var m roomModel
	err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	if err != nil {
		return storeErr(err)
	}
	if err := r.db.WithContext(ctx).Delete(&roomModel{}, "id = ?", id).Error; err != nil {
		return storeErr(err)
	}
	r.publish(ctx, m.StudioID)
	return nil
}

func (r *RoomRepository) GetByID(ctx context.Context, id string) (*domain.Room, error) {
	var m roomModel
	err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error
	if err != nil {
		return nil, storeErr(err)
	}
	room := toDomainRoom(m)
	return &room, nil
}

func (r *RoomRepository) ListByStudio(ctx context.Context, studioID string) ([]domain.Room, error) {
	var rows []roomModel
	err := r.db.WithContext(ctx).Where("studio_id = ?", studioID).Order("created_at").Find(&rows).Error
	if err != nil {
		return nil, storeErr(err)
	}
	out := make([]domain.Room, 0, len(rows))
	for _, m := range rows {
		out = append(out, toDomainRoom(m))
	}
	return out, nil
}

// SetDefault flips the default flag to the given room in one transaction,
// keeping the one-default-per-studio invariant.
func (r *RoomRepository) SetDefault(ctx context.Context, studioID, roomID string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&roomModel{}).Where("id = ? AND studio_id = ?", roomID, studioID).Update("is_default", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return tx.Model(&roomModel{}).
			Where("studio_id = ? AND id <> ?", studioID, roomID).
			Update("is_default", false).Error
	})
	if err != nil {
		return storeErr(err)
	}
	r.publish(ctx, studioID)
	return nil
}

func (r *RoomRepository) publish(ctx context.Context, studioID string) {
	if r.events == nil {
		return
	}
	if snapshot, err := r.ListByStudio(ctx, studioID); err == nil {
		r.events.Publish(stream.TopicRooms(studioID), snapshot)
	}
}

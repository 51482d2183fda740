package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"studiobook/internal/domain"
	"studiobook/internal/stream"
)

type StudioRepository struct {
	db     *gorm.DB
	events *stream.Broker
}

func NewStudioRepository(db *gorm.DB, events *stream.Broker) *StudioRepository {
	return &StudioRepository{db: db, events: events}
}

type studioModel struct {
	ID          string `gorm:"column:id;primaryKey"`
	OwnerID     string `gorm:"column:owner_id;index"`
	Name        string `gorm:"column:name"`
	Description *string `gorm:"column:description"`
	Address     *string `gorm:"column:address"`
	City        *string `gorm:"column:city"`

	Schedule            domain.OperatingSchedule `gorm:"column:schedule;serializer:json"`
	AutoApproveRequests bool                     `gorm:"column:auto_approve_requests"`
	ApprovedEngineerIDs []string                 `gorm:"column:approved_engineer_ids;serializer:json"`

	CreatedAt time.Time  `gorm:"column:created_at"`
	UpdatedAt time.Time  `gorm:"column:updated_at"`
	DeletedAt *time.Time `gorm:"column:deleted_at;index"`
}

func (studioModel) TableName() string { return "studios" }

func toStudioModel(s *domain.Studio) studioModel {
	m := studioModel{
		ID:                  s.ID,
		OwnerID:             s.OwnerID,
		Name:                s.Name,
		Schedule:            s.Schedule,
		AutoApproveRequests: s.AutoApproveRequests,
		ApprovedEngineerIDs: s.ApprovedEngineerIDs,
		CreatedAt:           s.CreatedAt,
		UpdatedAt:           s.UpdatedAt,
		DeletedAt:           s.DeletedAt,
	}
	if s.Description != "" {
		m.Description = &s.Description
	}
	if s.Address != "" {
		m.Address = &s.Address
	}
	if s.City != "" {
		m.City = &s.City
	}
	return m
}

func toDomainStudio(m studioModel) *domain.Studio {
	s := &domain.Studio{
		ID:                  m.ID,
		OwnerID:             m.OwnerID,
		Name:                m.Name,
		Schedule:            m.Schedule,
		AutoApproveRequests: m.AutoApproveRequests,
		ApprovedEngineerIDs: m.ApprovedEngineerIDs,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
		DeletedAt:           m.DeletedAt,
	}
	if m.Description != nil {
		s.Description = *m.Description
	}
	if m.Address != nil {
		s.Address = *m.Address
	}
	if m.City != nil {
		s.City = *m.City
	}
	return s
}

func (r *StudioRepository) Create(ctx context.Context, s *domain.Studio) error {
	m := toStudioModel(s)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return storeErr(err)
	}
	r.publish(ctx)
	return nil
}

func (r *StudioRepository) Update(ctx context.Context, s *domain.Studio) error {
	m := toStudioModel(s)
	res := r.db.WithContext(ctx).Model(&studioModel{}).Where("id = ?", m.ID).Select("*").Updates(m)
	if res.Error != nil {
		return storeErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	r.publish(ctx)
	return nil
}

func (r *StudioRepository) GetByID(ctx context.Context, id string) (*domain.Studio, error) {
	var m studioModel
	err := r.db.WithContext(ctx).Where("deleted_at IS NULL").First(&m, "id = ?", id).Error
	if err != nil {
		return nil, storeErr(err)
	}
	return toDomainStudio(m), nil
}

func (r *StudioRepository) List(ctx context.Context) ([]domain.Studio, error) {
	var rows []studioModel
	err := r.db.WithContext(ctx).Where("deleted_at IS NULL").Order("name").Find(&rows).Error
	if err != nil {
		return nil, storeErr(err)
	}
	out := make([]domain.Studio, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainStudio(m))
	}
	return out, nil
}

func (r *StudioRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Studio, error) {
	var rows []studioModel
	err := r.db.WithContext(ctx).Where("owner_id = ? AND deleted_at IS NULL", ownerID).Order("name").Find(&rows).Error
	if err != nil {
		return nil, storeErr(err)
	}
	out := make([]domain.Studio, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainStudio(m))
	}
	return out, nil
}

// publish pushes the full studio list; the open-times engine diffs it for
// approval-list membership changes.
func (r *StudioRepository) publish(ctx context.Context) {
	if r.events == nil {
		return
	}
	if snapshot, err := r.List(ctx); err == nil {
		r.events.Publish(stream.TopicStudios(), snapshot)
	}
}

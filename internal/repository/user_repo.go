package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"studiobook/internal/domain"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

type userModel struct {
	ID        string `gorm:"column:id;primaryKey"`
	Email     string `gorm:"column:email;uniqueIndex"`
	Role      string `gorm:"column:role;index"`
	Name      string `gorm:"column:name"`
	Phone     string `gorm:"column:phone"`
	AvatarURL string `gorm:"column:avatar_url"`

	EngineerSettings *domain.EngineerSettings `gorm:"column:engineer_settings;serializer:json"`

	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (userModel) TableName() string { return "users" }

func toUserModel(u *domain.User) userModel {
	return userModel{
		ID:               u.ID,
		Email:            u.Email,
		Role:             string(u.Role),
		Name:             u.Name,
		Phone:            u.Phone,
		AvatarURL:        u.AvatarURL,
		EngineerSettings: u.EngineerSettings,
		CreatedAt:        u.CreatedAt,
		UpdatedAt:        u.UpdatedAt,
	}
}

func toDomainUser(m userModel) domain.User {
	return domain.User{
		ID:               m.ID,
		Email:            m.Email,
		Role:             domain.ParseRole(m.Role),
		Name:             m.Name,
		Phone:            m.Phone,
		AvatarURL:        m.AvatarURL,
		EngineerSettings: m.EngineerSettings,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	m := toUserModel(u)
	return storeErr(r.db.WithContext(ctx).Create(&m).Error)
}

func (r *UserRepository) Update(ctx context.Context, u *domain.User) error {
	m := toUserModel(u)
	res := r.db.WithContext(ctx).Model(&userModel{}).Where("id = ?", m.ID).Select("*").Updates(&m)
	if res.Error != nil {
		return storeErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var m userModel
	err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error
	if err != nil {
		return nil, storeErr(err)
	}
	u := toDomainUser(m)
	return &u, nil
}

func (r *UserRepository) ListByIDs(ctx context.Context, ids []string) ([]domain.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []userModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, storeErr(err)
	}
	out := make([]domain.User, 0, len(rows))
	for _, m := range rows {
		out = append(out, toDomainUser(m))
	}
	return out, nil
}

func (r *UserRepository) ListEngineers(ctx context.Context) ([]domain.User, error) {
	var rows []userModel
	err := r.db.WithContext(ctx).
		Where("role = ?", string(domain.RoleEngineer)).
		Order("name").
		Find(&rows).Error
	if err != nil {
		return nil, storeErr(err)
	}
	out := make([]domain.User, 0, len(rows))
	for _, m := range rows {
		out = append(out, toDomainUser(m))
	}
	return out, nil
}

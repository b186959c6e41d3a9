package repositories

import (
	"errors"

	"encomendas_backend/internal/models"

	"gorm.io/gorm"
)

var ErrCondominiumNotFound = errors.New("condominium not found")

type CondominiumRepository interface {
	Create(db *gorm.DB, condominium *models.Condominium) error
	FindByID(db *gorm.DB, id string) (*models.Condominium, error)
	UpdateLabels(db *gorm.DB, id, groupLabel, unitLabel string) error
}

type CondominiumRepositoryImpl struct{}

func NewCondominiumRepository() CondominiumRepository {
	return &CondominiumRepositoryImpl{}
}

func (r *CondominiumRepositoryImpl) Create(db *gorm.DB, condominium *models.Condominium) error {
	return db.Create(condominium).Error
}

func (r *CondominiumRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.Condominium, error) {
	var condominium models.Condominium
	if err := db.Where("id = ?", id).First(&condominium).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCondominiumNotFound
		}
		return nil, err
	}
	return &condominium, nil
}

func (r *CondominiumRepositoryImpl) UpdateLabels(db *gorm.DB, id, groupLabel, unitLabel string) error {
	result := db.Model(&models.Condominium{}).
		Where("id = ?", id).
		Updates(map[string]any{"group_label": groupLabel, "unit_label": unitLabel})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCondominiumNotFound
	}
	return nil
}

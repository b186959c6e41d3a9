package repositories

import (
	"errors"
	"strings"

	"encomendas_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrResidentNotFound = errors.New("resident not found")
)

// ResidentFilter - фильтры списка жильцов
type ResidentFilter struct {
	Search          string // по имени, блоку или квартире
	Block           string
	IncludeInactive bool
	Limit           int
	Offset          int
}

type ResidentRepository interface {
	Create(db *gorm.DB, resident *models.Resident) error
	CreateBatch(db *gorm.DB, residents []models.Resident) error
	FindByID(db *gorm.DB, condominiumID, id string) (*models.Resident, error)
	FindActiveByCondominium(db *gorm.DB, condominiumID string) ([]models.Resident, error)
	List(db *gorm.DB, condominiumID string, filter ResidentFilter) ([]models.Resident, int64, error)
	FindUnitsByCondominium(db *gorm.DB, condominiumID string) ([]models.Resident, error)
	Update(db *gorm.DB, resident *models.Resident) error
	Deactivate(db *gorm.DB, condominiumID, id string) error
}

type ResidentRepositoryImpl struct{}

func NewResidentRepository() ResidentRepository {
	return &ResidentRepositoryImpl{}
}

func (r *ResidentRepositoryImpl) Create(db *gorm.DB, resident *models.Resident) error {
	return db.Create(resident).Error
}

func (r *ResidentRepositoryImpl) CreateBatch(db *gorm.DB, residents []models.Resident) error {
	if len(residents) == 0 {
		return nil
	}
	return db.CreateInBatches(residents, 100).Error
}

func (r *ResidentRepositoryImpl) FindByID(db *gorm.DB, condominiumID, id string) (*models.Resident, error) {
	var resident models.Resident
	err := db.Where("id = ? AND condominium_id = ?", id, condominiumID).First(&resident).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrResidentNotFound
		}
		return nil, err
	}
	return &resident, nil
}

// FindActiveByCondominium - снимок для сопоставления; порядок по имени определяет тай-брейк
func (r *ResidentRepositoryImpl) FindActiveByCondominium(db *gorm.DB, condominiumID string) ([]models.Resident, error) {
	var residents []models.Resident
	err := db.Where("condominium_id = ? AND is_active = ?", condominiumID, true).
		Order("full_name ASC").
		Find(&residents).Error
	return residents, err
}

func (r *ResidentRepositoryImpl) List(db *gorm.DB, condominiumID string, filter ResidentFilter) ([]models.Resident, int64, error) {
	query := db.Model(&models.Resident{}).Where("condominium_id = ?", condominiumID)

	if !filter.IncludeInactive {
		query = query.Where("is_active = ?", true)
	}
	if filter.Block != "" {
		query = query.Where("UPPER(block) = ?", strings.ToUpper(filter.Block))
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		like := "%" + s + "%"
		query = query.Where("full_name ILIKE ? OR block ILIKE ? OR apartment ILIKE ?", like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var residents []models.Resident
	query = query.Order("full_name ASC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit).Offset(filter.Offset)
	}
	if err := query.Find(&residents).Error; err != nil {
		return nil, 0, err
	}
	return residents, total, nil
}

// FindUnitsByCondominium - имя, блок и квартира всех жильцов (и неактивных) для проверки дублей при импорте
func (r *ResidentRepositoryImpl) FindUnitsByCondominium(db *gorm.DB, condominiumID string) ([]models.Resident, error) {
	var residents []models.Resident
	err := db.Select("full_name", "block", "apartment").
		Where("condominium_id = ?", condominiumID).
		Find(&residents).Error
	return residents, err
}

func (r *ResidentRepositoryImpl) Update(db *gorm.DB, resident *models.Resident) error {
	result := db.Model(resident).
		Where("condominium_id = ?", resident.CondominiumID).
		Select("full_name", "phone", "block", "apartment", "is_active", "updated_at").
		Updates(resident)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrResidentNotFound
	}
	return nil
}

// Deactivate - жильцов не удаляем: на них ссылаются старые посылки
func (r *ResidentRepositoryImpl) Deactivate(db *gorm.DB, condominiumID, id string) error {
	result := db.Model(&models.Resident{}).
		Where("id = ? AND condominium_id = ?", id, condominiumID).
		Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrResidentNotFound
	}
	return nil
}

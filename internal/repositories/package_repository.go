package repositories

import (
	"errors"
	"time"

	"encomendas_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrPackageNotFound   = errors.New("package not found")
	ErrPackageNotPending = errors.New("package is not pending")
)

// PackageFilter - фильтры списка посылок
type PackageFilter struct {
	Status     models.PackageStatus
	ResidentID string
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

// PackageStats - счетчики для панели портарии
type PackageStats struct {
	Pending            int64 `json:"pending"`
	PickedUpToday      int64 `json:"picked_up_today"`
	ReceivedToday      int64 `json:"received_today"`
	Total              int64 `json:"total"`
	UnconfirmedPickups int64 `json:"unconfirmed_pickups"`
}

// PickupUpdate - поля, которые выставляет подтверждение выдачи
type PickupUpdate struct {
	PickedUpAt    time.Time
	PickedUpBy    string
	SignatureData string
}

type PackageRepository interface {
	Create(db *gorm.DB, pkg *models.Package) error
	FindByID(db *gorm.DB, condominiumID, id string) (*models.Package, error)
	List(db *gorm.DB, condominiumID string, filter PackageFilter) ([]models.Package, int64, error)
	MarkPickedUp(db *gorm.DB, condominiumID, id string, update PickupUpdate) error
	SetPickupConfirmationSent(db *gorm.DB, id string, sent bool) error
	RecordConfirmationFailure(db *gorm.DB, id string, at time.Time) error
	FindPendingConfirmations(db *gorm.DB, filter ConfirmationFilter) ([]models.Package, error)
	GetStats(db *gorm.DB, condominiumID string, dayStart time.Time) (*PackageStats, error)
}

type PackageRepositoryImpl struct{}

func NewPackageRepository() PackageRepository {
	return &PackageRepositoryImpl{}
}

func (r *PackageRepositoryImpl) Create(db *gorm.DB, pkg *models.Package) error {
	return db.Create(pkg).Error
}

func (r *PackageRepositoryImpl) FindByID(db *gorm.DB, condominiumID, id string) (*models.Package, error) {
	var pkg models.Package
	err := db.Preload("Resident").
		Where("id = ? AND condominium_id = ?", id, condominiumID).
		First(&pkg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPackageNotFound
		}
		return nil, err
	}
	return &pkg, nil
}

// List - от новых к старым, с жильцом
func (r *PackageRepositoryImpl) List(db *gorm.DB, condominiumID string, filter PackageFilter) ([]models.Package, int64, error) {
	query := db.Model(&models.Package{}).Where("condominium_id = ?", condominiumID)

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.ResidentID != "" {
		query = query.Where("resident_id = ?", filter.ResidentID)
	}
	if filter.From != nil {
		query = query.Where("received_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("received_at < ?", *filter.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var packages []models.Package
	query = query.Preload("Resident").Order("received_at DESC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit).Offset(filter.Offset)
	}
	if err := query.Find(&packages).Error; err != nil {
		return nil, 0, err
	}
	return packages, total, nil
}

// MarkPickedUp меняет статус только у ожидающей посылки; вторая выдача получает ErrPackageNotPending
func (r *PackageRepositoryImpl) MarkPickedUp(db *gorm.DB, condominiumID, id string, update PickupUpdate) error {
	result := db.Model(&models.Package{}).
		Where("id = ? AND condominium_id = ? AND status = ?", id, condominiumID, models.PackageStatusPending).
		Updates(map[string]any{
			"status":         models.PackageStatusPickedUp,
			"picked_up_at":   update.PickedUpAt,
			"picked_up_by":   update.PickedUpBy,
			"signature_data": update.SignatureData,
			"updated_at":     time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPackageNotPending
	}
	return nil
}

func (r *PackageRepositoryImpl) SetPickupConfirmationSent(db *gorm.DB, id string, sent bool) error {
	return db.Model(&models.Package{}).
		Where("id = ?", id).
		Update("pickup_confirmation_sent", sent).Error
}

// RecordConfirmationFailure увеличивает счетчик неудачных отправок подтверждения
func (r *PackageRepositoryImpl) RecordConfirmationFailure(db *gorm.DB, id string, at time.Time) error {
	return db.Model(&models.Package{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"confirmation_attempts": gorm.Expr("confirmation_attempts + 1"),
			"last_attempt_at":       at,
		}).Error
}

// ConfirmationFilter - какие неотправленные подтверждения брать в повтор
type ConfirmationFilter struct {
	MaxAttempts int       // после стольких неудач посылка больше не берется
	RetryBefore time.Time // последняя попытка не позже этого момента
	Limit       int
}

// FindPendingConfirmations - выданные посылки без отправленного подтверждения у жильцов с телефоном.
// Сначала посылки с меньшим числом попыток, чтобы постоянные ошибки не занимали всю пачку.
func (r *PackageRepositoryImpl) FindPendingConfirmations(db *gorm.DB, filter ConfirmationFilter) ([]models.Package, error) {
	var packages []models.Package
	err := db.Preload("Resident").
		Joins("JOIN residents ON residents.id = packages.resident_id").
		Where("packages.status = ? AND packages.pickup_confirmation_sent = ?", models.PackageStatusPickedUp, false).
		Where("packages.confirmation_attempts < ?", filter.MaxAttempts).
		Where("packages.last_attempt_at IS NULL OR packages.last_attempt_at <= ?", filter.RetryBefore).
		Where("residents.phone IS NOT NULL AND residents.phone <> ''").
		Order("packages.confirmation_attempts ASC, packages.picked_up_at ASC").
		Limit(filter.Limit).
		Find(&packages).Error
	return packages, err
}

func (r *PackageRepositoryImpl) GetStats(db *gorm.DB, condominiumID string, dayStart time.Time) (*PackageStats, error) {
	var stats PackageStats
	err := db.Model(&models.Package{}).
		Select(`COUNT(*) FILTER (WHERE status = ?) AS pending,
			COUNT(*) FILTER (WHERE status = ? AND picked_up_at >= ?) AS picked_up_today,
			COUNT(*) FILTER (WHERE received_at >= ?) AS received_today,
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE status = ? AND pickup_confirmation_sent = false AND resident_id IS NOT NULL) AS unconfirmed_pickups`,
			models.PackageStatusPending, models.PackageStatusPickedUp, dayStart, dayStart, models.PackageStatusPickedUp).
		Where("condominium_id = ?", condominiumID).
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

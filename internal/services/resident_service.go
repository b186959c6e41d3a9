package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"encomendas_backend/internal/algorithms"
	"encomendas_backend/internal/cache"
	"encomendas_backend/internal/logger"
	"encomendas_backend/internal/models"
	"encomendas_backend/internal/repositories"
	"encomendas_backend/internal/services/dto"
	"encomendas_backend/internal/validator"
	"encomendas_backend/pkg/apperrors"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Колонки таблицы импорта и их допустимые заголовки
const (
	importColName      = "name"
	importColPhone     = "phone"
	importColBlock     = "block"
	importColApartment = "apartment"
)

var importHeaderAliases = map[string]string{
	"nome":        importColName,
	"name":        importColName,
	"morador":     importColName,
	"telefone":    importColPhone,
	"phone":       importColPhone,
	"celular":     importColPhone,
	"whatsapp":    importColPhone,
	"bloco":       importColBlock,
	"block":       importColBlock,
	"torre":       importColBlock,
	"apartamento": importColApartment,
	"apartment":   importColApartment,
	"apto":        importColApartment,
	"unidade":     importColApartment,
}

type ResidentService interface {
	CreateResident(ctx context.Context, db *gorm.DB, condominiumID string, req *dto.CreateResidentRequest) (*models.Resident, error)
	GetResident(ctx context.Context, db *gorm.DB, condominiumID, id string) (*models.Resident, error)
	ListResidents(ctx context.Context, db *gorm.DB, condominiumID string, query *dto.ResidentListQuery) (*dto.ResidentListResponse, error)
	UpdateResident(ctx context.Context, db *gorm.DB, condominiumID, id string, req *dto.UpdateResidentRequest) (*models.Resident, error)
	DeactivateResident(ctx context.Context, db *gorm.DB, condominiumID, id string) error
	ImportResidents(ctx context.Context, db *gorm.DB, condominiumID string, file io.Reader) (*dto.ImportResult, error)

	// ActiveResidents - снимок активных жильцов для сопоставления этикеток (сначала кэш)
	ActiveResidents(ctx context.Context, db *gorm.DB, condominiumID string) ([]models.Resident, error)
}

type residentService struct {
	residentRepo repositories.ResidentRepository
	cache        cache.ResidentCache
}

func NewResidentService(residentRepo repositories.ResidentRepository, residentCache cache.ResidentCache) ResidentService {
	if residentCache == nil {
		residentCache = cache.NoopResidentCache{}
	}
	return &residentService{
		residentRepo: residentRepo,
		cache:        residentCache,
	}
}

func (s *residentService) CreateResident(ctx context.Context, db *gorm.DB, condominiumID string, req *dto.CreateResidentRequest) (*models.Resident, error) {
	resident := &models.Resident{
		FullName:      strings.TrimSpace(req.FullName),
		Phone:         normalizePhone(req.Phone),
		Block:         strings.TrimSpace(req.Block),
		Apartment:     strings.TrimSpace(req.Apartment),
		IsActive:      true,
		CondominiumID: condominiumID,
	}

	if err := s.residentRepo.Create(db, resident); err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	s.invalidate(ctx, condominiumID)
	logger.CtxInfo(ctx, "resident created", "resident_id", resident.ID)
	return resident, nil
}

func (s *residentService) GetResident(ctx context.Context, db *gorm.DB, condominiumID, id string) (*models.Resident, error) {
	resident, err := s.residentRepo.FindByID(db, condominiumID, id)
	if err != nil {
		return nil, mapResidentError(err)
	}
	return resident, nil
}

func (s *residentService) ListResidents(ctx context.Context, db *gorm.DB, condominiumID string, query *dto.ResidentListQuery) (*dto.ResidentListResponse, error) {
	page, pageSize := normalizePage(query.Page, query.PageSize)

	residents, total, err := s.residentRepo.List(db, condominiumID, repositories.ResidentFilter{
		Search:          query.Search,
		Block:           query.Block,
		IncludeInactive: query.IncludeInactive,
		Limit:           pageSize,
		Offset:          (page - 1) * pageSize,
	})
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	if residents == nil {
		residents = []models.Resident{}
	}

	return &dto.ResidentListResponse{
		Residents:  residents,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages(total, pageSize),
	}, nil
}

func (s *residentService) UpdateResident(ctx context.Context, db *gorm.DB, condominiumID, id string, req *dto.UpdateResidentRequest) (*models.Resident, error) {
	resident, err := s.residentRepo.FindByID(db, condominiumID, id)
	if err != nil {
		return nil, mapResidentError(err)
	}

	if req.FullName != nil {
		resident.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Phone != nil {
		resident.Phone = normalizePhone(req.Phone)
	}
	if req.Block != nil {
		resident.Block = strings.TrimSpace(*req.Block)
	}
	if req.Apartment != nil {
		resident.Apartment = strings.TrimSpace(*req.Apartment)
	}
	if req.IsActive != nil {
		resident.IsActive = *req.IsActive
	}

	if err := s.residentRepo.Update(db, resident); err != nil {
		return nil, mapResidentError(err)
	}

	s.invalidate(ctx, condominiumID)
	return resident, nil
}

func (s *residentService) DeactivateResident(ctx context.Context, db *gorm.DB, condominiumID, id string) error {
	if err := s.residentRepo.Deactivate(db, condominiumID, id); err != nil {
		return mapResidentError(err)
	}
	s.invalidate(ctx, condominiumID)
	logger.CtxInfo(ctx, "resident deactivated", "resident_id", id)
	return nil
}

// ImportResidents читает первый лист xlsx. Первая строка - заголовок (nome, telefone, bloco, apartamento).
// Пустые строки пропускаются молча, дубли (в файле или в базе) считаются в Skipped.
func (s *residentService) ImportResidents(ctx context.Context, db *gorm.DB, condominiumID string, file io.Reader) (*dto.ImportResult, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, apperrors.ErrInvalidOperation("resident", "File is not a valid xlsx spreadsheet").WithError(err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperrors.ErrInvalidOperation("resident", "Spreadsheet has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, apperrors.ErrInvalidOperation("resident", "Failed to read spreadsheet rows").WithError(err)
	}

	result := &dto.ImportResult{Errors: []dto.ImportRowError{}}
	if len(rows) == 0 {
		return result, nil
	}

	columns := importColumns(rows[0])
	if _, ok := columns[importColName]; !ok {
		return nil, apperrors.ErrInvalidOperation("resident", "Spreadsheet must have a \"nome\" column")
	}
	if _, ok := columns[importColApartment]; !ok {
		return nil, apperrors.ErrInvalidOperation("resident", "Spreadsheet must have an \"apartamento\" column")
	}

	existing, err := s.residentRepo.FindUnitsByCondominium(db, condominiumID)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	// ключи из базы и из уже прочитанных строк сравниваются одинаково
	seen := make(map[string]struct{}, len(existing)+len(rows))
	for _, r := range existing {
		seen[importKey(r.FullName, r.Block, r.Apartment)] = struct{}{}
	}
	batch := make([]models.Resident, 0, len(rows)-1)

	for i := 1; i < len(rows); i++ {
		rowNum := i + 1
		cell := func(col string) string {
			idx, ok := columns[col]
			if !ok || idx >= len(rows[i]) {
				return ""
			}
			return strings.TrimSpace(rows[i][idx])
		}

		name, phone, block, apartment := cell(importColName), cell(importColPhone), cell(importColBlock), cell(importColApartment)
		if name == "" && phone == "" && block == "" && apartment == "" {
			continue
		}

		switch {
		case name == "":
			result.Errors = append(result.Errors, dto.ImportRowError{Row: rowNum, Message: "nome é obrigatório"})
			continue
		case apartment == "":
			result.Errors = append(result.Errors, dto.ImportRowError{Row: rowNum, Message: "apartamento é obrigatório"})
			continue
		case phone != "" && !validator.IsPhone(phone):
			result.Errors = append(result.Errors, dto.ImportRowError{Row: rowNum, Message: fmt.Sprintf("telefone inválido: %s", phone)})
			continue
		}

		key := importKey(name, block, apartment)
		if _, dup := seen[key]; dup {
			result.Skipped++
			continue
		}
		seen[key] = struct{}{}

		batch = append(batch, models.Resident{
			FullName:      name,
			Phone:         normalizePhone(&phone),
			Block:         block,
			Apartment:     apartment,
			IsActive:      true,
			CondominiumID: condominiumID,
		})
	}

	if err := s.residentRepo.CreateBatch(db, batch); err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	result.Created = len(batch)

	if result.Created > 0 {
		s.invalidate(ctx, condominiumID)
	}
	logger.CtxInfo(ctx, "residents imported",
		"created", result.Created,
		"skipped", result.Skipped,
		"errors", len(result.Errors),
	)
	return result, nil
}

func (s *residentService) ActiveResidents(ctx context.Context, db *gorm.DB, condominiumID string) ([]models.Resident, error) {
	residents, ok, err := s.cache.Get(ctx, condominiumID)
	if err != nil {
		logger.CtxWarn(ctx, "resident cache read failed", "error", err.Error())
	}
	if ok {
		return residents, nil
	}

	residents, err = s.residentRepo.FindActiveByCondominium(db, condominiumID)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	if err := s.cache.Set(ctx, condominiumID, residents); err != nil {
		logger.CtxWarn(ctx, "resident cache write failed", "error", err.Error())
	}
	return residents, nil
}

func (s *residentService) invalidate(ctx context.Context, condominiumID string) {
	if err := s.cache.Invalidate(ctx, condominiumID); err != nil {
		logger.CtxWarn(ctx, "resident cache invalidation failed", "error", err.Error())
	}
}

// importColumns сопоставляет заголовки (без регистра и акцентов) с колонками
func importColumns(header []string) map[string]int {
	columns := make(map[string]int)
	for i, h := range header {
		col, ok := importHeaderAliases[algorithms.NormalizeText(h)]
		if !ok {
			continue
		}
		if _, taken := columns[col]; !taken {
			columns[col] = i
		}
	}
	return columns
}

// importKey: имя без акцентов и регистра, блок в верхнем регистре, квартира без ведущих нулей
func importKey(name, block, apartment string) string {
	return strings.Join(strings.Fields(algorithms.NormalizeText(name)), " ") + "|" +
		strings.ToUpper(strings.TrimSpace(block)) + "|" +
		algorithms.NormalizeApartment(apartment)
}

func normalizePhone(phone *string) *string {
	if phone == nil {
		return nil
	}
	p := strings.TrimSpace(*phone)
	if p == "" {
		return nil
	}
	return &p
}

func mapResidentError(err error) error {
	if errors.Is(err, repositories.ErrResidentNotFound) {
		return apperrors.ErrResidentNotFound
	}
	return apperrors.DatabaseError(err)
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}

func totalPages(total int64, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}

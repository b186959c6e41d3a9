package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"strings"
	"time"

	"encomendas_backend/internal/imageprocessor"
	"encomendas_backend/internal/logger"
	"encomendas_backend/internal/messaging"
	"encomendas_backend/internal/metrics"
	"encomendas_backend/internal/models"
	"encomendas_backend/internal/repositories"
	"encomendas_backend/internal/services/dto"
	"encomendas_backend/internal/storage"
	"encomendas_backend/internal/utils"
	"encomendas_backend/pkg/apperrors"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	defaultRegisteredBy = "Portaria"
	defaultPickedUpBy   = "Morador"

	// после стольких неудачных отправок подтверждение больше не повторяется
	maxConfirmationAttempts = 5
	confirmationRetryDelay  = 15 * time.Minute
)

// EventPublisher рассылает события посылок клиентам портарии (websocket hub)
type EventPublisher interface {
	Publish(event dto.PackageEvent)
}

type PackageService interface {
	RegisterPackage(ctx context.Context, db *gorm.DB, input *dto.RegisterPackageInput) (*dto.RegisterPackageResponse, error)
	ListPackages(ctx context.Context, db *gorm.DB, condominiumID string, query *dto.PackageListQuery) (*dto.PackageListResponse, error)
	GetPackage(ctx context.Context, db *gorm.DB, condominiumID, id string) (*dto.PackageResponse, error)
	ConfirmPickup(ctx context.Context, db *gorm.DB, condominiumID, id string, req *dto.ConfirmPickupRequest) (*dto.ConfirmPickupResponse, error)
	GetStats(ctx context.Context, db *gorm.DB, condominiumID string) (*repositories.PackageStats, error)
	ExportReport(ctx context.Context, db *gorm.DB, condominiumID string, query *dto.ReportQuery) ([]byte, error)

	// RetryPickupConfirmations повторяет подтверждения выдачи, которые не ушли сразу. Возвращает число отправленных.
	RetryPickupConfirmations(ctx context.Context, db *gorm.DB, limit int) (int, error)
}

// PackageServiceConfig - зависимости PackageService
type PackageServiceConfig struct {
	PackageRepo     repositories.PackageRepository
	ResidentRepo    repositories.ResidentRepository
	CondominiumRepo repositories.CondominiumRepository
	Storage         storage.Storage
	Bucket          string
	SignedURLTTL    time.Duration
	Processor       *imageprocessor.Processor
	Messenger       messaging.Provider // nil - уведомления выключены
	Publisher       EventPublisher
	Metrics         *metrics.Metrics
}

type packageService struct {
	packageRepo     repositories.PackageRepository
	residentRepo    repositories.ResidentRepository
	condominiumRepo repositories.CondominiumRepository
	storage         storage.Storage
	bucket          string
	signedURLTTL    time.Duration
	processor       *imageprocessor.Processor
	messenger       messaging.Provider
	publisher       EventPublisher
	metrics         *metrics.Metrics
	now             func() time.Time
}

func NewPackageService(cfg PackageServiceConfig) PackageService {
	ttl := cfg.SignedURLTTL
	if ttl <= 0 {
		ttl = storage.DefaultSignedURLTTL
	}
	return &packageService{
		packageRepo:     cfg.PackageRepo,
		residentRepo:    cfg.ResidentRepo,
		condominiumRepo: cfg.CondominiumRepo,
		storage:         cfg.Storage,
		bucket:          cfg.Bucket,
		signedURLTTL:    ttl,
		processor:       cfg.Processor,
		messenger:       cfg.Messenger,
		publisher:       cfg.Publisher,
		metrics:         cfg.Metrics,
		now:             time.Now,
	}
}

// RegisterPackage: фото -> хранилище (оригинал и публичная версия) -> запись -> WhatsApp жильцу -> событие.
// Ошибка уведомления не отменяет регистрацию.
func (s *packageService) RegisterPackage(ctx context.Context, db *gorm.DB, input *dto.RegisterPackageInput) (*dto.RegisterPackageResponse, error) {
	req := input.Request

	var resident *models.Resident
	if req.ResidentID != nil && *req.ResidentID != "" {
		r, err := s.residentRepo.FindByID(db, input.CondominiumID, *req.ResidentID)
		if err != nil {
			return nil, mapResidentError(err)
		}
		resident = r
	}

	img, err := s.processor.Decode(bytes.NewReader(input.Photo))
	if err != nil {
		return nil, apperrors.ErrImageInvalid.WithError(err)
	}
	photo, err := s.processor.ProcessImage(img)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	photoKey := storage.PackagePhotoKey(input.CondominiumID, photo.FileName)
	if err := s.storage.Save(ctx, photoKey, bytes.NewReader(photo.Data), photo.ContentType()); err != nil {
		return nil, apperrors.ErrExternalService(err, "storage", "Failed to upload package photo")
	}

	suggestion := parseSuggestion(req.AISuggestion)
	var regions []models.SensitiveRegion
	if suggestion != nil {
		regions = suggestion.SensitiveRegions
	}
	publicKey := s.savePublicVariant(ctx, input.CondominiumID, img, regions)

	pkg := &models.Package{
		ResidentID:    residentID(resident),
		PhotoURL:      photoKey,
		Carrier:       trimmedOrNil(req.Carrier),
		OCRRawText:    trimmedOrNil(req.OCRRawText),
		MatchScore:    req.MatchScore,
		Notes:         trimmedOrNil(req.Notes),
		Status:        models.PackageStatusPending,
		ReceivedBy:    input.ReceivedBy,
		ReceivedAt:    s.now(),
		CondominiumID: input.CondominiumID,
	}
	if publicKey != "" {
		pkg.PublicPhotoURL = &publicKey
	}
	if suggestion != nil {
		pkg.AISuggestion = datatypes.JSON(req.AISuggestion)
	}
	if pkg.Carrier == nil && suggestion != nil && suggestion.Carrier != "" {
		carrier := strings.TrimSpace(suggestion.Carrier.String())
		pkg.Carrier = &carrier
	}

	if err := s.packageRepo.Create(db, pkg); err != nil {
		s.removeObjects(ctx, photoKey, publicKey)
		return nil, apperrors.DatabaseError(err)
	}
	pkg.Resident = resident

	s.metrics.IncPackagesRegistered()
	logger.CtxInfo(ctx, "package registered",
		"package_id", pkg.ID,
		"resident_id", pkg.ResidentID,
		"match_score", pkg.MatchScore,
	)

	resp := &dto.RegisterPackageResponse{}
	if resident.HasPhone() && s.messenger != nil {
		registeredBy := strings.TrimSpace(input.ReceivedByName)
		if registeredBy == "" {
			registeredBy = defaultRegisteredBy
		}
		sid, err := s.messenger.SendArrival(ctx, messaging.ArrivalNotice{
			Phone:        *resident.Phone,
			ResidentName: resident.FullName,
			RegisteredBy: registeredBy,
		})
		s.metrics.IncMessage(messaging.KindArrival, err)
		logger.MessagingLog(messaging.KindArrival, *resident.Phone, sid, err)
		if err == nil {
			resp.NotificationSent = true
			resp.NotificationSID = sid
		}
	}

	s.publish(dto.EventPackageRegistered, pkg)
	resp.Package = s.toResponse(ctx, pkg)
	return resp, nil
}

func (s *packageService) ListPackages(ctx context.Context, db *gorm.DB, condominiumID string, query *dto.PackageListQuery) (*dto.PackageListResponse, error) {
	page, pageSize := normalizePage(query.Page, query.PageSize)

	filter := repositories.PackageFilter{
		Status:     models.PackageStatus(query.Status),
		ResidentID: query.ResidentID,
		Limit:      pageSize,
		Offset:     (page - 1) * pageSize,
	}
	from, to, err := parseRange(query.From, query.To)
	if err != nil {
		return nil, err
	}
	filter.From, filter.To = from, to

	packages, total, err := s.packageRepo.List(db, condominiumID, filter)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	items := make([]dto.PackageResponse, 0, len(packages))
	for i := range packages {
		items = append(items, s.toResponse(ctx, &packages[i]))
	}

	return &dto.PackageListResponse{
		Packages:   items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages(total, pageSize),
	}, nil
}

func (s *packageService) GetPackage(ctx context.Context, db *gorm.DB, condominiumID, id string) (*dto.PackageResponse, error) {
	pkg, err := s.packageRepo.FindByID(db, condominiumID, id)
	if err != nil {
		return nil, mapPackageError(err)
	}
	resp := s.toResponse(ctx, pkg)
	return &resp, nil
}

func (s *packageService) ConfirmPickup(ctx context.Context, db *gorm.DB, condominiumID, id string, req *dto.ConfirmPickupRequest) (*dto.ConfirmPickupResponse, error) {
	signature := strings.TrimSpace(req.SignatureData)
	if signature == "" {
		return nil, apperrors.ErrSignatureRequired
	}

	pkg, err := s.packageRepo.FindByID(db, condominiumID, id)
	if err != nil {
		return nil, mapPackageError(err)
	}
	if !pkg.IsPending() {
		return nil, apperrors.ErrPackageAlreadyPickedUp
	}

	pickedUpBy := defaultPickedUpBy
	if pkg.Resident != nil && strings.TrimSpace(pkg.Resident.FullName) != "" {
		pickedUpBy = pkg.Resident.FullName
	}
	pickedUpAt := s.now()

	if err := s.packageRepo.MarkPickedUp(db, condominiumID, id, repositories.PickupUpdate{
		PickedUpAt:    pickedUpAt,
		PickedUpBy:    pickedUpBy,
		SignatureData: signature,
	}); err != nil {
		return nil, mapPackageError(err)
	}

	pkg.Status = models.PackageStatusPickedUp
	pkg.PickedUpAt = &pickedUpAt
	pkg.PickedUpBy = &pickedUpBy
	pkg.SignatureData = &signature

	s.metrics.IncPickups()
	logger.CtxInfo(ctx, "package picked up", "package_id", pkg.ID)

	resp := &dto.ConfirmPickupResponse{}
	if s.sendPickupConfirmation(ctx, db, pkg) {
		pkg.PickupConfirmationSent = true
		resp.ConfirmationSent = true
	}

	s.publish(dto.EventPackagePickedUp, pkg)
	resp.Package = s.toResponse(ctx, pkg)
	return resp, nil
}

func (s *packageService) GetStats(ctx context.Context, db *gorm.DB, condominiumID string) (*repositories.PackageStats, error) {
	stats, err := s.packageRepo.GetStats(db, condominiumID, utils.StartOfDay(s.now()))
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	return stats, nil
}

func (s *packageService) ExportReport(ctx context.Context, db *gorm.DB, condominiumID string, query *dto.ReportQuery) ([]byte, error) {
	from, to, err := parseRange(query.From, query.To)
	if err != nil {
		return nil, err
	}

	condominium, err := s.condominiumRepo.FindByID(db, condominiumID)
	if err != nil {
		if errors.Is(err, repositories.ErrCondominiumNotFound) {
			return nil, apperrors.ErrCondominiumNotFound
		}
		return nil, apperrors.DatabaseError(err)
	}

	packages, _, err := s.packageRepo.List(db, condominiumID, repositories.PackageFilter{From: from, To: to})
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	data, err := buildPackageReport(condominium, packages)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "package report exported", "rows", len(packages))
	return data, nil
}

func (s *packageService) RetryPickupConfirmations(ctx context.Context, db *gorm.DB, limit int) (int, error) {
	if s.messenger == nil {
		return 0, nil
	}

	packages, err := s.packageRepo.FindPendingConfirmations(db, repositories.ConfirmationFilter{
		MaxAttempts: maxConfirmationAttempts,
		RetryBefore: s.now().Add(-confirmationRetryDelay),
		Limit:       limit,
	})
	if err != nil {
		return 0, apperrors.DatabaseError(err)
	}

	sent := 0
	for i := range packages {
		if ctx.Err() != nil {
			return sent, ctx.Err()
		}
		if s.sendPickupConfirmation(ctx, db, &packages[i]) {
			sent++
		}
	}
	return sent, nil
}

// sendPickupConfirmation отправляет подтверждение и отмечает его в базе
func (s *packageService) sendPickupConfirmation(ctx context.Context, db *gorm.DB, pkg *models.Package) bool {
	if s.messenger == nil || !pkg.Resident.HasPhone() {
		return false
	}

	pickedUpAt := s.now()
	if pkg.PickedUpAt != nil {
		pickedUpAt = *pkg.PickedUpAt
	}

	phone := *pkg.Resident.Phone
	sid, err := s.messenger.SendPickupConfirmation(ctx, messaging.PickupNotice{
		Phone:        phone,
		ResidentName: pkg.Resident.FullName,
		PickedUpAt:   pickedUpAt,
	})
	s.metrics.IncMessage(messaging.KindPickup, err)
	logger.MessagingLog(messaging.KindPickup, phone, sid, err)
	if err != nil {
		if recErr := s.packageRepo.RecordConfirmationFailure(db, pkg.ID, s.now()); recErr != nil {
			logger.CtxWithError(ctx, "failed to record pickup confirmation attempt", recErr, "package_id", pkg.ID)
		}
		return false
	}

	if err := s.packageRepo.SetPickupConfirmationSent(db, pkg.ID, true); err != nil {
		logger.CtxWithError(ctx, "failed to mark pickup confirmation", err, "package_id", pkg.ID)
	}
	return true
}

func (s *packageService) savePublicVariant(ctx context.Context, condominiumID string, img image.Image, regions []models.SensitiveRegion) string {
	public, err := s.processor.PublicVariant(img, regions)
	if err != nil {
		logger.CtxWithError(ctx, "failed to build public photo", err)
		return ""
	}
	key := storage.PublicPhotoKey(condominiumID, public.FileName)
	if err := s.storage.Save(ctx, key, bytes.NewReader(public.Data), public.ContentType()); err != nil {
		logger.CtxWithError(ctx, "failed to upload public photo", err)
		return ""
	}
	return key
}

func (s *packageService) removeObjects(ctx context.Context, keys ...string) {
	for _, key := range keys {
		if key == "" {
			continue
		}
		if err := s.storage.Delete(ctx, key); err != nil {
			logger.CtxWarn(ctx, "failed to remove orphan photo", "key", key, "error", err.Error())
		}
	}
}

func (s *packageService) toResponse(ctx context.Context, pkg *models.Package) dto.PackageResponse {
	resp := dto.PackageResponse{Package: *pkg}
	resp.PhotoSignedURL = s.signedURL(ctx, pkg.PhotoURL)
	if pkg.PublicPhotoURL != nil {
		resp.PublicPhotoSignedURL = s.signedURL(ctx, *pkg.PublicPhotoURL)
	}
	return resp
}

func (s *packageService) signedURL(ctx context.Context, ref string) string {
	if ref == "" {
		return ""
	}
	url, err := s.storage.GetSignedURL(ctx, storage.ObjectPath(s.bucket, ref), s.signedURLTTL)
	if err != nil {
		logger.CtxWarn(ctx, "failed to sign photo url", "error", err.Error())
		return ""
	}
	return url
}

func (s *packageService) publish(eventType string, pkg *models.Package) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(dto.PackageEvent{
		Type:          eventType,
		CondominiumID: pkg.CondominiumID,
		PackageID:     pkg.ID,
		ResidentID:    pkg.ResidentID,
		Status:        pkg.Status,
		At:            s.now(),
	})
}

// parseSuggestion - подсказка уже прошла проверку как JSON; мусор просто игнорируем
func parseSuggestion(raw string) *models.LabelSuggestion {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var suggestion models.LabelSuggestion
	if err := json.Unmarshal([]byte(raw), &suggestion); err != nil {
		return nil
	}
	return &suggestion
}

// parseRange: даты вида 2006-01-02 включают весь день (по Сан-Паулу)
func parseRange(fromRaw, toRaw string) (*time.Time, *time.Time, error) {
	var from, to *time.Time
	if fromRaw != "" {
		t, err := utils.ParseDate(fromRaw)
		if err != nil {
			return nil, nil, apperrors.NewBadRequestError("Invalid 'from' date, expected YYYY-MM-DD")
		}
		from = &t
	}
	if toRaw != "" {
		t, err := utils.ParseDate(toRaw)
		if err != nil {
			return nil, nil, apperrors.NewBadRequestError("Invalid 'to' date, expected YYYY-MM-DD")
		}
		if len(toRaw) == len("2006-01-02") {
			t = t.AddDate(0, 0, 1)
		}
		to = &t
	}
	if from != nil && to != nil && !from.Before(*to) {
		return nil, nil, apperrors.NewBadRequestError("'from' must be before 'to'")
	}
	return from, to, nil
}

func mapPackageError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrPackageNotFound):
		return apperrors.ErrPackageNotFound
	case errors.Is(err, repositories.ErrPackageNotPending):
		return apperrors.ErrPackageAlreadyPickedUp
	default:
		return apperrors.DatabaseError(err)
	}
}

func residentID(r *models.Resident) *string {
	if r == nil {
		return nil
	}
	id := r.ID
	return &id
}

func trimmedOrNil(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}

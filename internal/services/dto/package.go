package dto

import (
	"time"

	"encomendas_backend/internal/models"
)

// RegisterPackageRequest - поля multipart формы регистрации (фото идет отдельным файлом "photo")
type RegisterPackageRequest struct {
	ResidentID   *string `form:"resident_id" validate:"omitempty,uuid"`
	Carrier      *string `form:"carrier" validate:"omitempty,max=80"`
	Notes        *string `form:"notes" validate:"omitempty,max=500"`
	OCRRawText   *string `form:"ocr_raw_text" validate:"omitempty,max=20000"`
	AISuggestion string  `form:"ai_suggestion" validate:"omitempty,json"`
	MatchScore   int     `form:"match_score" validate:"min=0"`
}

// RegisterPackageInput - все, что нужно сервису для регистрации
type RegisterPackageInput struct {
	Request        RegisterPackageRequest
	Photo          []byte
	CondominiumID  string
	ReceivedBy     string // id сотрудника
	ReceivedByName string // имя для уведомления, по умолчанию "Portaria"
}

type PackageListQuery struct {
	Status     string `form:"status" validate:"omitempty,is-package-status"`
	ResidentID string `form:"resident_id" validate:"omitempty,uuid"`
	From       string `form:"from"`
	To         string `form:"to"`
	Page       int    `form:"page" validate:"omitempty,min=1"`
	PageSize   int    `form:"page_size" validate:"omitempty,min=1,max=100"`
}

// PackageResponse - посылка с временными ссылками на фото
type PackageResponse struct {
	models.Package
	PhotoSignedURL       string `json:"photo_signed_url,omitempty"`
	PublicPhotoSignedURL string `json:"public_photo_signed_url,omitempty"`
}

type PackageListResponse struct {
	Packages   []PackageResponse `json:"packages"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	TotalPages int               `json:"total_pages"`
}

type RegisterPackageResponse struct {
	Package          PackageResponse `json:"package"`
	NotificationSent bool            `json:"notification_sent"`
	NotificationSID  string          `json:"notification_sid,omitempty"`
}

type ConfirmPickupRequest struct {
	SignatureData string `json:"signature_data" validate:"required,max=2000000"`
}

type ConfirmPickupResponse struct {
	Package          PackageResponse `json:"package"`
	ConfirmationSent bool            `json:"confirmation_sent"`
}

type ReportQuery struct {
	From string `form:"from" validate:"required"`
	To   string `form:"to" validate:"required"`
}

// Типы событий realtime-ленты
const (
	EventPackageRegistered = "package.registered"
	EventPackagePickedUp   = "package.picked_up"
)

// PackageEvent - событие для клиентов портарии одного кондоминиума
type PackageEvent struct {
	Type          string               `json:"type"`
	CondominiumID string               `json:"-"`
	PackageID     string               `json:"package_id"`
	ResidentID    *string              `json:"resident_id,omitempty"`
	Status        models.PackageStatus `json:"status"`
	At            time.Time            `json:"at"`
}

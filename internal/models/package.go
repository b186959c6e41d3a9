package models

import (
	"time"

	"gorm.io/datatypes"
)

// Package - посылка, принятая на проходной
type Package struct {
	BaseModel
	ResidentID             *string        `gorm:"type:uuid;index" json:"resident_id"`
	Resident               *Resident      `gorm:"foreignKey:ResidentID" json:"resident,omitempty"`
	PhotoURL               string         `gorm:"not null" json:"photo_url"`
	PublicPhotoURL         *string        `json:"public_photo_url,omitempty"`
	Carrier                *string        `json:"carrier,omitempty"`
	OCRRawText             *string        `gorm:"column:ocr_raw_text" json:"ocr_raw_text,omitempty"`
	AISuggestion           datatypes.JSON `gorm:"type:jsonb" json:"ai_suggestion,omitempty"`
	MatchScore             int            `gorm:"default:0" json:"match_score"`
	Notes                  *string        `json:"notes,omitempty"`
	Status                 PackageStatus  `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	ReceivedBy             string         `gorm:"type:uuid;not null" json:"received_by"`
	ReceivedAt             time.Time      `gorm:"default:now();index" json:"received_at"`
	PickedUpAt             *time.Time     `json:"picked_up_at,omitempty"`
	PickedUpBy             *string        `json:"picked_up_by,omitempty"`
	SignatureData          *string        `json:"signature_data,omitempty"`
	PickupConfirmationSent bool           `gorm:"default:false" json:"pickup_confirmation_sent"`
	ConfirmationAttempts   int            `gorm:"default:0" json:"confirmation_attempts"`
	LastAttemptAt          *time.Time     `json:"last_attempt_at,omitempty"`
	CondominiumID          string         `gorm:"type:uuid;not null;index" json:"condominium_id"`
}

func (p *Package) IsPending() bool {
	return p.Status == PackageStatusPending
}

func (Package) TableName() string { return "packages" }

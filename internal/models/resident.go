package models

type Resident struct {
	BaseModel
	FullName      string  `gorm:"not null;index" json:"full_name"`
	Phone         *string `gorm:"type:varchar(32)" json:"phone,omitempty"`
	Block         string  `gorm:"type:varchar(40)" json:"block"`
	Apartment     string  `gorm:"type:varchar(40)" json:"apartment"`
	IsActive      bool    `gorm:"default:true;index" json:"is_active"`
	CondominiumID string  `gorm:"type:uuid;not null;index" json:"condominium_id"`
}

// HasPhone - есть ли у жильца номер для уведомлений
func (r *Resident) HasPhone() bool {
	return r != nil && r.Phone != nil && *r.Phone != ""
}

func (Resident) TableName() string { return "residents" }

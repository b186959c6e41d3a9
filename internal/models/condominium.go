package models

const (
	DefaultGroupLabel = "Bloco"
	DefaultUnitLabel  = "Apartamento"
)

// Condominium - кондоминиум, к которому привязаны жильцы и посылки.
// GroupLabel/UnitLabel задают, как в интерфейсе называются "блок" и "квартира".
type Condominium struct {
	BaseModel
	Name       string `gorm:"not null" json:"name"`
	GroupLabel string `gorm:"type:varchar(40);default:'Bloco'" json:"group_label"`
	UnitLabel  string `gorm:"type:varchar(40);default:'Apartamento'" json:"unit_label"`
}

// Labels возвращает подписи с подстановкой значений по умолчанию
func (c *Condominium) Labels() (group, unit string) {
	group, unit = c.GroupLabel, c.UnitLabel
	if group == "" {
		group = DefaultGroupLabel
	}
	if unit == "" {
		unit = DefaultUnitLabel
	}
	return group, unit
}

func (Condominium) TableName() string { return "condominiums" }

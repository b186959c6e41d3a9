package dto

type CondominiumResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	GroupLabel string `json:"group_label"`
	UnitLabel  string `json:"unit_label"`
}

type UpdateLabelsRequest struct {
	GroupLabel string `json:"group_label" validate:"required,max=40"`
	UnitLabel  string `json:"unit_label" validate:"required,max=40"`
}

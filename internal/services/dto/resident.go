package dto

import (
	"encomendas_backend/internal/models"
)

type CreateResidentRequest struct {
	FullName  string  `json:"full_name" validate:"required,min=2,max=120"`
	Phone     *string `json:"phone" validate:"omitempty,br-phone"`
	Block     string  `json:"block" validate:"max=40"`
	Apartment string  `json:"apartment" validate:"required,max=40"`
}

type UpdateResidentRequest struct {
	FullName  *string `json:"full_name,omitempty" validate:"omitempty,min=2,max=120"`
	Phone     *string `json:"phone,omitempty" validate:"omitempty,br-phone"`
	Block     *string `json:"block,omitempty" validate:"omitempty,max=40"`
	Apartment *string `json:"apartment,omitempty" validate:"omitempty,max=40"`
	IsActive  *bool   `json:"is_active,omitempty"`
}

// ResidentListQuery - параметры GET /residents
type ResidentListQuery struct {
	Search          string `form:"search" validate:"max=100"`
	Block           string `form:"block" validate:"max=40"`
	IncludeInactive bool   `form:"include_inactive"`
	Page            int    `form:"page" validate:"omitempty,min=1"`
	PageSize        int    `form:"page_size" validate:"omitempty,min=1,max=100"`
}

type ResidentListResponse struct {
	Residents  []models.Resident `json:"residents"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	TotalPages int               `json:"total_pages"`
}

// ResidentSummary - жилец в ответе чтения этикетки
type ResidentSummary struct {
	ID        string `json:"id"`
	FullName  string `json:"full_name"`
	Block     string `json:"block"`
	Apartment string `json:"apartment"`
	HasPhone  bool   `json:"has_phone"`
}

func NewResidentSummary(r *models.Resident) *ResidentSummary {
	if r == nil {
		return nil
	}
	return &ResidentSummary{
		ID:        r.ID,
		FullName:  r.FullName,
		Block:     r.Block,
		Apartment: r.Apartment,
		HasPhone:  r.HasPhone(),
	}
}

// ImportRowError - ошибка в строке таблицы (строки нумеруются как в Excel, заголовок - 1)
type ImportRowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

type ImportResult struct {
	Created int              `json:"created"`
	Skipped int              `json:"skipped"`
	Errors  []ImportRowError `json:"errors"`
}

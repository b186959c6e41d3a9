package services

import (
	"context"
	"errors"
	"strings"

	"encomendas_backend/internal/logger"
	"encomendas_backend/internal/models"
	"encomendas_backend/internal/repositories"
	"encomendas_backend/internal/services/dto"
	"encomendas_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type CondominiumService interface {
	GetCondominium(ctx context.Context, db *gorm.DB, id string) (*dto.CondominiumResponse, error)
	UpdateLabels(ctx context.Context, db *gorm.DB, id string, req *dto.UpdateLabelsRequest) (*dto.CondominiumResponse, error)
}

type condominiumService struct {
	condominiumRepo repositories.CondominiumRepository
}

func NewCondominiumService(condominiumRepo repositories.CondominiumRepository) CondominiumService {
	return &condominiumService{condominiumRepo: condominiumRepo}
}

func (s *condominiumService) GetCondominium(ctx context.Context, db *gorm.DB, id string) (*dto.CondominiumResponse, error) {
	condominium, err := s.condominiumRepo.FindByID(db, id)
	if err != nil {
		return nil, mapCondominiumError(err)
	}
	return toCondominiumResponse(condominium), nil
}

func (s *condominiumService) UpdateLabels(ctx context.Context, db *gorm.DB, id string, req *dto.UpdateLabelsRequest) (*dto.CondominiumResponse, error) {
	group := strings.TrimSpace(req.GroupLabel)
	unit := strings.TrimSpace(req.UnitLabel)
	if group == "" || unit == "" {
		return nil, apperrors.ErrInvalidOperation("condominium", "Labels cannot be blank")
	}

	if err := s.condominiumRepo.UpdateLabels(db, id, group, unit); err != nil {
		return nil, mapCondominiumError(err)
	}
	logger.CtxInfo(ctx, "condominium labels updated", "group_label", group, "unit_label", unit)

	return s.GetCondominium(ctx, db, id)
}

func toCondominiumResponse(c *models.Condominium) *dto.CondominiumResponse {
	group, unit := c.Labels()
	return &dto.CondominiumResponse{
		ID:         c.ID,
		Name:       c.Name,
		GroupLabel: group,
		UnitLabel:  unit,
	}
}

func mapCondominiumError(err error) error {
	if errors.Is(err, repositories.ErrCondominiumNotFound) {
		return apperrors.ErrCondominiumNotFound
	}
	return apperrors.DatabaseError(err)
}

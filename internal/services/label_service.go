package services

import (
	"context"
	"errors"
	"io"
	"time"

	"encomendas_backend/internal/algorithms"
	"encomendas_backend/internal/imageprocessor"
	"encomendas_backend/internal/labelreader"
	"encomendas_backend/internal/logger"
	"encomendas_backend/internal/metrics"
	"encomendas_backend/internal/services/dto"
	"encomendas_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type LabelService interface {
	// ReadLabel читает этикетку на фото и подбирает жильца. withTrace добавляет в ответ баллы всех жильцов.
	ReadLabel(ctx context.Context, db *gorm.DB, condominiumID string, image io.Reader, withTrace bool) (*dto.ReadLabelResponse, error)
}

type labelService struct {
	reader    labelreader.Reader
	residents ResidentService
	matcher   *algorithms.ResidentMatcher
	processor *imageprocessor.Processor
	metrics   *metrics.Metrics
	now       func() time.Time
}

func NewLabelService(
	reader labelreader.Reader,
	residents ResidentService,
	matcher *algorithms.ResidentMatcher,
	processor *imageprocessor.Processor,
	m *metrics.Metrics,
) LabelService {
	if matcher == nil {
		matcher = algorithms.NewResidentMatcher(algorithms.DefaultPolicy())
	}
	return &labelService{
		reader:    reader,
		residents: residents,
		matcher:   matcher,
		processor: processor,
		metrics:   m,
		now:       time.Now,
	}
}

func (s *labelService) ReadLabel(ctx context.Context, db *gorm.DB, condominiumID string, image io.Reader, withTrace bool) (*dto.ReadLabelResponse, error) {
	if s.reader == nil {
		return nil, apperrors.ErrExternalService(labelreader.ErrNotConfigured, "label", "AI label reader is not configured")
	}

	started := s.now()
	defer func() { s.metrics.ObserveLabelReadLatency(s.now().Sub(started)) }()

	processed, err := s.processor.ProcessForMessaging(image)
	if err != nil {
		if errors.Is(err, imageprocessor.ErrInvalidImage) {
			return nil, apperrors.ErrImageInvalid.WithError(err)
		}
		return nil, apperrors.InternalError(err)
	}

	reading, err := s.reader.ReadLabel(ctx, processed.Data)
	if err != nil {
		s.metrics.IncLabelRead(metrics.OutcomeError)
		logger.CtxWithError(ctx, "label read failed", err)
		return nil, mapReaderError(err)
	}

	resp := &dto.ReadLabelResponse{RawText: reading.RawText}
	if reading.Suggestion == nil {
		s.metrics.IncLabelRead(metrics.OutcomeUnreadable)
		logger.CtxWarn(ctx, "label reader returned no json", "raw_length", len(reading.RawText))
		return resp, nil
	}
	resp.Suggestion = reading.Suggestion

	residents, err := s.residents.ActiveResidents(ctx, db, condominiumID)
	if err != nil {
		s.metrics.IncLabelRead(metrics.OutcomeError)
		return nil, err
	}

	result := s.matcher.Match(*reading.Suggestion, residents)
	s.metrics.ObserveMatchScore(result.Score)

	resp.MatchScore = result.Score
	resp.Carrier = result.Carrier
	resp.Block = result.Block
	resp.Apartment = result.Apartment
	resp.SuggestedResident = dto.NewResidentSummary(result.Resident)
	if withTrace {
		resp.Trace = result.Trace
	}

	if result.Matched() {
		s.metrics.IncLabelRead(metrics.OutcomeMatched)
	} else {
		s.metrics.IncLabelRead(metrics.OutcomeUnmatched)
	}

	logger.CtxDebug(ctx, "label matched",
		"score", result.Score,
		"matched", result.Matched(),
		"candidates", len(residents),
		"trace", result.Trace,
	)
	return resp, nil
}

func mapReaderError(err error) error {
	switch {
	case errors.Is(err, labelreader.ErrRateLimited):
		return apperrors.ErrAIRateLimited.WithError(err)
	case errors.Is(err, labelreader.ErrCreditsExhausted):
		return apperrors.ErrAICreditsExhausted.WithError(err)
	default:
		return apperrors.ErrExternalService(err, "label", "Failed to read the label")
	}
}

package dto

import (
	"encomendas_backend/internal/algorithms"
	"encomendas_backend/internal/models"
)

// ReadLabelResponse - результат чтения этикетки и подбора жильца.
// Suggestion == nil, если модель не вернула JSON; тогда есть только RawText.
type ReadLabelResponse struct {
	Suggestion        *models.LabelSuggestion    `json:"suggestion"`
	RawText           string                     `json:"raw_text"`
	SuggestedResident *ResidentSummary           `json:"suggested_resident"`
	MatchScore        int                        `json:"match_score"`
	Carrier           string                     `json:"carrier,omitempty"`
	Block             string                     `json:"block,omitempty"`
	Apartment         string                     `json:"apartment,omitempty"`
	Trace             []algorithms.ResidentScore `json:"trace,omitempty"`
}

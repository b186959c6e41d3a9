package algorithms

import (
	"fmt"
	"strings"

	"encomendas_backend/internal/models"
)

// stopWords are Portuguese connectors ignored when comparing names
var stopWords = map[string]struct{}{
	"de": {}, "da": {}, "do": {}, "dos": {}, "das": {}, "e": {},
}

// minTokenLength: tokens with this many characters or fewer are dropped
const minTokenLength = 2

// Policy holds the scoring weights. A zero weight disables its signal.
type Policy struct {
	ApartmentWeight  int
	BlockWeight      int
	StrongNameWeight int // two or more matching name words
	WeakNameWeight   int // exactly one matching name word
	Threshold        int
}

func DefaultPolicy() Policy {
	return Policy{
		ApartmentWeight:  40,
		BlockWeight:      30,
		StrongNameWeight: 35,
		WeakNameWeight:   20,
		Threshold:        35,
	}
}

// PolicyOverrides is the configurable form of Policy: nil keeps the base value,
// an explicit 0 turns a signal off.
type PolicyOverrides struct {
	ApartmentWeight  *int `yaml:"apartment_weight"`
	BlockWeight      *int `yaml:"block_weight"`
	StrongNameWeight *int `yaml:"strong_name_weight"`
	WeakNameWeight   *int `yaml:"weak_name_weight"`
	Threshold        *int `yaml:"threshold"`
}

// Apply returns base with every non-nil override set.
func (o PolicyOverrides) Apply(base Policy) Policy {
	set := func(dst *int, v *int) {
		if v != nil {
			*dst = *v
		}
	}
	set(&base.ApartmentWeight, o.ApartmentWeight)
	set(&base.BlockWeight, o.BlockWeight)
	set(&base.StrongNameWeight, o.StrongNameWeight)
	set(&base.WeakNameWeight, o.WeakNameWeight)
	set(&base.Threshold, o.Threshold)
	return base
}

// ResidentScore is one line of the scoring trace.
type ResidentScore struct {
	ResidentID string   `json:"resident_id"`
	FullName   string   `json:"full_name"`
	Score      int      `json:"score"`
	Reasons    []string `json:"reasons"`
}

// MatchResult is the outcome of matching one label against a resident snapshot.
// Resident points into the slice given to Match and is nil when nothing reached the threshold.
type MatchResult struct {
	Resident  *models.Resident
	Score     int // best score seen, even when below the threshold
	Block     string
	Apartment string
	Carrier   string
	Trace     []ResidentScore
}

func (r MatchResult) Matched() bool { return r.Resident != nil }

// normalizedLabel is the suggestion after unit recovery and normalization
type normalizedLabel struct {
	block     string
	apartment string
	name      string
	words     []string
}

type ResidentMatcher struct {
	policy Policy
}

func NewResidentMatcher(policy Policy) *ResidentMatcher {
	return &ResidentMatcher{policy: policy}
}

func (m *ResidentMatcher) Policy() Policy { return m.policy }

// MatchResident picks a resident with the default policy.
func MatchResident(suggestion models.LabelSuggestion, residents []models.Resident) *models.Resident {
	return NewResidentMatcher(DefaultPolicy()).Match(suggestion, residents).Resident
}

// Match scores every resident in order and keeps the first one with the highest score.
// It never fails: missing or malformed fields just contribute nothing.
func (m *ResidentMatcher) Match(suggestion models.LabelSuggestion, residents []models.Resident) MatchResult {
	block, apartment := RecoverUnit(
		suggestion.Block.String(),
		suggestion.Apartment.String(),
		suggestion.Unit.String(),
	)

	label := normalizedLabel{
		block:     NormalizeBlock(block),
		apartment: NormalizeApartment(apartment),
		name:      NormalizeText(suggestion.ResidentName.String()),
	}
	label.words = significantWords(label.name)

	result := MatchResult{
		Block:     block,
		Apartment: apartment,
		Carrier:   strings.TrimSpace(suggestion.Carrier.String()),
		Trace:     make([]ResidentScore, 0, len(residents)),
	}

	bestIdx := -1
	bestScore := 0
	for i := range residents {
		score, reasons := m.score(label, &residents[i])
		result.Trace = append(result.Trace, ResidentScore{
			ResidentID: residents[i].ID,
			FullName:   residents[i].FullName,
			Score:      score,
			Reasons:    reasons,
		})
		// strict comparison keeps the earliest resident on ties
		if score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}

	result.Score = bestScore
	if bestIdx >= 0 && bestScore >= m.policy.Threshold {
		result.Resident = &residents[bestIdx]
	}
	return result
}

// score calculates how well a resident matches a label, with the reasons that contributed
func (m *ResidentMatcher) score(label normalizedLabel, resident *models.Resident) (int, []string) {
	score := 0
	reasons := []string{}

	residentApartment := NormalizeApartment(resident.Apartment)
	if label.apartment != "" && residentApartment != "" && label.apartment == residentApartment {
		score += m.policy.ApartmentWeight
		reasons = append(reasons, fmt.Sprintf("apartment %s", residentApartment))
	}

	residentBlock := NormalizeBlock(resident.Block)
	if label.block != "" && residentBlock != "" && label.block == residentBlock {
		score += m.policy.BlockWeight
		reasons = append(reasons, fmt.Sprintf("block %s", residentBlock))
	}

	residentName := NormalizeText(resident.FullName)
	if label.name != "" && residentName != "" {
		matching := countMatchingWords(label.words, significantWords(residentName))
		switch {
		case matching >= 2:
			score += m.policy.StrongNameWeight
			reasons = append(reasons, fmt.Sprintf("name: %d matching words", matching))
		case matching == 1:
			score += m.policy.WeakNameWeight
			reasons = append(reasons, "name: 1 matching word")
		}
	}

	return score, reasons
}

// significantWords splits a normalized name and drops short tokens and stop words
func significantWords(name string) []string {
	fields := strings.Fields(name)
	words := make([]string, 0, len(fields))
	for _, w := range fields {
		if len([]rune(w)) <= minTokenLength {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		words = append(words, w)
	}
	return words
}

// countMatchingWords counts suggested words contained in, or containing, any resident word.
// Duplicated suggested words are counted each time.
func countMatchingWords(suggested, resident []string) int {
	count := 0
	for _, sw := range suggested {
		for _, rw := range resident {
			if strings.Contains(rw, sw) || strings.Contains(sw, rw) {
				count++
				break
			}
		}
	}
	return count
}

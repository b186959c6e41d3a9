package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// LabelSuggestion is the best-effort extraction of a shipping label produced by the AI reader.
// None of the fields are trusted.
type LabelSuggestion struct {
	ResidentName     FlexString        `json:"resident_name,omitempty"`
	Block            FlexString        `json:"block,omitempty"`
	Apartment        FlexString        `json:"apartment,omitempty"`
	Unit             FlexString        `json:"unit,omitempty"`
	Carrier          FlexString        `json:"carrier,omitempty"`
	Marketplace      FlexString        `json:"marketplace,omitempty"`
	TrackingCode     FlexString        `json:"tracking_code,omitempty"`
	WeightKg         *FlexFloat        `json:"weight_kg,omitempty"`
	LogisticsOrigin  FlexString        `json:"logistics_origin,omitempty"`
	Confidence       *FlexFloat        `json:"confidence,omitempty"`
	SensitiveRegions SensitiveRegions  `json:"sensitive_regions,omitempty"`
}

// SensitiveRegion is a bounding box on a 0-1000 grid relative to the image size.
type SensitiveRegion struct {
	Label  string  `json:"label"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

const RegionGridSize = 1000

// SensitiveRegions decodes element by element: a malformed entry is skipped, anything
// that is not an array decodes to nil. The rest of the suggestion is never lost.
type SensitiveRegions []SensitiveRegion

func (rs *SensitiveRegions) UnmarshalJSON(data []byte) error {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		*rs = nil
		return nil
	}
	out := make(SensitiveRegions, 0, len(items))
	for _, item := range items {
		var r SensitiveRegion
		if err := json.Unmarshal(item, &r); err != nil {
			continue
		}
		out = append(out, r)
	}
	*rs = out
	return nil
}

// UnmarshalJSON accepts coordinates as numbers or numeric strings ("x": "100").
func (r *SensitiveRegion) UnmarshalJSON(data []byte) error {
	var aux struct {
		Label  FlexString `json:"label"`
		X      FlexFloat  `json:"x"`
		Y      FlexFloat  `json:"y"`
		Width  FlexFloat  `json:"width"`
		Height FlexFloat  `json:"height"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*r = SensitiveRegion{
		Label:  aux.Label.String(),
		X:      float64(aux.X),
		Y:      float64(aux.Y),
		Width:  float64(aux.Width),
		Height: float64(aux.Height),
	}
	return nil
}

// FlexString accepts JSON strings, numbers and null. The model sometimes emits
// "apartment": 53 instead of "53".
type FlexString string

func (s *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = FlexString(str)
		return nil
	}
	// numbers and booleans are kept verbatim
	*s = FlexString(string(data))
	return nil
}

func (s FlexString) String() string { return string(s) }

// FlexFloat accepts numbers and numeric strings ("0,5", "1.2 kg"). Anything else decodes to 0.
type FlexFloat float64

func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	raw := string(data)
	if data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
	}
	raw = strings.TrimSpace(strings.ReplaceAll(raw, ",", "."))
	if i := strings.IndexFunc(raw, func(r rune) bool {
		return (r < '0' || r > '9') && r != '.' && r != '-'
	}); i >= 0 {
		raw = raw[:i]
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = FlexFloat(v)
	return nil
}

func (f *FlexFloat) Float() float64 {
	if f == nil {
		return 0
	}
	return float64(*f)
}

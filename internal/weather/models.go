package weather

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"math"
)

// Condition is one entry of the provider's "weather" array.
type Condition struct {
	Description *string `json:"description,omitempty"`
	IconCode    *string `json:"icon,omitempty"`
}

// Measurements holds the provider's "main" block in imperial units.
type Measurements struct {
	TemperatureF    *float64 `json:"temp,omitempty"`
	FeelsLikeF      *float64 `json:"feels_like,omitempty"`
	PressureHPa     *float64 `json:"pressure,omitempty"`
	HumidityPercent *float64 `json:"humidity,omitempty"`
}

// Record is a decoded current-weather lookup. Every field is optional: the
// provider does not guarantee a complete payload and a partial record is
// still displayable.
type Record struct {
	Conditions       []Condition   `json:"weather,omitempty"`
	Measurements     *Measurements `json:"main,omitempty"`
	VisibilityMeters *int          `json:"visibility,omitempty"`
	LocationName     *string       `json:"name,omitempty"`
}

// FirstCondition returns the leading condition entry, if any.
func (r Record) FirstCondition() (Condition, bool) {
	if len(r.Conditions) == 0 {
		return Condition{}, false
	}
	return r.Conditions[0], true
}

// IconCode returns the icon code of the first condition entry.
func (r Record) IconCode() (string, bool) {
	c, ok := r.FirstCondition()
	if !ok || c.IconCode == nil {
		return "", false
	}
	return *c.IconCode, true
}

// IsEmpty reports whether no field is present.
func (r Record) IsEmpty() bool {
	return len(r.Conditions) == 0 && r.Measurements == nil && r.VisibilityMeters == nil && r.LocationName == nil
}

// Clone returns a deep copy of r.
func (r Record) Clone() Record {
	out := Record{
		VisibilityMeters: clonePtr(r.VisibilityMeters),
		LocationName:     clonePtr(r.LocationName),
	}
	if r.Conditions != nil {
		out.Conditions = make([]Condition, len(r.Conditions))
		for i, c := range r.Conditions {
			out.Conditions[i] = Condition{
				Description: clonePtr(c.Description),
				IconCode:    clonePtr(c.IconCode),
			}
		}
	}
	if m := r.Measurements; m != nil {
		out.Measurements = &Measurements{
			TemperatureF:    clonePtr(m.TemperatureF),
			FeelsLikeF:      clonePtr(m.FeelsLikeF),
			PressureHPa:     clonePtr(m.PressureHPa),
			HumidityPercent: clonePtr(m.HumidityPercent),
		}
	}
	return out
}

func clonePtr[T any](v *T) *T {
	if v == nil {
		return nil
	}
	cp := *v
	return &cp
}

// DecodeRecord decodes a provider body. It fails with ErrDecode only when the
// body is not a JSON object.
func DecodeRecord(data []byte) (Record, error) {
	var r Record
	if err := r.UnmarshalJSON(data); err != nil {
		return Record{}, err
	}
	return r, nil
}

// UnmarshalJSON decodes field by field. The body must be a JSON object;
// anything inside it that is missing, null or of the wrong type is left
// absent instead of failing the whole record.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}

	var out Record
	if v, ok := raw["weather"]; ok {
		var items []json.RawMessage
		if json.Unmarshal(v, &items) == nil {
			for _, item := range items {
				var c Condition
				if c.UnmarshalJSON(item) == nil {
					out.Conditions = append(out.Conditions, c)
				}
			}
		}
	}
	if v, ok := raw["main"]; ok && !isNull(v) {
		var m Measurements
		if m.UnmarshalJSON(v) == nil {
			out.Measurements = &m
		}
	}
	if v, ok := raw["visibility"]; ok {
		out.VisibilityMeters = decodeInt(v)
	}
	if v, ok := raw["name"]; ok {
		out.LocationName = decodeString(v)
	}

	*r = out
	return nil
}

// UnmarshalJSON decodes a single condition leniently.
func (c *Condition) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*c = Condition{
		Description: decodeString(raw["description"]),
		IconCode:    decodeString(raw["icon"]),
	}
	return nil
}

// UnmarshalJSON decodes the "main" block leniently.
func (m *Measurements) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*m = Measurements{
		TemperatureF:    decodeFloat(raw["temp"]),
		FeelsLikeF:      decodeFloat(raw["feels_like"]),
		PressureHPa:     decodeFloat(raw["pressure"]),
		HumidityPercent: decodeFloat(raw["humidity"]),
	}
	return nil
}

func isNull(v json.RawMessage) bool {
	return len(v) == 0 || bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}

func decodeString(v json.RawMessage) *string {
	if isNull(v) {
		return nil
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return nil
	}
	return &s
}

func decodeFloat(v json.RawMessage) *float64 {
	if isNull(v) {
		return nil
	}
	var f float64
	if err := json.Unmarshal(v, &f); err != nil {
		return nil
	}
	return &f
}

// decodeInt accepts integral JSON numbers only ("10000", "1e4"); 12.5 is absent.
func decodeInt(v json.RawMessage) *int {
	f := decodeFloat(v)
	if f == nil || *f != math.Trunc(*f) || math.Abs(*f) > math.MaxInt32 {
		return nil
	}
	n := int(*f)
	return &n
}

// Coordinate is a single geolocation fix.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// LocationEvent is one emission of the location stream: either a fix or a failure.
type LocationEvent struct {
	Coordinate Coordinate
	Err        error
}

// Icon is a downloaded condition pictogram. Data keeps the original PNG bytes
// so it can be served as-is.
type Icon struct {
	Code  string      `json:"code"`
	Data  []byte      `json:"-"`
	Image image.Image `json:"-"`
}

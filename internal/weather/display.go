package weather

import (
	"fmt"
	"math"
)

// Placeholder is rendered for any absent value.
const Placeholder = "---"

// Stringify renders a present value with its default textual form and an
// absent one as Placeholder.
func Stringify[T any](v *T) string {
	if v == nil {
		return Placeholder
	}
	return fmt.Sprint(*v)
}

// RoundTemp rounds to the nearest whole degree, halves away from zero.
func RoundTemp(v *float64) *int {
	if v == nil {
		return nil
	}
	n := int(math.Round(*v))
	return &n
}

// View is the text a client shows for a record.
type View struct {
	City        string `json:"city"`
	Description string `json:"description"`
	Temperature string `json:"temperature"`
	FeelsLike   string `json:"feelsLike"`
	Humidity    string `json:"humidity"`
	Pressure    string `json:"pressure"`
	Visibility  string `json:"visibility"`
}

// Render builds the display view. A nil record renders all placeholders.
func Render(r *Record) View {
	var (
		rec Record
		m   Measurements
	)
	if r != nil {
		rec = *r
	}
	if rec.Measurements != nil {
		m = *rec.Measurements
	}

	var desc *string
	if c, ok := rec.FirstCondition(); ok {
		desc = c.Description
	}

	return View{
		City:        Stringify(rec.LocationName),
		Description: Stringify(desc),
		Temperature: Stringify(RoundTemp(m.TemperatureF)) + "°F",
		FeelsLike:   Stringify(RoundTemp(m.FeelsLikeF)) + "°F",
		Humidity:    Stringify(m.HumidityPercent) + "%",
		Pressure:    Stringify(m.PressureHPa) + "hPa",
		Visibility:  Stringify(rec.VisibilityMeters) + "m",
	}
}

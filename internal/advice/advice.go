// Package advice derives the daily recommendation text for a merged row.
package advice

import (
	"fmt"
	"math"
	"strings"

	"github.com/Lewis310/lewishealthapplication/internal/errors"
	"github.com/Lewis310/lewishealthapplication/internal/record"
)

// Advice is one advisory. Values are ordered by evaluation order.
type Advice int

const (
	ProteinLow Advice = iota
	LowActivity
	ShortSleep
	Balanced
)

// Thresholds applied to every row.
const (
	MinActiveMinutes = 20
	MinSleepMinutes  = 360
)

// Separator joins advisories into one recommendation.
const Separator = "; "

// Params configures the protein target.
type Params struct {
	WeightKg     float64 `json:"weight_kg"`
	ProteinPerKg float64 `json:"protein_per_kg"`
}

// DefaultParams returns the default body weight and protein factor.
func DefaultParams() Params {
	return Params{WeightKg: 75, ProteinPerKg: 1.2}
}

// Validate rejects a weight or protein factor that is not a positive finite number.
func (p Params) Validate() error {
	if !(p.WeightKg > 0) || !(p.ProteinPerKg > 0) || math.IsInf(p.WeightKg, 0) || math.IsInf(p.ProteinPerKg, 0) {
		return errors.NewInvalidRequest(fmt.Sprintf("weight_kg and protein_per_kg must be positive (got %v, %v)", p.WeightKg, p.ProteinPerKg))
	}
	return nil
}

// ProteinTarget returns the daily protein target in grams.
func (p Params) ProteinTarget() float64 {
	return p.WeightKg * p.ProteinPerKg
}

// Evaluate returns the advisories that apply to rec, in fixed order. The
// result is never empty.
func Evaluate(rec record.MergedRecord, p Params) []Advice {
	var out []Advice
	if rec.ProteinG.Valid && rec.ProteinG.Value < p.ProteinTarget() {
		out = append(out, ProteinLow)
	}
	if rec.ActiveMinutes < MinActiveMinutes {
		out = append(out, LowActivity)
	}
	if rec.SleepMinutes < MinSleepMinutes {
		out = append(out, ShortSleep)
	}
	if len(out) == 0 {
		out = append(out, Balanced)
	}
	return out
}

// Text returns the recommendation string for rec.
func Text(rec record.MergedRecord, p Params) string {
	list := Evaluate(rec, p)
	parts := make([]string, len(list))
	for i, a := range list {
		parts[i] = a.Message(rec, p)
	}
	return strings.Join(parts, Separator)
}

// Message renders a as display text.
func (a Advice) Message(rec record.MergedRecord, p Params) string {
	switch a {
	case ProteinLow:
		return "Protein low (" + record.FormatNumber(rec.ProteinG.Value) + "g, target " +
			record.FormatNumber(math.Trunc(p.ProteinTarget())) + "g)."
	case LowActivity:
		return "Low activity — add a short walk."
	case ShortSleep:
		return "Short sleep — prioritize recovery."
	case Balanced:
		return "Balanced day — keep it up!"
	}
	return ""
}

// String returns the advisory's identifier.
func (a Advice) String() string {
	switch a {
	case ProteinLow:
		return "protein_low"
	case LowActivity:
		return "low_activity"
	case ShortSleep:
		return "short_sleep"
	case Balanced:
		return "balanced"
	}
	return "unknown"
}

package ops

import (
	"github.com/Lewis310/lewishealthapplication/internal/advice"
	"github.com/Lewis310/lewishealthapplication/internal/chart"
	"github.com/Lewis310/lewishealthapplication/internal/config"
	"github.com/Lewis310/lewishealthapplication/internal/merge"
	"github.com/Lewis310/lewishealthapplication/internal/report"
)

// Pagination limits
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// Pagination contains pagination metadata for list operations.
type Pagination struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
	Total   int  `json:"total"`
}

// Overrides are per-run settings that take precedence over the config.
// Nil fields fall back to the config value.
type Overrides struct {
	WeightKg       *float64
	ProteinPerKg   *float64
	DuplicateDates *string
}

// ReportOptions builds pipeline options from cfg and per-run overrides.
// A nil cfg means the defaults.
func ReportOptions(cfg *config.Config, o Overrides) (report.Options, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	params := advice.Params{WeightKg: cfg.WeightKg, ProteinPerKg: cfg.ProteinPerKg}
	if o.WeightKg != nil {
		params.WeightKg = *o.WeightKg
	}
	if o.ProteinPerKg != nil {
		params.ProteinPerKg = *o.ProteinPerKg
	}
	if err := params.Validate(); err != nil {
		return report.Options{}, err
	}

	policyName := cfg.DuplicateDates
	if o.DuplicateDates != nil {
		policyName = *o.DuplicateDates
	}
	policy, err := merge.ParsePolicy(policyName)
	if err != nil {
		return report.Options{}, err
	}

	opt := report.DefaultOptions()
	opt.Params = params
	opt.Duplicates = policy
	opt.MaxRows = cfg.MaxRows
	if cfg.ChartWidth > 0 && cfg.ChartHeight > 0 {
		opt.Chart = chart.Options{Width: cfg.ChartWidth, Height: cfg.ChartHeight}
	}
	return opt, nil
}

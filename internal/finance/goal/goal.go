// Package goal solves compound-interest goal feasibility questions.
package goal

import (
	"math"

	"github.com/bobmcallan/finplan-portal/internal/validator"
)

// DefaultAssumedRate is the annual return assumed when the caller does not
// supply one.
const DefaultAssumedRate = 0.12

// MaxYears bounds the goal horizon.
const MaxYears = 100

// Mode selects how feasibility is judged.
type Mode string

const (
	// ModeCurrent projects the current fund value forward and compares it
	// with the target corpus.
	ModeCurrent Mode = "current"
	// ModeStandard discounts the target corpus to the principal needed today
	// and compares the current fund value with it.
	ModeStandard Mode = "standard"
)

// FutureValue returns principal*(1+rate)^years. Growth is not modelled for
// non-positive inputs: principal is returned unchanged.
func FutureValue(principal, rate, years float64) float64 {
	if principal <= 0 || rate <= 0 || years <= 0 {
		return principal
	}
	return clampFinite(principal * math.Pow(1+rate, years))
}

// RequiredPrincipal returns target/(1+rate)^years, or 0 for non-positive inputs.
func RequiredPrincipal(target, rate, years float64) float64 {
	if target <= 0 || rate <= 0 || years <= 0 {
		return 0
	}
	return target / math.Pow(1+rate, years)
}

// Input is a goal question.
type Input struct {
	Mode         Mode    `json:"mode"`
	CurrentValue float64 `json:"current_value"`
	TargetCorpus float64 `json:"target_corpus"`
	Years        float64 `json:"years"`
	AssumedRate  float64 `json:"assumed_rate,omitempty"`
}

// Validate checks the fields a user enters. CurrentValue is derived from the
// ledger and is not validated.
func (in Input) Validate() error {
	v := validator.New()
	v.Check(in.Mode == ModeCurrent || in.Mode == ModeStandard, "mode", "Calculation method must be standard or current")
	v.Check(in.Years >= 1, "years", "Number of years must be at least 1")
	v.Check(in.Years <= MaxYears, "years", "Number of years must be at most 100")
	v.Check(in.TargetCorpus >= 1, "target_corpus", "Target corpus must be at least 1")
	v.Check(in.AssumedRate <= 1, "assumed_rate", "Assumed rate must be a fraction no greater than 1")
	return v.Err()
}

// Result is the outcome of Evaluate. ProjectedValue is set in ModeCurrent and
// RequiredPrincipal in ModeStandard.
type Result struct {
	Mode              Mode    `json:"mode"`
	CurrentValue      float64 `json:"current_value"`
	TargetCorpus      float64 `json:"target_corpus"`
	Years             float64 `json:"years"`
	AssumedRate       float64 `json:"assumed_rate"`
	ProjectedValue    float64 `json:"projected_value,omitempty"`
	RequiredPrincipal float64 `json:"required_principal,omitempty"`
	Feasible          bool    `json:"feasible"`
}

// Evaluate answers the goal question. An AssumedRate of zero or less selects
// DefaultAssumedRate. Unknown modes are treated as ModeStandard.
func Evaluate(in Input) Result {
	rate := in.AssumedRate
	if rate <= 0 {
		rate = DefaultAssumedRate
	}

	res := Result{
		Mode:         in.Mode,
		CurrentValue: in.CurrentValue,
		TargetCorpus: in.TargetCorpus,
		Years:        in.Years,
		AssumedRate:  rate,
	}

	if in.Mode == ModeCurrent {
		res.ProjectedValue = FutureValue(in.CurrentValue, rate, in.Years)
		res.Feasible = res.ProjectedValue >= in.TargetCorpus
		return res
	}

	res.Mode = ModeStandard
	res.RequiredPrincipal = RequiredPrincipal(in.TargetCorpus, rate, in.Years)
	res.Feasible = in.CurrentValue >= res.RequiredPrincipal
	return res
}

// clampFinite caps overflowed growth at the largest float64.
func clampFinite(v float64) float64 {
	switch {
	case math.IsInf(v, 1):
		return math.MaxFloat64
	case math.IsInf(v, -1):
		return -math.MaxFloat64
	case math.IsNaN(v):
		return 0
	}
	return v
}

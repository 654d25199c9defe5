package planning

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/finplan-portal/internal/finance/aggregate"
	"github.com/bobmcallan/finplan-portal/internal/finance/goal"
)

// GoalView is an evaluated goal with its explanation.
type GoalView struct {
	goal.Result
	Message string `json:"message"`
}

// EvaluateGoal validates in, fills the current fund value from the user's
// ledger and the assumed rate from the service options when unset, and
// evaluates the goal.
func (s *Service) EvaluateGoal(ctx context.Context, email string, in goal.Input) (*GoalView, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	l, err := s.LoadLedger(ctx, email)
	if err != nil {
		return nil, err
	}

	in.CurrentValue = aggregate.Aggregate(l).TotalNetWorth
	if in.AssumedRate <= 0 {
		in.AssumedRate = s.opts.AssumedRate
	}
	res := goal.Evaluate(in)
	return &GoalView{Result: res, Message: s.GoalMessage(res)}, nil
}

// GoalMessage explains res in one of four ways: reachable or not from the
// current fund value, or whether the current fund covers the principal
// required today.
func (s *Service) GoalMessage(res goal.Result) string {
	rate := decimal.NewFromFloat(res.AssumedRate * 100).Round(2).String()
	current := s.money(res.CurrentValue)
	target := s.money(res.TargetCorpus)
	years := decimal.NewFromFloat(res.Years).String()

	if res.Mode == goal.ModeCurrent {
		projected := s.money(res.ProjectedValue)
		if res.Feasible {
			return fmt.Sprintf("Based on your current fund value of %s and an assumed average %s%% annual return, "+
				"you could potentially reach %s in %s years, achieving your target.",
				current, rate, projected, years)
		}
		return fmt.Sprintf("Based on your current fund value of %s and an assumed average %s%% annual return, "+
			"you might only reach %s in %s years. This may not be enough to meet your target of %s. "+
			"Consider increasing contributions or adjusting your investment strategy/risk.",
			current, rate, projected, years, target)
	}

	required := s.money(res.RequiredPrincipal)
	if res.Feasible {
		return fmt.Sprintf("To achieve %s in %s years (assuming %s%% average annual return), "+
			"you need approximately %s invested today. Your current fund value of %s appears sufficient.",
			target, years, rate, required, current)
	}
	return fmt.Sprintf("To achieve %s in %s years (assuming %s%% average annual return), "+
		"you need approximately %s invested today. Your current fund value is %s. "+
		"You may need additional investments or a strategy targeting higher returns (e.g., higher allocation to equity).",
		target, years, rate, required, current)
}

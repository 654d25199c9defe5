package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/bobmcallan/finplan-portal/internal/common"
	"github.com/bobmcallan/finplan-portal/internal/finance/goal"
	"github.com/bobmcallan/finplan-portal/internal/finance/ledger"
	"github.com/bobmcallan/finplan-portal/internal/interfaces"
	"github.com/bobmcallan/finplan-portal/internal/planning"
)

// brokenStore fails every ledger read.
type brokenStore struct {
	interfaces.UserStore
}

func (brokenStore) ReadInvestments(context.Context, string) (ledger.Ledger, error) {
	return nil, errors.New("dial tcp: connection refused")
}

func TestDashboardHandler_Aggregates(t *testing.T) {
	env := newTestEnv(t)
	env.seedLedger(t, equityLedger())

	w := env.do(env.dashboard.HandleDashboard, "GET", "/api/dashboard", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var d planning.Dashboard
	decodeBody(t, w, &d)
	if d.Summary.TotalNetWorth != 150000 {
		t.Errorf("net worth = %v, want 150000", d.Summary.TotalNetWorth)
	}
	if d.Summary.EquityPerformance != 20 {
		t.Errorf("equity performance = %v, want 20", d.Summary.EquityPerformance)
	}
	if len(d.AssetValues) != 2 {
		t.Errorf("expected 2 asset values, got %d", len(d.AssetValues))
	}
	if d.TotalNetWorthDisplay != "₹ 1,50,000" {
		t.Errorf("display = %q", d.TotalNetWorthDisplay)
	}
}

func TestDashboardHandler_EmptyPortfolio(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(env.dashboard.HandleDashboard, "GET", "/api/dashboard", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var d planning.Dashboard
	decodeBody(t, w, &d)
	if d.Summary.TotalNetWorth != 0 || len(d.AssetValues) != 0 {
		t.Errorf("expected zeroed dashboard, got %+v", d.Summary)
	}
}

func TestDashboardHandler_StoreFailureIs502(t *testing.T) {
	env := newTestEnv(t)
	env.dashboard.planner = planning.NewService(common.NewSilentLogger(), brokenStore{}, planning.Options{})

	w := env.do(env.dashboard.HandleDashboard, "GET", "/api/dashboard", nil)
	if w.Code != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "connection refused") {
		t.Error("store error details should not reach the client")
	}
}

func TestDashboardHandler_RequiresLogin(t *testing.T) {
	env := newTestEnv(t)
	w := doRequest(env.dashboard.HandleDashboard, "GET", "/api/dashboard", nil, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestDashboardHandler_Market(t *testing.T) {
	env := newTestEnv(t)
	w := doRequest(env.dashboard.HandleMarket, "GET", "/api/market", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body struct {
		Market     planning.Market       `json:"market"`
		FundSeries []planning.FundPoint `json:"fund_series"`
	}
	decodeBody(t, w, &body)
	if body.Market.Nifty.Value != "22,876.50" {
		t.Errorf("nifty = %q", body.Market.Nifty.Value)
	}
	if len(body.FundSeries) != 12 || body.FundSeries[11].Value != 650000 {
		t.Errorf("unexpected fund series %v", body.FundSeries)
	}
}

func TestGoalHandler_Evaluates(t *testing.T) {
	env := newTestEnv(t)
	env.seedLedger(t, ledger.Ledger{
		ledger.CategoryEquity: {{Type: "Direct Stocks", CurrentValue: ledger.NewNumber(750000)}},
	})

	w := env.do(env.goal.HandleGoal, "POST", "/api/goal", goal.Input{
		Mode:         goal.ModeCurrent,
		TargetCorpus: 2000000,
		Years:        10,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var v planning.GoalView
	decodeBody(t, w, &v)
	if v.CurrentValue != 750000 {
		t.Errorf("current value = %v, want ledger value 750000", v.CurrentValue)
	}
	if v.ProjectedValue < 2329000 || v.ProjectedValue > 2330000 {
		t.Errorf("projected = %v", v.ProjectedValue)
	}
	if !v.Feasible || !strings.Contains(v.Message, "achieving your target") {
		t.Errorf("unexpected result %+v", v)
	}
}

func TestGoalHandler_Validation(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(env.goal.HandleGoal, "POST", "/api/goal", goal.Input{Mode: goal.ModeStandard})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

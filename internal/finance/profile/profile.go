// Package profile maps a user's personal and monthly cash-flow details to the
// flat columns of the user record.
package profile

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/bobmcallan/finplan-portal/internal/finance/ledger"
	"github.com/bobmcallan/finplan-portal/internal/validator"
)

// Line is one monthly income or expense entry.
type Line struct {
	Key    string  `json:"key"`
	Label  string  `json:"label"`
	Column string  `json:"-"`
	Amount float64 `json:"amount"`
}

var incomeLines = []Line{
	{Key: "prof", Label: "Professional income after taxes", Column: "professionalIncome"},
	{Key: "other", Label: "Other income after taxes", Column: "otherIncome"},
}

var expenseLines = []Line{
	{Key: "1", Label: "Insurance Premium (Monthly Average)", Column: "insurancePremium"},
	{Key: "2", Label: "Current Ongoing Savings (Monthly Average)", Column: "ongoingSavings"},
	{Key: "3", Label: "Loan - EMI (Home, Vehicle, Personal, etc)", Column: "loan"},
	{Key: "4", Label: "House Rent / Maintenance", Column: "houseRent"},
	{Key: "5", Label: "Electricity bills", Column: "electricityBills"},
	{Key: "6", Label: "Telephone Bills / Wifi", Column: "telephoneBills"},
	{Key: "7", Label: "Ration, Grocery and LPG", Column: "grocery"},
	{Key: "8", Label: "Medicine", Column: "medicine"},
	{Key: "9", Label: "Education / Tuition fees", Column: "educationFees"},
	{Key: "10", Label: "Vehicle Maintenance / Petrol", Column: "vehicleMaintenance"},
	{Key: "11", Label: "House help", Column: "houseHelp"},
	{Key: "12", Label: "Religious/social cause", Column: "socialCause"},
	{Key: "13", Label: "Entertainment / Leisure (Food, Shopping etc.)", Column: "entertainment"},
}

// Allowed values for the enumerated personal fields. Empty is always allowed.
var (
	Genders         = []string{"Male", "Female", "Other"}
	Occupations     = []string{"Service", "Business", "Student", "Retired", "House maker", "Professional"}
	MaritalStatuses = []string{"Single", "Married", "Divorcee", "Separated", "Widower"}
	DependantCounts = []string{"0", "1", "2", "3", "4", "4+"}
)

const dobLayout = "2006-01-02"

// Details is the personal details page.
type Details struct {
	Name          string `json:"name"`
	DOB           string `json:"dob,omitempty"`
	Gender        string `json:"gender,omitempty"`
	Occupation    string `json:"occupation,omitempty"`
	MaritalStatus string `json:"marital_status,omitempty"`
	Dependants    string `json:"dependants,omitempty"`
	Income        []Line `json:"income"`
	Expenses      []Line `json:"expenses"`
}

// Totals summarises monthly cash flow.
type Totals struct {
	Income     float64 `json:"income"`
	Expenses   float64 `json:"expenses"`
	NetSavings float64 `json:"net_savings"`
}

// Empty returns details with every income and expense line at zero.
func Empty() Details {
	return Details{
		Income:   cloneLines(incomeLines),
		Expenses: cloneLines(expenseLines),
	}
}

// FromColumns reads details from a flat user record. Missing or malformed
// amounts read as 0.
func FromColumns(cols map[string]any) Details {
	d := Empty()
	d.Name = stringColumn(cols["name"])
	d.DOB = stringColumn(cols["dob"])
	if t, err := time.Parse(time.RFC3339, d.DOB); err == nil {
		d.DOB = t.Format(dobLayout)
	}
	d.Gender = stringColumn(cols["gender"])
	d.Occupation = stringColumn(cols["occupation"])
	d.MaritalStatus = stringColumn(cols["maritalStatus"])
	d.Dependants = stringColumn(cols["dependants"])

	for i := range d.Income {
		d.Income[i].Amount = numberColumn(cols[d.Income[i].Column])
	}
	for i := range d.Expenses {
		d.Expenses[i].Amount = numberColumn(cols[d.Expenses[i].Column])
	}
	return d
}

// Columns returns the partial user record to write. Lines are matched by key;
// lines missing from d are written as 0.
func (d Details) Columns() map[string]any {
	cols := map[string]any{
		"name":          d.Name,
		"gender":        d.Gender,
		"occupation":    d.Occupation,
		"maritalStatus": d.MaritalStatus,
		"dependants":    d.Dependants,
	}
	if d.DOB != "" {
		cols["dob"] = d.DOB
	} else {
		cols["dob"] = nil
	}

	income := amountsByKey(d.Income)
	for _, l := range incomeLines {
		cols[l.Column] = income[l.Key]
	}
	expenses := amountsByKey(d.Expenses)
	for _, l := range expenseLines {
		cols[l.Column] = expenses[l.Key]
	}
	return cols
}

// Validate checks the details before they are saved.
func (d Details) Validate() error {
	v := validator.New()
	v.Required(d.Name, "name", "Name")
	if d.DOB != "" {
		dob, err := time.Parse(dobLayout, d.DOB)
		v.Check(err == nil, "dob", "Date of birth must be YYYY-MM-DD")
		v.Check(err != nil || !dob.After(time.Now()), "dob", "Date of birth cannot be in the future")
	}
	v.Check(oneOf(d.Gender, Genders), "gender", "Unknown gender")
	v.Check(oneOf(d.Occupation, Occupations), "occupation", "Unknown occupation")
	v.Check(oneOf(d.MaritalStatus, MaritalStatuses), "marital_status", "Unknown marital status")
	v.Check(oneOf(d.Dependants, DependantCounts), "dependants", "Dependants must be 0-4 or 4+")

	known := amountsByKey(incomeLines)
	for _, l := range d.Income {
		_, ok := known[l.Key]
		v.Check(ok, "income."+l.Key, "Unknown income line")
		v.Check(l.Amount >= 0, "income."+l.Key, "Amount cannot be negative")
	}
	known = amountsByKey(expenseLines)
	for _, l := range d.Expenses {
		_, ok := known[l.Key]
		v.Check(ok, "expenses."+l.Key, "Unknown expense line")
		v.Check(l.Amount >= 0, "expenses."+l.Key, "Amount cannot be negative")
	}
	return v.Err()
}

// Totals returns monthly income, expenses and their difference.
func (d Details) Totals() Totals {
	var t Totals
	for _, l := range d.Income {
		t.Income += l.Amount
	}
	for _, l := range d.Expenses {
		t.Expenses += l.Amount
	}
	t.NetSavings = t.Income - t.Expenses
	return t
}

// Normalize fills in labels and missing lines so d has the full, ordered set
// of income and expense lines.
func (d Details) Normalize() Details {
	income := amountsByKey(d.Income)
	expenses := amountsByKey(d.Expenses)
	d.Income = cloneLines(incomeLines)
	for i := range d.Income {
		d.Income[i].Amount = income[d.Income[i].Key]
	}
	d.Expenses = cloneLines(expenseLines)
	for i := range d.Expenses {
		d.Expenses[i].Amount = expenses[d.Expenses[i].Key]
	}
	return d
}

func cloneLines(src []Line) []Line {
	out := make([]Line, len(src))
	copy(out, src)
	return out
}

func amountsByKey(lines []Line) map[string]float64 {
	m := make(map[string]float64, len(lines))
	for _, l := range lines {
		m[l.Key] = l.Amount
	}
	return m
}

func oneOf(v string, allowed []string) bool {
	if v == "" {
		return true
	}
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

func stringColumn(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case json.Number:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

func numberColumn(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case json.Number:
		return ledger.SafeNumber(x.String(), 0)
	case string:
		return ledger.SafeNumber(x, 0)
	default:
		return 0
	}
}

// Package editor converts a ledger to and from the grouped, editable shape
// used by the portfolio editor.
package editor

import (
	"math"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/bobmcallan/finplan-portal/internal/finance/ledger"
)

// Rate and term units.
const (
	RateUnitPercent = "%"
	RateUnitYield   = "Yield"
	TermUnitYears   = "Years"
	TermUnitMonths  = "Months"
)

const (
	unknownType = "Unknown Type"
	dateLayout  = "2006-01-02"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Slug normalises a category or type name into a lookup key.
func Slug(name string) string {
	return nonAlnum.ReplaceAllString(strings.ToLower(name), "_")
}

// interestTypes store their rate as interest_rate rather than expected_return.
var interestTypes = map[string]bool{
	ledger.TypeFixedDeposits:   true,
	ledger.TypeCorporateBonds:  true,
	ledger.TypeSavingsAccounts: true,
	ledger.TypeTreasuryBills:   true,
}

// propertyTypes store their amount as property_value under Real Estate.
var propertyTypes = map[string]bool{
	ledger.TypeResidentialProperty: true,
	ledger.TypeCommercialProperty:  true,
}

// Item is one editable row. Identifiers are issued per transform and are only
// meaningful inside the editing session that produced them.
type Item struct {
	ID           string   `json:"id"`
	Type         string   `json:"type"`
	Description  string   `json:"description"`
	Amount       float64  `json:"amount"`
	RateValue    *float64 `json:"rate_value"`
	RateUnit     string   `json:"rate_unit,omitempty"`
	MaturityDate string   `json:"maturity_date,omitempty"`
	Term         *int     `json:"term"`
	TermUnit     string   `json:"term_unit,omitempty"`

	// CurrentValue carries a stored current_value through an edit untouched.
	CurrentValue *float64 `json:"current_value,omitempty"`
}

// TypeGroup holds the items of one type within a category.
type TypeGroup struct {
	Key   string `json:"key"`
	Name  string `json:"name"`
	Items []Item `json:"items"`
}

// CategoryGroup holds the type groups of one category.
type CategoryGroup struct {
	Key   string       `json:"key"`
	Name  string       `json:"name"`
	Types []*TypeGroup `json:"types"`
}

// Type returns the type group with the given slug key.
func (c *CategoryGroup) Type(key string) *TypeGroup {
	for _, t := range c.Types {
		if t.Key == key {
			return t
		}
	}
	return nil
}

// Tree is the editable form of a ledger. Categories follow ledger order and
// types follow first appearance within their category.
type Tree struct {
	Categories []*CategoryGroup `json:"categories"`
}

// Category returns the category group with the given slug key.
func (t *Tree) Category(key string) *CategoryGroup {
	for _, c := range t.Categories {
		if c.Key == key {
			return c
		}
	}
	return nil
}

// ItemCount returns the number of items across all groups.
func (t *Tree) ItemCount() int {
	n := 0
	for _, c := range t.Categories {
		for _, g := range c.Types {
			n += len(g.Items)
		}
	}
	return n
}

// ToEditableState groups the ledger by category and type and issues a fresh
// identifier to every item. Names whose slugs collide share a group that keeps
// the first name seen.
func ToEditableState(l ledger.Ledger) *Tree {
	tree := &Tree{Categories: []*CategoryGroup{}}

	for _, name := range l.CategoryNames() {
		key := Slug(name)
		cat := tree.Category(key)
		if cat == nil {
			cat = &CategoryGroup{Key: key, Name: name, Types: []*TypeGroup{}}
			tree.Categories = append(tree.Categories, cat)
		}

		for _, it := range l[name] {
			typeName := it.Type
			if typeName == "" {
				typeName = unknownType
			}
			typeKey := Slug(typeName)
			group := cat.Type(typeKey)
			if group == nil {
				group = &TypeGroup{Key: typeKey, Name: typeName, Items: []Item{}}
				cat.Types = append(cat.Types, group)
			}
			group.Items = append(group.Items, fromLedgerItem(cat.Name, typeName, it))
		}
	}
	return tree
}

func fromLedgerItem(category, typeName string, it ledger.Item) Item {
	out := Item{
		ID:          uuid.New().String(),
		Type:        typeName,
		Description: it.Description,
	}

	property := category == ledger.CategoryRealEstate && propertyTypes[typeName]
	switch {
	case property && it.PropertyValue != nil:
		out.Amount = it.PropertyValue.Float()
	case it.InvestedAmount != nil:
		out.Amount = it.InvestedAmount.Float()
	case it.PropertyValue != nil:
		out.Amount = it.PropertyValue.Float()
	}

	if kind, n := it.RateField(); n.Valid() {
		v := n.Float()
		out.RateValue = &v
		out.RateUnit = RateUnitPercent
		if kind == ledger.RateRentalYield {
			out.RateUnit = RateUnitYield
		}
	}

	if it.MaturityPeriod.Valid() {
		term := int(math.Trunc(it.MaturityPeriod.Float()))
		out.Term = &term
		if term != 0 {
			out.TermUnit = termUnitFor(category, typeName)
		}
	}

	if d, ok := it.Maturity(); ok {
		out.MaturityDate = d.Format(dateLayout)
	}

	if it.CurrentValue.Valid() {
		v := it.CurrentValue.Float()
		out.CurrentValue = &v
	}
	return out
}

func termUnitFor(category, typeName string) string {
	if category == ledger.CategoryCash && typeName == ledger.TypeTreasuryBills {
		return TermUnitMonths
	}
	return TermUnitYears
}

// ToLedger rebuilds the stored ledger. Empty groups are written as empty
// category lists. The amount field is property_value for property types under
// Real Estate and invested_amount otherwise. The rate field is rental_yield
// for Yield-unit rates, interest_rate for interest-style types and
// expected_return otherwise.
func ToLedger(tree *Tree) ledger.Ledger {
	l := make(ledger.Ledger, len(tree.Categories))
	for _, cat := range tree.Categories {
		items := l[cat.Name]
		if items == nil {
			items = []ledger.Item{}
		}
		for _, g := range cat.Types {
			for _, it := range g.Items {
				items = append(items, toLedgerItem(cat.Name, it))
			}
		}
		l[cat.Name] = items
	}
	return l
}

func toLedgerItem(category string, it Item) ledger.Item {
	out := ledger.Item{Type: it.Type, Description: it.Description}

	amount := ledger.NewNumber(it.Amount)
	if category == ledger.CategoryRealEstate && propertyTypes[it.Type] {
		out.PropertyValue = amount
	} else {
		out.InvestedAmount = amount
	}

	if it.RateValue != nil {
		rate := ledger.NewNumber(*it.RateValue)
		switch {
		case it.RateUnit == RateUnitYield:
			out.RentalYield = rate
		case interestTypes[it.Type]:
			out.InterestRate = rate
		default:
			out.ExpectedReturn = rate
		}
	}

	if it.Term != nil {
		out.MaturityPeriod = ledger.NewNumber(float64(*it.Term))
	}
	out.MaturityDate = it.MaturityDate

	if it.CurrentValue != nil {
		out.CurrentValue = ledger.NewNumber(*it.CurrentValue)
	}
	return out
}

package editor

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bobmcallan/finplan-portal/internal/finance/ledger"
	"github.com/bobmcallan/finplan-portal/internal/validator"
)

var (
	// ErrGroupNotFound is returned when adding to a category or type that the
	// loaded ledger does not contain.
	ErrGroupNotFound = errors.New("type group not found")
	// ErrItemNotFound is returned for an unknown item identifier.
	ErrItemNotFound = errors.New("item not found")
)

// Edit is an inline edit of one item. Description and Amount are required;
// the remaining fields are optional and replace the stored values.
type Edit struct {
	Description  string   `json:"description"`
	Amount       *float64 `json:"amount"`
	RateValue    *float64 `json:"rate_value"`
	RateUnit     string   `json:"rate_unit"`
	MaturityDate string   `json:"maturity_date"`
	Term         *int     `json:"term"`
	TermUnit     string   `json:"term_unit"`
}

// Validate checks the edit before it is committed.
func (e Edit) Validate() error {
	v := validator.New()
	v.Required(e.Description, "description", "Investment Description")
	v.Check(e.Amount != nil, "amount", "Please input Invested Amount!")
	if e.RateUnit != "" {
		v.Check(e.RateUnit == RateUnitPercent || e.RateUnit == RateUnitYield, "rate_unit", "Rate unit must be % or Yield")
	}
	if e.TermUnit != "" {
		v.Check(e.TermUnit == TermUnitYears || e.TermUnit == TermUnitMonths, "term_unit", "Term unit must be Years or Months")
	}
	if e.Term != nil {
		v.Check(*e.Term >= 0, "term", "Term cannot be negative")
	}
	if e.MaturityDate != "" {
		_, err := time.Parse(dateLayout, e.MaturityDate)
		v.Check(err == nil, "maturity_date", "Maturity date must be YYYY-MM-DD")
	}
	return v.Err()
}

// Session is a user's working copy of their portfolio. It is safe for
// concurrent use. Changes reach the store only through an explicit save of
// Ledger.
type Session struct {
	mu   sync.Mutex
	tree *Tree
}

// NewSession starts an editing session over l.
func NewSession(l ledger.Ledger) *Session {
	return &Session{tree: ToEditableState(l)}
}

// Tree returns a copy of the current editable state.
func (s *Session) Tree() *Tree {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree.clone()
}

// Ledger converts the working copy back to the stored form.
func (s *Session) Ledger() ledger.Ledger {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ToLedger(s.tree)
}

// Add appends a blank item to an existing type group and returns it.
func (s *Session) Add(categoryKey, typeKey string) (Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cat := s.tree.Category(categoryKey)
	if cat == nil {
		return Item{}, ErrGroupNotFound
	}
	group := cat.Type(typeKey)
	if group == nil {
		return Item{}, ErrGroupNotFound
	}

	it := Item{
		ID:       uuid.New().String(),
		Type:     group.Name,
		RateUnit: RateUnitPercent,
		TermUnit: TermUnitYears,
	}
	group.Items = append(group.Items, it)
	return it, nil
}

// Update validates e and applies it to the item with the given id.
func (s *Session) Update(id string, e Edit) (Item, error) {
	if err := e.Validate(); err != nil {
		return Item{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	group, idx := s.find(id)
	if group == nil {
		return Item{}, ErrItemNotFound
	}

	it := group.Items[idx]
	it.Description = strings.TrimSpace(e.Description)
	it.Amount = *e.Amount
	it.RateValue = e.RateValue
	it.RateUnit = e.RateUnit
	if it.RateValue != nil && it.RateUnit == "" {
		it.RateUnit = RateUnitPercent
	}
	it.MaturityDate = e.MaturityDate
	it.Term = e.Term
	it.TermUnit = e.TermUnit
	group.Items[idx] = it
	return it, nil
}

// Delete removes the item with the given id. The type group stays in place
// even when it becomes empty.
func (s *Session) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	group, idx := s.find(id)
	if group == nil {
		return ErrItemNotFound
	}
	group.Items = append(group.Items[:idx], group.Items[idx+1:]...)
	return nil
}

func (s *Session) find(id string) (*TypeGroup, int) {
	for _, c := range s.tree.Categories {
		for _, g := range c.Types {
			for i := range g.Items {
				if g.Items[i].ID == id {
					return g, i
				}
			}
		}
	}
	return nil, -1
}

func (t *Tree) clone() *Tree {
	out := &Tree{Categories: make([]*CategoryGroup, 0, len(t.Categories))}
	for _, c := range t.Categories {
		cc := &CategoryGroup{Key: c.Key, Name: c.Name, Types: make([]*TypeGroup, 0, len(c.Types))}
		for _, g := range c.Types {
			items := make([]Item, len(g.Items))
			copy(items, g.Items)
			cc.Types = append(cc.Types, &TypeGroup{Key: g.Key, Name: g.Name, Items: items})
		}
		out.Categories = append(out.Categories, cc)
	}
	return out
}

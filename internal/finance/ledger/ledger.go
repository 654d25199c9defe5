package ledger

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Ledger maps a category name to its items in insertion order.
type Ledger map[string][]Item

// Decode parses a stored investments document. A null or empty document is an
// empty ledger. Categories whose value is not a list, and list entries that
// are not objects, are skipped rather than failing the whole document.
func Decode(data []byte) (Ledger, error) {
	l := Ledger{}
	if len(data) == 0 {
		return l, nil
	}
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, err
	}
	return l, nil
}

// UnmarshalJSON implements lenient decoding; see Decode.
func (l *Ledger) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("investments document is not an object: %w", err)
	}

	out := make(Ledger, len(raw))
	for category, body := range raw {
		var entries []json.RawMessage
		if err := json.Unmarshal(body, &entries); err != nil {
			continue
		}
		items := make([]Item, 0, len(entries))
		for _, e := range entries {
			var it Item
			if err := json.Unmarshal(e, &it); err != nil {
				continue
			}
			items = append(items, it)
		}
		out[category] = items
	}
	*l = out
	return nil
}

// CategoryNames returns the ledger's categories: major categories first in
// display order, then any others alphabetically.
func (l Ledger) CategoryNames() []string {
	names := make([]string, 0, len(l))
	for _, c := range Categories {
		if _, ok := l[c]; ok {
			names = append(names, c)
		}
	}
	var extra []string
	for c := range l {
		if !IsMajorCategory(c) {
			extra = append(extra, c)
		}
	}
	sort.Strings(extra)
	return append(names, extra...)
}

// ItemCount returns the total number of items across categories.
func (l Ledger) ItemCount() int {
	n := 0
	for _, items := range l {
		n += len(items)
	}
	return n
}

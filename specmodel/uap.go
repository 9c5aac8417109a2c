// specmodel/uap.go
package specmodel

import "fmt"

// UAPEntry is one slot of a UAP, indexed by Field Reference Number (FRN,
// 1-origin). It is either an empty/FX spare slot or a reference to a data
// item id (spec.md §3).
type UAPEntry struct {
	FRN    uint8
	ItemID string // empty for a spare slot
}

// Spare reports whether this FRN is an explicit spare slot rather than a
// data item reference.
func (e UAPEntry) Spare() bool { return e.ItemID == "" }

// UAP (User Application Profile) is the ordered, 1-origin map from FSPEC
// bit position to data item (spec.md §3).
type UAP struct {
	Entries []UAPEntry // index i holds FRN i+1
}

// NewUAP validates invariant 6 of spec.md §4.2: FRN indices 1..K with no
// gaps.
func NewUAP(entries []UAPEntry) (*UAP, error) {
	for i, e := range entries {
		if int(e.FRN) != i+1 {
			return nil, fmt.Errorf("%w: expected FRN %d at position %d, got %d", ErrUAPGap, i+1, i, e.FRN)
		}
	}
	return &UAP{Entries: entries}, nil
}

// EntryByFRN returns the entry for a 1-origin FRN, or false if out of
// range.
func (u *UAP) EntryByFRN(frn int) (UAPEntry, bool) {
	if frn < 1 || frn > len(u.Entries) {
		return UAPEntry{}, false
	}
	return u.Entries[frn-1], true
}

// MaxFRN returns the highest FRN declared in this UAP.
func (u *UAP) MaxFRN() int { return len(u.Entries) }

package core

import "fmt"

// HoldingsKind tags which variant a Holdings value currently carries.
type HoldingsKind int

const (
	// HoldingsList is the flat list of won lots used during the auction.
	HoldingsList HoldingsKind = iota
	// HoldingsRoster is a role-assigned squad produced after the auction.
	HoldingsRoster
)

func (k HoldingsKind) String() string {
	switch k {
	case HoldingsList:
		return "list"
	case HoldingsRoster:
		return "roster"
	default:
		return fmt.Sprintf("HoldingsKind(%d)", int(k))
	}
}

// Roster assigns a party's lots to lineup slots.
type Roster struct {
	Captain            *Lot
	WicketKeeper       *Lot
	BattingOrder       []*Lot
	PowerplayBowlers   []*Lot
	MiddleOversBowlers []*Lot
	DeathOversBowlers  []*Lot
	Bench              []*Lot
}

// Lots returns every lot named in the roster once, in slot order.
func (r *Roster) Lots() []*Lot {
	if r == nil {
		return nil
	}
	seen := make(map[*Lot]bool)
	out := make([]*Lot, 0)
	add := func(lots ...*Lot) {
		for _, l := range lots {
			if l == nil || seen[l] {
				continue
			}
			seen[l] = true
			out = append(out, l)
		}
	}
	add(r.Captain, r.WicketKeeper)
	add(r.BattingOrder...)
	add(r.PowerplayBowlers...)
	add(r.MiddleOversBowlers...)
	add(r.DeathOversBowlers...)
	add(r.Bench...)
	return out
}

// Holdings is either a flat list of lots or a role-assigned roster.
// Callers needing the owned lots go through Lots regardless of variant.
type Holdings struct {
	kind   HoldingsKind
	lots   []*Lot
	roster *Roster
}

// Kind reports the active variant.
func (h *Holdings) Kind() HoldingsKind {
	return h.kind
}

// Lots flattens either variant into the list of owned lots.
func (h *Holdings) Lots() []*Lot {
	if h.kind == HoldingsRoster {
		return h.roster.Lots()
	}
	out := make([]*Lot, len(h.lots))
	copy(out, h.lots)
	return out
}

// Roster returns the roster, or nil while holdings are a flat list.
func (h *Holdings) Roster() *Roster {
	if h.kind != HoldingsRoster {
		return nil
	}
	return h.roster
}

// Len returns the number of owned lots.
func (h *Holdings) Len() int {
	return len(h.Lots())
}

func (h *Holdings) add(lot *Lot) {
	if h.kind == HoldingsRoster {
		h.roster.Bench = append(h.roster.Bench, lot)
		return
	}
	h.lots = append(h.lots, lot)
}

// AssignRoster switches the holdings to the roster variant. Every lot in the
// roster must already be owned; owned lots the roster leaves out go to the bench.
func (h *Holdings) AssignRoster(r *Roster) error {
	if r == nil {
		return fmt.Errorf("roster is nil")
	}
	owned := make(map[*Lot]bool)
	for _, l := range h.Lots() {
		owned[l] = true
	}
	placed := make(map[*Lot]bool)
	for _, l := range r.Lots() {
		if !owned[l] {
			return fmt.Errorf("roster names %q which is not held", l.Name)
		}
		placed[l] = true
	}
	for _, l := range h.Lots() {
		if !placed[l] {
			r.Bench = append(r.Bench, l)
		}
	}
	h.kind = HoldingsRoster
	h.roster = r
	h.lots = nil
	return nil
}

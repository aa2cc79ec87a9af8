// Package symtab tracks labels, global symbols and pending relocations
// across a single assembly pass, then resolves them against the finished
// instruction stream.
package symtab

import (
	"github.com/oisee/rvasm/pkg/asmerr"
	"github.com/oisee/rvasm/pkg/riscv"
	"github.com/oisee/rvasm/pkg/token"
)

// SectionNdx identifies which section a global/extern symbol belongs to.
type SectionNdx uint8

const (
	SectionUndef SectionNdx = iota
	SectionText
	SectionData
	SectionBss
)

// PendingReloc is a deferred relocation: instruction inst references symbol,
// to be resolved once every label has been seen.
type PendingReloc struct {
	Inst   riscv.InstRef
	Symbol string
}

// Tracker keeps text labels, global/extern symbols and the pending
// relocation set for one assembly unit. Lookup is by map; emission order
// (into .strtab, and for symbol-table indices) is the insertion order
// recorded in the parallel order slices, matching the ordered-map shape
// spec.md's data model calls for without pulling in an ordered-map
// dependency — nothing in the retrieved pack ships one.
type Tracker struct {
	textLabels map[string]uint64
	labelOrder []string

	globalSymbols map[string]SectionNdx
	globalOrder   []string

	pending []PendingReloc
}

// New returns an empty Tracker.
func New() *Tracker {
	return &Tracker{
		textLabels:    make(map[string]uint64),
		globalSymbols: make(map[string]SectionNdx),
	}
}

// DefineLabel records name as bound to offset within .text. Redefining an
// existing label is fatal.
func (t *Tracker) DefineLabel(name string, offset uint64, pos token.Position) error {
	if _, exists := t.textLabels[name]; exists {
		return asmerr.New(asmerr.Semantic, pos, "label %q redefined", name)
	}
	t.textLabels[name] = offset
	t.labelOrder = append(t.labelOrder, name)
	return nil
}

// LookupLabel resolves a text label to its byte offset.
func (t *Tracker) LookupLabel(name string) (uint64, bool) {
	off, ok := t.textLabels[name]
	return off, ok
}

// LabelOrder returns every defined text label in definition order.
func (t *Tracker) LabelOrder() []string {
	return t.labelOrder
}

// DeclareGlobal records name as a global/extern symbol tagged with the
// section it lives in. Re-declaring an already-known global is a no-op.
func (t *Tracker) DeclareGlobal(name string, sec SectionNdx) {
	if _, exists := t.globalSymbols[name]; exists {
		return
	}
	t.globalSymbols[name] = sec
	t.globalOrder = append(t.globalOrder, name)
}

// LookupGlobal resolves a declared global/extern symbol to its section.
func (t *Tracker) LookupGlobal(name string) (SectionNdx, bool) {
	sec, ok := t.globalSymbols[name]
	return sec, ok
}

// GlobalOrder returns every declared global/extern symbol in declaration
// order (externs discovered by the Relocator are appended as they're seen).
func (t *Tracker) GlobalOrder() []string {
	return t.globalOrder
}

// FinalizeGlobals promotes every global/extern symbol still tagged
// SectionUndef to SectionText if it turns out to name a defined text label,
// so ".global name" resolves the same way regardless of whether it appears
// before or after the matching "name:" label.
func (t *Tracker) FinalizeGlobals() {
	for _, name := range t.globalOrder {
		if t.globalSymbols[name] == SectionUndef {
			if _, ok := t.textLabels[name]; ok {
				t.globalSymbols[name] = SectionText
			}
		}
	}
}

// AddPending records a deferred relocation against symbol for instruction
// inst, to be resolved by the Relocator once parsing finishes.
func (t *Tracker) AddPending(inst riscv.InstRef, symbol string) {
	t.pending = append(t.pending, PendingReloc{Inst: inst, Symbol: symbol})
}

// Pending returns every recorded relocation, insertion-order-stable.
func (t *Tracker) Pending() []PendingReloc {
	return t.pending
}

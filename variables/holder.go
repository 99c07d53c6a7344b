package variables

import (
	"sort"
	"strings"

	"github.com/archlinux/archwiki-sub029/afpdata"
)

// Slot is what a VariableHolder stores under a name: either a value, or a descriptor to compute it later.
type Slot struct {
	Value afpdata.Data
	Lazy  *LazyLoadedVariable
}

// IsLazy tells whether the slot still has to be computed.
func (s Slot) IsLazy() bool {
	return s.Lazy != nil
}

// VariableHolder holds the variables of a single evaluation. Names are case insensitive and stored lower-cased.
// A holder is not safe for concurrent use; every evaluation gets its own.
type VariableHolder struct {
	names []string
	slots map[string]Slot

	// Variables whose lazy computation is currently running, used to detect cycles.
	computing map[string]bool
}

// NewVariableHolder creates an empty holder.
func NewVariableHolder() *VariableHolder {
	return &VariableHolder{
		slots:     make(map[string]Slot),
		computing: make(map[string]bool),
	}
}

// NewVariableHolderFromNative creates a holder from plain values. Names are inserted in sorted order so the result
// does not depend on map iteration order.
func NewVariableHolderFromNative(vars map[string]interface{}) *VariableHolder {
	h := NewVariableHolder()

	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		h.SetVar(name, vars[name])
	}
	return h
}

// MergeHolders creates a new holder with the variables of all the given holders. Later holders win on conflicts.
func MergeHolders(holders ...*VariableHolder) *VariableHolder {
	h := NewVariableHolder()
	h.AddHolders(holders...)
	return h
}

// SetVar stores a value. Data and *LazyLoadedVariable are stored as is, anything else is converted with
// afpdata.FromNative.
func (h *VariableHolder) SetVar(name string, value interface{}) {
	var slot Slot
	switch v := value.(type) {
	case Slot:
		slot = v
	case *LazyLoadedVariable:
		slot = Slot{Lazy: v}
	case afpdata.Data:
		slot = Slot{Value: v}
	default:
		slot = Slot{Value: afpdata.FromNative(v)}
	}
	h.set(strings.ToLower(name), slot)
}

// SetLazyLoadVar stores a descriptor to compute the variable later, replacing whatever was there.
func (h *VariableHolder) SetLazyLoadVar(name string, method Method, parameters map[string]interface{}) {
	h.set(strings.ToLower(name), Slot{Lazy: NewLazyLoadedVariable(method, parameters)})
}

// GetVars returns a snapshot of all slots.
func (h *VariableHolder) GetVars() map[string]Slot {
	out := make(map[string]Slot, len(h.slots))
	for k, v := range h.slots {
		out[k] = v
	}
	return out
}

// Names returns the variable names in insertion order. Overwriting a variable keeps its position.
func (h *VariableHolder) Names() []string {
	out := make([]string, len(h.names))
	copy(out, h.names)
	return out
}

// Len returns the number of variables.
func (h *VariableHolder) Len() int {
	return len(h.names)
}

// GetVarThrow returns the slot of a variable, or an UnsetVariableError.
func (h *VariableHolder) GetVarThrow(name string) (Slot, error) {
	name = strings.ToLower(name)
	slot, ok := h.slots[name]
	if !ok {
		return Slot{}, &UnsetVariableError{Name: name}
	}
	return slot, nil
}

// VarIsSet tells whether a slot exists for the name, regardless of its value.
func (h *VariableHolder) VarIsSet(name string) bool {
	_, ok := h.slots[strings.ToLower(name)]
	return ok
}

// RemoveVar deletes a variable. Removing a variable that is not set does nothing.
func (h *VariableHolder) RemoveVar(name string) {
	name = strings.ToLower(name)
	if _, ok := h.slots[name]; !ok {
		return
	}
	delete(h.slots, name)
	for i, n := range h.names {
		if n == name {
			h.names = append(h.names[:i], h.names[i+1:]...)
			break
		}
	}
}

// AddHolders merges the variables of the given holders into h, in order. Later holders win on conflicts.
func (h *VariableHolder) AddHolders(holders ...*VariableHolder) {
	for _, other := range holders {
		for _, name := range other.names {
			h.set(name, other.slots[name])
		}
	}
}

func (h *VariableHolder) set(name string, slot Slot) {
	if _, ok := h.slots[name]; !ok {
		h.names = append(h.names, name)
	}
	h.slots[name] = slot
}

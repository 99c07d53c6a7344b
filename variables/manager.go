package variables

import (
	"sort"
	"strings"

	"github.com/archlinux/archwiki-sub029/afpdata"

	"github.com/rs/zerolog"
)

// LookupPolicy decides what GetVar returns for a variable that is not set.
type LookupPolicy int

// Lookup policies.
const (
	// Strict fails with an UnsetVariableError.
	Strict LookupPolicy = iota
	// Lax returns an undefined value.
	Lax
	// BC returns null, like filters written before undefined values existed expect.
	BC
)

// ComputeSelection tells DumpAllVars which lazy variables to compute.
type ComputeSelection struct {
	all   bool
	names map[string]bool
}

// ComputeNone computes no lazy variable. They are left out of the dump.
func ComputeNone() ComputeSelection {
	return ComputeSelection{}
}

// ComputeAll computes every lazy variable.
func ComputeAll() ComputeSelection {
	return ComputeSelection{all: true}
}

// ComputeOnly computes the named lazy variables and leaves the others out.
func ComputeOnly(names ...string) ComputeSelection {
	s := ComputeSelection{names: make(map[string]bool, len(names))}
	for _, name := range names {
		s.names[strings.ToLower(name)] = true
	}
	return s
}

func (s ComputeSelection) includes(name string) bool {
	return s.all || s.names[name]
}

// VariablesManager resolves, translates and exports the variables of a holder.
type VariablesManager struct {
	logger   zerolog.Logger
	keywords *KeywordsManager
	computer *LazyVariableComputer
}

// NewVariablesManager creates a VariablesManager.
func NewVariablesManager(logger zerolog.Logger, keywords *KeywordsManager, computer *LazyVariableComputer) *VariablesManager {
	return &VariablesManager{
		logger:   logger,
		keywords: keywords,
		computer: computer,
	}
}

// Keywords returns the KeywordsManager used to tell core variables from caller-set ones.
func (m *VariablesManager) Keywords() *KeywordsManager {
	return m.keywords
}

// GetVar returns the value of a variable, computing it if it is lazy. The computed value is not stored back into
// the holder. A lazy variable that requests itself, directly or through others, fails with a RecursiveVariableError.
func (m *VariablesManager) GetVar(holder *VariableHolder, name string, policy LookupPolicy) (afpdata.Data, error) {
	name = strings.ToLower(name)

	slot, err := holder.GetVarThrow(name)
	if err != nil {
		switch policy {
		case Lax:
			return afpdata.NewUndefined(), nil
		case BC:
			return afpdata.NewNull(), nil
		default:
			return afpdata.NewUndefined(), err
		}
	}

	if !slot.IsLazy() {
		return slot.Value, nil
	}

	if holder.computing == nil {
		holder.computing = make(map[string]bool)
	}
	if holder.computing[name] {
		return afpdata.NewUndefined(), &RecursiveVariableError{Name: name}
	}
	holder.computing[name] = true
	defer delete(holder.computing, name)

	return m.computer.Compute(slot.Lazy, holder, func(other string) (afpdata.Data, error) {
		return m.GetVar(holder, other, Strict)
	})
}

// TranslateDeprecatedVars renames every deprecated variable of the holder to its current name.
func (m *VariablesManager) TranslateDeprecatedVars(holder *VariableHolder) {
	deprecated := m.keywords.DeprecatedVars()

	olds := make([]string, 0, len(deprecated))
	for old := range deprecated {
		olds = append(olds, old)
	}
	sort.Strings(olds)

	for _, old := range olds {
		slot, err := holder.GetVarThrow(old)
		if err != nil {
			continue
		}
		holder.SetVar(deprecated[old], slot)
		holder.RemoveVar(old)
	}
}

// DumpAllVars exports the holder as native values. Lazy variables are computed when selected and left out otherwise.
// When includeUserVars is false, variables that are not core variables are left out too.
func (m *VariablesManager) DumpAllVars(holder *VariableHolder, compute ComputeSelection, includeUserVars bool) (map[string]interface{}, error) {
	out := make(map[string]interface{}, holder.Len())

	for _, name := range holder.Names() {
		if !includeUserVars && !m.keywords.IsCoreVar(name) {
			continue
		}

		slot := holder.slots[name]
		if !slot.IsLazy() {
			out[name] = slot.Value.ToNative()
			continue
		}
		if !compute.includes(name) {
			continue
		}

		value, err := m.GetVar(holder, name, Strict)
		if err != nil {
			return nil, err
		}
		out[name] = value.ToNative()
	}

	return out, nil
}

// ComputeDBVars computes every lazy variable that reads from the database and stores the result in the holder.
// Other lazy variables are left as they are.
func (m *VariablesManager) ComputeDBVars(holder *VariableHolder) error {
	for _, name := range holder.Names() {
		slot := holder.slots[name]
		if !slot.IsLazy() || !IsDBMethod(slot.Lazy.Method()) {
			continue
		}

		value, err := m.GetVar(holder, name, Strict)
		if err != nil {
			return err
		}
		holder.SetVar(name, value)
	}

	m.logger.Debug().Int("vars", holder.Len()).Msg("Computed database variables")
	return nil
}

// ExportAllVars exports the variables that are not lazy, without computing anything.
func (m *VariablesManager) ExportAllVars(holder *VariableHolder) map[string]interface{} {
	out := make(map[string]interface{})
	for name, slot := range holder.slots {
		if !slot.IsLazy() {
			out[name] = slot.Value.ToNative()
		}
	}
	return out
}

// ExportNonLazyVars is like ExportAllVars with every value converted to a string.
func (m *VariablesManager) ExportNonLazyVars(holder *VariableHolder) map[string]string {
	out := make(map[string]string)
	for name, slot := range holder.slots {
		if !slot.IsLazy() {
			out[name] = slot.Value.ToString()
		}
	}
	return out
}

// DBMethods returns the computations ComputeDBVars resolves, sorted.
func DBMethods() []Method {
	out := make([]Method, 0, len(dbMethods))
	for m := range dbMethods {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

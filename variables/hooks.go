package variables

import "github.com/archlinux/archwiki-sub029/afpdata"

// VariableHook lets code outside this package supply the value of a lazy variable. It returns ok=false to let
// others handle it. The holder must not be modified.
type VariableHook func(method Method, holder *VariableHolder, parameters map[string]interface{}) (result afpdata.Data, ok bool)

// Hooks holds the handlers consulted by the LazyVariableComputer. Intercept handlers run before the builtin
// computations, Compute handlers only when no builtin matched. Within a list, the first handler to answer wins.
type Hooks struct {
	intercept []VariableHook
	compute   []VariableHook
}

// NewHooks creates an empty set of hooks.
func NewHooks() *Hooks {
	return &Hooks{}
}

// OnInterceptVariable registers a handler that runs before the builtin computations.
func (h *Hooks) OnInterceptVariable(hook VariableHook) {
	h.intercept = append(h.intercept, hook)
}

// OnComputeVariable registers a handler for methods no builtin computation knows.
func (h *Hooks) OnComputeVariable(hook VariableHook) {
	h.compute = append(h.compute, hook)
}

func (h *Hooks) runIntercept(method Method, holder *VariableHolder, parameters map[string]interface{}) (afpdata.Data, bool) {
	if h == nil {
		return afpdata.Data{}, false
	}
	return run(h.intercept, method, holder, parameters)
}

func (h *Hooks) runCompute(method Method, holder *VariableHolder, parameters map[string]interface{}) (afpdata.Data, bool) {
	if h == nil {
		return afpdata.Data{}, false
	}
	return run(h.compute, method, holder, parameters)
}

func run(hooks []VariableHook, method Method, holder *VariableHolder, parameters map[string]interface{}) (afpdata.Data, bool) {
	for _, hook := range hooks {
		if result, ok := hook(method, holder, copyParams(parameters)); ok {
			return result, true
		}
	}
	return afpdata.Data{}, false
}

package variables

import "reflect"

// LazyLoadedVariable describes how to compute a variable once something asks for it. It holds no result.
type LazyLoadedVariable struct {
	method     Method
	parameters map[string]interface{}
}

// NewLazyLoadedVariable creates a descriptor. The parameter map is copied.
func NewLazyLoadedVariable(method Method, parameters map[string]interface{}) *LazyLoadedVariable {
	return &LazyLoadedVariable{method: method, parameters: copyParams(parameters)}
}

// Method returns the computation to run.
func (v *LazyLoadedVariable) Method() Method {
	return v.method
}

// Parameters returns a copy of the arguments of the computation.
func (v *LazyLoadedVariable) Parameters() map[string]interface{} {
	return copyParams(v.parameters)
}

// Equal tells whether both descriptors have the same method and parameters.
func (v *LazyLoadedVariable) Equal(other *LazyLoadedVariable) bool {
	if v == nil || other == nil {
		return v == other
	}
	if v.method != other.method || len(v.parameters) != len(other.parameters) {
		return false
	}
	for k, p := range v.parameters {
		o, ok := other.parameters[k]
		if !ok || !reflect.DeepEqual(p, o) {
			return false
		}
	}
	return true
}

func copyParams(in map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

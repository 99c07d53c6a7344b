package afpdata

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strings"
)

// Type is the tag of a Data value.
type Type int

// Types a Data value can hold.
const (
	Undefined Type = iota
	Null
	Bool
	Int
	Float
	String
	List
)

var typeNames = map[Type]string{
	Undefined: "undefined",
	Null:      "null",
	Bool:      "bool",
	Int:       "int",
	Float:     "float",
	String:    "string",
	List:      "array",
}

func (t Type) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// Data is the runtime value of the filter language. The tag decides which payload field is meaningful.
// Values are never mutated after construction.
type Data struct {
	typ  Type
	b    bool
	i    int64
	f    float64
	s    string
	list []Data
}

// NewUndefined returns the value of a variable that could not be resolved.
func NewUndefined() Data { return Data{typ: Undefined} }

// NewNull returns the null value.
func NewNull() Data { return Data{typ: Null} }

// NewBool wraps a bool.
func NewBool(b bool) Data { return Data{typ: Bool, b: b} }

// NewInt wraps an int64.
func NewInt(i int64) Data { return Data{typ: Int, i: i} }

// NewFloat wraps a float64.
func NewFloat(f float64) Data { return Data{typ: Float, f: f} }

// NewString wraps a string.
func NewString(s string) Data { return Data{typ: String, s: s} }

// NewList creates a list from the given items. The items are copied.
func NewList(items ...Data) Data {
	list := make([]Data, len(items))
	copy(list, items)
	return Data{typ: List, list: list}
}

// Type returns the tag of the value.
func (d Data) Type() Type { return d.typ }

// Items returns a copy of the list items, or nil if d is not a list.
func (d Data) Items() []Data {
	if d.typ != List {
		return nil
	}
	items := make([]Data, len(d.list))
	copy(items, d.list)
	return items
}

// Len returns the number of list items, or 0 if d is not a list.
func (d Data) Len() int {
	if d.typ != List {
		return 0
	}
	return len(d.list)
}

// FromNative converts JSON-safe Go values into Data. Lists are converted recursively.
// Any other type is a programming error and panics.
func fromUnsigned(v uint64) Data {
	if v > math.MaxInt64 {
		panic(fmt.Sprintf("unsigned integer %d overflows int64", v))
	}
	return NewInt(int64(v))
}

func FromNative(v interface{}) Data {
	switch v := v.(type) {
	case nil:
		return NewNull()
	case Data:
		return v
	case bool:
		return NewBool(v)
	case int:
		return NewInt(int64(v))
	case int8:
		return NewInt(int64(v))
	case int16:
		return NewInt(int64(v))
	case int32:
		return NewInt(int64(v))
	case int64:
		return NewInt(v)
	case uint:
		return fromUnsigned(uint64(v))
	case uint8:
		return NewInt(int64(v))
	case uint16:
		return NewInt(int64(v))
	case uint32:
		return NewInt(int64(v))
	case uint64:
		return fromUnsigned(v)
	case float32:
		return NewFloat(float64(v))
	case float64:
		return NewFloat(v)
	case json.Number:
		if n, err := v.Int64(); err == nil && !strings.ContainsAny(string(v), ".eE") {
			return NewInt(n)
		}
		f, err := v.Float64()
		if err != nil {
			panic(fmt.Sprintf("invalid json.Number %q", string(v)))
		}
		return NewFloat(f)
	case string:
		return NewString(v)
	case []Data:
		return NewList(v...)
	case []interface{}:
		list := make([]Data, 0, len(v))
		for _, item := range v {
			list = append(list, FromNative(item))
		}
		return Data{typ: List, list: list}
	case []string:
		list := make([]Data, 0, len(v))
		for _, item := range v {
			list = append(list, NewString(item))
		}
		return Data{typ: List, list: list}
	case []int64:
		list := make([]Data, 0, len(v))
		for _, item := range v {
			list = append(list, NewInt(item))
		}
		return Data{typ: List, list: list}
	default:
		// If this happens, there is a serious programming error.
		panic(fmt.Sprintf("unsupported native type %s", reflect.TypeOf(v)))
	}
}

// ToNative converts the value back to plain Go values. Undefined and Null both become nil; check Type first if the
// difference matters.
func (d Data) ToNative() interface{} {
	switch d.typ {
	case Bool:
		return d.b
	case Int:
		return d.i
	case Float:
		return d.f
	case String:
		return d.s
	case List:
		out := make([]interface{}, 0, len(d.list))
		for _, item := range d.list {
			out = append(out, item.ToNative())
		}
		return out
	default:
		return nil
	}
}

// HasUndefined tells whether the value is undefined, or is a list containing an undefined value at any depth.
func (d Data) HasUndefined() bool {
	if d.typ == Undefined {
		return true
	}
	for _, item := range d.list {
		if item.HasUndefined() {
			return true
		}
	}
	return false
}

// CloneAsUndefinedReplacedWithNull returns a copy where every undefined value is replaced by null.
func (d Data) CloneAsUndefinedReplacedWithNull() Data {
	switch d.typ {
	case Undefined:
		return NewNull()
	case List:
		list := make([]Data, 0, len(d.list))
		for _, item := range d.list {
			list = append(list, item.CloneAsUndefinedReplacedWithNull())
		}
		return Data{typ: List, list: list}
	default:
		return d
	}
}

// String is a debugging representation including the tag.
func (d Data) String() string {
	switch d.typ {
	case Undefined, Null:
		return d.typ.String()
	case List:
		parts := make([]string, 0, len(d.list))
		for _, item := range d.list {
			parts = append(parts, item.String())
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case String:
		return fmt.Sprintf("%q", d.s)
	default:
		return fmt.Sprintf("%s(%s)", d.typ, d.ToString())
	}
}

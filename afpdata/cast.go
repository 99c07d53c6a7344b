package afpdata

import (
	"math"
	"strconv"
	"strings"
)

// ToBool casts the value to a bool. Lists are true when non-empty, strings are false when empty or "0".
func (d Data) ToBool() bool {
	switch d.typ {
	case Bool:
		return d.b
	case Int:
		return d.i != 0
	case Float:
		return d.f != 0
	case String:
		return d.s != "" && d.s != "0"
	case List:
		return len(d.list) > 0
	default:
		return false
	}
}

// ToInt casts the value to an int64. Lists become their length, strings are parsed by their leading numeric prefix.
func (d Data) ToInt() int64 {
	switch d.typ {
	case Bool:
		if d.b {
			return 1
		}
		return 0
	case Int:
		return d.i
	case Float:
		return floatToInt(d.f)
	case String:
		prefix := numericPrefix(d.s, false)
		n, err := strconv.ParseInt(prefix, 10, 64)
		if err != nil {
			// Out of range, fall back to float parsing which saturates.
			f, _ := strconv.ParseFloat(prefix, 64)
			return floatToInt(f)
		}
		return n
	case List:
		return int64(len(d.list))
	default:
		return 0
	}
}

// ToFloat casts the value to a float64.
func (d Data) ToFloat() float64 {
	switch d.typ {
	case Bool:
		if d.b {
			return 1
		}
		return 0
	case Int:
		return float64(d.i)
	case Float:
		return d.f
	case String:
		f, _ := strconv.ParseFloat(numericPrefix(d.s, true), 64)
		return f
	case List:
		return float64(len(d.list))
	default:
		return 0
	}
}

// ToString casts the value to a string. Every list item is followed by a newline.
func (d Data) ToString() string {
	switch d.typ {
	case Bool:
		if d.b {
			return "1"
		}
		return ""
	case Int:
		return strconv.FormatInt(d.i, 10)
	case Float:
		return formatFloat(d.f)
	case String:
		return d.s
	case List:
		var b strings.Builder
		for _, item := range d.list {
			b.WriteString(item.ToString())
			b.WriteByte('\n')
		}
		return b.String()
	default:
		return ""
	}
}

// ToList casts the value to a list. Null and undefined become an empty list, scalars a single-item list.
func (d Data) ToList() Data {
	switch d.typ {
	case List:
		return d
	case Null, Undefined:
		return NewList()
	default:
		return NewList(d)
	}
}

// CastTo converts the value to the given type.
func (d Data) CastTo(t Type) Data {
	if d.typ == t {
		return d
	}

	switch t {
	case Bool:
		return NewBool(d.ToBool())
	case Int:
		return NewInt(d.ToInt())
	case Float:
		return NewFloat(d.ToFloat())
	case String:
		return NewString(d.ToString())
	case List:
		return d.ToList()
	case Null:
		return NewNull()
	default:
		return NewUndefined()
	}
}

func floatToInt(f float64) int64 {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt64:
		return math.MaxInt64
	case f <= math.MinInt64:
		return math.MinInt64
	}
	return int64(f)
}

// formatFloat prints floats the way the filter language always has: 14 significant digits, integral values without
// a fraction, and exponents like "1.0E+25".
func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NAN"
	case math.IsInf(f, 1):
		return "INF"
	case math.IsInf(f, -1):
		return "-INF"
	}

	s := strconv.FormatFloat(f, 'G', 14, 64)
	e := strings.IndexByte(s, 'E')
	if e < 0 {
		return s
	}

	mantissa, exp := s[:e], s[e+1:]
	if !strings.Contains(mantissa, ".") {
		mantissa += ".0"
	}
	sign := exp[:1]
	digits := strings.TrimLeft(exp[1:], "0")
	if digits == "" {
		digits = "0"
	}
	return mantissa + "E" + sign + digits
}

// numericPrefix returns the longest leading part of s that reads as a number, ignoring leading whitespace. It
// returns "0" if there is none.
func numericPrefix(s string, allowFloat bool) string {
	s = strings.TrimLeft(s, " \t\n\r\v\f")
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digitsStart := i
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	intDigits := i - digitsStart

	if !allowFloat {
		if intDigits == 0 {
			return "0"
		}
		return s[:i]
	}

	fracDigits := 0
	if i < len(s) && s[i] == '.' {
		j := i + 1
		for j < len(s) && isDigit(s[j]) {
			j++
		}
		fracDigits = j - i - 1
		if intDigits > 0 || fracDigits > 0 {
			i = j
		}
	}
	if intDigits == 0 && fracDigits == 0 {
		return "0"
	}

	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		k := j
		for k < len(s) && isDigit(s[k]) {
			k++
		}
		if k > j {
			i = k
		}
	}

	return s[:i]
}

// isNumeric tells whether the whole string reads as a number, allowing surrounding whitespace.
func isNumeric(s string) bool {
	t := strings.Trim(s, " \t\n\r\v\f")
	if t == "" {
		return false
	}
	return numericPrefix(t, true) == t
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

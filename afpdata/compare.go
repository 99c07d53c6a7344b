package afpdata

import "strings"

// Equal tells whether two values are equal. Scalars are compared by their string forms, and in strict mode also by
// type. Lists are compared item by item. A list is never equal to a scalar, except that an empty list loosely equals
// false and null.
func (d Data) Equal(other Data, strict bool) bool {
	switch {
	case d.typ != List && other.typ != List:
		if strict && d.typ != other.typ {
			return false
		}
		return d.ToString() == other.ToString()

	case d.typ == List && other.typ == List:
		if len(d.list) != len(other.list) {
			return false
		}
		for i := range d.list {
			if !d.list[i].Equal(other.list[i], strict) {
				return false
			}
		}
		return true

	default:
		if strict {
			return false
		}
		list, scalar := d, other
		if other.typ == List {
			list, scalar = other, d
		}
		if len(list.list) != 0 {
			return false
		}
		return (scalar.typ == Bool && !scalar.b) || scalar.typ == Null
	}
}

// Compare orders two values, returning -1, 0 or 1.
//
// Numbers compare numerically. A string and a number compare numerically when the string is numeric, otherwise the
// number's string form is compared lexicographically. Bools and nulls compare as bools, except that null against a
// string compares as the empty string. Lists compare item by item and then by length, and sort after every scalar.
func (d Data) Compare(other Data) int {
	a, b := d.nullIfUndefined(), other.nullIfUndefined()

	switch {
	case a.typ == List && b.typ == List:
		for i := 0; i < len(a.list) && i < len(b.list); i++ {
			if c := a.list[i].Compare(b.list[i]); c != 0 {
				return c
			}
		}
		return compareInts(int64(len(a.list)), int64(len(b.list)))
	case a.typ == List:
		return 1
	case b.typ == List:
		return -1
	}

	switch {
	case a.typ == Null && b.typ == String:
		return strings.Compare("", b.s)
	case a.typ == String && b.typ == Null:
		return strings.Compare(a.s, "")
	case a.typ == Bool || b.typ == Bool || a.typ == Null || b.typ == Null:
		return compareBools(a.ToBool(), b.ToBool())
	}

	aNum, bNum := a.isNumber(), b.isNumber()
	switch {
	case aNum && bNum:
		return compareNumbers(a, b)
	case aNum && isNumeric(b.s), bNum && isNumeric(a.s):
		return compareNumbers(a, b)
	case !aNum && !bNum && isNumeric(a.s) && isNumeric(b.s):
		return compareNumbers(a, b)
	default:
		return strings.Compare(a.ToString(), b.ToString())
	}
}

func (d Data) nullIfUndefined() Data {
	if d.typ == Undefined {
		return NewNull()
	}
	return d
}

func (d Data) isNumber() bool {
	return d.typ == Int || d.typ == Float
}

func compareNumbers(a, b Data) int {
	if a.typ == Int && b.typ == Int {
		return compareInts(a.i, b.i)
	}
	if a.typ == String && !strings.ContainsAny(a.s, ".eE") && b.typ == Int {
		return compareInts(a.ToInt(), b.i)
	}
	if b.typ == String && !strings.ContainsAny(b.s, ".eE") && a.typ == Int {
		return compareInts(a.i, b.ToInt())
	}

	x, y := a.ToFloat(), b.ToFloat()
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	default:
		return 0
	}
}

func compareInts(x, y int64) int {
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	default:
		return 0
	}
}

func compareBools(x, y bool) int {
	switch {
	case x == y:
		return 0
	case !x:
		return -1
	default:
		return 1
	}
}

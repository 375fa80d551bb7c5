package bytecode

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindNil Kind = iota
	KindBoolean
	KindInteger
	KindFloat
	KindString
	KindNative
)

var kindNames = [...]string{
	KindNil:     "nil",
	KindBoolean: "boolean",
	KindInteger: "integer",
	KindFloat:   "float",
	KindString:  "string",
	KindNative:  "function",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Native is a host-provided function callable through OpCall.
type Native struct {
	Name string
	Fn   func(args []Value) error
}

// Value is a runtime value.
//
// Numeric and boolean payloads share the bits field: integers are stored
// as their two's complement, floats as their IEEE 754 bit pattern and
// booleans as 0 or 1. This keeps Value comparable with ==, and two values
// are == exactly when they are the same variant with an identical payload.
// The zero Value is nil.
type Value struct {
	kind Kind
	bits uint64
	str  string
	fn   *Native
}

// Nil returns the nil value.
func Nil() Value { return Value{} }

// Bool returns a boolean value.
func Bool(b bool) Value {
	if b {
		return Value{kind: KindBoolean, bits: 1}
	}
	return Value{kind: KindBoolean}
}

// Int returns an integer value.
func Int(n int64) Value { return Value{kind: KindInteger, bits: uint64(n)} }

// Float returns a float value.
func Float(f float64) Value { return Value{kind: KindFloat, bits: math.Float64bits(f)} }

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// NativeValue wraps a host function.
func NativeValue(fn *Native) Value { return Value{kind: KindNative, fn: fn} }

// Kind returns the variant of v.
func (v Value) Kind() Kind { return v.kind }

// IsNil reports whether v is nil.
func (v Value) IsNil() bool { return v.kind == KindNil }

// AsBool returns the boolean payload. Only meaningful for KindBoolean.
func (v Value) AsBool() bool { return v.bits != 0 }

// AsInt returns the integer payload. Only meaningful for KindInteger.
func (v Value) AsInt() int64 { return int64(v.bits) }

// AsFloat returns the float payload. Only meaningful for KindFloat.
func (v Value) AsFloat() float64 { return math.Float64frombits(v.bits) }

// AsString returns the string payload. Only meaningful for KindString.
func (v Value) AsString() string { return v.str }

// AsNative returns the native function, or nil if v is not KindNative.
func (v Value) AsNative() *Native {
	if v.kind != KindNative {
		return nil
	}
	return v.fn
}

// Equal reports whether v and o are the same variant with identical payloads.
// Integer and float values never compare equal, and floats compare by bit
// pattern. This is the identity the constant table deduplicates on.
func (v Value) Equal(o Value) bool {
	return v == o
}

// RawEqual is run-time equality: integers and floats compare by numeric
// value, everything else as Equal. NaN is not equal to itself.
func RawEqual(a, b Value) bool {
	switch {
	case a.kind == KindFloat && b.kind == KindFloat:
		return a.AsFloat() == b.AsFloat()
	case a.kind == KindInteger && b.kind == KindFloat:
		return intEqualsFloat(a.AsInt(), b.AsFloat())
	case a.kind == KindFloat && b.kind == KindInteger:
		return intEqualsFloat(b.AsInt(), a.AsFloat())
	}
	return a == b
}

func intEqualsFloat(i int64, f float64) bool {
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return false
	}
	// 2^63 is exactly representable and already out of int64 range.
	if f < -9223372036854775808.0 || f >= 9223372036854775808.0 {
		return false
	}
	return int64(f) == i
}

// String renders v the way print shows it.
func (v Value) String() string {
	switch v.kind {
	case KindNil:
		return "nil"
	case KindBoolean:
		if v.AsBool() {
			return "true"
		}
		return "false"
	case KindInteger:
		return strconv.FormatInt(v.AsInt(), 10)
	case KindFloat:
		return FormatFloat(v.AsFloat())
	case KindString:
		return v.str
	case KindNative:
		if v.fn == nil {
			return "function: builtin"
		}
		return "function: builtin: " + v.fn.Name
	default:
		panic(fmt.Sprintf("bytecode: unhandled value kind %d", v.kind))
	}
}

// GoString renders v with its variant, for listings and test failures.
func (v Value) GoString() string {
	switch v.kind {
	case KindString:
		return strconv.Quote(v.str)
	case KindNil, KindBoolean, KindInteger, KindFloat, KindNative:
		return v.String()
	default:
		panic(fmt.Sprintf("bytecode: unhandled value kind %d", v.kind))
	}
}

// FormatFloat renders f in decimal with at least one fractional digit when
// 1e-4 <= |f| < 1e16, and in shortest scientific notation otherwise. The
// window and the exponent form (1e16, 2.5e-7, no "+" and no padding) follow
// Rust's Debug formatting of f64, so large and tiny floats carry no ".0".
func FormatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}

	abs := math.Abs(f)
	if abs == 0 || (abs >= 1e-4 && abs < 1e16) {
		s := strconv.FormatFloat(f, 'f', -1, 64)
		if !strings.ContainsRune(s, '.') {
			s += ".0"
		}
		return s
	}

	// Go renders 1e+16 and 1.5e-07; trim to 1e16 and 1.5e-7.
	s := strconv.FormatFloat(f, 'e', -1, 64)
	mant, exp, _ := strings.Cut(s, "e")
	sign := ""
	if exp[0] == '-' {
		sign = "-"
	}
	exp = strings.TrimLeft(exp[1:], "0")
	if exp == "" {
		exp = "0"
	}
	return mant + "e" + sign + exp
}

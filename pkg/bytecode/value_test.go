package bytecode

import (
	"math"
	"testing"
)

func TestValueEqualSameVariant(t *testing.T) {
	tests := []struct {
		a, b Value
		want bool
	}{
		{Nil(), Nil(), true},
		{Bool(true), Bool(true), true},
		{Bool(true), Bool(false), false},
		{Int(42), Int(42), true},
		{Int(42), Int(43), false},
		{Float(1.5), Float(1.5), true},
		{Float(1.5), Float(2.5), false},
		{String("a"), String("a"), true},
		{String("a"), String("b"), false},
		{Nil(), Bool(false), false},
		{Int(0), Bool(false), false},
		{String("1"), Int(1), false},
	}

	for _, tt := range tests {
		if got := tt.a.Equal(tt.b); got != tt.want {
			t.Errorf("%#v.Equal(%#v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
		if got := tt.b.Equal(tt.a); got != tt.want {
			t.Errorf("%#v.Equal(%#v) = %v, want %v", tt.b, tt.a, got, tt.want)
		}
	}
}

func TestIntegerNeverEqualsFloat(t *testing.T) {
	for _, n := range []int64{0, 1, -1, 123456, 1 << 40, math.MaxInt32} {
		if Int(n).Equal(Float(float64(n))) {
			t.Errorf("Int(%d).Equal(Float(%d)) = true, want false", n, n)
		}
	}
}

func TestRawEqualIsNumeric(t *testing.T) {
	tests := []struct {
		a, b Value
		want bool
	}{
		{Int(3), Float(3), true},
		{Float(3), Int(3), true},
		{Int(3), Float(3.5), false},
		{Int(math.MaxInt64), Float(math.MaxInt64), false}, // float rounds to 2^63
		{Float(math.NaN()), Float(math.NaN()), false},
		{Float(0), Float(math.Copysign(0, -1)), true},
		{String("x"), String("x"), true},
		{Nil(), Bool(false), false},
	}

	for _, tt := range tests {
		if got := RawEqual(tt.a, tt.b); got != tt.want {
			t.Errorf("RawEqual(%#v, %#v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestEqualFloatsByBitPattern(t *testing.T) {
	nan := Float(math.NaN())
	if !nan.Equal(nan) {
		t.Error("NaN constant should be identical to itself")
	}
	if Float(0).Equal(Float(math.Copysign(0, -1))) {
		t.Error("0.0 and -0.0 should be distinct constants")
	}
}

func TestValueString(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{Nil(), "nil"},
		{Bool(true), "true"},
		{Bool(false), "false"},
		{Int(123), "123"},
		{Int(-9), "-9"},
		{Int(123456), "123456"},
		{Float(123456), "123456.0"},
		{Float(0), "0.0"},
		{Float(3.14), "3.14"},
		{Float(0.5), "0.5"},
		{Float(0.0001), "0.0001"},
		{Float(0.00001), "1e-5"},
		{Float(1e15), "1000000000000000.0"},
		{Float(1e16), "1e16"},
		{Float(1.5e300), "1.5e300"},
		{Float(math.Inf(1)), "inf"},
		{Float(math.Inf(-1)), "-inf"},
		{Float(math.NaN()), "nan"},
		{String("hello world"), "hello world"},
		{String(""), ""},
	}

	for _, tt := range tests {
		if got := tt.v.String(); got != tt.want {
			t.Errorf("%#v.String() = %q, want %q", tt.v, got, tt.want)
		}
	}
}

// Outside the decimal window floats print in exponent form with no ".0",
// the same as Rust's {:?} for f64.
func TestFormatFloatExponentForm(t *testing.T) {
	tests := []struct {
		f    float64
		want string
	}{
		{9999999999999998, "9999999999999998.0"},
		{1e16, "1e16"},
		{-1e16, "-1e16"},
		{1.5e16, "1.5e16"},
		{1e100, "1e100"},
		{2.5e-7, "2.5e-7"},
	}

	for _, tt := range tests {
		if got := FormatFloat(tt.f); got != tt.want {
			t.Errorf("FormatFloat(%v) = %q, want %q", tt.f, got, tt.want)
		}
	}
}

func TestNativeValue(t *testing.T) {
	fn := &Native{Name: "print", Fn: func([]Value) error { return nil }}
	v := NativeValue(fn)

	if v.Kind() != KindNative {
		t.Fatalf("Kind() = %v, want function", v.Kind())
	}
	if v.AsNative() != fn {
		t.Error("AsNative() did not return the wrapped function")
	}
	if !v.Equal(NativeValue(fn)) {
		t.Error("same native should be Equal")
	}
	other := &Native{Name: "print", Fn: fn.Fn}
	if v.Equal(NativeValue(other)) {
		t.Error("distinct natives should not be Equal")
	}
	if Int(1).AsNative() != nil {
		t.Error("AsNative() on an integer should be nil")
	}
}

func TestZeroValueIsNil(t *testing.T) {
	var v Value
	if !v.IsNil() || !v.Equal(Nil()) {
		t.Errorf("zero Value = %#v, want nil", v)
	}
}

func TestKindString(t *testing.T) {
	if KindInteger.String() != "integer" {
		t.Errorf("KindInteger.String() = %q", KindInteger.String())
	}
	if Kind(99).String() != "Kind(99)" {
		t.Errorf("Kind(99).String() = %q", Kind(99).String())
	}
}

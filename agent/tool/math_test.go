package tool

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func call(t *testing.T, namespace, function string, args ...any) (any, error) {
	t.Helper()
	fn, err := NewDefaultRegistry().Resolve(namespace, function)
	require.NoError(t, err)
	return fn.Invoke(args)
}

func TestMathArithmetic(t *testing.T) {
	t.Parallel()

	tests := []struct {
		function string
		args     []any
		want     any
	}{
		{"add", []any{2.0, 3.0, 4.0}, 9.0},
		{"add", nil, 0.0},
		{"subtract", []any{10.0, 4.0}, 6.0},
		{"multiply", []any{3.0, 4.0}, 12.0},
		{"multiply", nil, 0.0},
		{"divide", []any{7.0, 2.0}, 3.5},
		{"modulo", []any{-7.0, 3.0}, 2.0},
		{"floor_divide", []any{-7.0, 2.0}, -4.0},
		{"power", []any{2.0, 10.0}, 1024.0},
		{"square_root", []any{81.0}, 9.0},
		{"nth_root", []any{-27.0, 3.0}, -3.0},
		{"median", []any{3.0, 1.0, 4.0, 2.0}, 2.5},
		{"mode", []any{1.0, 2.0, 2.0, 3.0}, 2.0},
		{"mode", []any{1.0, 2.0}, 1.0},
		{"mode", []any{3.0, 1.0, 1.0, 3.0}, 3.0},
		{"range_values", []any{4.0, -1.0, 9.0}, 10.0},
		{"variance", []any{2.0, 4.0, 4.0, 4.0, 5.0, 5.0, 7.0, 9.0}, 32.0 / 7.0},
		{"factorial", []any{5.0}, 120.0},
		{"gcd", []any{12.0, 18.0, 30.0}, 6.0},
		{"lcm", []any{4.0, 6.0}, 12.0},
		{"percentage", []any{25.0, 200.0}, 12.5},
		{"percentage_change", []any{50.0, 75.0}, 50.0},
		{"round_number", []any{2.5}, 2.0},
		{"round_number", []any{3.14159, 2.0}, 3.14},
		{"truncate", []any{-3.7}, -3.0},
		{"maximum", []any{1.0, 8.0, 3.0}, 8.0},
		{"is_prime", []any{97.0}, true},
		{"is_prime", []any{91.0}, false},
		{"is_even", []any{4.0}, true},
		{"is_odd", []any{3.5}, true},
		{"evaluate", []any{"2 + 3 * (4 - 1)"}, 11.0},
		{"evaluate", []any{"2 ** 3 ** 2"}, 512.0},
		{"evaluate", []any{"-2 ^ 2"}, -4.0},
		{"evaluate", []any{"7 // 2 + 7 % 2"}, 4.0},
	}

	for _, tt := range tests {
		got, err := call(t, NamespaceMath, tt.function, tt.args...)
		require.NoError(t, err, tt.function)
		if f, ok := tt.want.(float64); ok {
			assert.InDelta(t, f, got, 1e-9, "%s%v", tt.function, tt.args)
			continue
		}
		assert.Equal(t, tt.want, got, "%s%v", tt.function, tt.args)
	}
}

func TestMathTrigonometryInDegrees(t *testing.T) {
	t.Parallel()

	got, err := call(t, NamespaceMath, "sin", 30.0)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, got, 1e-9)

	got, err = call(t, NamespaceMath, "acos", 0.0)
	require.NoError(t, err)
	assert.InDelta(t, 90.0, got, 1e-9)

	got, err = call(t, NamespaceMath, "log", 8.0, 2.0)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, got, 1e-9)

	got, err = call(t, NamespaceMath, "log", math.E)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, got, 1e-9)
}

func TestMathDomainErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		function string
		args     []any
		msg      string
	}{
		{"divide", []any{5.0, 0.0}, "cannot divide by zero"},
		{"modulo", []any{5.0, 0.0}, "cannot calculate modulo by zero"},
		{"square_root", []any{-1.0}, "cannot calculate square root of negative number"},
		{"nth_root", []any{-16.0, 2.0}, "cannot calculate even root of negative number"},
		{"average", nil, "cannot calculate average of empty list"},
		{"variance", []any{1.0}, "need at least 2 values to calculate variance"},
		{"factorial", []any{2.5}, "factorial is only defined for integers"},
		{"log", []any{0.0}, "cannot calculate log of non-positive number"},
		{"log", []any{8.0, 1.0}, "base must be positive and not equal to 1"},
		{"asin", []any{2.0}, "value must be between -1 and 1"},
		{"compare", []any{1.0, 2.0, "<>"}, "unknown operator: <>"},
		{"evaluate", []any{"2 + abc"}, "expression contains invalid characters"},
		{"evaluate", []any{"(1 + 2"}, "expression has unbalanced parentheses"},
		{"add", []any{1.0, true}, "argument 2: expected a number, got bool"},
		{"exp", []any{1000.0}, "math range error"},
		{"power", []any{10.0, 400.0}, "math range error"},
		{"factorial", []any{171.0}, "math range error"},
	}

	for _, tt := range tests {
		_, err := call(t, NamespaceMath, tt.function, tt.args...)
		require.Error(t, err, tt.function)
		assert.Equal(t, tt.msg, err.Error(), tt.function)
	}
}

func TestMathComparisons(t *testing.T) {
	t.Parallel()

	got, err := call(t, NamespaceMath, "compare", 5.0, 3.0, "≥")
	require.NoError(t, err)
	assert.Equal(t, true, got)

	got, err = call(t, NamespaceMath, "greater_than", "b", "a")
	require.NoError(t, err)
	assert.Equal(t, true, got)

	got, err = call(t, NamespaceMath, "equal_to", 2.0, "two")
	require.NoError(t, err)
	assert.Equal(t, false, got)

	_, err = call(t, NamespaceMath, "less_than", 2.0, "two")
	assert.Error(t, err)
}

func TestMathAcceptsNumericStrings(t *testing.T) {
	t.Parallel()

	got, err := call(t, NamespaceMath, "add", "2", 3)
	require.NoError(t, err)
	assert.Equal(t, 5.0, got)
}

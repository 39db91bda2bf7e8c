package tool

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const NamespaceMath = "math_tools"

func LoadMathTools() (*Namespace, error) {
	ns := NewNamespace(NamespaceMath)
	if err := ns.AddAll(mathFunctions()...); err != nil {
		return nil, err
	}
	return ns, nil
}

func mathFunctions() []Function {
	return []Function{
		// Arithmetic
		{Name: "add", Description: "Add multiple numbers.", Signature: Variadic("args"), Call: variadic(func(xs []float64) (any, error) {
			return floats.Sum(xs), nil
		})},
		{Name: "subtract", Description: "Subtract b from a.", Signature: Fixed("a", "b"), Call: binary(func(a, b float64) (any, error) {
			return a - b, nil
		})},
		{Name: "multiply", Description: "Multiply multiple numbers.", Signature: Variadic("args"), Call: variadic(func(xs []float64) (any, error) {
			if len(xs) == 0 {
				return 0.0, nil
			}
			return floats.Prod(xs), nil
		})},
		{Name: "divide", Description: "Divide a by b.", Signature: Fixed("a", "b"), Call: binary(func(a, b float64) (any, error) {
			if b == 0 {
				return nil, errDivisionByZero
			}
			return a / b, nil
		})},
		{Name: "modulo", Description: "Calculate a modulo b (remainder).", Signature: Fixed("a", "b"), Call: binary(func(a, b float64) (any, error) {
			if b == 0 {
				return nil, errors.New("cannot calculate modulo by zero")
			}
			return floorMod(a, b), nil
		})},
		{Name: "floor_divide", Description: "Floor division of a by b.", Signature: Fixed("a", "b"), Call: binary(func(a, b float64) (any, error) {
			if b == 0 {
				return nil, errDivisionByZero
			}
			return math.Floor(a / b), nil
		})},
		{Name: "evaluate", Description: "Evaluate an arithmetic expression such as '2 + 3 * (4 - 1)'.", Signature: Fixed("expression"), Call: func(args []any) (any, error) {
			expr, err := text(args, 0)
			if err != nil {
				return nil, err
			}
			return evaluateExpression(expr)
		}},

		// Powers and roots
		{Name: "power", Description: "Raise base to the power of exponent.", Signature: Fixed("base", "exponent"), Call: binary(func(a, b float64) (any, error) {
			return math.Pow(a, b), nil
		})},
		{Name: "square", Description: "Calculate square of n.", Signature: Fixed("n"), Call: unary(func(n float64) (any, error) {
			return n * n, nil
		})},
		{Name: "cube", Description: "Calculate cube of n.", Signature: Fixed("n"), Call: unary(func(n float64) (any, error) {
			return n * n * n, nil
		})},
		{Name: "square_root", Description: "Calculate square root of n.", Signature: Fixed("n"), Call: unary(func(n float64) (any, error) {
			if n < 0 {
				return nil, errors.New("cannot calculate square root of negative number")
			}
			return math.Sqrt(n), nil
		})},
		{Name: "cube_root", Description: "Calculate cube root of n.", Signature: Fixed("n"), Call: unary(func(n float64) (any, error) {
			return math.Cbrt(n), nil
		})},
		{Name: "nth_root", Description: "Calculate nth root of n.", Signature: Fixed("n", "root"), Call: binary(nthRoot)},

		// Statistics
		{Name: "average", Description: "Calculate average (mean) of multiple numbers.", Signature: Variadic("args"), Call: variadic(nonEmpty("average", func(xs []float64) any {
			return floats.Sum(xs) / float64(len(xs))
		}))},
		{Name: "mean", Description: "Calculate arithmetic mean of multiple numbers.", Signature: Variadic("args"), Call: variadic(nonEmpty("mean", func(xs []float64) any {
			return stat.Mean(xs, nil)
		}))},
		{Name: "median", Description: "Calculate median of multiple numbers.", Signature: Variadic("args"), Call: variadic(nonEmpty("median", median))},
		{Name: "mode", Description: "Calculate mode of multiple numbers.", Signature: Variadic("args"), Call: variadic(nonEmpty("mode", mode))},
		{Name: "range_values", Description: "Calculate range (max - min) of multiple numbers.", Signature: Variadic("args"), Call: variadic(nonEmpty("range", func(xs []float64) any {
			return floats.Max(xs) - floats.Min(xs)
		}))},
		{Name: "variance", Description: "Calculate variance of multiple numbers.", Signature: Variadic("args"), Call: variadic(func(xs []float64) (any, error) {
			if len(xs) < 2 {
				return nil, errors.New("need at least 2 values to calculate variance")
			}
			return stat.Variance(xs, nil), nil
		})},
		{Name: "standard_deviation", Description: "Calculate standard deviation of multiple numbers.", Signature: Variadic("args"), Call: variadic(func(xs []float64) (any, error) {
			if len(xs) < 2 {
				return nil, errors.New("need at least 2 values to calculate standard deviation")
			}
			return stat.StdDev(xs, nil), nil
		})},

		// Number theory and percentages
		{Name: "absolute", Description: "Calculate absolute value of n.", Signature: Fixed("n"), Call: unary(func(n float64) (any, error) {
			return math.Abs(n), nil
		})},
		{Name: "factorial", Description: "Calculate factorial of n.", Signature: Fixed("n"), Call: factorial},
		{Name: "gcd", Description: "Calculate greatest common divisor of multiple numbers.", Signature: Variadic("args"), Call: gcdAll},
		{Name: "lcm", Description: "Calculate least common multiple of multiple numbers.", Signature: Variadic("args"), Call: lcmAll},
		{Name: "percentage", Description: "Calculate percentage of value in total.", Signature: Fixed("value", "total"), Call: binary(func(value, total float64) (any, error) {
			if total == 0 {
				return nil, errors.New("cannot calculate percentage with zero total")
			}
			return value / total * 100, nil
		})},
		{Name: "percentage_change", Description: "Calculate percentage change from old to new value.", Signature: Fixed("old_value", "new_value"), Call: binary(func(oldValue, newValue float64) (any, error) {
			if oldValue == 0 {
				return nil, errors.New("cannot calculate percentage change from zero")
			}
			return (newValue - oldValue) / oldValue * 100, nil
		})},

		// Trigonometry, in degrees
		{Name: "sin", Description: "Calculate sine of angle in degrees.", Signature: Fixed("angle_degrees"), Call: unary(func(d float64) (any, error) {
			return math.Sin(radians(d)), nil
		})},
		{Name: "cos", Description: "Calculate cosine of angle in degrees.", Signature: Fixed("angle_degrees"), Call: unary(func(d float64) (any, error) {
			return math.Cos(radians(d)), nil
		})},
		{Name: "tan", Description: "Calculate tangent of angle in degrees.", Signature: Fixed("angle_degrees"), Call: unary(func(d float64) (any, error) {
			return math.Tan(radians(d)), nil
		})},
		{Name: "asin", Description: "Calculate arcsine in degrees.", Signature: Fixed("value"), Call: unary(func(v float64) (any, error) {
			if v < -1 || v > 1 {
				return nil, errors.New("value must be between -1 and 1")
			}
			return degrees(math.Asin(v)), nil
		})},
		{Name: "acos", Description: "Calculate arccosine in degrees.", Signature: Fixed("value"), Call: unary(func(v float64) (any, error) {
			if v < -1 || v > 1 {
				return nil, errors.New("value must be between -1 and 1")
			}
			return degrees(math.Acos(v)), nil
		})},
		{Name: "atan", Description: "Calculate arctangent in degrees.", Signature: Fixed("value"), Call: unary(func(v float64) (any, error) {
			return degrees(math.Atan(v)), nil
		})},

		// Logarithms and exponentials
		{Name: "log", Description: "Calculate logarithm of n with given base (default: natural log).", Signature: Fixed("n").WithDefault("base", math.E), Call: binary(func(n, base float64) (any, error) {
			if n <= 0 {
				return nil, errNonPositiveLog
			}
			if base <= 0 || base == 1 {
				return nil, errors.New("base must be positive and not equal to 1")
			}
			return math.Log(n) / math.Log(base), nil
		})},
		{Name: "log10", Description: "Calculate base-10 logarithm of n.", Signature: Fixed("n"), Call: unary(positiveLog(math.Log10))},
		{Name: "log2", Description: "Calculate base-2 logarithm of n.", Signature: Fixed("n"), Call: unary(positiveLog(math.Log2))},
		{Name: "natural_log", Description: "Calculate natural logarithm of n.", Signature: Fixed("n"), Call: unary(positiveLog(math.Log))},
		{Name: "exp", Description: "Calculate e raised to the power of n.", Signature: Fixed("n"), Call: unary(func(n float64) (any, error) {
			return math.Exp(n), nil
		})},
		{Name: "exp2", Description: "Calculate 2 raised to the power of n.", Signature: Fixed("n"), Call: unary(func(n float64) (any, error) {
			return math.Exp2(n), nil
		})},
		{Name: "exp10", Description: "Calculate 10 raised to the power of n.", Signature: Fixed("n"), Call: unary(func(n float64) (any, error) {
			return math.Pow(10, n), nil
		})},

		// Rounding
		{Name: "round_number", Description: "Round number to specified decimal places.", Signature: Fixed("n").WithDefault("decimals", 0.0), Call: roundNumber},
		{Name: "ceiling", Description: "Round up to nearest integer.", Signature: Fixed("n"), Call: unary(func(n float64) (any, error) {
			return math.Ceil(n), nil
		})},
		{Name: "floor", Description: "Round down to nearest integer.", Signature: Fixed("n"), Call: unary(func(n float64) (any, error) {
			return math.Floor(n), nil
		})},
		{Name: "truncate", Description: "Remove decimal part (truncate towards zero).", Signature: Fixed("n"), Call: unary(func(n float64) (any, error) {
			return math.Trunc(n), nil
		})},
		{Name: "minimum", Description: "Find minimum value among multiple numbers.", Signature: Variadic("args"), Call: variadic(nonEmpty("minimum", func(xs []float64) any {
			return floats.Min(xs)
		}))},
		{Name: "maximum", Description: "Find maximum value among multiple numbers.", Signature: Variadic("args"), Call: variadic(nonEmpty("maximum", func(xs []float64) any {
			return floats.Max(xs)
		}))},

		// Comparisons
		{Name: "greater_than", Description: "Check if a is greater than b.", Signature: Fixed("a", "b"), Call: comparison(">")},
		{Name: "less_than", Description: "Check if a is less than b.", Signature: Fixed("a", "b"), Call: comparison("<")},
		{Name: "equal_to", Description: "Check if a equals b.", Signature: Fixed("a", "b"), Call: comparison("==")},
		{Name: "greater_than_or_equal", Description: "Check if a is greater than or equal to b.", Signature: Fixed("a", "b"), Call: comparison(">=")},
		{Name: "less_than_or_equal", Description: "Check if a is less than or equal to b.", Signature: Fixed("a", "b"), Call: comparison("<=")},
		{Name: "not_equal_to", Description: "Check if a is not equal to b.", Signature: Fixed("a", "b"), Call: comparison("!=")},
		{Name: "compare", Description: "Compare two values using specified operator.", Signature: Fixed("a", "b", "operator"), Call: func(args []any) (any, error) {
			op, err := text(args, 2)
			if err != nil {
				return nil, err
			}
			return compareValues(args[0], args[1], op)
		}},

		// Predicates
		{Name: "is_even", Description: "Check if number is even.", Signature: Fixed("n"), Call: unary(func(n float64) (any, error) {
			return floorMod(n, 2) == 0, nil
		})},
		{Name: "is_odd", Description: "Check if number is odd.", Signature: Fixed("n"), Call: unary(func(n float64) (any, error) {
			return floorMod(n, 2) != 0, nil
		})},
		{Name: "is_prime", Description: "Check if number is prime.", Signature: Fixed("n"), Call: unary(func(n float64) (any, error) {
			return isPrime(n), nil
		})},
		{Name: "is_positive", Description: "Check if number is positive.", Signature: Fixed("n"), Call: unary(func(n float64) (any, error) {
			return n > 0, nil
		})},
		{Name: "is_negative", Description: "Check if number is negative.", Signature: Fixed("n"), Call: unary(func(n float64) (any, error) {
			return n < 0, nil
		})},
		{Name: "is_zero", Description: "Check if number is zero.", Signature: Fixed("n"), Call: unary(func(n float64) (any, error) {
			return n == 0, nil
		})},
	}
}

var errNonPositiveLog = errors.New("cannot calculate log of non-positive number")

func nonEmpty(what string, fn func([]float64) any) func([]float64) (any, error) {
	return func(xs []float64) (any, error) {
		if len(xs) == 0 {
			return nil, fmt.Errorf("cannot calculate %s of empty list", what)
		}
		return fn(xs), nil
	}
}

func positiveLog(fn func(float64) float64) func(float64) (any, error) {
	return func(n float64) (any, error) {
		if n <= 0 {
			return nil, errNonPositiveLog
		}
		return fn(n), nil
	}
}

func nthRoot(n, root float64) (any, error) {
	if root == 0 {
		return nil, errors.New("cannot calculate 0th root")
	}
	if n < 0 && floorMod(root, 2) == 0 {
		return nil, errors.New("cannot calculate even root of negative number")
	}
	if n < 0 {
		return -math.Pow(-n, 1/root), nil
	}
	return math.Pow(n, 1/root), nil
}

func median(xs []float64) any {
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// mode returns the most frequent value. Ties go to the value seen first.
func mode(xs []float64) any {
	counts := make(map[float64]int, len(xs))
	for _, x := range xs {
		counts[x]++
	}
	best, bestCount := xs[0], 0
	for _, x := range xs {
		if c := counts[x]; c > bestCount {
			best, bestCount = x, c
		}
	}
	return best
}

func factorial(args []any) (any, error) {
	n, err := number(args, 0)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, errors.New("cannot calculate factorial of negative number")
	}
	if n != math.Trunc(n) {
		return nil, errors.New("factorial is only defined for integers")
	}
	result := 1.0
	for i := 2.0; i <= n; i++ {
		result *= i
	}
	return result, nil
}

func gcd(a, b int) int {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func gcdAll(args []any) (any, error) {
	ns, err := integers(args)
	if err != nil {
		return nil, err
	}
	if len(ns) == 0 {
		return nil, errors.New("cannot calculate GCD of empty list")
	}
	result := ns[0]
	for _, n := range ns[1:] {
		result = gcd(result, n)
	}
	if result < 0 {
		result = -result
	}
	return float64(result), nil
}

func lcmAll(args []any) (any, error) {
	ns, err := integers(args)
	if err != nil {
		return nil, err
	}
	if len(ns) == 0 {
		return nil, errors.New("cannot calculate LCM of empty list")
	}
	result := ns[0]
	for _, n := range ns[1:] {
		g := gcd(result, n)
		if g == 0 {
			result = 0
			continue
		}
		prod := result * n
		if prod < 0 {
			prod = -prod
		}
		result = prod / g
	}
	return float64(result), nil
}

func roundNumber(args []any) (any, error) {
	n, err := number(args, 0)
	if err != nil {
		return nil, err
	}
	decimals, err := integer(args, 1)
	if err != nil {
		return nil, err
	}
	scale := math.Pow(10, float64(decimals))
	return math.RoundToEven(n*scale) / scale, nil
}

func radians(d float64) float64 {
	return d * math.Pi / 180
}

func degrees(r float64) float64 {
	return r * 180 / math.Pi
}

func isPrime(n float64) bool {
	if n < 2 {
		return false
	}
	if n == 2 {
		return true
	}
	if floorMod(n, 2) == 0 {
		return false
	}
	limit := math.Floor(math.Sqrt(n))
	for i := 3.0; i <= limit; i += 2 {
		if floorMod(n, i) == 0 {
			return false
		}
	}
	return true
}

func comparison(op string) Func {
	return func(args []any) (any, error) {
		return compareValues(args[0], args[1], op)
	}
}

// compareValues compares two numbers or two strings. Mixed kinds are only
// ever unequal.
func compareValues(a, b any, op string) (bool, error) {
	var c int
	switch {
	case isNumeric(a) && isNumeric(b):
		x, _ := toNumber(a, 0)
		y, _ := toNumber(b, 1)
		c = cmp.Compare(x, y)
	case isString(a) && isString(b):
		c = cmp.Compare(a.(string), b.(string))
	default:
		switch op {
		case "==", "=":
			return false, nil
		case "!=", "≠":
			return true, nil
		}
		return false, fmt.Errorf("cannot compare %T with %T", a, b)
	}

	switch op {
	case ">":
		return c > 0, nil
	case "<":
		return c < 0, nil
	case "==", "=":
		return c == 0, nil
	case ">=", "≥":
		return c >= 0, nil
	case "<=", "≤":
		return c <= 0, nil
	case "!=", "≠":
		return c != 0, nil
	default:
		return false, fmt.Errorf("unknown operator: %s", op)
	}
}

func isString(v any) bool {
	_, ok := v.(string)
	return ok
}

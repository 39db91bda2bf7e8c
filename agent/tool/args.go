package tool

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

func number(args []any, i int) (float64, error) {
	return toNumber(args[i], i)
}

func toNumber(v any, i int) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return 0, fmt.Errorf("argument %d: invalid number %q", i+1, x.String())
		}
		return f, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, fmt.Errorf("argument %d: expected a number, got %q", i+1, x)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("argument %d: expected a number, got %T", i+1, v)
	}
}

func numbers(args []any) ([]float64, error) {
	out := make([]float64, 0, len(args))
	for i, a := range args {
		f, err := toNumber(a, i)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

func integer(args []any, i int) (int, error) {
	return toInteger(args[i], i)
}

func toInteger(v any, i int) (int, error) {
	f, err := toNumber(v, i)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, fmt.Errorf("argument %d: expected an integer, got %v", i+1, f)
	}
	return int(f), nil
}

func integers(args []any) ([]int, error) {
	out := make([]int, 0, len(args))
	for i, a := range args {
		n, err := toInteger(a, i)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func text(args []any, i int) (string, error) {
	s, ok := args[i].(string)
	if !ok {
		return "", fmt.Errorf("argument %d: expected a string, got %T", i+1, args[i])
	}
	return s, nil
}

func texts(args []any, idx ...int) ([]string, error) {
	out := make([]string, 0, len(idx))
	for _, i := range idx {
		s, err := text(args, i)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func list(args []any, i int) ([]any, error) {
	switch x := args[i].(type) {
	case []any:
		return x, nil
	case []int:
		out := make([]any, 0, len(x))
		for _, n := range x {
			out = append(out, n)
		}
		return out, nil
	case []float64:
		out := make([]any, 0, len(x))
		for _, n := range x {
			out = append(out, n)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("argument %d: expected a list, got %T", i+1, args[i])
	}
}

// isNumeric reports whether v is a number value, not a numeric string.
func isNumeric(v any) bool {
	switch v.(type) {
	case float64, float32, int, int64, int32, json.Number:
		return true
	}
	return false
}

// Helpers that adapt typed bodies to Func.

func unary(fn func(float64) (any, error)) Func {
	return func(args []any) (any, error) {
		n, err := number(args, 0)
		if err != nil {
			return nil, err
		}
		return fn(n)
	}
}

func binary(fn func(a, b float64) (any, error)) Func {
	return func(args []any) (any, error) {
		a, err := number(args, 0)
		if err != nil {
			return nil, err
		}
		b, err := number(args, 1)
		if err != nil {
			return nil, err
		}
		return fn(a, b)
	}
}

func variadic(fn func([]float64) (any, error)) Func {
	return func(args []any) (any, error) {
		xs, err := numbers(args)
		if err != nil {
			return nil, err
		}
		return fn(xs)
	}
}

func textFn(fn func(string) any) Func {
	return func(args []any) (any, error) {
		s, err := text(args, 0)
		if err != nil {
			return nil, err
		}
		return fn(s), nil
	}
}

func textPair(fn func(a, b string) any) Func {
	return func(args []any) (any, error) {
		ss, err := texts(args, 0, 1)
		if err != nil {
			return nil, err
		}
		return fn(ss[0], ss[1]), nil
	}
}

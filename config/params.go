package config

import "fmt"

// Params carries the free-form parameter block of a node definition.
// YAML scalars arrive untyped; the getters coerce them and name the
// offending parameter on a mismatch. Absent keys yield the fallback.
type Params map[string]interface{}

// Float returns the parameter as a float64.
func (p Params) Float(key string, fallback float64) (float64, error) {
	v, ok := p[key]
	if !ok {
		return fallback, nil
	}
	f, ok := toFloat(v)
	if !ok {
		return 0, fmt.Errorf("%s: expected a number, got %T", key, v)
	}
	return f, nil
}

// Int returns the parameter as an int. Fractional numbers are rejected.
func (p Params) Int(key string, fallback int) (int, error) {
	v, ok := p[key]
	if !ok {
		return fallback, nil
	}
	f, ok := toFloat(v)
	if !ok || f != float64(int(f)) {
		return 0, fmt.Errorf("%s: expected an integer, got %v", key, v)
	}
	return int(f), nil
}

// String returns the parameter as a string.
func (p Params) String(key, fallback string) (string, error) {
	v, ok := p[key]
	if !ok {
		return fallback, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%s: expected a string, got %T", key, v)
	}
	return s, nil
}

// Bool returns the parameter as a bool.
func (p Params) Bool(key string, fallback bool) (bool, error) {
	v, ok := p[key]
	if !ok {
		return fallback, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("%s: expected a bool, got %T", key, v)
	}
	return b, nil
}

// Floats returns the parameter as a slice of float64. Absent keys yield
// nil.
func (p Params) Floats(key string) ([]float64, error) {
	v, ok := p[key]
	if !ok {
		return nil, nil
	}
	items, ok := v.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%s: expected a list of numbers, got %T", key, v)
	}
	out := make([]float64, len(items))
	for i, item := range items {
		f, ok := toFloat(item)
		if !ok {
			return nil, fmt.Errorf("%s[%d]: expected a number, got %T", key, i, item)
		}
		out[i] = f
	}
	return out, nil
}

// Ints returns the parameter as a slice of int. Absent keys yield nil.
func (p Params) Ints(key string) ([]int, error) {
	values, err := p.Floats(key)
	if err != nil {
		return nil, err
	}
	if values == nil {
		return nil, nil
	}
	out := make([]int, len(values))
	for i, f := range values {
		if f != float64(int(f)) {
			return nil, fmt.Errorf("%s[%d]: expected an integer, got %v", key, i, f)
		}
		out[i] = int(f)
	}
	return out, nil
}

// Strings returns the parameter as a slice of strings. Absent keys yield
// nil.
func (p Params) Strings(key string) ([]string, error) {
	v, ok := p[key]
	if !ok {
		return nil, nil
	}
	items, ok := v.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%s: expected a list of strings, got %T", key, v)
	}
	out := make([]string, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("%s[%d]: expected a string, got %T", key, i, item)
		}
		out[i] = s
	}
	return out, nil
}

// Rows returns the parameter as a matrix of numbers. Absent keys yield
// nil.
func (p Params) Rows(key string) ([][]float64, error) {
	v, ok := p[key]
	if !ok {
		return nil, nil
	}
	items, ok := v.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%s: expected a list of rows, got %T", key, v)
	}
	out := make([][]float64, len(items))
	for i, item := range items {
		cells, ok := item.([]interface{})
		if !ok {
			return nil, fmt.Errorf("%s[%d]: expected a row of numbers, got %T", key, i, item)
		}
		row := make([]float64, len(cells))
		for j, cell := range cells {
			f, ok := toFloat(cell)
			if !ok {
				return nil, fmt.Errorf("%s[%d][%d]: expected a number, got %T", key, i, j, cell)
			}
			row[j] = f
		}
		out[i] = row
	}
	return out, nil
}

// toFloat widens any numeric type the YAML decoder may produce.
func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

package schema

import (
	"strconv"
	"strings"
	"time"
)

// Column maps one CSV column onto a value of T. A column is bound by header Name unless Index is set with
// At, in which case the header is not consulted.
type Column[T any] struct {
	Name     string
	Index    int
	Required bool
	Set      func(*T, string) error
}

// Custom builds a column from a setter that parses the raw value itself.
func Custom[T any](name string, set func(*T, string) error) Column[T] {
	return Column[T]{Name: name, Index: -1, Set: set}
}

func String[T any](name string, set func(*T, string)) Column[T] {
	return Custom(name, func(t *T, s string) error {
		set(t, s)
		return nil
	})
}

// Int parses base-10 integers; surrounding whitespace is ignored.
func Int[T any](name string, set func(*T, int64)) Column[T] {
	return Custom(name, func(t *T, s string) error {
		v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return err
		}
		set(t, v)
		return nil
	})
}

func Float[T any](name string, set func(*T, float64)) Column[T] {
	return Custom(name, func(t *T, s string) error {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return err
		}
		set(t, v)
		return nil
	})
}

// Bool accepts the forms strconv.ParseBool does plus yes/no and y/n.
func Bool[T any](name string, set func(*T, bool)) Column[T] {
	return Custom(name, func(t *T, s string) error {
		v, err := parseBool(s)
		if err != nil {
			return err
		}
		set(t, v)
		return nil
	})
}

// Time parses values with layout, as time.Parse does.
func Time[T any](name, layout string, set func(*T, time.Time)) Column[T] {
	return Custom(name, func(t *T, s string) error {
		v, err := time.Parse(layout, strings.TrimSpace(s))
		if err != nil {
			return err
		}
		set(t, v)
		return nil
	})
}

// At binds the column to a zero-based position instead of a header name.
func (c Column[T]) At(index int) Column[T] {
	c.Index = index
	return c
}

// Require makes empty and null values an error.
func (c Column[T]) Require() Column[T] {
	c.Required = true
	return c
}

func (c Column[T]) positional() bool {
	return c.Index >= 0
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y":
		return true, nil
	case "no", "n":
		return false, nil
	}
	return strconv.ParseBool(strings.TrimSpace(s))
}

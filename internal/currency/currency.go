// Package currency resolves ISO 4217 alphabetic codes to their numeric form.
package currency

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	bcurrency "github.com/bojanz/currency"
)

var (
	ErrUnknownCode    = errors.New("unknown currency")
	ErrInvalidNumeric = errors.New("invalid numeric currency code")
)

// Currency is a resolved table entry. Code is the integer form of Numeric
// ("008" -> 8) and is only set by Lookup.
type Currency struct {
	Alpha   string
	Numeric string
	Code    int
}

type Table interface {
	Lookup(alpha string) (Currency, error)
}

type isoTable struct{}

// ISO4217 returns the table of active currencies bundled with
// github.com/bojanz/currency.
func ISO4217() Table {
	return isoTable{}
}

func (isoTable) Lookup(alpha string) (Currency, error) {
	key := normalize(alpha)
	numeric, ok := bcurrency.GetNumericCode(key)
	if !ok {
		return Currency{}, fmt.Errorf("%w: %q", ErrUnknownCode, alpha)
	}
	return resolve(key, numeric)
}

type table struct {
	byAlpha map[string]string
}

// New builds a table from the given entries. Intended for fakes in tests
// and for restricting a merchant to a subset of currencies.
func New(entries ...Currency) Table {
	t := &table{byAlpha: make(map[string]string, len(entries))}
	for _, c := range entries {
		t.byAlpha[normalize(c.Alpha)] = c.Numeric
	}
	return t
}

func (t *table) Lookup(alpha string) (Currency, error) {
	key := normalize(alpha)
	numeric, ok := t.byAlpha[key]
	if !ok {
		return Currency{}, fmt.Errorf("%w: %q", ErrUnknownCode, alpha)
	}
	return resolve(key, numeric)
}

func normalize(alpha string) string {
	return strings.ToUpper(strings.TrimSpace(alpha))
}

// resolve requires exactly three digits with a nonzero value.
func resolve(alpha, numeric string) (Currency, error) {
	n, err := strconv.Atoi(numeric)
	if err != nil || len(numeric) != 3 || n <= 0 {
		return Currency{}, fmt.Errorf("%w: %q for %s", ErrInvalidNumeric, numeric, alpha)
	}
	return Currency{Alpha: alpha, Numeric: numeric, Code: n}, nil
}

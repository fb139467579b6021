// Package models defines the domain entities and their conversions to and
// from store records.
package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"gudang/internal/store"
)

// Stored field values arrive either as the Go values the service wrote or,
// after a database round trip, as the types encoding/json produces. The
// helpers below accept both.

func fieldString(f store.Fields, key string) string {
	if v, ok := f[key].(string); ok {
		return v
	}
	return ""
}

func fieldInt(f store.Fields, key string) (int, error) {
	switch v := f[key].(type) {
	case nil:
		return 0, nil
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	case json.Number:
		n, err := v.Int64()
		return int(n), err
	default:
		return 0, fmt.Errorf("field %q: unexpected type %T", key, v)
	}
}

func fieldDecimal(f store.Fields, key string) (decimal.Decimal, error) {
	switch v := f[key].(type) {
	case nil:
		return decimal.Zero, nil
	case string:
		if v == "" {
			return decimal.Zero, nil
		}
		return decimal.NewFromString(v)
	case float64:
		return decimal.NewFromFloat(v), nil
	case decimal.Decimal:
		return v, nil
	default:
		return decimal.Zero, fmt.Errorf("field %q: unexpected type %T", key, v)
	}
}

func fieldDate(f store.Fields, key string) (time.Time, error) {
	switch v := f[key].(type) {
	case nil:
		return time.Time{}, nil
	case string:
		if v == "" {
			return time.Time{}, nil
		}
		return time.Parse(time.DateOnly, v)
	case time.Time:
		return v, nil
	default:
		return time.Time{}, fmt.Errorf("field %q: unexpected type %T", key, v)
	}
}

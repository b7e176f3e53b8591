package catalog

import (
	"os"
	"strconv"
	"strings"
)

const (
	EnvMaxNameLen        = "CATALOG_MAX_NAME_LEN"
	EnvMaxDescriptionLen = "CATALOG_MAX_DESCRIPTION_LEN"
	EnvMaxStock          = "CATALOG_MAX_STOCK"

	DefaultMaxNameLen        = 200
	DefaultMaxDescriptionLen = 2000
	DefaultMaxStock          = 1_000_000

	nameLenFloor, nameLenCeil               = 1, 10_000
	descriptionLenFloor, descriptionLenCeil = 1, 50_000
	stockFloor, stockCeil                   = 0, 10_000_000
)

// Lookup returns the raw value configured for key and whether it was set.
type Lookup func(key string) (string, bool)

// EnvLookup reads bounds straight from the process environment.
var EnvLookup Lookup = os.LookupEnv

// Bounds are the input limits enforced by validation.
type Bounds struct {
	MaxNameLen        int `json:"max_name_len"`
	MaxDescriptionLen int `json:"max_description_len"`
	MaxStock          int `json:"max_stock"`
}

func DefaultBounds() Bounds {
	return Bounds{
		MaxNameLen:        DefaultMaxNameLen,
		MaxDescriptionLen: DefaultMaxDescriptionLen,
		MaxStock:          DefaultMaxStock,
	}
}

// Clamp forces every limit into its hard safety range.
func (b Bounds) Clamp() Bounds {
	return Bounds{
		MaxNameLen:        clamp(b.MaxNameLen, nameLenFloor, nameLenCeil),
		MaxDescriptionLen: clamp(b.MaxDescriptionLen, descriptionLenFloor, descriptionLenCeil),
		MaxStock:          clamp(b.MaxStock, stockFloor, stockCeil),
	}
}

func ResolveBounds(lookup Lookup) Bounds {
	return Bounds{
		MaxNameLen:        ResolveMaxNameLen(lookup),
		MaxDescriptionLen: ResolveMaxDescriptionLen(lookup),
		MaxStock:          ResolveMaxStock(lookup),
	}
}

func ResolveMaxNameLen(lookup Lookup) int {
	return resolve(lookup, EnvMaxNameLen, DefaultMaxNameLen, nameLenFloor, nameLenCeil)
}

func ResolveMaxDescriptionLen(lookup Lookup) int {
	return resolve(lookup, EnvMaxDescriptionLen, DefaultMaxDescriptionLen, descriptionLenFloor, descriptionLenCeil)
}

func ResolveMaxStock(lookup Lookup) int {
	return resolve(lookup, EnvMaxStock, DefaultMaxStock, stockFloor, stockCeil)
}

func resolve(lookup Lookup, key string, def, lo, hi int) int {
	if lookup == nil {
		lookup = EnvLookup
	}
	v := def
	if raw, ok := lookup(key); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil {
			v = n
		}
	}
	return clamp(v, lo, hi)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Package model defines the core domain models used throughout the application.
package model

import (
	"fmt"
	"strings"
)

// Category is a physical container size class for automated-storage routing.
type Category string

// Container categories, ordered smallest to largest.
const (
	CategoryPouch     Category = "POUCH"
	CategorySmallBin  Category = "SMALL_BIN"
	CategoryTote      Category = "TOTE"
	CategoryCarton    Category = "CARTON"
	CategoryOversized Category = "OVERSIZED"
)

// Categories lists all container categories in ascending size order.
var Categories = []Category{
	CategoryPouch,
	CategorySmallBin,
	CategoryTote,
	CategoryCarton,
	CategoryOversized,
}

// ParseCategory maps a string onto the closed category set.
func ParseCategory(s string) (Category, error) {
	switch Category(strings.ToUpper(strings.TrimSpace(s))) {
	case CategoryPouch:
		return CategoryPouch, nil
	case CategorySmallBin:
		return CategorySmallBin, nil
	case CategoryTote:
		return CategoryTote, nil
	case CategoryCarton:
		return CategoryCarton, nil
	case CategoryOversized:
		return CategoryOversized, nil
	default:
		return "", fmt.Errorf("unknown category: %q", s)
	}
}

// DisplayName returns a human-readable name for the category.
func (c Category) DisplayName() string {
	switch c {
	case CategoryPouch:
		return "Pouch"
	case CategorySmallBin:
		return "Small Bin"
	case CategoryTote:
		return "Tote"
	case CategoryCarton:
		return "Carton"
	case CategoryOversized:
		return "Oversized"
	default:
		return string(c)
	}
}

// Description returns the typical product profile for the category.
func (c Category) Description() string {
	switch c {
	case CategoryPouch:
		return "Apparel, soft goods, flat items"
	case CategorySmallBin:
		return "Electronics, small parts, cosmetics"
	case CategoryTote:
		return "General merchandise, packaged goods"
	case CategoryCarton:
		return "Bulky items, multi-packs"
	case CategoryOversized:
		return "Items exceeding standard container limits"
	default:
		return ""
	}
}

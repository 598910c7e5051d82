package eligibility

import (
	"strings"
)

// Category is the closed set of product categories sourced from suppliers
type Category string

const (
	CategoryTowel         Category = "towel"
	CategoryWrappingCloth Category = "wrapping-cloth"
	CategoryKnife         Category = "knife"
	CategoryIncense       Category = "incense"
	CategoryPaperGoods    Category = "paper-goods"
	CategoryOther         Category = "other"
)

// AllCategories returns all valid categories
func AllCategories() []Category {
	return []Category{
		CategoryTowel,
		CategoryWrappingCloth,
		CategoryKnife,
		CategoryIncense,
		CategoryPaperGoods,
		CategoryOther,
	}
}

// IsValid checks if the category is valid
func (c Category) IsValid() bool {
	switch c {
	case CategoryTowel, CategoryWrappingCloth, CategoryKnife, CategoryIncense, CategoryPaperGoods, CategoryOther:
		return true
	default:
		return false
	}
}

// String returns the string representation of the category
func (c Category) String() string {
	return string(c)
}

// ParseCategory parses a category, case-insensitively
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", invalidInput("INVALID_CATEGORY", "unknown category: "+s)
	}
	return c, nil
}

// StockStatus represents supplier stock availability
type StockStatus string

const (
	StockInStock    StockStatus = "in-stock"
	StockOutOfStock StockStatus = "out-of-stock"
	StockLimited    StockStatus = "limited"
)

// IsValid checks if the stock status is valid
func (s StockStatus) IsValid() bool {
	switch s {
	case StockInStock, StockOutOfStock, StockLimited:
		return true
	default:
		return false
	}
}

// String returns the string representation of the stock status
func (s StockStatus) String() string {
	return string(s)
}

// ParseStockStatus parses a stock status, case-insensitively
func ParseStockStatus(s string) (StockStatus, error) {
	st := StockStatus(strings.ToLower(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", invalidInput("INVALID_STOCK_STATUS", "unknown stock status: "+s)
	}
	return st, nil
}

// Marketplace identifies a sales channel
type Marketplace string

const (
	MarketplaceEbay Marketplace = "ebay"
	MarketplaceEtsy Marketplace = "etsy"
	MarketplaceBase Marketplace = "base"
)

// AllMarketplaces returns all supported marketplaces
func AllMarketplaces() []Marketplace {
	return []Marketplace{
		MarketplaceEbay,
		MarketplaceEtsy,
		MarketplaceBase,
	}
}

// IsValid checks if the marketplace is supported
func (m Marketplace) IsValid() bool {
	switch m {
	case MarketplaceEbay, MarketplaceEtsy, MarketplaceBase:
		return true
	default:
		return false
	}
}

// String returns the string representation of the marketplace
func (m Marketplace) String() string {
	return string(m)
}

// ParseMarketplace parses a marketplace identifier
func ParseMarketplace(s string) (Marketplace, error) {
	m := Marketplace(strings.ToLower(strings.TrimSpace(s)))
	if !m.IsValid() {
		return "", unknownMarketplace(s)
	}
	return m, nil
}

// DestinationClass groups shipping destinations that share a rate
type DestinationClass string

const (
	DestinationStandard DestinationClass = "standard"
	DestinationExpress  DestinationClass = "express"
)

// AllDestinationClasses returns all destination classes
func AllDestinationClasses() []DestinationClass {
	return []DestinationClass{DestinationStandard, DestinationExpress}
}

// IsValid checks if the destination class is valid
func (d DestinationClass) IsValid() bool {
	switch d {
	case DestinationStandard, DestinationExpress:
		return true
	default:
		return false
	}
}

// String returns the string representation of the destination class
func (d DestinationClass) String() string {
	return string(d)
}

// ParseDestinationClass parses a destination class; empty means standard
func ParseDestinationClass(s string) (DestinationClass, error) {
	if strings.TrimSpace(s) == "" {
		return DestinationStandard, nil
	}
	d := DestinationClass(strings.ToLower(strings.TrimSpace(s)))
	if !d.IsValid() {
		return "", invalidInput("INVALID_DESTINATION", "unknown destination class: "+s)
	}
	return d, nil
}

// Addon is an optional marketplace surcharge
type Addon string

const (
	AddonCrossBorder Addon = "cross-border"
	AddonOffsiteAds  Addon = "offsite-ads"
	AddonPromoted    Addon = "promoted"
)

// IsValid checks if the addon is a known flag
func (a Addon) IsValid() bool {
	switch a {
	case AddonCrossBorder, AddonOffsiteAds, AddonPromoted:
		return true
	default:
		return false
	}
}

// String returns the string representation of the addon
func (a Addon) String() string {
	return string(a)
}

// ParseAddons parses addon flags, dropping duplicates
func ParseAddons(values []string) ([]Addon, error) {
	seen := make(map[Addon]struct{}, len(values))
	addons := make([]Addon, 0, len(values))
	for _, v := range values {
		a := Addon(strings.ToLower(strings.TrimSpace(v)))
		if !a.IsValid() {
			return nil, unknownConfiguration("UNKNOWN_ADDON", "unknown addon: "+v)
		}
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		addons = append(addons, a)
	}
	return addons, nil
}

// Severity decides whether a keyword hit rejects the listing
type Severity string

const (
	SeverityBlocking Severity = "blocking"
	SeverityAdvisory Severity = "advisory"
)

// IsValid checks if the severity is valid
func (s Severity) IsValid() bool {
	switch s {
	case SeverityBlocking, SeverityAdvisory:
		return true
	default:
		return false
	}
}

// ParseSeverity parses a severity; empty means blocking
func ParseSeverity(s string) (Severity, error) {
	if strings.TrimSpace(s) == "" {
		return SeverityBlocking, nil
	}
	sev := Severity(strings.ToLower(strings.TrimSpace(s)))
	if !sev.IsValid() {
		return "", invalidInput("INVALID_SEVERITY", "unknown severity: "+s)
	}
	return sev, nil
}

// ScopeAll marks a brand rule that applies to every marketplace
const ScopeAll = "all"

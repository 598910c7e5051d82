package eligibility

import (
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Risk levels of brand rules and compliance reports, lowest first
const (
	RiskNone   = "none"
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

var riskRank = map[string]int{RiskNone: 0, RiskLow: 1, RiskMedium: 2, RiskHigh: 3}

func higherRisk(a, b string) string {
	if riskRank[b] > riskRank[a] {
		return b
	}
	return a
}

// BrandRule flags listings that mention a protected brand
type BrandRule struct {
	ID        uuid.UUID
	Token     string
	Scope     string // marketplace identifier or ScopeAll
	RiskLevel string
	Notes     string
}

// NewBrandRule validates and creates a brand rule
func NewBrandRule(token, scope, riskLevel, notes string) (BrandRule, error) {
	if Normalize(token) == "" {
		return BrandRule{}, invalidInput("INVALID_BRAND_TOKEN", "brand token cannot be empty")
	}
	scope, err := parseScope(scope)
	if err != nil {
		return BrandRule{}, err
	}
	riskLevel = strings.ToLower(strings.TrimSpace(riskLevel))
	if riskLevel == "" {
		riskLevel = RiskHigh
	}
	if riskRank[riskLevel] == 0 {
		return BrandRule{}, invalidInput("INVALID_RISK_LEVEL", "brand risk level must be low, medium or high: "+riskLevel)
	}
	return BrandRule{
		ID:        uuid.New(),
		Token:     strings.TrimSpace(token),
		Scope:     scope,
		RiskLevel: riskLevel,
		Notes:     notes,
	}, nil
}

// AppliesTo reports whether the rule is checked for the marketplace
func (r BrandRule) AppliesTo(marketplace Marketplace) bool {
	return r.Scope == ScopeAll || r.Scope == string(marketplace)
}

func parseScope(scope string) (string, error) {
	scope = strings.ToLower(strings.TrimSpace(scope))
	if scope == "" || scope == ScopeAll {
		return ScopeAll, nil
	}
	if !Marketplace(scope).IsValid() {
		return "", invalidInput("INVALID_SCOPE", "brand rule scope must be a marketplace or \"all\": "+scope)
	}
	return scope, nil
}

// KeywordRule flags listings that contain a prohibited phrase
type KeywordRule struct {
	ID       uuid.UUID
	Keyword  string
	Severity Severity
}

// NewKeywordRule validates and creates a keyword rule
func NewKeywordRule(keyword string, severity Severity) (KeywordRule, error) {
	if Normalize(keyword) == "" {
		return KeywordRule{}, invalidInput("INVALID_KEYWORD", "keyword cannot be empty")
	}
	if severity == "" {
		severity = SeverityBlocking
	}
	if !severity.IsValid() {
		return KeywordRule{}, invalidInput("INVALID_SEVERITY", "unknown severity: "+string(severity))
	}
	return KeywordRule{
		ID:       uuid.New(),
		Keyword:  strings.TrimSpace(keyword),
		Severity: severity,
	}, nil
}

// CountryRestriction keeps a category from shipping to a country
type CountryRestriction struct {
	ID          uuid.UUID
	Category    Category
	CountryCode string
	Reason      string
	Enabled     bool
}

// NewCountryRestriction validates and creates an enabled restriction
func NewCountryRestriction(category Category, countryCode, reason string) (CountryRestriction, error) {
	if !category.IsValid() {
		return CountryRestriction{}, invalidInput("INVALID_CATEGORY", "unknown category: "+string(category))
	}
	code, err := ParseCountryCode(countryCode)
	if err != nil {
		return CountryRestriction{}, err
	}
	return CountryRestriction{
		ID:          uuid.New(),
		Category:    category,
		CountryCode: code,
		Reason:      reason,
		Enabled:     true,
	}, nil
}

// ParseCountryCode upper-cases and validates an ISO 3166-1 alpha-2 code
func ParseCountryCode(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 2 || code[0] < 'A' || code[0] > 'Z' || code[1] < 'A' || code[1] > 'Z' {
		return "", invalidInput("INVALID_COUNTRY_CODE", "country code must be two letters: "+code)
	}
	return code, nil
}

// ComplianceReport is the outcome of a compliance check. Issues are BAN
// risks that reject the listing; Advisories and ExcludedCountries never do.
// RiskLevel is the highest risk among the findings: a matched brand
// contributes its rule's level, a blocking keyword high and an advisory
// keyword medium.
type ComplianceReport struct {
	Passed            bool
	RiskLevel         string
	Issues            []string
	Advisories        []string
	ExcludedCountries []string
}

type compiledBrand struct {
	rule  BrandRule
	token string
}

type compiledKeyword struct {
	rule    KeywordRule
	keyword string
}

// RuleSet is an immutable, pre-normalized collection of compliance rules
type RuleSet struct {
	brands       []compiledBrand
	keywords     []compiledKeyword
	restrictions []CountryRestriction
	excluded     map[Category][]string
}

// NewRuleSet normalizes and sorts the rules so evaluation order never
// depends on input order. The slices are copied.
func NewRuleSet(brands []BrandRule, keywords []KeywordRule, restrictions []CountryRestriction) (*RuleSet, error) {
	rs := &RuleSet{
		brands:       make([]compiledBrand, 0, len(brands)),
		keywords:     make([]compiledKeyword, 0, len(keywords)),
		restrictions: make([]CountryRestriction, 0, len(restrictions)),
		excluded:     make(map[Category][]string),
	}

	for _, b := range brands {
		token := Normalize(b.Token)
		if token == "" {
			return nil, invalidInput("INVALID_BRAND_TOKEN", "brand token cannot be empty")
		}
		scope, err := parseScope(b.Scope)
		if err != nil {
			return nil, err
		}
		b.Scope = scope
		rs.brands = append(rs.brands, compiledBrand{rule: b, token: token})
	}
	sort.SliceStable(rs.brands, func(i, j int) bool {
		if rs.brands[i].token != rs.brands[j].token {
			return rs.brands[i].token < rs.brands[j].token
		}
		return rs.brands[i].rule.ID.String() < rs.brands[j].rule.ID.String()
	})

	for _, k := range keywords {
		kw := Normalize(k.Keyword)
		if kw == "" {
			return nil, invalidInput("INVALID_KEYWORD", "keyword cannot be empty")
		}
		if k.Severity == "" {
			k.Severity = SeverityBlocking
		}
		if !k.Severity.IsValid() {
			return nil, invalidInput("INVALID_SEVERITY", "unknown severity: "+string(k.Severity))
		}
		rs.keywords = append(rs.keywords, compiledKeyword{rule: k, keyword: kw})
	}
	sort.SliceStable(rs.keywords, func(i, j int) bool {
		if rs.keywords[i].keyword != rs.keywords[j].keyword {
			return rs.keywords[i].keyword < rs.keywords[j].keyword
		}
		return rs.keywords[i].rule.ID.String() < rs.keywords[j].rule.ID.String()
	})

	sets := make(map[Category]map[string]struct{})
	for _, r := range restrictions {
		if !r.Category.IsValid() {
			return nil, invalidInput("INVALID_CATEGORY", "unknown category: "+string(r.Category))
		}
		code, err := ParseCountryCode(r.CountryCode)
		if err != nil {
			return nil, err
		}
		r.CountryCode = code
		rs.restrictions = append(rs.restrictions, r)
		if !r.Enabled {
			continue
		}
		if sets[r.Category] == nil {
			sets[r.Category] = make(map[string]struct{})
		}
		sets[r.Category][code] = struct{}{}
	}
	sort.SliceStable(rs.restrictions, func(i, j int) bool {
		a, b := rs.restrictions[i], rs.restrictions[j]
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		return a.CountryCode < b.CountryCode
	})
	for category, set := range sets {
		rs.excluded[category] = sortedKeys(set)
	}

	return rs, nil
}

// EmptyRuleSet returns a rule set with no rules
func EmptyRuleSet() *RuleSet {
	rs, _ := NewRuleSet(nil, nil, nil)
	return rs
}

// Check scans the product's names and descriptions in both languages.
// Every rule is evaluated; nothing short-circuits.
func (rs *RuleSet) Check(product *Product, marketplace Marketplace) ComplianceReport {
	texts := make([]string, 0, 4)
	for _, t := range product.Texts() {
		if n := Normalize(t); n != "" {
			texts = append(texts, n)
		}
	}

	report := ComplianceReport{
		Passed:            true,
		RiskLevel:         RiskNone,
		Issues:            []string{},
		Advisories:        []string{},
		ExcludedCountries: rs.ExcludedCountries(product.Category),
	}
	seen := make(map[string]struct{})
	add := func(list *[]string, msg string) {
		if _, ok := seen[msg]; ok {
			return
		}
		seen[msg] = struct{}{}
		*list = append(*list, msg)
	}

	for _, b := range rs.brands {
		if !b.rule.AppliesTo(marketplace) || !containsAny(texts, b.token) {
			continue
		}
		add(&report.Issues, "brand name detected: "+b.rule.Token)
		report.RiskLevel = higherRisk(report.RiskLevel, b.rule.RiskLevel)
	}

	for _, k := range rs.keywords {
		if !containsAny(texts, k.keyword) {
			continue
		}
		msg := "prohibited keyword detected: " + k.rule.Keyword
		if k.rule.Severity == SeverityBlocking {
			add(&report.Issues, msg)
			report.RiskLevel = higherRisk(report.RiskLevel, RiskHigh)
		} else {
			add(&report.Advisories, msg)
			report.RiskLevel = higherRisk(report.RiskLevel, RiskMedium)
		}
	}

	report.Passed = len(report.Issues) == 0
	return report
}

// ExcludedCountries returns the sorted country codes the category may not
// ship to. A category without restrictions yields an empty set.
func (rs *RuleSet) ExcludedCountries(category Category) []string {
	codes := rs.excluded[category]
	out := make([]string, len(codes))
	copy(out, codes)
	return out
}

// Brands returns a copy of the brand rules in evaluation order
func (rs *RuleSet) Brands() []BrandRule {
	out := make([]BrandRule, len(rs.brands))
	for i, b := range rs.brands {
		out[i] = b.rule
	}
	return out
}

// Keywords returns a copy of the keyword rules in evaluation order
func (rs *RuleSet) Keywords() []KeywordRule {
	out := make([]KeywordRule, len(rs.keywords))
	for i, k := range rs.keywords {
		out[i] = k.rule
	}
	return out
}

// Restrictions returns a copy of all restrictions, including disabled ones
func (rs *RuleSet) Restrictions() []CountryRestriction {
	out := make([]CountryRestriction, len(rs.restrictions))
	copy(out, rs.restrictions)
	return out
}

func containsAny(texts []string, needle string) bool {
	for _, t := range texts {
		if strings.Contains(t, needle) {
			return true
		}
	}
	return false
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

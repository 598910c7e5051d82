package eligibility

// Built-in compliance rules for a fresh installation. Seeding is idempotent;
// existing rules with the same token, keyword or (category, country) pair
// are left alone.

// DefaultBrandRules returns the stock brand blacklist
func DefaultBrandRules() []BrandRule {
	seeds := []struct{ token, scope, notes string }{
		{"Shun", "ebay", "Kai Group knife brand, VeRO registered"},
		{"Global", "ebay", "Yoshikin knife brand, VeRO registered"},
		{"Miyabi", "ebay", "Zwilling owned knife brand"},
		{"Kai", "ebay", "Kai Group"},
		{"Zwilling", ScopeAll, "trademark enforcement"},
		{"Wüsthof", ScopeAll, "trademark enforcement"},
		{"Victorinox", ScopeAll, "trademark enforcement"},
		{"Sanrio", ScopeAll, "character IP"},
		{"Studio Ghibli", ScopeAll, "character IP"},
		{"Nintendo", ScopeAll, "character IP"},
	}
	out := make([]BrandRule, 0, len(seeds))
	for _, s := range seeds {
		r, err := NewBrandRule(s.token, s.scope, RiskHigh, s.notes)
		if err != nil {
			panic(err)
		}
		out = append(out, r)
	}
	return out
}

// DefaultKeywordRules returns the stock prohibited keywords
func DefaultKeywordRules() []KeywordRule {
	seeds := []struct {
		keyword  string
		severity Severity
	}{
		{"dropship", SeverityBlocking},
		{"dropshipping", SeverityBlocking},
		{"replica", SeverityBlocking},
		{"counterfeit", SeverityBlocking},
		{"fake", SeverityBlocking},
		{"drop ship", SeverityAdvisory},
		{"wholesale", SeverityAdvisory},
		{"bulk order", SeverityAdvisory},
		{"knockoff", SeverityAdvisory},
		{"imitation", SeverityAdvisory},
		{"bootleg", SeverityAdvisory},
		{"guaranteed authentic", SeverityAdvisory},
		{"100% genuine", SeverityAdvisory},
	}
	out := make([]KeywordRule, 0, len(seeds))
	for _, s := range seeds {
		r, err := NewKeywordRule(s.keyword, s.severity)
		if err != nil {
			panic(err)
		}
		out = append(out, r)
	}
	return out
}

// DefaultCountryRestrictions returns the stock shipping restrictions
func DefaultCountryRestrictions() []CountryRestriction {
	seeds := []struct {
		category Category
		country  string
		reason   string
	}{
		{CategoryKnife, "GB", "UK bladed article import rules (Offensive Weapons Act 2019)"},
		{CategoryKnife, "IE", "Irish restrictions on bladed articles by post"},
	}
	out := make([]CountryRestriction, 0, len(seeds))
	for _, s := range seeds {
		r, err := NewCountryRestriction(s.category, s.country, s.reason)
		if err != nil {
			panic(err)
		}
		out = append(out, r)
	}
	return out
}

// DefaultSnapshot builds a snapshot from the built-in tables and rules
func DefaultSnapshot() *Snapshot {
	rules, err := NewRuleSet(DefaultBrandRules(), DefaultKeywordRules(), DefaultCountryRestrictions())
	if err != nil {
		panic(err)
	}
	snap, err := NewSnapshot(rules, DefaultShippingTable(), DefaultFeeModel(), DefaultExchangeRate(), DefaultMinimumMargin)
	if err != nil {
		panic(err)
	}
	return snap
}

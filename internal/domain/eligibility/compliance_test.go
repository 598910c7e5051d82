package eligibility

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProduct(t *testing.T, category Category, nameEN, descriptionEN string) *Product {
	t.Helper()
	p, err := NewProduct("NS-001", category, yen(500), 50, "今治タオル", nameEN)
	require.NoError(t, err)
	p.UpdateDescriptions("", descriptionEN)
	return p
}

func defaultRules(t *testing.T) *RuleSet {
	t.Helper()
	rs, err := NewRuleSet(DefaultBrandRules(), DefaultKeywordRules(), DefaultCountryRestrictions())
	require.NoError(t, err)
	return rs
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"Premium  Cotton\tTowel", "premium cotton towel"},
		{"ＳＨＵＮ　Knife!!", "shun knife"},
		{"Studio-Ghibli (Totoro)", "studio ghibli totoro"},
		{"100% Genuine", "100 genuine"},
		{"WÜSTHOF", "wüsthof"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestRuleSetCheckBrands(t *testing.T) {
	rs := defaultRules(t)

	variants := []string{
		"Premium towel by SHUN",
		"premium towel by shun",
		"Premium towel by ＳＨＵＮ",
		"Premium towel (Shun edition)",
		"shunpremium towel",
	}
	for _, text := range variants {
		t.Run(text, func(t *testing.T) {
			report := rs.Check(newTestProduct(t, CategoryTowel, "Cotton towel", text), MarketplaceEbay)
			assert.False(t, report.Passed)
			assert.Equal(t, []string{"brand name detected: Shun"}, report.Issues)
		})
	}

	t.Run("marketplace scoped brand is ignored elsewhere", func(t *testing.T) {
		report := rs.Check(newTestProduct(t, CategoryTowel, "Cotton towel", "Premium towel by Shun"), MarketplaceEtsy)
		assert.True(t, report.Passed)
		assert.Empty(t, report.Issues)
	})

	t.Run("brand in japanese name is detected", func(t *testing.T) {
		p, err := NewProduct("NS-002", CategoryOther, yen(500), 50, "サンリオ Sanrio キャラクター", "")
		require.NoError(t, err)
		report := rs.Check(p, MarketplaceBase)
		assert.False(t, report.Passed)
		assert.Contains(t, report.Issues, "brand name detected: Sanrio")
	})

	t.Run("every hit is collected", func(t *testing.T) {
		report := rs.Check(newTestProduct(t, CategoryOther, "Nintendo x Sanrio", "counterfeit replica"), MarketplaceEtsy)
		assert.False(t, report.Passed)
		assert.Equal(t, []string{
			"brand name detected: Nintendo",
			"brand name detected: Sanrio",
			"prohibited keyword detected: counterfeit",
			"prohibited keyword detected: replica",
		}, report.Issues)
	})
}

func TestRuleSetCheckKeywords(t *testing.T) {
	rs := defaultRules(t)

	t.Run("blocking keyword fails the check", func(t *testing.T) {
		report := rs.Check(newTestProduct(t, CategoryTowel, "Cotton towel", "not a fake"), MarketplaceEbay)
		assert.False(t, report.Passed)
		assert.Equal(t, []string{"prohibited keyword detected: fake"}, report.Issues)
	})

	t.Run("advisory keyword only warns", func(t *testing.T) {
		report := rs.Check(newTestProduct(t, CategoryTowel, "Cotton towel", "100% genuine, bulk order welcome"), MarketplaceEbay)
		assert.True(t, report.Passed)
		assert.Empty(t, report.Issues)
		assert.Equal(t, []string{
			"prohibited keyword detected: 100% genuine",
			"prohibited keyword detected: bulk order",
		}, report.Advisories)
	})

	t.Run("severity defaults to blocking", func(t *testing.T) {
		rule, err := NewKeywordRule("imitation", "")
		require.NoError(t, err)
		custom, err := NewRuleSet(nil, []KeywordRule{rule}, nil)
		require.NoError(t, err)
		report := custom.Check(newTestProduct(t, CategoryTowel, "Imitation silk", ""), MarketplaceEbay)
		assert.False(t, report.Passed)
	})
}

func TestRuleSetCheckRiskLevel(t *testing.T) {
	low, err := NewBrandRule("Kai", ScopeAll, RiskLow, "")
	require.NoError(t, err)
	medium, err := NewBrandRule("Global", ScopeAll, RiskMedium, "")
	require.NoError(t, err)
	blocking, err := NewKeywordRule("replica", SeverityBlocking)
	require.NoError(t, err)
	advisory, err := NewKeywordRule("bulk order", SeverityAdvisory)
	require.NoError(t, err)
	rs, err := NewRuleSet([]BrandRule{low, medium}, []KeywordRule{blocking, advisory}, nil)
	require.NoError(t, err)

	tests := []struct {
		name        string
		description string
		want        string
	}{
		{"clean listing", "plain cotton", RiskNone},
		{"low risk brand", "by Kai", RiskLow},
		{"advisory keyword", "bulk order welcome", RiskMedium},
		{"highest brand wins", "Kai and Global set", RiskMedium},
		{"blocking keyword", "Kai replica", RiskHigh},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := rs.Check(newTestProduct(t, CategoryTowel, "Towel", tt.description), MarketplaceEbay)
			assert.Equal(t, tt.want, report.RiskLevel)
		})
	}

	report := defaultRules(t).Check(newTestProduct(t, CategoryTowel, "Cotton towel", "by Shun"), MarketplaceEbay)
	assert.Equal(t, RiskHigh, report.RiskLevel)
}

func TestRuleSetExcludedCountries(t *testing.T) {
	rs := defaultRules(t)

	t.Run("knife carries the restricted set", func(t *testing.T) {
		report := rs.Check(newTestProduct(t, CategoryKnife, "Santoku", "hand forged"), MarketplaceEbay)
		assert.True(t, report.Passed)
		assert.Equal(t, []string{"GB", "IE"}, report.ExcludedCountries)
	})

	t.Run("category without restrictions is empty, not an error", func(t *testing.T) {
		report := rs.Check(newTestProduct(t, CategoryIncense, "Incense sticks", ""), MarketplaceEbay)
		assert.NotNil(t, report.ExcludedCountries)
		assert.Empty(t, report.ExcludedCountries)
	})

	t.Run("disabled restriction is skipped", func(t *testing.T) {
		restrictions := DefaultCountryRestrictions()
		for i := range restrictions {
			if restrictions[i].CountryCode == "IE" {
				restrictions[i].Enabled = false
			}
		}
		custom, err := NewRuleSet(nil, nil, restrictions)
		require.NoError(t, err)
		assert.Equal(t, []string{"GB"}, custom.ExcludedCountries(CategoryKnife))
		assert.Len(t, custom.Restrictions(), 2)
	})

	t.Run("duplicates and lower case codes are merged", func(t *testing.T) {
		a, err := NewCountryRestriction(CategoryKnife, "gb", "a")
		require.NoError(t, err)
		b, err := NewCountryRestriction(CategoryKnife, "GB", "b")
		require.NoError(t, err)
		custom, err := NewRuleSet(nil, nil, []CountryRestriction{a, b})
		require.NoError(t, err)
		assert.Equal(t, []string{"GB"}, custom.ExcludedCountries(CategoryKnife))
	})

	t.Run("returned slice is a copy", func(t *testing.T) {
		codes := rs.ExcludedCountries(CategoryKnife)
		codes[0] = "XX"
		assert.Equal(t, []string{"GB", "IE"}, rs.ExcludedCountries(CategoryKnife))
	})
}

func TestRuleSetOrderIndependence(t *testing.T) {
	brands := DefaultBrandRules()
	keywords := DefaultKeywordRules()
	restrictions := DefaultCountryRestrictions()

	reversedBrands := make([]BrandRule, len(brands))
	for i := range brands {
		reversedBrands[len(brands)-1-i] = brands[i]
	}
	reversedKeywords := make([]KeywordRule, len(keywords))
	for i := range keywords {
		reversedKeywords[len(keywords)-1-i] = keywords[i]
	}

	a, err := NewRuleSet(brands, keywords, restrictions)
	require.NoError(t, err)
	b, err := NewRuleSet(reversedBrands, reversedKeywords, restrictions)
	require.NoError(t, err)

	p := newTestProduct(t, CategoryKnife, "Zwilling Victorinox knife", "dropshipping replica, wholesale price")
	assert.Equal(t, a.Check(p, MarketplaceEbay), b.Check(p, MarketplaceEbay))
}

func TestNewRuleValidation(t *testing.T) {
	_, err := NewBrandRule("  ", "all", "", "")
	assert.Error(t, err)

	_, err = NewBrandRule("Acme", "amazon", "", "")
	assert.Error(t, err)

	rule, err := NewBrandRule(" Acme ", "", "", "")
	require.NoError(t, err)
	assert.Equal(t, "Acme", rule.Token)
	assert.Equal(t, ScopeAll, rule.Scope)
	assert.Equal(t, RiskHigh, rule.RiskLevel)

	rule, err = NewBrandRule("Acme", "", " Low ", "")
	require.NoError(t, err)
	assert.Equal(t, RiskLow, rule.RiskLevel)

	_, err = NewBrandRule("Acme", "", "none", "")
	assert.Error(t, err)

	_, err = NewBrandRule("Acme", "", "severe", "")
	assert.Error(t, err)

	_, err = NewKeywordRule("!!!", SeverityBlocking)
	assert.Error(t, err)

	_, err = NewKeywordRule("fake", "maybe")
	assert.Error(t, err)

	_, err = NewCountryRestriction(CategoryKnife, "GBR", "")
	assert.Error(t, err)

	_, err = NewCountryRestriction("sword", "GB", "")
	assert.Error(t, err)
}

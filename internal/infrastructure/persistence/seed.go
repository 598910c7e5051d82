package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/dropship/backend/internal/domain/eligibility"
	"github.com/dropship/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// SeedResult counts the rules written by SeedComplianceRules
type SeedResult struct {
	BrandRules          int
	KeywordRules        int
	CountryRestrictions int
}

// Total returns the number of rules created
func (s SeedResult) Total() int {
	return s.BrandRules + s.KeywordRules + s.CountryRestrictions
}

// SeedComplianceRules inserts the built-in compliance rules into an empty
// rule store. Once any rule exists the store belongs to the administrators
// and nothing is written, so deleted defaults stay deleted.
func SeedComplianceRules(ctx context.Context, repo eligibility.RuleRepository, log *zap.Logger) (SeedResult, error) {
	var res SeedResult

	empty, err := ruleStoreEmpty(ctx, repo)
	if err != nil {
		return res, fmt.Errorf("seed compliance rules: %w", err)
	}
	if !empty {
		log.Debug("Compliance rules already present, skipping seed")
		return res, nil
	}

	for _, rule := range eligibility.DefaultBrandRules() {
		created, err := seedOne(repo.SaveBrandRule(ctx, rule))
		if err != nil {
			return res, fmt.Errorf("seed brand rule %q: %w", rule.Token, err)
		}
		if created {
			res.BrandRules++
		}
	}
	for _, rule := range eligibility.DefaultKeywordRules() {
		created, err := seedOne(repo.SaveKeywordRule(ctx, rule))
		if err != nil {
			return res, fmt.Errorf("seed keyword rule %q: %w", rule.Keyword, err)
		}
		if created {
			res.KeywordRules++
		}
	}
	for _, restriction := range eligibility.DefaultCountryRestrictions() {
		created, err := seedOne(repo.SaveCountryRestriction(ctx, restriction))
		if err != nil {
			return res, fmt.Errorf("seed country restriction %s/%s: %w", restriction.Category, restriction.CountryCode, err)
		}
		if created {
			res.CountryRestrictions++
		}
	}

	log.Info("Compliance rules seeded",
		zap.Int("brand_rules", res.BrandRules),
		zap.Int("keyword_rules", res.KeywordRules),
		zap.Int("country_restrictions", res.CountryRestrictions),
	)
	return res, nil
}

func ruleStoreEmpty(ctx context.Context, repo eligibility.RuleRepository) (bool, error) {
	brands, err := repo.ListBrandRules(ctx)
	if err != nil {
		return false, err
	}
	keywords, err := repo.ListKeywordRules(ctx)
	if err != nil {
		return false, err
	}
	restrictions, err := repo.ListCountryRestrictions(ctx)
	if err != nil {
		return false, err
	}
	return len(brands) == 0 && len(keywords) == 0 && len(restrictions) == 0, nil
}

func seedOne(err error) (bool, error) {
	if err == nil {
		return true, nil
	}
	if errors.Is(err, shared.ErrAlreadyExists) {
		return false, nil
	}
	return false, err
}

package persistence

import (
	"context"
	"errors"

	"github.com/dropship/backend/internal/domain/eligibility"
	"github.com/dropship/backend/internal/domain/shared"
	"github.com/dropship/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormRuleRepository implements eligibility.RuleRepository using GORM
type GormRuleRepository struct {
	db *gorm.DB
}

// NewGormRuleRepository creates a new GormRuleRepository
func NewGormRuleRepository(db *gorm.DB) *GormRuleRepository {
	return &GormRuleRepository{db: db}
}

// WithTx returns a new repository instance with the given transaction
func (r *GormRuleRepository) WithTx(tx *gorm.DB) *GormRuleRepository {
	return &GormRuleRepository{db: tx}
}

// ListBrandRules returns every brand rule in creation order
func (r *GormRuleRepository) ListBrandRules(ctx context.Context) ([]eligibility.BrandRule, error) {
	var rows []models.BrandRuleModel
	if err := r.db.WithContext(ctx).Order("created_at ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]eligibility.BrandRule, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// SaveBrandRule creates a brand rule. Tokens are compared after
// normalization, so a rule differing only by case or width is a duplicate.
func (r *GormRuleRepository) SaveBrandRule(ctx context.Context, rule eligibility.BrandRule) error {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "match_key"}, {Name: "scope"}},
			DoNothing: true,
		}).
		Create(models.BrandRuleModelFromDomain(rule))

	if result.Error != nil {
		return translateDuplicate(result.Error, "BRAND_RULE_EXISTS", "brand rule already exists for this scope")
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainErrorOfKind(shared.ErrAlreadyExists, "BRAND_RULE_EXISTS", "brand rule already exists for this scope")
	}
	return nil
}

// DeleteBrandRule removes a brand rule
func (r *GormRuleRepository) DeleteBrandRule(ctx context.Context, id uuid.UUID) error {
	return deleteByID(ctx, r.db, &models.BrandRuleModel{}, id)
}

// ListKeywordRules returns every keyword rule in creation order
func (r *GormRuleRepository) ListKeywordRules(ctx context.Context) ([]eligibility.KeywordRule, error) {
	var rows []models.KeywordRuleModel
	if err := r.db.WithContext(ctx).Order("created_at ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]eligibility.KeywordRule, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// SaveKeywordRule creates a keyword rule
func (r *GormRuleRepository) SaveKeywordRule(ctx context.Context, rule eligibility.KeywordRule) error {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "match_key"}},
			DoNothing: true,
		}).
		Create(models.KeywordRuleModelFromDomain(rule))

	if result.Error != nil {
		return translateDuplicate(result.Error, "KEYWORD_RULE_EXISTS", "keyword rule already exists")
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainErrorOfKind(shared.ErrAlreadyExists, "KEYWORD_RULE_EXISTS", "keyword rule already exists")
	}
	return nil
}

// DeleteKeywordRule removes a keyword rule
func (r *GormRuleRepository) DeleteKeywordRule(ctx context.Context, id uuid.UUID) error {
	return deleteByID(ctx, r.db, &models.KeywordRuleModel{}, id)
}

// ListCountryRestrictions returns every restriction, enabled or not
func (r *GormRuleRepository) ListCountryRestrictions(ctx context.Context) ([]eligibility.CountryRestriction, error) {
	var rows []models.CountryRestrictionModel
	if err := r.db.WithContext(ctx).Order("category ASC, country_code ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]eligibility.CountryRestriction, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// SaveCountryRestriction updates the restriction with the same ID, or
// creates it when none exists. A second restriction for the same
// (category, country) pair fails with shared.ErrAlreadyExists.
func (r *GormRuleRepository) SaveCountryRestriction(ctx context.Context, restriction eligibility.CountryRestriction) error {
	model := models.CountryRestrictionModelFromDomain(restriction)

	updated := r.db.WithContext(ctx).
		Model(&models.CountryRestrictionModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]any{
			"category":     model.Category,
			"country_code": model.CountryCode,
			"reason":       model.Reason,
			"enabled":      model.Enabled,
			"updated_at":   model.UpdatedAt,
		})
	if updated.Error != nil {
		return translateDuplicate(updated.Error, "COUNTRY_RESTRICTION_EXISTS", "restriction already exists for this category and country")
	}
	if updated.RowsAffected > 0 {
		return nil
	}

	created := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "category"}, {Name: "country_code"}},
			DoNothing: true,
		}).
		Create(model)
	if created.Error != nil {
		return translateDuplicate(created.Error, "COUNTRY_RESTRICTION_EXISTS", "restriction already exists for this category and country")
	}
	if created.RowsAffected == 0 {
		return shared.NewDomainErrorOfKind(shared.ErrAlreadyExists, "COUNTRY_RESTRICTION_EXISTS", "restriction already exists for this category and country")
	}
	return nil
}

// FindCountryRestriction finds a restriction by its ID
func (r *GormRuleRepository) FindCountryRestriction(ctx context.Context, id uuid.UUID) (eligibility.CountryRestriction, error) {
	var model models.CountryRestrictionModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return eligibility.CountryRestriction{}, shared.ErrNotFound
		}
		return eligibility.CountryRestriction{}, err
	}
	return model.ToDomain(), nil
}

// DeleteCountryRestriction removes a restriction
func (r *GormRuleRepository) DeleteCountryRestriction(ctx context.Context, id uuid.UUID) error {
	return deleteByID(ctx, r.db, &models.CountryRestrictionModel{}, id)
}

func deleteByID(ctx context.Context, db *gorm.DB, model any, id uuid.UUID) error {
	result := db.WithContext(ctx).Delete(model, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func translateDuplicate(err error, code, message string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.NewDomainErrorOfKind(shared.ErrAlreadyExists, code, message)
	}
	return err
}

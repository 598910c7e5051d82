package eligibility

import (
	"context"
	"sync"
	"time"

	"github.com/dropship/backend/internal/domain/eligibility"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockRuleRepository is a mock implementation of eligibility.RuleRepository
type MockRuleRepository struct {
	mock.Mock
}

func (m *MockRuleRepository) ListBrandRules(ctx context.Context) ([]eligibility.BrandRule, error) {
	args := m.Called(ctx)
	return args.Get(0).([]eligibility.BrandRule), args.Error(1)
}

func (m *MockRuleRepository) SaveBrandRule(ctx context.Context, rule eligibility.BrandRule) error {
	return m.Called(ctx, rule).Error(0)
}

func (m *MockRuleRepository) DeleteBrandRule(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRuleRepository) ListKeywordRules(ctx context.Context) ([]eligibility.KeywordRule, error) {
	args := m.Called(ctx)
	return args.Get(0).([]eligibility.KeywordRule), args.Error(1)
}

func (m *MockRuleRepository) SaveKeywordRule(ctx context.Context, rule eligibility.KeywordRule) error {
	return m.Called(ctx, rule).Error(0)
}

func (m *MockRuleRepository) DeleteKeywordRule(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRuleRepository) ListCountryRestrictions(ctx context.Context) ([]eligibility.CountryRestriction, error) {
	args := m.Called(ctx)
	return args.Get(0).([]eligibility.CountryRestriction), args.Error(1)
}

func (m *MockRuleRepository) SaveCountryRestriction(ctx context.Context, r eligibility.CountryRestriction) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockRuleRepository) FindCountryRestriction(ctx context.Context, id uuid.UUID) (eligibility.CountryRestriction, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(eligibility.CountryRestriction), args.Error(1)
}

func (m *MockRuleRepository) DeleteCountryRestriction(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// expectLoad sets up the three list calls a reload performs
func (m *MockRuleRepository) expectLoad(brands []eligibility.BrandRule, keywords []eligibility.KeywordRule, restrictions []eligibility.CountryRestriction) {
	m.On("ListBrandRules", mock.Anything).Return(brands, nil)
	m.On("ListKeywordRules", mock.Anything).Return(keywords, nil)
	m.On("ListCountryRestrictions", mock.Anything).Return(restrictions, nil)
}

// MockProductRepository is a mock implementation of eligibility.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*eligibility.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*eligibility.Product), args.Error(1)
}

func (m *MockProductRepository) FindBySupplierID(ctx context.Context, supplierProductID string) (*eligibility.Product, error) {
	args := m.Called(ctx, supplierProductID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*eligibility.Product), args.Error(1)
}

func (m *MockProductRepository) FindAll(ctx context.Context, filter eligibility.ProductFilter) ([]eligibility.Product, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]eligibility.Product), args.Error(1)
}

func (m *MockProductRepository) Count(ctx context.Context, filter eligibility.ProductFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, product *eligibility.Product) error {
	return m.Called(ctx, product).Error(0)
}

// MockNotifier is a mock implementation of eligibility.RuleChangeNotifier.
// Subscribe replays Incoming to the callback and returns.
type MockNotifier struct {
	mock.Mock
	Incoming []eligibility.RuleChangeMessage
}

func (m *MockNotifier) Publish(ctx context.Context, msg eligibility.RuleChangeMessage) error {
	return m.Called(ctx, msg).Error(0)
}

func (m *MockNotifier) Subscribe(_ context.Context, callback func(msg eligibility.RuleChangeMessage)) error {
	for _, msg := range m.Incoming {
		callback(msg)
	}
	return nil
}

func (m *MockNotifier) Close() error {
	return nil
}

// recordingMetrics counts metric calls
type recordingMetrics struct {
	mu       sync.Mutex
	passed   map[string]int
	rejected map[string]int
	errors   map[string]int
	reloads  []uint64
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{passed: map[string]int{}, rejected: map[string]int{}, errors: map[string]int{}}
}

func (r *recordingMetrics) RecordEvaluation(_ context.Context, marketplace string, passed bool, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if passed {
		r.passed[marketplace]++
	} else {
		r.rejected[marketplace]++
	}
}

func (r *recordingMetrics) RecordEvaluationError(_ context.Context, marketplace string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors[marketplace]++
}

func (r *recordingMetrics) RecordRuleReload(_ context.Context, _ string, version uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reloads = append(r.reloads, version)
}

package eligibility

import (
	"context"
	"errors"
	"testing"

	"github.com/dropship/backend/internal/domain/eligibility"
	"github.com/dropship/backend/internal/domain/shared"
	"github.com/dropship/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testFixture struct {
	svc      *Service
	store    *eligibility.SnapshotStore
	rules    *MockRuleRepository
	products *MockProductRepository
	notifier *MockNotifier
	metrics  *recordingMetrics
}

func newTestFixture(opts ...Option) *testFixture {
	f := &testFixture{
		store:    eligibility.NewSnapshotStore(eligibility.DefaultSnapshot()),
		rules:    new(MockRuleRepository),
		products: new(MockProductRepository),
		notifier: new(MockNotifier),
		metrics:  newRecordingMetrics(),
	}
	opts = append([]Option{WithNotifier(f.notifier), WithMetrics(f.metrics)}, opts...)
	f.svc = NewService(f.store, f.rules, f.products, zap.NewNop(), opts...)
	return f
}

func intPtr(v int) *int { return &v }

func strPtr(s string) *string { return &s }

func towelRequest(nameEN, sale string) EvaluateRequest {
	return EvaluateRequest{
		Product: ProductPayload{
			SupplierProductID: "NS-001",
			Category:          "towel",
			WholesalePrice:    "500",
			WeightGrams:       intPtr(50),
			NameJA:            "今治タオル",
			NameEN:            nameEN,
		},
		Offer: OfferRequest{SalePrice: sale, Marketplace: "ebay"},
	}
}

func TestService_Evaluate(t *testing.T) {
	ctx := context.Background()

	t.Run("profitable clean listing passes", func(t *testing.T) {
		f := newTestFixture()
		resp, err := f.svc.Evaluate(ctx, towelRequest("Imabari cotton towel", "15"))
		require.NoError(t, err)

		assert.True(t, resp.Passed)
		assert.Empty(t, resp.Reasons)
		assert.NotNil(t, resp.Warnings)
		assert.Equal(t, "5.51", resp.Profit.StringFixed())
		assert.Equal(t, "0.3673", resp.Margin)
		assert.Equal(t, "3.87", resp.Breakdown.Shipping.StringFixed())
		assert.Equal(t, uint64(1), resp.SnapshotVersion)
		assert.Nil(t, resp.ProductID)
		assert.Equal(t, 1, f.metrics.passed["ebay"])
	})

	t.Run("brand rejects with reason", func(t *testing.T) {
		f := newTestFixture()
		req := towelRequest("Cotton towel", "15")
		req.Product.DescriptionEN = "Premium towel by Shun"

		resp, err := f.svc.Evaluate(ctx, req)
		require.NoError(t, err)
		assert.False(t, resp.Passed)
		assert.False(t, resp.CompliancePassed)
		assert.True(t, resp.Profitable)
		assert.Equal(t, []string{"brand name detected: Shun"}, resp.Reasons)
		assert.Equal(t, 1, f.metrics.rejected["ebay"])
	})

	t.Run("defaults marketplace and destination", func(t *testing.T) {
		f := newTestFixture(WithDefaultMarketplace(eligibility.MarketplaceEbay))
		req := towelRequest("Imabari cotton towel", "15")
		req.Offer.Marketplace = ""

		resp, err := f.svc.Evaluate(ctx, req)
		require.NoError(t, err)
		assert.True(t, resp.Passed)
	})

	errorCases := []struct {
		name   string
		mutate func(*EvaluateRequest)
		kind   *shared.DomainError
	}{
		{"missing weight", func(r *EvaluateRequest) { r.Product.WeightGrams = nil }, shared.ErrInvalidInput},
		{"bad amount", func(r *EvaluateRequest) { r.Offer.SalePrice = "fifteen" }, shared.ErrInvalidInput},
		{"bad currency", func(r *EvaluateRequest) { r.Offer.SaleCurrency = "XYZ" }, shared.ErrInvalidInput},
		{"unknown category", func(r *EvaluateRequest) { r.Product.Category = "sword" }, shared.ErrInvalidInput},
		{"zero sale price", func(r *EvaluateRequest) { r.Offer.SalePrice = "0" }, shared.ErrInvalidInput},
		{"unknown marketplace", func(r *EvaluateRequest) { r.Offer.Marketplace = "amazon" }, shared.ErrUnknownConfiguration},
		{"unknown addon", func(r *EvaluateRequest) { r.Offer.Addons = []string{"gift-wrap"} }, shared.ErrUnknownConfiguration},
		{"negative weight", func(r *EvaluateRequest) { r.Product.WeightGrams = intPtr(-1) }, shared.ErrInvalidInput},
	}
	for _, tc := range errorCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newTestFixture()
			req := towelRequest("Cotton towel", "15")
			tc.mutate(&req)

			resp, err := f.svc.Evaluate(ctx, req)
			require.Error(t, err)
			assert.Nil(t, resp)
			assert.True(t, errors.Is(err, tc.kind), "got %v", err)
		})
	}
}

func TestService_EvaluateProduct(t *testing.T) {
	ctx := context.Background()
	f := newTestFixture()

	product, err := eligibility.NewProduct("NS-002", eligibility.CategoryKnife,
		valueobject.MustMoney("500", valueobject.JPY), 50, "三徳包丁", "Santoku kitchen knife")
	require.NoError(t, err)
	require.NoError(t, product.UpdateStock(eligibility.StockOutOfStock))

	f.products.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	missing := uuid.New()
	f.products.On("FindByID", mock.Anything, missing).Return(nil, shared.ErrNotFound)

	resp, err := f.svc.EvaluateProduct(ctx, product.ID, OfferRequest{SalePrice: "15", Marketplace: "ebay"})
	require.NoError(t, err)
	require.NotNil(t, resp.ProductID)
	assert.Equal(t, product.ID, *resp.ProductID)
	assert.True(t, resp.Passed)
	assert.Equal(t, []string{"GB", "IE"}, resp.ExcludedCountries)
	assert.Equal(t, []string{eligibility.WarningOutOfStock}, resp.Warnings)

	_, err = f.svc.EvaluateProduct(ctx, missing, OfferRequest{SalePrice: "15"})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestService_EvaluateBatch(t *testing.T) {
	ctx := context.Background()

	t.Run("per item outcomes", func(t *testing.T) {
		f := newTestFixture()
		badMarketplace := towelRequest("Cotton towel", "15")
		badMarketplace.Offer.Marketplace = "amazon"

		resp, err := f.svc.EvaluateBatch(ctx, BatchEvaluateRequest{Items: []EvaluateRequest{
			towelRequest("Imabari cotton towel", "15"),
			towelRequest("Cotton towel", "8"),
			towelRequest("Cotton towel", "0"),
			badMarketplace,
		}})
		require.NoError(t, err)
		require.Len(t, resp.Items, 4)

		for i, item := range resp.Items {
			assert.Equal(t, i, item.Index)
		}
		assert.True(t, resp.Items[0].Result.Passed)
		assert.False(t, resp.Items[1].Result.Passed)
		assert.Nil(t, resp.Items[2].Result)
		assert.Equal(t, "INVALID_SALE_PRICE", resp.Items[2].Error.Code)
		assert.Equal(t, "UNKNOWN_MARKETPLACE", resp.Items[3].Error.Code)

		assert.Equal(t, 1, resp.Passed)
		assert.Equal(t, 1, resp.Rejected)
		assert.Equal(t, 2, resp.Failed)
		assert.Equal(t, uint64(1), resp.SnapshotVersion)
	})

	t.Run("sub cent sale prices fail per item", func(t *testing.T) {
		f := newTestFixture()

		resp, err := f.svc.EvaluateBatch(ctx, BatchEvaluateRequest{Items: []EvaluateRequest{
			towelRequest("Cotton towel", "0.001"),
			towelRequest("Cotton towel", "0.004"),
			towelRequest("Cotton towel", "0.005"),
			towelRequest("Imabari cotton towel", "15"),
		}})
		require.NoError(t, err)
		require.Len(t, resp.Items, 4)
		for _, item := range resp.Items[:3] {
			require.NotNil(t, item.Error)
			assert.Equal(t, "INVALID_SALE_PRICE", item.Error.Code)
		}
		assert.True(t, resp.Items[3].Result.Passed)
		assert.Equal(t, 3, resp.Failed)
		assert.Equal(t, 1, resp.Passed)
	})

	t.Run("empty batch", func(t *testing.T) {
		f := newTestFixture()
		_, err := f.svc.EvaluateBatch(ctx, BatchEvaluateRequest{})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("batch above limit", func(t *testing.T) {
		f := newTestFixture(WithBatchLimits(2, 2))
		req := towelRequest("Cotton towel", "15")
		_, err := f.svc.EvaluateBatch(ctx, BatchEvaluateRequest{Items: []EvaluateRequest{req, req, req}})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("cancelled context fails items", func(t *testing.T) {
		f := newTestFixture()
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		resp, err := f.svc.EvaluateBatch(cancelled, BatchEvaluateRequest{Items: []EvaluateRequest{
			towelRequest("Cotton towel", "15"),
		}})
		require.NoError(t, err)
		assert.Equal(t, 1, resp.Failed)
		assert.Equal(t, "CANCELLED", resp.Items[0].Error.Code)
	})
}

func TestService_CalculateProfit(t *testing.T) {
	ctx := context.Background()
	f := newTestFixture()

	resp, err := f.svc.CalculateProfit(ctx, ProfitRequest{
		WholesalePrice: "500",
		WeightGrams:    intPtr(50),
		SalePrice:      "15",
		Marketplace:    "ebay",
	})
	require.NoError(t, err)
	assert.Equal(t, "3.33", resp.WholesaleConverted.StringFixed())
	assert.Equal(t, "2.29", resp.Fees.Total.StringFixed())
	assert.Equal(t, "5.51", resp.Profit.StringFixed())
	assert.Equal(t, "0.3673", resp.Margin)
	assert.Equal(t, "0.2500", resp.MinimumMargin)
	assert.True(t, resp.Profitable)

	t.Run("shipping override", func(t *testing.T) {
		resp, err := f.svc.CalculateProfit(ctx, ProfitRequest{
			WholesalePrice:   "500",
			WeightGrams:      intPtr(50),
			SalePrice:        "15",
			ShippingOverride: strPtr("0"),
		})
		require.NoError(t, err)
		assert.Equal(t, "0.00", resp.Shipping.StringFixed())
		assert.Equal(t, "override", resp.ShippingMethod)
	})

	t.Run("negative override", func(t *testing.T) {
		_, err := f.svc.CalculateProfit(ctx, ProfitRequest{
			WholesalePrice:   "500",
			WeightGrams:      intPtr(50),
			SalePrice:        "15",
			ShippingOverride: strPtr("-1"),
		})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}

func TestService_SuggestPrice(t *testing.T) {
	ctx := context.Background()
	f := newTestFixture()

	resp, err := f.svc.SuggestPrice(ctx, SuggestPriceRequest{
		WholesalePrice: "500",
		WeightGrams:    intPtr(50),
		Marketplace:    "ebay",
	})
	require.NoError(t, err)
	assert.Equal(t, "12.15", resp.SalePrice.StringFixed())
	assert.True(t, resp.Profitable)

	_, err = f.svc.SuggestPrice(ctx, SuggestPriceRequest{
		WholesalePrice: "500",
		WeightGrams:    intPtr(50),
		TargetMargin:   strPtr("1.5"),
	})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = f.svc.SuggestPrice(ctx, SuggestPriceRequest{
		WholesalePrice: "500",
		WeightGrams:    intPtr(50),
		TargetMargin:   strPtr("abc"),
	})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestService_CheckCompliance(t *testing.T) {
	ctx := context.Background()
	f := newTestFixture()

	t.Run("brand scoped to ebay", func(t *testing.T) {
		req := ComplianceRequest{Category: "knife", NameEN: "Shun santoku", Marketplace: "ebay"}
		resp, err := f.svc.CheckCompliance(ctx, req)
		require.NoError(t, err)
		assert.False(t, resp.Passed)
		assert.Equal(t, []string{"brand name detected: Shun"}, resp.Issues)
		assert.Equal(t, "high", resp.RiskLevel)
		assert.Equal(t, []string{"GB", "IE"}, resp.ExcludedCountries)

		req.Marketplace = "etsy"
		resp, err = f.svc.CheckCompliance(ctx, req)
		require.NoError(t, err)
		assert.True(t, resp.Passed)
		assert.Empty(t, resp.Issues)
	})

	t.Run("advisory keyword never rejects", func(t *testing.T) {
		resp, err := f.svc.CheckCompliance(ctx, ComplianceRequest{Category: "towel", DescriptionEN: "wholesale lot"})
		require.NoError(t, err)
		assert.True(t, resp.Passed)
		assert.Equal(t, []string{"prohibited keyword detected: wholesale"}, resp.Advisories)
	})

	t.Run("unknown category", func(t *testing.T) {
		_, err := f.svc.CheckCompliance(ctx, ComplianceRequest{Category: "sword"})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}

func TestService_CurrentSnapshotInfo(t *testing.T) {
	f := newTestFixture()
	info := f.svc.CurrentSnapshotInfo()

	assert.Equal(t, uint64(1), info.Version)
	assert.Equal(t, 10, info.BrandRules)
	assert.Equal(t, 13, info.KeywordRules)
	assert.Equal(t, 2, info.CountryRestrictions)
	assert.Equal(t, []string{"base", "ebay", "etsy"}, info.Marketplaces)
	assert.Equal(t, "JPY", info.SourceCurrency)
	assert.Equal(t, "USD", info.SaleCurrency)
	assert.Equal(t, "150", info.ExchangeRate)
	assert.Equal(t, "0.25", info.MinimumMargin)
}

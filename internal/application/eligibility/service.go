// Package eligibility orchestrates listing evaluation, profit pricing,
// compliance checks and rule administration on top of the domain engine.
package eligibility

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dropship/backend/internal/domain/eligibility"
	"github.com/dropship/backend/internal/domain/shared"
	"github.com/dropship/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const serviceName = "EligibilityService"

// Metrics records evaluation outcomes. telemetry.EligibilityMetrics
// satisfies it.
type Metrics interface {
	RecordEvaluation(ctx context.Context, marketplace string, passed bool, d time.Duration)
	RecordEvaluationError(ctx context.Context, marketplace string)
	RecordRuleReload(ctx context.Context, kind string, version uint64)
}

type noopMetrics struct{}

func (noopMetrics) RecordEvaluation(context.Context, string, bool, time.Duration) {}
func (noopMetrics) RecordEvaluationError(context.Context, string)                {}
func (noopMetrics) RecordRuleReload(context.Context, string, uint64)             {}

// Service is the application entry point for evaluations and rule changes
type Service struct {
	store    *eligibility.SnapshotStore
	rules    eligibility.RuleRepository
	products eligibility.ProductRepository
	notifier eligibility.RuleChangeNotifier
	metrics  Metrics
	logger   *zap.Logger

	// reloadMu orders rule loads with their snapshot swaps
	reloadMu sync.Mutex

	instanceID         string
	defaultMarketplace eligibility.Marketplace
	batchConcurrency   int
	maxBatchSize       int
}

// Option configures a Service
type Option func(*Service)

// WithNotifier publishes rule changes to other instances
func WithNotifier(n eligibility.RuleChangeNotifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithMetrics sets the metrics recorder
func WithMetrics(m Metrics) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithInstanceID sets the origin stamped on published rule changes
func WithInstanceID(id string) Option {
	return func(s *Service) {
		if id != "" {
			s.instanceID = id
		}
	}
}

// WithDefaultMarketplace sets the marketplace used when a request omits it
func WithDefaultMarketplace(m eligibility.Marketplace) Option {
	return func(s *Service) {
		if m.IsValid() {
			s.defaultMarketplace = m
		}
	}
}

// WithBatchLimits bounds batch evaluation fan-out and size
func WithBatchLimits(concurrency, maxSize int) Option {
	return func(s *Service) {
		if concurrency > 0 {
			s.batchConcurrency = concurrency
		}
		if maxSize > 0 {
			s.maxBatchSize = maxSize
		}
	}
}

// NewService creates a new eligibility service
func NewService(
	store *eligibility.SnapshotStore,
	rules eligibility.RuleRepository,
	products eligibility.ProductRepository,
	logger *zap.Logger,
	opts ...Option,
) *Service {
	s := &Service{
		store:              store,
		rules:              rules,
		products:           products,
		metrics:            noopMetrics{},
		logger:             logger,
		instanceID:         uuid.NewString(),
		defaultMarketplace: eligibility.MarketplaceEbay,
		batchConcurrency:   8,
		maxBatchSize:       500,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// InstanceID returns the origin this service stamps on rule changes
func (s *Service) InstanceID() string {
	return s.instanceID
}

// Evaluate runs the eligibility engine on an inline product
func (s *Service) Evaluate(ctx context.Context, req EvaluateRequest) (*EligibilityResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, serviceName, "Evaluate",
		telemetry.WithAttribute(telemetry.SpanAttrMarketplace, req.Offer.Marketplace))
	defer span.End()

	snap := s.store.Current()
	resp, err := s.evaluate(ctx, snap, req)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span,
		telemetry.SpanAttrPassed, resp.Passed,
		telemetry.SpanAttrSnapshotVersion, resp.SnapshotVersion,
	)
	return resp, nil
}

// EvaluateProduct runs the eligibility engine on a stored product
func (s *Service) EvaluateProduct(ctx context.Context, productID uuid.UUID, req OfferRequest) (*EligibilityResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, serviceName, "EvaluateProduct",
		telemetry.WithAttribute(telemetry.SpanAttrProductID, productID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrMarketplace, req.Marketplace))
	defer span.End()

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	snap := s.store.Current()
	offer, err := s.parseOffer(snap, req)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	resp, err := s.run(ctx, product, offer, snap)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	resp.ProductID = &product.ID
	telemetry.SetAttributes(span, telemetry.SpanAttrPassed, resp.Passed)
	return resp, nil
}

// EvaluateBatch evaluates every item against the same snapshot. Items that
// fail carry their own error; the batch itself fails only on bad framing.
func (s *Service) EvaluateBatch(ctx context.Context, req BatchEvaluateRequest) (*BatchEvaluateResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, serviceName, "EvaluateBatch",
		telemetry.WithAttribute(telemetry.SpanAttrBatchSize, len(req.Items)))
	defer span.End()

	if len(req.Items) == 0 {
		return nil, invalidInput("EMPTY_BATCH", "at least one item is required")
	}
	if len(req.Items) > s.maxBatchSize {
		return nil, invalidInput("BATCH_TOO_LARGE",
			fmt.Sprintf("cannot evaluate more than %d items at once", s.maxBatchSize))
	}

	snap := s.store.Current()
	results := make([]BatchItemResult, len(req.Items))

	var g errgroup.Group
	g.SetLimit(s.batchConcurrency)
	for i, item := range req.Items {
		i, item := i, item
		g.Go(func() error {
			results[i] = BatchItemResult{Index: i}
			if err := ctx.Err(); err != nil {
				results[i].Error = toItemError(err)
				return nil
			}
			resp, err := s.evaluate(ctx, snap, item)
			if err != nil {
				results[i].Error = toItemError(err)
				return nil
			}
			results[i].Result = resp
			return nil
		})
	}
	_ = g.Wait()

	out := &BatchEvaluateResponse{Items: results, SnapshotVersion: snap.Version}
	for _, r := range results {
		switch {
		case r.Error != nil:
			out.Failed++
		case r.Result.Passed:
			out.Passed++
		default:
			out.Rejected++
		}
	}

	s.logger.Info("Batch evaluation complete",
		zap.Int("items", len(results)),
		zap.Int("passed", out.Passed),
		zap.Int("rejected", out.Rejected),
		zap.Int("failed", out.Failed),
		zap.Uint64("snapshot_version", snap.Version))
	return out, nil
}

func (s *Service) evaluate(ctx context.Context, snap *eligibility.Snapshot, req EvaluateRequest) (*EligibilityResponse, error) {
	product, err := buildProduct(snap, req.Product)
	if err != nil {
		s.metrics.RecordEvaluationError(ctx, req.Offer.Marketplace)
		return nil, err
	}
	offer, err := s.parseOffer(snap, req.Offer)
	if err != nil {
		s.metrics.RecordEvaluationError(ctx, req.Offer.Marketplace)
		return nil, err
	}
	return s.run(ctx, product, offer, snap)
}

func (s *Service) run(ctx context.Context, product *eligibility.Product, offer eligibility.Offer, snap *eligibility.Snapshot) (*EligibilityResponse, error) {
	start := time.Now()
	var (
		result eligibility.EligibilityResult
		err    error
	)
	telemetry.WithProfilingLabels(ctx, func(context.Context) {
		result, err = eligibility.Evaluate(product, offer, snap)
	}, "marketplace", string(offer.Marketplace))
	if err != nil {
		s.metrics.RecordEvaluationError(ctx, string(offer.Marketplace))
		return nil, err
	}
	s.metrics.RecordEvaluation(ctx, string(offer.Marketplace), result.Passed, time.Since(start))

	s.logger.Debug("Listing evaluated",
		zap.String("supplier_product_id", product.SupplierProductID),
		zap.String("marketplace", string(offer.Marketplace)),
		zap.Bool("passed", result.Passed),
		zap.Strings("reasons", result.Reasons),
		zap.String("margin", result.Margin.StringFixed(4)),
		zap.Uint64("snapshot_version", result.SnapshotVersion))

	resp := ToEligibilityResponse(result)
	return &resp, nil
}

// CalculateProfit prices one sale with the current snapshot
func (s *Service) CalculateProfit(ctx context.Context, req ProfitRequest) (*ProfitResponse, error) {
	_, span := telemetry.StartServiceSpan(ctx, serviceName, "CalculateProfit",
		telemetry.WithAttribute(telemetry.SpanAttrMarketplace, req.Marketplace))
	defer span.End()

	snap := s.store.Current()
	in, err := s.profitInput(snap, req)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	breakdown, err := snap.Calculator().Calculate(in)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	resp := ToProfitResponse(breakdown, snap.Version)
	return &resp, nil
}

func (s *Service) profitInput(snap *eligibility.Snapshot, req ProfitRequest) (eligibility.ProfitInput, error) {
	weight, err := requireWeight(req.WeightGrams)
	if err != nil {
		return eligibility.ProfitInput{}, err
	}
	wholesaleCurrency, err := parseCurrency(req.WholesaleCurrency, snap.Exchange.Source)
	if err != nil {
		return eligibility.ProfitInput{}, err
	}
	wholesale, err := parseMoney("wholesale_price", req.WholesalePrice, wholesaleCurrency)
	if err != nil {
		return eligibility.ProfitInput{}, err
	}
	if wholesale.IsNegative() {
		return eligibility.ProfitInput{}, invalidInput("INVALID_WHOLESALE_PRICE", "wholesale price cannot be negative")
	}
	saleCurrency, err := parseCurrency(req.SaleCurrency, snap.Exchange.Target)
	if err != nil {
		return eligibility.ProfitInput{}, err
	}
	sale, err := parseMoney("sale_price", req.SalePrice, saleCurrency)
	if err != nil {
		return eligibility.ProfitInput{}, err
	}
	l, err := s.parseListing(snap, req.Marketplace, req.Destination, req.Addons, req.ShippingOverride)
	if err != nil {
		return eligibility.ProfitInput{}, err
	}
	return eligibility.ProfitInput{
		WholesalePrice:   wholesale,
		WeightGrams:      weight,
		SalePrice:        sale,
		Marketplace:      l.marketplace,
		Destination:      l.destination,
		Addons:           l.addons,
		ShippingOverride: l.override,
	}, nil
}

// SuggestPrice back-solves the lowest sale price reaching the target margin
func (s *Service) SuggestPrice(ctx context.Context, req SuggestPriceRequest) (*ProfitResponse, error) {
	_, span := telemetry.StartServiceSpan(ctx, serviceName, "SuggestPrice",
		telemetry.WithAttribute(telemetry.SpanAttrMarketplace, req.Marketplace))
	defer span.End()

	snap := s.store.Current()
	weight, err := requireWeight(req.WeightGrams)
	if err != nil {
		return nil, err
	}
	wholesaleCurrency, err := parseCurrency(req.WholesaleCurrency, snap.Exchange.Source)
	if err != nil {
		return nil, err
	}
	wholesale, err := parseMoney("wholesale_price", req.WholesalePrice, wholesaleCurrency)
	if err != nil {
		return nil, err
	}
	saleCurrency, err := parseCurrency(req.SaleCurrency, snap.Exchange.Target)
	if err != nil {
		return nil, err
	}
	l, err := s.parseListing(snap, req.Marketplace, req.Destination, req.Addons, req.ShippingOverride)
	if err != nil {
		return nil, err
	}

	in := eligibility.SuggestInput{
		WholesalePrice:   wholesale,
		WeightGrams:      weight,
		Marketplace:      l.marketplace,
		Destination:      l.destination,
		Addons:           l.addons,
		ShippingOverride: l.override,
		SaleCurrency:     saleCurrency,
	}
	if req.TargetMargin != nil {
		target, err := parseFraction("target_margin", *req.TargetMargin)
		if err != nil {
			return nil, err
		}
		in.TargetMargin = &target
	}

	breakdown, err := snap.Calculator().SuggestPrice(in)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	resp := ToProfitResponse(breakdown, snap.Version)
	return &resp, nil
}

// CheckCompliance runs only the compliance filter
func (s *Service) CheckCompliance(ctx context.Context, req ComplianceRequest) (*ComplianceResponse, error) {
	_, span := telemetry.StartServiceSpan(ctx, serviceName, "CheckCompliance",
		telemetry.WithAttribute(telemetry.SpanAttrCategory, req.Category))
	defer span.End()

	category, err := eligibility.ParseCategory(req.Category)
	if err != nil {
		return nil, err
	}
	marketplace := s.defaultMarketplace
	if req.Marketplace != "" {
		if marketplace, err = eligibility.ParseMarketplace(req.Marketplace); err != nil {
			return nil, err
		}
	}

	product := &eligibility.Product{
		Category:      category,
		NameJA:        req.NameJA,
		NameEN:        req.NameEN,
		DescriptionJA: req.DescriptionJA,
		DescriptionEN: req.DescriptionEN,
	}
	snap := s.store.Current()
	report := snap.Rules.Check(product, marketplace)
	telemetry.SetAttributes(span, telemetry.SpanAttrPassed, report.Passed)

	resp := ToComplianceResponse(report, snap.Version)
	return &resp, nil
}

// CurrentSnapshotInfo summarizes the reference data in effect
func (s *Service) CurrentSnapshotInfo() SnapshotInfo {
	snap := s.store.Current()
	schedules := snap.Fees.Schedules()
	marketplaces := make([]string, len(schedules))
	for i, sc := range schedules {
		marketplaces[i] = string(sc.Marketplace)
	}
	return SnapshotInfo{
		Version:             snap.Version,
		CreatedAt:           snap.CreatedAt,
		BrandRules:          len(snap.Rules.Brands()),
		KeywordRules:        len(snap.Rules.Keywords()),
		CountryRestrictions: len(snap.Rules.Restrictions()),
		ShippingBrackets:    len(snap.Shipping.Brackets()),
		Marketplaces:        marketplaces,
		SourceCurrency:      string(snap.Exchange.Source),
		SaleCurrency:        string(snap.Exchange.Target),
		ExchangeRate:        snap.Exchange.Rate.String(),
		MinimumMargin:       snap.MinimumMargin.String(),
	}
}

func toItemError(err error) *ItemError {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return &ItemError{Code: domainErr.Code, Message: err.Error()}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &ItemError{Code: "CANCELLED", Message: err.Error()}
	}
	return &ItemError{Code: "INTERNAL_ERROR", Message: "evaluation failed"}
}

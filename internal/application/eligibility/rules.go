package eligibility

import (
	"context"
	"time"

	"github.com/dropship/backend/internal/domain/eligibility"
	"github.com/dropship/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ListRules returns every stored rule, including disabled restrictions
func (s *Service) ListRules(ctx context.Context) (*RulesResponse, error) {
	brands, err := s.rules.ListBrandRules(ctx)
	if err != nil {
		return nil, err
	}
	keywords, err := s.rules.ListKeywordRules(ctx)
	if err != nil {
		return nil, err
	}
	restrictions, err := s.rules.ListCountryRestrictions(ctx)
	if err != nil {
		return nil, err
	}

	resp := &RulesResponse{
		Brands:          make([]BrandRuleResponse, len(brands)),
		Keywords:        make([]KeywordRuleResponse, len(keywords)),
		Restrictions:    make([]CountryRestrictionResponse, len(restrictions)),
		SnapshotVersion: s.store.Current().Version,
	}
	for i, r := range brands {
		resp.Brands[i] = toBrandRuleResponse(r)
	}
	for i, r := range keywords {
		resp.Keywords[i] = toKeywordRuleResponse(r)
	}
	for i, r := range restrictions {
		resp.Restrictions[i] = toCountryRestrictionResponse(r)
	}
	return resp, nil
}

// AddBrandRule stores a brand rule and swaps in a new snapshot
func (s *Service) AddBrandRule(ctx context.Context, req BrandRuleRequest) (*BrandRuleResponse, error) {
	rule, err := eligibility.NewBrandRule(req.Token, req.Scope, req.RiskLevel, req.Notes)
	if err != nil {
		return nil, err
	}
	if err := s.rules.SaveBrandRule(ctx, rule); err != nil {
		return nil, err
	}
	if err := s.applyChange(ctx, eligibility.RuleChangeCreated, eligibility.RuleKindBrand, rule.ID); err != nil {
		return nil, err
	}
	resp := toBrandRuleResponse(rule)
	return &resp, nil
}

// RemoveBrandRule deletes a brand rule and swaps in a new snapshot
func (s *Service) RemoveBrandRule(ctx context.Context, id uuid.UUID) error {
	if err := s.rules.DeleteBrandRule(ctx, id); err != nil {
		return err
	}
	return s.applyChange(ctx, eligibility.RuleChangeDeleted, eligibility.RuleKindBrand, id)
}

// AddKeywordRule stores a keyword rule and swaps in a new snapshot
func (s *Service) AddKeywordRule(ctx context.Context, req KeywordRuleRequest) (*KeywordRuleResponse, error) {
	severity, err := eligibility.ParseSeverity(req.Severity)
	if err != nil {
		return nil, err
	}
	rule, err := eligibility.NewKeywordRule(req.Keyword, severity)
	if err != nil {
		return nil, err
	}
	if err := s.rules.SaveKeywordRule(ctx, rule); err != nil {
		return nil, err
	}
	if err := s.applyChange(ctx, eligibility.RuleChangeCreated, eligibility.RuleKindKeyword, rule.ID); err != nil {
		return nil, err
	}
	resp := toKeywordRuleResponse(rule)
	return &resp, nil
}

// RemoveKeywordRule deletes a keyword rule and swaps in a new snapshot
func (s *Service) RemoveKeywordRule(ctx context.Context, id uuid.UUID) error {
	if err := s.rules.DeleteKeywordRule(ctx, id); err != nil {
		return err
	}
	return s.applyChange(ctx, eligibility.RuleChangeDeleted, eligibility.RuleKindKeyword, id)
}

// AddCountryRestriction stores an enabled restriction and swaps in a new snapshot
func (s *Service) AddCountryRestriction(ctx context.Context, req CountryRestrictionRequest) (*CountryRestrictionResponse, error) {
	category, err := eligibility.ParseCategory(req.Category)
	if err != nil {
		return nil, err
	}
	restriction, err := eligibility.NewCountryRestriction(category, req.CountryCode, req.Reason)
	if err != nil {
		return nil, err
	}
	if err := s.rules.SaveCountryRestriction(ctx, restriction); err != nil {
		return nil, err
	}
	if err := s.applyChange(ctx, eligibility.RuleChangeCreated, eligibility.RuleKindRestriction, restriction.ID); err != nil {
		return nil, err
	}
	resp := toCountryRestrictionResponse(restriction)
	return &resp, nil
}

// SetCountryRestrictionEnabled toggles a restriction without deleting it
func (s *Service) SetCountryRestrictionEnabled(ctx context.Context, id uuid.UUID, enabled bool) (*CountryRestrictionResponse, error) {
	restriction, err := s.rules.FindCountryRestriction(ctx, id)
	if err != nil {
		return nil, err
	}
	if restriction.Enabled != enabled {
		restriction.Enabled = enabled
		if err := s.rules.SaveCountryRestriction(ctx, restriction); err != nil {
			return nil, err
		}
		if err := s.applyChange(ctx, eligibility.RuleChangeUpdated, eligibility.RuleKindRestriction, id); err != nil {
			return nil, err
		}
	}
	resp := toCountryRestrictionResponse(restriction)
	return &resp, nil
}

// RemoveCountryRestriction deletes a restriction and swaps in a new snapshot
func (s *Service) RemoveCountryRestriction(ctx context.Context, id uuid.UUID) error {
	if err := s.rules.DeleteCountryRestriction(ctx, id); err != nil {
		return err
	}
	return s.applyChange(ctx, eligibility.RuleChangeDeleted, eligibility.RuleKindRestriction, id)
}

// ReloadRules rebuilds the rule set from storage, swaps in a new snapshot
// and tells other instances to do the same
func (s *Service) ReloadRules(ctx context.Context) (*SnapshotInfo, error) {
	if err := s.applyChange(ctx, eligibility.RuleChangeReloaded, eligibility.RuleKindAll, uuid.Nil); err != nil {
		return nil, err
	}
	info := s.CurrentSnapshotInfo()
	return &info, nil
}

// RefreshRules rebuilds the snapshot from storage without publishing. It is
// the hook for the periodic refresher and for remote change messages.
func (s *Service) RefreshRules(ctx context.Context) error {
	_, err := s.reload(ctx, eligibility.RuleKindAll)
	return err
}

// ListenForRuleChanges applies rule changes published by other instances.
// It blocks until ctx is cancelled or the notifier is closed.
func (s *Service) ListenForRuleChanges(ctx context.Context) error {
	if s.notifier == nil {
		<-ctx.Done()
		return nil
	}
	return s.notifier.Subscribe(ctx, func(msg eligibility.RuleChangeMessage) {
		if msg.Origin == s.instanceID {
			return
		}
		if _, err := s.reload(ctx, msg.Kind); err != nil {
			s.logger.Error("Failed to apply remote rule change",
				zap.String("origin", msg.Origin),
				zap.String("kind", msg.Kind),
				zap.String("action", string(msg.Action)),
				zap.Error(err))
		}
	})
}

// applyChange reloads the local snapshot, then publishes the change. A
// publish failure is logged only: the rule is stored and peers catch up on
// their next periodic refresh.
func (s *Service) applyChange(ctx context.Context, action eligibility.RuleChangeAction, kind string, id uuid.UUID) error {
	snap, err := s.reload(ctx, kind)
	if err != nil {
		return err
	}
	if s.notifier == nil {
		return nil
	}

	msg := eligibility.RuleChangeMessage{
		Action:    action,
		Kind:      kind,
		Origin:    s.instanceID,
		Version:   snap.Version,
		Timestamp: time.Now().UnixMilli(),
	}
	if id != uuid.Nil {
		msg.RuleID = id.String()
	}
	if err := s.notifier.Publish(ctx, msg); err != nil {
		s.logger.Warn("Failed to publish rule change",
			zap.String("kind", kind),
			zap.String("action", string(action)),
			zap.Error(err))
	}
	return nil
}

func (s *Service) reload(ctx context.Context, kind string) (*eligibility.Snapshot, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, serviceName, "ReloadRules",
		telemetry.WithAttribute(telemetry.SpanAttrRuleKind, kind))
	defer span.End()

	s.reloadMu.Lock()
	rules, err := eligibility.LoadRuleSet(ctx, s.rules)
	if err != nil {
		s.reloadMu.Unlock()
		telemetry.RecordError(span, err)
		return nil, err
	}
	snap, err := s.store.Update(func(current *eligibility.Snapshot) (*eligibility.Snapshot, error) {
		return current.WithRules(rules), nil
	})
	s.reloadMu.Unlock()
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.metrics.RecordRuleReload(ctx, kind, snap.Version)
	telemetry.SetAttributes(span, telemetry.SpanAttrSnapshotVersion, snap.Version)
	s.logger.Info("Rule snapshot swapped",
		zap.String("kind", kind),
		zap.Uint64("version", snap.Version),
		zap.Int("brand_rules", len(rules.Brands())),
		zap.Int("keyword_rules", len(rules.Keywords())),
		zap.Int("country_restrictions", len(rules.Restrictions())))
	return snap, nil
}

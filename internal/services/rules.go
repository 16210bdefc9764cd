package services

import (
	"context"

	"github.com/AnshRaj112/wardline-backend/internal/errs"
	"github.com/AnshRaj112/wardline-backend/internal/models"
	"github.com/AnshRaj112/wardline-backend/internal/store"
)

// RuleService tracks what a monitor has requested to observe versus what the
// protected user has approved, plus the protected user's time windows.
// Neither gates alert delivery.
type RuleService struct {
	Rules   store.RuleStore
	Windows store.TimeWindowStore
}

func NewRuleService(rules store.RuleStore, windows store.TimeWindowStore) *RuleService {
	return &RuleService{Rules: rules, Windows: windows}
}

// RequestRules replaces the whole bundle for (protectedUID, monitorUID) with
// the given request and resets the approvals: a changed request must always
// be re-approved by the protected user.
func (s *RuleService) RequestRules(ctx context.Context, protectedUID, monitorUID string, rules []models.MonitoringRule) error {
	if protectedUID == "" || monitorUID == "" {
		return errs.Validationf("protected id and monitor id are required")
	}
	for _, r := range rules {
		if _, ok := models.ParseRuleType(string(r.Type)); !ok {
			return errs.Validationf("unknown rule type %q", r.Type)
		}
	}
	if rules == nil {
		rules = []models.MonitoringRule{}
	}

	return s.Rules.ReplaceBundle(ctx, models.MonitorRulesBundle{
		ProtectedUID:    protectedUID,
		MonitorUID:      monitorUID,
		Requested:       rules,
		AuthorizedTypes: []models.RuleType{},
	})
}

// GetBundlesForProtected reads every per-monitor bundle under the protected
// user. Partially-shaped stored records decode with safe defaults.
func (s *RuleService) GetBundlesForProtected(ctx context.Context, protectedUID string) ([]models.MonitorRulesBundle, error) {
	if protectedUID == "" {
		return nil, errs.Validationf("protected id is required")
	}
	return s.Rules.ListBundles(ctx, protectedUID)
}

// SaveAuthorizations overwrites the approved rule kinds for one monitor.
// The requested list is left untouched.
func (s *RuleService) SaveAuthorizations(ctx context.Context, protectedUID, monitorUID string, types []models.RuleType) error {
	if protectedUID == "" || monitorUID == "" {
		return errs.Validationf("protected id and monitor id are required")
	}
	for _, t := range types {
		if _, ok := models.ParseRuleType(string(t)); !ok {
			return errs.Validationf("unknown rule type %q", t)
		}
	}
	if types == nil {
		types = []models.RuleType{}
	}
	return s.Rules.SetAuthorizedTypes(ctx, protectedUID, monitorUID, types)
}

// AddTimeWindow validates and persists a schedule window. A window failing
// the construction invariant is rejected before any write.
func (s *RuleService) AddTimeWindow(ctx context.Context, protectedUID string, days []int, startHour, endHour int) (models.TimeWindow, error) {
	if protectedUID == "" {
		return models.TimeWindow{}, errs.Validationf("protected id is required")
	}
	w, err := models.NewTimeWindow(protectedUID, days, startHour, endHour)
	if err != nil {
		return models.TimeWindow{}, err
	}
	if err := s.Windows.Add(ctx, w); err != nil {
		return models.TimeWindow{}, err
	}
	return w, nil
}

// ListTimeWindows returns the protected user's schedule windows.
func (s *RuleService) ListTimeWindows(ctx context.Context, protectedUID string) ([]models.TimeWindow, error) {
	if protectedUID == "" {
		return nil, errs.Validationf("protected id is required")
	}
	return s.Windows.List(ctx, protectedUID)
}

// RemoveTimeWindow deletes one of the protected user's windows.
func (s *RuleService) RemoveTimeWindow(ctx context.Context, protectedUID, id string) error {
	if protectedUID == "" || id == "" {
		return errs.Validationf("protected id and window id are required")
	}
	return s.Windows.Remove(ctx, protectedUID, id)
}

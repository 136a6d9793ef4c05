// Package automation detects recurring-schedule intent in chat
// instructions and registers disabled automations pending a confirmation
// window, for an external cron scheduler to activate.
package automation

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"draftpad-backend/internal/domain"
	"draftpad-backend/internal/repository"
	"draftpad-backend/internal/service/editparse"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SchedulerNotifier tells the external scheduler service to pick up new or
// changed automations.
type SchedulerNotifier interface {
	TriggerResync(ctx context.Context) error
}

// Config holds the extractor's static settings.
type Config struct {
	// CallbackOrigin is the public origin the scheduler calls back into.
	// Extraction is skipped entirely when it is empty.
	CallbackOrigin string
	// DefaultTimezone is the last-resort timezone.
	DefaultTimezone string
	// ConfirmWindowSeconds is how long the user has to cancel before the
	// scheduler auto-enables the automation.
	ConfirmWindowSeconds int
}

// Extractor turns schedule phrasing into registered automations.
type Extractor struct {
	store    repository.AutomationStore
	notifier SchedulerNotifier
	cfg      Config
	logger   *zap.Logger
	now      func() time.Time
}

// NewExtractor creates an extractor.
func NewExtractor(store repository.AutomationStore, notifier SchedulerNotifier, cfg Config, logger *zap.Logger) *Extractor {
	return &Extractor{store: store, notifier: notifier, cfg: cfg, logger: logger, now: time.Now}
}

// trailer is the structured segment appended to the reply so the client
// and the scheduler can show and manage the pending automation.
type trailer struct {
	AutomationID        string `json:"automation_id"`
	Cron                string `json:"cron"`
	Timezone            string `json:"timezone"`
	ConfirmAfterSeconds int    `json:"confirm_after_seconds"`
}

// Extract scans the instruction for recurring-schedule intent. On a match
// it registers a disabled AutomationSpec and returns it together with the
// structured reply trailer; otherwise it returns nil and "".
func (e *Extractor) Extract(ctx context.Context, userID, instruction string, meta RequestMeta) (*domain.AutomationSpec, string) {
	if e.cfg.CallbackOrigin == "" {
		return nil, ""
	}

	match, ok := DetectSchedule(instruction)
	if !ok {
		return nil, ""
	}

	kind := classify(instruction)
	spec := domain.AutomationSpec{
		ID:                  uuid.New().String(),
		UserID:              userID,
		Kind:                kind,
		Cron:                match.Cron,
		Timezone:            ResolveTimezone(meta, match, e.cfg.DefaultTimezone),
		TaskPlan:            planFor(kind),
		ConfirmAfterSeconds: e.cfg.ConfirmWindowSeconds,
		AutoConfirm:         true,
		Enabled:             false,
		Instruction:         instruction,
		CallbackOrigin:      e.cfg.CallbackOrigin,
		CreatedAt:           e.now(),
	}

	if err := e.store.Create(ctx, spec); err != nil {
		e.logger.Warn("failed to register automation",
			zap.String("user_id", userID),
			zap.Error(err))
		return nil, ""
	}

	if e.notifier != nil {
		if err := e.notifier.TriggerResync(ctx); err != nil {
			e.logger.Warn("scheduler resync failed; automation stays pending",
				zap.String("automation_id", spec.ID),
				zap.Error(err))
		}
	}

	payload, err := json.Marshal(trailer{
		AutomationID:        spec.ID,
		Cron:                spec.Cron,
		Timezone:            spec.Timezone,
		ConfirmAfterSeconds: spec.ConfirmAfterSeconds,
	})
	if err != nil {
		return &spec, ""
	}
	return &spec, "\n" + editparse.Delimiter + "\n" + string(payload)
}

func classify(instruction string) domain.AutomationKind {
	lower := strings.ToLower(instruction)
	switch {
	case containsAny(lower, "news", "headline", "briefing", "新闻", "简报", "资讯"):
		return domain.AutomationNewsBriefing
	case containsAny(lower, "competitor", "rival", "竞品", "对手"):
		return domain.AutomationCompetitorMonitor
	default:
		return domain.AutomationGeneric
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func planFor(kind domain.AutomationKind) []domain.TaskStep {
	switch kind {
	case domain.AutomationNewsBriefing:
		return []domain.TaskStep{
			{Name: "collect_sources", Description: "Fetch the configured news sources"},
			{Name: "summarize_headlines", Description: "Summarize the day's headlines"},
			{Name: "compose_briefing", Description: "Compose the briefing document"},
			{Name: "deliver", Description: "Deliver the briefing to the user"},
		}
	case domain.AutomationCompetitorMonitor:
		return []domain.TaskStep{
			{Name: "fetch_updates", Description: "Fetch competitor updates"},
			{Name: "analyze_changes", Description: "Analyze what changed since the last run"},
			{Name: "compose_report", Description: "Compose the monitoring report"},
			{Name: "deliver", Description: "Deliver the report to the user"},
		}
	default:
		return []domain.TaskStep{
			{Name: "run_instruction", Description: "Run the saved instruction"},
			{Name: "deliver", Description: "Deliver the result to the user"},
		}
	}
}

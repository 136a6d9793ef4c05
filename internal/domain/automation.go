package domain

import "time"

// AutomationKind names the small set of recurring task shapes the
// extractor can classify an instruction into.
type AutomationKind string

const (
	AutomationNewsBriefing      AutomationKind = "news_briefing"
	AutomationCompetitorMonitor AutomationKind = "competitor_monitor"
	AutomationGeneric           AutomationKind = "generic"
)

// TaskStep is one named sub-step of an automation's task plan.
type TaskStep struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// AutomationSpec is a recurring automation inferred from a chat
// instruction. It is created disabled and pending a confirmation window;
// the external scheduler activates it once the window elapses unless the
// user cancels.
type AutomationSpec struct {
	ID                  string         `json:"id"`
	UserID              string         `json:"user_id"`
	Kind                AutomationKind `json:"kind"`
	Cron                string         `json:"cron"`
	Timezone            string         `json:"timezone"`
	TaskPlan            []TaskStep     `json:"task_plan"`
	ConfirmAfterSeconds int            `json:"confirm_after_seconds"`
	AutoConfirm         bool           `json:"auto_confirm"`
	Enabled             bool           `json:"enabled"`
	Instruction         string         `json:"instruction"`
	CallbackOrigin      string         `json:"callback_origin"`
	CreatedAt           time.Time      `json:"created_at"`
}

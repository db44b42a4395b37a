package orchestrator

import (
	"github.com/Shahin2512/HCP-Module/internal/model"
	"github.com/Shahin2512/HCP-Module/internal/tracker"
)

// Ops is the lifecycle summary of every tracked operation.
type Ops struct {
	RosterFetch tracker.Summary `json:"roster_fetch"`
	HCPCreate   tracker.Summary `json:"hcp_create"`
	FormLog     tracker.Summary `json:"form_log"`
	ChatLog     tracker.Summary `json:"chat_log"`
}

// Get returns the summary for kind.
func (o Ops) Get(kind tracker.Kind) tracker.Summary {
	switch kind {
	case tracker.RosterFetch:
		return o.RosterFetch
	case tracker.HCPCreate:
		return o.HCPCreate
	case tracker.FormLog:
		return o.FormLog
	case tracker.ChatLog:
		return o.ChatLog
	}
	return tracker.Summary{}
}

// Snapshot is a read-only copy of the orchestrator's state for the view
// layer. Mutating it has no effect on the orchestrator.
type Snapshot struct {
	HCPs                  []model.HCP         `json:"hcps"`
	ChatMessages          []model.ChatMessage `json:"chat_messages"`
	LastLoggedInteraction *model.Interaction  `json:"last_logged_interaction,omitempty"`
	SelectedHCPName       string              `json:"selected_hcp_name,omitempty"`
	Ops                   Ops                 `json:"async_states"`
}

// Snapshot returns the current state.
func (o *Orchestrator) Snapshot() Snapshot {
	return Snapshot{
		HCPs:                  o.roster.All(),
		ChatMessages:          o.chat.Messages(0),
		LastLoggedInteraction: o.lastInteraction(),
		SelectedHCPName:       o.Selected(),
		Ops: Ops{
			RosterFetch: o.rosterOp.Summary(),
			HCPCreate:   o.createOp.Summary(),
			FormLog:     o.formOp.Summary(),
			ChatLog:     o.chatOp.Summary(),
		},
	}
}

package orchestrator

import (
	"github.com/Shahin2512/HCP-Module/internal/correction"
	"github.com/Shahin2512/HCP-Module/internal/model"
	"github.com/Shahin2512/HCP-Module/internal/tracker"
)

// Outcome is the result of one intent. The concrete type is one of
// RosterLoaded, HCPCreated, InteractionLogged, ChatReplied, ChatNotice,
// Rejected or Failed.
type Outcome interface {
	// Kind is the tracked operation the intent belongs to.
	Kind() tracker.Kind
	outcome()
}

// RosterLoaded means the roster was replaced with HCPs.
type RosterLoaded struct {
	HCPs []model.HCP
}

// HCPCreated carries the newly created HCP so the caller can select it.
type HCPCreated struct {
	HCP model.HCP
}

// InteractionLogged means a form submission was accepted.
type InteractionLogged struct {
	Interaction model.Interaction
}

// ChatReplied means the chat endpoint accepted a message. Interaction is nil
// when the reply had no structured interaction. Correction is set when the
// message was rewritten as a correction record.
type ChatReplied struct {
	Reply       string
	Interaction *model.Interaction
	Correction  *correction.Match
}

// ChatNotice is an informational assistant message produced without a
// network call.
type ChatNotice struct {
	Text string
}

// Rejected is a local validation failure. Nothing was sent and the
// operation's tracker was not touched.
type Rejected struct {
	Op  tracker.Kind
	Err error
}

// Failed is a remote failure recorded on the operation's tracker.
type Failed struct {
	Op     tracker.Kind
	Err    error
	Detail string
}

func (RosterLoaded) Kind() tracker.Kind      { return tracker.RosterFetch }
func (HCPCreated) Kind() tracker.Kind        { return tracker.HCPCreate }
func (InteractionLogged) Kind() tracker.Kind { return tracker.FormLog }
func (ChatReplied) Kind() tracker.Kind       { return tracker.ChatLog }
func (ChatNotice) Kind() tracker.Kind        { return tracker.ChatLog }
func (r Rejected) Kind() tracker.Kind        { return r.Op }
func (f Failed) Kind() tracker.Kind          { return f.Op }

func (RosterLoaded) outcome()      {}
func (HCPCreated) outcome()        {}
func (InteractionLogged) outcome() {}
func (ChatReplied) outcome()       {}
func (ChatNotice) outcome()        {}
func (Rejected) outcome()          {}
func (Failed) outcome()            {}

// Err returns the error carried by a Rejected or Failed outcome, or nil.
func Err(o Outcome) error {
	switch v := o.(type) {
	case Rejected:
		return v.Err
	case Failed:
		return v.Err
	}
	return nil
}

package orchestrator

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/Shahin2512/HCP-Module/internal/chatlog"
	"github.com/Shahin2512/HCP-Module/internal/correction"
	"github.com/Shahin2512/HCP-Module/internal/draft"
	"github.com/Shahin2512/HCP-Module/internal/model"
	"github.com/Shahin2512/HCP-Module/internal/remote"
	"github.com/Shahin2512/HCP-Module/internal/roster"
	"github.com/Shahin2512/HCP-Module/internal/tracker"
)

const (
	DefaultReply = "Interaction logged successfully!"

	noSelectionNotice = "Please select an HCP from the dropdown before logging an interaction via chat."
	correctionNotice  = "Please select the HCP being corrected before sending a correction."
)

// Remote is the record store the orchestrator talks to. *remote.Client
// satisfies it.
type Remote interface {
	ListHCPs(ctx context.Context) ([]model.HCP, error)
	CreateHCP(ctx context.Context, in model.NewHCP) (model.HCP, error)
	LogInteraction(ctx context.Context, in model.InteractionInput) (model.Interaction, error)
	LogChat(ctx context.Context, in model.ChatInput) (model.ChatReply, error)
}

// Observer is called after every intent with its outcome and the resulting
// snapshot.
type Observer func(Outcome, Snapshot)

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger used by the orchestrator and its trackers.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// WithDefaultReply overrides the acknowledgement used when the chat endpoint
// returns no reply text.
func WithDefaultReply(s string) Option {
	return func(o *Orchestrator) {
		if s != "" {
			o.defaultReply = s
		}
	}
}

// WithObserver registers fn to receive every outcome.
func WithObserver(fn Observer) Option {
	return func(o *Orchestrator) { o.observer = fn }
}

// Orchestrator owns the roster cache, chat log and operation trackers. It is
// safe for concurrent use; different operation kinds may be in flight at the
// same time.
type Orchestrator struct {
	remote       Remote
	logger       *slog.Logger
	defaultReply string
	observer     Observer

	roster *roster.Cache
	chat   *chatlog.Log

	rosterOp *tracker.Op[[]model.HCP]
	createOp *tracker.Op[model.HCP]
	formOp   *tracker.Op[model.Interaction]
	chatOp   *tracker.Op[model.ChatReply]

	mu       sync.Mutex
	last     *model.Interaction
	selected string
	// refreshed latches the reconciler's roster refresh so it fires once per
	// empty-roster episode for a given last interaction.
	refreshed bool
}

// New creates an Orchestrator backed by r.
func New(r Remote, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		remote:       r,
		logger:       slog.Default(),
		defaultReply: DefaultReply,
		roster:       roster.New(),
		chat:         chatlog.New(),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.rosterOp = tracker.New[[]model.HCP](tracker.RosterFetch, o.logger)
	o.createOp = tracker.New[model.HCP](tracker.HCPCreate, o.logger)
	o.formOp = tracker.New[model.Interaction](tracker.FormLog, o.logger)
	o.chatOp = tracker.New[model.ChatReply](tracker.ChatLog, o.logger)
	return o
}

// Bootstrap performs the initial roster fetch.
func (o *Orchestrator) Bootstrap(ctx context.Context) (Outcome, Snapshot) {
	o.logger.Debug("bootstrapping roster")
	return o.RequestRoster(ctx)
}

// RequestRoster fetches the full roster and replaces the cache with it. On
// failure the cache is left as it was.
func (o *Orchestrator) RequestRoster(ctx context.Context) (Outcome, Snapshot) {
	attempt := o.rosterOp.Begin()

	hcps, err := o.remote.ListHCPs(ctx)
	if err != nil {
		o.rosterOp.Fail(attempt, err)
		return o.emit(o.failed(tracker.RosterFetch, err))
	}

	o.roster.Replace(hcps)
	if len(hcps) > 0 {
		o.rearmRefresh()
	}
	o.rosterOp.Succeed(attempt, hcps)
	return o.emit(RosterLoaded{HCPs: o.roster.All()})
}

// CreateHCP creates an HCP and appends it to the roster. Name is assumed to
// have been checked by the caller.
func (o *Orchestrator) CreateHCP(ctx context.Context, in model.NewHCP) (Outcome, Snapshot) {
	attempt := o.createOp.Begin()

	h, err := o.remote.CreateHCP(ctx, in)
	if err != nil {
		o.createOp.Fail(attempt, err)
		return o.emit(o.failed(tracker.HCPCreate, err))
	}

	o.roster.Append(h)
	o.rearmRefresh()
	o.createOp.Succeed(attempt, h)
	o.logger.Info("hcp created", "hcp_id", h.ID, "hcp_name", h.Name)
	return o.emit(HCPCreated{HCP: h})
}

// SubmitForm logs d through the form endpoint. A draft without an HCP is
// rejected before any network call.
func (o *Orchestrator) SubmitForm(ctx context.Context, d draft.Draft) (Outcome, Snapshot) {
	payload, err := d.Payload()
	if err != nil {
		return o.emit(Rejected{Op: tracker.FormLog, Err: err})
	}

	attempt := o.formOp.Begin()
	ix, err := o.remote.LogInteraction(ctx, payload)
	if err != nil {
		o.formOp.Fail(attempt, err)
		return o.emit(o.failed(tracker.FormLog, err))
	}

	if ix.HCPName == "" {
		ix.HCPName = d.HCPName
	}
	o.setLast(ix)
	o.formOp.Succeed(attempt, ix)
	o.logger.Info("interaction logged", "hcp_id", ix.HCPID, "hcp_name", ix.HCPName)
	return o.emit(InteractionLogged{Interaction: ix})
}

// SendChatMessage logs raw through the chat endpoint on behalf of selected.
//
// A correction ("should be Dr X [not Dr Y]") is rewritten into a correction
// record for the corrected HCP and moves the chat selection to it. Without a
// correction or a selection, an assistant notice is appended and nothing is
// sent. The user's text is appended to the transcript before anything else.
func (o *Orchestrator) SendChatMessage(ctx context.Context, raw, selected string) (Outcome, Snapshot) {
	if strings.TrimSpace(raw) == "" {
		return o.emit(Rejected{Op: tracker.ChatLog, Err: &model.ValidationError{
			Field:   "raw_text_input",
			Message: "message is empty",
		}})
	}

	o.chat.Append(model.ChatMessage{Text: raw, Sender: model.SenderUser})

	var (
		in    model.ChatInput
		match *correction.Match
	)
	if m, ok := correction.Parse(raw, selected); ok {
		if !m.Complete() {
			o.appendAI(correctionNotice)
			return o.emit(Rejected{Op: tracker.ChatLog, Err: &model.ValidationError{
				Field:   "hcp_name",
				Message: "correction to " + m.CorrectName + " has no HCP to replace",
				Err:     model.ErrNoHCPSelected,
			}})
		}
		match = &m
		in = model.ChatInput{RawText: m.Record(), HCPName: m.CorrectName}
		o.SelectHCP(m.CorrectName)
		o.logger.Info("chat correction", "from", m.IncorrectName, "to", m.CorrectName)
	} else {
		if selected == "" {
			o.appendAI(noSelectionNotice)
			return o.emit(ChatNotice{Text: noSelectionNotice})
		}
		in = model.ChatInput{RawText: raw, HCPName: selected}
	}

	attempt := o.chatOp.Begin()
	reply, err := o.remote.LogChat(ctx, in)
	if err != nil {
		o.chatOp.Fail(attempt, err)
		f := o.failed(tracker.ChatLog, err)
		o.appendAI("Error processing: " + f.Detail)
		return o.emit(f)
	}

	if reply.Interaction != nil {
		o.setLast(*reply.Interaction)
	}
	text := reply.Response
	if text == "" {
		text = o.defaultReply
	}
	o.appendAI(text)
	o.chatOp.Succeed(attempt, reply)

	var ix *model.Interaction
	if reply.Interaction != nil {
		cp := *reply.Interaction
		ix = &cp
	}
	return o.emit(ChatReplied{Reply: text, Interaction: ix, Correction: match})
}

// SelectHCP sets the chat's selected HCP name. An empty name clears it.
func (o *Orchestrator) SelectHCP(name string) {
	o.mu.Lock()
	o.selected = name
	o.mu.Unlock()
}

// Selected returns the chat's selected HCP name.
func (o *Orchestrator) Selected() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.selected
}

// ClearChat empties the transcript.
func (o *Orchestrator) ClearChat() Snapshot {
	o.chat.Clear()
	return o.Snapshot()
}

// Draft reconciles current against the last logged interaction. When the
// roster is empty and idle it is refreshed once and the draft is reconciled
// again, so an HCP that exists remotely resolves on the same call.
func (o *Orchestrator) Draft(ctx context.Context, current draft.Draft) draft.Result {
	res := draft.Reconcile(o.reconcileInput(current))
	if res.NeedsRoster && o.claimRefresh() {
		o.logger.Debug("roster empty, refreshing before reconcile")
		o.RequestRoster(ctx)
		res = draft.Reconcile(o.reconcileInput(current))
	}
	if res.Warning != nil {
		o.logger.Warn("hcp not resolved", "hcp_id", res.Warning.HCPID, "hcp_name", res.Warning.HCPName, "error", res.Warning)
	}
	return res
}

func (o *Orchestrator) reconcileInput(current draft.Draft) draft.Input {
	return draft.Input{
		Current:       current,
		Last:          o.lastInteraction(),
		Roster:        roster.View(o.roster.All()),
		RosterLoading: o.rosterOp.Pending(),
	}
}

// Roster returns a copy of the cached HCPs.
func (o *Orchestrator) Roster() []model.HCP {
	return o.roster.All()
}

func (o *Orchestrator) lastInteraction() *model.Interaction {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.last == nil {
		return nil
	}
	cp := *o.last
	return &cp
}

func (o *Orchestrator) setLast(ix model.Interaction) {
	o.mu.Lock()
	o.last = &ix
	o.refreshed = false
	o.mu.Unlock()
}

func (o *Orchestrator) claimRefresh() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.refreshed {
		return false
	}
	o.refreshed = true
	return true
}

func (o *Orchestrator) rearmRefresh() {
	o.mu.Lock()
	o.refreshed = false
	o.mu.Unlock()
}

func (o *Orchestrator) appendAI(text string) {
	o.chat.Append(model.ChatMessage{Text: text, Sender: model.SenderAI})
}

func (o *Orchestrator) failed(kind tracker.Kind, err error) Failed {
	return Failed{Op: kind, Err: err, Detail: remote.Detail(err)}
}

func (o *Orchestrator) emit(out Outcome) (Outcome, Snapshot) {
	snap := o.Snapshot()
	if o.observer != nil {
		o.observer(out, snap)
	}
	return out, snap
}

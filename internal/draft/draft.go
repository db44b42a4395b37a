package draft

import (
	"fmt"
	"strconv"
	"time"

	"github.com/Shahin2512/HCP-Module/internal/model"
	"github.com/Shahin2512/HCP-Module/internal/roster"
)

// Draft is the editable form representation of an interaction. HCPID is a
// string so that "no HCP chosen" is the empty string, as in the form.
type Draft struct {
	HCPID              string                `json:"hcp_id"`
	HCPName            string                `json:"hcp_name"`
	Type               model.InteractionType `json:"interaction_type"`
	Date               string                `json:"date"`
	Time               string                `json:"time"`
	Attendees          string                `json:"attendees"`
	TopicsDiscussed    string                `json:"topics_discussed"`
	MaterialsShared    string                `json:"materials_shared"`
	SamplesDistributed string                `json:"samples_distributed"`
	Sentiment          model.Sentiment       `json:"hcp_sentiment"`
	Outcomes           string                `json:"outcomes"`
	FollowUpActions    string                `json:"follow_up_actions"`
}

// New returns a blank draft dated now.
func New(now time.Time) Draft {
	return Draft{
		Type:      model.TypeMeeting,
		Date:      now.Format(time.DateOnly),
		Time:      now.Format("15:04"),
		Sentiment: model.SentimentNeutral,
	}
}

// SelectHCP points the draft at h.
func (d Draft) SelectHCP(h model.HCP) Draft {
	d.HCPID = strconv.Itoa(h.ID)
	d.HCPName = h.Name
	return d
}

// Payload converts the draft into a POST /interactions/ body. It fails with
// a *model.ValidationError when no HCP is selected.
func (d Draft) Payload() (model.InteractionInput, error) {
	if d.HCPID == "" {
		return model.InteractionInput{}, &model.ValidationError{
			Field:   "hcp_id",
			Message: "select an HCP or create a new one before logging an interaction",
			Err:     model.ErrNoHCPSelected,
		}
	}
	id, err := strconv.Atoi(d.HCPID)
	if err != nil {
		return model.InteractionInput{}, &model.ValidationError{
			Field:   "hcp_id",
			Message: fmt.Sprintf("%q is not a numeric HCP id", d.HCPID),
			Err:     err,
		}
	}

	typ := d.Type
	if typ == "" {
		typ = model.TypeMeeting
	}
	sentiment := d.Sentiment
	if sentiment == "" {
		sentiment = model.SentimentNeutral
	}

	return model.InteractionInput{
		HCPID:              id,
		Type:               typ,
		Date:               d.Date,
		Time:               d.Time,
		Attendees:          d.Attendees,
		TopicsDiscussed:    d.TopicsDiscussed,
		MaterialsShared:    d.MaterialsShared,
		SamplesDistributed: d.SamplesDistributed,
		Sentiment:          sentiment,
		Outcomes:           d.Outcomes,
		FollowUpActions:    d.FollowUpActions,
	}, nil
}

// ResolutionWarning reports that an interaction's HCP could not be matched
// against the roster. It is informational; the draft is still populated.
type ResolutionWarning struct {
	HCPID   int
	HCPName string
}

func (w *ResolutionWarning) Error() string {
	return fmt.Sprintf("HCP %q (ID: %d) not found in current HCP roster", w.HCPName, w.HCPID)
}

// Input is everything the reconciler reads.
type Input struct {
	Current       Draft
	Last          *model.Interaction
	Roster        roster.View
	RosterLoading bool
}

// Result is the reconciled draft plus the side requests it raised.
type Result struct {
	Draft Draft

	// NeedsRoster is set when the roster is empty and no fetch is in flight,
	// so the caller should refresh before trusting the resolution.
	NeedsRoster bool

	// Warning is non-nil when the HCP reference could not be resolved.
	Warning *ResolutionWarning
}

// Reconcile rebuilds a draft from the last logged interaction and the
// roster. It has no side effects: the same Input always yields the same
// Result. Without a last interaction the current draft is returned as is.
func Reconcile(in Input) Result {
	if in.Last == nil {
		return Result{Draft: in.Current}
	}
	last := in.Last

	res := Result{NeedsRoster: len(in.Roster) == 0 && !in.RosterLoading}

	var d Draft
	if h, ok := in.Roster.FindByID(last.HCPID); ok {
		d = d.SelectHCP(h)
	} else if h, ok := in.Roster.FindByName(last.HCPName); ok {
		d = d.SelectHCP(h)
	} else {
		res.Warning = &ResolutionWarning{HCPID: last.HCPID, HCPName: last.HCPName}
	}

	d.Type = last.Type
	if d.Type == "" {
		d.Type = model.TypeMeeting
	}
	d.Date = NormalizeDate(last.Date)
	d.Time = NormalizeTime(last.Time)
	d.Attendees = last.Attendees
	d.TopicsDiscussed = last.TopicsDiscussed
	d.MaterialsShared = last.MaterialsShared
	d.SamplesDistributed = last.SamplesDistributed
	d.Sentiment = last.Sentiment
	if d.Sentiment == "" {
		d.Sentiment = model.SentimentNeutral
	}
	d.Outcomes = last.Outcomes
	d.FollowUpActions = last.FollowUpActions

	res.Draft = d
	return res
}

package draft

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/Shahin2512/HCP-Module/internal/model"
	"github.com/Shahin2512/HCP-Module/internal/roster"
)

func sampleInteraction() *model.Interaction {
	return &model.Interaction{
		ID:                 7,
		HCPID:              1,
		HCPName:            "Dr A",
		Type:               model.TypeCall,
		Date:               "2024-05-01T10:30:00",
		Time:               "10:30:45.123",
		Attendees:          "Dr A, nurse",
		TopicsDiscussed:    "Product X efficacy",
		MaterialsShared:    "brochure",
		SamplesDistributed: "2 boxes",
		Sentiment:          model.SentimentPositive,
		Outcomes:           "agreed to trial",
		FollowUpActions:    "call in 2 weeks",
	}
}

func TestReconcile_NoLastInteractionIsNoop(t *testing.T) {
	current := New(time.Date(2024, 1, 2, 3, 4, 0, 0, time.UTC))
	current.Attendees = "typed by user"

	res := Reconcile(Input{Current: current, Roster: roster.View{}})
	if diff := cmp.Diff(current, res.Draft); diff != "" {
		t.Errorf("draft changed (-want +got):\n%s", diff)
	}
	if res.NeedsRoster || res.Warning != nil {
		t.Errorf("unexpected side requests: %+v", res)
	}
}

func TestReconcile_ResolvesByID(t *testing.T) {
	res := Reconcile(Input{
		Last:   sampleInteraction(),
		Roster: roster.View{{ID: 1, Name: "Dr A"}},
	})

	want := Draft{
		HCPID:              "1",
		HCPName:            "Dr A",
		Type:               model.TypeCall,
		Date:               "2024-05-01",
		Time:               "10:30",
		Attendees:          "Dr A, nurse",
		TopicsDiscussed:    "Product X efficacy",
		MaterialsShared:    "brochure",
		SamplesDistributed: "2 boxes",
		Sentiment:          model.SentimentPositive,
		Outcomes:           "agreed to trial",
		FollowUpActions:    "call in 2 weeks",
	}
	if diff := cmp.Diff(want, res.Draft); diff != "" {
		t.Errorf("draft mismatch (-want +got):\n%s", diff)
	}
	if res.NeedsRoster {
		t.Error("NeedsRoster = true with a populated roster")
	}
	if res.Warning != nil {
		t.Errorf("unexpected warning: %v", res.Warning)
	}
}

func TestReconcile_IDLookupUsesRosterName(t *testing.T) {
	last := sampleInteraction()
	last.HCPName = "stale name"

	res := Reconcile(Input{Last: last, Roster: roster.View{{ID: 1, Name: "Dr A"}}})
	if res.Draft.HCPName != "Dr A" {
		t.Errorf("HCPName = %q, want roster name %q", res.Draft.HCPName, "Dr A")
	}
}

func TestReconcile_FallsBackToName(t *testing.T) {
	last := sampleInteraction()
	last.HCPID = 99

	res := Reconcile(Input{Last: last, Roster: roster.View{{ID: 5, Name: "Dr B"}, {ID: 1, Name: "Dr A"}}})
	if res.Draft.HCPID != "1" || res.Draft.HCPName != "Dr A" {
		t.Errorf("HCP = (%q, %q), want (1, Dr A)", res.Draft.HCPID, res.Draft.HCPName)
	}
	if res.Warning != nil {
		t.Errorf("unexpected warning: %v", res.Warning)
	}
}

func TestReconcile_NameFallbackIsCaseSensitive(t *testing.T) {
	last := sampleInteraction()
	last.HCPID = 99
	last.HCPName = "dr a"

	res := Reconcile(Input{Last: last, Roster: roster.View{{ID: 1, Name: "Dr A"}}})
	if res.Draft.HCPID != "" {
		t.Errorf("HCPID = %q, want empty", res.Draft.HCPID)
	}
	if res.Warning == nil {
		t.Fatal("expected a resolution warning")
	}
}

func TestReconcile_EmptyRosterRequestsRefresh(t *testing.T) {
	res := Reconcile(Input{Last: sampleInteraction(), Roster: roster.View{}})

	if res.Draft.HCPID != "" || res.Draft.HCPName != "" {
		t.Errorf("HCP fields = (%q, %q), want blank", res.Draft.HCPID, res.Draft.HCPName)
	}
	if !res.NeedsRoster {
		t.Error("NeedsRoster = false, want true")
	}
	var w *ResolutionWarning
	if !errors.As(res.Warning, &w) || w.HCPName != "Dr A" || w.HCPID != 1 {
		t.Errorf("Warning = %v, want unresolved Dr A / 1", res.Warning)
	}
	// The rest of the draft still populates.
	if res.Draft.TopicsDiscussed != "Product X efficacy" || res.Draft.Date != "2024-05-01" {
		t.Errorf("draft not populated: %+v", res.Draft)
	}
}

func TestReconcile_EmptyRosterWhileLoading(t *testing.T) {
	res := Reconcile(Input{Last: sampleInteraction(), RosterLoading: true})
	if res.NeedsRoster {
		t.Error("NeedsRoster = true while a fetch is in flight")
	}
}

func TestReconcile_ConvergesAfterRefresh(t *testing.T) {
	last := sampleInteraction()
	before := Reconcile(Input{Last: last})
	if before.Draft.HCPID != "" {
		t.Fatalf("pre-refresh HCPID = %q", before.Draft.HCPID)
	}

	after := Reconcile(Input{Current: before.Draft, Last: last, Roster: roster.View{{ID: 1, Name: "Dr A"}}})
	if after.Draft.HCPID != "1" || after.Warning != nil || after.NeedsRoster {
		t.Errorf("post-refresh result = %+v", after)
	}
}

func TestReconcile_Deterministic(t *testing.T) {
	in := Input{Last: sampleInteraction(), Roster: roster.View{{ID: 1, Name: "Dr A"}}}
	a, b := Reconcile(in), Reconcile(in)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("non-deterministic result (-first +second):\n%s", diff)
	}
}

func TestReconcile_Defaults(t *testing.T) {
	last := &model.Interaction{HCPID: 1, HCPName: "Dr A", Date: "garbage", Time: "noon"}
	res := Reconcile(Input{Last: last, Roster: roster.View{{ID: 1, Name: "Dr A"}}})

	want := Draft{
		HCPID:     "1",
		HCPName:   "Dr A",
		Type:      model.TypeMeeting,
		Sentiment: model.SentimentNeutral,
	}
	if diff := cmp.Diff(want, res.Draft); diff != "" {
		t.Errorf("draft mismatch (-want +got):\n%s", diff)
	}
}

func TestDraft_Payload(t *testing.T) {
	d := New(time.Date(2024, 3, 4, 9, 5, 0, 0, time.UTC)).SelectHCP(model.HCP{ID: 42, Name: "Dr Q"})
	d.TopicsDiscussed = "pricing"

	p, err := d.Payload()
	if err != nil {
		t.Fatalf("Payload: %v", err)
	}
	want := model.InteractionInput{
		HCPID:           42,
		Type:            model.TypeMeeting,
		Date:            "2024-03-04",
		Time:            "09:05",
		TopicsDiscussed: "pricing",
		Sentiment:       model.SentimentNeutral,
	}
	if diff := cmp.Diff(want, p); diff != "" {
		t.Errorf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestDraft_PayloadRequiresHCP(t *testing.T) {
	_, err := Draft{}.Payload()
	var ve *model.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v, want *model.ValidationError", err)
	}
	if !errors.Is(err, model.ErrNoHCPSelected) {
		t.Errorf("err does not wrap ErrNoHCPSelected: %v", err)
	}

	_, err = Draft{HCPID: "abc"}.Payload()
	if !errors.As(err, &ve) || ve.Field != "hcp_id" {
		t.Errorf("non-numeric id err = %v", err)
	}
}

package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/Shahin2512/HCP-Module/internal/model"
)

func TestChat_LogsExtractedInteraction(t *testing.T) {
	deps := newTestDeps(t)
	h := NewAppHandler(deps)
	smith := seedHCP(t, deps, "Dr. Smith")

	rr := doRequest(t, h, http.MethodPost, Prefix+"/interactions/chat",
		`{"raw_text_input":"Called Dr. Smith, discussed Product X; shared the brochure. Sentiment was positive.","hcp_name":"Dr. Smith"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	reply := decodeJSON[chatReply](t, rr)
	if reply.Status != "success" || reply.Response != "Interaction logged for Dr. Smith" {
		t.Fatalf("reply = %+v", reply)
	}
	ix := reply.Interaction
	if ix == nil {
		t.Fatal("no interaction_object in reply")
	}
	if ix.HCPID != smith.ID || ix.HCPName != "Dr. Smith" {
		t.Errorf("hcp = %d %q", ix.HCPID, ix.HCPName)
	}
	if ix.Type != model.TypeCall {
		t.Errorf("type = %q, want Call", ix.Type)
	}
	if ix.TopicsDiscussed != "Product X" || ix.MaterialsShared != "the brochure" {
		t.Errorf("topics = %q, materials = %q", ix.TopicsDiscussed, ix.MaterialsShared)
	}
	if ix.Sentiment != model.SentimentPositive {
		t.Errorf("sentiment = %q", ix.Sentiment)
	}
	if ix.Date != "2024-05-01T00:00:00" || ix.Time != "10:30" {
		t.Errorf("date/time = %q %q", ix.Date, ix.Time)
	}
	if ix.RawTextInput == "" || ix.Summary == "" {
		t.Error("raw text and summary should be stored")
	}
}

func TestChat_CallerFieldsWin(t *testing.T) {
	deps := newTestDeps(t)
	h := NewAppHandler(deps)
	seedHCP(t, deps, "Dr. Smith")

	rr := doRequest(t, h, http.MethodPost, Prefix+"/interactions/chat",
		`{"raw_text_input":"Met Dr. Smith, discussed Product X","hcp_name":"Dr. Smith","topics_discussed":"Pricing"}`)
	reply := decodeJSON[chatReply](t, rr)
	if reply.Interaction == nil || reply.Interaction.TopicsDiscussed != "Pricing" {
		t.Errorf("reply = %+v", reply)
	}
}

func TestChat_NameFromText(t *testing.T) {
	deps := newTestDeps(t)
	h := NewAppHandler(deps)
	seedHCP(t, deps, "Dr. Smith")

	rr := doRequest(t, h, http.MethodPost, Prefix+"/interactions/chat",
		`{"raw_text_input":"Met Dr. Smith, discussed Product X","hcp_name":""}`)
	reply := decodeJSON[chatReply](t, rr)
	if reply.Status != "success" || reply.Interaction == nil || reply.Interaction.HCPName != "Dr. Smith" {
		t.Errorf("reply = %+v", reply)
	}
}

func TestChat_BusinessErrors(t *testing.T) {
	deps := newTestDeps(t)
	h := NewAppHandler(deps)
	seedHCP(t, deps, "Dr. Smith")

	tests := []struct {
		name string
		body string
		want string
	}{
		{
			"unknown hcp",
			`{"raw_text_input":"Met Dr. Jones","hcp_name":"Dr. Jones"}`,
			"HCP 'Dr. Jones' not found",
		},
		{
			"no name anywhere",
			`{"raw_text_input":"met someone at the conference"}`,
			"Could not identify HCP name from your input. Please specify the HCP (e.g., 'Dr. John Doe').",
		},
		{
			"correction target missing",
			`{"raw_text_input":"CORRECTION: Change Dr. Smith to Dr. Lee"}`,
			"HCP 'Dr. Lee' not found. Please create it first.",
		},
		{
			"correction with nothing to move",
			`{"raw_text_input":"CORRECTION: Change Dr. Smith to Dr. Smith"}`,
			"No interactions found for Dr. Smith",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doRequest(t, h, http.MethodPost, Prefix+"/interactions/chat", tt.body)
			if rr.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rr.Code)
			}
			reply := decodeJSON[chatReply](t, rr)
			if reply.Status != "error" || reply.Response != tt.want {
				t.Errorf("reply = %+v, want error %q", reply, tt.want)
			}
			if reply.Interaction != nil {
				t.Error("error reply should carry no interaction")
			}
		})
	}
}

func TestChat_EmptyText(t *testing.T) {
	h := NewAppHandler(newTestDeps(t))

	rr := doRequest(t, h, http.MethodPost, Prefix+"/interactions/chat", `{"raw_text_input":"   "}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rr.Code)
	}
}

func TestChat_CorrectionCopiesMostRecent(t *testing.T) {
	deps := newTestDeps(t)
	h := NewAppHandler(deps)
	smith := seedHCP(t, deps, "Dr. Smith")
	lee := seedHCP(t, deps, "Dr. Lee")

	ctx := context.Background()
	for _, d := range []string{"2024-04-01T00:00:00", "2024-04-15T00:00:00"} {
		if _, err := deps.Store.CreateInteraction(ctx, model.Interaction{HCPID: smith.ID, Date: d, Time: "09:00", Outcomes: d}); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	rr := doRequest(t, h, http.MethodPost, Prefix+"/interactions/chat",
		`{"raw_text_input":"CORRECTION: Change Dr. Smith to Dr. Lee","hcp_name":"Dr. Lee"}`)
	reply := decodeJSON[chatReply](t, rr)
	if reply.Status != "success" || reply.Response != "Interaction reassigned from Dr. Smith to Dr. Lee" {
		t.Fatalf("reply = %+v", reply)
	}
	ix := reply.Interaction
	if ix == nil || ix.HCPID != lee.ID || ix.HCPName != "Dr. Lee" {
		t.Fatalf("interaction = %+v", ix)
	}
	if ix.Date != "2024-04-15T00:00:00" || ix.Outcomes != "2024-04-15T00:00:00" {
		t.Errorf("copied the wrong interaction: %+v", ix)
	}
	if ix.Summary != "Corrected from Dr. Smith (interaction 2)" {
		t.Errorf("summary = %q", ix.Summary)
	}

	// The copied-from interaction stays with the incorrect HCP.
	orig, err := deps.Store.MostRecentInteraction(ctx, smith.ID)
	if err != nil || orig.ID != 2 {
		t.Errorf("source interaction = %+v, err = %v", orig, err)
	}
}

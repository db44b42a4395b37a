package extract

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"

	"github.com/Shahin2512/HCP-Module/internal/model"
)

func TestDetails(t *testing.T) {
	text := "Met with Dr Smith and nurse Joy, discussed Product X efficacy; shared the brochure. " +
		"Gave 2 samples, agreed to a trial, next steps schedule a call"

	want := Fields{
		Attendees:          "Dr Smith and nurse Joy",
		TopicsDiscussed:    "Product X efficacy",
		MaterialsShared:    "the brochure",
		SamplesDistributed: "2 samples",
		Outcomes:           "to a trial",
		FollowUpActions:    "schedule a call",
	}
	if diff := cmp.Diff(want, Details(text)); diff != "" {
		t.Errorf("Details mismatch (-want +got):\n%s", diff)
	}
}

func TestDetails_NoTriggers(t *testing.T) {
	if diff := cmp.Diff(Fields{}, Details("quick hello")); diff != "" {
		t.Errorf("Details mismatch (-want +got):\n%s", diff)
	}
}

func TestDetails_WordBoundaries(t *testing.T) {
	got := Details("left without samples, forgave the delay")
	if got.Attendees != "" || got.SamplesDistributed != "" {
		t.Errorf("trigger matched inside a word: %+v", got)
	}
}

func TestHCPName(t *testing.T) {
	tests := []struct {
		text, want string
	}{
		{"Met Dr. Smith, discussed Product X", "Dr. Smith"},
		{"met Dr John Doe today", "Dr John Doe"},
		{"Dr Smith discussed pricing", "Dr Smith"},
		{"call with dr. Patel", "dr. Patel"},
		{"drove to the clinic", ""},
		{"the address was wrong", ""},
		{"", ""},
	}
	for _, tt := range tests {
		got, ok := HCPName(tt.text)
		if got != tt.want || ok != (tt.want != "") {
			t.Errorf("HCPName(%q) = %q, %v; want %q", tt.text, got, ok, tt.want)
		}
	}
}

func TestSentiment(t *testing.T) {
	tests := []struct {
		text string
		want model.Sentiment
	}{
		{"HCP sentiment: Negative although interested", model.SentimentNegative},
		{"sentiment was positive", model.SentimentPositive},
		{"Sentiment neutral", model.SentimentNeutral},
		{"she was very interested in the data", model.SentimentPositive},
		{"he was not interested", model.SentimentNegative},
		{"seemed uninterested", model.SentimentNegative},
		{"concerned about side effects", model.SentimentNegative},
		{"dropped off brochures", model.SentimentNeutral},
	}
	for _, tt := range tests {
		if got := Sentiment(tt.text); got != tt.want {
			t.Errorf("Sentiment(%q) = %s, want %s", tt.text, got, tt.want)
		}
	}
}

func TestMerge_CallerWins(t *testing.T) {
	extracted := Fields{Attendees: "extracted", TopicsDiscussed: "extracted topic"}
	got := extracted.Merge(model.ChatInput{TopicsDiscussed: "given topic", Outcomes: "given outcome", Attendees: "  "})

	want := Fields{Attendees: "extracted", TopicsDiscussed: "given topic", Outcomes: "given outcome"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Merge mismatch (-want +got):\n%s", diff)
	}
}

func TestType(t *testing.T) {
	tests := []struct {
		text string
		want model.InteractionType
	}{
		{"Called Dr Smith about dosing", model.TypeCall},
		{"quick phone catch-up", model.TypeCall},
		{"emailed the trial data", model.TypeEmail},
		{"Presented the new study at grand rounds", model.TypePresentation},
		{"Met Dr. Smith, discussed Product X", model.TypeMeeting},
		{"recalled an old conversation", model.TypeMeeting},
	}
	for _, tt := range tests {
		if got := Type(tt.text); got != tt.want {
			t.Errorf("Type(%q) = %s, want %s", tt.text, got, tt.want)
		}
	}
}

func TestSummary(t *testing.T) {
	if got := Summary("  met   Dr A\n today "); got != "met Dr A today" {
		t.Errorf("Summary = %q", got)
	}
	long := strings.Repeat("é", 250)
	if got := Summary(long); utf8.RuneCountInString(got) != 200 {
		t.Errorf("Summary length = %d runes, want 200", utf8.RuneCountInString(got))
	}
}

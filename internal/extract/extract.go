package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/Shahin2512/HCP-Module/internal/model"
)

// Fields are the free-text interaction fields recognised in chat text.
type Fields struct {
	Attendees          string
	TopicsDiscussed    string
	MaterialsShared    string
	SamplesDistributed string
	Outcomes           string
	FollowUpActions    string
}

func trigger(words string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b(?:` + words + `)\s+([^.,;]+)`)
}

var (
	attendeesRe = trigger(`met with|with`)
	topicsRe    = trigger(`discussed|discuss|about`)
	materialsRe = trigger(`shared|provided`)
	samplesRe   = trigger(`distributed|gave`)
	outcomesRe  = trigger(`agreed|decided`)
	followUpRe  = trigger(`follow[- ]up|next steps`)

	// hcpNameRe needs capitalised name words so "Dr Smith discussed" stops
	// at the surname.
	hcpNameRe = regexp.MustCompile(`\b(?:[Dd][Rr]\.?\s?)[A-Z][\w'-]*(?:\s[A-Z][\w'-]*)?`)

	typeCues = []struct {
		re  *regexp.Regexp
		typ model.InteractionType
	}{
		{regexp.MustCompile(`(?i)\b(?:presentation|presented|webinar)\b`), model.TypePresentation},
		{regexp.MustCompile(`(?i)\b(?:e-?mail(?:ed)?)\b`), model.TypeEmail},
		{regexp.MustCompile(`(?i)\b(?:call(?:ed)?|phoned?|rang)\b`), model.TypeCall},
	}

	sentimentRe = regexp.MustCompile(`(?i)\bsentiment\s*(?:was|is|:)?\s*(positive|neutral|negative)\b`)
)

var (
	negativeCues = []string{"not interested", "uninterested", "negative", "concerned", "skeptical", "sceptical", "unhappy", "declined", "refused", "resistant", "dissatisfied"}
	positiveCues = []string{"positive", "interested", "enthusiastic", "pleased", "happy", "receptive", "impressed", "excited", "keen"}
)

// Details extracts the keyword-triggered fields from text. Fields without a
// trigger are left empty.
func Details(text string) Fields {
	return Fields{
		Attendees:          first(attendeesRe, text),
		TopicsDiscussed:    first(topicsRe, text),
		MaterialsShared:    first(materialsRe, text),
		SamplesDistributed: first(samplesRe, text),
		Outcomes:           first(outcomesRe, text),
		FollowUpActions:    first(followUpRe, text),
	}
}

func first(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// HCPName returns the first "Dr Name [Surname]" mention in text.
func HCPName(text string) (string, bool) {
	name := strings.TrimSpace(hcpNameRe.FindString(text))
	return name, name != ""
}

// Sentiment infers the HCP's sentiment. An explicit "sentiment: X" wins;
// otherwise negative cues are checked before positive ones so that
// "not interested" is not read as interest. The default is Neutral.
func Sentiment(text string) model.Sentiment {
	if m := sentimentRe.FindStringSubmatch(text); m != nil {
		switch strings.ToLower(m[1]) {
		case "positive":
			return model.SentimentPositive
		case "negative":
			return model.SentimentNegative
		default:
			return model.SentimentNeutral
		}
	}

	lower := strings.ToLower(text)
	for _, cue := range negativeCues {
		if strings.Contains(lower, cue) {
			return model.SentimentNegative
		}
	}
	for _, cue := range positiveCues {
		if strings.Contains(lower, cue) {
			return model.SentimentPositive
		}
	}
	return model.SentimentNeutral
}

// Type guesses the interaction type from text, defaulting to Meeting.
func Type(text string) model.InteractionType {
	for _, c := range typeCues {
		if c.re.MatchString(text) {
			return c.typ
		}
	}
	return model.TypeMeeting
}

const maxSummaryRunes = 200

// Summary is the first 200 characters of text, whitespace collapsed.
func Summary(text string) string {
	s := strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(s) <= maxSummaryRunes {
		return s
	}
	return string([]rune(s)[:maxSummaryRunes])
}

// Merge fills the empty fields of in from the extracted ones. Values the
// caller supplied always win.
func (f Fields) Merge(in model.ChatInput) Fields {
	pick := func(given, extracted string) string {
		if strings.TrimSpace(given) != "" {
			return given
		}
		return extracted
	}
	return Fields{
		Attendees:          pick(in.Attendees, f.Attendees),
		TopicsDiscussed:    pick(in.TopicsDiscussed, f.TopicsDiscussed),
		MaterialsShared:    pick(in.MaterialsShared, f.MaterialsShared),
		SamplesDistributed: pick(in.SamplesDistributed, f.SamplesDistributed),
		Outcomes:           pick(in.Outcomes, f.Outcomes),
		FollowUpActions:    pick(in.FollowUpActions, f.FollowUpActions),
	}
}

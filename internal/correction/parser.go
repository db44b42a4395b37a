package correction

import (
	"fmt"
	"regexp"
	"strings"
)

const namePattern = `(?:Dr\.?\s*)?\w+`

// should be NAME [(not | instead of | , [not | instead of]) NAME], any case.
var (
	pattern = regexp.MustCompile(`(?i)\bshould\s+be\s+(` + namePattern + `)(?:(?:\s+not\s+|\s+instead\s+of\s+|\s*,\s*(?:not\s+|instead\s+of\s+)?)(` + namePattern + `))?`)
	record  = regexp.MustCompile(`^\s*CORRECTION:\s*Change\s+(.+?)\s+to\s+(.+?)\s*$`)
)

// Match is a parsed correction.
type Match struct {
	CorrectName   string
	IncorrectName string
}

// Parse looks for a correction in text. When the utterance names only the
// correct HCP, the incorrect name falls back to selected, which may be empty.
func Parse(text, selected string) (Match, bool) {
	m := pattern.FindStringSubmatch(text)
	if m == nil {
		return Match{}, false
	}
	incorrect := strings.TrimSpace(m[2])
	if incorrect == "" || isConnector(incorrect) {
		incorrect = selected
	}
	return Match{
		CorrectName:   strings.TrimSpace(m[1]),
		IncorrectName: incorrect,
	}, true
}

func isConnector(word string) bool {
	return strings.EqualFold(word, "not") || strings.EqualFold(word, "instead")
}

// Complete reports whether both names are known.
func (m Match) Complete() bool {
	return m.CorrectName != "" && m.IncorrectName != ""
}

// Record renders the correction as the raw text submitted to the chat
// endpoint.
func (m Match) Record() string {
	return fmt.Sprintf("CORRECTION: Change %s to %s", m.IncorrectName, m.CorrectName)
}

// ParseRecord is the inverse of Record: it recognises a submitted correction
// record and returns the names it carries.
func ParseRecord(text string) (Match, bool) {
	m := record.FindStringSubmatch(text)
	if m == nil {
		return Match{}, false
	}
	return Match{CorrectName: m[2], IncorrectName: m[1]}, true
}

package storage

import (
	"errors"

	"github.com/Shahin2512/HCP-Module/internal/model"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an HCP name is already taken.
var ErrDuplicate = errors.New("already exists")

// DateLayout is how interaction dates are stored and returned.
const DateLayout = "2006-01-02T15:04:05"

// InteractionPatch is a partial interaction update. Nil fields are left
// unchanged.
type InteractionPatch struct {
	HCPID              *int
	Type               *model.InteractionType
	Date               *string
	Time               *string
	Attendees          *string
	TopicsDiscussed    *string
	MaterialsShared    *string
	SamplesDistributed *string
	Sentiment          *model.Sentiment
	Outcomes           *string
	FollowUpActions    *string
	Summary            *string
	RawTextInput       *string
}

func (p InteractionPatch) apply(ix *model.Interaction) {
	setStr := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	if p.HCPID != nil {
		ix.HCPID = *p.HCPID
	}
	if p.Type != nil {
		ix.Type = *p.Type
	}
	if p.Sentiment != nil {
		ix.Sentiment = *p.Sentiment
	}
	setStr(&ix.Date, p.Date)
	setStr(&ix.Time, p.Time)
	setStr(&ix.Attendees, p.Attendees)
	setStr(&ix.TopicsDiscussed, p.TopicsDiscussed)
	setStr(&ix.MaterialsShared, p.MaterialsShared)
	setStr(&ix.SamplesDistributed, p.SamplesDistributed)
	setStr(&ix.Outcomes, p.Outcomes)
	setStr(&ix.FollowUpActions, p.FollowUpActions)
	setStr(&ix.Summary, p.Summary)
	setStr(&ix.RawTextInput, p.RawTextInput)
}

package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Shahin2512/HCP-Module/internal/draft"
	"github.com/Shahin2512/HCP-Module/internal/model"
	"github.com/Shahin2512/HCP-Module/internal/storage"
)

func handleListHCPs(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		skip, limit, ok := page(w, r)
		if !ok {
			return
		}
		hcps, err := deps.Store.ListHCPs(r.Context(), skip, limit)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "listing hcps: %v", err)
			return
		}
		writeJSON(w, http.StatusOK, hcps)
	}
}

func handleCreateHCP(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in model.NewHCP
		if !decodeBody(w, r, &in) {
			return
		}
		in.Name = strings.TrimSpace(in.Name)
		if in.Name == "" {
			httpError(w, http.StatusUnprocessableEntity, "name is required")
			return
		}

		h, err := deps.Store.CreateHCP(r.Context(), in)
		if errors.Is(err, storage.ErrDuplicate) {
			httpError(w, http.StatusBadRequest, "HCP with this name already registered")
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "creating hcp: %v", err)
			return
		}
		deps.logger().Info("hcp created", "hcp_id", h.ID, "hcp_name", h.Name)
		writeJSON(w, http.StatusOK, h)
	}
}

func handleGetHCP(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		h, err := deps.Store.GetHCP(r.Context(), id)
		if errors.Is(err, storage.ErrNotFound) {
			httpError(w, http.StatusNotFound, "HCP not found")
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "getting hcp: %v", err)
			return
		}
		writeJSON(w, http.StatusOK, h)
	}
}

func handleCreateInteraction(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in model.InteractionInput
		if !decodeBody(w, r, &in) {
			return
		}
		if in.HCPID <= 0 {
			httpError(w, http.StatusUnprocessableEntity, "hcp_id is required")
			return
		}

		ix, err := interactionFromInput(in, deps.now())
		if err != nil {
			httpError(w, http.StatusUnprocessableEntity, "%v", err)
			return
		}

		created, err := deps.Store.CreateInteraction(r.Context(), ix)
		if errors.Is(err, storage.ErrNotFound) {
			httpError(w, http.StatusNotFound, "HCP not found")
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "creating interaction: %v", err)
			return
		}
		deps.logger().Info("interaction logged", "interaction_id", created.ID, "hcp_id", created.HCPID, "source", "form")
		writeJSON(w, http.StatusOK, created)
	}
}

func handleListInteractions(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		skip, limit, ok := page(w, r)
		if !ok {
			return
		}
		list, err := deps.Store.ListInteractions(r.Context(), skip, limit)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "listing interactions: %v", err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func handleGetInteraction(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		ix, err := deps.Store.GetInteraction(r.Context(), id)
		if errors.Is(err, storage.ErrNotFound) {
			httpError(w, http.StatusNotFound, "Interaction not found")
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "getting interaction: %v", err)
			return
		}
		writeJSON(w, http.StatusOK, ix)
	}
}

// interactionUpdate is the PUT body. Absent fields are left unchanged.
type interactionUpdate struct {
	HCPID              *int                   `json:"hcp_id"`
	Type               *model.InteractionType `json:"interaction_type"`
	Date               *string                `json:"interaction_date"`
	Time               *string                `json:"interaction_time"`
	Attendees          *string                `json:"attendees"`
	TopicsDiscussed    *string                `json:"topics_discussed"`
	MaterialsShared    *string                `json:"materials_shared"`
	SamplesDistributed *string                `json:"samples_distributed"`
	Sentiment          *model.Sentiment       `json:"hcp_sentiment"`
	Outcomes           *string                `json:"outcomes"`
	FollowUpActions    *string                `json:"follow_up_actions"`
	Summary            *string                `json:"summary"`
	RawTextInput       *string                `json:"raw_text_input"`
}

func (u interactionUpdate) patch() (storage.InteractionPatch, error) {
	p := storage.InteractionPatch{
		HCPID:              u.HCPID,
		Type:               u.Type,
		Attendees:          u.Attendees,
		TopicsDiscussed:    u.TopicsDiscussed,
		MaterialsShared:    u.MaterialsShared,
		SamplesDistributed: u.SamplesDistributed,
		Sentiment:          u.Sentiment,
		Outcomes:           u.Outcomes,
		FollowUpActions:    u.FollowUpActions,
		Summary:            u.Summary,
		RawTextInput:       u.RawTextInput,
	}
	if u.Type != nil && !u.Type.Valid() {
		return p, errors.New("interaction_type must be one of Meeting, Call, Email, Presentation")
	}
	if u.Sentiment != nil && !u.Sentiment.Valid() {
		return p, errors.New("hcp_sentiment must be one of Positive, Neutral, Negative")
	}
	if u.Date != nil {
		d, err := storedDate(*u.Date, time.Time{})
		if err != nil {
			return p, err
		}
		p.Date = &d
	}
	if u.Time != nil {
		t, err := storedTime(*u.Time, time.Time{})
		if err != nil {
			return p, err
		}
		p.Time = &t
	}
	return p, nil
}

func handleUpdateInteraction(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		var u interactionUpdate
		if !decodeBody(w, r, &u) {
			return
		}
		p, err := u.patch()
		if err != nil {
			httpError(w, http.StatusUnprocessableEntity, "%v", err)
			return
		}

		ix, err := deps.Store.UpdateInteraction(r.Context(), id, p)
		if errors.Is(err, storage.ErrNotFound) {
			if u.HCPID != nil {
				if _, gerr := deps.Store.GetInteraction(r.Context(), id); gerr == nil {
					httpError(w, http.StatusNotFound, "HCP not found")
					return
				}
			}
			httpError(w, http.StatusNotFound, "Interaction not found")
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "updating interaction: %v", err)
			return
		}
		writeJSON(w, http.StatusOK, ix)
	}
}

// interactionFromInput validates a form payload and fills the defaults the
// store applies: Meeting, Neutral, and today's date and time.
func interactionFromInput(in model.InteractionInput, now time.Time) (model.Interaction, error) {
	if in.Type != "" && !in.Type.Valid() {
		return model.Interaction{}, errors.New("interaction_type must be one of Meeting, Call, Email, Presentation")
	}
	if in.Sentiment != "" && !in.Sentiment.Valid() {
		return model.Interaction{}, errors.New("hcp_sentiment must be one of Positive, Neutral, Negative")
	}
	date, err := storedDate(in.Date, now)
	if err != nil {
		return model.Interaction{}, err
	}
	tm, err := storedTime(in.Time, now)
	if err != nil {
		return model.Interaction{}, err
	}
	return model.Interaction{
		HCPID:              in.HCPID,
		Type:               in.Type,
		Date:               date,
		Time:               tm,
		Attendees:          in.Attendees,
		TopicsDiscussed:    in.TopicsDiscussed,
		MaterialsShared:    in.MaterialsShared,
		SamplesDistributed: in.SamplesDistributed,
		Sentiment:          in.Sentiment,
		Outcomes:           in.Outcomes,
		FollowUpActions:    in.FollowUpActions,
	}, nil
}

// storedDate converts a wire date to storage.DateLayout. Empty means now,
// or an error when now is zero.
func storedDate(s string, now time.Time) (string, error) {
	if strings.TrimSpace(s) == "" {
		if now.IsZero() {
			return "", errors.New("interaction_date must not be empty")
		}
		s = now.Format(time.DateOnly)
	}
	d, err := time.Parse(time.DateOnly, draft.NormalizeDate(s))
	if err != nil {
		return "", errors.New("interaction_date must be a date (YYYY-MM-DD) or datetime")
	}
	return d.Format(storage.DateLayout), nil
}

// storedTime converts a wire time to HH:MM. Empty means now, or an error
// when now is zero.
func storedTime(s string, now time.Time) (string, error) {
	if strings.TrimSpace(s) == "" {
		if now.IsZero() {
			return "", errors.New("interaction_time must not be empty")
		}
		return now.Format("15:04"), nil
	}
	t := draft.NormalizeTime(s)
	if t == "" {
		return "", errors.New("interaction_time must be HH:MM")
	}
	return t, nil
}

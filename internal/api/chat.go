package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Shahin2512/HCP-Module/internal/correction"
	"github.com/Shahin2512/HCP-Module/internal/extract"
	"github.com/Shahin2512/HCP-Module/internal/model"
	"github.com/Shahin2512/HCP-Module/internal/storage"
)

// chatReply is the chat endpoint body. Business failures, such as an
// unknown HCP, are reported with Status "error" and a 200 response so the
// client shows Response to the user.
type chatReply struct {
	Status      string             `json:"status"`
	Response    string             `json:"response"`
	Interaction *model.Interaction `json:"interaction_object,omitempty"`
}

func chatError(format string, args ...any) chatReply {
	return chatReply{Status: "error", Response: fmt.Sprintf(format, args...)}
}

func handleChat(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in model.ChatInput
		if !decodeBody(w, r, &in) {
			return
		}
		if strings.TrimSpace(in.RawText) == "" {
			httpError(w, http.StatusUnprocessableEntity, "raw_text_input is required")
			return
		}

		reply, err := processChat(r.Context(), deps, in)
		if err != nil {
			deps.logger().Error("chat processing failed", "error", err)
			httpError(w, http.StatusInternalServerError, "chat processing error: %v", err)
			return
		}
		writeJSON(w, http.StatusOK, reply)
	}
}

// processChat turns chat text into a stored interaction. A correction
// record reassigns the incorrect HCP's most recent interaction by logging a
// copy of it for the correct HCP; anything else is logged as a new
// interaction with fields pulled from the text.
func processChat(ctx context.Context, deps AppDeps, in model.ChatInput) (chatReply, error) {
	if m, ok := correction.ParseRecord(in.RawText); ok {
		return processCorrection(ctx, deps, m, in.RawText)
	}

	name := strings.TrimSpace(in.HCPName)
	if name == "" {
		name, _ = extract.HCPName(in.RawText)
	}
	if name == "" {
		return chatError("Could not identify HCP name from your input. Please specify the HCP (e.g., 'Dr. John Doe')."), nil
	}

	hcp, err := deps.Store.GetHCPByName(ctx, name)
	if errors.Is(err, storage.ErrNotFound) {
		return chatError("HCP '%s' not found", name), nil
	}
	if err != nil {
		return chatReply{}, err
	}

	now := deps.now()
	date, _ := storedDate("", now)
	fields := extract.Details(in.RawText).Merge(in)
	ix, err := deps.Store.CreateInteraction(ctx, model.Interaction{
		HCPID:              hcp.ID,
		Type:               extract.Type(in.RawText),
		Date:               date,
		Time:               now.Format("15:04"),
		Attendees:          fields.Attendees,
		TopicsDiscussed:    fields.TopicsDiscussed,
		MaterialsShared:    fields.MaterialsShared,
		SamplesDistributed: fields.SamplesDistributed,
		Sentiment:          extract.Sentiment(in.RawText),
		Outcomes:           fields.Outcomes,
		FollowUpActions:    fields.FollowUpActions,
		Summary:            extract.Summary(in.RawText),
		RawTextInput:       in.RawText,
	})
	if err != nil {
		return chatReply{}, fmt.Errorf("logging chat interaction: %w", err)
	}

	deps.logger().Info("interaction logged", "interaction_id", ix.ID, "hcp_id", hcp.ID, "hcp_name", hcp.Name, "source", "chat")
	return chatReply{Status: "success", Response: "Interaction logged for " + hcp.Name, Interaction: &ix}, nil
}

func processCorrection(ctx context.Context, deps AppDeps, m correction.Match, raw string) (chatReply, error) {
	from, err := deps.Store.GetHCPByName(ctx, m.IncorrectName)
	if errors.Is(err, storage.ErrNotFound) {
		return chatError("HCP '%s' not found", m.IncorrectName), nil
	}
	if err != nil {
		return chatReply{}, err
	}
	to, err := deps.Store.GetHCPByName(ctx, m.CorrectName)
	if errors.Is(err, storage.ErrNotFound) {
		return chatError("HCP '%s' not found. Please create it first.", m.CorrectName), nil
	}
	if err != nil {
		return chatReply{}, err
	}

	prev, err := deps.Store.MostRecentInteraction(ctx, from.ID)
	if errors.Is(err, storage.ErrNotFound) {
		return chatError("No interactions found for %s", from.Name), nil
	}
	if err != nil {
		return chatReply{}, err
	}

	next := prev
	next.ID = 0
	next.HCPID = to.ID
	next.HCPName = ""
	next.Summary = fmt.Sprintf("Corrected from %s (interaction %d)", from.Name, prev.ID)
	next.RawTextInput = raw

	ix, err := deps.Store.CreateInteraction(ctx, next)
	if err != nil {
		return chatReply{}, fmt.Errorf("logging corrected interaction: %w", err)
	}

	deps.logger().Info("interaction corrected", "from_interaction_id", prev.ID, "interaction_id", ix.ID, "from", from.Name, "to", to.Name)
	return chatReply{
		Status:      "success",
		Response:    fmt.Sprintf("Interaction reassigned from %s to %s", from.Name, to.Name),
		Interaction: &ix,
	}, nil
}

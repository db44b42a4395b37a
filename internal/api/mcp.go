package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/Shahin2512/HCP-Module/internal/model"
	"github.com/Shahin2512/HCP-Module/internal/storage"
)

// NewMCPServer exposes the record store to agents as MCP tools. Agents can
// list, create and look up HCPs, log and edit interactions, and fetch an
// HCP's most recent interaction.
func NewMCPServer(deps AppDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"hcpcrm",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("hcpcrm: healthcare-provider roster and interaction log."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("list_hcps",
			mcp.WithDescription("List known healthcare providers (HCPs)."),
			mcp.WithNumber("limit", mcp.Description("Maximum number of HCPs (default 100)")),
		),
		mcpListHCPs(deps),
	)

	s.AddTool(
		mcp.NewTool("create_hcp",
			mcp.WithDescription("Create a healthcare provider. Names are unique."),
			mcp.WithString("name", mcp.Description("Full name, e.g. Dr. Jane Doe"), mcp.Required()),
			mcp.WithString("specialty", mcp.Description("Medical specialty")),
			mcp.WithString("contact_info", mcp.Description("Email or phone")),
		),
		mcpCreateHCP(deps),
	)

	s.AddTool(
		mcp.NewTool("log_interaction",
			mcp.WithDescription("Log an interaction with an existing HCP, looked up by exact name."),
			mcp.WithString("hcp_name", mcp.Description("HCP name as stored"), mcp.Required()),
			mcp.WithString("interaction_type", mcp.Description("Meeting, Call, Email or Presentation (default Meeting)")),
			mcp.WithString("interaction_date", mcp.Description("YYYY-MM-DD (default today)")),
			mcp.WithString("interaction_time", mcp.Description("HH:MM (default now)")),
			mcp.WithString("attendees", mcp.Description("Who attended")),
			mcp.WithString("topics_discussed", mcp.Description("Topics discussed")),
			mcp.WithString("materials_shared", mcp.Description("Materials shared")),
			mcp.WithString("samples_distributed", mcp.Description("Samples distributed")),
			mcp.WithString("hcp_sentiment", mcp.Description("Positive, Neutral or Negative (default Neutral)")),
			mcp.WithString("outcomes", mcp.Description("Outcomes or agreements")),
			mcp.WithString("follow_up_actions", mcp.Description("Follow-up actions")),
		),
		mcpLogInteraction(deps),
	)

	s.AddTool(
		mcp.NewTool("recent_interaction",
			mcp.WithDescription("Get the most recent interaction logged for an HCP."),
			mcp.WithString("hcp_name", mcp.Description("HCP name as stored"), mcp.Required()),
		),
		mcpRecentInteraction(deps),
	)

	s.AddTool(
		mcp.NewTool("get_hcp_by_name",
			mcp.WithDescription("Get an HCP's details, including its ID, by exact name."),
			mcp.WithString("name", mcp.Description("HCP name as stored"), mcp.Required()),
		),
		mcpGetHCPByName(deps),
	)

	s.AddTool(
		mcp.NewTool("edit_interaction",
			mcp.WithDescription("Edit a logged interaction. Only the fields given are changed; pass hcp_id to move it to another HCP."),
			mcp.WithNumber("interaction_id", mcp.Description("ID of the interaction to edit"), mcp.Required()),
			mcp.WithNumber("hcp_id", mcp.Description("ID of the HCP to link the interaction to")),
			mcp.WithString("interaction_type", mcp.Description("Meeting, Call, Email or Presentation")),
			mcp.WithString("interaction_date", mcp.Description("YYYY-MM-DD")),
			mcp.WithString("interaction_time", mcp.Description("HH:MM")),
			mcp.WithString("attendees", mcp.Description("Who attended")),
			mcp.WithString("topics_discussed", mcp.Description("Topics discussed")),
			mcp.WithString("materials_shared", mcp.Description("Materials shared")),
			mcp.WithString("samples_distributed", mcp.Description("Samples distributed")),
			mcp.WithString("hcp_sentiment", mcp.Description("Positive, Neutral or Negative")),
			mcp.WithString("outcomes", mcp.Description("Outcomes or agreements")),
			mcp.WithString("follow_up_actions", mcp.Description("Follow-up actions")),
			mcp.WithString("summary", mcp.Description("Concise summary")),
		),
		mcpEditInteraction(deps),
	)

	s.AddResource(
		mcp.NewResource(
			"crm://hcps",
			"HCP Roster",
			mcp.WithResourceDescription("All known HCPs as JSON"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceRoster(deps),
	)

	return s
}

func mcpListHCPs(deps AppDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		limit := req.GetInt("limit", defaultPageLimit)
		if limit <= 0 {
			limit = defaultPageLimit
		}
		hcps, err := deps.Store.ListHCPs(ctx, 0, limit)
		if err != nil {
			return mcpError(fmt.Sprintf("listing hcps failed: %v", err)), nil
		}
		return mcpJSON(hcps)
	}
}

func mcpCreateHCP(deps AppDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := req.RequireString("name")
		if err != nil || name == "" {
			return mcpError("name is required"), nil
		}

		h, err := deps.Store.CreateHCP(ctx, model.NewHCP{
			Name:      name,
			Specialty: req.GetString("specialty", ""),
			Contact:   req.GetString("contact_info", ""),
		})
		if errors.Is(err, storage.ErrDuplicate) {
			return mcpError(fmt.Sprintf("HCP '%s' already exists", name)), nil
		}
		if err != nil {
			return mcpError(fmt.Sprintf("creating hcp failed: %v", err)), nil
		}
		return mcpJSON(h)
	}
}

func mcpLogInteraction(deps AppDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := req.RequireString("hcp_name")
		if err != nil || name == "" {
			return mcpError("hcp_name is required"), nil
		}

		hcp, err := deps.Store.GetHCPByName(ctx, name)
		if errors.Is(err, storage.ErrNotFound) {
			return mcpError(fmt.Sprintf("HCP '%s' not found", name)), nil
		}
		if err != nil {
			return mcpError(fmt.Sprintf("looking up hcp failed: %v", err)), nil
		}

		ix, err := interactionFromInput(model.InteractionInput{
			HCPID:              hcp.ID,
			Type:               model.InteractionType(req.GetString("interaction_type", "")),
			Date:               req.GetString("interaction_date", ""),
			Time:               req.GetString("interaction_time", ""),
			Attendees:          req.GetString("attendees", ""),
			TopicsDiscussed:    req.GetString("topics_discussed", ""),
			MaterialsShared:    req.GetString("materials_shared", ""),
			SamplesDistributed: req.GetString("samples_distributed", ""),
			Sentiment:          model.Sentiment(req.GetString("hcp_sentiment", "")),
			Outcomes:           req.GetString("outcomes", ""),
			FollowUpActions:    req.GetString("follow_up_actions", ""),
		}, deps.now())
		if err != nil {
			return mcpError(err.Error()), nil
		}

		created, err := deps.Store.CreateInteraction(ctx, ix)
		if err != nil {
			return mcpError(fmt.Sprintf("logging interaction failed: %v", err)), nil
		}
		deps.logger().Info("interaction logged", "interaction_id", created.ID, "hcp_id", hcp.ID, "source", "mcp")
		return mcpJSON(created)
	}
}

func mcpRecentInteraction(deps AppDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := req.RequireString("hcp_name")
		if err != nil || name == "" {
			return mcpError("hcp_name is required"), nil
		}

		hcp, err := deps.Store.GetHCPByName(ctx, name)
		if errors.Is(err, storage.ErrNotFound) {
			return mcpError(fmt.Sprintf("HCP '%s' not found", name)), nil
		}
		if err != nil {
			return mcpError(fmt.Sprintf("looking up hcp failed: %v", err)), nil
		}

		ix, err := deps.Store.MostRecentInteraction(ctx, hcp.ID)
		if errors.Is(err, storage.ErrNotFound) {
			return mcpText(fmt.Sprintf("No interactions found for %s", hcp.Name)), nil
		}
		if err != nil {
			return mcpError(fmt.Sprintf("fetching interaction failed: %v", err)), nil
		}
		return mcpJSON(ix)
	}
}

func mcpGetHCPByName(deps AppDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := req.RequireString("name")
		if err != nil || name == "" {
			return mcpError("name is required"), nil
		}
		hcp, err := deps.Store.GetHCPByName(ctx, name)
		if errors.Is(err, storage.ErrNotFound) {
			return mcpError(fmt.Sprintf("HCP '%s' not found", name)), nil
		}
		if err != nil {
			return mcpError(fmt.Sprintf("looking up hcp failed: %v", err)), nil
		}
		return mcpJSON(hcp)
	}
}

func mcpEditInteraction(deps AppDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireInt("interaction_id")
		if err != nil || id <= 0 {
			return mcpError("interaction_id is required"), nil
		}

		args := req.GetArguments()
		str := func(key string) *string {
			if v, ok := args[key].(string); ok {
				return &v
			}
			return nil
		}
		u := interactionUpdate{
			Date:               str("interaction_date"),
			Time:               str("interaction_time"),
			Attendees:          str("attendees"),
			TopicsDiscussed:    str("topics_discussed"),
			MaterialsShared:    str("materials_shared"),
			SamplesDistributed: str("samples_distributed"),
			Outcomes:           str("outcomes"),
			FollowUpActions:    str("follow_up_actions"),
			Summary:            str("summary"),
		}
		if v := str("interaction_type"); v != nil {
			t := model.InteractionType(*v)
			u.Type = &t
		}
		if v := str("hcp_sentiment"); v != nil {
			sentiment := model.Sentiment(*v)
			u.Sentiment = &sentiment
		}
		if _, ok := args["hcp_id"]; ok {
			hcpID, err := req.RequireInt("hcp_id")
			if err != nil {
				return mcpError(err.Error()), nil
			}
			u.HCPID = &hcpID
		}

		p, err := u.patch()
		if err != nil {
			return mcpError(err.Error()), nil
		}
		ix, err := deps.Store.UpdateInteraction(ctx, id, p)
		if errors.Is(err, storage.ErrNotFound) {
			if u.HCPID != nil {
				if _, gerr := deps.Store.GetInteraction(ctx, id); gerr == nil {
					return mcpError(fmt.Sprintf("HCP %d not found", *u.HCPID)), nil
				}
			}
			return mcpError(fmt.Sprintf("Interaction %d not found", id)), nil
		}
		if err != nil {
			return mcpError(fmt.Sprintf("editing interaction failed: %v", err)), nil
		}
		deps.logger().Info("interaction edited", "interaction_id", ix.ID, "hcp_id", ix.HCPID, "source", "mcp")
		return mcpJSON(ix)
	}
}

func mcpResourceRoster(deps AppDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		hcps, err := deps.Store.ListHCPs(ctx, 0, 0)
		if err != nil {
			return nil, fmt.Errorf("listing hcps: %w", err)
		}
		b, err := json.Marshal(hcps)
		if err != nil {
			return nil, fmt.Errorf("marshalling hcps: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpJSON(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return mcpError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcpText(string(b)), nil
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}

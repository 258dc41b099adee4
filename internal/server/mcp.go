package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/amishk599/skillpulse/internal/advisor"
	"github.com/amishk599/skillpulse/internal/model"
	"github.com/amishk599/skillpulse/internal/summary"
	"github.com/amishk599/skillpulse/internal/trend"
)

const maxRoleLength = 100

// NewMCPServer creates an MCP server with the skillpulse tools registered.
func NewMCPServer(svc Advisor, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"skillpulse",
		version,
		server.WithToolCapabilities(true),
		server.WithInstructions("skillpulse: career health scores, skill gap analysis, demand trends and career summaries."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("health_scores",
			mcp.WithDescription("Compute 0-100 career health scores for a stored candidate."),
			mcp.WithNumber("candidate_id", mcp.Description("Candidate id"), mcp.Required()),
		),
		mcpHealthScores(svc),
	)

	s.AddTool(
		mcp.NewTool("gap_analysis",
			mcp.WithDescription("Compare a list of skills against a role's requirement template."),
			mcp.WithString("skills", mcp.Description("Comma-separated skill names"), mcp.Required()),
			mcp.WithString("role", mcp.Description("Role name, e.g. Backend Developer"), mcp.Required()),
		),
		mcpGapAnalysis(svc),
	)

	s.AddTool(
		mcp.NewTool("skill_trend",
			mcp.WithDescription("Monthly market demand series for one skill. Estimated points are flagged."),
			mcp.WithString("skill", mcp.Description("Skill name"), mcp.Required()),
			mcp.WithNumber("months", mcp.Description("Series length in months, 1-24 (default 12)")),
		),
		mcpSkillTrend(svc),
	)

	s.AddTool(
		mcp.NewTool("career_summary",
			mcp.WithDescription("Natural-language career summary for a stored candidate."),
			mcp.WithNumber("candidate_id", mcp.Description("Candidate id"), mcp.Required()),
			mcp.WithString("target_role", mcp.Description("Optional target role")),
			mcp.WithString("context", mcp.Description("career_growth, job_search or upskilling (default career_growth)")),
			mcp.WithBoolean("regenerate", mcp.Description("Bypass the summary cache")),
		),
		mcpCareerSummary(svc),
	)

	s.AddTool(
		mcp.NewTool("list_roles",
			mcp.WithDescription("List the role names available for gap analysis."),
		),
		mcpListRoles(svc),
	)

	s.AddTool(
		mcp.NewTool("recommend_roles",
			mcp.WithDescription("Rank catalog roles by how well a stored candidate's skills cover them."),
			mcp.WithNumber("candidate_id", mcp.Description("Candidate id"), mcp.Required()),
			mcp.WithNumber("limit", mcp.Description("Number of roles, 1-10 (default 3)")),
		),
		mcpRecommendRoles(svc),
	)

	s.AddTool(
		mcp.NewTool("category_trends",
			mcp.WithDescription("Demand change per market category over stored history."),
			mcp.WithNumber("months", mcp.Description("Window in months, 1-24 (default 12)")),
		),
		mcpCategoryTrends(svc),
	)

	s.AddTool(
		mcp.NewTool("learning_estimate",
			mcp.WithDescription("Estimate the study time to raise a skill between proficiency levels."),
			mcp.WithString("skill", mcp.Description("Skill name"), mcp.Required()),
			mcp.WithNumber("current_level", mcp.Description("Current proficiency 0-5 (default 0)")),
			mcp.WithNumber("target_level", mcp.Description("Target proficiency 1-5 (default 3)")),
		),
		mcpLearningEstimate(svc),
	)

	s.AddTool(
		mcp.NewTool("skill_prerequisites",
			mcp.WithDescription("Prerequisites, difficulty and study tips for a skill."),
			mcp.WithString("skill", mcp.Description("Skill name"), mcp.Required()),
		),
		mcpPrerequisites(svc),
	)

	return s
}

// ServeStdio runs the MCP server over stdin/stdout until ctx is cancelled.
func ServeStdio(ctx context.Context, s *server.MCPServer, in io.Reader, out io.Writer, logger *slog.Logger) error {
	logger.Info("MCP server started (stdio transport)")
	if err := server.NewStdioServer(s).Listen(ctx, in, out); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("mcp stdio server: %w", err)
	}
	return nil
}

func mcpHealthScores(svc Advisor) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := requireID(req)
		if err != nil {
			return mcpError(err.Error()), nil
		}
		scores, err := svc.ComputeHealthScores(ctx, id)
		if err != nil {
			return mcpError(fmt.Sprintf("health scores failed: %v", err)), nil
		}
		return mcpJSON(scores), nil
	}
}

func mcpGapAnalysis(svc Advisor) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		raw, err := req.RequireString("skills")
		if err != nil {
			return mcpError("skills is required"), nil
		}
		role, err := req.RequireString("role")
		if err != nil {
			return mcpError("role is required"), nil
		}
		skills := trend.SplitSkills(raw)
		if len(skills) == 0 {
			return mcpError("skills must list at least one skill"), nil
		}
		res, err := svc.ComputeGapAnalysis(ctx, skills, role)
		if err != nil {
			return mcpError(fmt.Sprintf("gap analysis failed: %v", err)), nil
		}
		return mcpJSON(res), nil
	}
}

func mcpSkillTrend(svc Advisor) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		skill, err := req.RequireString("skill")
		if err != nil {
			return mcpError("skill is required"), nil
		}
		months := req.GetInt("months", defaultMonths)
		series, err := svc.GetTrend(ctx, skill, months)
		if err != nil {
			return mcpError(fmt.Sprintf("trend failed: %v", err)), nil
		}
		return mcpJSON(series), nil
	}
}

func mcpCareerSummary(svc Advisor) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := requireID(req)
		if err != nil {
			return mcpError(err.Error()), nil
		}
		sctx, err := model.ParseSummaryContext(req.GetString("context", ""))
		if err != nil {
			return mcpError(err.Error()), nil
		}
		raw := req.GetString("target_role", "")
		role := strings.TrimSpace(raw)
		switch {
		case raw != "" && role == "":
			return mcpError("target_role cannot be empty"), nil
		case utf8.RuneCountInString(role) > maxRoleLength:
			return mcpError(fmt.Sprintf("target_role must be at most %d characters", maxRoleLength)), nil
		}
		res, err := svc.GenerateSummary(ctx, summary.Request{
			CandidateID:     id,
			TargetRole:      role,
			Context:         sctx,
			ForceRegenerate: req.GetBool("regenerate", false),
		})
		if err != nil {
			return mcpError(fmt.Sprintf("summary failed: %v", err)), nil
		}
		return mcpJSON(res), nil
	}
}

func mcpListRoles(svc Advisor) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		roles, err := svc.Roles(ctx)
		if err != nil {
			return mcpError(fmt.Sprintf("listing roles failed: %v", err)), nil
		}
		return mcpJSON(roles), nil
	}
}

func mcpRecommendRoles(svc Advisor) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := requireID(req)
		if err != nil {
			return mcpError(err.Error()), nil
		}
		res, err := svc.RecommendRoles(ctx, id, req.GetInt("limit", advisor.DefaultRecommendations))
		if err != nil {
			return mcpError(fmt.Sprintf("recommendations failed: %v", err)), nil
		}
		return mcpJSON(res), nil
	}
}

func mcpCategoryTrends(svc Advisor) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		res, err := svc.CategoryTrends(ctx, req.GetInt("months", defaultMonths))
		if err != nil {
			return mcpError(fmt.Sprintf("category trends failed: %v", err)), nil
		}
		return mcpJSON(res), nil
	}
}

func mcpLearningEstimate(svc Advisor) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		skill, err := req.RequireString("skill")
		if err != nil {
			return mcpError("skill is required"), nil
		}
		res, err := svc.EstimateLearning(ctx, skill, req.GetInt("current_level", 0), req.GetInt("target_level", defaultTargetLevel))
		if err != nil {
			return mcpError(fmt.Sprintf("learning estimate failed: %v", err)), nil
		}
		return mcpJSON(res), nil
	}
}

func mcpPrerequisites(svc Advisor) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		skill, err := req.RequireString("skill")
		if err != nil {
			return mcpError("skill is required"), nil
		}
		res, err := svc.Prerequisites(ctx, skill)
		if err != nil {
			return mcpError(fmt.Sprintf("prerequisites failed: %v", err)), nil
		}
		return mcpJSON(res), nil
	}
}

func requireID(req mcp.CallToolRequest) (int64, error) {
	v, err := req.RequireFloat("candidate_id")
	if err != nil {
		return 0, errors.New("candidate_id is required")
	}
	if v <= 0 || v != math.Trunc(v) {
		return 0, fmt.Errorf("candidate_id must be a positive integer, got %v", v)
	}
	return int64(v), nil
}

func mcpJSON(v any) *mcp.CallToolResult {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcpError(fmt.Sprintf("failed to marshal result: %v", err))
	}
	return mcpText(string(b))
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

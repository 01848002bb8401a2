package mcp

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/Lewis310/lewishealthapplication/internal/config"
	"github.com/Lewis310/lewishealthapplication/internal/errors"
	"github.com/Lewis310/lewishealthapplication/internal/logger"
	"github.com/Lewis310/lewishealthapplication/internal/observability"
	"github.com/Lewis310/lewishealthapplication/internal/ops"
	"github.com/Lewis310/lewishealthapplication/internal/summary"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	db  *sql.DB
	cfg *config.Config
	log *logger.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *sql.DB, cfg *config.Config, log *logger.Logger) *Handlers {
	if log == nil {
		log = logger.Nop()
	}
	return &Handlers{db: db, cfg: cfg, log: log}
}

// Request types for each tool

// GenerateRequest represents the arguments for report_generate.
type GenerateRequest struct {
	ActivityCSV     string   `json:"activity_csv"`
	NutritionCSV    *string  `json:"nutrition_csv,omitempty"`
	WeightKg        *float64 `json:"weight_kg,omitempty"`
	ProteinPerKg    *float64 `json:"protein_per_kg,omitempty"`
	DuplicateDates  *string  `json:"duplicate_dates,omitempty"`
	IncludeCSV      *bool    `json:"include_csv,omitempty"`
	IncludeMarkdown bool     `json:"include_markdown,omitempty"`
}

// FetchRequest represents the arguments for report_fetch.
type FetchRequest struct {
	ID              string `json:"id"`
	IncludeCSV      bool   `json:"include_csv,omitempty"`
	IncludeMarkdown *bool  `json:"include_markdown,omitempty"`
}

// ListRequest represents the arguments for report_list.
type ListRequest struct {
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

// PurgeRequest represents the arguments for report_purge.
type PurgeRequest struct {
	Keep *int `json:"keep,omitempty"`
}

// GenerateResult is the report_generate response.
type GenerateResult struct {
	ID        string         `json:"id"`
	Source    string         `json:"source"`
	Rows      int            `json:"rows"`
	Summary   summary.Weekly `json:"summary"`
	Unmatched []string       `json:"unmatched_nutrition_dates,omitempty"`
	Evicted   int            `json:"evicted,omitempty"`
	CSV       string         `json:"csv,omitempty"`
	Markdown  string         `json:"markdown,omitempty"`
}

// HandleGenerate runs the pipeline on inline CSV text and stores the report.
func (h *Handlers) HandleGenerate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[GenerateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if strings.TrimSpace(input.ActivityCSV) == "" {
		return errorResult(errors.NewInvalidRequest("activity_csv is required")), nil
	}

	genInput := ops.GenerateInput{
		Activity:     strings.NewReader(input.ActivityCSV),
		ActivityName: "activity_csv",
		Overrides: ops.Overrides{
			WeightKg:       input.WeightKg,
			ProteinPerKg:   input.ProteinPerKg,
			DuplicateDates: input.DuplicateDates,
		},
		Surface: observability.SurfaceMCP,
	}
	if input.NutritionCSV != nil && strings.TrimSpace(*input.NutritionCSV) != "" {
		genInput.Nutrition = strings.NewReader(*input.NutritionCSV)
		genInput.NutritionName = "nutrition_csv"
	}

	out, err := ops.Generate(ctx, h.db, h.cfg, genInput)
	if err != nil {
		h.log.Warn("report failed", "surface", observability.SurfaceMCP, "code", string(errors.As(err).Code))
		return errorResult(err), nil
	}
	h.log.Info("report generated", "surface", observability.SurfaceMCP, "id", out.ID, "rows", out.Report.Table.Len())

	view := out.Report.View()
	result := GenerateResult{
		ID:        out.ID,
		Source:    out.Report.Source,
		Rows:      out.Report.Table.Len(),
		Summary:   out.Report.Summary,
		Unmatched: view.Unmatched,
		Evicted:   out.Evicted,
	}
	if input.IncludeCSV == nil || *input.IncludeCSV {
		result.CSV = string(out.Report.CSV)
	}
	if input.IncludeMarkdown {
		result.Markdown = out.Report.Markdown()
	}

	return successResult(result)
}

// HandleFetch returns a stored report.
func (h *Handlers) HandleFetch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[FetchRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Fetch(h.db, ops.FetchInput{
		ID:              input.ID,
		IncludeCSV:      input.IncludeCSV,
		IncludeMarkdown: input.IncludeMarkdown,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleList lists stored reports.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.List(h.db, ops.ListInput{
		Limit:  input.Limit,
		Offset: input.Offset,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandlePurge deletes stored reports.
func (h *Handlers) HandlePurge(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[PurgeRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Purge(ctx, h.db, ops.PurgeInput{Keep: input.Keep})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// errorResult creates an MCP error result from an error. A wrapped
// ReportError keeps its code; the wrapping context is kept in the message.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	var rErr *errors.ReportError
	if stderrors.As(err, &rErr) {
		message := rErr.Message
		if err != error(rErr) {
			message = strings.TrimSuffix(err.Error(), rErr.Error()) + rErr.Message
		}
		errorObj := map[string]any{
			"code":    rErr.Code,
			"message": message,
			"status":  rErr.Status,
		}
		// Only include details for non-internal errors to avoid leaking
		// sensitive info like file paths or SQL errors
		if rErr.Code != errors.ErrInternal && rErr.Details != nil {
			errorObj["details"] = rErr.Details
		}
		if rErr.Code == errors.ErrInternal {
			errorObj["message"] = "an internal error occurred"
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}

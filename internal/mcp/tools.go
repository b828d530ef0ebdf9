package mcp

import (
	"context"
	"encoding/json"

	"github.com/claude/gradepoint/internal/gpa"
	"github.com/claude/gradepoint/internal/transcript"
	"github.com/mark3labs/mcp-go/mcp"
)

var toolParseTranscript = mcp.NewTool("parse_transcript",
	mcp.WithDescription("Parse raw transcript text (as extracted from a transcript PDF) into structured course records. Returns courses in document order plus parse warnings. Transfer-section courses carry grade TCR; in-progress courses have no grade."),
	mcp.WithString("text", mcp.Required(), mcp.Description("Raw transcript text, including the TRANSFER CREDIT / INSTITUTION CREDIT / COURSES IN PROGRESS section headers")),
)

var toolCalculateGPA = mcp.NewTool("calculate_gpa",
	mcp.WithDescription("Compute the cumulative GPA over a list of course records. Returns the GPA (null when no course is GPA-eligible), attempted units, quality points, and any unrecognized grade tokens."),
	mcp.WithString("courses", mcp.Required(), mcp.Description(`JSON array of course records: [{"subject":"CS","number":"110","title":"Intro","grade":"A","units":4,"source":"institution"}]`)),
)

func (h *handlers) parseTranscript(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res, err := transcript.Parse(text)
	if err != nil {
		return mcp.NewToolResultError("unable to parse transcript: " + err.Error()), nil
	}

	data, err := json.Marshal(res)
	if err != nil {
		return nil, err
	}
	h.log.Info("mcp parse", "courses", len(res.Courses), "warnings", len(res.Warnings))
	return mcp.NewToolResultText(string(data)), nil
}

func (h *handlers) calculateGPA(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("courses")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var courses []transcript.Course
	if err := json.Unmarshal([]byte(raw), &courses); err != nil {
		return mcp.NewToolResultError("invalid courses JSON: " + err.Error()), nil
	}

	result := gpa.Calculate(courses)
	data, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}

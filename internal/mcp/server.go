// Package mcp exposes the transcript parser and GPA calculator as MCP tools
// so assistants can work with transcript text directly. The tools call the
// pure core in-process; no HTTP server is involved.
package mcp

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"

	"github.com/claude/gradepoint/internal/grades"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("GradePoint", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("GradePoint transcript tools. Parse extracted transcript text into course records and compute a cumulative GPA. Transfer credit and in-progress courses never contribute to the GPA."),
	)

	h := &handlers{log: log}

	s.AddTools(
		server.ServerTool{Tool: toolParseTranscript, Handler: h.parseTranscript},
		server.ServerTool{Tool: toolCalculateGPA, Handler: h.calculateGPA},
	)

	s.AddResources(
		server.ServerResource{Resource: resGradeScale, Handler: h.gradeScale},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	log *slog.Logger
}

var resGradeScale = mcp.NewResource(
	"gradepoint://grade_scale",
	"Grade Scale",
	mcp.WithResourceDescription("The institutional grade-point scale and the set of non-GPA grade markers"),
	mcp.WithMIMEType("application/json"),
)

func (h *handlers) gradeScale(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	nonGPA := make([]string, 0, len(grades.NonGPA))
	for g := range grades.NonGPA {
		nonGPA = append(nonGPA, g)
	}
	sort.Strings(nonGPA)

	data, err := json.Marshal(map[string]any{
		"points":            grades.Points,
		"non_gpa":           nonGPA,
		"transfer_grade":    grades.TransferCredit,
		"in_progress_grade": grades.InProgress,
	})
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Solace journal tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/solace/internal/apperr"
	"github.com/starford/solace/internal/insight"
	"github.com/starford/solace/internal/journalservice"
	"github.com/starford/solace/internal/models"
)

const moodsURI = "solace://moods"

// Insight is the insight service exposed through the tools.
type Insight interface {
	SummarizeResult(ctx context.Context, content string) insight.Result
	RecommendResult(ctx context.Context, mood models.Mood) insight.Result
}

// Server wraps the MCP server with Solace tools.
type Server struct {
	mcp     *server.MCPServer
	insight Insight
	journal *journalservice.Service
}

// New creates a new MCP server with all Solace tools registered.
func New(ins Insight, js *journalservice.Service, version string) *Server {
	s := &Server{insight: ins, journal: js}

	s.mcp = server.NewMCPServer(
		"Solace",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("summarize_journal",
		mcp.WithDescription("Summarize journal text with a short supportive insight. Nothing is stored."),
		mcp.WithString("content", mcp.Required(), mcp.Description("Journal text to summarize")),
	), s.summarizeJournal)

	s.mcp.AddTool(mcp.NewTool("recommend_activity",
		mcp.WithDescription("Recommend one simple wellness activity for a mood label. "+
			"See get_mood_labels or the solace://moods resource for valid labels."),
		mcp.WithString("mood", mcp.Required(), mcp.Description("One of happy, neutral, sad, anxious, angry")),
	), s.recommendActivity)

	s.mcp.AddTool(mcp.NewTool("save_journal_entry",
		mcp.WithDescription("Store a journal entry and attach its summary. Returns the saved entry as JSON."),
		mcp.WithString("content", mcp.Required(), mcp.Description("Journal text")),
		mcp.WithString("mood", mcp.Description("Optional mood label recorded with the entry")),
	), s.saveJournalEntry)

	s.mcp.AddTool(mcp.NewTool("list_journal_entries",
		mcp.WithDescription("List journal entries, newest first."),
		mcp.WithNumber("limit", mcp.Description("Page size (default 20, max 100)")),
		mcp.WithNumber("offset", mcp.Description("Page offset")),
	), s.listJournalEntries)

	s.mcp.AddTool(mcp.NewTool("read_journal_entry",
		mcp.WithDescription("Read a single journal entry with its summary."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Entry ID")),
	), s.readJournalEntry)

	s.mcp.AddTool(mcp.NewTool("search_journal",
		mcp.WithDescription("Full-text search through journal content and summaries."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
		mcp.WithNumber("limit", mcp.Description("Max results")),
	), s.searchJournal)

	s.mcp.AddTool(mcp.NewTool("get_mood_trends",
		mcp.WithDescription("Per-day mood counts and scores (happy 5 to angry 1) for recent days, "+
			"with the overall direction: improving, declining, steady or insufficient_data."),
		mcp.WithNumber("days", mcp.Description("Window size in days (default 7, max 90)")),
	), s.getMoodTrends)

	s.mcp.AddTool(mcp.NewTool("get_mood_labels",
		mcp.WithDescription("Returns the accepted mood labels and how the journal tools use them."),
	), s.getMoodLabels)

	s.mcp.AddResource(
		mcp.NewResource(moodsURI, "Mood Labels",
			mcp.WithResourceDescription("The closed set of mood labels Solace accepts."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readMoodsResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(out))
}

func (s *Server) summarizeJournal(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res := s.insight.SummarizeResult(ctx, content)
	if errors.Is(res.Cause, apperr.ErrEmptyContent) {
		return mcp.NewToolResultError("content must not be blank"), nil
	}
	return mcp.NewToolResultText(res.Text), nil
}

func (s *Server) recommendActivity(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("mood")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	mood, err := models.ParseMood(raw)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(s.insight.RecommendResult(ctx, mood).Text), nil
}

func (s *Server) saveJournalEntry(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var mood models.Mood
	if raw := req.GetString("mood", ""); raw != "" {
		if mood, err = models.ParseMood(raw); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}

	entry, err := s.journal.Create(ctx, content, mood)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	summarized, err := s.journal.Summarize(ctx, entry.ID)
	if err != nil {
		// Stored but left pending; the next resume attaches the summary.
		return jsonResult(entry), nil
	}
	return jsonResult(summarized), nil
}

func (s *Server) listJournalEntries(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entries, total, err := s.journal.List(ctx, req.GetInt("limit", 0), req.GetInt("offset", 0))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if entries == nil {
		entries = []models.JournalEntry{}
	}
	return jsonResult(map[string]any{"entries": entries, "total": total}), nil
}

func (s *Server) readJournalEntry(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	entry, err := s.journal.Get(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(entry), nil
}

func (s *Server) searchJournal(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.journal.Search(ctx, query, req.GetInt("limit", 0))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(results) == 0 {
		return mcp.NewToolResultText("no entries found"), nil
	}
	return jsonResult(results), nil
}

func (s *Server) getMoodLabels(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(MoodGuide), nil
}

func (s *Server) readMoodsResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      moodsURI,
			MIMEType: "text/markdown",
			Text:     MoodGuide,
		},
	}, nil
}

func (s *Server) getMoodTrends(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	trend, err := s.journal.MoodTrend(ctx, req.GetInt("days", 0))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(trend), nil
}

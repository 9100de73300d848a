// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes SocialSync tools for LLM integration via stdio transport. An LLM
// client drives the greeting workflow end to end: look up an upcoming
// birthday, build the prompt, then store the drafts the user keeps.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/devsoland/socialsync/internal/contactservice"
	"github.com/devsoland/socialsync/internal/greeting"
)

// Server wraps the MCP server with SocialSync tools.
type Server struct {
	mcp *server.MCPServer
	svc *contactservice.Service
}

// New creates a new MCP server with all SocialSync tools registered.
func New(svc *contactservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"SocialSync",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_upcoming_birthdays",
		mcp.WithDescription("List events due within the next days, soonest first, with contact details."),
		mcp.WithNumber("days", mcp.Description("Window in days (default 30)")),
	), s.listUpcoming)

	s.mcp.AddTool(mcp.NewTool("get_contact",
		mcp.WithDescription("Read one contact with name, birth date, tags, and notes."),
		mcp.WithNumber("contact_id", mcp.Required(), mcp.Description("Contact id")),
	), s.getContact)

	s.mcp.AddTool(mcp.NewTool("build_greeting_prompt",
		mcp.WithDescription("Build the greeting generation prompt for an event. "+
			"Relationship keywords are preselected from the contact's tags. "+
			"Supported styles: "+strings.Join(greeting.Styles, ", ")+"."),
		mcp.WithNumber("event_id", mcp.Required(), mcp.Description("Event id")),
		mcp.WithString("style", mcp.Description("Greeting style (default informal)")),
	), s.buildGreetingPrompt)

	s.mcp.AddTool(mcp.NewTool("save_greetings",
		mcp.WithDescription("Replace the saved greeting drafts of an event. "+
			"Pass the greetings the user decided to keep, separated by blank lines."),
		mcp.WithNumber("event_id", mcp.Required(), mcp.Description("Event id")),
		mcp.WithString("greetings", mcp.Required(), mcp.Description("Greeting texts separated by blank lines")),
	), s.saveGreetings)

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

func (s *Server) listUpcoming(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	days := req.GetInt("days", 30)
	items, err := s.svc.Upcoming(ctx, days)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(items) == 0 {
		return mcp.NewToolResultText("no upcoming events"), nil
	}
	out, _ := json.MarshalIndent(items, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getContact(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("contact_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	contact, err := s.svc.GetContact(ctx, int64(id))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("contact %d: %v", id, err)), nil
	}
	out, _ := json.MarshalIndent(contact, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) buildGreetingPrompt(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("event_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	style := req.GetString("style", greeting.DefaultStyle())
	prompt, err := s.svc.GreetingPrompt(ctx, int64(id), style)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("event %d: %v", id, err)), nil
	}
	return mcp.NewToolResultText(prompt), nil
}

func (s *Server) saveGreetings(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("event_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	raw, err := req.RequireString("greetings")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var greetings []string
	for _, block := range strings.Split(raw, "\n\n") {
		if trimmed := strings.TrimSpace(block); trimmed != "" {
			greetings = append(greetings, trimmed)
		}
	}
	if len(greetings) == 0 {
		return mcp.NewToolResultError("no greeting text provided"), nil
	}

	if _, err := s.svc.SaveGreetings(ctx, int64(id), greetings); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("event %d: %v", id, err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("saved %d greeting(s) on event %d", len(greetings), id)), nil
}

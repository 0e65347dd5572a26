package mcp

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"
	"go.uber.org/zap"

	"github.com/felixgeelhaar/chamai/internal/infrastructure/wiring"
	"github.com/felixgeelhaar/chamai/pkg/application"
	"github.com/felixgeelhaar/chamai/pkg/domain"
	"github.com/felixgeelhaar/chamai/pkg/domain/response"
)

type Server struct {
	mcpServer *mcp.Server
	checklist *application.ChecklistService
	exports   *application.ExportService
	logger    *zap.Logger
}

var (
	Version     = "dev"
	BuildCommit = "unknown"
	BuildDate   = "unknown"
)

// mcpErr returns a user-friendly error for MCP clients.
func mcpErr(friendly string) error {
	return fmt.Errorf("%s", friendly)
}

// NewServer wires services for root and loads the checklist definition.
func NewServer(ctx context.Context, root string, logger *zap.Logger) (*Server, error) {
	services, err := wiring.BuildAppServices(root, logger)
	if services == nil {
		return nil, fmt.Errorf("build services: %w", err)
	}
	if err != nil {
		services.Logger.Warn("Using default config", zap.Error(err))
	}
	if _, err := services.Checklist.LoadDefinition(ctx); err != nil {
		return nil, err
	}
	return NewServerWithServices(services), nil
}

// NewServerWithServices registers the tools over already-wired services.
func NewServerWithServices(services *wiring.AppServices) *Server {
	info := mcp.ServerInfo{
		Name:    "chamai",
		Version: Version,
	}

	s := &Server{
		mcpServer: mcp.NewServer(info,
			mcp.WithTitle("ChAMAI MCP Server"),
			mcp.WithDescription("ChAMAI exposes a medical-AI reporting checklist, its responses and its score to MCP clients."),
			mcp.WithWebsiteURL("https://github.com/felixgeelhaar/chamai"),
			mcp.WithBuildInfo(BuildCommit, BuildDate),
			mcp.WithInstructions("Read the checklist, record author or reviewer answers per item, then read the summary or export CSV."),
		),
		checklist: services.Checklist,
		exports:   services.Export,
		logger:    services.Logger.Named("mcp"),
	}

	s.registerTools()
	s.registerSchemaResource()
	return s
}

type SetResponseArgs struct {
	Code   string `json:"code" jsonschema:"description=Item code, e.g. PU01"`
	Choice string `json:"choice" jsonschema:"description=Author: NA, No, Yes. Reviewer: OK, mR, MR"`
	Role   string `json:"role,omitempty" jsonschema:"description=author or reviewer; defaults to the active role"`
}

type SetRoleArgs struct {
	Role string `json:"role" jsonschema:"description=author or reviewer"`
}

type CommitArgs struct {
	Sections []string `json:"sections,omitempty" jsonschema:"description=Section ids to commit; empty commits every section"`
}

type ResetArgs struct {
	Confirm bool `json:"confirm" jsonschema:"description=Must be true; clears every answer and commit flag"`
}

type ExportArgs struct {
	Role string `json:"role,omitempty" jsonschema:"description=author or reviewer; defaults to the active role"`
}

func (s *Server) registerTools() {
	s.mcpServer.Tool("chamai_get_checklist").
		Description("Retrieve every section and item with both roles' answers").
		Handler(s.handleGetChecklist)

	s.mcpServer.Tool("chamai_get_summary").
		Description("Retrieve the reviewer score, maximum, quality label and answered counts").
		Handler(s.handleGetSummary)

	s.mcpServer.Tool("chamai_set_response").
		Description("Record an answer for one item").
		Handler(s.handleSetResponse)

	s.mcpServer.Tool("chamai_set_role").
		Description("Switch the active role between author and reviewer").
		Handler(s.handleSetRole)

	s.mcpServer.Tool("chamai_commit").
		Description("Mark sections as committed").
		Handler(s.handleCommit)

	s.mcpServer.Tool("chamai_reset").
		Description("Clear every answer and commit flag").
		Handler(s.handleReset)

	s.mcpServer.Tool("chamai_export_csv").
		Description("Export the results as CSV text").
		Handler(s.handleExportCSV)
}

func (s *Server) handleGetChecklist(ctx context.Context, args struct{}) (any, error) {
	sections, err := s.checklist.Sections()
	if err != nil {
		return nil, mcpErr("Checklist is not loaded. Check the definition path in .chamai/config.yaml.")
	}
	return map[string]any{
		"role":     s.checklist.Store().Role(),
		"sections": sections,
	}, nil
}

func (s *Server) handleGetSummary(ctx context.Context, args struct{}) (any, error) {
	summary, err := s.checklist.Summary()
	if err != nil {
		return nil, mcpErr("Checklist is not loaded. Check the definition path in .chamai/config.yaml.")
	}
	return summary, nil
}

func (s *Server) handleSetResponse(ctx context.Context, args SetResponseArgs) (string, error) {
	role := s.checklist.Store().Role()
	if args.Role != "" {
		role = response.NormalizeRole(args.Role)
	}
	if err := s.checklist.AnswerAs(args.Code, role, args.Choice); err != nil {
		switch {
		case errors.Is(err, domain.ErrUnknownItem):
			return "", mcpErr(fmt.Sprintf("Unknown item %q. Use chamai_get_checklist to list item codes.", args.Code))
		case errors.Is(err, domain.ErrInvalidChoice):
			return "", mcpErr(fmt.Sprintf("%q is not a %s choice. Allowed: %v.", args.Choice, role, response.ChoicesFor(role)))
		default:
			return "", mcpErr("Failed to record the answer.")
		}
	}
	return fmt.Sprintf("%s set to %s for %s", args.Code, args.Choice, role), nil
}

func (s *Server) handleSetRole(ctx context.Context, args SetRoleArgs) (string, error) {
	role := s.checklist.SetRole(args.Role)
	return fmt.Sprintf("Active role: %s", role), nil
}

func (s *Server) handleCommit(ctx context.Context, args CommitArgs) (string, error) {
	if len(args.Sections) == 0 {
		if _, err := s.checklist.CommitAll(); err != nil {
			return "", mcpErr("Checklist is not loaded.")
		}
		return "All sections marked as committed.", nil
	}
	if err := s.checklist.Commit(args.Sections...); err != nil {
		if errors.Is(err, domain.ErrUnknownSection) {
			return "", mcpErr("Unknown section. Use chamai_get_checklist to list section ids.")
		}
		return "", mcpErr("Checklist is not loaded.")
	}
	return fmt.Sprintf("Committed %d section(s).", len(args.Sections)), nil
}

func (s *Server) handleReset(ctx context.Context, args ResetArgs) (string, error) {
	if !args.Confirm {
		return "", mcpErr("Reset all responses? Call again with confirm=true.")
	}
	s.checklist.Reset()
	s.logger.Info("Responses reset")
	return "All responses cleared.", nil
}

func (s *Server) handleExportCSV(ctx context.Context, args ExportArgs) (string, error) {
	role := s.checklist.Store().Role()
	if args.Role != "" {
		role = response.NormalizeRole(args.Role)
	}
	var buf bytes.Buffer
	if err := s.exports.WriteAs(&buf, application.FormatCSV, role); err != nil {
		return "", mcpErr("Failed to export CSV.")
	}
	return buf.String(), nil
}

func (s *Server) ServeStdio(ctx context.Context) error {
	return mcp.ServeStdio(ctx, s.mcpServer)
}

func (s *Server) ServeHTTP(ctx context.Context, addr string) error {
	return mcp.ServeHTTP(ctx, s.mcpServer, addr, mcp.WithDefaultCORS())
}

func (s *Server) ServeWebSocket(ctx context.Context, addr string) error {
	return mcp.ServeWebSocket(ctx, s.mcpServer, addr)
}

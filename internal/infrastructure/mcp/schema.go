package mcp

import (
	"context"
	"encoding/json"

	mcplib "github.com/felixgeelhaar/mcp-go"

	"github.com/felixgeelhaar/chamai/pkg/domain/response"
	"github.com/felixgeelhaar/chamai/pkg/domain/scoring"
)

// SchemaVersion is the current MCP tool schema version (semver).
const SchemaVersion = "1.0.0"

const schemaURI = "chamai://schema"

type schemaResponse struct {
	SchemaVersion string                       `json:"schema_version"`
	ServerVersion string                       `json:"server_version"`
	Choices       map[string][]response.Choice `json:"choices"`
	Qualities     []scoring.Quality            `json:"qualities"`
}

func schemaDocument() schemaResponse {
	return schemaResponse{
		SchemaVersion: SchemaVersion,
		ServerVersion: Version,
		Choices: map[string][]response.Choice{
			string(response.RoleAuthor):   response.ChoicesFor(response.RoleAuthor),
			string(response.RoleReviewer): response.ChoicesFor(response.RoleReviewer),
		},
		Qualities: scoring.Qualities(),
	}
}

func (s *Server) registerSchemaResource() {
	s.mcpServer.Resource(schemaURI).
		Name(schemaURI).
		Description("Tool schema version, per-role choices and quality labels").
		MimeType("application/json").
		Handler(func(_ context.Context, _ string, _ map[string]string) (*mcplib.ResourceContent, error) {
			data, err := json.Marshal(schemaDocument())
			if err != nil {
				return nil, err
			}
			return &mcplib.ResourceContent{
				URI:      schemaURI,
				MimeType: "application/json",
				Text:     string(data),
			}, nil
		})
}

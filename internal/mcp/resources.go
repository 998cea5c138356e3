// ABOUTME: MCP resources for exposing notes as readable resources.
// ABOUTME: Allows AI agents to access note content via URI scheme.

package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/harper/stickies/internal/richtext"
	"github.com/harper/stickies/internal/store"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const noteURIPrefix = "stickies://note/"

func (s *Server) registerResources() {
	// The SDK lists resources from the template
	s.server.AddResourceTemplate(
		&mcp.ResourceTemplate{
			URITemplate: noteURIPrefix + "{id}",
			Name:        "Note",
			Description: "Access individual notes by ID or ID prefix",
			MIMEType:    "text/markdown",
		},
		s.handleReadResource,
	)
}

func (s *Server) handleReadResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	ref, ok := strings.CutPrefix(req.Params.URI, noteURIPrefix)
	if !ok || ref == "" {
		return nil, fmt.Errorf("invalid resource URI: %s", req.Params.URI)
	}

	note, err := s.store.Resolve(ctx, ref)
	if errors.Is(err, store.ErrNoteNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get note: %w", err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", note.DisplayTitle())
	fmt.Fprintf(&sb, "**Color:** %s\n", note.Color)
	if len(note.Tags) > 0 {
		fmt.Fprintf(&sb, "**Tags:** %s\n", strings.Join(note.Tags, ", "))
	}
	if note.IsTrashed() {
		sb.WriteString("**In trash**\n")
	}
	sb.WriteString("\n")
	sb.WriteString(richtext.ToMarkdown(note.Content))

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{
				URI:      req.Params.URI,
				MIMEType: "text/markdown",
				Text:     sb.String(),
			},
		},
	}, nil
}

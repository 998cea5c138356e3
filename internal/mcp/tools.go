// ABOUTME: MCP tools for note CRUD, trash and tag operations.
// ABOUTME: Maps CLI functionality to MCP tool interface; content travels as markdown.

package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harper/stickies/internal/models"
	"github.com/harper/stickies/internal/richtext"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

func (s *Server) registerTools() {
	// add_note
	s.server.AddTool(&mcp.Tool{
		Name:        "add_note",
		Description: "Create a new sticky note",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"title": {"type": "string", "description": "Note title"},
				"content": {"type": "string", "description": "Note content (markdown: **bold**, *italic*, ~~strike~~, <u>underline</u>, - bullets)"},
				"color": {"type": "string", "description": "Note color: ` + models.ColorNames() + `"},
				"tags": {"type": "array", "items": {"type": "string"}, "description": "Optional tags"}
			},
			"required": ["content"]
		}`),
	}, s.handleAddNote)

	// list_notes
	s.server.AddTool(&mcp.Tool{
		Name:        "list_notes",
		Description: "List notes, most recently updated first",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"tag": {"type": "string", "description": "Filter by tag"},
				"trashed": {"type": "boolean", "description": "List the trash instead"},
				"limit": {"type": "integer", "description": "Max results", "default": 20}
			}
		}`),
	}, s.handleListNotes)

	// get_note
	s.server.AddTool(&mcp.Tool{
		Name:        "get_note",
		Description: "Get a note by ID or ID prefix",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"id": {"type": "string", "description": "Note ID or prefix (6+ chars)"}
			},
			"required": ["id"]
		}`),
	}, s.handleGetNote)

	// update_note
	s.server.AddTool(&mcp.Tool{
		Name:        "update_note",
		Description: "Update a note's title, content or color",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"id": {"type": "string", "description": "Note ID or prefix"},
				"title": {"type": "string", "description": "New title"},
				"content": {"type": "string", "description": "New content (markdown)"},
				"color": {"type": "string", "description": "New color"}
			},
			"required": ["id"]
		}`),
	}, s.handleUpdateNote)

	// trash_notes
	s.server.AddTool(&mcp.Tool{
		Name:        "trash_notes",
		Description: "Move notes to the trash",
		InputSchema: idsSchema("Note IDs or prefixes to trash"),
	}, s.handleTrashNotes)

	// restore_notes
	s.server.AddTool(&mcp.Tool{
		Name:        "restore_notes",
		Description: "Restore notes from the trash",
		InputSchema: idsSchema("Note IDs or prefixes to restore"),
	}, s.handleRestoreNotes)

	// delete_notes
	s.server.AddTool(&mcp.Tool{
		Name:        "delete_notes",
		Description: "Permanently delete notes. Requires confirm=true.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"ids": {"type": "array", "items": {"type": "string"}, "description": "Note IDs or prefixes"},
				"confirm": {"type": "boolean", "description": "Must be true; deletion cannot be undone"}
			},
			"required": ["ids", "confirm"]
		}`),
	}, s.handleDeleteNotes)

	// empty_trash
	s.server.AddTool(&mcp.Tool{
		Name:        "empty_trash",
		Description: "Permanently delete every trashed note. Requires confirm=true.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"confirm": {"type": "boolean", "description": "Must be true; deletion cannot be undone"}
			},
			"required": ["confirm"]
		}`),
	}, s.handleEmptyTrash)

	// search_notes
	s.server.AddTool(&mcp.Tool{
		Name:        "search_notes",
		Description: "Prefix search over note titles and content, trash excluded",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"query": {"type": "string", "description": "Search query"},
				"limit": {"type": "integer", "description": "Max results", "default": 10}
			},
			"required": ["query"]
		}`),
	}, s.handleSearchNotes)

	// add_tag
	s.server.AddTool(&mcp.Tool{
		Name:        "add_tag",
		Description: "Add a tag to a note",
		InputSchema: noteTagSchema,
	}, s.handleAddTag)

	// remove_tag
	s.server.AddTool(&mcp.Tool{
		Name:        "remove_tag",
		Description: "Remove a tag from a note",
		InputSchema: noteTagSchema,
	}, s.handleRemoveTag)

	// list_tags
	s.server.AddTool(&mcp.Tool{
		Name:        "list_tags",
		Description: "List all tags with their note counts",
		InputSchema: json.RawMessage(`{"type": "object", "properties": {}}`),
	}, s.handleListTags)

	// delete_tag
	s.server.AddTool(&mcp.Tool{
		Name:        "delete_tag",
		Description: "Delete a tag and remove it from every note",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"tag": {"type": "string", "description": "Tag name"}
			},
			"required": ["tag"]
		}`),
	}, s.handleDeleteTag)
}

var noteTagSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"id": {"type": "string", "description": "Note ID or prefix"},
		"tag": {"type": "string", "description": "Tag name"}
	},
	"required": ["id", "tag"]
}`)

func idsSchema(description string) json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"ids": {"type": "array", "items": {"type": "string"}, "description": "` + description + `"}
		},
		"required": ["ids"]
	}`)
}

// noteView is the JSON shape of a note handed to agents.
type noteView struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	Color     string     `json:"color"`
	Tags      []string   `json:"tags"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	TrashedAt *time.Time `json:"trashed_at,omitempty"`
}

func viewOf(n *models.Note) noteView {
	tags := n.Tags
	if tags == nil {
		tags = []string{}
	}
	return noteView{
		ID:        n.ID.String(),
		Title:     n.Title,
		Content:   richtext.ToMarkdown(n.Content),
		Color:     n.Color.String(),
		Tags:      tags,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
		TrashedAt: n.TrashedAt,
	}
}

func viewsOf(notes []*models.Note, limit int) []noteView {
	if limit > 0 && len(notes) > limit {
		notes = notes[:limit]
	}
	views := make([]noteView, len(notes))
	for i, n := range notes {
		views[i] = viewOf(n)
	}
	return views
}

func retentionText(days int) string {
	if days <= 0 {
		return "kept until the trash is emptied"
	}
	return fmt.Sprintf("purged %d days after trashing", days)
}

func textResult(format string, args ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf(format, args...)},
		},
	}
}

func errorResult(format string, args ...any) *mcp.CallToolResult {
	result := textResult(format, args...)
	result.IsError = true
	return result
}

func jsonResult(v any) *mcp.CallToolResult {
	data, _ := json.MarshalIndent(v, "", "  ")
	return textResult("%s", data)
}

// bindArgs decodes tool arguments; a call without arguments leaves params as is.
func bindArgs(req *mcp.CallToolRequest, params any) error {
	if len(req.Params.Arguments) == 0 {
		return nil
	}
	return json.Unmarshal(req.Params.Arguments, params)
}

func (s *Server) resolveIDs(ctx context.Context, refs []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(refs))
	for _, ref := range refs {
		note, err := s.store.Resolve(ctx, ref)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ref, err)
		}
		ids = append(ids, note.ID)
	}
	return ids, nil
}

// Tool handlers.
func (s *Server) handleAddNote(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		Title   string   `json:"title"`
		Content string   `json:"content"`
		Color   string   `json:"color"`
		Tags    []string `json:"tags"`
	}
	if err := bindArgs(req, &params); err != nil {
		return nil, err
	}

	// Validate content is not empty
	if strings.TrimSpace(params.Content) == "" && strings.TrimSpace(params.Title) == "" {
		return errorResult("note needs a title or content"), nil
	}

	var color models.Color
	if params.Color != "" {
		c, err := models.ParseColor(params.Color)
		if err != nil {
			return errorResult("%v", err), nil
		}
		color = c
	}

	note, err := s.store.Create(ctx, params.Title, richtext.FromMarkdown(params.Content), color)
	if err != nil {
		return errorResult("failed to create note: %v", err), nil
	}
	for _, tag := range params.Tags {
		if err := s.store.AddTag(ctx, note.ID, tag); err != nil {
			// Log but don't fail - note was already created
			s.logger.Warn("failed to tag new note", zap.String("tag", tag), zap.Error(err))
		}
	}

	return textResult("Created note %s", note.ID.String()), nil
}

func (s *Server) handleListNotes(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		Tag     string `json:"tag"`
		Trashed bool   `json:"trashed"`
		Limit   int    `json:"limit"`
	}
	params.Limit = 20 // default
	if err := bindArgs(req, &params); err != nil {
		return nil, err
	}

	var notes []*models.Note
	var err error
	switch {
	case params.Trashed:
		notes, err = s.store.ListTrashed(ctx)
	case params.Tag != "":
		notes, err = s.store.ListByTag(ctx, params.Tag)
	default:
		notes, err = s.store.List(ctx, false)
	}
	if err != nil {
		return errorResult("failed to list notes: %v", err), nil
	}

	return jsonResult(viewsOf(notes, params.Limit)), nil
}

func (s *Server) handleGetNote(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		ID string `json:"id"`
	}
	if err := bindArgs(req, &params); err != nil {
		return nil, err
	}

	note, err := s.store.Resolve(ctx, params.ID)
	if err != nil {
		return errorResult("failed to get note: %v", err), nil
	}

	return jsonResult(viewOf(note)), nil
}

func (s *Server) handleUpdateNote(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		ID      string  `json:"id"`
		Title   *string `json:"title"`
		Content *string `json:"content"`
		Color   *string `json:"color"`
	}
	if err := bindArgs(req, &params); err != nil {
		return nil, err
	}

	note, err := s.store.Resolve(ctx, params.ID)
	if err != nil {
		return errorResult("failed to find note: %v", err), nil
	}

	upd := models.NoteUpdate{Title: params.Title}
	if params.Content != nil {
		doc := richtext.FromMarkdown(*params.Content)
		upd.Content = &doc
	}
	if params.Color != nil {
		c, err := models.ParseColor(*params.Color)
		if err != nil {
			return errorResult("%v", err), nil
		}
		upd.Color = &c
	}
	if upd.IsEmpty() {
		return errorResult("nothing to update: pass title, content or color"), nil
	}

	if _, err := s.store.Update(ctx, note.ID, upd); err != nil {
		return errorResult("failed to update note: %v", err), nil
	}

	return textResult("Updated note %s", note.ID.String()), nil
}

func (s *Server) handleTrashNotes(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		IDs []string `json:"ids"`
	}
	if err := bindArgs(req, &params); err != nil {
		return nil, err
	}

	ids, err := s.resolveIDs(ctx, params.IDs)
	if err != nil {
		return errorResult("failed to find note: %v", err), nil
	}
	if err := s.store.Trash(ctx, ids...); err != nil {
		return errorResult("failed to trash notes: %v", err), nil
	}

	return textResult("Moved %d note(s) to trash, %s", len(ids), retentionText(s.store.RetentionDays())), nil
}

func (s *Server) handleRestoreNotes(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		IDs []string `json:"ids"`
	}
	if err := bindArgs(req, &params); err != nil {
		return nil, err
	}

	ids, err := s.resolveIDs(ctx, params.IDs)
	if err != nil {
		return errorResult("failed to find note: %v", err), nil
	}
	if err := s.store.Restore(ctx, ids...); err != nil {
		return errorResult("failed to restore notes: %v", err), nil
	}

	return textResult("Restored %d note(s)", len(ids)), nil
}

func (s *Server) handleDeleteNotes(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		IDs     []string `json:"ids"`
		Confirm bool     `json:"confirm"`
	}
	if err := bindArgs(req, &params); err != nil {
		return nil, err
	}
	if !params.Confirm {
		return errorResult("permanent deletion requires confirm=true"), nil
	}

	ids, err := s.resolveIDs(ctx, params.IDs)
	if err != nil {
		return errorResult("failed to find note: %v", err), nil
	}
	if err := s.store.Delete(ctx, ids...); err != nil {
		return errorResult("failed to delete notes: %v", err), nil
	}

	return textResult("Deleted %d note(s)", len(ids)), nil
}

func (s *Server) handleEmptyTrash(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		Confirm bool `json:"confirm"`
	}
	if err := bindArgs(req, &params); err != nil {
		return nil, err
	}
	if !params.Confirm {
		return errorResult("emptying the trash requires confirm=true"), nil
	}

	n, err := s.store.EmptyTrash(ctx)
	if err != nil {
		return errorResult("failed to empty trash: %v", err), nil
	}

	return textResult("Permanently deleted %d note(s)", n), nil
}

func (s *Server) handleSearchNotes(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		Query string `json:"query"`
		Limit int    `json:"limit"`
	}
	params.Limit = 10 // default
	if err := bindArgs(req, &params); err != nil {
		return nil, err
	}

	notes, err := s.store.Search(ctx, params.Query)
	if err != nil {
		return errorResult("failed to search notes: %v", err), nil
	}

	return jsonResult(viewsOf(notes, params.Limit)), nil
}

func (s *Server) handleAddTag(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		ID  string `json:"id"`
		Tag string `json:"tag"`
	}
	if err := bindArgs(req, &params); err != nil {
		return nil, err
	}

	note, err := s.store.Resolve(ctx, params.ID)
	if err != nil {
		return errorResult("failed to find note: %v", err), nil
	}
	if err := s.store.AddTag(ctx, note.ID, params.Tag); err != nil {
		return errorResult("failed to add tag: %v", err), nil
	}

	return textResult("Added tag '%s' to note %s", models.NormalizeTagName(params.Tag), note.ID.String()), nil
}

func (s *Server) handleRemoveTag(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		ID  string `json:"id"`
		Tag string `json:"tag"`
	}
	if err := bindArgs(req, &params); err != nil {
		return nil, err
	}

	note, err := s.store.Resolve(ctx, params.ID)
	if err != nil {
		return errorResult("failed to find note: %v", err), nil
	}
	if err := s.store.RemoveTag(ctx, note.ID, params.Tag); err != nil {
		return errorResult("failed to remove tag: %v", err), nil
	}

	return textResult("Removed tag '%s' from note %s", models.NormalizeTagName(params.Tag), note.ID.String()), nil
}

func (s *Server) handleListTags(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tags, err := s.store.AllTags(ctx)
	if err != nil {
		return errorResult("failed to list tags: %v", err), nil
	}

	type tagView struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}
	views := make([]tagView, len(tags))
	for i, t := range tags {
		views[i] = tagView{Name: t.Name, Count: t.NoteCount}
	}

	return jsonResult(views), nil
}

func (s *Server) handleDeleteTag(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		Tag string `json:"tag"`
	}
	if err := bindArgs(req, &params); err != nil {
		return nil, err
	}

	if err := s.store.DeleteTag(ctx, params.Tag); err != nil {
		return errorResult("failed to delete tag: %v", err), nil
	}

	return textResult("Deleted tag '%s'", models.NormalizeTagName(params.Tag)), nil
}

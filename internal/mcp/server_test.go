// ABOUTME: Tests for the MCP server over in-memory transports.
// ABOUTME: Drives tools, resources and prompts through a real client session.

package mcp

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/harper/stickies/internal/models"
	"github.com/harper/stickies/internal/richtext"
	"github.com/harper/stickies/internal/store"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func connect(t *testing.T) (*mcp.ClientSession, *store.Store) {
	t.Helper()
	ctx := context.Background()

	st, err := store.Open(ctx, filepath.Join(t.TempDir(), "notes.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	_, err = NewServer(st, nil).Connect(ctx, serverTransport)
	require.NoError(t, err)

	client := mcp.NewClient(&mcp.Implementation{Name: "test", Version: "0.0.1"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })

	return session, st
}

func call(t *testing.T, session *mcp.ClientSession, name string, args map[string]any) (string, bool) {
	t.Helper()
	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok, "expected text content")
	return text.Text, res.IsError
}

func TestListTools(t *testing.T) {
	session, _ := connect(t)

	res, err := session.ListTools(context.Background(), nil)
	require.NoError(t, err)

	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	for _, want := range []string{
		"add_note", "list_notes", "get_note", "update_note", "trash_notes", "restore_notes",
		"delete_notes", "empty_trash", "search_notes", "add_tag", "remove_tag", "list_tags", "delete_tag",
	} {
		assert.Contains(t, names, want)
	}
}

func TestAddAndGetNote(t *testing.T) {
	session, st := connect(t)

	out, isErr := call(t, session, "add_note", map[string]any{
		"title":   "Groceries",
		"content": "- **milk**\n- eggs",
		"color":   "green",
		"tags":    []string{"Shopping"},
	})
	require.False(t, isErr, out)
	require.True(t, strings.HasPrefix(out, "Created note "))
	id := strings.TrimPrefix(out, "Created note ")

	notes, err := st.List(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	note := notes[0]
	assert.Equal(t, models.Green, note.Color)
	assert.Equal(t, []string{"shopping"}, note.Tags)
	require.Len(t, note.Content.Blocks, 2)
	assert.Equal(t, richtext.Bullet, note.Content.Blocks[0].Kind)

	out, isErr = call(t, session, "get_note", map[string]any{"id": id[:8]})
	require.False(t, isErr, out)
	var view noteView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Equal(t, id, view.ID)
	assert.Equal(t, "- **milk**\n- eggs", view.Content)
}

func TestAddNoteRejectsBadInput(t *testing.T) {
	session, _ := connect(t)

	_, isErr := call(t, session, "add_note", map[string]any{"content": "  "})
	assert.True(t, isErr)

	out, isErr := call(t, session, "add_note", map[string]any{"content": "x", "color": "beige"})
	assert.True(t, isErr)
	assert.Contains(t, out, "unknown color")
}

func TestUpdateNote(t *testing.T) {
	session, st := connect(t)
	ctx := context.Background()
	note, _ := st.Create(ctx, "old", richtext.FromText("body"), "")

	out, isErr := call(t, session, "update_note", map[string]any{
		"id":      note.ID.String(),
		"title":   "new",
		"content": "*fresh*",
	})
	require.False(t, isErr, out)

	got, _ := st.Get(ctx, note.ID)
	assert.Equal(t, "new", got.Title)
	assert.Equal(t, "fresh", got.PlainText())

	_, isErr = call(t, session, "update_note", map[string]any{"id": note.ID.String()})
	assert.True(t, isErr)
}

func TestTrashRestoreAndDelete(t *testing.T) {
	session, st := connect(t)
	ctx := context.Background()
	a, _ := st.Create(ctx, "a", richtext.Document{}, "")
	b, _ := st.Create(ctx, "b", richtext.Document{}, "")

	_, isErr := call(t, session, "trash_notes", map[string]any{"ids": []string{a.ID.String(), b.ID.String()}})
	require.False(t, isErr)

	out, _ := call(t, session, "list_notes", map[string]any{"trashed": true})
	var trashed []noteView
	require.NoError(t, json.Unmarshal([]byte(out), &trashed))
	assert.Len(t, trashed, 2)

	_, isErr = call(t, session, "restore_notes", map[string]any{"ids": []string{a.ID.String()}})
	require.False(t, isErr)
	live, _ := st.List(ctx, false)
	assert.Len(t, live, 1)

	_, isErr = call(t, session, "delete_notes", map[string]any{"ids": []string{a.ID.String()}})
	assert.True(t, isErr, "deletion without confirm must be refused")

	_, isErr = call(t, session, "delete_notes", map[string]any{"ids": []string{a.ID.String()}, "confirm": true})
	require.False(t, isErr)
	_, err := st.Get(ctx, a.ID)
	assert.ErrorIs(t, err, store.ErrNoteNotFound)

	out, isErr = call(t, session, "empty_trash", map[string]any{"confirm": true})
	require.False(t, isErr)
	assert.Contains(t, out, "1 note")
}

func TestSearchNotes(t *testing.T) {
	session, st := connect(t)
	ctx := context.Background()
	_, _ = st.Create(ctx, "Grocery List", richtext.FromText("milk"), "")
	_, _ = st.Create(ctx, "Other", richtext.FromText("nothing"), "")

	out, isErr := call(t, session, "search_notes", map[string]any{"query": "mil"})
	require.False(t, isErr, out)

	var found []noteView
	require.NoError(t, json.Unmarshal([]byte(out), &found))
	require.Len(t, found, 1)
	assert.Equal(t, "Grocery List", found[0].Title)
}

func TestTagTools(t *testing.T) {
	session, st := connect(t)
	ctx := context.Background()
	note, _ := st.Create(ctx, "t", richtext.Document{}, "")

	_, isErr := call(t, session, "add_tag", map[string]any{"id": note.ID.String(), "tag": "Work"})
	require.False(t, isErr)

	out, isErr := call(t, session, "list_tags", map[string]any{})
	require.False(t, isErr)
	assert.JSONEq(t, `[{"name":"work","count":1}]`, out)

	_, isErr = call(t, session, "remove_tag", map[string]any{"id": note.ID.String(), "tag": "work"})
	require.False(t, isErr)

	_, isErr = call(t, session, "delete_tag", map[string]any{"tag": "work"})
	require.False(t, isErr)
	tags, _ := st.AllTags(ctx)
	assert.Empty(t, tags)

	_, isErr = call(t, session, "delete_tag", map[string]any{"tag": "work"})
	assert.True(t, isErr)
}

func TestReadNoteResource(t *testing.T) {
	session, st := connect(t)
	ctx := context.Background()
	note, _ := st.Create(ctx, "Plans", richtext.Document{Blocks: []richtext.Block{
		richtext.NewParagraph(richtext.Styled("soon", richtext.Bold)),
	}}, models.Pink)

	res, err := session.ReadResource(ctx, &mcp.ReadResourceParams{URI: noteURIPrefix + note.ID.String()})
	require.NoError(t, err)
	require.Len(t, res.Contents, 1)
	text := res.Contents[0].Text
	assert.Contains(t, text, "# Plans")
	assert.Contains(t, text, "**Color:** pink")
	assert.Contains(t, text, "**soon**")

	_, err = session.ReadResource(ctx, &mcp.ReadResourceParams{URI: noteURIPrefix + "00000000-0000-0000-0000-000000000000"})
	assert.Error(t, err)
}

func TestSubscribedClientHearsNoteChanges(t *testing.T) {
	ctx := context.Background()
	st, err := store.Open(ctx, filepath.Join(t.TempDir(), "notes.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	srv := NewServer(st, nil)
	stop := srv.Watch(ctx)
	t.Cleanup(stop)

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	_, err = srv.Connect(ctx, serverTransport)
	require.NoError(t, err)

	updated := make(chan string, 8)
	client := mcp.NewClient(&mcp.Implementation{Name: "test", Version: "0.0.1"}, &mcp.ClientOptions{
		ResourceUpdatedHandler: func(_ context.Context, req *mcp.ResourceUpdatedNotificationRequest) {
			updated <- req.Params.URI
		},
	})
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })

	note, err := st.Create(ctx, "watched", richtext.FromText("a"), models.Blue)
	require.NoError(t, err)
	uri := noteURIPrefix + note.ID.String()
	require.NoError(t, session.Subscribe(ctx, &mcp.SubscribeParams{URI: uri}))

	_, isErr := call(t, session, "update_note", map[string]any{"id": note.ID.String(), "title": "renamed"})
	require.False(t, isErr)

	select {
	case got := <-updated:
		assert.Equal(t, uri, got)
	case <-time.After(2 * time.Second):
		t.Fatal("no resource update received")
	}

	assert.Error(t, session.Subscribe(ctx, &mcp.SubscribeParams{URI: "file:///etc/passwd"}))
}

func TestPrompts(t *testing.T) {
	session, _ := connect(t)
	ctx := context.Background()

	res, err := session.GetPrompt(ctx, &mcp.GetPromptParams{
		Name:      "create-meeting-notes",
		Arguments: map[string]string{"meeting_title": "Standup"},
	})
	require.NoError(t, err)
	require.Len(t, res.Messages, 1)
	text, ok := res.Messages[0].Content.(*mcp.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, "Standup")

	_, err = session.GetPrompt(ctx, &mcp.GetPromptParams{Name: "summarize-note"})
	assert.Error(t, err)

	res, err = session.GetPrompt(ctx, &mcp.GetPromptParams{Name: "review-trash"})
	require.NoError(t, err)
	text = res.Messages[0].Content.(*mcp.TextContent)
	assert.Contains(t, text.Text, "7 days")
}

// ABOUTME: MCP prompts for common sticky-note workflows.
// ABOUTME: Provides pre-configured prompts for AI agent interactions.

package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// formattingHint tells agents which markdown survives in a sticky note.
const formattingHint = `Sticky notes support only **bold**, *italic*, ~~strikethrough~~, <u>underline</u> and "- " bullet lines. Headings, links and numbered lists are stored as plain text.`

func (s *Server) registerPrompts() {
	// Register individual prompts - SDK will automatically handle listing
	s.server.AddPrompt(&mcp.Prompt{
		Name:        "create-meeting-notes",
		Description: "Create a meeting sticky with attendees, decisions and action items",
		Arguments: []*mcp.PromptArgument{
			{
				Name:        "meeting_title",
				Description: "Title of the meeting",
				Required:    true,
			},
		},
	}, s.getMeetingNotesPrompt)

	s.server.AddPrompt(&mcp.Prompt{
		Name:        "create-todo-list",
		Description: "Create a colored to-do sticky with one bullet per task",
		Arguments: []*mcp.PromptArgument{
			{
				Name:        "topic",
				Description: "What the list is for",
				Required:    false,
			},
		},
	}, s.getTodoListPrompt)

	s.server.AddPrompt(&mcp.Prompt{
		Name:        "summarize-note",
		Description: "Generate a summary of an existing note",
		Arguments: []*mcp.PromptArgument{
			{
				Name:        "note_id",
				Description: "ID of the note to summarize",
				Required:    true,
			},
		},
	}, s.getSummarizeNotePrompt)

	s.server.AddPrompt(&mcp.Prompt{
		Name:        "organize-notes",
		Description: "Get suggestions for tagging, coloring and retiring notes",
	}, s.getOrganizeNotesPrompt)

	s.server.AddPrompt(&mcp.Prompt{
		Name:        "review-trash",
		Description: "Decide which trashed notes to restore before they expire",
	}, s.getReviewTrashPrompt)
}

func userPrompt(description, text string) *mcp.GetPromptResult {
	return &mcp.GetPromptResult{
		Description: description,
		Messages: []*mcp.PromptMessage{
			{
				Role: "user",
				Content: &mcp.TextContent{
					Text: text,
				},
			},
		},
	}
}

func (s *Server) getMeetingNotesPrompt(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	meetingTitle, ok := req.Params.Arguments["meeting_title"]
	if !ok || meetingTitle == "" {
		meetingTitle = "Meeting"
	}

	template := fmt.Sprintf(`Create meeting notes for: %s

Structure the note like this:

**Attendees**
- [name]

**Decisions**
- [decision]

**Action items**
- [action] (owner, due date)

%s

Use the add_note tool with title %q, color "blue" and tags like "meeting", "work".`, meetingTitle, formattingHint, meetingTitle)

	return userPrompt("Meeting notes", template), nil
}

func (s *Server) getTodoListPrompt(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	topic, ok := req.Params.Arguments["topic"]
	if !ok || topic == "" {
		topic = "today"
	}

	template := fmt.Sprintf(`Create a to-do sticky for %s.

1. Ask me for the tasks if I have not listed them
2. Put each task on its own "- " bullet line
3. Mark anything already done with ~~strikethrough~~
4. Use the add_note tool with color "yellow" and the tag "todo"

%s`, topic, formattingHint)

	return userPrompt("To-do list", template), nil
}

func (s *Server) getSummarizeNotePrompt(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	noteID, ok := req.Params.Arguments["note_id"]
	if !ok || noteID == "" {
		return nil, fmt.Errorf("note_id argument is required")
	}

	template := fmt.Sprintf(`Please summarize the note with ID: %s

1. Use the get_note tool to retrieve the note content
2. Read and analyze the note
3. Create a concise summary highlighting:
   - Main topic or theme
   - Key points or takeaways
   - Important details or action items
4. Use the update_note tool to put a **Summary** line at the top of the note

%s`, noteID, formattingHint)

	return userPrompt("Summarize a note", template), nil
}

func (s *Server) getOrganizeNotesPrompt(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	template := `Help me organize my sticky notes by:

1. Use the list_notes and list_tags tools to see my notes and tags
2. Analyze the content and identify common themes
3. Suggest a tagging system and a color per theme
4. Recommend which notes could be merged or split
5. Identify stale notes that could go to the trash

Please provide specific recommendations with note IDs, suggested tags and colors.
Ask before calling trash_notes, and never call delete_notes or empty_trash without my explicit approval.`

	return userPrompt("Organize notes", template), nil
}

func (s *Server) getReviewTrashPrompt(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	template := fmt.Sprintf(`Review my trash before it is purged.

1. Use the list_notes tool with trashed=true to see the trash
2. Trashed notes are %s
3. For each note, say whether it looks worth keeping and why
4. Offer to restore the keepers with restore_notes

Do not empty the trash unless I confirm.`, retentionText(s.store.RetentionDays()))

	return userPrompt("Review trash", template), nil
}

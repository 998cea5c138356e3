// ABOUTME: Tests for tag database operations.
// ABOUTME: Covers tag creation, association, counting and cascade deletion.

package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/harper/stickies/internal/models"
	"github.com/harper/stickies/internal/richtext"
)

func TestGetOrCreateTag(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	tag1, err := GetOrCreateTag(ctx, db, "test")
	if err != nil {
		t.Fatalf("failed to create tag: %v", err)
	}

	tag2, err := GetOrCreateTag(ctx, db, " TEST ")
	if err != nil {
		t.Fatalf("failed to get existing tag: %v", err)
	}

	if tag1.ID != tag2.ID {
		t.Error("expected same tag ID for same name")
	}

	if _, err := GetOrCreateTag(ctx, db, "   "); !errors.Is(err, ErrEmptyTagName) {
		t.Errorf("expected ErrEmptyTagName, got %v", err)
	}
}

func TestAddAndRemoveTagFromNote(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	note := models.NewNote("Test", richtext.FromText("Content"), models.Yellow)
	_ = CreateNote(ctx, db, note)

	tag, _ := GetOrCreateTag(ctx, db, "important")
	added, err := AddTagToNote(ctx, db, note.ID, tag.ID)
	if err != nil {
		t.Fatalf("failed to add tag: %v", err)
	}
	if !added {
		t.Error("expected first add to create the link")
	}
	if added, _ := AddTagToNote(ctx, db, note.ID, tag.ID); added {
		t.Error("expected second add to be a no-op")
	}

	tags, err := GetNoteTags(ctx, db, note.ID)
	if err != nil {
		t.Fatalf("failed to get tags: %v", err)
	}

	if len(tags) != 1 || tags[0] != "important" {
		t.Errorf("expected [important], got %v", tags)
	}

	removed, err := RemoveTagFromNote(ctx, db, note.ID, "Important")
	if err != nil {
		t.Fatalf("failed to remove tag: %v", err)
	}
	if !removed {
		t.Error("expected link to be removed")
	}

	tags, _ = GetNoteTags(ctx, db, note.ID)
	if len(tags) != 0 {
		t.Errorf("expected no tags, got %v", tags)
	}
}

func TestNoteTagsAreSorted(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	note := models.NewNote("Test", richtext.Document{}, models.Yellow)
	_ = CreateNote(ctx, db, note)
	for _, name := range []string{"zeta", "alpha", "mid"} {
		tag, _ := GetOrCreateTag(ctx, db, name)
		_, _ = AddTagToNote(ctx, db, note.ID, tag.ID)
	}

	got, _ := GetNoteByID(ctx, db, note.ID)
	want := []string{"alpha", "mid", "zeta"}
	for i := range want {
		if i >= len(got.Tags) || got.Tags[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got.Tags)
		}
	}
}

func TestListAllTagsCountsLiveNotes(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	live := models.NewNote("live", richtext.Document{}, models.Yellow)
	trashed := models.NewNote("trashed", richtext.Document{}, models.Yellow)
	_ = CreateNote(ctx, db, live)
	_ = CreateNote(ctx, db, trashed)
	work, _ := GetOrCreateTag(ctx, db, "work")
	_, _ = GetOrCreateTag(ctx, db, "unused")
	_, _ = AddTagToNote(ctx, db, live.ID, work.ID)
	_, _ = AddTagToNote(ctx, db, trashed.ID, work.ID)
	now := time.Now()
	_ = SetTrashed(ctx, db, trashed.ID, &now, now)

	tags, err := ListAllTags(ctx, db)
	if err != nil {
		t.Fatalf("failed to list tags: %v", err)
	}

	if len(tags) != 2 {
		t.Fatalf("expected 2 tags, got %d", len(tags))
	}
	if tags[0].Name != "unused" || tags[0].NoteCount != 0 {
		t.Errorf("unexpected first tag %+v", tags[0])
	}
	if tags[1].Name != "work" || tags[1].NoteCount != 1 {
		t.Errorf("expected work to count only the live note, got %+v", tags[1])
	}
}

func TestDeleteTagCascades(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	note := models.NewNote("n", richtext.Document{}, models.Yellow)
	_ = CreateNote(ctx, db, note)
	tag, _ := GetOrCreateTag(ctx, db, "gone")
	_, _ = AddTagToNote(ctx, db, note.ID, tag.ID)

	ids, _ := NotesWithTag(ctx, db, tag.ID)
	if len(ids) != 1 || ids[0] != note.ID {
		t.Fatalf("expected tagged note, got %v", ids)
	}

	if err := DeleteTag(ctx, db, tag.ID); err != nil {
		t.Fatalf("failed to delete tag: %v", err)
	}

	var links int
	_ = db.QueryRow(`SELECT COUNT(*) FROM note_tags`).Scan(&links)
	if links != 0 {
		t.Errorf("expected associations to cascade, got %d", links)
	}
	if _, err := GetTagByName(ctx, db, "gone"); !errors.Is(err, ErrTagNotFound) {
		t.Errorf("expected ErrTagNotFound, got %v", err)
	}
	if err := DeleteTag(ctx, db, tag.ID); !errors.Is(err, ErrTagNotFound) {
		t.Errorf("expected ErrTagNotFound on second delete, got %v", err)
	}
}

func TestDeleteNoteCascadesTags(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	note := models.NewNote("n", richtext.Document{}, models.Yellow)
	_ = CreateNote(ctx, db, note)
	tag, _ := GetOrCreateTag(ctx, db, "keep")
	_, _ = AddTagToNote(ctx, db, note.ID, tag.ID)

	_ = DeleteNote(ctx, db, note.ID)

	var links int
	_ = db.QueryRow(`SELECT COUNT(*) FROM note_tags`).Scan(&links)
	if links != 0 {
		t.Errorf("expected associations to cascade, got %d", links)
	}
	if _, err := GetTagByName(ctx, db, "keep"); err != nil {
		t.Errorf("expected tag itself to survive: %v", err)
	}
}

// ABOUTME: Search command with an interactive mode.
// ABOUTME: Interactive queries are read line by line and only the latest is run once input pauses.

package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/harper/stickies/internal/models"
	"github.com/harper/stickies/internal/session"
	"github.com/harper/stickies/internal/ui"
	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search notes",
	Long: `Full-text search over titles and content. Words match by prefix.
With --interactive, each line read from stdin replaces the query.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		interactive, _ := cmd.Flags().GetBool("interactive")
		preview := ui.PreviewOptions{Lines: cfg.Preview.MaxLines, Chars: cfg.Preview.MaxChars}

		var mu sync.Mutex
		var searchErr error
		show := func(query string, notes []*models.Note, err error) {
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				searchErr = err
				return
			}
			if interactive {
				fmt.Println(ui.Separator() + fmt.Sprintf("%d result(s) for %q", len(notes), query))
			}
			if len(notes) == 0 && !interactive {
				fmt.Println("No notes found.")
			}
			now := time.Now()
			for _, note := range notes {
				fmt.Print(ui.FormatNoteListItem(note, preview, now))
			}
		}

		search := session.NewSearch(noteStore, show,
			session.WithLogger(logger),
			session.WithDelay(cfg.SearchDelay()),
		)
		defer search.Stop()

		if !interactive {
			search.SetQuery(strings.Join(args, " "))
			search.Flush()
			return searchErr
		}

		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			search.SetQuery(scanner.Text())
		}
		if search.Pending() {
			search.Flush()
		}
		if err := scanner.Err(); err != nil {
			return err
		}
		mu.Lock()
		defer mu.Unlock()
		return searchErr
	},
}

func init() {
	searchCmd.Flags().BoolP("interactive", "i", false, "read queries from stdin")
	rootCmd.AddCommand(searchCmd)
}

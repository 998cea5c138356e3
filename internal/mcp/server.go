// ABOUTME: MCP server for stickies integration with AI agents.
// ABOUTME: Provides tools, resources, and prompts for note management.

package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/harper/stickies/internal/store"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

const Version = "1.0.0"

// eventBuffer bounds note changes waiting to be sent to subscribers.
const eventBuffer = 64

type Server struct {
	server *mcp.Server
	store  *store.Store
	logger *zap.Logger
}

func NewServer(st *store.Store, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{store: st, logger: logger}

	s.server = mcp.NewServer(
		&mcp.Implementation{
			Name:    "stickies",
			Version: Version,
		},
		&mcp.ServerOptions{
			HasTools:     true,
			HasResources: true,
			HasPrompts:   true,
			SubscribeHandler: func(_ context.Context, req *mcp.SubscribeRequest) error {
				if !strings.HasPrefix(req.Params.URI, noteURIPrefix) {
					return fmt.Errorf("cannot subscribe to %s", req.Params.URI)
				}
				return nil
			},
			UnsubscribeHandler: func(context.Context, *mcp.UnsubscribeRequest) error {
				return nil
			},
		},
	)

	s.registerTools()
	s.registerResources()
	s.registerPrompts()

	return s
}

// Serve runs the server over stdio until ctx is done or the client leaves.
func (s *Server) Serve(ctx context.Context) error {
	stop := s.Watch(ctx)
	defer stop()

	s.logger.Info("serving MCP over stdio")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Watch tells clients subscribed to a note's resource when that note
// changes. It runs until ctx is done or stop is called.
func (s *Server) Watch(ctx context.Context) (stop func()) {
	ch, unsubscribe := s.store.Events().Channel(eventBuffer)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case e, ok := <-ch:
				if !ok {
					return
				}
				uri := noteURIPrefix + e.NoteID.String()
				if err := s.server.ResourceUpdated(ctx, &mcp.ResourceUpdatedNotificationParams{URI: uri}); err != nil {
					s.logger.Warn("resource update notification failed", zap.String("uri", uri), zap.Error(err))
				}
			}
		}
	}()

	return func() {
		unsubscribe()
		<-done
	}
}

// Connect serves a single session over t.
func (s *Server) Connect(ctx context.Context, t mcp.Transport) (*mcp.ServerSession, error) {
	return s.server.Connect(ctx, t, nil)
}

package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-go-golems/embedbot/pkg/conversation"
	"github.com/go-go-golems/embedbot/pkg/transport"
	"github.com/rs/zerolog"
)

// replyMsg and failureMsg carry a transport result back into the event loop,
// tagged with the generation of the submit that started it.
type replyMsg struct {
	gen   uint64
	reply string
}

type failureMsg struct {
	gen uint64
	err error
}

// TransportBackend turns accepted submits into tea commands that call the
// transport. It keeps no request state: the conversation's pending flag is
// the only guard.
type TransportBackend struct {
	ctx    context.Context
	sender transport.Sender
	logger zerolog.Logger
}

// NewTransportBackend creates a backend bound to ctx. Cancelling ctx cancels
// any request still in flight.
func NewTransportBackend(ctx context.Context, sender transport.Sender, logger zerolog.Logger) *TransportBackend {
	if ctx == nil {
		ctx = context.Background()
	}
	return &TransportBackend{
		ctx:    ctx,
		sender: sender,
		logger: logger,
	}
}

// Start returns the command that performs the request.
func (b *TransportBackend) Start(req conversation.Request) tea.Cmd {
	return func() tea.Msg {
		reply, err := b.sender.Send(b.ctx, req.Text)
		if err != nil {
			b.logger.Warn().Err(err).Uint64("generation", req.Generation).Msg("chat request failed")
			return failureMsg{gen: req.Generation, err: err}
		}
		b.logger.Debug().Uint64("generation", req.Generation).Msg("chat reply received")
		return replyMsg{gen: req.Generation, reply: reply}
	}
}

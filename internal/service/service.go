package service

import (
	"context"
	"errors"
	"log"
	"time"

	"bricklabels.dev/internal/config"
	"bricklabels.dev/internal/label"
	"bricklabels.dev/internal/protocol"
)

// How long a workflow waits for the issuing player's interaction.
const interactTimeout = 30 * time.Second

// Service owns the label store and runs the command workflows against
// the host event stream.
type Service struct {
	cfg     config.Config
	store   *label.Store
	host    Host
	corr    *Correlator
	log     *log.Logger
	dataDir string

	// Wait timeout for interaction correlation; tests shorten it.
	waitTimeout time.Duration
}

func New(cfg config.Config, store *label.Store, host Host, dataDir string, logger *log.Logger) *Service {
	return &Service{
		cfg:         cfg,
		store:       store,
		host:        host,
		corr:        NewCorrelator(),
		log:         logger,
		dataDir:     dataDir,
		waitTimeout: interactTimeout,
	}
}

// Run consumes the host event stream until ctx is done or the stream
// closes. Interactions resolve pending waits or trigger label display;
// each chat command runs as its own workflow goroutine, so a suspended
// command never blocks the stream.
func (s *Service) Run(ctx context.Context, events <-chan protocol.EventMsg) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			switch ev.Event {
			case protocol.EventInteract:
				if ev.Interact != nil {
					s.HandleInteract(*ev.Interact)
				}
			case protocol.EventCommand:
				if ev.Command != nil {
					go s.HandleCommand(ctx, *ev.Command)
				}
			}
		}
	}
}

// HandleInteract offers the event to the correlator first; an
// unconsumed interaction is a label-display trigger.
func (s *Service) HandleInteract(it protocol.Interaction) {
	if s.corr.Deliver(it) {
		return
	}
	l, ok := s.store.Get(label.FromArray(it.Position))
	if !ok {
		return
	}
	switch l.EffectiveDisplay() {
	case label.DisplayChat:
		s.host.Whisper(it.Player.ID, l.Text)
	default:
		s.host.MiddlePrint(it.Player.ID, l.Text)
	}
}

// HandleCommand runs one labels subcommand to completion. Every
// failure produces at most one whisper and never takes down the
// event loop.
func (s *Service) HandleCommand(ctx context.Context, cmd protocol.ChatCommand) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Printf("labels command panic (speaker=%s): %v", cmd.Speaker, r)
		}
	}()

	p, err := s.host.Player(ctx, cmd.Speaker)
	if err != nil {
		s.log.Printf("player lookup %q: %v", cmd.Speaker, err)
		return
	}

	sub := ""
	args := cmd.Args
	if len(args) > 0 {
		sub, args = args[0], args[1:]
	}

	err = s.dispatch(ctx, p, sub, args)
	if err == nil {
		return
	}
	var ce *commandError
	if errors.As(err, &ce) {
		if ce.code == protocol.ErrSuperseded {
			s.log.Printf("labels %s (%s): superseded by a newer command", sub, p.Name)
			return
		}
		if ce.msg != "" {
			s.host.Whisper(p.ID, ce.msg)
		}
		return
	}
	if errors.Is(err, context.Canceled) {
		return
	}
	s.log.Printf("labels %s (%s): %v", sub, p.Name, err)
	s.host.Whisper(p.ID, "Something went wrong running that command.")
}

func (s *Service) isAuthed(p protocol.PlayerInfo) bool {
	return p.Host || s.cfg.InAuth(p.ID)
}

func (s *Service) canUseLabels(p protocol.PlayerInfo) bool {
	return (s.cfg.AllowAll || s.isAuthed(p)) && !s.cfg.IsBanned(p.ID)
}

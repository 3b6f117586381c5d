// FILE: internal/processor/processor.go
package processor

import (
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"gambit/internal/command"
	"gambit/internal/core"
	"gambit/internal/option"
	"gambit/internal/response"
	"gambit/internal/search"
)

const defaultQuitTimeout = 5 * time.Second

// Processor is the protocol state machine. Execute runs on the command loop
// only; it alone changes the session state and position.
type Processor struct {
	engine   core.Engine
	out      *response.Writer
	registry *option.Registry
	ctrl     *search.Controller
	log      zerolog.Logger
	level    zerolog.Level

	state       core.State
	position    core.Position
	handle      *search.Handle
	debug       bool
	quitTimeout time.Duration
	recorder    search.Recorder

	commands atomic.Uint64
	searches atomic.Uint64
	snapshot atomic.Pointer[snapshot]
}

type Option func(*Processor)

// WithLogger sets the logger for the processor and its search controller
func WithLogger(log zerolog.Logger) Option {
	return func(p *Processor) { p.log = log }
}

// WithRecorder receives a summary of every settled search
func WithRecorder(r search.Recorder) Option {
	return func(p *Processor) { p.recorder = r }
}

// WithQuitTimeout bounds how long quit waits for a running search
func WithQuitTimeout(d time.Duration) Option {
	return func(p *Processor) { p.quitTimeout = d }
}

// New creates a processor for eng that answers on out. The session starts
// Uninitialized with the registry already holding eng.Options.
func New(eng core.Engine, out *response.Writer, opts ...Option) *Processor {
	p := &Processor{
		engine:      eng,
		out:         out,
		log:         zerolog.Nop(),
		state:       core.StateUninitialized,
		position:    core.StartPosition(),
		quitTimeout: defaultQuitTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.level = p.log.GetLevel()

	p.registry = option.NewRegistry(eng, p.log)
	for _, o := range eng.Options() {
		p.registry.Register(o)
	}

	ctrlOpts := []search.Option{search.WithLogger(p.log)}
	if p.recorder != nil {
		ctrlOpts = append(ctrlOpts, search.WithRecorder(p.recorder))
	}
	p.ctrl = search.NewController(eng, out, ctrlOpts...)

	p.publish()
	return p
}

// State returns the current session state
func (p *Processor) State() core.State {
	return p.state
}

// Registry returns the option registry
func (p *Processor) Registry() *option.Registry {
	return p.registry
}

// Search returns the handle of the search still owed a bestmove, if any
func (p *Processor) Search() *search.Handle {
	return p.handle
}

// Execute dispatches one command and reports whether the loop should go on
func (p *Processor) Execute(cmd command.Command) bool {
	if p.state == core.StateQuitting {
		return false
	}
	p.commands.Add(1)
	p.reap()
	defer p.publish()

	log := p.log.With().Str("cmd", cmd.Keyword()).Str("state", p.state.String()).Logger()

	switch c := cmd.(type) {
	case command.Quit:
		p.shutdown("quit")
		return false

	case command.IsReady:
		p.out.ReadyOK()

	case command.Debug:
		p.setDebug(c.On)

	case command.UCI:
		if p.state != core.StateUninitialized {
			p.ignore(log, "already initialized")
			break
		}
		p.handleUCI()

	case command.Unknown:
		log.Debug().Str("line", c.Line).Str("reason", c.Reason).Msg("unreadable input")
		p.diagnose("ignored: " + c.Reason)

	default:
		switch p.state {
		case core.StateUninitialized:
			p.ignore(log, "uci has not been received")
		case core.StateReady:
			p.handleReady(log, cmd)
		case core.StateSearching, core.StatePondering:
			p.handleSearching(log, cmd)
		}
	}
	return true
}

func (p *Processor) handleUCI() {
	name, author := p.engine.Identify()
	p.out.ID(name, author)
	for _, o := range p.registry.Declarations() {
		p.out.Option(o)
	}
	p.out.UCIOK()

	if err := p.engine.SetPosition(p.position); err != nil {
		p.log.Error().Err(err).Msg("engine refused the starting position")
	}
	p.state = core.StateReady
}

func (p *Processor) handleReady(log zerolog.Logger, cmd command.Command) {
	switch c := cmd.(type) {
	case command.SetOption:
		if err := p.registry.Apply(c.Name, c.Value); err != nil {
			log.Debug().Err(err).Str("option", c.Name).Str("value", c.Value).Msg("option dropped")
			p.diagnose("option dropped: " + err.Error())
		}

	case command.NewGame:
		if err := p.engine.NewGame(); err != nil {
			log.Error().Err(err).Msg("new game failed")
		}
		p.position = core.StartPosition()
		if err := p.engine.SetPosition(p.position); err != nil {
			log.Error().Err(err).Msg("engine refused the starting position")
		}

	case command.Position:
		if err := p.engine.SetPosition(c.Position); err != nil {
			log.Debug().Err(err).Str("position", c.Position.String()).Msg("position rejected")
			p.diagnose("position rejected: " + err.Error())
			break
		}
		p.position = c.Position

	case command.Go:
		h, err := p.ctrl.Start(p.position, c.Config)
		if err != nil {
			log.Warn().Err(err).Msg("search not started")
			break
		}
		p.handle = h
		p.searches.Add(1)
		p.state = core.StateSearching
		if c.Config.Ponder {
			p.state = core.StatePondering
		}

	case command.Stop, command.PonderHit:
		p.ignore(log, "no search is running")

	case command.Register:
		log.Info().Bool("later", c.Later).Str("name", c.Name).Msg("registration noted")

	default:
		p.ignore(log, "not handled when ready")
	}
}

func (p *Processor) handleSearching(log zerolog.Logger, cmd command.Command) {
	switch cmd.(type) {
	case command.Stop:
		p.ctrl.Cancel(p.handle)

	case command.PonderHit:
		if p.state != core.StatePondering {
			p.ignore(log, "not pondering")
			break
		}
		if p.ctrl.PonderHit(p.handle) {
			p.state = core.StateSearching
		}

	case command.Go:
		log.Warn().Str("search_id", p.handle.ID()).Msg("go while searching dropped")
		p.diagnose("go dropped: search " + p.handle.ID() + " still running")

	default:
		p.ignore(log, "search in progress")
	}
}

// reap returns to Ready once the running search has written its bestmove
func (p *Processor) reap() {
	if p.handle != nil && p.handle.Settled() {
		p.handle = nil
		if p.state.Active() {
			p.state = core.StateReady
		}
	}
}

// shutdown forfeits any running search and waits for the engine to let go
func (p *Processor) shutdown(reason string) {
	if h := p.handle; h != nil && !h.Settled() {
		p.ctrl.Forfeit(h)
		if _, ok := p.ctrl.Await(h, p.quitTimeout); !ok {
			p.log.Warn().Str("search_id", h.ID()).Dur("timeout", p.quitTimeout).Msg("engine did not stop, exiting anyway")
		}
	}
	p.handle = nil
	p.state = core.StateQuitting
	p.publish()
	p.log.Info().Str("reason", reason).Msg("session ended")
}

func (p *Processor) setDebug(on bool) {
	p.debug = on
	if on && p.level > zerolog.DebugLevel {
		p.log = p.log.Level(zerolog.DebugLevel)
	} else if !on {
		p.log = p.log.Level(p.level)
	}
}

func (p *Processor) ignore(log zerolog.Logger, why string) {
	log.Debug().Msg("command ignored: " + why)
	p.diagnose("ignored " + why)
}

// diagnose echoes to the frontend only in debug mode
func (p *Processor) diagnose(msg string) {
	if p.debug {
		p.out.InfoString(msg)
	}
}

// Close ends the session as end of input would
func (p *Processor) Close() {
	if p.state != core.StateQuitting {
		p.shutdown("end of input")
	}
}

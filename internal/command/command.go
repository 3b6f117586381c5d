// FILE: internal/command/command.go
package command

import "gambit/internal/core"

// Command is one parsed input line. The set of implementations is closed;
// dispatch switches over the concrete types.
type Command interface {
	Keyword() string
	command()
}

type UCI struct{}

type Debug struct {
	On bool
}

type IsReady struct{}

// SetOption keeps the raw value; the option registry interprets it
type SetOption struct {
	Name     string
	Value    string
	HasValue bool
}

type Register struct {
	Later bool
	Name  string
	Code  string
}

type NewGame struct{}

type Position struct {
	Position core.Position
}

type Go struct {
	Config core.SearchConfig
}

type Stop struct{}

type PonderHit struct{}

type Quit struct{}

// Unknown is any line that is not a well-formed command
type Unknown struct {
	Line   string
	Reason string
}

func (UCI) Keyword() string       { return "uci" }
func (Debug) Keyword() string     { return "debug" }
func (IsReady) Keyword() string   { return "isready" }
func (SetOption) Keyword() string { return "setoption" }
func (Register) Keyword() string  { return "register" }
func (NewGame) Keyword() string   { return "ucinewgame" }
func (Position) Keyword() string  { return "position" }
func (Go) Keyword() string        { return "go" }
func (Stop) Keyword() string      { return "stop" }
func (PonderHit) Keyword() string { return "ponderhit" }
func (Quit) Keyword() string      { return "quit" }
func (Unknown) Keyword() string   { return "unknown" }

func (UCI) command()       {}
func (Debug) command()     {}
func (IsReady) command()   {}
func (SetOption) command() {}
func (Register) command()  {}
func (NewGame) command()   {}
func (Position) command()  {}
func (Go) command()        {}
func (Stop) command()      {}
func (PonderHit) command() {}
func (Quit) command()      {}
func (Unknown) command()   {}

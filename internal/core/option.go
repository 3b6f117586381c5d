// FILE: internal/core/option.go
package core

import "strconv"

type OptionType int

const (
	OptionCheck OptionType = iota
	OptionSpin
	OptionCombo
	OptionButton
	OptionString
)

func (t OptionType) String() string {
	switch t {
	case OptionCheck:
		return "check"
	case OptionSpin:
		return "spin"
	case OptionCombo:
		return "combo"
	case OptionButton:
		return "button"
	case OptionString:
		return "string"
	default:
		return "unknown"
	}
}

// EngineOption declares one configurable engine setting.
// Default is kept in its protocol spelling; Min, Max apply to spin and Vars to combo.
type EngineOption struct {
	Name    string
	Type    OptionType
	Default string
	Min     int
	Max     int
	Vars    []string
}

// CheckOption declares a boolean option
func CheckOption(name string, def bool) EngineOption {
	return EngineOption{Name: name, Type: OptionCheck, Default: strconv.FormatBool(def)}
}

// SpinOption declares an integer option in [lo, hi]
func SpinOption(name string, def, lo, hi int) EngineOption {
	return EngineOption{Name: name, Type: OptionSpin, Default: strconv.Itoa(def), Min: lo, Max: hi}
}

// ComboOption declares a choice among vars
func ComboOption(name, def string, vars ...string) EngineOption {
	return EngineOption{Name: name, Type: OptionCombo, Default: def, Vars: vars}
}

// ButtonOption declares a value-less option
func ButtonOption(name string) EngineOption {
	return EngineOption{Name: name, Type: OptionButton}
}

// StringOption declares a free text option
func StringOption(name, def string) EngineOption {
	return EngineOption{Name: name, Type: OptionString, Default: def}
}

// ButtonPress is the value forwarded when a button option is set
type ButtonPress struct{}

// Title is the opponent's chess title in UCI_Opponent
type Title string

const (
	TitleNone Title = "none"
	TitleGM   Title = "GM"
	TitleIM   Title = "IM"
	TitleFM   Title = "FM"
	TitleWGM  Title = "WGM"
	TitleWIM  Title = "WIM"
)

// Opponent is the parsed value of UCI_Opponent
type Opponent struct {
	Title    Title
	Elo      Opt[int]
	Computer bool
	Name     string
}

// PositionValue is the parsed value of UCI_SetPositionValue.
// ClearAll drops every stored value; Clear drops the one for FEN.
type PositionValue struct {
	FEN      string
	Value    int
	Clear    bool
	ClearAll bool
}

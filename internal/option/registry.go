// FILE: internal/option/registry.go
package option

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"gambit/internal/core"
)

// Applier receives validated, typed option values
type Applier interface {
	ApplyOption(name string, value any) error
}

// Registry holds the declared options and their current values.
// Lookups ignore case; option names may contain spaces.
type Registry struct {
	mu      sync.RWMutex
	order   []string
	entries map[string]*entry
	target  Applier
	log     zerolog.Logger
}

type entry struct {
	decl  core.EngineOption
	value string
}

// NewRegistry creates an empty registry that forwards applied values to target
func NewRegistry(target Applier, log zerolog.Logger) *Registry {
	return &Registry{
		entries: make(map[string]*entry),
		target:  target,
		log:     log,
	}
}

// Register declares an option. Declaring the same name again replaces it.
func (r *Registry) Register(opt core.EngineOption) {
	if err := checkDeclaration(opt); err != nil {
		r.log.Warn().Err(err).Str("option", opt.Name).Msg("option declared with inconsistent default")
	}

	key := strings.ToLower(opt.Name)
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[key]; !exists {
		r.order = append(r.order, key)
	}
	r.entries[key] = &entry{decl: opt, value: opt.Default}
}

// Apply validates value against the option and forwards the typed value.
// On any error the previous value stays in effect.
func (r *Registry) Apply(name, value string) error {
	r.mu.RLock()
	e, ok := r.entries[strings.ToLower(name)]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %q", core.ErrUnknownOption, name)
	}

	typed, err := convert(e.decl, value)
	if err != nil {
		return err
	}
	if err := r.target.ApplyOption(e.decl.Name, typed); err != nil {
		return fmt.Errorf("apply %s: %w", e.decl.Name, err)
	}

	if e.decl.Type != core.OptionButton {
		r.mu.Lock()
		e.value = canonical(e.decl, typed)
		r.mu.Unlock()
	}
	r.log.Debug().Str("option", e.decl.Name).Str("value", value).Msg("option applied")
	return nil
}

// Declarations lists options in registration order
func (r *Registry) Declarations() []core.EngineOption {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]core.EngineOption, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.entries[key].decl)
	}
	return out
}

// Value returns the current value in protocol spelling
func (r *Registry) Value(name string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[strings.ToLower(name)]
	if !ok {
		return "", false
	}
	return e.value, true
}

// Values snapshots every non-button option by declared name
func (r *Registry) Values() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]string, len(r.entries))
	for _, e := range r.entries {
		if e.decl.Type != core.OptionButton {
			out[e.decl.Name] = e.value
		}
	}
	return out
}

func convert(decl core.EngineOption, value string) (any, error) {
	switch decl.Type {
	case core.OptionCheck:
		switch {
		case strings.EqualFold(value, "true"):
			return true, nil
		case strings.EqualFold(value, "false"):
			return false, nil
		}
		return nil, fmt.Errorf("%w: %s expects true or false, got %q", core.ErrInvalidValue, decl.Name, value)

	case core.OptionSpin:
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("%w: %s expects an integer, got %q", core.ErrInvalidValue, decl.Name, value)
		}
		if n < decl.Min || n > decl.Max {
			return nil, fmt.Errorf("%w: %s must be within [%d, %d], got %d", core.ErrInvalidValue, decl.Name, decl.Min, decl.Max, n)
		}
		return n, nil

	case core.OptionCombo:
		for _, v := range decl.Vars {
			if strings.EqualFold(v, value) {
				return v, nil
			}
		}
		return nil, fmt.Errorf("%w: %s does not allow %q", core.ErrInvalidValue, decl.Name, value)

	case core.OptionButton:
		return core.ButtonPress{}, nil

	case core.OptionString:
		if value == EmptyValue {
			value = ""
		}
		switch {
		case strings.EqualFold(decl.Name, UCIOpponent):
			return ParseOpponent(value)
		case strings.EqualFold(decl.Name, UCISetPositionValue):
			return ParsePositionValue(value)
		}
		return value, nil

	default:
		return nil, fmt.Errorf("%w: %s has unsupported type %d", core.ErrInvalidValue, decl.Name, decl.Type)
	}
}

func canonical(decl core.EngineOption, typed any) string {
	switch v := typed.(type) {
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case string:
		return v
	case core.Opponent:
		return FormatOpponent(v)
	case core.PositionValue:
		return FormatPositionValue(v)
	default:
		return decl.Default
	}
}

func checkDeclaration(opt core.EngineOption) error {
	if opt.Name == "" {
		return fmt.Errorf("%w: empty option name", core.ErrInvalidValue)
	}
	if opt.Type == core.OptionButton {
		return nil
	}
	if opt.Type == core.OptionString && opt.Default == "" {
		return nil
	}
	_, err := convert(opt, opt.Default)
	return err
}

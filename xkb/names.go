package xkb

import (
	"fmt"
	"strings"
)

// RuleNames is the RMLVO description of a keymap. Every field is
// optional; an empty string selects the engine default.
type RuleNames struct {
	// Rules is the rules file to use.
	Rules string
	// Model is the keyboard model by which to interpret keycodes and
	// LEDs.
	Model string
	// Layout is a comma separated list of layouts (languages) to
	// include in the keymap.
	Layout string
	// Variant is a comma separated list of variants, one per layout,
	// which may modify or augment the respective layout.
	Variant string
	// Options is a comma separated list of layout-independent options,
	// like which key combination switches layouts.
	Options string
}

// Validate checks that every field can be handed to the engine as a
// NUL-terminated byte string.
func (n RuleNames) Validate() error {
	fields := map[string]string{
		"rules":   n.Rules,
		"model":   n.Model,
		"layout":  n.Layout,
		"variant": n.Variant,
		"options": n.Options,
	}
	for name, v := range fields {
		if strings.ContainsRune(v, 0) {
			return fmt.Errorf("%w: embedded NUL in %s", ErrInvalidParameter, name)
		}
	}
	return nil
}

// IsZero reports whether every field is empty, i.e. full engine defaults.
func (n RuleNames) IsZero() bool {
	return n == RuleNames{}
}

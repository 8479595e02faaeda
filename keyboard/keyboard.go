// Package keyboard interprets raw hardware key events from a display
// server into keysyms and UTF-8 text.
//
// A KeyboardState owns the engine-side resources for one logical
// keyboard: a compilation context (created once, released last), the
// currently loaded keymap with its interpretation state, a modifier
// snapshot, and an optional locale compose session. An Adapter feeds
// the state from protocol notifications and reports interpreted events
// to a Handler.
//
// The state machine tolerates concurrent use: one mutex guards all
// mutable fields, held for the duration of each query or update and
// never across a callback into consumer code.
package keyboard

import (
	"fmt"
	"sync"

	"wlkbd/internal/logging"
	"wlkbd/xkb"
)

// KeyboardState is the interpretation state machine for one keyboard.
//
// The zero value is not usable; construct with New or NewFromNames.
type KeyboardState struct {
	mu  sync.Mutex
	ctx xkb.Context

	// Replaceable pair. interp is non-nil iff a keymap is loaded.
	keymap xkb.Keymap
	interp xkb.State

	// Compose session, independent of the keymap lifetime. Both nil
	// when compose is disabled.
	composeTable xkb.ComposeTable
	compose      xkb.ComposeState

	mods Modifiers

	// locked means the keymap was specified by the caller and
	// compositor-supplied keymaps are ignored.
	locked bool

	composeLocale string
	noCompose     bool
	log           *logging.Logger
}

// Option configures a KeyboardState at construction.
type Option func(*KeyboardState)

// WithLogger routes the state's log output through l.
func WithLogger(l *logging.Logger) Option {
	return func(s *KeyboardState) { s.log = l }
}

// WithComposeLocale overrides the locale the compose table is built
// from, instead of deriving it from the environment.
func WithComposeLocale(locale string) Option {
	return func(s *KeyboardState) { s.composeLocale = locale }
}

// WithoutCompose disables dead-key composition entirely.
func WithoutCompose() Option {
	return func(s *KeyboardState) { s.noCompose = true }
}

// New creates a KeyboardState backed by the given engine. The keymap is
// expected to arrive later through LoadKeymap (normally via an
// Adapter). Returns xkb.ErrEngineNotFound when no engine is available.
func New(eng xkb.Engine, opts ...Option) (*KeyboardState, error) {
	if eng == nil {
		return nil, xkb.ErrEngineNotFound
	}
	s := &KeyboardState{}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logging.Default().WithComponent("keyboard")
	}

	ctx, err := eng.NewContext()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", xkb.ErrEngineNotFound, err)
	}
	s.ctx = ctx

	if !s.noCompose {
		s.initCompose()
	}
	return s, nil
}

// NewFromNames creates a KeyboardState with a keymap compiled from
// RMLVO rule names. The state is locked: compositor-supplied keymaps
// are ignored from then on. Returns xkb.ErrBadNames when the
// combination does not compile; nothing is constructed in that case.
func NewFromNames(eng xkb.Engine, names xkb.RuleNames, opts ...Option) (*KeyboardState, error) {
	s, err := New(eng, opts...)
	if err != nil {
		return nil, err
	}
	if err := s.LoadKeymapFromNames(names); err != nil {
		s.Close()
		return nil, err
	}
	s.mu.Lock()
	s.locked = true
	s.mu.Unlock()
	return s, nil
}

// LoadKeymap replaces the current keymap with one compiled from a
// serialized description. Format None is accepted as a no-op
// (compositors are not expected to send it). A compile failure returns
// an error wrapping xkb.ErrMalformedKeymap and leaves any previously
// loaded keymap in effect.
func (s *KeyboardState) LoadKeymap(data []byte, format xkb.KeymapFormat) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch format {
	case xkb.KeymapFormatNone:
		s.log.Debug("ignoring no-keymap notification")
		return nil
	case xkb.KeymapFormatTextV1:
	default:
		return fmt.Errorf("%w: keymap format %d", xkb.ErrMalformedKeymap, format)
	}

	km, err := s.ctx.KeymapFromBytes(data)
	if err != nil {
		s.log.Warn("keymap compilation failed", "error", err, "bytes", len(data))
		return fmt.Errorf("%w: %v", xkb.ErrMalformedKeymap, err)
	}
	return s.install(km)
}

// LoadKeymapFromNames replaces the current keymap with one compiled
// from RMLVO rule names. A failure returns an error wrapping
// xkb.ErrBadNames and leaves any previously loaded keymap untouched.
func (s *KeyboardState) LoadKeymapFromNames(names xkb.RuleNames) error {
	if err := names.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	km, err := s.ctx.KeymapFromNames(names)
	if err != nil {
		s.log.Warn("rule names rejected", "error", err, "layout", names.Layout)
		return fmt.Errorf("%w: %v", xkb.ErrBadNames, err)
	}
	return s.install(km)
}

// install makes km the active keymap. The old interpretation state and
// keymap are released first, so no two interpretation states ever
// coexist. Caller holds s.mu.
func (s *KeyboardState) install(km xkb.Keymap) error {
	s.releaseKeymap()

	interp, err := km.NewState()
	if err != nil {
		km.Release()
		return fmt.Errorf("%w: %v", xkb.ErrMalformedKeymap, err)
	}
	s.keymap = km
	s.interp = interp
	s.mods.update(interp)
	s.log.Debug("keymap installed")
	return nil
}

// releaseKeymap tears down the interpretation state and keymap, in that
// order. Caller holds s.mu.
func (s *KeyboardState) releaseKeymap() {
	if s.interp != nil {
		s.interp.Release()
		s.interp = nil
	}
	if s.keymap != nil {
		s.keymap.Release()
		s.keymap = nil
	}
}

// ready reports whether a keymap has been loaded. Caller holds s.mu.
func (s *KeyboardState) ready() bool {
	return s.interp != nil
}

// Ready reports whether a keymap has been loaded and interpretation is
// possible.
func (s *KeyboardState) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready()
}

// Locked reports whether compositor-supplied keymaps are ignored
// because the keymap was specified by the caller.
func (s *KeyboardState) Locked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.locked
}

// Close releases every engine resource the state owns: interpretation
// state, keymap, compose state, compose table, and the context last.
// The state must not be used afterwards. Close is idempotent.
func (s *KeyboardState) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.releaseKeymap()
	s.releaseCompose()
	if s.ctx != nil {
		s.ctx.Release()
		s.ctx = nil
	}
}

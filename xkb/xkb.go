// Package xkb defines the capability surface the keyboard core consumes
// from a keymap interpretation engine.
//
// The core never talks to a concrete engine directly. Everything it needs
// is expressed as a small set of opaque handle interfaces mirroring the
// engine's object model:
//   - Context: compilation context, owns engine-global data
//   - Keymap: compiled keymap, produced from bytes or from rule names
//   - State: interpretation state derived from a keymap
//   - ComposeTable / ComposeState: locale compose (dead key) machinery
//
// Locating and loading a real engine is the embedder's problem; this
// package only fixes the contract. SimEngine provides a self-contained
// in-memory implementation for tests.
package xkb

// Engine is the entry point of an interpretation engine.
type Engine interface {
	// NewContext creates a fresh compilation context.
	NewContext() (Context, error)
}

// Context is an engine compilation context. It outlives every keymap and
// state derived from it and must be released last.
type Context interface {
	// KeymapFromBytes compiles a keymap from a serialized text-v1
	// description. The data may contain or end with a NUL byte.
	KeymapFromBytes(data []byte) (Keymap, error)

	// KeymapFromNames compiles a keymap from RMLVO rule names. Empty
	// fields select engine defaults.
	KeymapFromNames(names RuleNames) (Keymap, error)

	// ComposeTableFromLocale builds a compose table for the given
	// locale, e.g. "en_US.UTF-8".
	ComposeTableFromLocale(locale string) (ComposeTable, error)

	Release()
}

// Keymap is a compiled keymap.
type Keymap interface {
	// NewState derives a fresh interpretation state.
	NewState() (State, error)

	Release()
}

// State is the interpretation state for one keyboard.
type State interface {
	// UpdateMask folds raw modifier masks and the layout group into the
	// state and reports which components changed.
	UpdateMask(depressed, latched, locked, group uint32) StateComponent

	// ModNameIsActive reports whether the named modifier is active in
	// the given component of the state.
	ModNameIsActive(name string, component StateComponent) bool

	// KeyGetOneSym resolves a keycode (engine keycode, i.e. evdev+8) to
	// a single keysym. Returns 0 when the key produces no symbol or
	// more than one.
	KeyGetOneSym(keycode uint32) uint32

	// KeyGetUTF8 is the engine's two-phase string query. With a nil buf
	// it returns the number of bytes the key's text occupies, excluding
	// the terminating NUL. With a non-nil buf it fills it, including
	// the terminator, and returns the same count.
	KeyGetUTF8(keycode uint32, buf []byte) int

	Release()
}

// ComposeTable is a compiled locale compose table.
type ComposeTable interface {
	// NewState derives a fresh compose state.
	NewState() (ComposeState, error)

	Release()
}

// ComposeState tracks one in-flight compose sequence.
type ComposeState interface {
	// Feed advances the sequence with a keysym. Modifier keysyms are
	// ignored; everything else is accepted.
	Feed(keysym uint32) FeedResult

	// Status reports the state of the current sequence. After a
	// Composed status the next Feed starts a new sequence.
	Status() ComposeStatus

	// UTF8 is the two-phase query for the composed text, valid only
	// while Status is Composed. Same convention as State.KeyGetUTF8.
	UTF8(buf []byte) int

	// Reset abandons any in-flight sequence.
	Reset()

	Release()
}

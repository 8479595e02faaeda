package xkb

import "errors"

// ErrEngineNotFound means no interpretation engine is available; keyboard
// mapping is impossible and the keyboard must be treated as raw-only.
var ErrEngineNotFound = errors.New("interpretation engine not available")

// ErrMalformedKeymap means a compositor-supplied keymap blob failed to
// compile. Recoverable: any previously loaded keymap stays in effect.
var ErrMalformedKeymap = errors.New("malformed keymap")

// ErrBadNames means an RMLVO combination resolved to no compilable keymap.
var ErrBadNames = errors.New("no keymap for the given rule names")

// ErrInvalidParameter means a caller-supplied string cannot be passed to
// the engine (e.g. an embedded NUL in an RMLVO field).
var ErrInvalidParameter = errors.New("invalid parameter")

// ErrComposeUnavailable means no compose table exists for the requested
// locale. Callers degrade to direct text resolution.
var ErrComposeUnavailable = errors.New("compose table unavailable")

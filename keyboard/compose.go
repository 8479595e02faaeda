package keyboard

import (
	"os"

	"wlkbd/xkb"
)

// composeLocaleFromEnv resolves the locale the compose table is built
// from: LC_ALL, then LC_CTYPE, then LANG, then the "C" default.
func composeLocaleFromEnv() string {
	for _, name := range []string{"LC_ALL", "LC_CTYPE", "LANG"} {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return "C"
}

// initCompose builds the compose table and state for the configured
// locale. Failure is not an error: text input stays fully functional
// through direct resolution, composition is simply unavailable. Caller
// holds s.mu or has exclusive access during construction.
func (s *KeyboardState) initCompose() {
	locale := s.composeLocale
	if locale == "" {
		locale = composeLocaleFromEnv()
	}

	table, err := s.ctx.ComposeTableFromLocale(locale)
	if err != nil {
		s.log.Debug("compose disabled", "locale", locale, "error", err)
		return
	}
	state, err := table.NewState()
	if err != nil {
		table.Release()
		s.log.Debug("compose disabled", "locale", locale, "error", err)
		return
	}
	s.composeTable = table
	s.compose = state
}

// releaseCompose tears down the compose state and table. Caller holds
// s.mu.
func (s *KeyboardState) releaseCompose() {
	if s.compose != nil {
		s.compose.Release()
		s.compose = nil
	}
	if s.composeTable != nil {
		s.composeTable.Release()
		s.composeTable = nil
	}
}

// ComposeEnabled reports whether a compose session is active.
func (s *KeyboardState) ComposeEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.compose != nil
}

// ReloadCompose rebuilds the compose session from the current locale.
// Used after the user's compose file changed on disk. Any in-flight
// sequence is abandoned; a rebuild failure disables compose.
func (s *KeyboardState) ReloadCompose() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.noCompose {
		return
	}
	s.releaseCompose()
	s.initCompose()
}

// feedCompose feeds a keysym into the compose session on key press.
// accepted is the engine's verdict; enabled is false when there is no
// session at all. Caller holds s.mu.
func (s *KeyboardState) feedCompose(keysym uint32) (accepted, enabled bool) {
	if s.compose == nil {
		return false, false
	}
	return s.compose.Feed(keysym) == xkb.FeedAccepted, true
}

// composeStatus reports the compose sequence state, or ComposeNothing
// when compose is disabled. Caller holds s.mu.
func (s *KeyboardState) composeStatus() xkb.ComposeStatus {
	if s.compose == nil {
		return xkb.ComposeNothing
	}
	return s.compose.Status()
}

// composedText returns the text of a completed sequence, using the same
// two-phase query as direct resolution. Valid only while the status is
// Composed. Caller holds s.mu.
func (s *KeyboardState) composedText() (string, bool) {
	if s.compose == nil {
		return "", false
	}
	size := s.compose.UTF8(nil) + 1
	if size <= 1 {
		return "", false
	}
	buf := make([]byte, size)
	s.compose.UTF8(buf)
	return string(buf[:size-1]), true
}

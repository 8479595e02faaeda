package keyboard

import "wlkbd/xkb"

// Keycodes on the wire are raw evdev codes; the engine expects them
// offset by xkb.EvdevOffset. The offset is applied here, and only here.

// Keysym resolves a raw wire keycode to a single keysym. Returns 0
// before a keymap is loaded, when the key produces no symbol, or when
// it produces more than one.
func (s *KeyboardState) Keysym(keycode uint32) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keysym(keycode)
}

// UTF8 resolves a raw wire keycode to the text it produces. The second
// return is false when the key produces no text or no keymap is loaded.
func (s *KeyboardState) UTF8(keycode uint32) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.utf8(keycode)
}

// keysym is Keysym without locking. Caller holds s.mu.
func (s *KeyboardState) keysym(keycode uint32) uint32 {
	if !s.ready() {
		return 0
	}
	return s.interp.KeyGetOneSym(keycode + xkb.EvdevOffset)
}

// utf8 is UTF8 without locking. Caller holds s.mu.
//
// The engine's string query is two-phase: a nil-buffer call reports the
// byte count excluding the terminator, then a buffer of count+1 bytes
// is filled, terminator included. The engine guarantees well-formed
// UTF-8, so the bytes are used as-is with the terminator stripped.
func (s *KeyboardState) utf8(keycode uint32) (string, bool) {
	if !s.ready() {
		return "", false
	}
	code := keycode + xkb.EvdevOffset
	size := s.interp.KeyGetUTF8(code, nil) + 1
	if size <= 1 {
		return "", false
	}
	buf := make([]byte, size)
	s.interp.KeyGetUTF8(code, buf)
	return string(buf[:size-1]), true
}

package keyboard

import "wlkbd/xkb"

// Modifiers is a snapshot of the keyboard's modifier state. Each field
// is true while the corresponding modifier is active for
// interpretation, whether held (shift, ctrl) or toggled (caps lock,
// num lock).
type Modifiers struct {
	// Ctrl is the "control" key.
	Ctrl bool
	// Alt is the "alt" key.
	Alt bool
	// Shift is the "shift" key.
	Shift bool
	// CapsLock is the "caps lock" toggle.
	CapsLock bool
	// Logo is the "logo" key, usually labeled with a vendor mark.
	Logo bool
	// NumLock is the "num lock" toggle.
	NumLock bool
}

// update re-derives every field from the interpretation state's
// effective modifier component.
func (m *Modifiers) update(st xkb.State) {
	m.Ctrl = st.ModNameIsActive(xkb.ModNameCtrl, xkb.StateModsEffective)
	m.Alt = st.ModNameIsActive(xkb.ModNameAlt, xkb.StateModsEffective)
	m.Shift = st.ModNameIsActive(xkb.ModNameShift, xkb.StateModsEffective)
	m.CapsLock = st.ModNameIsActive(xkb.ModNameCaps, xkb.StateModsEffective)
	m.Logo = st.ModNameIsActive(xkb.ModNameLogo, xkb.StateModsEffective)
	m.NumLock = st.ModNameIsActive(xkb.ModNameNum, xkb.StateModsEffective)
}

// Modifiers returns the current modifier snapshot.
func (s *KeyboardState) Modifiers() Modifiers {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mods
}

// UpdateModifiers folds the raw modifier masks and layout group from a
// protocol notification into the interpretation state. The six named
// booleans are recomputed only when the effective modifier component
// actually changed. No-op before a keymap is loaded.
func (s *KeyboardState) UpdateModifiers(depressed, latched, locked, group uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ready() {
		return
	}
	changed := s.interp.UpdateMask(depressed, latched, locked, group)
	if changed.Has(xkb.StateModsEffective) {
		s.mods.update(s.interp)
	}
}

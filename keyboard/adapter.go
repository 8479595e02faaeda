package keyboard

import (
	"sync"

	"wlkbd/xkb"
)

// KeyState is the press/release flag of a key notification.
type KeyState uint32

const (
	// KeyReleased means the key is no longer held.
	KeyReleased KeyState = 0
	// KeyPressed means the key is held down.
	KeyPressed KeyState = 1
)

func (k KeyState) String() string {
	if k == KeyPressed {
		return "pressed"
	}
	return "released"
}

// KeyEvent is one interpreted key notification.
type KeyEvent struct {
	Serial  uint32
	Time    uint32
	Keycode uint32 // raw wire keycode
	Keysym  uint32 // 0 when unmapped or ambiguous
	State   KeyState
	// Text is the UTF-8 the key produced, empty for releases, keys
	// without text, and mid-compose presses.
	Text      string
	Modifiers Modifiers
}

// EnterEvent reports keyboard focus gained on a surface, with the keys
// already held at that moment.
type EnterEvent struct {
	Serial    uint32
	Surface   uint32
	Keycodes  []uint32 // raw wire keycodes of held keys
	Keysyms   []uint32 // resolved, same order as Keycodes
	Modifiers Modifiers
}

// LeaveEvent reports keyboard focus lost on a surface.
type LeaveEvent struct {
	Serial  uint32
	Surface uint32
}

// RepeatInfo carries the compositor's key repeat parameters.
type RepeatInfo struct {
	// Rate is repeats per second; 0 disables repeat.
	Rate int32
	// Delay is milliseconds a key must be held before repeating.
	Delay int32
}

// Handler receives interpreted keyboard events. Implementations embed
// NoopHandler and override the methods they care about; any state they
// need travels inside the implementation itself.
type Handler interface {
	Enter(EnterEvent)
	Leave(LeaveEvent)
	Key(KeyEvent)
	RepeatInfo(RepeatInfo)
}

// NoopHandler implements Handler with empty methods, for embedding.
type NoopHandler struct{}

func (NoopHandler) Enter(EnterEvent)      {}
func (NoopHandler) Leave(LeaveEvent)      {}
func (NoopHandler) Key(KeyEvent)          {}
func (NoopHandler) RepeatInfo(RepeatInfo) {}

// Adapter translates the display protocol's keyboard notifications into
// operations on a KeyboardState and forwards interpreted results to a
// Handler. One adapter per keyboard; notifications are expected in
// protocol order. The state's lock is never held across a handler
// callback.
type Adapter struct {
	state *KeyboardState

	mu      sync.Mutex
	handler Handler
}

// NewAdapter binds a state to a handler.
func NewAdapter(state *KeyboardState, h Handler) *Adapter {
	return &Adapter{state: state, handler: h}
}

// Detach stops all further emission to the handler. The underlying
// interpretation state stays loaded and can be re-attached to.
func (a *Adapter) Detach() {
	a.mu.Lock()
	a.handler = nil
	a.mu.Unlock()
}

// Attach replaces the handler. Attaching nil is equivalent to Detach.
func (a *Adapter) Attach(h Handler) {
	a.mu.Lock()
	a.handler = h
	a.mu.Unlock()
}

func (a *Adapter) currentHandler() Handler {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.handler
}

// State returns the adapter's keyboard state.
func (a *Adapter) State() *KeyboardState {
	return a.state
}

// Keymap handles a keymap notification. fd references a read-only
// memory region of exactly size bytes holding the serialized keymap;
// the adapter consumes the descriptor either way. A locked state
// ignores the notification. A malformed keymap is reported as an error
// and the previous keymap, if any, stays in effect.
func (a *Adapter) Keymap(format xkb.KeymapFormat, fd int, size uint32) error {
	if a.state.Locked() {
		closeKeymapFD(fd)
		return nil
	}
	if format == xkb.KeymapFormatNone {
		closeKeymapFD(fd)
		return a.state.LoadKeymap(nil, format)
	}

	data, err := readKeymapFD(fd, size)
	if err != nil {
		return err
	}
	return a.state.LoadKeymap(data, format)
}

// Modifiers handles a modifier-mask notification.
func (a *Adapter) Modifiers(serial, depressed, latched, locked, group uint32) {
	_ = serial
	a.state.UpdateModifiers(depressed, latched, locked, group)
}

// Key handles a key notification, applying the composition policy:
// on press the resolved keysym is fed to the compose session first and
// direct resolution is the fallback; releases never produce text.
func (a *Adapter) Key(serial, timeMs, keycode uint32, state KeyState) {
	s := a.state
	s.mu.Lock()
	sym := s.keysym(keycode)

	var text string
	if state == KeyPressed {
		accepted, enabled := s.feedCompose(sym)
		switch {
		case !enabled, !accepted:
			text, _ = s.utf8(keycode)
		default:
			switch s.composeStatus() {
			case xkb.ComposeComposed:
				text, _ = s.composedText()
			case xkb.ComposeNothing:
				text, _ = s.utf8(keycode)
			default:
				// Mid-sequence or cancelled: no text for this event.
			}
		}
	}
	mods := s.mods
	s.mu.Unlock()

	h := a.currentHandler()
	if h == nil {
		return
	}
	h.Key(KeyEvent{
		Serial:    serial,
		Time:      timeMs,
		Keycode:   keycode,
		Keysym:    sym,
		State:     state,
		Text:      text,
		Modifiers: mods,
	})
}

// Enter handles a focus-gained notification, resolving a keysym for
// every key already held.
func (a *Adapter) Enter(serial, surface uint32, keycodes []uint32) {
	s := a.state
	s.mu.Lock()
	syms := make([]uint32, len(keycodes))
	for i, code := range keycodes {
		syms[i] = s.keysym(code)
	}
	mods := s.mods
	s.mu.Unlock()

	h := a.currentHandler()
	if h == nil {
		return
	}
	h.Enter(EnterEvent{
		Serial:    serial,
		Surface:   surface,
		Keycodes:  keycodes,
		Keysyms:   syms,
		Modifiers: mods,
	})
}

// Leave handles a focus-lost notification.
func (a *Adapter) Leave(serial, surface uint32) {
	h := a.currentHandler()
	if h == nil {
		return
	}
	h.Leave(LeaveEvent{Serial: serial, Surface: surface})
}

// RepeatInfo passes the compositor's repeat parameters through
// unchanged.
func (a *Adapter) RepeatInfo(rate, delay int32) {
	h := a.currentHandler()
	if h == nil {
		return
	}
	h.RepeatInfo(RepeatInfo{Rate: rate, Delay: delay})
}

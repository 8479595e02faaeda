package keyboard

import (
	"testing"

	"wlkbd/xkb"
)

type recordingHandler struct {
	NoopHandler
	keys    []KeyEvent
	enters  []EnterEvent
	leaves  []LeaveEvent
	repeats []RepeatInfo
}

func (h *recordingHandler) Key(e KeyEvent)          { h.keys = append(h.keys, e) }
func (h *recordingHandler) Enter(e EnterEvent)      { h.enters = append(h.enters, e) }
func (h *recordingHandler) Leave(e LeaveEvent)      { h.leaves = append(h.leaves, e) }
func (h *recordingHandler) RepeatInfo(r RepeatInfo) { h.repeats = append(h.repeats, r) }

func newTestAdapter(t *testing.T) (*recordingHandler, *Adapter) {
	t.Helper()
	_, s := newLoadedState(t)
	h := &recordingHandler{}
	return h, NewAdapter(s, h)
}

func press(a *Adapter, serial uint32, keycode uint32) {
	a.Key(serial, serial*10, keycode, KeyPressed)
}

func release(a *Adapter, serial uint32, keycode uint32) {
	a.Key(serial, serial*10, keycode, KeyReleased)
}

func lastKey(t *testing.T, h *recordingHandler) KeyEvent {
	t.Helper()
	if len(h.keys) == 0 {
		t.Fatal("no key events recorded")
	}
	return h.keys[len(h.keys)-1]
}

func TestAdapterPlainKey(t *testing.T) {
	h, a := newTestAdapter(t)

	press(a, 1, keyA)
	e := lastKey(t, h)
	if e.Keysym != 'a' || e.Text != "a" || e.State != KeyPressed {
		t.Errorf("press = %+v, want sym 'a', text \"a\"", e)
	}
	if e.Keycode != keyA || e.Serial != 1 || e.Time != 10 {
		t.Errorf("metadata not threaded through: %+v", e)
	}

	release(a, 2, keyA)
	e = lastKey(t, h)
	if e.State != KeyReleased || e.Text != "" {
		t.Errorf("release = %+v, want no text", e)
	}
	if e.Keysym != 'a' {
		t.Errorf("release sym = %#x, want 'a'", e.Keysym)
	}
}

func TestAdapterComposeSequence(t *testing.T) {
	h, a := newTestAdapter(t)

	// Dead acute press: accepted, mid-sequence, no text.
	press(a, 1, keyDeadAcute)
	e := lastKey(t, h)
	if e.Text != "" {
		t.Errorf("dead key press produced text %q", e.Text)
	}
	if e.Keysym != xkb.KeysymDeadAcute {
		t.Errorf("dead key sym = %#x", e.Keysym)
	}
	release(a, 2, keyDeadAcute)

	// Completing press: composed text, not the direct resolution.
	press(a, 3, keyE)
	e = lastKey(t, h)
	if e.Text != "é" {
		t.Errorf("composed text = %q, want é", e.Text)
	}
	if e.Keysym != 'e' {
		t.Errorf("composed press sym = %#x, want 'e'", e.Keysym)
	}

	// The session reset implicitly: the same key now resolves direct.
	press(a, 4, keyE)
	if e := lastKey(t, h); e.Text != "e" {
		t.Errorf("post-compose press text = %q, want e", e.Text)
	}
}

func TestAdapterComposeCancelled(t *testing.T) {
	h, a := newTestAdapter(t)

	press(a, 1, keyDeadAcute)
	press(a, 2, keyZ) // no dead_acute+z sequence
	e := lastKey(t, h)
	if e.Text != "" {
		t.Errorf("cancelling press produced text %q", e.Text)
	}

	// The cancelled sequence is gone; the same keycode resolves to
	// its plain text now.
	press(a, 3, keyZ)
	if e := lastKey(t, h); e.Text != "z" {
		t.Errorf("press after cancel = %q, want z", e.Text)
	}
}

func TestAdapterComposeRejectedFeed(t *testing.T) {
	h, a := newTestAdapter(t)

	// Shift's keysym is ignored by the compose automaton, so the
	// event falls back to direct resolution (which yields no text for
	// a modifier).
	press(a, 1, keyDeadAcute)
	press(a, 2, keyShift)
	e := lastKey(t, h)
	if e.Text != "" {
		t.Errorf("shift press produced text %q", e.Text)
	}

	// The sequence is still pending: shift did not cancel it.
	press(a, 3, keyE)
	if e := lastKey(t, h); e.Text != "é" {
		t.Errorf("composed text after modifier = %q, want é", e.Text)
	}
}

func TestAdapterComposeDisabledFallsBack(t *testing.T) {
	eng := &xkb.SimEngine{ComposeUnavailable: true}
	s, err := New(eng)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(s.Close)
	if err := s.LoadKeymap(testKeymap, xkb.KeymapFormatTextV1); err != nil {
		t.Fatalf("LoadKeymap failed: %v", err)
	}
	h := &recordingHandler{}
	a := NewAdapter(s, h)

	press(a, 1, keyE)
	if e := lastKey(t, h); e.Text != "e" {
		t.Errorf("text without compose = %q, want e", e.Text)
	}
}

func TestAdapterModifiersInKeyEvents(t *testing.T) {
	h, a := newTestAdapter(t)

	a.Modifiers(1, 1<<0, 0, 0, 0) // depressed shift
	press(a, 2, keyA)
	e := lastKey(t, h)
	if !e.Modifiers.Shift {
		t.Error("shift not reflected in key event snapshot")
	}
	if e.Keysym != 'A' || e.Text != "A" {
		t.Errorf("shifted press = sym %#x text %q, want 'A'", e.Keysym, e.Text)
	}
}

func TestAdapterEnterLeave(t *testing.T) {
	h, a := newTestAdapter(t)

	a.Modifiers(1, 1<<0, 0, 0, 0)
	a.Enter(2, 7, []uint32{keyA, keyE})
	if len(h.enters) != 1 {
		t.Fatalf("enter events = %d, want 1", len(h.enters))
	}
	enter := h.enters[0]
	if enter.Surface != 7 || enter.Serial != 2 {
		t.Errorf("enter metadata = %+v", enter)
	}
	if len(enter.Keysyms) != 2 || enter.Keysyms[0] != 'A' || enter.Keysyms[1] != 'E' {
		t.Errorf("enter keysyms = %#x, want shifted A and E", enter.Keysyms)
	}
	if !enter.Modifiers.Shift {
		t.Error("enter must carry the current modifier snapshot")
	}

	a.Leave(3, 7)
	if len(h.leaves) != 1 || h.leaves[0].Surface != 7 {
		t.Errorf("leave events = %+v", h.leaves)
	}
}

func TestAdapterRepeatInfoPassthrough(t *testing.T) {
	h, a := newTestAdapter(t)

	a.RepeatInfo(25, 600)
	if len(h.repeats) != 1 {
		t.Fatalf("repeat events = %d, want 1", len(h.repeats))
	}
	if r := h.repeats[0]; r.Rate != 25 || r.Delay != 600 {
		t.Errorf("repeat info = %+v, want rate 25 delay 600", r)
	}
}

func TestAdapterBeforeKeymap(t *testing.T) {
	eng := &xkb.SimEngine{}
	s, err := New(eng)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(s.Close)
	h := &recordingHandler{}
	a := NewAdapter(s, h)

	press(a, 1, keyA)
	e := lastKey(t, h)
	if e.Keysym != 0 || e.Text != "" {
		t.Errorf("pre-keymap press = %+v, want empty results", e)
	}
}

func TestAdapterDetach(t *testing.T) {
	h, a := newTestAdapter(t)

	press(a, 1, keyA)
	if len(h.keys) != 1 {
		t.Fatalf("key events = %d, want 1", len(h.keys))
	}

	a.Detach()
	press(a, 2, keyA)
	a.Enter(3, 7, nil)
	a.Leave(4, 7)
	a.RepeatInfo(25, 600)

	if len(h.keys) != 1 || len(h.enters) != 0 || len(h.leaves) != 0 || len(h.repeats) != 0 {
		t.Error("events emitted after Detach")
	}

	// The state itself stays loaded and usable.
	if !a.State().Ready() {
		t.Error("detach tore down the interpretation state")
	}

	// Re-attaching resumes emission.
	a.Attach(h)
	press(a, 5, keyA)
	if len(h.keys) != 2 {
		t.Errorf("key events after re-attach = %d, want 2", len(h.keys))
	}
}

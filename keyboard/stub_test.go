package keyboard

import (
	"errors"

	"wlkbd/xkb"
)

// stubEngine scripts exact engine responses for properties the sim
// cannot express, like a changed-components bitset that contradicts
// the mask values.
type stubEngine struct {
	state stubState
}

func (e *stubEngine) NewContext() (xkb.Context, error) { return (*stubContext)(e), nil }

type stubContext stubEngine

func (c *stubContext) KeymapFromBytes([]byte) (xkb.Keymap, error) {
	return (*stubKeymap)(c), nil
}

func (c *stubContext) KeymapFromNames(xkb.RuleNames) (xkb.Keymap, error) {
	return (*stubKeymap)(c), nil
}

func (c *stubContext) ComposeTableFromLocale(string) (xkb.ComposeTable, error) {
	return nil, errors.New("stub: no compose")
}

func (c *stubContext) Release() {}

type stubKeymap stubEngine

func (k *stubKeymap) NewState() (xkb.State, error) { return &k.state, nil }
func (k *stubKeymap) Release()                     {}

type stubState struct {
	// updateResult is returned by every UpdateMask call.
	updateResult xkb.StateComponent

	// active is consulted by ModNameIsActive; modQueries counts calls.
	active     map[string]bool
	modQueries int

	// oneSym and utf8Text script the resolver, keyed by engine
	// keycode (wire + offset).
	oneSym   map[uint32]uint32
	utf8Text map[uint32]string

	sizeCalls int
	fillLens  []int
}

func (s *stubState) UpdateMask(_, _, _, _ uint32) xkb.StateComponent {
	return s.updateResult
}

func (s *stubState) ModNameIsActive(name string, _ xkb.StateComponent) bool {
	s.modQueries++
	return s.active[name]
}

func (s *stubState) KeyGetOneSym(keycode uint32) uint32 {
	return s.oneSym[keycode]
}

func (s *stubState) KeyGetUTF8(keycode uint32, buf []byte) int {
	text := s.utf8Text[keycode]
	if buf == nil {
		s.sizeCalls++
		return len(text)
	}
	s.fillLens = append(s.fillLens, len(buf))
	n := copy(buf, text)
	if n < len(buf) {
		buf[n] = 0
	}
	return len(text)
}

func (s *stubState) Release() {}

// newStubState builds a KeyboardState over a stub engine with a keymap
// already installed.
func newStubState(t testingT, e *stubEngine) *KeyboardState {
	s, err := New(e, WithoutCompose())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := s.LoadKeymap([]byte("stub"), xkb.KeymapFormatTextV1); err != nil {
		t.Fatalf("LoadKeymap failed: %v", err)
	}
	return s
}

type testingT interface {
	Fatalf(format string, args ...any)
}

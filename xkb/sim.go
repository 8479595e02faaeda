package xkb

import (
	"bytes"
	"errors"
	"fmt"
	"sync"
)

// SimEngine is an in-memory Engine for testing code that drives the
// capability surface, without a native engine. It interprets a small
// US-international subset (letters, digits, space, enter, two dead keys)
// and a handful of compose sequences, and keeps allocation counters so
// tests can assert the release-exactly-once discipline.
//
// Failure knobs make the error paths reachable: set them before handing
// the engine to the code under test.
type SimEngine struct {
	// RejectKeymaps makes every KeymapFromBytes call fail.
	RejectKeymaps bool
	// RejectNames makes every KeymapFromNames call fail.
	RejectNames bool
	// ComposeUnavailable makes ComposeTableFromLocale fail.
	ComposeUnavailable bool
	// FailLocale makes ComposeTableFromLocale fail for that locale only.
	FailLocale string
	// NoContext makes NewContext fail.
	NoContext bool

	mu    sync.Mutex
	stats SimStats
}

// SimStats is a snapshot of the engine's allocation bookkeeping.
type SimStats struct {
	LiveContexts      int
	LiveKeymaps       int
	LiveStates        int
	LiveComposeTables int
	LiveComposeStates int

	KeymapsCompiled int
	StatesCreated   int
	StatesReleased  int
	KeymapsReleased int

	// DoubleReleases counts Release calls on already-released handles.
	DoubleReleases int

	// UTF8 two-phase query tracking, shared by key and compose queries.
	UTF8SizeCalls   int
	UTF8FillCalls   int
	LastUTF8Size    int
	LastUTF8FillLen int
}

// Stats returns a copy of the current counters.
func (e *SimEngine) Stats() SimStats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats
}

// SetComposeUnavailable flips the compose failure knob. Safe to call
// while other goroutines drive the engine, unlike setting the field
// directly.
func (e *SimEngine) SetComposeUnavailable(v bool) {
	e.mu.Lock()
	e.ComposeUnavailable = v
	e.mu.Unlock()
}

// NewContext implements Engine.
func (e *SimEngine) NewContext() (Context, error) {
	if e.NoContext {
		return nil, errors.New("sim: context creation disabled")
	}
	e.mu.Lock()
	e.stats.LiveContexts++
	e.mu.Unlock()
	return &simContext{eng: e}, nil
}

// SimMultiSymKey is a wire (evdev) keycode the sim maps to two keysyms,
// so KeyGetOneSym returns 0 for it.
const SimMultiSymKey uint32 = 99

// simKeys maps engine keycodes (evdev+8) to their unshifted keysym.
// Standard evdev codes for a US layout, with the apostrophe and grave
// keys carrying dead keysyms the way us(intl) defines them.
var simKeys = map[uint32]uint32{
	// KEY_1 .. KEY_0
	10: '1', 11: '2', 12: '3', 13: '4', 14: '5',
	15: '6', 16: '7', 17: '8', 18: '9', 19: '0',
	// KEY_Q .. KEY_P
	24: 'q', 25: 'w', 26: 'e', 27: 'r', 28: 't',
	29: 'y', 30: 'u', 31: 'i', 32: 'o', 33: 'p',
	// KEY_A .. KEY_L
	38: 'a', 39: 's', 40: 'd', 41: 'f', 42: 'g',
	43: 'h', 44: 'j', 45: 'k', 46: 'l',
	// KEY_Z .. KEY_M
	52: 'z', 53: 'x', 54: 'c', 55: 'v', 56: 'b', 57: 'n', 58: 'm',

	36: KeysymReturn,    // KEY_ENTER
	65: KeysymSpace,     // KEY_SPACE
	48: KeysymDeadAcute, // KEY_APOSTROPHE
	49: KeysymDeadGrave, // KEY_GRAVE
	50: keysymShiftL,    // KEY_LEFTSHIFT
	9:  KeysymEscape,    // KEY_ESC
	22: KeysymBackSpace, // KEY_BACKSPACE
}

// simComposePairs are the dead-key sequences the sim's compose table
// knows: first keysym, second keysym, result.
var simComposePairs = map[[2]uint32]string{
	{KeysymDeadAcute, 'a'}: "á",
	{KeysymDeadAcute, 'e'}: "é",
	{KeysymDeadAcute, 'i'}: "í",
	{KeysymDeadAcute, 'o'}: "ó",
	{KeysymDeadAcute, 'u'}: "ú",
	{KeysymDeadGrave, 'a'}: "à",
	{KeysymDeadGrave, 'e'}: "è",

	{KeysymDeadAcute, KeysymSpace}: "'",
	{KeysymDeadGrave, KeysymSpace}: "`",
}

type simContext struct {
	eng      *SimEngine
	released bool
}

func (c *simContext) KeymapFromBytes(data []byte) (Keymap, error) {
	c.eng.mu.Lock()
	defer c.eng.mu.Unlock()
	if c.eng.RejectKeymaps {
		return nil, errors.New("sim: keymap compilation rejected")
	}
	// A serialized keymap always opens with the xkb_keymap block.
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if !bytes.HasPrefix(trimmed, []byte("xkb_keymap")) {
		return nil, errors.New("sim: not a keymap")
	}
	c.eng.stats.KeymapsCompiled++
	c.eng.stats.LiveKeymaps++
	return &simKeymap{eng: c.eng}, nil
}

func (c *simContext) KeymapFromNames(names RuleNames) (Keymap, error) {
	c.eng.mu.Lock()
	defer c.eng.mu.Unlock()
	if c.eng.RejectNames {
		return nil, errors.New("sim: rule names rejected")
	}
	switch names.Layout {
	case "", "us":
	default:
		return nil, errors.New("sim: unknown layout " + names.Layout)
	}
	c.eng.stats.KeymapsCompiled++
	c.eng.stats.LiveKeymaps++
	return &simKeymap{eng: c.eng}, nil
}

func (c *simContext) ComposeTableFromLocale(locale string) (ComposeTable, error) {
	c.eng.mu.Lock()
	defer c.eng.mu.Unlock()
	if c.eng.ComposeUnavailable || (c.eng.FailLocale != "" && locale == c.eng.FailLocale) {
		return nil, fmt.Errorf("sim: no compose data for %s: %w", locale, ErrComposeUnavailable)
	}
	c.eng.stats.LiveComposeTables++
	return &simComposeTable{eng: c.eng}, nil
}

func (c *simContext) Release() {
	c.eng.mu.Lock()
	defer c.eng.mu.Unlock()
	if c.released {
		c.eng.stats.DoubleReleases++
		return
	}
	c.released = true
	c.eng.stats.LiveContexts--
}

type simKeymap struct {
	eng      *SimEngine
	released bool
}

func (k *simKeymap) NewState() (State, error) {
	k.eng.mu.Lock()
	defer k.eng.mu.Unlock()
	k.eng.stats.StatesCreated++
	k.eng.stats.LiveStates++
	return &simState{eng: k.eng}, nil
}

func (k *simKeymap) Release() {
	k.eng.mu.Lock()
	defer k.eng.mu.Unlock()
	if k.released {
		k.eng.stats.DoubleReleases++
		return
	}
	k.released = true
	k.eng.stats.KeymapsReleased++
	k.eng.stats.LiveKeymaps--
}

// Sim modifier mask bits, matching the usual virtual modifier layout.
const (
	simMaskShift uint32 = 1 << 0
	simMaskCaps  uint32 = 1 << 1
	simMaskCtrl  uint32 = 1 << 2
	simMaskAlt   uint32 = 1 << 3
	simMaskNum   uint32 = 1 << 4
	simMaskLogo  uint32 = 1 << 6
)

var simModMasks = map[string]uint32{
	ModNameShift: simMaskShift,
	ModNameCaps:  simMaskCaps,
	ModNameCtrl:  simMaskCtrl,
	ModNameAlt:   simMaskAlt,
	ModNameNum:   simMaskNum,
	ModNameLogo:  simMaskLogo,
}

type simState struct {
	eng      *SimEngine
	released bool

	depressed, latched, locked uint32
	group                      uint32
}

func (s *simState) effective() uint32 {
	return s.depressed | s.latched | s.locked
}

func (s *simState) UpdateMask(depressed, latched, locked, group uint32) StateComponent {
	var changed StateComponent
	oldEffective := s.effective()
	if s.depressed != depressed {
		changed |= StateModsDepressed
	}
	if s.latched != latched {
		changed |= StateModsLatched
	}
	if s.locked != locked {
		changed |= StateModsLocked
	}
	if s.group != group {
		changed |= StateLayoutEffective
	}
	s.depressed, s.latched, s.locked, s.group = depressed, latched, locked, group
	if s.effective() != oldEffective {
		changed |= StateModsEffective
	}
	return changed
}

func (s *simState) ModNameIsActive(name string, component StateComponent) bool {
	mask, ok := simModMasks[name]
	if !ok {
		return false
	}
	switch {
	case component.Has(StateModsEffective):
		return s.effective()&mask != 0
	case component.Has(StateModsDepressed):
		return s.depressed&mask != 0
	case component.Has(StateModsLatched):
		return s.latched&mask != 0
	case component.Has(StateModsLocked):
		return s.locked&mask != 0
	}
	return false
}

func (s *simState) KeyGetOneSym(keycode uint32) uint32 {
	if keycode == SimMultiSymKey+EvdevOffset {
		// Two syms on one level: no single answer.
		return 0
	}
	sym, ok := simKeys[keycode]
	if !ok {
		return 0
	}
	if sym >= 'a' && sym <= 'z' {
		shifted := s.effective()&simMaskShift != 0
		capsed := s.effective()&simMaskCaps != 0
		if shifted != capsed {
			sym -= 'a' - 'A'
		}
	}
	return sym
}

func (s *simState) KeyGetUTF8(keycode uint32, buf []byte) int {
	sym := s.KeyGetOneSym(keycode)
	return s.eng.twoPhase(symText(sym), buf)
}

func (s *simState) Release() {
	s.eng.mu.Lock()
	defer s.eng.mu.Unlock()
	if s.released {
		s.eng.stats.DoubleReleases++
		return
	}
	s.released = true
	s.eng.stats.StatesReleased++
	s.eng.stats.LiveStates--
}

// symText is the text a keysym produces on its own. Dead keys and
// modifiers produce nothing.
func symText(sym uint32) string {
	switch {
	case sym == KeysymReturn:
		return "\r"
	case sym >= 0x20 && sym <= 0x7e, sym >= 0xa0 && sym <= 0xff:
		return string(rune(sym))
	default:
		return ""
	}
}

// twoPhase implements the engine's size-then-fill string convention.
func (e *SimEngine) twoPhase(text string, buf []byte) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := len(text)
	if buf == nil {
		e.stats.UTF8SizeCalls++
		e.stats.LastUTF8Size = n
		return n
	}
	e.stats.UTF8FillCalls++
	e.stats.LastUTF8FillLen = len(buf)
	copied := copy(buf, text)
	if copied < len(buf) {
		buf[copied] = 0
	}
	return n
}

type simComposeTable struct {
	eng      *SimEngine
	released bool
}

func (t *simComposeTable) NewState() (ComposeState, error) {
	t.eng.mu.Lock()
	defer t.eng.mu.Unlock()
	t.eng.stats.LiveComposeStates++
	return &simComposeState{eng: t.eng}, nil
}

func (t *simComposeTable) Release() {
	t.eng.mu.Lock()
	defer t.eng.mu.Unlock()
	if t.released {
		t.eng.stats.DoubleReleases++
		return
	}
	t.released = true
	t.eng.stats.LiveComposeTables--
}

type simComposeState struct {
	eng      *SimEngine
	released bool

	status  ComposeStatus
	pending uint32
	result  string
}

func (s *simComposeState) Feed(sym uint32) FeedResult {
	if IsModifierKeysym(sym) {
		return FeedIgnored
	}
	if s.status == ComposeComposed || s.status == ComposeCancelled {
		// Implicit reset: the finished sequence is gone.
		s.pending = 0
		s.result = ""
	}
	if s.pending == 0 {
		if startsSequence(sym) {
			s.pending = sym
			s.status = ComposeComposing
		} else {
			s.status = ComposeNothing
		}
		return FeedAccepted
	}
	if text, ok := simComposePairs[[2]uint32{s.pending, sym}]; ok {
		s.result = text
		s.status = ComposeComposed
	} else {
		s.status = ComposeCancelled
	}
	s.pending = 0
	return FeedAccepted
}

func startsSequence(sym uint32) bool {
	for pair := range simComposePairs {
		if pair[0] == sym {
			return true
		}
	}
	return false
}

func (s *simComposeState) Status() ComposeStatus {
	return s.status
}

func (s *simComposeState) UTF8(buf []byte) int {
	if s.status != ComposeComposed {
		return s.eng.twoPhase("", buf)
	}
	return s.eng.twoPhase(s.result, buf)
}

func (s *simComposeState) Reset() {
	s.pending = 0
	s.result = ""
	s.status = ComposeNothing
}

func (s *simComposeState) Release() {
	s.eng.mu.Lock()
	defer s.eng.mu.Unlock()
	if s.released {
		s.eng.stats.DoubleReleases++
		return
	}
	s.released = true
	s.eng.stats.LiveComposeStates--
}

package xkb

// KeymapFormat identifies the serialization of a keymap sent by the
// compositor.
type KeymapFormat uint32

const (
	// KeymapFormatNone means the client must understand raw scancodes.
	KeymapFormatNone KeymapFormat = 0
	// KeymapFormatTextV1 is the libxkbcommon-compatible text format.
	KeymapFormatTextV1 KeymapFormat = 1
)

func (f KeymapFormat) String() string {
	switch f {
	case KeymapFormatNone:
		return "no-keymap"
	case KeymapFormatTextV1:
		return "xkb-v1"
	default:
		return "unknown"
	}
}

// StateComponent is a bitset of interpretation state components, as
// returned by State.UpdateMask.
type StateComponent uint32

const (
	StateModsDepressed StateComponent = 1 << iota
	StateModsLatched
	StateModsLocked
	StateModsEffective
	StateLayoutDepressed
	StateLayoutLatched
	StateLayoutLocked
	StateLayoutEffective
	StateLEDs
)

// Has reports whether all bits of c are set in s.
func (s StateComponent) Has(c StateComponent) bool {
	return s&c == c
}

// FeedResult reports whether a keysym was consumed by a compose state.
type FeedResult int

const (
	FeedIgnored FeedResult = iota
	FeedAccepted
)

// ComposeStatus is the state of a compose sequence.
type ComposeStatus int

const (
	// ComposeNothing: the last fed keysym started no sequence.
	ComposeNothing ComposeStatus = iota
	// ComposeComposing: mid-sequence, more keysyms expected.
	ComposeComposing
	// ComposeComposed: a sequence completed; UTF8 is valid.
	ComposeComposed
	// ComposeCancelled: the last keysym broke the sequence.
	ComposeCancelled
)

func (s ComposeStatus) String() string {
	switch s {
	case ComposeNothing:
		return "nothing"
	case ComposeComposing:
		return "composing"
	case ComposeComposed:
		return "composed"
	case ComposeCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Well-known modifier names, as defined by the engine's keymap data.
const (
	ModNameShift = "Shift"
	ModNameCaps  = "Lock"
	ModNameCtrl  = "Control"
	ModNameAlt   = "Mod1"
	ModNameNum   = "Mod2"
	ModNameLogo  = "Mod4"
)

// EvdevOffset is the fixed distance between evdev keycodes delivered on
// the wire and the keycodes the engine expects. The resolver applies it;
// raw wire keycodes are the public contract everywhere else.
const EvdevOffset = 8

// Keysyms the core and its tests refer to by name. Latin-1 keysyms equal
// their Unicode codepoint.
const (
	KeysymNone uint32 = 0

	KeysymSpace      uint32 = 0x0020
	KeysymApostrophe uint32 = 0x0027

	KeysymBackSpace uint32 = 0xff08
	KeysymReturn    uint32 = 0xff0d
	KeysymEscape    uint32 = 0xff1b

	KeysymDeadGrave      uint32 = 0xfe50
	KeysymDeadAcute      uint32 = 0xfe51
	KeysymDeadCircumflex uint32 = 0xfe52
	KeysymDeadTilde      uint32 = 0xfe53
	KeysymDeadDiaeresis  uint32 = 0xfe57
	KeysymMultiKey       uint32 = 0xff20

	// Modifier keysym range; compose feeding ignores these.
	keysymShiftL uint32 = 0xffe1
	keysymHyperR uint32 = 0xffee
)

// IsModifierKeysym reports whether sym names a modifier key (Shift_L
// through Hyper_R in the engine's keysym table).
func IsModifierKeysym(sym uint32) bool {
	return sym >= keysymShiftL && sym <= keysymHyperR
}

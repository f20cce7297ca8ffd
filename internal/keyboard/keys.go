package keyboard

import "fmt"

// X11 keysym values, from keysymdef.h. Only the keys the wire schema
// names get a table entry; anything else falls through to Unknown.
const (
	ksBackspace   = 0xff08
	ksTab         = 0xff09
	ksReturn      = 0xff0d
	ksPause       = 0xff13
	ksScrollLock  = 0xff14
	ksEscape      = 0xff1b
	ksHome        = 0xff50
	ksLeft        = 0xff51
	ksUp          = 0xff52
	ksRight       = 0xff53
	ksDown        = 0xff54
	ksPageUp      = 0xff55
	ksPageDown    = 0xff56
	ksEnd         = 0xff57
	ksPrint       = 0xff61
	ksInsert      = 0xff63
	ksNumLock     = 0xff7f
	ksKPMultiply  = 0xffaa
	ksKPDivide    = 0xffaf
	ksF1          = 0xffbe
	ksF12         = 0xffc9
	ksShiftL      = 0xffe1
	ksShiftR      = 0xffe2
	ksControlL    = 0xffe3
	ksControlR    = 0xffe4
	ksCapsLock    = 0xffe5
	ksMetaL       = 0xffe7
	ksMetaR       = 0xffe8
	ksAltL        = 0xffe9
	ksAltR        = 0xffea
	ksSuperL      = 0xffeb
	ksSuperR      = 0xffec
	ksISOLevel3   = 0xfe03
	ksDelete      = 0xffff
	ksSpace       = 0x20
	ksDigit0      = 0x30
	ksDigit9      = 0x39
	ksLowerA      = 0x61
	ksLowerZ      = 0x7a
	ksUpperA      = 0x41
	ksUpperZ      = 0x5a
)

type keyInfo struct {
	code int
	name string
}

var namedKeys = map[uint32]keyInfo{
	ksBackspace:  {8, "Backspace"},
	ksTab:        {9, "Tab"},
	ksReturn:     {13, "Return"},
	ksPause:      {19, "Pause"},
	ksScrollLock: {145, "ScrollLock"},
	ksEscape:     {27, "Escape"},
	ksHome:       {36, "Home"},
	ksLeft:       {37, "LeftArrow"},
	ksUp:         {38, "UpArrow"},
	ksRight:      {39, "RightArrow"},
	ksDown:       {40, "DownArrow"},
	ksPageUp:     {33, "PageUp"},
	ksPageDown:   {34, "PageDown"},
	ksEnd:        {35, "End"},
	ksPrint:      {154, "PrintScreen"},
	ksInsert:     {45, "Insert"},
	ksNumLock:    {144, "NumLock"},
	ksKPMultiply: {106, "Multiply"},
	ksKPDivide:   {111, "Divide"},
	ksShiftL:     {16, "ShiftLeft"},
	ksShiftR:     {16, "ShiftRight"},
	ksControlL:   {17, "ControlLeft"},
	ksControlR:   {17, "ControlRight"},
	ksCapsLock:   {20, "CapsLock"},
	ksMetaL:      {91, "MetaLeft"},
	ksMetaR:      {91, "MetaRight"},
	ksAltL:       {18, "Alt"},
	ksAltR:       {225, "AltGr"},
	ksSuperL:     {91, "MetaLeft"},
	ksSuperR:     {91, "MetaRight"},
	ksISOLevel3:  {225, "AltGr"},
	ksDelete:     {46, "Delete"},
	ksSpace:      {32, "Space"},
}

// lookupKeysym maps an X keysym to the browser virtual-key code and name
// delivered on the wire. Unrecognized keysyms keep their raw value so
// hosts can still tell distinct keys apart.
func lookupKeysym(ks uint32) (int, string) {
	if info, ok := namedKeys[ks]; ok {
		return info.code, info.name
	}
	switch {
	case ks >= ksLowerA && ks <= ksLowerZ:
		letter := rune('A' + ks - ksLowerA)
		return int('A' + ks - ksLowerA), string(letter)
	case ks >= ksUpperA && ks <= ksUpperZ:
		letter := rune('A' + ks - ksUpperA)
		return int('A' + ks - ksUpperA), string(letter)
	case ks >= ksDigit0 && ks <= ksDigit9:
		return int(ks), string(rune('0' + ks - ksDigit0))
	case ks >= ksF1 && ks <= ksF12:
		n := ks - ksF1 + 1
		return int(112 + n - 1), fmt.Sprintf("F%d", n)
	}
	return int(ks), fmt.Sprintf("Unknown(%d)", ks)
}

// modifierClass returns the wire modifier class of a keysym, or "" for
// non-modifier keys.
func modifierClass(ks uint32) string {
	switch ks {
	case ksShiftL, ksShiftR:
		return "shift"
	case ksControlL, ksControlR:
		return "control"
	case ksAltL, ksAltR, ksISOLevel3:
		return "alt"
	case ksMetaL, ksMetaR, ksSuperL, ksSuperR:
		return "meta"
	}
	return ""
}

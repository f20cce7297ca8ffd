package keyboard

import "testing"

func TestLookupKeysymNamedKeys(t *testing.T) {
	cases := []struct {
		ks   uint32
		code int
		name string
	}{
		{ksEscape, 27, "Escape"},
		{ksReturn, 13, "Return"},
		{ksSpace, 32, "Space"},
		{ksShiftL, 16, "ShiftLeft"},
		{ksShiftR, 16, "ShiftRight"},
		{ksControlR, 17, "ControlRight"},
		{ksSuperL, 91, "MetaLeft"},
		{ksISOLevel3, 225, "AltGr"},
		{ksDelete, 46, "Delete"},
	}
	for _, c := range cases {
		code, name := lookupKeysym(c.ks)
		if code != c.code || name != c.name {
			t.Errorf("keysym %#x: expected (%d, %q), got (%d, %q)", c.ks, c.code, c.name, code, name)
		}
	}
}

func TestLookupKeysymLettersAndDigits(t *testing.T) {
	// Lower and upper case keysyms collapse onto the same virtual code.
	if code, name := lookupKeysym('a'); code != 65 || name != "A" {
		t.Fatalf("expected (65, A), got (%d, %q)", code, name)
	}
	if code, name := lookupKeysym('Z'); code != 90 || name != "Z" {
		t.Fatalf("expected (90, Z), got (%d, %q)", code, name)
	}
	if code, name := lookupKeysym('7'); code != 55 || name != "7" {
		t.Fatalf("expected (55, 7), got (%d, %q)", code, name)
	}
}

func TestLookupKeysymFunctionKeys(t *testing.T) {
	if code, name := lookupKeysym(ksF1); code != 112 || name != "F1" {
		t.Fatalf("expected (112, F1), got (%d, %q)", code, name)
	}
	if code, name := lookupKeysym(ksF12); code != 123 || name != "F12" {
		t.Fatalf("expected (123, F12), got (%d, %q)", code, name)
	}
}

func TestLookupKeysymUnknownKeepsRawValue(t *testing.T) {
	code, name := lookupKeysym(0x1008ff11) // XF86AudioLowerVolume
	if code != 0x1008ff11 || name != "Unknown(269025297)" {
		t.Fatalf("got (%d, %q)", code, name)
	}
}

func TestModifierClass(t *testing.T) {
	cases := map[uint32]string{
		ksShiftL:    "shift",
		ksShiftR:    "shift",
		ksControlL:  "control",
		ksAltL:      "alt",
		ksISOLevel3: "alt",
		ksSuperR:    "meta",
		ksMetaL:     "meta",
		ksEscape:    "",
		'a':         "",
	}
	for ks, want := range cases {
		if got := modifierClass(ks); got != want {
			t.Errorf("keysym %#x: expected %q, got %q", ks, want, got)
		}
	}
}

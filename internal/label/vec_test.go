package label

import "testing"

func TestVec3i_KeyRoundTrip(t *testing.T) {
	cases := []Vec3i{
		{},
		{X: 1, Y: 2, Z: 3},
		{X: -100, Y: 0, Z: 999999},
	}
	for _, v := range cases {
		got, err := ParseKey(v.Key())
		if err != nil {
			t.Fatalf("parse %q: %v", v.Key(), err)
		}
		if got != v {
			t.Fatalf("round trip %q: got %+v", v.Key(), got)
		}
	}
}

func TestParseKey_Rejects(t *testing.T) {
	for _, s := range []string{"", "1,2", "1,2,3,4", "a,b,c", "1.5,2,3"} {
		if _, err := ParseKey(s); err == nil {
			t.Fatalf("expected error for %q", s)
		}
	}
}

func TestLabel_EffectiveDisplay(t *testing.T) {
	if (Label{}).EffectiveDisplay() != DisplayMiddle {
		t.Fatalf("absent mode should default to middle")
	}
	if (Label{Display: DisplayChat}).EffectiveDisplay() != DisplayChat {
		t.Fatalf("chat mode lost")
	}
	if ValidDisplay("yellow") || ValidDisplay("") {
		t.Fatalf("invalid modes accepted")
	}
	if !ValidDisplay("middle") || !ValidDisplay("chat") {
		t.Fatalf("valid modes rejected")
	}
}

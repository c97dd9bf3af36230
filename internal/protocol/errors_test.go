package protocol

import "testing"

func TestIsKnownCode(t *testing.T) {
	for _, code := range []string{
		"", ErrUnauthorized, ErrAlreadyExists, ErrNotFound, ErrNotOwner,
		ErrQuotaExceeded, ErrBadRequest, ErrTimedOut, ErrSuperseded,
		ErrWorldQuery, ErrImportParse, ErrInternal,
	} {
		if !IsKnownCode(code) {
			t.Fatalf("%q should be known", code)
		}
	}
	if IsKnownCode("E_NOPE") {
		t.Fatalf("unknown code accepted")
	}
}

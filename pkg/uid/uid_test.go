package uid

import (
	"testing"

	"github.com/google/uuid"
)

func TestGenerateRoomCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		code := GenerateRoomCode()
		if !ValidRoomCode(code) {
			t.Fatalf("generated invalid code %q", code)
		}
		seen[code] = true
	}
	if len(seen) < 190 {
		t.Fatalf("room codes repeat too often: %d unique of 200", len(seen))
	}
}

func TestValidRoomCode(t *testing.T) {
	cases := map[string]bool{
		"ABC234": true,
		"abc234": false,
		"ABCD2":  false,
		"ABC10O": false,
	}
	for code, want := range cases {
		if got := ValidRoomCode(code); got != want {
			t.Fatalf("ValidRoomCode(%q) = %v, want %v", code, got, want)
		}
	}
	if !ValidRoomCode(NormalizeRoomCode("  abc234 ")) {
		t.Fatalf("normalized code should validate")
	}
}

func TestGenerateGameID(t *testing.T) {
	id := GenerateGameID()
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("game id %q is not a uuid: %v", id, err)
	}
	if id == GenerateGameID() {
		t.Fatalf("game ids must differ")
	}
}

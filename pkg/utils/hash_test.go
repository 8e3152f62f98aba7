package utils

import (
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("s3cret", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if hash == "s3cret" {
		t.Fatal("hash must not equal the plain password")
	}
	if !CheckPasswordHash("s3cret", hash) {
		t.Error("CheckPasswordHash() = false for the original password")
	}
	if CheckPasswordHash("wrong", hash) {
		t.Error("CheckPasswordHash() = true for a different password")
	}
}

func TestHashPasswordIsSalted(t *testing.T) {
	a, _ := HashPassword("same", bcrypt.MinCost)
	b, _ := HashPassword("same", bcrypt.MinCost)
	if a == b {
		t.Error("two hashes of the same password should differ")
	}
}

func TestHashPasswordInvalidCost(t *testing.T) {
	if _, err := HashPassword("x", bcrypt.MaxCost+1); err == nil {
		t.Error("expected error for cost above bcrypt.MaxCost")
	}
}

func TestCheckPasswordHashMalformed(t *testing.T) {
	if CheckPasswordHash("x", "not-a-hash") {
		t.Error("malformed hash must not verify")
	}
}

func TestGenerateRefID(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := GenerateRefID(now)
		if !strings.HasPrefix(id, "trx_1700000000123_") {
			t.Fatalf("unexpected ref id %q", id)
		}
		if seen[id] {
			t.Fatalf("duplicate ref id %q", id)
		}
		seen[id] = true
	}
}

func TestParseInt(t *testing.T) {
	tests := []struct {
		in   string
		def  int
		want int
	}{
		{"", 5, 5},
		{"7", 5, 7},
		{"abc", 5, 5},
		{"0", 5, 5},
		{"-3", 5, 5},
	}
	for _, tt := range tests {
		if got := ParseInt(tt.in, tt.def); got != tt.want {
			t.Errorf("ParseInt(%q, %d) = %d, want %d", tt.in, tt.def, got, tt.want)
		}
	}
}

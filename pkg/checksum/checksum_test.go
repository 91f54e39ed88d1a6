package checksum

import (
	"strings"
	"testing"
)

// Known SHA-256 of "hello world".
const helloSum = "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"

func TestCalculateSHA256(t *testing.T) {
	got, err := CalculateSHA256(strings.NewReader("hello world"))
	if err != nil {
		t.Fatalf("CalculateSHA256() error: %v", err)
	}
	if got != helloSum {
		t.Errorf("CalculateSHA256() = %s, want %s", got, helloSum)
	}
}

func TestCalculateSHA256_EmptyInput(t *testing.T) {
	const emptySum = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"

	got, err := CalculateSHA256(strings.NewReader(""))
	if err != nil {
		t.Fatalf("CalculateSHA256() error: %v", err)
	}
	if got != emptySum {
		t.Errorf("CalculateSHA256(empty) = %s, want %s", got, emptySum)
	}
}

func TestVerifySHA256_Match(t *testing.T) {
	ok, err := VerifySHA256(strings.NewReader("hello world"), helloSum)
	if err != nil {
		t.Fatalf("VerifySHA256() error: %v", err)
	}
	if !ok {
		t.Error("VerifySHA256() = false, want true")
	}
}

func TestVerifySHA256_Mismatch(t *testing.T) {
	ok, err := VerifySHA256(strings.NewReader("hello worlD"), helloSum)
	if err != nil {
		t.Fatalf("VerifySHA256() error: %v", err)
	}
	if ok {
		t.Error("VerifySHA256() = true, want false for altered content")
	}
}

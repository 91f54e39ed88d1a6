package upload

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestValidateFilename_Accepts(t *testing.T) {
	for _, name := range []string{
		"photo.png",
		"devis client 2026.pdf",
		"Présentation-vitrine_v2.docx",
		"concours.zip",
		"notes",
	} {
		if err := ValidateFilename(name); err != nil {
			t.Errorf("ValidateFilename(%q) = %v, want nil", name, err)
		}
	}
}

func TestValidateFilename_Rejects(t *testing.T) {
	cases := []struct {
		name     string
		filename string
	}{
		{"empty", ""},
		{"control character", "evil\x00.png"},
		{"newline", "evil\n.png"},
		{"forward slash", "../../etc/passwd"},
		{"backslash", `..\..\boot.ini`},
		{"colon", "c:evil.png"},
		{"wildcard", "ev*l.png"},
		{"pipe", "a|b.txt"},
		{"traversal without separator", "..secret"},
		{"reserved CON", "CON.txt"},
		{"reserved con lowercase", "con.txt"},
		{"reserved COM port", "COM1.pdf"},
		{"reserved LPT", "lpt9"},
		{"reserved NUL bare", "NUL"},
		{"over length ceiling", strings.Repeat("a", 256) + ".txt"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateFilename(tc.filename)
			if err == nil {
				t.Fatalf("ValidateFilename(%q) = nil, want error", tc.filename)
			}
			if !errors.Is(err, ErrBadFilename) {
				t.Errorf("error %v does not wrap ErrBadFilename", err)
			}
		})
	}
}

func TestValidateFilename_ReservedStemRequiresExactMatch(t *testing.T) {
	// Names merely containing a reserved stem are fine.
	for _, name := range []string{"CONTRACT.pdf", "aux-files.zip", "economy.txt"} {
		if err := ValidateFilename(name); err != nil {
			t.Errorf("ValidateFilename(%q) = %v, want nil", name, err)
		}
	}
}

func TestGenerateStoredName_Shape(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	name, err := GenerateStoredName("Photo Vitrine.PNG", "u-42", now)
	if err != nil {
		t.Fatalf("GenerateStoredName() error: %v", err)
	}

	if !strings.HasSuffix(name, ".png") {
		t.Errorf("stored name %q does not keep the lowercased extension", name)
	}
	if !strings.HasPrefix(name, "photo-vitrine-") {
		t.Errorf("stored name %q does not start with the sanitized base", name)
	}
	if strings.Contains(name, " ") {
		t.Errorf("stored name %q contains whitespace", name)
	}

	// base-hash-random.ext → at least three dash-separated groups
	if parts := strings.Split(name, "-"); len(parts) < 3 {
		t.Errorf("stored name %q lacks hash and random components", name)
	}
}

func TestGenerateStoredName_CollisionResistance(t *testing.T) {
	now := time.Now()
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		name, err := GenerateStoredName("same.pdf", "u-1", now)
		if err != nil {
			t.Fatalf("GenerateStoredName() error: %v", err)
		}
		if seen[name] {
			t.Fatalf("duplicate stored name generated: %s", name)
		}
		seen[name] = true
	}
}

func TestGenerateStoredName_HostileBaseName(t *testing.T) {
	// Even a base of entirely disallowed runes yields a usable name.
	name, err := GenerateStoredName("( ) ( ).png", "u-1", time.Now())
	if err != nil {
		t.Fatalf("GenerateStoredName() error: %v", err)
	}
	if !strings.HasPrefix(name, "file-") {
		t.Errorf("stored name %q should fall back to the 'file' stem", name)
	}
}

package prompt

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestLoadFileNewlines(t *testing.T) {
	path := writeFile(t, "prompt.txt", "a burning sofa\n\n  flames spreading over a desk  \nsmoke damage\n")

	got, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	want := []string{"a burning sofa", "flames spreading over a desk", "smoke damage"}
	if len(got) != len(want) {
		t.Fatalf("got %d entries, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestLoadFileCommas(t *testing.T) {
	path := writeFile(t, "prompt.txt", "fire, flames, charred walls")

	got, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d entries, want 3: %v", len(got), got)
	}
	if got[2] != "charred walls" {
		t.Errorf("entry 2: got %q", got[2])
	}
}

func TestLoadFileMissing(t *testing.T) {
	got, err := LoadFile(filepath.Join(t.TempDir(), "nope.txt"))
	if err != nil {
		t.Fatalf("LoadFile on missing file: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty library, got %v", got)
	}
}

func TestNewSamplerEmpty(t *testing.T) {
	if _, err := NewSampler(nil, nil, nil, "", "", 1); !errors.Is(err, ErrNoPrompts) {
		t.Errorf("expected ErrNoPrompts, got %v", err)
	}
}

func TestSampleComposition(t *testing.T) {
	s, err := NewSampler(
		[]string{"fire in a kitchen"},
		[]string{"blurry"},
		[]string{"Cinematic", "realistic"},
		DefaultSuffix, DefaultNegativeSuffix, 1)
	if err != nil {
		t.Fatalf("NewSampler failed: %v", err)
	}

	p, neg := s.Sample()

	if !strings.HasPrefix(p, "fire in a kitchen, Cinematic, realistic") {
		t.Errorf("prompt missing styles: %q", p)
	}
	if !strings.HasSuffix(p, "global cinematic color grading") {
		t.Errorf("prompt missing suffix: %q", p)
	}
	if !strings.HasPrefix(neg, "blurry") {
		t.Errorf("negative prompt missing base entry: %q", neg)
	}
	if strings.HasPrefix(neg, ",") || strings.HasSuffix(neg, ",") || strings.HasSuffix(neg, " ") {
		t.Errorf("negative prompt not trimmed: %q", neg)
	}
}

func TestSampleEmptyNegatives(t *testing.T) {
	s, err := NewSampler([]string{"fire"}, nil, nil, "", DefaultNegativeSuffix, 1)
	if err != nil {
		t.Fatalf("NewSampler failed: %v", err)
	}

	_, neg := s.Sample()
	if strings.HasPrefix(neg, ",") || strings.HasPrefix(neg, " ") {
		t.Errorf("negative prompt has leading separator: %q", neg)
	}
	if neg != strings.Trim(DefaultNegativeSuffix, ", ") {
		t.Errorf("negative prompt = %q", neg)
	}
}

func TestSampleDeterministicUnderSeed(t *testing.T) {
	prompts := []string{"a", "b", "c", "d", "e"}
	negs := []string{"x", "y", "z"}

	s1, _ := NewSampler(prompts, negs, nil, "", "", 42)
	s2, _ := NewSampler(prompts, negs, nil, "", "", 42)

	for i := 0; i < 20; i++ {
		p1, n1 := s1.Sample()
		p2, n2 := s2.Sample()
		if p1 != p2 || n1 != n2 {
			t.Fatalf("iteration %d: (%q,%q) vs (%q,%q)", i, p1, n1, p2, n2)
		}
	}
}

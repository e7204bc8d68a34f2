// Package prompt loads prompt libraries from text files and samples
// prompt/negative-prompt pairs for generation requests.
package prompt

import (
	"errors"
	"math/rand"
	"os"
	"strings"
	"time"
)

// ErrNoPrompts indicates an empty positive prompt library
var ErrNoPrompts = errors.New("prompt: no prompts available")

// Default suffixes appended to every sampled pair. The positive suffix pushes
// lighting consistency around the inpainted region; the negative suffix
// suppresses the common failure modes of fire synthesis.
const (
	DefaultSuffix = ", warm orange glow reflected on nearby surfaces, realistic soft shadows, " +
		"physically accurate light falloff, global cinematic color grading"
	DefaultNegativeSuffix = ", oversaturated colors, posterization, pure orange blob, glowing mush"
)

// LoadFile reads a prompt library. Entries are one per line; files with a
// single comma-separated line are also accepted. A missing file yields an
// empty library, not an error.
func LoadFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	entries := splitEntries(string(data), "\n")
	if len(entries) <= 1 && strings.Contains(string(data), ",") {
		entries = splitEntries(string(data), ",")
	}
	return entries, nil
}

func splitEntries(data, sep string) []string {
	var out []string
	for _, e := range strings.Split(data, sep) {
		if e = strings.TrimSpace(e); e != "" {
			out = append(out, e)
		}
	}
	return out
}

// Sampler picks random prompt pairs and composes styles and suffixes
type Sampler struct {
	prompts   []string
	negatives []string
	styles    []string
	suffix    string
	negSuffix string
	rng       *rand.Rand
}

// NewSampler creates a Sampler. The positive library must be non-empty; the
// negative library may be empty. A zero seed selects a time-based seed.
func NewSampler(prompts, negatives, styles []string, suffix, negSuffix string, seed int64) (*Sampler, error) {
	if len(prompts) == 0 {
		return nil, ErrNoPrompts
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Sampler{
		prompts:   prompts,
		negatives: negatives,
		styles:    styles,
		suffix:    suffix,
		negSuffix: negSuffix,
		rng:       rand.New(rand.NewSource(seed)),
	}, nil
}

// Sample returns a random prompt/negative-prompt pair with styles and
// suffixes applied
func (s *Sampler) Sample() (string, string) {
	p := s.prompts[s.rng.Intn(len(s.prompts))]
	if len(s.styles) > 0 {
		p = p + ", " + strings.Join(s.styles, ", ")
	}
	p += s.suffix

	neg := ""
	if len(s.negatives) > 0 {
		neg = s.negatives[s.rng.Intn(len(s.negatives))]
	}
	neg = strings.Trim(neg+s.negSuffix, ", ")

	return p, neg
}

package corpus

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/rand/v2"
	"sync"

	"mediabuddy/internal/services"
	"mediabuddy/internal/textutil"
)

// Store owns the loaded writing samples.
type Store struct {
	source string
	opts   LoadOptions
	seed   int64

	mu           sync.RWMutex
	samples      []WritingSample
	fingerprints []*textutil.Fingerprint
	version      string
}

// Open loads source and returns a Store over it.
func Open(ctx context.Context, source string, opts LoadOptions, seed int64) (*Store, error) {
	samples, err := Load(ctx, source, opts)
	if err != nil {
		return nil, err
	}
	s := &Store{source: source, opts: opts, seed: seed}
	s.install(samples)
	return s, nil
}

// NewMemoryStore wraps an in-memory sample set. Reload is a no-op for it.
func NewMemoryStore(samples []WritingSample, seed int64) (*Store, error) {
	if len(samples) == 0 {
		return nil, services.Wrap(services.ErrCorpusEmpty, "sampling", "load corpus", "no writing samples provided", nil)
	}
	s := &Store{seed: seed}
	s.install(append([]WritingSample(nil), samples...))
	return s, nil
}

func (s *Store) install(samples []WritingSample) {
	fps := make([]*textutil.Fingerprint, len(samples))
	for i, sample := range samples {
		fps[i] = textutil.NewFingerprint(sample.Body())
	}
	s.samples = samples
	s.fingerprints = fps
	s.version = digest(samples)
}

// Source returns the directory or file the store was loaded from.
func (s *Store) Source() string { return s.source }

// Len returns the number of loaded samples.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.samples)
}

// Samples returns a copy of every loaded sample in load order.
func (s *Store) Samples() []WritingSample {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]WritingSample(nil), s.samples...)
}

// Version returns a digest of the corpus content. It changes whenever a
// sample body or source label changes.
func (s *Store) Version() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Reload re-reads the source. The previous samples stay in place when the
// reload fails. Returns true when the content version changed.
func (s *Store) Reload(ctx context.Context) (bool, error) {
	if s.source == "" {
		return false, nil
	}
	samples, err := Load(ctx, s.source, s.opts)
	if err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	previous := s.version
	s.install(samples)
	return previous != s.version, nil
}

// Sample returns up to n samples chosen for diversity: a seeded random start,
// then repeatedly the sample farthest (by fingerprint cosine distance) from
// everything already chosen, ties going to the lowest index. The result is
// fully determined by the seed and the corpus content.
func (s *Store) Sample(n int) ([]WritingSample, error) {
	samples, _, err := s.SampleWithVersion(n)
	return samples, err
}

// SampleWithVersion is Sample plus the version of the corpus the samples were
// drawn from, read under the same lock so a concurrent Reload cannot split
// them.
func (s *Store) SampleWithVersion(n int) ([]WritingSample, string, error) {
	if n <= 0 {
		return nil, "", services.Wrap(services.ErrInvalidInput, "sampling", "sample corpus", fmt.Sprintf("sample size must be positive, got %d", n), nil)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := len(s.samples)
	if total == 0 {
		return nil, s.version, services.Wrap(services.ErrCorpusEmpty, "sampling", "sample corpus", "no writing samples loaded", nil)
	}
	if n > total {
		n = total
	}

	order := selectDiverse(s.fingerprints, n, s.seed)
	out := make([]WritingSample, len(order))
	for i, idx := range order {
		out[i] = s.samples[idx]
	}
	return out, s.version, nil
}

func selectDiverse(fps []*textutil.Fingerprint, n int, seed int64) []int {
	total := len(fps)
	rng := rand.New(rand.NewPCG(uint64(seed), uint64(total)))
	chosen := make([]int, 0, n)
	taken := make([]bool, total)

	first := rng.IntN(total)
	chosen = append(chosen, first)
	taken[first] = true

	// nearest[i] is the distance from i to its closest chosen sample.
	nearest := make([]float64, total)
	for i := range fps {
		nearest[i] = textutil.Distance(fps[i], fps[first])
	}

	for len(chosen) < n {
		best := -1
		for i := range fps {
			if taken[i] {
				continue
			}
			if best == -1 || nearest[i] > nearest[best] {
				best = i
			}
		}
		chosen = append(chosen, best)
		taken[best] = true
		for i := range fps {
			if taken[i] {
				continue
			}
			if d := textutil.Distance(fps[i], fps[best]); d < nearest[i] {
				nearest[i] = d
			}
		}
	}
	return chosen
}

func digest(samples []WritingSample) string {
	h := sha256.New()
	for _, sample := range samples {
		h.Write([]byte(sample.Source()))
		h.Write([]byte{0})
		h.Write([]byte(sample.Body()))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}

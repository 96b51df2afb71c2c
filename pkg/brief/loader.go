package brief

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadBriefFromFile reads, parses, resolves the seed of, normalizes and
// validates a YAML brief file.
func LoadBriefFromFile(path string) (*Brief, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading brief file: %w", err)
	}
	return LoadBriefFromBytes(data)
}

// LoadBriefFromBytes parses a YAML-encoded brief from memory. Useful for
// tests and for callers that already hold the bytes (e.g. an HTTP body).
func LoadBriefFromBytes(data []byte) (*Brief, error) {
	var b Brief
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("parsing brief YAML: %w", err)
	}
	return resolve(&b)
}

// LoadBriefFromJSON parses a JSON-encoded brief, for callers submitting one
// programmatically rather than authoring a YAML file.
func LoadBriefFromJSON(data []byte) (*Brief, error) {
	var b Brief
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("parsing brief JSON: %w", err)
	}
	return resolve(&b)
}

func resolve(b *Brief) (*Brief, error) {
	if b.Seed == 0 {
		seed, err := generateSeed()
		if err != nil {
			return nil, fmt.Errorf("generating seed: %w", err)
		}
		b.Seed = seed
	}
	normalized := Normalize(b)
	if err := normalized.Validate(); err != nil {
		return nil, err
	}
	return normalized, nil
}

// Hash returns a deterministic digest of the brief, used to derive
// per-stage RNGs via pkg/rng.NewRNG(masterSeed, stageName, brief.Hash()).
func (b *Brief) Hash() []byte {
	data, err := yaml.Marshal(b)
	if err != nil {
		h := sha256.New()
		var buf [8]byte
		binary.BigEndian.PutUint64(buf[:], b.Seed)
		h.Write(buf[:])
		return h.Sum(nil)
	}
	h := sha256.New()
	h.Write(data)
	return h.Sum(nil)
}

// generateSeed draws a non-zero master seed from crypto/rand. Unlike the
// teacher's wall-clock seeding, a layout brief may arrive many times per
// second from an external caller, so a monotonic-clock source risks
// collisions that crypto/rand avoids.
func generateSeed() (uint64, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0, err
	}
	seed := binary.BigEndian.Uint64(buf[:])
	if seed == 0 {
		seed = 1
	}
	return seed, nil
}

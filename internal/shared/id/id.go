// Package id provides ULID-based identifiers for queries.
//
// ULIDs sort by creation time, so query IDs in logs and on the update
// stream read in the order the queries were issued. IDs carry a short type
// prefix ("qry_") to keep them recognizable in logs.
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// QueryID identifies one issued query generation.
type QueryID string

// QueryPrefix is prepended to every QueryID.
const QueryPrefix = "qry"

// Generator generates ULIDs with optional prefixes
type Generator struct {
	entropy   io.Reader
	entropyMu sync.Mutex // Protects entropy reader
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the singleton generator instance
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a generator backed by crypto/rand with monotonic
// entropy, so IDs created within the same millisecond still sort in order.
func NewGenerator() *Generator {
	return &Generator{
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// NewGeneratorWithEntropy creates a generator with a custom entropy source.
func NewGeneratorWithEntropy(entropy io.Reader) *Generator {
	return &Generator{
		entropy: entropy,
	}
}

// Generate creates a new ULID
func (g *Generator) Generate() ulid.ULID {
	g.entropyMu.Lock()
	defer g.entropyMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy)
}

// GenerateWithPrefix creates a prefixed ULID string
func (g *Generator) GenerateWithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.Generate().String())
}

// NewQueryID generates a new query ID
func NewQueryID() QueryID {
	return QueryID(Default().GenerateWithPrefix(QueryPrefix))
}

func (id QueryID) String() string { return string(id) }

// Valid reports whether id is a prefixed query ULID.
func (id QueryID) Valid() bool {
	prefix, rest, ok := strings.Cut(string(id), "_")
	if !ok || prefix != QueryPrefix {
		return false
	}
	_, err := ulid.Parse(rest)
	return err == nil
}

// Timestamp extracts the creation time encoded in id.
func (id QueryID) Timestamp() (time.Time, error) {
	_, rest, _ := strings.Cut(string(id), "_")
	parsed, err := ulid.Parse(rest)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(parsed.Time()), nil
}

package id

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	mu   sync.Mutex
	mono io.Reader
)

func init() {
	// Seed a PRNG from crypto/rand so ULID entropy is unpredictable.
	// ulid.Monotonic keeps IDs generated within the same millisecond
	// lexicographically increasing.
	var seed int64
	_ = binary.Read(cryptoRand.Reader, binary.LittleEndian, &seed)
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	mono = ulid.Monotonic(rand.New(rand.NewSource(seed)), 0)
}

// New returns a ULID string (time-sortable identifier). Snapshots use it
// so the snapshot table sorts by creation time.
func New() string {
	mu.Lock()
	defer mu.Unlock()

	id, err := ulid.New(ulid.Timestamp(time.Now().UTC()), mono)
	if err != nil {
		// Errors are extremely unlikely unless time goes backwards or entropy fails.
		panic(err)
	}
	return id.String()
}

// Time extracts the timestamp encoded in a ULID string.
func Time(s string) (time.Time, error) {
	u, err := ulid.ParseStrict(s)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(u.Time()), nil
}

// Sequence hands out int64 millisecond identifiers. Trade ids and
// transaction timestamps both come from one, so two records created in
// the same millisecond still get distinct values: when the clock has not
// advanced past the last value, the last value plus one is returned.
type Sequence struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// NewSequence returns a Sequence reading the given clock. A nil clock
// means time.Now.
func NewSequence(now func() time.Time) *Sequence {
	if now == nil {
		now = time.Now
	}
	return &Sequence{now: now}
}

// Next returns a value strictly greater than every value previously
// returned or observed.
func (s *Sequence) Next() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := s.now().UnixMilli()
	if v <= s.last {
		v = s.last + 1
	}
	s.last = v
	return v
}

// Observe records an externally assigned value so later calls to Next
// never return it again.
func (s *Sequence) Observe(v int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v > s.last {
		s.last = v
	}
}

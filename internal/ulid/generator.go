package ulid

import (
	"io"
	"math/rand"
	"regexp"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	entropy     io.Reader
	entropyOnce sync.Once
	generator   = DefaultGenerator
)

// Crockford's Base32 without I, L, O and U.
var ulidRegex = regexp.MustCompile(`^[0123456789ABCDEFGHJKMNPQRSTVWXYZ]{26}$`)

// DefaultEntropy returns a reader that generates ULID entropy.
func DefaultEntropy() io.Reader {
	entropyOnce.Do(func() {
		rng := rand.New(rand.NewSource(time.Now().UnixNano()))

		entropy = &ulid.LockedMonotonicReader{
			MonotonicReader: ulid.Monotonic(rng, 0),
		}
	})
	return entropy
}

// ValidID reports whether id is a canonical, upper-case ULID.
// Post ids are ULIDs, so anything else can be rejected before a lookup.
func ValidID(id string) bool {
	_, err := ulid.Parse(id)
	return err == nil && ulidRegex.MatchString(id)
}

// GenerateID returns a new id. Ids generated by the default generator sort
// in creation order.
func GenerateID() string {
	return generator()
}

// Time returns the timestamp encoded in id.
func Time(id string) (time.Time, bool) {
	parsed, err := ulid.Parse(id)
	if err != nil {
		return time.Time{}, false
	}
	return ulid.Time(parsed.Time()), true
}

func DefaultGenerator() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), DefaultEntropy()).String()
}

func ResetGenerator() {
	generator = DefaultGenerator
}

// MockGenerator makes GenerateID return mockValue until ResetGenerator.
func MockGenerator(mockValue string) {
	generator = func() string {
		return mockValue
	}
}

// SequenceGenerator makes GenerateID return values in order, repeating
// the last one once exhausted.
func SequenceGenerator(values ...string) {
	var (
		mu  sync.Mutex
		pos int
	)
	generator = func() string {
		mu.Lock()
		defer mu.Unlock()
		v := values[pos]
		if pos < len(values)-1 {
			pos++
		}
		return v
	}
}

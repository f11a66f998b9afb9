package slug

import (
	"bytes"
	"context"
	"strconv"
	"strings"
)

// Fallback is used when a title has no usable characters.
const Fallback = "post"

// Candidate converts a title into a slug: lower case, every run of
// characters outside [a-z0-9] replaced by a single "-", no leading or
// trailing "-".
func Candidate(title string) string {
	var b bytes.Buffer

	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		if r >= '0' && r <= '9' || r >= 'a' && r <= 'z' {
			if dash && b.Len() > 0 {
				_ = b.WriteByte('-')
			}
			_, _ = b.WriteRune(r)
			dash = false
		} else {
			dash = true
		}
	}

	if b.Len() == 0 {
		return Fallback
	}
	return b.String()
}

// OwnerFunc returns the id of the record using slug, or "" when it is free.
type OwnerFunc func(ctx context.Context, slug string) (string, error)

// Unique returns the first of base, base-1, base-2, ... which is free or
// already owned by selfID.
func Unique(ctx context.Context, base, selfID string, owner OwnerFunc) (string, error) {
	candidate := base
	for counter := 1; ; counter++ {
		id, err := owner(ctx, candidate)
		if err != nil {
			return "", err
		}
		if id == "" || (selfID != "" && id == selfID) {
			return candidate, nil
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}
		candidate = base + "-" + strconv.Itoa(counter)
	}
}

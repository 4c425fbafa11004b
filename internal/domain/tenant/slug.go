package tenant

import (
	"crypto/rand"
	"strconv"
	"strings"
	"time"
)

const slugAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// SlugBase derives the lowercase slug stem from the tenant name, falling
// back to the email local-part, then to "tenant". Runs of anything outside
// [a-z0-9] collapse to a single dash.
func SlugBase(name, email string) string {
	base := strings.TrimSpace(name)

	if base == "" {
		if at := strings.IndexByte(email, '@'); at > 0 {
			base = email[:at]
		} else {
			base = email
		}
	}

	base = strings.ToLower(base)

	var b strings.Builder
	lastDash := true // no leading dash

	for _, r := range base {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastDash = false
			continue
		}

		if !lastDash {
			b.WriteByte('-')
			lastDash = true
		}
	}

	out := strings.TrimSuffix(b.String(), "-")

	if out == "" {
		return "tenant"
	}

	return out
}

// NewSlug appends a 5-char random token to the stem. Collisions are rare
// but possible; callers retry a bounded number of times and then fall back
// to TimeSlug.
func NewSlug(base string) string {
	return base + "-" + randomToken(5)
}

// TimeSlug is the collision fallback: unix millis in base36.
func TimeSlug(base string) string {
	return base + "-" + strconv.FormatInt(time.Now().UnixMilli(), 36)
}

func randomToken(n int) string {
	buf := make([]byte, n)

	// crypto/rand.Read does not fail on supported platforms
	_, _ = rand.Read(buf)

	out := make([]byte, n)
	for i, c := range buf {
		out[i] = slugAlphabet[int(c)%len(slugAlphabet)]
	}
	return string(out)
}

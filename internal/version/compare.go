package version

import (
	"strings"

	goversion "github.com/hashicorp/go-version"
)

// Compare orders two release strings: 1 if a > b, -1 if a < b, 0 otherwise.
// Development builds and bare commit hashes sort before any release, and a
// pre-release sorts before its release.
func Compare(a, b string) int {
	aDev, bDev := isDev(a), isDev(b)
	switch {
	case aDev && bDev:
		return 0
	case aDev:
		return -1
	case bDev:
		return 1
	}

	va, errA := goversion.NewVersion(strings.TrimSpace(a))
	vb, errB := goversion.NewVersion(strings.TrimSpace(b))
	switch {
	case errA != nil && errB != nil:
		return 0
	case errA != nil:
		return -1
	case errB != nil:
		return 1
	}
	return va.Compare(vb)
}

func isDev(v string) bool {
	v = strings.TrimPrefix(strings.TrimSpace(v), "v")
	return v == "" || v == devVersion || isCommitHash(v)
}

// isCommitHash matches 7 to 40 hex characters with at least one letter.
func isCommitHash(s string) bool {
	s = strings.TrimSuffix(s, "-dirty")
	if len(s) < 7 || len(s) > 40 {
		return false
	}
	letter := false
	for _, c := range strings.ToLower(s) {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
			letter = true
		default:
			return false
		}
	}
	return letter
}

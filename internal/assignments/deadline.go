package assignments

import "time"

// legacyLayouts are deadline shapes found in rows persisted before the
// stored format was settled on RFC 3339.
var legacyLayouts = []string{
	DeadlineLayout,
	"02-01-2006T15:04",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// FixDeadline normalizes a persisted deadline to RFC 3339. Values already
// in canonical form pass through unchanged, legacy shapes are reparsed, and
// anything unrecognized is returned as-is. This is a read-side compatibility
// shim: stored rows are never rewritten.
func FixDeadline(deadline string) string {
	if _, err := time.Parse(time.RFC3339, deadline); err == nil {
		return deadline
	}
	for _, layout := range legacyLayouts {
		if t, err := time.Parse(layout, deadline); err == nil {
			return t.UTC().Format(time.RFC3339)
		}
	}
	return deadline
}

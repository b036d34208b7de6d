package identity

import "strings"

const tripSeparator = "#"

// ParseName splits raw name input at the first '#'. The part before is the
// display name, the part after is the tripcode secret. An empty trip means
// there was no secret. The default name for blank names is applied by the
// caller, which knows the board.
func ParseName(raw string) (name string, trip string) {
	name, secret, found := strings.Cut(raw, tripSeparator)
	if !found || secret == "" {
		return sanitizeName(name), ""
	}
	return sanitizeName(name), DeriveTripcode(secret)
}

// sanitizeName stops a typed ◆ from passing as a real tripcode.
func sanitizeName(name string) string {
	return strings.ReplaceAll(name, TripMark, fakeTripMark)
}

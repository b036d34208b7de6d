package identity

import (
	"crypto/sha256"
	"encoding/base64"
	"strings"
)

const (
	tripLength = 10
	// TripMark precedes a tripcode when displayed.
	TripMark = "◆"
	// fakeTripMark replaces TripMark typed into a name.
	fakeTripMark = "◇"
)

var tripReplacer = strings.NewReplacer("+", ".", "=", ".")

// DeriveTripcode hashes the secret alone, so the same secret gives the same
// tripcode on every board and every day. The digest is cut short on purpose.
func DeriveTripcode(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	encoded := base64.StdEncoding.EncodeToString(sum[:])
	return tripReplacer.Replace(encoded[:tripLength])
}

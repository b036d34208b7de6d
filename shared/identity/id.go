// Package identity derives the pseudonymous values shown next to a post:
// the daily poster id and the tripcode. Both are low-assurance; they group
// posts for readers and do not authenticate anyone.
package identity

import (
	"crypto/sha256"
	"encoding/base64"
	"strconv"
	"strings"
	"time"
)

const (
	idLength   = 8
	dateLayout = "2006-01-02"
)

var idReplacer = strings.NewReplacer("+", "A", "/", "B", "=", "C")

// DeriveIdentity returns the 8 character id for a poster on a board for the
// calendar day of `day` (in day's own location). The id changes at midnight
// and differs between boards.
func DeriveIdentity(addr string, boardID int64, day time.Time) string {
	seed := addr + ":" + day.Format(dateLayout) + ":" + strconv.FormatInt(boardID, 10)
	sum := sha256.Sum256([]byte(seed))
	encoded := base64.StdEncoding.EncodeToString(sum[:])
	return idReplacer.Replace(encoded[:idLength])
}

// IdentityDeriver binds DeriveIdentity to a clock and the board's time zone.
type IdentityDeriver struct {
	clock    Clock
	location *time.Location
}

func NewIdentityDeriver(clock Clock, location *time.Location) *IdentityDeriver {
	if clock == nil {
		clock = RealClock{}
	}
	if location == nil {
		location = time.Local
	}
	return &IdentityDeriver{clock: clock, location: location}
}

// Derive computes today's id for addr on boardID.
func (d *IdentityDeriver) Derive(addr string, boardID int64) string {
	return DeriveIdentity(addr, boardID, d.clock.Now().In(d.location))
}

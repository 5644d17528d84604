package models

import "time"

// Member records that an identity belongs to a line. Membership is strictly
// additive; there is no leave or revoke path in this version.
type Member struct {
	LineID   int64
	Identity string
	JoinedAt time.Time
}

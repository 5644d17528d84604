package models

import "time"

// Message is one immutable entry of a line's append-only log. Seq is
// 0-based, assigned at insertion time from a per-line counter and never
// reassigned. Ciphertext is opaque to the server.
type Message struct {
	LineID     int64
	Seq        int64
	Sender     string
	Ciphertext []byte
	SentAt     time.Time
}

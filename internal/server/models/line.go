package models

import "time"

// Line is a named group-communication channel. IDs are sequential, 1-indexed
// and never reused; a line is never deleted.
type Line struct {
	ID        int64
	Name      string
	Creator   string
	CreatedAt time.Time
}

// LineInfo is the read-surface snapshot of a line: metadata plus counts
// derived from the membership and message relations.
type LineInfo struct {
	Line
	MemberCount  int64
	MessageCount int64
}

package model

import "time"

// BatchSnapshot is a suspended review batch as stored between sessions.
// Only records are kept; reviewer decisions are never persisted.
type BatchSnapshot struct {
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
	ID        string             `json:"id"`
	Document  string             `json:"document"`
	Source    SourceKind         `json:"source"`
	Policy    string             `json:"policy"`
	Records   []AttendanceRecord `json:"records"`
}

// Outstanding counts the records still waiting on a reviewer.
func (b BatchSnapshot) Outstanding() int {
	n := 0
	for _, r := range b.Records {
		if r.State.NeedsReview() {
			n++
		}
	}
	return n
}

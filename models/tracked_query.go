package models

import "time"

// TrackedQuery is the bookkeeping record for a subtree under active or
// historical sync tracking. The persistence layer only loads, saves and
// bulk-deactivates these records; all other mutation belongs to the
// tracked-query subsystem.
type TrackedQuery struct {
	// ID is the caller-assigned unique identifier of the query.
	ID int64 `json:"id"`

	// Path is the slash-joined root of the tracked subtree.
	Path string `json:"path"`

	// Params carries the serialized query parameters. Empty for a plain
	// unfiltered subtree listen.
	Params string `json:"params,omitempty"`

	// Active reports whether the query is currently being synchronized.
	Active bool `json:"active"`

	// LastUse is the time the query was last active, in milliseconds since
	// the Unix epoch.
	LastUse int64 `json:"lastUse"`
}

// SetActiveState flips the active flag.
func (q *TrackedQuery) SetActiveState(active bool) {
	q.Active = active
}

// UpdateLastUse stamps the record with the given time.
func (q *TrackedQuery) UpdateLastUse(t time.Time) {
	q.LastUse = t.UnixMilli()
}

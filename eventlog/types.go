// Package eventlog appends one JSON line per advance_all call to a
// decode session, and replays those lines back, using
// bufio.Scanner/encoding/json for the line-delimited read side and
// plain encoding/json for the append side.
package eventlog

import "time"

// ResultEntry is the recorded outcome for a single machine.AdvanceResult
// returned by an advance_all call.
type ResultEntry struct {
	Token     string `json:"token"`
	RawValue  string `json:"rawValue"`
	Accepted  bool   `json:"accepted"`
	Remaining string `json:"remaining,omitempty"`
}

// Entry is one line of the trace log: the token offered to the frontier,
// the frontier size before and after, and a summary of every resulting
// walker.
type Entry struct {
	Timestamp     time.Time     `json:"timestamp"`
	Token         string        `json:"token"`
	FrontierSize  int           `json:"frontierSizeBefore"`
	ResultSize    int           `json:"frontierSizeAfter"`
	Results       []ResultEntry `json:"results"`
	Exhausted     bool          `json:"exhausted,omitempty"`
}

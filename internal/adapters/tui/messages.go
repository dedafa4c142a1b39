package tui

import "time"

// MsgPlan initializes the command list once the run is resolved.
type MsgPlan struct {
	Commands      []string
	Prerequisites map[string][]string
	Targets       []string
}

// MsgCommandStart marks a command as running.
type MsgCommandStart struct {
	SpanID    string
	ParentID  string
	Name      string
	StartTime time.Time
}

// MsgCommandLog carries raw output of a running command.
type MsgCommandLog struct {
	SpanID string
	Data   []byte
}

// MsgCommandComplete marks a command as finished.
type MsgCommandComplete struct {
	SpanID  string
	EndTime time.Time
	Err     error
	Cached  bool
}

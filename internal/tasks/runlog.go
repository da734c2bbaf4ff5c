package tasks

import (
	"encoding/json"
	"fmt"
	"strings"
)

// RunLog is an ordered, append-only narrative of what an operation did.
//
// Operations return their own RunLog alongside their result; callers combine them with [RunLog.Append].
// The zero value is an empty log ready to use.
type RunLog struct {
	lines []string
}

// NewRunLog creates a log holding lines in order.
func NewRunLog(lines ...string) RunLog {
	return RunLog{lines: append([]string(nil), lines...)}
}

// Printf appends one formatted line.
func (l *RunLog) Printf(format string, args ...any) {
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

// Append adds every line of other after the existing lines.
func (l *RunLog) Append(other RunLog) {
	l.lines = append(l.lines, other.lines...)
}

// Lines returns a copy of the log lines.
func (l RunLog) Lines() []string {
	return append([]string(nil), l.lines...)
}

func (l RunLog) Len() int {
	return len(l.lines)
}

func (l RunLog) String() string {
	return strings.Join(l.lines, "\n")
}

// MarshalJSON encodes the log as an array of lines.
func (l RunLog) MarshalJSON() ([]byte, error) {
	if l.lines == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l.lines)
}

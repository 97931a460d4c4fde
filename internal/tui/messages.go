package tui

import "github.com/Veraticus/spendsync/internal/engine"

// resultMsg carries a finished engine task back into the update loop.
type resultMsg struct {
	result engine.Result
}

// statusLevel picks the style of the status line.
type statusLevel int

const (
	statusInfo statusLevel = iota
	statusSuccess
	statusError
)

// status is the one-line message under the dashboard.
type status struct {
	text   string
	level  statusLevel
	reload bool
}

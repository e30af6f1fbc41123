package practice

import "time"

// startedMsg is sent when exercises are ready or generation failed.
type startedMsg struct {
	Err error
}

// submittedMsg is sent when an answer has been validated.
type submittedMsg struct {
	Err error
}

// hintMsg carries a requested hint.
type hintMsg struct {
	Hint string
	Err  error
}

// explainedMsg is sent when the step-by-step explanation arrives.
type explainedMsg struct {
	Err error
}

// continuedMsg is sent after leaving a revealed exercise. After the last
// one it arrives once the report is done.
type continuedMsg struct {
	Err error
}

// expiredMsg is sent when the time limit ran out and the session closed.
type expiredMsg struct {
	Err error
}

// timerTickMsg is sent every second while a timed session runs.
type timerTickMsg time.Time

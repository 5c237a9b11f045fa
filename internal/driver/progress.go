package driver

import "time"

// Stage describes what happened to a file.
type Stage string

const (
	// StageQueued is reported for every file before work starts.
	StageQueued Stage = "queued"
	// StageCached means the cache skipped the file.
	StageCached Stage = "cached"
	StageLint   Stage = "lint"
	StageFix    Stage = "fix"
	// StageWorkspace is reported with an empty File for the export-surface task.
	StageWorkspace Stage = "workspace"
)

// Status captures progress state within a stage.
type Status string

const (
	StatusWorking Status = "working"
	StatusDone    Status = "done"
	// StatusProblems means the file finished with diagnostics left.
	StatusProblems Status = "problems"
	StatusError    Status = "error"
)

// Event reports progress for a file (or for the whole run when File is empty).
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events. OnEvent is called from worker
// goroutines concurrently.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

func emit(sink ProgressSink, evt Event) {
	if sink != nil {
		sink.OnEvent(evt)
	}
}

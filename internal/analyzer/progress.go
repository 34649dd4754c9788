package analyzer

// ProgressStatus mirrors the teacher's ProgressStatus enum, renamed from
// per-agent-task lifecycle to per-file analysis lifecycle.
type ProgressStatus int

const (
	ProgressPending ProgressStatus = iota
	ProgressWorking
	ProgressComplete
	ProgressFailed
)

// ProgressEvent reports one file's analysis lifecycle transition.
// Grounded on the teacher's orchestrator.ProgressEvent, with Stage/Section
// (pipeline-stage scoped) narrowed to just Section (a file path — the
// analyzer run has no stages, only a flat file set analyzed in parallel).
//
// BatchRunner.WithProgress takes a plain callback rather than the
// teacher's buffered-channel ProgressReporter: a CLI progress bar wants to
// update synchronously as each file finishes, not drain a channel on the
// side, so the channel indirection was dropped rather than ported.
type ProgressEvent struct {
	Section string
	Status  ProgressStatus
	Message string
}

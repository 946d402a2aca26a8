package batch

// ItemStatus is the processing outcome of a single batch item.
type ItemStatus string

// Batch item status values.
const (
	StatusOK    ItemStatus = "ok"
	StatusError ItemStatus = "error"
)

// Stage is the ingestion step at which an item finished.
type Stage string

// Ingestion stages.
const (
	StageBuild Stage = "build"
	StageWrite Stage = "write"
)

// Result is the outcome of processing one document in an ingestion run.
type Result struct {
	key      string
	stage    Stage
	status   ItemStatus
	attempts int
	err      error
}

// NewWritten creates a result for a document persisted after the given number of attempts.
func NewWritten(key string, attempts int) Result {
	return Result{key: key, stage: StageWrite, status: StatusOK, attempts: attempts}
}

// NewError creates a failed result. Build failures may have no key yet.
func NewError(key string, stage Stage, attempts int, err error) Result {
	return Result{key: key, stage: stage, status: StatusError, attempts: attempts, err: err}
}

// Key returns the document key, empty if the item failed before a key was assigned.
func (r Result) Key() string { return r.key }

// Stage returns the step at which the item finished.
func (r Result) Stage() Stage { return r.stage }

// Status returns the processing outcome.
func (r Result) Status() ItemStatus { return r.status }

// Attempts returns the number of write calls made.
func (r Result) Attempts() int { return r.attempts }

// Err returns the error, if any.
func (r Result) Err() error { return r.err }

package logger

// Fields is an alias for map[string]interface{} for convenience.
type Fields map[string]interface{}

// Tracing fields propagated through the call chain via context.
const (
	FieldRequestID     = "request_id"
	FieldComponent     = "component"
	FieldApplicationID = "application_id"
	FieldCandidateID   = "candidate_id"
	FieldJobID         = "job_id"
	FieldTaskID        = "task_id"
	FieldSyncRunID     = "sync_run_id"
)

// Metric fields used for aggregation and alerting.
const (
	FieldDurationMs = "duration_ms"
	FieldCount      = "count"
	FieldSize       = "size"
	FieldStatus     = "status"
	FieldStage      = "stage"
)

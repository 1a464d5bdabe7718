package contract

import "errors"

var (
	ErrModelInvoke     = errors.New("model invoke failed")
	ErrSchemaViolation = errors.New("model response violates schema")
	ErrPromptMissing   = errors.New("required prompt is missing")
	ErrValidation      = errors.New("validation failed")

	ErrWorkerFailure    = errors.New("worker failed")
	ErrPersistence      = errors.New("memory persistence failed")
	ErrPlanningFallback = errors.New("llm planning unavailable, using rules")
	ErrMemoryNotFound   = errors.New("memory record not found")
	ErrTimeout          = errors.New("operation timed out")
)

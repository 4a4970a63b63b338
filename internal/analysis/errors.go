package analysis

import "errors"

// ErrSchemaMismatch indicates model output that failed schema validation.
// No retry, no partial credit: the entire analysis is discarded.
var ErrSchemaMismatch = errors.New("model output failed schema validation")

const (
	ErrorCodeValidation = "validation_error"
	ErrorCodeExtraction = "extraction_error"
	ErrorCodeProcessing = "processing_error"
	ErrorCodeQuota      = "limit_reached"
)

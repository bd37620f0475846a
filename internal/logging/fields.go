package logging

// Field names for structured logging.
const (
	// Common fields.
	FieldError   = "error"
	FieldPath    = "path"
	FieldURL     = "url"
	FieldReason  = "reason"
	FieldMessage = "message"

	// Document fields.
	FieldRange    = "range"
	FieldLocation = "location"
	FieldLength   = "length"
	FieldBlocks   = "blocks"
	FieldTitle    = "title"

	// Operation fields.
	FieldOp       = "op"
	FieldSeq      = "seq"
	FieldExpected = "expected"
	FieldUnit     = "unit"
	FieldOps      = "ops"

	// Configuration fields.
	FieldFlavor = "flavor"
	FieldConfig = "config"

	// Version fields.
	FieldVersion = "version"
	FieldCommit  = "commit"
	FieldBuilt   = "built"
)

package types

import "errors"

// Sentinel errors for export operations.
var (
	// ErrMalformedSourceExpression indicates a source expression that is not
	// COL:<TABLE>.<column> or RESP:<QUESTION>:<FIELD>.
	ErrMalformedSourceExpression = errors.New("malformed source expression")

	// ErrUnknownTransformOp indicates a transform token outside trim, lower, date:yyyymmdd.
	ErrUnknownTransformOp = errors.New("unknown transform op")

	// ErrInvalidFieldGeometry indicates a field whose positions violate
	// start_pos >= 1 and length = end_pos - start_pos + 1.
	ErrInvalidFieldGeometry = errors.New("invalid field geometry")

	// ErrInvalidRowLength indicates a non-positive row width.
	ErrInvalidRowLength = errors.New("invalid row length")

	// ErrLineWidth indicates a line whose character count differs from the row width.
	ErrLineWidth = errors.New("line width does not match row length")

	// ErrInvalidLayout indicates a layout file that failed validation.
	ErrInvalidLayout = errors.New("invalid layout")

	// ErrMappingSetMismatch indicates a mapping set that belongs to another export spec.
	ErrMappingSetMismatch = errors.New("mapping set does not belong to export spec")

	// ErrNotFound indicates a catalog row could not be found.
	ErrNotFound = errors.New("not found")
)

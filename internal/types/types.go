// Package types provides domain models shared across the export components.
//
// Zero-dependency design: types.go, export.go and errors.go use only the
// standard library so the codec packages (mapping, fixedwidth, validate) stay
// free of storage and transport concerns. ID utilities in ids.go import uuid
// but are only used by the store and export layers.
package types

// ExportSpecID identifies one fixed-width layout (spec name + version).
type ExportSpecID string

// ExportFieldID identifies one field of an export layout.
type ExportFieldID string

// MappingSetID identifies the set of mapping rules used for an export.
type MappingSetID string

// RunID identifies a batch of assessments that is exported together.
type RunID string

// ExportFileID identifies one produced export file and its findings.
type ExportFileID string

// Known domain types checked by the validation engine.
// Other domain types (TEXT, ENUM, ENUM_YN, SPEC_RAW) are carried but not checked.
const (
	DomainDODID10      = "DODID10"
	DomainDateYYYYMMDD = "DATE_YYYYMMDD"
	DomainText         = "TEXT"
	DomainEnumYN       = "ENUM_YN"
	DomainEnum         = "ENUM"
	DomainSpecRaw      = "SPEC_RAW"
)

// Validation error codes emitted by the validation engine.
const (
	CodeLenMismatch = "LEN_MISMATCH"
	CodeBadDODID10  = "BAD_DODID10"
	CodeBadDate     = "BAD_DATE"
)

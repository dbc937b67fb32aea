package types

import (
	"time"

	"github.com/google/uuid"
)

// NewID generates a UUIDv7 identifier string.
// Time-ordered IDs ensure sequential inserts cluster in B-tree pages.
// Panics on clock regression (uuid.Must); acceptable for ID generation.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// NewExportFileID generates a UUIDv7 export file identifier.
func NewExportFileID() ExportFileID {
	return ExportFileID(NewID())
}

// ParseExportSpecID validates and converts a string to ExportSpecID.
// Rejects malformed UUIDs to prevent invalid IDs from reaching queries.
func ParseExportSpecID(s string) (ExportSpecID, error) {
	if _, err := uuid.Parse(s); err != nil {
		return "", err
	}
	return ExportSpecID(s), nil
}

// ParseMappingSetID validates and converts a string to MappingSetID.
func ParseMappingSetID(s string) (MappingSetID, error) {
	if _, err := uuid.Parse(s); err != nil {
		return "", err
	}
	return MappingSetID(s), nil
}

// ParseRunID validates and converts a string to RunID.
func ParseRunID(s string) (RunID, error) {
	if _, err := uuid.Parse(s); err != nil {
		return "", err
	}
	return RunID(s), nil
}

// IDTime extracts the timestamp embedded in a UUIDv7 ID.
// Returns zero time for invalid UUIDs; caller should check IsZero().
func IDTime(id string) time.Time {
	u, err := uuid.Parse(id)
	if err != nil {
		return time.Time{}
	}
	sec, nsec := u.Time().UnixTime()
	return time.Unix(sec, nsec)
}

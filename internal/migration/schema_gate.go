package migration

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrSchemaNotInitialized   = errors.New("schema state not found; run the migrate command")
	ErrSchemaVersionMismatch  = errors.New("schema version mismatch")
	ErrSchemaChecksumMismatch = errors.New("schema checksum mismatch")
)

type schemaState struct {
	SchemaVersion string  `gorm:"column:schema_version"`
	Checksum      *string `gorm:"column:checksum"`
}

// CheckSchema fails when the database was not migrated to exactly the
// embedded schema.
func CheckSchema(ctx context.Context, db *gorm.DB) error {
	manifest, err := LoadManifest()
	if err != nil {
		return err
	}

	var state schemaState
	result := db.WithContext(ctx).Table("schema_state").
		Select("schema_version, checksum").
		Where("id = TRUE").
		Limit(1).
		Scan(&state)
	if result.Error != nil {
		return fmt.Errorf("%w: %v", ErrSchemaNotInitialized, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrSchemaNotInitialized
	}

	if got := strings.TrimSpace(state.SchemaVersion); got != manifest.VersionString() {
		return fmt.Errorf("%w: state=%s expected=%s", ErrSchemaVersionMismatch, got, manifest.VersionString())
	}
	if state.Checksum != nil && strings.TrimSpace(*state.Checksum) != manifest.Checksum {
		return fmt.Errorf("%w: state=%s expected=%s", ErrSchemaChecksumMismatch, *state.Checksum, manifest.Checksum)
	}
	return nil
}

package migration

import (
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strconv"
	"strings"
)

const migrationsDir = "migrations"

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// Manifest identifies the embedded schema: the highest up-migration version
// and a checksum over every up-migration.
type Manifest struct {
	Version  uint
	Checksum string
}

func (m Manifest) VersionString() string {
	return strconv.FormatUint(uint64(m.Version), 10)
}

func LoadManifest() (Manifest, error) {
	entries, err := fs.ReadDir(embeddedMigrations, migrationsDir)
	if err != nil {
		return Manifest{}, fmt.Errorf("list migrations: %w", err)
	}

	var (
		names  []string
		latest uint
	)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".up.sql") {
			continue
		}
		prefix, _, _ := strings.Cut(name, "_")
		version, err := strconv.ParseUint(prefix, 10, 64)
		if err != nil {
			return Manifest{}, fmt.Errorf("invalid migration filename: %s", name)
		}
		latest = max(latest, uint(version))
		names = append(names, name)
	}
	if latest == 0 {
		return Manifest{}, errors.New("no embedded migrations found")
	}
	sort.Strings(names)

	hasher := sha256.New()
	for _, name := range names {
		content, err := embeddedMigrations.ReadFile(migrationsDir + "/" + name)
		if err != nil {
			return Manifest{}, fmt.Errorf("read migration %s: %w", name, err)
		}
		hasher.Write([]byte(name))
		hasher.Write([]byte{0})
		hasher.Write(content)
		hasher.Write([]byte{0})
	}

	return Manifest{Version: latest, Checksum: hex.EncodeToString(hasher.Sum(nil))}, nil
}

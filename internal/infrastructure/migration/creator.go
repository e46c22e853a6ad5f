package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Stub contents for freshly created migration pairs. golang-migrate matches
// the files purely by name, so the headers are for the humans editing them.
const upStub = `-- %[1]s
-- created %[2]s
-- %[3]s

-- apply schema changes here

`

const downStub = `-- %[1]s (rollback)
-- created %[2]s
-- undoes: %[3]s

-- revert the matching up migration here

`

// MigrationFile describes a created up/down pair on disk.
type MigrationFile struct {
	Version     string
	Name        string
	Description string
	Timestamp   string
	UpPath      string
	DownPath    string
}

// CreateMigration writes a timestamped up/down SQL stub pair into
// migrationsDir, creating the directory when needed. The version prefix is
// the creation time in YYYYMMDDHHMMSS form so files sort in apply order.
func CreateMigration(migrationsDir, name, description string) (*MigrationFile, error) {
	if err := os.MkdirAll(migrationsDir, 0o755); err != nil {
		return nil, fmt.Errorf("create migrations directory: %w", err)
	}

	now := time.Now()
	mf := &MigrationFile{
		Version:     now.Format("20060102150405"),
		Name:        name,
		Description: description,
		Timestamp:   now.Format(time.RFC3339),
	}
	base := mf.Version + "_" + sanitizeName(name)
	mf.UpPath = filepath.Join(migrationsDir, base+".up.sql")
	mf.DownPath = filepath.Join(migrationsDir, base+".down.sql")

	up := fmt.Sprintf(upStub, name, mf.Timestamp, description)
	if err := os.WriteFile(mf.UpPath, []byte(up), 0o644); err != nil {
		return nil, fmt.Errorf("write up migration: %w", err)
	}

	down := fmt.Sprintf(downStub, name, mf.Timestamp, description)
	if err := os.WriteFile(mf.DownPath, []byte(down), 0o644); err != nil {
		// don't leave a half-created pair behind
		_ = os.Remove(mf.UpPath)
		return nil, fmt.Errorf("write down migration: %w", err)
	}

	return mf, nil
}

// sanitizeName lowercases a migration name and squeezes it into the
// snake_case form used in file names. Characters outside [a-z0-9_] are
// dropped.
func sanitizeName(name string) string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		case r == ' ' || r == '-' || r == '_':
			return ' '
		default:
			return -1
		}
	}, name)
	return strings.Join(strings.Fields(mapped), "_")
}

// ListMigrations returns the sorted base names of all migrations in a
// directory, one entry per up/down pair. A missing directory is treated as
// an empty one.
func ListMigrations(migrationsDir string) ([]string, error) {
	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("read migrations directory: %w", err)
	}

	migrations := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		base, ok := strings.CutSuffix(entry.Name(), ".up.sql")
		if !ok {
			continue
		}
		migrations = append(migrations, base)
	}
	sort.Strings(migrations)

	return migrations, nil
}

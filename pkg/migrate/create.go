package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

const versionLayout = "20060102150405"

var nameSanitizeRe = regexp.MustCompile(`[^a-z0-9_]+`)

// Migrations run against both postgres and the embedded sqlite engine, so the
// scaffold sticks to column types the two agree on.
const migrationTemplate = `-- +goose Up
-- %[1]s
-- portable types only: UUID, TEXT, INTEGER, NUMERIC(p,s), TIMESTAMP, JSONB.

-- +goose Down
-- rollback %[1]s
`

// CreateSQLMigration writes <dir>/<YYYYMMDDHHMMSS>_<name>.sql. The version is
// bumped past the newest file already in dir so two quick calls never collide.
func CreateSQLMigration(dir string, name string) (string, error) {
	return createSQLMigration(dir, name, time.Now().UTC())
}

func createSQLMigration(dir, name string, now time.Time) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("dir is required")
	}
	slug, err := migrationSlug(name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %q: %w", dir, err)
	}

	version, err := nextVersion(dir, now)
	if err != nil {
		return "", err
	}

	fullpath := filepath.Join(dir, fmt.Sprintf("%s_%s.sql", version, slug))
	if _, err := os.Stat(fullpath); err == nil {
		return "", fmt.Errorf("migration already exists: %s", fullpath)
	}
	if err := os.WriteFile(fullpath, []byte(fmt.Sprintf(migrationTemplate, slug)), 0o644); err != nil {
		return "", fmt.Errorf("write migration %q: %w", fullpath, err)
	}
	return fullpath, nil
}

func migrationSlug(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("name is required")
	}
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = nameSanitizeRe.ReplaceAllString(strings.ReplaceAll(slug, " ", "_"), "_")
	slug = strings.Trim(slug, "_")
	if slug == "" {
		return "", fmt.Errorf("name %q results in empty sanitized filename", name)
	}
	return slug, nil
}

func nextVersion(dir string, now time.Time) (string, error) {
	files, err := migrationFiles(dir)
	if err != nil {
		return "", err
	}
	next := now.UTC().Truncate(time.Second)
	if len(files) == 0 {
		return next.Format(versionLayout), nil
	}

	latest, err := time.Parse(versionLayout, files[len(files)-1].version)
	if err != nil {
		return "", fmt.Errorf("parse version of %q: %w", files[len(files)-1].name, err)
	}
	if !next.After(latest) {
		next = latest.Add(time.Second)
	}
	return next.Format(versionLayout), nil
}

// Package migration manages the SQL schema of the postgres template store.
package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/template"
	"time"
)

const (
	upSuffix   = ".up.sql"
	downSuffix = ".down.sql"

	// versionLayout keeps file names in apply order when sorted
	versionLayout = "20060102150405"
)

var (
	upTemplate = template.Must(template.New("up").Parse(`-- {{.Name}}
-- Created: {{.Timestamp}}
{{- if .Description}}
-- {{.Description}}
{{- end}}

`))
	downTemplate = template.Must(template.New("down").Parse(`-- Rollback: {{.Name}}
-- Created: {{.Timestamp}}

`))
)

// MigrationFile is an up/down pair on disk
type MigrationFile struct {
	Version     string
	Name        string
	Description string
	Timestamp   string
	UpPath      string
	DownPath    string
}

// Number returns the numeric version golang-migrate tracks
func (f MigrationFile) Number() uint64 {
	n, _ := strconv.ParseUint(f.Version, 10, 64)
	return n
}

// HasDown reports whether the rollback file exists
func (f MigrationFile) HasDown() bool {
	return f.DownPath != ""
}

func (f MigrationFile) String() string {
	if f.HasDown() {
		return f.Version + "_" + f.Name
	}
	return f.Version + "_" + f.Name + " (no down migration)"
}

// CreateMigration writes an empty up/down pair named after the current time
func CreateMigration(migrationsDir, name, description string) (*MigrationFile, error) {
	return createMigrationAt(migrationsDir, name, description, time.Now())
}

func createMigrationAt(migrationsDir, name, description string, now time.Time) (*MigrationFile, error) {
	slug := sanitizeName(name)
	if slug == "" {
		return nil, fmt.Errorf("migration name %q has no usable characters", name)
	}
	if err := os.MkdirAll(migrationsDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create migrations directory: %w", err)
	}

	base := now.UTC().Format(versionLayout) + "_" + slug
	mf := &MigrationFile{
		Version:     now.UTC().Format(versionLayout),
		Name:        slug,
		Description: description,
		Timestamp:   now.UTC().Format(time.RFC3339),
		UpPath:      filepath.Join(migrationsDir, base+upSuffix),
		DownPath:    filepath.Join(migrationsDir, base+downSuffix),
	}

	if err := writeMigrationFile(mf.UpPath, upTemplate, mf); err != nil {
		return nil, fmt.Errorf("failed to create up migration: %w", err)
	}
	if err := writeMigrationFile(mf.DownPath, downTemplate, mf); err != nil {
		_ = os.Remove(mf.UpPath)
		return nil, fmt.Errorf("failed to create down migration: %w", err)
	}
	return mf, nil
}

// writeMigrationFile refuses to overwrite an existing migration
func writeMigrationFile(path string, tmpl *template.Template, data *MigrationFile) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", path, err)
	}
	defer f.Close()
	return tmpl.Execute(f, data)
}

// sanitizeName lowercases name and joins its words with single underscores
func sanitizeName(name string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(name) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			pendingSep = true
		}
	}
	return b.String()
}

// ListMigrations returns the migrations in migrationsDir in apply order.
// A missing directory lists nothing.
func ListMigrations(migrationsDir string) ([]MigrationFile, error) {
	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	downs := make(map[string]string)
	for _, e := range entries {
		if base, ok := strings.CutSuffix(e.Name(), downSuffix); ok && !e.IsDir() {
			downs[base] = filepath.Join(migrationsDir, e.Name())
		}
	}

	var files []MigrationFile
	for _, e := range entries {
		base, ok := strings.CutSuffix(e.Name(), upSuffix)
		if !ok || e.IsDir() {
			continue
		}
		version, name, _ := strings.Cut(base, "_")
		if _, err := strconv.ParseUint(version, 10, 64); err != nil {
			continue
		}
		files = append(files, MigrationFile{
			Version:  version,
			Name:     name,
			UpPath:   filepath.Join(migrationsDir, e.Name()),
			DownPath: downs[base],
		})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Number() < files[j].Number() })
	return files, nil
}

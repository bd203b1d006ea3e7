// internal/snapshot/store.go
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "formbricks-seeder/internal/common/errors"
	"formbricks-seeder/internal/models"
)

// Store reads and writes generation snapshots in a flat directory.
type Store struct {
	dir   string
	now   func() time.Time
	newID func() string
}

type Option func(*Store)

func WithClock(fn func() time.Time) Option { return func(s *Store) { s.now = fn } }

func WithRunID(fn func() string) Option { return func(s *Store) { s.newID = fn } }

func NewStore(dir string, opts ...Option) *Store {
	s := &Store{
		dir:   dir,
		now:   time.Now,
		newID: func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Dir() string { return s.dir }

// Snapshot is a loaded dataset and the file each kind came from.
type Snapshot struct {
	Dataset *models.Dataset
	Files   map[Kind]string
	RunID   string
}

// Save writes one timestamped file per kind, refreshes the <kind>_latest.json
// copies and the latest.json manifest.
func (s *Store) Save(ds *models.Dataset, seed int64) (*Manifest, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, apperrors.NewSnapshotWriteError(s.dir, err)
	}

	stamp := s.now().Format(timestampLayout)
	manifest := &Manifest{
		Version:   manifestVersion,
		RunID:     s.newID(),
		CreatedAt: s.now().UTC().Format(time.RFC3339),
		Seed:      seed,
		Files:     make(map[Kind]string, len(Kinds)),
		Counts:    make(map[Kind]int, len(Kinds)),
	}

	for _, kind := range Kinds {
		payload, count := kindPayload(ds, kind)
		data, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s: %w", kind, err)
		}

		name := fmt.Sprintf("%s_%s.json", kind, stamp)
		if err := writeFileAtomic(filepath.Join(s.dir, name), data); err != nil {
			return nil, err
		}
		if err := writeFileAtomic(filepath.Join(s.dir, aliasName(kind)), data); err != nil {
			return nil, err
		}
		manifest.Files[kind] = name
		manifest.Counts[kind] = count
	}

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := writeFileAtomic(filepath.Join(s.dir, manifestFile), data); err != nil {
		return nil, err
	}
	return manifest, nil
}

func kindPayload(ds *models.Dataset, kind Kind) (interface{}, int) {
	switch kind {
	case KindSurveys:
		if ds.Surveys == nil {
			return []models.Survey{}, 0
		}
		return ds.Surveys, len(ds.Surveys)
	case KindUsers:
		if ds.Users == nil {
			return []models.User{}, 0
		}
		return ds.Users, len(ds.Users)
	default:
		if ds.Responses == nil {
			return []models.Response{}, 0
		}
		return ds.Responses, len(ds.Responses)
	}
}

// Load resolves and decodes the requested kinds (all kinds when none are
// given). Each kind is looked up in the manifest, then the alias copy, then
// the lexicographically last timestamped file.
func (s *Store) Load(kinds ...Kind) (*Snapshot, error) {
	if len(kinds) == 0 {
		kinds = Kinds
	}

	manifest, err := s.readManifest()
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{Dataset: &models.Dataset{}, Files: make(map[Kind]string)}
	if manifest != nil {
		snap.RunID = manifest.RunID
	}

	var missing []string
	for _, kind := range kinds {
		path := s.resolve(kind, manifest)
		if path == "" {
			missing = append(missing, string(kind))
			continue
		}
		if err := decodeKind(path, kind, snap.Dataset); err != nil {
			return nil, err
		}
		snap.Files[kind] = path
	}
	if len(missing) > 0 {
		return nil, apperrors.NewSnapshotNotFoundError(s.dir, missing)
	}
	return snap, nil
}

func (s *Store) readManifest() (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, manifestFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, apperrors.NewMalformedContentError("invalid snapshot manifest", err)
	}
	return &m, nil
}

func (s *Store) resolve(kind Kind, manifest *Manifest) string {
	if manifest != nil {
		if name, ok := manifest.Files[kind]; ok && fileExists(filepath.Join(s.dir, name)) {
			return filepath.Join(s.dir, name)
		}
	}
	if alias := filepath.Join(s.dir, aliasName(kind)); fileExists(alias) {
		return alias
	}

	matches, _ := filepath.Glob(filepath.Join(s.dir, string(kind)+"_*.json"))
	candidates := matches[:0]
	for _, m := range matches {
		if filepath.Base(m) != aliasName(kind) {
			candidates = append(candidates, m)
		}
	}
	if len(candidates) == 0 {
		return ""
	}
	sort.Strings(candidates)
	return candidates[len(candidates)-1]
}

func decodeKind(path string, kind Kind, ds *models.Dataset) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	var target interface{}
	switch kind {
	case KindSurveys:
		target = &ds.Surveys
	case KindUsers:
		target = &ds.Users
	default:
		target = &ds.Responses
	}
	if err := json.Unmarshal(data, target); err != nil {
		return apperrors.NewMalformedContentError(fmt.Sprintf("cannot decode %s", filepath.Base(path)), err)
	}
	return nil
}

// WriteMapping persists the survey name -> platform id map written by seed.
func (s *Store) WriteMapping(mapping map[string]string) (string, error) {
	path := filepath.Join(s.dir, mappingFile)
	data, err := json.MarshalIndent(mapping, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal survey mapping: %w", err)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", apperrors.NewSnapshotWriteError(s.dir, err)
	}
	if err := writeFileAtomic(path, data); err != nil {
		return "", err
	}
	return path, nil
}

// ReadMapping returns the mapping of a previous seed run, or nil if none exists.
func (s *Store) ReadMapping() (map[string]string, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, mappingFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read survey mapping: %w", err)
	}
	var mapping map[string]string
	if err := json.Unmarshal(data, &mapping); err != nil {
		return nil, apperrors.NewMalformedContentError("invalid survey mapping", err)
	}
	return mapping, nil
}

// writeFileAtomic writes through a temp file in the same directory and
// renames it over path.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+strings.TrimSuffix(filepath.Base(path), ".json")+"-*.tmp")
	if err != nil {
		return apperrors.NewSnapshotWriteError(path, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return apperrors.NewSnapshotWriteError(path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return apperrors.NewSnapshotWriteError(path, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return apperrors.NewSnapshotWriteError(path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return apperrors.NewSnapshotWriteError(path, err)
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Package store provides durable storage for the canonical collections:
// one JSON array per family under the data directory, loaded and saved
// whole. There are no partial-collection writes; every mutation reads the
// full collection, mutates in memory, validates, then writes the full
// collection back.
//
// # Critical Patterns
//
// CP-1: Atomic whole-file writes
//   - Every save goes to a temp file in the target directory, is fsynced,
//     then renamed over the original
//   - A failed write leaves the prior file byte-identical
//
// CP-2: Stable serialization
//   - Records ordered by identifier, versions by number
//   - record.EncodeStable output, so Save(Load(x)) round-trips
//     byte-identically and regeneration diffs are minimal
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/roach88/reqstore/internal/record"
)

// Store reads and writes the canonical collections under a data directory.
type Store struct {
	dataDir string
}

// New creates a store rooted at the given data directory. The directory is
// created lazily on first save.
func New(dataDir string) *Store {
	return &Store{dataDir: dataDir}
}

// DataDir returns the directory holding the canonical collections.
func (s *Store) DataDir() string {
	return s.dataDir
}

func (s *Store) path(family record.Family) string {
	return filepath.Join(s.dataDir, family.Filename())
}

// LoadAll reads every family into a Snapshot. Missing or empty files load
// as empty collections; malformed JSON fails with CORRUPT_STORE.
func (s *Store) LoadAll() (*record.Snapshot, error) {
	snap := &record.Snapshot{}
	if err := loadFamily(s.path(record.FamilyReleases), &snap.Releases); err != nil {
		return nil, err
	}
	if err := loadFamily(s.path(record.FamilyDomain), &snap.Domain); err != nil {
		return nil, err
	}
	if err := loadFamily(s.path(record.FamilyRequirements), &snap.Requirements); err != nil {
		return nil, err
	}
	if err := loadFamily(s.path(record.FamilyFeatures), &snap.Features); err != nil {
		return nil, err
	}
	if err := loadFamily(s.path(record.FamilyEpics), &snap.Epics); err != nil {
		return nil, err
	}
	if err := loadFamily(s.path(record.FamilyStories), &snap.Stories); err != nil {
		return nil, err
	}
	return snap, nil
}

// Save persists the given families from the snapshot. Each collection is
// ordered by identifier (versions by number) and written atomically; an
// IO_ERROR leaves the prior file untouched.
func (s *Store) Save(snap *record.Snapshot, families ...record.Family) error {
	for _, family := range families {
		var (
			data []byte
			err  error
		)
		switch family {
		case record.FamilyReleases:
			data, err = encodeFamily(snap.Releases, func(r record.Release) string { return r.ID })
		case record.FamilyDomain:
			data, err = encodeFamily(snap.Domain, func(d record.DomainEntry) string { return d.ID })
		case record.FamilyRequirements:
			data, err = encodeFamily(snap.Requirements, func(r record.Requirement) string { return r.ID })
		case record.FamilyFeatures:
			data, err = encodeFamily(snap.Features, func(f record.Feature) string { return f.ID })
		case record.FamilyEpics:
			sortEpicVersions(snap.Epics)
			data, err = encodeFamily(snap.Epics, func(e record.Epic) string { return e.ID })
		case record.FamilyStories:
			sortStoryVersions(snap.Stories)
			data, err = encodeFamily(snap.Stories, func(st record.Story) string { return st.ID })
		default:
			return record.NewError(record.CodeIO, "unknown family %q", family)
		}
		if err != nil {
			return err
		}
		if err := WriteFileAtomic(s.path(family), data); err != nil {
			return err
		}
	}
	return nil
}

// SaveAll persists every family.
func (s *Store) SaveAll(snap *record.Snapshot) error {
	return s.Save(snap, record.Families...)
}

func loadFamily[T any](path string, out *[]T) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		*out = nil
		return nil
	}
	if err != nil {
		return record.WrapError(record.CodeIO, err, "read %s", path)
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		*out = nil
		return nil
	}
	if err := json.Unmarshal(trimmed, out); err != nil {
		return record.WrapError(record.CodeCorruptStore, err, "parse %s", path)
	}
	return nil
}

func encodeFamily[T any](records []T, id func(T) string) ([]byte, error) {
	sorted := make([]T, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool { return id(sorted[i]) < id(sorted[j]) })

	data, err := record.EncodeStable(sorted)
	if err != nil {
		return nil, record.WrapError(record.CodeIO, err, "encode collection")
	}
	return data, nil
}

func sortEpicVersions(epics []record.Epic) {
	for i := range epics {
		vs := epics[i].Versions
		sort.SliceStable(vs, func(a, b int) bool { return vs[a].Version < vs[b].Version })
	}
}

func sortStoryVersions(stories []record.Story) {
	for i := range stories {
		vs := stories[i].Versions
		sort.SliceStable(vs, func(a, b int) bool { return vs[a].Version < vs[b].Version })
	}
}

// WriteFileAtomic writes data to path via a temp file in the same directory
// followed by a rename, so a failure never clobbers the existing file.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return record.WrapError(record.CodeIO, err, "create %s", dir)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-")
	if err != nil {
		return record.WrapError(record.CodeIO, err, "create temp file in %s", dir)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return record.WrapError(record.CodeIO, err, "write %s", tmpName)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return record.WrapError(record.CodeIO, err, "sync %s", tmpName)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return record.WrapError(record.CodeIO, err, "close %s", tmpName)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return record.WrapError(record.CodeIO, err, "rename %s to %s", tmpName, path)
	}
	return nil
}

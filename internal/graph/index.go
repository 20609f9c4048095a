package graph

import (
	"path/filepath"
	"sort"

	"github.com/roach88/reqstore/internal/record"
	"github.com/roach88/reqstore/internal/store"
)

// Summary is the per-record entry in the by_id index. Version fields are
// zero for unversioned records and omitted from the output.
type Summary struct {
	ID             string `json:"id"`
	Type           string `json:"type"`
	Title          string `json:"title"`
	Status         string `json:"status"`
	VersionCount   int    `json:"version_count,omitempty"`
	CurrentVersion int    `json:"current_version,omitempty"`
	ReleaseRef     string `json:"release_ref,omitempty"`
}

// Index is the derived lookup index: by_id summaries plus grouping maps.
// Group values are sorted identifier lists; by_release groups the version
// node identifiers bound to each release.
type Index struct {
	ByID      map[string]Summary  `json:"by_id"`
	ByType    map[string][]string `json:"by_type"`
	ByStatus  map[string][]string `json:"by_status"`
	ByRelease map[string][]string `json:"by_release"`
	Metadata  IndexMetadata       `json:"metadata"`
}

// IndexMetadata summarizes the index.
type IndexMetadata struct {
	RecordCount int            `json:"record_count"`
	ByFamily    map[string]int `json:"by_family"`
}

// BuildIndex derives the lookup index from a snapshot.
func BuildIndex(snap *record.Snapshot) *Index {
	idx := &Index{
		ByID:      map[string]Summary{},
		ByType:    map[string][]string{},
		ByStatus:  map[string][]string{},
		ByRelease: map[string][]string{},
		Metadata:  IndexMetadata{ByFamily: map[string]int{}},
	}

	add := func(s Summary) {
		idx.ByID[s.ID] = s
		idx.ByType[s.Type] = append(idx.ByType[s.Type], s.ID)
		idx.ByStatus[s.Status] = append(idx.ByStatus[s.Status], s.ID)
	}

	for _, rel := range snap.Releases {
		add(Summary{ID: rel.ID, Type: NodeRelease, Title: rel.Title, Status: string(rel.Status)})
	}
	for _, d := range snap.Domain {
		add(Summary{ID: d.ID, Type: NodeDomain, Title: d.Title, Status: string(d.Status)})
	}
	for _, req := range snap.Requirements {
		add(Summary{ID: req.ID, Type: NodeRequirement, Title: req.Title, Status: string(req.Status)})
	}
	for _, feat := range snap.Features {
		add(Summary{ID: feat.ID, Type: NodeFeature, Title: feat.Title, Status: string(feat.Status)})
	}
	for _, epic := range snap.Epics {
		s := Summary{
			ID:             epic.ID,
			Type:           NodeEpic,
			Title:          epic.Title,
			Status:         string(epic.Status),
			VersionCount:   len(epic.Versions),
			CurrentVersion: currentVersionNumber(record.VersionPtrs(epic.Versions)),
		}
		for i := range epic.Versions {
			v := &epic.Versions[i]
			if v.Version == s.CurrentVersion {
				s.ReleaseRef = v.ReleaseRef
			}
			idx.ByRelease[v.ReleaseRef] = append(idx.ByRelease[v.ReleaseRef], VersionNodeID(epic.ID, v.Version))
		}
		add(s)
	}
	for _, story := range snap.Stories {
		s := Summary{
			ID:             story.ID,
			Type:           NodeStory,
			Title:          story.Title,
			Status:         string(story.Status),
			VersionCount:   len(story.Versions),
			CurrentVersion: currentVersionNumber(record.VersionPtrs(story.Versions)),
		}
		for i := range story.Versions {
			v := &story.Versions[i]
			if v.Version == s.CurrentVersion {
				s.ReleaseRef = v.ReleaseRef
			}
			idx.ByRelease[v.ReleaseRef] = append(idx.ByRelease[v.ReleaseRef], VersionNodeID(story.ID, v.Version))
		}
		add(s)
	}

	for _, group := range []map[string][]string{idx.ByType, idx.ByStatus, idx.ByRelease} {
		for key := range group {
			sort.Strings(group[key])
		}
	}

	idx.Metadata.RecordCount = len(idx.ByID)
	idx.Metadata.ByFamily = map[string]int{
		string(record.FamilyReleases):     len(snap.Releases),
		string(record.FamilyDomain):       len(snap.Domain),
		string(record.FamilyRequirements): len(snap.Requirements),
		string(record.FamilyFeatures):     len(snap.Features),
		string(record.FamilyEpics):        len(snap.Epics),
		string(record.FamilyStories):      len(snap.Stories),
	}
	return idx
}

// IndexFilename is the index projection's file name under the reports
// directory.
const IndexFilename = "index.json"

// WriteIndex persists the index atomically under dir.
func WriteIndex(dir string, idx *Index) error {
	data, err := record.EncodeStable(idx)
	if err != nil {
		return record.WrapError(record.CodeIO, err, "encode index")
	}
	return store.WriteFileAtomic(filepath.Join(dir, IndexFilename), data)
}

package testutil

import "github.com/roach88/reqstore/internal/record"

// FixedTime is the timestamp carried by every seeded record.
const FixedTime = "2025-01-01T00:00:00Z"

// Ptr returns a pointer to v. Fixture shorthand for nullable fields.
func Ptr[T any](v T) *T {
	return &v
}

// SeedSnapshot builds a valid snapshot exercising every family: open and
// closed releases, active and deprecated records, and versioned artifacts
// with superseded history. Tests mutate copies of it via Clone.
func SeedSnapshot() *record.Snapshot {
	return &record.Snapshot{
		Releases: []record.Release{
			{
				ID:          "REL-2024-12-01",
				Title:       "December drop",
				Status:      record.ReleaseReleased,
				ReleaseDate: "2024-12-01",
				Description: "Shipped baseline.",
				GitTag:      Ptr("v1.0.0"),
				Tags:        []string{},
				CreatedAt:   FixedTime,
				UpdatedAt:   FixedTime,
			},
			{
				ID:          "REL-2025-01-15",
				Title:       "January drop",
				Status:      record.ReleasePlanned,
				ReleaseDate: "2025-01-15",
				Description: "Planned follow-up.",
				Tags:        []string{},
				CreatedAt:   FixedTime,
				UpdatedAt:   FixedTime,
			},
			{
				ID:          "REL-2025-03-01",
				Title:       "March drop",
				Status:      record.ReleasePlanned,
				ReleaseDate: "2025-03-01",
				Description: "Planned quarter close.",
				Tags:        []string{},
				CreatedAt:   FixedTime,
				UpdatedAt:   FixedTime,
			},
		},
		Domain: []record.DomainEntry{
			{
				ID:        "DOM-001",
				Title:     "Billing policy",
				Status:    record.StatusActive,
				Types:     []string{"policy"},
				Source:    "finance",
				DocPath:   "docs/billing.md",
				Anchors:   []string{},
				Tags:      []string{},
				CreatedAt: FixedTime,
				UpdatedAt: FixedTime,
			},
			{
				ID:        "DOM-002",
				Title:     "Legacy rate card",
				Status:    record.StatusDeprecated,
				Types:     []string{"catalog"},
				Source:    "finance",
				DocPath:   "docs/rates-2023.md",
				Anchors:   []string{},
				Tags:      []string{},
				CreatedAt: FixedTime,
				UpdatedAt: FixedTime,
			},
		},
		Requirements: []record.Requirement{
			{
				ID:         "REQ-001",
				Title:      "Invoices are immutable",
				Status:     record.StatusActive,
				Type:       "functional",
				Invariant:  true,
				Statement:  "An issued invoice is never edited in place.",
				Rationale:  "Audit trail.",
				DomainRefs: []string{"DOM-001"},
				Tags:       []string{},
				CreatedAt:  FixedTime,
				UpdatedAt:  FixedTime,
			},
			{
				ID:           "REQ-002",
				Title:        "Monthly statements",
				Status:       record.StatusDeprecated,
				Type:         "functional",
				Statement:    "Statements are generated monthly.",
				Rationale:    "Superseded by on-demand statements.",
				DomainRefs:   []string{},
				SupersededBy: Ptr("REQ-003"),
				Tags:         []string{},
				CreatedAt:    FixedTime,
				UpdatedAt:    FixedTime,
			},
			{
				ID:         "REQ-003",
				Title:      "On-demand statements",
				Status:     record.StatusActive,
				Type:       "functional",
				Statement:  "Statements are generated on request.",
				Rationale:  "Customers asked for it.",
				DomainRefs: []string{},
				Tags:       []string{},
				CreatedAt:  FixedTime,
				UpdatedAt:  FixedTime,
			},
		},
		Features: []record.Feature{
			{
				ID:              "FEAT-001",
				Title:           "Invoicing",
				Status:          record.StatusActive,
				Purpose:         "Bill customers.",
				BusinessValue:   "Revenue collection.",
				InScope:         []string{"invoice generation"},
				OutOfScope:      []string{"payment processing"},
				RequirementRefs: []string{"REQ-001"},
				DomainRefs:      []string{"DOM-001"},
				Tags:            []string{},
				CreatedAt:       FixedTime,
				UpdatedAt:       FixedTime,
			},
		},
		Epics: []record.Epic{
			{
				ID:         "EPIC-001",
				Title:      "Invoice pipeline",
				Status:     record.StatusActive,
				FeatureRef: "FEAT-001",
				Tags:       []string{},
				CreatedAt:  FixedTime,
				Versions: []record.EpicVersion{
					{
						Version:         1,
						Status:          record.EpicSuperseded,
						ReleaseRef:      "REL-2024-12-01",
						Summary:         "Initial pipeline.",
						Assumptions:     []string{},
						Constraints:     []string{},
						RequirementRefs: []string{"REQ-001"},
						DomainRefs:      []string{},
						CreatedAt:       FixedTime,
						UpdatedAt:       FixedTime,
					},
					{
						Version:         2,
						Status:          record.EpicApproved,
						ReleaseRef:      "REL-2025-01-15",
						Summary:         "Pipeline with retries.",
						Assumptions:     []string{},
						Constraints:     []string{},
						RequirementRefs: []string{"REQ-001"},
						DomainRefs:      []string{},
						Supersedes:      Ptr(1),
						CreatedAt:       FixedTime,
						UpdatedAt:       FixedTime,
					},
				},
			},
		},
		Stories: []record.Story{
			{
				ID:        "STORY-001",
				Title:     "Generate invoice PDF",
				Status:    record.StatusActive,
				EpicRef:   "EPIC-001",
				Tags:      []string{},
				CreatedAt: FixedTime,
				Versions: []record.StoryVersion{
					{
						Version:            1,
						Status:             record.StoryReady,
						ReleaseRef:         "REL-2025-01-15",
						Description:        "Render the invoice as PDF.",
						RequirementRefs:    []string{"REQ-001"},
						DomainRefs:         []string{},
						AcceptanceCriteria: []string{"PDF matches the invoice totals"},
						TestIntent: record.TestIntent{
							FailureModes: []string{"renderer crash loses invoice"},
							Guarantees:   []string{"totals in PDF equal stored totals"},
							Exclusions:   []string{},
						},
						CreatedAt: FixedTime,
						UpdatedAt: FixedTime,
					},
				},
			},
		},
	}
}

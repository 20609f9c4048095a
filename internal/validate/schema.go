package validate

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cuejson "cuelang.org/go/encoding/json"

	"github.com/roach88/reqstore/internal/record"
)

//go:embed schema.cue
var schemaSource string

// familyDefs maps each family to its CUE definition name.
var familyDefs = map[record.Family]string{
	record.FamilyReleases:     "#Release",
	record.FamilyDomain:       "#DomainEntry",
	record.FamilyRequirements: "#Requirement",
	record.FamilyFeatures:     "#Feature",
	record.FamilyEpics:        "#Epic",
	record.FamilyStories:      "#Story",
}

var (
	schemaOnce  sync.Once
	schemaCtx   *cue.Context
	schemaValue cue.Value
	schemaErr   error
)

func loadSchema() (*cue.Context, cue.Value, error) {
	schemaOnce.Do(func() {
		schemaCtx = cuecontext.New()
		schemaValue = schemaCtx.CompileString(schemaSource, cue.Filename("schema.cue"))
		if err := schemaValue.Err(); err != nil {
			schemaErr = fmt.Errorf("compile schema.cue: %w", err)
		}
	})
	return schemaCtx, schemaValue, schemaErr
}

// checkSchemaShape validates every record against its family's CUE
// definition and reports one V100 violation per schema error.
func checkSchemaShape(snap *record.Snapshot, report func(Violation)) {
	checkFamilySchema(record.FamilyReleases, snap.Releases, func(r record.Release) string { return r.ID }, report)
	checkFamilySchema(record.FamilyDomain, snap.Domain, func(d record.DomainEntry) string { return d.ID }, report)
	checkFamilySchema(record.FamilyRequirements, snap.Requirements, func(r record.Requirement) string { return r.ID }, report)
	checkFamilySchema(record.FamilyFeatures, snap.Features, func(f record.Feature) string { return f.ID }, report)
	checkFamilySchema(record.FamilyEpics, snap.Epics, func(e record.Epic) string { return e.ID }, report)
	checkFamilySchema(record.FamilyStories, snap.Stories, func(s record.Story) string { return s.ID }, report)
}

func checkFamilySchema[T any](family record.Family, records []T, id func(T) string, report func(Violation)) {
	ctx, schema, err := loadSchema()
	if err != nil {
		report(Violation{
			Code:     CodeSchemaShape,
			Severity: SeverityBlocking,
			Record:   string(family),
			Message:  err.Error(),
		})
		return
	}

	def := schema.LookupPath(cue.ParsePath(familyDefs[family]))
	if err := def.Err(); err != nil {
		report(Violation{
			Code:     CodeSchemaShape,
			Severity: SeverityBlocking,
			Record:   string(family),
			Message:  fmt.Sprintf("schema definition %s: %v", familyDefs[family], err),
		})
		return
	}

	for _, rec := range records {
		recordID := id(rec)
		if recordID == "" {
			recordID = string(family)
		}

		raw, err := json.Marshal(rec)
		if err != nil {
			report(Violation{
				Code:     CodeSchemaShape,
				Severity: SeverityBlocking,
				Record:   recordID,
				Message:  fmt.Sprintf("encode record: %v", err),
			})
			continue
		}

		expr, err := cuejson.Extract(family.Filename(), raw)
		if err != nil {
			report(Violation{
				Code:     CodeSchemaShape,
				Severity: SeverityBlocking,
				Record:   recordID,
				Message:  fmt.Sprintf("parse record: %v", err),
			})
			continue
		}

		unified := def.Unify(ctx.BuildExpr(expr))
		if err := unified.Validate(cue.Concrete(true), cue.Final()); err != nil {
			for _, cueErr := range cueerrors.Errors(err) {
				report(Violation{
					Code:     CodeSchemaShape,
					Severity: SeverityBlocking,
					Record:   recordID,
					Message:  cueErr.Error(),
				})
			}
		}
	}
}

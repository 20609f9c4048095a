package validate

import (
	"fmt"
	"strings"

	"github.com/roach88/reqstore/internal/record"
)

// Severity classifies a violation. Blocking violations roll back the
// mutation that produced them; warnings are advisory only.
type Severity string

const (
	SeverityBlocking Severity = "blocking"
	SeverityWarning  Severity = "warning"
)

// Violation codes (V1xx blocking, W2xx warning).
const (
	CodeSchemaShape     = "V100" // record fails its family schema
	CodeIDFormat        = "V101" // identifier does not match family format
	CodeIDDuplicate     = "V102" // identifier reused within a family
	CodeUnresolvedRef   = "V110" // foreign reference does not resolve
	CodeTemporalOrder   = "V120" // version chain regresses in release time
	CodeLineageGap      = "V130" // version numbers not contiguous from 1
	CodeNoCurrent       = "V131" // zero or multiple current versions
	CodeBrokenChain     = "V132" // supersedes pointers not a linear chain
	CodeStatusCoherence = "V133" // superseded/current status mismatch
	CodeIncompleteStory = "V140" // build-ready story lacks criteria/intent

	CodeDeprecatedRef = "W200" // current version references deprecated record
)

// Violation is one independently reportable validation failure.
type Violation struct {
	Code     string   `json:"code"`
	Severity Severity `json:"severity"`
	Record   string   `json:"record"`
	Version  int      `json:"version,omitempty"`
	Message  string   `json:"message"`
}

// String renders the violation for text output.
func (v Violation) String() string {
	loc := v.Record
	if v.Version > 0 {
		loc = fmt.Sprintf("%s v%d", v.Record, v.Version)
	}
	return fmt.Sprintf("[%s] %s: %s", v.Code, loc, v.Message)
}

// Blocking filters to blocking violations.
func Blocking(violations []Violation) []Violation {
	var out []Violation
	for _, v := range violations {
		if v.Severity == SeverityBlocking {
			out = append(out, v)
		}
	}
	return out
}

// Warnings filters to warning violations.
func Warnings(violations []Violation) []Violation {
	var out []Violation
	for _, v := range violations {
		if v.Severity == SeverityWarning {
			out = append(out, v)
		}
	}
	return out
}

// RejectedError is returned by the mutation engine when post-mutation
// full-store validation finds blocking violations. The mutation was fully
// discarded; nothing reached durable storage.
type RejectedError struct {
	Violations []Violation
}

// Error implements the error interface.
func (e *RejectedError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "validation rejected mutation with %d blocking violation(s)", len(e.Violations))
	for _, v := range e.Violations {
		b.WriteString("\n  ")
		b.WriteString(v.String())
	}
	return b.String()
}

// ErrorCode implements record.Coder.
func (e *RejectedError) ErrorCode() record.Code {
	return record.CodeValidationRejected
}

package mutate

import (
	"bytes"
	"encoding/json"

	"github.com/roach88/reqstore/internal/record"
)

// payload is the untrusted structured input to an operation. Fields are
// decoded lazily so presence checks (MISSING_FIELD) are distinct from type
// checks (SCHEMA).
type payload map[string]json.RawMessage

// decodePayload parses raw operation input. Input is NFC-normalized at this
// trust boundary so persisted output never depends on the caller's Unicode
// normalization form.
func decodePayload(raw []byte) (payload, error) {
	raw = record.NormalizePayload(raw)
	if len(bytes.TrimSpace(raw)) == 0 {
		return payload{}, nil
	}
	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, record.WrapError(record.CodeSchema, err, "invalid payload JSON")
	}
	return p, nil
}

func (p payload) has(field string) bool {
	raw, ok := p[field]
	return ok && !bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func (p payload) requireString(field string) (string, error) {
	if !p.has(field) {
		return "", record.NewError(record.CodeMissingField, "missing required field %q", field)
	}
	var s string
	if err := json.Unmarshal(p[field], &s); err != nil {
		return "", record.NewError(record.CodeSchema, "field %q must be a string", field)
	}
	return s, nil
}

func (p payload) optString(field, fallback string) (string, error) {
	if !p.has(field) {
		return fallback, nil
	}
	var s string
	if err := json.Unmarshal(p[field], &s); err != nil {
		return "", record.NewError(record.CodeSchema, "field %q must be a string", field)
	}
	return s, nil
}

func (p payload) optStringPtr(field string) (*string, error) {
	if !p.has(field) {
		return nil, nil
	}
	var s string
	if err := json.Unmarshal(p[field], &s); err != nil {
		return nil, record.NewError(record.CodeSchema, "field %q must be a string", field)
	}
	return &s, nil
}

// stringSlice accepts an array of strings; absent fields yield the empty
// slice so collections always serialize as [].
func (p payload) stringSlice(field string) ([]string, error) {
	if !p.has(field) {
		return []string{}, nil
	}
	var out []string
	if err := json.Unmarshal(p[field], &out); err != nil {
		return nil, record.NewError(record.CodeSchema, "field %q must be an array of strings", field)
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}

// stringOrSlice accepts either a single string or an array of strings
// (domain entry types predate the array form).
func (p payload) stringOrSlice(field string) ([]string, error) {
	if !p.has(field) {
		return []string{}, nil
	}
	var single string
	if err := json.Unmarshal(p[field], &single); err == nil {
		return []string{single}, nil
	}
	return p.stringSlice(field)
}

func (p payload) requireBool(field string) (bool, error) {
	if !p.has(field) {
		return false, record.NewError(record.CodeMissingField, "missing required field %q", field)
	}
	var b bool
	if err := json.Unmarshal(p[field], &b); err != nil {
		return false, record.NewError(record.CodeSchema, "field %q must be a boolean", field)
	}
	return b, nil
}

func (p payload) optBool(field string) (bool, error) {
	if !p.has(field) {
		return false, nil
	}
	var b bool
	if err := json.Unmarshal(p[field], &b); err != nil {
		return false, record.NewError(record.CodeSchema, "field %q must be a boolean", field)
	}
	return b, nil
}

// optInt returns 0 when the field is absent.
func (p payload) optInt(field string) (int, error) {
	if !p.has(field) {
		return 0, nil
	}
	var n int
	if err := json.Unmarshal(p[field], &n); err != nil {
		return 0, record.NewError(record.CodeSchema, "field %q must be an integer", field)
	}
	return n, nil
}

// object returns a nested payload object (used by supersede_requirement).
func (p payload) object(field string) (payload, error) {
	if !p.has(field) {
		return nil, record.NewError(record.CodeMissingField, "missing required field %q", field)
	}
	var nested payload
	if err := json.Unmarshal(p[field], &nested); err != nil {
		return nil, record.NewError(record.CodeSchema, "field %q must be an object", field)
	}
	return nested, nil
}

// testIntent decodes an optional test_intent object.
func (p payload) testIntent(field string) (record.TestIntent, error) {
	intent := record.TestIntent{
		FailureModes: []string{},
		Guarantees:   []string{},
		Exclusions:   []string{},
	}
	if !p.has(field) {
		return intent, nil
	}
	if err := json.Unmarshal(p[field], &intent); err != nil {
		return intent, record.NewError(record.CodeSchema, "field %q must be a test intent object", field)
	}
	if intent.FailureModes == nil {
		intent.FailureModes = []string{}
	}
	if intent.Guarantees == nil {
		intent.Guarantees = []string{}
	}
	if intent.Exclusions == nil {
		intent.Exclusions = []string{}
	}
	return intent, nil
}

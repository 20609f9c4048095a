package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// EncodeStable produces deterministic, diff-friendly JSON: object keys
// sorted bytewise, two-space indentation, no HTML escaping, NFC-normalized
// strings, and a trailing newline. It is the ONLY serialization used for
// persisted artifacts (canonical collections, graph, index), so identical
// state always produces byte-identical files.
func EncodeStable(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("stable encode: %w", err)
	}

	// Re-decode through json.Number so integers survive the generic tree
	// without float conversion.
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var tree any
	if err := dec.Decode(&tree); err != nil {
		return nil, fmt.Errorf("stable encode: %w", err)
	}

	var buf bytes.Buffer
	if err := writeStable(&buf, tree, 0); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func writeStable(buf *bytes.Buffer, v any, depth int) error {
	switch val := v.(type) {
	case nil:
		buf.WriteString("null")
	case bool:
		if val {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case json.Number:
		buf.WriteString(val.String())
	case string:
		encoded, err := encodeStableString(val)
		if err != nil {
			return err
		}
		buf.Write(encoded)
	case []any:
		return writeStableArray(buf, val, depth)
	case map[string]any:
		return writeStableObject(buf, val, depth)
	default:
		return fmt.Errorf("stable encode: unsupported type %T", v)
	}
	return nil
}

func writeStableArray(buf *bytes.Buffer, arr []any, depth int) error {
	if len(arr) == 0 {
		buf.WriteString("[]")
		return nil
	}

	buf.WriteString("[\n")
	inner := strings.Repeat("  ", depth+1)
	for i, elem := range arr {
		buf.WriteString(inner)
		if err := writeStable(buf, elem, depth+1); err != nil {
			return err
		}
		if i < len(arr)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	buf.WriteString(strings.Repeat("  ", depth))
	buf.WriteByte(']')
	return nil
}

func writeStableObject(buf *bytes.Buffer, obj map[string]any, depth int) error {
	if len(obj) == 0 {
		buf.WriteString("{}")
		return nil
	}

	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	buf.WriteString("{\n")
	inner := strings.Repeat("  ", depth+1)
	for i, k := range keys {
		buf.WriteString(inner)
		encodedKey, err := encodeStableString(k)
		if err != nil {
			return err
		}
		buf.Write(encodedKey)
		buf.WriteString(": ")
		if err := writeStable(buf, obj[k], depth+1); err != nil {
			return err
		}
		if i < len(keys)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	buf.WriteString(strings.Repeat("  ", depth))
	buf.WriteByte('}')
	return nil
}

// encodeStableString encodes a JSON string with NFC normalization and HTML
// escaping disabled, so < > & appear literally and logically identical
// strings serialize identically.
func encodeStableString(s string) ([]byte, error) {
	normalized := norm.NFC.String(s)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(normalized); err != nil {
		return nil, fmt.Errorf("stable encode: %w", err)
	}

	// json.Encoder appends a newline; strip it.
	result := buf.Bytes()
	if len(result) > 0 && result[len(result)-1] == '\n' {
		result = result[:len(result)-1]
	}
	return result, nil
}

// NormalizePayload NFC-normalizes raw payload bytes at the trust boundary,
// so comparisons and persisted output never depend on the caller's Unicode
// normalization form.
func NormalizePayload(raw []byte) []byte {
	return norm.NFC.Bytes(raw)
}

package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Write renders v in the requested output format. The format string is
// case-insensitive; empty means json.
func Write(w io.Writer, v any, format string, pretty bool) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "json":
		return WriteJSON(w, v, pretty)
	case "edn":
		return WriteEDN(w, v, pretty)
	default:
		return fmt.Errorf("unknown format %q (supported: json, edn)", format)
	}
}

// WriteJSON writes v as a single JSON document followed by a newline.
//
// Output stays strict JSON: anything advisory (how to fetch more data, next
// commands to try) belongs in `meta` or `_hints` inside the payload itself.
func WriteJSON(w io.Writer, v any, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

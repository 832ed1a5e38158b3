package format

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// WriteEDN writes v as EDN followed by a newline.
//
// We target the subset our payloads need: maps, vectors, strings, numbers,
// booleans and nil. Values round-trip through JSON first so struct fields keep
// their json tag names; the names are then kebab-cased into EDN keywords
// (commentCount becomes :comment-count).
func WriteEDN(w io.Writer, v any, pretty bool) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var x any
	if err := dec.Decode(&x); err != nil {
		return err
	}

	p := ednPrinter{pretty: pretty}
	p.value(x, 0)
	p.buf.WriteByte('\n')
	_, err = w.Write(p.buf.Bytes())
	return err
}

type ednPrinter struct {
	buf    bytes.Buffer
	pretty bool
}

func (p *ednPrinter) value(v any, depth int) {
	switch t := v.(type) {
	case nil:
		p.buf.WriteString("nil")
	case bool:
		p.buf.WriteString(strconv.FormatBool(t))
	case string:
		p.buf.WriteString(strconv.Quote(t))
	case json.Number:
		p.buf.WriteString(t.String())
	case []any:
		p.vector(t, depth)
	case map[string]any:
		p.kvmap(t, depth)
	default:
		p.buf.WriteString(strconv.Quote(fmt.Sprintf("%v", v)))
	}
}

func (p *ednPrinter) vector(xs []any, depth int) {
	if len(xs) == 0 {
		p.buf.WriteString("[]")
		return
	}
	p.buf.WriteByte('[')
	for i, x := range xs {
		p.sep(i, depth)
		p.value(x, depth+1)
	}
	p.close(']', depth)
}

func (p *ednPrinter) kvmap(m map[string]any, depth int) {
	if len(m) == 0 {
		p.buf.WriteString("{}")
		return
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	p.buf.WriteByte('{')
	for i, k := range keys {
		p.sep(i, depth)
		p.buf.WriteString(ednKeyword(k))
		p.buf.WriteByte(' ')
		p.value(m[k], depth+1)
	}
	p.close('}', depth)
}

// sep writes the separator before element i of a collection at depth.
func (p *ednPrinter) sep(i, depth int) {
	if p.pretty {
		p.buf.WriteByte('\n')
		p.buf.WriteString(strings.Repeat("  ", depth+1))
		return
	}
	if i > 0 {
		p.buf.WriteByte(' ')
	}
}

func (p *ednPrinter) close(ch byte, depth int) {
	if p.pretty {
		p.buf.WriteByte('\n')
		p.buf.WriteString(strings.Repeat("  ", depth))
	}
	p.buf.WriteByte(ch)
}

// ednKeyword turns a JSON field name into an EDN keyword, kebab-casing
// camelCase along the way. Spaces are never expected but get folded too.
func ednKeyword(s string) string {
	var b strings.Builder
	b.WriteByte(':')
	for i, r := range strings.TrimSpace(s) {
		switch {
		case r == ' ':
			b.WriteByte('-')
		case unicode.IsUpper(r):
			if i > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

package pipeline

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/alnah/go-mdexport/internal/dateutil"
	"github.com/alnah/go-mdexport/internal/fileutil"
	"github.com/alnah/go-mdexport/internal/yamlutil"
)

const headerMarker = "---"

// Metadata holds the header fields of a document as strings.
// It always contains "title".
type Metadata map[string]string

// DocumentInfo is the typed view of the well-known header fields.
type DocumentInfo struct {
	Title    string `mapstructure:"title"`
	Subtitle string `mapstructure:"subtitle"`
	Author   string `mapstructure:"author"`
	Date     string `mapstructure:"date"`
	Lang     string `mapstructure:"lang"`
}

// SplitHeader separates a leading header block from the body. The block
// must open on the first non-blank line and close with a "---" (or "...")
// line; otherwise ok is false and body is the whole source.
func SplitHeader(source string) (header, body string, ok bool) {
	trimmed := strings.TrimLeft(normalizeNewlines(source), " \t\n")
	first, rest, found := strings.Cut(trimmed, "\n")
	if !found || strings.TrimRight(first, " \t") != headerMarker {
		return "", source, false
	}

	offset := 0
	for offset <= len(rest) {
		line, after, more := strings.Cut(rest[offset:], "\n")
		end := strings.TrimRight(line, " \t")
		if end == headerMarker || end == "..." {
			return rest[:offset], after, true
		}
		if !more {
			break
		}
		offset += len(line) + 1
	}
	return "", source, false
}

// StripHeader returns source without its header block.
func StripHeader(source string) string {
	_, body, _ := SplitHeader(source)
	return body
}

// ExtractMetadata reads the header block of source. It never fails: a
// header that is not valid YAML is scanned line by line instead. The title
// falls back to the base name of path. "date: auto" resolves against now.
func ExtractMetadata(source, path string, now time.Time) Metadata {
	meta := Metadata{}

	if header, _, ok := SplitHeader(source); ok && strings.TrimSpace(header) != "" {
		if fields, err := yamlutil.UnmarshalMapping([]byte(header)); err == nil {
			for k, v := range fields {
				meta[k] = stringify(v)
			}
		} else {
			meta = scanHeader(header)
		}
	}

	if strings.TrimSpace(meta["title"]) == "" {
		meta["title"] = fileutil.BaseName(path)
	}
	if d, ok := meta["date"]; ok && dateutil.IsAuto(d) {
		if resolved, err := dateutil.ResolveDate(d, now); err == nil {
			meta["date"] = resolved
		}
	}
	return meta
}

// Title returns the document title.
func (m Metadata) Title() string {
	return m["title"]
}

// Info decodes the well-known fields. Unknown keys are ignored.
func (m Metadata) Info() DocumentInfo {
	var info DocumentInfo
	raw := make(map[string]any, len(m))
	for k, v := range m {
		raw[k] = v
	}
	_ = mapstructure.Decode(raw, &info)
	return info
}

// Keys returns the field names in sorted order.
func (m Metadata) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// YAML encodes the fields for the converter's metadata file.
func (m Metadata) YAML() ([]byte, error) {
	return yamlutil.Marshal(map[string]string(m))
}

// stringify flattens a header value: scalars verbatim, scalar lists joined
// with ", ", anything else as flow YAML.
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case time.Time:
		return t.Format("2006-01-02")
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			if !isScalar(item) {
				return flow(v)
			}
			parts = append(parts, stringify(item))
		}
		return strings.Join(parts, ", ")
	}
	if isScalar(v) {
		return fmt.Sprint(v)
	}
	return flow(v)
}

func isScalar(v any) bool {
	switch v.(type) {
	case nil, string, bool, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, float32, float64, time.Time:
		return true
	}
	return false
}

func flow(v any) string {
	s, err := yamlutil.MarshalFlow(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return s
}

var headerKeyLine = regexp.MustCompile(`^([A-Za-z0-9_][A-Za-z0-9_ .-]*?)\s*:\s?(.*)$`)

// scanHeader is the best-effort reader for headers YAML rejects. Each
// "key: value" line at column zero starts a field; indented lines and
// "- item" lines continue the previous one.
func scanHeader(header string) Metadata {
	meta := Metadata{}
	var key string
	for _, line := range strings.Split(header, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if line[0] != ' ' && line[0] != '\t' && line[0] != '-' {
			if m := headerKeyLine.FindStringSubmatch(line); m != nil {
				key = m[1]
				meta[key] = unquote(strings.TrimSpace(m[2]))
				continue
			}
		}
		if key == "" {
			continue
		}
		item := strings.TrimSpace(line)
		sep := " "
		if strings.HasPrefix(item, "- ") || item == "-" {
			item = strings.TrimSpace(strings.TrimPrefix(item, "-"))
			sep = ", "
		}
		if meta[key] == "" {
			meta[key] = unquote(item)
		} else {
			meta[key] += sep + unquote(item)
		}
	}
	return meta
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}

func normalizeNewlines(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "\r\n", "\n"), "\r", "\n")
}

package pipeline

import (
	"strings"
	"testing"
	"time"
)

var fixedNow = time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)

// ---------------------------------------------------------------------------
// TestSplitHeader
// ---------------------------------------------------------------------------

func TestSplitHeader(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		source     string
		wantHeader string
		wantBody   string
		wantOK     bool
	}{
		{
			name:       "header and body",
			source:     "---\ntitle: A\n---\n# Body\n",
			wantHeader: "title: A\n",
			wantBody:   "# Body\n",
			wantOK:     true,
		},
		{
			name:       "leading blank lines",
			source:     "\n\n---\ntitle: A\n---\nbody",
			wantHeader: "title: A\n",
			wantBody:   "body",
			wantOK:     true,
		},
		{
			name:       "dots close the block",
			source:     "---\ntitle: A\n...\nbody",
			wantHeader: "title: A\n",
			wantBody:   "body",
			wantOK:     true,
		},
		{
			name:       "CRLF",
			source:     "---\r\ntitle: A\r\n---\r\nbody",
			wantHeader: "title: A\n",
			wantBody:   "body",
			wantOK:     true,
		},
		{
			name:     "no header",
			source:   "# Title\n---\n",
			wantBody: "# Title\n---\n",
		},
		{
			name:     "unclosed header",
			source:   "---\ntitle: A\nbody",
			wantBody: "---\ntitle: A\nbody",
		},
		{
			name:     "horizontal rule with text",
			source:   "--- not a header\n",
			wantBody: "--- not a header\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			header, body, ok := SplitHeader(tt.source)
			if ok != tt.wantOK || header != tt.wantHeader || body != tt.wantBody {
				t.Errorf("SplitHeader() = (%q, %q, %v), want (%q, %q, %v)",
					header, body, ok, tt.wantHeader, tt.wantBody, tt.wantOK)
			}
		})
	}
}

func TestStripHeader(t *testing.T) {
	t.Parallel()

	if got := StripHeader("---\ntitle: A\n---\nbody\n"); got != "body\n" {
		t.Errorf("StripHeader() = %q, want body only", got)
	}
	if got := StripHeader("no header"); got != "no header" {
		t.Errorf("StripHeader() = %q, want source unchanged", got)
	}
}

// ---------------------------------------------------------------------------
// TestExtractMetadata
// ---------------------------------------------------------------------------

func TestExtractMetadata_TitleFallback(t *testing.T) {
	t.Parallel()

	meta := ExtractMetadata("# Heading\n\ntext", "/a/b/Report.md", fixedNow)

	if got := meta.Title(); got != "Report" {
		t.Errorf("Title() = %q, want Report", got)
	}
	if len(meta) != 1 {
		t.Errorf("meta = %v, want title only", meta)
	}
}

func TestExtractMetadata_YAML(t *testing.T) {
	t.Parallel()

	source := "---\ntitle: Quarterly\nauthor: [Ada, Grace]\ndraft: true\nversion: 3\nextra:\n  k: v\ndate: auto\n---\nbody"
	meta := ExtractMetadata(source, "/v/Note.md", fixedNow)

	want := map[string]string{
		"title":   "Quarterly",
		"author":  "Ada, Grace",
		"draft":   "true",
		"version": "3",
		"date":    "2024-03-15",
	}
	for k, v := range want {
		if meta[k] != v {
			t.Errorf("meta[%q] = %q, want %q", k, meta[k], v)
		}
	}
	if !strings.Contains(meta["extra"], "k: v") {
		t.Errorf("meta[extra] = %q, want flow mapping", meta["extra"])
	}
}

func TestExtractMetadata_EmptyTitleFallsBack(t *testing.T) {
	t.Parallel()

	meta := ExtractMetadata("---\ntitle: \"\"\n---\n", "/v/Empty Title.md", fixedNow)
	if got := meta.Title(); got != "Empty Title" {
		t.Errorf("Title() = %q, want base name", got)
	}
}

func TestExtractMetadata_MalformedHeader(t *testing.T) {
	t.Parallel()

	source := "---\ntitle: Broken\nrefs: [one, two\ntags:\n  - one\n  - two\nsummary: first\n  second\n---\nbody"
	meta := ExtractMetadata(source, "/v/Note.md", fixedNow)

	want := map[string]string{
		"title":   "Broken",
		"refs":    "[one, two",
		"tags":    "one, two",
		"summary": "first second",
	}
	for k, v := range want {
		if meta[k] != v {
			t.Errorf("meta[%q] = %q, want %q", k, meta[k], v)
		}
	}
}

func TestExtractMetadata_ScalarHeader(t *testing.T) {
	t.Parallel()

	meta := ExtractMetadata("---\njust words\n---\n", "/v/Plain.md", fixedNow)
	if meta.Title() != "Plain" {
		t.Errorf("Title() = %q, want Plain", meta.Title())
	}
}

func TestMetadata_Info(t *testing.T) {
	t.Parallel()

	meta := Metadata{"title": "T", "author": "A", "lang": "fr", "custom": "x"}
	info := meta.Info()

	if info.Title != "T" || info.Author != "A" || info.Lang != "fr" {
		t.Errorf("Info() = %+v", info)
	}
}

func TestMetadata_YAML(t *testing.T) {
	t.Parallel()

	out, err := Metadata{"title": "Note: draft", "author": "Ada"}.YAML()
	if err != nil {
		t.Fatal(err)
	}
	s := string(out)
	if !strings.Contains(s, "author: Ada") || !strings.Contains(s, "title:") {
		t.Errorf("YAML() = %q", s)
	}
}

func TestMetadata_Keys(t *testing.T) {
	t.Parallel()

	keys := Metadata{"title": "t", "author": "a", "date": "d"}.Keys()
	if strings.Join(keys, ",") != "author,date,title" {
		t.Errorf("Keys() = %v", keys)
	}
}

package pipeline

import (
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestHostMarkup_Preprocess - Note syntax rewrites
// ---------------------------------------------------------------------------

func TestHostMarkup_Preprocess(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		source string
		want   string
	}{
		{
			name:   "wiki link",
			source: "see [[Other]] now",
			want:   `see <a class="internal-link" data-href="Other" href="app://local/Other">Other</a> now`,
		},
		{
			name:   "wiki link with alias and heading",
			source: "[[My Note#Part 2|the note]]",
			want:   `<a class="internal-link" data-href="My Note#Part 2" href="app://local/My%20Note#Part%202">the note</a>`,
		},
		{
			name:   "inline embed",
			source: "x ![[Child|caption]] y",
			want:   `x <span class="internal-embed" src="Child" alt="caption"></span> y`,
		},
		{
			name:   "block embed",
			source: "![[Child]]",
			want:   `<div class="internal-embed markdown-embed" src="Child" alt="Child"></div>`,
		},
		{
			name:   "highlight",
			source: "a ==key== b",
			want:   "a <mark>key</mark> b",
		},
		{
			name:   "escaped attribute",
			source: `[[A "quoted" <note>]]`,
			want:   `data-href="A &#34;quoted&#34; &lt;note&gt;" href="app://local/A%20%22quoted%22%20%3Cnote%3E"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := (&HostMarkup{}).Preprocess(tt.source)
			if !strings.Contains(got, tt.want) {
				t.Errorf("Preprocess() = %q, want to contain %q", got, tt.want)
			}
		})
	}
}

func TestHostMarkup_CodeUntouched(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		source string
	}{
		{name: "backtick fence", source: "```\n[[Link]] ==x==\n```"},
		{name: "tilde fence", source: "~~~md\n![[Embed]]\n~~~"},
		{name: "inline code", source: "`[[Link]]`"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := (&HostMarkup{}).Preprocess(tt.source)
			if got != tt.source {
				t.Errorf("Preprocess() = %q, want unchanged %q", got, tt.source)
			}
		})
	}
}

func TestHostMarkup_InlineCodeAndLinkOnSameLine(t *testing.T) {
	t.Parallel()

	got := (&HostMarkup{}).Preprocess("`[[a]]` and [[b]]")
	if !strings.HasPrefix(got, "`[[a]]` and <a ") {
		t.Errorf("Preprocess() = %q", got)
	}
}

func TestHostMarkup_Frontmatter(t *testing.T) {
	t.Parallel()

	got := (&HostMarkup{}).Preprocess("---\r\ntitle: <b>\r\n---\r\nbody")

	want := "<pre class=\"frontmatter\">title: &lt;b&gt;\n</pre>\n\nbody"
	if got != want {
		t.Errorf("Preprocess() = %q, want %q", got, want)
	}
}

func TestHostMarkup_CompressesBlankLines(t *testing.T) {
	t.Parallel()

	got := (&HostMarkup{}).Preprocess("a\n\n\n\n\nb")
	if got != "a\n\nb" {
		t.Errorf("Preprocess() = %q", got)
	}
}

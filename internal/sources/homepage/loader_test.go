package homepage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to create test YAML file: %v", err)
	}
	return path
}

func TestLoaderLoadServices(t *testing.T) {
	path := writeFile(t, "services.yaml", `---
- Infrastructure:
    - AdGuard Home:
        icon: adguard-home.svg
        href: https://adguard.domain.ext
        description: Network-wide ads & trackers blocking DNS server
`)

	entries, kind, err := NewLoader(path).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if kind != KindServices {
		t.Errorf("Load() kind = %q, want %q", kind, KindServices)
	}
	if len(entries) != 1 {
		t.Fatalf("Load() returned %d entries, want 1", len(entries))
	}
	want := Entry{Group: "Infrastructure", Title: "AdGuard Home", URL: "https://adguard.domain.ext"}
	if entries[0] != want {
		t.Errorf("Load() entry = %+v, want %+v", entries[0], want)
	}
}

func TestLoaderLoadBookmarks(t *testing.T) {
	path := writeFile(t, "bookmarks.yaml", `---
- Developer:
    - Github:
        - abbr: GH
          href: https://github.com/
    - Docs:
        - href: https://go.dev/doc/
- Social:
    - Reddit:
        - icon: reddit.png
          href: https://reddit.com/
`)

	entries, kind, err := NewLoader(path).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if kind != KindBookmarks {
		t.Errorf("Load() kind = %q, want %q", kind, KindBookmarks)
	}

	want := []Entry{
		{Group: "Developer", Title: "GH", URL: "https://github.com/"},
		{Group: "Developer", Title: "Docs", URL: "https://go.dev/doc/"},
		{Group: "Social", Title: "Reddit", URL: "https://reddit.com/"},
	}
	if len(entries) != len(want) {
		t.Fatalf("Load() returned %d entries, want %d", len(entries), len(want))
	}
	for i := range want {
		if entries[i] != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, entries[i], want[i])
		}
	}
}

func TestLoaderLoadWithTemplateVariables(t *testing.T) {
	path := writeFile(t, "services.yaml", `---
- Infrastructure:
    - AdGuard Home:
        icon: adguard-home.svg
        href: {{HOMEPAGE_VAR_ADGUARD_URL}}
        description: Test
    - Traefik:
        href: https://traefik.domain.ext
`)

	entries, _, err := NewLoader(path).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(entries) != 1 || entries[0].Title != "Traefik" {
		t.Errorf("Load() = %+v, want only Traefik", entries)
	}
}

func TestLoaderLoadFileNotFound(t *testing.T) {
	_, _, err := NewLoader("/nonexistent/path/services.yaml").Load()
	if err == nil {
		t.Error("Load() with non-existent file should return error")
	}
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		noEntry bool
	}{
		{name: "not yaml", input: "::: {"},
		{name: "wrong shape", input: "key: value"},
		{name: "nothing usable", input: "- Group:\n    - Name:\n        - abbr: X\n", noEntry: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Parse([]byte(tt.input))
			if err == nil {
				t.Fatal("Parse() should return error")
			}
			if tt.noEntry && !errors.Is(err, ErrNoEntries) {
				t.Errorf("Parse() error = %v, want ErrNoEntries", err)
			}
		})
	}
}

func TestStripTemplateVariablesFunc(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected string
	}{
		{
			name:     "single template variable",
			input:    []byte("url: {{HOMEPAGE_VAR_URL}}"),
			expected: "url: \"\"",
		},
		{
			name:     "no template variables",
			input:    []byte("plain text"),
			expected: "plain text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := stripTemplateVariables(tt.input)
			if string(result) != tt.expected {
				t.Errorf("stripTemplateVariables() = %q, want %q", string(result), tt.expected)
			}
		})
	}
}

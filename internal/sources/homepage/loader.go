package homepage

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Kind of Homepage file.
type Kind string

const (
	KindBookmarks Kind = "bookmarks"
	KindServices  Kind = "services"
)

var templateVar = regexp.MustCompile(`\{\{[^}]+\}\}`)

// Loader reads a Homepage bookmarks.yaml or services.yaml
type Loader struct {
	filePath string
}

// NewLoader creates a new Homepage loader
func NewLoader(filePath string) *Loader {
	return &Loader{
		filePath: filePath,
	}
}

// Load reads the file and returns its import entries and detected kind
func (l *Loader) Load() ([]Entry, Kind, error) {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read homepage file: %w", err)
	}
	return Parse(data)
}

// Parse detects the file kind from its shape: bookmarks.yaml nests a list
// under each name, services.yaml nests a mapping.
func Parse(data []byte) ([]Entry, Kind, error) {
	// Strip Homepage template variables ({{HOMEPAGE_VAR_...}})
	data = stripTemplateVariables(data)

	var bookmarks BookmarksConfig
	bookmarksErr := yaml.Unmarshal(data, &bookmarks)
	if bookmarksErr == nil {
		entries, err := NewMapper().MapBookmarks(bookmarks)
		return entries, KindBookmarks, err
	}

	var services ServicesConfig
	servicesErr := yaml.Unmarshal(data, &services)
	if servicesErr == nil {
		entries, err := NewMapper().MapServices(services)
		return entries, KindServices, err
	}

	return nil, "", fmt.Errorf("failed to parse homepage yaml: %w", errors.Join(bookmarksErr, servicesErr))
}

// stripTemplateVariables removes Homepage template variables from YAML
// Example: {{HOMEPAGE_VAR_ADGUARD_USER}} -> ""
func stripTemplateVariables(data []byte) []byte {
	return templateVar.ReplaceAll(data, []byte(`""`))
}

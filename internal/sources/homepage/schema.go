// Package homepage reads Homepage (gethomepage.dev) dashboard files as
// bookmark import candidates.
package homepage

// BookmarkEntry represents a single bookmark entry in bookmarks.yaml
type BookmarkEntry struct {
	Icon string `yaml:"icon"`
	Abbr string `yaml:"abbr"`
	Href string `yaml:"href"`
}

// BookmarksConfig is the root structure for bookmarks.yaml:
//
//   - Category:
//   - Bookmark name:
//   - abbr: XX
//     href: https://...
//
// Each bookmark name maps to a list holding a single entry.
type BookmarksConfig []map[string][]map[string][]BookmarkEntry

// ServicesConfig is the root structure for services.yaml.
// Homepage uses dynamic keys, so we parse as []map[group][]map[name]ServiceProps
type ServicesConfig []map[string][]map[string]ServiceProps

// ServiceProps contains the service properties we care about
type ServiceProps struct {
	Href        string `yaml:"href"`
	Icon        string `yaml:"icon,omitempty"`
	Description string `yaml:"description,omitempty"`
}

// Entry is one bookmark to import.
type Entry struct {
	Group string
	Title string
	URL   string
}

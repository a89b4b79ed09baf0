package homepage

import (
	"errors"
	"net/url"
)

// ErrNoEntries is returned when a file holds nothing importable.
var ErrNoEntries = errors.New("no valid bookmarks found in homepage config")

// Mapper converts Homepage configs to import entries.
// Entries keep file order; a URL seen twice is only kept the first time.
type Mapper struct{}

// NewMapper creates a new mapper instance
func NewMapper() *Mapper {
	return &Mapper{}
}

// MapBookmarks uses abbr as the title, falling back to the bookmark name
func (m *Mapper) MapBookmarks(config BookmarksConfig) ([]Entry, error) {
	var entries []Entry
	seen := make(map[string]bool)

	for _, category := range config {
		for group, bookmarkList := range category {
			for _, bookmarkMap := range bookmarkList {
				for name, entryList := range bookmarkMap {
					if len(entryList) == 0 {
						continue
					}
					entry := entryList[0]

					title := entry.Abbr
					if title == "" {
						title = name
					}
					if !usable(entry.Href) || title == "" || seen[entry.Href] {
						continue
					}
					seen[entry.Href] = true

					entries = append(entries, Entry{Group: group, Title: title, URL: entry.Href})
				}
			}
		}
	}

	if len(entries) == 0 {
		return nil, ErrNoEntries
	}
	return entries, nil
}

// MapServices uses the service name as the title
func (m *Mapper) MapServices(config ServicesConfig) ([]Entry, error) {
	var entries []Entry
	seen := make(map[string]bool)

	for _, groupMap := range config {
		for group, servicesList := range groupMap {
			for _, serviceMap := range servicesList {
				for name, props := range serviceMap {
					if !usable(props.Href) || name == "" || seen[props.Href] {
						continue
					}
					seen[props.Href] = true

					entries = append(entries, Entry{Group: group, Title: name, URL: props.Href})
				}
			}
		}
	}

	if len(entries) == 0 {
		return nil, ErrNoEntries
	}
	return entries, nil
}

// usable keeps absolute URLs with a host; the server itself accepts anything non-empty.
func usable(href string) bool {
	if href == "" {
		return false
	}
	u, err := url.Parse(href)
	return err == nil && u.Scheme != "" && u.Host != ""
}

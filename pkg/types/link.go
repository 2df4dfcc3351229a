package types

import "strings"

// Link is a rendered entry of the customer links resource.
type Link struct {
	Label string
	URL   string
}

var (
	linkURLKeys   = []string{"url", "link", "href", "signed_url"}
	linkLabelKeys = []string{"label", "name", "file_name", DocumentTypeKey}
)

// LinkFromRecord picks the URL and label out of an object-shaped link record.
// It reports false when the record carries no URL.
func LinkFromRecord(record Document) (Link, bool) {
	var link Link
	for _, key := range linkURLKeys {
		if v := strings.TrimSpace(record.StringValue(key)); v != "" {
			link.URL = v
			break
		}
	}
	if link.URL == "" {
		return Link{}, false
	}

	for _, key := range linkLabelKeys {
		if v := strings.TrimSpace(record.StringValue(key)); v != "" {
			link.Label = v
			break
		}
	}
	if link.Label == "" {
		link.Label = link.URL
	}

	return link, true
}

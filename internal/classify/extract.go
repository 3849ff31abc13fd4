package classify

import (
	"regexp"
	"strings"
)

// Entity identifies the server a push event pertains to.
// Bulk marks batch operations that carry no per-server reference; it is a
// distinct outcome from extraction failure (Resolved=false, Bulk=false).
type Entity struct {
	Name     string
	Bulk     bool
	Resolved bool
}

// Extraction patterns, in priority order. These are coupled to the phrasing
// of server-generated messages; a structured entity field in the payload
// would make them obsolete.
var (
	// details carries an explicit label, e.g. "server name: web01".
	detailsPattern = regexp.MustCompile(`(?i)server name:\s*(\S+)`)

	// message embeds the name in prose, e.g. "server web02 stopped
	// successfully." or "server 'web02' was removed". The name ends at the
	// first separator or punctuation.
	messagePattern = regexp.MustCompile(`(?i)\bserver\s+['"]?([^\s,.'"]+)`)

	// title uses the name as a bare word, e.g. "server web03 deleted".
	titlePattern = regexp.MustCompile(`(?i)\bserver\s+([A-Za-z0-9_-]+)`)
)

// bulkMarkers in a title signal a batch operation with no single target.
var bulkMarkers = []string{"bulk", "batch", "mass"}

// extractor is one strategy in the first-match-wins chain.
type extractor func(raw RawEvent) (string, bool)

var extractors = []extractor{
	fromDetails,
	fromMessage,
	fromTitle,
}

// ExtractEntity resolves the target server using the strategy chain:
// details label, then message prose, then title, then bulk markers.
func ExtractEntity(raw RawEvent) Entity {
	for _, ex := range extractors {
		if name, ok := ex(raw); ok {
			return Entity{Name: name, Resolved: true}
		}
	}
	if IsBulk(raw.Title) {
		return Entity{Bulk: true, Resolved: true}
	}
	return Entity{}
}

// EntityFromTitle resolves a server name from the title alone. The backup
// sub-protocol uses this simpler form.
func EntityFromTitle(title string) string {
	if m := titlePattern.FindStringSubmatch(title); m != nil {
		return m[1]
	}
	return ""
}

// IsBulk reports whether a title marks a batch operation.
func IsBulk(title string) bool {
	t := strings.ToLower(title)
	for _, marker := range bulkMarkers {
		if strings.Contains(t, marker) {
			return true
		}
	}
	return false
}

func fromDetails(raw RawEvent) (string, bool) {
	if m := detailsPattern.FindStringSubmatch(raw.Details); m != nil {
		return strings.TrimSpace(m[1]), true
	}
	return "", false
}

func fromMessage(raw RawEvent) (string, bool) {
	if m := messagePattern.FindStringSubmatch(raw.Message); m != nil {
		return strings.TrimSpace(m[1]), true
	}
	return "", false
}

func fromTitle(raw RawEvent) (string, bool) {
	if m := titlePattern.FindStringSubmatch(raw.Title); m != nil {
		return strings.TrimSpace(m[1]), true
	}
	return "", false
}

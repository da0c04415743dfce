package httpmetrics

import (
	"regexp"
	"strings"
)

var (
	uuidSegment  = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
	tokenSegment = regexp.MustCompile(`^[0-9a-fA-F]{16,}$`)
)

// routePrefixes are the path families served by the hub. Anything outside
// them is reported as a single label so scanners cannot inflate cardinality.
var routePrefixes = []string{"/api/", "/auth/", "/ws/", "/health", "/metrics"}

const unmatchedPath = "/{unmatched}"

// NormalizePath maps a request path to a bounded metrics label: ids and
// numbers collapse to placeholders and unknown paths share one label.
func NormalizePath(path string) string {
	if path == "" || path == "/" {
		return "/"
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	if !knownRoute(path) {
		return unmatchedPath
	}

	parts := strings.Split(path, "/")
	for i, part := range parts {
		switch {
		case part == "":
		case uuidSegment.MatchString(part), tokenSegment.MatchString(part):
			parts[i] = "{id}"
		case isNumeric(part):
			parts[i] = "{param}"
		}
	}
	return strings.Join(parts, "/")
}

func knownRoute(path string) bool {
	for _, prefix := range routePrefixes {
		if strings.HasSuffix(prefix, "/") {
			if strings.HasPrefix(path+"/", prefix) {
				return true
			}
			continue
		}
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}

func isNumeric(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

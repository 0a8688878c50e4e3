package registry

import (
	"net/url"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var folder = cases.Fold()

// NormalizeName returns the comparison key for a tool name: NFKC-normalized,
// case-folded, with runs of whitespace collapsed to a single space.
func NormalizeName(name string) string {
	key := folder.String(norm.NFKC.String(name))
	return strings.Join(strings.Fields(key), " ")
}

// NormalizeDomain returns the bare host of rawURL without scheme, port or a
// leading "www.". For shared hosts the first two path segments are kept, so
// github.com/acme/lint and github.com/acme/css stay distinct. An empty string
// means the URL has no usable host.
func NormalizeDomain(rawURL string, sharedHosts ...string) string {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return ""
	}
	if !strings.Contains(rawURL, "://") {
		rawURL = "http://" + strings.TrimPrefix(rawURL, "//")
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	host := strings.TrimSuffix(strings.ToLower(u.Hostname()), ".")
	host = strings.TrimPrefix(host, "www.")
	if host == "" {
		return ""
	}

	for _, shared := range sharedHosts {
		if host != strings.ToLower(shared) {
			continue
		}
		key := host
		if segments := pathSegments(u.Path, 2); len(segments) > 0 {
			key += "/" + strings.Join(segments, "/")
		}
		// Marketplace listings identify the extension in the query.
		if item := u.Query().Get("itemName"); item != "" {
			key += "?" + strings.ToLower(item)
		}
		return key
	}

	return host
}

func pathSegments(path string, limit int) []string {
	var segments []string
	for _, segment := range strings.Split(path, "/") {
		if segment == "" {
			continue
		}
		segments = append(segments, strings.TrimSuffix(strings.ToLower(segment), ".git"))
		if len(segments) == limit {
			break
		}
	}
	return segments
}

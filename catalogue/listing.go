package catalogue

import (
	"net/url"
	"regexp"
	"strings"
)

var hrefRe = regexp.MustCompile(`(?i)href\s*=\s*"([^"]+)"`)

// parseListing pulls file links out of a datastore directory listing page.
// Navigation links (parent directory, query sorts, subdirectories) are
// skipped; relative links are resolved against the listing URL.
func parseListing(base string, page []byte) []Link {
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil
	}

	var links []Link
	seen := map[string]bool{}
	for _, match := range hrefRe.FindAllSubmatch(page, -1) {
		href := string(match[1])
		if href == "" || strings.HasPrefix(href, "?") || strings.HasPrefix(href, "#") ||
			strings.HasPrefix(href, "../") || href == "/" || strings.HasSuffix(href, "/") {
			continue
		}

		resolved, err := baseURL.Parse(href)
		if err != nil || resolved.Host != baseURL.Host {
			continue
		}

		name := resolved.Path
		if idx := strings.LastIndex(name, "/"); idx >= 0 {
			name = name[idx+1:]
		}
		if name == "" || seen[resolved.String()] {
			continue
		}
		seen[resolved.String()] = true
		links = append(links, Link{Name: name, URL: resolved.String()})
	}
	return links
}

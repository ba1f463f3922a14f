// Package urlx normalizes document locators to one canonical absolute form.
// Every dedup decision and every identity derivation in the pipeline happens
// on canonical URLs; deduplication that skips this step silently admits
// duplicates.
package urlx

import (
	"fmt"
	"net/url"
	"strings"
)

// Sanitize trims whitespace and common copy-paste artifacts from a raw href.
func Sanitize(rawURL string) string {
	cleaned := strings.TrimSpace(rawURL)

	for _, char := range []string{",", ".", ")", "}", "]", "\"", "'", ">", ";"} {
		cleaned = strings.TrimSuffix(cleaned, char)
	}
	for _, char := range []string{"(", "[", "<", "\"", "'"} {
		cleaned = strings.TrimPrefix(cleaned, char)
	}

	return strings.TrimSpace(cleaned)
}

// Canonicalize sanitizes href, resolves it against base and normalizes the
// result: fragments are dropped, the Weebly "/home/" alias collapses to "/",
// and the scheme must be http(s). An empty href is an error, not a canonical
// URL.
func Canonicalize(base, href string) (string, error) {
	href = Sanitize(href)
	if href == "" {
		return "", fmt.Errorf("empty href")
	}

	baseURL, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %s: %w", base, err)
	}

	ref, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("invalid href %s: %w", href, err)
	}

	resolved := baseURL.ResolveReference(ref)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q in %s", resolved.Scheme, href)
	}
	if resolved.Host == "" {
		return "", fmt.Errorf("no host in %s", href)
	}

	resolved.Fragment = ""

	// The site templates emit both /page.html and /home/page.html for the
	// same document; "/home" is a vendor alias for the site root.
	if resolved.Path == "/home" || resolved.Path == "/home/" {
		resolved.Path = "/"
	} else if strings.HasPrefix(resolved.Path, "/home/") {
		resolved.Path = "/" + strings.TrimPrefix(resolved.Path, "/home/")
	}

	return resolved.String(), nil
}

// Slug returns the last path element without its extension, or "" for the
// root. Used for URL-derived fallback titles and collision suffixes.
func Slug(canonicalURL string) string {
	u, err := url.Parse(canonicalURL)
	if err != nil {
		return ""
	}
	path := strings.Trim(u.Path, "/")
	if path == "" {
		return ""
	}
	parts := strings.Split(path, "/")
	last := parts[len(parts)-1]
	if i := strings.LastIndex(last, "."); i > 0 {
		last = last[:i]
	}
	return last
}

// HumanizeSlug turns a URL slug like "on-being-faithful" into a displayable
// title ("On Being Faithful").
func HumanizeSlug(slug string) string {
	if slug == "" {
		return ""
	}
	words := strings.Split(strings.ReplaceAll(slug, "-", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

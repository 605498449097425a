package linkedin

import (
	"fmt"
	"net/url"
	"strings"

	"go-easyhunt/internal/models"
)

const (
	siteOrigin     = "https://www.linkedin.com"
	DefaultBaseURL = siteOrigin + "/jobs/search/"
)

// SearchURL builds the guest search URL for one location. Experience levels
// are pushed into the query as f_E, a recency window as f_TPR.
func SearchURL(baseURL string, q models.Query, location string) (string, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid search base url: %w", err)
	}

	params := u.Query()
	params.Set("keywords", q.Role)
	params.Set("location", location)

	if len(q.Levels) > 0 {
		codes := make([]string, 0, len(q.Levels))
		for _, lvl := range q.Levels {
			if code := lvl.Code(); code != "" {
				codes = append(codes, code)
			}
		}
		if len(codes) > 0 {
			params.Set("f_E", strings.Join(codes, ","))
		}
	}

	if secs := int64(q.PostedWithin.Seconds()); secs > 0 {
		params.Set("f_TPR", fmt.Sprintf("r%d", secs))
	}

	u.RawQuery = params.Encode()
	return u.String(), nil
}

// CanonicalLink strips tracking parameters so that the same posting reached
// from different searches compares equal. Root-relative links are resolved against
// the site origin and the host is normalized to www.linkedin.com.
func CanonicalLink(href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" {
		return "", false
	}
	u, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	path := u.Path
	if path == "" || path == "/" {
		return "", false
	}
	// "N/A" or "jobs/view/1" would otherwise be glued onto the host
	if u.Host == "" && !strings.HasPrefix(path, "/") {
		return "", false
	}
	if !strings.HasSuffix(path, "/") {
		path += "/"
	}
	if u.Host != "" && !strings.HasSuffix(strings.ToLower(u.Hostname()), "linkedin.com") {
		// foreign host: keep it, only drop query and fragment
		scheme := u.Scheme
		if scheme == "" {
			scheme = "https"
		}
		return scheme + "://" + u.Host + path, true
	}
	return siteOrigin + path, true
}

// LinkFromURN turns "urn:li:jobPosting:3912345678" into a view URL.
func LinkFromURN(urn string) (string, bool) {
	const prefix = "urn:li:jobPosting:"
	urn = strings.TrimSpace(urn)
	if !strings.HasPrefix(urn, prefix) {
		return "", false
	}
	id := strings.TrimPrefix(urn, prefix)
	if id == "" {
		return "", false
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	return siteOrigin + "/jobs/view/" + id + "/", true
}

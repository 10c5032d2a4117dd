package discovery

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// maxWebsiteBytes caps the amount of HTML downloaded for assessment.
	maxWebsiteBytes = 1 << 20 // 1 MB

	// userAgent identifies the assessor to fetched sites.
	userAgent = "Mozilla/5.0 (compatible; LeadCRM/1.0)"
)

// modernSignals are markup tokens suggesting a contemporary site.
var modernSignals = []string{"react", "vue", "svelte", "next", "nuxt", "tailwind", "bootstrap"}

// legacySignals are markup tokens suggesting an outdated site. Each distinct
// token present costs one point, regardless of how often it occurs.
var legacySignals = []string{"<table", "<font", "<marquee", "<center", "dreamweaver"}

// WebsiteAssessor derives a 1-10 quality score for a website from static
// content heuristics.
type WebsiteAssessor struct {
	client *http.Client
}

// NewWebsiteAssessor creates an assessor whose fetches are bounded by the
// given timeout.
func NewWebsiteAssessor(timeout time.Duration) *WebsiteAssessor {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WebsiteAssessor{
		client: &http.Client{Timeout: timeout},
	}
}

// Assess fetches the site and scores it 1-10 (10 = excellent modern site,
// 1 = unreachable). It never fails: any fetch error collapses to the worst
// score. The result is deterministic for identical markup and URL scheme.
func (a *WebsiteAssessor) Assess(ctx context.Context, siteURL string) int {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, siteURL, nil)
	if err != nil {
		return 1
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := a.client.Do(req)
	if err != nil {
		return 1
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 2
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxWebsiteBytes))
	if err != nil {
		return 1
	}

	return scoreMarkup(string(body), strings.HasPrefix(siteURL, "https"))
}

// scoreMarkup applies the static heuristics to the page markup.
func scoreMarkup(html string, secure bool) int {
	lower := strings.ToLower(html)
	score := 5

	// Responsive viewport hint.
	if strings.Contains(lower, "viewport") {
		score++
	} else {
		score -= 2
	}

	if secure {
		score++
	}

	for _, sig := range modernSignals {
		if strings.Contains(lower, sig) {
			score++
			break
		}
	}

	for _, sig := range legacySignals {
		if strings.Contains(lower, sig) {
			score--
		}
	}

	// Very small pages are likely placeholders, very large ones bloated.
	sizeKB := len(html) / 1024
	if sizeKB < 5 {
		score--
	}
	if sizeKB > 500 {
		score--
	}

	return clampScore(score)
}

// clampScore bounds a score to the 1-10 range.
func clampScore(s int) int {
	if s < 1 {
		return 1
	}
	if s > 10 {
		return 10
	}
	return s
}

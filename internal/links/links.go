// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package links finds PDF document anchors on a court case page.
//
// An anchor qualifies only when its href carries both the media path
// segment and the version query parameter, and its visible text mentions
// "PDF". Anything else on the page is ignored, even anchors pointing at the
// media endpoint, so a layout change fails closed rather than harvesting
// unrelated files.
package links

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/court-harvest/pkg/types"
)

var sizePattern = regexp.MustCompile(`(?i)(\d+)\s*KB`)

// Extract returns the qualifying PDF links in html, in document order,
// with IDs starting at 1. Relative hrefs are resolved against baseURL.
// Duplicate hrefs are kept as separate links.
func Extract(html, baseURL string, rule types.MatchConfig) ([]types.LinkDescriptor, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base URL %q is not absolute", baseURL)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	rule = rule.WithDefaults()
	var out []types.LinkDescriptor

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if !Matches(href, rule) {
			return
		}

		label := collapseSpace(s.Text())
		if !strings.Contains(strings.ToUpper(label), "PDF") {
			return
		}

		out = append(out, types.LinkDescriptor{
			ID:       len(out) + 1,
			URL:      ResolveURL(base, href),
			Label:    label,
			SizeHint: SizeHint(label),
		})
	})

	return out, nil
}

// Matches reports whether href points at the media endpoint with a
// version parameter.
func Matches(href string, rule types.MatchConfig) bool {
	rule = rule.WithDefaults()
	return strings.Contains(href, rule.MediaPath) && strings.Contains(href, rule.VersionParam)
}

// SizeHint returns the digits of the last "NNN KB" in label, or
// types.SizeUnknown.
func SizeHint(label string) string {
	m := sizePattern.FindAllStringSubmatch(label, -1)
	if len(m) == 0 {
		return types.SizeUnknown
	}
	return m[len(m)-1][1]
}

// ResolveURL returns href unchanged when it already has a scheme.
// Otherwise it joins the origin of base with href, dropping one leading
// slash. The rest of base's path is not used: the court site serves every
// media link from the site root.
func ResolveURL(base *url.URL, href string) string {
	if u, err := url.Parse(href); err == nil && u.Scheme != "" {
		return href
	}
	return base.Scheme + "://" + base.Host + "/" + strings.TrimPrefix(href, "/")
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

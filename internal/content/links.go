package content

import (
	"regexp"

	"github.com/foxzi/campaigner/internal/models"
)

var hrefPattern = regexp.MustCompile(`href="([^"]+)"`)

// ExtractLinks returns every double-quoted href value in html, verbatim, in
// order of first appearance and without duplicates.
func ExtractLinks(html string) []string {
	links := []string{}
	seen := make(map[string]bool)
	for _, m := range hrefPattern.FindAllStringSubmatch(html, -1) {
		url := m[1]
		if seen[url] {
			continue
		}
		seen[url] = true
		links = append(links, url)
	}
	return links
}

// SeedLinks turns extracted urls into zero-click link stats
func SeedLinks(urls []string) []models.LinkStat {
	stats := make([]models.LinkStat, len(urls))
	for i, u := range urls {
		stats[i] = models.LinkStat{URL: u}
	}
	return stats
}

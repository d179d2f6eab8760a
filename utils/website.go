package utils

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
)

var commonTLDs = []string{
	".site",
	".com",
	".net",
	".org",
	".info",
	".me",
	".to",
	".ru",
	".su",
	".tv",
	".cc",
	".xyz",
}

var commonSubdomains = []string{
	"", // no prefix
	"www.",
	"top.",
}

// release groups and trackers whose domains get baked into listing titles
var commonWebsiteSLDs = []string{
	"lafa",
	"rutor",
	"rutracker",
	"nnmclub",
	"kinozal",
	"rustorka",
	"megapeer",
	"torrent-igruha",
}

var websitePatterns = []string{
	`\[\s*(?:by|от)\s+%s\s*\]`,
	`\[?\s*%s\s*\]?`,
}

var regexesOnce sync.Once
var regexes []*regexp.Regexp

func getRegexes() []*regexp.Regexp {
	regexesOnce.Do(func() {
		var domains []string
		for _, prefix := range commonSubdomains {
			for _, name := range commonWebsiteSLDs {
				for _, tld := range commonTLDs {
					domains = append(domains, regexp.QuoteMeta(prefix+name+tld))
				}
			}
		}
		websites := "(?i)(" + strings.Join(domains, "|") + ")"

		for _, pattern := range websitePatterns {
			regexes = append(regexes, regexp.MustCompile(fmt.Sprintf(pattern, websites)))
		}
	})
	return regexes
}

// RemoveKnownWebsites removes known website patterns from the title.
// It uses a set of common prefixes, names, and TLDs to identify and remove
// website references from the title.
// It also removes bracketed credits like "[by rutor.info]" or "[ lafa.site ]"
// and bare domains like "top.lafa.site".
func RemoveKnownWebsites(title string) string {
	regexes := getRegexes()
	for _, re := range regexes {
		title = re.ReplaceAllString(title, "")
	}
	return strings.Join(strings.Fields(title), " ")
}

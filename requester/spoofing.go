package requester

import (
	"net/http"

	"github.com/felipemarinho97/lafa-indexer/utils"
)

// spoofBrowserHeaders makes the request look like it comes from a desktop
// browser. Accept-Encoding is left to the transport so gzip bodies are
// decoded transparently. An empty referer defaults to the site itself.
func spoofBrowserHeaders(req *http.Request, referer string) {
	req.Header.Set("User-Agent", utils.SpoofedUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "ru-RU,ru;q=0.9,en-US;q=0.8,en;q=0.5")

	if referer == "" {
		referer = req.URL.Scheme + "://" + req.URL.Host + "/"
	}
	req.Header.Set("Referer", referer)

	req.Header.Set("DNT", "1")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
	req.Header.Set("Sec-Fetch-Dest", "document")
	req.Header.Set("Sec-Fetch-Mode", "navigate")
	req.Header.Set("Sec-Fetch-Site", "same-origin")
	req.Header.Set("Cache-Control", "max-age=0")
}

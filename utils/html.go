package utils

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	doctypeRegex = regexp.MustCompile(`(?is)^\s*<!doctype\s+html`)
	htmlRegex    = regexp.MustCompile(`(?is)<html[\s>].*</html>`)
	bodyRegex    = regexp.MustCompile(`(?is)<body[\s>].*</body>`)
)

// IsValidHTML reports whether s looks like a full HTML page: it starts with
// an html doctype or has a closed <html> or <body> element. Fragments, JSON
// and challenge scripts are rejected so they never reach the page cache.
func IsValidHTML(s string) bool {
	return doctypeRegex.MatchString(s) || htmlRegex.MatchString(s) || bodyRegex.MatchString(s)
}

var sizeRegex = regexp.MustCompile(`(?i)^\s*(\d+(?:[.,]\d+)?)\s*([KMGTP]?B)\s*$`)

var sizeUnits = map[string]int64{
	"B":  1,
	"KB": 1 << 10,
	"MB": 1 << 20,
	"GB": 1 << 30,
	"TB": 1 << 40,
	"PB": 1 << 50,
}

// SizeInBytes converts a display size such as "1.5 KB", "2,75 MB" or "4.1GB"
// into bytes using binary multiples. ok is false for unrecognised input.
func SizeInBytes(sizeStr string) (int64, bool) {
	m := sizeRegex.FindStringSubmatch(sizeStr)
	if m == nil {
		return 0, false
	}
	value, err := strconv.ParseFloat(strings.Replace(m[1], ",", ".", 1), 64)
	if err != nil {
		return 0, false
	}
	return int64(value * float64(sizeUnits[strings.ToUpper(m[2])])), true
}

package cache

import (
	"path"
	"strconv"
)

// PageKey builds the cache key for page number of the listing at urlPath.
// Only inputs that change the rendered page go into the key, so stray
// query parameters and out-of-range page numbers cannot mint new entries.
func PageKey(urlPath string, number int) string {
	if urlPath == "" {
		urlPath = "/"
	}
	if len(urlPath) > 1 {
		urlPath = path.Clean(urlPath)
	}
	if number < 1 {
		number = 1
	}
	return "GET " + urlPath + "?page=" + strconv.Itoa(number)
}

package corepool

import (
	browser "github.com/EDDYCJY/fake-useragent"
)

// NewBrowserIdentity returns the headers of a desktop Chrome, with a User-Agent picked at
// random for every challenge attempt.
func NewBrowserIdentity() map[string]string {
	return map[string]string{
		"User-Agent":      browser.Chrome(),
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
		"Accept-Language": "en-US,en;q=0.9",
	}
}

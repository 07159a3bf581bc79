package utils

import "github.com/microcosm-cc/bluemonday"

var sanitizer = bluemonday.StrictPolicy()

// Sanitize strips all HTML from content; posts are plain text only.
func Sanitize(input string) string {
	return sanitizer.Sanitize(input)
}

package utils

import "github.com/microcosm-cc/bluemonday"

// Captions and comments are plain text; all markup is stripped.
var sanitizer = bluemonday.StrictPolicy()

// Sanitize removes HTML from user supplied text to prevent XSS.
func Sanitize(input string) string {
	return sanitizer.Sanitize(input)
}

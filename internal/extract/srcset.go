package extract

import "strings"

// ParseSrcset returns the URL field of the last candidate in a
// responsive-image list such as "a.jpg 320w, b.jpg 1024w".
// Candidates are assumed to be listed in ascending size.
func ParseSrcset(value string) (string, bool) {
	var last string
	for _, c := range strings.Split(value, ",") {
		if c = strings.TrimSpace(c); c != "" {
			last = c
		}
	}
	if last == "" {
		return "", false
	}
	fields := strings.Fields(last)
	if len(fields) == 0 {
		return "", false
	}
	return fields[0], true
}

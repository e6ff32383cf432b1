package restdoc

import "strings"

// JoinPath appends URL path fragments with exactly one "/" between them.
// Empty fragments are skipped, runs of "/" collapse, and the result always
// starts with "/". A trailing "/" is kept only when the last fragment has a
// segment before it, so a fragment of "/" names the parent path itself.
func JoinPath(fragments ...string) string {
	var sb strings.Builder
	lastHasSegment := false
	for _, f := range fragments {
		lastHasSegment = false
		for _, seg := range strings.Split(f, "/") {
			if seg == "" {
				continue
			}
			sb.WriteByte('/')
			sb.WriteString(seg)
			lastHasSegment = true
		}
	}
	if sb.Len() == 0 {
		return "/"
	}
	if n := len(fragments); lastHasSegment && strings.HasSuffix(fragments[n-1], "/") {
		sb.WriteByte('/')
	}
	return sb.String()
}

package arxiv

import (
	"regexp"
	"strings"
)

var (
	bareIDPattern = regexp.MustCompile(`^(\d{4}\.\d{4,5})(?:v\d+)?$`)
	urlIDPattern  = regexp.MustCompile(`arxiv\.org/(?:abs|pdf)/(\d{4}\.\d{4,5})(?:v\d+)?(?:\.pdf)?/?(?:[?#].*)?$`)
	versionSuffix = regexp.MustCompile(`v\d+$`)
)

// ExtractID normalizes a user supplied identifier to the bare arXiv ID
// without version suffix. Accepted shapes are 2010.11929, 2010.11929v2,
// arXiv:2010.11929 and abs or pdf URLs. ok is false when s matches none.
func ExtractID(s string) (id string, ok bool) {
	s = strings.TrimSpace(s)
	if len(s) > 6 && strings.EqualFold(s[:6], "arxiv:") {
		s = strings.TrimSpace(s[6:])
	}
	if m := bareIDPattern.FindStringSubmatch(s); m != nil {
		return m[1], true
	}
	if m := urlIDPattern.FindStringSubmatch(s); m != nil {
		return m[1], true
	}
	return "", false
}

// entryID derives the paper ID from an Atom entry id such as
// http://arxiv.org/abs/2010.11929v2. Old style identifiers
// (hep-th/9901001v1) keep their archive prefix.
func entryID(raw string) string {
	if id, ok := ExtractID(raw); ok {
		return id
	}
	if i := strings.Index(raw, "/abs/"); i >= 0 {
		raw = raw[i+len("/abs/"):]
	}
	return versionSuffix.ReplaceAllString(raw, "")
}

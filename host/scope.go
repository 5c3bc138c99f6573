package host

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Scope decides whether a URL may be fetched.
type Scope struct {
	allow []*regexp.Regexp
	deny  []*regexp.Regexp
}

// NewScope compiles the patterns of cfg.
func NewScope(cfg ScopeConfig) (*Scope, error) {
	allow, err := compileGlobs(cfg.Allow)
	if err != nil {
		return nil, err
	}
	deny, err := compileGlobs(cfg.Deny)
	if err != nil {
		return nil, err
	}
	return &Scope{allow: allow, deny: deny}, nil
}

// Allows reports whether u is an http(s) URL matched by an allow pattern
// (or no allow patterns exist) and by no deny pattern.
func (s *Scope) Allows(u *url.URL) bool {
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	raw := u.String()
	for _, re := range s.deny {
		if re.MatchString(raw) {
			return false
		}
	}
	if len(s.allow) == 0 {
		return true
	}
	for _, re := range s.allow {
		if re.MatchString(raw) {
			return true
		}
	}
	return false
}

func compileGlobs(patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := globToRegexp(p)
		if err != nil {
			return nil, fmt.Errorf("host: invalid scope pattern %q: %w", p, err)
		}
		out = append(out, re)
	}
	return out, nil
}

// globToRegexp anchors the pattern; "*" matches any run and "?" one character.
func globToRegexp(pattern string) (*regexp.Regexp, error) {
	if pattern == "" {
		return nil, fmt.Errorf("empty pattern")
	}
	var b strings.Builder
	b.WriteString("^")
	for _, r := range pattern {
		switch r {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")
	return regexp.Compile(b.String())
}

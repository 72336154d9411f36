package render

import (
	"net/url"
	"strings"

	"github.com/fulluproar/backoffice/internal/domain/designer"
)

// HostPolicy decides which remote image hosts may appear in an export.
// Entries are host names; a leading "*." matches any subdomain. Uploaded
// images are always trusted.
type HostPolicy struct {
	exact    map[string]struct{}
	suffixes []string
}

// NewHostPolicy builds a policy from the configured trusted hosts
func NewHostPolicy(hosts []string) *HostPolicy {
	p := &HostPolicy{exact: make(map[string]struct{})}
	for _, h := range hosts {
		h = strings.ToLower(strings.TrimSpace(h))
		switch {
		case h == "":
		case strings.HasPrefix(h, "*."):
			p.suffixes = append(p.suffixes, h[1:])
		default:
			p.exact[h] = struct{}{}
		}
	}
	return p
}

// Trusted reports whether rawURL points at a trusted host
func (p *HostPolicy) Trusted(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	if _, ok := p.exact[host]; ok {
		return true
	}
	for _, s := range p.suffixes {
		if strings.HasSuffix(host, s) {
			return true
		}
	}
	return false
}

// CheckSnapshot returns designer.ErrExportBlocked when any remote image in
// the snapshot comes from an untrusted host
func (p *HostPolicy) CheckSnapshot(s designer.SceneSnapshot) error {
	for _, ref := range s.ImageRefs() {
		if ref.IsRemote() && !p.Trusted(ref.URL) {
			return designer.ErrExportBlocked
		}
	}
	return nil
}

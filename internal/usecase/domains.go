package usecase

import (
	"net/url"
	"strings"

	"github.com/claimvalue/backend/internal/domain"
)

// trustedDomains is the registry of retailer host fragments considered
// authoritative price sources. A search result survives the filter iff its
// URL host contains one of these fragments. Binary inclusion, no scoring.
var trustedDomains = []string{
	"amazon.com",
	"walmart.com",
	"target.com",
	"bestbuy.com",
	"homedepot.com",
	"lowes.com",
	"costco.com",
	"wayfair.com",
	"overstock.com",
	"samsclub.com",
	"bjs.com",
	"macys.com",
	"kohls.com",
	"ikea.com",
	"staples.com",
	"officedepot.com",
	"bhphotovideo.com",
	"newegg.com",
	"crutchfield.com",
	"dickssportinggoods.com",
	"rei.com",
	"ashleyfurniture.com",
	"potterybarn.com",
	"crateandbarrel.com",
}

// TrustedDomains returns a copy of the registry, for callers that enumerate it.
func TrustedDomains() []string {
	out := make([]string, len(trustedDomains))
	copy(out, trustedDomains)
	return out
}

// IsTrustedURL reports whether the URL's host contains a trusted fragment.
func IsTrustedURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return false
	}
	host := strings.ToLower(u.Host)
	for _, fragment := range trustedDomains {
		if strings.Contains(host, fragment) {
			return true
		}
	}
	return false
}

// FilterTrusted keeps only results whose link host is trusted. Order preserved.
func FilterTrusted(results []domain.SearchResult) []domain.SearchResult {
	var kept []domain.SearchResult
	for _, r := range results {
		if IsTrustedURL(r.Link) {
			kept = append(kept, r)
		}
	}
	return kept
}

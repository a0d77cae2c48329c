package auth

import "strings"

// Classification assigns a trust level to a request path.
type Classification int

const (
	// ClassStrict enforces expiration and session currency. Default for
	// every path not listed elsewhere.
	ClassStrict Classification = iota
	// ClassRelaxed tolerates stale or expired tokens on a small set of
	// lower-risk read endpoints; signature and subject checks still apply.
	ClassRelaxed
	// ClassPublic skips token validation entirely.
	ClassPublic
)

// String returns the label used in logs and metrics.
func (c Classification) String() string {
	switch c {
	case ClassRelaxed:
		return "relaxed"
	case ClassPublic:
		return "public"
	default:
		return "strict"
	}
}

// RouteClassifier is the single declarative route-classification table
// consumed by the request authenticator. Patterns are exact paths or
// prefixes ending in "/*".
type RouteClassifier struct {
	relaxed []string
	public  []string
}

// NewRouteClassifier builds a classifier from the configured pattern lists.
func NewRouteClassifier(relaxed, public []string) *RouteClassifier {
	return &RouteClassifier{relaxed: relaxed, public: public}
}

// Classify resolves the trust level for a request path.
func (rc *RouteClassifier) Classify(path string) Classification {
	for _, pattern := range rc.public {
		if matchPattern(pattern, path) {
			return ClassPublic
		}
	}
	for _, pattern := range rc.relaxed {
		if matchPattern(pattern, path) {
			return ClassRelaxed
		}
	}
	return ClassStrict
}

func matchPattern(pattern, path string) bool {
	if prefix, ok := strings.CutSuffix(pattern, "/*"); ok {
		return path == prefix || strings.HasPrefix(path, prefix+"/")
	}
	return pattern == path
}

package rest

import (
	"fmt"
	"net/http"
	"strings"
)

// route is one entry of the ordered route table.
type route struct {
	method      string
	pattern     string
	middlewares []func(http.Handler) http.Handler
	handler     http.HandlerFunc
}

func (rt route) String() string {
	return rt.method + " " + rt.pattern
}

func isParam(segment string) bool {
	return strings.HasPrefix(segment, "{") && strings.HasSuffix(segment, "}")
}

// shadows reports whether earlier would capture every request meant for later: same method,
// same depth, and every segment of earlier either equal to later's or a parameter, with at
// least one parameter standing where later has a literal.
func shadows(earlier, later route) bool {
	if earlier.method != later.method {
		return false
	}
	a := strings.Split(strings.Trim(earlier.pattern, "/"), "/")
	b := strings.Split(strings.Trim(later.pattern, "/"), "/")
	if len(a) != len(b) {
		return false
	}
	captured := false
	for i := range a {
		switch {
		case a[i] == b[i]:
		case isParam(a[i]) && !isParam(b[i]):
			captured = true
		default:
			return false
		}
	}
	return captured
}

// checkRouteOrder fails if a literal route is registered after a parameterized sibling
// that would match the same requests.
func checkRouteOrder(routes []route) error {
	for j := range routes {
		for i := 0; i < j; i++ {
			if shadows(routes[i], routes[j]) {
				return fmt.Errorf("route %q is registered after %q, which captures its requests", routes[j], routes[i])
			}
		}
	}
	return nil
}

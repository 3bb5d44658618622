package middleware

// RouteMeta is the per-route declaration the guards read. It replaces
// decorator-style metadata with an explicit value constructed at
// registration time.
type RouteMeta struct {
	// Public routes bypass all three guards.
	Public bool
	// RequiredRoles is the set of roles admitted by the role guard.
	// Matching is case-insensitive; an empty set admits any
	// authenticated identity.
	RequiredRoles []string
	// SkipEmailVerification exempts the route from the verified-email
	// requirement (the verification and reset endpoints themselves
	// need this).
	SkipEmailVerification bool
}

// PublicRoute marks a route that requires no authentication.
func PublicRoute() RouteMeta {
	return RouteMeta{Public: true}
}

// Authenticated marks a route that requires a valid access token and a
// verified email, with no role restriction.
func Authenticated() RouteMeta {
	return RouteMeta{}
}

// RequireRoles restricts a route to the given roles.
func RequireRoles(roles ...string) RouteMeta {
	return RouteMeta{RequiredRoles: roles}
}

// Package middleware implements the per-request guard pipeline:
// authentication, then role authorization, then email verification.
// Guards are plain net/http middleware composed at route registration
// time from typed [RouteMeta]; there is no runtime reflection.
//
// Per request the pipeline walks Unauthenticated -> Authenticated ->
// Authorized -> Admitted. The first failing stage terminates the
// request: authentication failures answer 401 with a fixed generic
// body, authorization failures answer 403.
package middleware

// Package permission defines the closed role set of the ticketing
// platform and the static role-to-permission table used for
// authorization decisions.
//
// The table is enumerated by hand and carries no inheritance: Admin is
// a superset of the other roles only because its entry lists every
// permission explicitly. When a permission is added, every role entry
// that should hold it must be updated; nothing is derived.
package permission

// Package preflight provides readiness checks for the filesystem paths and
// configuration tetsu depends on.
//
// The index command calls RunIndex before taking the database lock. A failed
// check aborts the run with its detail so a typo in the library path does
// not end with every indexed path pruned.
package preflight

// Package catalog defines the AniDB entity records tetsu caches and the
// Service contract used to fetch them.
//
// Records mirror the field sets the AniDB UDP API returns for the masks tetsu
// requests. Service implementations tag every failure with a Kind so callers
// can tell an unknown file apart from a busy server or a broken session.
package catalog

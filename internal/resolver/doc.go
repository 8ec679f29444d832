// Package resolver answers "what is this file" from the local index first and
// the remote catalog second.
//
// A path that is already indexed (by path, or by filename and size after a
// move) is resolved without hashing. Anything else is hashed and looked up
// by content. Files the catalog does not know are never written, so they are
// hashed again on the next run.
package resolver

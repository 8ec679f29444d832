// Package reconcile brings the path index in line with a directory tree.
//
// A run walks the root (Discover), resolves and describes every regular file
// in walk order (Process), and, only when every file was processed, deletes
// path entries whose files no longer exist (Prune). Catalog entity rows are
// never deleted.
//
// Unknown files are counted and skipped. Unreadable files abort the run unless
// the reconciler was built WithSkipUnreadable. Catalog session and store
// errors always abort, and an aborted run never prunes.
package reconcile

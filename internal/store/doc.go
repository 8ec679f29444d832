// Package store persists AniDB entities and the path index in SQLite.
//
// Entity rows (anime, episodes, groups, files) are written the first time a
// lookup succeeds and are never expired. The path index maps an on-disk path
// to the file id it hashed to, keyed secondarily by (filename, size) so a
// moved file is recognised without hashing it again.
//
// All access goes through one connection with busy retries, so concurrent
// writers inside a process are serialized. Open refuses a database created
// with a different schema version (ErrSchemaMismatch).
package store

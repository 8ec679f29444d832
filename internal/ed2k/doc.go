// Package ed2k computes eDonkey2000 content hashes.
//
// A file is split into ChunkSize pieces, each piece is MD4-digested in
// parallel, and the digests (in chunk order) are digested once more. The
// outer digest is always applied, so a single-chunk file hashes to
// MD4(MD4(data)) rather than MD4(data).
package ed2k

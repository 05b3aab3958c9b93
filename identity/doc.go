// Package identity defines the canonical user shape shared by token decoding and the
// session store, together with role canonicalization.
//
// # Canonical shape
//
// A [User] holds exactly one role. The persisted JSON form still carries both the
// current "role" key and the legacy "rol" key with the same value, so consumers that
// read either name keep working. The duplication only exists at the serialization
// boundary and can never diverge in memory.
//
// # Raw shapes
//
// User objects arrive in several historical shapes (current English keys, legacy
// Spanish keys, token-derived records). [RawUser] is a closed union over those shapes
// and [Normalize] is the single mapping from any of them to a [User].
//
// # What this package must NOT do
//
//   - Decode tokens or touch storage.
//   - Alias roles anywhere except [CanonicalRole].
package identity

// Package session holds the authentication state of one running client and keeps
// its durable storage mirror in step with every mutation.
//
// # Lifecycle
//
// A [Store] is constructed once with [Open], which restores the session from the
// persisted token. There is no uninitialized Store: callers either hold an opened
// Store or nothing. Consumers receive it by reference or through a context
// ([WithStore], [FromContext]); a missing Store is a composition bug and surfaces
// as [ErrNoStore], or as a panic from [MustFromContext].
//
// # States
//
// Unauthenticated (no user) and Authenticated (user set). [Store.Login] and
// [Store.Logout] are the only transitions after [Open].
//
// # Storage mirror
//
// The mirror is not transactional. The in-memory transition happens first and a
// failed write is returned to the caller; the next [Open] re-derives the session
// from the stored token.
//
// # What this package must NOT do
//
//   - Store the token on login. Token persistence belongs to the caller.
//   - Alias roles. Role canonicalization happens in identity and token.
package session

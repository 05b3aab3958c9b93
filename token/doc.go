// Package token decodes bearer tokens into claim sets and derives expiry and the
// normalized identity from them.
//
// Decoding does not verify signatures: the client holding the token has no
// verification key, and the server re-validates every request. Every failure is
// reported as an error value and logged; nothing panics out of this package.
//
// [Signer] mints tokens with the same claim layout for local tooling and tests.
package token

// Package storage provides the durable key/value mirror of a client session.
//
// Keys are scoped per origin. [Memory] keeps values in process; [Redis] keeps them in
// Redis under "<prefix>:<origin>:<key>".
//
// # What this package must NOT do
//
//   - Interpret tokens or user payloads; values are opaque strings.
//   - Retry failed operations. Failures are wrapped in [ErrUnavailable] and returned.
package storage

// Package authsession wires the client session core of Tappin: durable
// storage, the session store, client registration and payment return pages.
//
// [Builder.Build] turns a validated [Config] into an [App]. Every component is
// also usable on its own from its subpackage.
//
// # Architecture boundaries
//
// token and identity are leaf packages. storage knows nothing about tokens.
// session owns the in-memory state and mirrors it to storage. register and
// payment sit on top of session and storage.
//
// # What this package must NOT do
//
//   - Keep a process-wide session. Each App owns its own session.Store.
//   - Verify token signatures. The client holds no verification key.
package authsession

// Package register creates a new client account over the REST API and signs the
// new client admin in.
//
// [Flow.Register] posts the account, then tries an automatic login with the same
// credentials. A failed automatic login never fails the registration: the caller
// still gets the next location, and the user can sign in by hand.
//
// # What this package must NOT do
//
//   - Validate form input beyond what the request needs to be well formed.
//   - Follow the Stripe onboarding URL. It is returned to the caller.
package register

// Package payment resolves what a payment return page shows after the checkout
// provider redirects back.
//
// Both the success and the cancel page require a stored session; without a
// token and a user the visitor is sent to the landing page. The way back goes
// to the staff or parent dashboard depending on the stored role.
package payment

package metrics

// CounterDef names a counter for exporters.
type CounterDef struct {
	ID   MetricID
	Name string
	Help string
}

// CounterDefs lists every counter in export order.
var CounterDefs = []CounterDef{
	{ID: SessionRestored, Name: "tappin_session_restored_total", Help: "Startups that restored a session from a valid token."},
	{ID: SessionAnonymous, Name: "tappin_session_anonymous_total", Help: "Startups without a usable token."},
	{ID: SessionExpiredPurged, Name: "tappin_session_expired_purged_total", Help: "Startups that purged an expired token."},
	{ID: TokenDecodeFailure, Name: "tappin_token_decode_failure_total", Help: "Tokens that could not be decoded into a user."},
	{ID: StorageFailure, Name: "tappin_storage_failure_total", Help: "Storage errors seen by the session store."},
	{ID: Login, Name: "tappin_login_total", Help: "Session logins."},
	{ID: Logout, Name: "tappin_logout_total", Help: "Session logouts."},
	{ID: RegistrationSuccess, Name: "tappin_registration_success_total", Help: "Successful client registrations."},
	{ID: RegistrationFailure, Name: "tappin_registration_failure_total", Help: "Failed client registrations."},
	{ID: AutoLoginFailure, Name: "tappin_auto_login_failure_total", Help: "Registrations whose automatic login did not produce a session."},
	{ID: PaymentRedirectNoSession, Name: "tappin_payment_redirect_no_session_total", Help: "Payment return pages reached without a session."},
}

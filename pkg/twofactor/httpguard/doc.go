// Package httpguard adapts the two-factor service to net/http.
//
// Handler.LoginHook (or Check for JSON APIs) runs after the primary credentials
// were accepted and either lets the login continue or returns a Challenge asking
// for the code. Remembered devices are identified by an HMAC signed cookie.
//
// Handler.Handle mounts the enrollment and management routes on a chi router:
//
//	guard, err := httpguard.New(svc, cfg, currentUser)
//	if err != nil {
//		return err
//	}
//	r.Mount("/2fa", guard.Handle())
//
// Destructive routes require a code confirmed within twofactor.Config.ConfirmTimeout.
package httpguard

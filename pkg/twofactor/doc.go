// Package twofactor adds time-based one-time password (TOTP) authentication on
// top of an existing login flow.
//
// A Record holds one owner's shared secret, recovery codes and remembered
// ("safe") devices. The Service enrolls owners, validates codes with replay
// protection, and manages recovery codes and devices; all writes go through a
// Store whose Update method is the per-owner critical section. Guard turns an
// authentication attempt into a Decision.
//
// # Enrollment
//
//	svc, err := twofactor.NewService(twofactor.NewMemoryStore(), twofactor.DefaultConfig())
//	prov, err := svc.Enroll(ctx, user)           // user implements Authenticatable
//	uri, _ := prov.URI()                         // otpauth://totp/...
//	qr, _ := prov.QR()                           // data:image/png;base64,...
//	ok, err := svc.Confirm(ctx, user.TwoFactorOwner(), code)
//
// # Login
//
//	guard := twofactor.NewGuard(svc)
//	decision, err := guard.Decide(ctx, twofactor.Attempt{
//		Principal:      user,
//		Code:           r.FormValue(cfg.Input),
//		DeviceToken:    deviceCookie,
//		RememberDevice: r.FormValue(cfg.SafeDeviceInput) != "",
//		IP:             clientIP,
//	})
//
// A TOTP code is accepted for the current period and Window past periods, never
// for future ones, and at most once per owner. When a code is not a valid TOTP
// code it is tried as a recovery code, which is consumed on success.
//
// Lifecycle changes are reported to Notifier implementations; their errors are
// logged and never fail the operation. Messages are served from an embedded
// English and Turkish catalogue.
package twofactor

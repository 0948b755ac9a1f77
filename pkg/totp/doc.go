// Package totp implements the one-time password primitives behind two-factor authentication:
// RFC 4226 HOTP, RFC 6238 TOTP with a past-only validation window, Base32 secret handling,
// otpauth:// provisioning URIs and recovery code generation.
//
// The package is stateless. Replay protection, persistence and per-user policy live in the
// packages built on top of it.
//
// # Codes
//
// A code is derived from the decoded secret and the index of the period containing a
// timestamp, optionally shifted by whole periods:
//
//	key, _ := totp.DecodeSecret("KS72XBTN5PEBGX2IWBMVW44LXHPAQ7L3")
//	code := totp.GenerateCode(key, totp.DefaultParams(), time.Now().Unix(), 0)
//
// ValidateCode accepts the current period and up to window earlier periods. Codes from
// future periods are always rejected.
//
// # Provisioning
//
//	uri, _ := totp.BuildURI(totp.URIParams{
//	    Secret: secret,
//	    Label:  "alice@example.com",
//	    Issuer: "Acme",
//	})
//
// # Error Handling
//
// Errors are package level sentinels, sometimes joined with the underlying cause via
// errors.Join. Inspect them with errors.Is.
package totp

// Package qrcode renders QR code images as PNG bytes or data URIs that can be
// embedded directly into HTML pages.
//
// It wraps github.com/skip2/go-qrcode. Generate uses the library's own
// renderer; GenerateWithMargin draws the module bitmap itself so callers can
// pick the quiet zone width in modules, which authenticator enrolment pages
// usually need.
//
//	img, err := qrcode.GenerateWithMargin(uri, 400, 4)
//	if err != nil {
//		// handle error
//	}
//	src := qrcode.DataURI(img)
//
// Errors are package-level variables and can be compared with errors.Is.
package qrcode

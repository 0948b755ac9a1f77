package httpguard

import "strings"

// Config holds the cookie settings of the HTTP adapter. Names of the form inputs
// and of the device cookie come from twofactor.Config.
type Config struct {
	// CookieSecrets is a comma separated list; the first secret signs, all of them verify.
	CookieSecrets   string `env:"TWOFACTOR_COOKIE_SECRETS,required"`
	CookiePath      string `env:"TWOFACTOR_COOKIE_PATH" envDefault:"/"`
	CookieDomain    string `env:"TWOFACTOR_COOKIE_DOMAIN"`
	CookieSecure    bool   `env:"TWOFACTOR_COOKIE_SECURE" envDefault:"true"`
	ConfirmedCookie string `env:"TWOFACTOR_CONFIRMED_COOKIE" envDefault:"2fa_confirmed"`
}

func (c Config) secrets() []string {
	var out []string
	for s := range strings.SplitSeq(c.CookieSecrets, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

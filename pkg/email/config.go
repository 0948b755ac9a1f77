package email

// Config holds email service configuration.
// The Postmark tokens are optional so development setups can use DevSender instead.
type Config struct {
	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	SenderEmail          string `env:"SENDER_EMAIL,required"`
	SupportEmail         string `env:"SUPPORT_EMAIL,required"`
	PostmarkBaseURL      string `env:"POSTMARK_BASE_URL"`
	DevDir               string `env:"EMAIL_DEV_DIR" envDefault:".mail"`
}

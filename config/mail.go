package config

// MailConfig contains mail server connection configuration.
type MailConfig struct {
	Host     string `env:"MAIL_HOST"     envDefault:"localhost"`
	Port     int    `env:"MAIL_PORT"     envDefault:"993"`
	Username string `env:"MAIL_USERNAME" envDefault:""`
	Password string `env:"MAIL_PASSWORD" envDefault:""`
	UseTLS   bool   `env:"MAIL_USE_TLS"  envDefault:"true"`
}

// ClassifierConfig contains triage classifier configuration.
type ClassifierConfig struct {
	// UserEmail is the mailbox owner's address, used to detect directly
	// addressed messages.
	UserEmail string `env:"CLASSIFIER_USER_EMAIL" envDefault:""`

	// UserName is the mailbox owner's display name.
	UserName string `env:"CLASSIFIER_USER_NAME" envDefault:""`

	// VIPSenders lists addresses or domains whose messages always
	// classify as action-required.
	VIPSenders []string `env:"CLASSIFIER_VIP_SENDERS" envDefault:""`

	// RulesPath points at an optional JSON file of custom classification
	// rules evaluated before the built-in heuristics.
	RulesPath string `env:"CLASSIFIER_RULES_PATH" envDefault:""`
}

package accountd

import (
	"time"

	"github.com/caarlos0/env/v11"
	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
)

// Config enumerates every knob the service needs, passed explicitly into
// each component at construction. No component reads the environment on
// its own.
type Config struct {
	HTTPAddr   string `env:"HTTP_ADDR" envDefault:":3000"`
	CookieName string `env:"COOKIE_NAME" envDefault:"accessToken"`

	SigningKey string `env:"JWT_SECRET"`
	Issuer     string `env:"JWT_ISSUER" envDefault:"accountd"`

	SessionTTL           time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	SessionTTLRememberMe time.Duration `env:"SESSION_TTL_REMEMBER_ME" envDefault:"720h"`
	ConfirmationTokenTTL time.Duration `env:"CONFIRMATION_TOKEN_TTL" envDefault:"24h"`

	BcryptCost int `env:"BCRYPT_COST" envDefault:"12"`

	Persistence PersistenceConfig `envPrefix:"DB_"`
	SMTP        SMTPConfig        `envPrefix:"SMTP_"`
}

// PersistenceConfig configures the bun client.
type PersistenceConfig struct {
	Driver  string `env:"DRIVER" envDefault:"postgres"`
	DSN     string `env:"DSN"`
	Debug   bool   `env:"DEBUG" envDefault:"false"`
	Dialect string `env:"DIALECT" envDefault:"postgres"`
}

// SMTPConfig configures the mail dispatcher.
type SMTPConfig struct {
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     int    `env:"PORT" envDefault:"587"`
	Username string `env:"USER"`
	Password string `env:"PASS"`
	From     string `env:"FROM" envDefault:"no-reply@localhost"`
}

// LoadConfig reads the configuration from the environment.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse environment configuration")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects configurations the service cannot run with.
func (c Config) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.SigningKey, validation.Required, validation.Length(32, 0)),
		validation.Field(&c.HTTPAddr, validation.Required),
	)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid configuration")
	}

	if c.Persistence.DSN == "" {
		return goerrors.New("DB_DSN is required", goerrors.CategoryBadInput)
	}

	return nil
}

func (c Config) GetSigningKey() string { return c.SigningKey }

func (c Config) GetIssuer() string { return c.Issuer }

func (c Config) GetCookieName() string { return c.CookieName }

func (c Config) GetSessionTTL() time.Duration { return c.SessionTTL }

func (c Config) GetSessionTTLRememberMe() time.Duration { return c.SessionTTLRememberMe }

func (c Config) GetConfirmationTokenTTL() time.Duration { return c.ConfirmationTokenTTL }

func (c Config) GetBcryptCost() int { return c.BcryptCost }

func (c Config) GetPersistence() *PersistenceConfig { return &c.Persistence }

func (c Config) GetSMTP() *SMTPConfig { return &c.SMTP }

func (p PersistenceConfig) GetDriver() string { return p.Driver }

func (p PersistenceConfig) GetDialect() string { return p.Dialect }

func (p PersistenceConfig) GetDSN() string { return p.DSN }

func (p PersistenceConfig) GetDebug() bool { return p.Debug }

func (s SMTPConfig) GetHost() string { return s.Host }

func (s SMTPConfig) GetPort() int { return s.Port }

func (s SMTPConfig) GetUsername() string { return s.Username }

func (s SMTPConfig) GetPassword() string { return s.Password }

func (s SMTPConfig) GetFrom() string { return s.From }

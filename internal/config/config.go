package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/launchdarkly/go-sdk-common/v3/ldcontext"
	ld "github.com/launchdarkly/go-server-sdk/v7"

	"github.com/poofware/submission-service/internal/mailer"
	"github.com/poofware/submission-service/internal/utils"
)

type Config struct {
	AppName string

	Env            string   `env:"ENV" envDefault:"development"`
	AppPort        string   `env:"APP_PORT" envDefault:"3001"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envDefault:"http://localhost:3000" envSeparator:","`
	AdminEmail     string   `env:"ADMIN_EMAIL,required"`
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`

	MailProvider    string        `env:"MAIL_PROVIDER" envDefault:"smtp"`
	MailFromAddress string        `env:"MAIL_FROM_ADDRESS,required"`
	MailFromName    string        `env:"MAIL_FROM_NAME" envDefault:"Website Forms"`
	MailTimeout     time.Duration `env:"MAIL_TIMEOUT" envDefault:"30s"`

	SMTPHost        string `env:"SMTP_HOST"`
	SMTPPort        int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser        string `env:"SMTP_USER"`
	SMTPPass        string `env:"SMTP_PASS"`
	SMTPImplicitTLS bool   `env:"SMTP_IMPLICIT_TLS" envDefault:"false"`

	SendgridAPIKey       string `env:"SENDGRID_API_KEY"`
	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`

	RateLimitMax    int           `env:"RATE_LIMIT_MAX" envDefault:"5"`
	RateLimitWindow time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"15m"`
	RedisURL        string        `env:"REDIS_URL"`

	BodyLimitBytes  int64         `env:"BODY_LIMIT_BYTES" envDefault:"10240"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	LDSDKKey string `env:"LD_SDK_KEY"`

	// Feature-flag snapshots
	LDFlag_MailFromAddress  string
	LDFlag_CORSHighSecurity bool

	trustedProxies utils.TrustedProxies
}

const LDConnectionTimeout = 5 * time.Second

// build-time overrides, set with -ldflags
var (
	AppName             = "submission-service"
	LDServerContextKey  = "submission-service"
	LDServerContextKind = "service"
)

var validate = validator.New()

// LoadConfig reads the process environment (plus .env when present),
// snapshots feature flags and exits the process on any invalid value.
func LoadConfig() *Config {
	utils.Logger.Info("Loading config for app: ", AppName)

	//----------------------------------------------------------------------
	// 1) Runtime environment vars
	//----------------------------------------------------------------------
	if err := godotenv.Load(); err == nil {
		utils.Logger.Debug("Loaded variables from .env")
	}

	cfg, err := Parse(env.ToMap(os.Environ()))
	if err != nil {
		utils.Logger.WithError(err).Fatal("Invalid configuration")
	}

	//----------------------------------------------------------------------
	// 2) LaunchDarkly flags
	//----------------------------------------------------------------------
	if cfg.LDSDKKey != "" {
		if err := cfg.loadFlags(); err != nil {
			utils.Logger.WithError(err).Fatal("Failed to load LaunchDarkly flags")
		}
	} else {
		utils.Logger.Debug("LD_SDK_KEY not set, using default flag values")
	}

	utils.Logger.Infof("Loaded config for %s (%s), mail provider %s", cfg.AppName, cfg.Env, cfg.MailProvider)
	return cfg
}

// Parse builds and validates a Config from environ alone.
func Parse(environ map[string]string) (*Config, error) {
	cfg := &Config{AppName: AppName}
	if err := env.ParseWithOptions(cfg, env.Options{Environment: environ}); err != nil {
		return nil, err
	}
	cfg.MailProvider = strings.ToLower(strings.TrimSpace(cfg.MailProvider))
	cfg.LDFlag_CORSHighSecurity = cfg.Env == utils.EnvProduction

	var errs []error
	proxies, err := utils.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		errs = append(errs, fmt.Errorf("TRUSTED_PROXIES: %w", err))
	}
	cfg.trustedProxies = proxies

	if err := errors.Join(append(errs, cfg.Validate())...); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field requirements that struct tags cannot express.
func (c *Config) Validate() error {
	var errs []error

	if c.Env != utils.EnvDevelopment && c.Env != utils.EnvProduction {
		errs = append(errs, fmt.Errorf("ENV must be %q or %q, got %q", utils.EnvDevelopment, utils.EnvProduction, c.Env))
	}
	if validate.Var(c.AdminEmail, "required,email") != nil {
		errs = append(errs, fmt.Errorf("ADMIN_EMAIL %q is not a valid address", c.AdminEmail))
	}
	if validate.Var(c.MailFromAddress, "required,email") != nil {
		errs = append(errs, fmt.Errorf("MAIL_FROM_ADDRESS %q is not a valid address", c.MailFromAddress))
	}
	if c.MailTimeout <= 0 {
		errs = append(errs, errors.New("MAIL_TIMEOUT must be positive"))
	}

	switch c.MailProvider {
	case mailer.ProviderSMTP:
		if c.SMTPHost == "" {
			errs = append(errs, errors.New("SMTP_HOST is required for the smtp provider"))
		}
		if c.SMTPPort <= 0 || c.SMTPPort > 65535 {
			errs = append(errs, fmt.Errorf("SMTP_PORT %d is out of range", c.SMTPPort))
		}
	case mailer.ProviderSendGrid:
		if c.SendgridAPIKey == "" {
			errs = append(errs, errors.New("SENDGRID_API_KEY is required for the sendgrid provider"))
		}
	case mailer.ProviderPostmark:
		if c.PostmarkServerToken == "" {
			errs = append(errs, errors.New("POSTMARK_SERVER_TOKEN is required for the postmark provider"))
		}
	case mailer.ProviderLog:
	default:
		errs = append(errs, fmt.Errorf("unknown MAIL_PROVIDER %q", c.MailProvider))
	}

	if c.RateLimitMax <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_MAX must be positive"))
	}
	if c.RateLimitWindow <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_WINDOW must be positive"))
	}
	if c.BodyLimitBytes <= 0 {
		errs = append(errs, errors.New("BODY_LIMIT_BYTES must be positive"))
	}

	return errors.Join(errs...)
}

func (c *Config) loadFlags() error {
	ldClient, err := ld.MakeClient(c.LDSDKKey, LDConnectionTimeout)
	if err != nil {
		return fmt.Errorf("create LaunchDarkly client: %w", err)
	}
	defer ldClient.Close()
	if !ldClient.Initialized() {
		return errors.New("LaunchDarkly client failed to initialize")
	}

	ctx := ldcontext.NewWithKind(ldcontext.Kind(LDServerContextKind), LDServerContextKey)

	fromAddress, err := ldClient.StringVariation("mail_from_address", ctx, "")
	if err != nil {
		return fmt.Errorf("mail_from_address flag: %w", err)
	}
	utils.Logger.Debugf("mail_from_address flag: %s", fromAddress)

	highSecurity, err := ldClient.BoolVariation("cors_high_security", ctx, c.LDFlag_CORSHighSecurity)
	if err != nil {
		return fmt.Errorf("cors_high_security flag: %w", err)
	}
	utils.Logger.Debugf("cors_high_security flag: %t", highSecurity)

	c.LDFlag_MailFromAddress = fromAddress
	c.LDFlag_CORSHighSecurity = highSecurity
	return nil
}

// DevMode reports whether internal error detail may be shown to callers.
func (c *Config) DevMode() bool {
	return c.Env == utils.EnvDevelopment
}

// CORSOrigins returns the allowed origins, widened to any localhost port
// when the high-security flag is off.
func (c *Config) CORSOrigins() []string {
	origins := make([]string, 0, len(c.AllowedOrigins)+1)
	for _, o := range c.AllowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if !c.LDFlag_CORSHighSecurity {
		origins = append(origins, utils.CORSLowSecurityAllowedOriginLocalhost)
	}
	return origins
}

// SenderAddress is the fixed From address, honoring the flag override.
func (c *Config) SenderAddress() string {
	if c.LDFlag_MailFromAddress != "" {
		return c.LDFlag_MailFromAddress
	}
	return c.MailFromAddress
}

func (c *Config) MailerOptions() mailer.Options {
	return mailer.Options{
		Provider:             c.MailProvider,
		From:                 mailer.Address{Name: c.MailFromName, Email: c.SenderAddress()},
		Timeout:              c.MailTimeout,
		SMTPHost:             c.SMTPHost,
		SMTPPort:             c.SMTPPort,
		SMTPUsername:         c.SMTPUser,
		SMTPPassword:         c.SMTPPass,
		SMTPImplicitTLS:      c.SMTPImplicitTLS,
		SendGridAPIKey:       c.SendgridAPIKey,
		PostmarkServerToken:  c.PostmarkServerToken,
		PostmarkAccountToken: c.PostmarkAccountToken,
	}
}

// TrustedProxyNetworks are the peers allowed to set forwarding headers.
// Empty unless TRUSTED_PROXIES is set, so by default clients are keyed on
// the connecting address.
func (c *Config) TrustedProxyNetworks() utils.TrustedProxies {
	return c.trustedProxies
}

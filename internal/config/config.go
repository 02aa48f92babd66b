package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"inkwell/internal/validation"
)

// Config holds application level configuration aggregated from env/config files.
type Config struct {
	Server struct {
		Addr string
		// AllowOrigin is the single origin allowed credentialed cross-origin
		// requests. Empty allows any origin without credentials.
		AllowOrigin string
		// TrustedProxies lists proxy addresses or CIDRs whose forwarding
		// headers are honoured when resolving the client IP. Empty trusts none.
		TrustedProxies []string
	}
	Database struct {
		// Driver is "sqlite" or "postgres".
		Driver string
		Path   string
		URL    string
	}
	Auth struct {
		JWTSecret       string
		TokenTTLMinutes int
		CookieName      string
		CookieSecure    bool
	}
	Listing struct {
		PageSize int
	}
	Validation struct {
		UsernameMinLength  int
		PasswordMinLength  int
		PhonePrefix        string
		PostTitleMinLength int
		PostBodyMinLength  int
	}
	RateLimit struct {
		PerMinute int
		Burst     int
	}
	Storage struct {
		Bucket    string
		KeyPrefix string
		Region    string
		Endpoint  string
	}
	AWS struct {
		Profile string
	}
	Log struct {
		Level  string
		Format string
	}
}

// Load reads configuration from environment variables and optional config files.
// Variables use the INKWELL_ prefix with dots replaced by underscores, e.g.
// INKWELL_AUTH_JWTSECRET.
func Load() (Config, error) {
	// a missing .env is fine; real environment variables win over it
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("INKWELL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	v.SetConfigName("config")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	rules := validation.DefaultRules()

	v.SetDefault("server.addr", "0.0.0.0:8080")
	v.SetDefault("server.alloworigin", "")
	v.SetDefault("server.trustedproxies", []string{})
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "data/inkwell.db")
	v.SetDefault("database.url", "")
	v.SetDefault("auth.jwtsecret", "")
	v.SetDefault("auth.tokenttlminutes", 60)
	v.SetDefault("auth.cookiename", "token")
	v.SetDefault("auth.cookiesecure", false)
	v.SetDefault("listing.pagesize", 6)
	v.SetDefault("validation.usernameminlength", rules.UsernameMinLength)
	v.SetDefault("validation.passwordminlength", rules.PasswordMinLength)
	v.SetDefault("validation.phoneprefix", rules.PhonePrefix)
	v.SetDefault("validation.posttitleminlength", rules.PostTitleMinLength)
	v.SetDefault("validation.postbodyminlength", rules.PostBodyMinLength)
	v.SetDefault("ratelimit.perminute", 10)
	v.SetDefault("ratelimit.burst", 5)
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.keyprefix", "post-snapshots")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("aws.profile", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Validate reports settings the server cannot start without.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return errors.New("auth jwt secret is required (INKWELL_AUTH_JWTSECRET)")
	}
	switch c.Database.Driver {
	case "sqlite":
	case "postgres":
		if c.Database.URL == "" {
			return errors.New("database url is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Listing.PageSize <= 0 {
		return fmt.Errorf("listing page size must be positive, got %d", c.Listing.PageSize)
	}
	return nil
}

// Rules returns the validation thresholds configured for this process.
func (c Config) Rules() validation.Rules {
	return validation.Rules{
		UsernameMinLength:  c.Validation.UsernameMinLength,
		PasswordMinLength:  c.Validation.PasswordMinLength,
		PhonePrefix:        c.Validation.PhonePrefix,
		PostTitleMinLength: c.Validation.PostTitleMinLength,
		PostBodyMinLength:  c.Validation.PostBodyMinLength,
	}
}

// TokenTTL is zero when tokens should never expire.
func (c Config) TokenTTL() time.Duration {
	if c.Auth.TokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(c.Auth.TokenTTLMinutes) * time.Minute
}

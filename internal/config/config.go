// Package config resolves runtime settings for the catalog service from the
// environment, with command-line flags bound on top.
package config

import (
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"ProductCatalog/internal/auth"
	"ProductCatalog/internal/catalog"
)

const (
	KeyPort            = "PORT"
	KeyJWTSecret       = "JWT_SECRET"
	KeyJWTIssuer       = "JWT_ISSUER"
	KeyMetricsToken    = "METRICS_TOKEN"
	KeyLogLevel        = "CATALOG_LOG_LEVEL"
	KeyShutdownTimeout = "CATALOG_SHUTDOWN_TIMEOUT"
	KeyWriteLimit      = "CATALOG_WRITE_LIMIT_PER_MIN"
	KeyAddr            = "CATALOG_ADDR"
	// KeyTrustForwarded keys the write limiter on X-Forwarded-For. Only set it
	// behind a proxy that overwrites the header.
	KeyTrustForwarded  = "CATALOG_TRUST_FORWARDED"
)

type Config struct {
	Port            string
	JWTSecret       string
	JWTIssuer       string
	MetricsToken    string
	LogLevel        string
	ShutdownTimeout time.Duration
	WriteLimit      int
	TrustForwarded  bool
	Addr            string
	Bounds          catalog.Bounds
}

// New returns a viper instance with every default registered and the
// environment wired in.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyPort, "8082")
	v.SetDefault(KeyJWTSecret, "")
	v.SetDefault(KeyJWTIssuer, auth.DefaultIssuer)
	v.SetDefault(KeyMetricsToken, "")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyShutdownTimeout, 10*time.Second)
	v.SetDefault(KeyWriteLimit, 120)
	v.SetDefault(KeyTrustForwarded, false)
	v.SetDefault(KeyAddr, "http://localhost:8082")
	v.AutomaticEnv()
	return v
}

// BindFlags lets a flag override its key when the flag was set explicitly.
// Flag names are the lower-case, dash-separated form of the key.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for _, key := range []string{KeyPort, KeyLogLevel, KeyAddr} {
		name := FlagName(key)
		if f := fs.Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return err
			}
		}
	}
	return nil
}

func FlagName(key string) string {
	key = strings.TrimPrefix(key, "CATALOG_")
	return strings.ReplaceAll(strings.ToLower(key), "_", "-")
}

func Load(v *viper.Viper) Config {
	writeLimit := v.GetInt(KeyWriteLimit)
	if writeLimit <= 0 {
		writeLimit = 120
	}
	issuer := v.GetString(KeyJWTIssuer)
	if issuer == "" {
		issuer = auth.DefaultIssuer
	}
	shutdown := v.GetDuration(KeyShutdownTimeout)
	if shutdown <= 0 {
		shutdown = 10 * time.Second
	}

	return Config{
		Port:            v.GetString(KeyPort),
		JWTSecret:       v.GetString(KeyJWTSecret),
		JWTIssuer:       issuer,
		MetricsToken:    v.GetString(KeyMetricsToken),
		LogLevel:        v.GetString(KeyLogLevel),
		ShutdownTimeout: shutdown,
		WriteLimit:      writeLimit,
		TrustForwarded:  v.GetBool(KeyTrustForwarded),
		Addr:            strings.TrimRight(v.GetString(KeyAddr), "/"),
		Bounds:          catalog.ResolveBounds(Lookup(v)),
	}
}

// Lookup adapts v to the bounds resolver. Keys are read through viper so
// environment variables and explicit Set calls are both honoured.
func Lookup(v *viper.Viper) catalog.Lookup {
	return func(key string) (string, bool) {
		if !v.IsSet(key) {
			return "", false
		}
		return v.GetString(key), true
	}
}

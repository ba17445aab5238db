package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/plantshelf/internal/flagx"
	"github.com/dmitrijs2005/plantshelf/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Durations accept
// "90s" style strings or integer nanoseconds. Absent keys keep the value
// from the previous layer.
type JsonConfig struct {
	EndpointAddrGRPC             string         `json:"endpoint_addr_grpc"`
	EndpointAddrHTTP             string         `json:"endpoint_addr_http"`
	DatabaseDSN                  string         `json:"database_dsn"`
	SecretKey                    string         `json:"secret_key"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration"`
	ActionTokenValidityDuration  timex.Duration `json:"action_token_validity_duration"`
	PasswordResetURL             string         `json:"password_reset_url"`
	VerifyEmailURL               string         `json:"verify_email_url"`
	S3RootUser                   string         `json:"s3_root_user"`
	S3RootPassword               string         `json:"s3_root_password"`
	S3Bucket                     string         `json:"s3_bucket"`
	S3Region                     string         `json:"s3_region"`
	S3BaseEndpoint               string         `json:"s3_base_endpoint"`
	RedisAddr                    string         `json:"redis_addr"`
	AdminRateLimit               int            `json:"admin_rate_limit"`
	AdminRateWindow              timex.Duration `json:"admin_rate_window"`
	AdminEmails                  []string       `json:"admin_emails"`
	LogLevel                     string         `json:"log_level"`
}

// parseJson overlays the file given with -c or -config, if any. A missing or
// malformed file panics.
func parseJson(config *Config, args []string) {
	jsonConfigFile := flagx.JsonConfigFlags(args)
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setDuration(&config.AccessTokenValidityDuration, c.AccessTokenValidityDuration)
	setDuration(&config.RefreshTokenValidityDuration, c.RefreshTokenValidityDuration)
	setDuration(&config.ActionTokenValidityDuration, c.ActionTokenValidityDuration)
	setString(&config.PasswordResetURL, c.PasswordResetURL)
	setString(&config.VerifyEmailURL, c.VerifyEmailURL)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.RedisAddr, c.RedisAddr)
	if c.AdminRateLimit != 0 {
		config.AdminRateLimit = c.AdminRateLimit
	}
	setDuration(&config.AdminRateWindow, c.AdminRateWindow)
	if len(c.AdminEmails) > 0 {
		config.AdminEmails = c.AdminEmails
	}
	setString(&config.LogLevel, c.LogLevel)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration != 0 {
		*dst = v.Duration
	}
}

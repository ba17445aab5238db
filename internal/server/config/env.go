package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/dmitrijs2005/plantshelf/internal/flagx"
)

// EnvPrefix prefixes every environment variable read by the server.
const EnvPrefix = "PLANTSHELF_"

const defaultEnvFile = ".env"

// parseEnv loads the dotenv file given with -env (or ./.env when present)
// without overriding variables already set, then overlays every non-empty
// PLANTSHELF_* variable. An explicit file that cannot be read panics, as
// does a malformed number or duration.
func parseEnv(config *Config, args []string) {
	if file := flagx.EnvFileFlags(args); file != "" {
		if err := godotenv.Load(file); err != nil {
			panic(err)
		}
	} else if err := godotenv.Load(defaultEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	envString(&config.EndpointAddrGRPC, "GRPC_ADDR")
	envString(&config.EndpointAddrHTTP, "HTTP_ADDR")
	envString(&config.DatabaseDSN, "DATABASE_DSN")
	envString(&config.SecretKey, "SECRET_KEY")
	envDuration(&config.AccessTokenValidityDuration, "ACCESS_TOKEN_TTL")
	envDuration(&config.RefreshTokenValidityDuration, "REFRESH_TOKEN_TTL")
	envDuration(&config.ActionTokenValidityDuration, "ACTION_TOKEN_TTL")
	envString(&config.PasswordResetURL, "PASSWORD_RESET_URL")
	envString(&config.VerifyEmailURL, "VERIFY_EMAIL_URL")
	envString(&config.S3RootUser, "S3_ROOT_USER")
	envString(&config.S3RootPassword, "S3_ROOT_PASSWORD")
	envString(&config.S3Bucket, "S3_BUCKET")
	envString(&config.S3Region, "S3_REGION")
	envString(&config.S3BaseEndpoint, "S3_BASE_ENDPOINT")
	envString(&config.RedisAddr, "REDIS_ADDR")
	envInt(&config.AdminRateLimit, "ADMIN_RATE_LIMIT")
	envDuration(&config.AdminRateWindow, "ADMIN_RATE_WINDOW")
	envList(&config.AdminEmails, "ADMIN_EMAILS")
	envString(&config.LogLevel, "LOG_LEVEL")
}

func envString(dst *string, name string) {
	if v := os.Getenv(EnvPrefix + name); v != "" {
		*dst = v
	}
}

// envList reads a comma-separated list; blank items are dropped.
func envList(dst *[]string, name string) {
	v := os.Getenv(EnvPrefix + name)
	if v == "" {
		return
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	*dst = out
}

func envInt(dst *int, name string) {
	v := os.Getenv(EnvPrefix + name)
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		panic(err)
	}
	*dst = n
}

func envDuration(dst *time.Duration, name string) {
	v := os.Getenv(EnvPrefix + name)
	if v == "" {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		panic(err)
	}
	*dst = d
}

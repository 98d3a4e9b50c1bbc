package config // package config loads application configuration from environment variables

import (
	"os" // os provides access to environment variables
	"time"

	"github.com/joho/godotenv"   // optional .env file for local runs
	"github.com/sirupsen/logrus" // fatal reporting of broken configuration
)

// Config holds the runtime configuration of the auth service.  Each field
// corresponds to an environment variable.
type Config struct {
	Env            string        // application environment (dev, test, prod)
	Port           string        // HTTP port to listen on
	DBUser         string        // database username
	DBPass         string        // database password (optional)
	DBHost         string        // database host address
	DBPort         string        // database port number
	DBName         string        // database name
	DBAutoMigrate  bool          // create tables on startup
	JWTSecret      string        // HS256 signing key for access tokens
	AccessTTL      time.Duration // access token lifetime
	RefreshTTL     time.Duration // refresh token lifetime
	OTPTTL         time.Duration // one-time code lifetime
	BcryptCost     int           // bcrypt cost for password hashing
	RequestTimeout time.Duration // upper bound for store calls made by one request
	LogLevel       string        // logrus level name
	LogFormat      string        // "json" or "text"

	CleanupInterval  time.Duration // janitor period, 0 disables it
	CleanupRetention time.Duration // how long expired rows are kept
}

// Load reads a .env file when present and then builds a Config from the
// environment.  Missing required variables stop the process.
func Load() Config {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	return Config{
		Env:            envStr("APP_ENV", "dev"),
		Port:           must("APP_PORT"),
		DBUser:         must("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"), // empty allowed
		DBHost:         must("DB_HOST"),
		DBPort:         must("DB_PORT"),
		DBName:         must("DB_NAME"),
		DBAutoMigrate:  envBool("DB_AUTO_MIGRATE", true),
		JWTSecret:      must("JWT_SECRET"),
		AccessTTL:      time.Duration(envInt("ACCESS_TOKEN_TTL_MIN", 60)) * time.Minute,
		RefreshTTL:     time.Duration(envInt("REFRESH_TOKEN_TTL_DAYS", 7)) * 24 * time.Hour,
		OTPTTL:         time.Duration(envInt("OTP_TTL_MIN", 5)) * time.Minute,
		BcryptCost:     envInt("BCRYPT_COST", 10),
		RequestTimeout: envDur("REQUEST_TIMEOUT", 5*time.Second),
		LogLevel:       envStr("LOG_LEVEL", "info"),
		LogFormat:      envStr("LOG_FORMAT", "json"),

		CleanupInterval:  envDur("CLEANUP_INTERVAL", time.Hour),
		CleanupRetention: envDur("CLEANUP_RETENTION", 24*time.Hour),
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty the process exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		logrus.Fatalf("missing required env var: %s", key)
	}
	return v
}

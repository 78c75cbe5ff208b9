package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"time"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Required values are enforced with must(); the
// blockchain settings are deliberately optional so the platform keeps
// accepting applications when no signer key or RPC endpoint is configured.
type Config struct {
	Env            string        // application environment (e.g. "dev", "prod")
	Port           string        // HTTP port to listen on
	DBUser         string        // database username
	DBPass         string        // database password (optional)
	DBHost         string        // database host address
	DBPort         string        // database port number
	DBName         string        // database name
	DBMaxOpenConns int           // connection pool ceiling
	DBMaxIdleConns int           // idle connections kept around
	DBConnMaxLife  time.Duration // recycle age for pooled connections
	JWTSecret      string        // secret used to sign JWTs
	AccessTTLMin   int           // access token time-to-live in minutes
	RefreshTTLDays int           // refresh token time-to-live in days
	BcryptCost     int           // bcrypt cost for password hashing

	ChainRPCURL     string // primary JSON-RPC endpoint (optional; fallbacks used otherwise)
	ChainID         int64  // chain id of the attestation network (default: Sepolia)
	ChainPrivateKey string // hex private key of the attestation wallet (optional)
	ExplorerBaseURL string // block explorer base used only for display links

	UploadDir     string // directory where submitted documents are stored
	UploadBaseURL string // public base URL prefixed to stored document names
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:            must("APP_ENV"),
		Port:           must("APP_PORT"),
		DBUser:         must("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"), // empty allowed
		DBHost:         must("DB_HOST"),
		DBPort:         must("DB_PORT"),
		DBName:         must("DB_NAME"),
		DBMaxOpenConns: envInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns: envInt("DB_MAX_IDLE_CONNS", 25),
		DBConnMaxLife:  time.Duration(envInt64("DB_CONN_MAX_LIFETIME_MIN", 30)) * time.Minute,
		JWTSecret:      must("JWT_SECRET"),
		AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLDays: mustInt("REFRESH_TOKEN_TTL_DAYS"),
		BcryptCost:     mustInt("BCRYPT_COST"),

		ChainRPCURL:     os.Getenv("CHAIN_RPC_URL"),
		ChainID:         envInt64("CHAIN_ID", 11155111), // Sepolia test network
		ChainPrivateKey: os.Getenv("CHAIN_PRIVATE_KEY"),
		ExplorerBaseURL: getenv("EXPLORER_BASE_URL", "https://sepolia.etherscan.io"),

		UploadDir:     getenv("UPLOAD_DIR", "uploads"),
		UploadBaseURL: getenv("UPLOAD_BASE_URL", "/uploads"),
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

// envInt64 reads an optional int64 environment variable with a default.
func envInt64(key string, def int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, v)
	}
	return n
}

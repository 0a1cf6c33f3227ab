package config // package config loads application configuration from environment variables

import (
    "log" // log is used to report configuration errors and halt execution
    "os"  // os provides access to environment variables
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Feature toggles for the scraper runner and the
// health monitor live in explicit sub-configs rather than being read from
// the environment at the point of use, so the recognized options are
// enumerated in one place and configs can be constructed directly in tests.
type Config struct {
    Env       string       // application environment (e.g. "dev", "prod")
    Port      string       // HTTP port to listen on
    DBUser    string       // database username
    DBPass    string       // database password (optional)
    DBHost    string       // database host address
    DBPort    string       // database port number
    DBName    string       // database name
    JWTSecret string       // secret used to verify service tokens on /v1 routes
    Runner    RunnerConfig // scraper runner toggles
    Health    HealthConfig // health monitor thresholds
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  Runner and health
// options all have defaults and are optional.
func Load() Config {
    return Config{
        Env:       must("APP_ENV"),      // environment (dev/test/prod)
        Port:      must("APP_PORT"),     // port to bind the HTTP server
        DBUser:    must("DB_USER"),      // database user
        DBPass:    os.Getenv("DB_PASS"), // database password (empty allowed)
        DBHost:    must("DB_HOST"),      // database host
        DBPort:    must("DB_PORT"),      // database port
        DBName:    must("DB_NAME"),      // database name
        JWTSecret: must("JWT_SECRET"),   // secret for verifying caller tokens
        Runner:    LoadRunnerConfig(),
        Health:    LoadHealthConfig(),
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

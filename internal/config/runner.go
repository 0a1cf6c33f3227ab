package config

import (
    "os"
    "strconv"
    "time"
)

// RunnerConfig enumerates the scraper runner's recognized options.  Every
// option has a default so the runner works with an empty environment.
type RunnerConfig struct {
    ValidationEnabled bool          // run venue sanity rules on scrape results
    MaxConcurrency    int           // simultaneous venue jobs in a batch run
    ScrapeTimeout     time.Duration // hard wall-clock bound per venue job
    ForwardWindowDays int           // validation: showtimes must fall within this many days
}

// LoadRunnerConfig reads the SCRAPE_* environment variables.
func LoadRunnerConfig() RunnerConfig {
    cfg := RunnerConfig{
        ValidationEnabled: envBool("SCRAPE_VALIDATION", true),
        MaxConcurrency:    envInt("SCRAPE_MAX_CONCURRENCY", 4),
        ScrapeTimeout:     envDur("SCRAPE_TIMEOUT", 2*time.Minute),
        ForwardWindowDays: envInt("SCRAPE_FORWARD_WINDOW_DAYS", 120),
    }
    if cfg.MaxConcurrency < 1 {
        cfg.MaxConcurrency = 1
    }
    if cfg.ScrapeTimeout <= 0 {
        cfg.ScrapeTimeout = 2 * time.Minute
    }
    if cfg.ForwardWindowDays < 1 {
        cfg.ForwardWindowDays = 1
    }
    return cfg
}

// HealthConfig enumerates the health monitor's thresholds.  Ratios compare
// the current screening count against the rolling baseline: below WarnRatio
// is a warning, below CriticalRatio (or zero with real history) is critical.
type HealthConfig struct {
    WarnRatio        float64       // count/baseline below this triggers WARNING
    CriticalRatio    float64       // count/baseline below this triggers CRITICAL
    ConsecutiveLimit int           // warnings in a row before escalating to CRITICAL
    BaselineWindow   int           // snapshots contributing to the rolling baseline
    MinHistory       int           // snapshots required before anomalies are trusted
    ForwardWindow    time.Duration // how far ahead "upcoming screenings" looks
    AlertMinInterval time.Duration // minimum gap between repeat alerts per venue
}

// LoadHealthConfig reads the HEALTH_* environment variables.
func LoadHealthConfig() HealthConfig {
    cfg := HealthConfig{
        WarnRatio:        envFloat("HEALTH_WARN_RATIO", 0.5),
        CriticalRatio:    envFloat("HEALTH_CRITICAL_RATIO", 0.25),
        ConsecutiveLimit: envInt("HEALTH_CONSECUTIVE_LIMIT", 3),
        BaselineWindow:   envInt("HEALTH_BASELINE_WINDOW", 10),
        MinHistory:       envInt("HEALTH_MIN_HISTORY", 3),
        ForwardWindow:    envDur("HEALTH_FORWARD_WINDOW", 14*24*time.Hour),
        AlertMinInterval: envDur("HEALTH_ALERT_MIN_INTERVAL", 24*time.Hour),
    }
    if cfg.WarnRatio <= 0 || cfg.WarnRatio > 1 {
        cfg.WarnRatio = 0.5
    }
    if cfg.CriticalRatio <= 0 || cfg.CriticalRatio >= cfg.WarnRatio {
        cfg.CriticalRatio = cfg.WarnRatio / 2
    }
    if cfg.ConsecutiveLimit < 1 {
        cfg.ConsecutiveLimit = 1
    }
    if cfg.BaselineWindow < 1 {
        cfg.BaselineWindow = 10
    }
    if cfg.MinHistory < 1 {
        cfg.MinHistory = 1
    }
    return cfg
}

func envStr(k, d string) string {
    if v := os.Getenv(k); v != "" {
        return v
    }
    return d
}

func envBool(k string, d bool) bool {
    v := os.Getenv(k)
    if v == "" {
        return d
    }
    switch v {
    case "1", "true", "TRUE", "True", "yes", "YES", "on", "ON":
        return true
    case "0", "false", "FALSE", "False", "no", "NO", "off", "OFF":
        return false
    }
    return d
}

func envInt(k string, d int) int {
    v := os.Getenv(k)
    if v == "" {
        return d
    }
    if n, err := strconv.Atoi(v); err == nil {
        return n
    }
    return d
}

func envFloat(k string, d float64) float64 {
    v := os.Getenv(k)
    if v == "" {
        return d
    }
    if f, err := strconv.ParseFloat(v, 64); err == nil {
        return f
    }
    return d
}

func envDur(k string, d time.Duration) time.Duration {
    v := os.Getenv(k)
    if v == "" {
        return d
    }
    if dur, err := time.ParseDuration(v); err == nil {
        return dur
    }
    return d
}

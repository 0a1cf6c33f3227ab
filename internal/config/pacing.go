package config

import "time"

// PacingConfig defines the outbound request budget scrapers get against a
// single upstream host.  Cinema sites are small and rate-sensitive; the
// pacer's token bucket lives in Redis so the budget holds across processes.
// When Enabled is false or no Redis client is configured, scrapers send
// requests unthrottled.
type PacingConfig struct {
    Enabled        bool
    Capacity       int           // bucket size (burst)
    RefillTokens   int           // tokens added per interval
    RefillInterval time.Duration // refill cadence
    TTL            time.Duration // bucket key lifetime in Redis
    Prefix         string        // key namespace
}

// LoadPacingConfig reads environment variables to build a PacingConfig.
// Defaults allow short bursts of 5 requests refilled at one per second.
func LoadPacingConfig() PacingConfig {
    cfg := PacingConfig{
        Enabled:        envBool("SCRAPE_PACING_ENABLED", true),
        Capacity:       envInt("SCRAPE_PACING_CAPACITY", 5),
        RefillTokens:   envInt("SCRAPE_PACING_REFILL_TOKENS", 1),
        RefillInterval: envDur("SCRAPE_PACING_REFILL_INTERVAL", time.Second),
        TTL:            envDur("SCRAPE_PACING_TTL", 10*time.Minute),
        Prefix:         envStr("SCRAPE_PACING_PREFIX", "pace"),
    }
    if cfg.Capacity < 1 {
        cfg.Capacity = 1
    }
    if cfg.RefillTokens < 1 {
        cfg.RefillTokens = 1
    }
    if cfg.RefillInterval <= 0 {
        cfg.RefillInterval = time.Second
    }
    if minTTL := 5 * cfg.RefillInterval; cfg.TTL < minTTL {
        cfg.TTL = minTTL
    }
    return cfg
}

// ReportCacheConfig controls caching of the latest health report in Redis.
type ReportCacheConfig struct {
    Enabled bool
    TTL     time.Duration
    Key     string
}

// LoadReportCacheConfig reads the REPORT_CACHE_* environment variables.
func LoadReportCacheConfig() ReportCacheConfig {
    return ReportCacheConfig{
        Enabled: envBool("REPORT_CACHE_ENABLED", true),
        TTL:     envDur("REPORT_CACHE_TTL", time.Minute),
        Key:     envStr("REPORT_CACHE_KEY", "health:report:latest"),
    }
}

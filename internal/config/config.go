package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
)

type Config struct {
	AppPort string

	MySQLHost string
	MySQLPort string
	MySQLDB   string
	MySQLUser string
	MySQLPass string

	RedisAddr string
	RedisDB   int

	IdempTTLSecs int

	// market constants
	AccuracyFactor        uint64
	DayBoundaryOffsetSecs int64
	MaxSubLoansPerLoan    uint64

	// external accounts / collaborators
	AddonTreasury          string
	TokenServiceURL        string
	CollaboratorTimeoutSec int

	// static bearer tokens: owner gates program control, admin gates loan
	// and operation control
	OwnerToken string
	AdminToken string
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getenvInt(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

func getenvUint(k string, d uint64) uint64 {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			return n
		}
	}
	return d
}

func Load() *Config {
	c := &Config{
		AppPort:   getenv("APP_PORT", "8080"),
		MySQLHost: getenv("MYSQL_HOST", "mysql"),
		MySQLPort: getenv("MYSQL_PORT", "3306"),
		MySQLDB:   getenv("MYSQL_DB", "ledger"),
		MySQLUser: getenv("MYSQL_USER", "ledger"),
		MySQLPass: getenv("MYSQL_PASS", "ledger"),

		RedisAddr:    getenv("REDIS_ADDR", "redis:6379"),
		RedisDB:      getenvInt("REDIS_DB", 0),
		IdempTTLSecs: getenvInt("IDEMPOTENCY_TTL_SECONDS", 300),

		AccuracyFactor:        getenvUint("ACCURACY_FACTOR", 10_000),
		DayBoundaryOffsetSecs: int64(getenvInt("DAY_BOUNDARY_OFFSET_SECONDS", 10_800)),
		MaxSubLoansPerLoan:    getenvUint("MAX_SUBLOANS_PER_LOAN", 32),

		AddonTreasury:          getenv("ADDON_TREASURY", ""),
		TokenServiceURL:        getenv("TOKEN_SERVICE_URL", ""),
		CollaboratorTimeoutSec: getenvInt("COLLABORATOR_TIMEOUT_SECONDS", 10),

		OwnerToken: getenv("OWNER_TOKEN", ""),
		AdminToken: getenv("ADMIN_TOKEN", ""),
	}
	return c
}

func (c *Config) Validate() error {
	if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
		return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
	}
	// ensure port is valid
	if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
		return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
	}
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	if c.AccuracyFactor == 0 {
		return errors.New("ACCURACY_FACTOR must be positive")
	}
	if c.MaxSubLoansPerLoan == 0 {
		return errors.New("MAX_SUBLOANS_PER_LOAN must be positive")
	}
	if c.AddonTreasury == "" {
		return errors.New("missing ADDON_TREASURY")
	}
	if c.TokenServiceURL == "" {
		return errors.New("missing TOKEN_SERVICE_URL")
	}
	if c.OwnerToken == "" || c.AdminToken == "" {
		return errors.New("missing OWNER_TOKEN / ADMIN_TOKEN")
	}
	return nil
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// multiStatements=true is handy for migrations; parseTime needed for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?multiStatements=true&parseTime=true&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}

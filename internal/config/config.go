package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"

	"github.com/spf13/pflag"
)

type Config struct {
	Bind        string
	Port        int
	DatabaseURL string
	SQLitePath  string
	BaseURL     string
	HostToken   string
	AdminToken  string
	Verbose     bool
}

// RegisterFlags binds every setting to the given flag set. Each flag is also
// reachable through the TRIVIA_ environment prefix (bound in cmd/web).
func (c *Config) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.Bind, "bind", "b", "0.0.0.0", "address to bind to (env: TRIVIA_BIND)")
	fs.IntVarP(&c.Port, "port", "p", 8080, "port to listen on (env: TRIVIA_PORT)")
	fs.StringVar(&c.DatabaseURL, "database-url", "", "postgres connection string; empty falls back to sqlite (env: TRIVIA_DATABASE_URL)")
	fs.StringVar(&c.SQLitePath, "sqlite-path", "trivianight.db", "sqlite database file used when no postgres url is set (env: TRIVIA_SQLITE_PATH)")
	fs.StringVar(&c.BaseURL, "base-url", "", "public base url for join links and QR codes (env: TRIVIA_BASE_URL)")
	fs.StringVar(&c.HostToken, "host-token", "", "bearer token granting host access (env: TRIVIA_HOST_TOKEN)")
	fs.StringVar(&c.AdminToken, "admin-token", "", "bearer token granting admin access (env: TRIVIA_ADMIN_TOKEN)")
	fs.BoolVarP(&c.Verbose, "verbose", "v", false, "display additional output (env: TRIVIA_VERBOSE)")
}

func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.Port)
	}
	if c.DatabaseURL == "" && c.SQLitePath == "" {
		return fmt.Errorf("either --database-url or --sqlite-path must be set")
	}
	if c.BaseURL != "" {
		u, err := url.Parse(c.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid base url: %q", c.BaseURL)
		}
	}
	return nil
}

func (c *Config) Addr() string {
	return net.JoinHostPort(c.Bind, strconv.Itoa(c.Port))
}

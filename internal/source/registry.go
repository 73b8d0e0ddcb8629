package source

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"
)

// Params describes how to reach a database. DSN, when set, takes
// precedence over the individual connection fields. Database names the
// database to connect to where it differs from Schema (PostgreSQL).
type Params struct {
	Driver         string
	Host           string
	Port           int
	User           string
	Password       string
	Database       string
	Schema         string
	DSN            string
	ConnectTimeout time.Duration
	QueryTimeout   time.Duration
	Logger         *slog.Logger
}

// Addr returns host:port for messages.
func (p Params) Addr() string {
	if p.Host == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d", p.Host, p.Port)
}

// OpenFunc opens a Reader and verifies the connection.
type OpenFunc func(ctx context.Context, p Params) (Reader, error)

var (
	driversMu sync.RWMutex
	drivers   = map[string]OpenFunc{}
)

// Register makes a driver available to Open. Driver packages call it from init.
func Register(name string, open OpenFunc) {
	driversMu.Lock()
	defer driversMu.Unlock()
	if _, dup := drivers[name]; dup {
		panic("source: Register called twice for driver " + name)
	}
	drivers[name] = open
}

// Drivers returns the registered driver names, sorted.
func Drivers() []string {
	driversMu.RLock()
	defer driversMu.RUnlock()
	names := make([]string, 0, len(drivers))
	for n := range drivers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Open connects using the driver named in p.
func Open(ctx context.Context, p Params) (Reader, error) {
	driversMu.RLock()
	open, ok := drivers[strings.ToLower(p.Driver)]
	driversMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown source type %q (available: %s)", p.Driver, strings.Join(Drivers(), ", "))
	}
	if p.Logger == nil {
		p.Logger = slog.Default()
	}
	if p.ConnectTimeout <= 0 {
		p.ConnectTimeout = 5 * time.Second
	}
	if p.QueryTimeout <= 0 {
		p.QueryTimeout = 5 * time.Second
	}
	return open(ctx, p)
}

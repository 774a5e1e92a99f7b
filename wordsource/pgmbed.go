package wordsource

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	embeddedpostgres "github.com/fergusstrange/embedded-postgres"

	"github.com/acronis/perfkit-sets/logger"
)

const (
	embeddedPostgresParam  = "embedded-postgres"
	embeddedPortParam      = "ep-port"
	embeddedDataDirParam   = "ep-data-dir"
	embeddedMaxConnsParam  = "ep-max-connections"
	embeddedPostgresUser   = "postgres"
	embeddedPostgresDBName = "postgres"
)

var (
	embeddedPostgresMutex    sync.Mutex
	embeddedPostgresRefCount int

	// one embedded instance serves every postgres source of the process
	embeddedPostgresInstance *embeddedpostgres.EmbeddedPostgres
)

// embeddedOpts holds the ep-* parameters of a postgres connection string
type embeddedOpts struct {
	enabled        bool
	port           int
	dataDir        string
	maxConnections int
}

// parseEmbeddedOpts takes the embedded postgres parameters off a postgres uri
func parseEmbeddedOpts(uri string) (string, *embeddedOpts, error) {
	rest, params, err := splitParams(uri, embeddedPostgresParam, embeddedPortParam, embeddedDataDirParam, embeddedMaxConnsParam)
	if err != nil {
		return "", nil, err
	}

	opts := &embeddedOpts{
		port:           5433,
		maxConnections: 64,
	}

	if v, ok := params[embeddedPostgresParam]; ok {
		if opts.enabled, err = strconv.ParseBool(v); err != nil {
			return "", nil, fmt.Errorf("invalid value for %s: %w", embeddedPostgresParam, err)
		}
	}

	if v, ok := params[embeddedPortParam]; ok {
		if opts.port, err = strconv.Atoi(v); err != nil || opts.port <= 0 || opts.port > 65535 {
			return "", nil, fmt.Errorf("invalid value for %s: '%s'", embeddedPortParam, v)
		}
	}

	opts.dataDir = params[embeddedDataDirParam]

	if v, ok := params[embeddedMaxConnsParam]; ok {
		if opts.maxConnections, err = strconv.Atoi(v); err != nil || opts.maxConnections <= 0 {
			return "", nil, fmt.Errorf("invalid value for %s: '%s'", embeddedMaxConnsParam, v)
		}
	}

	return rest, opts, nil
}

// packEmbeddedConnString points a postgres uri at the embedded instance
func packEmbeddedConnString(uri string, port int) (string, error) {
	u, err := url.Parse("postgres://" + uri)
	if err != nil {
		return "", fmt.Errorf("cannot parse postgres dsn: %w", err)
	}

	u.Host = fmt.Sprintf("localhost:%d", port)
	u.User = url.UserPassword(embeddedPostgresUser, embeddedPostgresUser)
	u.Path = "/" + embeddedPostgresDBName

	return strings.TrimPrefix(u.String(), "postgres://"), nil
}

// embeddedPostgresLogger forwards the server output line by line
type embeddedPostgresLogger struct {
	logger logger.Logger
}

func (l embeddedPostgresLogger) Write(p []byte) (n int, err error) {
	if l.logger == nil {
		return len(p), nil
	}

	for _, line := range strings.Split(strings.TrimRight(string(p), "\n"), "\n") {
		l.logger.Debug("-- embedded postgres: %s", line)
	}

	return len(p), nil
}

func embeddedDataDir(dir string, lg logger.Logger) (string, error) {
	if dir == "" {
		dir = ".embedded-postgres-go"
		if userHome, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(userHome, dir)
		}
		dir = filepath.Join(dir, "data")
	}

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		lg.Info("creating embedded postgres data dir: %s", dir)
		if err = os.MkdirAll(dir, 0o750); err != nil {
			return "", fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	lg.Debug("using embedded postgres data dir: %s", dir)

	return dir, nil
}

// launchEmbeddedPostgres starts the embedded instance unless it is already running,
// every successful call must be paired with terminateEmbeddedPostgres
func launchEmbeddedPostgres(opts *embeddedOpts, lg logger.Logger) error {
	embeddedPostgresMutex.Lock()
	defer embeddedPostgresMutex.Unlock()

	if embeddedPostgresInstance == nil {
		dataDir, err := embeddedDataDir(opts.dataDir, lg)
		if err != nil {
			return err
		}

		var port = uint32(opts.port)
		instance := embeddedpostgres.NewDatabase(embeddedpostgres.DefaultConfig().
			Port(port).
			DataPath(dataDir).
			Logger(embeddedPostgresLogger{logger: lg}).
			StartParameters(map[string]string{
				"max_connections": strconv.Itoa(opts.maxConnections),
				"jit":             "off",
			}))

		if err = instance.Start(); err != nil {
			if err.Error() != fmt.Sprintf("process already listening on port %d", port) {
				return fmt.Errorf("embedded postgres start error: %w", err)
			}
			// someone else owns the server on that port, there is nothing for us to stop
			lg.Warn("embedded postgres port %d is already taken, reusing the running server", port)
			instance = nil
		}

		embeddedPostgresInstance = instance
	}

	embeddedPostgresRefCount++

	return nil
}

// terminateEmbeddedPostgres stops the embedded instance when its last source is closed
func terminateEmbeddedPostgres() error {
	embeddedPostgresMutex.Lock()
	defer embeddedPostgresMutex.Unlock()

	if embeddedPostgresRefCount == 0 {
		return nil
	}

	embeddedPostgresRefCount--
	if embeddedPostgresRefCount > 0 || embeddedPostgresInstance == nil {
		return nil
	}

	err := embeddedPostgresInstance.Stop()
	embeddedPostgresInstance = nil

	if err != nil {
		return fmt.Errorf("embedded postgres stop error: %w", err)
	}

	return nil
}

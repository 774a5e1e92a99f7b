package wordsource

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/MichaelS11/go-cql-driver"
	"github.com/gocql/gocql"
	"github.com/gocraft/dbr/v2"

	_ "github.com/ClickHouse/clickhouse-go/v2" // clickhouse driver
	_ "github.com/denisenkom/go-mssqldb"       // mssql driver
	_ "github.com/go-sql-driver/mysql"         // mysql driver
	_ "github.com/lib/pq"                      // postgres driver
	_ "github.com/mattn/go-sqlite3"            // sqlite3 driver
)

const (
	defaultTable  = "words"
	defaultColumn = "word"
)

func init() {
	for _, scheme := range []string{"sqlite", "postgres", "mysql", "mssql"} {
		if err := Register(scheme, openDBR); err != nil {
			panic(err)
		}
	}
	if err := Register("clickhouse", openClickHouse); err != nil {
		panic(err)
	}
	if err := Register("cql", openCassandra); err != nil {
		panic(err)
	}
}

var identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// tableAndColumn takes the table and column query parameters off uri
func tableAndColumn(uri string) (rest string, table string, column string, err error) {
	var params map[string]string
	if rest, params, err = splitParams(uri, "table", "column"); err != nil {
		return "", "", "", err
	}

	table, column = defaultTable, defaultColumn
	if v, ok := params["table"]; ok {
		table = v
	}
	if v, ok := params["column"]; ok {
		column = v
	}

	if !identifierRe.MatchString(table) {
		return "", "", "", fmt.Errorf("invalid table name '%s'", table)
	}
	if !identifierRe.MatchString(column) {
		return "", "", "", fmt.Errorf("invalid column name '%s'", column)
	}

	return rest, table, column, nil
}

// dbrDriver maps a scheme onto the dbr driver name and its DSN
func dbrDriver(scheme string, path string) (driver string, dsn string, err error) {
	switch scheme {
	case "sqlite":
		if path == "" {
			return "", "", fmt.Errorf("empty sqlite file path")
		}
		if !strings.Contains(path, ":memory:") && !strings.Contains(path, "mode=memory") && !filepath.IsAbs(path) {
			return "", "", fmt.Errorf("filepath '%v' is not absolute", path)
		}
		return "sqlite3", path, nil
	case "postgres":
		return "postgres", postgresConnString("postgres://" + path), nil
	case "mysql":
		return "mysql", path, nil
	case "mssql":
		return "mssql", "sqlserver://" + path, nil
	default:
		return "", "", fmt.Errorf("'%s' is unsupported dialect", scheme)
	}
}

// postgresConnString disables sslmode unless it is set explicitly
func postgresConnString(cs string) string {
	const sslModeParamName = "sslmode"

	u, err := url.Parse(cs)
	if err != nil {
		return cs
	}

	m := u.Query()
	if !m.Has(sslModeParamName) {
		m.Set(sslModeParamName, "disable")
		u.RawQuery = m.Encode()
	}

	return u.String()
}

// dbrSource reads a column through a dbr session
type dbrSource struct {
	conn     *dbr.Connection
	sess     *dbr.Session
	table    string
	column   string
	wordCase Case
	embedded bool
}

func openDBR(cfg Config) (Source, error) {
	scheme, uri, err := ParseScheme(cfg.ConnString)
	if err != nil {
		return nil, err
	}

	path, table, column, err := tableAndColumn(uri)
	if err != nil {
		return nil, err
	}

	var embedded bool
	if scheme == "postgres" {
		var opts *embeddedOpts
		if path, opts, err = parseEmbeddedOpts(path); err != nil {
			return nil, err
		}

		if opts.enabled {
			if path, err = packEmbeddedConnString(path, opts.port); err != nil {
				return nil, err
			}
			if err = launchEmbeddedPostgres(opts, cfg.Logger); err != nil {
				return nil, err
			}
			embedded = true
		}
	}

	// release drops the embedded server reference taken above
	release := func() {
		if embedded {
			if err := terminateEmbeddedPostgres(); err != nil {
				cfg.Logger.Error("%v", err)
			}
		}
	}

	driver, dsn, err := dbrDriver(scheme, path)
	if err != nil {
		release()
		return nil, err
	}

	conn, err := dbr.Open(driver, dsn, nil)
	if err != nil {
		release()
		return nil, fmt.Errorf("cannot connect to %s db: %w", scheme, err)
	}

	if err = conn.Ping(); err != nil {
		_ = conn.Close()
		release()
		return nil, fmt.Errorf("failed ping %s db: %w", scheme, err)
	}

	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	cfg.Logger.Trace("dbr: reading %s.%s from %s", table, column, scheme)

	return &dbrSource{
		conn:     conn,
		sess:     conn.NewSession(nil),
		table:    table,
		column:   column,
		wordCase: cfg.Case,
		embedded: embedded,
	}, nil
}

func (s *dbrSource) Words(ctx context.Context, fn func(word string) bool) error {
	var words []string
	if _, err := s.sess.Select(s.column).
		From(s.table).
		Where(dbr.Neq(s.column, nil)).
		LoadContext(ctx, &words); err != nil {
		return fmt.Errorf("cannot read %s.%s: %w", s.table, s.column, err)
	}

	for _, w := range words {
		if !fn(s.wordCase.Normalize(w)) {
			return nil
		}
	}

	return nil
}

func (s *dbrSource) Close() error {
	err := s.conn.Close()
	if s.embedded {
		if termErr := terminateEmbeddedPostgres(); err == nil {
			err = termErr
		}
	}

	return err
}

// sqlSource streams a column with a plain query, for drivers dbr has no dialect for
type sqlSource struct {
	db       *sql.DB
	query    string
	wordCase Case
}

func (s *sqlSource) Words(ctx context.Context, fn func(word string) bool) error {
	rows, err := s.db.QueryContext(ctx, s.query)
	if err != nil {
		return fmt.Errorf("cannot run '%s': %w", s.query, err)
	}
	defer rows.Close()

	for rows.Next() {
		var w sql.NullString
		if err = rows.Scan(&w); err != nil {
			return fmt.Errorf("cannot scan word: %w", err)
		}
		if !w.Valid {
			continue
		}
		if !fn(s.wordCase.Normalize(w.String)) {
			return nil
		}
	}

	return rows.Err()
}

func (s *sqlSource) Close() error {
	return s.db.Close()
}

func openClickHouse(cfg Config) (Source, error) {
	_, uri, err := ParseScheme(cfg.ConnString)
	if err != nil {
		return nil, err
	}

	rest, table, column, err := tableAndColumn(uri)
	if err != nil {
		return nil, err
	}

	rwc, err := sql.Open("clickhouse", "clickhouse://"+rest)
	if err != nil {
		return nil, fmt.Errorf("cannot connect to clickhouse db: %w", err)
	}

	if err = rwc.Ping(); err != nil {
		_ = rwc.Close()
		return nil, fmt.Errorf("failed ping clickhouse db: %w", err)
	}

	return &sqlSource{
		db:       rwc,
		query:    fmt.Sprintf("SELECT %s FROM %s", column, table),
		wordCase: cfg.Case,
	}, nil
}

func openCassandra(cfg Config) (Source, error) {
	_, uri, err := ParseScheme(cfg.ConnString)
	if err != nil {
		return nil, err
	}

	rest, table, column, err := tableAndColumn(uri)
	if err != nil {
		return nil, err
	}

	parsedURL, err := url.Parse("cql://" + rest)
	if err != nil {
		return nil, fmt.Errorf("cannot parse cassandra dsn: %w", err)
	}

	var user = parsedURL.User.Username()
	var password, _ = parsedURL.User.Password()
	parsedURL.User = nil

	var cs string
	if _, cs, err = ParseScheme(parsedURL.String()); err != nil {
		return nil, err
	}

	var clusterConfig *gocql.ClusterConfig
	if clusterConfig, err = cql.ConfigStringToClusterConfig(cs); err != nil {
		return nil, fmt.Errorf("cannot convert cassandra dsn: %w", err)
	}

	clusterConfig.Timeout = time.Minute
	clusterConfig.ConnectTimeout = time.Minute
	if user != "" {
		clusterConfig.Authenticator = gocql.PasswordAuthenticator{
			Username: user,
			Password: password,
		}
	}

	rwc, err := sql.Open("cql", cql.ClusterConfigToConfigString(clusterConfig))
	if err != nil {
		return nil, fmt.Errorf("cannot connect to cassandra db: %w", err)
	}

	if err = rwc.Ping(); err != nil {
		_ = rwc.Close()
		return nil, fmt.Errorf("failed ping cassandra db: %w", err)
	}

	return &sqlSource{
		db:       rwc,
		query:    fmt.Sprintf("SELECT %s FROM %s", column, table),
		wordCase: cfg.Case,
	}, nil
}

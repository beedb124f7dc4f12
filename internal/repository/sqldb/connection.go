package sqldb

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite"
)

type PoolConfig struct {
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
}

// DB wraps a pool together with the dialect its queries are written for.
type DB struct {
	*sql.DB
	Driver string
}

// Open connects, applies the pool settings and runs the schema migration.
func Open(driver, dsn string, pool PoolConfig) (*DB, error) {
	if driver != DriverPostgres && driver != DriverSQLite {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}

	if driver == DriverSQLite {
		// single writer; extra connections only produce SQLITE_BUSY
		conn.SetMaxOpenConns(1)
	} else {
		conn.SetMaxOpenConns(pool.MaxOpenConns)
		conn.SetMaxIdleConns(pool.MaxIdleConns)
		conn.SetConnMaxLifetime(time.Duration(pool.ConnMaxLifetimeMin) * time.Minute)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("unable to connect to database: %v", err)
	}

	db := &DB{DB: conn, Driver: driver}
	if err := db.Migrate(); err != nil {
		conn.Close()
		return nil, err
	}

	log.Info().Str("component", "db").Str("driver", driver).Msg("database connected")
	return db, nil
}

// rebind rewrites '?' placeholders into the numbered form postgres expects.
func (db *DB) rebind(query string) string {
	if db.Driver != DriverPostgres {
		return query
	}
	var sb strings.Builder
	sb.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteByte(query[i])
	}
	return sb.String()
}

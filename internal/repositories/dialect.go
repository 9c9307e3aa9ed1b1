package repositories

import (
	"fmt"
	"net/url"
	"strings"
)

type dialect struct {
	driverName   string
	singleConn   bool
	schema       []string
	columnExists string // counts the columns named $2 in table $1
	migrateLock  string // run first inside the migration transaction, if set
	dsn          func(url string, busyTimeoutMS int) string
}

var dialects = map[string]dialect{
	"sqlite": {
		driverName: "sqlite",
		singleConn: true,
		schema: []string{
			`CREATE TABLE IF NOT EXISTS usuarios (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				nome TEXT NOT NULL,
				email TEXT UNIQUE NOT NULL,
				senha TEXT NOT NULL,
				papel TEXT NOT NULL DEFAULT 'padrao'
			)`,
			`CREATE TABLE IF NOT EXISTS tarefas (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				usuario_email TEXT NOT NULL REFERENCES usuarios(email),
				titulo TEXT NOT NULL,
				descricao TEXT,
				status TEXT NOT NULL,
				prioridade INTEGER DEFAULT 0
			)`,
			`CREATE INDEX IF NOT EXISTS idx_tarefas_usuario_email ON tarefas(usuario_email)`,
		},
		columnExists: `SELECT COUNT(*) FROM pragma_table_info($1) WHERE name = $2`,
		dsn:          sqliteDSN,
	},
	"postgres": {
		driverName: "postgres",
		schema: []string{
			`CREATE TABLE IF NOT EXISTS usuarios (
				id BIGSERIAL PRIMARY KEY,
				nome TEXT NOT NULL,
				email TEXT UNIQUE NOT NULL,
				senha TEXT NOT NULL,
				papel TEXT NOT NULL DEFAULT 'padrao'
			)`,
			`CREATE TABLE IF NOT EXISTS tarefas (
				id BIGSERIAL PRIMARY KEY,
				usuario_email TEXT NOT NULL REFERENCES usuarios(email),
				titulo TEXT NOT NULL,
				descricao TEXT,
				status TEXT NOT NULL,
				prioridade INTEGER DEFAULT 0
			)`,
			`CREATE INDEX IF NOT EXISTS idx_tarefas_usuario_email ON tarefas(usuario_email)`,
		},
		columnExists: `SELECT COUNT(*) FROM information_schema.columns
			WHERE table_schema = current_schema() AND table_name = $1 AND column_name = $2`,
		migrateLock: `SELECT pg_advisory_xact_lock(7254031)`,
		dsn:         func(url string, _ int) string { return url },
	},
}

// sqliteDSN turns a plain path into a modernc DSN with the pragmas the
// store relies on: bounded lock waits, enforced foreign keys, WAL readers
// and write transactions that take the lock up front. A plain path is
// percent-escaped so '?', '#' and '%' stay part of the file name; a value
// that already starts with "file:" is taken as a URI.
func sqliteDSN(path string, busyTimeoutMS int) string {
	if busyTimeoutMS <= 0 {
		busyTimeoutMS = 5000
	}
	dsn := path
	if !strings.HasPrefix(dsn, "file:") {
		dsn = "file:" + url.PathEscape(dsn)
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + fmt.Sprintf(
		"_pragma=busy_timeout(%d)&_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_txlock=immediate",
		busyTimeoutMS,
	)
}

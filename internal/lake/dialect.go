package lake

import (
	"fmt"
	"strings"

	"github.com/huangsam/gitlake/schema"
)

// dialect holds the backend-specific pieces of the otherwise portable SQL.
//
// Queries are written once with these placeholders:
//
//	{{month}}   YYYY-MM of the unix seconds column ts in the session zone
//	{{numeric}} exact type used before ROUND
//	{{int}}     integer type for CAST
//	{{div}}     integer division operator
//	{{fix}}     predicate matching fix keywords in message
type dialect struct {
	backend    schema.DatabaseBackend
	driverName string
	migrations string
	replacer   *strings.Replacer
	upsert     string
}

// newDialect returns the dialect for a backend.
func newDialect(backend schema.DatabaseBackend) (*dialect, error) {
	var month, numeric, integer, div, driverName, migrations, conflict string

	switch backend {
	case schema.SQLiteBackend:
		driverName = "sqlite"
		migrations = "sqlite"
		month = "strftime('%Y-%m', ts, 'unixepoch', 'localtime')"
		numeric = "REAL"
		integer = "INTEGER"
		div = "/"
		conflict = `ON CONFLICT (_raw_data_params, sha) DO UPDATE SET
			author_email = excluded.author_email,
			committed_date = excluded.committed_date,
			message = excluded.message`

	case schema.MySQLBackend:
		driverName = "mysql"
		migrations = "mysql"
		month = "DATE_FORMAT(FROM_UNIXTIME(ts), '%Y-%m')"
		numeric = "DECIMAL(30,10)"
		integer = "SIGNED"
		div = "DIV"
		conflict = `ON DUPLICATE KEY UPDATE
			author_email = VALUES(author_email),
			committed_date = VALUES(committed_date),
			message = VALUES(message)`

	case schema.PostgreSQLBackend:
		driverName = "pgx"
		migrations = "postgresql"
		month = "to_char(to_timestamp(ts), 'YYYY-MM')"
		numeric = "NUMERIC"
		integer = "BIGINT"
		div = "/"
		conflict = `ON CONFLICT (_raw_data_params, sha) DO UPDATE SET
			author_email = EXCLUDED.author_email,
			committed_date = EXCLUDED.committed_date,
			message = EXCLUDED.message`

	default:
		return nil, fmt.Errorf("unsupported backend: %s", backend)
	}

	return &dialect{
		backend:    backend,
		driverName: driverName,
		migrations: migrations,
		replacer: strings.NewReplacer(
			"{{month}}", month,
			"{{numeric}}", numeric,
			"{{int}}", integer,
			"{{div}}", div,
			"{{fix}}", fixPredicate(),
		),
		upsert: `INSERT INTO commits (sha, author_email, committed_date, _raw_data_params, message)
			VALUES (?, ?, ?, ?, ?) ` + conflict,
	}, nil
}

// expand fills the dialect placeholders of a query.
func (d *dialect) expand(query string) string {
	return d.replacer.Replace(query)
}

// fixPredicate ORs a case-folded LIKE per fix keyword. A NULL message matches none.
func fixPredicate() string {
	clauses := make([]string, len(schema.FixKeywords))
	for i, kw := range schema.FixKeywords {
		clauses[i] = fmt.Sprintf("LOWER(message) LIKE '%%%s%%'", kw)
	}
	return "(" + strings.Join(clauses, " OR ") + ")"
}

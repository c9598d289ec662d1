package ledger

import (
	"database/sql"

	_ "modernc.org/sqlite"

	"github.com/niftyshare/nifty/config"
	"github.com/niftyshare/nifty/errors"
)

// openSQLite opens the embedded database at the configured path, creating
// the file on first use.
func openSQLite(cfg config.SQLiteConfig, table string) (Store, error) {
	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, errors.New("ledger", errors.ErrLedger).
			WithPath(cfg.Path).
			WithMessage(err.Error())
	}

	// The embedded engine serializes writers; a single connection avoids
	// SQLITE_BUSY on concurrent statements.
	db.SetMaxOpenConns(1)

	return &sqlStore{db: db, table: table, engine: "sqlite"}, nil
}

package ledger

import (
	"database/sql"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/niftyshare/nifty/config"
	"github.com/niftyshare/nifty/errors"
)

// openMySQL connects to the configured MySQL server.
func openMySQL(cfg config.MySQLConfig, table string) (Store, error) {
	dsnCfg := mysql.NewConfig()
	dsnCfg.Net = "tcp"
	dsnCfg.Addr = fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	dsnCfg.User = cfg.User
	dsnCfg.Passwd = cfg.Password
	dsnCfg.DBName = cfg.Database
	// DATETIME columns scan into time.Time
	dsnCfg.ParseTime = true

	db, err := sql.Open("mysql", dsnCfg.FormatDSN())
	if err != nil {
		return nil, errors.New("ledger", errors.ErrLedger).WithMessage(err.Error())
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, errors.New("ledger", errors.ErrLedger).WithMessage(err.Error())
	}

	return &sqlStore{db: db, table: table, engine: "mysql"}, nil
}

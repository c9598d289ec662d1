// Package ledger persists a row per completed transfer in an embedded
// SQLite database or a MySQL server, selected by configuration.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/niftyshare/nifty/config"
	"github.com/niftyshare/nifty/errors"
)

// Record is one ledger row describing a completed transfer.
type Record struct {
	// ID is a UUID assigned at insert time if empty
	ID string

	SenderName     string
	FileBasename   string
	SenderAddress  string
	DownloadLink   string
	RecipientEmail string

	// ExpiryDate is when the shareable link stops working
	ExpiryDate time.Time

	FileSizeBytes int64

	// FilesList is every file included in the transfer; stored as a
	// comma-delimited column
	FilesList []string

	// DateAdded is set by the database on insert
	DateAdded time.Time
}

// Store is the persistence contract for transfer records.
type Store interface {
	// EnsureTable creates the ledger table if it does not exist
	EnsureTable(ctx context.Context) error

	// Insert appends one transfer record
	Insert(ctx context.Context, rec *Record) error

	// Select returns transfer records, newest first. A positive limit caps
	// the row count; zero or negative means all rows.
	Select(ctx context.Context, limit int) ([]Record, error)

	// Close releases the underlying connection
	Close() error
}

// Open creates the store selected by cfg.Engine. The engine set is closed;
// config validation rejects anything else before this point.
func Open(cfg config.LedgerConfig) (Store, error) {
	if !validIdentifier(cfg.Table) {
		return nil, errors.New("ledger", errors.ErrInvalidRequest).
			WithMessage(fmt.Sprintf("invalid table name %q", cfg.Table))
	}

	switch cfg.Engine {
	case "sqlite":
		return openSQLite(cfg.SQLite, cfg.Table)
	case "mysql":
		return openMySQL(cfg.MySQL, cfg.Table)
	default:
		return nil, errors.New("ledger", errors.ErrInvalidRequest).
			WithMessage(fmt.Sprintf("unknown ledger engine %q", cfg.Engine))
	}
}

var identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// validIdentifier reports whether name is safe to interpolate into SQL as a
// table name. Column names are fixed; only the table name is configurable.
func validIdentifier(name string) bool {
	return identifierRe.MatchString(name)
}

// sqlStore implements Store over database/sql. Both engines accept the same
// placeholder style and the same portable DDL, so one implementation serves
// both drivers.
type sqlStore struct {
	db     *sql.DB
	table  string
	engine string
}

func (s *sqlStore) EnsureTable(ctx context.Context) error {
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id VARCHAR(36) PRIMARY KEY,
		sender_name VARCHAR(100),
		file_basename VARCHAR(100),
		sender_address VARCHAR(100),
		download_link TEXT,
		recipient_email VARCHAR(100),
		expiry_date DATETIME,
		file_size_bytes BIGINT,
		files_list TEXT,
		date_added DATETIME DEFAULT CURRENT_TIMESTAMP
	)`, s.table)

	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return errors.New("ledger", errors.ErrLedger).WithMessage(err.Error())
	}
	return nil
}

func (s *sqlStore) Insert(ctx context.Context, rec *Record) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	logrus.WithFields(logrus.Fields{
		"engine": s.engine,
		"table":  s.table,
		"id":     rec.ID,
	}).Debug("recording transfer")

	query := fmt.Sprintf(`INSERT INTO %s (
		id, sender_name, file_basename, sender_address, download_link,
		recipient_email, expiry_date, file_size_bytes, files_list
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`, s.table)

	_, err := s.db.ExecContext(ctx, query,
		rec.ID,
		rec.SenderName,
		rec.FileBasename,
		rec.SenderAddress,
		rec.DownloadLink,
		rec.RecipientEmail,
		rec.ExpiryDate,
		rec.FileSizeBytes,
		strings.Join(rec.FilesList, ","),
	)
	if err != nil {
		return errors.New("ledger", errors.ErrLedger).WithMessage(err.Error())
	}
	return nil
}

func (s *sqlStore) Select(ctx context.Context, limit int) ([]Record, error) {
	query := fmt.Sprintf(`SELECT
		id, sender_name, file_basename, sender_address, download_link,
		recipient_email, expiry_date, file_size_bytes, files_list, date_added
	FROM %s ORDER BY date_added DESC`, s.table)
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.New("ledger", errors.ErrLedger).WithMessage(err.Error())
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var filesList string
		err := rows.Scan(
			&rec.ID,
			&rec.SenderName,
			&rec.FileBasename,
			&rec.SenderAddress,
			&rec.DownloadLink,
			&rec.RecipientEmail,
			&rec.ExpiryDate,
			&rec.FileSizeBytes,
			&filesList,
			&rec.DateAdded,
		)
		if err != nil {
			return nil, errors.New("ledger", errors.ErrLedger).WithMessage(err.Error())
		}
		if filesList != "" {
			rec.FilesList = strings.Split(filesList, ",")
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.New("ledger", errors.ErrLedger).WithMessage(err.Error())
	}

	return records, nil
}

func (s *sqlStore) Close() error {
	return s.db.Close()
}

package blobstore

import (
	"fmt"
	"sync"

	"github.com/archlinux/archwiki-sub029/wiki"

	"github.com/rs/zerolog"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

const (
	createBlobTable = "CREATE TABLE IF NOT EXISTS var_dump_blobs (" +
		"`address` TEXT PRIMARY KEY, " +
		"`data` BLOB NOT NULL" +
		");"
	insertBlob    = "INSERT OR IGNORE INTO var_dump_blobs (`address`, `data`) VALUES ($address, $data);"
	selectBlob    = "SELECT `data` FROM var_dump_blobs WHERE `address` = $address;"
	selectAddress = "SELECT `address` FROM var_dump_blobs ORDER BY `address`;"
)

// SQLiteStore keeps blobs in a SQLite table. A single connection is shared behind a mutex.
type SQLiteStore struct {
	mu     sync.Mutex
	conn   *sqlite.Conn
	logger zerolog.Logger
}

// OpenSQLiteStore opens or creates the database at path. ":memory:" gives a private in-memory database.
func OpenSQLiteStore(logger zerolog.Logger, path string) (*SQLiteStore, error) {
	conn, err := sqlite.OpenConn(path, sqlite.OpenReadWrite|sqlite.OpenCreate)
	if err != nil {
		return nil, fmt.Errorf("opening blob database %s: %w", path, err)
	}

	if err = sqlitex.ExecuteTransient(conn, createBlobTable, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("creating blob table: %w", err)
	}

	logger.Info().Str("path", path).Msg("Opened SQLite blob store")
	return &SQLiteStore{conn: conn, logger: logger}, nil
}

// StoreBlob stores data and returns its address. Storing data that is already present is a no-op.
func (s *SQLiteStore) StoreBlob(data []byte) (address string, err error) {
	address = Address(data)

	s.mu.Lock()
	defer s.mu.Unlock()

	err = sqlitex.Execute(s.conn, insertBlob, &sqlitex.ExecOptions{
		Named: map[string]interface{}{
			"$address": address,
			"$data":    data,
		},
	})
	if err != nil {
		err = fmt.Errorf("storing blob %s: %w", address, err)
		return
	}

	s.logger.Debug().Str("address", address).Int("bytes", len(data)).Msg("Stored blob in SQLite")
	return
}

// GetBlob returns the blob stored at address.
func (s *SQLiteStore) GetBlob(address string) (data []byte, err error) {
	if err = ValidateAddress(address); err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	err = sqlitex.Execute(s.conn, selectBlob, &sqlitex.ExecOptions{
		Named: map[string]interface{}{"$address": address},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			found = true
			data = make([]byte, stmt.ColumnLen(0))
			stmt.ColumnBytes(0, data)
			return nil
		},
	})
	if err != nil {
		err = fmt.Errorf("reading blob %s: %w", address, err)
		return
	}
	if !found {
		err = fmt.Errorf("%w: %s", wiki.ErrBlobNotFound, address)
	}
	return
}

// Addresses lists the stored addresses in ascending order.
func (s *SQLiteStore) Addresses() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []string{}
	err := sqlitex.Execute(s.conn, selectAddress, &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			out = append(out, stmt.ColumnText(0))
			return nil
		},
	})
	return out, err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.Close()
}

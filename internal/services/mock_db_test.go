package services

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

// sqlmockDB bundles the mock connection handed to repositories under test.
type sqlmockDB struct {
	conn *sql.DB
	mock sqlmock.Sqlmock
}

func newMockDB(t *testing.T) sqlmockDB {
	t.Helper()
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	return sqlmockDB{conn: conn, mock: mock}
}

func (d sqlmockDB) Close() {
	d.conn.Close()
}

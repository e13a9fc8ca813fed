package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"testing"
)

func TestNewStoreDefaultsDSN(t *testing.T) {
	openMu.Lock()
	orig := sqlOpen
	openMu.Unlock()
	defer func() {
		openMu.Lock()
		sqlOpen = orig
		openMu.Unlock()
	}()

	var gotDriver, gotDSN string
	openMu.Lock()
	sqlOpen = func(driver, dsn string) (*sql.DB, error) {
		gotDriver, gotDSN = driver, dsn
		return nil, fmt.Errorf("intercepted")
	}
	openMu.Unlock()

	if _, err := NewStore("", nil); err == nil {
		t.Fatalf("expected intercepted open error")
	}
	if gotDriver != defaultDriver {
		t.Fatalf("driver = %q, want %q", gotDriver, defaultDriver)
	}
	if gotDSN != defaultDSN {
		t.Fatalf("dsn = %q, want default", gotDSN)
	}

	openMu.Lock()
	sqlOpen = func(driver, dsn string) (*sql.DB, error) {
		gotDSN = dsn
		return nil, fmt.Errorf("intercepted")
	}
	openMu.Unlock()
	if _, err := NewStore("postgres://annot:secret@db/annotations", nil); err == nil {
		t.Fatalf("expected intercepted open error")
	}
	if gotDSN != "postgres://annot:secret@db/annotations" {
		t.Fatalf("custom dsn not forwarded: %q", gotDSN)
	}
}

// stubConn fails DDL so NewStore errors after the handle is open. Close is
// recorded to verify the handle does not leak on that path.
type stubConn struct{ closed *bool }

func (c stubConn) Prepare(string) (driver.Stmt, error) { return nil, fmt.Errorf("prepare rejected") }
func (c stubConn) Close() error                        { *c.closed = true; return nil }
func (c stubConn) Begin() (driver.Tx, error)           { return nil, fmt.Errorf("begin rejected") }
func (c stubConn) Ping(context.Context) error          { return nil }
func (c stubConn) ExecContext(context.Context, string, []driver.NamedValue) (driver.Result, error) {
	return nil, fmt.Errorf("ddl rejected")
}

type stubConnector struct{ closed *bool }

func (c stubConnector) Connect(context.Context) (driver.Conn, error) {
	return stubConn{closed: c.closed}, nil
}
func (c stubConnector) Driver() driver.Driver { return stubDriver{} }

type stubDriver struct{}

func (stubDriver) Open(string) (driver.Conn, error) { return nil, fmt.Errorf("unused") }

func TestNewStoreClosesHandleOnSetupFailure(t *testing.T) {
	openMu.Lock()
	orig := sqlOpen
	openMu.Unlock()
	defer func() {
		openMu.Lock()
		sqlOpen = orig
		openMu.Unlock()
	}()

	closed := false
	openMu.Lock()
	sqlOpen = func(string, string) (*sql.DB, error) {
		return sql.OpenDB(stubConnector{closed: &closed}), nil
	}
	openMu.Unlock()

	if _, err := NewStore("postgres://stub/annotations", nil); err == nil {
		t.Fatalf("expected table creation to fail")
	}
	if !closed {
		t.Fatalf("connection must be closed when setup fails")
	}
}

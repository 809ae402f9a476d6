// internal/cache/store_test.go
//
// Unit-tests for the snapshot store using sqlmock.
//
// Run: go test ./internal/cache -v

package cache

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
)

func newMockStore(t *testing.T) (*SnapshotStore, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	store := NewSnapshotStore(sqlx.NewDb(db, "mysql"))
	return store, mock, func() { db.Close() }
}

func TestSnapshotSave(t *testing.T) {
	store, mock, done := newMockStore(t)
	defer done()

	body := []byte(`{"k":{"value":"v","timestamp":0,"hits":0,"ttl":0}}`)
	mock.ExpectExec(regexp.QuoteMeta(
		`INSERT INTO cache_snapshot (name, body, updated_at)`,
	)).
		WithArgs("primary", body).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := store.Save(context.Background(), "primary", body); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestSnapshotLoad(t *testing.T) {
	store, mock, done := newMockStore(t)
	defer done()

	want := []byte(`{"k":{"value":"v","timestamp":0,"hits":2,"ttl":0}}`)
	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT body FROM cache_snapshot WHERE name = ?`,
	)).
		WithArgs("primary").
		WillReturnRows(sqlmock.NewRows([]string{"body"}).AddRow(want))

	got, err := store.Load(context.Background(), "primary")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if string(got) != string(want) {
		t.Fatalf("unexpected body: %s", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestSnapshotLoadMissing(t *testing.T) {
	store, mock, done := newMockStore(t)
	defer done()

	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT body FROM cache_snapshot WHERE name = ?`,
	)).
		WithArgs("absent").
		WillReturnRows(sqlmock.NewRows([]string{"body"}))

	_, err := store.Load(context.Background(), "absent")
	if !errors.Is(err, ErrNoSnapshot) {
		t.Fatalf("err = %v, want ErrNoSnapshot", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestSnapshotDelete(t *testing.T) {
	store, mock, done := newMockStore(t)
	defer done()

	mock.ExpectExec(regexp.QuoteMeta(
		`DELETE FROM cache_snapshot WHERE name = ?`,
	)).
		WithArgs("primary").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := store.Delete(context.Background(), "primary"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

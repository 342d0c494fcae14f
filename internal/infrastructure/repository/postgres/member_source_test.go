package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func newSourceWithMock(t *testing.T) (*MemberSource, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return &MemberSource{db: db}, mock, func() { _ = db.Close() }
}

func TestLoadNormalizesMemberNames(t *testing.T) {
	source, mock, done := newSourceWithMock(t)
	defer done()

	rows := sqlmock.NewRows([]string{"user_name"}).
		AddRow("Alice Smith").
		AddRow("Bob  Jones")
	mock.ExpectQuery("SELECT DISTINCT TRIM").WillReturnRows(rows)

	records, err := source.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Normalized != "alice smith" || records[0].Raw != "Alice Smith" {
		t.Fatalf("unexpected record: %+v", records[0])
	}
	if records[1].Normalized != "bob jones" {
		t.Fatalf("whitespace must collapse in normalized form: %+v", records[1])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestLoadQueryErrorSurfaced(t *testing.T) {
	source, mock, done := newSourceWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT DISTINCT TRIM").WillReturnError(errors.New("relation missing"))

	if _, err := source.Load(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

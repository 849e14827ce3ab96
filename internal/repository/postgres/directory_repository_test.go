package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/andresuchdata/eximdesk/internal/domain"
	"github.com/andresuchdata/eximdesk/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectoryRepository_List(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDirectoryRepository(db)
	now := time.Now()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM directory_entries WHERE kind = \$1 AND \(name ILIKE \$2`).
		WithArgs("importer", "%acme%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT .* FROM directory_entries WHERE kind = \$1 .* ORDER BY name LIMIT \$3 OFFSET \$4`).
		WithArgs("importer", "%acme%", 20, 20).
		WillReturnRows(sqlmock.NewRows([]string{"id", "kind", "name", "code", "address", "gstin", "email", "phone", "created_at", "updated_at"}).
			AddRow(1, "importer", "Acme Imports", "ACME", "", "", "", "", now, now))

	entries, total, err := repo.List(context.Background(), domain.DirectoryImporter, domain.ListFilter{Search: "acme", Page: 2, PageSize: 20})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.DirectoryImporter, entries[0].Kind)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDirectoryRepository_Delete(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDirectoryRepository(db)

	mock.ExpectExec(`DELETE FROM directory_entries WHERE kind = \$1 AND id = \$2`).
		WithArgs("cfs", int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), domain.DirectoryCFS, 3)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDirectoryRepository_EnsureName(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDirectoryRepository(db)

	mock.ExpectQuery(`INSERT INTO directory_entries \(kind, name\) .* ON CONFLICT \(kind, name\)`).
		WithArgs("shipping_line", "Maersk").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(8))

	id, err := repo.EnsureName(context.Background(), domain.DirectoryShippingLine, "Maersk")
	require.NoError(t, err)
	assert.Equal(t, int64(8), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

package sink

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresSinkWriteRow(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewConn()
	require.NoError(t, err)

	row := sampleRow()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO catalog_rows")).
		WithArgs(
			"run-1",
			row.Code,
			row.Collection,
			row.Category,
			row.Name,
			row.VariantName,
			row.Price,
			row.InStock,
			row.URL,
			row.ImageURL,
			row.Body,
			row.KeyInformation,
			row.HowToUse,
			pgxmock.AnyArg(),
			row.AllIngredients,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	s := NewPostgresSinkWithConn(mock, "run-1")
	require.NoError(t, s.WriteHeader())
	require.NoError(t, s.WriteRow(context.Background(), row))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSinkWriteRowError(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewConn()
	require.NoError(t, err)

	insertErr := errors.New("connection reset")
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO catalog_rows")).
		WillReturnError(insertErr)

	s := NewPostgresSinkWithConn(mock, "run-1")
	err = s.WriteRow(context.Background(), sampleRow())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert row")
}

func TestPostgresSinkClose(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewConn()
	require.NoError(t, err)
	mock.ExpectClose()

	s := NewPostgresSinkWithConn(mock, "run-1")
	require.NoError(t, s.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

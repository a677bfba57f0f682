package postgres_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/phrazzld/skeleton-api/internal/domain"
	"github.com/phrazzld/skeleton-api/internal/platform/postgres"
	"github.com/phrazzld/skeleton-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execFailingDB fails every ExecContext with err. Other methods are unused
// by WidgetStore.Create.
type execFailingDB struct {
	store.DBTX
	err error
}

func (d execFailingDB) ExecContext(context.Context, string, ...any) (sql.Result, error) {
	return nil, d.err
}

func TestPostgresWidgetStoreCreateErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		execErr     error
		wantIs      error
		wantMessage string
	}{
		{
			name:        "unique violation",
			execErr:     newPgError("23505"),
			wantIs:      store.ErrDuplicate,
			wantMessage: "duplicate widget id",
		},
		{
			name:        "check violation",
			execErr:     newPgError("23514"),
			wantIs:      store.ErrInvalidEntity,
			wantMessage: "insert failed",
		},
		{
			name:        "connection failure",
			execErr:     errors.New("conn closed"),
			wantMessage: "insert failed",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			s := postgres.NewPostgresWidgetStore(execFailingDB{err: tc.execErr}, nil)

			w, err := domain.NewWidget("gear", "", 1)
			require.NoError(t, err)

			err = s.Create(context.Background(), w)
			require.Error(t, err)

			var se *store.StoreError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, "create", se.Operation)
			assert.Equal(t, tc.wantMessage, se.Message)
			if tc.wantIs != nil {
				assert.ErrorIs(t, err, tc.wantIs)
			} else {
				assert.NotErrorIs(t, err, store.ErrDuplicate)
				assert.NotErrorIs(t, err, store.ErrInvalidEntity)
			}
		})
	}
}

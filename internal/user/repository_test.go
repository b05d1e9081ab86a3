package user

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()
	now := time.Now()

	insertQuery := `INSERT INTO users \(email, username, password, role\) VALUES \(\$1, \$2, \$3, \$4\) RETURNING id, created_at, updated_at`

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery(insertQuery).
			WithArgs("budi@example.com", "budi", "hashed", "customer").
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
				AddRow(7, now, now))

		u := &User{Email: "budi@example.com", Username: "budi", Password: "hashed", Role: RoleCustomer}
		err := repo.Create(ctx, u)

		require.NoError(t, err)
		assert.Equal(t, uint(7), u.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		mock.ExpectQuery(insertQuery).
			WithArgs("budi@example.com", "budi", "hashed", "customer").
			WillReturnError(&pq.Error{Code: pq.ErrorCode(PgUniqueViolation)})

		u := &User{Email: "budi@example.com", Username: "budi", Password: "hashed", Role: RoleCustomer}
		err := repo.Create(ctx, u)

		assert.ErrorIs(t, err, ErrEmailExists)
	})
}

func TestRepository_GetByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()
	now := time.Now()

	query := `SELECT id, email, username, password, role, refresh_token, created_at, updated_at FROM users WHERE email = \$1`

	t.Run("Success", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{
			"id", "email", "username", "password", "role", "refresh_token", "created_at", "updated_at",
		}).AddRow(7, "budi@example.com", "budi", "hashed", "customer", nil, now, now)

		mock.ExpectQuery(query).WithArgs("budi@example.com").WillReturnRows(rows)

		u, err := repo.GetByEmail(ctx, "budi@example.com")

		require.NoError(t, err)
		assert.Equal(t, uint(7), u.ID)
		assert.Equal(t, "budi", u.Username)
		assert.Nil(t, u.RefreshToken)
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs("ghost@example.com").WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByEmail(ctx, "ghost@example.com")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestRepository_GetByRefreshToken(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()
	now := time.Now()

	query := `SELECT id, email, username, password, role, refresh_token, created_at, updated_at FROM users WHERE refresh_token = \$1`

	t.Run("Success", func(t *testing.T) {
		token := "some-refresh-token"
		rows := sqlmock.NewRows([]string{
			"id", "email", "username", "password", "role", "refresh_token", "created_at", "updated_at",
		}).AddRow(7, "budi@example.com", "budi", "hashed", "customer", token, now, now)

		mock.ExpectQuery(query).WithArgs(token).WillReturnRows(rows)

		u, err := repo.GetByRefreshToken(ctx, token)

		require.NoError(t, err)
		require.NotNil(t, u.RefreshToken)
		assert.Equal(t, token, *u.RefreshToken)
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs("stale").WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByRefreshToken(ctx, "stale")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestRepository_UpdateRefreshToken(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()

	query := `UPDATE users SET refresh_token = \$1, updated_at = NOW\(\) WHERE id = \$2`

	t.Run("SetToken", func(t *testing.T) {
		token := "fresh-token"
		mock.ExpectExec(query).
			WithArgs(token, 7).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.UpdateRefreshToken(ctx, 7, &token))
	})

	t.Run("ClearTokenOnLogout", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(nil, 7).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.UpdateRefreshToken(ctx, 7, nil))
	})
}

func TestRepository_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()

	rows := sqlmock.NewRows([]string{"id", "email", "username", "role"}).
		AddRow(1, "admin@example.com", "admin", "admin").
		AddRow(7, "budi@example.com", "budi", "customer")

	mock.ExpectQuery(`SELECT id, email, username, role FROM users ORDER BY id`).
		WillReturnRows(rows)

	users, err := repo.List(ctx)

	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "admin", users[0].Role)
	assert.Empty(t, users[1].Password)
}

func TestRepository_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()

	query := `DELETE FROM users WHERE id = \$1`

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec(query).WithArgs(7).WillReturnResult(sqlmock.NewResult(0, 1))
		assert.NoError(t, repo.Delete(ctx, 7))
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectExec(query).WithArgs(99).WillReturnResult(sqlmock.NewResult(0, 0))
		assert.ErrorIs(t, repo.Delete(ctx, 99), ErrUserNotFound)
	})
}

func TestRepository_UpdateProfile(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()
	now := time.Now()

	query := `UPDATE users SET username = \$1, email = \$2, updated_at = NOW\(\) WHERE id = \$3 RETURNING`

	t.Run("Success", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{
			"id", "email", "username", "password", "role", "refresh_token", "created_at", "updated_at",
		}).AddRow(7, "new@example.com", "newname", "hashed", "customer", nil, now, now)

		mock.ExpectQuery(query).WithArgs("newname", "new@example.com", 7).WillReturnRows(rows)

		u, err := repo.UpdateProfile(ctx, 7, "newname", "new@example.com")

		require.NoError(t, err)
		assert.Equal(t, "newname", u.Username)
		assert.Equal(t, "new@example.com", u.Email)
	})

	t.Run("EmailTaken", func(t *testing.T) {
		mock.ExpectQuery(query).
			WithArgs("newname", "taken@example.com", 7).
			WillReturnError(&pq.Error{Code: pq.ErrorCode(PgUniqueViolation)})

		_, err := repo.UpdateProfile(ctx, 7, "newname", "taken@example.com")
		assert.ErrorIs(t, err, ErrEmailExists)
	})
}

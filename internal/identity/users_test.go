package identity

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisUserStore_Create(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()
	users := NewRedisUserStore(db)

	account := Account{
		UserID:       gofakeit.UUID(),
		Email:        gofakeit.Email(),
		PasswordHash: "hash",
		CreatedAt:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	accountJson, err := json.Marshal(account)
	require.NoError(t, err)

	mock.ExpectHSetNX(usersKey, account.Email, accountJson).SetVal(true)
	require.NoError(t, users.Create(context.Background(), account))

	mock.ExpectHSetNX(usersKey, account.Email, accountJson).SetVal(false)
	assert.ErrorIs(t, users.Create(context.Background(), account), ErrEmailInUse)

	mock.ExpectHSetNX(usersKey, account.Email, accountJson).SetErr(errors.New("down"))
	err = users.Create(context.Background(), account)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store account: down")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisUserStore_Get(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()
	users := NewRedisUserStore(db)

	account := Account{UserID: "u1", Email: "lifter@example.com", PasswordHash: "hash"}
	accountJson, err := json.Marshal(account)
	require.NoError(t, err)

	mock.ExpectHGet(usersKey, account.Email).SetVal(string(accountJson))
	got, err := users.Get(context.Background(), account.Email)
	require.NoError(t, err)
	assert.Equal(t, account.UserID, got.UserID)
	assert.Equal(t, account.PasswordHash, got.PasswordHash)

	mock.ExpectHGet(usersKey, "nobody@example.com").SetErr(redis.Nil)
	_, err = users.Get(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)

	mock.ExpectHGet(usersKey, "broken@example.com").SetVal("{not json")
	_, err = users.Get(context.Background(), "broken@example.com")
	assert.Error(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLocal_WithRedisUsers(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()
	mock.MatchExpectationsInOrder(true)

	provider := NewLocal(NewRedisUserStore(db), 4)
	mock.ExpectHGet(usersKey, "lifter@example.com").SetErr(errors.New("connection refused"))

	err := provider.SignIn(context.Background(), "lifter@example.com", "secret1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCredential)
	assert.Equal(t, "Something went wrong. Check your connection and try again.", Message(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

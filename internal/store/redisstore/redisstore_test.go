package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/2beens/gymtracker/internal/store"

	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// INFO: https://github.com/go-redis/redis/issues/1029
		goleak.IgnoreTopFunction(
			"github.com/go-redis/redis/v8/internal/pool.(*ConnPool).reaper",
		),
	)
}

const testCollection = "users/u1/goals"

func TestStore_Create(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	s := New(db)
	s.NewID = func() string { return "g1" }

	fields := map[string]any{"exerciseName": "Row", "targetWeight": 80}
	encoded, err := json.Marshal(fields)
	require.NoError(t, err)

	mock.ExpectHSet(docsKey(testCollection), "g1", string(encoded)).SetVal(1)
	mock.ExpectPublish(changesChannel(testCollection), "g1").SetVal(1)

	id, err := s.Create(context.Background(), testCollection, fields)
	require.NoError(t, err)
	assert.Equal(t, "g1", id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Create_SaveFails(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	s := New(db)
	s.NewID = func() string { return "g1" }

	mock.ExpectHSet(docsKey(testCollection), "g1", `{}`).SetErr(errors.New("boom"))

	_, err := s.Create(context.Background(), testCollection, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_UpsertMerge_Existing(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()
	s := New(db)

	mock.ExpectHGet(docsKey(testCollection), "g1").
		SetVal(`{"currentWeight":80,"exerciseName":"Row","startingWeight":80}`)
	mock.ExpectHSet(docsKey(testCollection), "g1",
		`{"currentWeight":85,"exerciseName":"Row","startingWeight":80}`).SetVal(0)
	mock.ExpectPublish(changesChannel(testCollection), "g1").SetVal(1)

	err := s.UpsertMerge(context.Background(), testCollection+"/g1", map[string]any{"currentWeight": 85})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_UpsertMerge_Missing(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()
	s := New(db)

	mock.ExpectHGet(docsKey(testCollection), "g2").RedisNil()
	mock.ExpectHSet(docsKey(testCollection), "g2", `{"name":"new"}`).SetVal(1)
	mock.ExpectPublish(changesChannel(testCollection), "g2").SetVal(0)

	err := s.UpsertMerge(context.Background(), testCollection+"/g2", map[string]any{"name": "new"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_UpsertMerge_BadPath(t *testing.T) {
	db, _ := redismock.NewClientMock()
	defer db.Close()
	s := New(db)

	assert.Error(t, s.UpsertMerge(context.Background(), "g1", map[string]any{}))
}

func TestStore_Delete(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()
	s := New(db)

	mock.ExpectHDel(docsKey(testCollection), "g1").SetVal(1)
	mock.ExpectPublish(changesChannel(testCollection), "g1").SetVal(1)
	require.NoError(t, s.Delete(context.Background(), testCollection+"/g1"))

	mock.ExpectHDel(docsKey(testCollection), "g1").SetVal(0)
	assert.ErrorIs(t, s.Delete(context.Background(), testCollection+"/g1"), store.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Load(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()
	s := New(db)

	mock.ExpectHGetAll(docsKey(testCollection)).SetVal(map[string]string{
		"b":   `{"exerciseName":"Squat","targetWeight":120.5}`,
		"a":   `{"exerciseName":"Row","targetWeight":80}`,
		"bad": `{not json`,
	})

	docs, err := s.load(context.Background(), testCollection)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "a", docs[0].ID)
	assert.Equal(t, json.Number("80"), docs[0].Fields["targetWeight"])
	assert.Equal(t, "b", docs[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Load_Fails(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()
	s := New(db)

	mock.ExpectHGetAll(docsKey(testCollection)).SetErr(redis.ErrClosed)
	_, err := s.load(context.Background(), testCollection)
	assert.ErrorIs(t, err, redis.ErrClosed)
}

func TestStore_CloseWithoutSubscriptions(t *testing.T) {
	db, _ := redismock.NewClientMock()
	defer db.Close()
	assert.NoError(t, New(db).Close())
}

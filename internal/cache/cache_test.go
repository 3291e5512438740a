package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func TestSave(t *testing.T) {
	client, mock := redismock.NewClientMock()
	c := NewRedisCache(client)

	mock.ExpectSet("schedule:trainer:1:a", []byte(`{"id":1,"name":"Yoga"}`), time.Minute).SetVal("OK")

	err := c.Save(context.Background(), "schedule:trainer:1:a", entry{ID: 1, Name: "Yoga"}, time.Minute)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGet(t *testing.T) {
	client, mock := redismock.NewClientMock()
	c := NewRedisCache(client)

	mock.ExpectGet("k").SetVal(`{"id":2,"name":"Spin"}`)

	var got entry
	require.NoError(t, c.Get(context.Background(), "k", &got))
	assert.Equal(t, entry{ID: 2, Name: "Spin"}, got)
}

func TestGet_Miss(t *testing.T) {
	client, mock := redismock.NewClientMock()
	c := NewRedisCache(client)

	mock.ExpectGet("missing").RedisNil()

	var got entry
	err := c.Get(context.Background(), "missing", &got)
	assert.ErrorIs(t, err, ErrMiss)
}

func TestGet_Error(t *testing.T) {
	client, mock := redismock.NewClientMock()
	c := NewRedisCache(client)

	mock.ExpectGet("k").SetErr(errors.New("connection refused"))

	var got entry
	err := c.Get(context.Background(), "k", &got)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMiss)
}

func TestDelete(t *testing.T) {
	client, mock := redismock.NewClientMock()
	c := NewRedisCache(client)

	mock.ExpectDel("k").SetVal(1)

	require.NoError(t, c.Delete(context.Background(), "k"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClear(t *testing.T) {
	client, mock := redismock.NewClientMock()
	c := NewRedisCache(client)

	mock.ExpectScan(0, "schedule:room:3:*", 0).SetVal([]string{"schedule:room:3:a", "schedule:room:3:b"}, 0)
	mock.ExpectDel("schedule:room:3:a", "schedule:room:3:b").SetVal(2)

	require.NoError(t, c.Clear(context.Background(), "schedule:room:3:"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClear_NothingToDelete(t *testing.T) {
	client, mock := redismock.NewClientMock()
	c := NewRedisCache(client)

	mock.ExpectScan(0, "schedule:room:9:*", 0).SetVal([]string{}, 0)

	require.NoError(t, c.Clear(context.Background(), "schedule:room:9:"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNop(t *testing.T) {
	var c Cache = Nop{}
	ctx := context.Background()

	require.NoError(t, c.Save(ctx, "k", 1, time.Minute))
	var v int
	assert.ErrorIs(t, c.Get(ctx, "k", &v), ErrMiss)
	assert.NoError(t, c.Delete(ctx, "k"))
	assert.NoError(t, c.Clear(ctx, "k"))
}

package db

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"classroom-server-go/models"
)

func newTestRedis(t *testing.T) (*RedisKV, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := InitializeRedisClient(context.Background(), mr.Addr(), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return NewRedisKV(client), mr
}

func TestRedisKV(t *testing.T) {
	kv, mr := newTestRedis(t)
	ctx := context.Background()

	_, ok, err := kv.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	created, err := kv.SetNX(ctx, "k", "one")
	require.NoError(t, err)
	assert.True(t, created)
	created, err = kv.SetNX(ctx, "k", "two")
	require.NoError(t, err)
	assert.False(t, created)

	require.NoError(t, kv.SetAll(ctx, map[string]string{"k": "three", "other": "x"}))
	v, ok, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "three", v)
	mr.CheckGet(t, "other", "x")

	assert.NoError(t, kv.Ping(ctx))
}

func TestInitializeRedisClientUnreachable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	_, err = InitializeRedisClient(context.Background(), addr, "", 0)
	assert.Error(t, err)
}

func TestClassroomStoreOnRedis(t *testing.T) {
	kv, mr := newTestRedis(t)
	ctx := context.Background()
	store := NewClassroomStore(kv, WithKeyPrefix("classroom_"))
	require.NoError(t, store.InitializeStorage(ctx))
	mr.CheckGet(t, "classroom_students", "[]")

	ana, err := store.AddStudent(ctx, models.StudentInput{Name: "Ana", Registration: "1", Email: "ana@school.test"})
	require.NoError(t, err)
	_, err = store.SaveGrade(ctx, models.GradeInput{StudentID: ana.ID, Exam: models.Float(7)})
	require.NoError(t, err)

	removed, err := store.RemoveStudent(ctx, ana.ID)
	require.NoError(t, err)
	assert.True(t, removed)
	mr.CheckGet(t, "classroom_students", "[]")
	mr.CheckGet(t, "classroom_grades", "[]")
}

func TestRedisKVSurfacesErrors(t *testing.T) {
	kv, mr := newTestRedis(t)
	ctx := context.Background()
	mr.SetError("boom")

	_, _, err := kv.Get(ctx, "k")
	assert.Error(t, err)
	assert.Error(t, kv.SetAll(ctx, map[string]string{"k": "v"}))

	store := NewClassroomStore(kv)
	_, err = store.AddStudent(ctx, models.StudentInput{Name: "a", Registration: "b"})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, redis.Nil)
}

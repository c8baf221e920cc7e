package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"classroom-server-go/config"
	"classroom-server-go/db"
	"classroom-server-go/logging"
	"classroom-server-go/models"
)

func TestCheckAndSeedData(t *testing.T) {
	ctx := context.Background()
	store := db.NewClassroomStore(db.NewMemoryKV())
	require.NoError(t, store.InitializeStorage(ctx))

	checkAndSeedData(ctx, store, logging.Nop())
	students, err := store.GetStudents(ctx)
	require.NoError(t, err)
	assert.Len(t, students, 3)

	// a second run leaves the class alone
	checkAndSeedData(ctx, store, logging.Nop())
	students, err = store.GetStudents(ctx)
	require.NoError(t, err)
	assert.Len(t, students, 3)
}

func TestCheckAndSeedDataKeepsExistingClass(t *testing.T) {
	ctx := context.Background()
	store := db.NewClassroomStore(db.NewMemoryKV())
	_, err := store.AddStudent(ctx, models.StudentInput{Name: "Only", Registration: "1"})
	require.NoError(t, err)

	checkAndSeedData(ctx, store, logging.Nop())
	students, err := store.GetStudents(ctx)
	require.NoError(t, err)
	assert.Len(t, students, 1)
}

func TestOpenKVMemory(t *testing.T) {
	kv, err := openKV(&config.Config{StorageDriver: config.DriverMemory}, logging.Nop())
	require.NoError(t, err)
	assert.IsType(t, &db.MemoryKV{}, kv)
}

package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.mongodb.org/mongo-driver/v2/bson"

	"nexus-backend/internal/apperr"
)

func TestNotifyPersistsWhileUserOffline(t *testing.T) {
	svc, _ := newTestNoti()
	ctx := context.Background()
	uid := bson.NewObjectID()

	// nobody is connected to the hub; the record must still be stored
	require.NoError(t, svc.Notify(ctx, uid, NotiApplicationSubmitted, NotiParams{}, "", nil))

	got, err := svc.ListMine(ctx, uid, listAll())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.False(t, got[0].Read)

	count, err := svc.UnreadCount(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestMarkReadIsIdempotent(t *testing.T) {
	svc, _ := newTestNoti()
	ctx := context.Background()
	uid := bson.NewObjectID()

	require.NoError(t, svc.Notify(ctx, uid, NotiApplicationSubmitted, NotiParams{}, "", nil))
	list, err := svc.ListMine(ctx, uid, listAll())
	require.NoError(t, err)
	require.Len(t, list, 1)

	first, err := svc.MarkRead(ctx, uid, list[0].ID)
	require.NoError(t, err)
	require.True(t, first.Read)
	require.NotNil(t, first.ReadAt)

	// marking again succeeds and leaves the original read_at stamp alone
	second, err := svc.MarkRead(ctx, uid, list[0].ID)
	require.NoError(t, err)
	assert.True(t, second.Read)
	require.NotNil(t, second.ReadAt)
	assert.True(t, second.ReadAt.Equal(*first.ReadAt))
}

func TestMarkReadScopedToOwner(t *testing.T) {
	svc, _ := newTestNoti()
	ctx := context.Background()
	owner := bson.NewObjectID()
	stranger := bson.NewObjectID()

	require.NoError(t, svc.Notify(ctx, owner, NotiApplicationSubmitted, NotiParams{}, "", nil))
	list, err := svc.ListMine(ctx, owner, listAll())
	require.NoError(t, err)

	_, err = svc.MarkRead(ctx, stranger, list[0].ID)
	require.Error(t, err)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
}

func TestMarkReadUnknownNotification(t *testing.T) {
	svc, _ := newTestNoti()

	_, err := svc.MarkRead(context.Background(), bson.NewObjectID(), bson.NewObjectID())
	require.Error(t, err)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
}

package repositories_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"astromatch/internal/database"
	"astromatch/internal/models"
	"astromatch/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGORMStore(t *testing.T) repositories.Store {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := database.Open(database.DriverSQLite, dsn, database.Options{Attempts: 1})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return repositories.NewGORMStore(db)
}

// forEachStore runs fn against every Store implementation.
func forEachStore(t *testing.T, fn func(t *testing.T, s repositories.Store)) {
	t.Run("gorm", func(t *testing.T) { fn(t, newGORMStore(t)) })
	t.Run("memory", func(t *testing.T) { fn(t, repositories.NewMemoryStore()) })
}

var base = time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)

func mustUser(t *testing.T, s repositories.Store, name string, at time.Time) *models.User {
	t.Helper()
	u := &models.User{Username: name, Password: "hash", Birthday: "1990-07-15", CreatedAt: at}
	require.NoError(t, s.Users().Create(context.Background(), u))
	require.NotEmpty(t, u.ID)
	return u
}

func mustMessage(t *testing.T, s repositories.Store, from, to, text string, at time.Time) *models.Message {
	t.Helper()
	m := &models.Message{SenderID: from, ReceiverID: to, Text: text, CreatedAt: at}
	require.NoError(t, s.Messages().Create(context.Background(), m))
	return m
}

func texts(msgs []models.Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.Text
	}
	return out
}

func TestUsers_CreateAndLookup(t *testing.T) {
	forEachStore(t, func(t *testing.T, s repositories.Store) {
		ctx := context.Background()
		ayse := mustUser(t, s, "ayse", base)

		got, err := s.Users().GetByID(ctx, ayse.ID)
		require.NoError(t, err)
		assert.Equal(t, "ayse", got.Username)

		got, err = s.Users().GetByUsername(ctx, "ayse")
		require.NoError(t, err)
		assert.Equal(t, ayse.ID, got.ID)

		_, err = s.Users().GetByUsername(ctx, "Ayse")
		assert.ErrorIs(t, err, repositories.ErrNotFound)

		_, err = s.Users().GetByID(ctx, "missing")
		assert.ErrorIs(t, err, repositories.ErrNotFound)

		err = s.Users().Create(ctx, &models.User{Username: "ayse", Password: "x", Birthday: "2000-01-01"})
		assert.ErrorIs(t, err, repositories.ErrDuplicate)
	})
}

func TestUsers_GetAllNewestFirst(t *testing.T) {
	forEachStore(t, func(t *testing.T, s repositories.Store) {
		mustUser(t, s, "old", base)
		mustUser(t, s, "new", base.Add(time.Hour))
		mustUser(t, s, "mid", base.Add(time.Minute))

		users, err := s.Users().GetAll(context.Background())
		require.NoError(t, err)
		require.Len(t, users, 3)
		assert.Equal(t, "new", users[0].Username)
		assert.Equal(t, "mid", users[1].Username)
		assert.Equal(t, "old", users[2].Username)
	})
}

func TestUsers_GetByIDs(t *testing.T) {
	forEachStore(t, func(t *testing.T, s repositories.Store) {
		a := mustUser(t, s, "a", base)
		b := mustUser(t, s, "b", base)
		mustUser(t, s, "c", base)

		users, err := s.Users().GetByIDs(context.Background(), []string{a.ID, b.ID, "ghost"})
		require.NoError(t, err)
		assert.Len(t, users, 2)

		users, err = s.Users().GetByIDs(context.Background(), nil)
		require.NoError(t, err)
		assert.Empty(t, users)
	})
}

func TestUsers_UpdatePhotoAndDelete(t *testing.T) {
	forEachStore(t, func(t *testing.T, s repositories.Store) {
		ctx := context.Background()
		u := mustUser(t, s, "ayse", base)

		require.NoError(t, s.Users().UpdatePhoto(ctx, u.ID, "photos/ayse.png"))
		got, err := s.Users().GetByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, "photos/ayse.png", got.ProfilePhoto)

		assert.ErrorIs(t, s.Users().UpdatePhoto(ctx, "ghost", "x"), repositories.ErrNotFound)

		require.NoError(t, s.Users().Delete(ctx, u.ID))
		assert.ErrorIs(t, s.Users().Delete(ctx, u.ID), repositories.ErrNotFound)
	})
}

func TestMessages_ThreadOrderAndBothDirections(t *testing.T) {
	forEachStore(t, func(t *testing.T, s repositories.Store) {
		ctx := context.Background()
		a := mustUser(t, s, "a", base)
		b := mustUser(t, s, "b", base)
		c := mustUser(t, s, "c", base)

		mustMessage(t, s, b.ID, a.ID, "second", base.Add(2*time.Minute))
		mustMessage(t, s, a.ID, b.ID, "first", base.Add(time.Minute))
		// Equal timestamps keep insertion order.
		mustMessage(t, s, a.ID, b.ID, "third", base.Add(3*time.Minute))
		mustMessage(t, s, b.ID, a.ID, "fourth", base.Add(3*time.Minute))
		mustMessage(t, s, a.ID, c.ID, "elsewhere", base.Add(time.Minute))

		thread, err := s.Messages().GetThread(ctx, models.NewPairKey(a.ID, b.ID))
		require.NoError(t, err)
		assert.Equal(t, []string{"first", "second", "third", "fourth"}, texts(thread))

		// The key is symmetric.
		reverse, err := s.Messages().GetThread(ctx, models.NewPairKey(b.ID, a.ID))
		require.NoError(t, err)
		assert.Equal(t, texts(thread), texts(reverse))

		empty, err := s.Messages().GetThread(ctx, models.NewPairKey(b.ID, c.ID))
		require.NoError(t, err)
		assert.Empty(t, empty)
	})
}

func TestMessages_ReceiverAndRecent(t *testing.T) {
	forEachStore(t, func(t *testing.T, s repositories.Store) {
		ctx := context.Background()
		a := mustUser(t, s, "a", base)
		b := mustUser(t, s, "b", base)

		mustMessage(t, s, b.ID, a.ID, "one", base.Add(time.Minute))
		mustMessage(t, s, b.ID, a.ID, "two", base.Add(2*time.Minute))
		mustMessage(t, s, a.ID, b.ID, "reply", base.Add(3*time.Minute))

		inbox, err := s.Messages().GetByReceiver(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"two", "one"}, texts(inbox))

		recent, err := s.Messages().GetRecent(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, []string{"reply", "two"}, texts(recent))
	})
}

func TestMessages_DeleteAndDeleteByParticipant(t *testing.T) {
	forEachStore(t, func(t *testing.T, s repositories.Store) {
		ctx := context.Background()
		a := mustUser(t, s, "a", base)
		b := mustUser(t, s, "b", base)
		c := mustUser(t, s, "c", base)

		m := mustMessage(t, s, a.ID, b.ID, "bye", base)
		require.NoError(t, s.Messages().Delete(ctx, m.ID))
		assert.ErrorIs(t, s.Messages().Delete(ctx, m.ID), repositories.ErrNotFound)

		for i := 0; i < 3; i++ {
			mustMessage(t, s, a.ID, b.ID, "out", base)
		}
		mustMessage(t, s, b.ID, a.ID, "in", base)
		mustMessage(t, s, c.ID, a.ID, "in", base)
		mustMessage(t, s, b.ID, c.ID, "untouched", base)

		n, err := s.Messages().DeleteByParticipant(ctx, a.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 5, n)

		left, err := s.Messages().GetRecent(ctx, 50)
		require.NoError(t, err)
		assert.Equal(t, []string{"untouched"}, texts(left))
	})
}

func TestWithinTx_CommitAndRollback(t *testing.T) {
	forEachStore(t, func(t *testing.T, s repositories.Store) {
		ctx := context.Background()
		a := mustUser(t, s, "a", base)
		b := mustUser(t, s, "b", base)
		mustMessage(t, s, a.ID, b.ID, "keep", base)

		boom := errors.New("boom")
		err := s.WithinTx(ctx, func(tx repositories.Store) error {
			n, err := tx.Messages().DeleteByParticipant(ctx, a.ID)
			require.NoError(t, err)
			assert.EqualValues(t, 1, n)
			return boom
		})
		assert.ErrorIs(t, err, boom)

		left, err := s.Messages().GetRecent(ctx, 10)
		require.NoError(t, err)
		assert.Len(t, left, 1, "rolled back delete must leave the message")

		err = s.WithinTx(ctx, func(tx repositories.Store) error {
			if _, err := tx.Messages().DeleteByParticipant(ctx, a.ID); err != nil {
				return err
			}
			return tx.Users().Delete(ctx, a.ID)
		})
		require.NoError(t, err)

		left, err = s.Messages().GetRecent(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, left)
		_, err = s.Users().GetByID(ctx, a.ID)
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})
}

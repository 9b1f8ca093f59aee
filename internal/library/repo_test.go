package library

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/M0chiIron/ProjetL3/pkg/database"
	"github.com/M0chiIron/ProjetL3/pkg/models"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	// the pool must stay on one connection or each conn gets its own
	// empty in-memory database
	db.SetMaxOpenConns(1)
	_, err = db.Exec(`PRAGMA foreign_keys = ON`)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func createUser(t *testing.T, db *sql.DB, id string) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO users (id, email, password_hash) VALUES (?, ?, ?)`,
		id, id+"@example.com", "not-a-real-hash")
	require.NoError(t, err)
}

func countBooks(t *testing.T, db *sql.DB, userID, key string) int {
	t.Helper()
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM books WHERE user_id = ? AND key = ?`, userID, key).Scan(&n)
	require.NoError(t, err)
	return n
}

func TestUpsertIsIdempotentByKey(t *testing.T) {
	db := newTestDB(t)
	createUser(t, db, "u1")
	repo := NewRepo(db)
	ctx := context.Background()

	first, err := repo.Upsert(ctx, models.Book{
		UserID:     "u1",
		Key:        "OL45804W",
		Title:      "Dune",
		AuthorName: models.StringList{"Frank Herbert"},
		Status:     models.StatusToRead,
	})
	require.NoError(t, err)
	require.Equal(t, models.StatusToRead, first.Status)
	require.Equal(t, 0, first.Rating)

	second, err := repo.Upsert(ctx, models.Book{
		UserID: "u1",
		Key:    "OL45804W",
		Title:  "Dune",
		Status: models.StatusRead,
		Rating: 5,
	})
	require.NoError(t, err)

	require.Equal(t, 1, countBooks(t, db, "u1", "OL45804W"))
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, models.StatusRead, second.Status)
	require.Equal(t, 5, second.Rating)
}

func TestUpsertKeepsUsersApart(t *testing.T) {
	db := newTestDB(t)
	createUser(t, db, "u1")
	createUser(t, db, "u2")
	repo := NewRepo(db)
	ctx := context.Background()

	_, err := repo.Upsert(ctx, models.Book{UserID: "u1", Key: "OL1W", Title: "A", Status: models.StatusRead, Rating: 3})
	require.NoError(t, err)
	_, err = repo.Upsert(ctx, models.Book{UserID: "u2", Key: "OL1W", Title: "A", Status: models.StatusReading})
	require.NoError(t, err)

	require.Equal(t, 1, countBooks(t, db, "u1", "OL1W"))
	require.Equal(t, 1, countBooks(t, db, "u2", "OL1W"))

	mine, err := repo.GetByKey(ctx, "u1", "OL1W")
	require.NoError(t, err)
	require.Equal(t, models.StatusRead, mine.Status)
}

func TestDeleteIsOwnerScoped(t *testing.T) {
	db := newTestDB(t)
	createUser(t, db, "owner")
	createUser(t, db, "intruder")
	repo := NewRepo(db)
	ctx := context.Background()

	saved, err := repo.Upsert(ctx, models.Book{UserID: "owner", Key: "OL2W", Title: "B", Status: models.StatusToRead})
	require.NoError(t, err)

	// someone else's id deletes nothing and is not an error
	deleted, err := repo.Delete(ctx, "intruder", saved.ID)
	require.NoError(t, err)
	require.False(t, deleted)
	require.Equal(t, 1, countBooks(t, db, "owner", "OL2W"))

	deleted, err = repo.Delete(ctx, "owner", saved.ID)
	require.NoError(t, err)
	require.True(t, deleted)

	// repeat delete is a no-op
	deleted, err = repo.Delete(ctx, "owner", saved.ID)
	require.NoError(t, err)
	require.False(t, deleted)
}

func TestDeleteUnknownIDIsNoop(t *testing.T) {
	db := newTestDB(t)
	createUser(t, db, "u1")
	repo := NewRepo(db)

	deleted, err := repo.Delete(context.Background(), "u1", 424242)
	require.NoError(t, err)
	require.False(t, deleted)
}

func TestGetByKeyMatchesExactly(t *testing.T) {
	db := newTestDB(t)
	createUser(t, db, "u1")
	repo := NewRepo(db)
	ctx := context.Background()

	_, err := repo.Upsert(ctx, models.Book{UserID: "u1", Key: "OL45804W", Title: "Dune", Status: models.StatusReading})
	require.NoError(t, err)

	found, err := repo.GetByKey(ctx, "u1", "OL45804W")
	require.NoError(t, err)
	require.NotNil(t, found)

	// fragments of the key are not a match
	missing, err := repo.GetByKey(ctx, "u1", "OL45804")
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestListByUserReturnsOnlyOwnBooks(t *testing.T) {
	db := newTestDB(t)
	createUser(t, db, "u1")
	createUser(t, db, "u2")
	repo := NewRepo(db)
	ctx := context.Background()

	_, err := repo.Upsert(ctx, models.Book{UserID: "u1", Key: "OL1W", Title: "A", Status: models.StatusToRead})
	require.NoError(t, err)
	_, err = repo.Upsert(ctx, models.Book{UserID: "u1", Key: "OL2W", Title: "B", Status: models.StatusRead, Rating: 4})
	require.NoError(t, err)
	_, err = repo.Upsert(ctx, models.Book{UserID: "u2", Key: "OL3W", Title: "C", Status: models.StatusReading})
	require.NoError(t, err)

	books, err := repo.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, books, 2)
	for _, b := range books {
		require.Equal(t, "u1", b.UserID)
	}
}

func TestPopularOrdersByOccurrenceCount(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepo(db)
	ctx := context.Background()

	users := []string{"u1", "u2", "u3"}
	for _, u := range users {
		createUser(t, db, u)
	}

	// OL1W in three libraries, OL2W in one
	for _, u := range users {
		_, err := repo.Upsert(ctx, models.Book{UserID: u, Key: "OL1W", Title: "Popular", Status: models.StatusRead})
		require.NoError(t, err)
	}
	_, err := repo.Upsert(ctx, models.Book{UserID: "u1", Key: "OL2W", Title: "Niche", Status: models.StatusToRead})
	require.NoError(t, err)

	top, err := repo.Popular(ctx, 5)
	require.NoError(t, err)
	require.Len(t, top, 2)
	require.Equal(t, "OL1W", top[0].Key)
	require.Equal(t, 3, top[0].Count)
	require.Equal(t, "OL2W", top[1].Key)
	require.Equal(t, 1, top[1].Count)
}

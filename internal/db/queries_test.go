package db

import (
	"testing"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresQueries(t *testing.T) {
	sb := sq.StatementBuilder.PlaceholderFormat(Postgres.Placeholder)
	f := false
	in := input("Hi", "World", &f)
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("Should number insert placeholders and return the id", func(t *testing.T) {
		query, args, err := insertPostQuery(sb, in, at).ToSql()
		require.NoError(t, err)
		assert.Equal(t, "INSERT INTO posts (title,content,published,created_at) VALUES ($1,$2,$3,$4) RETURNING id", query)
		assert.Equal(t, []interface{}{"Hi", "World", false, at}, args)
	})

	t.Run("Should match the row inside the update", func(t *testing.T) {
		query, args, err := updatePostQuery(sb, 7, in).ToSql()
		require.NoError(t, err)
		assert.Equal(t, "UPDATE posts SET title = $1, content = $2, published = $3 WHERE id = $4", query)
		assert.Equal(t, []interface{}{"Hi", "World", false, int64(7)}, args)
	})

	t.Run("Should default published to true when omitted", func(t *testing.T) {
		_, args, err := updatePostQuery(sb, 7, input("Hi", "World", nil)).ToSql()
		require.NoError(t, err)
		assert.Equal(t, true, args[2])
	})

	t.Run("Should delete by id", func(t *testing.T) {
		query, args, err := deletePostQuery(sb, 7).ToSql()
		require.NoError(t, err)
		assert.Equal(t, "DELETE FROM posts WHERE id = $1", query)
		assert.Equal(t, []interface{}{int64(7)}, args)
	})

	t.Run("Should select one post by id", func(t *testing.T) {
		query, args, err := selectPostQuery(sb, 7).ToSql()
		require.NoError(t, err)
		assert.Equal(t, "SELECT id, title, content, published, created_at FROM posts WHERE id = $1", query)
		assert.Equal(t, []interface{}{int64(7)}, args)
	})

	t.Run("Should list in id order without arguments", func(t *testing.T) {
		query, args, err := listPostsQuery(sb).ToSql()
		require.NoError(t, err)
		assert.Equal(t, "SELECT id, title, content, published, created_at FROM posts ORDER BY id ASC", query)
		assert.Empty(t, args)
	})
}

func TestDialects(t *testing.T) {
	t.Run("Should never reuse ids on either backend", func(t *testing.T) {
		assert.Contains(t, Postgres.createTable, "GENERATED BY DEFAULT AS IDENTITY")
		assert.Contains(t, Postgres.createTable, "TIMESTAMPTZ")
		assert.Contains(t, SQLite.createTable, "AUTOINCREMENT")
	})

	t.Run("Should use question marks on sqlite", func(t *testing.T) {
		query, _, err := deletePostQuery(sq.StatementBuilder.PlaceholderFormat(SQLite.Placeholder), 7).ToSql()
		require.NoError(t, err)
		assert.Equal(t, "DELETE FROM posts WHERE id = ?", query)
	})
}

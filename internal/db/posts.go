package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/vaughan-dsouza/thepath/internal/models"
)

var postColumns = []string{"id", "title", "content", "published", "created_at"}

// Session is one unit of work bound to a single pooled connection.
type Session struct {
	conn *sqlx.Conn
	sb   sq.StatementBuilderType
}

// Close returns the connection to the pool. It is safe to call more than once.
func (s *Session) Close() error {
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}

// inTx runs fn in a transaction on the session connection and commits when fn
// succeeds.
func (s *Session) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("db: begin: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("db: commit: %w", err)
	}
	return nil
}

// CreatePost inserts a post, stamping created_at, and returns the stored row.
func (s *Session) CreatePost(ctx context.Context, in models.PostCreate) (models.Post, error) {
	var post models.Post

	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		query, args, err := insertPostQuery(s.sb, in, now()).ToSql()
		if err != nil {
			return fmt.Errorf("db: build insert: %w", err)
		}

		var id int64
		if err := tx.QueryRowxContext(ctx, query, args...).Scan(&id); err != nil {
			return fmt.Errorf("db: insert post: %w", err)
		}

		p, err := s.getPost(ctx, tx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return fmt.Errorf("db: post %d missing after insert", id)
		}
		post = *p
		return nil
	})

	return post, err
}

// ListPosts returns every post in id order. An empty table gives an empty
// slice.
func (s *Session) ListPosts(ctx context.Context) ([]models.Post, error) {
	query, args, err := listPostsQuery(s.sb).ToSql()
	if err != nil {
		return nil, fmt.Errorf("db: build select: %w", err)
	}

	posts := []models.Post{}
	if err := s.conn.SelectContext(ctx, &posts, query, args...); err != nil {
		return nil, fmt.Errorf("db: list posts: %w", err)
	}
	return posts, nil
}

// GetPost returns nil without an error when no post has the id.
func (s *Session) GetPost(ctx context.Context, id int64) (*models.Post, error) {
	return s.getPost(ctx, s.conn, id)
}

// UpdatePost overwrites title, content and published of the post with the
// given id. The row is matched by the UPDATE itself, so a missing post
// returns nil and nothing is written.
func (s *Session) UpdatePost(ctx context.Context, id int64, in models.PostCreate) (*models.Post, error) {
	var post *models.Post

	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		query, args, err := updatePostQuery(s.sb, id, in).ToSql()
		if err != nil {
			return fmt.Errorf("db: build update: %w", err)
		}

		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("db: update post %d: %w", id, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("db: update post %d: %w", id, err)
		}
		if n == 0 {
			return nil
		}

		post, err = s.getPost(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

// DeletePost removes the post and reports whether it existed.
func (s *Session) DeletePost(ctx context.Context, id int64) (bool, error) {
	var deleted bool

	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		query, args, err := deletePostQuery(s.sb, id).ToSql()
		if err != nil {
			return fmt.Errorf("db: build delete: %w", err)
		}

		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("db: delete post %d: %w", id, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("db: delete post %d: %w", id, err)
		}
		deleted = n > 0
		return nil
	})

	return deleted, err
}

func (s *Session) getPost(ctx context.Context, q sqlx.QueryerContext, id int64) (*models.Post, error) {
	query, args, err := selectPostQuery(s.sb, id).ToSql()
	if err != nil {
		return nil, fmt.Errorf("db: build select: %w", err)
	}

	var post models.Post
	err = sqlx.GetContext(ctx, q, &post, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("db: get post %d: %w", id, err)
	}
	return &post, nil
}

func insertPostQuery(sb sq.StatementBuilderType, in models.PostCreate, at time.Time) sq.InsertBuilder {
	return sb.Insert("posts").
		Columns("title", "content", "published", "created_at").
		Values(deref(in.Title), deref(in.Content), in.IsPublished(), at).
		Suffix("RETURNING id")
}

func listPostsQuery(sb sq.StatementBuilderType) sq.SelectBuilder {
	return sb.Select(postColumns...).
		From("posts").
		OrderBy("id ASC")
}

func selectPostQuery(sb sq.StatementBuilderType, id int64) sq.SelectBuilder {
	return sb.Select(postColumns...).
		From("posts").
		Where(sq.Eq{"id": id})
}

// updatePostQuery matches the row in the same statement that writes it.
func updatePostQuery(sb sq.StatementBuilderType, id int64, in models.PostCreate) sq.UpdateBuilder {
	return sb.Update("posts").
		Set("title", deref(in.Title)).
		Set("content", deref(in.Content)).
		Set("published", in.IsPublished()).
		Where(sq.Eq{"id": id})
}

func deletePostQuery(sb sq.StatementBuilderType, id int64) sq.DeleteBuilder {
	return sb.Delete("posts").
		Where(sq.Eq{"id": id})
}

// now is the insertion timestamp, truncated to what PostgreSQL keeps.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

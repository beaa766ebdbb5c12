package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"

	"postboard/internal/metrics"
	"postboard/internal/models"
)

var (
	ErrPostNotFound  = errors.New("post not found")
	ErrUserNotFound  = errors.New("user not found")
	ErrUsernameTaken = errors.New("username already taken")
)

// Store is the SQLite-backed post and user store.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db, now: func() time.Time { return time.Now().UTC() }}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

const postColumns = `
	SELECT p.id, p.content, p.created_at, p.author_id, u.username,
	       (SELECT COUNT(*) FROM post_likes l WHERE l.post_id = p.id)
	FROM posts p
	JOIN users u ON u.id = p.author_id`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a LIKE pattern matching q anywhere in the text.
func containsPattern(q string) string {
	return "%" + likeEscaper.Replace(q) + "%"
}

// ListPosts returns posts newest first. A non-empty query keeps only posts
// whose content contains it verbatim, ignoring case. Whitespace in the query
// is significant.
func (s *Store) ListPosts(ctx context.Context, query string) ([]models.Post, error) {
	defer metrics.ObserveQuery("list_posts")()

	q := postColumns
	var args []any
	if query != "" {
		q += ` WHERE p.content LIKE ? ESCAPE '\'`
		args = append(args, containsPattern(query))
	}
	q += ` ORDER BY p.created_at DESC, p.id DESC`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	posts := []models.Post{}
	for rows.Next() {
		var p models.Post
		if err := rows.Scan(&p.ID, &p.Content, &p.CreatedAt, &p.AuthorID, &p.Author, &p.Likes); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func (s *Store) GetPost(ctx context.Context, id int64) (*models.Post, error) {
	defer metrics.ObserveQuery("get_post")()

	var p models.Post
	err := s.db.QueryRowContext(ctx, postColumns+` WHERE p.id = ?`, id).
		Scan(&p.ID, &p.Content, &p.CreatedAt, &p.AuthorID, &p.Author, &p.Likes)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get post %d: %w", id, err)
	}
	return &p, nil
}

// CreatePost stores a post by authorID stamped with the current time.
func (s *Store) CreatePost(ctx context.Context, authorID int64, content string) (*models.Post, error) {
	defer metrics.ObserveQuery("create_post")()

	createdAt := s.now()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO posts (content, created_at, author_id) VALUES (?, ?, ?)`,
		content, createdAt, authorID)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return s.GetPost(ctx, id)
}

// UpdatePostContent changes content only; author and created_at are never written.
func (s *Store) UpdatePostContent(ctx context.Context, id int64, content string) error {
	defer metrics.ObserveQuery("update_post")()

	res, err := s.db.ExecContext(ctx, `UPDATE posts SET content = ? WHERE id = ?`, content, id)
	if err != nil {
		return fmt.Errorf("update post %d: %w", id, err)
	}
	return expectRow(res, ErrPostNotFound)
}

// DeletePost removes the post; its likes go with it through the foreign key.
func (s *Store) DeletePost(ctx context.Context, id int64) error {
	defer metrics.ObserveQuery("delete_post")()

	res, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete post %d: %w", id, err)
	}
	return expectRow(res, ErrPostNotFound)
}

func expectRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintUnique
}

package db

import (
	"context"
	"fmt"

	"postboard/internal/metrics"
	"postboard/internal/models"
)

func (s *Store) HasLiked(ctx context.Context, postID, userID int64) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM post_likes WHERE post_id = ? AND user_id = ?`, postID, userID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check like: %w", err)
	}
	return n > 0, nil
}

func (s *Store) LikeCount(ctx context.Context, postID int64) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM post_likes WHERE post_id = ?`, postID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count likes: %w", err)
	}
	return n, nil
}

// ToggleLike flips userID's membership in the post's likers and reports the
// new state with the liker count read afterwards.
//
// The membership check and the write are separate statements, so two
// concurrent toggles may report a stale count. The (post_id, user_id) key
// keeps the set free of duplicates either way.
func (s *Store) ToggleLike(ctx context.Context, postID, userID int64) (models.LikeResult, error) {
	defer metrics.ObserveQuery("toggle_like")()

	var exists int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts WHERE id = ?`, postID).Scan(&exists); err != nil {
		return models.LikeResult{}, fmt.Errorf("toggle like: %w", err)
	}
	if exists == 0 {
		return models.LikeResult{}, ErrPostNotFound
	}

	liked, err := s.HasLiked(ctx, postID, userID)
	if err != nil {
		return models.LikeResult{}, err
	}

	if liked {
		_, err = s.db.ExecContext(ctx, `DELETE FROM post_likes WHERE post_id = ? AND user_id = ?`, postID, userID)
	} else {
		_, err = s.db.ExecContext(ctx, `INSERT OR IGNORE INTO post_likes (post_id, user_id) VALUES (?, ?)`, postID, userID)
	}
	if err != nil {
		return models.LikeResult{}, fmt.Errorf("toggle like: %w", err)
	}

	count, err := s.LikeCount(ctx, postID)
	if err != nil {
		return models.LikeResult{}, err
	}
	return models.LikeResult{Liked: !liked, Count: count}, nil
}

// Likers maps every liked post id to the ids of the users who liked it.
func (s *Store) Likers(ctx context.Context) (map[int64][]int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT post_id, user_id FROM post_likes ORDER BY post_id, user_id`)
	if err != nil {
		return nil, fmt.Errorf("list likers: %w", err)
	}
	defer rows.Close()

	out := make(map[int64][]int64)
	for rows.Next() {
		var postID, userID int64
		if err := rows.Scan(&postID, &userID); err != nil {
			return nil, fmt.Errorf("scan liker: %w", err)
		}
		out[postID] = append(out[postID], userID)
	}
	return out, rows.Err()
}

package models

import "time"

type Post struct {
	ID        int64
	Content   string
	CreatedAt time.Time
	AuthorID  int64
	Author    string
	Likes     int
	// LikedByMe is only filled when a viewer is known.
	LikedByMe bool
}

// PostJSON is the list API representation of a post.
type PostJSON struct {
	ID             int64     `json:"id"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
	Author         int64     `json:"author"`
	AuthorUsername string    `json:"author_username"`
	Likes          []int64   `json:"likes"`
}

// LikeResult is returned by the like toggle.
type LikeResult struct {
	Liked bool `json:"liked"`
	Count int  `json:"count"`
}

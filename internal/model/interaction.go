package model

import (
	"time"
)

type InteractionType string

const (
	InteractionLike    InteractionType = "like"
	InteractionComment InteractionType = "comment"
)

type Interaction struct {
	ID        string          `db:"id" json:"id"`
	UserID    string          `db:"user_id" json:"user_id"`
	PostID    string          `db:"post_id" json:"post_id"`
	Type      InteractionType `db:"type" json:"type"`
	Content   *string         `db:"content" json:"content,omitempty"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

type Comment struct {
	ID         string    `db:"id" json:"id"`
	UserID     string    `db:"user_id" json:"user_id"`
	AuthorName string    `db:"author_name" json:"author_name"`
	Content    string    `db:"content" json:"content"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

type InteractionSummary struct {
	Likes      int  `db:"likes" json:"likes"`
	Comments   int  `db:"comments" json:"comments"`
	Liked      bool `db:"liked" json:"liked"`
	Bookmarked bool `db:"bookmarked" json:"bookmarked"`
}

type Bookmark struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	PostID    string    `db:"post_id" json:"post_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

package model

import (
	"time"
)

type PostType string

const (
	PostTypePost      PostType = "post"
	PostTypeELearning PostType = "e-learning"
	PostTypeWorks     PostType = "works"
)

func (t PostType) Valid() bool {
	switch t {
	case PostTypePost, PostTypeELearning, PostTypeWorks:
		return true
	}
	return false
}

// RequiredMedia returns the file kind a post of this type must carry, or "" when media is optional.
func (t PostType) RequiredMedia() FileKind {
	switch t {
	case PostTypeELearning:
		return FileKindVideo
	case PostTypeWorks:
		return FileKindPDF
	}
	return ""
}

type PostStatus string

const (
	PostStatusPublished      PostStatus = "published"
	PostStatusNotValidatable PostStatus = "not_validatable"
	PostStatusValidated      PostStatus = "validated"
	PostStatusRejected       PostStatus = "rejected"
)

// InitialStatus derives the status of a post from its category policy.
func InitialStatus(campusRelated bool) PostStatus {
	if campusRelated {
		return PostStatusPublished
	}
	return PostStatusNotValidatable
}

// AfterEdit returns the status a post holds after an author edit.
// A validated post stays validated; anything else follows the category policy again.
func (s PostStatus) AfterEdit(campusRelated bool) PostStatus {
	if s == PostStatusValidated {
		return s
	}
	return InitialStatus(campusRelated)
}

// Reviewable reports whether a lecturer may still validate or reject the post.
func (s PostStatus) Reviewable() bool {
	return s == PostStatusPublished
}

type Decision string

const (
	DecisionValidated Decision = "validated"
	DecisionRejected  Decision = "rejected"
)

func (d Decision) Valid() bool {
	return d == DecisionValidated || d == DecisionRejected
}

func (d Decision) Status() PostStatus {
	return PostStatus(d)
}

type Post struct {
	ID          string     `db:"id" json:"id"`
	UserID      string     `db:"user_id" json:"user_id"`
	Title       string     `db:"title" json:"title"`
	Description string     `db:"description" json:"description"`
	Type        PostType   `db:"type" json:"type"`
	Status      PostStatus `db:"status" json:"status"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// PostSummary is a post as shown in feeds and queues.
type PostSummary struct {
	ID           string     `db:"id" json:"id"`
	UserID       string     `db:"user_id" json:"user_id"`
	AuthorName   string     `db:"author_name" json:"author_name"`
	Title        string     `db:"title" json:"title"`
	Description  string     `db:"description" json:"description"`
	Type         PostType   `db:"type" json:"type"`
	Status       PostStatus `db:"status" json:"status"`
	CategoryID   *string    `db:"category_id" json:"category_id"`
	CategoryName *string    `db:"category_name" json:"category_name"`
	LikeCount    int        `db:"like_count" json:"like_count"`
	CommentCount int        `db:"comment_count" json:"comment_count"`
	Liked        bool       `db:"liked" json:"liked"`
	Bookmarked   bool       `db:"bookmarked" json:"bookmarked"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`

	// Preferred file for previews (video > pdf > other)
	File *PostFile `db:"-" json:"file"`
}

type PostDetail struct {
	PostSummary
	CategoryCampusRelated *bool `db:"category_campus_related" json:"category_campus_related"`

	DescriptionHTML string      `db:"-" json:"description_html"`
	Files           []*PostFile `db:"-" json:"files"`
}

type PostValidation struct {
	ID            string     `db:"id" json:"id"`
	PostID        string     `db:"post_id" json:"post_id"`
	ValidatorID   string     `db:"validator_id" json:"validator_id"`
	ValidatorName string     `db:"validator_name" json:"validator_name"`
	Status        PostStatus `db:"status" json:"status"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
}

// PreferredFile picks the file used for previews.
func PreferredFile(files []*PostFile) *PostFile {
	var best *PostFile
	for _, f := range files {
		if best == nil || f.Kind.rank() < best.Kind.rank() {
			best = f
		}
	}
	return best
}

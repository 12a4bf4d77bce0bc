package domain

import (
	"context"
	"time"
)

// Post represents a community post
// swagger:model Post
type Post struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ImageURL    *string   `json:"imageUrl,omitempty"`
	AuthorID    int64     `json:"authorId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NewPost returns a new Post with the given fields. ID is set by the
// repository on create.
func NewPost(title, description string, authorID int64, createdAt time.Time) *Post {
	return &Post{
		Title:       title,
		Description: description,
		AuthorID:    authorID,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
}

// PostWithMeta is a post enriched with its author and like count for listings.
type PostWithMeta struct {
	Post
	Author    *UserRef `json:"author,omitempty"`
	LikeCount int      `json:"likeCount"`
}

// Comment belongs to a post.
// swagger:model Comment
type Comment struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	AuthorID  int64     `json:"authorId"`
	PostID    int64     `json:"postId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CommentAuthor is the author summary embedded in comment responses.
type CommentAuthor struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	ProfileImage *string `json:"profileImage,omitempty"`
}

// CommentWithAuthor is a comment enriched with its author summary.
type CommentWithAuthor struct {
	Comment
	Author *CommentAuthor `json:"author"`
}

// PostRepository defines the interface for post storage
type PostRepository interface {
	Create(ctx context.Context, post *Post) error
	GetByID(ctx context.Context, id int64) (*Post, error)
	// List returns posts newest first with author and like count, limited
	// to the given page.
	List(ctx context.Context, params PaginationParams) ([]*PostWithMeta, int, error)
	ListByAuthorID(ctx context.Context, authorID int64) ([]*PostWithMeta, error)
	Update(ctx context.Context, post *Post) error
	// Delete removes the post and its likes and comments.
	Delete(ctx context.Context, id int64) error

	// ToggleLike creates the (user, post) like if absent, removes it if
	// present, and returns the resulting like count.
	ToggleLike(ctx context.Context, postID, userID int64) (int, error)
	CountLikes(ctx context.Context, postID int64) (int, error)
}

// CommentRepository defines the interface for comment storage
type CommentRepository interface {
	Create(ctx context.Context, comment *Comment) (*CommentWithAuthor, error)
	GetByID(ctx context.Context, id int64) (*Comment, error)
	ListByPostID(ctx context.Context, postID int64) ([]*CommentWithAuthor, error)
	Update(ctx context.Context, id int64, content string, updatedAt time.Time) (*CommentWithAuthor, error)
	Delete(ctx context.Context, id int64) error
}

// PostService defines the business logic for posts, likes, and comments.
// Mutations on posts and comments are restricted to the author or an admin.
type PostService interface {
	List(ctx context.Context, params PaginationParams) ([]*PostWithMeta, int, error)
	GetByID(ctx context.Context, id int64) (*PostWithMeta, error)
	Create(ctx context.Context, post *Post) (*Post, error)
	Update(ctx context.Context, postID int64, caller TokenClaims, title, description *string) (*Post, error)
	Delete(ctx context.Context, postID int64, caller TokenClaims) error

	ToggleLike(ctx context.Context, postID, userID int64) (int, error)
	CountLikes(ctx context.Context, postID int64) (int, error)

	ListComments(ctx context.Context, postID int64) ([]*CommentWithAuthor, error)
	AddComment(ctx context.Context, postID, authorID int64, content string) (*CommentWithAuthor, error)
	UpdateComment(ctx context.Context, commentID int64, caller TokenClaims, content string) (*CommentWithAuthor, error)
	DeleteComment(ctx context.Context, commentID int64, caller TokenClaims) error
}

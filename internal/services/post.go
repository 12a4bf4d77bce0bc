package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"munhuwese/internal/domain"
)

type postService struct {
	postRepo    domain.PostRepository
	commentRepo domain.CommentRepository
}

// NewPostService creates a PostService with the given repositories.
func NewPostService(postRepo domain.PostRepository, commentRepo domain.CommentRepository) domain.PostService {
	return &postService{
		postRepo:    postRepo,
		commentRepo: commentRepo,
	}
}

func (s *postService) List(ctx context.Context, params domain.PaginationParams) ([]*domain.PostWithMeta, int, error) {
	posts, total, err := s.postRepo.List(ctx, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}
	return posts, total, nil
}

func (s *postService) GetByID(ctx context.Context, id int64) (*domain.PostWithMeta, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get post: %w", err)
	}
	count, err := s.postRepo.CountLikes(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("count likes: %w", err)
	}
	return &domain.PostWithMeta{Post: *post, LikeCount: count}, nil
}

func (s *postService) Create(ctx context.Context, post *domain.Post) (*domain.Post, error) {
	post.Title = strings.TrimSpace(post.Title)
	post.Description = strings.TrimSpace(post.Description)
	if len(post.Title) < minTitleLen || len(post.Description) < minDescriptionLen {
		return nil, fmt.Errorf("%w: title and description required (min lengths: title %d, description %d)",
			domain.ErrInvalidInput, minTitleLen, minDescriptionLen)
	}

	now := time.Now()
	post.CreatedAt = now
	post.UpdatedAt = now
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return post, nil
}

func (s *postService) Update(ctx context.Context, postID int64, caller domain.TokenClaims, title, description *string) (*domain.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get post: %w", err)
	}
	if !canModify(caller, post.AuthorID) {
		return nil, domain.ErrForbidden
	}

	if title != nil {
		post.Title = strings.TrimSpace(*title)
	}
	if description != nil {
		post.Description = strings.TrimSpace(*description)
	}
	if len(post.Title) < minTitleLen || len(post.Description) < minDescriptionLen {
		return nil, fmt.Errorf("%w: title and description required (min lengths: title %d, description %d)",
			domain.ErrInvalidInput, minTitleLen, minDescriptionLen)
	}

	post.UpdatedAt = time.Now()
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}
	return post, nil
}

func (s *postService) Delete(ctx context.Context, postID int64, caller domain.TokenClaims) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get post: %w", err)
	}
	if !canModify(caller, post.AuthorID) {
		return domain.ErrForbidden
	}
	if err := s.postRepo.Delete(ctx, postID); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}

func (s *postService) ToggleLike(ctx context.Context, postID, userID int64) (int, error) {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return 0, domain.ErrNotFound
		}
		return 0, fmt.Errorf("get post: %w", err)
	}
	count, err := s.postRepo.ToggleLike(ctx, postID, userID)
	if err != nil {
		return 0, fmt.Errorf("toggle like: %w", err)
	}
	return count, nil
}

func (s *postService) CountLikes(ctx context.Context, postID int64) (int, error) {
	count, err := s.postRepo.CountLikes(ctx, postID)
	if err != nil {
		return 0, fmt.Errorf("count likes: %w", err)
	}
	return count, nil
}

func (s *postService) ListComments(ctx context.Context, postID int64) ([]*domain.CommentWithAuthor, error) {
	comments, err := s.commentRepo.ListByPostID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}

func (s *postService) AddComment(ctx context.Context, postID, authorID int64, content string) (*domain.CommentWithAuthor, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: content is required", domain.ErrInvalidInput)
	}
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get post: %w", err)
	}

	now := time.Now()
	comment := &domain.Comment{
		Content:   content,
		AuthorID:  authorID,
		PostID:    postID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	created, err := s.commentRepo.Create(ctx, comment)
	if err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return created, nil
}

func (s *postService) UpdateComment(ctx context.Context, commentID int64, caller domain.TokenClaims, content string) (*domain.CommentWithAuthor, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: content is required", domain.ErrInvalidInput)
	}
	existing, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get comment: %w", err)
	}
	if !canModify(caller, existing.AuthorID) {
		return nil, domain.ErrForbidden
	}
	updated, err := s.commentRepo.Update(ctx, commentID, content, time.Now())
	if err != nil {
		return nil, fmt.Errorf("update comment: %w", err)
	}
	return updated, nil
}

func (s *postService) DeleteComment(ctx context.Context, commentID int64, caller domain.TokenClaims) error {
	existing, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get comment: %w", err)
	}
	if !canModify(caller, existing.AuthorID) {
		return domain.ErrForbidden
	}
	if err := s.commentRepo.Delete(ctx, commentID); err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return nil
}

// canModify reports whether the caller owns the resource or is an admin.
func canModify(caller domain.TokenClaims, ownerID int64) bool {
	return caller.UserID == ownerID || caller.Role == domain.RoleAdmin
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"munhuwese/internal/domain"
)

type commentRepository struct {
	DB *sql.DB
}

func NewCommentRepository(db *sql.DB) domain.CommentRepository {
	return &commentRepository{DB: db}
}

func (r *commentRepository) Create(ctx context.Context, c *domain.Comment) (*domain.CommentWithAuthor, error) {
	query := `
		INSERT INTO comments (content, author_id, post_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	if err := r.DB.QueryRowContext(ctx, query, c.Content, c.AuthorID, c.PostID, c.CreatedAt, c.UpdatedAt).Scan(&c.ID); err != nil {
		return nil, err
	}
	return r.getWithAuthor(ctx, c.ID)
}

func (r *commentRepository) GetByID(ctx context.Context, id int64) (*domain.Comment, error) {
	query := `
		SELECT id, content, author_id, post_id, created_at, updated_at
		FROM comments
		WHERE id = $1
	`
	c := &domain.Comment{}
	err := r.DB.QueryRowContext(ctx, query, id).
		Scan(&c.ID, &c.Content, &c.AuthorID, &c.PostID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *commentRepository) ListByPostID(ctx context.Context, postID int64) ([]*domain.CommentWithAuthor, error) {
	query := `
		SELECT c.id, c.content, c.author_id, c.post_id, c.created_at, c.updated_at,
		       u.id, u.name, u.profile_image
		FROM comments c
		JOIN users u ON u.id = c.author_id
		WHERE c.post_id = $1
		ORDER BY c.created_at ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []*domain.CommentWithAuthor
	for rows.Next() {
		c := &domain.CommentWithAuthor{}
		author := &domain.CommentAuthor{}
		if err := rows.Scan(
			&c.ID, &c.Content, &c.AuthorID, &c.PostID, &c.CreatedAt, &c.UpdatedAt,
			&author.ID, &author.Name, &author.ProfileImage,
		); err != nil {
			return nil, err
		}
		c.Author = author
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []*domain.CommentWithAuthor{}
	}
	return comments, nil
}

func (r *commentRepository) Update(ctx context.Context, id int64, content string, updatedAt time.Time) (*domain.CommentWithAuthor, error) {
	res, err := r.DB.ExecContext(ctx, `UPDATE comments SET content = $1, updated_at = $2 WHERE id = $3`, content, updatedAt, id)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, domain.ErrNotFound
	}
	return r.getWithAuthor(ctx, id)
}

func (r *commentRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *commentRepository) getWithAuthor(ctx context.Context, id int64) (*domain.CommentWithAuthor, error) {
	query := `
		SELECT c.id, c.content, c.author_id, c.post_id, c.created_at, c.updated_at,
		       u.id, u.name, u.profile_image
		FROM comments c
		JOIN users u ON u.id = c.author_id
		WHERE c.id = $1
	`
	c := &domain.CommentWithAuthor{}
	author := &domain.CommentAuthor{}
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.Content, &c.AuthorID, &c.PostID, &c.CreatedAt, &c.UpdatedAt,
		&author.ID, &author.Name, &author.ProfileImage,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	c.Author = author
	return c, nil
}

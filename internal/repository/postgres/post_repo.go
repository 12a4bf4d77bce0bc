package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"munhuwese/internal/domain"
)

type postRepository struct {
	DB *sql.DB
}

func NewPostRepository(db *sql.DB) domain.PostRepository {
	return &postRepository{DB: db}
}

const postWithMetaColumns = `
	p.id, p.title, p.description, p.image_url, p.author_id, p.created_at, p.updated_at,
	u.id, u.name,
	(SELECT COUNT(*) FROM post_likes pl WHERE pl.post_id = p.id) AS like_count
`

func (r *postRepository) Create(ctx context.Context, p *domain.Post) error {
	query := `
		INSERT INTO posts (title, description, image_url, author_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query, p.Title, p.Description, p.ImageURL, p.AuthorID, p.CreatedAt, p.UpdatedAt).Scan(&p.ID)
}

func (r *postRepository) GetByID(ctx context.Context, id int64) (*domain.Post, error) {
	query := `
		SELECT id, title, description, image_url, author_id, created_at, updated_at
		FROM posts
		WHERE id = $1
	`
	p := &domain.Post{}
	err := r.DB.QueryRowContext(ctx, query, id).
		Scan(&p.ID, &p.Title, &p.Description, &p.ImageURL, &p.AuthorID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *postRepository) List(ctx context.Context, params domain.PaginationParams) ([]*domain.PostWithMeta, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts`).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT ` + postWithMetaColumns + `
		FROM posts p
		JOIN users u ON u.id = p.author_id
		ORDER BY p.created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.DB.QueryContext(ctx, query, params.PageSize, params.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	posts, err := scanPostsWithMeta(rows)
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

func (r *postRepository) ListByAuthorID(ctx context.Context, authorID int64) ([]*domain.PostWithMeta, error) {
	query := `
		SELECT ` + postWithMetaColumns + `
		FROM posts p
		JOIN users u ON u.id = p.author_id
		WHERE p.author_id = $1
		ORDER BY p.created_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, authorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPostsWithMeta(rows)
}

func scanPostsWithMeta(rows *sql.Rows) ([]*domain.PostWithMeta, error) {
	var posts []*domain.PostWithMeta
	for rows.Next() {
		p := &domain.PostWithMeta{}
		author := &domain.UserRef{}
		if err := rows.Scan(
			&p.ID, &p.Title, &p.Description, &p.ImageURL, &p.AuthorID, &p.CreatedAt, &p.UpdatedAt,
			&author.ID, &author.Name, &p.LikeCount,
		); err != nil {
			return nil, err
		}
		p.Author = author
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []*domain.PostWithMeta{}
	}
	return posts, nil
}

func (r *postRepository) Update(ctx context.Context, p *domain.Post) error {
	query := `
		UPDATE posts
		SET title = $1, description = $2, updated_at = $3
		WHERE id = $4
	`
	res, err := r.DB.ExecContext(ctx, query, p.Title, p.Description, p.UpdatedAt, p.ID)
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

func (r *postRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM post_likes WHERE post_id = $1`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM comments WHERE post_id = $1`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
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
	return tx.Commit()
}

func (r *postRepository) ToggleLike(ctx context.Context, postID, userID int64) (int, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM post_likes WHERE user_id = $1 AND post_id = $2`, userID, postID)
	if err != nil {
		return 0, err
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if removed == 0 {
		if _, err := r.DB.ExecContext(ctx, `INSERT INTO post_likes (user_id, post_id) VALUES ($1, $2)`, userID, postID); err != nil {
			return 0, err
		}
	}
	return r.CountLikes(ctx, postID)
}

func (r *postRepository) CountLikes(ctx context.Context, postID int64) (int, error) {
	var count int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM post_likes WHERE post_id = $1`, postID).Scan(&count)
	return count, err
}

package repository

import (
	"context"
	"errors"

	"cookbook/internal/models"
	"cookbook/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CommentRepository defines interface for comment operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id string) (*models.Comment, error)
	ListByRecipe(ctx context.Context, recipeID string) ([]*models.Comment, error)
	Update(ctx context.Context, comment *models.Comment) error
	Delete(ctx context.Context, id string) error
}

type commentRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db, log: observability.NewRepoLogger("comments")}
}

// Create inserts the comment and loads its author.
func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	ctx, span := observability.TraceRepositoryMethod(ctx, "Create", "comments")
	defer span.End()
	defer observability.TrackQuery("insert", "comments")()

	db := r.db.WithContext(ctx)
	if err := db.Omit(clause.Associations).Create(comment).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		return models.NewInternalError(err)
	}
	if err := db.Preload("User").First(comment, "id = ?", comment.ID).Error; err != nil {
		return models.NewInternalError(err)
	}
	r.log.LogWrite(ctx, "create", comment.ID)
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	ctx, span := observability.TraceRepositoryMethod(ctx, "GetByID", "comments")
	defer span.End()
	defer observability.TrackQuery("select", "comments")()

	var comment models.Comment
	if err := r.db.WithContext(ctx).Preload("User").First(&comment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Comment", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &comment, nil
}

// ListByRecipe returns the thread oldest first.
func (r *commentRepository) ListByRecipe(ctx context.Context, recipeID string) ([]*models.Comment, error) {
	ctx, span := observability.TraceRepositoryMethod(ctx, "ListByRecipe", "comments")
	defer span.End()
	defer observability.TrackQuery("select", "comments")()

	var comments []*models.Comment
	err := r.db.WithContext(ctx).Preload("User").Where("recipe_id = ?", recipeID).Order("created_at asc").Find(&comments).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return comments, nil
}

// Update rewrites the content only.
func (r *commentRepository) Update(ctx context.Context, comment *models.Comment) error {
	ctx, span := observability.TraceRepositoryMethod(ctx, "Update", "comments")
	defer span.End()
	defer observability.TrackQuery("update", "comments")()

	res := r.db.WithContext(ctx).Model(&models.Comment{}).Where("id = ?", comment.ID).Update("content", comment.Content)
	if res.Error != nil {
		r.log.LogError(ctx, res.Error, "update")
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Comment", comment.ID)
	}
	r.log.LogWrite(ctx, "update", comment.ID)
	return nil
}

func (r *commentRepository) Delete(ctx context.Context, id string) error {
	ctx, span := observability.TraceRepositoryMethod(ctx, "Delete", "comments")
	defer span.End()
	defer observability.TrackQuery("delete", "comments")()

	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Comment{})
	if res.Error != nil {
		r.log.LogError(ctx, res.Error, "delete")
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Comment", id)
	}
	r.log.LogWrite(ctx, "delete", id)
	return nil
}

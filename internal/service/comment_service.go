package service

import (
	"context"
	"fmt"

	"cookbook/internal/models"
	"cookbook/internal/policy"
	"cookbook/internal/repository"
	"cookbook/internal/session"
)

const maxCommentLen = 10000

type CommentService struct {
	commentRepo repository.CommentRepository
	recipeRepo  repository.RecipeRepository
}

func NewCommentService(commentRepo repository.CommentRepository, recipeRepo repository.RecipeRepository) *CommentService {
	return &CommentService{commentRepo: commentRepo, recipeRepo: recipeRepo}
}

// ListComments is public.
func (s *CommentService) ListComments(ctx context.Context, recipeID string) ([]*models.Comment, error) {
	if blank(recipeID) {
		return nil, models.NewValidationError("recipe_id is required")
	}
	return s.commentRepo.ListByRecipe(ctx, recipeID)
}

// CreateComment lets any signed-in user except the recipe's creator comment.
func (s *CommentService) CreateComment(ctx context.Context, actor session.Session, in models.CommentInput) (*models.Comment, error) {
	if blank(in.RecipeID) {
		return nil, models.NewValidationError("recipe_id is required")
	}
	recipe, err := s.recipeRepo.GetByID(ctx, in.RecipeID)
	if err != nil {
		return nil, err
	}
	if err := authorize(ctx, actor, policy.PostComment, policy.Resource{RecipeOwnerID: recipe.OwnerID()}); err != nil {
		return nil, err
	}
	if err := validateContent(in.Content); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		RecipeID: recipe.ID,
		UserID:   actor.UserID,
		Content:  in.Content,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// UpdateComment is allowed to the author and to admins.
func (s *CommentService) UpdateComment(ctx context.Context, actor session.Session, id string, in models.CommentInput) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(ctx, actor, policy.EditComment, policy.Resource{OwnerID: comment.AuthorID()}); err != nil {
		return nil, err
	}
	if err := validateContent(in.Content); err != nil {
		return nil, err
	}

	comment.Content = in.Content
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}
	return s.commentRepo.GetByID(ctx, id)
}

// DeleteComment is admin only.
func (s *CommentService) DeleteComment(ctx context.Context, actor session.Session, id string) error {
	comment, err := s.commentRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := authorize(ctx, actor, policy.DeleteComment, policy.Resource{OwnerID: comment.AuthorID()}); err != nil {
		return err
	}
	return s.commentRepo.Delete(ctx, id)
}

func validateContent(content string) error {
	if blank(content) {
		return models.NewValidationError("Content is required")
	}
	if len(content) > maxCommentLen {
		return models.NewValidationError(fmt.Sprintf("Comment too long (max %d characters)", maxCommentLen))
	}
	return nil
}

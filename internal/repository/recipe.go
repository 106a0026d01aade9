package repository

import (
	"context"
	"errors"

	"cookbook/internal/cache"
	"cookbook/internal/models"
	"cookbook/internal/observability"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RecipeRepository defines persistence operations for recipes.
type RecipeRepository interface {
	List(ctx context.Context) ([]*models.Recipe, error)
	GetByID(ctx context.Context, id string) (*models.Recipe, error)
	Create(ctx context.Context, recipe *models.Recipe) error
	Update(ctx context.Context, recipe *models.Recipe) error
	Delete(ctx context.Context, id string) error
}

type recipeRepository struct {
	db    *gorm.DB
	redis *redis.Client
	log   *observability.RepoLogger
}

// NewRecipeRepository returns a RecipeRepository. rdb may be nil, in which
// case recipes are always read from the database.
func NewRecipeRepository(db *gorm.DB, rdb *redis.Client) RecipeRepository {
	return &recipeRepository{db: db, redis: rdb, log: observability.NewRepoLogger("recipes")}
}

func (r *recipeRepository) List(ctx context.Context) ([]*models.Recipe, error) {
	ctx, span := observability.TraceRepositoryMethod(ctx, "List", "recipes")
	defer span.End()
	defer observability.TrackQuery("select", "recipes")()

	var recipes []*models.Recipe
	if err := r.db.WithContext(ctx).Preload("CreatedBy").Order("created_at desc").Find(&recipes).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return recipes, nil
}

func (r *recipeRepository) GetByID(ctx context.Context, id string) (*models.Recipe, error) {
	ctx, span := observability.TraceRepositoryMethod(ctx, "GetByID", "recipes")
	defer span.End()

	var recipe models.Recipe
	err := cache.Aside(ctx, r.redis, cache.RecipeKey(id), &recipe, cache.RecipeTTL, func() error {
		defer observability.TrackQuery("select", "recipes")()
		if err := r.db.WithContext(ctx).Preload("CreatedBy").First(&recipe, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Recipe", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}

// Create inserts the recipe and loads its creator.
func (r *recipeRepository) Create(ctx context.Context, recipe *models.Recipe) error {
	ctx, span := observability.TraceRepositoryMethod(ctx, "Create", "recipes")
	defer span.End()
	defer observability.TrackQuery("insert", "recipes")()

	db := r.db.WithContext(ctx)
	if err := db.Omit(clause.Associations).Create(recipe).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		return models.NewInternalError(err)
	}
	if err := db.Preload("CreatedBy").First(recipe, "id = ?", recipe.ID).Error; err != nil {
		return models.NewInternalError(err)
	}
	r.log.LogWrite(ctx, "create", recipe.ID)
	return nil
}

// Update writes the editable fields only; ownership never changes.
func (r *recipeRepository) Update(ctx context.Context, recipe *models.Recipe) error {
	ctx, span := observability.TraceRepositoryMethod(ctx, "Update", "recipes")
	defer span.End()
	defer observability.TrackQuery("update", "recipes")()

	res := r.db.WithContext(ctx).Model(&models.Recipe{}).Where("id = ?", recipe.ID).Updates(map[string]any{
		"title":        recipe.Title,
		"descriptions": recipe.Descriptions,
		"image_url":    recipe.ImageURL,
	})
	if res.Error != nil {
		r.log.LogError(ctx, res.Error, "update")
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Recipe", recipe.ID)
	}
	cache.Invalidate(ctx, r.redis, cache.RecipeKey(recipe.ID))
	r.log.LogWrite(ctx, "update", recipe.ID)
	return nil
}

// Delete removes the recipe together with its ingredients, steps and comments.
func (r *recipeRepository) Delete(ctx context.Context, id string) error {
	ctx, span := observability.TraceRepositoryMethod(ctx, "Delete", "recipes")
	defer span.End()
	defer observability.TrackQuery("delete", "recipes")()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, child := range []any{&models.Ingredient{}, &models.Step{}, &models.Comment{}} {
			if err := tx.Where("recipe_id = ?", id).Delete(child).Error; err != nil {
				return err
			}
		}
		res := tx.Where("id = ?", id).Delete(&models.Recipe{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Recipe", id)
		}
		return nil
	})
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return appErr
		}
		r.log.LogError(ctx, err, "delete")
		return models.NewInternalError(err)
	}
	cache.Invalidate(ctx, r.redis, cache.RecipeKey(id))
	r.log.LogWrite(ctx, "delete", id)
	return nil
}

package repository

import (
	"context"
	"errors"

	"cookbook/internal/models"
	"cookbook/internal/observability"

	"gorm.io/gorm"
)

// ChildRow is a row that belongs to exactly one recipe.
type ChildRow interface {
	models.Ingredient | models.Step
}

// ChildRepository stores the ingredients or the steps of recipes. Rows are
// listed in insertion order, which is their display order.
type ChildRepository[T ChildRow] interface {
	List(ctx context.Context, recipeID string) ([]*T, error)
	GetByID(ctx context.Context, id string) (*T, error)
	Create(ctx context.Context, row *T) error
	Update(ctx context.Context, row *T) error
	Delete(ctx context.Context, id string) error
}

type childRepository[T ChildRow] struct {
	db       *gorm.DB
	table    string
	resource string
	log      *observability.RepoLogger
}

// NewIngredientRepository returns the ingredient store.
func NewIngredientRepository(db *gorm.DB) ChildRepository[models.Ingredient] {
	return &childRepository[models.Ingredient]{db: db, table: "ingredients", resource: "Ingredient", log: observability.NewRepoLogger("ingredients")}
}

// NewStepRepository returns the step store.
func NewStepRepository(db *gorm.DB) ChildRepository[models.Step] {
	return &childRepository[models.Step]{db: db, table: "steps", resource: "Step", log: observability.NewRepoLogger("steps")}
}

// List returns the rows of recipeID, or every row when recipeID is empty.
func (r *childRepository[T]) List(ctx context.Context, recipeID string) ([]*T, error) {
	ctx, span := observability.TraceRepositoryMethod(ctx, "List", r.table)
	defer span.End()
	defer observability.TrackQuery("select", r.table)()

	q := r.db.WithContext(ctx).Order("created_at asc")
	if recipeID != "" {
		q = q.Where("recipe_id = ?", recipeID)
	}
	var rows []*T
	if err := q.Find(&rows).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return rows, nil
}

func (r *childRepository[T]) GetByID(ctx context.Context, id string) (*T, error) {
	ctx, span := observability.TraceRepositoryMethod(ctx, "GetByID", r.table)
	defer span.End()
	defer observability.TrackQuery("select", r.table)()

	var row T
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError(r.resource, id)
		}
		return nil, models.NewInternalError(err)
	}
	return &row, nil
}

func (r *childRepository[T]) Create(ctx context.Context, row *T) error {
	ctx, span := observability.TraceRepositoryMethod(ctx, "Create", r.table)
	defer span.End()
	defer observability.TrackQuery("insert", r.table)()

	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		return models.NewInternalError(err)
	}
	r.log.LogWrite(ctx, "create", rowID(row))
	return nil
}

func (r *childRepository[T]) Update(ctx context.Context, row *T) error {
	ctx, span := observability.TraceRepositoryMethod(ctx, "Update", r.table)
	defer span.End()
	defer observability.TrackQuery("update", r.table)()

	if err := r.db.WithContext(ctx).Save(row).Error; err != nil {
		r.log.LogError(ctx, err, "update")
		return models.NewInternalError(err)
	}
	r.log.LogWrite(ctx, "update", rowID(row))
	return nil
}

func (r *childRepository[T]) Delete(ctx context.Context, id string) error {
	ctx, span := observability.TraceRepositoryMethod(ctx, "Delete", r.table)
	defer span.End()
	defer observability.TrackQuery("delete", r.table)()

	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(new(T))
	if res.Error != nil {
		r.log.LogError(ctx, res.Error, "delete")
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError(r.resource, id)
	}
	r.log.LogWrite(ctx, "delete", id)
	return nil
}

func rowID(row any) string {
	switch v := row.(type) {
	case *models.Ingredient:
		return v.ID
	case *models.Step:
		return v.ID
	}
	return ""
}

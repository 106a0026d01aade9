// Package comments implements the comment thread of one recipe: who may
// post, edit and delete, and the re-fetch that follows every change.
package comments

import (
	"context"
	"log/slog"
	"strings"

	"cookbook/internal/models"
	"cookbook/internal/observability"
	"cookbook/internal/policy"
	"cookbook/internal/session"
	"cookbook/internal/workflow"
)

// Store is the comment resource.
type Store interface {
	ListByRecipe(ctx context.Context, recipeID string) ([]models.Comment, error)
	Create(ctx context.Context, in models.CommentInput, token string) (*models.Comment, error)
	Update(ctx context.Context, id string, in models.CommentInput, token string) (*models.Comment, error)
	Delete(ctx context.Context, id, token string) error
}

// Thread is the loaded comment list of one recipe as seen by one session.
type Thread struct {
	store         Store
	session       session.Session
	recipeID      string
	recipeOwnerID string
	guard         *workflow.Guard
	comments      []models.Comment
}

// NewThread binds a thread to recipe. Call Load before reading Comments.
func NewThread(store Store, s session.Session, recipe *models.Recipe) *Thread {
	return &Thread{
		store:         store,
		session:       s,
		recipeID:      recipe.ID,
		recipeOwnerID: recipe.OwnerID(),
		guard:         workflow.NewGuard(),
	}
}

// Load fetches the comments. Anyone may read them.
func (t *Thread) Load(ctx context.Context) error {
	list, err := t.store.ListByRecipe(ctx, t.recipeID)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	t.comments = list
	return nil
}

// Comments returns the list as last loaded.
func (t *Thread) Comments() []models.Comment {
	return append([]models.Comment(nil), t.comments...)
}

// Busy reports whether a post, edit or delete is pending.
func (t *Thread) Busy() bool {
	return t.guard.Busy()
}

// CanPost reports whether the session may comment on this recipe.
func (t *Thread) CanPost() bool {
	return policy.Allowed(t.session, policy.PostComment, t.resource(nil))
}

// CanEdit reports whether the session may edit c.
func (t *Thread) CanEdit(c models.Comment) bool {
	return policy.Allowed(t.session, policy.EditComment, t.resource(&c))
}

// CanDelete reports whether the session may delete c.
func (t *Thread) CanDelete(c models.Comment) bool {
	return policy.Allowed(t.session, policy.DeleteComment, t.resource(&c))
}

// Post adds a comment. Blank content fails validation and a post by the
// recipe's owner is refused; neither reaches the API.
func (t *Thread) Post(ctx context.Context, content string) error {
	return t.guard.Do(func() error {
		if strings.TrimSpace(content) == "" {
			return models.NewValidationError("Comment content cannot be empty")
		}
		if err := policy.Decide(t.session, policy.PostComment, t.resource(nil)).Err(); err != nil {
			return err
		}
		created, err := t.store.Create(ctx, models.CommentInput{RecipeID: t.recipeID, Content: content}, t.session.Token)
		if err != nil {
			observability.LogWorkflowError(ctx, "comment", "post", err)
			return err
		}
		observability.LogWorkflowStep(ctx, "comment", "post", slog.String("id", created.ID))
		return t.Load(ctx)
	})
}

// Edit replaces the content of a loaded comment.
func (t *Thread) Edit(ctx context.Context, commentID, content string) error {
	return t.guard.Do(func() error {
		c, err := t.find(commentID)
		if err != nil {
			return err
		}
		if strings.TrimSpace(content) == "" {
			return models.NewValidationError("Comment content cannot be empty")
		}
		if err := policy.Decide(t.session, policy.EditComment, t.resource(c)).Err(); err != nil {
			return err
		}
		if _, err := t.store.Update(ctx, c.ID, models.CommentInput{Content: content}, t.session.Token); err != nil {
			observability.LogWorkflowError(ctx, "comment", "edit", err)
			return err
		}
		observability.LogWorkflowStep(ctx, "comment", "edit", slog.String("id", c.ID))
		return t.Load(ctx)
	})
}

// Delete removes a loaded comment.
func (t *Thread) Delete(ctx context.Context, commentID string) error {
	return t.guard.Do(func() error {
		c, err := t.find(commentID)
		if err != nil {
			return err
		}
		if err := policy.Decide(t.session, policy.DeleteComment, t.resource(c)).Err(); err != nil {
			return err
		}
		if err := t.store.Delete(ctx, c.ID, t.session.Token); err != nil {
			observability.LogWorkflowError(ctx, "comment", "delete", err)
			return err
		}
		observability.LogWorkflowStep(ctx, "comment", "delete", slog.String("id", c.ID))
		return t.Load(ctx)
	})
}

func (t *Thread) find(id string) (*models.Comment, error) {
	for i := range t.comments {
		if t.comments[i].ID == id {
			return &t.comments[i], nil
		}
	}
	return nil, models.NewNotFoundError("Comment", id)
}

func (t *Thread) resource(c *models.Comment) policy.Resource {
	res := policy.Resource{RecipeOwnerID: t.recipeOwnerID}
	if c != nil {
		res.OwnerID = c.AuthorID()
	}
	return res
}

package browse

import (
	"context"
	"errors"
	"testing"

	"cookbook/internal/models"
	"cookbook/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRecipes struct {
	listFn   func(ctx context.Context) ([]models.Recipe, error)
	getFn    func(ctx context.Context, id string) (*models.Recipe, error)
	deleteFn func(ctx context.Context, id, token string) error
	deletes  []string
}

func (s *stubRecipes) List(ctx context.Context) ([]models.Recipe, error) {
	return s.listFn(ctx)
}

func (s *stubRecipes) Get(ctx context.Context, id string) (*models.Recipe, error) {
	return s.getFn(ctx, id)
}

func (s *stubRecipes) Delete(ctx context.Context, id, token string) error {
	s.deletes = append(s.deletes, id)
	if s.deleteFn != nil {
		return s.deleteFn(ctx, id, token)
	}
	return nil
}

type stubChildren[T any] struct {
	rows []T
}

func (s stubChildren[T]) ListByRecipe(context.Context, string) ([]T, error) {
	return s.rows, nil
}

type stubComments struct {
	list []models.Comment
}

func (s *stubComments) ListByRecipe(context.Context, string) ([]models.Comment, error) {
	return s.list, nil
}

func (s *stubComments) Create(context.Context, models.CommentInput, string) (*models.Comment, error) {
	return nil, errors.New("unexpected create")
}

func (s *stubComments) Update(context.Context, string, models.CommentInput, string) (*models.Comment, error) {
	return nil, errors.New("unexpected update")
}

func (s *stubComments) Delete(context.Context, string, string) error {
	return errors.New("unexpected delete")
}

var (
	user  = session.Session{Token: "t-u", UserID: "u1", Role: models.RoleUser}
	admin = session.Session{Token: "t-a", UserID: "a1", Role: models.RoleAdmin}

	mine   = models.Recipe{ID: "r1", Title: "Mine", CreatedBy: models.User{ID: "u1"}}
	theirs = models.Recipe{ID: "r2", Title: "Theirs", CreatedBy: models.User{ID: "u2"}}
)

func newBrowser(s session.Session, r *stubRecipes) *Browser {
	return New(r,
		stubChildren[models.Ingredient]{rows: []models.Ingredient{{ID: "i1", Name: "egg"}}},
		stubChildren[models.Step]{rows: []models.Step{{ID: "s1", InstructionText: "crack"}}},
		&stubComments{list: []models.Comment{{ID: "c1", Content: "nice"}}},
		s,
	)
}

func listing() *stubRecipes {
	return &stubRecipes{
		listFn: func(context.Context) ([]models.Recipe, error) {
			return []models.Recipe{mine, theirs}, nil
		},
		getFn: func(_ context.Context, id string) (*models.Recipe, error) {
			if id == mine.ID {
				r := mine
				return &r, nil
			}
			return nil, models.NewServerRejection(404, "Recipe not found")
		},
	}
}

func TestBrowser_ListVisibility(t *testing.T) {
	t.Parallel()

	entries, err := newBrowser(user, listing()).List(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.True(t, entries[0].CanEdit)
	assert.False(t, entries[0].CanDelete)
	assert.False(t, entries[1].CanEdit)
	assert.False(t, entries[1].CanDelete)

	entries, err = newBrowser(admin, listing()).List(context.Background())
	require.NoError(t, err)
	for _, e := range entries {
		assert.True(t, e.CanEdit)
		assert.True(t, e.CanDelete)
	}
}

func TestBrowser_ListRequiresSignIn(t *testing.T) {
	t.Parallel()
	r := listing()
	r.listFn = func(context.Context) ([]models.Recipe, error) {
		t.Fatal("list must not be called")
		return nil, nil
	}
	_, err := newBrowser(session.Session{}, r).List(context.Background())
	assert.ErrorIs(t, err, models.ErrAuthorizationDenied)
}

func TestBrowser_Details(t *testing.T) {
	t.Parallel()
	d, err := newBrowser(user, listing()).Details(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, "Mine", d.Recipe.Title)
	assert.Len(t, d.Ingredients, 1)
	assert.Len(t, d.Steps, 1)
	assert.Len(t, d.Thread.Comments(), 1)
	assert.True(t, d.CanEdit)
	assert.False(t, d.CanDelete)
	assert.False(t, d.Thread.CanPost(), "owner cannot comment")

	_, err = newBrowser(user, listing()).Details(context.Background(), "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestBrowser_DeleteNeedsConfirmation(t *testing.T) {
	t.Parallel()
	r := listing()
	b := newBrowser(admin, r)

	deleted, err := b.Delete(context.Background(), theirs, func(string) (bool, error) { return false, nil })
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.Empty(t, r.deletes)

	var prompt string
	deleted, err = b.Delete(context.Background(), theirs, func(p string) (bool, error) {
		prompt = p
		return true, nil
	})
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Equal(t, []string{"r2"}, r.deletes)
	assert.Contains(t, prompt, "Theirs")
}

func TestBrowser_DeleteAdminOnly(t *testing.T) {
	t.Parallel()
	r := listing()
	asked := false
	deleted, err := newBrowser(user, r).Delete(context.Background(), mine, func(string) (bool, error) {
		asked = true
		return true, nil
	})
	assert.ErrorIs(t, err, models.ErrAuthorizationDenied)
	assert.False(t, deleted)
	assert.False(t, asked)
	assert.Empty(t, r.deletes)
}

package workflow

import (
	"context"
	"fmt"
	"sync"

	"cookbook/internal/models"
	"cookbook/internal/session"
)

type call struct {
	Op       string // create, update, delete, get, list
	Resource string
	ID       string
	Payload  any
	Token    string
}

type callLog struct {
	mu    sync.Mutex
	calls []call
}

func (l *callLog) add(c call) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, c)
}

func (l *callLog) all() []call {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]call(nil), l.calls...)
}

// writes returns "op resource" for every mutating call, in order.
func (l *callLog) writes() []string {
	var out []string
	for _, c := range l.all() {
		if c.Op == "create" || c.Op == "update" || c.Op == "delete" {
			out = append(out, c.Op+" "+c.Resource)
		}
	}
	return out
}

type stubRecipes struct {
	log      *callLog
	getFn    func(ctx context.Context, id string) (*models.Recipe, error)
	createFn func(ctx context.Context, in models.RecipeInput) (*models.Recipe, error)
	updateFn func(ctx context.Context, id string, in models.RecipeInput) (*models.Recipe, error)
}

func (s *stubRecipes) Get(ctx context.Context, id string) (*models.Recipe, error) {
	s.log.add(call{Op: "get", Resource: "recipes", ID: id})
	if s.getFn != nil {
		return s.getFn(ctx, id)
	}
	return nil, models.NewServerRejection(404, "Recipe not found")
}

func (s *stubRecipes) Create(ctx context.Context, in models.RecipeInput, token string) (*models.Recipe, error) {
	s.log.add(call{Op: "create", Resource: "recipes", Payload: in, Token: token})
	if s.createFn != nil {
		return s.createFn(ctx, in)
	}
	return &models.Recipe{ID: "r-new", Title: in.Title, Descriptions: in.Descriptions, ImageURL: in.ImageURL}, nil
}

func (s *stubRecipes) Update(ctx context.Context, id string, in models.RecipeInput, token string) (*models.Recipe, error) {
	s.log.add(call{Op: "update", Resource: "recipes", ID: id, Payload: in, Token: token})
	if s.updateFn != nil {
		return s.updateFn(ctx, id, in)
	}
	return &models.Recipe{ID: id, Title: in.Title, Descriptions: in.Descriptions, ImageURL: in.ImageURL}, nil
}

type stubChildren[T any, In any] struct {
	log      *callLog
	name     string
	seq      int
	listFn   func(ctx context.Context, recipeID string) ([]T, error)
	createFn func(ctx context.Context, in In, id string) (*T, error)
	updateFn func(ctx context.Context, id string, in In) (*T, error)
	deleteFn func(ctx context.Context, id string) error
}

func (s *stubChildren[T, In]) ListByRecipe(ctx context.Context, recipeID string) ([]T, error) {
	s.log.add(call{Op: "list", Resource: s.name, ID: recipeID})
	if s.listFn != nil {
		return s.listFn(ctx, recipeID)
	}
	return nil, nil
}

func (s *stubChildren[T, In]) Create(ctx context.Context, in In, token string) (*T, error) {
	s.seq++
	id := fmt.Sprintf("%s-new-%d", s.name, s.seq)
	s.log.add(call{Op: "create", Resource: s.name, ID: id, Payload: in, Token: token})
	if s.createFn != nil {
		return s.createFn(ctx, in, id)
	}
	return newChild[T](id), nil
}

func (s *stubChildren[T, In]) Update(ctx context.Context, id string, in In, token string) (*T, error) {
	s.log.add(call{Op: "update", Resource: s.name, ID: id, Payload: in, Token: token})
	if s.updateFn != nil {
		return s.updateFn(ctx, id, in)
	}
	return newChild[T](id), nil
}

func (s *stubChildren[T, In]) Delete(ctx context.Context, id, token string) error {
	s.log.add(call{Op: "delete", Resource: s.name, ID: id, Token: token})
	if s.deleteFn != nil {
		return s.deleteFn(ctx, id)
	}
	return nil
}

func newChild[T any](id string) *T {
	var v T
	switch c := any(&v).(type) {
	case *models.Ingredient:
		c.ID = id
	case *models.Step:
		c.ID = id
	}
	return &v
}

type fixture struct {
	log         *callLog
	recipes     *stubRecipes
	ingredients *stubChildren[models.Ingredient, models.IngredientInput]
	steps       *stubChildren[models.Step, models.StepInput]
}

func newFixture() *fixture {
	log := &callLog{}
	return &fixture{
		log:         log,
		recipes:     &stubRecipes{log: log},
		ingredients: &stubChildren[models.Ingredient, models.IngredientInput]{log: log, name: "ingredients"},
		steps:       &stubChildren[models.Step, models.StepInput]{log: log, name: "recipesteps"},
	}
}

func (f *fixture) backend() Backend {
	return Backend{Recipes: f.recipes, Ingredients: f.ingredients, Steps: f.steps}
}

var (
	owner = session.Session{Token: "tok-owner", UserID: "owner", Role: models.RoleUser}
	admin = session.Session{Token: "tok-admin", UserID: "root", Role: models.RoleAdmin}
	other = session.Session{Token: "tok-other", UserID: "other", Role: models.RoleUser}
)

func validDraft() Draft {
	return Draft{
		Title:        "Pancakes",
		Descriptions: "Fluffy",
		ImageURL:     "/api/uploads/p.jpg",
		Ingredients: []IngredientRow{
			{Name: "flour", Quantity: "2", Unit: "cups"},
			{Name: "milk", Quantity: "1", Unit: "cup"},
		},
		Steps: []StepRow{
			{InstructionText: "mix"},
			{InstructionText: "rest"},
			{InstructionText: "fry"},
		},
	}
}

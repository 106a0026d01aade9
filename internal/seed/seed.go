// Package seed fills a development database with demo users, recipes,
// ingredients, steps and comments. It is meant for local use and tests.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"cookbook/internal/models"
	"cookbook/internal/observability"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DemoPassword is the password of every seeded user.
const DemoPassword = "password123"

var units = []string{"g", "kg", "ml", "l", "tsp", "tbsp", "cup", "pinch", "piece"}

// Options controls how much data a Seeder writes.
type Options struct {
	Users             int
	Recipes           int
	CommentsPerRecipe int
	// FastHash hashes passwords at bcrypt.MinCost.
	FastHash bool
	// RandSeed makes the generated content repeatable when non-zero.
	RandSeed int64
}

// Summary counts what a run created.
type Summary struct {
	Users       int
	Recipes     int
	Ingredients int
	Steps       int
	Comments    int
}

// Seeder builds entities with gofakeit and persists them through GORM.
type Seeder struct {
	db    *gorm.DB
	opts  Options
	faker *gofakeit.Faker
	clock time.Time
}

func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	seed := opts.RandSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Seeder{db: db, opts: opts, faker: gofakeit.New(seed), clock: time.Now().Add(-90 * 24 * time.Hour)}
}

// ClearAll removes every row the seeder can create, children first.
func (s *Seeder) ClearAll(ctx context.Context) error {
	tx := s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true})
	for _, model := range []any{&models.Comment{}, &models.Step{}, &models.Ingredient{}, &models.Recipe{}, &models.User{}} {
		if err := tx.Delete(model).Error; err != nil {
			return fmt.Errorf("clear %T: %w", model, err)
		}
	}
	observability.Logger.InfoContext(ctx, "database cleared")
	return nil
}

// Run creates the configured number of users, then recipes spread over
// them. Comments are never written by the recipe's own creator.
func (s *Seeder) Run(ctx context.Context) (Summary, error) {
	var sum Summary
	users := make([]*models.User, 0, s.opts.Users)
	for range s.opts.Users {
		u, err := s.CreateUser(ctx)
		if err != nil {
			return sum, err
		}
		users = append(users, u)
	}
	sum.Users = len(users)
	if len(users) == 0 {
		return sum, nil
	}

	for i := range s.opts.Recipes {
		owner := users[i%len(users)]
		r, err := s.CreateRecipe(ctx, owner)
		if err != nil {
			return sum, err
		}
		sum.Recipes++

		n, err := s.createIngredients(ctx, r, 2+s.faker.Number(0, 6))
		if err != nil {
			return sum, err
		}
		sum.Ingredients += n

		n, err = s.createSteps(ctx, r, 2+s.faker.Number(0, 4))
		if err != nil {
			return sum, err
		}
		sum.Steps += n

		for c := range s.opts.CommentsPerRecipe {
			if len(users) < 2 {
				break
			}
			author := users[(i+1+c%(len(users)-1))%len(users)]
			if err := s.createComment(ctx, r, author); err != nil {
				return sum, err
			}
			sum.Comments++
		}
	}

	observability.Logger.InfoContext(ctx, "seed complete",
		slog.Int("users", sum.Users),
		slog.Int("recipes", sum.Recipes),
		slog.Int("comments", sum.Comments),
	)
	return sum, nil
}

// CreateUser persists a user with a fake name and DemoPassword.
func (s *Seeder) CreateUser(ctx context.Context, overrides ...func(*models.User)) (*models.User, error) {
	cost := bcrypt.DefaultCost
	if s.opts.FastHash {
		cost = bcrypt.MinCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), cost)
	if err != nil {
		return nil, err
	}
	first, last := s.faker.FirstName(), s.faker.LastName()
	u := &models.User{
		Name:     first + " " + last,
		Email:    strings.ToLower(fmt.Sprintf("%s.%s%d@example.com", first, last, s.faker.Number(100, 999))),
		Password: string(hashed),
		Role:     models.RoleUser,
	}
	for _, o := range overrides {
		o(u)
	}
	if err := s.db.WithContext(ctx).Create(u).Error; err != nil {
		return nil, fmt.Errorf("create user %s: %w", u.Email, err)
	}
	return u, nil
}

// CreateRecipe persists a recipe owned by owner.
func (s *Seeder) CreateRecipe(ctx context.Context, owner *models.User) (*models.Recipe, error) {
	r := &models.Recipe{
		Title:        s.dish(),
		Descriptions: s.faker.Paragraph(1, 3, 12, " "),
		ImageURL:     fmt.Sprintf("https://picsum.photos/seed/%s/800/600", s.faker.UUID()),
		CreatedByID:  owner.ID,
		CreatedAt:    s.tick(),
	}
	if err := s.db.WithContext(ctx).Omit("CreatedBy").Create(r).Error; err != nil {
		return nil, fmt.Errorf("create recipe: %w", err)
	}
	return r, nil
}

func (s *Seeder) createIngredients(ctx context.Context, r *models.Recipe, n int) (int, error) {
	rows := make([]models.Ingredient, 0, n)
	for range n {
		rows = append(rows, models.Ingredient{
			RecipeID:  r.ID,
			Name:      s.ingredient(),
			Quantity:  fmt.Sprint(s.faker.Number(1, 500)),
			Unit:      s.faker.RandomString(units),
			CreatedAt: s.tick(),
		})
	}
	if err := s.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return 0, fmt.Errorf("create ingredients: %w", err)
	}
	return len(rows), nil
}

func (s *Seeder) createSteps(ctx context.Context, r *models.Recipe, n int) (int, error) {
	rows := make([]models.Step, 0, n)
	for range n {
		rows = append(rows, models.Step{
			RecipeID:        r.ID,
			InstructionText: s.faker.Sentence(8),
			CreatedAt:       s.tick(),
		})
	}
	if err := s.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return 0, fmt.Errorf("create steps: %w", err)
	}
	return len(rows), nil
}

func (s *Seeder) createComment(ctx context.Context, r *models.Recipe, author *models.User) error {
	c := &models.Comment{
		RecipeID:  r.ID,
		UserID:    author.ID,
		Content:   s.faker.Sentence(10),
		CreatedAt: s.tick(),
	}
	if err := s.db.WithContext(ctx).Omit("User").Create(c).Error; err != nil {
		return fmt.Errorf("create comment: %w", err)
	}
	return nil
}

func (s *Seeder) dish() string {
	switch s.faker.Number(0, 3) {
	case 0:
		return s.faker.Breakfast()
	case 1:
		return s.faker.Lunch()
	case 2:
		return s.faker.Dinner()
	default:
		return s.faker.Dessert()
	}
}

func (s *Seeder) ingredient() string {
	if s.faker.Bool() {
		return s.faker.Fruit()
	}
	return s.faker.Vegetable()
}

// tick hands out strictly increasing timestamps so list order matches
// creation order.
func (s *Seeder) tick() time.Time {
	s.clock = s.clock.Add(time.Minute)
	return s.clock
}

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Recipe is the root of the recipe aggregate. Its ingredients and steps are
// separate entities that point back at it.
type Recipe struct {
	ID           string    `gorm:"primaryKey;size:36" json:"_id"`
	Title        string    `gorm:"not null" json:"title"`
	Descriptions string    `gorm:"type:text;not null" json:"descriptions"`
	ImageURL     string    `gorm:"not null" json:"image_url"`
	CreatedByID  string    `gorm:"size:36;not null;index" json:"-"`
	CreatedBy    User      `gorm:"foreignKey:CreatedByID" json:"created_by"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (r *Recipe) BeforeCreate(_ *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// OwnerID returns the creator's identity whether or not the creator was
// populated.
func (r *Recipe) OwnerID() string {
	if r.CreatedBy.ID != "" {
		return r.CreatedBy.ID
	}
	return r.CreatedByID
}

// RecipeInput is the payload of recipe create and update.
type RecipeInput struct {
	Title        string `json:"title"`
	Descriptions string `json:"descriptions"`
	ImageURL     string `json:"image_url"`
}

// Ingredient belongs to exactly one recipe. Quantity is free text.
type Ingredient struct {
	ID        string    `gorm:"primaryKey;size:36" json:"_id"`
	RecipeID  string    `gorm:"size:36;not null;index" json:"recipe_id"`
	Name      string    `gorm:"not null" json:"name"`
	Quantity  string    `gorm:"not null" json:"quantity"`
	Unit      string    `gorm:"not null" json:"unit"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"-"`
}

func (i *Ingredient) BeforeCreate(_ *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

// IngredientInput is the payload of ingredient create and update. RecipeID is
// only sent on create.
type IngredientInput struct {
	RecipeID string `json:"recipe_id,omitempty"`
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
	Unit     string `json:"unit"`
}

// Step is one instruction of a recipe. Its position is the order in which
// the API lists it.
type Step struct {
	ID              string    `gorm:"primaryKey;size:36" json:"_id"`
	RecipeID        string    `gorm:"size:36;not null;index" json:"recipe_id"`
	InstructionText string    `gorm:"type:text;not null" json:"instruction_text"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"-"`
}

func (s *Step) BeforeCreate(_ *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// StepInput is the payload of step create and update.
type StepInput struct {
	RecipeID        string `json:"recipe_id,omitempty"`
	InstructionText string `json:"instruction_text"`
}

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Comment represents a comment on a recipe. The author is serialized under
// "user_id" as a populated {_id, name} object.
type Comment struct {
	ID        string    `gorm:"primaryKey;size:36" json:"_id"`
	RecipeID  string    `gorm:"size:36;not null;index" json:"recipe_id"`
	UserID    string    `gorm:"size:36;not null;index" json:"-"`
	User      User      `gorm:"foreignKey:UserID" json:"user_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (c *Comment) BeforeCreate(_ *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// AuthorID returns the author's identity whether or not the author was
// populated.
func (c *Comment) AuthorID() string {
	if c.User.ID != "" {
		return c.User.ID
	}
	return c.UserID
}

// AuthorName falls back to "Unknown" for comments whose author is gone.
func (c *Comment) AuthorName() string {
	if c.User.Name == "" {
		return "Unknown"
	}
	return c.User.Name
}

// CommentInput is the payload of comment create and update.
type CommentInput struct {
	RecipeID string `json:"recipe_id,omitempty"`
	Content  string `json:"content"`
}

// ImageUpload is the response of POST /api/image.
type ImageUpload struct {
	ImageURL string `json:"image_url"`
}

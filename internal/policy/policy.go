// Package policy decides which recipe and comment actions a session may
// perform. The CLI uses it to hide and refuse actions before any request is
// made; the reference API server uses the same rules to enforce them.
package policy

import (
	"cookbook/internal/models"
	"cookbook/internal/session"
)

// Action names one user intent.
type Action string

const (
	ListRecipes   Action = "list_recipes"
	CreateRecipe  Action = "create_recipe"
	EditRecipe    Action = "edit_recipe"
	DeleteRecipe  Action = "delete_recipe"
	ViewComments  Action = "view_comments"
	PostComment   Action = "post_comment"
	EditComment   Action = "edit_comment"
	DeleteComment Action = "delete_comment"
	// RemoveRow is dropping a saved ingredient or step while editing a recipe.
	RemoveRow     Action = "remove_row"
)

// Resource carries the ownership fields an action is judged against.
// OwnerID is the recipe's creator for recipe actions and the comment's
// author for comment actions. RecipeOwnerID is the creator of the recipe a
// comment belongs to.
type Resource struct {
	OwnerID       string
	RecipeOwnerID string
}

// Decision is the outcome of Decide.
type Decision struct {
	Allowed bool
	Reason  string
}

// Err returns nil for an allowed decision and an AUTHORIZATION_DENIED error otherwise.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return models.NewAuthorizationDenied(d.Reason)
}

const (
	reasonSignIn        = "You must sign in first"
	reasonOwnRecipe     = "You cannot comment on your own recipe"
	reasonNotOwner      = "Only the recipe's creator or an admin can edit it"
	reasonNotAuthor     = "Only the comment's author or an admin can edit it"
	reasonAdminOnly     = "Only an admin can do this"
	reasonUnknownAction = "Unknown action"
)

func allow() Decision { return Decision{Allowed: true} }

func deny(reason string) Decision { return Decision{Reason: reason} }

// Decide evaluates action for s against res.
func Decide(s session.Session, action Action, res Resource) Decision {
	if action == ViewComments {
		return allow()
	}
	if !s.Authenticated() {
		return deny(reasonSignIn)
	}

	switch action {
	case ListRecipes, CreateRecipe:
		return allow()
	case EditRecipe:
		if s.IsAdmin() || owns(s, res.OwnerID) {
			return allow()
		}
		return deny(reasonNotOwner)
	case DeleteRecipe, DeleteComment, RemoveRow:
		if s.IsAdmin() {
			return allow()
		}
		return deny(reasonAdminOnly)
	case PostComment:
		if owns(s, res.RecipeOwnerID) {
			return deny(reasonOwnRecipe)
		}
		return allow()
	case EditComment:
		if s.IsAdmin() || owns(s, res.OwnerID) {
			return allow()
		}
		return deny(reasonNotAuthor)
	default:
		return deny(reasonUnknownAction)
	}
}

// Allowed is shorthand for Decide(...).Allowed.
func Allowed(s session.Session, action Action, res Resource) bool {
	return Decide(s, action, res).Allowed
}

func owns(s session.Session, ownerID string) bool {
	return s.UserID != "" && s.UserID == ownerID
}

package server

import (
	"io"

	"cookbook/internal/models"
	"cookbook/internal/repository"
	"cookbook/internal/service"

	"github.com/gofiber/fiber/v2"
)

func parseBody(c *fiber.Ctx, dest any) error {
	if err := c.BodyParser(dest); err != nil {
		return models.NewValidationError("Invalid request body")
	}
	return nil
}

// Signup handles POST /api/users/signup
func (s *Server) Signup(c *fiber.Ctx) error {
	var req models.Registration
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	resp, err := s.userService.Signup(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// Login handles POST /api/users/login
func (s *Server) Login(c *fiber.Ctx) error {
	var req models.Credentials
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	resp, err := s.userService.Login(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// UploadImage handles POST /api/image with the file in the "image" field.
func (s *Server) UploadImage(c *fiber.Ctx) error {
	fh, err := c.FormFile("image")
	if err != nil {
		return respondError(c, models.NewValidationError("No file uploaded"))
	}
	f, err := fh.Open()
	if err != nil {
		return respondError(c, models.NewInternalError(err))
	}
	defer f.Close()

	content, err := io.ReadAll(io.LimitReader(f, s.imageService.MaxUploadBytes()+1))
	if err != nil {
		return respondError(c, models.NewInternalError(err))
	}
	out, err := s.imageService.Upload(c.UserContext(), fh.Filename, content)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

func (s *Server) ListRecipes(c *fiber.Ctx) error {
	recipes, err := s.recipeService.ListRecipes(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(recipes)
}

func (s *Server) GetRecipe(c *fiber.Ctx) error {
	recipe, err := s.recipeService.GetRecipe(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(recipe)
}

func (s *Server) CreateRecipe(c *fiber.Ctx) error {
	var in models.RecipeInput
	if err := parseBody(c, &in); err != nil {
		return respondError(c, err)
	}
	recipe, err := s.recipeService.CreateRecipe(c.UserContext(), actor(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(recipe)
}

func (s *Server) UpdateRecipe(c *fiber.Ctx) error {
	var in models.RecipeInput
	if err := parseBody(c, &in); err != nil {
		return respondError(c, err)
	}
	recipe, err := s.recipeService.UpdateRecipe(c.UserContext(), actor(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(recipe)
}

func (s *Server) DeleteRecipe(c *fiber.Ctx) error {
	if err := s.recipeService.DeleteRecipe(c.UserContext(), actor(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Recipe deleted"})
}

// childRoutes mounts list/get/create/update/delete for ingredients or steps.
// Reads are public; writes need auth.
func childRoutes[T repository.ChildRow, In any](r fiber.Router, svc *service.ChildService[T, In], auth fiber.Handler) {
	r.Get("/", func(c *fiber.Ctx) error {
		rows, err := svc.List(c.UserContext(), c.Query("recipe_id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(rows)
	})
	r.Get("/:id", func(c *fiber.Ctx) error {
		row, err := svc.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(row)
	})
	r.Post("/", auth, func(c *fiber.Ctx) error {
		var in In
		if err := parseBody(c, &in); err != nil {
			return respondError(c, err)
		}
		row, err := svc.Create(c.UserContext(), actor(c), in)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(row)
	})
	r.Put("/:id", auth, func(c *fiber.Ctx) error {
		var in In
		if err := parseBody(c, &in); err != nil {
			return respondError(c, err)
		}
		row, err := svc.Update(c.UserContext(), actor(c), c.Params("id"), in)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(row)
	})
	r.Delete("/:id", auth, func(c *fiber.Ctx) error {
		if err := svc.Delete(c.UserContext(), actor(c), c.Params("id")); err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"message": "Deleted"})
	})
}

// ListComments handles GET /api/comments?recipe_id=
func (s *Server) ListComments(c *fiber.Ctx) error {
	comments, err := s.commentService.ListComments(c.UserContext(), c.Query("recipe_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(comments)
}

func (s *Server) CreateComment(c *fiber.Ctx) error {
	var in models.CommentInput
	if err := parseBody(c, &in); err != nil {
		return respondError(c, err)
	}
	comment, err := s.commentService.CreateComment(c.UserContext(), actor(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

func (s *Server) UpdateComment(c *fiber.Ctx) error {
	var in models.CommentInput
	if err := parseBody(c, &in); err != nil {
		return respondError(c, err)
	}
	comment, err := s.commentService.UpdateComment(c.UserContext(), actor(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(comment)
}

func (s *Server) DeleteComment(c *fiber.Ctx) error {
	if err := s.commentService.DeleteComment(c.UserContext(), actor(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Comment deleted"})
}

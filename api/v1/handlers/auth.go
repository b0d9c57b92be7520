package handlers

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	strconv2 "github.com/savsgio/gotils/strconv"
	"golang.org/x/crypto/bcrypt"

	"evote/internal/models"
	"evote/internal/session"
	"evote/internal/store"
	"evote/pkg/third/google"
)

// UserStore is the account persistence the auth surface needs,
// satisfied by *store.Store.
type UserStore interface {
	UserByID(ctx context.Context, id int) (*models.User, error)
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	UserByGoogleID(ctx context.Context, googleID string) (*models.User, error)
	CreateUser(ctx context.Context, u *models.User) error
	UpdateUser(ctx context.Context, id int, firstName, lastName, email string) error
}

type AuthHandler struct {
	users       UserStore
	sessions    *session.Manager
	oauth       *google.Client
	frontendURL string
	validate    *validator.Validate
}

func RegisterAuth(r fiber.Router, users UserStore, sessions *session.Manager, oauth *google.Client, frontendURL string) {
	h := &AuthHandler{
		users:       users,
		sessions:    sessions,
		oauth:       oauth,
		frontendURL: frontendURL,
		validate:    validator.New(),
	}

	r.Post("/register", h.Register)
	r.Post("/login", h.Login)
	r.Get("/logout", h.Logout)
	r.Get("/user", h.CurrentUser)
	r.Put("/user", h.UpdateUser)
	r.Get("/google", h.GoogleRedirect)
	r.Get("/google/callback", h.GoogleCallback)
}

type registerRequest struct {
	FirstName   string  `json:"firstName" validate:"required"`
	LastName    string  `json:"lastName" validate:"required"`
	Email       string  `json:"email" validate:"required,email"`
	Password    string  `json:"password" validate:"required,min=6"`
	PhoneNumber *string `json:"phoneNumber" validate:"omitempty,e164"`
}

func userPayload(u *models.User) fiber.Map {
	return fiber.Map{
		"id":          u.Id,
		"email":       u.Email,
		"firstName":   u.FirstName,
		"lastName":    u.LastName,
		"displayName": u.DisplayName(),
	}
}

// Register creates a local email/password account and logs it in.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid JSON"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	_, err := h.users.UserByEmail(c.Context(), req.Email)
	switch {
	case err == nil:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Email already in use."})
	case !errors.Is(err, store.ErrNotFound):
		return respondErr(c, err)
	}

	hash, err := bcrypt.GenerateFromPassword(strconv2.S2B(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return respondErr(c, errors.Wrap(err, "hash password"))
	}

	u := &models.User{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Password:    string(hash),
		PhoneNumber: req.PhoneNumber,
	}
	if err := h.users.CreateUser(c.Context(), u); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Email already in use."})
		}
		return respondErr(c, err)
	}

	if err := h.sessions.Login(c, u.Id); err != nil {
		return respondErr(c, errors.Wrap(err, "open session"))
	}

	log.Info().Int("user_id", u.Id).Msg("user registered")
	return c.JSON(fiber.Map{
		"message": "Registration successful",
		"user":    userPayload(u),
	})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login authenticates a local account. Google-only accounts have no
// password hash and get pointed at the OAuth flow instead.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid JSON"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	u, err := h.users.UserByEmail(c.Context(), req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Incorrect email or password."})
		}
		return respondErr(c, err)
	}
	if u.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Please log in with Google."})
	}
	if bcrypt.CompareHashAndPassword(strconv2.S2B(u.Password), strconv2.S2B(req.Password)) != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Incorrect email or password."})
	}

	if err := h.sessions.Login(c, u.Id); err != nil {
		return respondErr(c, errors.Wrap(err, "open session"))
	}

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"user":    userPayload(u),
	})
}

// CurrentUser returns the viewer behind the session cookie.
func (h *AuthHandler) CurrentUser(c *fiber.Ctx) error {
	uid, ok := h.sessions.UserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Unauthorized"})
	}
	u, err := h.users.UserByID(c.Context(), uid)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Session outlived the account.
			_ = h.sessions.Logout(c)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Unauthorized"})
		}
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"user": userPayload(u)})
}

type updateUserRequest struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
}

// UpdateUser applies the account-settings form.
func (h *AuthHandler) UpdateUser(c *fiber.Ctx) error {
	uid, ok := h.sessions.UserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Unauthorized"})
	}

	var req updateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid JSON"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	if err := h.users.UpdateUser(c.Context(), uid, req.FirstName, req.LastName, req.Email); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Email already in use."})
		}
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"message": "User updated successfully"})
}

// Logout tears the session down.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.sessions.Logout(c); err != nil {
		return respondErr(c, errors.Wrap(err, "destroy session"))
	}
	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}

const oauthStateKey = "oauth_state"

// GoogleRedirect starts the OAuth code flow.
func (h *AuthHandler) GoogleRedirect(c *fiber.Ctx) error {
	if !h.oauth.Enabled() {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"message": "Google sign-in is not configured.",
		})
	}
	state := uuid.NewString()
	if err := h.sessions.SetString(c, oauthStateKey, state); err != nil {
		return respondErr(c, errors.Wrap(err, "stash oauth state"))
	}
	return c.Redirect(h.oauth.AuthURL(state), fiber.StatusTemporaryRedirect)
}

// GoogleCallback finishes the flow: verifies state, exchanges the code,
// and creates the account on first login. Local and Google accounts
// with the same email stay separate.
func (h *AuthHandler) GoogleCallback(c *fiber.Ctx) error {
	if !h.oauth.Enabled() {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"message": "Google sign-in is not configured.",
		})
	}

	state := c.Query("state")
	if state == "" || state != h.sessions.PopString(c, oauthStateKey) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid OAuth state."})
	}

	profile, err := h.oauth.Exchange(c.Context(), c.Query("code"))
	if err != nil {
		log.Warn().Err(err).Msg("google exchange failed")
		return c.Redirect(h.frontendURL, fiber.StatusTemporaryRedirect)
	}

	u, err := h.users.UserByGoogleID(c.Context(), profile.ID)
	if errors.Is(err, store.ErrNotFound) {
		u = &models.User{
			GoogleId:  &profile.ID,
			FirstName: profile.GivenName,
			LastName:  profile.FamilyName,
			Email:     profile.Email,
		}
		err = h.users.CreateUser(c.Context(), u)
	}
	if err != nil {
		return respondErr(c, err)
	}

	if err := h.sessions.Login(c, u.Id); err != nil {
		return respondErr(c, errors.Wrap(err, "open session"))
	}
	return c.Redirect(h.frontendURL, fiber.StatusTemporaryRedirect)
}

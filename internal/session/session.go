package session

import (
	"time"

	"github.com/gofiber/fiber/v2"
	fibersession "github.com/gofiber/fiber/v2/middleware/session"
	"github.com/gofiber/storage/redis/v3"
)

const userKey = "user_id"

// Manager owns the session store and the viewer lookup every
// authenticated route goes through.
type Manager struct {
	store *fibersession.Store
}

// New builds the session store. With a redis URL sessions survive
// restarts and are shared across instances; without one they live in
// process memory, which is fine for development.
func New(redisURL string, secure bool) *Manager {
	cfg := fibersession.Config{
		Expiration:     24 * time.Hour,
		KeyLookup:      "cookie:evote_session",
		CookieHTTPOnly: true,
		CookieSecure:   secure,
		CookieSameSite: "Lax",
	}
	if secure {
		// Frontend and API live on different origins in production.
		cfg.CookieSameSite = "None"
	}
	if redisURL != "" {
		cfg.Storage = redis.New(redis.Config{URL: redisURL})
	}
	return &Manager{store: fibersession.New(cfg)}
}

func (m *Manager) Login(c *fiber.Ctx, userID int) error {
	sess, err := m.store.Get(c)
	if err != nil {
		return err
	}
	sess.Set(userKey, userID)
	return sess.Save()
}

func (m *Manager) Logout(c *fiber.Ctx) error {
	sess, err := m.store.Get(c)
	if err != nil {
		return err
	}
	return sess.Destroy()
}

// UserID returns the authenticated user's id, if any.
func (m *Manager) UserID(c *fiber.Ctx) (int, bool) {
	sess, err := m.store.Get(c)
	if err != nil {
		return 0, false
	}
	id, ok := sess.Get(userKey).(int)
	return id, ok
}

// SetString stashes a short-lived value on the session, used for the
// OAuth state parameter.
func (m *Manager) SetString(c *fiber.Ctx, key, value string) error {
	sess, err := m.store.Get(c)
	if err != nil {
		return err
	}
	sess.Set(key, value)
	return sess.Save()
}

// PopString reads and removes a value stashed with SetString.
func (m *Manager) PopString(c *fiber.Ctx, key string) string {
	sess, err := m.store.Get(c)
	if err != nil {
		return ""
	}
	value, _ := sess.Get(key).(string)
	sess.Delete(key)
	_ = sess.Save()
	return value
}

// RequireAuth rejects unauthenticated requests before they reach a
// handler.
func (m *Manager) RequireAuth(c *fiber.Ctx) error {
	if _, ok := m.UserID(c); !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Unauthorized",
		})
	}
	return c.Next()
}

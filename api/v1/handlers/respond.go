package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"evote/internal/poll"
)

// respondErr maps the reconciliation taxonomy onto HTTP. Each kind
// keeps a distinct message so the frontend can tell "already voted"
// apart from "connect your wallet" apart from a plain failure.
func respondErr(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, poll.ErrValidation):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": err.Error(),
		})
	case errors.Is(err, poll.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Unauthorized",
		})
	case errors.Is(err, poll.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Poll not found.",
		})
	case errors.Is(err, poll.ErrAlreadyVoted):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": "You have already voted on this poll.",
		})
	case errors.Is(err, poll.ErrLedgerUnavailable):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"message": "Blockchain network unavailable. Connect a wallet and try again.",
		})
	case errors.Is(err, poll.ErrLedgerRejected):
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"message": "Blockchain transaction was rejected.",
		})
	default:
		log.Error().Stack().Err(err).Str("path", c.Path()).Msg("request failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal Server Error",
		})
	}
}

package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"evote/internal/models"
	"evote/internal/poll"
	"evote/internal/session"
)

type PollHandler struct {
	svc      *poll.Service
	sessions *session.Manager
	validate *validator.Validate
}

func RegisterPolls(r fiber.Router, svc *poll.Service, sessions *session.Manager) {
	h := &PollHandler{svc: svc, sessions: sessions, validate: validator.New()}

	r.Use(sessions.RequireAuth)

	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/:pollId", h.Get)
	r.Get("/:pollId/hasVoted", h.HasVoted)
	r.Post("/:pollId/vote", h.Vote)
	r.Get("/:pollId/results", h.Results)
}

// viewer builds the acting identity: user id from the session, wallet
// address from wherever the client put it. The wallet is self-reported
// and never checked against the account; contract receipts are keyed by
// address alone.
func (h *PollHandler) viewer(c *fiber.Ctx, wallet string) poll.Viewer {
	uid, _ := h.sessions.UserID(c)
	if wallet == "" {
		wallet = c.Query("address")
	}
	return poll.Viewer{UserID: uid, WalletAddress: wallet}
}

func (h *PollHandler) pollID(c *fiber.Ctx) (int, bool) {
	id, err := c.ParamsInt("pollId")
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

type createPollRequest struct {
	Title       string          `json:"title" validate:"required"`
	Description string          `json:"description"`
	Options     []string        `json:"options" validate:"required,min=2,dive,required"`
	Type        models.PollType `json:"type" validate:"required,oneof=normal blockchain"`
	// BlockchainId comes from the client's own wallet transaction; the
	// PollCreated event carries the id the contract assigned.
	BlockchainId *int64 `json:"blockchainId"`
	// CreateOnChain asks the server to submit the chain transaction
	// with its configured key instead, for clients without a wallet.
	CreateOnChain bool `json:"createOnChain"`
}

// Create handles POST /polls. For blockchain polls the ledger record
// must exist first; the relational row always references it, never the
// reverse.
func (h *PollHandler) Create(c *fiber.Ctx) error {
	var req createPollRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid JSON"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	input := poll.CreatePollInput{
		Title:        req.Title,
		Description:  req.Description,
		Options:      req.Options,
		Type:         req.Type,
		BlockchainID: req.BlockchainId,
	}

	if req.Type == models.PollTypeBlockchain && req.BlockchainId == nil && req.CreateOnChain {
		id, err := h.svc.CreateLedgerPoll(c.Context(), input)
		if err != nil {
			return respondErr(c, err)
		}
		input.BlockchainID = &id
	}

	viewer := h.viewer(c, "")
	p, options, err := h.svc.CreatePoll(c.Context(), viewer.UserID, input)
	if err != nil {
		return respondErr(c, err)
	}

	log.Info().Int("poll_id", p.Id).Int("user_id", viewer.UserID).
		Str("type", string(p.Type)).Msg("poll created")
	return c.JSON(fiber.Map{
		"poll":    p,
		"options": options,
	})
}

// List handles GET /polls.
func (h *PollHandler) List(c *fiber.Ctx) error {
	polls, err := h.svc.ListPolls(c.Context())
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(polls)
}

// Get handles GET /polls/:pollId, the normalized view of either kind.
func (h *PollHandler) Get(c *fiber.Ctx) error {
	id, ok := h.pollID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid poll id."})
	}
	view, err := h.svc.Resolve(c.Context(), id)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(view)
}

// Results handles GET /polls/:pollId/results. Same normalized view;
// kept as its own route for the results page.
func (h *PollHandler) Results(c *fiber.Ctx) error {
	return h.Get(c)
}

// HasVoted handles GET /polls/:pollId/hasVoted. Blockchain polls take
// the wallet in the address query parameter.
func (h *PollHandler) HasVoted(c *fiber.Ctx) error {
	id, ok := h.pollID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid poll id."})
	}
	voted, err := h.svc.HasVoted(c.Context(), id, h.viewer(c, ""))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"hasVoted": voted})
}

type voteRequest struct {
	// Pointer so index 0 survives required validation.
	OptionIndex   *int   `json:"optionIndex" validate:"required,min=0"`
	WalletAddress string `json:"walletAddress"`
}

// Vote handles POST /polls/:pollId/vote.
func (h *PollHandler) Vote(c *fiber.Ctx) error {
	id, ok := h.pollID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid poll id."})
	}

	var req voteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid JSON"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	viewer := h.viewer(c, req.WalletAddress)
	if err := h.svc.SubmitVote(c.Context(), id, viewer, *req.OptionIndex); err != nil {
		return respondErr(c, err)
	}

	log.Info().Int("poll_id", id).Int("user_id", viewer.UserID).Msg("vote recorded")
	return c.JSON(fiber.Map{"message": "Vote recorded successfully."})
}

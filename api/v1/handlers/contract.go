package handlers

import (
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"

	"evote/pkg/ledger"
)

type ContractHandler struct {
	address string
}

// RegisterContract serves the contract address and ABI that browser
// wallets need before any client-side ledger call.
func RegisterContract(r fiber.Router, address string) {
	h := &ContractHandler{address: address}
	r.Get("/contract-info", h.Info)
}

func (h *ContractHandler) Info(c *fiber.Ctx) error {
	if h.address == "" {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Contract address is not configured.",
		})
	}
	return c.JSON(fiber.Map{
		"contractAddress": h.address,
		"abi":             json.RawMessage(ledger.ContractABI),
	})
}

package ledger

import (
	"strings"

	"github.com/pkg/errors"
)

// The two failure modes callers can act on: unreachable means the RPC
// endpoint or wallet is missing, rejected means the chain executed the
// call and refused it.
var (
	ErrUnavailable  = errors.New("ledger: unreachable")
	ErrRejected     = errors.New("ledger: transaction rejected")
	ErrAlreadyVoted = errors.New("ledger: already voted")
)

// The contract reverts with this string on a duplicate vote.
const alreadyVotedRevert = "Already voted"

// classify maps a raw go-ethereum error onto the sentinel taxonomy.
// Revert reasons surface in the error text of eth_call / gas estimation.
func classify(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, alreadyVotedRevert):
		return errors.WithMessage(ErrAlreadyVoted, msg)
	case strings.Contains(msg, "execution reverted"), strings.Contains(msg, "revert"):
		return errors.WithMessage(ErrRejected, msg)
	default:
		return errors.WithMessage(ErrUnavailable, msg)
	}
}

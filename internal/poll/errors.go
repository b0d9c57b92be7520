package poll

import (
	"github.com/pkg/errors"

	"evote/internal/store"
	"evote/pkg/ledger"
)

// The error taxonomy every handler maps onto HTTP statuses. Each kind
// gets a distinct user-facing message so a voter can tell "you already
// voted" apart from "connect your wallet" apart from "server broke".
var (
	ErrUnauthorized      = errors.New("unauthorized")
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("poll not found")
	ErrAlreadyVoted      = errors.New("already voted")
	ErrLedgerUnavailable = errors.New("ledger unavailable")
	ErrLedgerRejected    = errors.New("ledger rejected")
)

// mapLedgerErr folds the ledger client's taxonomy into ours. The
// duplicate-vote revert becomes the same ErrAlreadyVoted the database
// path produces.
func mapLedgerErr(err error) error {
	switch {
	case errors.Is(err, ledger.ErrAlreadyVoted):
		return errors.WithMessage(ErrAlreadyVoted, err.Error())
	case errors.Is(err, ledger.ErrRejected):
		return errors.WithMessage(ErrLedgerRejected, err.Error())
	case errors.Is(err, ledger.ErrUnavailable):
		return errors.WithMessage(ErrLedgerUnavailable, err.Error())
	default:
		return err
	}
}

func mapStoreErr(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

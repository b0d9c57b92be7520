package poll

import (
	"context"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"evote/internal/models"
	"evote/internal/store"
	"evote/pkg/ledger"
)

// Viewer is the identity acting on a poll. WalletAddress is whatever
// the client reports and is independent of the application account; the
// contract keys vote receipts by address, not by user.
type Viewer struct {
	UserID        int
	WalletAddress string
}

// Store is the relational side of the reconciliation, satisfied by
// *store.Store.
type Store interface {
	PollByID(ctx context.Context, id int) (*models.Poll, error)
	Polls(ctx context.Context) ([]models.PollSummary, error)
	CreatePoll(ctx context.Context, p *models.Poll, options []string) (*models.Poll, []models.Option, error)
	PollOptions(ctx context.Context, pollID int) ([]models.OptionResult, error)
	OptionByPosition(ctx context.Context, pollID, position int) (*models.Option, error)
	HasVoted(ctx context.Context, userID, pollID int) (bool, error)
	InsertVote(ctx context.Context, userID, pollID, optionID int) error
}

// Ledger is the on-chain side, satisfied by *ledger.Client.
type Ledger interface {
	CreatePoll(ctx context.Context, title, description string, options []string) (int64, error)
	GetPoll(ctx context.Context, id int64) (ledger.PollInfo, error)
	GetOption(ctx context.Context, id, index int64) (ledger.OptionInfo, error)
	Vote(ctx context.Context, id, optionIndex int64) error
	HasVoted(ctx context.Context, id int64, voter string) (bool, error)
}

// Service decides, per poll, which backing store is authoritative and
// normalizes both shapes into PollView.
type Service struct {
	store  Store
	ledger Ledger
}

// NewService wires the reconciliation layer. led may be nil when no RPC
// endpoint is configured; every ledger-backed operation then fails with
// ErrLedgerUnavailable instead of panicking or faking data.
func NewService(st Store, led Ledger) *Service {
	return &Service{store: st, ledger: led}
}

// CreatePollInput is the validated creation payload. For blockchain
// polls the ledger transaction has already happened and BlockchainID
// carries the id the contract assigned, so the relational row is always
// created after, and referencing, the ledger record.
type CreatePollInput struct {
	Title        string
	Description  string
	Options      []string
	Type         models.PollType
	BlockchainID *int64
}

func (in CreatePollInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return errors.WithMessage(ErrValidation, "title is required")
	}
	if !in.Type.Valid() {
		return errors.WithMessage(ErrValidation, "type must be normal or blockchain")
	}
	if len(in.Options) < 2 {
		return errors.WithMessage(ErrValidation, "a poll needs at least two options")
	}
	for _, opt := range in.Options {
		if strings.TrimSpace(opt) == "" {
			return errors.WithMessage(ErrValidation, "options must not be empty")
		}
	}
	if in.Type == models.PollTypeBlockchain && in.BlockchainID == nil {
		return errors.WithMessage(ErrValidation, "blockchain polls require the on-chain poll id")
	}
	return nil
}

// CreatePoll persists the poll and its options as one unit. Nothing is
// written when validation fails.
func (s *Service) CreatePoll(ctx context.Context, owner int, in CreatePollInput) (*models.Poll, []models.Option, error) {
	if err := in.validate(); err != nil {
		return nil, nil, err
	}

	p := &models.Poll{
		UserId:      owner,
		Title:       in.Title,
		Description: in.Description,
		Type:        in.Type,
	}
	if in.Type == models.PollTypeBlockchain {
		p.BlockchainId = in.BlockchainID
	}
	return s.store.CreatePoll(ctx, p, in.Options)
}

// CreateLedgerPoll submits the on-chain creation for callers without
// their own wallet and returns the contract-assigned id, which then
// goes into CreatePoll as BlockchainID.
func (s *Service) CreateLedgerPoll(ctx context.Context, in CreatePollInput) (int64, error) {
	in.Type = models.PollTypeBlockchain
	// BlockchainID is what this call produces; skip that check.
	probe := in
	var zero int64
	probe.BlockchainID = &zero
	if err := probe.validate(); err != nil {
		return 0, err
	}
	if s.ledger == nil {
		return 0, errors.WithMessage(ErrLedgerUnavailable, "no ledger client configured")
	}
	id, err := s.ledger.CreatePoll(ctx, in.Title, in.Description, in.Options)
	if err != nil {
		return 0, mapLedgerErr(err)
	}
	return id, nil
}

// ListPolls returns every poll with its owner's name, both kinds mixed.
func (s *Service) ListPolls(ctx context.Context) ([]models.PollSummary, error) {
	return s.store.Polls(ctx)
}

// Resolve produces the normalized view for one poll, reading options
// and tallies from whichever store the poll's type declares
// authoritative.
func (s *Service) Resolve(ctx context.Context, pollID int) (*PollView, error) {
	p, err := s.store.PollByID(ctx, pollID)
	if err != nil {
		return nil, mapStoreErr(err)
	}

	if p.Type == models.PollTypeBlockchain {
		return s.resolveLedger(ctx, p)
	}

	options, err := s.store.PollOptions(ctx, p.Id)
	if err != nil {
		return nil, err
	}
	return viewFromStore(p, options), nil
}

func (s *Service) resolveLedger(ctx context.Context, p *models.Poll) (*PollView, error) {
	if s.ledger == nil {
		return nil, errors.WithMessage(ErrLedgerUnavailable, "no ledger client configured")
	}
	if p.BlockchainId == nil {
		return nil, errors.Errorf("blockchain poll %d has no ledger reference", p.Id)
	}

	info, err := s.ledger.GetPoll(ctx, *p.BlockchainId)
	if err != nil {
		return nil, mapLedgerErr(err)
	}

	options := make([]ledger.OptionInfo, 0, info.OptionCount)
	for i := int64(0); i < info.OptionCount; i++ {
		opt, err := s.ledger.GetOption(ctx, *p.BlockchainId, i)
		if err != nil {
			return nil, mapLedgerErr(err)
		}
		options = append(options, opt)
	}
	return viewFromLedger(p, info, options), nil
}

// HasVoted reports whether the viewer already voted on the poll. For
// blockchain polls the receipt is keyed by wallet address; without a
// wallet there is nothing to check and the caller should prompt for a
// connection.
func (s *Service) HasVoted(ctx context.Context, pollID int, viewer Viewer) (bool, error) {
	p, err := s.store.PollByID(ctx, pollID)
	if err != nil {
		return false, mapStoreErr(err)
	}

	if p.Type != models.PollTypeBlockchain {
		return s.store.HasVoted(ctx, viewer.UserID, p.Id)
	}

	if s.ledger == nil {
		return false, errors.WithMessage(ErrLedgerUnavailable, "no ledger client configured")
	}
	if p.BlockchainId == nil {
		return false, errors.Errorf("blockchain poll %d has no ledger reference", p.Id)
	}
	if !common.IsHexAddress(viewer.WalletAddress) {
		return false, errors.WithMessage(ErrLedgerUnavailable, "connect a wallet to check vote status")
	}

	voted, err := s.ledger.HasVoted(ctx, *p.BlockchainId, viewer.WalletAddress)
	if err != nil {
		return false, mapLedgerErr(err)
	}
	return voted, nil
}

// SubmitVote records one vote. The database path pre-checks for a clean
// ErrAlreadyVoted but relies on the votes unique constraint to close
// the race between concurrent submits; the ledger path delegates
// uniqueness to the contract entirely.
func (s *Service) SubmitVote(ctx context.Context, pollID int, viewer Viewer, optionIndex int) error {
	p, err := s.store.PollByID(ctx, pollID)
	if err != nil {
		return mapStoreErr(err)
	}

	if p.Type == models.PollTypeBlockchain {
		if s.ledger == nil {
			return errors.WithMessage(ErrLedgerUnavailable, "no ledger client configured")
		}
		if p.BlockchainId == nil {
			return errors.Errorf("blockchain poll %d has no ledger reference", p.Id)
		}
		if err := s.ledger.Vote(ctx, *p.BlockchainId, int64(optionIndex)); err != nil {
			return mapLedgerErr(err)
		}
		return nil
	}

	voted, err := s.store.HasVoted(ctx, viewer.UserID, p.Id)
	if err != nil {
		return err
	}
	if voted {
		return ErrAlreadyVoted
	}

	opt, err := s.store.OptionByPosition(ctx, p.Id, optionIndex)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return errors.WithMessage(ErrNotFound, "no such option")
		}
		return err
	}

	if err := s.store.InsertVote(ctx, viewer.UserID, p.Id, opt.Id); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			// Lost the race to our own earlier submit.
			return ErrAlreadyVoted
		}
		return err
	}
	return nil
}

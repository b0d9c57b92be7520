// Package polltest provides in-memory fakes for the reconciliation
// layer's store and ledger contracts, with the same uniqueness
// semantics the real backends enforce.
package polltest

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"evote/internal/models"
	"evote/internal/store"
	"evote/pkg/ledger"
)

// Store implements poll.Store and the auth surface's UserStore on maps
// guarded by one mutex, so concurrency tests exercise real interleaving
// against a consistent uniqueness check.
type Store struct {
	mu         sync.Mutex
	nextUser   int
	nextPoll   int
	nextOption int
	nextVote   int
	users      map[int]*models.User
	polls      map[int]*models.Poll
	options    map[int][]models.Option
	votes      []models.Vote
}

func NewStore() *Store {
	return &Store{
		nextUser:   1,
		nextPoll:   1,
		nextOption: 1,
		nextVote:   1,
		users:      make(map[int]*models.User),
		polls:      make(map[int]*models.Poll),
		options:    make(map[int][]models.Option),
	}
}

func (s *Store) CreateUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ex := range s.users {
		if ex.Email == u.Email {
			return store.ErrDuplicate
		}
		if u.GoogleId != nil && ex.GoogleId != nil && *ex.GoogleId == *u.GoogleId {
			return store.ErrDuplicate
		}
	}
	u.Id = s.nextUser
	s.nextUser++
	u.CreatedAt = time.Now()
	stored := *u
	s.users[u.Id] = &stored
	return nil
}

func (s *Store) UserByID(_ context.Context, id int) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *Store) UserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) UserByGoogleID(_ context.Context, googleID string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.GoogleId != nil && *u.GoogleId == googleID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) UpdateUser(_ context.Context, id int, firstName, lastName, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return store.ErrNotFound
	}
	for _, ex := range s.users {
		if ex.Id != id && ex.Email == email {
			return store.ErrDuplicate
		}
	}
	u.FirstName, u.LastName, u.Email = firstName, lastName, email
	return nil
}

func (s *Store) CreatePoll(_ context.Context, p *models.Poll, options []string) (*models.Poll, []models.Option, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.Id = s.nextPoll
	s.nextPoll++
	p.CreatedAt = time.Now()
	stored := *p
	s.polls[p.Id] = &stored

	created := make([]models.Option, 0, len(options))
	for i, text := range options {
		opt := models.Option{Id: s.nextOption, PollId: p.Id, Text: text, Position: i}
		s.nextOption++
		created = append(created, opt)
	}
	s.options[p.Id] = created
	return p, created, nil
}

func (s *Store) PollByID(_ context.Context, id int) (*models.Poll, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.polls[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *Store) Polls(_ context.Context) ([]models.PollSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.PollSummary, 0, len(s.polls))
	for _, p := range s.polls {
		sum := models.PollSummary{Poll: *p}
		if u, ok := s.users[p.UserId]; ok {
			sum.FirstName, sum.LastName = u.FirstName, u.LastName
		}
		out = append(out, sum)
	}
	return out, nil
}

func (s *Store) PollOptions(_ context.Context, pollID int) ([]models.OptionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.OptionResult, 0, len(s.options[pollID]))
	for _, opt := range s.options[pollID] {
		res := models.OptionResult{Option: opt}
		for _, v := range s.votes {
			if v.OptionId == opt.Id {
				res.Votes++
			}
		}
		out = append(out, res)
	}
	return out, nil
}

func (s *Store) OptionByPosition(_ context.Context, pollID, position int) (*models.Option, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, opt := range s.options[pollID] {
		if opt.Position == position {
			cp := opt
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) HasVoted(_ context.Context, userID, pollID int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasVoteLocked(userID, pollID), nil
}

func (s *Store) hasVoteLocked(userID, pollID int) bool {
	for _, v := range s.votes {
		if v.UserId == userID && v.PollId == pollID {
			return true
		}
	}
	return false
}

// InsertVote mirrors the UNIQUE (user_id, poll_id) constraint: the
// check and the append happen under one lock, exactly as atomic as the
// database makes them.
func (s *Store) InsertVote(_ context.Context, userID, pollID, optionID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hasVoteLocked(userID, pollID) {
		return store.ErrDuplicate
	}
	s.votes = append(s.votes, models.Vote{
		Id:        s.nextVote,
		UserId:    userID,
		OptionId:  optionID,
		PollId:    pollID,
		CreatedAt: time.Now(),
	})
	s.nextVote++
	return nil
}

// VoteCount reports stored votes for assertions.
func (s *Store) VoteCount(pollID int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, v := range s.votes {
		if v.PollId == pollID {
			n++
		}
	}
	return n
}

// PollCount reports stored polls for assertions.
func (s *Store) PollCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.polls)
}

// SeedUser inserts a user directly, bypassing the register flow.
func (s *Store) SeedUser(u models.User) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.Id = s.nextUser
	s.nextUser++
	s.users[u.Id] = &u
	cp := u
	return &cp
}

// SeedPoll inserts a poll and its options directly.
func (s *Store) SeedPoll(p models.Poll, options []string) *models.Poll {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.Id = s.nextPoll
	s.nextPoll++
	s.polls[p.Id] = &p
	opts := make([]models.Option, 0, len(options))
	for i, text := range options {
		opts = append(opts, models.Option{Id: s.nextOption, PollId: p.Id, Text: text, Position: i})
		s.nextOption++
	}
	s.options[p.Id] = opts
	cp := p
	return &cp
}

// SignerAddress is the fake server wallet; server-submitted votes are
// receipted under it.
const SignerAddress = "0x1111111111111111111111111111111111111111"

type chainPoll struct {
	title       string
	description string
	options     []string
	votes       []int64
	voters      map[string]bool
}

// Ledger implements poll.Ledger in memory. Flip Unreachable to make
// every call fail the way a missing wallet or dead RPC endpoint does.
type Ledger struct {
	mu          sync.Mutex
	Unreachable bool
	nextID      int64
	polls       map[int64]*chainPoll
}

func NewLedger() *Ledger {
	return &Ledger{nextID: 1, polls: make(map[int64]*chainPoll)}
}

// Seed installs a poll under a chosen on-chain id.
func (l *Ledger) Seed(id int64, title, description string, options []string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.polls[id] = &chainPoll{
		title:       title,
		description: description,
		options:     options,
		votes:       make([]int64, len(options)),
		voters:      make(map[string]bool),
	}
	if id >= l.nextID {
		l.nextID = id + 1
	}
}

func (l *Ledger) CreatePoll(_ context.Context, title, description string, options []string) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.Unreachable {
		return 0, ledger.ErrUnavailable
	}
	id := l.nextID
	l.nextID++
	l.polls[id] = &chainPoll{
		title:       title,
		description: description,
		options:     options,
		votes:       make([]int64, len(options)),
		voters:      make(map[string]bool),
	}
	return id, nil
}

func (l *Ledger) GetPoll(_ context.Context, id int64) (ledger.PollInfo, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.Unreachable {
		return ledger.PollInfo{}, ledger.ErrUnavailable
	}
	p, ok := l.polls[id]
	if !ok {
		return ledger.PollInfo{}, errors.WithMessage(ledger.ErrRejected, "poll does not exist")
	}
	return ledger.PollInfo{
		ID:          id,
		Creator:     SignerAddress,
		Title:       p.title,
		Description: p.description,
		OptionCount: int64(len(p.options)),
	}, nil
}

func (l *Ledger) GetOption(_ context.Context, id, index int64) (ledger.OptionInfo, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.Unreachable {
		return ledger.OptionInfo{}, ledger.ErrUnavailable
	}
	p, ok := l.polls[id]
	if !ok || index < 0 || index >= int64(len(p.options)) {
		return ledger.OptionInfo{}, errors.WithMessage(ledger.ErrRejected, "option does not exist")
	}
	return ledger.OptionInfo{Text: p.options[index], VoteCount: p.votes[index]}, nil
}

func (l *Ledger) Vote(_ context.Context, id, optionIndex int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.Unreachable {
		return ledger.ErrUnavailable
	}
	p, ok := l.polls[id]
	if !ok {
		return errors.WithMessage(ledger.ErrRejected, "poll does not exist")
	}
	if optionIndex < 0 || optionIndex >= int64(len(p.options)) {
		return errors.WithMessage(ledger.ErrRejected, "option does not exist")
	}
	if p.voters[SignerAddress] {
		return ledger.ErrAlreadyVoted
	}
	p.votes[optionIndex]++
	p.voters[SignerAddress] = true
	return nil
}

func (l *Ledger) HasVoted(_ context.Context, id int64, voter string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.Unreachable {
		return false, ledger.ErrUnavailable
	}
	p, ok := l.polls[id]
	if !ok {
		return false, errors.WithMessage(ledger.ErrRejected, "poll does not exist")
	}
	return p.voters[voter], nil
}

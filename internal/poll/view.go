package poll

import (
	"evote/internal/models"
	"evote/pkg/ledger"
)

// PollView is the one normalized shape both backing stores resolve
// into. Option indexes are store positions for normal polls and
// contract option indexes for blockchain polls; by construction they
// are the same numbering.
type PollView struct {
	ID           int             `json:"id"`
	Type         models.PollType `json:"type"`
	UserId       int             `json:"user_id"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	BlockchainId *int64          `json:"blockchain_id,omitempty"`
	Options      []OptionView    `json:"options"`
	TotalVotes   int             `json:"total_votes"`
}

type OptionView struct {
	// Id relational option id; zero for ledger-backed options, which
	// only exist as contract indexes
	Id    int    `json:"id,omitempty"`
	Index int    `json:"index"`
	Text  string `json:"text"`
	Votes int    `json:"votes_count"`
}

func viewFromStore(p *models.Poll, options []models.OptionResult) *PollView {
	v := &PollView{
		ID:           p.Id,
		Type:         p.Type,
		UserId:       p.UserId,
		Title:        p.Title,
		Description:  p.Description,
		BlockchainId: p.BlockchainId,
		Options:      make([]OptionView, 0, len(options)),
	}
	for _, opt := range options {
		v.Options = append(v.Options, OptionView{
			Id:    opt.Id,
			Index: opt.Position,
			Text:  opt.Text,
			Votes: opt.Votes,
		})
		v.TotalVotes += opt.Votes
	}
	return v
}

func viewFromLedger(p *models.Poll, info ledger.PollInfo, options []ledger.OptionInfo) *PollView {
	// Title and description come from the chain, not the relational
	// mirror; the ledger is authoritative for blockchain polls.
	v := &PollView{
		ID:           p.Id,
		Type:         p.Type,
		UserId:       p.UserId,
		Title:        info.Title,
		Description:  info.Description,
		BlockchainId: p.BlockchainId,
		Options:      make([]OptionView, 0, len(options)),
	}
	for i, opt := range options {
		v.Options = append(v.Options, OptionView{
			Index: i,
			Text:  opt.Text,
			Votes: int(opt.VoteCount),
		})
		v.TotalVotes += int(opt.VoteCount)
	}
	return v
}

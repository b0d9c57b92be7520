package models

import "time"

type Poll struct {
	Id int `json:"id" db:"id"`
	// UserId owning user
	UserId      int    `json:"user_id" db:"user_id"`
	Title       string `json:"title" db:"title"`
	Description string `json:"description" db:"description"`
	// Type enum
	//
	// PollTypeNormal PollTypeBlockchain
	Type PollType `json:"type" db:"type"`
	// BlockchainId on-chain poll id, set only for blockchain polls
	BlockchainId *int64 `json:"blockchain_id,omitempty" db:"blockchain_id"`
	// CreatedAt creation time
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// PollSummary is a poll row joined with its owner's name parts,
// the shape of the poll list endpoint.
type PollSummary struct {
	Poll
	FirstName string `json:"first_name" db:"first_name"`
	LastName  string `json:"last_name" db:"last_name"`
}

package models

type Option struct {
	Id     int `json:"id" db:"id"`
	PollId int `json:"poll_id" db:"poll_id"`
	// Text option label as shown on the ballot
	Text string `json:"text" db:"text"`
	// Position ordinal within the poll; for blockchain polls this must
	// equal the contract's option index
	Position int `json:"position" db:"position"`
}

// OptionResult is an option row with its aggregated vote count,
// produced by the results query.
type OptionResult struct {
	Option
	Votes int `json:"votes_count" db:"votes_count"`
}

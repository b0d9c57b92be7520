package models

import "time"

type Vote struct {
	Id int `json:"id" db:"id"`
	// UserId voting user
	UserId int `json:"user_id" db:"user_id"`
	// OptionId chosen option
	OptionId int `json:"option_id" db:"option_id"`
	// PollId poll the option belongs to; (user_id, poll_id) is unique
	// at the store level, one vote per user per poll
	PollId int `json:"poll_id" db:"poll_id"`
	// CreatedAt creation time
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

package models

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

type User struct {
	Id int `json:"id" db:"id"`
	// Public identifier, never the serial id
	UID pgtype.UUID `json:"uuid" db:"uuid"`
	// GoogleId links an OAuth identity; nil for local accounts
	GoogleId  *string `json:"-" db:"google_id"`
	FirstName string  `json:"firstName" db:"first_name"`
	LastName  string  `json:"lastName" db:"last_name"`
	Email     string  `json:"email" db:"email"`
	// Password bcrypt hash; empty for Google-only accounts
	Password    string    `json:"-" db:"password"`
	PhoneNumber *string   `json:"phoneNumber,omitempty" db:"phone_number"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// DisplayName is what the frontend shows in the header and poll list.
func (u *User) DisplayName() string {
	return u.FirstName + " " + u.LastName
}

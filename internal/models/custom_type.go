package models

type PollType string

const (
	// PollTypeNormal options and votes live in the relational store.
	PollTypeNormal PollType = "normal"
	// PollTypeBlockchain options and votes live on the ledger contract;
	// the relational row carries metadata plus the on-chain poll id.
	PollTypeBlockchain PollType = "blockchain"
)

func (t PollType) Valid() bool {
	return t == PollTypeNormal || t == PollTypeBlockchain
}

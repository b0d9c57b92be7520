package ledger

import "math/big"

// ContractABI is the PollContract interface as deployed on Sepolia.
// Served verbatim by /contract-info so browser wallets can bind the
// same contract client-side.
const ContractABI = `[
	{
		"type": "function",
		"name": "createPoll",
		"stateMutability": "nonpayable",
		"inputs": [
			{"name": "_title", "type": "string"},
			{"name": "_description", "type": "string"},
			{"name": "_options", "type": "string[]"}
		],
		"outputs": []
	},
	{
		"type": "function",
		"name": "getPoll",
		"stateMutability": "view",
		"inputs": [{"name": "_pollId", "type": "uint256"}],
		"outputs": [
			{"name": "id", "type": "uint256"},
			{"name": "creator", "type": "address"},
			{"name": "title", "type": "string"},
			{"name": "description", "type": "string"},
			{"name": "optionCount", "type": "uint256"}
		]
	},
	{
		"type": "function",
		"name": "getOption",
		"stateMutability": "view",
		"inputs": [
			{"name": "_pollId", "type": "uint256"},
			{"name": "_optionIndex", "type": "uint256"}
		],
		"outputs": [
			{"name": "text", "type": "string"},
			{"name": "voteCount", "type": "uint256"}
		]
	},
	{
		"type": "function",
		"name": "vote",
		"stateMutability": "nonpayable",
		"inputs": [
			{"name": "_pollId", "type": "uint256"},
			{"name": "_optionIndex", "type": "uint256"}
		],
		"outputs": []
	},
	{
		"type": "function",
		"name": "voters",
		"stateMutability": "view",
		"inputs": [
			{"name": "", "type": "uint256"},
			{"name": "", "type": "address"}
		],
		"outputs": [{"name": "", "type": "bool"}]
	},
	{
		"type": "event",
		"name": "PollCreated",
		"anonymous": false,
		"inputs": [{"name": "id", "type": "uint256", "indexed": false}]
	}
]`

// PollCreated mirrors the contract event; UnpackLog fills it by
// argument name.
type PollCreated struct {
	Id *big.Int
}

// PollInfo is the getPoll return tuple.
type PollInfo struct {
	ID          int64
	Creator     string
	Title       string
	Description string
	OptionCount int64
}

// OptionInfo is the getOption return tuple.
type OptionInfo struct {
	Text      string
	VoteCount int64
}

package ledger

import (
	"context"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"
)

// waitTimeout bounds how long a vote or createPoll call blocks on
// transaction finality before reporting the ledger unreachable.
const waitTimeout = 2 * time.Minute

// Client wraps the deployed PollContract. Reads go through eth_call;
// writes need a configured signing key and wait for the transaction to
// be mined.
type Client struct {
	eth      *ethclient.Client
	contract *bind.BoundContract
	abi      abi.ABI
	address  common.Address
	signer   *bind.TransactOpts
}

// Dial connects the RPC endpoint and binds the contract. privateKeyHex
// may be empty; the client then serves reads only and write calls fail
// with ErrUnavailable.
func Dial(ctx context.Context, rpcURL, contractAddr, privateKeyHex string, chainID int64) (*Client, error) {
	parsed, err := abi.JSON(strings.NewReader(ContractABI))
	if err != nil {
		return nil, errors.Wrap(err, "parse contract abi")
	}

	eth, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, errors.WithMessage(ErrUnavailable, err.Error())
	}

	address := common.HexToAddress(contractAddr)
	c := &Client{
		eth:      eth,
		abi:      parsed,
		address:  address,
		contract: bind.NewBoundContract(address, parsed, eth, eth, eth),
	}

	if privateKeyHex != "" {
		key, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
		if err != nil {
			return nil, errors.Wrap(err, "parse signing key")
		}
		c.signer, err = bind.NewKeyedTransactorWithChainID(key, big.NewInt(chainID))
		if err != nil {
			return nil, errors.Wrap(err, "build transactor")
		}
	}

	return c, nil
}

// Address returns the bound contract address as served by /contract-info.
func (c *Client) Address() string {
	return c.address.Hex()
}

func (c *Client) Close() {
	c.eth.Close()
}

func (c *Client) GetPoll(ctx context.Context, id int64) (PollInfo, error) {
	var out []interface{}
	opts := &bind.CallOpts{Context: ctx}
	if err := c.contract.Call(opts, &out, "getPoll", big.NewInt(id)); err != nil {
		return PollInfo{}, classify(err)
	}
	return PollInfo{
		ID:          out[0].(*big.Int).Int64(),
		Creator:     out[1].(common.Address).Hex(),
		Title:       out[2].(string),
		Description: out[3].(string),
		OptionCount: out[4].(*big.Int).Int64(),
	}, nil
}

func (c *Client) GetOption(ctx context.Context, id, index int64) (OptionInfo, error) {
	var out []interface{}
	opts := &bind.CallOpts{Context: ctx}
	if err := c.contract.Call(opts, &out, "getOption", big.NewInt(id), big.NewInt(index)); err != nil {
		return OptionInfo{}, classify(err)
	}
	return OptionInfo{
		Text:      out[0].(string),
		VoteCount: out[1].(*big.Int).Int64(),
	}, nil
}

func (c *Client) HasVoted(ctx context.Context, id int64, voter string) (bool, error) {
	var out []interface{}
	opts := &bind.CallOpts{Context: ctx}
	if err := c.contract.Call(opts, &out, "voters", big.NewInt(id), common.HexToAddress(voter)); err != nil {
		return false, classify(err)
	}
	return out[0].(bool), nil
}

// Vote submits the vote transaction and waits for it to be mined. A
// duplicate vote reverts with "Already voted" and maps to
// ErrAlreadyVoted; any other revert maps to ErrRejected.
func (c *Client) Vote(ctx context.Context, id, optionIndex int64) error {
	receipt, err := c.transact(ctx, "vote", big.NewInt(id), big.NewInt(optionIndex))
	if err != nil {
		return err
	}
	if receipt.Status == types.ReceiptStatusFailed {
		return errors.WithMessage(ErrRejected, "vote transaction reverted")
	}
	return nil
}

// CreatePoll creates the poll on-chain and returns the id assigned by
// the contract, recovered from the PollCreated event in the receipt.
func (c *Client) CreatePoll(ctx context.Context, title, description string, options []string) (int64, error) {
	receipt, err := c.transact(ctx, "createPoll", title, description, options)
	if err != nil {
		return 0, err
	}
	if receipt.Status == types.ReceiptStatusFailed {
		return 0, errors.WithMessage(ErrRejected, "createPoll transaction reverted")
	}

	for _, lg := range receipt.Logs {
		if lg.Address != c.address {
			continue
		}
		if id, err := c.DecodePollCreated(*lg); err == nil {
			return id, nil
		}
	}
	return 0, errors.WithMessage(ErrRejected, "PollCreated event not found in receipt")
}

// DecodePollCreated extracts the assigned poll id from a PollCreated log.
func (c *Client) DecodePollCreated(lg types.Log) (int64, error) {
	event := c.abi.Events["PollCreated"]
	if len(lg.Topics) == 0 || lg.Topics[0] != event.ID {
		return 0, errors.New("not a PollCreated log")
	}
	var out PollCreated
	if err := c.contract.UnpackLog(&out, "PollCreated", lg); err != nil {
		return 0, errors.Wrap(err, "unpack PollCreated")
	}
	return out.Id.Int64(), nil
}

func (c *Client) transact(ctx context.Context, method string, params ...interface{}) (*types.Receipt, error) {
	if c.signer == nil {
		return nil, errors.WithMessage(ErrUnavailable, "no signing key configured")
	}

	opts := *c.signer
	opts.Context = ctx
	tx, err := c.contract.Transact(&opts, method, params...)
	if err != nil {
		// Gas estimation replays the call, so reverts surface here.
		return nil, classify(err)
	}

	waitCtx, cancel := context.WithTimeout(ctx, waitTimeout)
	defer cancel()
	receipt, err := bind.WaitMined(waitCtx, c.eth, tx)
	if err != nil {
		return nil, errors.WithMessage(ErrUnavailable, err.Error())
	}
	return receipt, nil
}

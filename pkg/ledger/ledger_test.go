package ledger

import (
	"context"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T) *Client {
	t.Helper()
	parsed, err := abi.JSON(strings.NewReader(ContractABI))
	require.NoError(t, err)
	return &Client{
		abi:      parsed,
		contract: bind.NewBoundContract(common.Address{}, parsed, nil, nil, nil),
	}
}

func TestContractABIParses(t *testing.T) {
	parsed, err := abi.JSON(strings.NewReader(ContractABI))
	require.NoError(t, err)

	for _, name := range []string{"createPoll", "getPoll", "getOption", "vote", "voters"} {
		_, ok := parsed.Methods[name]
		assert.True(t, ok, "method %s missing from abi", name)
	}
	_, ok := parsed.Events["PollCreated"]
	assert.True(t, ok, "PollCreated event missing from abi")
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want error
	}{
		{"duplicate vote revert", "execution reverted: Already voted", ErrAlreadyVoted},
		{"other revert", "execution reverted: Poll does not exist", ErrRejected},
		{"bare revert", "transaction would revert", ErrRejected},
		{"rpc down", "dial tcp 127.0.0.1:8545: connect: connection refused", ErrUnavailable},
		{"timeout", "context deadline exceeded", ErrUnavailable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := classify(errors.New(tc.raw))
			require.ErrorIs(t, got, tc.want)
			// The raw chain error stays in the message for the logs.
			assert.Contains(t, got.Error(), tc.raw)
		})
	}
}

func TestDecodePollCreated(t *testing.T) {
	c := testClient(t)
	event := c.abi.Events["PollCreated"]

	data, err := event.Inputs.Pack(big.NewInt(42))
	require.NoError(t, err)

	id, err := c.DecodePollCreated(types.Log{
		Topics: []common.Hash{event.ID},
		Data:   data,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}

func TestDecodePollCreatedRejectsForeignLog(t *testing.T) {
	c := testClient(t)

	_, err := c.DecodePollCreated(types.Log{
		Topics: []common.Hash{common.HexToHash("0xdead")},
	})
	require.Error(t, err)

	_, err = c.DecodePollCreated(types.Log{})
	require.Error(t, err)
}

func TestWriteCallsNeedSigner(t *testing.T) {
	c := testClient(t)

	err := c.Vote(context.Background(), 1, 0)
	require.ErrorIs(t, err, ErrUnavailable)

	_, err = c.CreatePoll(context.Background(), "Upgrade?", "", []string{"Yes", "No"})
	require.ErrorIs(t, err, ErrUnavailable)
}

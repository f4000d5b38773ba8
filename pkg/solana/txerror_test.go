package solana

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/ybbus/jsonrpc"
)

func TestDescribeTransactionError(t *testing.T) {
	for raw, expected := range map[string]string{
		`"AccountNotFound"`:                               "AccountNotFound",
		`{"InsufficientFundsForRent":{"account_index":2}}`: "InsufficientFundsForRent",
		`{"InstructionError":[0,"InvalidArgument"]}`:       "instruction 0: InvalidArgument",
		`{"InstructionError":[1,{"Custom":6001}]}`:         "instruction 1: custom program error 0x1771",
		`{"InstructionError":[2,{"BorshIoError":"eof"}]}`:  "instruction 2: BorshIoError(eof)",
		`{"InstructionError":["x","InvalidArgument"]}`:     `{"InstructionError":["x","InvalidArgument"]}`,
		`{"A":1,"B":2}`: `{"A":1,"B":2}`,
		`not json`:      `not json`,
	} {
		assert.Equal(t, expected, DescribeTransactionError(json.RawMessage(raw)), raw)
	}
}

func TestDescribeRPCError(t *testing.T) {
	assert.Equal(t, "Transaction simulation failed", describeRPCError(&jsonrpc.RPCError{
		Message: "Transaction simulation failed",
	}))

	assert.Equal(t, "Transaction simulation failed: instruction 0: custom program error 0x1", describeRPCError(&jsonrpc.RPCError{
		Message: "Transaction simulation failed",
		Data: map[string]interface{}{
			"err":  map[string]interface{}{"InstructionError": []interface{}{0, map[string]interface{}{"Custom": 1}}},
			"logs": []interface{}{},
		},
	}))
}

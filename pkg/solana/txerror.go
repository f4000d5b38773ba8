package solana

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/ybbus/jsonrpc"
)

// DescribeTransactionError renders a transaction error reported by a node,
// such as {"InstructionError":[1,{"Custom":6001}]}, as readable text. Errors
// it does not recognize are returned as raw JSON.
func DescribeTransactionError(raw json.RawMessage) string {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return string(raw)
	}

	switch t := v.(type) {
	case string:
		return t
	case map[string]interface{}:
		if len(t) != 1 {
			break
		}
		for key, value := range t {
			if key != "InstructionError" {
				return key
			}
			if desc, ok := describeInstructionError(value); ok {
				return desc
			}
		}
	}
	return string(raw)
}

// describeInstructionError handles the [index, detail] tuple of an
// InstructionError.
func describeInstructionError(v interface{}) (string, bool) {
	tuple, ok := v.([]interface{})
	if !ok || len(tuple) != 2 {
		return "", false
	}
	index, ok := tuple[0].(json.Number)
	if !ok {
		return "", false
	}

	switch detail := tuple[1].(type) {
	case string:
		return fmt.Sprintf("instruction %s: %s", index, detail), true
	case map[string]interface{}:
		if len(detail) != 1 {
			return "", false
		}
		for key, value := range detail {
			if code, ok := value.(json.Number); ok && key == "Custom" {
				n, err := code.Int64()
				if err != nil {
					return "", false
				}
				return fmt.Sprintf("instruction %s: custom program error 0x%x", index, n), true
			}
			return fmt.Sprintf("instruction %s: %s(%v)", index, key, value), true
		}
	}
	return "", false
}

// describeRPCError appends the transaction error carried in the data of a
// preflight failure, if any, to the RPC error message.
func describeRPCError(rpcErr *jsonrpc.RPCError) string {
	data, ok := rpcErr.Data.(map[string]interface{})
	if !ok || data["err"] == nil {
		return rpcErr.Message
	}

	raw, err := json.Marshal(data["err"])
	if err != nil {
		return rpcErr.Message
	}
	return fmt.Sprintf("%s: %s", rpcErr.Message, DescribeTransactionError(raw))
}

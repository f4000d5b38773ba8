package bridge

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	xrate "golang.org/x/time/rate"

	"github.com/code-payments/solana-bridge/pkg/rate"
	"github.com/code-payments/solana-bridge/pkg/solana"
	"github.com/code-payments/solana-bridge/pkg/solana/token"
)

// RpcClient exposes the JSON-RPC client with host strings, mapping failures
// to RpcError. Malformed arguments are InvalidInput.
type RpcClient struct {
	log        *logrus.Entry
	client     solana.Client
	commitment solana.Commitment
}

// NewRpcClient connects to endpoint. commitment is one of processed,
// confirmed or finalized; empty selects finalized.
func NewRpcClient(endpoint, commitment string, configProvider ConfigProvider) (*RpcClient, error) {
	if endpoint == "" {
		return nil, newError(InvalidInput, nil, "empty rpc endpoint")
	}

	conf := configProvider()
	ctx := context.Background()

	opts := []solana.Option{
		solana.WithMaxRetries(uint(conf.rpcMaxRetries.Get(ctx))),
		solana.WithHTTPClient(&http.Client{Timeout: conf.rpcTimeout.Get(ctx)}),
	}
	if rps := conf.rpcRequestsPerSecond.Get(ctx); rps > 0 {
		opts = append(opts, solana.WithRateLimiter(rate.NewLocalRateLimiter(xrate.Limit(rps))))
	}

	return NewRpcClientWithClient(solana.New(endpoint, opts...), commitment)
}

// NewRpcClientWithClient wraps an existing client.
func NewRpcClientWithClient(client solana.Client, commitment string) (*RpcClient, error) {
	c, err := solana.CommitmentFromString(commitment)
	if err != nil {
		return nil, newError(InvalidInput, err, "invalid commitment")
	}

	return &RpcClient{
		log:        logrus.StandardLogger().WithField("type", "bridge/rpc_client"),
		client:     client,
		commitment: c,
	}, nil
}

func (c *RpcClient) rpcError(method string, err error) error {
	c.log.WithError(err).WithField("method", method).Debug("rpc call failed")
	return newError(RpcError, err, "%s failed", method)
}

func (c *RpcClient) GetBalance(ctx context.Context, address string) (uint64, error) {
	key, err := parseAddress("address", address)
	if err != nil {
		return 0, err
	}

	balance, err := c.client.GetBalance(ctx, key, c.commitment)
	if err != nil {
		return 0, c.rpcError("getBalance", err)
	}
	return balance, nil
}

// GetLatestBlockhash returns the base58 blockhash to build transactions with.
func (c *RpcClient) GetLatestBlockhash(ctx context.Context) (string, error) {
	bh, err := c.client.GetLatestBlockhash(ctx, c.commitment)
	if err != nil {
		return "", c.rpcError("getLatestBlockhash", err)
	}
	return bh.String(), nil
}

// SendTransaction submits the builder's fully signed transaction and returns
// its base58 signature.
func (c *RpcClient) SendTransaction(ctx context.Context, b *TransactionBuilder) (string, error) {
	tx, err := b.signedTransaction()
	if err != nil {
		return "", err
	}

	sig, err := c.client.SubmitTransaction(ctx, tx, c.commitment)
	if err != nil {
		return "", c.rpcError("sendTransaction", err)
	}
	return sig.String(), nil
}

// SimulateTransaction returns the raw simulation result JSON. Signatures are
// only verified if the transaction is fully signed.
func (c *RpcClient) SimulateTransaction(ctx context.Context, b *TransactionBuilder) (string, error) {
	tx, err := b.Transaction()
	if err != nil {
		return "", err
	}

	result, err := c.client.SimulateTransaction(ctx, tx, c.commitment)
	if err != nil {
		return "", c.rpcError("simulateTransaction", err)
	}
	return string(result), nil
}

// GetAccountData returns the raw data of an account.
func (c *RpcClient) GetAccountData(ctx context.Context, address string) ([]byte, error) {
	info, err := c.getAccountInfo(ctx, address)
	if err != nil {
		return nil, err
	}
	return info.Data, nil
}

type accountInfoJSON struct {
	Lamports   uint64 `json:"lamports"`
	Owner      string `json:"owner"`
	Data       string `json:"data"`
	Executable bool   `json:"executable"`
	RentEpoch  uint64 `json:"rentEpoch"`
}

// GetAccountInfo returns the account as JSON, with base64 data.
func (c *RpcClient) GetAccountInfo(ctx context.Context, address string) (string, error) {
	info, err := c.getAccountInfo(ctx, address)
	if err != nil {
		return "", err
	}

	encoded, err := json.Marshal(accountInfoJSON{
		Lamports:   info.Lamports,
		Owner:      RenderAddress(info.Owner),
		Data:       base64.StdEncoding.EncodeToString(info.Data),
		Executable: info.Executable,
		RentEpoch:  info.RentEpoch,
	})
	if err != nil {
		return "", newError(SerializationError, err, "failed to encode account info")
	}
	return string(encoded), nil
}

func (c *RpcClient) getAccountInfo(ctx context.Context, address string) (solana.AccountInfo, error) {
	key, err := parseAddress("address", address)
	if err != nil {
		return solana.AccountInfo{}, err
	}

	info, err := c.client.GetAccountInfo(ctx, key, c.commitment)
	if err == solana.ErrNoAccountInfo {
		return info, newError(RpcError, err, "account %s not found", address)
	} else if err != nil {
		return info, c.rpcError("getAccountInfo", err)
	}
	return info, nil
}

// GetTokenAccountBalance returns the token balance in base units.
func (c *RpcClient) GetTokenAccountBalance(ctx context.Context, tokenAccount string) (uint64, error) {
	key, err := parseAddress("token account", tokenAccount)
	if err != nil {
		return 0, err
	}

	balance, err := c.client.GetTokenAccountBalance(ctx, key, c.commitment)
	if err != nil {
		return 0, c.rpcError("getTokenAccountBalance", err)
	}
	return balance, nil
}

// GetTokenAccount fetches and decodes a token account owned by the token
// program.
func (c *RpcClient) GetTokenAccount(ctx context.Context, tokenAccount string) (*token.Account, error) {
	info, err := c.getAccountInfo(ctx, tokenAccount)
	if err != nil {
		return nil, err
	}

	if !bytes.Equal(info.Owner, token.ProgramKey) {
		return nil, newError(RpcError, errors.New("invalid token account"), "%s is owned by %s", tokenAccount, RenderAddress(info.Owner))
	}

	var account token.Account
	if !account.Unmarshal(info.Data) {
		return nil, newError(SerializationError, errors.New("invalid token account"), "%s has %d bytes of data", tokenAccount, len(info.Data))
	}
	return &account, nil
}

// GetProgramAccounts returns the raw JSON list of accounts owned by program.
func (c *RpcClient) GetProgramAccounts(ctx context.Context, programID string) (string, error) {
	key, err := parseAddress("program id", programID)
	if err != nil {
		return "", err
	}

	result, err := c.client.GetProgramAccounts(ctx, key, c.commitment)
	if err != nil {
		return "", c.rpcError("getProgramAccounts", err)
	}
	return string(result), nil
}

// GetTransactionStatus returns the raw getTransaction JSON for signature.
func (c *RpcClient) GetTransactionStatus(ctx context.Context, signature string) (string, error) {
	sig, err := parseSignature(signature)
	if err != nil {
		return "", err
	}

	result, err := c.client.GetTransactionStatus(ctx, sig, c.commitment)
	if err != nil {
		return "", c.rpcError("getTransaction", err)
	}
	return string(result), nil
}

// ConfirmTransaction reports whether signature has reached the client's
// commitment level.
func (c *RpcClient) ConfirmTransaction(ctx context.Context, signature string) (bool, error) {
	sig, err := parseSignature(signature)
	if err != nil {
		return false, err
	}

	confirmed, err := c.client.ConfirmTransaction(ctx, sig, c.commitment)
	if err != nil {
		return false, c.rpcError("getSignatureStatuses", err)
	}
	return confirmed, nil
}

// WaitForConfirmation polls until signature reaches the client's commitment
// level.
func (c *RpcClient) WaitForConfirmation(ctx context.Context, signature string) error {
	sig, err := parseSignature(signature)
	if err != nil {
		return err
	}

	if _, err := c.client.WaitForConfirmation(ctx, sig, c.commitment); err != nil {
		return c.rpcError("getSignatureStatuses", err)
	}
	return nil
}

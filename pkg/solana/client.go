package solana

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"
	"math/rand"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/ybbus/jsonrpc"

	"github.com/code-payments/solana-bridge/pkg/rate"
	"github.com/code-payments/solana-bridge/pkg/retry"
	"github.com/code-payments/solana-bridge/pkg/retry/backoff"
)

const (
	// todo: we can retrieve these from the Syscall account
	//       but they're unlikely to change.
	ticksPerSec  = 160
	ticksPerSlot = 64
	slotsPerSec  = ticksPerSec / ticksPerSlot

	// PollRate is the rate at which blocks should be polled at.
	PollRate = (time.Second / slotsPerSec) / 2

	// Poll rate is ~2x the slot rate, and we want to wait ~32 slots
	sigStatusPollLimit = 2 * 32

	// Reference: https://github.com/solana-labs/solana/blob/71e9958e061493d7545bd28d4ac7a85aaed6ffbb/client/src/rpc_custom_error.rs#L11
	rpcNodeUnhealthyCode = -32005

	invalidParamCode = -32602

	limiterKey = "rpc"
)

type Commitment struct {
	Commitment string `json:"commitment"`
}

const (
	confirmationStatusProcessed = "processed"
	confirmationStatusConfirmed = "confirmed"
	confirmationStatusFinalized = "finalized"
)

var (
	CommitmentProcessed = Commitment{Commitment: confirmationStatusProcessed}
	CommitmentConfirmed = Commitment{Commitment: confirmationStatusConfirmed}
	CommitmentFinalized = Commitment{Commitment: confirmationStatusFinalized}
)

// CommitmentFromString parses a commitment level name. An empty name is
// finalized.
func CommitmentFromString(name string) (Commitment, error) {
	switch name {
	case confirmationStatusProcessed:
		return CommitmentProcessed, nil
	case confirmationStatusConfirmed:
		return CommitmentConfirmed, nil
	case confirmationStatusFinalized, "":
		return CommitmentFinalized, nil
	default:
		return Commitment{}, errors.Errorf("unknown commitment %q", name)
	}
}

var (
	ErrNoAccountInfo     = errors.New("no account info")
	ErrSignatureNotFound = errors.New("signature not found")
	ErrNoBalance         = errors.New("no balance")
	ErrTransactionFailed = errors.New("transaction failed")
)

// AccountInfo contains the Solana account information (not to be confused with a TokenAccount)
type AccountInfo struct {
	Data       []byte
	Owner      ed25519.PublicKey
	Lamports   uint64
	Executable bool
	RentEpoch  uint64
}

type SignatureStatus struct {
	Slot uint64

	// Err is the raw transaction error reported by the node, if any.
	Err json.RawMessage

	// Confirmations will be nil if the transaction has been rooted.
	Confirmations      *int
	ConfirmationStatus string
}

func (s SignatureStatus) Failed() bool {
	return len(s.Err) > 0 && string(s.Err) != "null"
}

func (s SignatureStatus) Confirmed() bool {
	if s.Finalized() {
		return true
	}

	if s.ConfirmationStatus == confirmationStatusConfirmed {
		return true
	}

	return *s.Confirmations >= 1
}

func (s SignatureStatus) Finalized() bool {
	return s.Confirmations == nil || s.ConfirmationStatus == confirmationStatusFinalized
}

// Reached reports whether the status satisfies the commitment level.
func (s SignatureStatus) Reached(commitment Commitment) bool {
	switch commitment {
	case CommitmentConfirmed:
		return s.Confirmed()
	case CommitmentFinalized:
		return s.Finalized()
	default:
		return true
	}
}

type TokenAmount struct {
	Amount   string `json:"amount"`   // example: "49801500000",
	Decimals uint64 `json:"decimals"` // example: 5,
}

// Client provides an interaction with the Solana JSON RPC API.
//
// Reference: https://docs.solana.com/apps/jsonrpc-api
type Client interface {
	GetBalance(context.Context, ed25519.PublicKey, Commitment) (uint64, error)
	GetLatestBlockhash(context.Context, Commitment) (Blockhash, error)
	GetAccountInfo(context.Context, ed25519.PublicKey, Commitment) (AccountInfo, error)
	GetTokenAccountBalance(context.Context, ed25519.PublicKey, Commitment) (uint64, error)
	GetProgramAccounts(context.Context, ed25519.PublicKey, Commitment) (json.RawMessage, error)
	GetSignatureStatus(context.Context, Signature) (*SignatureStatus, error)
	GetTransactionStatus(context.Context, Signature, Commitment) (json.RawMessage, error)
	SimulateTransaction(context.Context, Transaction, Commitment) (json.RawMessage, error)
	SubmitTransaction(context.Context, Transaction, Commitment) (Signature, error)

	// ConfirmTransaction reports whether the signature has reached the
	// commitment level, without waiting.
	ConfirmTransaction(context.Context, Signature, Commitment) (bool, error)

	// WaitForConfirmation polls until the signature reaches the commitment
	// level, the poll limit is hit, or ctx is done.
	WaitForConfirmation(context.Context, Signature, Commitment) (*SignatureStatus, error)
}

var (
	errRateLimited  = errors.New("rate limited")
	errServiceError = errors.New("service error")
)

type rpcResponse struct {
	Context struct {
		Slot int64 `json:"slot"`
	} `json:"context"`
	Value interface{} `json:"value"`
}

// Option configures a client.
type Option func(*options)

type options struct {
	maxRetries  uint
	limiter     rate.Limiter
	httpClient  *http.Client
	cacheWindow time.Duration
}

// WithMaxRetries bounds the number of attempts for retriable failures.
func WithMaxRetries(n uint) Option {
	return func(o *options) {
		o.maxRetries = n
	}
}

// WithRateLimiter throttles outgoing requests.
func WithRateLimiter(l rate.Limiter) Option {
	return func(o *options) {
		o.limiter = l
	}
}

// WithHTTPClient overrides the HTTP client used for requests.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

// WithBlockhashCache caches the latest blockhash for roughly the given
// window. Zero disables caching.
func WithBlockhashCache(window time.Duration) Option {
	return func(o *options) {
		o.cacheWindow = window
	}
}

type client struct {
	log     *logrus.Entry
	client  jsonrpc.RPCClient
	retrier retry.Retrier
	limiter rate.Limiter

	cacheWindow time.Duration
	blockMu     sync.RWMutex
	blockhash   Blockhash
	commitment  Commitment
	lastWrite   time.Time
}

// New returns a client using the specified endpoint.
func New(endpoint string, opts ...Option) Client {
	o := options{
		maxRetries: 3,
		limiter:    &rate.NoLimiter{},
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.maxRetries == 0 {
		o.maxRetries = 1
	}

	return &client{
		log: logrus.StandardLogger().WithField("type", "solana/client"),
		client: jsonrpc.NewClientWithOpts(endpoint, &jsonrpc.RPCClientOpts{
			HTTPClient: o.httpClient,
		}),
		retrier: retry.NewRetrier(
			retry.RetriableErrors(errRateLimited, errServiceError),
			retry.Limit(o.maxRetries),
			retry.BackoffWithJitter(backoff.BinaryExponential(time.Second), 10*time.Second, 0.1),
		),
		limiter:     o.limiter,
		cacheWindow: o.cacheWindow,
	}
}

func (c *client) call(ctx context.Context, out interface{}, method string, params ...interface{}) error {
	_, err := c.retrier.Retry(ctx, func() error {
		if err := c.limiter.Wait(ctx, limiterKey); err != nil {
			return err
		}

		err := c.client.CallFor(out, method, params...)
		if err == nil {
			return nil
		}

		return c.handleRpcError(method, err)
	})

	return err
}

func (c *client) handleRpcError(method string, err error) error {
	log := c.log.WithField("method", method)

	switch typed := err.(type) {
	case *jsonrpc.HTTPError:
		if typed.Code == http.StatusTooManyRequests {
			log.Warn("rate limited")
			return errors.Wrap(errRateLimited, err.Error())
		}
		if typed.Code >= http.StatusInternalServerError {
			log.WithError(err).Warn("service error")
			return errors.Wrap(errServiceError, err.Error())
		}
	case *jsonrpc.RPCError:
		if typed.Code == http.StatusTooManyRequests {
			log.Warn("rate limited")
			return errors.Wrap(errRateLimited, err.Error())
		}
		if typed.Code >= http.StatusInternalServerError || typed.Code == rpcNodeUnhealthyCode {
			log.WithError(err).Warn("service error")
			return errors.Wrap(errServiceError, err.Error())
		}
	}

	return err
}

func isInvalidParam(err error) bool {
	rpcErr, ok := errors.Cause(err).(*jsonrpc.RPCError)
	return ok && rpcErr.Code == invalidParamCode
}

func (c *client) GetBalance(ctx context.Context, account ed25519.PublicKey, commitment Commitment) (uint64, error) {
	var resp rpcResponse
	if err := c.call(ctx, &resp, "getBalance", base58.Encode(account), commitment); err != nil {
		if isInvalidParam(err) {
			return 0, ErrNoBalance
		}

		return 0, errors.Wrapf(err, "getBalance() failed to send request")
	}

	if balance, ok := resp.Value.(float64); ok {
		return uint64(balance), nil
	}

	return 0, errors.Errorf("invalid value in response")
}

func (c *client) GetLatestBlockhash(ctx context.Context, commitment Commitment) (hash Blockhash, err error) {
	// To avoid having thrashing around a similar periodic interval, we
	// randomize when we refresh our block hash.
	if c.cacheWindow > 0 {
		window := time.Duration(float64(c.cacheWindow) * (0.8 + 0.4*rand.Float64()))

		c.blockMu.RLock()
		if c.commitment == commitment && time.Since(c.lastWrite) < window {
			hash = c.blockhash
		}
		c.blockMu.RUnlock()

		if hash != (Blockhash{}) {
			return hash, nil
		}
	}

	type response struct {
		Value struct {
			Blockhash            string `json:"blockhash"`
			LastValidBlockHeight uint64 `json:"lastValidBlockHeight"`
		} `json:"value"`
	}

	// note: we have to wrap the commitment in an []interface{} otherwise the
	//       client sends the object itself as the params.
	var resp response
	if err := c.call(ctx, &resp, "getLatestBlockhash", []interface{}{commitment}); err != nil {
		return hash, errors.Wrapf(err, "getLatestBlockhash() failed to send request")
	}

	hash, err = BlockhashFromBase58(resp.Value.Blockhash)
	if err != nil {
		return hash, errors.Wrap(err, "invalid blockhash in response")
	}

	if c.cacheWindow > 0 {
		c.blockMu.Lock()
		c.blockhash = hash
		c.commitment = commitment
		c.lastWrite = time.Now()
		c.blockMu.Unlock()
	}

	return hash, nil
}

func (c *client) GetAccountInfo(ctx context.Context, account ed25519.PublicKey, commitment Commitment) (accountInfo AccountInfo, err error) {
	type rpcResponse struct {
		Value *struct {
			Lamports   uint64   `json:"lamports"`
			Owner      string   `json:"owner"`
			Data       []string `json:"data"`
			Executable bool     `json:"executable"`
			RentEpoch  uint64   `json:"rentEpoch"`
		} `json:"value"`
	}

	rpcConfig := struct {
		Commitment string `json:"commitment"`
		Encoding   string `json:"encoding"`
	}{
		Commitment: commitment.Commitment,
		Encoding:   "base64",
	}

	var resp rpcResponse
	if err := c.call(ctx, &resp, "getAccountInfo", base58.Encode(account), rpcConfig); err != nil {
		return accountInfo, errors.Wrap(err, "getAccountInfo() failed to send request")
	}

	if resp.Value == nil {
		return accountInfo, ErrNoAccountInfo
	}

	accountInfo.Owner, err = PublicKeyFromBase58(resp.Value.Owner)
	if err != nil {
		return accountInfo, errors.Wrap(err, "invalid base58 encoded owner")
	}

	if len(resp.Value.Data) == 0 {
		return accountInfo, errors.New("missing account data")
	}
	accountInfo.Data, err = base64.StdEncoding.DecodeString(resp.Value.Data[0])
	if err != nil {
		return accountInfo, errors.Wrap(err, "invalid base64 encoded data")
	}

	accountInfo.Lamports = resp.Value.Lamports
	accountInfo.Executable = resp.Value.Executable
	accountInfo.RentEpoch = resp.Value.RentEpoch

	return accountInfo, nil
}

func (c *client) GetTokenAccountBalance(ctx context.Context, account ed25519.PublicKey, commitment Commitment) (uint64, error) {
	var resp struct {
		Value TokenAmount `json:"value"`
	}
	if err := c.call(ctx, &resp, "getTokenAccountBalance", base58.Encode(account), commitment); err != nil {
		if isInvalidParam(err) {
			return 0, ErrNoBalance
		}

		return 0, errors.Wrapf(err, "getTokenAccountBalance() failed to send request")
	}

	quarks, err := strconv.ParseUint(resp.Value.Amount, 10, 64)
	if err != nil {
		return 0, errors.Errorf("invalid token amount in response: %q", resp.Value.Amount)
	}

	return quarks, nil
}

func (c *client) GetProgramAccounts(ctx context.Context, program ed25519.PublicKey, commitment Commitment) (json.RawMessage, error) {
	config := struct {
		Commitment string `json:"commitment"`
		Encoding   string `json:"encoding"`
	}{
		Commitment: commitment.Commitment,
		Encoding:   "base64",
	}

	var resp json.RawMessage
	if err := c.call(ctx, &resp, "getProgramAccounts", base58.Encode(program), config); err != nil {
		return nil, errors.Wrap(err, "getProgramAccounts() failed to send request")
	}

	return resp, nil
}

func (c *client) GetSignatureStatus(ctx context.Context, sig Signature) (*SignatureStatus, error) {
	req := struct {
		SearchTransactionHistory bool `json:"searchTransactionHistory"`
	}{
		SearchTransactionHistory: true,
	}

	type signatureStatus struct {
		Slot               uint64          `json:"slot"`
		Confirmations      *int            `json:"confirmations"`
		ConfirmationStatus string          `json:"confirmationStatus"`
		Err                json.RawMessage `json:"err"`
	}

	var resp struct {
		Value []*signatureStatus `json:"value"`
	}
	if err := c.call(ctx, &resp, "getSignatureStatuses", []string{sig.String()}, req); err != nil {
		return nil, errors.Wrap(err, "getSignatureStatuses() failed to send request")
	}

	if len(resp.Value) == 0 || resp.Value[0] == nil {
		return nil, ErrSignatureNotFound
	}

	v := resp.Value[0]
	s := &SignatureStatus{
		Slot:               v.Slot,
		Confirmations:      v.Confirmations,
		ConfirmationStatus: v.ConfirmationStatus,
	}
	if len(v.Err) > 0 && string(v.Err) != "null" {
		s.Err = v.Err
	}

	return s, nil
}

func (c *client) GetTransactionStatus(ctx context.Context, sig Signature, commitment Commitment) (json.RawMessage, error) {
	config := struct {
		Commitment                     string `json:"commitment"`
		Encoding                       string `json:"encoding"`
		MaxSupportedTransactionVersion int    `json:"maxSupportedTransactionVersion"`
	}{
		Commitment: commitment.Commitment,
		Encoding:   "json",
	}

	var resp json.RawMessage
	if err := c.call(ctx, &resp, "getTransaction", sig.String(), config); err != nil {
		return nil, errors.Wrap(err, "getTransaction() failed to send request")
	}
	if len(resp) == 0 || string(resp) == "null" {
		return nil, ErrSignatureNotFound
	}

	return resp, nil
}

func (c *client) SimulateTransaction(ctx context.Context, txn Transaction, commitment Commitment) (json.RawMessage, error) {
	config := struct {
		SigVerify  bool   `json:"sigVerify"`
		Commitment string `json:"commitment"`
		Encoding   string `json:"encoding"`
	}{
		SigVerify:  txn.IsFullySigned(),
		Commitment: commitment.Commitment,
		Encoding:   "base64",
	}

	var resp json.RawMessage
	if err := c.call(ctx, &resp, "simulateTransaction", base64.StdEncoding.EncodeToString(txn.Marshal()), config); err != nil {
		return nil, errors.Wrap(err, "simulateTransaction() failed to send request")
	}

	return resp, nil
}

func (c *client) SubmitTransaction(ctx context.Context, txn Transaction, commitment Commitment) (Signature, error) {
	if len(txn.Signatures) == 0 {
		return Signature{}, errors.New("transaction has no signatures")
	}
	sig := txn.Signatures[0]

	config := struct {
		SkipPreflight       bool   `json:"skipPreflight"`
		PreflightCommitment string `json:"preflightCommitment"`
		Encoding            string `json:"encoding"`
	}{
		PreflightCommitment: commitment.Commitment,
		Encoding:            "base64",
	}

	var sigStr string
	if err := c.call(ctx, &sigStr, "sendTransaction", base64.StdEncoding.EncodeToString(txn.Marshal()), config); err != nil {
		if rpcErr, ok := errors.Cause(err).(*jsonrpc.RPCError); ok {
			c.log.WithFields(logrus.Fields{
				"method":    "sendTransaction",
				"signature": sig.String(),
				"code":      rpcErr.Code,
			}).Debug("transaction rejected")
			return sig, errors.Wrapf(ErrTransactionFailed, "%s", describeRPCError(rpcErr))
		}

		return sig, errors.Wrap(err, "sendTransaction() failed to send request")
	}

	returned, err := SignatureFromBase58(sigStr)
	if err != nil {
		return sig, errors.Wrap(err, "invalid signature in response")
	}
	if returned != sig {
		c.log.WithFields(logrus.Fields{
			"expected": sig.String(),
			"returned": returned.String(),
		}).Warn("node returned an unexpected signature")
	}

	return returned, nil
}

func (c *client) ConfirmTransaction(ctx context.Context, sig Signature, commitment Commitment) (bool, error) {
	s, err := c.GetSignatureStatus(ctx, sig)
	if err == ErrSignatureNotFound {
		return false, nil
	} else if err != nil {
		return false, err
	}

	if s.Failed() {
		return false, errors.Wrapf(ErrTransactionFailed, "%s", DescribeTransactionError(s.Err))
	}

	return s.Reached(commitment), nil
}

func (c *client) WaitForConfirmation(ctx context.Context, sig Signature, commitment Commitment) (*SignatureStatus, error) {
	var s *SignatureStatus
	errConfirmationsNotReached := errors.New("confirmations not reached")
	_, err := retry.Retry(
		ctx,
		func() error {
			status, err := c.GetSignatureStatus(ctx, sig)
			if err != nil {
				return err
			}

			s = status
			if s.Failed() {
				return errors.Wrapf(ErrTransactionFailed, "%s", DescribeTransactionError(s.Err))
			}
			if s.Reached(commitment) {
				return nil
			}

			return errConfirmationsNotReached
		},
		retry.RetriableErrors(ErrSignatureNotFound, errConfirmationsNotReached),
		retry.Limit(sigStatusPollLimit),
		retry.Backoff(backoff.Constant(PollRate), PollRate),
	)

	return s, err
}

package domain

import (
	"errors"
	"fmt"
)

// Error taxonomy for the publishing workflow. Each error is handled at the
// most local scope able to respond: configuration and wallet errors abort
// before any side effect, read/fetch errors degrade per component, upload
// errors abort the create flow before a transaction exists, transaction
// errors surface after on-chain submission.

// ErrTxInFlight rejects a write while another transaction from the same
// wallet is still pending or confirming.
var ErrTxInFlight = errors.New("another transaction is still in flight")

// ErrAlreadyOwner rejects minting an article the connected wallet already owns.
var ErrAlreadyOwner = errors.New("connected wallet already owns this article")

// ErrConfirmTimeout marks a confirmation wait that exceeded its deadline.
// It is distinct from a hard transaction failure: the transaction may still
// land later.
var ErrConfirmTimeout = errors.New("transaction confirmation timed out")

// ConfigurationError reports missing or unsupported configuration, e.g. a
// connected chain with no deployed contract address.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

// WalletNotConnectedError rejects a write action before any transaction or
// upload is attempted when no signing key is configured.
type WalletNotConnectedError struct {
	Action string
}

func (e *WalletNotConnectedError) Error() string {
	return fmt.Sprintf("wallet not connected: cannot %s", e.Action)
}

// ReadError wraps a failed contract read. TokenID is zero for list-level reads.
type ReadError struct {
	Op      string
	TokenID uint64
	Err     error
}

func (e *ReadError) Error() string {
	if e.TokenID == 0 {
		return fmt.Sprintf("contract read %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("contract read %s failed for token %d: %v", e.Op, e.TokenID, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// ContentFetchError wraps a failed off-chain content retrieval or parse.
// Callers receive a sentinel content alongside it and degrade instead of
// failing the whole view.
type ContentFetchError struct {
	Ref string
	Err error
}

func (e *ContentFetchError) Error() string {
	return fmt.Sprintf("content fetch failed for %q: %v", e.Ref, e.Err)
}

func (e *ContentFetchError) Unwrap() error { return e.Err }

// UploadError wraps a failed pinning upload. Stage names which upload step
// broke (image or document).
type UploadError struct {
	Stage string
	Err   error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload %s failed: %v", e.Stage, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// TransactionError wraps a failed transaction submission or settlement.
type TransactionError struct {
	Op  string
	Err error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("transaction %s failed: %v", e.Op, e.Err)
}

func (e *TransactionError) Unwrap() error { return e.Err }

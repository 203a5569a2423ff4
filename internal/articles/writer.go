package articles

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/prism-press/prism/internal/domain"
	"github.com/prism-press/prism/internal/logger"
	"github.com/prism-press/prism/internal/pinning"
)

// TxPhase is the observable lifecycle of a submitted transaction. Phases
// are strictly sequential: Pending resolves before Confirming begins, and
// Confirming resolves before the settled outcome is reported.
type TxPhase int

const (
	// PhasePending marks a submitted transaction awaiting inclusion.
	PhasePending TxPhase = iota + 1
	// PhaseConfirming marks an included transaction awaiting the
	// confirmation threshold.
	PhaseConfirming
	// PhaseSettled marks the final outcome, success or failure.
	PhaseSettled
)

func (p TxPhase) String() string {
	switch p {
	case PhasePending:
		return "pending"
	case PhaseConfirming:
		return "confirming"
	case PhaseSettled:
		return "settled"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// PhaseObserver is notified on each phase transition.
type PhaseObserver func(TxPhase)

// CreateRequest carries everything needed to publish and create an article.
type CreateRequest struct {
	Title     string
	Content   string
	MintPrice *big.Int
	Tags      []string
	Image     []byte
	ImageName string
}

// TxResult reports a settled transaction.
type TxResult struct {
	TxHash      string
	BlockNumber uint64
	ContentRef  string
}

// WriterOptions tunes confirmation polling.
type WriterOptions struct {
	Confirmations  uint64
	PollInterval   time.Duration
	ConfirmTimeout time.Duration
}

func (o WriterOptions) normalized() WriterOptions {
	if o.Confirmations == 0 {
		o.Confirmations = 1
	}
	if o.PollInterval <= 0 {
		o.PollInterval = 3 * time.Second
	}
	if o.ConfirmTimeout <= 0 {
		o.ConfirmTimeout = 3 * time.Minute
	}
	return o
}

// Writer wraps contract writes. Each operation submits exactly one
// transaction and tracks it through the pending/confirming/settled phases.
// Overlapping submissions are rejected while one is in flight, mirroring a
// disabled submit control.
type Writer struct {
	contract  ContractWriter
	reader    ContractReader
	chain     ChainState
	publisher ContentPublisher
	signer    *bind.TransactOpts // nil means no wallet connected
	opts      WriterOptions
	log       logger.Logger

	mu       sync.Mutex
	inFlight bool
}

// NewWriter wires a write façade. signer may be nil for read-only mode;
// every write then fails locally with WalletNotConnectedError.
func NewWriter(w ContractWriter, r ContractReader, chain ChainState, publisher ContentPublisher, signer *bind.TransactOpts, opts WriterOptions, log logger.Logger) *Writer {
	return &Writer{
		contract:  w,
		reader:    r,
		chain:     chain,
		publisher: publisher,
		signer:    signer,
		opts:      opts.normalized(),
		log:       logger.Ensure(log),
	}
}

// Connected reports whether a signing wallet is configured.
func (w *Writer) Connected() bool { return w.signer != nil }

// WalletAddress returns the connected wallet address, or "" in read-only mode.
func (w *Writer) WalletAddress() string {
	if w.signer == nil {
		return ""
	}
	return w.signer.From.Hex()
}

// CreateArticle pins the content first, then submits one createArticle
// transaction referencing it and waits for settlement. A failed upload
// aborts before any transaction exists; a transaction is never submitted
// against a content reference that was not successfully pinned.
func (w *Writer) CreateArticle(ctx context.Context, req CreateRequest, observe PhaseObserver) (*TxResult, error) {
	if w.signer == nil {
		return nil, &domain.WalletNotConnectedError{Action: "create article"}
	}
	if strings.TrimSpace(req.Title) == "" {
		return nil, fmt.Errorf("article title is required")
	}
	if req.MintPrice == nil || req.MintPrice.Sign() < 0 {
		return nil, fmt.Errorf("mint price must be zero or positive")
	}

	release, err := w.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	contentRef, err := w.publisher.Publish(ctx, pinning.PublishRequest{
		Title:     req.Title,
		Content:   req.Content,
		Image:     req.Image,
		ImageName: req.ImageName,
	})
	if err != nil {
		return nil, err
	}

	tx, err := w.contract.CreateArticle(w.txOpts(ctx, nil), req.Title, contentRef, req.MintPrice, req.Tags)
	if err != nil {
		return nil, &domain.TransactionError{Op: "createArticle", Err: err}
	}

	result, err := w.waitSettled(ctx, "createArticle", tx, observe)
	if err != nil {
		return nil, err
	}
	result.ContentRef = contentRef

	w.log.InfoObj("article created", "create_result", map[string]any{
		"tx_hash":     result.TxHash,
		"content_ref": contentRef,
		"title":       req.Title,
	})
	return result, nil
}

// MintArticle submits one payable mintArticle transaction carrying the
// article's current mint price and waits for settlement. Minting an article
// the connected wallet already owns is rejected locally.
func (w *Writer) MintArticle(ctx context.Context, tokenID uint64, observe PhaseObserver) (*TxResult, error) {
	if w.signer == nil {
		return nil, &domain.WalletNotConnectedError{Action: "mint article"}
	}

	release, err := w.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	id := new(big.Int).SetUint64(tokenID)

	owner, err := w.reader.OwnerOf(ctx, id)
	if err != nil {
		return nil, &domain.ReadError{Op: "ownerOf", TokenID: tokenID, Err: err}
	}
	if owner == w.signer.From {
		return nil, domain.ErrAlreadyOwner
	}

	info, err := w.reader.GetArticle(ctx, id)
	if err != nil {
		return nil, &domain.ReadError{Op: "getArticle", TokenID: tokenID, Err: err}
	}

	tx, err := w.contract.MintArticle(w.txOpts(ctx, info.MintPrice), id)
	if err != nil {
		return nil, &domain.TransactionError{Op: "mintArticle", Err: err}
	}

	result, err := w.waitSettled(ctx, "mintArticle", tx, observe)
	if err != nil {
		return nil, err
	}

	w.log.InfoObj("article minted", "mint_result", map[string]any{
		"tx_hash":   result.TxHash,
		"token_id":  tokenID,
		"price_wei": info.MintPrice.String(),
	})
	return result, nil
}

// acquire takes the single-flight slot or fails with ErrTxInFlight.
func (w *Writer) acquire() (func(), error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.inFlight {
		return nil, domain.ErrTxInFlight
	}
	w.inFlight = true
	return func() {
		w.mu.Lock()
		w.inFlight = false
		w.mu.Unlock()
	}, nil
}

// txOpts derives per-call transact options so concurrent value mutation can
// never leak between transactions.
func (w *Writer) txOpts(ctx context.Context, value *big.Int) *bind.TransactOpts {
	opts := *w.signer
	opts.Context = ctx
	opts.Value = value
	return &opts
}

// waitSettled walks the transaction through its phases: poll for the
// receipt (pending), then for the confirmation threshold (confirming), then
// report the settled outcome. The wait is bounded; hitting the deadline
// yields ErrConfirmTimeout, distinct from a hard failure.
func (w *Writer) waitSettled(ctx context.Context, op string, tx *types.Transaction, observe PhaseObserver) (*TxResult, error) {
	notify := func(p TxPhase) {
		if observe != nil {
			observe(p)
		}
	}

	notify(PhasePending)

	deadline := time.Now().Add(w.opts.ConfirmTimeout)

	receipt, err := w.pollReceipt(ctx, tx.Hash(), deadline)
	if err != nil {
		return nil, &domain.TransactionError{Op: op, Err: err}
	}

	notify(PhaseConfirming)

	if err := w.awaitConfirmations(ctx, receipt.BlockNumber.Uint64(), deadline); err != nil {
		return nil, &domain.TransactionError{Op: op, Err: err}
	}

	notify(PhaseSettled)

	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, &domain.TransactionError{Op: op, Err: fmt.Errorf("transaction %s reverted", tx.Hash().Hex())}
	}

	return &TxResult{
		TxHash:      tx.Hash().Hex(),
		BlockNumber: receipt.BlockNumber.Uint64(),
	}, nil
}

func (w *Writer) pollReceipt(ctx context.Context, hash common.Hash, deadline time.Time) (*types.Receipt, error) {
	for {
		receipt, err := w.chain.TransactionReceipt(ctx, hash)
		if err == nil && receipt != nil {
			return receipt, nil
		}
		if err != nil && !errors.Is(err, ethereum.NotFound) {
			// ethclient returns ethereum.NotFound until inclusion; other
			// errors only end the wait at the deadline so a transient RPC
			// blip cannot fail a live transaction.
			w.log.DebugObj("receipt poll error", "poll_error", map[string]any{
				"tx_hash": hash.Hex(),
				"error":   err.Error(),
			})
		}
		if err := w.sleepOrDeadline(ctx, deadline); err != nil {
			return nil, err
		}
	}
}

func (w *Writer) awaitConfirmations(ctx context.Context, includedAt uint64, deadline time.Time) error {
	target := includedAt + w.opts.Confirmations - 1
	for {
		head, err := w.chain.BlockNumber(ctx)
		if err == nil && head >= target {
			return nil
		}
		if err := w.sleepOrDeadline(ctx, deadline); err != nil {
			return err
		}
	}
}

func (w *Writer) sleepOrDeadline(ctx context.Context, deadline time.Time) error {
	if time.Now().After(deadline) {
		return domain.ErrConfirmTimeout
	}
	timer := time.NewTimer(w.opts.PollInterval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

package app

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/prism-press/prism/internal/articles"
	"github.com/prism-press/prism/internal/config"
	"github.com/prism-press/prism/internal/contract"
	"github.com/prism-press/prism/internal/logger"
	"github.com/prism-press/prism/internal/notify"
	"github.com/prism-press/prism/internal/pinning"
	"github.com/prism-press/prism/internal/storage"
	"github.com/prism-press/prism/pkg/httpclient"
)

// App wires the contract client, pinning gateway, storage, and notifiers
// into the read and write façades the HTTP layer serves.
type App struct {
	cfg    *config.Config
	log    logger.Logger
	eth    *ethclient.Client
	store  storage.Store
	reader *articles.Reader
	writer *articles.Writer
	fanout *notify.Fanout
}

// New dials the Ethereum node, resolves the contract for the configured
// chain, and builds the full service graph from config.
func New(ctx context.Context, cfg *config.Config, log logger.Logger) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	log = logger.Ensure(log)
	if ctx == nil {
		ctx = context.Background()
	}

	eth, err := ethclient.DialContext(ctx, cfg.EthRPCURL)
	if err != nil {
		return nil, fmt.Errorf("dial eth rpc: %w", err)
	}

	book, err := contract.NewAddressBook(cfg.ContractAddresses)
	if err != nil {
		eth.Close()
		return nil, fmt.Errorf("build address book: %w", err)
	}
	addr, err := book.Resolve(cfg.ChainID)
	if err != nil {
		eth.Close()
		return nil, err
	}
	prism, err := contract.NewPrism(addr, eth)
	if err != nil {
		eth.Close()
		return nil, fmt.Errorf("bind contract: %w", err)
	}
	log.InfoObj("contract bound", "contract_meta", map[string]any{
		"chain_id": cfg.ChainID,
		"address":  addr.Hex(),
	})

	signer, err := buildSigner(cfg)
	if err != nil {
		eth.Close()
		return nil, err
	}
	if signer == nil {
		log.WarnObj("no private key configured; running read-only", "wallet", nil)
	} else {
		log.InfoObj("wallet connected", "wallet", map[string]any{
			"address": signer.From.Hex(),
		})
	}

	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storage.Options{
		ContentTTL:      cfg.StorageTTL,
		CleanupInterval: cfg.StorageCleanupInterval,
	})
	if err != nil {
		eth.Close()
		return nil, fmt.Errorf("init storage: %w", err)
	}

	gatewayClient := httpclient.NewRestyClient(cfg.HTTPTimeout)
	fetcher := pinning.NewFetcher(cfg.PinataGateway, cfg.PinataGatewayToken, gatewayClient, store, log)
	publisher := pinning.NewPublisher(cfg.PinataAPIBase, cfg.PinataJWT, cfg.HTTPTimeout, log)

	fanout, err := buildFanout(ctx, cfg, log)
	if err != nil {
		store.Close()
		eth.Close()
		return nil, err
	}

	reader := articles.NewReader(prism, fetcher, log)
	writer := articles.NewWriter(prism, prism, eth, publisher, signer, articles.WriterOptions{
		Confirmations:  cfg.Confirmations,
		PollInterval:   cfg.ConfirmPollInterval,
		ConfirmTimeout: cfg.ConfirmTimeout,
	}, log)

	return &App{
		cfg:    cfg,
		log:    log,
		eth:    eth,
		store:  store,
		reader: reader,
		writer: writer,
		fanout: fanout,
	}, nil
}

// Reader returns the read façade.
func (a *App) Reader() *articles.Reader { return a.reader }

// Writer returns the write façade.
func (a *App) Writer() *articles.Writer { return a.writer }

// Fanout returns the lifecycle event dispatcher. May have zero sinks.
func (a *App) Fanout() *notify.Fanout { return a.fanout }

// Close releases the node connection and the content store.
func (a *App) Close() {
	if a == nil {
		return
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.WarnObj("close storage failed", "error", err.Error())
		}
	}
	if a.eth != nil {
		a.eth.Close()
	}
}

// buildSigner derives a transactor from the configured private key.
// An empty key means read-only mode.
func buildSigner(cfg *config.Config) (*bind.TransactOpts, error) {
	if cfg.PrivateKey == "" {
		return nil, nil
	}
	key, err := crypto.HexToECDSA(cfg.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	chainID := new(big.Int).SetUint64(cfg.ChainID)
	signer, err := bind.NewKeyedTransactorWithChainID(key, chainID)
	if err != nil {
		return nil, fmt.Errorf("build transactor: %w", err)
	}
	return signer, nil
}

// buildFanout loads the notifier registry file, if configured, and
// instantiates the enabled sinks.
func buildFanout(ctx context.Context, cfg *config.Config, log logger.Logger) (*notify.Fanout, error) {
	if cfg.NotifiersFile == "" {
		return notify.NewFanout(nil), nil
	}

	reg, err := notify.LoadRegistry(cfg.NotifiersFile)
	if err != nil {
		return nil, fmt.Errorf("load notifiers registry: %w", err)
	}
	enabled := reg.Enabled()
	sinks, err := notify.BuildAll(ctx, notify.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build notifiers: %w", err)
	}
	summaries := make([]map[string]string, 0, len(enabled))
	for _, c := range enabled {
		summaries = append(summaries, map[string]string{"id": c.ID, "type": c.Type})
	}
	log.InfoObj("notifiers registry loaded", "notifiers_meta", map[string]any{
		"count":     len(summaries),
		"notifiers": summaries,
	})
	return notify.NewFanout(sinks), nil
}

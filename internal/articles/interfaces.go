package articles

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/prism-press/prism/internal/contract"
	"github.com/prism-press/prism/internal/domain"
	"github.com/prism-press/prism/internal/pinning"
)

// ContractReader is the subset of contract read calls the façades depend on.
// *contract.Prism satisfies it; tests inject fakes.
type ContractReader interface {
	ListAllArticles(ctx context.Context) ([]*big.Int, error)
	GetArticle(ctx context.Context, tokenID *big.Int) (*contract.ArticleInfo, error)
	OwnerOf(ctx context.Context, tokenID *big.Int) (common.Address, error)
	TokenURI(ctx context.Context, tokenID *big.Int) (string, error)
	GetMintingChain(ctx context.Context, tokenID *big.Int) ([]*big.Int, error)
}

// ContractWriter is the subset of contract write calls the write façade uses.
type ContractWriter interface {
	CreateArticle(opts *bind.TransactOpts, title, contentRef string, mintPrice *big.Int, tags []string) (*types.Transaction, error)
	MintArticle(opts *bind.TransactOpts, tokenID *big.Int) (*types.Transaction, error)
}

// ChainState exposes the node queries needed for confirmation polling.
// *ethclient.Client satisfies it.
type ChainState interface {
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	BlockNumber(ctx context.Context) (uint64, error)
}

// ContentFetcher resolves content references to pinned documents.
type ContentFetcher interface {
	Fetch(ctx context.Context, ref string) (domain.ArticleContent, error)
	ImageURL(ref string) string
}

// ContentPublisher pins article content before it is referenced on-chain.
type ContentPublisher interface {
	Publish(ctx context.Context, req pinning.PublishRequest) (string, error)
}

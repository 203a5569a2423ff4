// Package contract provides high-level Go bindings for the Prism publishing
// contract. Articles are ERC-721 tokens; content lives off-chain behind the
// tokenURI content reference.
package contract

import (
	"context"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Prism is a high-level wrapper around the deployed Prism contract.
type Prism struct {
	abi      abi.ABI
	address  common.Address
	contract *bind.BoundContract
}

// NewPrism connects to an already-deployed Prism contract.
func NewPrism(addr common.Address, backend bind.ContractBackend) (*Prism, error) {
	parsed, err := abi.JSON(strings.NewReader(PrismABI))
	if err != nil {
		return nil, err
	}
	bound := bind.NewBoundContract(addr, parsed, backend, backend, backend)
	return &Prism{
		abi:      parsed,
		address:  addr,
		contract: bound,
	}, nil
}

// Address returns the contract address this instance is bound to.
func (p *Prism) Address() common.Address { return p.address }

// ArticleInfo holds the on-chain data for a single article.
type ArticleInfo struct {
	Title          string
	OriginalAuthor common.Address
	Timestamp      *big.Int
	MintPrice      *big.Int
	ParentTokenID  *big.Int
	Tags           []string
}

// ListAllArticles returns every minted token id in contract order.
func (p *Prism) ListAllArticles(ctx context.Context) ([]*big.Int, error) {
	var out []interface{}
	err := p.contract.Call(&bind.CallOpts{Context: ctx}, &out, "listAllArticles")
	if err != nil {
		return nil, err
	}
	return out[0].([]*big.Int), nil
}

// GetArticle reads full article data from the contract.
func (p *Prism) GetArticle(ctx context.Context, tokenID *big.Int) (*ArticleInfo, error) {
	var out []interface{}
	err := p.contract.Call(&bind.CallOpts{Context: ctx}, &out, "getArticle", tokenID)
	if err != nil {
		return nil, err
	}
	return &ArticleInfo{
		Title:          out[0].(string),
		OriginalAuthor: out[1].(common.Address),
		Timestamp:      out[2].(*big.Int),
		MintPrice:      out[3].(*big.Int),
		ParentTokenID:  out[4].(*big.Int),
		Tags:           out[5].([]string),
	}, nil
}

// OwnerOf returns the current owner of a token.
func (p *Prism) OwnerOf(ctx context.Context, tokenID *big.Int) (common.Address, error) {
	var out []interface{}
	err := p.contract.Call(&bind.CallOpts{Context: ctx}, &out, "ownerOf", tokenID)
	if err != nil {
		return common.Address{}, err
	}
	return out[0].(common.Address), nil
}

// TokenURI returns the off-chain content reference for a token.
func (p *Prism) TokenURI(ctx context.Context, tokenID *big.Int) (string, error) {
	var out []interface{}
	err := p.contract.Call(&bind.CallOpts{Context: ctx}, &out, "tokenURI", tokenID)
	if err != nil {
		return "", err
	}
	return out[0].(string), nil
}

// GetMintingChain returns the derivation lineage for a token, in the order
// the contract defines it.
func (p *Prism) GetMintingChain(ctx context.Context, tokenID *big.Int) ([]*big.Int, error) {
	var out []interface{}
	err := p.contract.Call(&bind.CallOpts{Context: ctx}, &out, "getMintingChain", tokenID)
	if err != nil {
		return nil, err
	}
	return out[0].([]*big.Int), nil
}

// CreateArticle submits a createArticle transaction. The content reference
// must already be pinned; the contract stores it verbatim.
func (p *Prism) CreateArticle(opts *bind.TransactOpts, title, contentRef string, mintPrice *big.Int, tags []string) (*types.Transaction, error) {
	return p.contract.Transact(opts, "createArticle", title, contentRef, mintPrice, tags)
}

// MintArticle submits a payable mintArticle transaction. The caller must
// attach the article's mint price as opts.Value.
func (p *Prism) MintArticle(opts *bind.TransactOpts, tokenID *big.Int) (*types.Transaction, error) {
	return p.contract.Transact(opts, "mintArticle", tokenID)
}

// Package articles implements the read and write façades over the Prism
// contract plus the client-side listing workflow: pagination and
// minting-chain resolution.
package articles

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/prism-press/prism/internal/contract"
	"github.com/prism-press/prism/internal/domain"
	"github.com/prism-press/prism/internal/logger"
	"github.com/prism-press/prism/internal/pinning"
)

const excerptLength = 240

// Reader wraps contract reads with the domain projection. Each operation is
// independent: one failing read never poisons its siblings.
type Reader struct {
	contract ContractReader
	content  ContentFetcher
	log      logger.Logger
}

// NewReader wires a read façade over the bound contract and content fetcher.
func NewReader(reader ContractReader, content ContentFetcher, log logger.Logger) *Reader {
	return &Reader{
		contract: reader,
		content:  content,
		log:      logger.Ensure(log),
	}
}

// ListAllArticleIDs returns every token id in contract order. An empty
// listing and a failed read are distinct outcomes: failure returns a
// ReadError and no slice.
func (r *Reader) ListAllArticleIDs(ctx context.Context) ([]uint64, error) {
	raw, err := r.contract.ListAllArticles(ctx)
	if err != nil {
		return nil, &domain.ReadError{Op: "listAllArticles", Err: err}
	}
	ids := make([]uint64, 0, len(raw))
	for _, id := range raw {
		ids = append(ids, id.Uint64())
	}
	return ids, nil
}

// GetArticle reads the on-chain article data for a token. Owner and content
// reference are separate reads; see GetOwner and GetContentRef.
func (r *Reader) GetArticle(ctx context.Context, tokenID uint64) (domain.Article, error) {
	info, err := r.contract.GetArticle(ctx, new(big.Int).SetUint64(tokenID))
	if err != nil {
		return domain.Article{}, &domain.ReadError{Op: "getArticle", TokenID: tokenID, Err: err}
	}
	return toArticle(tokenID, info), nil
}

// GetOwner reads the current holder of a token. Never cached: the owner
// shown after a mint must reflect the post-mint state.
func (r *Reader) GetOwner(ctx context.Context, tokenID uint64) (string, error) {
	owner, err := r.contract.OwnerOf(ctx, new(big.Int).SetUint64(tokenID))
	if err != nil {
		return "", &domain.ReadError{Op: "ownerOf", TokenID: tokenID, Err: err}
	}
	return owner.Hex(), nil
}

// GetContentRef reads the off-chain content reference for a token.
func (r *Reader) GetContentRef(ctx context.Context, tokenID uint64) (string, error) {
	ref, err := r.contract.TokenURI(ctx, new(big.Int).SetUint64(tokenID))
	if err != nil {
		return "", &domain.ReadError{Op: "tokenURI", TokenID: tokenID, Err: err}
	}
	return ref, nil
}

// GetMintingChain reads the derivation lineage for a token. The order is the
// contract's; callers must not re-sort it.
func (r *Reader) GetMintingChain(ctx context.Context, tokenID uint64) ([]uint64, error) {
	raw, err := r.contract.GetMintingChain(ctx, new(big.Int).SetUint64(tokenID))
	if err != nil {
		return nil, &domain.ReadError{Op: "getMintingChain", TokenID: tokenID, Err: err}
	}
	chain := make([]uint64, 0, len(raw))
	for _, id := range raw {
		chain = append(chain, id.Uint64())
	}
	return chain, nil
}

// ResolveChain resolves each chain entry concurrently and independently.
// Results are indexed by input position so the rendered order always equals
// the source order, whatever the individual resolution latency. A failed
// entry carries its own error and never blocks the others.
func (r *Reader) ResolveChain(ctx context.Context, ids []uint64) []domain.ChainEntry {
	entries := make([]domain.ChainEntry, len(ids))

	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(pos int, tokenID uint64) {
			defer wg.Done()
			entries[pos].TokenID = tokenID
			article, err := r.GetArticle(ctx, tokenID)
			if err != nil {
				entries[pos].Err = err.Error()
				return
			}
			entries[pos].Article = &article
		}(i, id)
	}
	wg.Wait()

	return entries
}

// GetCard composes the listing projection for a token: on-chain article and
// owner plus the off-chain excerpt and background image. The article read is
// load-bearing; owner and content degrade per field.
func (r *Reader) GetCard(ctx context.Context, tokenID uint64) (domain.Card, error) {
	article, err := r.GetArticle(ctx, tokenID)
	if err != nil {
		return domain.Card{}, err
	}

	card := domain.Card{Article: article}

	if owner, err := r.GetOwner(ctx, tokenID); err == nil {
		card.Owner = owner
	} else {
		r.log.WarnObj("card owner read degraded", "read_error", map[string]any{
			"token_id": tokenID,
			"error":    err.Error(),
		})
	}

	ref, err := r.GetContentRef(ctx, tokenID)
	if err != nil {
		card.ContentErr = err.Error()
		return card, nil
	}
	card.ContentRef = ref

	content, err := r.content.Fetch(ctx, ref)
	if err != nil {
		card.Excerpt = content.Content // sentinel
		card.ContentErr = err.Error()
		return card, nil
	}
	card.Excerpt = Excerpt(content.Content, excerptLength)
	card.BackgroundImageURL = r.content.ImageURL(content.BackgroundImageHash)
	return card, nil
}

// GetDetail composes the full detail projection: article, owner, content
// body and background image URL. Content failures degrade to the sentinel
// body instead of failing the view.
func (r *Reader) GetDetail(ctx context.Context, tokenID uint64) (domain.Article, domain.ArticleContent, string, error) {
	article, err := r.GetArticle(ctx, tokenID)
	if err != nil {
		return domain.Article{}, domain.ArticleContent{}, "", err
	}

	if owner, err := r.GetOwner(ctx, tokenID); err == nil {
		article.Owner = owner
	}

	ref, err := r.GetContentRef(ctx, tokenID)
	if err != nil {
		return article, domain.ArticleContent{Content: pinning.ErrorLoadingContent}, "", nil
	}
	article.ContentRef = ref

	content, fetchErr := r.content.Fetch(ctx, ref)
	imageURL := ""
	if fetchErr == nil {
		imageURL = r.content.ImageURL(content.BackgroundImageHash)
	}
	return article, content, imageURL, nil
}

func toArticle(tokenID uint64, info *contract.ArticleInfo) domain.Article {
	a := domain.Article{
		TokenID:        tokenID,
		Title:          info.Title,
		OriginalAuthor: info.OriginalAuthor.Hex(),
		MintPrice:      info.MintPrice,
		Tags:           info.Tags,
	}
	if info.Timestamp != nil {
		a.Timestamp = time.Unix(info.Timestamp.Int64(), 0).UTC()
	}
	if info.ParentTokenID != nil {
		a.ParentTokenID = info.ParentTokenID.Uint64()
	}
	return a
}

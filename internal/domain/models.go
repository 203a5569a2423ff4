package domain

import (
	"math/big"
	"time"
)

// Domain contains the read-only projections of on-chain and pinned state.
// Addresses are 0x-prefixed hex strings so the models stay independent of
// any particular chain client.

// NoParent is the parentTokenID value the contract uses for root articles.
const NoParent uint64 = 0

// Article is the projection of a single on-chain article. All fields are
// owned by the contract; this side only reads them.
type Article struct {
	TokenID        uint64    `json:"token_id"`
	Title          string    `json:"title"`
	OriginalAuthor string    `json:"original_author"`
	Owner          string    `json:"owner,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
	MintPrice      *big.Int  `json:"mint_price"`
	ParentTokenID  uint64    `json:"parent_token_id"`
	Tags           []string  `json:"tags"`
	ContentRef     string    `json:"content_ref,omitempty"`
}

// HasParent reports whether the article was derived from another one.
func (a Article) HasParent() bool { return a.ParentTokenID != NoParent }

// ArticleContent is the pinned off-chain document an Article's content
// reference points at.
type ArticleContent struct {
	Title               string `json:"title"`
	Content             string `json:"content"`
	BackgroundImageHash string `json:"backgroundImageHash"`
}

// Card is the listing projection of an article: on-chain data combined with
// whatever off-chain content could be resolved. ContentErr carries a
// human-readable reason when the body could not be fetched; the card is
// still renderable.
type Card struct {
	Article
	Excerpt            string `json:"excerpt"`
	BackgroundImageURL string `json:"background_image_url,omitempty"`
	ContentErr         string `json:"content_error,omitempty"`
}

// ChainEntry is one resolved link of a minting chain. Entries are resolved
// independently; a failed entry keeps its position and carries Err while its
// siblings render normally.
type ChainEntry struct {
	TokenID uint64   `json:"token_id"`
	Article *Article `json:"article,omitempty"`
	Err     string   `json:"error,omitempty"`
}

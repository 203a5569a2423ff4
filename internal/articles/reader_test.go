package articles

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/prism-press/prism/internal/contract"
	"github.com/prism-press/prism/internal/domain"
)

var (
	authorAddr = common.HexToAddress("0x1111111111111111111111111111111111111111")
	ownerAddr  = common.HexToAddress("0x2222222222222222222222222222222222222222")
)

// fakeContract implements ContractReader over in-memory articles.
type fakeContract struct {
	ids       []uint64
	articles  map[uint64]*contract.ArticleInfo
	owners    map[uint64]common.Address
	refs      map[uint64]string
	chains    map[uint64][]uint64
	failList  bool
	failToken map[uint64]bool
	delay     map[uint64]time.Duration
}

func newFakeContract() *fakeContract {
	return &fakeContract{
		articles:  make(map[uint64]*contract.ArticleInfo),
		owners:    make(map[uint64]common.Address),
		refs:      make(map[uint64]string),
		chains:    make(map[uint64][]uint64),
		failToken: make(map[uint64]bool),
		delay:     make(map[uint64]time.Duration),
	}
}

func (f *fakeContract) addArticle(id uint64, title string) {
	f.ids = append(f.ids, id)
	f.articles[id] = &contract.ArticleInfo{
		Title:          title,
		OriginalAuthor: authorAddr,
		Timestamp:      big.NewInt(1700000000),
		MintPrice:      big.NewInt(1000),
		ParentTokenID:  big.NewInt(0),
		Tags:           []string{"news"},
	}
	f.owners[id] = ownerAddr
	f.refs[id] = fmt.Sprintf("QmRef%d", id)
}

func (f *fakeContract) ListAllArticles(context.Context) ([]*big.Int, error) {
	if f.failList {
		return nil, fmt.Errorf("rpc unavailable")
	}
	out := make([]*big.Int, len(f.ids))
	for i, id := range f.ids {
		out[i] = new(big.Int).SetUint64(id)
	}
	return out, nil
}

func (f *fakeContract) GetArticle(_ context.Context, tokenID *big.Int) (*contract.ArticleInfo, error) {
	id := tokenID.Uint64()
	if d := f.delay[id]; d > 0 {
		time.Sleep(d)
	}
	if f.failToken[id] {
		return nil, fmt.Errorf("execution reverted")
	}
	info, ok := f.articles[id]
	if !ok {
		return nil, fmt.Errorf("unknown token %d", id)
	}
	return info, nil
}

func (f *fakeContract) OwnerOf(_ context.Context, tokenID *big.Int) (common.Address, error) {
	owner, ok := f.owners[tokenID.Uint64()]
	if !ok {
		return common.Address{}, fmt.Errorf("unknown token")
	}
	return owner, nil
}

func (f *fakeContract) TokenURI(_ context.Context, tokenID *big.Int) (string, error) {
	ref, ok := f.refs[tokenID.Uint64()]
	if !ok {
		return "", fmt.Errorf("unknown token")
	}
	return ref, nil
}

func (f *fakeContract) GetMintingChain(_ context.Context, tokenID *big.Int) ([]*big.Int, error) {
	chain := f.chains[tokenID.Uint64()]
	out := make([]*big.Int, len(chain))
	for i, id := range chain {
		out[i] = new(big.Int).SetUint64(id)
	}
	return out, nil
}

// fakeFetcher implements ContentFetcher.
type fakeFetcher struct {
	content map[string]domain.ArticleContent
	fail    map[string]bool
}

func (f *fakeFetcher) Fetch(_ context.Context, ref string) (domain.ArticleContent, error) {
	if f.fail[ref] {
		return domain.ArticleContent{Content: "Error loading content"},
			&domain.ContentFetchError{Ref: ref, Err: fmt.Errorf("gateway down")}
	}
	return f.content[ref], nil
}

func (f *fakeFetcher) ImageURL(ref string) string {
	if ref == "" {
		return ""
	}
	return "https://gw.example/ipfs/" + ref
}

func TestListAllArticleIDsDistinguishesEmptyFromError(t *testing.T) {
	fc := newFakeContract()
	reader := NewReader(fc, &fakeFetcher{}, nil)

	ids, err := reader.ListAllArticleIDs(context.Background())
	if err != nil {
		t.Fatalf("empty listing must not error: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("expected empty listing, got %v", ids)
	}

	fc.failList = true
	_, err = reader.ListAllArticleIDs(context.Background())
	if err == nil {
		t.Fatalf("expected ReadError on RPC failure")
	}
	var readErr *domain.ReadError
	if !errors.As(err, &readErr) {
		t.Fatalf("expected ReadError, got %T: %v", err, err)
	}
}

func TestResolveChainPreservesSourceOrder(t *testing.T) {
	fc := newFakeContract()
	fc.addArticle(5, "five")
	fc.addArticle(2, "two")
	fc.addArticle(9, "nine")
	// Stagger latencies so completion order inverts input order.
	fc.delay[5] = 60 * time.Millisecond
	fc.delay[2] = 30 * time.Millisecond
	fc.delay[9] = 0

	reader := NewReader(fc, &fakeFetcher{}, nil)
	entries := reader.ResolveChain(context.Background(), []uint64{5, 2, 9})

	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	wantOrder := []uint64{5, 2, 9}
	wantTitle := []string{"five", "two", "nine"}
	for i, entry := range entries {
		if entry.TokenID != wantOrder[i] {
			t.Fatalf("entry %d has token %d, want %d", i, entry.TokenID, wantOrder[i])
		}
		if entry.Article == nil || entry.Article.Title != wantTitle[i] {
			t.Fatalf("entry %d resolved wrong article: %+v", i, entry.Article)
		}
	}
}

func TestResolveChainIsolatesEntryFailures(t *testing.T) {
	fc := newFakeContract()
	fc.addArticle(5, "five")
	fc.addArticle(9, "nine")
	fc.failToken[2] = true

	reader := NewReader(fc, &fakeFetcher{}, nil)
	entries := reader.ResolveChain(context.Background(), []uint64{5, 2, 9})

	if entries[0].Err != "" || entries[2].Err != "" {
		t.Fatalf("healthy entries must not fail: %+v", entries)
	}
	if entries[1].Err == "" || entries[1].Article != nil {
		t.Fatalf("broken entry must carry an inline error: %+v", entries[1])
	}
	if entries[1].TokenID != 2 {
		t.Fatalf("broken entry must keep its position, got token %d", entries[1].TokenID)
	}
}

func TestGetCardDegradesOnContentFailure(t *testing.T) {
	fc := newFakeContract()
	fc.addArticle(7, "seven")
	fetcher := &fakeFetcher{fail: map[string]bool{"QmRef7": true}}

	reader := NewReader(fc, fetcher, nil)
	card, err := reader.GetCard(context.Background(), 7)
	if err != nil {
		t.Fatalf("content failure must not fail the card: %v", err)
	}
	if card.Title != "seven" {
		t.Fatalf("on-chain data must survive, got %+v", card)
	}
	if card.ContentErr == "" {
		t.Fatalf("card must record the content error")
	}
	if card.Excerpt != "Error loading content" {
		t.Fatalf("expected sentinel excerpt, got %q", card.Excerpt)
	}
}

func TestGetCardResolvesContent(t *testing.T) {
	fc := newFakeContract()
	fc.addArticle(7, "seven")
	fetcher := &fakeFetcher{content: map[string]domain.ArticleContent{
		"QmRef7": {Title: "seven", Content: "<p>Hello world</p>", BackgroundImageHash: "QmBg"},
	}}

	reader := NewReader(fc, fetcher, nil)
	card, err := reader.GetCard(context.Background(), 7)
	if err != nil {
		t.Fatalf("GetCard: %v", err)
	}
	if card.Excerpt != "Hello world" {
		t.Fatalf("unexpected excerpt: %q", card.Excerpt)
	}
	if card.BackgroundImageURL != "https://gw.example/ipfs/QmBg" {
		t.Fatalf("unexpected image URL: %q", card.BackgroundImageURL)
	}
	if card.Owner != ownerAddr.Hex() {
		t.Fatalf("unexpected owner: %q", card.Owner)
	}
}

func TestGetDetailDegradesContentToSentinel(t *testing.T) {
	fc := newFakeContract()
	fc.addArticle(3, "three")
	fetcher := &fakeFetcher{fail: map[string]bool{"QmRef3": true}}

	reader := NewReader(fc, fetcher, nil)
	article, content, imageURL, err := reader.GetDetail(context.Background(), 3)
	if err != nil {
		t.Fatalf("GetDetail: %v", err)
	}
	if article.Title != "three" || article.Owner != ownerAddr.Hex() {
		t.Fatalf("unexpected article: %+v", article)
	}
	if content.Content != "Error loading content" {
		t.Fatalf("expected sentinel body, got %q", content.Content)
	}
	if imageURL != "" {
		t.Fatalf("no image on failure, got %q", imageURL)
	}
}

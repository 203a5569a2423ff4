package app

import (
	"context"
	"encoding/base64"
	"errors"
	"math/big"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/prism-press/prism/internal/articles"
	"github.com/prism-press/prism/internal/domain"
	"github.com/prism-press/prism/internal/logger"
	"github.com/prism-press/prism/internal/notify"
)

// cardConcurrency bounds concurrent content fetches while hydrating a page.
const cardConcurrency = 8

// ReadService is the read surface the handlers depend on. *articles.Reader
// satisfies it; tests inject fakes.
type ReadService interface {
	ListAllArticleIDs(ctx context.Context) ([]uint64, error)
	GetCard(ctx context.Context, tokenID uint64) (domain.Card, error)
	GetDetail(ctx context.Context, tokenID uint64) (domain.Article, domain.ArticleContent, string, error)
	GetMintingChain(ctx context.Context, tokenID uint64) ([]uint64, error)
	ResolveChain(ctx context.Context, ids []uint64) []domain.ChainEntry
}

// WriteService is the write surface the handlers depend on. *articles.Writer
// satisfies it.
type WriteService interface {
	Connected() bool
	WalletAddress() string
	CreateArticle(ctx context.Context, req articles.CreateRequest, observe articles.PhaseObserver) (*articles.TxResult, error)
	MintArticle(ctx context.Context, tokenID uint64, observe articles.PhaseObserver) (*articles.TxResult, error)
}

// Handlers serves the JSON API over the read and write façades.
type Handlers struct {
	reader   ReadService
	writer   WriteService
	fanout   *notify.Fanout
	pageSize int
	log      logger.Logger

	// chains coalesces concurrent minting-chain lookups for the same token.
	chains singleflight.Group
}

// NewHandlers builds the handler set.
func NewHandlers(reader ReadService, writer WriteService, fanout *notify.Fanout, pageSize int, log logger.Logger) *Handlers {
	if pageSize <= 0 {
		pageSize = 20
	}
	return &Handlers{
		reader:   reader,
		writer:   writer,
		fanout:   fanout,
		pageSize: pageSize,
		log:      logger.Ensure(log),
	}
}

// Register attaches the API routes to the router group.
func (h *Handlers) Register(r gin.IRoutes) {
	r.GET("/healthz", h.health)
	r.GET("/articles", h.listArticles)
	r.GET("/articles/:id", h.getArticle)
	r.GET("/articles/:id/chain", h.getChain)
	r.POST("/articles", h.createArticle)
	r.POST("/articles/:id/mint", h.mintArticle)
}

type cardDTO struct {
	TokenID            uint64   `json:"token_id"`
	Title              string   `json:"title"`
	OriginalAuthor     string   `json:"original_author"`
	Owner              string   `json:"owner,omitempty"`
	Timestamp          string   `json:"timestamp"`
	MintPrice          string   `json:"mint_price"`
	ParentTokenID      uint64   `json:"parent_token_id,omitempty"`
	Tags               []string `json:"tags,omitempty"`
	Excerpt            string   `json:"excerpt"`
	BackgroundImageURL string   `json:"background_image_url,omitempty"`
	ContentDegraded    bool     `json:"content_degraded,omitempty"`
	Error              string   `json:"error,omitempty"`
}

type listResponse struct {
	Page       int       `json:"page"`
	TotalPages int       `json:"total_pages"`
	TotalItems int       `json:"total_items"`
	HasNext    bool      `json:"has_next"`
	HasPrev    bool      `json:"has_prev"`
	Items      []cardDTO `json:"items"`
}

func (h *Handlers) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"wallet":    h.writer.Connected(),
		"notifiers": h.fanout.Size(),
	})
}

// listArticles serves one page of article cards, newest first. An empty
// catalog is a 200 with zero items; only a failed listing is an error.
func (h *Handlers) listArticles(c *gin.Context) {
	page := 1
	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "page must be a positive integer"})
			return
		}
		page = n
	}

	ids, err := h.reader.ListAllArticleIDs(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}

	pager := articles.NewPager(ids, h.pageSize)
	pager.SetPage(page)

	// Cards resolve independently: one failing token renders as an inline
	// error entry while its siblings hydrate normally.
	current := pager.Current()
	cards := make([]domain.Card, len(current))
	cardErrs := make([]error, len(current))

	ctx := c.Request.Context()
	var g errgroup.Group
	g.SetLimit(cardConcurrency)
	for i, id := range current {
		g.Go(func() error {
			card, err := h.reader.GetCard(ctx, id)
			if err != nil {
				cardErrs[i] = err
				return nil
			}
			cards[i] = card
			return nil
		})
	}
	_ = g.Wait()

	items := make([]cardDTO, 0, len(current))
	for i, card := range cards {
		if cardErrs[i] != nil {
			items = append(items, cardDTO{TokenID: current[i], Error: cardErrs[i].Error()})
			continue
		}
		items = append(items, toCardDTO(card))
	}
	c.JSON(http.StatusOK, listResponse{
		Page:       pager.CurrentPage(),
		TotalPages: pager.TotalPages(),
		TotalItems: pager.Total(),
		HasNext:    pager.HasNext(),
		HasPrev:    pager.HasPrev(),
		Items:      items,
	})
}

func (h *Handlers) getArticle(c *gin.Context) {
	tokenID, ok := h.tokenID(c)
	if !ok {
		return
	}

	article, content, imageURL, err := h.reader.GetDetail(c.Request.Context(), tokenID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token_id":             article.TokenID,
		"title":                article.Title,
		"original_author":      article.OriginalAuthor,
		"owner":                article.Owner,
		"timestamp":            article.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
		"mint_price":           weiString(article.MintPrice),
		"parent_token_id":      article.ParentTokenID,
		"tags":                 article.Tags,
		"content":              content.Content,
		"background_image_url": imageURL,
	})
}

// getChain resolves the full minting chain for a token. Lookups for the same
// token are coalesced so a burst of clients costs one contract walk.
func (h *Handlers) getChain(c *gin.Context) {
	tokenID, ok := h.tokenID(c)
	if !ok {
		return
	}

	key := strconv.FormatUint(tokenID, 10)
	v, err, _ := h.chains.Do(key, func() (any, error) {
		// The resolution is shared across coalesced callers, so it must
		// not die with whichever request happened to start it.
		ctx := context.WithoutCancel(c.Request.Context())
		ids, err := h.reader.GetMintingChain(ctx, tokenID)
		if err != nil {
			return nil, err
		}
		return h.reader.ResolveChain(ctx, ids), nil
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	entries := v.([]domain.ChainEntry)

	out := make([]gin.H, 0, len(entries))
	for _, e := range entries {
		item := gin.H{"token_id": e.TokenID}
		if e.Err != "" {
			item["error"] = e.Err
		} else if e.Article != nil {
			item["title"] = e.Article.Title
			item["original_author"] = e.Article.OriginalAuthor
			item["owner"] = e.Article.Owner
			item["timestamp"] = e.Article.Timestamp.Format("2006-01-02T15:04:05Z07:00")
		}
		out = append(out, item)
	}
	c.JSON(http.StatusOK, gin.H{"token_id": tokenID, "chain": out})
}

type createArticleRequest struct {
	Title       string   `json:"title" binding:"required"`
	Content     string   `json:"content" binding:"required"`
	MintPrice   string   `json:"mint_price"`
	Tags        []string `json:"tags"`
	ImageBase64 string   `json:"image_base64"`
	ImageName   string   `json:"image_name"`
}

// createArticle pins the content and submits one createArticle transaction,
// waiting for settlement before answering.
func (h *Handlers) createArticle(c *gin.Context) {
	var req createArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	price := new(big.Int)
	if strings.TrimSpace(req.MintPrice) != "" {
		if _, ok := price.SetString(strings.TrimSpace(req.MintPrice), 10); !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "mint_price must be a base-10 wei amount"})
			return
		}
	}

	var image []byte
	if req.ImageBase64 != "" {
		decoded, err := base64.StdEncoding.DecodeString(req.ImageBase64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "image_base64 is not valid base64"})
			return
		}
		image = decoded
	}

	result, err := h.writer.CreateArticle(c.Request.Context(), articles.CreateRequest{
		Title:     req.Title,
		Content:   req.Content,
		MintPrice: price,
		Tags:      req.Tags,
		Image:     image,
		ImageName: req.ImageName,
	}, h.logPhases("create"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.emit(c.Request.Context(), notify.EventArticleCreated, 0, result)
	c.JSON(http.StatusCreated, gin.H{
		"tx_hash":      result.TxHash,
		"block_number": result.BlockNumber,
		"content_ref":  result.ContentRef,
	})
}

// mintArticle mints a derivative of an existing article.
func (h *Handlers) mintArticle(c *gin.Context) {
	tokenID, ok := h.tokenID(c)
	if !ok {
		return
	}

	result, err := h.writer.MintArticle(c.Request.Context(), tokenID, h.logPhases("mint"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.emit(c.Request.Context(), notify.EventArticleMinted, tokenID, result)
	c.JSON(http.StatusCreated, gin.H{
		"tx_hash":      result.TxHash,
		"block_number": result.BlockNumber,
	})
}

func (h *Handlers) tokenID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be an unsigned integer"})
		return 0, false
	}
	return id, true
}

func (h *Handlers) logPhases(op string) articles.PhaseObserver {
	return func(phase articles.TxPhase) {
		h.log.InfoObj("transaction phase", "tx_phase", map[string]any{
			"op":    op,
			"phase": phase.String(),
		})
	}
}

// emit delivers a lifecycle event to the configured sinks. Delivery failures
// are logged, never surfaced to the caller.
func (h *Handlers) emit(ctx context.Context, eventType string, tokenID uint64, result *articles.TxResult) {
	if h.fanout.Size() == 0 {
		return
	}
	evt := notify.NewEvent(eventType, result.TxHash, h.writer.WalletAddress())
	evt.TokenID = tokenID
	evt.ContentRef = result.ContentRef
	if delivered, err := h.fanout.Send(ctx, evt); err != nil {
		h.log.WarnObj("event delivery incomplete", "notify_meta", map[string]any{
			"event":     eventType,
			"delivered": delivered,
			"error":     err.Error(),
		})
	}
}

// writeError maps domain errors to HTTP statuses.
func (h *Handlers) writeError(c *gin.Context, err error) {
	status := http.StatusBadGateway

	var cfgErr *domain.ConfigurationError
	var walletErr *domain.WalletNotConnectedError
	switch {
	case errors.Is(err, domain.ErrTxInFlight):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrAlreadyOwner):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrConfirmTimeout):
		status = http.StatusGatewayTimeout
	case errors.As(err, &walletErr):
		status = http.StatusForbidden
	case errors.As(err, &cfgErr):
		status = http.StatusInternalServerError
	}

	h.log.ErrorObj("request failed", "request_error", map[string]any{
		"path":   c.FullPath(),
		"status": status,
		"error":  err.Error(),
	})
	c.JSON(status, gin.H{"error": err.Error()})
}

func toCardDTO(card domain.Card) cardDTO {
	return cardDTO{
		TokenID:            card.TokenID,
		Title:              card.Title,
		OriginalAuthor:     card.OriginalAuthor,
		Owner:              card.Owner,
		Timestamp:          card.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
		MintPrice:          weiString(card.MintPrice),
		ParentTokenID:      card.ParentTokenID,
		Tags:               card.Tags,
		Excerpt:            card.Excerpt,
		BackgroundImageURL: card.BackgroundImageURL,
		ContentDegraded:    card.ContentErr != "",
	}
}

func weiString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

package pinning

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/prism-press/prism/internal/domain"
	"github.com/prism-press/prism/internal/logger"
	"github.com/prism-press/prism/pkg/httpclient"
)

const (
	pinFilePath = "/pinning/pinFileToIPFS"
	pinJSONPath = "/pinning/pinJSONToIPFS"
)

// PublishRequest carries the article content to pin. Image is optional.
type PublishRequest struct {
	Title     string
	Content   string
	Image     []byte
	ImageName string
}

// Publisher pins article content to the pinning service. The returned
// reference is later stored verbatim on-chain, so nothing may be submitted
// to the contract unless publishing succeeded end to end.
type Publisher struct {
	apiBase string
	jwt     string
	client  *resty.Client
	log     logger.Logger
}

// NewPublisher builds a pin API client. apiBase defaults to the public
// Pinata endpoint when empty.
func NewPublisher(apiBase, jwt string, timeout time.Duration, log logger.Logger) *Publisher {
	apiBase = strings.TrimRight(strings.TrimSpace(apiBase), "/")
	if apiBase == "" {
		apiBase = "https://api.pinata.cloud"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Publisher{
		apiBase: apiBase,
		jwt:     strings.TrimSpace(jwt),
		client:  httpclient.NewRestyHTTPClient(timeout),
		log:     logger.Ensure(log),
	}
}

// pinResponse is the relevant part of the pin API response.
type pinResponse struct {
	IpfsHash string `json:"IpfsHash"`
}

// Publish uploads the optional image first, then the JSON document embedding
// title, body, and the image reference (empty string when absent). It
// returns the document's content reference. Either step failing aborts with
// an UploadError before the caller submits any transaction.
func (p *Publisher) Publish(ctx context.Context, req PublishRequest) (string, error) {
	imageRef := ""
	if len(req.Image) > 0 {
		ref, err := p.pinFile(ctx, req.ImageName, req.Image)
		if err != nil {
			return "", &domain.UploadError{Stage: "image", Err: err}
		}
		imageRef = ref
	}

	doc := domain.ArticleContent{
		Title:               req.Title,
		Content:             req.Content,
		BackgroundImageHash: imageRef,
	}
	ref, err := p.pinJSON(ctx, doc)
	if err != nil {
		return "", &domain.UploadError{Stage: "document", Err: err}
	}

	p.log.InfoObj("article content pinned", "pin_result", map[string]any{
		"content_ref": ref,
		"image_ref":   imageRef,
		"title":       req.Title,
	})
	return ref, nil
}

func (p *Publisher) pinFile(ctx context.Context, name string, data []byte) (string, error) {
	if strings.TrimSpace(name) == "" {
		name = "image"
	}

	resp, err := p.client.R().
		SetContext(ctx).
		SetAuthToken(p.jwt).
		SetFileReader("file", name, bytes.NewReader(data)).
		Post(p.apiBase + pinFilePath)
	if err != nil {
		return "", fmt.Errorf("pin file: %w", err)
	}
	return decodePinResponse(resp)
}

func (p *Publisher) pinJSON(ctx context.Context, doc domain.ArticleContent) (string, error) {
	resp, err := p.client.R().
		SetContext(ctx).
		SetAuthToken(p.jwt).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]any{"pinataContent": doc}).
		Post(p.apiBase + pinJSONPath)
	if err != nil {
		return "", fmt.Errorf("pin json: %w", err)
	}
	return decodePinResponse(resp)
}

func decodePinResponse(resp *resty.Response) (string, error) {
	if resp.IsError() {
		snippet := strings.TrimSpace(string(resp.Body()))
		if len(snippet) > 512 {
			snippet = snippet[:512]
		}
		return "", fmt.Errorf("pin api status %d: %s", resp.StatusCode(), snippet)
	}
	var pinned pinResponse
	if err := json.Unmarshal(resp.Body(), &pinned); err != nil {
		return "", fmt.Errorf("decode pin response: %w", err)
	}
	if pinned.IpfsHash == "" {
		return "", fmt.Errorf("pin response missing IpfsHash")
	}
	return pinned.IpfsHash, nil
}

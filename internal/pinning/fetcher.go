// Package pinning talks to the pinning service: reading pinned documents
// through the gateway and publishing new ones through the pin API.
package pinning

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/prism-press/prism/internal/domain"
	"github.com/prism-press/prism/internal/logger"
	"github.com/prism-press/prism/internal/storage"
	"github.com/prism-press/prism/pkg/httpclient"
)

// ErrorLoadingContent is the sentinel body callers render when the real
// content could not be fetched. Content failures degrade, they never take
// the surrounding view down.
const ErrorLoadingContent = "Error loading content"

// Fetcher retrieves pinned JSON documents through the configured gateway.
type Fetcher struct {
	gateway string
	token   string
	client  httpclient.Client
	cache   storage.Store
	log     logger.Logger
}

// NewFetcher builds a gateway fetcher. cache may be nil to disable caching.
func NewFetcher(gateway, token string, client httpclient.Client, cache storage.Store, log logger.Logger) *Fetcher {
	if client == nil {
		client = httpclient.NewRestyClient(15 * time.Second)
	}
	return &Fetcher{
		gateway: strings.TrimSpace(gateway),
		token:   strings.TrimSpace(token),
		client:  client,
		cache:   cache,
		log:     logger.Ensure(log),
	}
}

// Fetch resolves a content reference to its pinned document. On any failure
// it returns a sentinel document together with a ContentFetchError so the
// caller can degrade gracefully.
func (f *Fetcher) Fetch(ctx context.Context, ref string) (domain.ArticleContent, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return f.degraded(ref, fmt.Errorf("empty content reference"))
	}

	if body, ok := f.cached(ref); ok {
		if content, err := decodeContent(body); err == nil {
			return content, nil
		}
		// Undecodable cache entries are treated as misses.
	}

	resp, err := f.client.Get(ctx, f.ContentURL(ref), nil)
	if err != nil {
		return f.degraded(ref, err)
	}
	if resp.StatusCode() != 200 {
		return f.degraded(ref, fmt.Errorf("gateway status %d", resp.StatusCode()))
	}

	content, err := decodeContent(resp.Body())
	if err != nil {
		return f.degraded(ref, err)
	}

	if f.cache != nil {
		if err := f.cache.Put(ref, resp.Body()); err != nil {
			f.log.WarnObj("content cache write failed", "cache_error", map[string]any{
				"ref":   ref,
				"error": err.Error(),
			})
		}
	}
	return content, nil
}

// ContentURL builds the gateway retrieval URL for a content reference.
func (f *Fetcher) ContentURL(ref string) string {
	u := fmt.Sprintf("https://%s/ipfs/%s", f.gateway, ref)
	if f.token != "" {
		u += "?pinataGatewayToken=" + url.QueryEscape(f.token)
	}
	return u
}

// ImageURL builds the gateway URL for an image reference, or "" when the
// reference is empty.
func (f *Fetcher) ImageURL(ref string) string {
	if strings.TrimSpace(ref) == "" {
		return ""
	}
	return f.ContentURL(ref)
}

func (f *Fetcher) cached(ref string) ([]byte, bool) {
	if f.cache == nil {
		return nil, false
	}
	body, found, err := f.cache.Get(ref)
	if err != nil {
		f.log.WarnObj("content cache read failed", "cache_error", map[string]any{
			"ref":   ref,
			"error": err.Error(),
		})
		return nil, false
	}
	return body, found
}

func (f *Fetcher) degraded(ref string, cause error) (domain.ArticleContent, error) {
	f.log.WarnObj("content fetch degraded to sentinel", "content_error", map[string]any{
		"ref":   ref,
		"error": cause.Error(),
	})
	return domain.ArticleContent{Content: ErrorLoadingContent},
		&domain.ContentFetchError{Ref: ref, Err: cause}
}

func decodeContent(body []byte) (domain.ArticleContent, error) {
	var content domain.ArticleContent
	if err := json.Unmarshal(body, &content); err != nil {
		return domain.ArticleContent{}, fmt.Errorf("decode content document: %w", err)
	}
	if content.Content == "" && content.Title == "" {
		return domain.ArticleContent{}, fmt.Errorf("content document is empty")
	}
	return content, nil
}

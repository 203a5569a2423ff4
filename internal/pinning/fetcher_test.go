package pinning

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/prism-press/prism/internal/domain"
	"github.com/prism-press/prism/pkg/httpclient"
)

type fakeResponse struct {
	body   []byte
	status int
}

func (f fakeResponse) Body() []byte    { return f.body }
func (f fakeResponse) StatusCode() int { return f.status }

type fakeClient struct {
	lastURL string
	calls   int
	body    string
	status  int
	err     error
}

func (f *fakeClient) Get(_ context.Context, url string, _ map[string]string) (httpclient.Response, error) {
	f.calls++
	f.lastURL = url
	if f.err != nil {
		return nil, f.err
	}
	return fakeResponse{body: []byte(f.body), status: f.status}, nil
}

func (f *fakeClient) Post(context.Context, string, map[string]string, any) (httpclient.Response, error) {
	return nil, fmt.Errorf("not implemented")
}

func TestFetcherReturnsDecodedContent(t *testing.T) {
	client := &fakeClient{
		body:   `{"title":"T","content":"Body","backgroundImageHash":""}`,
		status: 200,
	}
	fetcher := NewFetcher("gw.example", "tok", client, nil, nil)

	content, err := fetcher.Fetch(context.Background(), "QmRef")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if content.Content != "Body" {
		t.Fatalf("expected body %q, got %q", "Body", content.Content)
	}
	if content.BackgroundImageHash != "" {
		t.Fatalf("expected no background image, got %q", content.BackgroundImageHash)
	}

	wantURL := "https://gw.example/ipfs/QmRef?pinataGatewayToken=tok"
	if client.lastURL != wantURL {
		t.Fatalf("unexpected gateway URL: %s", client.lastURL)
	}
}

func TestFetcherDegradesOnTransportError(t *testing.T) {
	client := &fakeClient{err: fmt.Errorf("connection refused")}
	fetcher := NewFetcher("gw.example", "", client, nil, nil)

	content, err := fetcher.Fetch(context.Background(), "QmRef")
	if err == nil {
		t.Fatalf("expected ContentFetchError")
	}
	var fetchErr *domain.ContentFetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected ContentFetchError, got %T: %v", err, err)
	}
	if content.Content != ErrorLoadingContent {
		t.Fatalf("expected sentinel content, got %q", content.Content)
	}
}

func TestFetcherDegradesOnNonJSON(t *testing.T) {
	client := &fakeClient{body: "<html>gateway error</html>", status: 200}
	fetcher := NewFetcher("gw.example", "", client, nil, nil)

	content, err := fetcher.Fetch(context.Background(), "QmRef")
	if err == nil {
		t.Fatalf("expected ContentFetchError for non-JSON body")
	}
	if content.Content != ErrorLoadingContent {
		t.Fatalf("expected sentinel content, got %q", content.Content)
	}
}

func TestFetcherDegradesOnGatewayStatus(t *testing.T) {
	client := &fakeClient{body: "not found", status: 404}
	fetcher := NewFetcher("gw.example", "", client, nil, nil)

	_, err := fetcher.Fetch(context.Background(), "QmMissing")
	if err == nil {
		t.Fatalf("expected ContentFetchError for non-200 status")
	}
	if !strings.Contains(err.Error(), "404") {
		t.Fatalf("expected status in error, got %v", err)
	}
}

func TestFetcherServesFromCache(t *testing.T) {
	client := &fakeClient{
		body:   `{"title":"T","content":"Body","backgroundImageHash":"QmBg"}`,
		status: 200,
	}
	cache := newMemStore()
	fetcher := NewFetcher("gw.example", "", client, cache, nil)

	if _, err := fetcher.Fetch(context.Background(), "QmRef"); err != nil {
		t.Fatalf("first Fetch: %v", err)
	}
	if _, err := fetcher.Fetch(context.Background(), "QmRef"); err != nil {
		t.Fatalf("second Fetch: %v", err)
	}
	if client.calls != 1 {
		t.Fatalf("expected 1 gateway call, got %d", client.calls)
	}
}

func TestImageURLEmptyRef(t *testing.T) {
	fetcher := NewFetcher("gw.example", "tok", &fakeClient{}, nil, nil)
	if got := fetcher.ImageURL(""); got != "" {
		t.Fatalf("expected empty URL for empty ref, got %q", got)
	}
	if got := fetcher.ImageURL("QmBg"); got != "https://gw.example/ipfs/QmBg?pinataGatewayToken=tok" {
		t.Fatalf("unexpected image URL: %s", got)
	}
}

// memStore is an in-memory storage.Store for tests.
type memStore struct {
	m map[string][]byte
}

func newMemStore() *memStore { return &memStore{m: make(map[string][]byte)} }

func (s *memStore) Close() error { return nil }

func (s *memStore) Get(ref string) ([]byte, bool, error) {
	b, ok := s.m[ref]
	return b, ok, nil
}

func (s *memStore) Put(ref string, payload []byte) error {
	s.m[ref] = payload
	return nil
}

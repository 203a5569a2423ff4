package pinning

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prism-press/prism/internal/domain"
)

type pinCall struct {
	path string
	doc  domain.ArticleContent
}

func newPinServer(t *testing.T, fileHash string, failFile bool) (*httptest.Server, *[]pinCall) {
	t.Helper()
	calls := &[]pinCall{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case pinFilePath:
			*calls = append(*calls, pinCall{path: r.URL.Path})
			if failFile {
				http.Error(w, "upload rejected", http.StatusBadGateway)
				return
			}
			json.NewEncoder(w).Encode(map[string]string{"IpfsHash": fileHash})
		case pinJSONPath:
			body, _ := io.ReadAll(r.Body)
			var payload struct {
				PinataContent domain.ArticleContent `json:"pinataContent"`
			}
			if err := json.Unmarshal(body, &payload); err != nil {
				t.Errorf("bad pinJSON payload: %v", err)
			}
			*calls = append(*calls, pinCall{path: r.URL.Path, doc: payload.PinataContent})
			json.NewEncoder(w).Encode(map[string]string{"IpfsHash": "QmDoc"})
		default:
			http.NotFound(w, r)
		}
	}))
	return srv, calls
}

func TestPublishWithoutImage(t *testing.T) {
	srv, calls := newPinServer(t, "", false)
	defer srv.Close()

	pub := NewPublisher(srv.URL, "jwt", 2*time.Second, nil)
	ref, err := pub.Publish(context.Background(), PublishRequest{
		Title:   "T",
		Content: "Body",
	})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if ref != "QmDoc" {
		t.Fatalf("expected QmDoc, got %q", ref)
	}
	if len(*calls) != 1 || (*calls)[0].path != pinJSONPath {
		t.Fatalf("expected single pinJSON call, got %+v", *calls)
	}
	if (*calls)[0].doc.BackgroundImageHash != "" {
		t.Fatalf("expected empty image hash, got %q", (*calls)[0].doc.BackgroundImageHash)
	}
}

func TestPublishWithImage(t *testing.T) {
	srv, calls := newPinServer(t, "QmImg", false)
	defer srv.Close()

	pub := NewPublisher(srv.URL, "jwt", 2*time.Second, nil)
	ref, err := pub.Publish(context.Background(), PublishRequest{
		Title:     "T",
		Content:   "Body",
		Image:     []byte{0x89, 0x50, 0x4e, 0x47},
		ImageName: "bg.png",
	})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if ref != "QmDoc" {
		t.Fatalf("expected QmDoc, got %q", ref)
	}
	if len(*calls) != 2 {
		t.Fatalf("expected file then json upload, got %+v", *calls)
	}
	if (*calls)[0].path != pinFilePath || (*calls)[1].path != pinJSONPath {
		t.Fatalf("uploads out of order: %+v", *calls)
	}
	if (*calls)[1].doc.BackgroundImageHash != "QmImg" {
		t.Fatalf("document should embed the image reference, got %q", (*calls)[1].doc.BackgroundImageHash)
	}
}

func TestPublishAbortsWhenImageUploadFails(t *testing.T) {
	srv, calls := newPinServer(t, "", true)
	defer srv.Close()

	pub := NewPublisher(srv.URL, "jwt", 2*time.Second, nil)
	_, err := pub.Publish(context.Background(), PublishRequest{
		Title:   "T",
		Content: "Body",
		Image:   []byte{0x01},
	})
	if err == nil {
		t.Fatalf("expected UploadError")
	}
	var upErr *domain.UploadError
	if !errors.As(err, &upErr) {
		t.Fatalf("expected UploadError, got %T: %v", err, err)
	}
	if upErr.Stage != "image" {
		t.Fatalf("expected image stage failure, got %q", upErr.Stage)
	}
	for _, c := range *calls {
		if c.path == pinJSONPath {
			t.Fatalf("document upload must not run after image failure")
		}
	}
}

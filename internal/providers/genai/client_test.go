package genai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"topm/internal/domain"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func newTestClient(rt roundTripFunc) *Client {
	return NewClient(Options{
		APIKey:     "test-key",
		HTTPClient: &http.Client{Transport: rt},
	})
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func TestGenerateImageReturnsDataURI(t *testing.T) {
	client := newTestClient(func(r *http.Request) (*http.Response, error) {
		if got := r.URL.Query().Get("key"); got != "test-key" {
			t.Fatalf("key = %q", got)
		}
		body := `{"candidates":[{"content":{"parts":[{"inlineData":{"mimeType":"image/png","data":"QUJD"}}]}}]}`
		return jsonResponse(http.StatusOK, body), nil
	})

	got := client.GenerateImage(context.Background(), []string{"data:image/jpeg;base64,AAAA"}, "estudio")
	if got != "data:image/png;base64,QUJD" {
		t.Fatalf("got %q", got)
	}
}

func TestGenerateImageCapsReferenceImages(t *testing.T) {
	client := newTestClient(func(r *http.Request) (*http.Response, error) {
		var req struct {
			Contents []struct {
				Parts []json.RawMessage `json:"parts"`
			} `json:"contents"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		// one text part plus at most two image parts
		if got := len(req.Contents[0].Parts); got != 3 {
			t.Fatalf("parts = %d, want 3", got)
		}
		return jsonResponse(http.StatusOK, `{"candidates":[]}`), nil
	})

	sources := []string{"data:;base64,AA==", "data:;base64,AQ==", "data:;base64,Ag==", "data:;base64,Aw=="}
	client.GenerateImage(context.Background(), sources, "estudio")
}

func TestGenerateImageSoftFailures(t *testing.T) {
	cases := map[string]roundTripFunc{
		"transport error": func(r *http.Request) (*http.Response, error) {
			return nil, errors.New("connection refused")
		},
		"api error": func(r *http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusTooManyRequests, `{"error":{"code":429,"message":"quota"}}`), nil
		},
		"no image in response": func(r *http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusOK, `{"candidates":[{"content":{"parts":[{"text":"lo siento"}]}}]}`), nil
		},
	}
	for name, rt := range cases {
		if got := newTestClient(rt).GenerateImage(context.Background(), nil, "x"); got != "" {
			t.Fatalf("%s: got %q, want empty", name, got)
		}
	}
}

func TestGenerateImageDisabledClient(t *testing.T) {
	client := NewClient(Options{HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		t.Fatal("disabled client must not call the API")
		return nil, nil
	})}})
	if got := client.GenerateImage(context.Background(), nil, "x"); got != "" {
		t.Fatalf("got %q", got)
	}
}

func TestExtractProductInfoParsesText(t *testing.T) {
	client := newTestClient(func(r *http.Request) (*http.Response, error) {
		body := `{"candidates":[{"content":{"parts":[{"text":"{\"title\":\"Mochila urbana\",\"price\":49.9}"}]}}]}`
		return jsonResponse(http.StatusOK, body), nil
	})

	info, err := client.ExtractProductInfo(context.Background(), []string{"data:;base64,AA=="})
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if info.Title != "Mochila urbana" || info.Price != 49.9 {
		t.Fatalf("info = %+v", info)
	}
}

func TestExtractProductInfoTransportError(t *testing.T) {
	client := newTestClient(func(r *http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	})
	if _, err := client.ExtractProductInfo(context.Background(), nil); err == nil {
		t.Fatal("expected error")
	}
}

func TestExtractProductInfoDisabledClient(t *testing.T) {
	client := NewClient(Options{})
	_, err := client.ExtractProductInfo(context.Background(), nil)
	if !errors.Is(err, domain.ErrProviderFailure) {
		t.Fatalf("err = %v, want ErrProviderFailure", err)
	}
}

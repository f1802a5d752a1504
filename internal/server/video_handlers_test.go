package server

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"testing"
	"time"

	"studyhub/pkg/domain"
)

func TestVideoGenerationLifecycleOverHTTP(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.do(t, http.MethodPost, "/api/videos", env.token, map[string]any{
		"prompt": "the water cycle", "duration": 30, "style": "animated", "aspectRatio": "16:9",
	})
	if status != http.StatusOK {
		t.Fatalf("create status = %d body %s", status, body)
	}
	gen := decodeAs[domain.VideoGeneration](t, body)
	if gen.Status != domain.VideoPending {
		t.Fatalf("initial status = %q, want pending", gen.Status)
	}
	if gen.VideoURL != "" || gen.CompletedAt != nil {
		t.Fatalf("pending record should carry no outputs: %+v", gen)
	}

	deadline := time.Now().Add(3 * time.Second)
	for {
		status, body = env.do(t, http.MethodGet, "/api/videos/"+gen.ID, env.token, nil)
		if status != http.StatusOK {
			t.Fatalf("get status = %d", status)
		}
		got := decodeAs[domain.VideoGeneration](t, body)
		if got.Status == domain.VideoCompleted {
			if got.VideoURL == "" || got.ThumbnailURL == "" || got.CompletedAt == nil {
				t.Fatalf("completed record missing outputs: %+v", got)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("generation never completed, last status %q", got.Status)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestVideoCreateRequiresPrompt(t *testing.T) {
	env := newTestEnv(t)
	status, _ := env.do(t, http.MethodPost, "/api/videos", env.token, map[string]any{"prompt": "  "})
	if status != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", status)
	}
}

func TestUploadStoresFile(t *testing.T) {
	env := newTestEnv(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "notes.txt")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := io.WriteString(fw, "photosynthesis notes"); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	mw.Close()

	req, err := http.NewRequest(http.MethodPost, env.baseURL+"/api/uploads", &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+env.token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		t.Fatalf("status = %d body %s", resp.StatusCode, raw)
	}
	var up domain.Upload
	if err := json.NewDecoder(resp.Body).Decode(&up); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if up.OriginalName != "notes.txt" || up.Filename == "" || up.Path == "" {
		t.Fatalf("unexpected upload %+v", up)
	}
}

func TestUploadRequiresFileField(t *testing.T) {
	env := newTestEnv(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("other", "value")
	mw.Close()

	req, _ := http.NewRequest(http.MethodPost, env.baseURL+"/api/uploads", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+env.token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

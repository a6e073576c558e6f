package integration

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fhuszti/music-delivery-ms-go/internal/handler/api"
	"github.com/fhuszti/music-delivery-ms-go/internal/port"
	"github.com/fhuszti/music-delivery-ms-go/internal/task"
	"github.com/fhuszti/music-delivery-ms-go/test/testutil"
)

func (e *trackEnv) do(t *testing.T, method, target, token string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.Router.ServeHTTP(rec, req)
	return rec
}

func TestPresignedUploadLifecycleIntegration(t *testing.T) {
	ctx := context.Background()
	env := setupTrackEnv(t, task.NewNoopDispatcher())
	const id = "presign-flow-1"
	artist := env.token(t, "premium")

	rec := env.do(t, http.MethodPost, "/tracks/upload_link", artist,
		strings.NewReader(`{"id":"`+id+`","filename":"Take 3.mp3","bitrate":192}`))
	if rec.Code != http.StatusCreated {
		t.Fatalf("upload link status = %d; want 201 (body=%q)", rec.Code, rec.Body.String())
	}
	var link port.GenerateUploadLinkOutput
	if err := json.Unmarshal(rec.Body.Bytes(), &link); err != nil {
		t.Fatalf("decode link: %v", err)
	}
	if p, err := env.Pending.Get(ctx, id, 192); err != nil || p.Extension != "mp3" || p.OriginalFilename != "Take 3.mp3" {
		t.Fatalf("pending row = %+v, %v", p, err)
	}

	// finalising before the client uploaded keeps the link pending
	rec = env.do(t, http.MethodPost, "/tracks/"+id+"/finalise", artist, strings.NewReader(`{"bitrate":192}`))
	if rec.Code != http.StatusConflict {
		t.Fatalf("early finalise status = %d; want 409 (body=%q)", rec.Code, rec.Body.String())
	}

	// a link in another format for the same track is refused
	rec = env.do(t, http.MethodPost, "/tracks/upload_link", artist,
		strings.NewReader(`{"id":"`+id+`","filename":"take.wav","bitrate":320}`))
	if rec.Code != http.StatusConflict {
		t.Fatalf("mixed format link status = %d; want 409", rec.Code)
	}

	putReq, err := http.NewRequest(http.MethodPut, link.URL, bytes.NewReader(testutil.FakeMP3(2048)))
	if err != nil {
		t.Fatalf("build PUT: %v", err)
	}
	putReq.Header.Set("Content-Type", "audio/mpeg")
	putResp, err := http.DefaultClient.Do(putReq)
	if err != nil {
		t.Fatalf("PUT to presigned url: %v", err)
	}
	_, _ = io.Copy(io.Discard, putResp.Body)
	_ = putResp.Body.Close()
	if putResp.StatusCode != http.StatusOK {
		t.Fatalf("PUT status = %d; want 200", putResp.StatusCode)
	}

	rec = env.do(t, http.MethodPost, "/tracks/"+id+"/finalise", artist, strings.NewReader(`{"bitrate":192}`))
	if rec.Code != http.StatusOK {
		t.Fatalf("finalise status = %d; want 200 (body=%q)", rec.Code, rec.Body.String())
	}
	var finalised api.UploadAudioResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &finalised); err != nil {
		t.Fatalf("decode finalise response: %v", err)
	}
	wantURL := "https://" + testDistribution + ".cloudfront.net/music/192kbps/" + id + ".mp3"
	if finalised.Extension != "mp3" || len(finalised.Variants) != 1 || finalised.Variants[192] != wantURL {
		t.Fatalf("finalise response = %+v", finalised)
	}
	if _, err := env.Pending.Get(ctx, id, 192); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("pending row after finalise err = %v; want sql.ErrNoRows", err)
	}

	// finalising twice is harmless
	rec = env.do(t, http.MethodPost, "/tracks/"+id+"/finalise", artist, strings.NewReader(`{"bitrate":192}`))
	if rec.Code != http.StatusOK {
		t.Errorf("second finalise status = %d; want 200", rec.Code)
	}

	rec = env.do(t, http.MethodGet, "/tracks/"+id+"/stream", env.listenerToken(t, "premium"), nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "/192kbps/") {
		t.Fatalf("stream status = %d body=%q", rec.Code, rec.Body.String())
	}

	rec = env.do(t, http.MethodDelete, "/tracks/"+id, artist, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d; want 204 (body=%q)", rec.Code, rec.Body.String())
	}
	keys, err := testutil.ObjectKeys(GlobalMinioClient, env.Bucket)
	if err != nil {
		t.Fatalf("list objects: %v", err)
	}
	if len(keys) != 0 {
		t.Errorf("objects left after delete: %v", keys)
	}
}

func TestDeleteUnfinishedPresignedUploadIntegration(t *testing.T) {
	ctx := context.Background()
	env := setupTrackEnv(t, task.NewNoopDispatcher())
	artist := env.token(t, "free")

	rec := env.do(t, http.MethodPost, "/tracks/upload_link", artist, strings.NewReader(`{"filename":"demo.flac","bitrate":128}`))
	if rec.Code != http.StatusCreated {
		t.Fatalf("upload link status = %d; want 201", rec.Code)
	}
	var link port.GenerateUploadLinkOutput
	if err := json.Unmarshal(rec.Body.Bytes(), &link); err != nil {
		t.Fatalf("decode link: %v", err)
	}
	putReq, _ := http.NewRequest(http.MethodPut, link.URL, bytes.NewReader([]byte("fLaC pretend audio")))
	putResp, err := http.DefaultClient.Do(putReq)
	if err != nil {
		t.Fatalf("PUT to presigned url: %v", err)
	}
	_ = putResp.Body.Close()

	// never finalised, still removable
	rec = env.do(t, http.MethodDelete, "/tracks/"+link.ID, artist, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d; want 204 (body=%q)", rec.Code, rec.Body.String())
	}
	keys, err := testutil.ObjectKeys(GlobalMinioClient, env.Bucket)
	if err != nil {
		t.Fatalf("list objects: %v", err)
	}
	if len(keys) != 0 {
		t.Errorf("objects left after delete: %v", keys)
	}
	if rows, err := env.Pending.ListByAsset(ctx, link.ID); err != nil || len(rows) != 0 {
		t.Errorf("pending rows = %+v, %v", rows, err)
	}
}

func TestReuploadWithFewerBitratesIntegration(t *testing.T) {
	env := setupTrackEnv(t, task.NewNoopDispatcher())
	const id = "fewer-1"

	for _, bitrates := range []string{"", "128"} {
		body, ct := uploadBody(t, "song.mp3", testutil.FakeMP3(1024), bitrates)
		req := httptest.NewRequest(http.MethodPost, "/tracks/"+id+"/audio", body)
		req.Header.Set("Content-Type", ct)
		req.Header.Set("Authorization", "Bearer "+env.token(t, "vip"))
		rec := httptest.NewRecorder()
		env.Router.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("upload %q status = %d; want 201", bitrates, rec.Code)
		}
	}
	keys, err := testutil.ObjectKeys(GlobalMinioClient, env.Bucket)
	if err != nil {
		t.Fatalf("list objects: %v", err)
	}
	if len(keys) != 1 || keys[0] != "music/128kbps/"+id+".mp3" {
		t.Errorf("objects after re-upload = %v; want only the 128kbps variant", keys)
	}

	rec := env.do(t, http.MethodDelete, "/tracks/"+id, env.token(t, "vip"), nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d; want 204", rec.Code)
	}
	if keys, _ := testutil.ObjectKeys(GlobalMinioClient, env.Bucket); len(keys) != 0 {
		t.Errorf("objects left after delete: %v", keys)
	}
}

func TestListenerCannotPublishIntegration(t *testing.T) {
	env := setupTrackEnv(t, task.NewNoopDispatcher())
	listener := env.listenerToken(t, "vip")

	rec := env.do(t, http.MethodPost, "/tracks/upload_link", listener, strings.NewReader(`{"filename":"a.mp3","bitrate":128}`))
	if rec.Code != http.StatusForbidden {
		t.Errorf("upload link status = %d; want 403", rec.Code)
	}
	rec = env.do(t, http.MethodPost, "/tracks/x/finalise", listener, strings.NewReader(`{"bitrate":128}`))
	if rec.Code != http.StatusForbidden {
		t.Errorf("finalise status = %d; want 403", rec.Code)
	}
	rec = env.do(t, http.MethodDelete, "/tracks/x", listener, nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("delete status = %d; want 403", rec.Code)
	}

	body, ct := uploadBody(t, "song.mp3", testutil.FakeMP3(512), "")
	req := httptest.NewRequest(http.MethodPost, "/tracks/x/audio", body)
	req.Header.Set("Content-Type", ct)
	req.Header.Set("Authorization", "Bearer "+listener)
	rec = httptest.NewRecorder()
	env.Router.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("upload status = %d; want 403", rec.Code)
	}

	// streaming stays open to listeners
	rec = env.do(t, http.MethodGet, "/tracks/x/stream", listener, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("stream status = %d; want 404", rec.Code)
	}
}

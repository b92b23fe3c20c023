package handler

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftaldev/redline/internal/config"
	"github.com/driftaldev/redline/internal/core"
)

type fakeDispatcher struct {
	events []*core.ReviewEvent
	err    error
}

func (d *fakeDispatcher) Dispatch(_ context.Context, event *core.ReviewEvent) error {
	if d.err != nil {
		return d.err
	}
	d.events = append(d.events, event)
	return nil
}

const webhookSecret = "test-secret"

func newTestHandler(dispatcher core.JobDispatcher) *WebhookHandler {
	cfg := &config.Config{}
	cfg.GitHub.WebhookSecret = webhookSecret
	return NewWebhookHandler(cfg, dispatcher, slog.Default())
}

func signedRequest(t *testing.T, eventType string, payload []byte) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhook/github", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-GitHub-Event", eventType)

	mac := hmac.New(sha256.New, []byte(webhookSecret))
	mac.Write(payload)
	req.Header.Set("X-Hub-Signature-256", "sha256="+hex.EncodeToString(mac.Sum(nil)))
	return req
}

const reviewCommentPayload = `{
	"issue": {
		"number": 7,
		"title": "Add login",
		"pull_request": {"url": "https://api.github.com/repos/acme/app/pulls/7"}
	},
	"comment": {"body": "/review", "user": {"login": "alice"}},
	"repository": {
		"name": "app",
		"full_name": "acme/app",
		"clone_url": "https://github.com/acme/app.git",
		"owner": {"login": "acme"}
	},
	"installation": {"id": 12345}
}`

func TestHandleReviewComment(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	h := newTestHandler(dispatcher)

	rec := httptest.NewRecorder()
	h.Handle(rec, signedRequest(t, "issue_comment", []byte(reviewCommentPayload)))

	assert.Equal(t, http.StatusAccepted, rec.Code)
	require.Len(t, dispatcher.events, 1)
	assert.Equal(t, "acme/app", dispatcher.events[0].RepoFullName)
	assert.Equal(t, 7, dispatcher.events[0].PRNumber)
	assert.Equal(t, int64(12345), dispatcher.events[0].InstallationID)
}

func TestHandleNonReviewCommentIgnored(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	h := newTestHandler(dispatcher)

	payload := []byte(`{
		"issue": {"number": 7, "pull_request": {"url": "x"}},
		"comment": {"body": "nice work", "user": {"login": "alice"}},
		"repository": {"name": "app", "full_name": "acme/app", "owner": {"login": "acme"}},
		"installation": {"id": 12345}
	}`)

	rec := httptest.NewRecorder()
	h.Handle(rec, signedRequest(t, "issue_comment", payload))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, dispatcher.events)
}

func TestHandleInvalidSignature(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	h := newTestHandler(dispatcher)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhook/github", bytes.NewReader([]byte(reviewCommentPayload)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-GitHub-Event", "issue_comment")
	req.Header.Set("X-Hub-Signature-256", "sha256=deadbeef")

	rec := httptest.NewRecorder()
	h.Handle(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, dispatcher.events)
}

func TestHandleQueueFull(t *testing.T) {
	dispatcher := &fakeDispatcher{err: assert.AnError}
	h := newTestHandler(dispatcher)

	rec := httptest.NewRecorder()
	h.Handle(rec, signedRequest(t, "issue_comment", []byte(reviewCommentPayload)))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHandleUnhandledEventType(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	h := newTestHandler(dispatcher)

	rec := httptest.NewRecorder()
	h.Handle(rec, signedRequest(t, "push", []byte(`{"ref": "refs/heads/main"}`)))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, dispatcher.events)
}

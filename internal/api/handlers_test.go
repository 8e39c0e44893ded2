package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/recipient-sync/internal/config"
	"github.com/ignite/recipient-sync/internal/domain"
	"github.com/ignite/recipient-sync/internal/drive"
	"github.com/ignite/recipient-sync/internal/recipient"
)

type stubFileStore struct {
	files   []drive.File
	content map[string]string
	listErr error
}

func (s *stubFileStore) ListFilesInFolder(ctx context.Context, folderID string) ([]drive.File, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.files, nil
}

func (s *stubFileStore) DownloadFile(ctx context.Context, f drive.File) (string, error) {
	return s.content[f.ID], nil
}

type stubCampaignRepo struct {
	campaigns []domain.Campaign
}

func (s *stubCampaignRepo) FindByNameCandidates(ctx context.Context, candidates []string) (*domain.Campaign, error) {
	for _, c := range s.campaigns {
		for _, cand := range candidates {
			if strings.EqualFold(c.CampaignName, cand) {
				match := c
				return &match, nil
			}
		}
	}
	return nil, nil
}

type stubRecipientRepo struct{}

func (stubRecipientRepo) FindByEmails(ctx context.Context, campaignID string, emails []string) ([]domain.Recipient, error) {
	return nil, nil
}

func (stubRecipientRepo) CreateMany(ctx context.Context, recipients []domain.Recipient) (int, error) {
	return len(recipients), nil
}

func (stubRecipientRepo) UpdateMany(ctx context.Context, recipients []domain.Recipient) error {
	return nil
}

func newTestServer(t *testing.T, store *stubFileStore, sessions *SessionStore) *Server {
	t.Helper()
	persister := recipient.NewPersister(stubRecipientRepo{}, 250, 0)
	syncer := recipient.NewSyncer(
		store,
		&stubCampaignRepo{campaigns: []domain.Campaign{{ID: "camp-a", CampaignName: "Campaign A"}}},
		persister,
		map[string]config.FolderConfig{
			"default": {ID: "folder-1", DisplayName: "Recipient Files"},
			"weekly":  {ID: "folder-2", DisplayName: "Weekly Drops"},
		},
		"default",
		time.Minute,
		0,
	)
	return NewServer(syncer, sessions)
}

func postRun(t *testing.T, srv *Server, body map[string]any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/recipient-sync/runs", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHandleRunSuccess(t *testing.T) {
	srv := newTestServer(t, &stubFileStore{
		files: []drive.File{
			{ID: "f1", Name: "Campaign_A.csv"},
			{ID: "f2", Name: "Unknown.csv"},
		},
		content: map[string]string{"f1": "email\njane@x.com\n"},
	}, nil)

	rec := postRun(t, srv, map[string]any{})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Summary   recipient.Summary `json:"summary"`
		NextIndex int               `json:"next_index"`
		Done      bool              `json:"done"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Summary.TotalFiles)
	assert.Equal(t, 1, resp.Summary.RecipientsInserted)
	assert.Equal(t, []string{"Unknown.csv"}, resp.Summary.UnmatchedFiles)
	assert.Equal(t, 2, resp.NextIndex)
	assert.True(t, resp.Done)
}

func TestHandleRunPagination(t *testing.T) {
	srv := newTestServer(t, &stubFileStore{
		files: []drive.File{
			{ID: "f1", Name: "A.csv"}, {ID: "f2", Name: "B.csv"}, {ID: "f3", Name: "C.csv"},
		},
	}, nil)

	rec := postRun(t, srv, map[string]any{"start_index": 0, "batch_size": 2})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		NextIndex int  `json:"next_index"`
		Done      bool `json:"done"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.NextIndex)
	assert.False(t, resp.Done)
}

func TestHandleRunRejectsNegativeValues(t *testing.T) {
	srv := newTestServer(t, &stubFileStore{}, nil)
	rec := postRun(t, srv, map[string]any{"start_index": -1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleRunUnknownFolder(t *testing.T) {
	srv := newTestServer(t, &stubFileStore{}, nil)
	rec := postRun(t, srv, map[string]any{"folder": "nope"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "nope")
}

func TestHandleRunListingFailure(t *testing.T) {
	srv := newTestServer(t, &stubFileStore{listErr: errors.New("failed for all strategies: status 403")}, nil)
	rec := postRun(t, srv, map[string]any{})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "sync_failed")
}

func TestHandleRunTimeoutShaped(t *testing.T) {
	srv := newTestServer(t, &stubFileStore{listErr: context.DeadlineExceeded}, nil)
	rec := postRun(t, srv, map[string]any{})
	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
	assert.Contains(t, rec.Body.String(), "timeout")
}

func TestHandleRunWithSession(t *testing.T) {
	sessions, _ := newTestSessionStore(t)
	srv := newTestServer(t, &stubFileStore{
		files: []drive.File{
			{ID: "f1", Name: "A.csv"}, {ID: "f2", Name: "B.csv"},
		},
	}, sessions)

	rec := postRun(t, srv, map[string]any{"batch_size": 1, "session_id": "sess-1"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = postRun(t, srv, map[string]any{"start_index": 1, "batch_size": 1, "session_id": "sess-1"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Session *recipient.Summary `json:"session"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Session)
	assert.Equal(t, 2, resp.Session.ProcessedFiles)
	assert.Equal(t, recipient.Range{Start: 0, End: 1}, resp.Session.ProcessedRange)
}

func TestHandleFolders(t *testing.T) {
	srv := newTestServer(t, &stubFileStore{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/recipient-sync/folders", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Folders []struct {
			Key         string `json:"key"`
			DisplayName string `json:"display_name"`
			Default     bool   `json:"default"`
		} `json:"folders"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Folders, 2)
	assert.Equal(t, "default", resp.Folders[0].Key)
	assert.True(t, resp.Folders[0].Default)
	assert.Equal(t, "weekly", resp.Folders[1].Key)
	assert.False(t, resp.Folders[1].Default)
}

func TestHandleGetSessionWithoutStore(t *testing.T) {
	srv := newTestServer(t, &stubFileStore{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/recipient-sync/sessions/sess-1", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleGetSessionNotFound(t *testing.T) {
	sessions, _ := newTestSessionStore(t)
	srv := newTestServer(t, &stubFileStore{}, sessions)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/recipient-sync/sessions/missing", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t, &stubFileStore{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techn4r/ai-code-reviewer/internal/domain"
	"github.com/techn4r/ai-code-reviewer/internal/usecase/review"
)

type fakeService struct {
	mode       review.Mode
	result     domain.ReviewResult
	err        error
	lastCode   string
	lastLang   string
	lastDiff   string
	lastPath   string
	lastBase   map[string]string
	diffResult []domain.ReviewResult
}

func (f *fakeService) Review(_ context.Context, code, lang, _, filename string) (domain.ReviewResult, error) {
	f.lastCode = code
	f.lastLang = lang
	if f.err != nil {
		return domain.ReviewResult{}, f.err
	}
	res := f.result
	res.FilePath = filename
	return res, nil
}

func (f *fakeService) ReviewFile(_ context.Context, path string) (domain.ReviewResult, error) {
	f.lastPath = path
	if f.err != nil {
		return domain.ReviewResult{}, f.err
	}
	return f.result, nil
}

func (f *fakeService) ReviewDiff(_ context.Context, diffText string, baseContent map[string]string) ([]domain.ReviewResult, error) {
	f.lastDiff = diffText
	f.lastBase = baseContent
	if f.err != nil {
		return nil, f.err
	}
	return f.diffResult, nil
}

func newTestServer(t *testing.T, svc *fakeService, secret string) *httptest.Server {
	t.Helper()
	s := NewServer(Options{AuthSecret: secret}, func(mode review.Mode) (Service, error) {
		svc.mode = mode
		return svc, nil
	})
	ts := httptest.NewServer(s.routes())
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url string, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, &fakeService{}, "")

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestReview(t *testing.T) {
	svc := &fakeService{
		result: domain.ReviewResult{
			Language: "python",
			Summary:  domain.Summary{TotalIssues: 1, QualityScore: 8.0},
		},
	}
	ts := newTestServer(t, svc, "")

	resp := postJSON(t, ts.URL+"/review", `{"code":"print(1)","language":"python","mode":"deep","filename":"app.py"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var result domain.ReviewResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, "python", result.Language)
	assert.Equal(t, "app.py", result.FilePath)
	assert.Equal(t, 8.0, result.Summary.QualityScore)

	assert.Equal(t, "print(1)", svc.lastCode)
	assert.Equal(t, "python", svc.lastLang)
	assert.Equal(t, review.ModeDeep, svc.mode)
}

func TestReview_UnknownModeFallsBack(t *testing.T) {
	svc := &fakeService{}
	ts := newTestServer(t, svc, "")

	resp := postJSON(t, ts.URL+"/review", `{"code":"x = 1","mode":"frantic"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, review.ModeStandard, svc.mode)
}

func TestReview_MissingCode(t *testing.T) {
	ts := newTestServer(t, &fakeService{}, "")

	resp := postJSON(t, ts.URL+"/review", `{"language":"go"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var e errorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&e))
	assert.Contains(t, e.Error, "code is required")
}

func TestReview_InvalidJSON(t *testing.T) {
	ts := newTestServer(t, &fakeService{}, "")

	resp := postJSON(t, ts.URL+"/review", `{"code":`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestReview_MethodNotAllowed(t *testing.T) {
	ts := newTestServer(t, &fakeService{}, "")

	resp, err := http.Get(ts.URL + "/review")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestReview_ProviderFailure(t *testing.T) {
	svc := &fakeService{err: fmt.Errorf("provider openai: service unavailable")}
	ts := newTestServer(t, svc, "")

	resp := postJSON(t, ts.URL+"/review", `{"code":"x = 1"}`)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	var e errorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&e))
	assert.Contains(t, e.Error, "service unavailable")
}

func TestReviewDiff(t *testing.T) {
	svc := &fakeService{
		diffResult: []domain.ReviewResult{
			{FilePath: "a.go", Language: "go"},
			{FilePath: "b.go", Language: "go"},
		},
	}
	ts := newTestServer(t, svc, "")

	resp := postJSON(t, ts.URL+"/review/diff", `{"diff":"--- a/a.go\n+++ b/a.go\n","base_content":{"a.go":"package a\n"}}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body diffReviewResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Results, 2)
	assert.Equal(t, "a.go", body.Results[0].FilePath)

	assert.Contains(t, svc.lastDiff, "+++ b/a.go")
	assert.Equal(t, "package a\n", svc.lastBase["a.go"])
}

func TestReviewDiff_EmptyResultsIsArray(t *testing.T) {
	ts := newTestServer(t, &fakeService{}, "")

	resp := postJSON(t, ts.URL+"/review/diff", `{"diff":"not really a diff"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	raw := make(map[string]json.RawMessage)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&raw))
	assert.JSONEq(t, `[]`, string(raw["results"]))
}

func TestReviewFile(t *testing.T) {
	svc := &fakeService{result: domain.ReviewResult{FilePath: "main.go", Language: "go"}}
	ts := newTestServer(t, svc, "")

	resp := postJSON(t, ts.URL+"/review/file", `{"path":"main.go"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "main.go", svc.lastPath)
}

func TestReviewFile_MissingPath(t *testing.T) {
	ts := newTestServer(t, &fakeService{}, "")

	resp := postJSON(t, ts.URL+"/review/file", `{}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAuth_RejectsMissingToken(t *testing.T) {
	ts := newTestServer(t, &fakeService{}, "topsecret")

	resp := postJSON(t, ts.URL+"/review", `{"code":"x = 1"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuth_RejectsBadToken(t *testing.T) {
	ts := newTestServer(t, &fakeService{}, "topsecret")

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/review", strings.NewReader(`{"code":"x = 1"}`))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer not-a-jwt")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuth_RejectsWrongSecret(t *testing.T) {
	ts := newTestServer(t, &fakeService{}, "topsecret")

	token, err := IssueToken("othersecret", "tests", time.Minute)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/review", strings.NewReader(`{"code":"x = 1"}`))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuth_AcceptsValidToken(t *testing.T) {
	ts := newTestServer(t, &fakeService{}, "topsecret")

	token, err := IssueToken("topsecret", "tests", time.Minute)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/review", strings.NewReader(`{"code":"x = 1"}`))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuth_HealthStaysOpen(t *testing.T) {
	ts := newTestServer(t, &fakeService{}, "topsecret")

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

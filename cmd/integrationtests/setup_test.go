package integrationtests

import (
	bidding "auction-house/internal/biddingService"
	"auction-house/internal/events"
	model "auction-house/internal/models"
	"auction-house/internal/repository"
	"auction-house/internal/server"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

// testEnv bundles a router with the in-memory state behind it.
type testEnv struct {
	router   *gin.Engine
	repo     *repository.MemoryRepo
	recorder *events.Recorder
}

// SetupTestRouter initializes the router with in-memory repository for integration testing.
func SetupTestRouter(t *testing.T) testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := repository.NewMemoryRepo()
	recorder := &events.Recorder{}
	service := bidding.NewBiddingService(repo, bidding.Options{Events: recorder})
	router := server.SetupRouter(service, server.RouterOptions{})
	return testEnv{router: router, repo: repo, recorder: recorder}
}

// SetupTestRouterWithCatalog initializes the router and seeds the repo with users and items.
func SetupTestRouterWithCatalog(t *testing.T, users []model.User, items ...model.Item) testEnv {
	t.Helper()
	env := SetupTestRouter(t)
	ctx := context.Background()

	for _, u := range users {
		if err := env.repo.AddUser(ctx, u); err != nil {
			t.Fatalf("failed to add user: %v", err)
		}
	}
	for _, item := range items {
		if err := env.repo.AddItem(ctx, item); err != nil {
			t.Fatalf("failed to add item: %v", err)
		}
	}
	return env
}

// ExecuteRequest executes an HTTP request and returns the response recorder.
func ExecuteRequest(t *testing.T, router *gin.Engine, method, url string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, url, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// ExecuteRequestAndParse executes an HTTP request on the given router and parses the response envelope
func ExecuteRequestAndParse(t *testing.T, router *gin.Engine, method, url string, body any) (map[string]any, *httptest.ResponseRecorder) {
	var reqBody []byte
	var err error

	switch v := body.(type) {
	case nil:
	case []byte:
		reqBody = v
	default:
		reqBody, err = json.Marshal(v)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
	}

	w := ExecuteRequest(t, router, method, url, reqBody)

	var resp map[string]any
	if len(w.Body.Bytes()) > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}
	}

	return resp, w
}

// dataOf returns the "data" object of a response envelope.
func dataOf(t *testing.T, resp map[string]any) map[string]any {
	t.Helper()
	data, ok := resp["data"].(map[string]any)
	if !ok {
		t.Fatalf("response has no data object: %v", resp)
	}
	return data
}

// createAuction opens an auction for itemID that started now and runs for d.
func createAuction(t *testing.T, env testEnv, itemID string, increment int64, d time.Duration) string {
	t.Helper()
	start := time.Now().UTC()
	resp, w := ExecuteRequestAndParse(t, env.router, http.MethodPost, "/auctions", map[string]any{
		"item_id":       itemID,
		"start_time":    start,
		"end_time":      start.Add(d),
		"min_increment": increment,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create auction: status %d body %s", w.Code, w.Body.String())
	}
	return dataOf(t, resp)["auction_id"].(string)
}

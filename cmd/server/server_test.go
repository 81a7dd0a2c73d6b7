package main

import (
	"bytes"
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/Simplici0/sumrai/internal/catalog"
	"github.com/Simplici0/sumrai/internal/config"
	"github.com/Simplici0/sumrai/internal/db"
	"github.com/Simplici0/sumrai/internal/migrations"
	"github.com/Simplici0/sumrai/internal/pricing"
	"github.com/Simplici0/sumrai/internal/project"
	"github.com/Simplici0/sumrai/internal/seed"
	"github.com/Simplici0/sumrai/internal/store"
)

const (
	testAdminEmail    = "admin@sumrai.jp"
	testAdminPassword = "secret-pass"
)

func newTestServer(t *testing.T) (*server, http.Handler) {
	t.Helper()

	database, err := db.Open(filepath.Join(t.TempDir(), "server-test.db"))
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	if err := migrations.Up(database); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	if _, err := seed.Run(database, seed.Config{AdminEmail: testAdminEmail, AdminPassword: testAdminPassword}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	cfg := config.Config{Env: "development", SessionSecret: "test-secret"}
	srv, err := newServer(context.Background(), database, cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("newServer: %v", err)
	}
	srv.now = func() time.Time { return time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC) }
	return srv, srv.routes()
}

func do(t *testing.T, h http.Handler, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	case []byte:
		reader = bytes.NewReader(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func sampleRequest() pricing.Request {
	specs, options := catalog.Default().DefaultSelections()
	return pricing.Request{
		Record: pricing.Record{
			ProjectName:      "テスト邸",
			Floors:           "2階",
			BuildingArea:     "100㎡",
			TotalFloorArea:   "150㎡",
			ExteriorWallArea: "200㎡",
			ToiletCount:      "2",
			WashStandCount:   "1",
		},
		Specs:   specs,
		Options: options,
	}
}

func login(t *testing.T, h http.Handler) *http.Cookie {
	t.Helper()

	rec := do(t, h, http.MethodPost, "/api/login", loginRequest{Email: testAdminEmail, Password: testAdminPassword})
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, body = %s", rec.Code, rec.Body.String())
	}
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookieName {
			return c
		}
	}
	t.Fatalf("login did not set a session cookie")
	return nil
}

func TestEstimate(t *testing.T) {
	_, h := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/api/estimate", sampleRequest())
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp estimateResponse
	decode(t, rec, &resp)
	if resp.CatalogVersion != 1 {
		t.Fatalf("catalog version = %d, want 1", resp.CatalogVersion)
	}
	if len(resp.Estimate.Items) != 23 {
		t.Fatalf("items = %d, want 23", len(resp.Estimate.Items))
	}
	if math.Abs(resp.Estimate.Totals.Cost-23400500) > 1e-6 {
		t.Fatalf("total cost = %v", resp.Estimate.Totals.Cost)
	}
	if resp.Record.FloorHeight != "１階3000㎜, 2階2850㎜" {
		t.Fatalf("record not normalized: %q", resp.Record.FloorHeight)
	}
}

func TestEstimate_RejectsBadBody(t *testing.T) {
	_, h := newTestServer(t)

	for _, body := range []string{"", "{", `{"specifications": 3}`} {
		rec := do(t, h, http.MethodPost, "/api/estimate", body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %q: status = %d", body, rec.Code)
		}
	}
}

func TestDefaultSelections(t *testing.T) {
	_, h := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/api/selections/default", nil)
	var resp selectionsResponse
	decode(t, rec, &resp)

	if resp.Specifications["roof"] != "galvalume" {
		t.Fatalf("roof = %q", resp.Specifications["roof"])
	}
	for id, on := range resp.Options {
		if on {
			t.Fatalf("option %s on by default", id)
		}
	}
}

func TestCatalogAdmin(t *testing.T) {
	srv, h := newTestServer(t)

	edited := catalog.Default()
	edited.OptionProfitMargin = 0.3

	if rec := do(t, h, http.MethodPut, "/api/catalog", edited); rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous PUT status = %d", rec.Code)
	}
	if rec := do(t, h, http.MethodPost, "/api/login", loginRequest{Email: testAdminEmail, Password: "wrong"}); rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad login status = %d", rec.Code)
	}

	cookie := login(t, h)

	rec := do(t, h, http.MethodPut, "/api/catalog", edited, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("PUT status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp catalogResponse
	decode(t, rec, &resp)
	if resp.Version != 2 || resp.Catalog.OptionProfitMargin != 0.3 {
		t.Fatalf("PUT response = v%d margin %v", resp.Version, resp.Catalog.OptionProfitMargin)
	}

	invalid := catalog.Default()
	invalid.CostItems[0].Formula = "eval(1)"
	if rec := do(t, h, http.MethodPut, "/api/catalog", invalid, cookie); rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("invalid PUT status = %d", rec.Code)
	}
	if srv.catalog.Version() != 2 {
		t.Fatalf("rejected edit changed version to %d", srv.catalog.Version())
	}

	stored, version, err := srv.store.LatestCatalog(context.Background())
	if err != nil || version != 2 || stored.OptionProfitMargin != 0.3 {
		t.Fatalf("persisted catalog v%d, err %v", version, err)
	}

	rec = do(t, h, http.MethodPost, "/api/catalog/reset", nil, cookie)
	decode(t, rec, &resp)
	if resp.Version != 3 || resp.Catalog.OptionProfitMargin != 0.35 {
		t.Fatalf("reset response = v%d margin %v", resp.Version, resp.Catalog.OptionProfitMargin)
	}

	rec = do(t, h, http.MethodGet, "/api/catalog?format=yaml", nil)
	if !strings.Contains(rec.Header().Get("Content-Type"), "yaml") {
		t.Fatalf("content type = %q", rec.Header().Get("Content-Type"))
	}
	if _, err := catalog.DecodeYAML(rec.Body); err != nil {
		t.Fatalf("yaml catalog does not decode: %v", err)
	}

	if rec := do(t, h, http.MethodPost, "/api/logout", nil, cookie); rec.Code != http.StatusNoContent {
		t.Fatalf("logout status = %d", rec.Code)
	}
}

func TestCatalogAdmin_YAMLUpload(t *testing.T) {
	_, h := newTestServer(t)
	cookie := login(t, h)

	var buf bytes.Buffer
	c := catalog.Default()
	c.CostItems[0].Formula = "totalFloorArea * 4000 + 140000"
	if err := catalog.EncodeYAML(&buf, c); err != nil {
		t.Fatalf("encode yaml: %v", err)
	}

	req := httptest.NewRequest(http.MethodPut, "/api/catalog", &buf)
	req.Header.Set("Content-Type", "application/yaml")
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	rec = do(t, h, http.MethodPost, "/api/estimate", sampleRequest())
	var resp estimateResponse
	decode(t, rec, &resp)
	if resp.CatalogVersion != 2 || math.Abs(resp.Estimate.Items[0].Cost-740000) > 1e-6 {
		t.Fatalf("estimate after upload = v%d first item %v", resp.CatalogVersion, resp.Estimate.Items[0].Cost)
	}
}

func TestExports(t *testing.T) {
	_, h := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/api/estimate/export.csv", sampleRequest())
	if rec.Code != http.StatusOK {
		t.Fatalf("csv status = %d", rec.Code)
	}
	if !strings.HasPrefix(rec.Body.String(), "\ufeff項目,仕様,数量,単位,原価,単価,小計") {
		t.Fatalf("csv body starts with %q", rec.Body.String()[:40])
	}
	disposition := rec.Header().Get("Content-Disposition")
	if !strings.Contains(disposition, "filename*=UTF-8''") || !strings.Contains(disposition, "_2026-10-17.csv") {
		t.Fatalf("content disposition = %q", disposition)
	}

	rec = do(t, h, http.MethodPost, "/api/estimate/export.xlsx", sampleRequest())
	if rec.Code != http.StatusOK {
		t.Fatalf("xlsx status = %d", rec.Code)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")) {
		t.Fatalf("xlsx body is not a zip archive")
	}
}

func TestProjects(t *testing.T) {
	_, h := newTestServer(t)

	req := sampleRequest()
	state := &project.State{
		Version:        project.Version,
		Analysis:       &req.Record,
		Specifications: req.Specs,
		Options:        req.Options,
	}
	state.Options[catalog.OptionSnowGuard] = true

	rec := do(t, h, http.MethodPost, "/api/projects", state)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var created store.Project
	decode(t, rec, &created)
	if created.ID == "" || created.Name != "テスト邸" || math.Abs(created.TotalCost-23450500) > 1e-6 {
		t.Fatalf("created = %+v", created)
	}

	rec = do(t, h, http.MethodGet, "/api/projects", nil)
	var list []store.Project
	decode(t, rec, &list)
	if len(list) != 1 || list[0].ID != created.ID {
		t.Fatalf("list = %+v", list)
	}

	rec = do(t, h, http.MethodGet, "/api/projects/"+created.ID+"/estimate", nil)
	var est estimateResponse
	decode(t, rec, &est)
	for _, item := range est.Estimate.Items {
		if item.ID == catalog.ItemRoofWork && item.Spec != "ガルバリウム鋼板 / 雪止め金物あり" {
			t.Fatalf("roof spec = %q", item.Spec)
		}
	}

	rec = do(t, h, http.MethodGet, "/api/projects/"+created.ID+"?download=1", nil)
	if !strings.Contains(rec.Header().Get("Content-Disposition"), ".sumrai") {
		t.Fatalf("download disposition = %q", rec.Header().Get("Content-Disposition"))
	}
	if _, err := project.Decode(rec.Body); err != nil {
		t.Fatalf("downloaded save file does not decode: %v", err)
	}

	state.Specifications["roof"] = "kawara"
	rec = do(t, h, http.MethodPut, "/api/projects/"+created.ID, state)
	var updated store.Project
	decode(t, rec, &updated)
	if math.Abs(updated.TotalCost-23850500) > 1e-6 {
		t.Fatalf("updated total cost = %v", updated.TotalCost)
	}

	if rec := do(t, h, http.MethodDelete, "/api/projects/"+created.ID, nil); rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/api/projects/"+created.ID, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("get deleted status = %d", rec.Code)
	}
}

func TestProjects_RejectsInvalidSaveFile(t *testing.T) {
	_, h := newTestServer(t)

	for _, body := range []string{`{"version":2,"specifications":{}}`, `{"version":1}`} {
		if rec := do(t, h, http.MethodPost, "/api/projects", body); rec.Code != http.StatusBadRequest {
			t.Fatalf("body %s: status = %d", body, rec.Code)
		}
	}
	if rec := do(t, h, http.MethodGet, "/api/projects?limit=x", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad limit status = %d", rec.Code)
	}
}

func TestHealthzAndMetrics(t *testing.T) {
	_, h := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"catalog_version":1`) {
		t.Fatalf("healthz = %d %s", rec.Code, rec.Body.String())
	}

	do(t, h, http.MethodPost, "/api/estimate", sampleRequest())
	rec = do(t, h, http.MethodGet, "/metrics", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "sumrai_estimates_total") {
		t.Fatalf("metrics missing estimate counter")
	}
}

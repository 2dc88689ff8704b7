package cases_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	"casedesk/internal/cases"
	"casedesk/internal/shared/config"
	"casedesk/internal/shared/server"
	"casedesk/internal/upstream"
)

// fakeBackend is an in-memory case backend behind real HTTP, so requests
// exercise the upstream client, identity headers, and envelope extraction
// end to end.
type fakeBackend struct {
	mu      sync.Mutex
	records map[string]map[string]any
	nextID  int
	lastReq *http.Request
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{records: map[string]map[string]any{}, nextID: 1}
}

func (b *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/tenants/", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.lastReq = r.Clone(r.Context())

		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		// tenants/{t}/cases[/{id}[/op...]]
		w.Header().Set("Content-Type", "application/json")

		switch {
		case len(parts) == 3 && r.Method == http.MethodGet:
			var list []map[string]any
			for _, rec := range b.records {
				list = append(list, rec)
			}
			if list == nil {
				list = []map[string]any{}
			}
			// Envelope shape the normalizer must see through.
			json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{"results": list}})
		case len(parts) == 3 && r.Method == http.MethodPost:
			var rec map[string]any
			json.NewDecoder(r.Body).Decode(&rec)
			id := "c-" + strconv.Itoa(b.nextID)
			b.nextID++
			rec["case_id"] = id
			b.records[id] = rec
			json.NewEncoder(w).Encode(map[string]any{"case": rec})
		case len(parts) == 4 && r.Method == http.MethodGet:
			rec, ok := b.records[parts[3]]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				json.NewEncoder(w).Encode(map[string]any{"error": "no such case"})
				return
			}
			json.NewEncoder(w).Encode(map[string]any{"case_detail": rec})
		case len(parts) == 4 && r.Method == http.MethodPatch:
			var rec map[string]any
			json.NewDecoder(r.Body).Decode(&rec)
			rec["case_id"] = parts[3]
			b.records[parts[3]] = rec
			json.NewEncoder(w).Encode(rec)
		case len(parts) == 5 && parts[4] == "calculate":
			json.NewEncoder(w).Encode(map[string]any{"ltv": 0.8})
		case len(parts) == 5 && parts[4] == "snapshot":
			json.NewEncoder(w).Encode(map[string]any{"snapshot_id": "s-1"})
		case len(parts) == 5 && parts[4] == "outcome":
			var outcome map[string]any
			json.NewDecoder(r.Body).Decode(&outcome)
			json.NewEncoder(w).Encode(outcome)
		case len(parts) == 6 && parts[4] == "guidelines":
			json.NewEncoder(w).Encode(map[string]any{"citations": []any{}})
		default:
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]any{"error": "unknown route"})
		}
	})
	return mux
}

func newTestRouter(t *testing.T, backendURL string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	client, err := upstream.NewClient(backendURL, 0)
	if err != nil {
		t.Fatalf("new upstream client: %v", err)
	}
	svc := &cases.Service{Upstream: client}
	return server.NewRouter(server.RouterDeps{
		Config: config.Config{
			CORSAllowOrigin: []string{"http://localhost:5173"},
			DefaultTenantID: "demo-tenant",
			DefaultUserID:   "demo-user",
		},
		CaseHandler: cases.NewHandler(svc),
	})
}

func TestCaseLifecycleOverHTTP(t *testing.T) {
	backend := newFakeBackend()
	ts := httptest.NewServer(backend.handler())
	defer ts.Close()
	router := newTestRouter(t, ts.URL)

	// Create with defaults.
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cases", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d (%s)", resp.Code, resp.Body.String())
	}
	var created cases.Case
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode created case: %v", err)
	}
	if created.CaseID == "" {
		t.Fatalf("expected server-assigned case id")
	}
	if created.Status != cases.StatusIntake {
		t.Fatalf("expected intake status, got %q", created.Status)
	}
	if len(created.Borrowers) != 1 || !created.Borrowers[0].IsPrimary {
		t.Fatalf("expected one primary borrower, got %+v", created.Borrowers)
	}

	// Identity defaults reach the backend as headers.
	backend.mu.Lock()
	if got := backend.lastReq.Header.Get("x-tenant-id"); got != "demo-tenant" {
		t.Fatalf("expected default tenant header, got %q", got)
	}
	if got := backend.lastReq.Header.Get("x-user-id"); got != "demo-user" {
		t.Fatalf("expected default user header, got %q", got)
	}
	backend.mu.Unlock()

	// List sees the new case through the nested envelope.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/cases", nil)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", resp.Code)
	}
	var listed struct {
		Cases []cases.Case `json:"cases"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listed.Cases) != 1 || listed.Cases[0].CaseID != created.CaseID {
		t.Fatalf("unexpected list: %+v", listed.Cases)
	}

	// Load the editable form, change a field, save it back.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/cases/"+created.CaseID+"/form", nil)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("get form: expected 200, got %d (%s)", resp.Code, resp.Body.String())
	}
	var form cases.FormState
	if err := json.NewDecoder(resp.Body).Decode(&form); err != nil {
		t.Fatalf("decode form: %v", err)
	}
	form.Income.MonthlyGrossIncome = "8100"

	body, _ := json.Marshal(form)
	req = httptest.NewRequest(http.MethodPut, "/api/v1/cases/"+created.CaseID+"/form", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("save form: expected 200, got %d (%s)", resp.Code, resp.Body.String())
	}
	var saved cases.Case
	if err := json.NewDecoder(resp.Body).Decode(&saved); err != nil {
		t.Fatalf("decode saved case: %v", err)
	}
	if income, _ := saved.Income.MonthlyGrossIncome.Float(); income != 8100 {
		t.Fatalf("expected saved income, got %v", income)
	}

	// Borrower mutations through their endpoints.
	req = httptest.NewRequest(http.MethodPost, "/api/v1/cases/"+created.CaseID+"/borrowers", nil)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("add borrower: expected 200, got %d", resp.Code)
	}
	var withTwo cases.Case
	if err := json.NewDecoder(resp.Body).Decode(&withTwo); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(withTwo.Borrowers) != 2 {
		t.Fatalf("expected 2 borrowers, got %d", len(withTwo.Borrowers))
	}

	second := withTwo.Borrowers[1].BorrowerID
	req = httptest.NewRequest(http.MethodPost, "/api/v1/cases/"+created.CaseID+"/borrowers/"+second+"/primary", nil)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("set primary: expected 200, got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/v1/cases/"+created.CaseID+"/borrowers/"+second, nil)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("remove borrower: expected 200, got %d", resp.Code)
	}
	var afterRemove cases.Case
	if err := json.NewDecoder(resp.Body).Decode(&afterRemove); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(afterRemove.Borrowers) != 1 || !afterRemove.Borrowers[0].IsPrimary {
		t.Fatalf("expected one primary borrower left, got %+v", afterRemove.Borrowers)
	}
}

func TestHandlerIdentityHeadersOverrideDefaults(t *testing.T) {
	backend := newFakeBackend()
	ts := httptest.NewServer(backend.handler())
	defer ts.Close()
	router := newTestRouter(t, ts.URL)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cases", nil)
	req.Header.Set("x-tenant-id", "acme")
	req.Header.Set("x-user-id", "broker-7")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	backend.mu.Lock()
	defer backend.mu.Unlock()
	if got := backend.lastReq.Header.Get("x-tenant-id"); got != "acme" {
		t.Fatalf("expected tenant header forwarded, got %q", got)
	}
	if !strings.Contains(backend.lastReq.URL.Path, "/tenants/acme/") {
		t.Fatalf("expected tenant-scoped path, got %q", backend.lastReq.URL.Path)
	}
}

func TestHandlerUpstreamFailureIs502(t *testing.T) {
	backend := newFakeBackend()
	ts := httptest.NewServer(backend.handler())
	defer ts.Close()
	router := newTestRouter(t, ts.URL)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cases/missing", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadGateway {
		t.Fatalf("expected 502 for upstream error, got %d", resp.Code)
	}
}

func TestHandlerUnexpectedShapeIs502(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message":"no record here"}`))
	}))
	defer ts.Close()
	router := newTestRouter(t, ts.URL)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cases/c-1", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", resp.Code)
	}
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if body.Error.Code != cases.ErrorCodeUpstreamShape {
		t.Fatalf("expected shape error code, got %q", body.Error.Code)
	}
}

func TestHandlerGuidelinesRequiresQuestion(t *testing.T) {
	backend := newFakeBackend()
	ts := httptest.NewServer(backend.handler())
	defer ts.Close()
	router := newTestRouter(t, ts.URL)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cases/c-1/guidelines/query", strings.NewReader(`{"question":"  "}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d (%s)", resp.Code, resp.Body.String())
	}
}

func TestHandlerOutcomeRoundTrip(t *testing.T) {
	backend := newFakeBackend()
	ts := httptest.NewServer(backend.handler())
	defer ts.Close()
	router := newTestRouter(t, ts.URL)

	// Seed one case.
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cases", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	var created cases.Case
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	body := `{"aus":"approve","decision":"approved","final_lender":"","closed_date":"2025-05-01"}`
	req = httptest.NewRequest(http.MethodPost, "/api/v1/cases/"+created.CaseID+"/outcome", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", resp.Code, resp.Body.String())
	}

	var echoed cases.Outcome
	if err := json.NewDecoder(resp.Body).Decode(&echoed); err != nil {
		t.Fatalf("decode echoed outcome: %v", err)
	}
	if echoed.FinalLender != cases.LenderUnknown {
		t.Fatalf("blank lender must persist as sentinel, got %q", echoed.FinalLender)
	}
	if echoed.ClosedDate == nil {
		t.Fatalf("expected closed date")
	}
}

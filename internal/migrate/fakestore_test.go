package migrate_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"sync"
	"testing"

	"github.com/fieldlift/fieldlift/internal/store"
)

// fakeSolr is an in-memory document store speaking just enough of the wire
// protocol for pipeline tests: cursor-paged select over documents carrying
// the source field, bulk set-updates, and commit.
type fakeSolr struct {
	mu   sync.Mutex
	docs map[string]map[string]any

	selectCalls int
	updateCalls int
	commitCalls int
	updateSizes []int

	// failUpdateCall makes the Nth update call (1-based) return HTTP 400.
	failUpdateCall int
	// failSelectCall makes the Nth select call (1-based) return HTTP 500.
	failSelectCall int
	// failCommit makes the commit request return HTTP 503.
	failCommit bool

	server *httptest.Server
}

func newFakeSolr(t *testing.T) *fakeSolr {
	t.Helper()
	f := &fakeSolr{docs: make(map[string]map[string]any)}
	f.server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.server.Close)
	return f
}

// addDoc registers a document; source == nil means the field is absent.
func (f *fakeSolr) addDoc(id string, source any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc := map[string]any{"id": id}
	if source != nil {
		doc["category"] = source
	}
	f.docs[id] = doc
}

// targetValues returns the written multi-valued field per document id.
func (f *fakeSolr) targetValues() map[string][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string][]string)
	for id, doc := range f.docs {
		if vals, ok := doc["categories"].([]string); ok {
			out[id] = append([]string(nil), vals...)
		}
	}
	return out
}

func (f *fakeSolr) handle(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/select":
		f.handleSelect(w, r)
	case "/update":
		if r.URL.Query().Get("commit") == "true" {
			f.handleCommit(w, r)
			return
		}
		f.handleUpdate(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeSolr) handleSelect(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.selectCalls++
	if f.failSelectCall > 0 && f.selectCalls == f.failSelectCall {
		http.Error(w, "simulated select failure", http.StatusInternalServerError)
		return
	}

	rows, _ := strconv.Atoi(r.URL.Query().Get("rows"))
	cursor := r.URL.Query().Get("cursorMark")

	// Matching set: documents where the source field is present, id order.
	var ids []string
	for id, doc := range f.docs {
		if _, ok := doc["category"]; ok {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	start := 0
	if cursor != store.SentinelCursor {
		start, _ = strconv.Atoi(cursor)
	}
	end := start + rows
	if end > len(ids) {
		end = len(ids)
	}
	if start > len(ids) {
		start = len(ids)
	}

	served := make([]map[string]any, 0, end-start)
	for _, id := range ids[start:end] {
		served = append(served, f.docs[id])
	}

	// The cursor stops advancing once the matching set is exhausted.
	next := strconv.Itoa(end)
	if end >= len(ids) {
		next = cursor
	}

	resp := map[string]any{
		"response":       map[string]any{"docs": served},
		"nextCursorMark": next,
	}
	json.NewEncoder(w).Encode(resp)
}

func (f *fakeSolr) handleUpdate(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls++
	if f.failUpdateCall > 0 && f.updateCalls == f.failUpdateCall {
		http.Error(w, "simulated update failure", http.StatusBadRequest)
		return
	}

	var body []map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "bad update body", http.StatusBadRequest)
		return
	}
	f.updateSizes = append(f.updateSizes, len(body))

	for _, entry := range body {
		id, _ := entry["id"].(string)
		doc, ok := f.docs[id]
		if !ok {
			http.Error(w, "unknown document "+id, http.StatusBadRequest)
			return
		}
		op, ok := entry["categories"].(map[string]any)
		if !ok {
			http.Error(w, "missing set op", http.StatusBadRequest)
			return
		}
		raw, _ := op["set"].([]any)
		vals := make([]string, 0, len(raw))
		for _, v := range raw {
			if s, ok := v.(string); ok {
				vals = append(vals, s)
			}
		}
		doc["categories"] = vals
	}
	w.WriteHeader(http.StatusOK)
}

func (f *fakeSolr) handleCommit(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commitCalls++
	if f.failCommit {
		http.Error(w, "simulated commit failure", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// newTestStore builds a store handle pointed at the fake server.
func newTestStore(t *testing.T, f *fakeSolr, pageSize int) *store.Store {
	t.Helper()
	clientConfig := store.DefaultClientConfig()
	clientConfig.RateLimit = 1000
	clientConfig.RateBurst = 1000

	s, err := store.New(&store.Config{
		BaseURL:     f.server.URL,
		SourceField: "category",
		TargetField: "categories",
		PageSize:    pageSize,
		Client:      clientConfig,
	})
	if err != nil {
		t.Fatalf("store.New error: %v", err)
	}
	return s
}

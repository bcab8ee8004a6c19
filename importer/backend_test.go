package importer

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
)

// fakeBackend is an in-memory stand-in for the system of record. It records
// every list and create call so tests can assert on network traffic.
type fakeBackend struct {
	t  *testing.T
	mu sync.Mutex

	entities map[string][]remoteEntity // keyed by path, e.g. "/products"
	docs     map[string][]remoteDocument
	payloads map[string][]json.RawMessage

	listCalls   map[string]int
	createCalls map[string]int

	failList    map[string]bool
	failCreate  map[string]bool
	failInvoice map[string]bool // per invoiceNumber on document paths

	nextID int
}

func newFakeBackend(t *testing.T) *fakeBackend {
	return &fakeBackend{
		t:           t,
		entities:    make(map[string][]remoteEntity),
		docs:        make(map[string][]remoteDocument),
		payloads:    make(map[string][]json.RawMessage),
		listCalls:   make(map[string]int),
		createCalls: make(map[string]int),
		failList:    make(map[string]bool),
		failCreate:  make(map[string]bool),
		failInvoice: make(map[string]bool),
	}
}

func (b *fakeBackend) seed(path string, entities ...remoteEntity) {
	b.entities[path] = append(b.entities[path], entities...)
}

func (b *fakeBackend) seedDoc(path string, invoiceNumbers ...string) {
	for _, n := range invoiceNumbers {
		b.docs[path] = append(b.docs[path], remoteDocument{ID: n, InvoiceNumber: n})
	}
}

func (b *fakeBackend) server() *httptest.Server {
	mux := http.NewServeMux()
	for _, path := range []string{"/products", "/suppliers", "/customers"} {
		mux.HandleFunc(path, b.handleEntity(path))
	}
	for _, path := range []string{"/purchases", "/invoices"} {
		mux.HandleFunc(path, b.handleDocument(path))
	}
	srv := httptest.NewServer(mux)
	b.t.Cleanup(srv.Close)
	return srv
}

func (b *fakeBackend) handleEntity(path string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()

		switch r.Method {
		case http.MethodGet:
			b.listCalls[path]++
			if b.failList[path] {
				http.Error(w, "boom", http.StatusInternalServerError)
				return
			}
			list := b.entities[path]
			if list == nil {
				list = []remoteEntity{}
			}
			writeJSON(w, http.StatusOK, list)
		case http.MethodPost:
			b.createCalls[path]++
			raw, _ := io.ReadAll(r.Body)
			b.payloads[path] = append(b.payloads[path], raw)
			if b.failCreate[path] {
				http.Error(w, "boom", http.StatusInternalServerError)
				return
			}
			var in struct {
				Name string `json:"name"`
				SKU  string `json:"sku"`
			}
			if err := json.Unmarshal(raw, &in); err != nil {
				http.Error(w, "bad payload", http.StatusBadRequest)
				return
			}
			b.nextID++
			created := remoteEntity{
				ID:   fmt.Sprintf("%s-%d", path[1:len(path)-1], b.nextID),
				SKU:  in.SKU,
				Name: in.Name,
			}
			b.entities[path] = append(b.entities[path], created)
			writeJSON(w, http.StatusCreated, created)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

func (b *fakeBackend) handleDocument(path string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()

		switch r.Method {
		case http.MethodGet:
			b.listCalls[path]++
			if b.failList[path] {
				http.Error(w, "boom", http.StatusInternalServerError)
				return
			}
			list := b.docs[path]
			if list == nil {
				list = []remoteDocument{}
			}
			writeJSON(w, http.StatusOK, list)
		case http.MethodPost:
			b.createCalls[path]++
			raw, _ := io.ReadAll(r.Body)
			b.payloads[path] = append(b.payloads[path], raw)
			var in struct {
				InvoiceNumber string `json:"invoiceNumber"`
			}
			if err := json.Unmarshal(raw, &in); err != nil {
				http.Error(w, "bad payload", http.StatusBadRequest)
				return
			}
			if b.failCreate[path] || b.failInvoice[in.InvoiceNumber] {
				http.Error(w, "boom", http.StatusInternalServerError)
				return
			}
			b.nextID++
			created := remoteDocument{
				ID:            fmt.Sprintf("doc-%d", b.nextID),
				InvoiceNumber: in.InvoiceNumber,
			}
			b.docs[path] = append(b.docs[path], created)
			writeJSON(w, http.StatusCreated, created)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestRunner(baseURL string) *Runner {
	logger := testLogger()
	client := newAPIClient(baseURL)
	return &Runner{
		resolver:             newResolver(client, logger),
		submitter:            newSubmitter(client, logger),
		client:               client,
		logger:               logger,
		allowDuplicateReplay: true,
	}
}

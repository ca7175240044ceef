package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"mercacomp/internal/cart"
	"mercacomp/internal/domain"
	"mercacomp/internal/http/handlers"
	"mercacomp/internal/remote"
	"mercacomp/internal/repos"
)

const testSID = "3f2b8a1e-6c4d-4f7a-9b2e-1d5c8e7a9f01"

// commerceAPI imitates the commerce REST API closely enough for the BFF.
type commerceAPI struct {
	mu       sync.Mutex
	products map[int64]domain.Product
	stores   []domain.Store
	tokens   map[string]domain.User
	orders   []remote.OrderRequest
}

func newCommerceAPI() *commerceAPI {
	price := decimal.RequireFromString
	return &commerceAPI{
		products: map[int64]domain.Product{
			10: {ID: 10, Name: "Arroz", Category: "hortifruti", Offers: []domain.Offer{
				{StoreID: 1, Price: price("2.00")},
				{StoreID: 2, Price: price("1.80")},
			}},
			12: {ID: 12, Name: "Café", Category: "bebidas", Offers: []domain.Offer{
				{StoreID: 2, Price: price("10.00")},
			}},
		},
		stores: []domain.Store{
			{ID: 1, Name: "Mercado Central"},
			{ID: 2, Name: "Super Bom"},
		},
		tokens: map[string]domain.User{},
	}
}

// revoke makes the API answer 401 for tok from now on.
func (f *commerceAPI) revoke(tok string) {
	f.mu.Lock()
	delete(f.tokens, tok)
	f.mu.Unlock()
}

func (f *commerceAPI) placed() []remote.OrderRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]remote.OrderRequest(nil), f.orders...)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (f *commerceAPI) handler() http.Handler {
	mux := http.NewServeMux()

	// authed rejects requests carrying a token the API no longer knows.
	authed := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			tok := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if tok != "" {
				f.mu.Lock()
				_, ok := f.tokens[tok]
				f.mu.Unlock()
				if !ok {
					writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Token expirado"})
					return
				}
			}
			next(w, r)
		}
	}

	mux.HandleFunc("GET /produtos", authed(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		out := []domain.Product{}
		for _, id := range []int64{10, 12} {
			p := f.products[id]
			if cat := r.URL.Query().Get("categoria"); cat != "" && p.Category != cat {
				continue
			}
			out = append(out, p)
		}
		writeJSON(w, http.StatusOK, out)
	}))
	mux.HandleFunc("GET /produtos/{id}", authed(func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if id == 500 {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = io.WriteString(w, "panic: pq: password authentication failed for user admin password=hunter2")
			return
		}
		f.mu.Lock()
		p, ok := f.products[id]
		f.mu.Unlock()
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "Produto não encontrado"})
			return
		}
		writeJSON(w, http.StatusOK, p)
	}))
	mux.HandleFunc("GET /empresas", authed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"empresas": f.stores})
	}))
	mux.HandleFunc("GET /empresas/{id}", authed(func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
		for _, s := range f.stores {
			if s.ID == id {
				writeJSON(w, http.StatusOK, s)
				return
			}
		}
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Empresa não encontrada"})
	}))
	mux.HandleFunc("POST /login", func(w http.ResponseWriter, r *http.Request) {
		var cred remote.Credentials
		_ = json.NewDecoder(r.Body).Decode(&cred)
		var u domain.User
		switch {
		case cred.Email == "ana@merca.com" && cred.Password == "segredo":
			u = domain.User{ID: 7, Name: "Ana", Email: cred.Email, Role: "CLIENTE"}
		case cred.Email == "admin@merca.com" && cred.Password == "segredo":
			u = domain.User{ID: 1, Name: "Admin", Email: cred.Email, Role: "ADMIN"}
		default:
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "E-mail ou senha incorretos."})
			return
		}
		tok := "tok-" + strconv.FormatInt(u.ID, 10)
		f.mu.Lock()
		f.tokens[tok] = u
		f.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{"token": tok, "usuario": u})
	})
	mux.HandleFunc("GET /pedidos", authed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []domain.Order{{ID: 42, ClientID: 7, Value: decimal.RequireFromString("9.00")}})
	}))
	mux.HandleFunc("POST /pedidos", authed(func(w http.ResponseWriter, r *http.Request) {
		var req remote.OrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "pedido inválido"})
			return
		}
		f.mu.Lock()
		f.orders = append(f.orders, req)
		id := int64(100 + len(f.orders))
		f.mu.Unlock()
		writeJSON(w, http.StatusCreated, map[string]any{"id": id})
	}))
	mux.HandleFunc("GET /clientes", authed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []domain.User{{ID: 7, Name: "Ana", Email: "ana@merca.com", Role: "CLIENTE"}})
	}))
	return mux
}

func postalHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /01001000/json/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"logradouro": "Praça da Sé",
			"bairro":     "Sé",
			"localidade": "São Paulo",
			"uf":         "SP",
		})
	})
	mux.HandleFunc("GET /99999999/json/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"erro": true})
	})
	return mux
}

type testEnv struct {
	app *fiber.App
	api *commerceAPI
}

func newTestEnv(t *testing.T, cfg handlers.AppConfig) *testEnv {
	t.Helper()
	api := newCommerceAPI()
	apiSrv := httptest.NewServer(api.handler())
	t.Cleanup(apiSrv.Close)
	postalSrv := httptest.NewServer(postalHandler())
	t.Cleanup(postalSrv.Close)

	store := repos.NewHub(repos.NewMemoryKV())
	deps := handlers.NewDeps(store,
		remote.New(apiSrv.URL, apiSrv.Client()),
		remote.NewPostalClient(postalSrv.URL, postalSrv.Client()),
		cart.DefaultConfig(),
	)
	cfg.Templates = "../../web/templates"
	return &testEnv{app: handlers.NewApp(cfg, deps), api: api}
}

// call sends a JSON request as the test session and returns status and body.
func (e *testEnv) call(t *testing.T, method, path string, body any) (int, []byte) {
	t.Helper()
	resp := e.send(t, method, path, body, nil)
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, b
}

func (e *testEnv) send(t *testing.T, method, path string, body any, headers map[string]string) *http.Response {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encode body: %v", err)
		}
		rdr = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.AddCookie(&http.Cookie{Name: "sid", Value: testSID})
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := e.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func (e *testEnv) login(t *testing.T, email string) {
	t.Helper()
	code, body := e.call(t, "POST", "/api/v1/login", map[string]string{"email": email, "senha": "segredo"})
	if code != http.StatusOK {
		t.Fatalf("login %s: status %d body=%s", email, code, body)
	}
}

func decode(t *testing.T, b []byte, v any) {
	t.Helper()
	if err := json.Unmarshal(b, v); err != nil {
		t.Fatalf("decode %s: %v", b, err)
	}
}

type logEntry struct {
	Level  string                 `json:"level"`
	Action string                 `json:"action"`
	SID    string                 `json:"sid"`
	Fields map[string]interface{} `json:"fields"`
}

// captureLogs swaps the standard logger output for the duration of fn.
func captureLogs(t *testing.T, fn func()) []logEntry {
	t.Helper()
	var buf bytes.Buffer
	var mu sync.Mutex
	oldW := log.Writer()
	oldFlags := log.Flags()
	log.SetOutput(&lockedWriter{w: &buf, mu: &mu})
	log.SetFlags(0) // remove timestamps to make JSON parseable
	defer func() {
		log.SetOutput(oldW)
		log.SetFlags(oldFlags)
	}()

	fn()

	mu.Lock()
	defer mu.Unlock()
	var entries []logEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var e logEntry
		if err := json.Unmarshal([]byte(line), &e); err == nil {
			entries = append(entries, e)
		}
	}
	return entries
}

type lockedWriter struct {
	w  io.Writer
	mu *sync.Mutex
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

func findLog(entries []logEntry, action string) (logEntry, bool) {
	for _, e := range entries {
		if e.Action == action {
			return e, true
		}
	}
	return logEntry{}, false
}

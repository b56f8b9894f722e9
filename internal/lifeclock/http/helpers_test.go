package http_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/q8244654-ui/lifeclock/internal/lifeclock/domain"
	api "github.com/q8244654-ui/lifeclock/internal/lifeclock/http"
	"github.com/q8244654-ui/lifeclock/internal/lifeclock/observability"
	"github.com/q8244654-ui/lifeclock/internal/lifeclock/report"
	"github.com/q8244654-ui/lifeclock/internal/lifeclock/service"
	"github.com/q8244654-ui/lifeclock/internal/lifeclock/store"
	"github.com/q8244654-ui/lifeclock/pkg/idx"
)

const (
	testBaseURL = "https://lifeclock.example"
	testSecret  = "test-cookie-secret"
)

// fakeProvider is an in-memory CheckoutProvider.
type fakeProvider struct {
	mu       sync.Mutex
	sessions map[string]service.CheckoutSession
	created  []service.CreateSessionParams

	createErr error
	getErr    error
}

func (f *fakeProvider) CreateSession(_ context.Context, p service.CreateSessionParams) (service.CheckoutSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		return service.CheckoutSession{}, f.createErr
	}
	f.created = append(f.created, p)
	return service.CheckoutSession{
		ID:  "cs_test_123",
		URL: "https://checkout.example/c/pay/cs_test_123",
	}, nil
}

func (f *fakeProvider) GetSession(_ context.Context, id string) (service.CheckoutSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.getErr != nil {
		return service.CheckoutSession{}, f.getErr
	}
	sess, ok := f.sessions[id]
	if !ok {
		return service.CheckoutSession{}, errors.New("no such session")
	}
	return sess, nil
}

// memStore is an in-memory store.Store for handler tests.
type memStore struct {
	purchases memPurchases
	pingErr   error
}

func (s *memStore) Purchases() store.Purchases { return &s.purchases }
func (s *memStore) Ping(context.Context) error { return s.pingErr }
func (s *memStore) Close() error               { return nil }

type memPurchases struct {
	mu   sync.Mutex
	rows []domain.Purchase
	err  error
}

func (p *memPurchases) Record(_ context.Context, purchase domain.Purchase) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.err != nil {
		return p.err
	}
	for _, row := range p.rows {
		if row.SessionID == purchase.SessionID {
			return nil
		}
	}
	p.rows = append(p.rows, purchase)
	return nil
}

func (p *memPurchases) GetBySessionID(_ context.Context, sessionID string) (domain.Purchase, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.err != nil {
		return domain.Purchase{}, p.err
	}
	for _, row := range p.rows {
		if row.SessionID == sessionID {
			return row, nil
		}
	}
	return domain.Purchase{}, store.ErrNotFound
}

func (p *memPurchases) Count(context.Context) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.err != nil {
		return 0, p.err
	}
	return int64(len(p.rows)), nil
}

func (p *memPurchases) Recent(_ context.Context, limit int) ([]domain.Purchase, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.err != nil {
		return nil, p.err
	}
	out := make([]domain.Purchase, 0, limit)
	for i := len(p.rows) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, p.rows[i])
	}
	return out, nil
}

func seedPurchase(t *testing.T, s *memStore, sessionID, email string) {
	t.Helper()
	require.NoError(t, s.purchases.Record(context.Background(), domain.Purchase{
		ID:        idx.New(),
		SessionID: sessionID,
		Email:     email,
	}))
}

// fakeRenderer avoids real PDF layout in handler tests.
type fakeRenderer struct {
	err error
}

func (f fakeRenderer) Render(_ context.Context, _ report.Document) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-1.4 fake"), nil
}

// testEnv wires a full router with fakes and temp library directories.
type testEnv struct {
	router   *api.Router
	provider *fakeProvider
	store    *memStore
	booksDir string
	docsDir  string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		provider: &fakeProvider{sessions: map[string]service.CheckoutSession{}},
		store:    &memStore{},
		booksDir: t.TempDir(),
		docsDir:  t.TempDir(),
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	env.router = api.NewRouter(
		[]byte(testSecret), false, testBaseURL, "test",
		env.store, observability.New(), logger,
	)

	env.router.CheckoutService = &service.CheckoutService{
		Provider: env.provider,
		PriceID:  "price_test_001",
		BaseURL:  testBaseURL,
	}
	env.router.PaymentService = &service.PaymentService{
		Provider:     env.provider,
		Store:        env.store,
		CookieSecret: []byte(testSecret),
	}
	env.router.LibraryService = &service.LibraryService{
		BooksDir: env.booksDir,
		DocsDir:  env.docsDir,
	}
	env.router.ReportService = &service.ReportService{Renderer: fakeRenderer{}}
	env.router.StatsService = &service.StatsService{Store: env.store}
	env.router.ApplyRoutes()

	return env
}

func (env *testEnv) writeBook(t *testing.T, name string, data []byte) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(env.booksDir, name), data, 0o644))
}

func (env *testEnv) writeDoc(t *testing.T, name string, data []byte) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(env.docsDir, name), data, 0o644))
}

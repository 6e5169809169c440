package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"rentexpress/internal/notify"
	"rentexpress/internal/service"
	"rentexpress/internal/testutil"

	"gorm.io/gorm"
)

var fixedNow = time.Date(2026, 1, 3, 12, 0, 0, 0, time.UTC)

// fakeGateway records every message and fails when err is set.
type fakeGateway struct {
	mu   sync.Mutex
	sent []notify.Message
	err  error
}

func (g *fakeGateway) Send(_ context.Context, msg notify.Message) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return g.err
	}
	g.sent = append(g.sent, msg)
	return nil
}

func (g *fakeGateway) count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.sent)
}

type env struct {
	db  *gorm.DB
	svc *service.Services
	gw  *fakeGateway
	fx  testutil.Fixtures
	ctx context.Context
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testutil.NewDB(t)
	gw := &fakeGateway{}
	svc := service.New(db, gw, service.Options{
		BcryptCost:    4,
		EncryptionKey: "test-encryption-key",
		BackupDir:     t.TempDir(),
		Now:           func() time.Time { return fixedNow },
	})
	return &env{db: db, svc: svc, gw: gw, fx: testutil.Fixtures{T: t, DB: db}, ctx: context.Background()}
}

var errProvider = errors.New("mailbox unavailable")

package service_test

import (
	"context"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	authrepo "github.com/aiagents/collab-hub/internal/auth/repository"
	"github.com/aiagents/collab-hub/internal/auth/service"
	"github.com/aiagents/collab-hub/internal/common/clock"
	commoncrypto "github.com/aiagents/collab-hub/internal/common/crypto"
	"github.com/aiagents/collab-hub/internal/common/logger"
	userdomain "github.com/aiagents/collab-hub/internal/user/domain"
	userrepo "github.com/aiagents/collab-hub/internal/user/repository"
)

const (
	testSecret = "0123456789abcdef0123456789abcdef"
	testTTL    = 24 * time.Hour
)

type mockDirectory struct {
	findFunc func(ctx context.Context, email, password string) (userdomain.Record, error)
	calls    int
}

func (m *mockDirectory) Find(ctx context.Context, email, password string) (userdomain.Record, error) {
	m.calls++
	return m.findFunc(ctx, email, password)
}

type fixture struct {
	manager *service.SessionManager
	issuer  *service.TokenIssuer
	revoked *authrepo.MemoryRevokedSessionRepository
	clock   *clock.MockClock
}

func newFixture(t *testing.T, dir userrepo.Directory) fixture {
	t.Helper()

	if dir == nil {
		static, err := userrepo.NewStaticDirectory(userrepo.DemoSeeds(), commoncrypto.NewBcryptHasher(bcrypt.MinCost))
		if err != nil {
			t.Fatalf("build directory: %v", err)
		}
		dir = static
	}

	log, _ := logger.New("", "test", "info")
	mockClock := clock.NewMockClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	ids := commoncrypto.NewUUIDGenerator()
	revoked := authrepo.NewMemoryRevokedSessionRepository(mockClock)
	issuer := service.NewTokenIssuer(testSecret, ids, testTTL, mockClock)

	return fixture{
		manager: service.NewSessionManager(dir, issuer, revoked, ids, mockClock, log),
		issuer:  issuer,
		revoked: revoked,
		clock:   mockClock,
	}
}

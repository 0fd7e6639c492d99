package testserver

import (
	"context"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/propside/syncd/internal/domain/audit"
	"github.com/propside/syncd/internal/domain/coordination"
	syncdom "github.com/propside/syncd/internal/domain/sync"
	"github.com/propside/syncd/internal/domain/version"
	"github.com/propside/syncd/internal/mcp"
	"github.com/propside/syncd/internal/sqlite"
	"github.com/propside/syncd/internal/transport"
	"github.com/stretchr/testify/require"
)

type TestServer struct {
	Server    *httptest.Server
	DB        *sqlite.DB
	Token     string
	CompanyID string
}

func New(t *testing.T, token, companyID string) *TestServer {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := sqlite.New(dsn)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())

	documentRepo := sqlite.NewDocumentRepository(db)
	versionRepo := sqlite.NewVersionRepository(db)
	stateRepo := sqlite.NewSyncStateRepository(db)
	conflictRepo := sqlite.NewConflictRepository(db)
	ruleRepo := sqlite.NewRuleRepository(db)
	logRepo := sqlite.NewCoordinationLogRepository(db)
	auditRepo := sqlite.NewAuditRepository(db)
	keyRepo := sqlite.NewAPIKeyRepository(db)

	auditSvc := audit.NewService(auditRepo, nil)
	versionSvc := version.NewService(documentRepo, versionRepo, auditSvc, nil)
	syncSvc := syncdom.NewService(stateRepo, conflictRepo, versionSvc, auditSvc, nil)
	coordinationSvc := coordination.NewService(ruleRepo, logRepo, versionSvc, auditSvc, nil, 0)

	handler := mcp.NewHandler(versionSvc, syncSvc, coordinationSvc, auditSvc)

	resolver := &apiKeyResolver{keys: keyRepo}
	server := httptest.NewServer(transport.NewServer(handler, transport.AuthMiddleware(resolver)))

	ts := &TestServer{
		Server:    server,
		DB:        db,
		Token:     token,
		CompanyID: companyID,
	}

	require.NoError(t, ts.AddAPIKey(token, companyID))

	t.Cleanup(func() {
		server.Close()
		_ = db.Close()
	})

	return ts
}

func (ts *TestServer) AddAPIKey(token, companyID string) error {
	return sqlite.NewAPIKeyRepository(ts.DB).Create(context.Background(), companyID, token, "test")
}

type apiKeyResolver struct {
	keys *sqlite.APIKeyRepository
}

func (r *apiKeyResolver) ResolveCompany(ctx context.Context, token string) (string, error) {
	companyID, err := r.keys.Resolve(ctx, token)
	if err != nil || companyID == "" {
		return "", transport.ErrUnauthorized
	}
	return companyID, nil
}

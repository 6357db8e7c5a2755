package testserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ganot/ttsprep/internal/domain/activity"
	"github.com/ganot/ttsprep/internal/domain/chapter"
	"github.com/ganot/ttsprep/internal/domain/label"
	"github.com/ganot/ttsprep/internal/domain/project"
	"github.com/ganot/ttsprep/internal/lock"
	"github.com/ganot/ttsprep/internal/mcp"
	"github.com/ganot/ttsprep/internal/sqlite"
	"github.com/ganot/ttsprep/internal/transport"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
)

// TestServer is a fully wired ttsprep HTTP server backed by in-memory SQLite.
type TestServer struct {
	Server   *httptest.Server
	DB       *sqlite.DB
	Keys     *sqlite.APIKeyRepository
	Services mcp.Services
	Token    string
	TenantID string
}

// New starts a server with bearer auth on both /rpc and /mcp and registers
// token for tenantID.
func New(t *testing.T, token, tenantID string) *TestServer {
	t.Helper()

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())

	services := NewServices(db, lock.NewLocal())
	keys := sqlite.NewAPIKeyRepository(db)

	mcpServer := mcp.NewServer(mcp.Config{
		Services:      services,
		Resolver:      keys,
		AuthEnabled:   true,
		TransportMode: "http",
	})
	mcpHandler := sdkmcp.NewStreamableHTTPHandler(
		func(*http.Request) *sdkmcp.Server { return mcpServer },
		&sdkmcp.StreamableHTTPOptions{SessionTimeout: time.Minute},
	)

	router := transport.NewServer(mcp.NewHandler(services), transport.Options{
		Auth: transport.AuthMiddleware(keys),
		MCP:  mcpHandler,
	})
	server := httptest.NewServer(router)

	ts := &TestServer{
		Server:   server,
		DB:       db,
		Keys:     keys,
		Services: services,
		Token:    token,
		TenantID: tenantID,
	}

	require.NoError(t, ts.AddAPIKey(token, tenantID))

	t.Cleanup(func() {
		server.Close()
		_ = db.Close()
	})

	return ts
}

// NewServices wires the domain services onto db.
func NewServices(db *sqlite.DB, locker lock.Locker) mcp.Services {
	projectRepo := sqlite.NewProjectRepository(db)
	chapterRepo := sqlite.NewChapterRepository(db)
	activityRepo := sqlite.NewActivityRepository(db)

	labelSvc := label.NewService(sqlite.NewLabelRepository(db), nil)
	chapterSvc := chapter.NewService(
		chapterRepo,
		projectRepo,
		labelSvc,
		activityRepo,
		sqlite.NewSearchRepository(db),
		locker,
		nil,
	)

	return mcp.Services{
		Projects: project.NewService(projectRepo, nil),
		Chapters: chapterSvc,
		Labels:   labelSvc,
		Activity: activity.NewService(activityRepo, nil),
	}
}

// AddAPIKey registers another bearer token.
func (ts *TestServer) AddAPIKey(token, tenantID string) error {
	return ts.Keys.Add(context.Background(), token, tenantID, "test")
}

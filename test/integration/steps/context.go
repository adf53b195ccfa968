// Package steps provides step definitions for BDD integration tests.
package steps

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"time"

	"github.com/cucumber/godog"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/finance-tracker/ledger/config"
	"github.com/finance-tracker/ledger/internal/infra/dependency"
	"github.com/finance-tracker/ledger/internal/integration/adapters"
	"github.com/finance-tracker/ledger/internal/integration/persistence/model"
	"github.com/finance-tracker/ledger/test/integration/mock"
)

const testJWTSecret = "test-jwt-secret-key-for-testing-purposes"

// TestContext holds the test state for each scenario.
type TestContext struct {
	// HTTP
	server       *httptest.Server
	client       *http.Client
	response     *http.Response
	responseBody []byte

	// Request building
	requestHeaders map[string]string

	// Auth
	accessToken string

	// State shared between steps
	db          *mock.Db
	timeMock    *mock.Time
	dashboardID uuid.UUID
	users       map[string]uuid.UUID
	vars        map[string]string

	cfg *config.Config
}

// contextKey is used to store TestContext in context.Context.
type contextKey struct{}

// GetTestContext retrieves the TestContext from context.
func GetTestContext(ctx context.Context) *TestContext {
	if tc, ok := ctx.Value(contextKey{}).(*TestContext); ok {
		return tc
	}
	return nil
}

// SetTestContext stores the TestContext in context.
func SetTestContext(ctx context.Context, tc *TestContext) context.Context {
	return context.WithValue(ctx, contextKey{}, tc)
}

// InitializeTestSuite sets up resources before any scenarios run.
func InitializeTestSuite(ctx *godog.TestSuiteContext) {
	ctx.BeforeSuite(func() {
		// Set Gin to test mode
		gin.SetMode(gin.TestMode)
	})
}

// InitializeScenario registers all step definitions.
func InitializeScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc, err := newTestContext(ctx)
		if err != nil {
			return ctx, err
		}
		return SetTestContext(ctx, tc), nil
	})

	ctx.After(func(ctx context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		tc := GetTestContext(ctx)
		if tc != nil && tc.server != nil {
			tc.server.Close()
		}
		return ctx, nil
	})

	registerSetupSteps(ctx)
	registerAPISteps(ctx)
	registerResponseSteps(ctx)
	registerDatabaseSteps(ctx)
}

func newTestContext(ctx context.Context) (*TestContext, error) {
	database := mock.NewDb(map[string]any{
		"dashboards":        &model.DashboardModel{},
		"dashboard_members": &model.DashboardMemberModel{},
		"recurrences":       &model.RecurrenceModel{},
		"transactions":      &model.TransactionModel{},
	})
	if err := database.ClearDB(); err != nil {
		return nil, err
	}

	redisClient := mock.NewRedis()
	if err := mock.ClearRedis(redisClient); err != nil {
		return nil, err
	}

	cfg := config.Default()
	cfg.Server.Environment = "test"
	cfg.JWT.Secret = testJWTSecret
	cfg.Processor.Enabled = false
	cfg.Processor.RetryInterval = 5 * time.Millisecond

	timeMock := mock.NewTime()
	injector, err := dependency.NewInjector(ctx, cfg, database.DbConn, dependency.Options{
		Clock:    timeMock,
		Locker:   adapters.NewRedisLocker(redisClient, "test:lock:"),
		Registry: prometheus.NewRegistry(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to wire dependencies: %w", err)
	}

	return &TestContext{
		server:         httptest.NewServer(injector.Router.Setup(cfg.Server.Environment)),
		client:         &http.Client{Timeout: 10 * time.Second},
		requestHeaders: make(map[string]string),
		db:             database,
		timeMock:       timeMock,
		users:          make(map[string]uuid.UUID),
		vars:           make(map[string]string),
		cfg:            cfg,
	}, nil
}

var placeholder = regexp.MustCompile(`\{([a-zA-Z0-9_]+)\}`)

// expand replaces {name} with a saved variable. Unknown names are left as written.
func (tc *TestContext) expand(s string) string {
	return placeholder.ReplaceAllStringFunc(s, func(match string) string {
		if value, ok := tc.vars[match[1:len(match)-1]]; ok {
			return value
		}
		return match
	})
}

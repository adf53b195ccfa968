package steps

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cucumber/godog"
	"github.com/google/uuid"

	"github.com/finance-tracker/ledger/internal/domain/entity"
	"github.com/finance-tracker/ledger/internal/domain/valueobject"
	"github.com/finance-tracker/ledger/internal/integration/adapters"
	"github.com/finance-tracker/ledger/internal/integration/persistence"
)

// registerSetupSteps registers fixture steps.
func registerSetupSteps(ctx *godog.ScenarioContext) {
	ctx.Step(`^the API server is running$`, theAPIServerIsRunning)
	ctx.Step(`^today is "([^"]*)"$`, todayIs)
	ctx.Step(`^a dashboard "([^"]*)" exists$`, aDashboardExists)
	ctx.Step(`^the user "([^"]*)" is a dashboard "([^"]*)"$`, theUserIsADashboard)
	ctx.Step(`^I am logged in as "([^"]*)"$`, iAmLoggedInAs)
	ctx.Step(`^I save the response field "([^"]*)" as "([^"]*)"$`, iSaveTheResponseFieldAs)
}

// registerAPISteps registers HTTP request steps.
func registerAPISteps(ctx *godog.ScenarioContext) {
	ctx.Step(`^I send a "([^"]*)" request to "([^"]*)"$`, iSendARequestTo)
	ctx.Step(`^I send a "([^"]*)" request to "([^"]*)" with body:$`, iSendARequestToWithBody)
	ctx.Step(`^I set header "([^"]*)" to "([^"]*)"$`, iSetHeaderTo)
}

// registerResponseSteps registers response validation steps.
func registerResponseSteps(ctx *godog.ScenarioContext) {
	ctx.Step(`^the response status should be (\d+)$`, theResponseStatusShouldBe)
	ctx.Step(`^the response should be JSON$`, theResponseShouldBeJSON)
	ctx.Step(`^the response should contain "([^"]*)"$`, theResponseShouldContain)
	ctx.Step(`^the response field "([^"]*)" should be "([^"]*)"$`, theResponseFieldShouldBe)
	ctx.Step(`^the response field "([^"]*)" should exist$`, theResponseFieldShouldExist)
	ctx.Step(`^the response field "([^"]*)" should have (\d+) items$`, theResponseFieldShouldHaveItems)
}

// registerDatabaseSteps registers database assertion steps.
func registerDatabaseSteps(ctx *godog.ScenarioContext) {
	ctx.Step(`^the db should contain (\d+) objects in the "([^"]*)" table$`, theDbShouldContainObjectsInTheTable)
	ctx.Step(`^the db should contain (\d+) objects in the "([^"]*)" table including deleted$`, theDbShouldContainObjectsIncludingDeleted)
}

// Step implementations

func theAPIServerIsRunning(ctx context.Context) error {
	tc := GetTestContext(ctx)
	if tc == nil || tc.server == nil {
		return fmt.Errorf("test server is not running")
	}
	return nil
}

func todayIs(ctx context.Context, day string) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}
	date, err := valueobject.ParseDate(day)
	if err != nil {
		return err
	}
	tc.timeMock.SetCurrentTime(date.Add(9 * time.Hour))
	return nil
}

func aDashboardExists(ctx context.Context, name string) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}

	dashboard := entity.NewDashboard(name, uuid.New())
	if err := persistence.NewDashboardRepository(tc.db.DbConn).CreateDashboard(ctx, dashboard); err != nil {
		return fmt.Errorf("failed to create dashboard: %w", err)
	}
	tc.dashboardID = dashboard.ID
	tc.vars["dashboard"] = dashboard.ID.String()
	return nil
}

func theUserIsADashboard(ctx context.Context, name, role string) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}
	if tc.dashboardID == uuid.Nil {
		return fmt.Errorf("no dashboard created yet")
	}

	dashboardRole := entity.DashboardRole(role)
	if !dashboardRole.IsValid() {
		return fmt.Errorf("unknown role %q", role)
	}

	userID, ok := tc.users[name]
	if !ok {
		userID = uuid.New()
		tc.users[name] = userID
	}
	member := entity.NewDashboardMember(tc.dashboardID, userID, dashboardRole)
	return persistence.NewDashboardRepository(tc.db.DbConn).AddMember(ctx, member)
}

func iAmLoggedInAs(ctx context.Context, name string) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}
	userID, ok := tc.users[name]
	if !ok {
		userID = uuid.New()
		tc.users[name] = userID
	}

	token, err := adapters.SignAccessToken(testJWTSecret, userID, name+"@example.com", time.Hour)
	if err != nil {
		return fmt.Errorf("failed to sign token: %w", err)
	}
	tc.accessToken = token
	return nil
}

func iSaveTheResponseFieldAs(ctx context.Context, field, name string) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}
	value, err := tc.responseField(field)
	if err != nil {
		return err
	}
	tc.vars[name] = fmt.Sprintf("%v", value)
	return nil
}

func iSendARequestTo(ctx context.Context, method, endpoint string) error {
	return send(ctx, method, endpoint, nil)
}

func iSendARequestToWithBody(ctx context.Context, method, endpoint string, body *godog.DocString) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}
	return send(ctx, method, endpoint, bytes.NewBufferString(tc.expand(body.Content)))
}

func send(ctx context.Context, method, endpoint string, body io.Reader) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}

	url := tc.server.URL + tc.expand(endpoint)
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	// Add headers
	for key, value := range tc.requestHeaders {
		req.Header.Set(key, value)
	}

	// Add auth token if present
	if tc.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+tc.accessToken)
	}

	resp, err := tc.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}

	tc.response = resp
	tc.responseBody, err = io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	return nil
}

func iSetHeaderTo(ctx context.Context, header, value string) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}
	tc.requestHeaders[header] = value
	return nil
}

func theResponseStatusShouldBe(ctx context.Context, expectedStatus int) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}
	if tc.response == nil {
		return fmt.Errorf("no response received")
	}
	if tc.response.StatusCode != expectedStatus {
		return fmt.Errorf("expected status %d, got %d. Body: %s", expectedStatus, tc.response.StatusCode, string(tc.responseBody))
	}
	return nil
}

func theResponseShouldBeJSON(ctx context.Context) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}
	var js json.RawMessage
	if err := json.Unmarshal(tc.responseBody, &js); err != nil {
		return fmt.Errorf("response is not valid JSON: %w", err)
	}
	return nil
}

func theResponseShouldContain(ctx context.Context, expected string) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}
	if !strings.Contains(string(tc.responseBody), tc.expand(expected)) {
		return fmt.Errorf("response does not contain '%s'. Body: %s", expected, string(tc.responseBody))
	}
	return nil
}

func theResponseFieldShouldBe(ctx context.Context, field, expected string) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}

	value, err := tc.responseField(field)
	if err != nil {
		return err
	}

	actual := fmt.Sprintf("%v", value)
	if actual != tc.expand(expected) {
		return fmt.Errorf("field '%s' expected '%s', got '%s'", field, expected, actual)
	}
	return nil
}

func theResponseFieldShouldExist(ctx context.Context, field string) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}
	_, err := tc.responseField(field)
	return err
}

func theResponseFieldShouldHaveItems(ctx context.Context, field string, expected int) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}

	value, err := tc.responseField(field)
	if err != nil {
		return err
	}
	items, ok := value.([]interface{})
	if !ok {
		return fmt.Errorf("field '%s' is not an array", field)
	}
	if len(items) != expected {
		return fmt.Errorf("field '%s' expected %d items, got %d. Body: %s", field, expected, len(items), string(tc.responseBody))
	}
	return nil
}

func theDbShouldContainObjectsInTheTable(ctx context.Context, expected int, table string) error {
	return countRows(ctx, expected, table, false)
}

func theDbShouldContainObjectsIncludingDeleted(ctx context.Context, expected int, table string) error {
	return countRows(ctx, expected, table, true)
}

func countRows(ctx context.Context, expected int, table string, unscoped bool) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}

	count, err := tc.db.CountRows(table, unscoped)
	if err != nil {
		return err
	}
	if count != int64(expected) {
		return fmt.Errorf("expected %d objects in %s, got %d", expected, table, count)
	}
	return nil
}

// responseField resolves a dotted path such as "outcomes.0.created" in the JSON body.
func (tc *TestContext) responseField(path string) (interface{}, error) {
	var current interface{}
	if err := json.Unmarshal(tc.responseBody, &current); err != nil {
		return nil, fmt.Errorf("failed to parse response JSON: %w", err)
	}

	for _, part := range strings.Split(path, ".") {
		switch node := current.(type) {
		case map[string]interface{}:
			value, ok := node[part]
			if !ok {
				return nil, fmt.Errorf("field '%s' not found in response: %s", path, string(tc.responseBody))
			}
			current = value
		case []interface{}:
			index, err := strconv.Atoi(part)
			if err != nil || index < 0 || index >= len(node) {
				return nil, fmt.Errorf("index '%s' of '%s' out of range", part, path)
			}
			current = node[index]
		default:
			return nil, fmt.Errorf("field '%s' not found in response", path)
		}
	}
	return current, nil
}

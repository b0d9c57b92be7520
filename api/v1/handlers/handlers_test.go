package handlers_test

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "evote/api/v1"
	"evote/internal/models"
	"evote/internal/poll"
	"evote/internal/poll/polltest"
	"evote/internal/session"
	"evote/pkg/third/google"
)

const contractAddress = "0x5FbDB2315678afecb367f032d93F642f64180aa3"

type testEnv struct {
	app    *fiber.App
	store  *polltest.Store
	ledger *polltest.Ledger
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	st := polltest.NewStore()
	led := polltest.NewLedger()

	app := fiber.New(fiber.Config{
		JSONEncoder: json.Marshal,
		JSONDecoder: json.Unmarshal,
	})
	v1.SetupRoutes(app, v1.Deps{
		Users:           st,
		Polls:           poll.NewService(st, led),
		Sessions:        session.New("", false),
		OAuth:           google.New("", "", ""),
		ContractAddress: contractAddress,
		FrontendURL:     "http://localhost:3000",
	})
	return &testEnv{app: app, store: st, ledger: led}
}

func (e *testEnv) request(t *testing.T, method, path string, body any, cookies []*http.Cookie) (*http.Response, map[string]any) {
	t.Helper()

	var buf io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		buf = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, buf)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)

	payload := map[string]any{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &payload)
	}
	return resp, payload
}

// register creates an account through the HTTP surface and returns the
// session cookies for follow-up requests.
func (e *testEnv) register(t *testing.T, email string) []*http.Cookie {
	t.Helper()
	resp, body := e.request(t, fiber.MethodPost, "/auth/register", fiber.Map{
		"firstName": "Ada",
		"lastName":  "Lovelace",
		"email":     email,
		"password":  "s3cretpw",
	}, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, "register failed: %v", body)
	require.NotEmpty(t, resp.Cookies())
	return resp.Cookies()
}

func TestRegisterAndCurrentUser(t *testing.T) {
	env := newEnv(t)

	cookies := env.register(t, "ada@example.com")

	resp, body := env.request(t, fiber.MethodGet, "/auth/user", nil, cookies)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	user := body["user"].(map[string]any)
	assert.Equal(t, "ada@example.com", user["email"])
	assert.Equal(t, "Ada Lovelace", user["displayName"])

	resp, _ = env.request(t, fiber.MethodGet, "/auth/logout", nil, cookies)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, _ = env.request(t, fiber.MethodGet, "/auth/user", nil, cookies)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	env := newEnv(t)
	env.register(t, "ada@example.com")

	resp, body := env.request(t, fiber.MethodPost, "/auth/register", fiber.Map{
		"firstName": "Eve",
		"lastName":  "Impostor",
		"email":     "ada@example.com",
		"password":  "another1",
	}, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Email already in use.", body["message"])
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	env := newEnv(t)

	resp, _ := env.request(t, fiber.MethodPost, "/auth/register", fiber.Map{
		"firstName": "Ada",
		"lastName":  "Lovelace",
		"email":     "ada@example.com",
		"password":  "short",
	}, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestLogin(t *testing.T) {
	env := newEnv(t)
	env.register(t, "ada@example.com")

	resp, body := env.request(t, fiber.MethodPost, "/auth/login", fiber.Map{
		"email":    "ada@example.com",
		"password": "s3cretpw",
	}, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "Login successful", body["message"])
	assert.NotEmpty(t, resp.Cookies())

	resp, body = env.request(t, fiber.MethodPost, "/auth/login", fiber.Map{
		"email":    "ada@example.com",
		"password": "wrongpass",
	}, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Incorrect email or password.", body["message"])
}

func TestLoginGoogleOnlyAccount(t *testing.T) {
	env := newEnv(t)
	googleID := "109876543210"
	env.store.SeedUser(models.User{
		GoogleId:  &googleID,
		FirstName: "Grace",
		LastName:  "Hopper",
		Email:     "grace@example.com",
	})

	resp, body := env.request(t, fiber.MethodPost, "/auth/login", fiber.Map{
		"email":    "grace@example.com",
		"password": "whatever1",
	}, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Please log in with Google.", body["message"])
}

func TestUpdateUser(t *testing.T) {
	env := newEnv(t)
	cookies := env.register(t, "ada@example.com")

	resp, _ := env.request(t, fiber.MethodPut, "/auth/user", fiber.Map{
		"firstName": "Augusta",
		"lastName":  "King",
		"email":     "augusta@example.com",
	}, cookies)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, body := env.request(t, fiber.MethodGet, "/auth/user", nil, cookies)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	user := body["user"].(map[string]any)
	assert.Equal(t, "augusta@example.com", user["email"])
	assert.Equal(t, "Augusta King", user["displayName"])
}

func TestPollRoutesRequireAuth(t *testing.T) {
	env := newEnv(t)

	resp, body := env.request(t, fiber.MethodPost, "/polls/1/vote", fiber.Map{
		"optionIndex": 0,
	}, nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Unauthorized", body["message"])
	assert.Equal(t, 0, env.store.VoteCount(1))

	resp, _ = env.request(t, fiber.MethodGet, "/polls", nil, nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestPollLifecycle(t *testing.T) {
	env := newEnv(t)
	cookies := env.register(t, "ada@example.com")

	resp, body := env.request(t, fiber.MethodPost, "/polls/", fiber.Map{
		"title":   "Favorite color?",
		"type":    "normal",
		"options": []string{"Red", "Blue"},
	}, cookies)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, "create failed: %v", body)
	created := body["poll"].(map[string]any)
	pollID := int(created["id"].(float64))
	require.Positive(t, pollID)
	require.Len(t, body["options"].([]any), 2)

	resp, _ = env.request(t, fiber.MethodGet, "/polls/", nil, cookies)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	path := "/polls/" + strconv.Itoa(pollID)

	resp, body = env.request(t, fiber.MethodGet, path+"/hasVoted", nil, cookies)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, false, body["hasVoted"])

	resp, body = env.request(t, fiber.MethodPost, path+"/vote", fiber.Map{
		"optionIndex": 1,
	}, cookies)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, "vote failed: %v", body)
	assert.Equal(t, "Vote recorded successfully.", body["message"])

	resp, body = env.request(t, fiber.MethodGet, path+"/hasVoted", nil, cookies)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["hasVoted"])

	resp, body = env.request(t, fiber.MethodGet, path+"/results", nil, cookies)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["total_votes"])
	options := body["options"].([]any)
	require.Len(t, options, 2)
	blue := options[1].(map[string]any)
	assert.Equal(t, "Blue", blue["text"])
	assert.Equal(t, float64(1), blue["votes_count"])

	resp, body = env.request(t, fiber.MethodPost, path+"/vote", fiber.Map{
		"optionIndex": 0,
	}, cookies)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, "You have already voted on this poll.", body["message"])
	assert.Equal(t, 1, env.store.VoteCount(pollID))
}

func TestCreatePollTooFewOptions(t *testing.T) {
	env := newEnv(t)
	cookies := env.register(t, "ada@example.com")

	resp, _ := env.request(t, fiber.MethodPost, "/polls/", fiber.Map{
		"title":   "Favorite color?",
		"type":    "normal",
		"options": []string{"Red"},
	}, cookies)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, 0, env.store.PollCount())
}

func TestCreatePollOnChain(t *testing.T) {
	env := newEnv(t)
	cookies := env.register(t, "ada@example.com")

	resp, body := env.request(t, fiber.MethodPost, "/polls/", fiber.Map{
		"title":         "Upgrade the treasury?",
		"type":          "blockchain",
		"options":       []string{"Yes", "No"},
		"createOnChain": true,
	}, cookies)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, "create failed: %v", body)
	created := body["poll"].(map[string]any)
	assert.Equal(t, "blockchain", created["type"])
	require.NotNil(t, created["blockchain_id"])

	pollID := int(created["id"].(float64))
	resp, body = env.request(t, fiber.MethodGet, "/polls/"+strconv.Itoa(pollID), nil, cookies)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "Upgrade the treasury?", body["title"])
	assert.Equal(t, float64(0), body["total_votes"])
}

func TestBlockchainPollLedgerDown(t *testing.T) {
	env := newEnv(t)
	cookies := env.register(t, "ada@example.com")

	env.ledger.Seed(7, "Upgrade?", "", []string{"Yes", "No"})
	ledgerID := int64(7)
	owner, err := env.store.UserByEmail(context.Background(), "ada@example.com")
	require.NoError(t, err)
	p := env.store.SeedPoll(models.Poll{
		UserId:       owner.Id,
		Type:         models.PollTypeBlockchain,
		BlockchainId: &ledgerID,
	}, nil)

	env.ledger.Unreachable = true

	resp, body := env.request(t, fiber.MethodGet, "/polls/"+strconv.Itoa(p.Id), nil, cookies)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "Blockchain network unavailable. Connect a wallet and try again.", body["message"])
}

func TestGetUnknownPoll(t *testing.T) {
	env := newEnv(t)
	cookies := env.register(t, "ada@example.com")

	resp, body := env.request(t, fiber.MethodGet, "/polls/99", nil, cookies)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Poll not found.", body["message"])
}

func TestVoteRejectsMissingOptionIndex(t *testing.T) {
	env := newEnv(t)
	cookies := env.register(t, "ada@example.com")

	resp, _ := env.request(t, fiber.MethodPost, "/polls/1/vote", fiber.Map{}, cookies)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestContractInfo(t *testing.T) {
	env := newEnv(t)

	resp, body := env.request(t, fiber.MethodGet, "/contract-info", nil, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, contractAddress, body["contractAddress"])

	abi, ok := body["abi"].([]any)
	require.True(t, ok, "abi should be a JSON array, got %T", body["abi"])
	assert.NotEmpty(t, abi)
}

func TestGoogleRedirectUnconfigured(t *testing.T) {
	env := newEnv(t)

	resp, body := env.request(t, fiber.MethodGet, "/auth/google", nil, nil)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "Google sign-in is not configured.", body["message"])
}

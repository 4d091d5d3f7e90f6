package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omisdami/bankassist/assistant"
	"github.com/omisdami/bankassist/config"
)

type stubRunner struct {
	reply  string
	action assistant.Action
	err    error
	inputs []string
}

func (r *stubRunner) Submit(input string, timeout time.Duration) (string, assistant.Action, error) {
	r.inputs = append(r.inputs, input)
	return r.reply, r.action, r.err
}

func testServer(runner *stubRunner) *Server {
	cfg := config.ServerConfig{
		Addr:            ":0",
		JWTSecret:       "test-secret",
		TokenTTLMinutes: 15,
		TurnTimeoutSecs: 1,
	}
	verify := func(userID, password string) (bool, error) {
		return userID == "test1" && password == "test123", nil
	}
	return New(cfg, runner, verify, zerolog.Nop())
}

func login(t *testing.T, ts *httptest.Server, userID, password string) (string, int) {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"user_id": userID, "password": password})
	resp, err := http.Post(ts.URL+"/auth/login", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", resp.StatusCode
	}
	var out struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out.Token, resp.StatusCode
}

func TestLogin(t *testing.T) {
	ts := httptest.NewServer(testServer(&stubRunner{}).Handler())
	defer ts.Close()

	token, status := login(t, ts, "test1", "test123")
	assert.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, token)

	_, status = login(t, ts, "test1", "wrong")
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestChatRequiresToken(t *testing.T) {
	ts := httptest.NewServer(testServer(&stubRunner{}).Handler())
	defer ts.Close()

	body, _ := json.Marshal(map[string]string{"message": "hi"})
	resp, err := http.Post(ts.URL+"/chat", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestChatTurn(t *testing.T) {
	runner := &stubRunner{reply: "Your balance is $1000.00."}
	ts := httptest.NewServer(testServer(runner).Handler())
	defer ts.Close()

	token, _ := login(t, ts, "test1", "test123")

	body, _ := json.Marshal(map[string]string{"message": "what's my balance?"})
	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/chat", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Reply string `json:"reply"`
		Done  bool   `json:"done"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "Your balance is $1000.00.", out.Reply)
	assert.False(t, out.Done)
	assert.Equal(t, []string{"what's my balance?"}, runner.inputs)
}

func TestChatTimeoutStillReplies(t *testing.T) {
	runner := &stubRunner{err: assistant.ErrBusy}
	ts := httptest.NewServer(testServer(runner).Handler())
	defer ts.Close()

	token, _ := login(t, ts, "test1", "test123")

	body, _ := json.Marshal(map[string]string{"message": "slow request"})
	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/chat", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	// A slow turn is an apologetic reply, not a transport error.
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out struct {
		Reply string `json:"reply"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Contains(t, out.Reply, "too long")
}

func TestRejectsForgedToken(t *testing.T) {
	ts := httptest.NewServer(testServer(&stubRunner{}).Handler())
	defer ts.Close()

	body, _ := json.Marshal(map[string]string{"message": "hi"})
	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/chat", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer not.a.token")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHealth(t *testing.T) {
	ts := httptest.NewServer(testServer(&stubRunner{}).Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubAPI mimics the auth endpoints the client talks to. Tokens are
// opaque strings; a request is authenticated when its access-token
// cookie matches the server's current token.
type stubAPI struct {
	mu            sync.Mutex
	currentToken  string
	tokenSeq      int
	rejectProfile bool

	refreshCalls  atomic.Int32
	profileCalls  atomic.Int32
	refreshStatus int
	refreshDelay  time.Duration

	// accessCookieLog records, per profile request, every accessToken
	// cookie value the request presented.
	accessCookieLog [][]string

	user User
}

func newStubAPI() *stubAPI {
	return &stubAPI{
		refreshStatus: http.StatusOK,
		user:          User{ID: "u1", Name: "A", Email: "a@x.com", Role: "customer"},
	}
}

func (s *stubAPI) issueToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokenSeq++
	s.currentToken = "access-" + strconv.Itoa(s.tokenSeq)
	return s.currentToken
}

// expireSession invalidates the outstanding access token without
// touching the client's cookie jar, simulating token expiry.
func (s *stubAPI) expireSession() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentToken = ""
}

func (s *stubAPI) authenticated(r *http.Request) bool {
	cookie, err := r.Cookie("accessToken")
	if err != nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rejectProfile {
		return false
	}
	return s.currentToken != "" && cookie.Value == s.currentToken
}

func (s *stubAPI) setAccessCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{Name: "accessToken", Value: token, Path: "/"})
}

func (s *stubAPI) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		s.setAccessCookie(w, s.issueToken())
		http.SetCookie(w, &http.Cookie{Name: "refreshToken", Value: "refresh-1", Path: "/"})
		writeBody(w, http.StatusOK, map[string]any{"user": s.user})
	})

	mux.HandleFunc("POST /api/auth/signup", func(w http.ResponseWriter, r *http.Request) {
		s.setAccessCookie(w, s.issueToken())
		http.SetCookie(w, &http.Cookie{Name: "refreshToken", Value: "refresh-1", Path: "/"})
		writeBody(w, http.StatusCreated, map[string]any{"user": s.user})
	})

	mux.HandleFunc("POST /api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		s.expireSession()
		writeBody(w, http.StatusOK, map[string]string{"message": "logged out"})
	})

	mux.HandleFunc("POST /api/auth/refresh-token", func(w http.ResponseWriter, r *http.Request) {
		s.refreshCalls.Add(1)
		if s.refreshDelay > 0 {
			time.Sleep(s.refreshDelay)
		}
		if s.refreshStatus != http.StatusOK {
			writeBody(w, s.refreshStatus, map[string]string{"message": "invalid refresh token"})
			return
		}
		token := s.issueToken()
		s.setAccessCookie(w, token)
		writeBody(w, http.StatusOK, map[string]string{"accessToken": token})
	})

	mux.HandleFunc("GET /api/auth/profile", func(w http.ResponseWriter, r *http.Request) {
		s.profileCalls.Add(1)
		var presented []string
		for _, cookie := range r.Cookies() {
			if cookie.Name == "accessToken" {
				presented = append(presented, cookie.Value)
			}
		}
		s.mu.Lock()
		s.accessCookieLog = append(s.accessCookieLog, presented)
		s.mu.Unlock()
		if !s.authenticated(r) {
			writeBody(w, http.StatusUnauthorized, map[string]string{"message": "invalid access token"})
			return
		}
		writeBody(w, http.StatusOK, s.user)
	})

	return mux
}

func writeBody(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func newTestClient(t *testing.T) (*Client, *stubAPI) {
	t.Helper()

	api := newStubAPI()
	server := httptest.NewServer(api.handler())
	t.Cleanup(server.Close)

	c, err := New(server.URL)
	require.NoError(t, err)
	return c, api
}

func TestLoginCachesUser(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	require.Nil(t, c.CurrentUser())

	user, err := c.Login(ctx, "a@x.com", "secret1")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "a@x.com", user.Email)
	assert.Equal(t, user, c.CurrentUser())
}

func TestProfileRefreshesExpiredToken(t *testing.T) {
	c, api := newTestClient(t)
	ctx := context.Background()

	_, err := c.Login(ctx, "a@x.com", "secret1")
	require.NoError(t, err)

	api.expireSession()

	user, err := c.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, int32(1), api.refreshCalls.Load())
	assert.Equal(t, int32(2), api.profileCalls.Load(), "one failed attempt plus one replay")
}

func TestReplayPresentsOnlyFreshAccessToken(t *testing.T) {
	c, api := newTestClient(t)
	ctx := context.Background()

	_, err := c.Login(ctx, "a@x.com", "secret1")
	require.NoError(t, err)

	api.expireSession()

	_, err = c.Profile(ctx)
	require.NoError(t, err)

	// The jar cookies from the first send must not ride along on the
	// replay: a duplicated cookie would make the server resolve the
	// stale value and reject the replay despite the successful refresh.
	api.mu.Lock()
	defer api.mu.Unlock()
	require.Len(t, api.accessCookieLog, 2)
	replayed := api.accessCookieLog[1]
	require.Len(t, replayed, 1, "the replay must carry exactly one access-token cookie")
	assert.Equal(t, api.currentToken, replayed[0])
}

func TestConcurrentExpiredRequestsShareOneRefresh(t *testing.T) {
	c, api := newTestClient(t)
	ctx := context.Background()

	_, err := c.Login(ctx, "a@x.com", "secret1")
	require.NoError(t, err)

	api.expireSession()
	api.refreshDelay = 100 * time.Millisecond

	const callers = 5
	start := make(chan struct{})
	errs := make(chan error, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := c.Profile(ctx)
			errs <- err
		}()
	}
	close(start)
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(1), api.refreshCalls.Load(),
		"a burst of expired requests must produce exactly one refresh call")
}

func TestRequestReplayedAtMostOnce(t *testing.T) {
	c, api := newTestClient(t)
	ctx := context.Background()

	_, err := c.Login(ctx, "a@x.com", "secret1")
	require.NoError(t, err)

	// The refresh succeeds but the server keeps rejecting the profile
	// request, so the replay fails too. The client must stop there.
	api.mu.Lock()
	api.rejectProfile = true
	api.mu.Unlock()
	originalProfileCalls := api.profileCalls.Load()

	_, err = c.Profile(ctx)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, originalProfileCalls+2, api.profileCalls.Load(),
		"one failed attempt plus exactly one replay")
	assert.Equal(t, int32(1), api.refreshCalls.Load())
}

func TestFailedRefreshClearsSessionAndSurfacesOriginalError(t *testing.T) {
	c, api := newTestClient(t)
	ctx := context.Background()

	_, err := c.Login(ctx, "a@x.com", "secret1")
	require.NoError(t, err)
	require.NotNil(t, c.CurrentUser())

	api.expireSession()
	api.refreshStatus = http.StatusForbidden

	_, err = c.Profile(ctx)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode,
		"the caller sees the original unauthorized response, not the refresh failure")
	assert.Nil(t, c.CurrentUser(), "a failed refresh logs the client out locally")
	assert.Equal(t, int32(1), api.profileCalls.Load(), "no replay after a failed refresh")
}

func TestExplicitRefreshFailurePropagates(t *testing.T) {
	c, api := newTestClient(t)
	api.refreshStatus = http.StatusUnauthorized

	err := c.Refresh(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}

func TestLogoutClearsLocalStateEvenOnServerError(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	_, err := c.Login(ctx, "a@x.com", "secret1")
	require.NoError(t, err)
	require.NotNil(t, c.CurrentUser())

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, http.StatusInternalServerError, map[string]string{"message": "boom"})
	}))
	defer server.Close()
	c.baseURL = server.URL

	err = c.Logout(ctx)
	require.Error(t, err)
	assert.Nil(t, c.CurrentUser())
}

func TestFailedLoginClearsCachedUser(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	_, err := c.Login(ctx, "a@x.com", "secret1")
	require.NoError(t, err)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, http.StatusUnauthorized, map[string]string{"message": "invalid email or password"})
	}))
	defer server.Close()
	c.baseURL = server.URL

	_, err = c.Login(ctx, "a@x.com", "wrong")
	require.Error(t, err)
	assert.True(t, errors.As(err, new(*APIError)))
	assert.Nil(t, c.CurrentUser())
}

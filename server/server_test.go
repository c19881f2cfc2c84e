package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/go-patient-portal/identity"
	"github.com/jrsteele09/go-patient-portal/internal/config"
	"github.com/jrsteele09/go-patient-portal/patients"
	"github.com/jrsteele09/go-patient-portal/server/authflowrepo"
	"github.com/jrsteele09/go-patient-portal/server/loginsession"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

const testSessionID = "session-1"

type fakeAuthenticator struct {
	identity *identity.Identity
	err      error

	exchangedCode     string
	exchangedVerifier string
	exchangedNonce    string
}

func (f *fakeAuthenticator) AuthCodeURL(_ context.Context, state, nonce, _ string) (string, error) {
	return "https://idp.test/authorize?state=" + state + "&nonce=" + nonce, nil
}

func (f *fakeAuthenticator) Exchange(_ context.Context, code, verifier, nonce string) (*identity.Identity, error) {
	f.exchangedCode, f.exchangedVerifier, f.exchangedNonce = code, verifier, nonce
	return f.identity, f.err
}

func (f *fakeAuthenticator) TokenSource(_ context.Context, token *oauth2.Token) (oauth2.TokenSource, error) {
	return oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken:  "refreshed-" + token.RefreshToken,
		RefreshToken: token.RefreshToken,
		Expiry:       timeNow().Add(time.Hour),
	}), nil
}

func (f *fakeAuthenticator) LogoutURL(_ context.Context, returnTo, idTokenHint string) (string, error) {
	return "https://idp.test/logout?returnTo=" + url.QueryEscape(returnTo) + "&hint=" + idTokenHint, nil
}

type fakeUploader struct {
	mu          sync.Mutex
	fileURL     string
	contentType string
	content     string
	err         error
}

func (f *fakeUploader) Upload(_ context.Context, fileURL, contentType string, r io.Reader) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, _ := io.ReadAll(r)
	f.fileURL, f.contentType, f.content = fileURL, contentType, string(data)
	return f.err
}

// fakeAPI serves a fixed set of patients and records the bearer tokens it saw.
type fakeAPI struct {
	mu       sync.Mutex
	patients map[string]patients.Patient
	tokens   []string
	patches  []string
	uploads  []string
}

func (a *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.tokens = append(a.tokens, r.Header.Get("Authorization"))

	path := strings.TrimPrefix(r.URL.Path, "/patients")
	switch {
	case path == "" && r.Method == http.MethodGet:
		list := make([]patients.Patient, 0, len(a.patients))
		for _, id := range []string{"p1", "p2"} {
			if p, ok := a.patients[id]; ok {
				list = append(list, p)
			}
		}
		_ = json.NewEncoder(w).Encode(list)
	case strings.HasSuffix(path, "/files/upload-file-info") && r.Method == http.MethodPost:
		a.uploads = append(a.uploads, r.URL.RawQuery)
		fmt.Fprintf(w, `{"file_url":"https://acct.blob.core.windows.net/files/%s?sig=abc"}`, r.URL.Query().Get("file_name"))
	case r.Method == http.MethodGet:
		p, ok := a.patients[strings.TrimPrefix(path, "/")]
		if !ok {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(p)
	case r.Method == http.MethodPatch:
		body, _ := io.ReadAll(r.Body)
		a.patches = append(a.patches, string(body))
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "unexpected", http.StatusMethodNotAllowed)
	}
}

type testEnv struct {
	server   *Server
	api      *fakeAPI
	authn    *fakeAuthenticator
	uploader *fakeUploader
	sessions *loginsession.InMemoryLoginSessionRepo
	flows    *authflowrepo.InMemoryRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	api := &fakeAPI{patients: map[string]patients.Patient{
		"p1": {
			ID:             "p1",
			Name:           "Jane Doe",
			CountryOfBirth: "United Kingdom",
			DateOfBirth:    "1980-01-01",
			Gender:         "female",
			Files: []patients.File{
				{FullPath: "p1/report.pdf", ValidationStatus: "pending"},
				{FullPath: "p1/ok.pdf", ValidationStatus: "validated"},
			},
		},
		"p2": {ID: "p2", Name: "John Roe"},
	}}
	apiServer := httptest.NewServer(api)
	t.Cleanup(apiServer.Close)

	cfg := config.FromValues(map[string]string{
		"API_URL":        apiServer.URL,
		"AUTH_DOMAIN":    "idp.test",
		"AUTH_CLIENT_ID": "client",
		"BASE_URL":       "http://portal.test",
		"ENV":            "TEST",
	})

	env := &testEnv{
		api:      api,
		authn:    &fakeAuthenticator{},
		uploader: &fakeUploader{},
		sessions: loginsession.NewInMemoryLoginSessionRepo(),
		flows:    authflowrepo.NewInMemoryRepo(),
	}
	s, err := New(cfg, env.authn, env.uploader, env.sessions, env.flows, WithHTTPClient(apiServer.Client()))
	require.NoError(t, err)
	env.server = s
	return env
}

func (e *testEnv) login(t *testing.T, roles ...string) {
	t.Helper()
	require.NoError(t, e.sessions.Upsert(testSessionID, loginsession.Session{
		UserID:       "auth0|123",
		Name:         "Jane Doe",
		Roles:        roles,
		AccessToken:  "user-token",
		RefreshToken: "refresh",
		IDToken:      "id-token",
		TokenExpiry:  time.Now().Add(time.Hour),
		ExpiresAt:    time.Now().Add(time.Hour),
		CreatedAt:    time.Now(),
	}))
}

func (e *testEnv) do(r *http.Request) *httptest.ResponseRecorder {
	r.AddCookie(&http.Cookie{Name: loggedInSessionID, Value: testSessionID})
	rec := httptest.NewRecorder()
	e.server.ServeHTTP(rec, r)
	return rec
}

func TestNew_RequiresDependencies(t *testing.T) {
	cfg := config.FromValues(nil)
	_, err := New(cfg, nil, &fakeUploader{}, loginsession.NewInMemoryLoginSessionRepo(), authflowrepo.NewInMemoryRepo())
	require.Error(t, err)
	_, err = New(cfg, &fakeAuthenticator{}, nil, loginsession.NewInMemoryLoginSessionRepo(), authflowrepo.NewInMemoryRepo())
	require.Error(t, err)
}

func TestHome(t *testing.T) {
	t.Run("logged out", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.do(httptest.NewRequest(http.MethodGet, "/", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), "Please log in to view your patients.")
		require.Contains(t, rec.Body.String(), "Sign in")
		require.Empty(t, env.api.tokens)
	})

	t.Run("logged in", func(t *testing.T) {
		env := newTestEnv(t)
		env.login(t)
		rec := env.do(httptest.NewRequest(http.MethodGet, "/", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		require.Contains(t, body, "Welcome, Jane Doe")
		require.Contains(t, body, "Your Patients:")
		require.Contains(t, body, `href="/patients/p1"`)
		require.Contains(t, body, "John Roe")
		require.Contains(t, body, "Sign out")
		require.NotContains(t, body, `href="/admin"`)
		require.Equal(t, []string{"Bearer user-token"}, env.api.tokens)
	})

	t.Run("no patients", func(t *testing.T) {
		env := newTestEnv(t)
		env.api.patients = map[string]patients.Patient{}
		env.login(t)
		rec := env.do(httptest.NewRequest(http.MethodGet, "/", nil))

		require.Contains(t, rec.Body.String(), "No patients found.")
	})

	t.Run("expired session", func(t *testing.T) {
		env := newTestEnv(t)
		require.NoError(t, env.sessions.Upsert(testSessionID, loginsession.Session{
			Name:      "Jane Doe",
			ExpiresAt: time.Now().Add(-time.Minute),
		}))
		rec := env.do(httptest.NewRequest(http.MethodGet, "/", nil))

		require.Contains(t, rec.Body.String(), "Please log in to view your patients.")
		require.Equal(t, 0, env.sessions.Count())
	})
}

func TestAccessTokenRefresh(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.sessions.Upsert(testSessionID, loginsession.Session{
		Name:         "Jane Doe",
		AccessToken:  "stale",
		RefreshToken: "refresh",
		TokenExpiry:  time.Now().Add(-time.Minute),
		ExpiresAt:    time.Now().Add(time.Hour),
	}))

	rec := env.do(httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []string{"Bearer refreshed-refresh"}, env.api.tokens)

	stored, err := env.sessions.Get(testSessionID)
	require.NoError(t, err)
	require.Equal(t, "refreshed-refresh", stored.AccessToken)
}

func TestPatientDetails(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	t.Run("found", func(t *testing.T) {
		rec := env.do(httptest.NewRequest(http.MethodGet, "/patients/p1", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		for _, want := range []string{"Id:", "p1", "Name:", "Jane Doe", "Country of Birth:", "United Kingdom", "Date of Birth:", "1980-01-01", "Gender:", "female"} {
			require.Contains(t, body, want)
		}
	})

	t.Run("upload notice", func(t *testing.T) {
		rec := env.do(httptest.NewRequest(http.MethodGet, "/patients/p1?uploaded=1", nil))
		require.Contains(t, rec.Body.String(), "File uploaded successfully!")
	})

	t.Run("not found", func(t *testing.T) {
		rec := env.do(httptest.NewRequest(http.MethodGet, "/patients/nope", nil))
		require.Equal(t, http.StatusNotFound, rec.Code)
		require.Contains(t, rec.Body.String(), "Patient not found")
	})
}

func TestProtectedRouteRedirectsToLogin(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(httptest.NewRequest(http.MethodGet, "/patients/p1", nil))

	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/auth/login?return_to=%2Fpatients%2Fp1", rec.Header().Get("Location"))
	require.Empty(t, env.api.tokens)
}

func TestLoginFlow(t *testing.T) {
	env := newTestEnv(t)
	env.authn.identity = &identity.Identity{
		Subject: "auth0|123",
		Name:    "Jane Doe",
		Roles:   []string{rolePlatformAdmin},
		IDToken: "id-token",
		Token:   &oauth2.Token{AccessToken: "at", RefreshToken: "rt", Expiry: time.Now().Add(time.Hour)},
	}

	rec := env.do(httptest.NewRequest(http.MethodGet, "/auth/login?return_to=/patients/p1", nil))
	require.Equal(t, http.StatusFound, rec.Code)
	location, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	require.Equal(t, "idp.test", location.Host)
	state := location.Query().Get("state")
	nonce := location.Query().Get("nonce")
	require.NotEmpty(t, state)

	rec = httptest.NewRecorder()
	env.server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?code=abc&state="+state, nil))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/patients/p1", rec.Header().Get("Location"))
	require.Equal(t, "abc", env.authn.exchangedCode)
	require.Equal(t, nonce, env.authn.exchangedNonce)
	require.NotEmpty(t, env.authn.exchangedVerifier)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, loggedInSessionID, cookies[0].Name)
	session, err := env.sessions.Get(cookies[0].Value)
	require.NoError(t, err)
	require.Equal(t, "at", session.AccessToken)
	require.Equal(t, []string{rolePlatformAdmin}, session.Roles)

	// state is single use
	rec = httptest.NewRecorder()
	env.server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?code=abc&state="+state, nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCallbackErrors(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name  string
		query string
	}{
		{name: "missing code", query: "state=x"},
		{name: "unknown state", query: "state=x&code=abc"},
		{name: "provider error", query: "error=access_denied&error_description=denied"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			env.server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?"+tt.query, nil))
			require.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}

	t.Run("expired flow", func(t *testing.T) {
		require.NoError(t, env.flows.Upsert("old", &authflowrepo.AuthFlowState{
			CodeVerifier: "v",
			ReturnURL:    "/",
			CreatedAt:    time.Now().Add(-time.Hour),
		}))
		rec := httptest.NewRecorder()
		env.server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?code=abc&state=old", nil))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Empty(t, env.authn.exchangedCode)
	})
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	rec := env.do(httptest.NewRequest(http.MethodPost, "/auth/logout", nil))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "https://idp.test/logout?returnTo=http%3A%2F%2Fportal.test&hint=id-token", rec.Header().Get("Location"))
	require.Equal(t, 0, env.sessions.Count())

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, loggedInSessionID, cookies[0].Name)
	require.Negative(t, cookies[0].MaxAge)
}

func TestLogout_GetDoesNotEndSession(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/auth/logout", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, 1, env.sessions.Count())
}

func TestUnrefreshableSessionGoesBackThroughLogin(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.sessions.Upsert(testSessionID, loginsession.Session{
		Name:        "Jane Doe",
		AccessToken: "stale",
		TokenExpiry: time.Now().Add(-time.Minute),
		ExpiresAt:   time.Now().Add(time.Hour),
	}))

	rec := env.do(httptest.NewRequest(http.MethodGet, "/patients/p1", nil))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/auth/login?return_to=%2Fpatients%2Fp1", rec.Header().Get("Location"))
	require.Empty(t, env.api.tokens)
	require.Equal(t, 0, env.sessions.Count())
}

func TestPatientEdit(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/patients/p1/edit", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `value="Jane Doe"`)

	post := func(form url.Values) *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodPost, "/patients/p1/edit", strings.NewReader(form.Encode()))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return env.do(r)
	}
	base := url.Values{
		"name":             {"Jane Doe"},
		"date_of_birth":    {"1980-01-01"},
		"country_of_birth": {"United Kingdom"},
		"gender":           {"female"},
	}

	t.Run("valid change", func(t *testing.T) {
		form := url.Values{}
		for k, v := range base {
			form[k] = v
		}
		form.Set("name", "Jane Smith")

		rec := post(form)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), "Patient updated.")
		require.Contains(t, rec.Body.String(), "Jane Smith")
		require.Equal(t, []string{`{"name":"Jane Smith"}`}, env.api.patches)
	})

	t.Run("invalid change", func(t *testing.T) {
		form := url.Values{}
		for k, v := range base {
			form[k] = v
		}
		form.Set("date_of_birth", "not-a-date")

		rec := post(form)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Contains(t, rec.Body.String(), "Must be a valid date")
		require.Len(t, env.api.patches, 1)
	})

	t.Run("no change", func(t *testing.T) {
		rec := post(base)
		require.Equal(t, http.StatusSeeOther, rec.Code)
		require.Equal(t, "/patients/p1", rec.Header().Get("Location"))
	})
}

func TestPatientEdit_UntouchedFieldsAreNotSent(t *testing.T) {
	newEnv := func(t *testing.T, gender, dateOfBirth string) *testEnv {
		env := newTestEnv(t)
		p := env.api.patients["p1"]
		p.Gender = gender
		p.DateOfBirth = dateOfBirth
		env.api.patients["p1"] = p
		env.login(t)
		return env
	}
	post := func(env *testEnv, form url.Values) *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodPost, "/patients/p1/edit", strings.NewReader(form.Encode()))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return env.do(r)
	}

	t.Run("gender outside the list", func(t *testing.T) {
		env := newEnv(t, "Female", "1980-01-01")

		rec := env.do(httptest.NewRequest(http.MethodGet, "/patients/p1/edit", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), `<option value="Female" selected>Female</option>`)

		rec = post(env, url.Values{
			"name":             {"Jane Smith"},
			"date_of_birth":    {"1980-01-01"},
			"country_of_birth": {"United Kingdom"},
			"gender":           {"Female"},
		})
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, []string{`{"name":"Jane Smith"}`}, env.api.patches)
	})

	t.Run("timestamp date of birth", func(t *testing.T) {
		env := newEnv(t, "female", "1980-01-01T00:00:00Z")

		rec := env.do(httptest.NewRequest(http.MethodGet, "/patients/p1/edit", nil))
		require.Contains(t, rec.Body.String(), `name="date_of_birth" value="1980-01-01"`)

		rec = post(env, url.Values{
			"name":             {"Jane Smith"},
			"date_of_birth":    {"1980-01-01"},
			"country_of_birth": {"United Kingdom"},
			"gender":           {"female"},
		})
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, []string{`{"name":"Jane Smith"}`}, env.api.patches)
	})

	t.Run("date the input cannot show", func(t *testing.T) {
		env := newEnv(t, "female", "circa 1980")

		rec := post(env, url.Values{
			"name":             {"Jane Smith"},
			"date_of_birth":    {""},
			"country_of_birth": {"United Kingdom"},
			"gender":           {"female"},
		})
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, []string{`{"name":"Jane Smith"}`}, env.api.patches)
	})

	t.Run("explicitly cleared gender", func(t *testing.T) {
		env := newEnv(t, "female", "1980-01-01")

		rec := post(env, url.Values{
			"name":             {"Jane Doe"},
			"date_of_birth":    {"1980-01-01"},
			"country_of_birth": {"United Kingdom"},
			"gender":           {""},
		})
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, []string{`{"gender":""}`}, env.api.patches)
	})
}

func uploadRequest(t *testing.T, fileName, fileType, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if fileName != "" {
		part, err := mw.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.WriteField("file_type", fileType))
	require.NoError(t, mw.Close())

	r := httptest.NewRequest(http.MethodPost, "/patients/p1/upload", &body)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	return r
}

func TestUpload(t *testing.T) {
	t.Run("form", func(t *testing.T) {
		env := newTestEnv(t)
		env.login(t)
		rec := env.do(httptest.NewRequest(http.MethodGet, "/patients/p1/upload", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		require.Contains(t, body, "Select File:")
		require.Contains(t, body, `<option value="genetic-report" selected>Genetic Report</option>`)
		require.Contains(t, body, "Doctor Report")
	})

	t.Run("success", func(t *testing.T) {
		env := newTestEnv(t)
		env.login(t)
		rec := env.do(uploadRequest(t, "report.pdf", "doctor-report", "%PDF-1.4"))

		require.Equal(t, http.StatusSeeOther, rec.Code)
		require.Equal(t, "/patients/p1?uploaded=1", rec.Header().Get("Location"))
		require.Equal(t, []string{"file_name=report.pdf&file_type=doctor-report"}, env.api.uploads)
		require.Equal(t, "https://acct.blob.core.windows.net/files/report.pdf?sig=abc", env.uploader.fileURL)
		require.Equal(t, "%PDF-1.4", env.uploader.content)
		require.Equal(t, "application/octet-stream", env.uploader.contentType)
	})

	t.Run("missing file", func(t *testing.T) {
		env := newTestEnv(t)
		env.login(t)
		rec := env.do(uploadRequest(t, "", "generic", ""))

		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Contains(t, rec.Body.String(), "Please select a file.")
		require.Empty(t, env.api.uploads)
	})

	t.Run("unknown file type", func(t *testing.T) {
		env := newTestEnv(t)
		env.login(t)
		rec := env.do(uploadRequest(t, "x.vcf", "selfie", "data"))

		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Contains(t, rec.Body.String(), "Please choose a valid file type.")
	})

	t.Run("storage failure", func(t *testing.T) {
		env := newTestEnv(t)
		env.login(t)
		env.uploader.err = fmt.Errorf("storage down")
		rec := env.do(uploadRequest(t, "x.vcf", "genetic-report", "data"))

		require.Equal(t, http.StatusBadGateway, rec.Code)
		require.Contains(t, rec.Body.String(), "File upload failed. Please try again.")
	})
}

func TestAdmin(t *testing.T) {
	t.Run("forbidden without role", func(t *testing.T) {
		env := newTestEnv(t)
		env.login(t)
		rec := env.do(httptest.NewRequest(http.MethodGet, "/admin", nil))

		require.Equal(t, http.StatusForbidden, rec.Code)
		require.Contains(t, rec.Body.String(), "Unauthorized")
	})

	t.Run("platform admin", func(t *testing.T) {
		env := newTestEnv(t)
		env.login(t, rolePlatformAdmin)
		rec := env.do(httptest.NewRequest(http.MethodGet, "/admin", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		require.Contains(t, body, "Active sessions:</strong> 1")
		require.Contains(t, body, "Patients:</strong> 2")
		require.Contains(t, body, "Files pending review (1)")
		require.Contains(t, body, "p1/report.pdf")
		require.Contains(t, body, `href="/admin"`)
	})
}

func TestNotFoundAndStatic(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "Not Found")

	rec = env.do(httptest.NewRequest(http.MethodGet, "/css/portal.css", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "text/css")
}

func TestSafeReturnURL(t *testing.T) {
	require.Equal(t, "/patients/p1", safeReturnURL("/patients/p1"))
	require.Equal(t, RouteHome, safeReturnURL(""))
	require.Equal(t, RouteHome, safeReturnURL("https://evil.test/"))
	require.Equal(t, RouteHome, safeReturnURL("//evil.test/"))
}

func TestRunJanitor(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.sessions.Upsert("old", loginsession.Session{ExpiresAt: time.Now().Add(-time.Minute)}))
	env.login(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		env.server.RunJanitor(ctx, 10*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool { return env.sessions.Count() == 1 }, time.Second, 10*time.Millisecond)
	cancel()
	<-done
}

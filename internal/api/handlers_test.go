package api_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"example.com/exercisetracker/internal/api"
	"example.com/exercisetracker/internal/domain"
	"example.com/exercisetracker/internal/persistence/memory"
)

type athleteBody struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
}

type exerciseBody struct {
	ID          string  `json:"_id"`
	Username    string  `json:"username"`
	Date        string  `json:"date"`
	Duration    float64 `json:"duration"`
	Description string  `json:"description"`
}

type logBody struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
	From     string `json:"from"`
	To       string `json:"to"`
	Count    int    `json:"count"`
	Log      []struct {
		Description string  `json:"description"`
		Duration    float64 `json:"duration"`
		Date        string  `json:"date"`
	} `json:"log"`
}

func newTestRouter(t *testing.T, opts api.Options) *mux.Router {
	t.Helper()
	mock := clock.NewMock()
	mock.Set(time.Date(2020, 9, 5, 17, 30, 0, 0, time.UTC))

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	service := domain.NewService(memory.NewRepository(), domain.WithClock(mock))
	router := mux.NewRouter()
	api.NewHandler(service, logger, opts).RegisterRoutes(router)
	return router
}

func postJSON(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func postForm(t *testing.T, h http.Handler, path string, values url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func createUser(t *testing.T, h http.Handler, username string) athleteBody {
	t.Helper()
	rec := postJSON(t, h, "/api/exercise/new-user", `{"username":"`+username+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body athleteBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func addExercise(t *testing.T, h http.Handler, values url.Values) *httptest.ResponseRecorder {
	t.Helper()
	return postForm(t, h, "/api/exercise/add", values)
}

func fetchLog(t *testing.T, h http.Handler, query string) logBody {
	t.Helper()
	rec := get(t, h, "/api/exercise/log?"+query)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body logBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestNewUser(t *testing.T) {
	router := newTestRouter(t, api.Options{})

	alice := createUser(t, router, "alice")
	require.Equal(t, "alice", alice.Username)
	require.NotEmpty(t, alice.ID)

	rec := postJSON(t, router, "/api/exercise/new-user", `{"username":"alice"}`)
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "Username already taken", rec.Body.String())
	require.Contains(t, rec.Header().Get("Content-Type"), "text/plain")

	rec = postJSON(t, router, "/api/exercise/new-user", `{"username":""}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, domain.MsgUsernameRequired, rec.Body.String())

	rec = postJSON(t, router, "/api/exercise/new-user", `{`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNewUserFormEncoded(t *testing.T) {
	router := newTestRouter(t, api.Options{})

	rec := postForm(t, router, "/api/exercise/new-user", url.Values{"username": {"bob"}})
	require.Equal(t, http.StatusOK, rec.Code)

	var body athleteBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "bob", body.Username)
}

func TestListUsers(t *testing.T) {
	router := newTestRouter(t, api.Options{})

	rec := get(t, router, "/api/exercise/users")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `[]`, rec.Body.String())

	alice := createUser(t, router, "alice")
	bob := createUser(t, router, "bob")

	rec = get(t, router, "/api/exercise/users")
	var users []athleteBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
	require.Equal(t, []athleteBody{alice, bob}, users)
}

func TestAddExercise(t *testing.T) {
	router := newTestRouter(t, api.Options{})
	alice := createUser(t, router, "alice")

	rec := addExercise(t, router, url.Values{
		"userId":      {alice.ID},
		"description": {"run"},
		"duration":    {"30"},
		"date":        {"2020-01-15"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body exerciseBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body.ID)
	require.Equal(t, "alice", body.Username)
	require.Equal(t, "Wed Jan 15 2020", body.Date)
	require.Equal(t, 30.0, body.Duration)
	require.Equal(t, "run", body.Description)
}

func TestAddExerciseJSONNumberDuration(t *testing.T) {
	router := newTestRouter(t, api.Options{})
	alice := createUser(t, router, "alice")

	rec := postJSON(t, router, "/api/exercise/add",
		`{"userId":"`+alice.ID+`","description":"swim","duration":12.5}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body exerciseBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, 12.5, body.Duration)
	require.Equal(t, "Sat Sep 05 2020", body.Date, "missing date defaults to today")
}

func TestAddExerciseRejectsInvalidInput(t *testing.T) {
	router := newTestRouter(t, api.Options{})
	alice := createUser(t, router, "alice")

	cases := []struct {
		name    string
		values  url.Values
		status  int
		message string
	}{
		{
			name:    "unknown user",
			values:  url.Values{"userId": {"nope"}, "duration": {"10"}},
			status:  http.StatusNotFound,
			message: "Unknown userId",
		},
		{
			name:    "non numeric duration",
			values:  url.Values{"userId": {alice.ID}, "duration": {"abc"}},
			status:  http.StatusBadRequest,
			message: domain.MsgInvalidDuration,
		},
		{
			name:    "zero duration",
			values:  url.Values{"userId": {alice.ID}, "duration": {"0"}},
			status:  http.StatusBadRequest,
			message: domain.MsgInvalidDuration,
		},
		{
			name:    "bad date",
			values:  url.Values{"userId": {alice.ID}, "duration": {"10"}, "date": {"2020-13-45"}},
			status:  http.StatusBadRequest,
			message: domain.MsgInvalidDate,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := addExercise(t, router, tc.values)
			require.Equal(t, tc.status, rec.Code)
			require.Equal(t, tc.message, rec.Body.String())
		})
	}

	log := fetchLog(t, router, "userId="+alice.ID)
	require.Zero(t, log.Count, "rejected exercises must not be persisted")
}

func TestExerciseLogFilters(t *testing.T) {
	router := newTestRouter(t, api.Options{})
	alice := createUser(t, router, "alice")

	for _, date := range []string{"2019-12-31", "2020-01-01", "2020-01-15", "2020-01-31", "2020-02-01"} {
		rec := addExercise(t, router, url.Values{
			"userId":      {alice.ID},
			"description": {"run " + date},
			"duration":    {"20"},
			"date":        {date},
		})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	all := fetchLog(t, router, "userId="+alice.ID)
	require.Equal(t, alice.ID, all.ID)
	require.Equal(t, "alice", all.Username)
	require.Equal(t, 5, all.Count)
	require.Len(t, all.Log, 5)

	ranged := fetchLog(t, router, "userId="+alice.ID+"&from=2020-01-01&to=2020-01-31")
	require.Equal(t, 3, ranged.Count)
	require.Equal(t, "Wed Jan 01 2020", ranged.From)
	require.Equal(t, "Fri Jan 31 2020", ranged.To)
	require.Equal(t, "Fri Jan 31 2020", ranged.Log[2].Date)

	limited := fetchLog(t, router, "userId="+alice.ID+"&limit=2")
	require.Equal(t, 2, limited.Count)
	require.Len(t, limited.Log, 2)
	require.Equal(t, "run 2019-12-31", limited.Log[0].Description)

	dropped := fetchLog(t, router, "userId="+alice.ID+"&from=garbage")
	require.Equal(t, 5, dropped.Count, "malformed bounds are ignored")
	require.Empty(t, dropped.From)

	onlyTo := fetchLog(t, router, "userId="+alice.ID+"&from=2020-13-01&to=2020-01-01")
	require.Equal(t, 2, onlyTo.Count)
	require.Empty(t, onlyTo.From)
	require.Equal(t, "Wed Jan 01 2020", onlyTo.To)

	rec := get(t, router, "/api/exercise/log?userId="+alice.ID+"&from=garbage")
	require.NotContains(t, rec.Body.String(), `"from"`)
}

func TestExerciseLogUnknownUser(t *testing.T) {
	router := newTestRouter(t, api.Options{})

	rec := get(t, router, "/api/exercise/log?userId=missing")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "Unknown userId", rec.Body.String())

	rec = get(t, router, "/api/exercise/log")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStrictLogFilters(t *testing.T) {
	router := newTestRouter(t, api.Options{StrictLogFilters: true})
	alice := createUser(t, router, "alice")

	rec := get(t, router, "/api/exercise/log?userId="+alice.ID+"&to=2020-02-30")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, domain.MsgInvalidLogDate, rec.Body.String())

	rec = get(t, router, "/api/exercise/log?userId=missing&from=garbage")
	require.Equal(t, http.StatusNotFound, rec.Code, "unknown user is reported before bad bounds")
}

func TestLegacyStatusCodes(t *testing.T) {
	router := newTestRouter(t, api.Options{LegacyStatusCodes: true})
	createUser(t, router, "alice")

	rec := postJSON(t, router, "/api/exercise/new-user", `{"username":"alice"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Username already taken", rec.Body.String())

	rec = addExercise(t, router, url.Values{"userId": {"nope"}, "duration": {"5"}})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Unknown userId", rec.Body.String())

	rec = postJSON(t, router, "/api/exercise/new-user", `{}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, domain.MsgUsernameRequired, rec.Body.String())
}

type constraintRepository struct {
	*memory.Repository
}

func (r constraintRepository) InsertExercise(ctx context.Context, exercise domain.Exercise) (*domain.Exercise, error) {
	return nil, domain.StoreRejected("duration", domain.MsgInvalidDuration)
}

func TestStoreValidationIsBadRequestInLegacyMode(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	service := domain.NewService(constraintRepository{Repository: memory.NewRepository()})
	router := mux.NewRouter()
	api.NewHandler(service, logger, api.Options{LegacyStatusCodes: true}).RegisterRoutes(router)

	alice := createUser(t, router, "alice")
	rec := addExercise(t, router, url.Values{"userId": {alice.ID}, "duration": {"10"}})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, domain.MsgInvalidDuration, rec.Body.String())

	rec = addExercise(t, router, url.Values{"userId": {alice.ID}, "duration": {"-1"}})
	require.Equal(t, http.StatusOK, rec.Code, "service-level validation keeps the legacy status")
	require.Equal(t, domain.MsgInvalidDuration, rec.Body.String())
}

func TestFallbacks(t *testing.T) {
	router := newTestRouter(t, api.Options{LegacyStatusCodes: true})

	rec := get(t, router, "/api/unknown")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "not found", rec.Body.String())

	rec = get(t, router, "/api/exercise/new-user")
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = get(t, router, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = get(t, router, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "/api/exercise/new-user")
}

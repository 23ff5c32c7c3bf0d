package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/go-chi/chi"
	"github.com/go-resty/resty/v2"
	"github.com/golang/mock/gomock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/danilovkiri/dk_go_post_board/internal/api/rest/middleware"
	"github.com/danilovkiri/dk_go_post_board/internal/api/rest/modeldto"
	"github.com/danilovkiri/dk_go_post_board/internal/config"
	"github.com/danilovkiri/dk_go_post_board/internal/mocks"
	"github.com/danilovkiri/dk_go_post_board/internal/service/board/v1"
	"github.com/danilovkiri/dk_go_post_board/internal/service/fetcher/v1"
	"github.com/danilovkiri/dk_go_post_board/internal/service/modelpage"
	"github.com/danilovkiri/dk_go_post_board/internal/service/secretary/v1"
	"github.com/danilovkiri/dk_go_post_board/internal/storage"
	"github.com/danilovkiri/dk_go_post_board/internal/storage/inmemory"
)

type HandlersTestSuite struct {
	suite.Suite
	storage     *inmemory.Storage
	pageHandler *PageHandler
	api         *httptest.Server
	apiCalls    int32
	router      *chi.Mux
	ts          *httptest.Server
	client      *resty.Client
}

func (suite *HandlersTestSuite) SetupTest() {
	atomic.StoreInt32(&suite.apiCalls, 0)
	apiRouter := chi.NewRouter()
	apiRouter.Get("/posts", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&suite.apiCalls, 1)
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("userId") {
		case "3":
			_, _ = w.Write([]byte(`[{"id":1,"userId":3,"title":"T","body":"B"}]`))
		case "4":
			_, _ = w.Write([]byte(`[{"id":31,"userId":4,"title":"<i>first</i>","body":"one"},{"id":32,"userId":4,"title":"second","body":"two"}]`))
		case "8":
			_, _ = w.Write([]byte(`{"id":1}`))
		case "9":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			_, _ = w.Write([]byte(`[]`))
		}
	})
	suite.api = httptest.NewServer(apiRouter)

	suite.storage = inmemory.InitStorage()
	postFetcher := fetcher.InitFetcher(&config.FetchConfig{BaseURL: suite.api.URL})
	boardService, err := board.InitBoard(suite.storage, postFetcher, zerolog.Nop())
	suite.Require().NoError(err)
	suite.pageHandler, err = InitPageHandler(boardService, suite.storage)
	suite.Require().NoError(err)
	secretCfg := &config.SecretConfig{UserKey: "jds__63h3_7ds", AuthKey: "user"}
	secretaryService, err := secretary.NewSecretaryService(secretCfg)
	suite.Require().NoError(err)
	cookieHandler := middleware.NewCookieHandler(secretaryService, secretCfg)

	suite.router = chi.NewRouter()
	suite.router.Use(cookieHandler.CookieHandle)
	suite.router.Get("/", suite.pageHandler.HandleGetPage())
	suite.router.Post("/", suite.pageHandler.HandlePostPage())
	suite.router.Post("/clear", suite.pageHandler.HandleClear())
	suite.router.Get("/api/state", suite.pageHandler.JSONHandleGetState())
	suite.router.Post("/api/posts", suite.pageHandler.JSONHandlePostPosts())
	suite.router.Delete("/api/posts", suite.pageHandler.JSONHandleDeletePosts())
	suite.ts = httptest.NewServer(suite.router)
	suite.client = resty.New()
}

func (suite *HandlersTestSuite) TearDownTest() {
	suite.ts.Close()
	suite.api.Close()
}

// TestHandlersTestSuite initializes test suite for being accessible
func TestHandlersTestSuite(t *testing.T) {
	suite.Run(t, new(HandlersTestSuite))
}

// slot returns a slot value of the only client seen by the storage.
func (suite *HandlersTestSuite) slot(key string) (string, bool) {
	suite.Require().Len(suite.storage.DB, 1)
	for _, slots := range suite.storage.DB {
		value, ok := slots[key]
		return value, ok
	}
	return "", false
}

func (suite *HandlersTestSuite) submitForm(userID string, remember bool) *resty.Response {
	form := map[string]string{"userId": userID}
	if remember {
		form["rememberUser"] = "on"
	}
	res, err := suite.client.R().SetFormData(form).Post(suite.ts.URL + "/")
	suite.Require().NoError(err)
	return res
}

func (suite *HandlersTestSuite) TestHandleGetPage_Fresh() {
	res, err := suite.client.R().Get(suite.ts.URL + "/")
	suite.Require().NoError(err)
	suite.Equal(http.StatusOK, res.StatusCode())
	suite.Contains(res.Header().Get("Content-Type"), "text/html")
	suite.Contains(string(res.Body()), modelpage.MessageIdle)
	suite.NotContains(string(res.Body()), "post-item")
	suite.Require().Len(res.Cookies(), 1)
	suite.Equal("user", res.Cookies()[0].Name)
}

func (suite *HandlersTestSuite) TestHandlePostPage_Example() {
	res := suite.submitForm("3", true)
	body := string(res.Body())
	suite.Equal(http.StatusOK, res.StatusCode())
	suite.Equal(1, strings.Count(body, `<li class="post-item">`))
	suite.Contains(body, `<h3 class="post-title">T</h3>`)
	suite.Contains(body, `<p class="post-body">B</p>`)
	suite.Contains(body, modelpage.MessageSuccess)

	cached, ok := suite.slot(storage.PostsDataKey)
	suite.True(ok)
	suite.Equal(`[{"id":1,"userId":3,"title":"T","body":"B"}]`, cached)
	remembered, ok := suite.slot(storage.LastUserIDKey)
	suite.True(ok)
	suite.Equal("3", remembered)
}

func (suite *HandlersTestSuite) TestReloadWithoutNetwork() {
	submitted := suite.submitForm("4", true)
	suite.Equal(http.StatusOK, submitted.StatusCode())
	suite.Equal(int32(1), atomic.LoadInt32(&suite.apiCalls))
	suite.api.Close()

	res, err := suite.client.R().Get(suite.ts.URL + "/")
	suite.Require().NoError(err)
	body := string(res.Body())
	suite.Equal(http.StatusOK, res.StatusCode())
	suite.Equal(int32(1), atomic.LoadInt32(&suite.apiCalls))
	suite.Contains(body, modelpage.MessageRestored)
	suite.Contains(body, `value="4"`)
	suite.Contains(body, " checked")
	suite.Contains(body, "&lt;i&gt;first&lt;/i&gt;")
	suite.Less(strings.Index(body, "first"), strings.Index(body, "second"))
	suite.Equal(2, strings.Count(body, `<li class="post-item">`))
}

func (suite *HandlersTestSuite) TestHandlePostPage_Validation() {
	for _, input := range []string{"0", "11", "abc", "", "-2"} {
		suite.T().Run(input, func(t *testing.T) {
			res := suite.submitForm(input, true)
			assert.Equal(t, http.StatusBadRequest, res.StatusCode())
			assert.Contains(t, string(res.Body()), modelpage.MessageValidation)
		})
	}
	suite.Equal(int32(0), atomic.LoadInt32(&suite.apiCalls))
}

func (suite *HandlersTestSuite) TestHandlePostPage_UpstreamFailures() {
	tests := []struct {
		name    string
		userID  string
		message string
	}{
		{
			name:    "request failed",
			userID:  "9",
			message: "Connection error: request failed with status 500",
		},
		{
			name:    "not an array",
			userID:  "8",
			message: modelpage.MessageFormat,
		},
	}

	// perform each test
	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			res := suite.submitForm(tt.userID, false)
			assert.Equal(t, http.StatusBadGateway, res.StatusCode())
			assert.Contains(t, string(res.Body()), tt.message)
			assert.Contains(t, string(res.Body()), "status-message--error")
		})
	}
}

func (suite *HandlersTestSuite) TestHandleClear() {
	suite.submitForm("3", true)
	res, err := suite.client.R().Post(suite.ts.URL + "/clear")
	suite.Require().NoError(err)
	body := string(res.Body())
	suite.Equal(http.StatusOK, res.StatusCode())
	suite.NotContains(body, "post-item")
	suite.Contains(body, modelpage.MessageIdle)
	suite.Contains(body, `value="3"`)

	_, ok := suite.slot(storage.PostsDataKey)
	suite.False(ok)
	remembered, ok := suite.slot(storage.LastUserIDKey)
	suite.True(ok)
	suite.Equal("3", remembered)
}

func (suite *HandlersTestSuite) TestJSONFlow() {
	res, err := suite.client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(`{"userId":"3","remember":true}`).
		Post(suite.ts.URL + "/api/posts")
	suite.Require().NoError(err)
	suite.Equal(http.StatusOK, res.StatusCode())
	suite.JSONEq(`{
		"form":{"userId":"3","remember":true},
		"status":{"kind":"success","message":"Success!"},
		"posts":[{"id":1,"userId":3,"title":"T","body":"B"}]
	}`, string(res.Body()))

	res, err = suite.client.R().Get(suite.ts.URL + "/api/state")
	suite.Require().NoError(err)
	var state modeldto.ResponsePage
	suite.Require().NoError(json.Unmarshal(res.Body(), &state))
	suite.Equal(modelpage.Restored(), state.Status)
	suite.Require().Len(state.Posts, 1)
	suite.Equal("T", state.Posts[0].TitleText())

	res, err = suite.client.R().Delete(suite.ts.URL + "/api/posts")
	suite.Require().NoError(err)
	suite.Equal(http.StatusOK, res.StatusCode())
	suite.JSONEq(`{
		"form":{"userId":"3","remember":true},
		"status":{"kind":"idle","message":"No request has been made yet."},
		"posts":[]
	}`, string(res.Body()))
}

func (suite *HandlersTestSuite) TestJSONHandlePostPosts_Errors() {
	tests := []struct {
		name string
		body string
		code int
	}{
		{name: "broken json", body: `{"userId":`, code: http.StatusBadRequest},
		{name: "out of range", body: `{"userId":12}`, code: http.StatusBadRequest},
		{name: "upstream failure", body: `{"userId":9}`, code: http.StatusBadGateway},
	}

	// perform each test
	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			res, err := suite.client.R().
				SetHeader("Content-Type", "application/json").
				SetBody(tt.body).
				Post(suite.ts.URL + "/api/posts")
			require.NoError(t, err)
			assert.Equal(t, tt.code, res.StatusCode())
		})
	}
}

func (suite *HandlersTestSuite) TestClientsAreIsolated() {
	suite.submitForm("3", true)
	other := resty.New()
	res, err := other.R().Get(suite.ts.URL + "/")
	suite.Require().NoError(err)
	suite.Contains(string(res.Body()), modelpage.MessageIdle)
	suite.NotContains(string(res.Body()), "post-item")
	suite.Len(suite.storage.DB, 1)
}

func TestInitPageHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	st := mocks.NewMockSlotStorage(ctrl)
	_, err := InitPageHandler(nil, st)
	assert.Error(t, err)
	boardService, err := board.InitBoard(st, mocks.NewMockFetcher(ctrl), zerolog.Nop())
	require.NoError(t, err)
	_, err = InitPageHandler(boardService, nil)
	assert.Error(t, err)
}

func TestHandlePing(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	st := mocks.NewMockSlotStorage(ctrl)
	boardService, err := board.InitBoard(st, mocks.NewMockFetcher(ctrl), zerolog.Nop())
	require.NoError(t, err)
	pageHandler, err := InitPageHandler(boardService, st)
	require.NoError(t, err)
	router := chi.NewRouter()
	router.Get("/ping", pageHandler.HandlePing())
	ts := httptest.NewServer(router)
	defer ts.Close()

	st.EXPECT().PingDB().Return(nil)
	res, err := resty.New().R().Get(ts.URL + "/ping")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode())

	st.EXPECT().PingDB().Return(errors.New("some-generic-error"))
	res, err = resty.New().R().Get(ts.URL + "/ping")
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, res.StatusCode())
}

func TestMissingSession(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	st := mocks.NewMockSlotStorage(ctrl)
	boardService, err := board.InitBoard(st, mocks.NewMockFetcher(ctrl), zerolog.Nop())
	require.NoError(t, err)
	pageHandler, err := InitPageHandler(boardService, st)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	pageHandler.HandleGetPage().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: http.StatusOK},
		{name: "other", err: errors.New("generic error"), want: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusCode(tt.err))
		})
	}
}

package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kylewspence/FinSight/internal/config"
	"github.com/kylewspence/FinSight/internal/external/rentcast"
	"github.com/kylewspence/FinSight/internal/handler"
	"github.com/kylewspence/FinSight/internal/middleware"
	"github.com/kylewspence/FinSight/internal/repository"
	"github.com/kylewspence/FinSight/internal/service"
	"github.com/kylewspence/FinSight/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type cannedCompleter struct{ reply string }

func (c cannedCompleter) Complete(ctx context.Context, system string, prompts []string) (string, error) {
	return c.reply, nil
}

type testAPI struct {
	t       *testing.T
	handler http.Handler
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	db := testutil.NewTestDB(t)

	rentcastSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/properties":
			_, _ = w.Write([]byte(`[{"formattedAddress":"1 Main St, Austin, TX","propertyType":"Condo","bedrooms":2,"bathrooms":2,"squareFootage":1100,"yearBuilt":2010}]`))
		case "/avm/value":
			_, _ = w.Write([]byte(`{"price":400000,"priceRangeLow":380000,"priceRangeHigh":420000}`))
		}
	}))
	t.Cleanup(rentcastSrv.Close)

	userRepo := repository.NewUserRepository(db)
	propertyRepo := repository.NewPropertyRepository(db)

	authService := service.NewAuthService(userRepo, config.JWTConfig{Secret: "handler-test", ExpireHours: 24})
	valuationService := service.NewValuationService(rentcast.NewClient("key", rentcastSrv.URL, 5*time.Second), nil, 0)
	propertyService := service.NewPropertyService(propertyRepo, valuationService, "maps-key")
	transactionService := service.NewTransactionService(repository.NewTransactionRepository(db))
	insightService := service.NewInsightService(repository.NewInsightRepository(db), propertyRepo,
		cannedCompleter{reply: `{"overview":"o","timelineToPurchase":"t","marketTrends":"m","peerStrategies":"p"}`})
	uploadService := service.NewUploadService(repository.NewHoldingRepository(db), "")

	h := handler.NewRouter(handler.Handlers{
		Auth:        handler.NewAuthHandler(authService),
		Property:    handler.NewPropertyHandler(propertyService),
		Transaction: handler.NewTransactionHandler(transactionService),
		Insight:     handler.NewInsightHandler(insightService),
		Upload:      handler.NewUploadHandler(uploadService, 1<<20),
		RentCast:    handler.NewRentCastHandler(valuationService),
	}, middleware.AuthMiddleware(authService), handler.RouterConfig{
		Version:       "test",
		GenerateLimit: middleware.NewUserRateLimiter(60, 2).Middleware(),
	})

	return &testAPI{t: t, handler: h}
}

func (a *testAPI) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.handler.ServeHTTP(w, req)
	return w
}

func (a *testAPI) register(userName string) string {
	a.t.Helper()
	w := a.do(http.MethodPost, "/api/auth/register", "", map[string]string{"userName": userName, "password": "pw-" + userName})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())

	var out struct {
		User struct {
			UserID   uint   `json:"userId"`
			UserName string `json:"userName"`
		} `json:"user"`
		Token string `json:"token"`
	}
	require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &out))
	require.Equal(a.t, userName, out.User.UserName)
	require.NotContains(a.t, w.Body.String(), "hashedPassword")
	return out.Token
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestAuthEndpoints(t *testing.T) {
	api := newTestAPI(t)
	token := api.register("alice")

	w := api.do(http.MethodPost, "/api/auth/register", "", map[string]string{"userName": "alice", "password": "x"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = api.do(http.MethodPost, "/api/auth/login", "", map[string]string{"userName": "alice", "password": "pw-alice"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = api.do(http.MethodPost, "/api/auth/login", "", map[string]string{"userName": "alice", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	body := decode[map[string]interface{}](t, w)
	assert.Equal(t, "Invalid user name or password", body["message"])

	w = api.do(http.MethodPost, "/api/auth/login", "", map[string]string{"userName": "", "password": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alice", decode[map[string]interface{}](t, w)["userName"])

	w = api.do(http.MethodGet, "/api/properties", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPropertyEndpoints(t *testing.T) {
	api := newTestAPI(t)
	alice := api.register("alice")
	bob := api.register("bob")

	w := api.do(http.MethodGet, "/api/properties", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = api.do(http.MethodPost, "/api/properties", alice, map[string]interface{}{"propertyType": "Condo"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodPost, "/api/properties", alice, map[string]interface{}{
		"formattedAddress": "1 Main St, Austin, TX",
		"monthlyRent":      1800,
		"lookup":           true,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[map[string]interface{}](t, w)
	assert.Equal(t, "Condo", created["propertyType"])
	assert.Equal(t, 400000.0, created["price"])
	assert.Contains(t, created["image"], "streetview")
	path := fmt.Sprintf("/api/properties/%v", created["id"])

	w = api.do(http.MethodGet, path, bob, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.do(http.MethodPut, path, bob, map[string]interface{}{"notes": "mine now"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(http.MethodPut, path, alice, map[string]interface{}{"notes": "tenant renewing", "price": 1})
	require.Equal(t, http.StatusOK, w.Code)
	updated := decode[map[string]interface{}](t, w)
	assert.Equal(t, "tenant renewing", updated["notes"])
	assert.Equal(t, 1800.0, updated["monthlyRent"])
	assert.Equal(t, 400000.0, updated["price"], "price is not editable")

	w = api.do(http.MethodGet, "/api/properties/abc", alice, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodDelete, path, bob, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(http.MethodDelete, path, alice, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())

	w = api.do(http.MethodDelete, path, alice, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTransactionEndpoints(t *testing.T) {
	api := newTestAPI(t)
	alice := api.register("alice")

	w := api.do(http.MethodPost, "/api/transactions", alice, map[string]interface{}{
		"date": "2024-04-01", "amount": -55.2, "category": "Utilities", "description": "Electric",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	tx := decode[map[string]interface{}](t, w)

	w = api.do(http.MethodPost, "/api/transactions", alice, map[string]interface{}{"date": "2024-04-01"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodGet, "/api/transactions", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]interface{}](t, w), 1)

	path := fmt.Sprintf("/api/transactions/%v", tx["transactionId"])
	w = api.do(http.MethodPut, path, alice, map[string]interface{}{"amount": -60})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, -60.0, decode[map[string]interface{}](t, w)["amount"])

	w = api.do(http.MethodDelete, path, alice, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestInsightEndpoints(t *testing.T) {
	api := newTestAPI(t)
	alice := api.register("alice")

	w := api.do(http.MethodGet, "/api/ai/insights/latest", alice, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.do(http.MethodPost, "/api/ai/insights", alice, map[string]interface{}{"messages": []string{"be brief"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"insights":{"overview":"o","timelineToPurchase":"t","marketTrends":"m","peerStrategies":"p"}}`, w.Body.String())

	w = api.do(http.MethodPost, "/api/ai/insights", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = api.do(http.MethodPost, "/api/ai/insights", alice, nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	w = api.do(http.MethodPost, "/api/ai/insights/save", alice, map[string]string{"overview": "o"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodPost, "/api/ai/insights/save", alice, map[string]string{
		"overview": "o", "timelineToPurchase": "t", "marketTrends": "m", "peerStrategies": "p",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = api.do(http.MethodGet, "/api/ai/insights/latest", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "o", decode[map[string]interface{}](t, w)["overview"])
}

func multipartUpload(t *testing.T, fileName, contentType, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("accountName", "Roth IRA"))

	h := make(map[string][]string)
	h["Content-Disposition"] = []string{fmt.Sprintf(`form-data; name="csvFile"; filename="%s"`, fileName)}
	h["Content-Type"] = []string{contentType}
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestUploadEndpoints(t *testing.T) {
	api := newTestAPI(t)
	alice := api.register("alice")

	post := func(body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/uploads/csv", body)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Authorization", "Bearer "+alice)
		w := httptest.NewRecorder()
		api.handler.ServeHTTP(w, req)
		return w
	}

	body, ct := multipartUpload(t, "positions.csv", "text/csv", "Symbol,Shares\nVTI,10\nBND,\n")
	w := post(body, ct)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	summary := decode[map[string]interface{}](t, w)
	assert.Equal(t, 1.0, summary["holdingsCount"])
	assert.Equal(t, 1.0, summary["skippedCount"])
	assert.Equal(t, "positions.csv", summary["fileName"])

	body, ct = multipartUpload(t, "photo.png", "image/png", "not a csv")
	w = post(body, ct)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = post(bytes.NewBufferString(`{}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodGet, "/api/investments/holdings", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	holdings := decode[[]map[string]interface{}](t, w)
	require.Len(t, holdings, 1)
	assert.Equal(t, "Roth IRA", holdings[0]["accountName"])
}

func TestRentCastEndpoints(t *testing.T) {
	api := newTestAPI(t)
	alice := api.register("alice")

	w := api.do(http.MethodGet, "/api/rentcast/property", alice, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodGet, "/api/rentcast/details?address=1+Main+St", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	details := decode[map[string]interface{}](t, w)
	assert.Equal(t, 400000.0, details["estimatedValue"])
	assert.Equal(t, 1100.0, details["squareFootage"])

	w = api.do(http.MethodGet, "/api/rentcast/value?address=1+Main+St&bedrooms=abc", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 420000.0, decode[map[string]interface{}](t, w)["priceRangeHigh"])
}

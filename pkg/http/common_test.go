package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"liyu1981.xyz/energy-dashboard-service/pkg/auth"
	"liyu1981.xyz/energy-dashboard-service/pkg/common"
	"liyu1981.xyz/energy-dashboard-service/pkg/db"
	"liyu1981.xyz/energy-dashboard-service/pkg/energy"
	"liyu1981.xyz/energy-dashboard-service/pkg/ingest"
	"liyu1981.xyz/energy-dashboard-service/pkg/models"
)

const adminEmail = "admin@example.com"

type serverOpts struct {
	limiter   *RateLimiterStore
	configure func(rs *RestfulServer)
}

func setupTestServer(t *testing.T, opts ...serverOpts) *RestfulServer {
	t.Helper()
	common.SetTestLoggerNop()
	gin.SetMode(gin.TestMode)

	store, err := db.Open(db.UseMemorySqliteDialector())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	rs := &RestfulServer{
		Server:   gin.New(),
		Energy:   energy.New(store, 5*time.Second),
		Auth:     auth.New(store.Conn, time.Hour, adminEmail),
		Importer: ingest.New(store),
		// default we use no limiter
	}
	for _, o := range opts {
		rs.RateLimiterStore = o.limiter
		if o.configure != nil {
			o.configure(rs)
		}
	}

	rs.Setup()
	return rs
}

func testStore(rs *RestfulServer) *db.DB {
	return rs.Energy.Store.(*db.DB)
}

var base = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

func seedNILM(t *testing.T, rs *RestfulServer, b models.Building, l models.Location, aggregates ...float64) {
	t.Helper()
	records := make([]models.NILMRecord, 0, len(aggregates))
	for i, agg := range aggregates {
		records = append(records, models.NILMRecord{
			Timestamp: base.Add(time.Duration(i) * 10 * time.Minute),
			Aggregate: agg,
			Building:  b,
			Location:  l,
		})
	}
	require.NoError(t, testStore(rs).InsertNILMBatch(context.Background(), records))
}

func seedNILMCount(t *testing.T, rs *RestfulServer, b models.Building, l models.Location, n int) {
	t.Helper()
	aggregates := make([]float64, n)
	for i := range aggregates {
		aggregates[i] = float64(i)
	}
	seedNILM(t, rs, b, l, aggregates...)
}

func seedPV(t *testing.T, rs *RestfulServer, from, to int64) {
	t.Helper()
	records := make([]models.PVRecord, 0, to-from+1)
	for h := from; h <= to; h++ {
		records = append(records, models.PVRecord{
			Timestamp: base.Add(time.Duration(h) * time.Hour),
			Time:      h,
			P:         float64(h),
		})
	}
	require.NoError(t, testStore(rs).InsertPVBatch(context.Background(), records))
}

func doRequest(rs *RestfulServer, method, target string, body any, token string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	rs.Server.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

type listResponse[T any] struct {
	Success bool `json:"success"`
	Count   int  `json:"count"`
	Data    []T  `json:"data"`
}

type itemResponse[T any] struct {
	Success bool `json:"success"`
	Data    *T   `json:"data"`
}

type rangeResponse struct {
	Success bool              `json:"success"`
	Count   int64             `json:"count"`
	Range   *models.TimeRange `json:"range"`
}

type authResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
	User    struct {
		ID    string      `json:"id"`
		Name  string      `json:"name"`
		Email string      `json:"email"`
		Role  models.Role `json:"role"`
	} `json:"user"`
}

func signup(t *testing.T, rs *RestfulServer, name, email string) authResponse {
	t.Helper()
	w := doRequest(rs, http.MethodPost, "/api/auth/signup", SignupRequest{
		Name:     name,
		Email:    email,
		Password: "secret1",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[authResponse](t, w)
}

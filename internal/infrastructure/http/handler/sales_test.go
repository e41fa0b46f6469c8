package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/truestate/sales/internal/application/sales"
	"github.com/truestate/sales/internal/domain"
	"github.com/truestate/sales/internal/infrastructure/http/handler"
	"github.com/truestate/sales/internal/infrastructure/persistence/memory"
)

// stubQuerier records the params it was called with.
type stubQuerier struct {
	params sales.Params
	page   *domain.SalesPage
	err    error
}

func (s *stubQuerier) Query(_ context.Context, params sales.Params) (*domain.SalesPage, error) {
	s.params = params
	return s.page, s.err
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestListSales_PassesQueryParams(t *testing.T) {
	stub := &stubQuerier{page: &domain.SalesPage{Page: 1, PageSize: 10}}
	h := handler.NewRouter(stub)

	w := get(t, h, "/sales?search=ravi&regions=North&regions=South&ageMin=20&page=2")
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "ravi", stub.params[sales.ParamSearch])
	assert.Equal(t, "North,South", stub.params[sales.ParamRegions])
	assert.Equal(t, "20", stub.params[sales.ParamAgeMin])
	assert.Equal(t, "2", stub.params[sales.ParamPage])
}

func TestListSales_EnvelopeShape(t *testing.T) {
	age, qty := 31, 2
	amount := decimal.RequireFromString("2599.80")
	stub := &stubQuerier{page: &domain.SalesPage{
		Items: []domain.SaleRecord{{
			ID:              "0190f7e4-0000-7000-8000-000000000001",
			CustomerName:    "Ravi Kumar",
			PhoneNumber:     "+91 9876543210",
			Gender:          "Male",
			Age:             &age,
			CustomerRegion:  "North",
			ProductCategory: "Electronics",
			Quantity:        &qty,
			FinalAmount:     &amount,
			Date:            time.Date(2023, 3, 5, 0, 0, 0, 0, time.UTC),
			PaymentMethod:   "UPI",
		}},
		Page:        1,
		PageSize:    10,
		TotalItems:  12,
		TotalPages:  2,
		HasNextPage: true,
	}}

	w := get(t, handler.NewRouter(stub), "/sales")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	assert.EqualValues(t, 1, body["page"])
	assert.EqualValues(t, 10, body["pageSize"])
	assert.EqualValues(t, 12, body["totalItems"])
	assert.EqualValues(t, 2, body["totalPages"])
	assert.Equal(t, true, body["hasNextPage"])
	assert.Equal(t, false, body["hasPrevPage"])
	assert.NotContains(t, body, "invalidRange", "omitted when false")

	items := body["items"].([]any)
	require.Len(t, items, 1)
	item := items[0].(map[string]any)
	assert.Equal(t, "Ravi Kumar", item["customerName"])
	assert.Equal(t, "+91 9876543210", item["phoneNumber"])
	assert.EqualValues(t, 31, item["age"])
	assert.Equal(t, "2023-03-05T00:00:00Z", item["date"])
	assert.Equal(t, "2599.8", item["finalAmount"])
	assert.Equal(t, []any{}, item["tags"])
	assert.NotContains(t, item, "pricePerUnit")
}

func TestListSales_InvalidRangeIsReported(t *testing.T) {
	svc := sales.NewService(memory.NewStore(), sales.Config{})

	w := get(t, handler.NewRouter(svc), "/sales?ageMin=40&ageMax=20")
	require.Equal(t, http.StatusOK, w.Code)

	var body handler.SalesPageDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.InvalidRange)
	assert.NotNil(t, body.Items)
	assert.Empty(t, body.Items)
	assert.Equal(t, 1, body.Page)
	assert.JSONEq(t,
		`{"items":[],"page":1,"pageSize":10,"totalItems":0,"totalPages":0,"hasNextPage":false,"hasPrevPage":false,"invalidRange":true}`,
		w.Body.String())
}

func TestListSales_GarbageParamsStillSucceed(t *testing.T) {
	recs := make([]domain.SaleRecord, 15)
	for i := range recs {
		recs[i] = domain.SaleRecord{ID: fmt.Sprint(i), Date: time.Date(2023, 1, i+1, 0, 0, 0, 0, time.UTC)}
	}
	svc := sales.NewService(memory.NewStore(recs...), sales.Config{})

	w := get(t, handler.NewRouter(svc), "/sales?page=abc&pageSize=-3&ageMin=x&sortBy=price&dateFrom=yesterday")
	require.Equal(t, http.StatusOK, w.Code)

	var body handler.SalesPageDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Page)
	assert.Equal(t, 1, body.PageSize)
	assert.Equal(t, 15, body.TotalItems)
	assert.Equal(t, 15, body.TotalPages)
	require.Len(t, body.Items, 1)
	assert.Equal(t, "14", body.Items[0].ID, "unknown sortBy falls back to newest first")
}

func TestListSales_StoreFailureIs500WithoutDetails(t *testing.T) {
	stub := &stubQuerier{err: fmt.Errorf("failed to count sales: %w: %w",
		domain.ErrStoreUnavailable, errors.New("dial tcp 10.1.2.3:5432: i/o timeout"))}

	w := get(t, handler.NewRouter(stub), "/sales")
	require.Equal(t, http.StatusInternalServerError, w.Code)

	assert.Contains(t, w.Body.String(), `"code":"INTERNAL_ERROR"`)
	assert.NotContains(t, w.Body.String(), "10.1.2.3")
}

func TestMapSaleRecordToDTO_NormalizesDateToUTC(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	dto := handler.MapSaleRecordToDTO(domain.SaleRecord{Date: time.Date(2023, 3, 5, 5, 30, 0, 0, ist)})
	assert.Equal(t, time.Date(2023, 3, 5, 0, 0, 0, 0, time.UTC), dto.Date)
}

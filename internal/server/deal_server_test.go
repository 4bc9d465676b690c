package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"auto_crm/internal/domain"
	"auto_crm/internal/domain/entity"
	service "auto_crm/internal/domain/service/deal"
	"auto_crm/internal/domain/value"
	"auto_crm/pkg/errcodes"
)

type fakeDealService struct {
	deal *entity.Deal
	err  error
}

func (f *fakeDealService) CreateDeal(context.Context, service.CreateDealInput) (*entity.Deal, error) {
	return f.deal, f.err
}

func (f *fakeDealService) ChangeStatus(context.Context, value.DealID, entity.DealStatus, string) (*entity.Deal, error) {
	return f.deal, f.err
}

func (f *fakeDealService) SetCommissionRate(context.Context, value.DealID, float64) (*entity.Deal, error) {
	return f.deal, f.err
}

func (f *fakeDealService) GetDeal(context.Context, value.DealID) (*entity.Deal, error) {
	return f.deal, f.err
}

func (f *fakeDealService) ListDeals(context.Context, service.ListFilter) ([]entity.Deal, error) {
	if f.err != nil {
		return nil, f.err
	}

	return []entity.Deal{*f.deal}, nil
}

func (f *fakeDealService) StaleThreshold() time.Duration {
	return 30 * 24 * time.Hour
}

func newTestRouter(svc dealService) chi.Router {
	router := chi.NewRouter()
	NewServer(DealServer{dealService: svc, now: time.Now}).RegisterRoutes(router)

	return router
}

func testDeal(t *testing.T) *entity.Deal {
	t.Helper()

	price := 300000.0

	deal, err := entity.NewDeal(1, 2, 3, &price, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	return deal
}

func TestDealRoutes(t *testing.T) {
	dealID := value.NewDealID().String()

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		svc        *fakeDealService
		wantStatus int
	}{
		{
			name:       "create deal",
			method:     http.MethodPost,
			path:       "/v1/deals",
			body:       `{"leadId":1,"carId":2,"agentId":3,"vehiclePrice":300000}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "create deal rejects bad payload",
			method:     http.MethodPost,
			path:       "/v1/deals",
			body:       `{"carId":2}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "get deal",
			method:     http.MethodGet,
			path:       "/v1/deals/" + dealID,
			wantStatus: http.StatusOK,
		},
		{
			name:       "get deal not found",
			method:     http.MethodGet,
			path:       "/v1/deals/" + dealID,
			svc:        &fakeDealService{err: domain.NewError(errcodes.DealNotFound, "deal not found")},
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "get deal bad id",
			method:     http.MethodGet,
			path:       "/v1/deals/not-an-xid",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "change status",
			method:     http.MethodPost,
			path:       "/v1/deals/" + dealID + "/status",
			body:       `{"status":"qualified","note":"called back"}`,
			wantStatus: http.StatusOK,
		},
		{
			name:   "change status invalid transition",
			method: http.MethodPost,
			path:   "/v1/deals/" + dealID + "/status",
			body:   `{"status":"documentation"}`,
			svc: &fakeDealService{err: domain.NewError(
				errcodes.InvalidStatusTransition, "transition inquiry -> documentation is not allowed")},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:   "change status conflict",
			method: http.MethodPost,
			path:   "/v1/deals/" + dealID + "/status",
			body:   `{"status":"qualified"}`,
			svc: &fakeDealService{err: domain.NewError(
				errcodes.StorageConflict, "deal was modified concurrently")},
			wantStatus: http.StatusConflict,
		},
		{
			name:       "change status unknown stage",
			method:     http.MethodPost,
			path:       "/v1/deals/" + dealID + "/status",
			body:       `{"status":"haggling"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "set commission rate",
			method:     http.MethodPut,
			path:       "/v1/deals/" + dealID + "/commission-rate",
			body:       `{"rate":0.05}`,
			wantStatus: http.StatusOK,
		},
		{
			name:       "set commission rate requires rate",
			method:     http.MethodPut,
			path:       "/v1/deals/" + dealID + "/commission-rate",
			body:       `{}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "list deals",
			method:     http.MethodGet,
			path:       "/v1/deals?state=open&agentId=3",
			wantStatus: http.StatusOK,
		},
		{
			name:       "list deals bad filter",
			method:     http.MethodGet,
			path:       "/v1/deals?state=paused",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "available transitions",
			method:     http.MethodGet,
			path:       "/v1/statuses/inquiry/transitions",
			wantStatus: http.StatusOK,
		},
		{
			name:       "available transitions unknown stage",
			method:     http.MethodGet,
			path:       "/v1/statuses/haggling/transitions",
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rq := require.New(t)

			svc := tt.svc
			if svc == nil {
				svc = &fakeDealService{deal: testDeal(t)}
			}
			if svc.deal == nil {
				svc.deal = testDeal(t)
			}

			var body *strings.Reader
			if tt.body != "" {
				body = strings.NewReader(tt.body)
			} else {
				body = strings.NewReader("")
			}

			req := httptest.NewRequest(tt.method, tt.path, body)
			rec := httptest.NewRecorder()

			newTestRouter(svc).ServeHTTP(rec, req)

			rq.Equal(tt.wantStatus, rec.Code, rec.Body.String())
		})
	}
}

func TestParseListFilter(t *testing.T) {
	newRequest := func(query string) *http.Request {
		return &http.Request{URL: &url.URL{RawQuery: query}}
	}

	t.Run("full set", func(t *testing.T) {
		rq := require.New(t)

		filter, err := parseListFilter(newRequest(
			"agentId=7&status=qualified&state=open&minProbability=20" +
				"&overdue=true&stale=true" +
				"&expectedCloseFrom=2025-06-01T00:00:00Z&expectedCloseTo=2025-07-01T00:00:00Z" +
				"&limit=10&offset=20"))
		rq.NoError(err)

		rq.Equal(int64(7), *filter.AgentID)
		rq.Equal(entity.StatusQualified, *filter.Status)
		rq.True(filter.Open)
		rq.Equal(20, *filter.MinProbability)
		rq.True(filter.Overdue)
		rq.True(filter.Stale)
		rq.NotNil(filter.ExpectedCloseFrom)
		rq.NotNil(filter.ExpectedCloseTo)
		rq.Equal(10, filter.Limit)
		rq.Equal(20, filter.Offset)
	})

	t.Run("empty is fine", func(t *testing.T) {
		rq := require.New(t)

		filter, err := parseListFilter(newRequest(""))
		rq.NoError(err)
		rq.Nil(filter.AgentID)
		rq.False(filter.Open)
	})

	invalid := []struct {
		name  string
		query string
	}{
		{"bad agent id", "agentId=abc"},
		{"bad status", "status=haggling"},
		{"bad state", "state=paused"},
		{"bad probability", "minProbability=high"},
		{"bad date", "expectedCloseFrom=yesterday"},
		{"negative limit", "limit=-5"},
		{"negative offset", "offset=-1"},
	}

	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseListFilter(newRequest(tt.query))
			require.Error(t, err)
		})
	}
}

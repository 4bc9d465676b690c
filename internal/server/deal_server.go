package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"git.appkode.ru/pub/go/failure"

	"auto_crm/internal/domain/entity"
	service "auto_crm/internal/domain/service/deal"
	"auto_crm/internal/domain/value"
	"auto_crm/pkg/errcodes"
	"auto_crm/pkg/httpx/reply"
	"auto_crm/pkg/httpx/req"
	"auto_crm/pkg/rest"
)

type dealService interface {
	CreateDeal(ctx context.Context, input service.CreateDealInput) (*entity.Deal, error)
	ChangeStatus(ctx context.Context, id value.DealID, target entity.DealStatus, note string) (*entity.Deal, error)
	SetCommissionRate(ctx context.Context, id value.DealID, rate float64) (*entity.Deal, error)
	GetDeal(ctx context.Context, id value.DealID) (*entity.Deal, error)
	ListDeals(ctx context.Context, filter service.ListFilter) ([]entity.Deal, error)
	StaleThreshold() time.Duration
}

type DealServer struct {
	dealService dealService
	now         func() time.Time
}

func NewDealServer(dealService dealService) DealServer {
	return DealServer{
		dealService: dealService,
		now:         time.Now,
	}
}

func (s DealServer) postV1Deal(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	var request rest.CreateDealRequest

	if err := req.Read(r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	deal, err := s.dealService.CreateDeal(ctx, service.CreateDealInput{
		LeadID:            request.LeadID,
		CarID:             request.CarID,
		AgentID:           request.AgentID,
		VehiclePrice:      request.VehiclePrice,
		ExpectedCloseDate: request.ExpectedCloseDate,
	})
	if err != nil {
		return mapDomainError(fmt.Errorf("dealService.CreateDeal: %w", err))
	}

	reply.JSON(ctx, w, http.StatusCreated, s.newRESTDeal(*deal))

	return nil
}

func (s DealServer) getV1Deal(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	id, err := value.ParseDealID(r.PathValue("id"))
	if err != nil {
		return mapDomainError(fmt.Errorf("value.ParseDealID: %w", err))
	}

	deal, err := s.dealService.GetDeal(ctx, id)
	if err != nil {
		return mapDomainError(fmt.Errorf("dealService.GetDeal: %w", err))
	}

	reply.JSON(ctx, w, http.StatusOK, s.newRESTDeal(*deal))

	return nil
}

func (s DealServer) postV1DealStatus(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	id, err := value.ParseDealID(r.PathValue("id"))
	if err != nil {
		return mapDomainError(fmt.Errorf("value.ParseDealID: %w", err))
	}

	var request rest.ChangeStatusRequest

	if err := req.Read(r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	target, err := entity.ParseDealStatus(request.Status)
	if err != nil {
		return mapDomainError(fmt.Errorf("entity.ParseDealStatus: %w", err))
	}

	deal, err := s.dealService.ChangeStatus(ctx, id, target, request.Note)
	if err != nil {
		return mapDomainError(fmt.Errorf("dealService.ChangeStatus: %w", err))
	}

	reply.JSON(ctx, w, http.StatusOK, s.newRESTDeal(*deal))

	return nil
}

func (s DealServer) putV1DealCommissionRate(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	id, err := value.ParseDealID(r.PathValue("id"))
	if err != nil {
		return mapDomainError(fmt.Errorf("value.ParseDealID: %w", err))
	}

	var request rest.SetCommissionRateRequest

	if err := req.Read(r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	deal, err := s.dealService.SetCommissionRate(ctx, id, *request.Rate)
	if err != nil {
		return mapDomainError(fmt.Errorf("dealService.SetCommissionRate: %w", err))
	}

	reply.JSON(ctx, w, http.StatusOK, s.newRESTDeal(*deal))

	return nil
}

func (s DealServer) getV1Deals(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	filter, err := parseListFilter(r)
	if err != nil {
		return fmt.Errorf("parseListFilter: %w", err)
	}

	deals, err := s.dealService.ListDeals(ctx, filter)
	if err != nil {
		return mapDomainError(fmt.Errorf("dealService.ListDeals: %w", err))
	}

	reply.JSON(ctx, w, http.StatusOK, s.newRESTDealList(deals))

	return nil
}

func (s DealServer) getV1StatusTransitions(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	status, err := entity.ParseDealStatus(r.PathValue("status"))
	if err != nil {
		return mapDomainError(fmt.Errorf("entity.ParseDealStatus: %w", err))
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTTransitions(status))

	return nil
}

//nolint:funlen,cyclop
func parseListFilter(r *http.Request) (service.ListFilter, error) {
	var filter service.ListFilter

	query := r.URL.Query()

	invalid := func(name string, err error) (service.ListFilter, error) {
		return service.ListFilter{}, failure.NewInvalidArgumentError(
			fmt.Errorf("query param %q: %w", name, err).Error(),
			failure.WithCode(errcodes.InvalidListFilter),
			failure.WithDescription("Invalid filter parameter: "+name),
		)
	}

	if raw := query.Get("agentId"); raw != "" {
		agentID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return invalid("agentId", err)
		}
		filter.AgentID = &agentID
	}

	if raw := query.Get("status"); raw != "" {
		status, err := entity.ParseDealStatus(raw)
		if err != nil {
			return invalid("status", err)
		}
		filter.Status = &status
	}

	switch query.Get("state") {
	case "":
	case "open":
		filter.Open = true
	case "closed":
		filter.Closed = true
	case "won":
		filter.Won = true
	case "lost":
		filter.Lost = true
	default:
		return invalid("state", fmt.Errorf("unknown state %q", query.Get("state")))
	}

	if raw := query.Get("minProbability"); raw != "" {
		minProbability, err := strconv.Atoi(raw)
		if err != nil {
			return invalid("minProbability", err)
		}
		filter.MinProbability = &minProbability
	}

	filter.Overdue = query.Get("overdue") == "true"
	filter.Stale = query.Get("stale") == "true"

	if raw := query.Get("expectedCloseFrom"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return invalid("expectedCloseFrom", err)
		}
		filter.ExpectedCloseFrom = &from
	}

	if raw := query.Get("expectedCloseTo"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return invalid("expectedCloseTo", err)
		}
		filter.ExpectedCloseTo = &to
	}

	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return invalid("limit", fmt.Errorf("must be a non-negative integer"))
		}
		filter.Limit = limit
	}

	if raw := query.Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return invalid("offset", fmt.Errorf("must be a non-negative integer"))
		}
		filter.Offset = offset
	}

	return filter, nil
}

package citizen

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/tauhid97k/voters-info-api/internal/apierror"
	"github.com/tauhid97k/voters-info-api/internal/telemetry/metrics"
	"github.com/tauhid97k/voters-info-api/internal/telemetry/tracing"
	"github.com/tauhid97k/voters-info-api/internal/validation"
	"github.com/tauhid97k/voters-info-api/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=citizen_test

const (
	defaultSeedCount = 100
	maxSeedCount     = 1000
)

type citizenRepo interface {
	Search(ctx context.Context, params ListParams) (*Page, error)
	Get(ctx context.Context, id int64) (*Citizen, error)
	UpdateStatus(ctx context.Context, id int64, status Status) error
	VillageRefs(ctx context.Context) ([]VillageRef, error)
	InsertMany(ctx context.Context, citizens []Citizen) (int64, error)
}

type ListMeta struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

type ListResponse struct {
	Data  []Citizen `json:"data"`
	Stats Stats     `json:"stats"`
	Meta  ListMeta  `json:"meta"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=RED YELLOW GREEN WHITE" feedback:"required=Status is required;oneof=Status must be one of RED YELLOW GREEN WHITE"`
}

type Handler struct {
	repo      citizenRepo
	generator *Generator
	validator *validation.Validator
	responder *apierror.Responder
	metrics   *metrics.Manager
}

func NewHandler(
	repo citizenRepo,
	generator *Generator,
	responder *apierror.Responder,
	metrics *metrics.Manager,
) *Handler {
	return &Handler{
		repo:      repo,
		generator: generator,
		validator: validation.New(),
		responder: responder,
		metrics:   metrics,
	}
}

// SetupRoutes registers the citizen routes; writes go through requireAdmin.
func (handler *Handler) SetupRoutes(r *mux.Router, requireAdmin mux.MiddlewareFunc) {
	r.HandleFunc("", handler.HandleList).Methods("GET").Name("users-list")
	r.HandleFunc("/", handler.HandleList).Methods("GET").Name("users-list-slash")
	r.Handle("", requireAdmin(http.HandlerFunc(handler.HandleSeed))).Methods("POST").Name("users-seed")
	r.Handle("/", requireAdmin(http.HandlerFunc(handler.HandleSeed))).Methods("POST").Name("users-seed-slash")
	r.HandleFunc("/{id}", handler.HandleGet).Methods("GET").Name("users-get")
	r.Handle("/{id}/status", requireAdmin(http.HandlerFunc(handler.HandleUpdateStatus))).Methods("PATCH").Name("users-update-status")
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.citizen.list")
	defer span.End()

	params, fieldErrors := ParseListParams(r.URL.Query())
	if len(fieldErrors) > 0 {
		handler.responder.Respond(w, r, apierror.Validation(fieldErrors...))
		return
	}

	page, err := handler.repo.Search(ctx, params)
	if err != nil {
		handler.responder.Respond(w, r, err)
		return
	}

	if len(page.Citizens) == 0 || page.Total == 0 {
		pkg.WriteMessage(w, http.StatusOK, "No data found")
		return
	}

	pkg.WriteJSON(w, http.StatusOK, ListResponse{
		Data:  page.Citizens,
		Stats: NewStats(page.Counts, page.Total),
		Meta: ListMeta{
			Page:  params.Page,
			Limit: params.Limit,
			Total: page.Total,
		},
	})
}

func parseID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.citizen.get")
	defer span.End()

	id, ok := parseID(r)
	if !ok {
		handler.responder.Respond(w, r, apierror.Operational(http.StatusBadRequest, "User id is invalid"))
		return
	}

	c, err := handler.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrCitizenNotFound) {
			handler.responder.Respond(w, r, apierror.NotFound("No user found"))
			return
		}
		handler.responder.Respond(w, r, err)
		return
	}

	pkg.WriteJSON(w, http.StatusOK, c)
}

func (handler *Handler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.citizen.update-status")
	defer span.End()

	var req UpdateStatusRequest
	if fieldErrors := handler.validator.DecodeJSON(r.Body, &req); fieldErrors != nil {
		handler.responder.Respond(w, r, apierror.Validation(fieldErrors...))
		return
	}

	id, ok := parseID(r)
	if !ok {
		handler.responder.Respond(w, r, apierror.Operational(http.StatusBadRequest, "User id is required"))
		return
	}

	if err := handler.repo.UpdateStatus(ctx, id, Status(req.Status)); err != nil {
		if errors.Is(err, ErrCitizenNotFound) {
			handler.responder.Respond(w, r, apierror.NotFound("No user found"))
			return
		}
		handler.responder.Respond(w, r, err)
		return
	}

	log.Debugf("citizen %d status set to %s", id, req.Status)
	pkg.WriteMessage(w, http.StatusOK, "Status updated")
}

func (handler *Handler) HandleSeed(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.citizen.seed")
	defer span.End()

	count, ok := pkg.ParsePositiveInt(r.URL.Query().Get("count"), defaultSeedCount)
	if !ok || count > maxSeedCount {
		handler.responder.Respond(w, r, apierror.Validation(validation.NewFieldError(
			"count", "range", "Count must be between 1 and "+strconv.Itoa(maxSeedCount),
		)))
		return
	}

	villages, err := handler.repo.VillageRefs(ctx)
	if err != nil {
		handler.responder.Respond(w, r, err)
		return
	}

	citizens, err := handler.generator.Generate(count, villages)
	if err != nil {
		if errors.Is(err, ErrNoVillages) {
			handler.responder.Respond(w, r, apierror.Operational(http.StatusConflict, "Villages must be created before users"))
			return
		}
		handler.responder.Respond(w, r, err)
		return
	}

	inserted, err := handler.repo.InsertMany(ctx, citizens)
	if err != nil {
		handler.responder.Respond(w, r, err)
		return
	}

	handler.metrics.CounterCitizensSeeded.Add(float64(inserted))
	log.Infof("seeded %d citizens", inserted)
	pkg.WriteMessage(w, http.StatusCreated, "Users created successfully")
}

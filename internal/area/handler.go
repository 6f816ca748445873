package area

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/tauhid97k/voters-info-api/internal/apierror"
	"github.com/tauhid97k/voters-info-api/internal/cache"
	"github.com/tauhid97k/voters-info-api/internal/telemetry/tracing"
	"github.com/tauhid97k/voters-info-api/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=area_test

const areasCacheTTL = time.Hour

type areaRepo interface {
	Upozillas(ctx context.Context) ([]Upozilla, error)
	UnionsWithVillages(ctx context.Context, upozillaID int) ([]Union, error)
	SeedUnions(ctx context.Context, data SeedData) (int64, error)
	SeedVillages(ctx context.Context, data SeedData) (int64, error)
}

type Handler struct {
	repo      areaRepo
	cache     cache.Cache
	seed      SeedData
	responder *apierror.Responder
}

func NewHandler(
	repo areaRepo,
	cache cache.Cache,
	seed SeedData,
	responder *apierror.Responder,
) *Handler {
	return &Handler{
		repo:      repo,
		cache:     cache,
		seed:      seed,
		responder: responder,
	}
}

// SetupRoutes registers the area routes; seeding goes through requireAdmin.
func (handler *Handler) SetupRoutes(r *mux.Router, requireAdmin mux.MiddlewareFunc) {
	r.HandleFunc("", handler.HandleList).Methods("GET").Name("areas-list")
	r.HandleFunc("/", handler.HandleList).Methods("GET").Name("areas-list-slash")
	r.HandleFunc("/upozillas", handler.HandleUpozillas).Methods("GET").Name("areas-upozillas")
	r.Handle("/unions", requireAdmin(http.HandlerFunc(handler.HandleSeedUnions))).Methods("POST").Name("areas-seed-unions")
	r.Handle("/villages", requireAdmin(http.HandlerFunc(handler.HandleSeedVillages))).Methods("POST").Name("areas-seed-villages")
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.area.list")
	defer span.End()

	idParam := r.URL.Query().Get("id")
	if idParam == "" {
		handler.responder.Respond(w, r, apierror.Operational(http.StatusBadRequest, "Upozilla id is required"))
		return
	}
	upozillaID, ok := pkg.ParsePositiveInt(idParam, 0)
	if !ok {
		handler.responder.Respond(w, r, apierror.Operational(http.StatusBadRequest, "Upozilla id is invalid"))
		return
	}

	cacheKey := fmt.Sprintf("unions::%d", upozillaID)
	var unions []Union
	if handler.cache.Get(cacheKey, &unions) {
		log.Tracef("unions of upozilla %d found in cache", upozillaID)
		pkg.WriteJSON(w, http.StatusOK, unions)
		return
	}

	unions, err := handler.repo.UnionsWithVillages(ctx, upozillaID)
	if err != nil {
		handler.responder.Respond(w, r, err)
		return
	}

	handler.cache.Set(cacheKey, unions, areasCacheTTL)
	pkg.WriteJSON(w, http.StatusOK, unions)
}

func (handler *Handler) HandleUpozillas(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.area.upozillas")
	defer span.End()

	upozillas, err := handler.repo.Upozillas(ctx)
	if err != nil {
		handler.responder.Respond(w, r, err)
		return
	}
	pkg.WriteJSON(w, http.StatusOK, upozillas)
}

func (handler *Handler) HandleSeedUnions(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.area.seed.unions")
	defer span.End()

	created, err := handler.repo.SeedUnions(ctx, handler.seed)
	if err != nil {
		handler.responder.Respond(w, r, err)
		return
	}

	handler.cache.Clear()
	log.Infof("seeded %d new unions", created)
	pkg.WriteMessage(w, http.StatusCreated, "Unions are created successfully")
}

func (handler *Handler) HandleSeedVillages(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.area.seed.villages")
	defer span.End()

	created, err := handler.repo.SeedVillages(ctx, handler.seed)
	if err != nil {
		if errors.Is(err, ErrUnionsNotSeeded) {
			handler.responder.Respond(w, r, apierror.Operational(http.StatusConflict, "Unions must be created before villages"))
			return
		}
		handler.responder.Respond(w, r, err)
		return
	}

	handler.cache.Clear()
	log.Infof("seeded %d new villages", created)
	pkg.WriteMessage(w, http.StatusCreated, "Villages are created successfully")
}

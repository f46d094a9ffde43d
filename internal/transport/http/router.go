package http

import (
	"context"
	"errors"
	"strconv"
	"time"

	fiber "github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	swagger "github.com/gofiber/swagger"

	"challenge_server/internal/domain"
	"challenge_server/internal/usecase"
)

type DashboardService interface {
	Load(ctx context.Context, documentID string) (domain.ChallengeDashboard, error)
	Cached(ctx context.Context, documentID string) (domain.ChallengeDashboard, error)
	Recent(ctx context.Context, limit int) ([]domain.ChallengeDashboard, error)
}

type ChallengeService interface {
	Chain(ctx context.Context, documentID string) ([]domain.Challenge, error)
}

type RewardService interface {
	List(ctx context.Context) ([]domain.Reward, error)
	Get(ctx context.Context, documentID string) (domain.Reward, error)
	Create(ctx context.Context, input domain.RewardInput) (domain.Reward, error)
	Update(ctx context.Context, documentID string, input domain.RewardInput) (domain.Reward, error)
	Delete(ctx context.Context, documentID string) error
}

type CatalogService interface {
	ListProducts(ctx context.Context, page, perPage int) (domain.ProductPage, error)
	ListVariations(ctx context.Context, productID int64) ([]domain.ProductVariation, error)
}

type PreferencesService interface {
	Load(ctx context.Context, userID string) (domain.UserPreferences, error)
	Save(ctx context.Context, userID string, patch domain.PreferencesPatch) (domain.UserPreferences, error)
}

// Services groups the handlers' dependencies. Nil services answer 503.
type Services struct {
	Dashboard   DashboardService
	Challenges  ChallengeService
	Rewards     RewardService
	Catalog     CatalogService
	Preferences PreferencesService
}

type Router struct {
	app      *fiber.App
	services Services
}

func New(services Services) *Router {
	app := fiber.New()

	r := &Router{
		app:      app,
		services: services,
	}

	api := app.Group("/api")
	v1 := api.Group("/v1")

	v1.Get("/dashboards", r.listDashboards)
	v1.Get("/challenges/:id/dashboard", r.getDashboard)
	v1.Get("/challenges/:id/chain", r.getChain)

	v1.Post("/stages/resolve", r.resolveStage)
	v1.Post("/metrics/normalize", r.normalizeMetrics)
	v1.Post("/series/build", r.buildSeries)

	v1.Get("/rewards", r.listRewards)
	v1.Post("/rewards", r.createReward)
	v1.Get("/rewards/:id", r.getReward)
	v1.Put("/rewards/:id", r.updateReward)
	v1.Delete("/rewards/:id", r.deleteReward)

	v1.Get("/products", r.listProducts)
	v1.Get("/products/:id/variations", r.listVariations)

	v1.Get("/users/:user_id/preferences", r.getPreferences)
	v1.Patch("/users/:user_id/preferences", r.patchPreferences)

	app.Get("/swagger/*", swagger.HandlerDefault)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	return r
}

func (r *Router) App() *fiber.App {
	return r.app
}

// getDashboard godoc
// @Summary Compute the dashboard of a challenge
// @Tags challenges
// @Produce json
// @Param id path string true "Challenge document id"
// @Param cached query bool false "Return the last persisted dashboard instead of recomputing"
// @Success 200 {object} domain.ChallengeDashboard
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /challenges/{id}/dashboard [get]
func (r *Router) getDashboard(c *fiber.Ctx) error {
	if r.services.Dashboard == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "dashboard service unavailable")
	}

	id := pathParam(c, "id")
	if id == "" {
		return fiber.NewError(fiber.StatusBadRequest, "challenge id required")
	}

	ctx, cancel := context.WithTimeout(userContext(c), 30*time.Second)
	defer cancel()

	var (
		dashboard domain.ChallengeDashboard
		err       error
	)
	if c.QueryBool("cached") {
		dashboard, err = r.services.Dashboard.Cached(ctx, id)
	} else {
		dashboard, err = r.services.Dashboard.Load(ctx, id)
	}
	if err != nil {
		return toFiberError(err)
	}

	return c.JSON(dashboard)
}

// listDashboards godoc
// @Summary List the most recently computed dashboards
// @Tags challenges
// @Produce json
// @Param limit query int false "Maximum number of dashboards (max 100)"
// @Success 200 {array} domain.ChallengeDashboard
// @Failure 500 {object} map[string]string
// @Router /dashboards [get]
func (r *Router) listDashboards(c *fiber.Ctx) error {
	if r.services.Dashboard == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "dashboard service unavailable")
	}

	ctx, cancel := context.WithTimeout(userContext(c), 5*time.Second)
	defer cancel()

	dashboards, err := r.services.Dashboard.Recent(ctx, c.QueryInt("limit", 20))
	if err != nil {
		return toFiberError(err)
	}
	if dashboards == nil {
		dashboards = []domain.ChallengeDashboard{}
	}
	return c.JSON(dashboards)
}

// getChain godoc
// @Summary List every phase of a challenge's program
// @Tags challenges
// @Produce json
// @Param id path string true "Challenge document id"
// @Success 200 {array} domain.Challenge
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /challenges/{id}/chain [get]
func (r *Router) getChain(c *fiber.Ctx) error {
	if r.services.Challenges == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "challenge service unavailable")
	}

	ctx, cancel := context.WithTimeout(userContext(c), 15*time.Second)
	defer cancel()

	chain, err := r.services.Challenges.Chain(ctx, pathParam(c, "id"))
	if err != nil {
		return toFiberError(err)
	}
	return c.JSON(chain)
}

type ResolveStageRequest struct {
	Phase  any   `json:"phase"`
	Stages []any `json:"stages"`
}

type ResolveStageResponse struct {
	Stage domain.Stage `json:"stage"`
	Error string       `json:"error,omitempty"`
}

// resolveStage godoc
// @Summary Resolve the stage governing a phase
// @Description An unparseable phase resolves to the default stage and reports the parse error.
// @Tags stages
// @Accept json
// @Produce json
// @Param payload body ResolveStageRequest true "Phase and candidate stages"
// @Success 200 {object} ResolveStageResponse
// @Failure 400 {object} map[string]string
// @Router /stages/resolve [post]
func (r *Router) resolveStage(c *fiber.Ctx) error {
	var payload ResolveStageRequest
	if err := c.BodyParser(&payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
	}

	stages := usecase.DecodeStages(payload.Stages)
	stage, err := usecase.ResolveStageFromRaw(payload.Phase, stages)

	resp := ResolveStageResponse{Stage: stage}
	if err != nil {
		resp.Error = err.Error()
	}
	return c.JSON(resp)
}

type NormalizeMetricsRequest struct {
	Metadata       domain.RawMetadata `json:"metadata" swaggertype:"object"`
	InitialBalance float64            `json:"initialBalance"`
}

type NormalizeMetricsResponse struct {
	Metrics domain.MetricsSnapshot `json:"metrics"`
	Stages  []domain.Stage         `json:"stages,omitempty"`
}

// normalizeMetrics godoc
// @Summary Decode challenge metadata into a metrics snapshot
// @Tags metrics
// @Accept json
// @Produce json
// @Param payload body NormalizeMetricsRequest true "Metadata as a JSON string or object"
// @Success 200 {object} NormalizeMetricsResponse
// @Failure 400 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /metrics/normalize [post]
func (r *Router) normalizeMetrics(c *fiber.Ctx) error {
	var payload NormalizeMetricsRequest
	if err := c.BodyParser(&payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
	}

	decoded, err := usecase.DecodeMetadata(payload.Metadata, usecase.NormalizeOptions{
		InitialBalance: payload.InitialBalance,
	})
	if err != nil {
		return toFiberError(err)
	}

	return c.JSON(NormalizeMetricsResponse{
		Metrics: decoded.Metrics,
		Stages:  decoded.Stages,
	})
}

type BuildSeriesRequest struct {
	Points         []map[string]any `json:"points"`
	MaxDrawdown    *float64         `json:"maxDrawdown"`
	ProfitTarget   *float64         `json:"profitTarget"`
	InitialBalance float64          `json:"initialBalance"`
}

// buildSeries godoc
// @Summary Build chart rows from balance points
// @Tags metrics
// @Accept json
// @Produce json
// @Param payload body BuildSeriesRequest true "Balance points and threshold levels"
// @Success 200 {array} domain.SeriesRow
// @Failure 400 {object} map[string]string
// @Router /series/build [post]
func (r *Router) buildSeries(c *fiber.Ctx) error {
	var payload BuildSeriesRequest
	if err := c.BodyParser(&payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
	}

	rows := usecase.BuildSeries(usecase.SeriesInput{
		Points:         usecase.SeriesPointsFromRaw(payload.Points),
		MaxDrawdown:    payload.MaxDrawdown,
		ProfitTarget:   payload.ProfitTarget,
		InitialBalance: payload.InitialBalance,
	})
	if rows == nil {
		rows = []domain.SeriesRow{}
	}
	return c.JSON(rows)
}

// listRewards godoc
// @Summary List rewards
// @Tags rewards
// @Produce json
// @Success 200 {array} domain.Reward
// @Failure 500 {object} map[string]string
// @Router /rewards [get]
func (r *Router) listRewards(c *fiber.Ctx) error {
	if r.services.Rewards == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "reward service unavailable")
	}

	ctx, cancel := context.WithTimeout(userContext(c), 10*time.Second)
	defer cancel()

	rewards, err := r.services.Rewards.List(ctx)
	if err != nil {
		return toFiberError(err)
	}
	return c.JSON(rewards)
}

// getReward godoc
// @Summary Get a reward
// @Tags rewards
// @Produce json
// @Param id path string true "Reward document id"
// @Success 200 {object} domain.Reward
// @Failure 404 {object} map[string]string
// @Router /rewards/{id} [get]
func (r *Router) getReward(c *fiber.Ctx) error {
	if r.services.Rewards == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "reward service unavailable")
	}

	ctx, cancel := context.WithTimeout(userContext(c), 10*time.Second)
	defer cancel()

	reward, err := r.services.Rewards.Get(ctx, pathParam(c, "id"))
	if err != nil {
		return toFiberError(err)
	}
	return c.JSON(reward)
}

// createReward godoc
// @Summary Create a reward
// @Tags rewards
// @Accept json
// @Produce json
// @Param payload body domain.RewardInput true "Reward"
// @Success 201 {object} domain.Reward
// @Failure 400 {object} map[string]string
// @Router /rewards [post]
func (r *Router) createReward(c *fiber.Ctx) error {
	if r.services.Rewards == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "reward service unavailable")
	}

	var input domain.RewardInput
	if err := c.BodyParser(&input); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
	}

	ctx, cancel := context.WithTimeout(userContext(c), 10*time.Second)
	defer cancel()

	reward, err := r.services.Rewards.Create(ctx, input)
	if err != nil {
		return toFiberError(err)
	}
	return c.Status(fiber.StatusCreated).JSON(reward)
}

// updateReward godoc
// @Summary Replace a reward
// @Tags rewards
// @Accept json
// @Produce json
// @Param id path string true "Reward document id"
// @Param payload body domain.RewardInput true "Reward"
// @Success 200 {object} domain.Reward
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /rewards/{id} [put]
func (r *Router) updateReward(c *fiber.Ctx) error {
	if r.services.Rewards == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "reward service unavailable")
	}

	var input domain.RewardInput
	if err := c.BodyParser(&input); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
	}

	ctx, cancel := context.WithTimeout(userContext(c), 10*time.Second)
	defer cancel()

	reward, err := r.services.Rewards.Update(ctx, pathParam(c, "id"), input)
	if err != nil {
		return toFiberError(err)
	}
	return c.JSON(reward)
}

// deleteReward godoc
// @Summary Delete a reward
// @Tags rewards
// @Param id path string true "Reward document id"
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /rewards/{id} [delete]
func (r *Router) deleteReward(c *fiber.Ctx) error {
	if r.services.Rewards == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "reward service unavailable")
	}

	ctx, cancel := context.WithTimeout(userContext(c), 10*time.Second)
	defer cancel()

	if err := r.services.Rewards.Delete(ctx, pathParam(c, "id")); err != nil {
		return toFiberError(err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// listProducts godoc
// @Summary List shop products
// @Tags products
// @Produce json
// @Param page query int false "Page number, starting at 1"
// @Param per_page query int false "Items per page (max 100)"
// @Success 200 {object} domain.ProductPage
// @Failure 502 {object} map[string]string
// @Router /products [get]
func (r *Router) listProducts(c *fiber.Ctx) error {
	if r.services.Catalog == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "product catalog unavailable")
	}

	page := c.QueryInt("page", 1)
	perPage := c.QueryInt("per_page", 0)

	ctx, cancel := context.WithTimeout(userContext(c), 15*time.Second)
	defer cancel()

	products, err := r.services.Catalog.ListProducts(ctx, page, perPage)
	if err != nil {
		return toFiberError(err)
	}
	return c.JSON(products)
}

// listVariations godoc
// @Summary List the variations of a product
// @Tags products
// @Produce json
// @Param id path int true "Product id"
// @Success 200 {array} domain.ProductVariation
// @Failure 400 {object} map[string]string
// @Router /products/{id}/variations [get]
func (r *Router) listVariations(c *fiber.Ctx) error {
	if r.services.Catalog == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "product catalog unavailable")
	}

	productID, err := strconv.ParseInt(pathParam(c, "id"), 10, 64)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid product id")
	}

	ctx, cancel := context.WithTimeout(userContext(c), 15*time.Second)
	defer cancel()

	variations, err := r.services.Catalog.ListVariations(ctx, productID)
	if err != nil {
		return toFiberError(err)
	}
	return c.JSON(variations)
}

// getPreferences godoc
// @Summary Get a user's dashboard preferences
// @Tags preferences
// @Produce json
// @Param user_id path string true "User ID"
// @Success 200 {object} domain.UserPreferences
// @Failure 500 {object} map[string]string
// @Router /users/{user_id}/preferences [get]
func (r *Router) getPreferences(c *fiber.Ctx) error {
	if r.services.Preferences == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "preferences service unavailable")
	}

	ctx, cancel := context.WithTimeout(userContext(c), 5*time.Second)
	defer cancel()

	prefs, err := r.services.Preferences.Load(ctx, pathParam(c, "user_id"))
	if err != nil {
		return toFiberError(err)
	}
	return c.JSON(prefs)
}

// patchPreferences godoc
// @Summary Update part of a user's dashboard preferences
// @Tags preferences
// @Accept json
// @Produce json
// @Param user_id path string true "User ID"
// @Param payload body domain.PreferencesPatch true "Fields to change"
// @Success 200 {object} domain.UserPreferences
// @Failure 400 {object} map[string]string
// @Router /users/{user_id}/preferences [patch]
func (r *Router) patchPreferences(c *fiber.Ctx) error {
	if r.services.Preferences == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "preferences service unavailable")
	}

	var patch domain.PreferencesPatch
	if err := c.BodyParser(&patch); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
	}

	ctx, cancel := context.WithTimeout(userContext(c), 5*time.Second)
	defer cancel()

	prefs, err := r.services.Preferences.Save(ctx, pathParam(c, "user_id"), patch)
	if err != nil {
		return toFiberError(err)
	}
	return c.JSON(prefs)
}

// pathParam copies the route parameter out of the request buffer, which
// fiber reuses once the handler returns.
func pathParam(c *fiber.Ctx, name string) string {
	return utils.CopyString(c.Params(name))
}

func userContext(c *fiber.Ctx) context.Context {
	if ctx := c.UserContext(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func toFiberError(err error) error {
	var validationErr *usecase.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidMetadata):
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, domain.ErrInvalidPhase):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.NewError(fiber.StatusGatewayTimeout, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}

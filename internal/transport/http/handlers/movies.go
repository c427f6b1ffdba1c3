package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/EliteTRENT/movie-explorer/internal/core/domain"
	"github.com/EliteTRENT/movie-explorer/internal/transport/http/middleware"
	"github.com/EliteTRENT/movie-explorer/internal/usecase"
)

// MovieHandler exposes the catalog endpoints.
type MovieHandler struct {
	catalog   *usecase.CatalogService
	authority *usecase.TokenAuthority
}

// NewMovieHandler constructs MovieHandler.
func NewMovieHandler(catalog *usecase.CatalogService, authority *usecase.TokenAuthority) *MovieHandler {
	return &MovieHandler{catalog: catalog, authority: authority}
}

// RegisterRoutes binds catalog routes. Reads require a session; writes
// additionally require the supervisor role.
func (h *MovieHandler) RegisterRoutes(r *gin.RouterGroup) {
	auth := middleware.RequireAuth(h.authority)
	supervisor := middleware.RequireSupervisor()

	r.GET("", auth, h.list)
	r.GET("/:id", auth, h.get)
	r.POST("", auth, supervisor, h.create)
	r.PUT("/:id", auth, supervisor, h.update)
	r.DELETE("/:id", auth, supervisor, h.remove)
}

func (h *MovieHandler) list(c *gin.Context) {
	filter := domain.MovieFilter{
		Title: c.Query("title"),
		Genre: c.Query("genre"),
	}
	if page, err := strconv.Atoi(c.Query("page")); err == nil {
		filter.Page = page
	}
	if perPage, err := strconv.Atoi(c.Query("per_page")); err == nil {
		filter.PerPage = perPage
	}

	page, err := h.catalog.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to list movies"))
		return
	}

	resp := MovieListResponse{
		Movies:     make([]MovieResponse, 0, len(page.Movies)),
		Page:       page.Page,
		PerPage:    page.PerPage,
		TotalCount: page.TotalCount,
		TotalPages: page.TotalPages(),
	}
	for _, movie := range page.Movies {
		resp.Movies = append(resp.Movies, newMovieResponse(movie))
	}

	c.JSON(http.StatusOK, resp)
}

func (h *MovieHandler) get(c *gin.Context) {
	principal, ok := middleware.Principal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	movie, err := h.catalog.Get(c.Request.Context(), principal.ID, c.Param("id"))
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrMovieNotFound, Status: http.StatusNotFound, Message: "movie not found"},
			{Err: usecase.ErrPremiumRequired, Status: http.StatusForbidden, Message: "premium subscription required"},
			{Err: usecase.ErrSubscriptionNotFound, Status: http.StatusForbidden, Message: "premium subscription required"},
		}, http.StatusInternalServerError, "failed to load movie")
		return
	}

	c.JSON(http.StatusOK, newMovieResponse(*movie))
}

func (h *MovieHandler) create(c *gin.Context) {
	principal, ok := middleware.Principal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req MovieRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid movie payload"))
		return
	}

	movie, err := h.catalog.Create(c.Request.Context(), principal, movieInputFromRequest(req))
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrSupervisorRequired, Status: http.StatusForbidden, Message: "supervisor role required"},
		}, http.StatusBadRequest, err.Error())
		return
	}

	c.JSON(http.StatusCreated, newMovieResponse(*movie))
}

func (h *MovieHandler) update(c *gin.Context) {
	principal, ok := middleware.Principal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req MovieRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid movie payload"))
		return
	}

	movie, err := h.catalog.Update(c.Request.Context(), principal, c.Param("id"), movieInputFromRequest(req))
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrSupervisorRequired, Status: http.StatusForbidden, Message: "supervisor role required"},
			{Err: usecase.ErrMovieNotFound, Status: http.StatusNotFound, Message: "movie not found"},
		}, http.StatusBadRequest, err.Error())
		return
	}

	c.JSON(http.StatusOK, newMovieResponse(*movie))
}

func (h *MovieHandler) remove(c *gin.Context) {
	principal, ok := middleware.Principal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	if err := h.catalog.Delete(c.Request.Context(), principal, c.Param("id")); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrSupervisorRequired, Status: http.StatusForbidden, Message: "supervisor role required"},
			{Err: usecase.ErrMovieNotFound, Status: http.StatusNotFound, Message: "movie not found"},
		}, http.StatusInternalServerError, "failed to delete movie")
		return
	}

	c.Status(http.StatusNoContent)
}

func movieInputFromRequest(req MovieRequest) usecase.MovieInput {
	return usecase.MovieInput{
		Title:       req.Title,
		Genre:       req.Genre,
		ReleaseYear: req.ReleaseYear,
		Rating:      req.Rating,
		Director:    req.Director,
		Duration:    req.Duration,
		Description: req.Description,
		Premium:     req.Premium,
	}
}

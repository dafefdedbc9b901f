package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mikeboe/thesis-herald/pkg/arxiv"
	"github.com/mikeboe/thesis-herald/pkg/history"
)

type Handler struct {
	Service *Service
	MCP     http.Handler
}

func NewHandler(s *Service, mcpHandler http.Handler) *Handler {
	return &Handler{Service: s, MCP: mcpHandler}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if h.MCP != nil {
		r.Any("/mcp", gin.WrapH(h.MCP))
	}

	api := r.Group("/api")
	{
		api.GET("/papers", h.searchPapers)
		api.GET("/papers/:id", h.getPaper)

		api.POST("/ask", h.ask)
		api.POST("/summarize", h.summarize)
		api.POST("/digest", h.digest)

		api.GET("/runs", h.listRuns)
		api.GET("/runs/:id", h.getRun)
		api.GET("/runs/:id/logs", h.getRunLogs)

		api.GET("/history", h.listExchanges)
	}
}

func (h *Handler) searchPapers(c *gin.Context) {
	maxResults, _ := strconv.Atoi(c.Query("max_results"))
	req := SearchRequest{
		Category:   c.Query("category"),
		Keywords:   c.Query("keywords"),
		Categories: c.Query("categories"),
		MaxResults: maxResults,
	}
	if req.Category == "" && req.Keywords == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "category or keywords is required"})
		return
	}

	papers, err := h.Service.Search(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	if papers == nil {
		papers = []arxiv.Paper{}
	}
	c.JSON(http.StatusOK, papers)
}

func (h *Handler) getPaper(c *gin.Context) {
	paper, err := h.Service.GetPaper(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, paper)
}

func (h *Handler) ask(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ex, err := h.Service.Ask(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ex)
}

func (h *Handler) summarize(c *gin.Context) {
	var req SummarizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ex, err := h.Service.Summarize(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ex)
}

// digest runs in the background when runs can be tracked and inline
// otherwise.
func (h *Handler) digest(c *gin.Context) {
	var req DigestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	run, err := h.Service.CreateDigestJob(c.Request.Context(), req)
	if errors.Is(err, history.ErrDisabled) {
		ex, err := h.Service.Digest(c.Request.Context(), req)
		if err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, ex)
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusAccepted, run)
}

func (h *Handler) listRuns(c *gin.Context) {
	runs, err := h.Service.ListRuns(c.Request.Context(), limitParam(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	// Return empty list instead of null
	if runs == nil {
		runs = []history.Run{}
	}
	c.JSON(http.StatusOK, runs)
}

func (h *Handler) getRun(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid uuid"})
		return
	}

	run, err := h.Service.GetRun(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, run)
}

func (h *Handler) getRunLogs(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid uuid"})
		return
	}

	logs, err := h.Service.GetRunLogs(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	if logs == nil {
		logs = []history.LogEntry{}
	}
	c.JSON(http.StatusOK, logs)
}

func (h *Handler) listExchanges(c *gin.Context) {
	exchanges, err := h.Service.ListExchanges(c.Request.Context(), limitParam(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	if exchanges == nil {
		exchanges = []history.Exchange{}
	}
	c.JSON(http.StatusOK, exchanges)
}

func (h *Handler) fail(c *gin.Context, err error) {
	var unavailable *arxiv.UnavailableError
	switch {
	case errors.As(err, &unavailable):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "upstream_status": unavailable.StatusCode})
	case errors.Is(err, ErrInvalidID):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ErrPaperNotFound), errors.Is(err, history.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrLLMDisabled), errors.Is(err, history.ErrDisabled):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		h.Service.Logger.Error("request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func limitParam(c *gin.Context) int {
	n, _ := strconv.Atoi(c.Query("limit"))
	return n
}

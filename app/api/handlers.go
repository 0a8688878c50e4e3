package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Sveder/awesome-web-dev-baseline/app/cfg"
	"github.com/Sveder/awesome-web-dev-baseline/app/database"
	"github.com/Sveder/awesome-web-dev-baseline/app/document"
	"github.com/Sveder/awesome-web-dev-baseline/app/feed"
	"github.com/Sveder/awesome-web-dev-baseline/app/tasks"
)

// NewHandler creates the API handler. runs may be nil when run history is
// disabled.
func NewHandler(runs database.RunStore, scheduler tasks.TaskSchedulerInterface, documentPath string) *Handler {
	return &Handler{
		runs:         runs,
		scheduler:    scheduler,
		documentPath: documentPath,
		generator:    feed.NewGenerator(),
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"document":  h.documentPath,
	}

	if doc, err := document.ReadFile(h.documentPath); err == nil {
		health["known_tools"] = len(doc.KnownTools())
	} else {
		slog.Warn("Failed to read document", "path", h.documentPath, "error", err)
		health["document_error"] = err.Error()
	}

	if h.runs != nil {
		if runCount, err := h.runs.GetRunCount(c.Request.Context()); err == nil {
			health["runs"] = runCount
		}
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) ListTools(c *gin.Context) {
	doc, err := document.ReadFile(h.documentPath)
	if err != nil {
		slog.Error("Failed to read document", "path", h.documentPath, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read document"})
		return
	}

	tools := doc.KnownTools()
	sections := make([]string, 0)
	for _, section := range doc.Sections() {
		sections = append(sections, section.Heading)
	}

	c.JSON(http.StatusOK, gin.H{
		"sections": sections,
		"tools":    tools,
		"total":    len(tools),
	})
}

// GetToolsFeed publishes the tools added by runs that wrote the document as
// an RSS feed.
func (h *Handler) GetToolsFeed(c *gin.Context) {
	if h.runs == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Run history is disabled"})
		return
	}

	tools, err := h.runs.ListAddedTools(c.Request.Context(), maxFeedItems)
	if err != nil {
		slog.Error("Database error", "operation", "list_added_tools", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	baseURL := requestBaseURL(c)
	channel := feed.Channel{
		Title:       "Baseline Scout: added tools",
		Link:        baseURL + "/tools",
		Description: "Tools added to " + h.documentPath,
		SelfLink:    baseURL + c.Request.URL.Path,
		Generator:   "Baseline Scout/" + cfg.GetVersion(),
	}

	items := make([]feed.Item, 0, len(tools))
	for _, tool := range tools {
		items = append(items, feed.Item{
			GUID:        fmt.Sprintf("%s:%d", tool.RunID, tool.Position),
			Title:       tool.Name,
			Link:        tool.URL,
			Description: tool.Description,
			Category:    tool.Category,
			Source:      tool.Source,
			PublishedAt: tool.AddedAt.In(time.Local),
		})
	}

	rss, err := h.generator.Run(channel, items)
	if err != nil {
		slog.Error("Failed to generate feed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate feed"})
		return
	}

	c.Header("Content-Type", "application/rss+xml; charset=utf-8")
	c.String(http.StatusOK, rss)
}

func (h *Handler) ListRuns(c *gin.Context) {
	if h.runs == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Run history is disabled"})
		return
	}

	limit := defaultRunLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit parameter"})
			return
		}
		limit = min(parsed, maxRunLimit)
	}

	runs, err := h.runs.ListRuns(c.Request.Context(), limit)
	if err != nil {
		slog.Error("Database error", "operation", "list_runs", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"runs":  runs,
		"total": len(runs),
	})
}

func (h *Handler) GetRun(c *gin.Context) {
	if h.runs == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Run history is disabled"})
		return
	}

	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing run ID parameter"})
		return
	}

	run, err := h.runs.GetRun(c.Request.Context(), id)
	if err != nil {
		slog.Error("Database error", "operation", "get_run", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if run == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Run not found"})
		return
	}

	c.JSON(http.StatusOK, run)
}

func (h *Handler) APITriggerRun(c *gin.Context) {
	id, err := h.scheduler.Trigger(tasks.TriggerAPI)
	if err != nil {
		slog.Warn("Failed to enqueue run", "error", err)
		c.JSON(http.StatusConflict, gin.H{
			"error":   "Failed to enqueue run",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"message": "Run enqueued",
		"task": gin.H{
			"id":   id,
			"type": tasks.TaskTypeRunPipeline,
		},
	})
}

func requestBaseURL(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host
}

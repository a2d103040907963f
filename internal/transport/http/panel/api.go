package panel

import (
	"net/http"
	"strings"

	"rsadesk/internal/desk"
	"rsadesk/internal/executor"
	"rsadesk/internal/store"
	"rsadesk/internal/trade"

	"github.com/gin-gonic/gin"
)

type handlers struct {
	desk Desk
}

// OrderRequest is the JSON body of POST /api/orders.
type OrderRequest struct {
	Side     string   `json:"side" binding:"required"`
	Brokers  []string `json:"brokers"`
	Tickers  string   `json:"tickers"`
	Quantity int      `json:"quantity"`
	DryRun   bool     `json:"dry_run"`
}

type resultView struct {
	Broker     string   `json:"broker"`
	ExitCode   int      `json:"exit_code"`
	Stdout     []string `json:"stdout"`
	Stderr     []string `json:"stderr"`
	Error      string   `json:"error,omitempty"`
	DurationMS int64    `json:"duration_ms"`
}

type roundView struct {
	Round    string       `json:"round"`
	Items    int          `json:"items"`
	Captured int          `json:"captured"`
	Failures int          `json:"failures"`
	Results  []resultView `json:"results"`
	Error    string       `json:"error,omitempty"`
}

type syncView struct {
	ExitCode int      `json:"exit_code"`
	Stdout   []string `json:"stdout"`
	Stderr   []string `json:"stderr"`
	Error    string   `json:"error,omitempty"`
}

func (h *handlers) registerAPI(group *gin.RouterGroup) {
	group.GET("/brokers", h.handleBrokers)
	group.GET("/output", h.handleOutput)
	group.DELETE("/output", h.handleClearOutput)
	group.POST("/orders", h.handleOrder)
	group.POST("/sync", h.handleSync)
}

func (h *handlers) handleBrokers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"brokers": h.desk.Brokers()})
}

func (h *handlers) handleOutput(c *gin.Context) {
	rows, err := h.desk.Rows(c.Request.Context())
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error(), "rows": []store.Row{}})
		return
	}
	if rows == nil {
		rows = []store.Row{}
	}
	c.JSON(http.StatusOK, gin.H{"rows": rows})
}

func (h *handlers) handleClearOutput(c *gin.Context) {
	if err := h.desk.Clear(c.Request.Context()); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}

func (h *handlers) handleOrder(c *gin.Context) {
	var req OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	side, err := trade.ParseSide(req.Side)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	report, err := h.desk.Submit(c.Request.Context(), trade.Order{
		Side:     side,
		Brokers:  req.Brokers,
		Tickers:  req.Tickers,
		Quantity: req.Quantity,
		DryRun:   req.DryRun,
	})
	if err != nil && report.ID == "" {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	view := newRoundView(report)
	status := http.StatusOK
	if err != nil {
		view.Error = err.Error()
		status = statusFor(err)
	}
	c.JSON(status, view)
}

func (h *handlers) handleSync(c *gin.Context) {
	res, err := h.desk.Sync(c.Request.Context())
	view := newSyncView(res)
	if err != nil {
		view.Error = err.Error()
		c.JSON(statusFor(err), view)
		return
	}
	c.JSON(http.StatusOK, view)
}

func newRoundView(r desk.RoundReport) roundView {
	view := roundView{
		Round:    r.ID,
		Items:    len(r.Items),
		Captured: r.Captured(),
		Failures: r.Failures(),
		Results:  make([]resultView, 0, len(r.Results)),
	}
	for _, res := range r.Results {
		rv := resultView{
			Broker:     res.Item.Broker,
			ExitCode:   res.ExitCode,
			Stdout:     nonNil(res.Stdout),
			Stderr:     nonNil(res.Stderr),
			DurationMS: res.Duration.Milliseconds(),
		}
		if res.Err != nil {
			rv.Error = res.Err.Error()
		}
		view.Results = append(view.Results, rv)
	}
	return view
}

func newSyncView(res executor.SyncResult) syncView {
	return syncView{
		ExitCode: res.ExitCode,
		Stdout:   nonNil(res.Stdout),
		Stderr:   nonNil(res.Stderr),
	}
}

func nonNil(lines []string) []string {
	if lines == nil {
		return []string{}
	}
	return lines
}

func summarizeRound(r desk.RoundReport) string {
	var b strings.Builder
	b.WriteString(string(r.Order.Side))
	b.WriteString(" sent to ")
	b.WriteString(plural(len(r.Items), "broker"))
	b.WriteString(", ")
	b.WriteString(plural(r.Captured(), "line"))
	b.WriteString(" captured")
	if n := r.Failures(); n > 0 {
		b.WriteString(", ")
		b.WriteString(plural(n, "failure"))
	}
	return b.String()
}

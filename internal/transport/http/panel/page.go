package panel

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"rsadesk/internal/pkg/text"
	"rsadesk/internal/store"
	"rsadesk/internal/trade"

	"github.com/gin-gonic/gin"
)

// orderForm is the sidebar form. Quantity stays a string so that garbage
// input reaches the usual quantity message instead of a binding error.
type orderForm struct {
	Brokers  []string `form:"brokers"`
	Tickers  string   `form:"tickers"`
	Quantity string   `form:"quantity"`
	DryRun   bool     `form:"dry_run"`
}

func (f orderForm) order(side trade.Side) trade.Order {
	qty, err := strconv.Atoi(strings.TrimSpace(f.Quantity))
	if err != nil {
		qty = 0
	}
	return trade.Order{
		Side:     side,
		Brokers:  f.Brokers,
		Tickers:  f.Tickers,
		Quantity: qty,
		DryRun:   f.DryRun,
	}
}

type pageData struct {
	Brokers    []string
	Rows       []store.Row
	Flash      string
	FlashLevel string
	RowsError  string
}

func (h *handlers) registerPage(group *gin.RouterGroup) {
	group.GET("/", h.handleIndex)
	forms := group.Group("", sameOrigin())
	forms.POST("/orders/buy", h.handleFormOrder(trade.SideBuy))
	forms.POST("/orders/sell", h.handleFormOrder(trade.SideSell))
	forms.POST("/output/clear", h.handleFormClear)
	forms.POST("/sync", h.handleFormSync)
}

func (h *handlers) handleIndex(c *gin.Context) {
	data := pageData{
		Brokers:    h.desk.Brokers(),
		Flash:      c.Query("msg"),
		FlashLevel: c.DefaultQuery("level", "info"),
	}
	rows, err := h.desk.Rows(c.Request.Context())
	if err != nil {
		data.RowsError = err.Error()
	} else {
		data.Rows = rows
	}
	c.HTML(http.StatusOK, "index.html", data)
}

func (h *handlers) handleFormOrder(side trade.Side) gin.HandlerFunc {
	return func(c *gin.Context) {
		var form orderForm
		if err := c.ShouldBind(&form); err != nil {
			redirectWithFlash(c, err.Error(), "error")
			return
		}
		report, err := h.desk.Submit(c.Request.Context(), form.order(side))
		switch {
		case err != nil && report.ID == "":
			redirectWithFlash(c, err.Error(), flashLevel(err))
		case err != nil:
			redirectWithFlash(c, summarizeRound(report)+"; "+err.Error(), flashLevel(err))
		default:
			redirectWithFlash(c, summarizeRound(report), "info")
		}
	}
}

func (h *handlers) handleFormClear(c *gin.Context) {
	if err := h.desk.Clear(c.Request.Context()); err != nil {
		redirectWithFlash(c, err.Error(), flashLevel(err))
		return
	}
	redirectWithFlash(c, "Output cleared.", "info")
}

func (h *handlers) handleFormSync(c *gin.Context) {
	if _, err := h.desk.Sync(c.Request.Context()); err != nil {
		redirectWithFlash(c, "Sync failed: "+err.Error(), flashLevel(err))
		return
	}
	redirectWithFlash(c, "Syncing Complete.", "info")
}

// maxFlashLen keeps the redirect URL short when pip or a bot fails loudly.
const maxFlashLen = 400

func redirectWithFlash(c *gin.Context, msg, level string) {
	q := url.Values{}
	q.Set("msg", text.Truncate(msg, maxFlashLen))
	q.Set("level", level)
	c.Redirect(http.StatusSeeOther, "/?"+q.Encode())
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

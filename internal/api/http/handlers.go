package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/specfn/internal/api/middleware"
	"github.com/GriffinCanCode/specfn/internal/catalog"
	"github.com/GriffinCanCode/specfn/internal/dispatch"
	"github.com/GriffinCanCode/specfn/internal/expr"
	"github.com/GriffinCanCode/specfn/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/specfn/internal/logging"
	"github.com/GriffinCanCode/specfn/internal/precision"
)

// Version is reported by the root endpoint.
const Version = "0.1.0"

// Handlers contains all HTTP handlers
type Handlers struct {
	dispatcher *dispatch.Dispatcher
	metrics    *monitoring.Metrics
	logger     *logging.Logger
}

// NewHandlers creates a new handler set
func NewHandlers(d *dispatch.Dispatcher, metrics *monitoring.Metrics, logger *logging.Logger) *Handlers {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Handlers{dispatcher: d, metrics: metrics, logger: logger.Named("http")}
}

// Register mounts the handlers on r.
func (h *Handlers) Register(r gin.IRouter) {
	r.GET("/", h.Root)
	r.GET("/health", h.Health)

	v1 := r.Group("/v1")
	v1.POST("/evaluate", h.Evaluate)
	v1.GET("/functions", h.ListFunctions)
}

// Root reports the service identity
func (h *Handlers) Root(c *gin.Context) {
	writeJSON(c, http.StatusOK, gin.H{
		"status":  "online",
		"service": "specfn",
		"version": Version,
	})
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	cat := h.dispatcher.Catalog()
	body := gin.H{
		"status":    "healthy",
		"functions": cat.Len(),
		"rules":     cat.Rules().Len(),
	}
	if h.metrics != nil {
		body["metrics"] = h.metrics.Snapshot()
		body["uptime_seconds"] = int64(h.metrics.UptimeDuration().Seconds())
		body["avg_request_ms"] = h.metrics.AverageRequestDuration().Milliseconds()
	}
	writeJSON(c, http.StatusOK, body)
}

// ListFunctions lists the catalog in registration order
func (h *Handlers) ListFunctions(c *gin.Context) {
	cat := h.dispatcher.Catalog()
	out := make([]FunctionInfo, 0, cat.Len())
	for _, name := range cat.Names() {
		d, err := cat.Lookup(name)
		if err != nil {
			continue
		}
		out = append(out, FunctionInfo{
			Name:     d.Name,
			Kind:     d.Kind().String(),
			Symbolic: d.SymbolicName,
			Numeric:  d.NumericName,
			Rules:    len(cat.Rules().For(name)),
		})
	}
	writeJSON(c, http.StatusOK, gin.H{"functions": out})
}

// Evaluate evaluates an expression tree
func (h *Handlers) Evaluate(c *gin.Context) {
	eid := middleware.GetEvalID(c)
	log := h.logger.ForEval(eid)

	var req EvaluateRequest
	if err := bindJSON(c, &req); err != nil {
		writeJSON(c, http.StatusBadRequest, ErrorResponse{Error: err.Error(), ID: eid})
		return
	}
	if req.Expr == nil {
		writeJSON(c, http.StatusBadRequest, ErrorResponse{Error: "expr is required", ID: eid})
		return
	}
	if req.Precision > 0 && req.Digits > 0 {
		writeJSON(c, http.StatusBadRequest, ErrorResponse{Error: "precision and digits are mutually exclusive", ID: eid})
		return
	}
	if req.Digits < 0 {
		writeJSON(c, http.StatusBadRequest, ErrorResponse{Error: "digits must be positive", ID: eid})
		return
	}

	e, err := req.Expr.Expr()
	if err != nil {
		writeJSON(c, http.StatusBadRequest, ErrorResponse{Error: err.Error(), ID: eid})
		return
	}

	ctx := precision.NewContext().WithID(eid).WithNumeric(req.Numeric)
	switch {
	case req.Precision > 0:
		ctx = ctx.WithPrecision(req.Precision)
	case req.Digits > 0:
		ctx = ctx.WithDigits(req.Digits)
	}

	v, err := h.dispatcher.EvaluateExpr(e, ctx)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, dispatch.ErrRewriteDepth):
			status = http.StatusUnprocessableEntity
		case errors.Is(err, catalog.ErrUnknownFunction):
			status = http.StatusBadRequest
		}
		log.Warn("evaluation failed", zap.String("expr", e.String()), zap.Error(err))
		writeJSON(c, status, ErrorResponse{Error: err.Error(), ID: eid})
		return
	}

	node, err := expr.ToNode(v.Expr)
	if err != nil {
		log.Error("failed to encode result", zap.String("result", v.Expr.String()), zap.Error(err))
		writeJSON(c, http.StatusInternalServerError, ErrorResponse{Error: err.Error(), ID: eid})
		return
	}

	resp := EvaluateResponse{
		ID:        eid,
		Result:    node,
		Text:      v.Expr.String(),
		Evaluated: v.Evaluated,
		Reduced:   v.Reduced,
		Path:      string(v.Path),
	}
	if v.Diagnostic != nil {
		resp.Diagnostic = v.Diagnostic.Error()
	}
	log.Info("evaluated",
		zap.String("expr", e.String()),
		zap.String("result", resp.Text),
		zap.String("path", resp.Path),
	)
	writeJSON(c, http.StatusOK, resp)
}

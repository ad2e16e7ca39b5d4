package tracing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObserved() (*Tracer, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return New("specfn-test", zap.New(core)), logs
}

func TestStartSpanContinuesTrace(t *testing.T) {
	tracer, _ := newObserved()
	defer tracer.Close()

	root, ctx := tracer.StartSpan(context.Background(), "root")
	assert.True(t, strings.HasPrefix(string(root.TraceID), "trace_"))
	assert.True(t, strings.HasPrefix(string(root.SpanID), "span_"))
	assert.Empty(t, root.ParentID)

	child, childCtx := tracer.StartSpan(ctx, "child")
	assert.Equal(t, root.TraceID, child.TraceID)
	assert.Equal(t, root.SpanID, child.ParentID)
	assert.Equal(t, child.SpanID, GetSpanID(childCtx))
}

func TestCloseDrainsSubmittedSpans(t *testing.T) {
	tracer, logs := newObserved()

	ok, _ := tracer.StartSpan(context.Background(), "ok")
	ok.Finish()
	tracer.Submit(ok)

	failed, _ := tracer.StartSpan(context.Background(), "failed")
	failed.SetError(errors.New("boom"))
	failed.Finish()
	tracer.Submit(failed)

	tracer.Close()
	tracer.Close()

	assert.Equal(t, 1, logs.FilterMessage("span completed").Len())
	assert.Equal(t, 1, logs.FilterMessage("span completed with error").Len())
}

func TestHTTPMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name    string
		traceID string
		parent  string
	}{
		{name: "new trace"},
		{name: "continued trace", traceID: "trace_upstream", parent: "span_upstream"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracer, logs := newObserved()

			r := gin.New()
			r.Use(HTTPMiddleware(tracer))
			var seen TraceID
			r.GET("/ping", func(c *gin.Context) {
				seen = GetTraceID(c.Request.Context())
				c.Set("eval_id", "eval_x")
				c.Status(http.StatusNoContent)
			})

			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			if tt.traceID != "" {
				req.Header.Set(TraceIDHeader, tt.traceID)
				req.Header.Set(SpanIDHeader, tt.parent)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			tracer.Close()

			require.Equal(t, http.StatusNoContent, w.Code)
			got := w.Header().Get(TraceIDHeader)
			assert.Equal(t, string(seen), got)
			if tt.traceID != "" {
				assert.Equal(t, tt.traceID, got)
			} else {
				assert.True(t, strings.HasPrefix(got, "trace_"))
			}

			entries := logs.FilterMessage("span completed").All()
			require.Len(t, entries, 1)
			fields := entries[0].ContextMap()
			assert.Equal(t, "GET /ping", fields["operation"])
			assert.Equal(t, "eval_x", fields["eval_id"])
			if tt.parent != "" {
				assert.Equal(t, tt.parent, fields["parent_id"])
			}
		})
	}
}

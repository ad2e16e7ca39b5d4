package http

import (
	"fmt"
	"io"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
)

// maxBodyBytes bounds request bodies; expression trees are small.
const maxBodyBytes = 1 << 20

// bindJSON decodes the request body into v with sonic.
func bindJSON(c *gin.Context, v any) error {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes+1))
	if err != nil {
		return fmt.Errorf("failed to read body: %w", err)
	}
	if len(body) > maxBodyBytes {
		return fmt.Errorf("body exceeds %d bytes", maxBodyBytes)
	}
	if err := sonic.Unmarshal(body, v); err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}
	return nil
}

// writeJSON encodes v with sonic.
func writeJSON(c *gin.Context, status int, v any) {
	data, err := sonic.Marshal(v)
	if err != nil {
		c.Data(http.StatusInternalServerError, "application/json; charset=utf-8", []byte(`{"error":"failed to encode response"}`))
		return
	}
	c.Data(status, "application/json; charset=utf-8", data)
}

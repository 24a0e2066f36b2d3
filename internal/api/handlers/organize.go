package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/codyseavey/pullsheet/internal/render"
	"github.com/codyseavey/pullsheet/internal/services"
)

// maxSlipBytes bounds how much document text one request may carry.
const maxSlipBytes = 4 << 20

type OrganizeHandler struct {
	organizer *services.Organizer
}

func NewOrganizeHandler(organizer *services.Organizer) *OrganizeHandler {
	return &OrganizeHandler{organizer: organizer}
}

type organizeRequest struct {
	Text string `json:"text"`
}

// slipLines pulls the document text out of the request. JSON bodies carry it
// in a "text" field; anything else is treated as the raw extracted text.
func slipLines(c *gin.Context) ([]string, error) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxSlipBytes))
	if err != nil {
		return nil, err
	}

	text := string(body)
	if strings.Contains(c.ContentType(), "application/json") {
		var req organizeRequest
		if err := json.Unmarshal(body, &req); err != nil {
			return nil, err
		}
		text = req.Text
	}

	if strings.TrimSpace(text) == "" {
		return nil, errors.New("request body is empty")
	}
	return strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n"), nil
}

// OrganizeSlip parses and enriches a packing slip and returns the grouped
// result as JSON.
func (h *OrganizeHandler) OrganizeSlip(c *gin.Context) {
	lines, err := slipLines(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	slip, err := h.organizer.Organize(c.Request.Context(), lines)
	if err != nil {
		h.writeOrganizeError(c, err)
		return
	}

	c.JSON(http.StatusOK, slip)
}

// RenderPullSheet runs the same pipeline but responds with the printable
// HTML pull sheet instead of JSON.
func (h *OrganizeHandler) RenderPullSheet(c *gin.Context) {
	lines, err := slipLines(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	slip, err := h.organizer.Organize(c.Request.Context(), lines)
	if err != nil {
		h.writeOrganizeError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := render.WriteHTML(&buf, slip); err != nil {
		log.Printf("Failed to render pull sheet %s: %v", slip.RunID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func (h *OrganizeHandler) writeOrganizeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNoRecords):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrNoSetTable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

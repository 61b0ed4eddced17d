package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/couchcryptid/traffic-cams-service/internal/adapter/markers"
	"github.com/couchcryptid/traffic-cams-service/internal/domain"
	"github.com/gin-gonic/gin"
)

// Client-facing failure messages. Internal error text is logged, never returned.
var sourceErrorMessages = map[domain.Source]string{
	domain.SourceUrbanas: "Error parsing KML file",
	domain.SourceM30:     "Error parsing M30 XML file",
	domain.SourceRadares: "Error parsing CSV file",
	domain.SourceDGT:     "Error parsing DGT XML file",
}

const aggregateErrorMessage = "Error loading cameras"

func (s *Server) handleSource(src domain.Source) gin.HandlerFunc {
	return func(c *gin.Context) {
		q, err := parseQuery(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		records, err := s.records.Source(c.Request.Context(), src)
		if err != nil {
			s.logger.Error("source request failed", "source", src, "error", err, "request_id", c.GetString(requestIDKey))
			c.JSON(http.StatusInternalServerError, gin.H{"error": sourceErrorMessages[src]})
			return
		}

		c.JSON(http.StatusOK, q.Apply(records))
	}
}

func (s *Server) handleAll(c *gin.Context) {
	q, err := parseQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	records, err := s.records.All(c.Request.Context())
	if err != nil {
		s.logger.Error("aggregate request failed", "error", err, "request_id", c.GetString(requestIDKey))
		c.JSON(http.StatusInternalServerError, gin.H{"error": aggregateErrorMessage})
		return
	}

	c.JSON(http.StatusOK, q.Apply(records))
}

func (s *Server) handleMarker(c *gin.Context) {
	src, err := domain.ParseSource(c.Param("source"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "marker not found"})
		return
	}
	kind, err := domain.ParseKind(c.Param("kind"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "marker not found"})
		return
	}

	svg, err := s.markers.Render(src, kind)
	if errors.Is(err, markers.ErrUnknownMarker) {
		c.JSON(http.StatusNotFound, gin.H{"error": "marker not found"})
		return
	}
	if err != nil {
		s.logger.Error("marker render failed", "source", src, "kind", kind, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error rendering marker"})
		return
	}

	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, markers.ContentType, svg)
}

// parseQuery reads the optional listing parameters: sources, q, sort, order.
func parseQuery(c *gin.Context) (domain.Query, error) {
	var q domain.Query

	if raw, ok := c.GetQuery("sources"); ok {
		q.Filter = domain.FilterState{}
		for _, name := range strings.Split(raw, ",") {
			src, err := domain.ParseSource(strings.TrimSpace(name))
			if err != nil {
				return q, fmt.Errorf("invalid sources parameter: %q", name)
			}
			q.Filter[src] = true
		}
	}

	q.Text = c.Query("q")

	field, err := domain.ParseSortField(c.Query("sort"))
	if err != nil {
		return q, fmt.Errorf("invalid sort parameter: %q", c.Query("sort"))
	}
	q.Sort = field

	switch order := c.Query("order"); order {
	case "", "asc":
	case "desc":
		q.Descending = true
	default:
		return q, fmt.Errorf("invalid order parameter: %q", order)
	}

	return q, nil
}

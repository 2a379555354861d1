package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"newsdigest/internal/domain"
	"newsdigest/internal/tools"
)

type errorBody struct {
	Status  string              `json:"status"`
	Message string              `json:"message"`
	Errors  []domain.FieldError `json:"errors,omitempty"`
}

type dailyDigestView struct {
	ID          int64           `json:"id"`
	MissionID   string          `json:"mission_id"`
	Date        string          `json:"date"`
	Content     json.RawMessage `json:"content"`
	GeneratedAt time.Time       `json:"generated_at"`
	Posted      bool            `json:"posted"`
}

type weeklyDigestView struct {
	ID          int64           `json:"id"`
	MissionID   string          `json:"mission_id"`
	WeekStart   string          `json:"week_start"`
	WeekEnd     string          `json:"week_end"`
	Content     json.RawMessage `json:"content"`
	Params      json.RawMessage `json:"params,omitempty"`
	IsStandard  bool            `json:"is_standard"`
	GeneratedAt time.Time       `json:"generated_at"`
	Posted      bool            `json:"posted"`
}

func (s *Server) listTools(c echo.Context) error {
	list := s.tools.List()
	return c.JSON(http.StatusOK, map[string]any{"tools": list, "count": len(list)})
}

func (s *Server) callTool(c echo.Context) error {
	args, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return s.fail(c, domain.NewValidationError("arguments", "unreadable body: %v", err))
	}
	result, err := s.tools.Call(c.Request().Context(), c.Param("name"), args)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

func (s *Server) latestDaily(c echo.Context) error {
	d, err := s.feed.LatestDaily(c.Request().Context(), c.Param("mission"))
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, dailyView(d))
}

func (s *Server) dailyByDate(c echo.Context) error {
	d, err := s.feed.DailyByDate(c.Request().Context(), c.Param("mission"), c.Param("date"))
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, dailyView(d))
}

func (s *Server) latestWeekly(c echo.Context) error {
	standardOnly := false
	if raw := c.QueryParam("standard_only"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return s.fail(c, domain.NewValidationError("standard_only", "must be a boolean, got %q", raw))
		}
		standardOnly = v
	}

	d, err := s.feed.LatestWeekly(c.Request().Context(), c.Param("mission"), standardOnly)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, weeklyDigestView{
		ID:          d.ID,
		MissionID:   d.MissionID,
		WeekStart:   d.WeekStart.Format(domain.DateLayout),
		WeekEnd:     d.WeekEnd.Format(domain.DateLayout),
		Content:     d.Content,
		Params:      d.Params,
		IsStandard:  d.IsStandard,
		GeneratedAt: d.GeneratedAt,
		Posted:      d.Posted,
	})
}

func (s *Server) markDailyPosted(c echo.Context) error {
	id, err := digestID(c)
	if err != nil {
		return s.fail(c, err)
	}
	if err := s.feed.MarkDailyPosted(c.Request().Context(), id); err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"status": "success", "id": id})
}

func (s *Server) markWeeklyPosted(c echo.Context) error {
	id, err := digestID(c)
	if err != nil {
		return s.fail(c, err)
	}
	if err := s.feed.MarkWeeklyPosted(c.Request().Context(), id); err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"status": "success", "id": id})
}

// fail maps engine errors onto status codes. Validation failures carry every
// failing field so the caller can fix and resubmit.
func (s *Server) fail(c echo.Context, err error) error {
	if ve, ok := domain.AsValidationError(err); ok {
		return c.JSON(http.StatusUnprocessableEntity, errorBody{
			Status:  "error",
			Message: "Validation failed. Please fix the errors and resubmit.",
			Errors:  ve.Errors,
		})
	}

	switch {
	case errors.Is(err, tools.ErrUnknownTool),
		errors.Is(err, domain.ErrUnknownMission),
		errors.Is(err, domain.ErrNotFound):
		return c.JSON(http.StatusNotFound, errorBody{Status: "error", Message: err.Error()})
	}

	s.logger.ErrorContext(c.Request().Context(), "request failed",
		"method", c.Request().Method,
		"path", c.Path(),
		"error", err)
	return c.JSON(http.StatusInternalServerError, errorBody{Status: "error", Message: "internal error"})
}

func digestID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError("id", "must be a positive integer, got %q", c.Param("id"))
	}
	return id, nil
}

func dailyView(d domain.DailyDigest) dailyDigestView {
	return dailyDigestView{
		ID:          d.ID,
		MissionID:   d.MissionID,
		Date:        d.Date.Format(domain.DateLayout),
		Content:     d.Content,
		GeneratedAt: d.GeneratedAt,
		Posted:      d.Posted,
	}
}

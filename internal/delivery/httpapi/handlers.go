package httpapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/samber/lo"

	"github.com/aliskhannn/revisit/internal/domain/entities"
	"github.com/aliskhannn/revisit/internal/service"
)

type handlers struct {
	svc Services
}

func (h *handlers) register(g *echo.Group) {
	g.POST("/problems", h.createProblem)
	g.GET("/problems", h.listProblems)
	g.GET("/problems/:id", h.getProblem)
	g.PATCH("/problems/:id", h.updateProblem)
	g.DELETE("/problems/:id", h.deleteProblem)
	g.PUT("/problems/:id/practice", h.submitPractice)

	g.POST("/reminders", h.createReminder)
	g.GET("/reminders", h.listReminders)
	g.GET("/reminders/:id", h.getReminder)
	g.DELETE("/reminders/:id", h.deleteReminder)
	g.PUT("/reminders/:id/completion", h.setReminderCompletion)

	g.GET("/preferences", h.getPreferences)
	g.PUT("/preferences", h.updatePreferences)

	g.POST("/subscriptions", h.subscribe)
	g.GET("/subscriptions", h.listSubscriptions)
	g.DELETE("/subscriptions/:id", h.unsubscribe)
}

// POST /api/v1/problems
func (h *handlers) createProblem(c echo.Context) error {
	var req problemRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	solved, err := parseDate("date_solved", req.DateSolved)
	if err != nil {
		return err
	}

	reminders := make([]time.Time, 0, len(req.Reminders))
	for _, s := range req.Reminders {
		t, err := parseDateTime("reminders", s)
		if err != nil {
			return err
		}
		reminders = append(reminders, t)
	}

	p, rs, err := h.svc.Problems.Create(c.Request().Context(), userID(c), service.CreateProblemInput{
		Name:       req.Name,
		Difficulty: req.Difficulty,
		Tags:       req.Tags,
		URL:        req.URL,
		DateSolved: solved,
		Notes:      req.Notes,
		Reminders:  reminders,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, createProblemResponse{
		Problem:   toProblemResponse(p),
		Reminders: toReminderResponses(rs),
	})
}

// GET /api/v1/problems?difficulty=&tag=&limit=&offset=
func (h *handlers) listProblems(c echo.Context) error {
	filter := entities.ProblemFilter{
		Difficulty: entities.Difficulty(c.QueryParam("difficulty")),
		Tag:        c.QueryParam("tag"),
	}
	if err := echo.QueryParamsBinder(c).
		Int("limit", &filter.Limit).
		Int("offset", &filter.Offset).
		BindError(); err != nil {
		return entities.NewValidationError("limit", "limit and offset must be integers")
	}

	problems, err := h.svc.Problems.List(c.Request().Context(), userID(c), filter)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, lo.Map(problems, func(p *entities.Problem, _ int) problemResponse {
		return toProblemResponse(p)
	}))
}

// GET /api/v1/problems/:id
func (h *handlers) getProblem(c echo.Context) error {
	p, err := h.svc.Problems.Get(c.Request().Context(), userID(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toProblemResponse(p))
}

// PATCH /api/v1/problems/:id
func (h *handlers) updateProblem(c echo.Context) error {
	var req problemPatchRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	in := service.UpdateProblemInput{
		Name:       req.Name,
		Difficulty: req.Difficulty,
		Tags:       req.Tags,
		URL:        req.URL,
		Notes:      req.Notes,
	}
	if req.DateSolved != nil {
		solved, err := parseDate("date_solved", *req.DateSolved)
		if err != nil {
			return err
		}
		in.DateSolved = &solved
	}

	p, err := h.svc.Problems.Update(c.Request().Context(), userID(c), c.Param("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toProblemResponse(p))
}

// DELETE /api/v1/problems/:id
func (h *handlers) deleteProblem(c echo.Context) error {
	if err := h.svc.Problems.Delete(c.Request().Context(), userID(c), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// PUT /api/v1/problems/:id/practice
func (h *handlers) submitPractice(c echo.Context) error {
	var req practiceRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	if req.QualityScore == nil {
		return entities.NewValidationError("quality_score", "is required")
	}

	res, err := h.svc.Feedback.SubmitFeedback(c.Request().Context(), userID(c), c.Param("id"), *req.QualityScore)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, practiceResponse{
		Problem:    toProblemResponse(res.Problem),
		NextDueAt:  res.NextDueAt,
		ReminderID: res.Reminder.ID,
	})
}

// POST /api/v1/reminders
func (h *handlers) createReminder(c echo.Context) error {
	var req reminderRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	dueAt, err := parseDateTime("due_datetime", req.DueAt)
	if err != nil {
		return err
	}

	r, err := h.svc.Reminders.Create(c.Request().Context(), userID(c), req.ProblemID, dueAt)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toReminderResponse(r))
}

// GET /api/v1/reminders?problem_id=&sent=&completed=&limit=
func (h *handlers) listReminders(c echo.Context) error {
	filter := entities.ReminderFilter{ProblemID: c.QueryParam("problem_id")}

	var err error
	if filter.Sent, err = parseOptionalBool("sent", c.QueryParam("sent")); err != nil {
		return err
	}
	if filter.Completed, err = parseOptionalBool("completed", c.QueryParam("completed")); err != nil {
		return err
	}
	if err := echo.QueryParamsBinder(c).Int("limit", &filter.Limit).BindError(); err != nil {
		return entities.NewValidationError("limit", "must be an integer")
	}

	rs, err := h.svc.Reminders.List(c.Request().Context(), userID(c), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toReminderResponses(rs))
}

// GET /api/v1/reminders/:id
func (h *handlers) getReminder(c echo.Context) error {
	r, err := h.svc.Reminders.Get(c.Request().Context(), userID(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toReminderResponse(r))
}

// DELETE /api/v1/reminders/:id
func (h *handlers) deleteReminder(c echo.Context) error {
	if err := h.svc.Reminders.Delete(c.Request().Context(), userID(c), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// PUT /api/v1/reminders/:id/completion
func (h *handlers) setReminderCompletion(c echo.Context) error {
	var req completionRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	if req.Completed == nil {
		return entities.NewValidationError("completed", "is required")
	}

	r, err := h.svc.Reminders.SetCompleted(c.Request().Context(), userID(c), c.Param("id"), *req.Completed)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toReminderResponse(r))
}

// GET /api/v1/preferences
func (h *handlers) getPreferences(c echo.Context) error {
	p, err := h.svc.Preferences.Get(c.Request().Context(), userID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, preferencesResponse{AutoReminders: p.AutoReminders, Timezone: p.Timezone})
}

// PUT /api/v1/preferences
func (h *handlers) updatePreferences(c echo.Context) error {
	var req preferencesRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	p, err := h.svc.Preferences.Update(c.Request().Context(), userID(c), service.UpdatePreferencesInput{
		AutoReminders: req.AutoReminders,
		Timezone:      req.Timezone,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, preferencesResponse{AutoReminders: p.AutoReminders, Timezone: p.Timezone})
}

// POST /api/v1/subscriptions
func (h *handlers) subscribe(c echo.Context) error {
	var req subscriptionRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	sub, err := h.svc.Subscriptions.Subscribe(c.Request().Context(), userID(c), entities.Channel(req.Channel), req.Target)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toSubscriptionResponse(sub))
}

// GET /api/v1/subscriptions
func (h *handlers) listSubscriptions(c echo.Context) error {
	subs, err := h.svc.Subscriptions.List(c.Request().Context(), userID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, lo.Map(subs, func(s *entities.Subscription, _ int) subscriptionResponse {
		return toSubscriptionResponse(s)
	}))
}

// DELETE /api/v1/subscriptions/:id
func (h *handlers) unsubscribe(c echo.Context) error {
	if err := h.svc.Subscriptions.Unsubscribe(c.Request().Context(), userID(c), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	userapp "github.com/lukian/user-api/internal/application"
	"github.com/lukian/user-api/internal/interface/http/dto"
	"github.com/lukian/user-api/pkg/response"
	"github.com/lukian/user-api/pkg/validation"
)

// UserHandler maps the /users routes onto the user service and translates
// domain failures into HTTP statuses.
type UserHandler struct {
	Svc    *userapp.Service
	Logger *logrus.Logger
}

func NewUserHandler(svc *userapp.Service, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

// Register handles POST /users.
func (h *UserHandler) Register(c *gin.Context) {
	var req dto.RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	in, err := req.ToInput()
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", map[string]string{"birth_date": "must match datetime format: " + dto.DateLayout})
		return
	}

	view, err := h.Svc.Register(c.Request.Context(), in)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, dto.FromView(view), "user registered")
}

// GetByID handles GET /users/:id.
func (h *UserHandler) GetByID(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	view, err := h.Svc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, dto.FromView(view), "user")
}

// UpdateEmail handles PATCH /users/:id.
func (h *UserHandler) UpdateEmail(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req dto.UpdateUserEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	view, err := h.Svc.UpdateEmail(c.Request.Context(), id, req.ToInput())
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, dto.FromView(view), "email updated")
}

// UpdateAll handles PUT /users/:id.
func (h *UserHandler) UpdateAll(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req dto.RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	in, err := req.ToInput()
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", map[string]string{"birth_date": "must match datetime format: " + dto.DateLayout})
		return
	}

	view, err := h.Svc.UpdateAll(c.Request.Context(), id, in)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, dto.FromView(view), "user updated")
}

// Delete handles DELETE /users/:id. Success is a bare 204.
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.Svc.Delete(c.Request.Context(), id); err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SearchByBirthDateRange handles GET /users/search?from=&to=.
func (h *UserHandler) SearchByBirthDateRange(c *gin.Context) {
	from, err := dto.ParseDate(c.Query("from"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid date range", map[string]string{"from": "must match datetime format: " + dto.DateLayout})
		return
	}
	to, err := dto.ParseDate(c.Query("to"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid date range", map[string]string{"to": "must match datetime format: " + dto.DateLayout})
		return
	}

	views, err := h.Svc.SearchByBirthDateRange(c.Request.Context(), from, to)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, dto.FromViews(views), "users")
}

// SearchProfiles handles GET /users/search/text?q=&size=.
func (h *UserHandler) SearchProfiles(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		response.Error(c, http.StatusBadRequest, "invalid query", map[string]string{"q": "is required"})
		return
	}
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))

	hits, err := h.Svc.SearchProfiles(c.Request.Context(), q, size)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, hits, "users")
}

func (h *UserHandler) pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "invalid user id", nil)
		return 0, false
	}
	return id, true
}

func (h *UserHandler) writeServiceError(c *gin.Context, err error) {
	var eligibility *userapp.EligibilityError
	switch {
	case errors.As(err, &eligibility):
		response.Error(c, http.StatusBadRequest, eligibility.Error(), nil)
	case errors.Is(err, userapp.ErrEmailTaken):
		response.Error(c, http.StatusBadRequest, userapp.ErrEmailTaken.Error(), nil)
	case errors.Is(err, userapp.ErrUserNotFound):
		response.Error(c, http.StatusNotFound, userapp.ErrUserNotFound.Error(), nil)
	default:
		if h.Logger != nil {
			h.Logger.WithError(err).Error("user request failed")
		}
		response.Error(c, http.StatusInternalServerError, "internal error", nil)
	}
}

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lumenworks/storefront/internal/app/service/project"
	"github.com/lumenworks/storefront/internal/models"
	"github.com/lumenworks/storefront/pkg/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// RespProject wraps a project row in the standard envelope.
type RespProject struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    models.Project           `json:"data"`
}

// @Summary      Get project
// @Description  Returns one project by id or project key.
// @Tags         Project
// @Produce      json
// @Param        id path string true "Project id or key"
// @Success      200  {object}  handlers.RespProject
// @Router       /api/v1/projects/{id} [get]
func ApiGetProject(projects project.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		p, err := projects.Get(c.Request.Context(), id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			p, err = projects.GetByProjectKey(c.Request.Context(), id)
		}
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "project not found"))
				return
			}
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(p))
	}
}

// @Summary      Update project
// @Description  Applies a status/steps patch through the progress state machine and returns the reconciled row.
// @Tags         Project
// @Accept       json
// @Produce      json
// @Param        id path string true "Project id"
// @Param        request body project.UpdateRequest true "Patch"
// @Success      200  {object}  handlers.RespProject
// @Router       /api/v1/projects/{id} [patch]
func ApiUpdateProject(projects project.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req project.UpdateRequest
		// decode by hand so a present-but-empty steps array is
		// distinguishable from an absent one
		var raw map[string]json.RawMessage
		if err := c.ShouldBindJSON(&raw); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		buf, _ := json.Marshal(raw)
		if err := json.Unmarshal(buf, &req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		_, req.StepsSet = raw["steps"]

		p, err := projects.Update(c.Request.Context(), c.Param("id"), &req)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "project not found"))
				return
			}
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(p))
	}
}

func RegisterProjectRoutes(r gin.IRouter, deps RouteDeps) {
	r.GET("/projects/:id", ApiGetProject(deps.Projects))
	r.PATCH("/projects/:id", ApiUpdateProject(deps.Projects))
}

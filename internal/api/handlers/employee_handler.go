package handlers

import (
	"net/http"

	"github.com/andresuchdata/eximdesk/internal/domain"
	"github.com/andresuchdata/eximdesk/internal/service"
	"github.com/gin-gonic/gin"
)

type EmployeeHandler struct {
	service *service.EmployeeService
}

func NewEmployeeHandler(service *service.EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{service: service}
}

func (h *EmployeeHandler) List(c *gin.Context) {
	employees, total, err := h.service.List(c.Request.Context(), parseListFilter(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listResponse{Items: employees, Total: total})
}

func (h *EmployeeHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	employee, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, employee)
}

func (h *EmployeeHandler) Create(c *gin.Context) {
	var employee domain.Employee
	if !bindJSON(c, &employee) {
		return
	}

	created, err := h.service.Create(c.Request.Context(), &employee)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *EmployeeHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var employee domain.Employee
	if !bindJSON(c, &employee) {
		return
	}

	updated, err := h.service.Update(c.Request.Context(), id, &employee)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *EmployeeHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

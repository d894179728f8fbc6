package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/section-portal-api/internal/service"
	"github.com/noah-isme/section-portal-api/pkg/response"
)

// ReportHandler exposes PDF exports.
type ReportHandler struct {
	reports *service.ReportService
}

// NewReportHandler constructs ReportHandler.
func NewReportHandler(reports *service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// AttendanceRegister godoc
// @Summary Download the attendance register as PDF
// @Tags Reports
// @Produce application/pdf
// @Param subject query string false "Restrict the register to one subject"
// @Success 200 {file} binary
// @Router /courses/{course}/years/{year}/sections/{section}/reports/attendance [get]
func (h *ReportHandler) AttendanceRegister(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	scope := scopeFrom(c)
	pdf, err := h.reports.AttendanceRegister(actor, scope, c.Query("subject"))
	if err != nil {
		response.Error(c, err)
		return
	}
	filename := fmt.Sprintf("attendance_%s_%s_%s.pdf", scope.Course, scope.Year, scope.Section)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

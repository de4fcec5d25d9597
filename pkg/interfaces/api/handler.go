package api

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vsinha/methodtree/pkg/application/services/methodview"
	"github.com/vsinha/methodtree/pkg/domain/entities"
	"github.com/vsinha/methodtree/pkg/domain/repositories"
	"github.com/vsinha/methodtree/pkg/domain/services"
	"github.com/vsinha/methodtree/pkg/interfaces/cli/output"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// MethodHandler serves BOM and routing views
type MethodHandler struct {
	svc             *methodview.MethodViewService
	defaultQuantity float64
	logger          *zap.Logger
}

// NewMethodHandler creates a method handler. defaultQuantity is used when a
// routing request has no quantity parameter.
func NewMethodHandler(svc *methodview.MethodViewService, defaultQuantity float64, logger *zap.Logger) *MethodHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MethodHandler{svc: svc, defaultQuantity: defaultQuantity, logger: logger}
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
}

func fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: message})
}

// failFor maps engine and repository errors onto status codes
func failFor(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repositories.ErrMethodNotFound):
		fail(c, http.StatusNotFound, err.Error())
	case errors.Is(err, repositories.ErrUnknownDomain),
		errors.Is(err, services.ErrCyclicTree),
		errors.Is(err, services.ErrMaxDepthExceeded):
		fail(c, http.StatusBadRequest, err.Error())
	default:
		fail(c, http.StatusInternalServerError, err.Error())
	}
}

// BOMFromTree flattens a method tree posted as JSON
func (h *MethodHandler) BOMFromTree(c *gin.Context) {
	var root entities.MethodNode
	if err := c.ShouldBindJSON(&root); err != nil {
		fail(c, http.StatusBadRequest, "invalid method tree: "+err.Error())
		return
	}

	view, err := methodview.BuildBOMView(&root)
	if err != nil {
		failFor(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// RoutingFromTree computes operation durations for a method tree posted as JSON
func (h *MethodHandler) RoutingFromTree(c *gin.Context) {
	quantity, ok := h.quantity(c)
	if !ok {
		return
	}

	var root entities.MethodNode
	if err := c.ShouldBindJSON(&root); err != nil {
		fail(c, http.StatusBadRequest, "invalid method tree: "+err.Error())
		return
	}

	view, err := methodview.BuildRoutingView(&root, quantity)
	if err != nil {
		failFor(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// MethodBOM returns the BOM view of a stored make method
func (h *MethodHandler) MethodBOM(c *gin.Context) {
	domain, ok := h.domain(c)
	if !ok {
		return
	}

	view, err := h.svc.BOMView(c.Request.Context(), domain, c.Param("id"))
	if err != nil {
		failFor(c, err)
		return
	}

	if c.Query("format") == output.FormatXLSX {
		f, err := output.NewBOMWorkbook(view)
		if err != nil {
			failFor(c, err)
			return
		}
		defer f.Close()
		h.attachment(c, view.MakeMethodID+"_bom.xlsx")
		if err := f.Write(c.Writer); err != nil {
			h.logger.Error("failed to write workbook", zap.Error(err))
		}
		return
	}
	c.JSON(http.StatusOK, view)
}

// MethodRouting returns the routing view of a stored make method
func (h *MethodHandler) MethodRouting(c *gin.Context) {
	domain, ok := h.domain(c)
	if !ok {
		return
	}
	quantity, ok := h.quantity(c)
	if !ok {
		return
	}

	view, err := h.svc.RoutingView(c.Request.Context(), domain, c.Param("id"), quantity)
	if err != nil {
		failFor(c, err)
		return
	}

	if c.Query("format") == output.FormatXLSX {
		f, err := output.NewRoutingWorkbook(view)
		if err != nil {
			failFor(c, err)
			return
		}
		defer f.Close()
		h.attachment(c, view.MakeMethodID+"_routing.xlsx")
		if err := f.Write(c.Writer); err != nil {
			h.logger.Error("failed to write workbook", zap.Error(err))
		}
		return
	}
	c.JSON(http.StatusOK, view)
}

// Validate checks the stored rows of a domain
func (h *MethodHandler) Validate(c *gin.Context) {
	domain, ok := h.domain(c)
	if !ok {
		return
	}

	result, err := h.svc.Validate(c.Request.Context(), domain)
	if err != nil {
		failFor(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"valid":           result.IsValid(),
		"errors":          result.Errors,
		"cyclePaths":      result.CyclePaths,
		"duplicateIds":    result.DuplicateIDs,
		"negativeQtyRows": result.NegativeQtyRows,
	})
}

func (h *MethodHandler) domain(c *gin.Context) (entities.MethodDomain, bool) {
	domain, err := entities.ParseMethodDomain(c.Param("domain"))
	if err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return "", false
	}
	return domain, true
}

// quantity reads ?quantity=, rejecting values that are not finite numbers
func (h *MethodHandler) quantity(c *gin.Context) (float64, bool) {
	raw := c.Query("quantity")
	if raw == "" {
		return h.defaultQuantity, true
	}

	quantity, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsInf(quantity, 0) || math.IsNaN(quantity) {
		fail(c, http.StatusBadRequest, "invalid quantity: "+raw)
		return 0, false
	}
	return quantity, true
}

func (h *MethodHandler) attachment(c *gin.Context, filename string) {
	c.Header("Content-Type", xlsxContentType)
	c.Header("Content-Disposition", "attachment; filename=\""+filename+"\"")
	c.Header("Content-Transfer-Encoding", "binary")
}

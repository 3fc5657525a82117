package server

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ginjaninja78/order-settlement-reconciler/internal/config"
	"github.com/ginjaninja78/order-settlement-reconciler/internal/pipeline"
	"github.com/ginjaninja78/order-settlement-reconciler/internal/report"
	"github.com/ginjaninja78/order-settlement-reconciler/internal/schema"
	"github.com/ginjaninja78/order-settlement-reconciler/internal/source"
	"github.com/ginjaninja78/order-settlement-reconciler/internal/types"
	"github.com/ginjaninja78/order-settlement-reconciler/internal/validation"
	"github.com/ginjaninja78/order-settlement-reconciler/pkg/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Form field names of the upload.
const (
	fieldSeller     = "seller"
	fieldPacked     = "packed"
	fieldRT         = "rt"
	fieldRTO        = "rto"
	fieldCost       = "cost"
	fieldSettlement = "settlement"
)

// Handler serves the API routes.
type Handler struct {
	cfg     *config.MainConfig
	aliases schema.AliasSet
	log     pipeline.Logger
	version string
}

// NewHandler creates the API handler.
func NewHandler(cfg *config.MainConfig, aliases schema.AliasSet, log pipeline.Logger, version string) *Handler {
	if log == nil {
		log = pipeline.NopLogger{}
	}
	return &Handler{cfg: cfg, aliases: aliases, log: log, version: version}
}

// RegisterRoutes registers the API routes on router.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/health", h.Health)
	router.POST("/reconcile", h.Reconcile)
	router.POST("/validate", h.Validate)
}

// errorBody is the JSON error response.
type errorBody struct {
	Code    string        `json:"code"`
	Message string        `json:"message"`
	Issues  []types.Issue `json:"issues,omitempty"`
}

// Health reports liveness.
// GET /api/health
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": h.version})
}

// Reconcile runs the pipeline on the uploaded files and returns the workbook.
// POST /api/reconcile
func (h *Handler) Reconcile(c *gin.Context) {
	in, ok := h.readInputs(c)
	if !ok {
		return
	}

	out := pipeline.Run(in, pipeline.Options{Aliases: h.aliases, Logger: h.log})

	if out.SellerErr != nil || out.CatalogFailed() {
		c.JSON(http.StatusUnprocessableEntity, errorBody{
			Code:    "catalog_failed",
			Message: "the seller listing could not be used, fix it and upload again",
			Issues:  out.Issues,
		})
		return
	}

	var buf bytes.Buffer
	if err := report.WriteWorkbook(&buf, out.Sheets()); err != nil {
		h.log.Error("Failed to write workbook for run %s: %v", out.RunID, err)
		c.JSON(http.StatusInternalServerError, errorBody{Code: "write_failed", Message: err.Error()})
		return
	}

	name := utils.GenerateOutputFileName(h.cfg.OutputNameFormat, out.RunID, time.Now())
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Header("X-Run-Id", out.RunID.String())
	c.Header("X-Run-Issues", strconv.Itoa(len(out.Issues)))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// Validate runs the pre-flight check on the uploaded files.
// POST /api/validate
func (h *Handler) Validate(c *gin.Context) {
	in, ok := h.readInputs(c)
	if !ok {
		return
	}

	inputs := []validation.Input{
		{Role: validation.RoleSeller, Source: in.Seller},
		{Role: validation.RolePacked, Source: in.Packed},
		{Role: validation.RoleRT, Source: in.RT},
		{Role: validation.RoleRTO, Source: in.RTO},
		{Role: validation.RoleCost, Source: in.Cost},
	}
	for _, s := range in.Settlements {
		inputs = append(inputs, validation.Input{Role: validation.RoleSettlement, Source: s})
	}

	c.JSON(http.StatusOK, validation.Validate(inputs, h.aliases))
}

// =============================================================================
// UPLOAD HANDLING
// =============================================================================

// readInputs turns the multipart form into pipeline inputs. It writes the
// error response itself and returns false when the request is unusable.
func (h *Handler) readInputs(c *gin.Context) (pipeline.Inputs, bool) {
	limit := int64(h.cfg.Server.MaxUploadMB) << 20
	if limit > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, errorBody{Code: "invalid_form", Message: fmt.Sprintf("invalid multipart form: %v", err)})
		return pipeline.Inputs{}, false
	}

	var in pipeline.Inputs
	one := func(field string) (source.TabularSource, error) {
		files := form.File[field]
		if len(files) == 0 {
			return nil, nil
		}
		return h.upload(files[0])
	}

	if in.Seller, err = one(fieldSeller); err == nil && in.Seller == nil {
		c.JSON(http.StatusBadRequest, errorBody{Code: "missing_seller", Message: "the seller listing file is required"})
		return pipeline.Inputs{}, false
	}
	if err == nil {
		in.Packed, err = one(fieldPacked)
	}
	if err == nil {
		in.RT, err = one(fieldRT)
	}
	if err == nil {
		in.RTO, err = one(fieldRTO)
	}
	if err == nil {
		in.Cost, err = one(fieldCost)
	}
	if err == nil {
		for _, fh := range form.File[fieldSettlement] {
			var s source.TabularSource
			if s, err = h.upload(fh); err != nil {
				break
			}
			in.Settlements = append(in.Settlements, s)
		}
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, errorBody{Code: "invalid_upload", Message: err.Error()})
		return pipeline.Inputs{}, false
	}

	return in, true
}

// upload reads one uploaded file into an in-memory source.
func (h *Handler) upload(fh *multipart.FileHeader) (source.TabularSource, error) {
	if !source.Supported(fh.Filename) {
		return nil, fmt.Errorf("%s: %w", fh.Filename, source.ErrUnsupportedFormat)
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload %s: %w", fh.Filename, err)
	}
	return source.NewBytes(fh.Filename, data, h.cfg.CSVSettings), nil
}

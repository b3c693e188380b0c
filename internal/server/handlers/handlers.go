// Package handlers implements the HTTP API: upload an inventory file,
// preview it, validate it and download the anomaly report.
package handlers

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Kolique/controle-tele/internal/config"
	"github.com/Kolique/controle-tele/internal/engine"
	"github.com/Kolique/controle-tele/internal/exporter"
	"github.com/Kolique/controle-tele/internal/ingest"
	"github.com/Kolique/controle-tele/internal/model"
	"github.com/Kolique/controle-tele/internal/store"
)

// Handlers carries the API dependencies plus the per-upload session cache.
// Sessions hold the parsed inventory and, after validation, the report;
// they are rebuilt from the persisted payload after a restart.
type Handlers struct {
	cfg      *config.AppConfig
	log      *zap.Logger
	store    *store.Store
	engine   *engine.Validator
	exporter *exporter.Exporter

	sessions   map[string]*session
	sessionsMu sync.RWMutex
}

type session struct {
	result *ingest.Result
	report *model.Report
}

// NewHandlers creates the API handlers.
func NewHandlers(cfg *config.AppConfig, log *zap.Logger, st *store.Store) *Handlers {
	return &Handlers{
		cfg:      cfg,
		log:      log,
		store:    st,
		engine:   engine.New(),
		exporter: exporter.New(),
		sessions: make(map[string]*session),
	}
}

// Response is the JSON envelope every endpoint answers with.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

func errorResponse(c *gin.Context, code int, message string) {
	c.JSON(http.StatusOK, Response{
		Code:    code,
		Message: message,
	})
}

// RegisterRoutes mounts the API under the given group.
func (h *Handlers) RegisterRoutes(api *gin.RouterGroup) {
	api.POST("/uploads", h.UploadFile)
	api.GET("/uploads", h.ListUploads)
	api.GET("/uploads/:id/preview", h.Preview)
	api.POST("/uploads/:id/validate", h.Validate)
	api.GET("/uploads/:id/download", h.Download)
	api.DELETE("/uploads/:id", h.DeleteUpload)
}

// UploadFile receives a CSV or XLSX inventory, parses it and persists the
// raw payload so the upload survives a restart.
func (h *Handlers) UploadFile(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		errorResponse(c, 1001, "veuillez joindre un fichier")
		return
	}
	defer file.Close()

	maxSize := int64(h.cfg.Upload.MaxSizeMB) * 1024 * 1024
	if header.Size > maxSize {
		errorResponse(c, 1003, fmt.Sprintf("fichier trop volumineux (maximum %d Mo)", h.cfg.Upload.MaxSizeMB))
		return
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext != ".csv" && ext != ".xlsx" && ext != ".xls" {
		errorResponse(c, 1002, "formats acceptés: .csv, .xlsx, .xls")
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		errorResponse(c, 1002, "lecture du fichier impossible")
		return
	}

	res, err := ingest.Parse(header.Filename, content)
	if err != nil {
		errorResponse(c, 1002, "analyse du fichier impossible: "+err.Error())
		return
	}

	id := uuid.New().String()
	if err := h.store.SaveUpload(id, header.Filename, content); err != nil {
		h.log.Error("save upload", zap.String("id", id), zap.Error(err))
		errorResponse(c, 4001, "enregistrement du fichier impossible")
		return
	}

	h.sessionsMu.Lock()
	h.sessions[id] = &session{result: res}
	h.sessionsMu.Unlock()

	h.log.Info("upload received",
		zap.String("id", id),
		zap.String("filename", header.Filename),
		zap.Int64("size", header.Size),
		zap.Int("records", len(res.Inventory.Records)),
	)

	success(c, gin.H{
		"uploadId":     id,
		"filename":     header.Filename,
		"size":         header.Size,
		"totalRecords": len(res.Inventory.Records),
		"columns":      res.Inventory.Columns,
		"header":       res.Inventory.Header,
		"delimiter":    delimiterString(res.Delimiter),
		"sheet":        res.Sheet,
	})
}

// ListUploads returns the persisted uploads, newest first.
func (h *Handlers) ListUploads(c *gin.Context) {
	uploads, err := h.store.ListUploads()
	if err != nil {
		h.log.Error("list uploads", zap.Error(err))
		errorResponse(c, 4001, "lecture des fichiers impossible")
		return
	}
	if uploads == nil {
		uploads = []store.Upload{}
	}
	success(c, gin.H{"uploads": uploads})
}

// Preview returns the first rows of an upload with the anomaly kinds each
// row would raise, without running a full validation pass.
func (h *Handlers) Preview(c *gin.Context) {
	sess, ok := h.session(c.Param("id"))
	if !ok {
		errorResponse(c, 2001, "fichier inconnu ou expiré")
		return
	}

	rows := h.cfg.Upload.PreviewRows
	if v, err := strconv.Atoi(c.DefaultQuery("rows", "")); err == nil && v > 0 {
		rows = v
	}

	inv := sess.result.Inventory
	if rows > len(inv.Records) {
		rows = len(inv.Records)
	}

	type previewRow struct {
		Record model.Record       `json:"record"`
		Kinds  []model.AnomalyKind `json:"kinds"`
	}
	preview := make([]previewRow, 0, rows)
	for i := 0; i < rows; i++ {
		rec := inv.Records[i]
		preview = append(preview, previewRow{
			Record: rec,
			Kinds:  h.engine.Evaluate(&rec),
		})
	}

	success(c, gin.H{
		"filename":     inv.Filename,
		"header":       inv.Header,
		"totalRecords": len(inv.Records),
		"rows":         preview,
	})
}

// Validate runs the full validation pass and returns the report summary.
func (h *Handlers) Validate(c *gin.Context) {
	id := c.Param("id")
	sess, ok := h.session(id)
	if !ok {
		errorResponse(c, 2001, "fichier inconnu ou expiré")
		return
	}

	report, err := h.engine.Validate(sess.result.Inventory)
	if err != nil {
		errorResponse(c, 3001, err.Error())
		return
	}

	h.sessionsMu.Lock()
	sess.report = report
	h.sessionsMu.Unlock()

	h.log.Info("validation done",
		zap.String("id", id),
		zap.Int("records", report.TotalRecords),
		zap.Int("anomalous", len(report.Anomalous)),
	)

	success(c, gin.H{
		"uploadId":      id,
		"totalRecords":  report.TotalRecords,
		"anomalousRows": len(report.Anomalous),
		"counts":        report.Counts,
	})
}

// Download streams the anomaly report, XLSX by default or CSV on
// ?format=csv. Validation runs first when it has not been requested yet.
func (h *Handlers) Download(c *gin.Context) {
	id := c.Param("id")
	sess, ok := h.session(id)
	if !ok {
		errorResponse(c, 2001, "fichier inconnu ou expiré")
		return
	}

	report := sess.report
	if report == nil {
		var err error
		report, err = h.engine.Validate(sess.result.Inventory)
		if err != nil {
			errorResponse(c, 3001, err.Error())
			return
		}
		h.sessionsMu.Lock()
		sess.report = report
		h.sessionsMu.Unlock()
	}

	base := strings.TrimSuffix(sess.result.Inventory.Filename, filepath.Ext(sess.result.Inventory.Filename))
	switch strings.ToLower(c.DefaultQuery("format", "xlsx")) {
	case "csv":
		out, err := h.exporter.ExportCSV(sess.result.Inventory, report, sess.result.Delimiter)
		if err != nil {
			h.log.Error("export csv", zap.String("id", id), zap.Error(err))
			errorResponse(c, 3001, "génération du rapport impossible")
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s_anomalies.csv", base))
		c.Data(http.StatusOK, "text/csv; charset=utf-8", out)

	case "xlsx":
		f, err := h.exporter.ExportXLSX(sess.result.Inventory, report)
		if err != nil {
			h.log.Error("export xlsx", zap.String("id", id), zap.Error(err))
			errorResponse(c, 3001, "génération du rapport impossible")
			return
		}
		defer f.Close()

		var buf bytes.Buffer
		if err := f.Write(&buf); err != nil {
			errorResponse(c, 3001, "génération du rapport impossible")
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s_anomalies.xlsx", base))
		c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())

	default:
		errorResponse(c, 1001, "format inconnu (csv ou xlsx)")
	}
}

// DeleteUpload drops an upload from the cache and the database.
func (h *Handlers) DeleteUpload(c *gin.Context) {
	id := c.Param("id")

	h.sessionsMu.Lock()
	delete(h.sessions, id)
	h.sessionsMu.Unlock()

	if err := h.store.DeleteUpload(id); err != nil {
		h.log.Error("delete upload", zap.String("id", id), zap.Error(err))
		errorResponse(c, 4001, "suppression impossible")
		return
	}
	success(c, gin.H{"deleted": true})
}

// session returns the cached session for an id, re-parsing the persisted
// payload when the cache was lost to a restart.
func (h *Handlers) session(id string) (*session, bool) {
	h.sessionsMu.RLock()
	sess, ok := h.sessions[id]
	h.sessionsMu.RUnlock()
	if ok {
		return sess, true
	}

	up, err := h.store.GetUpload(id)
	if err != nil || up == nil {
		return nil, false
	}
	res, err := ingest.Parse(up.Filename, up.Payload)
	if err != nil {
		h.log.Warn("reparse persisted upload", zap.String("id", id), zap.Error(err))
		return nil, false
	}

	sess = &session{result: res}
	h.sessionsMu.Lock()
	h.sessions[id] = sess
	h.sessionsMu.Unlock()
	return sess, true
}

func delimiterString(d rune) string {
	if d == 0 {
		return ""
	}
	return string(d)
}

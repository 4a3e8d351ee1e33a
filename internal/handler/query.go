package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/logbot/logbot/internal/logstore"
	"github.com/logbot/logbot/internal/models"
	"github.com/logbot/logbot/internal/security"
)

// QueryHandler handles direct SQL query execution
type QueryHandler struct {
	store       logstore.Executor
	sqlVal      *security.SQLValidator
	dataMasker  *security.DataMasker
	auditLogger *security.AuditLogger
	enableMask  bool
}

func NewQueryHandler(
	store logstore.Executor,
	sqlVal *security.SQLValidator,
	dataMasker *security.DataMasker,
	auditLogger *security.AuditLogger,
	enableMask bool,
) *QueryHandler {
	return &QueryHandler{
		store:       store,
		sqlVal:      sqlVal,
		dataMasker:  dataMasker,
		auditLogger: auditLogger,
		enableMask:  enableMask,
	}
}

// Execute handles POST /api/v1/query
func (h *QueryHandler) Execute(w http.ResponseWriter, r *http.Request) {
	var req models.QueryRequest
	if err := models.DecodeJSON(w, r, &req); err != nil {
		models.WriteError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	req.SetDefaults()

	if errMsg := h.sqlVal.Validate(req.SQL); errMsg != "" {
		models.WriteError(w, http.StatusBadRequest, "SQL validation failed: "+errMsg)
		return
	}

	clientKey := security.ClientKey(r.Context())
	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(req.TimeoutMs)*time.Millisecond)
	defer cancel()

	start := time.Now()
	result, err := h.store.Execute(ctx, logstore.SQLQuery(req.SQL))
	execMs := time.Since(start).Milliseconds()
	if err != nil {
		h.auditLogger.LogQuery(req.SQL, clientKey, execMs, 0, false, err.Error())
		models.WriteError(w, http.StatusUnprocessableEntity, "query execution failed: "+err.Error())
		return
	}

	var masked []string
	if h.enableMask {
		result, masked = h.dataMasker.MaskResult(result)
	}

	h.auditLogger.LogQuery(req.SQL, clientKey, execMs, result.Len(), true, "")

	models.WriteJSON(w, http.StatusOK, models.NewQueryResponse(result, models.QueryMetadata{
		Dialect:         h.store.Dialect(),
		ExecutionTimeMs: execMs,
		MaskedColumns:   masked,
	}))
}

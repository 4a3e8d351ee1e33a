package handler

import (
	"net/http"

	"github.com/logbot/logbot/internal/logschema"
	"github.com/logbot/logbot/internal/models"
)

// SchemaHandler describes the log tables questions are answered from.
type SchemaHandler struct {
	resp models.SchemaResponse
}

func NewSchemaHandler(schema *logschema.Schema) *SchemaHandler {
	resp := models.SchemaResponse{
		Status:      "success",
		Description: schema.Describe(),
		JoinKey:     logschema.JoinKey,
	}
	for _, t := range schema.Tables() {
		info := models.TableInfo{Name: t.Name}
		for _, c := range t.Columns {
			info.Columns = append(info.Columns, models.ColumnInfo{Name: c.Name, Type: string(c.Type)})
		}
		resp.Tables = append(resp.Tables, info)
	}
	return &SchemaHandler{resp: resp}
}

// Schema handles GET /api/v1/schema
func (h *SchemaHandler) Schema(w http.ResponseWriter, r *http.Request) {
	models.WriteJSON(w, http.StatusOK, h.resp)
}

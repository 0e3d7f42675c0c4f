package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"liyu1981.xyz/energy-dashboard-service/pkg/ingest"
)

// Import runs an ingestion synchronously: POST /api/admin/import?kind=nilm|pv|all
func (rs *RestfulServer) Import(c *gin.Context) {
	kinds, err := ingest.ParseKinds(c.DefaultQuery("kind", ingest.KindAll), true)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "kind must be one of nilm, pv, all"})
		return
	}

	reports := make([]*ingest.Report, 0, len(kinds))
	for _, k := range kinds {
		var report *ingest.Report
		if k == ingest.KindNILM {
			report, err = rs.Importer.ImportNILM(c.Request.Context(), rs.Imports.NILMDir)
		} else {
			report, err = rs.Importer.ImportPV(c.Request.Context(), rs.Imports.PVCSV)
		}

		if errors.Is(err, ingest.ErrRunInProgress) {
			c.JSON(http.StatusConflict, gin.H{"success": false, "error": "An import is already running"})
			return
		}
		if err != nil {
			fail(c, "importing "+string(k)+" data", err)
			return
		}
		reports = append(reports, report)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "reports": reports})
}

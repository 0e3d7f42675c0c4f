package http

import (
	"net/http"

	z "github.com/Oudwins/zog"
	"github.com/Oudwins/zog/zhttp"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"liyu1981.xyz/energy-dashboard-service/pkg/energy"
)

// Query parameters are bound as raw strings; energy.Parse* decides what a
// value means and silently ignores what it cannot use.
type NILMQueryRequest struct {
	Building  string
	Location  string
	StartTime string
	EndTime   string
	Sort      string
	Limit     string
}

var nilmQuerySchema = z.Struct(z.Shape{
	"building":  z.String().Trim().Optional(),
	"location":  z.String().Trim().Optional(),
	"startTime": z.String().Trim().Optional(),
	"endTime":   z.String().Trim().Optional(),
	"sort":      z.String().Trim().Optional(),
	"limit":     z.String().Trim().Optional(),
})

type PVQueryRequest struct {
	StartTime string
	EndTime   string
	Sort      string
	Limit     string
}

var pvQuerySchema = z.Struct(z.Shape{
	"startTime": z.String().Trim().Optional(),
	"endTime":   z.String().Trim().Optional(),
	"sort":      z.String().Trim().Optional(),
	"limit":     z.String().Trim().Optional(),
})

func bindNILMQuery(c *gin.Context) energy.NILMParams {
	var req NILMQueryRequest
	if errs := nilmQuerySchema.Parse(zhttp.Request(c.Request), &req); errs != nil {
		serverLogger().Debug("Falling back to raw NILM query parameters", zap.Any("issues", errs))
		req = NILMQueryRequest{
			Building:  c.Query("building"),
			Location:  c.Query("location"),
			StartTime: c.Query("startTime"),
			EndTime:   c.Query("endTime"),
			Sort:      c.Query("sort"),
			Limit:     c.Query("limit"),
		}
	}
	return energy.NILMParams(req)
}

func bindPVQuery(c *gin.Context) energy.PVParams {
	var req PVQueryRequest
	if errs := pvQuerySchema.Parse(zhttp.Request(c.Request), &req); errs != nil {
		serverLogger().Debug("Falling back to raw PV query parameters", zap.Any("issues", errs))
		req = PVQueryRequest{
			StartTime: c.Query("startTime"),
			EndTime:   c.Query("endTime"),
			Sort:      c.Query("sort"),
			Limit:     c.Query("limit"),
		}
	}
	return energy.PVParams(req)
}

func (rs *RestfulServer) ListNILM(c *gin.Context) {
	q := energy.ParseNILMQuery(bindNILMQuery(c))

	records, err := rs.Energy.NILM.List(c.Request.Context(), q)
	if err != nil {
		fail(c, "fetching NILM data", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(records), "data": records})
}

func (rs *RestfulServer) NILMRange(c *gin.Context) {
	p := bindNILMQuery(c)
	filter := energy.ParseSiteFilter(p.Building, p.Location)

	res, err := rs.Energy.NILM.Range(c.Request.Context(), filter)
	if err != nil {
		fail(c, "fetching NILM range", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "count": res.Count, "range": res.Range})
}

func (rs *RestfulServer) LatestNILM(c *gin.Context) {
	p := bindNILMQuery(c)
	filter := energy.ParseSiteFilter(p.Building, p.Location)

	record, err := rs.Energy.NILM.Latest(c.Request.Context(), filter)
	if err != nil {
		fail(c, "fetching latest NILM data", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": record})
}

func (rs *RestfulServer) NILMStats(c *gin.Context) {
	stats, err := rs.Energy.NILM.Stats(c.Request.Context())
	if err != nil {
		fail(c, "fetching NILM stats", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(stats), "stats": stats})
}

func (rs *RestfulServer) NILMBreakdown(c *gin.Context) {
	sites, err := rs.Energy.NILM.Breakdown(c.Request.Context())
	if err != nil {
		fail(c, "fetching NILM breakdown", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(sites), "sites": sites})
}

func (rs *RestfulServer) ClearNILM(c *gin.Context) {
	deleted, err := rs.Energy.NILM.Clear(c.Request.Context())
	if err != nil {
		fail(c, "clearing NILM data", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "deleted": deleted})
}

func (rs *RestfulServer) ListPV(c *gin.Context) {
	q := energy.ParsePVQuery(bindPVQuery(c))

	records, err := rs.Energy.PV.List(c.Request.Context(), q)
	if err != nil {
		fail(c, "fetching PV data", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(records), "data": records})
}

func (rs *RestfulServer) LatestPV(c *gin.Context) {
	record, err := rs.Energy.PV.Latest(c.Request.Context())
	if err != nil {
		fail(c, "fetching latest PV data", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": record})
}

func (rs *RestfulServer) RandomPV(c *gin.Context) {
	record, err := rs.Energy.PV.Random(c.Request.Context())
	if err != nil {
		fail(c, "fetching random PV data", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": record})
}

func (rs *RestfulServer) ClearPV(c *gin.Context) {
	deleted, err := rs.Energy.PV.Clear(c.Request.Context())
	if err != nil {
		fail(c, "clearing PV data", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "deleted": deleted})
}

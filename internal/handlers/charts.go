package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/sinyokoene/23plusone-happiness-scan-sub000/internal/stats"
	"github.com/sinyokoene/23plusone-happiness-scan-sub000/internal/validity"
)

// ChartsHandler renders dashboard charts for the validity results.
type ChartsHandler struct {
	log     *zap.Logger
	handler *ValidityHandler
}

// NewChartsHandler shares the validity handler so charts hit the same cache.
func NewChartsHandler(log *zap.Logger, handler *ValidityHandler) *ChartsHandler {
	return &ChartsHandler{log: log, handler: handler}
}

// ROCChart handles GET /api/validity/roc-chart: the ROC curve as echarts
// line options.
func (h *ChartsHandler) ROCChart(c *gin.Context) {
	report, ok := h.analyze(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, generateROCChart(report.ROC.Points).JSON())
}

// ScatterChart handles GET /api/validity/scatter-chart: per-session score
// vs benchmark scatter options. The underlying rows are the same ones the
// per-session echo gates, so the endpoint forces that flag on for itself.
func (h *ChartsHandler) ScatterChart(c *gin.Context) {
	opts := ParseOptions(c)
	opts.IncludePerSession = true

	report, ok := h.handler.runAnalysis(c, opts)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, generateScatterChart(report.PerSession).JSON())
}

func (h *ChartsHandler) analyze(c *gin.Context) (*validity.Report, bool) {
	return h.handler.runAnalysis(c, ParseOptions(c))
}

func generateROCChart(points []stats.ROCPoint) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "ROC Curve",
			Subtitle: "Behavioral score vs high-benchmark label",
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Type: "value",
			Name: "False positive rate",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type: "value",
			Name: "True positive rate",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
	)

	items := make([]opts.LineData, 0, len(points))
	xAxis := make([]float64, 0, len(points))
	for _, p := range points {
		xAxis = append(xAxis, p.FPR)
		items = append(items, opts.LineData{Value: []interface{}{p.FPR, p.TPR}})
	}

	line.SetXAxis(xAxis).
		AddSeries("ROC", items).
		SetSeriesOptions(charts.WithLineStyleOpts(opts.LineStyle{Width: 2}))
	return line
}

func generateScatterChart(rows []validity.SessionRow) *charts.Scatter {
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title: "Score vs. Benchmark",
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Type: "value",
			Name: "behavioral score",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type: "value",
			Name: "benchmark z",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)

	items := make([]opts.ScatterData, 0, len(rows))
	for _, row := range rows {
		if row.Benchmark == nil {
			continue
		}
		items = append(items, opts.ScatterData{Value: []interface{}{row.Score, *row.Benchmark}})
	}

	scatter.AddSeries("Sessions", items)
	return scatter
}

package httptransport

import (
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"croprec/internal/analysis/visual"
	"croprec/internal/logger"
	"croprec/internal/pkg/apperr"
	"croprec/internal/report"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// 整数特征只接受整数输入，其余特征接受小数。
var integerFeatures = map[string]bool{
	"Nitrogen":   true,
	"Phosphorus": true,
	"Potassium":  true,
}

var featureHelp = map[string]string{
	"Nitrogen":    "Nitrogen content ratio in the soil (integer value).",
	"Phosphorus":  "Phosphorous content ratio in the soil (integer value).",
	"Potassium":   "Potassium content ratio in the soil (integer value).",
	"Temperature": "Soil temperature in degrees Celsius.",
	"Humidity":    "Relative humidity percentage in the field.",
	"pH_Value":    "Measure of soil acidity/alkalinity.",
	"Rainfall":    "Amount of rainfall in millimeters.",
}

var formTemplateFuncs = template.FuncMap{
	"formatDecimal": func(d decimal.Decimal) string { return d.String() },
	"formatImportance": func(v float64) string {
		return decimal.NewFromFloat(v).Round(4).StringFixed(4)
	},
}

type formField struct {
	Name  string
	Label string
	Help  string
	Step  string
	Value string
}

type formResult struct {
	Crop        string
	Inputs      []report.Field
	Importances []visual.Importance
	ReportURL   string
}

// FormHandler 渲染交互式推荐页面与报告下载。
type FormHandler struct {
	predictor Predictor
}

func NewFormHandler(p Predictor) *FormHandler {
	return &FormHandler{predictor: p}
}

func (h *FormHandler) Register(router gin.IRouter) {
	router.GET("/", h.handleIndex)
	router.POST("/", h.handleSubmit)
	router.GET("/report.csv", h.handleReport)
	router.GET("/importance.html", h.handleImportanceChart)
}

func (h *FormHandler) fields(values map[string]string) []formField {
	cols := h.predictor.Features()
	out := make([]formField, len(cols))
	for i, col := range cols {
		f := formField{Name: col, Label: col, Step: "any", Value: "0.0"}
		if integerFeatures[col] {
			f.Label = col + " (integer)"
			f.Step = "1"
			f.Value = "0"
		}
		if help, ok := featureHelp[col]; ok {
			f.Help = help
		} else {
			f.Help = fmt.Sprintf("Value of %s.", col)
		}
		if v, ok := values[col]; ok {
			f.Value = v
		}
		out[i] = f
	}
	return out
}

func (h *FormHandler) handleIndex(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{"Fields": h.fields(nil)})
}

func (h *FormHandler) handleSubmit(c *gin.Context) {
	raw := make(map[string]string)
	for _, col := range h.predictor.Features() {
		raw[col] = strings.TrimSpace(c.PostForm(col))
	}
	page := gin.H{"Fields": h.fields(raw)}

	inputs, err := parseInputs(h.predictor.Features(), raw)
	if err != nil {
		page["Error"] = err.Error()
		c.HTML(http.StatusBadRequest, "index.html", page)
		return
	}
	pred, err := h.predictor.Predict(c.Request.Context(), floats(inputs))
	if err != nil {
		logger.Warnf("form prediction failed: %v", err)
		page["Error"] = err.Error()
		c.HTML(apperr.HTTPStatus(err), "index.html", page)
		return
	}

	result := formResult{
		Crop:      fmt.Sprint(pred.Value()),
		Inputs:    inputs,
		ReportURL: "/report.csv?" + encodeQuery(inputs),
	}
	if values, ok := h.predictor.Importances(); ok {
		if ranked, err := visual.RankImportances(h.predictor.Features(), values); err == nil {
			result.Importances = ranked
		}
	}
	page["Result"] = result
	c.HTML(http.StatusOK, "index.html", page)
}

func (h *FormHandler) handleReport(c *gin.Context) {
	raw := make(map[string]string)
	for _, col := range h.predictor.Features() {
		raw[col] = strings.TrimSpace(c.Query(col))
	}
	inputs, err := parseInputs(h.predictor.Features(), raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	pred, err := h.predictor.Predict(c.Request.Context(), floats(inputs))
	if err != nil {
		writeError(c, err)
		return
	}
	rec := report.Recommendation{Inputs: inputs, Crop: fmt.Sprint(pred.Value())}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.Filename))
	c.Data(http.StatusOK, report.ContentType+"; charset=utf-8", []byte(report.BuildCSV(rec)))
}

func (h *FormHandler) handleImportanceChart(c *gin.Context) {
	values, ok := h.predictor.Importances()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "model does not expose feature importances"})
		return
	}
	ranked, err := visual.RankImportances(h.predictor.Features(), values)
	if err != nil {
		writeError(c, err)
		return
	}
	html, err := visual.RenderImportanceHTML(ranked)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", html)
}

// parseInputs 按训练列顺序解析表单值；整数特征必须为整数。
func parseInputs(columns []string, raw map[string]string) ([]report.Field, error) {
	out := make([]report.Field, len(columns))
	for i, col := range columns {
		text := raw[col]
		if text == "" {
			return nil, apperr.Validation("", fmt.Errorf("%s is required", col))
		}
		d, err := decimal.NewFromString(text)
		if err != nil {
			return nil, apperr.Validation("", fmt.Errorf("%s must be a number, got %q", col, text))
		}
		if integerFeatures[col] && !d.IsInteger() {
			return nil, apperr.Validation("", fmt.Errorf("%s must be an integer, got %s", col, d.String()))
		}
		out[i] = report.Field{Name: col, Value: d}
	}
	return out, nil
}

func floats(fields []report.Field) []float64 {
	out := make([]float64, len(fields))
	for i, f := range fields {
		out[i] = f.Value.InexactFloat64()
	}
	return out
}

func encodeQuery(fields []report.Field) string {
	q := url.Values{}
	for _, f := range fields {
		q.Set(f.Name, f.Value.String())
	}
	return q.Encode()
}

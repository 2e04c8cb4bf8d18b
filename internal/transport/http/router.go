package httptransport

import (
	"errors"
	"fmt"
	"net/http"

	"croprec/internal/pkg/apperr"

	"github.com/gin-gonic/gin"
	"github.com/tidwall/gjson"
)

const msgMissingFeatures = "Invalid input format. Provide features key."

var errMissingFeatures = errors.New(msgMissingFeatures)

// Router 暴露 JSON 推理接口。
type Router struct {
	predictor Predictor
}

func NewRouter(p Predictor) *Router {
	return &Router{predictor: p}
}

// Register 挂载 /predict 与 /api 下的只读接口。
func (r *Router) Register(router gin.IRouter) {
	if router == nil {
		return
	}
	router.POST("/predict", r.handlePredict)
	api := router.Group("/api")
	api.GET("/columns", r.handleColumns)
}

func (r *Router) handlePredict(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgMissingFeatures})
		return
	}
	features, err := parseFeatures(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	pred, err := r.predictor.Predict(c.Request.Context(), features)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"prediction": pred.Value()})
}

// parseFeatures 从 {"features": [...]} 中取出数值数组。
func parseFeatures(body []byte) ([]float64, error) {
	if len(body) == 0 || !gjson.ValidBytes(body) {
		return nil, errMissingFeatures
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return nil, errMissingFeatures
	}
	field := root.Get("features")
	if !field.Exists() {
		return nil, errMissingFeatures
	}
	if !field.IsArray() {
		return nil, fmt.Errorf("features must be an array of numbers")
	}
	items := field.Array()
	out := make([]float64, len(items))
	for i, item := range items {
		if item.Type != gjson.Number {
			return nil, fmt.Errorf("features[%d] is not a number: %s", i, item.Raw)
		}
		out[i] = item.Float()
	}
	return out, nil
}

func writeError(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError && apperr.KindOf(err) == apperr.KindUnexpected {
		msg = "An error occurred: " + msg
	}
	c.JSON(status, gin.H{"error": msg})
}

func (r *Router) handleColumns(c *gin.Context) {
	_, hasImportances := r.predictor.Importances()
	c.JSON(http.StatusOK, gin.H{
		"training_columns":    r.predictor.Features(),
		"feature_importances": hasImportances,
		"label_mapping":       r.predictor.Decodes(),
	})
}

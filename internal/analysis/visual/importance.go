// Package visual 使用 go-echarts 渲染特征重要性图表，并可借助无头浏览器导出 PNG。
package visual

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

const (
	colorBackground    = "#f4faf4"
	colorTextPrimary   = "#1b4332"
	colorTextSecondary = "#52796f"
	colorBar           = "#40916c"
	colorBarTop        = "#1b4332"

	chartWidthPx  = 760
	chartHeightPx = 420
)

// Importance 是单个特征的重要性。
type Importance struct {
	Feature string  `json:"feature"`
	Value   float64 `json:"importance"`
}

// RankImportances 按重要性降序排列；同值保持训练列顺序。
func RankImportances(features []string, values []float64) ([]Importance, error) {
	if len(features) != len(values) {
		return nil, fmt.Errorf("%d importances for %d features", len(values), len(features))
	}
	out := make([]Importance, len(features))
	for i, f := range features {
		v := values[i]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			v = 0
		}
		out[i] = Importance{Feature: f, Value: v}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Value > out[j].Value })
	return out, nil
}

// ImportanceChart 构建横向柱状图，最重要的特征位于顶部。
func ImportanceChart(ranked []Importance) (*charts.Bar, error) {
	if len(ranked) == 0 {
		return nil, fmt.Errorf("no feature importances to render")
	}
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme:           types.ThemeWesteros,
			Width:           fmt.Sprintf("%dpx", chartWidthPx),
			Height:          fmt.Sprintf("%dpx", chartHeightPx),
			BackgroundColor: colorBackground,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:      "Feature Importance",
			Left:       "center",
			TitleStyle: &opts.TextStyle{Color: colorTextPrimary, FontSize: 16},
		}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{
			Type:      "value",
			AxisLabel: &opts.AxisLabel{Color: colorTextSecondary},
			SplitLine: &opts.SplitLine{Show: opts.Bool(true), LineStyle: &opts.LineStyle{Color: colorTextSecondary, Opacity: opts.Float(0.2)}},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type:      "category",
			AxisLabel: &opts.AxisLabel{Color: colorTextPrimary},
		}),
	)

	// 横向柱状图自下而上绘制类目，因此逆序填充。
	names := make([]string, len(ranked))
	data := make([]opts.BarData, len(ranked))
	for i, imp := range ranked {
		j := len(ranked) - 1 - i
		color := colorBar
		if i == 0 {
			color = colorBarTop
		}
		names[j] = imp.Feature
		data[j] = opts.BarData{
			Name:      imp.Feature,
			Value:     round(imp.Value, 4),
			ItemStyle: &opts.ItemStyle{Color: color},
		}
	}
	bar.SetXAxis(names)
	bar.AddSeries("Importance", data)
	bar.XYReversal()
	return bar, nil
}

// RenderImportanceHTML 输出可独立打开的 HTML 页面。
func RenderImportanceHTML(ranked []Importance) ([]byte, error) {
	bar, err := ImportanceChart(ranked)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := bar.Render(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ImageResult 是导出的 PNG 图片。
type ImageResult struct {
	Bytes    []byte
	Filename string
}

// RenderImportancePNG 借助本地 Chrome 截图；没有可用浏览器时返回错误。
func RenderImportancePNG(ctx context.Context, ranked []Importance) (ImageResult, error) {
	if err := EnsureHeadlessAvailable(ctx); err != nil {
		return ImageResult{}, fmt.Errorf("headless browser unavailable: %w", err)
	}
	html, err := RenderImportanceHTML(ranked)
	if err != nil {
		return ImageResult{}, err
	}
	png, err := renderHTMLToPNG(ctx, html, chartWidthPx+40, chartHeightPx+40)
	if err != nil {
		return ImageResult{}, err
	}
	return ImageResult{
		Bytes:    png,
		Filename: "feature_importance.png",
	}, nil
}

var (
	headlessOnce sync.Once
	headlessErr  error
)

func EnsureHeadlessAvailable(ctx context.Context) error {
	headlessOnce.Do(func() {
		if ctx == nil {
			ctx = context.Background()
		}
		parent, cancel := chromedp.NewContext(ctx)
		defer cancel()
		headlessErr = chromedp.Run(parent)
	})
	return headlessErr
}

func renderHTMLToPNG(ctx context.Context, html []byte, width, height int) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	parent, cancel := chromedp.NewContext(ctx)
	defer cancel()

	timeoutCtx, cancelTimeout := context.WithTimeout(parent, 20*time.Second)
	defer cancelTimeout()

	dataURI := "data:text/html;base64," + base64.StdEncoding.EncodeToString(html)
	var screenshot []byte
	tasks := chromedp.Tasks{
		chromedp.EmulateViewport(int64(width), int64(height)),
		chromedp.Navigate(dataURI),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(800 * time.Millisecond),
		chromedp.FullScreenshot(&screenshot, 0),
	}
	if err := chromedp.Run(timeoutCtx, tasks...); err != nil {
		return nil, err
	}
	return screenshot, nil
}

func round(val float64, decimals int) float64 {
	if decimals <= 0 {
		return math.Round(val)
	}
	scale := math.Pow10(decimals)
	return math.Round(val*scale) / scale
}

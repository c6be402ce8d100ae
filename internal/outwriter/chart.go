package outwriter

import (
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/huangsam/gitlake/schema"
)

const (
	chartWidth  = "100%"
	chartHeight = "420px"

	memoryColor = "#5470c6"
	sqlColor    = "#ee6666"
)

// renderCompareCharts renders side-by-side bucket series and a memory-vs-SQL scatter.
func renderCompareCharts(w io.Writer, result schema.ComparisonResult) error {
	page := components.NewPage()
	page.PageTitle = "gitlake engine comparison"
	page.AddCharts(
		bucketBarChart("Fixed-bucket sum", "Sum (minutes)", result.Memory.FixedBucket, result.Relational.FixedBucket,
			func(s schema.BucketStat) float64 { return s.Sum }),
		bucketBarChart("Fixed-bucket average", "Average (minutes)", result.Memory.FixedBucket, result.Relational.FixedBucket,
			func(s schema.BucketStat) float64 { return s.Average }),
		bucketBarChart("By-month sum", "Sum (minutes)", result.Memory.ByMonth, result.Relational.ByMonth,
			func(s schema.BucketStat) float64 { return s.Sum }),
		failureLineChart(result.Memory.ChangeFailure, result.Relational.ChangeFailure),
		parityScatter(result),
	)
	return page.Render(w)
}

// bucketBarChart plots one bucket statistic for both engines.
func bucketBarChart(title, yName string, memory, relational []schema.BucketStat, value func(schema.BucketStat) float64) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: "Memory vs SQL"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "10%"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Interval"}),
		charts.WithYAxisOpts(opts.YAxis{Name: yName}),
	)

	labels := make([]string, 0, max(len(memory), len(relational)))
	longest := memory
	if len(relational) > len(memory) {
		longest = relational
	}
	for _, s := range longest {
		labels = append(labels, s.IntervalStart)
	}
	bar.SetXAxis(labels)
	bar.AddSeries("Memory", barData(memory, value), charts.WithItemStyleOpts(opts.ItemStyle{Color: memoryColor}))
	bar.AddSeries("SQL", barData(relational, value), charts.WithItemStyleOpts(opts.ItemStyle{Color: sqlColor}))
	return bar
}

func barData(stats []schema.BucketStat, value func(schema.BucketStat) float64) []opts.BarData {
	data := make([]opts.BarData, len(stats))
	for i, s := range stats {
		data[i] = opts.BarData{Value: value(s)}
	}
	return data
}

// failureLineChart plots the monthly change-failure rate for both engines.
func failureLineChart(memory, relational []schema.ChangeFailureStat) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{Title: "Change-failure rate", Subtitle: "Memory vs SQL"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "10%"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Month"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Rate (%)"}),
	)

	labels := make([]string, len(memory))
	memData := make([]opts.LineData, len(memory))
	for i, m := range memory {
		labels[i] = m.Month
		memData[i] = opts.LineData{Value: m.Rate}
	}
	sqlData := make([]opts.LineData, len(relational))
	for i, m := range relational {
		sqlData[i] = opts.LineData{Value: m.Rate}
	}

	line.SetXAxis(labels)
	line.AddSeries("Memory", memData,
		charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: memoryColor}),
	)
	line.AddSeries("SQL", sqlData,
		charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: sqlColor}),
		charts.WithLineStyleOpts(opts.LineStyle{Type: "dashed"}),
	)
	return line
}

// parityScatter plots every sum and average as (memory, SQL) points. Matching
// engines put every point on the diagonal.
func parityScatter(result schema.ComparisonResult) *charts.Scatter {
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{Title: "Memory vs SQL", Subtitle: "Points on the diagonal match"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Memory", Type: "value"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "SQL", Type: "value"}),
	)

	var points []opts.ScatterData
	pair := func(memory, relational []schema.BucketStat) {
		for i := range min(len(memory), len(relational)) {
			for _, v := range [][2]float64{
				{memory[i].Sum, relational[i].Sum},
				{memory[i].Average, relational[i].Average},
			} {
				points = append(points, opts.ScatterData{Value: []any{v[0], v[1]}})
			}
		}
	}
	pair(result.Memory.FixedBucket, result.Relational.FixedBucket)
	pair(result.Memory.ByMonth, result.Relational.ByMonth)

	scatter.AddSeries("Buckets", points, charts.WithItemStyleOpts(opts.ItemStyle{Color: memoryColor}))
	return scatter
}

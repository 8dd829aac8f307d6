package client

// Visualization types as stored by the backend.
const (
	TypeLineChart     = "linechart"
	TypeBarChart      = "barchart"
	TypePieChart      = "piechart"
	TypeStatChart     = "statchart"
	TypeTable         = "table"
	TypeMap           = "map"
	TypeFreeTextField = "freetextfield"
	TypeTimeline      = "timeline"
)

var legacyToAPI = map[string]string{
	"LineChart":     TypeLineChart,
	"BarChart":      TypeBarChart,
	"PieChart":      TypePieChart,
	"StatChart":     TypeStatChart,
	"Table":         TypeTable,
	"Map":           TypeMap,
	"FreeTextField": TypeFreeTextField,
	"Timeline":      TypeTimeline,
}

var apiToLegacy = map[string]string{
	TypeLineChart:     "LineChart",
	TypeBarChart:      "BarChart",
	TypePieChart:      "PieChart",
	TypeStatChart:     "StatChart",
	TypeTable:         "Table",
	TypeMap:           "Map",
	TypeFreeTextField: "FreeTextField",
	TypeTimeline:      "Timeline",
}

// APIChartType maps a legacy widget chart type onto the backend type name.
// Unknown inputs fall back to linechart.
func APIChartType(chartType string) string {
	if apiType, ok := legacyToAPI[chartType]; ok {
		return apiType
	}
	return TypeLineChart
}

// LegacyChartType maps a backend type name onto the legacy widget chart
// type. Unknown inputs fall back to LineChart.
func LegacyChartType(apiType string) string {
	if legacyType, ok := apiToLegacy[apiType]; ok {
		return legacyType
	}
	return "LineChart"
}

// ConvertLegacyVisualization migrates a pre-migration widget to the current
// shape, attaching it to sectionID when non-nil.
func ConvertLegacyVisualization(old LegacyVisualization, sectionID *int) VisualizationInput {
	chartType := old.ChartType
	if chartType == "" {
		chartType = old.Chart
	}

	width := old.Width
	if width == 0 {
		width = 4
	}
	height := old.Height
	if height == 0 {
		height = 8
	}

	kpiID := old.KPIID
	if kpiID == nil {
		kpiID = old.TableID
	}

	return VisualizationInput{
		Type:      APIChartType(chartType),
		Title:     old.Title,
		Width:     width,
		Height:    height,
		XPosition: old.XPosition,
		YPosition: old.YPosition,
		I:         old.I,
		SectionID: sectionID,
		KPIID:     kpiID,
		XTitle:    old.XTitle,
		YTitle:    old.YTitle,
		Color:     old.Color,
		Unit:      old.Unit,
		Target:    old.Target,
	}
}

// ConvertToLegacyFormat renders a current visualization in the
// pre-migration widget shape for older dashboard consumers.
func ConvertToLegacyFormat(vis Visualization, sectionName string) LegacyVisualization {
	if sectionName == "" {
		sectionName = "Section 1"
	}
	return LegacyVisualization{
		ID:        vis.ID,
		I:         vis.I,
		ChartType: LegacyChartType(vis.Type),
		Title:     vis.Title,
		Section:   sectionName,
		Width:     vis.Width,
		Height:    vis.Height,
		XPosition: vis.XPosition,
		YPosition: vis.YPosition,
		KPIID:     vis.KPIID,
		TableID:   vis.KPIID,
		XTitle:    vis.XTitle,
		YTitle:    vis.YTitle,
		Color:     vis.Color,
		Unit:      vis.Unit,
		Target:    vis.Target,
	}
}

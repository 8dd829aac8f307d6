package client_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/climaborough/go-platform-client/client"
)

func TestChartTypeRoundTrip(t *testing.T) {
	legacyNames := []string{
		"LineChart", "BarChart", "PieChart", "StatChart",
		"Table", "Map", "FreeTextField", "Timeline",
	}
	for _, legacy := range legacyNames {
		t.Run(legacy, func(t *testing.T) {
			apiType := client.APIChartType(legacy)
			require.Equal(t, legacy, client.LegacyChartType(apiType))
		})
	}
}

func TestChartTypeUnknownDefaults(t *testing.T) {
	require.Equal(t, client.TypeLineChart, client.APIChartType("Gauge"))
	require.Equal(t, client.TypeLineChart, client.APIChartType(""))
	require.Equal(t, "LineChart", client.LegacyChartType("gauge"))
	require.Equal(t, "LineChart", client.LegacyChartType(""))
}

func TestConvertLegacyVisualization(t *testing.T) {
	tableID := 42
	target := 80.0
	sectionID := 7

	converted := client.ConvertLegacyVisualization(client.LegacyVisualization{
		ID:        3,
		I:         "widget-3",
		ChartType: "BarChart",
		Title:     "Waste collected",
		XPosition: 2,
		YPosition: 4,
		TableID:   &tableID,
		XTitle:    "Month",
		YTitle:    "Tonnes",
		Color:     "#3498db",
		Target:    &target,
	}, &sectionID)

	require.Equal(t, client.TypeBarChart, converted.Type)
	require.Equal(t, "Waste collected", converted.Title)
	require.Equal(t, 4, converted.Width, "layout width defaults when absent")
	require.Equal(t, 8, converted.Height, "layout height defaults when absent")
	require.Equal(t, 2, converted.XPosition)
	require.Equal(t, &sectionID, converted.SectionID)
	require.Equal(t, &tableID, converted.KPIID, "tableId doubles as the KPI reference")
	require.Equal(t, "Month", converted.XTitle)
	require.Equal(t, &target, converted.Target)
}

func TestConvertLegacyVisualizationChartFieldFallback(t *testing.T) {
	converted := client.ConvertLegacyVisualization(client.LegacyVisualization{
		Chart: "PieChart",
		Title: "Energy mix",
	}, nil)
	require.Equal(t, client.TypePieChart, converted.Type)
	require.Nil(t, converted.SectionID)
}

func TestConvertToLegacyFormat(t *testing.T) {
	kpiID := 9
	legacy := client.ConvertToLegacyFormat(client.Visualization{
		ID:        11,
		I:         "widget-11",
		Type:      client.TypeStatChart,
		Title:     "Air quality",
		Width:     6,
		Height:    4,
		XPosition: 1,
		YPosition: 2,
		KPIID:     &kpiID,
		Unit:      "AQI",
	}, "")

	require.Equal(t, "StatChart", legacy.ChartType)
	require.Equal(t, "Section 1", legacy.Section, "section name defaults when absent")
	require.Equal(t, &kpiID, legacy.KPIID)
	require.Equal(t, &kpiID, legacy.TableID)
	require.Equal(t, "AQI", legacy.Unit)
}

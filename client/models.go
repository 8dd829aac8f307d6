package client

import "time"

// City is one of the platform's member municipalities.
type City struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	Country   string    `json:"country,omitempty"`
	Timezone  string    `json:"timezone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CityInput carries the writable city fields for create and update calls.
type CityInput struct {
	Name     string `json:"name,omitempty"`
	Code     string `json:"code,omitempty"`
	Country  string `json:"country,omitempty"`
	Timezone string `json:"timezone,omitempty"`
}

// CityStats is the per-city dashboard and KPI census.
type CityStats struct {
	CityID         int `json:"city_id"`
	DashboardCount int `json:"dashboard_count"`
	KPICount       int `json:"kpi_count"`
	MapLayerCount  int `json:"map_layer_count"`
}

// KPI describes one indicator series tracked for a city.
type KPI struct {
	ID                      int            `json:"id"`
	IDKPI                   string         `json:"id_kpi"`
	Name                    string         `json:"name"`
	Description             string         `json:"description,omitempty"`
	Category                string         `json:"category"`
	UnitText                string         `json:"unit_text"`
	Provider                string         `json:"provider,omitempty"`
	CalculationFrequency    string         `json:"calculation_frequency,omitempty"`
	MinThreshold            *float64       `json:"min_threshold,omitempty"`
	MaxThreshold            *float64       `json:"max_threshold,omitempty"`
	HasCategoryLabel        bool           `json:"has_category_label"`
	CategoryLabelDictionary map[int]string `json:"category_label_dictionary,omitempty"`
	IsActive                bool           `json:"is_active"`
	CityID                  int            `json:"city_id"`
	CreatedAt               time.Time      `json:"created_at"`
	UpdatedAt               time.Time      `json:"updated_at"`
	City                    *City          `json:"city,omitempty"`
}

// KPIInput carries the writable KPI fields for create and update calls.
type KPIInput struct {
	IDKPI                   string         `json:"id_kpi,omitempty"`
	Name                    string         `json:"name,omitempty"`
	Description             string         `json:"description,omitempty"`
	Category                string         `json:"category,omitempty"`
	UnitText                string         `json:"unit_text,omitempty"`
	Provider                string         `json:"provider,omitempty"`
	CalculationFrequency    string         `json:"calculation_frequency,omitempty"`
	MinThreshold            *float64       `json:"min_threshold,omitempty"`
	MaxThreshold            *float64       `json:"max_threshold,omitempty"`
	HasCategoryLabel        bool           `json:"has_category_label,omitempty"`
	CategoryLabelDictionary map[int]string `json:"category_label_dictionary,omitempty"`
	IsActive                *bool          `json:"is_active,omitempty"`
	CityID                  int            `json:"city_id,omitempty"`
}

// KPIValue is one measured data point in a KPI series.
type KPIValue struct {
	ID            int       `json:"id"`
	KPIID         int       `json:"kpi_id"`
	Value         float64   `json:"value"`
	Timestamp     time.Time `json:"timestamp"`
	CategoryLabel string    `json:"category_label,omitempty"`
}

// KPIValueInput is one data point submitted for a KPI series.
type KPIValueInput struct {
	Value         float64   `json:"value"`
	Timestamp     time.Time `json:"timestamp"`
	CategoryLabel string    `json:"category_label,omitempty"`
}

// BulkCreateResult reports a bulk submission outcome.
type BulkCreateResult struct {
	Created int    `json:"created"`
	Message string `json:"message"`
}

// AggregatedKPIValue is one bucket of period-aggregated KPI data.
type AggregatedKPIValue struct {
	Period string  `json:"period"`
	Value  float64 `json:"value"`
	Count  int     `json:"count"`
}

// Dashboard is a city's configured dashboard.
type Dashboard struct {
	ID          int                `json:"id"`
	Code        string             `json:"code"`
	Title       string             `json:"title"`
	Description string             `json:"description,omitempty"`
	IsPublic    bool               `json:"is_public"`
	CityID      int                `json:"city_id"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
	City        *City              `json:"city,omitempty"`
	Sections    []DashboardSection `json:"sections,omitempty"`
}

// DashboardInput carries the writable dashboard fields.
type DashboardInput struct {
	Code        string `json:"code,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	IsPublic    *bool  `json:"is_public,omitempty"`
	CityID      int    `json:"city_id,omitempty"`
}

// DashboardSection is a named group of visualizations within a dashboard.
type DashboardSection struct {
	ID          int       `json:"id"`
	DashboardID int       `json:"dashboard_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Order       int       `json:"order"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SectionInput carries the writable section fields.
type SectionInput struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Order       *int   `json:"order,omitempty"`
	IsActive    *bool  `json:"is_active,omitempty"`
	DashboardID int    `json:"dashboard_id,omitempty"`
}

// Visualization is one dashboard widget. The core layout fields are always
// present; chart-specific fields are populated per Type.
type Visualization struct {
	ID          int       `json:"id"`
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Width       int       `json:"width"`
	Height      int       `json:"height"`
	XPosition   int       `json:"x_position"`
	YPosition   int       `json:"y_position"`
	I           string    `json:"i"`
	DashboardID int       `json:"dashboard_id"`
	SectionID   *int      `json:"section_id,omitempty"`
	KPIID       *int      `json:"kpi_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Per-type extensions.
	XTitle      string   `json:"x_title,omitempty"`
	YTitle      string   `json:"y_title,omitempty"`
	Color       string   `json:"color,omitempty"`
	Orientation string   `json:"orientation,omitempty"`
	ShowLegend  *bool    `json:"show_legend,omitempty"`
	Unit        string   `json:"unit,omitempty"`
	ShowTrend   *bool    `json:"show_trend,omitempty"`
	Text        string   `json:"text,omitempty"`
	Target      *float64 `json:"target,omitempty"`
}

// VisualizationInput carries the writable visualization fields.
type VisualizationInput struct {
	Type      string `json:"type,omitempty"`
	Title     string `json:"title,omitempty"`
	Width     int    `json:"width,omitempty"`
	Height    int    `json:"height,omitempty"`
	XPosition int    `json:"x_position,omitempty"`
	YPosition int    `json:"y_position,omitempty"`
	I         string `json:"i,omitempty"`
	SectionID *int   `json:"section_id,omitempty"`
	KPIID     *int   `json:"kpi_id,omitempty"`

	XTitle      string   `json:"x_title,omitempty"`
	YTitle      string   `json:"y_title,omitempty"`
	Color       string   `json:"color,omitempty"`
	Orientation string   `json:"orientation,omitempty"`
	ShowLegend  *bool    `json:"show_legend,omitempty"`
	Unit        string   `json:"unit,omitempty"`
	ShowTrend   *bool    `json:"show_trend,omitempty"`
	Text        string   `json:"text,omitempty"`
	Target      *float64 `json:"target,omitempty"`
}

// LegacyVisualization is the pre-migration widget shape still emitted by
// older dashboard configurations.
type LegacyVisualization struct {
	ID        int      `json:"id,omitempty"`
	I         string   `json:"i,omitempty"`
	ChartType string   `json:"chartType,omitempty"`
	Chart     string   `json:"chart,omitempty"`
	Title     string   `json:"title"`
	Section   string   `json:"section,omitempty"`
	Width     int      `json:"width,omitempty"`
	Height    int      `json:"height,omitempty"`
	XPosition int      `json:"xposition,omitempty"`
	YPosition int      `json:"yposition,omitempty"`
	KPIID     *int     `json:"kpi_id,omitempty"`
	TableID   *int     `json:"tableId,omitempty"`
	XTitle    string   `json:"xtitle,omitempty"`
	YTitle    string   `json:"ytitle,omitempty"`
	Color     string   `json:"color,omitempty"`
	Unit      string   `json:"unit,omitempty"`
	Target    *float64 `json:"target,omitempty"`
}

// MapLayer is the union of the two map data kinds. Type is "wms" or
// "geojson"; the matching field set is populated.
type MapLayer struct {
	ID          int       `json:"id"`
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	IsActive    bool      `json:"is_active"`
	CityID      int       `json:"city_id"`
	MapID       *int      `json:"map_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// WMS fields.
	URL         string `json:"url,omitempty"`
	LayerName   string `json:"layer_name,omitempty"`
	Format      string `json:"format,omitempty"`
	Transparent *bool  `json:"transparent,omitempty"`

	// GeoJSON fields.
	Data  map[string]any `json:"data,omitempty"`
	Style map[string]any `json:"style,omitempty"`
}

// WMSInput carries the writable WMS layer fields.
type WMSInput struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	IsActive    *bool  `json:"is_active,omitempty"`
	URL         string `json:"url,omitempty"`
	LayerName   string `json:"layer_name,omitempty"`
	Format      string `json:"format,omitempty"`
	Transparent *bool  `json:"transparent,omitempty"`
	CityID      int    `json:"city_id,omitempty"`
	MapID       *int   `json:"map_id,omitempty"`
}

// GeoJSONInput carries the writable GeoJSON layer fields.
type GeoJSONInput struct {
	Title       string         `json:"title,omitempty"`
	Description string         `json:"description,omitempty"`
	IsActive    *bool          `json:"is_active,omitempty"`
	Data        map[string]any `json:"data,omitempty"`
	Style       map[string]any `json:"style,omitempty"`
	CityID      int            `json:"city_id,omitempty"`
	MapID       *int           `json:"map_id,omitempty"`
}

// TokenResponse is a backend-issued credential from the alternate auth mode.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// Profile is the authenticated caller's identity as the backend sees it.
type Profile struct {
	Username string   `json:"username"`
	Email    string   `json:"email,omitempty"`
	Roles    []string `json:"roles,omitempty"`
}

// HealthStatus is the backend liveness report.
type HealthStatus struct {
	Status    string  `json:"status"`
	Timestamp float64 `json:"timestamp"`
	Version   string  `json:"version"`
}

// APIInfo describes the backend service and its documented surfaces.
type APIInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Docs    string `json:"docs,omitempty"`
	Redoc   string `json:"redoc,omitempty"`
	OpenAPI string `json:"openapi,omitempty"`
}

// BulkDeleteResult reports a bulk deletion outcome.
type BulkDeleteResult struct {
	Deleted int    `json:"deleted"`
	Message string `json:"message"`
}

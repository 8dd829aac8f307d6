package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/climaborough/go-platform-client/internal/utils"
)

// KPIListParams filters the KPI listing. CityID is required by the backend.
type KPIListParams struct {
	CityID     int
	Category   string
	Provider   string
	ActiveOnly *bool
	Limit      int
	Offset     int
}

func (p KPIListParams) query() url.Values {
	query := url.Values{}
	if p.CityID > 0 {
		query.Set("city_id", strconv.Itoa(p.CityID))
	}
	if p.Category != "" {
		query.Set("category", p.Category)
	}
	if p.Provider != "" {
		query.Set("provider", p.Provider)
	}
	if p.ActiveOnly != nil {
		query.Set("active_only", strconv.FormatBool(*p.ActiveOnly))
	}
	if p.Limit > 0 {
		query.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Offset > 0 {
		query.Set("offset", strconv.Itoa(p.Offset))
	}
	return query
}

// KPIValueParams filters a KPI's value series.
type KPIValueParams struct {
	StartDate     *time.Time
	EndDate       *time.Time
	CategoryLabel string
	Limit         int
	Offset        int
}

func (p KPIValueParams) query() url.Values {
	query := url.Values{}
	if p.StartDate != nil {
		query.Set("start_date", p.StartDate.Format(time.RFC3339))
	}
	if p.EndDate != nil {
		query.Set("end_date", p.EndDate.Format(time.RFC3339))
	}
	if p.CategoryLabel != "" {
		query.Set("category_label", p.CategoryLabel)
	}
	if p.Limit > 0 {
		query.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Offset > 0 {
		query.Set("offset", strconv.Itoa(p.Offset))
	}
	return query
}

// KPIs lists indicators for a city with optional filters.
func (c *Client) KPIs(ctx context.Context, params KPIListParams) ([]KPI, error) {
	var kpis []KPI
	if _, err := c.get(ctx, "/kpis", params.query(), &kpis); err != nil {
		return nil, err
	}
	return kpis, nil
}

// KPICategories lists the distinct indicator categories for a city.
func (c *Client) KPICategories(ctx context.Context, cityID int) ([]string, error) {
	query := url.Values{}
	query.Set("city_id", strconv.Itoa(cityID))
	var categories []string
	if _, err := c.get(ctx, "/kpis/categories", query, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// KPI fetches one indicator by database ID.
func (c *Client) KPI(ctx context.Context, kpiID int) (*KPI, error) {
	var kpi KPI
	ok, err := c.get(ctx, fmt.Sprintf("/kpis/%d", kpiID), nil, &kpi)
	if err != nil || !ok {
		return nil, err
	}
	return &kpi, nil
}

// KPIByKPIID fetches one indicator by its unique string identifier.
func (c *Client) KPIByKPIID(ctx context.Context, idKPI string) (*KPI, error) {
	var kpi KPI
	ok, err := c.get(ctx, "/kpis/by-kpi-id/"+url.PathEscape(idKPI), nil, &kpi)
	if err != nil || !ok {
		return nil, err
	}
	return &kpi, nil
}

// KPIWithLatestValue fetches an indicator together with its newest data point.
func (c *Client) KPIWithLatestValue(ctx context.Context, kpiID int) (map[string]any, error) {
	var result map[string]any
	if _, err := c.get(ctx, fmt.Sprintf("/kpis/%d/with-latest-value", kpiID), nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// CreateKPI registers a new indicator.
func (c *Client) CreateKPI(ctx context.Context, input KPIInput) (*KPI, error) {
	var kpi KPI
	ok, err := c.post(ctx, "/kpis", input, &kpi)
	if err != nil || !ok {
		return nil, err
	}
	return &kpi, nil
}

// UpdateKPI modifies an existing indicator.
func (c *Client) UpdateKPI(ctx context.Context, kpiID int, input KPIInput) (*KPI, error) {
	var kpi KPI
	ok, err := c.put(ctx, fmt.Sprintf("/kpis/%d", kpiID), input, &kpi)
	if err != nil || !ok {
		return nil, err
	}
	return &kpi, nil
}

// DeleteKPI removes an indicator and all its values.
func (c *Client) DeleteKPI(ctx context.Context, kpiID int) (*KPI, error) {
	var kpi KPI
	ok, err := c.delete(ctx, fmt.Sprintf("/kpis/%d", kpiID), nil, &kpi)
	if err != nil || !ok {
		return nil, err
	}
	return &kpi, nil
}

// KPIValues fetches an indicator's data points with optional window and
// category filters.
func (c *Client) KPIValues(ctx context.Context, kpiID int, params KPIValueParams) ([]KPIValue, error) {
	var values []KPIValue
	if _, err := c.get(ctx, fmt.Sprintf("/kpis/%d/values", kpiID), params.query(), &values); err != nil {
		return nil, err
	}
	return values, nil
}

// KPIValuesForWindow fetches an indicator's data points within the window
// described by a filter token ("YYYY-MM" or "start|end").
func (c *Client) KPIValuesForWindow(ctx context.Context, kpiID int, windowToken string) ([]KPIValue, error) {
	start, end, err := DeriveTimeWindow(windowToken)
	if err != nil {
		return nil, err
	}
	return c.KPIValues(ctx, kpiID, KPIValueParams{StartDate: &start, EndDate: &end})
}

// LatestKPIValue fetches the newest data point of an indicator.
func (c *Client) LatestKPIValue(ctx context.Context, kpiID int) (*KPIValue, error) {
	var value KPIValue
	ok, err := c.get(ctx, fmt.Sprintf("/kpis/%d/values/latest", kpiID), nil, &value)
	if err != nil || !ok {
		return nil, err
	}
	return &value, nil
}

// AggregatedKPIValues fetches period-bucketed aggregates. Period is one of
// day, week, month or year.
func (c *Client) AggregatedKPIValues(ctx context.Context, kpiID int, period string, start, end *time.Time) ([]AggregatedKPIValue, error) {
	query := url.Values{}
	if period != "" {
		query.Set("period", period)
	}
	if start != nil {
		query.Set("start_date", start.Format(time.RFC3339))
	}
	if end != nil {
		query.Set("end_date", end.Format(time.RFC3339))
	}
	var aggregates []AggregatedKPIValue
	if _, err := c.get(ctx, fmt.Sprintf("/kpis/%d/values/aggregated", kpiID), query, &aggregates); err != nil {
		return nil, err
	}
	return aggregates, nil
}

// CreateKPIValue appends one data point to an indicator.
func (c *Client) CreateKPIValue(ctx context.Context, kpiID int, input KPIValueInput) (*KPIValue, error) {
	body := struct {
		KPIValueInput
		KPIID int `json:"kpi_id"`
	}{KPIValueInput: input, KPIID: kpiID}

	var value KPIValue
	ok, err := c.post(ctx, fmt.Sprintf("/kpis/%d/values", kpiID), body, &value)
	if err != nil || !ok {
		return nil, err
	}
	return &value, nil
}

// BulkCreateKPIValues appends a batch of data points to one indicator in a
// single request. Duplicate timestamps are skipped server-side.
func (c *Client) BulkCreateKPIValues(ctx context.Context, kpiID int, values []KPIValueInput) (*BulkCreateResult, error) {
	body := struct {
		KPIID  int             `json:"kpi_id"`
		Values []KPIValueInput `json:"values"`
	}{KPIID: kpiID, Values: values}

	var result BulkCreateResult
	ok, err := c.post(ctx, fmt.Sprintf("/kpis/%d/values/bulk", kpiID), body, &result)
	if err != nil || !ok {
		return nil, err
	}
	return &result, nil
}

// KPIValuesByCity fetches an indicator's values through the legacy per-city
// path kept for older dashboard consumers.
func (c *Client) KPIValuesByCity(ctx context.Context, cityCode string, kpiDBID int) ([]KPIValue, error) {
	path := fmt.Sprintf("/kpis/city/%s/kpi/%d", url.PathEscape(strings.ToLower(cityCode)), kpiDBID)
	var values []KPIValue
	if _, err := c.get(ctx, path, nil, &values); err != nil {
		return nil, err
	}
	return values, nil
}

// KPIValueBatch pairs an indicator with the data points destined for it.
type KPIValueBatch struct {
	KPIID  int
	Values []KPIValueInput
}

// BatchUpdateKPIValues submits one bulk-create request per batch entry
// concurrently. The first failure fails the whole batch; there is no
// partial-success reporting.
func (c *Client) BatchUpdateKPIValues(ctx context.Context, batches []KPIValueBatch) ([]BulkCreateResult, error) {
	results := make([]BulkCreateResult, len(batches))
	group, groupCtx := errgroup.WithContext(ctx)

	for i, batch := range batches {
		group.Go(func() error {
			result, err := c.BulkCreateKPIValues(groupCtx, batch.KPIID, batch.Values)
			if err != nil {
				return err
			}
			results[i] = utils.Value(result)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

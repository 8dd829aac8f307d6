package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// DashboardListParams filters the dashboard listing.
type DashboardListParams struct {
	CityID     int
	PublicOnly *bool
	Skip       int
	Limit      int
}

func (p DashboardListParams) query() url.Values {
	query := url.Values{}
	if p.CityID > 0 {
		query.Set("city_id", strconv.Itoa(p.CityID))
	}
	if p.PublicOnly != nil {
		query.Set("public_only", strconv.FormatBool(*p.PublicOnly))
	}
	if p.Skip > 0 {
		query.Set("skip", strconv.Itoa(p.Skip))
	}
	if p.Limit > 0 {
		query.Set("limit", strconv.Itoa(p.Limit))
	}
	return query
}

// Dashboards lists dashboards with optional filters.
func (c *Client) Dashboards(ctx context.Context, params DashboardListParams) ([]Dashboard, error) {
	var dashboards []Dashboard
	if _, err := c.get(ctx, "/dashboards", params.query(), &dashboards); err != nil {
		return nil, err
	}
	return dashboards, nil
}

// Dashboard fetches one dashboard by database ID.
func (c *Client) Dashboard(ctx context.Context, dashboardID int) (*Dashboard, error) {
	var dashboard Dashboard
	ok, err := c.get(ctx, fmt.Sprintf("/dashboards/%d", dashboardID), nil, &dashboard)
	if err != nil || !ok {
		return nil, err
	}
	return &dashboard, nil
}

// DashboardByCity fetches a city's dashboard by city code.
func (c *Client) DashboardByCity(ctx context.Context, cityCode string) (*Dashboard, error) {
	var dashboard Dashboard
	path := "/dashboards/city/" + url.PathEscape(strings.ToLower(cityCode))
	ok, err := c.get(ctx, path, nil, &dashboard)
	if err != nil || !ok {
		return nil, err
	}
	return &dashboard, nil
}

// DashboardWithVisualizations fetches a dashboard with its sections
// populated.
func (c *Client) DashboardWithVisualizations(ctx context.Context, dashboardID int) (*Dashboard, error) {
	var dashboard Dashboard
	path := fmt.Sprintf("/dashboards/%d/with-visualizations", dashboardID)
	ok, err := c.get(ctx, path, nil, &dashboard)
	if err != nil || !ok {
		return nil, err
	}
	return &dashboard, nil
}

// CreateDashboard registers a new dashboard.
func (c *Client) CreateDashboard(ctx context.Context, input DashboardInput) (*Dashboard, error) {
	var dashboard Dashboard
	ok, err := c.post(ctx, "/dashboards", input, &dashboard)
	if err != nil || !ok {
		return nil, err
	}
	return &dashboard, nil
}

// UpdateDashboard modifies an existing dashboard.
func (c *Client) UpdateDashboard(ctx context.Context, dashboardID int, input DashboardInput) (*Dashboard, error) {
	var dashboard Dashboard
	ok, err := c.put(ctx, fmt.Sprintf("/dashboards/%d", dashboardID), input, &dashboard)
	if err != nil || !ok {
		return nil, err
	}
	return &dashboard, nil
}

// DeleteDashboard removes a dashboard and returns its final state.
func (c *Client) DeleteDashboard(ctx context.Context, dashboardID int) (*Dashboard, error) {
	var dashboard Dashboard
	ok, err := c.delete(ctx, fmt.Sprintf("/dashboards/%d", dashboardID), nil, &dashboard)
	if err != nil || !ok {
		return nil, err
	}
	return &dashboard, nil
}

// DashboardSections lists a dashboard's sections.
func (c *Client) DashboardSections(ctx context.Context, dashboardID int) ([]DashboardSection, error) {
	var sections []DashboardSection
	if _, err := c.get(ctx, fmt.Sprintf("/dashboards/%d/sections", dashboardID), nil, &sections); err != nil {
		return nil, err
	}
	return sections, nil
}

// CreateSection adds a section to a dashboard.
func (c *Client) CreateSection(ctx context.Context, dashboardID int, input SectionInput) (*DashboardSection, error) {
	input.DashboardID = dashboardID
	var section DashboardSection
	ok, err := c.post(ctx, fmt.Sprintf("/dashboards/%d/sections", dashboardID), input, &section)
	if err != nil || !ok {
		return nil, err
	}
	return &section, nil
}

// UpdateSection modifies an existing section.
func (c *Client) UpdateSection(ctx context.Context, sectionID int, input SectionInput) (*DashboardSection, error) {
	var section DashboardSection
	ok, err := c.put(ctx, fmt.Sprintf("/dashboards/sections/%d", sectionID), input, &section)
	if err != nil || !ok {
		return nil, err
	}
	return &section, nil
}

// DeleteSection removes a section and returns its final state.
func (c *Client) DeleteSection(ctx context.Context, sectionID int) (*DashboardSection, error) {
	var section DashboardSection
	ok, err := c.delete(ctx, fmt.Sprintf("/dashboards/sections/%d", sectionID), nil, &section)
	if err != nil || !ok {
		return nil, err
	}
	return &section, nil
}

// ReorderSections applies a new section ordering to a dashboard. The slice
// lists section IDs in their new display order.
func (c *Client) ReorderSections(ctx context.Context, dashboardID int, sectionIDs []int) error {
	path := fmt.Sprintf("/dashboards/%d/sections/reorder", dashboardID)
	_, err := c.put(ctx, path, sectionIDs, nil)
	return err
}

// DuplicateSection clones a section within its dashboard.
func (c *Client) DuplicateSection(ctx context.Context, sectionID int) (*DashboardSection, error) {
	var section DashboardSection
	ok, err := c.post(ctx, fmt.Sprintf("/dashboards/sections/%d/duplicate", sectionID), nil, &section)
	if err != nil || !ok {
		return nil, err
	}
	return &section, nil
}

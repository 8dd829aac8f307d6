package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/climaborough/go-platform-client/internal/utils"
)

// DashboardVisualizations lists all widgets on a dashboard.
func (c *Client) DashboardVisualizations(ctx context.Context, dashboardID int) ([]Visualization, error) {
	var visualizations []Visualization
	path := fmt.Sprintf("/dashboards/%d/visualizations", dashboardID)
	if _, err := c.get(ctx, path, nil, &visualizations); err != nil {
		return nil, err
	}
	return visualizations, nil
}

// CreateVisualization adds a widget to a dashboard.
func (c *Client) CreateVisualization(ctx context.Context, dashboardID int, input VisualizationInput) (*Visualization, error) {
	var visualization Visualization
	path := fmt.Sprintf("/dashboards/%d/visualizations", dashboardID)
	ok, err := c.post(ctx, path, input, &visualization)
	if err != nil || !ok {
		return nil, err
	}
	return &visualization, nil
}

// Visualization fetches one widget by database ID.
func (c *Client) Visualization(ctx context.Context, visID int) (*Visualization, error) {
	var visualization Visualization
	ok, err := c.get(ctx, fmt.Sprintf("/dashboards/visualizations/%d", visID), nil, &visualization)
	if err != nil || !ok {
		return nil, err
	}
	return &visualization, nil
}

// UpdateVisualization modifies an existing widget.
func (c *Client) UpdateVisualization(ctx context.Context, visID int, input VisualizationInput) (*Visualization, error) {
	var visualization Visualization
	ok, err := c.put(ctx, fmt.Sprintf("/dashboards/visualizations/%d", visID), input, &visualization)
	if err != nil || !ok {
		return nil, err
	}
	return &visualization, nil
}

// DeleteVisualization removes one widget and returns its final state.
func (c *Client) DeleteVisualization(ctx context.Context, visID int) (*Visualization, error) {
	var visualization Visualization
	ok, err := c.delete(ctx, fmt.Sprintf("/dashboards/visualizations/%d", visID), nil, &visualization)
	if err != nil || !ok {
		return nil, err
	}
	return &visualization, nil
}

// DeleteVisualizations removes multiple widgets in one call. IDs travel as
// repeated ids= query parameters.
func (c *Client) DeleteVisualizations(ctx context.Context, visIDs []int) (*BulkDeleteResult, error) {
	query := url.Values{}
	for _, id := range visIDs {
		query.Add("ids", strconv.Itoa(id))
	}

	var result BulkDeleteResult
	ok, err := c.delete(ctx, "/dashboards/visualizations/bulk", query, &result)
	if err != nil || !ok {
		return nil, err
	}
	return &result, nil
}

// VisualizationsByCity lists a city's widgets through the legacy per-city
// path kept for older dashboard consumers.
func (c *Client) VisualizationsByCity(ctx context.Context, cityCode string) ([]Visualization, error) {
	var visualizations []Visualization
	path := "/dashboards/visualizations/city/" + url.PathEscape(strings.ToLower(cityCode))
	if _, err := c.get(ctx, path, nil, &visualizations); err != nil {
		return nil, err
	}
	return visualizations, nil
}

// BatchCreateVisualizations submits one create request per widget
// concurrently. The first failure fails the whole batch; there is no
// partial-success reporting.
func (c *Client) BatchCreateVisualizations(ctx context.Context, dashboardID int, inputs []VisualizationInput) ([]Visualization, error) {
	created := make([]Visualization, len(inputs))
	group, groupCtx := errgroup.WithContext(ctx)

	for i, input := range inputs {
		group.Go(func() error {
			visualization, err := c.CreateVisualization(groupCtx, dashboardID, input)
			if err != nil {
				return err
			}
			created[i] = utils.Value(visualization)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return created, nil
}

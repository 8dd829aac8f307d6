package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// CityListParams paginates the city listing.
type CityListParams struct {
	Skip  int
	Limit int
}

func (p CityListParams) query() url.Values {
	query := url.Values{}
	if p.Skip > 0 {
		query.Set("skip", strconv.Itoa(p.Skip))
	}
	if p.Limit > 0 {
		query.Set("limit", strconv.Itoa(p.Limit))
	}
	return query
}

// Cities lists the member municipalities.
func (c *Client) Cities(ctx context.Context, params CityListParams) ([]City, error) {
	var cities []City
	if _, err := c.get(ctx, "/cities", params.query(), &cities); err != nil {
		return nil, err
	}
	return cities, nil
}

// City fetches one city by database ID.
func (c *Client) City(ctx context.Context, cityID int) (*City, error) {
	var city City
	ok, err := c.get(ctx, fmt.Sprintf("/cities/%d", cityID), nil, &city)
	if err != nil || !ok {
		return nil, err
	}
	return &city, nil
}

// CityByCode fetches one city by its code. Codes are lowercase on the wire.
func (c *Client) CityByCode(ctx context.Context, cityCode string) (*City, error) {
	var city City
	ok, err := c.get(ctx, "/cities/code/"+url.PathEscape(strings.ToLower(cityCode)), nil, &city)
	if err != nil || !ok {
		return nil, err
	}
	return &city, nil
}

// CityStatistics fetches the dashboard and KPI census for one city.
func (c *Client) CityStatistics(ctx context.Context, cityID int) (*CityStats, error) {
	var stats CityStats
	ok, err := c.get(ctx, fmt.Sprintf("/cities/%d/stats", cityID), nil, &stats)
	if err != nil || !ok {
		return nil, err
	}
	return &stats, nil
}

// CreateCity registers a new municipality.
func (c *Client) CreateCity(ctx context.Context, input CityInput) (*City, error) {
	var city City
	ok, err := c.post(ctx, "/cities", input, &city)
	if err != nil || !ok {
		return nil, err
	}
	return &city, nil
}

// UpdateCity modifies an existing city.
func (c *Client) UpdateCity(ctx context.Context, cityID int, input CityInput) (*City, error) {
	var city City
	ok, err := c.put(ctx, fmt.Sprintf("/cities/%d", cityID), input, &city)
	if err != nil || !ok {
		return nil, err
	}
	return &city, nil
}

// DeleteCity removes a city and returns its final state.
func (c *Client) DeleteCity(ctx context.Context, cityID int) (*City, error) {
	var city City
	ok, err := c.delete(ctx, fmt.Sprintf("/cities/%d", cityID), nil, &city)
	if err != nil || !ok {
		return nil, err
	}
	return &city, nil
}

// CitySummary fetches the legacy per-city summary document.
func (c *Client) CitySummary(ctx context.Context, cityCode string) (map[string]any, error) {
	var summary map[string]any
	path := "/cities/" + url.PathEscape(strings.ToLower(cityCode)) + "/summary"
	if _, err := c.get(ctx, path, nil, &summary); err != nil {
		return nil, err
	}
	return summary, nil
}

package client

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// MapDataForCity lists a city's map layers by city database ID.
func (c *Client) MapDataForCity(ctx context.Context, cityID int) ([]MapLayer, error) {
	var layers []MapLayer
	if _, err := c.get(ctx, fmt.Sprintf("/mapdata/city/%d", cityID), nil, &layers); err != nil {
		return nil, err
	}
	return layers, nil
}

// MapDataByCityCode lists a city's map layers by city code.
func (c *Client) MapDataByCityCode(ctx context.Context, cityCode string) ([]MapLayer, error) {
	var layers []MapLayer
	path := "/mapdata/city/code/" + url.PathEscape(strings.ToLower(cityCode))
	if _, err := c.get(ctx, path, nil, &layers); err != nil {
		return nil, err
	}
	return layers, nil
}

// MapData fetches one layer by database ID.
func (c *Client) MapData(ctx context.Context, mapDataID int) (*MapLayer, error) {
	var layer MapLayer
	ok, err := c.get(ctx, fmt.Sprintf("/mapdata/%d", mapDataID), nil, &layer)
	if err != nil || !ok {
		return nil, err
	}
	return &layer, nil
}

// CreateWMSLayer registers a new WMS layer.
func (c *Client) CreateWMSLayer(ctx context.Context, input WMSInput) (*MapLayer, error) {
	var layer MapLayer
	ok, err := c.post(ctx, "/mapdata/wms", input, &layer)
	if err != nil || !ok {
		return nil, err
	}
	return &layer, nil
}

// UpdateWMSLayer modifies an existing WMS layer.
func (c *Client) UpdateWMSLayer(ctx context.Context, mapDataID int, input WMSInput) (*MapLayer, error) {
	var layer MapLayer
	ok, err := c.put(ctx, fmt.Sprintf("/mapdata/wms/%d", mapDataID), input, &layer)
	if err != nil || !ok {
		return nil, err
	}
	return &layer, nil
}

// CreateGeoJSONLayer registers a new GeoJSON layer.
func (c *Client) CreateGeoJSONLayer(ctx context.Context, input GeoJSONInput) (*MapLayer, error) {
	var layer MapLayer
	ok, err := c.post(ctx, "/mapdata/geojson", input, &layer)
	if err != nil || !ok {
		return nil, err
	}
	return &layer, nil
}

// UpdateGeoJSONLayer modifies an existing GeoJSON layer.
func (c *Client) UpdateGeoJSONLayer(ctx context.Context, mapDataID int, input GeoJSONInput) (*MapLayer, error) {
	var layer MapLayer
	ok, err := c.put(ctx, fmt.Sprintf("/mapdata/geojson/%d", mapDataID), input, &layer)
	if err != nil || !ok {
		return nil, err
	}
	return &layer, nil
}

// DeleteMapData removes one layer.
func (c *Client) DeleteMapData(ctx context.Context, mapDataID int) error {
	_, err := c.delete(ctx, fmt.Sprintf("/mapdata/%d", mapDataID), nil, nil)
	return err
}

// LegacyCityMapData lists a city's map layers through the legacy path kept
// for older dashboard consumers.
func (c *Client) LegacyCityMapData(ctx context.Context, cityCode string) ([]MapLayer, error) {
	var layers []MapLayer
	path := "/mapdata/" + url.PathEscape(strings.ToLower(cityCode)) + "/mapdata/"
	if _, err := c.get(ctx, path, nil, &layers); err != nil {
		return nil, err
	}
	return layers, nil
}

package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/marcogenualdo/godnsweb/internal/dns"
)

func (c *Client) ListZones(ctx context.Context) ([]dns.Zone, error) {
	var zones []dns.Zone
	if err := c.do(ctx, http.MethodGet, c.endpoint(nil, "zones"), nil, &zones); err != nil {
		return nil, err
	}
	return zones, nil
}

func (c *Client) GetZone(ctx context.Context, domain string) (*dns.Zone, error) {
	var zone dns.Zone
	if err := c.do(ctx, http.MethodGet, c.endpoint(nil, "zones", domain), nil, &zone); err != nil {
		return nil, err
	}
	return &zone, nil
}

func (c *Client) CreateZone(ctx context.Context, zone dns.Zone) (*dns.Zone, error) {
	var created dns.Zone
	if err := c.do(ctx, http.MethodPost, c.endpoint(nil, "zones"), zone, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) UpdateZone(ctx context.Context, domain string, zone dns.Zone) (*dns.Zone, error) {
	var updated dns.Zone
	if err := c.do(ctx, http.MethodPut, c.endpoint(nil, "zones", domain), zone, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Client) DeleteZone(ctx context.Context, domain string) error {
	return c.do(ctx, http.MethodDelete, c.endpoint(nil, "zones", domain), nil, nil)
}

type statusRequest struct {
	Enabled bool `json:"enabled"`
}

func (c *Client) SetZoneStatus(ctx context.Context, domain string, enabled bool) error {
	return c.do(ctx, http.MethodPatch, c.endpoint(nil, "zones", domain, "status"), statusRequest{Enabled: enabled}, nil)
}

func (c *Client) CreateRecord(ctx context.Context, domain string, record dns.Record) (*dns.Record, error) {
	var created dns.Record
	if err := c.do(ctx, http.MethodPost, c.endpoint(nil, "zones", domain, "records"), record, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) GetRecord(ctx context.Context, domain, name, recordType string) (*dns.Record, error) {
	var record dns.Record
	if err := c.do(ctx, http.MethodGet, c.endpoint(nil, "zones", domain, "records", name, recordType), nil, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// UpdateRecord replaces the record identified by name and type, which may
// both change.
func (c *Client) UpdateRecord(ctx context.Context, domain, name, recordType string, record dns.Record) (*dns.Record, error) {
	var updated dns.Record
	if err := c.do(ctx, http.MethodPut, c.endpoint(nil, "zones", domain, "records", name, recordType), record, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Client) DeleteRecord(ctx context.Context, domain, name, recordType string) error {
	return c.do(ctx, http.MethodDelete, c.endpoint(nil, "zones", domain, "records", name, recordType), nil, nil)
}

func (c *Client) SetRecordStatus(ctx context.Context, domain, name, recordType string, enabled bool) error {
	return c.do(ctx, http.MethodPatch, c.endpoint(nil, "zones", domain, "records", name, recordType, "status"), statusRequest{Enabled: enabled}, nil)
}

// Search queries zones and records. types narrows the result kinds
// ("zone", "record").
func (c *Client) Search(ctx context.Context, query string, types ...string) (*dns.SearchResponse, error) {
	params := url.Values{"q": {query}}
	for _, t := range types {
		params.Add("type", t)
	}

	var resp dns.SearchResponse
	if err := c.do(ctx, http.MethodGet, c.endpoint(params, "search"), nil, &resp); err != nil {
		return nil, err
	}
	if resp.Results == nil {
		resp.Results = []dns.SearchResult{}
	}
	return &resp, nil
}

// ExportAll returns every enabled zone rendered in format.
func (c *Client) ExportAll(ctx context.Context, format string) (string, error) {
	data, err := c.send(ctx, http.MethodGet, c.endpoint(url.Values{"format": {format}}, "export"), nil, "text/plain")
	return string(data), err
}

func (c *Client) ExportZone(ctx context.Context, domain, format string) (string, error) {
	data, err := c.send(ctx, http.MethodGet, c.endpoint(url.Values{"format": {format}}, "export", domain), nil, "text/plain")
	return string(data), err
}

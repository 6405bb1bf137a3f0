package views

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/marcogenualdo/godnsweb/internal/collection"
	"github.com/marcogenualdo/godnsweb/internal/config"
	"github.com/marcogenualdo/godnsweb/internal/dns"
)

const (
	ViewZones   = "zones"
	ViewRecords = "records"
)

func ZoneView(domain string) string {
	return "zone:" + domain
}

// AllTypes disables the record type filter.
const AllTypes = "All"

// Backend is the part of the DNS API the views read and mutate.
type Backend interface {
	ListZones(ctx context.Context) ([]dns.Zone, error)
	GetZone(ctx context.Context, domain string) (*dns.Zone, error)
	CreateZone(ctx context.Context, zone dns.Zone) (*dns.Zone, error)
	UpdateZone(ctx context.Context, domain string, zone dns.Zone) (*dns.Zone, error)
	DeleteZone(ctx context.Context, domain string) error
	SetZoneStatus(ctx context.Context, domain string, enabled bool) error
	CreateRecord(ctx context.Context, domain string, record dns.Record) (*dns.Record, error)
	UpdateRecord(ctx context.Context, domain, name, recordType string, record dns.Record) (*dns.Record, error)
	DeleteRecord(ctx context.Context, domain, name, recordType string) error
	SetRecordStatus(ctx context.Context, domain, name, recordType string, enabled bool) error
}

// Query carries the changes a request makes to a view's state. Nil and
// zero fields leave the stored state alone.
type Query struct {
	Filter     *string
	TypeFilter *string
	Page       int
	Sort       string
}

type ZoneRow struct {
	Domain      string `json:"domain"`
	Enabled     bool   `json:"enabled"`
	RecordCount int    `json:"record_count"`
}

type RecordItem struct {
	dns.Record
	Zone    string   `json:"zone,omitempty"`
	Display string   `json:"display"`
	Details []string `json:"details,omitempty"`
}

type ZonesPage struct {
	collection.Result[ZoneRow]
	Filter string `json:"filter"`
	Error  string `json:"error,omitempty"`
}

type RecordsPage struct {
	collection.Result[RecordItem]
	Filter     string   `json:"filter"`
	TypeFilter string   `json:"type_filter"`
	Types      []string `json:"types"`
	Error      string   `json:"error,omitempty"`
}

type ZoneDetailPage struct {
	RecordsPage
	Zone *ZoneRow `json:"zone"`
}

// Service renders the list views of one session and applies mutations.
type Service struct {
	backend Backend
	store   *Store
	ui      config.UIConfig
	logger  *slog.Logger
}

func NewService(backend Backend, store *Store, ui config.UIConfig, logger *slog.Logger) *Service {
	return &Service{backend: backend, store: store, ui: ui, logger: logger}
}

var zoneAccessors = collection.Accessors[ZoneRow]{
	Fields: map[string]collection.Accessor[ZoneRow]{
		"domain":  func(z ZoneRow) any { return z.Domain },
		"enabled": func(z ZoneRow) any { return z.Enabled },
	},
	Comparators: map[string]collection.Comparator[ZoneRow]{
		"recordCount": func(a, b ZoneRow) int { return a.RecordCount - b.RecordCount },
	},
}

var recordAccessors = collection.Accessors[RecordItem]{
	Fields: map[string]collection.Accessor[RecordItem]{
		"name":   func(r RecordItem) any { return r.Name },
		"type":   func(r RecordItem) any { return r.Type },
		"ttl":    func(r RecordItem) any { return r.TTL },
		"zone":   func(r RecordItem) any { return r.Zone },
		"value":  func(r RecordItem) any { return r.Display },
		"status": func(r RecordItem) any { return !r.Disabled },
	},
}

func initialState(key string) collection.State {
	return collection.State{Sort: collection.SortConfig{Key: key, Direction: collection.Ascending}, Page: 1}
}

func apply[T any](v *collection.View[T], q Query) {
	if q.Filter != nil {
		v.SetFilter(*q.Filter)
	}
	if q.TypeFilter != nil {
		t := *q.TypeFilter
		if t == AllTypes {
			t = ""
		}
		v.SetTypeFilter(t)
	}
	if q.Sort != "" {
		v.RequestSort(q.Sort)
	}
	if q.Page > 0 {
		v.SetPage(q.Page)
	}
}

// Zones renders the zone list. When the backend fails the previously
// loaded zones are rendered together with the error.
func (s *Service) Zones(ctx context.Context, q Query) (*ZonesPage, error) {
	v := &collection.View[ZoneRow]{
		State:     s.store.State(ctx, ViewZones, initialState("domain")),
		PageSize:  s.ui.ZonesPageSize,
		Accessors: zoneAccessors,
		Match: func(z ZoneRow, st collection.State) bool {
			return collection.ContainsFold(st.Filter, z.Domain)
		},
	}
	apply(v, q)

	zones, loadErr := s.loadZones(ctx)

	rows := make([]ZoneRow, len(zones))
	for i, z := range zones {
		rows[i] = ZoneRow{Domain: z.Domain, Enabled: z.IsEnabled(), RecordCount: len(z.Records)}
	}

	page := &ZonesPage{Result: v.Apply(rows), Filter: v.State.Filter}
	if loadErr != nil {
		page.Error = loadErr.Error()
	}
	s.saveState(ctx, ViewZones, v.State)
	return page, loadErr
}

// Records renders every record of every zone.
func (s *Service) Records(ctx context.Context, q Query) (*RecordsPage, error) {
	v := &collection.View[RecordItem]{
		State:     s.store.State(ctx, ViewRecords, initialState("name")),
		PageSize:  s.ui.RecordsPageSize,
		Accessors: recordAccessors,
		Match: func(r RecordItem, st collection.State) bool {
			if st.TypeFilter != "" && r.Type != st.TypeFilter {
				return false
			}
			return collection.ContainsFold(st.Filter, r.Name, r.Value, r.Zone, r.Display)
		},
	}
	apply(v, q)

	zones, loadErr := s.loadZones(ctx)
	page := s.renderRecords(v, recordItems(dns.Rows(zones)))
	if loadErr != nil {
		page.Error = loadErr.Error()
	}
	s.saveState(ctx, ViewRecords, v.State)
	return page, loadErr
}

// ZoneDetail renders one zone and its records.
func (s *Service) ZoneDetail(ctx context.Context, domain string, q Query) (*ZoneDetailPage, error) {
	view := ZoneView(domain)
	v := &collection.View[RecordItem]{
		State:     s.store.State(ctx, view, initialState("name")),
		PageSize:  s.ui.ZoneDetailPageSize,
		Accessors: recordAccessors,
		Match: func(r RecordItem, st collection.State) bool {
			if st.TypeFilter != "" && r.Type != st.TypeFilter {
				return false
			}
			return collection.ContainsFold(st.Filter, r.Name, r.Value, r.Type, r.Display)
		},
	}
	apply(v, q)

	zone, loadErr := s.backend.GetZone(ctx, domain)
	if loadErr == nil {
		if err := s.store.SaveRows(ctx, view, zone); err != nil {
			s.logger.Warn("failed to cache zone", "domain", domain, "error", err)
		}
	} else {
		zone = nil
		var cached dns.Zone
		if ok, _ := s.store.Rows(ctx, view, &cached); ok {
			zone = &cached
		}
	}

	page := &ZoneDetailPage{}
	var rows []dns.RecordRow
	if zone != nil {
		page.Zone = &ZoneRow{Domain: zone.Domain, Enabled: zone.IsEnabled(), RecordCount: len(zone.Records)}
		rows = dns.Rows([]dns.Zone{*zone})
	}
	items := recordItems(rows)
	for i := range items {
		items[i].Zone = ""
	}
	page.RecordsPage = *s.renderRecords(v, items)
	if loadErr != nil {
		page.Error = loadErr.Error()
	}
	s.saveState(ctx, view, v.State)
	return page, loadErr
}

func (s *Service) renderRecords(v *collection.View[RecordItem], items []RecordItem) *RecordsPage {
	typeFilter := v.State.TypeFilter
	if typeFilter == "" {
		typeFilter = AllTypes
	}
	return &RecordsPage{
		Result:     v.Apply(items),
		Filter:     v.State.Filter,
		TypeFilter: typeFilter,
		Types:      recordTypes(items),
	}
}

// loadZones fetches the zone list, falling back to the last list this
// session loaded.
func (s *Service) loadZones(ctx context.Context) ([]dns.Zone, error) {
	zones, err := s.backend.ListZones(ctx)
	if err == nil {
		if err := s.store.SaveRows(ctx, ViewZones, zones); err != nil {
			s.logger.Warn("failed to cache zones", "error", err)
		}
		return zones, nil
	}

	s.logger.Warn("failed to load zones", "error", err)
	var cached []dns.Zone
	if ok, _ := s.store.Rows(ctx, ViewZones, &cached); ok {
		return cached, err
	}
	return nil, err
}

func (s *Service) saveState(ctx context.Context, view string, st collection.State) {
	if err := s.store.SaveState(ctx, view, st); err != nil {
		s.logger.Warn("failed to save view state", "view", view, "error", err)
	}
}

func recordItems(rows []dns.RecordRow) []RecordItem {
	items := make([]RecordItem, len(rows))
	for i, r := range rows {
		items[i] = RecordItem{
			Record:  r.Record,
			Zone:    r.Zone,
			Display: dns.FormatValue(r.Record),
			Details: dns.Details(r.Record),
		}
	}
	return items
}

// recordTypes lists "All" followed by the distinct types present.
func recordTypes(items []RecordItem) []string {
	seen := make(map[string]struct{})
	var types []string
	for _, it := range items {
		if _, ok := seen[it.Type]; ok {
			continue
		}
		seen[it.Type] = struct{}{}
		types = append(types, it.Type)
	}
	slices.SortFunc(types, strings.Compare)
	return append([]string{AllTypes}, types...)
}

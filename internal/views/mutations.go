package views

import (
	"context"

	"github.com/marcogenualdo/godnsweb/internal/dns"
)

// Mutations validate their input before any request is sent. Callers
// re-render the affected view afterwards.

func (s *Service) CreateZone(ctx context.Context, zone dns.Zone) (*dns.Zone, error) {
	zone.Normalize()
	if err := zone.Validate(); err != nil {
		return nil, err
	}
	return s.backend.CreateZone(ctx, zone)
}

func (s *Service) UpdateZone(ctx context.Context, domain string, zone dns.Zone) (*dns.Zone, error) {
	zone.Normalize()
	if err := zone.Validate(); err != nil {
		return nil, err
	}
	for i := range zone.Records {
		zone.Records[i].Normalize()
		if err := zone.Records[i].Validate(); err != nil {
			return nil, err
		}
	}
	return s.backend.UpdateZone(ctx, domain, zone)
}

func (s *Service) DeleteZone(ctx context.Context, domain string) error {
	if err := s.backend.DeleteZone(ctx, domain); err != nil {
		return err
	}
	if err := s.store.Forget(ctx, ZoneView(domain)); err != nil {
		s.logger.Warn("failed to drop zone view state", "domain", domain, "error", err)
	}
	return nil
}

func (s *Service) SetZoneStatus(ctx context.Context, domain string, enabled bool) error {
	return s.backend.SetZoneStatus(ctx, domain, enabled)
}

func (s *Service) CreateRecord(ctx context.Context, domain string, record dns.Record) (*dns.Record, error) {
	record.Normalize()
	if err := record.Validate(); err != nil {
		return nil, err
	}
	return s.backend.CreateRecord(ctx, domain, record)
}

func (s *Service) UpdateRecord(ctx context.Context, domain, name, recordType string, record dns.Record) (*dns.Record, error) {
	record.Normalize()
	if err := record.Validate(); err != nil {
		return nil, err
	}
	return s.backend.UpdateRecord(ctx, domain, name, recordType, record)
}

func (s *Service) DeleteRecord(ctx context.Context, domain, name, recordType string) error {
	return s.backend.DeleteRecord(ctx, domain, name, recordType)
}

func (s *Service) SetRecordStatus(ctx context.Context, domain, name, recordType string, enabled bool) error {
	return s.backend.SetRecordStatus(ctx, domain, name, recordType, enabled)
}

package dns

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordValidate(t *testing.T) {
	tests := []struct {
		name    string
		record  Record
		field   string
		message string
	}{
		{
			name:    "name required before anything else",
			record:  Record{Name: "  ", Type: TypeMX, TTL: -1},
			field:   "name",
			message: "Name is required",
		},
		{
			name:   "unknown type",
			record: Record{Name: "www", Type: "HINFO", Value: "x"},
			field:  "type",
		},
		{
			name:    "mx host",
			record:  Record{Name: "@", Type: TypeMX, MXPriority: Ptr(10)},
			field:   "mx_host",
			message: "MX host is required",
		},
		{
			name:    "mx priority range",
			record:  Record{Name: "@", Type: TypeMX, MXHost: "mail", MXPriority: Ptr(70000)},
			field:   "mx_priority",
			message: "MX priority must be between 0 and 65535",
		},
		{
			name:    "srv port missing",
			record:  Record{Name: "_sip._tcp", Type: TypeSRV, SRVTarget: "sip"},
			field:   "srv_target",
			message: "SRV target and port are required",
		},
		{
			name:   "srv weight range",
			record: Record{Name: "_sip._tcp", Type: TypeSRV, SRVTarget: "sip", SRVPort: Ptr(5060), SRVPriority: Ptr(10), SRVWeight: Ptr(-1)},
			field:  "srv_weight",
		},
		{
			name:    "soa names",
			record:  Record{Name: "@", Type: TypeSOA, SOAMname: "ns1"},
			field:   "soa_mname",
			message: "SOA mname and rname are required",
		},
		{
			name:   "soa numbers",
			record: Record{Name: "@", Type: TypeSOA, SOAMname: "ns1", SOARname: "admin", SOASerial: Ptr[int64](1)},
			field:  "soa_serial",
		},
		{
			name:    "caa flags",
			record:  Record{Name: "@", Type: TypeCAA, CAAValue: "letsencrypt.org", CAATag: "issue", CAAFlags: Ptr(1)},
			field:   "caa_flags",
			message: "CAA flags must be 0 or 128",
		},
		{
			name:   "caa tag",
			record: Record{Name: "@", Type: TypeCAA, CAAValue: "letsencrypt.org", CAATag: "bogus", CAAFlags: Ptr(0)},
			field:  "caa_tag",
		},
		{
			name:    "simple value",
			record:  Record{Name: "www", Type: TypeA, TTL: 300},
			field:   "value",
			message: "Value is required",
		},
		{
			name:   "ttl last",
			record: Record{Name: "www", Type: TypeA, Value: "192.0.2.1", TTL: -5},
			field:  "ttl",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.record.Validate()
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			if tt.message != "" {
				assert.Equal(t, tt.message, verr.Error())
			}
		})
	}
}

func TestRecordValidate_Valid(t *testing.T) {
	records := []Record{
		{Name: "www", Type: TypeA, TTL: 300, Value: "192.0.2.1"},
		{Name: "@", Type: TypeMX, TTL: 0, MXPriority: Ptr(0), MXHost: "mail.example.com"},
		{Name: "_sip._tcp", Type: TypeSRV, SRVPriority: Ptr(10), SRVWeight: Ptr(60), SRVPort: Ptr(5060), SRVTarget: "sip"},
		{Name: "@", Type: TypeSOA, SOAMname: "ns1", SOARname: "admin", SOASerial: Ptr[int64](2024110601),
			SOARefresh: Ptr(3600), SOARetry: Ptr(1800), SOAExpire: Ptr(604800), SOAMinimum: Ptr(300)},
		{Name: "@", Type: TypeCAA, CAAFlags: Ptr(128), CAATag: "iodef", CAAValue: "mailto:sec@example.com"},
	}
	for _, r := range records {
		assert.NoError(t, r.Validate(), r.Type)
	}
}

func TestRecordNormalize_KeepsOneFieldGroup(t *testing.T) {
	r := Record{
		Name:       " mail ",
		Type:       "mx",
		TTL:        300,
		Value:      "stale",
		MXPriority: Ptr(10),
		MXHost:     " mx.example.com ",
		SRVTarget:  "leftover",
		CAATag:     "issue",
	}

	r.Normalize()

	assert.Equal(t, Record{Name: "mail", Type: TypeMX, TTL: 300, MXPriority: Ptr(10), MXHost: "mx.example.com"}, r)
}

func TestRecord_JSONFieldNames(t *testing.T) {
	r := Record{Name: "@", Type: TypeCAA, TTL: 300, CAAFlags: Ptr(0), CAATag: "issue", CAAValue: "ca.example"}

	data, err := json.Marshal(r)
	require.NoError(t, err)

	assert.JSONEq(t, `{"name":"@","type":"CAA","ttl":300,"caa_flags":0,"caa_tag":"issue","caa_value":"ca.example"}`, string(data))
}

func TestZoneValidate(t *testing.T) {
	assert.NoError(t, (&Zone{Domain: "example.com."}).Validate())
	assert.NoError(t, (&Zone{Domain: "sub-1.example.co.uk"}).Validate())

	for _, domain := range []string{"", "  ", "-bad.com", "bad..com", "spaces here.com", "bad-.com"} {
		assert.Error(t, (&Zone{Domain: domain}).Validate(), domain)
	}
}

func TestZone_IsEnabledDefaultsTrue(t *testing.T) {
	assert.True(t, Zone{}.IsEnabled())
	assert.False(t, Zone{Enabled: Ptr(false)}.IsEnabled())
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "10 → mail.example.com", FormatValue(Record{Type: TypeMX, MXPriority: Ptr(10), MXHost: "mail.example.com"}))
	assert.Equal(t, "Pri: 10, Wgt: 60, Port: 5060 → sip", FormatValue(Record{Type: TypeSRV, SRVPriority: Ptr(10), SRVWeight: Ptr(60), SRVPort: Ptr(5060), SRVTarget: "sip"}))
	assert.Equal(t, "ns1 admin (Serial: 7)", FormatValue(Record{Type: TypeSOA, SOAMname: "ns1", SOARname: "admin", SOASerial: Ptr[int64](7)}))
	assert.Equal(t, "[Critical] issue: ca", FormatValue(Record{Type: TypeCAA, CAAFlags: Ptr(128), CAATag: "issue", CAAValue: "ca"}))
	assert.Equal(t, "raw", FormatValue(Record{Type: TypeMX, Value: "raw"}))
	assert.Equal(t, "192.0.2.1", FormatValue(Record{Type: TypeA, Value: "192.0.2.1"}))
}

func TestDetails(t *testing.T) {
	assert.Equal(t, []string{"Flags: 0 (Non-critical)", "Tag: issue", "Value: ca"},
		Details(Record{Type: TypeCAA, CAAFlags: Ptr(0), CAATag: "issue", CAAValue: "ca"}))
	assert.Equal(t, []string{"Primary NS: ns1", "Serial: 1", "Minimum: 300s"},
		Details(Record{Type: TypeSOA, SOAMname: "ns1", SOASerial: Ptr[int64](1), SOAMinimum: Ptr(300)}))
	assert.Nil(t, Details(Record{Type: TypeTXT}))
}

func TestRows(t *testing.T) {
	zones := []Zone{
		{Domain: "a.com", Records: []Record{{Name: "www"}, {Name: "mail"}}},
		{Domain: "b.com", Records: []Record{{Name: "@"}}},
	}

	rows := Rows(zones)

	require.Len(t, rows, 3)
	assert.Equal(t, "a.com", rows[1].Zone)
	assert.Equal(t, "mail", rows[1].Name)
	assert.Equal(t, "b.com", rows[2].Zone)
}

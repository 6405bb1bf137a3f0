package dns

// Record types the console can edit.
const (
	TypeA     = "A"
	TypeAAAA  = "AAAA"
	TypeCNAME = "CNAME"
	TypeALIAS = "ALIAS"
	TypeMX    = "MX"
	TypeNS    = "NS"
	TypeTXT   = "TXT"
	TypePTR   = "PTR"
	TypeSRV   = "SRV"
	TypeSOA   = "SOA"
	TypeCAA   = "CAA"
)

var RecordTypes = []string{
	TypeA, TypeAAAA, TypeCNAME, TypeALIAS, TypeMX, TypeNS,
	TypeTXT, TypePTR, TypeSRV, TypeSOA, TypeCAA,
}

// DefaultTTL is used for new records when none is given.
const DefaultTTL = 300

var CAATags = []string{"issue", "issuewild", "iodef"}

type Zone struct {
	Domain  string   `json:"domain"`
	Enabled *bool    `json:"enabled,omitempty"`
	Records []Record `json:"records"`
}

// IsEnabled treats a zone without an explicit flag as enabled.
func (z Zone) IsEnabled() bool {
	return z.Enabled == nil || *z.Enabled
}

// Record is a resource record. Exactly one group of type-specific fields
// is meaningful, selected by Type; simple types use Value.
type Record struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	TTL      int    `json:"ttl"`
	Disabled bool   `json:"disabled,omitempty"`
	Value    string `json:"value,omitempty"`

	MXPriority *int   `json:"mx_priority,omitempty"`
	MXHost     string `json:"mx_host,omitempty"`

	SRVPriority *int   `json:"srv_priority,omitempty"`
	SRVWeight   *int   `json:"srv_weight,omitempty"`
	SRVPort     *int   `json:"srv_port,omitempty"`
	SRVTarget   string `json:"srv_target,omitempty"`

	SOAMname   string `json:"soa_mname,omitempty"`
	SOARname   string `json:"soa_rname,omitempty"`
	SOASerial  *int64 `json:"soa_serial,omitempty"`
	SOARefresh *int   `json:"soa_refresh,omitempty"`
	SOARetry   *int   `json:"soa_retry,omitempty"`
	SOAExpire  *int   `json:"soa_expire,omitempty"`
	SOAMinimum *int   `json:"soa_minimum,omitempty"`

	CAAFlags *int   `json:"caa_flags,omitempty"`
	CAATag   string `json:"caa_tag,omitempty"`
	CAAValue string `json:"caa_value,omitempty"`
}

// RecordRow is a record together with the zone it belongs to, as listed
// by the cross-zone records view.
type RecordRow struct {
	Record
	Zone string `json:"zone"`
}

// Rows flattens the records of every zone.
func Rows(zones []Zone) []RecordRow {
	var n int
	for _, z := range zones {
		n += len(z.Records)
	}
	rows := make([]RecordRow, 0, n)
	for _, z := range zones {
		for _, r := range z.Records {
			rows = append(rows, RecordRow{Record: r, Zone: z.Domain})
		}
	}
	return rows
}

type SearchResult struct {
	Type      string     `json:"type"`
	Zone      *Zone      `json:"zone,omitempty"`
	Record    *RecordRow `json:"record,omitempty"`
	Highlight string     `json:"highlight,omitempty"`
}

type SearchResponse struct {
	Results []SearchResult `json:"results"`
	Total   int            `json:"total"`
	Query   string         `json:"query"`
}

// Export formats understood by the backend.
var ExportFormats = []string{"bind", "zonefile", "coredns", "powerdns"}

func Ptr[T any](v T) *T { return &v }

package dns

import (
	"fmt"
	"slices"
	"strings"
)

// ValidationError is a client-side rejection of user input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func IsRecordType(t string) bool {
	return slices.Contains(RecordTypes, t)
}

// Validate checks a record before it is sent to the backend. Rules are
// evaluated in order and the first violation is returned.
func (r *Record) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return invalid("name", "Name is required")
	}
	if !IsRecordType(r.Type) {
		return invalid("type", "Unsupported record type %q", r.Type)
	}

	switch r.Type {
	case TypeMX:
		if strings.TrimSpace(r.MXHost) == "" {
			return invalid("mx_host", "MX host is required")
		}
		if !inUint16(r.MXPriority) {
			return invalid("mx_priority", "MX priority must be between 0 and 65535")
		}
	case TypeSRV:
		if strings.TrimSpace(r.SRVTarget) == "" || r.SRVPort == nil {
			return invalid("srv_target", "SRV target and port are required")
		}
		if !inUint16(r.SRVPriority) {
			return invalid("srv_priority", "SRV priority must be between 0 and 65535")
		}
		if !inUint16(r.SRVWeight) {
			return invalid("srv_weight", "SRV weight must be between 0 and 65535")
		}
		if !inUint16(r.SRVPort) {
			return invalid("srv_port", "SRV port must be between 0 and 65535")
		}
	case TypeSOA:
		if strings.TrimSpace(r.SOAMname) == "" || strings.TrimSpace(r.SOARname) == "" {
			return invalid("soa_mname", "SOA mname and rname are required")
		}
		if r.SOASerial == nil || r.SOARefresh == nil || r.SOARetry == nil || r.SOAExpire == nil || r.SOAMinimum == nil {
			return invalid("soa_serial", "All SOA numeric fields must be valid numbers")
		}
	case TypeCAA:
		if strings.TrimSpace(r.CAAValue) == "" {
			return invalid("caa_value", "CAA value is required")
		}
		if r.CAAFlags == nil || (*r.CAAFlags != 0 && *r.CAAFlags != 128) {
			return invalid("caa_flags", "CAA flags must be 0 or 128")
		}
		if !slices.Contains(CAATags, r.CAATag) {
			return invalid("caa_tag", "CAA tag must be one of %s", strings.Join(CAATags, ", "))
		}
	default:
		if strings.TrimSpace(r.Value) == "" {
			return invalid("value", "Value is required")
		}
	}

	if r.TTL < 0 {
		return invalid("ttl", "TTL must be a positive number")
	}
	return nil
}

func inUint16(v *int) bool {
	return v != nil && *v >= 0 && *v <= 65535
}

// Normalize trims user input and drops the fields that do not belong to
// the record type.
func (r *Record) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Type = strings.ToUpper(strings.TrimSpace(r.Type))

	out := Record{Name: r.Name, Type: r.Type, TTL: r.TTL, Disabled: r.Disabled}
	switch r.Type {
	case TypeMX:
		out.MXPriority = r.MXPriority
		out.MXHost = strings.TrimSpace(r.MXHost)
	case TypeSRV:
		out.SRVPriority = r.SRVPriority
		out.SRVWeight = r.SRVWeight
		out.SRVPort = r.SRVPort
		out.SRVTarget = strings.TrimSpace(r.SRVTarget)
	case TypeSOA:
		out.SOAMname = strings.TrimSpace(r.SOAMname)
		out.SOARname = strings.TrimSpace(r.SOARname)
		out.SOASerial = r.SOASerial
		out.SOARefresh = r.SOARefresh
		out.SOARetry = r.SOARetry
		out.SOAExpire = r.SOAExpire
		out.SOAMinimum = r.SOAMinimum
	case TypeCAA:
		out.CAAFlags = r.CAAFlags
		out.CAATag = r.CAATag
		out.CAAValue = strings.TrimSpace(r.CAAValue)
	default:
		out.Value = strings.TrimSpace(r.Value)
	}
	*r = out
}

// Validate checks a zone before creation.
func (z *Zone) Validate() error {
	domain := strings.TrimSpace(z.Domain)
	if domain == "" {
		return invalid("domain", "Domain is required")
	}
	if !IsDomainName(domain) {
		return invalid("domain", "%q is not a valid domain name", domain)
	}
	return nil
}

func (z *Zone) Normalize() {
	z.Domain = strings.TrimSpace(z.Domain)
	if z.Records == nil {
		z.Records = []Record{}
	}
}

// IsDomainName reports whether s is a syntactically valid DNS name: at
// most 253 characters, labels of 1 to 63 letters, digits or hyphens that
// neither start nor end with a hyphen. A single trailing dot is allowed.
func IsDomainName(s string) bool {
	s = strings.TrimSuffix(s, ".")
	if s == "" || len(s) > 253 {
		return false
	}
	for _, label := range strings.Split(s, ".") {
		if len(label) == 0 || len(label) > 63 {
			return false
		}
		if label[0] == '-' || label[len(label)-1] == '-' {
			return false
		}
		for i := 0; i < len(label); i++ {
			c := label[i]
			isAlnum := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
			if !isAlnum && c != '-' && c != '_' {
				return false
			}
		}
	}
	return true
}

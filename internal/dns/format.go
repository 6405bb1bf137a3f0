package dns

import "fmt"

// FormatValue renders the value column of a record. Structured types fall
// back to Value when their fields are incomplete.
func FormatValue(r Record) string {
	switch r.Type {
	case TypeMX:
		if r.MXPriority != nil && r.MXHost != "" {
			return fmt.Sprintf("%d → %s", *r.MXPriority, r.MXHost)
		}
	case TypeSRV:
		if r.SRVPriority != nil && r.SRVWeight != nil && r.SRVPort != nil && r.SRVTarget != "" {
			return fmt.Sprintf("Pri: %d, Wgt: %d, Port: %d → %s", *r.SRVPriority, *r.SRVWeight, *r.SRVPort, r.SRVTarget)
		}
	case TypeSOA:
		if r.SOAMname != "" && r.SOARname != "" && r.SOASerial != nil {
			return fmt.Sprintf("%s %s (Serial: %d)", r.SOAMname, r.SOARname, *r.SOASerial)
		}
	case TypeCAA:
		if r.CAAFlags != nil && r.CAATag != "" && r.CAAValue != "" {
			return fmt.Sprintf("[%s] %s: %s", caaFlagText(*r.CAAFlags), r.CAATag, r.CAAValue)
		}
	}
	return r.Value
}

// Details lists the labelled fields of a record for detail views.
func Details(r Record) []string {
	var out []string
	add := func(format string, args ...any) {
		out = append(out, fmt.Sprintf(format, args...))
	}

	switch r.Type {
	case TypeMX:
		if r.MXPriority != nil {
			add("Priority: %d", *r.MXPriority)
		}
		if r.MXHost != "" {
			add("Mail Server: %s", r.MXHost)
		}
	case TypeSRV:
		if r.SRVPriority != nil {
			add("Priority: %d", *r.SRVPriority)
		}
		if r.SRVWeight != nil {
			add("Weight: %d", *r.SRVWeight)
		}
		if r.SRVPort != nil {
			add("Port: %d", *r.SRVPort)
		}
		if r.SRVTarget != "" {
			add("Target: %s", r.SRVTarget)
		}
	case TypeSOA:
		if r.SOAMname != "" {
			add("Primary NS: %s", r.SOAMname)
		}
		if r.SOARname != "" {
			add("Admin: %s", r.SOARname)
		}
		if r.SOASerial != nil {
			add("Serial: %d", *r.SOASerial)
		}
		if r.SOARefresh != nil {
			add("Refresh: %ds", *r.SOARefresh)
		}
		if r.SOARetry != nil {
			add("Retry: %ds", *r.SOARetry)
		}
		if r.SOAExpire != nil {
			add("Expire: %ds", *r.SOAExpire)
		}
		if r.SOAMinimum != nil {
			add("Minimum: %ds", *r.SOAMinimum)
		}
	case TypeCAA:
		if r.CAAFlags != nil {
			add("Flags: %d (%s)", *r.CAAFlags, caaFlagText(*r.CAAFlags))
		}
		if r.CAATag != "" {
			add("Tag: %s", r.CAATag)
		}
		if r.CAAValue != "" {
			add("Value: %s", r.CAAValue)
		}
	default:
		if r.Value != "" {
			out = append(out, r.Value)
		}
	}
	return out
}

func caaFlagText(flags int) string {
	if flags == 128 {
		return "Critical"
	}
	return "Non-critical"
}

package transform

// CanonicalField is one of the fixed target field names every downstream
// analysis tool expects.
type CanonicalField = string

const (
	FieldIncidentID     CanonicalField = "incident_id"
	FieldIncidentTime   CanonicalField = "incident_time"
	FieldIncidentDate   CanonicalField = "incident_date"
	FieldDispatchTime   CanonicalField = "dispatch_time"
	FieldEnrouteTime    CanonicalField = "enroute_time"
	FieldArrivalTime    CanonicalField = "arrival_time"
	FieldClearTime      CanonicalField = "clear_time"
	FieldIncidentType   CanonicalField = "incident_type"
	FieldRespondingUnit CanonicalField = "responding_unit"
	FieldAddress        CanonicalField = "address"
	FieldCity           CanonicalField = "city"
	FieldState          CanonicalField = "state"
	FieldLatitude       CanonicalField = "latitude"
	FieldLongitude      CanonicalField = "longitude"
)

// timeOnlyFields always end up holding a bare HH:MM[:SS] value. A full
// datetime landing here is reduced to its time portion.
//
// incident_time is deliberately absent: it keeps the full datetime string
// because response-time computation downstream needs a single absolute
// timestamp. Do not add it here.
var timeOnlyFields = map[string]bool{
	FieldDispatchTime: true,
	FieldEnrouteTime:  true,
	FieldArrivalTime:  true,
	FieldClearTime:    true,
}

// dateOnlyFields always end up holding a bare date value.
var dateOnlyFields = map[string]bool{
	FieldIncidentDate: true,
}

// IsTimeOnlyField reports whether target is reduced to time-only output.
func IsTimeOnlyField(target string) bool { return timeOnlyFields[target] }

// IsDateOnlyField reports whether target is reduced to date-only output.
func IsDateOnlyField(target string) bool { return dateOnlyFields[target] }

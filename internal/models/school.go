package models

// SchoolType selects the weekly grid shape. Primary and middle schools run
// seven lesson slots per day, the high-school variants run eight.
type SchoolType string

const (
	SchoolPrimary    SchoolType = "PRIMARY"
	SchoolMiddle     SchoolType = "MIDDLE"
	SchoolHigh       SchoolType = "HIGH"
	SchoolAnatolian  SchoolType = "ANATOLIAN"
	SchoolScience    SchoolType = "SCIENCE"
	SchoolVocational SchoolType = "VOCATIONAL"
)

// SchoolDays is the fixed teaching week.
const SchoolDays = 5

// SlotsPerDay maps a school type to its daily lesson-slot count. Unknown
// types fall back to the eight-slot high-school grid.
func (t SchoolType) SlotsPerDay() int {
	switch t {
	case SchoolPrimary, SchoolMiddle:
		return 7
	default:
		return 8
	}
}

// ConfigEntry is one key/value row of the school_config table.
type ConfigEntry struct {
	Key   string `db:"key" json:"key"`
	Value string `db:"value" json:"value"`
}

// ConfigKeySchoolType is the school_config key holding the SchoolType.
const ConfigKeySchoolType = "school_type"

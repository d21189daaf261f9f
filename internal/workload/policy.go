package workload

// CoefficientBand maps an inclusive upper student-count bound to a class
// size multiplier. A zero MaxStudents marks the open-ended last band.
type CoefficientBand struct {
	MaxStudents int
	Coefficient float64
}

// Policy is the versioned set of conversion rules used to turn raw contact
// periods into standard hours ("giờ chuẩn"). Keeping the constants in a
// policy object lets hours computed under an older academic-year policy
// remain reproducible after the rules change.
type Policy struct {
	Version string

	// Bands must be sorted by ascending MaxStudents, last entry open-ended.
	Bands []CoefficientBand

	// PracticeGroupSize is the maximum students per practice sub-group.
	PracticeGroupSize int

	// GraduationProjectFactor and InternshipFactor convert guidance
	// credits x students into hours.
	GraduationProjectFactor float64
	InternshipFactor        float64

	// DefaultQuota is the annual standard-hour obligation.
	DefaultQuota float64
}

// DefaultPolicy returns the policy in force since the 2024 academic year.
func DefaultPolicy() Policy {
	return Policy{
		Version: "2024A",
		Bands: []CoefficientBand{
			{MaxStudents: 40, Coefficient: 1.0},
			{MaxStudents: 60, Coefficient: 1.1},
			{MaxStudents: 80, Coefficient: 1.2},
			{MaxStudents: 100, Coefficient: 1.4},
			{MaxStudents: 120, Coefficient: 1.5},
			{MaxStudents: 150, Coefficient: 1.6},
			{MaxStudents: 0, Coefficient: 1.7},
		},
		PracticeGroupSize:       20,
		GraduationProjectFactor: 2.0,
		InternshipFactor:        0.8,
		DefaultQuota:            270,
	}
}

package workload

import "math"

// PeriodCounts breaks out contact periods by pedagogical type.
type PeriodCounts struct {
	Theory   int `json:"theory"`
	Exercise int `json:"exercise"`
	Discuss  int `json:"discuss"`
	Practice int `json:"practice"`
}

// Total returns the raw number of contact periods.
func (p PeriodCounts) Total() int {
	return p.Theory + p.Exercise + p.Discuss + p.Practice
}

// Coefficient looks up the class-size multiplier for the given headcount.
// Band upper bounds are inclusive: exactly 40 students yields 1.0, 41
// yields 1.1. The functions here are permissively pure and perform no
// input validation; callers reject out-of-range values first.
func Coefficient(p Policy, studentCount int) float64 {
	for _, band := range p.Bands {
		if band.MaxStudents == 0 {
			return band.Coefficient
		}
		if studentCount <= band.MaxStudents {
			return band.Coefficient
		}
	}
	return 1.0
}

// PracticeGroups returns how many sub-groups of at most PracticeGroupSize
// students the class splits into for lab sessions. Zero when the class is
// empty.
func PracticeGroups(p Policy, studentCount int) int {
	if studentCount <= 0 || p.PracticeGroupSize <= 0 {
		return 0
	}
	return int(math.Ceil(float64(studentCount) / float64(p.PracticeGroupSize)))
}

// TeachingHours converts a section's period counts and headcount into
// standard hours. The first term load-adjusts all contact periods by the
// class-size coefficient; the second rewards practice periods once per
// sub-group, because labs are taught per group while theory is delivered
// once to the whole class. Result is rounded to 2 decimal places.
func TeachingHours(p Policy, periods PeriodCounts, studentCount int) float64 {
	coeff := Coefficient(p, studentCount)
	groups := PracticeGroups(p, studentCount)
	raw := float64(periods.Total())*coeff + float64(periods.Practice)*float64(groups)
	return round2(raw)
}

// GuidanceHours converts a supervision task into hours. Graduation-project
// supervision counts double weight, internship supervision 0.8. No rounding
// is applied, matching the teaching-office's established figures.
func GuidanceHours(p Policy, graduationProject bool, credits float64, studentCount int) float64 {
	factor := p.InternshipFactor
	if graduationProject {
		factor = p.GraduationProjectFactor
	}
	return credits * float64(studentCount) * factor
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

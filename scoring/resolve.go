package scoring

// Upper bounds (inclusive) of working minutes for each reward band.
const (
	FastThresholdMinutes   = 120
	MediumThresholdMinutes = 240
	SlowThresholdMinutes   = 360
)

const (
	FastScore   = 5
	MediumScore = 3
	SlowScore   = 1
	LateScore   = -3
)

// MissedPenalty is subtracted from a user's score when a task passes its cutoff.
const MissedPenalty = 5

// ResolveScore maps elapsed working minutes to a score delta.
func ResolveScore(workingMinutes int) int {
	switch {
	case workingMinutes <= FastThresholdMinutes:
		return FastScore
	case workingMinutes <= MediumThresholdMinutes:
		return MediumScore
	case workingMinutes <= SlowThresholdMinutes:
		return SlowScore
	default:
		return LateScore
	}
}

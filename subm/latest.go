package subm

// LatestPerTask keeps only the most recent submission of each task, judged by
// SubmittedAt. On equal timestamps the one seen first wins. The result keeps
// the order in which each task first appeared in subms.
func LatestPerTask(subms []Submission) []Submission {
	pos := make(map[string]int, len(subms))
	res := make([]Submission, 0, len(subms))
	for _, s := range subms {
		i, seen := pos[s.TaskID]
		if !seen {
			pos[s.TaskID] = len(res)
			res = append(res, s)
			continue
		}
		if s.SubmittedAt.After(res[i].SubmittedAt) {
			res[i] = s
		}
	}
	return res
}

// SumScoreDeltas adds up ScoreDelta of every given submission.
func SumScoreDeltas(subms []Submission) int {
	total := 0
	for _, s := range subms {
		total += s.ScoreDelta
	}
	return total
}

// GroupByUser splits submissions by UserID, skipping rows without one.
func GroupByUser(subms []Submission) map[string][]Submission {
	res := make(map[string][]Submission)
	for _, s := range subms {
		if s.UserID == "" {
			continue
		}
		res[s.UserID] = append(res[s.UserID], s)
	}
	return res
}

package tutor

import "math"

// Stats are the locally computed session figures. Score is a percentage.
type Stats struct {
	Total     int `json:"total"`
	Correct   int `json:"correct"`
	Incorrect int `json:"incorrect"`
	Score     int `json:"score"`
	Attempts  int `json:"attempts"`
	Hints     int `json:"hints"`
}

// ComputeStats counts an exercise as correct when any of its attempts is
// correct. Score is round(correct/total*100).
func ComputeStats(data SessionData) Stats {
	s := Stats{Total: len(data.Exercises), Attempts: len(data.Attempts)}

	correct := make(map[string]bool, len(data.Exercises))
	hints := make(map[string]int, len(data.Exercises))
	for _, a := range data.Attempts {
		if a.IsCorrect {
			correct[a.ExerciseID] = true
		}
		hints[a.ExerciseID] = max(hints[a.ExerciseID], a.HintsUsed)
	}
	for _, ex := range data.Exercises {
		if correct[ex.ID] {
			s.Correct++
		}
		s.Hints += hints[ex.ID]
	}

	s.Incorrect = s.Total - s.Correct
	if s.Total > 0 {
		s.Score = int(math.Round(float64(s.Correct) / float64(s.Total) * 100))
	}
	return s
}

// attemptsFor returns the attempts made on one exercise, in order.
func attemptsFor(attempts []Attempt, exerciseID string) []Attempt {
	var out []Attempt
	for _, a := range attempts {
		if a.ExerciseID == exerciseID {
			out = append(out, a)
		}
	}
	return out
}

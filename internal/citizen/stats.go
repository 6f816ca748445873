package citizen

type Stats struct {
	StatusCounts      map[Status]int `json:"statusCounts"`
	StatusPercentages map[Status]int `json:"statusPercentages"`
}

// NewStats reports every known status, percentages truncated toward zero.
func NewStats(counts map[Status]int, total int) Stats {
	stats := Stats{
		StatusCounts:      make(map[Status]int, len(Statuses)),
		StatusPercentages: make(map[Status]int, len(Statuses)),
	}
	for _, status := range Statuses {
		count := counts[status]
		stats.StatusCounts[status] = count
		if total > 0 {
			stats.StatusPercentages[status] = count * 100 / total
		} else {
			stats.StatusPercentages[status] = 0
		}
	}
	return stats
}

package area

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

//go:embed data/areas.json
var areasJSON []byte

type seedUnion struct {
	Name     string   `json:"name"`
	Villages []string `json:"villages"`
}

type seedUpozilla struct {
	Upozilla string      `json:"upozilla"`
	Unions   []seedUnion `json:"unions"`
}

// SeedData is the bundled union and village tree of every upozilla.
type SeedData []seedUpozilla

func LoadSeedData() (SeedData, error) {
	var data SeedData
	if err := json.Unmarshal(areasJSON, &data); err != nil {
		return nil, fmt.Errorf("unmarshal area seed data: %w", err)
	}
	return data, nil
}

func (d SeedData) UnionsCount() int {
	count := 0
	for _, up := range d {
		count += len(up.Unions)
	}
	return count
}

func (d SeedData) VillagesCount() int {
	count := 0
	for _, up := range d {
		for _, u := range up.Unions {
			count += len(u.Villages)
		}
	}
	return count
}

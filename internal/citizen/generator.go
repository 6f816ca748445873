package citizen

import (
	"errors"
	"sync"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/tauhid97k/voters-info-api/pkg"
)

var ErrNoVillages = errors.New("no villages to place citizens in")

// Generator produces fake citizens for seeding.
type Generator struct {
	mu    sync.Mutex
	faker *gofakeit.Faker
}

// NewGenerator with seed 0 gives a randomly seeded generator.
func NewGenerator(seed int64) *Generator {
	return &Generator{
		faker: gofakeit.New(seed),
	}
}

func (g *Generator) Generate(count int, villages []VillageRef) ([]Citizen, error) {
	if len(villages) == 0 {
		return nil, ErrNoVillages
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	bornAfter := time.Date(1950, time.January, 1, 0, 0, 0, 0, time.UTC)
	bornBefore := time.Date(2006, time.January, 1, 0, 0, 0, 0, time.UTC)

	citizens := make([]Citizen, 0, count)
	for i := 0; i < count; i++ {
		village := villages[g.faker.IntRange(0, len(villages)-1)]
		gender := "MALE"
		if g.faker.Bool() {
			gender = "FEMALE"
		}
		dob := g.faker.DateRange(bornAfter, bornBefore)

		citizens = append(citizens, Citizen{
			Name:        g.faker.FirstName() + " " + g.faker.LastName(),
			FatherName:  g.faker.FirstName() + " " + g.faker.LastName(),
			MotherName:  g.faker.FirstName() + " " + g.faker.LastName(),
			NID:         pkg.ToBengaliDigits(g.faker.Numerify("##########")),
			DateOfBirth: time.Date(dob.Year(), dob.Month(), dob.Day(), 0, 0, 0, 0, time.UTC),
			Gender:      gender,
			Phone:       "01" + g.faker.Numerify("#########"),
			Address:     g.faker.Street(),
			Status:      Statuses[g.faker.IntRange(0, len(Statuses)-1)],
			UpozillaID:  village.UpozillaID,
			UnionID:     village.UnionID,
			VillageID:   village.VillageID,
		})
	}

	return citizens, nil
}

package citizen

import (
	"time"
)

type Status string

const (
	StatusRed    Status = "RED"
	StatusGreen  Status = "GREEN"
	StatusYellow Status = "YELLOW"
	StatusWhite  Status = "WHITE"
)

// Statuses lists every status in the order statistics are reported.
var Statuses = []Status{StatusRed, StatusGreen, StatusYellow, StatusWhite}

func (s Status) Valid() bool {
	for _, status := range Statuses {
		if s == status {
			return true
		}
	}
	return false
}

type Citizen struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	FatherName  string    `json:"father_name"`
	MotherName  string    `json:"mother_name"`
	NID         string    `json:"nid"`
	DateOfBirth time.Time `json:"date_of_birth"`
	Gender      string    `json:"gender"`
	Phone       string    `json:"phone"`
	Address     string    `json:"address"`
	Status      Status    `json:"status"`
	UpozillaID  int       `json:"upozilla_id"`
	UnionID     int       `json:"union_id"`
	VillageID   int       `json:"village_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// VillageRef places a village in its union and upozilla.
type VillageRef struct {
	VillageID  int
	UnionID    int
	UpozillaID int
}

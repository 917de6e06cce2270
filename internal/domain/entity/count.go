package entity

import (
	"fmt"
	"strings"
	"time"
)

// Direction is the approach leg traffic enters the intersection from.
type Direction string

const (
	Southbound Direction = "SB"
	Westbound  Direction = "WB"
	Northbound Direction = "NB"
	Eastbound  Direction = "EB"
)

// Directions lists the approaches in the order field sheets lay them out.
var Directions = []Direction{Southbound, Westbound, Northbound, Eastbound}

// Label returns the long form used on field sheets, e.g. "Northbound".
func (d Direction) Label() string {
	switch d {
	case Southbound:
		return "Southbound"
	case Westbound:
		return "Westbound"
	case Northbound:
		return "Northbound"
	case Eastbound:
		return "Eastbound"
	}
	return string(d)
}

// Movement is a turning movement or crosswalk column within an approach.
type Movement string

const (
	UTurn          Movement = "U"
	LeftTurn       Movement = "Left"
	Through        Movement = "Thru"
	RightTurn      Movement = "Right"
	PedsCrosswalk  Movement = "Peds Xwalk"
	BikesCrosswalk Movement = "Bikes Xwalk"
)

// IsCrosswalk reports whether the movement counts crosswalk users rather than vehicles.
func (m Movement) IsCrosswalk() bool {
	return m == PedsCrosswalk || m == BikesCrosswalk
}

// VehicleClass identifies the data tab a count was read from.
type VehicleClass string

const (
	LightVehicles VehicleClass = "Light Vehicles"
	HeavyVehicles VehicleClass = "Heavy Vehicles"
	TotalVehicles VehicleClass = "Total Vehicles"
)

// VehicleClasses lists the data tabs in reading order.
var VehicleClasses = []VehicleClass{LightVehicles, HeavyVehicles, TotalVehicles}

// Category is a report tab: a vehicle class, or crosswalk pedestrians / bicycles.
type Category string

const (
	CategoryLight       Category = "Light Vehicles"
	CategoryHeavy       Category = "Heavy Vehicles"
	CategoryTotal       Category = "Total Vehicles"
	CategoryPedestrians Category = "Pedestrians"
	CategoryBicycles    Category = "Bicycles"
)

// Categories lists the report tabs in output order.
var Categories = []Category{CategoryLight, CategoryHeavy, CategoryTotal, CategoryPedestrians, CategoryBicycles}

// CountKey addresses one count column of a run.
type CountKey struct {
	Class     VehicleClass `json:"class"`
	Direction Direction    `json:"direction"`
	Movement  Movement     `json:"movement"`
}

func (k CountKey) String() string {
	return fmt.Sprintf("%s %s %s", k.Class, k.Direction, k.Movement)
}

// Category routes the column to its report tab. Crosswalk columns go to
// Pedestrians or Bicycles; the Total tab repeats them, so those are not counted.
func (k CountKey) Category() (Category, bool) {
	switch k.Movement {
	case PedsCrosswalk:
		if k.Class == TotalVehicles {
			return "", false
		}
		return CategoryPedestrians, true
	case BikesCrosswalk:
		if k.Class == TotalVehicles {
			return "", false
		}
		return CategoryBicycles, true
	}
	return Category(k.Class), true
}

// Column is a count column together with the header text it was read from.
type Column struct {
	Key   CountKey `json:"key"`
	Label string   `json:"label"`
}

// Heading renders the column header for reports, e.g. "NB Peds in Crosswalk".
func (c Column) Heading() string {
	label := strings.TrimSpace(c.Label)
	if label == "" {
		label = string(c.Key.Movement)
	}
	return fmt.Sprintf("%s %s", c.Key.Direction, label)
}

// RawInterval is one time bucket of a count file.
type RawInterval struct {
	Start    time.Time
	Duration time.Duration
	Counts   map[CountKey]int
}

// End returns the exclusive end of the interval.
func (ri RawInterval) End() time.Time {
	return ri.Start.Add(ri.Duration)
}

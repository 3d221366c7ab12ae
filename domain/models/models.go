package models

import "time"

type ColumnKind string

const (
	KindCategorical ColumnKind = "categorical"
	KindTemporal    ColumnKind = "temporal"
	KindMeasure     ColumnKind = "measure"
	KindCoordinate  ColumnKind = "coordinate"
)

// Accident одна строка набора данных PRF
type Accident struct {
	Date            time.Time `json:"date"`
	Year            int       `json:"year"`
	Month           string    `json:"month"`
	Weekday         string    `json:"weekday"`
	DayPhase        string    `json:"day_phase"`
	DayPart         string    `json:"day_part"`
	Region          string    `json:"region"`
	State           string    `json:"state"`
	Municipality    string    `json:"municipality"`
	Road            string    `json:"road"`
	Km              string    `json:"km"`
	Latitude        float64   `json:"latitude"`
	Longitude       float64   `json:"longitude"`
	HasCoordinates  bool      `json:"has_coordinates"`
	Classification  string    `json:"classification"`
	AccidentType    string    `json:"accident_type"`
	Cause           string    `json:"cause"`
	CauseGroup      string    `json:"cause_group"`
	Weather         string    `json:"weather"`
	WeatherGroup    string    `json:"weather_group"`
	RoadLayoutGroup string    `json:"road_layout_group"`
	LaneType        string    `json:"lane_type"`
	LandUse         string    `json:"land_use"`
	Deaths          int64     `json:"deaths"`
	Injuries        int64     `json:"injuries"`
	Vehicles        int64     `json:"vehicles"`
}

type ValueCount struct {
	Value   string  `json:"value"`
	Total   float64 `json:"total"`
	Percent float64 `json:"percent"`
}

type DateCount struct {
	Date  time.Time `json:"date"`
	Label string    `json:"label"`
	Total float64   `json:"total"`
}

type GeoCell struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Rows      int     `json:"rows"`
	Value     float64 `json:"value"`
}

type Summary struct {
	Accidents           int64    `json:"accidents"`
	Deaths              int64    `json:"deaths"`
	Injuries            int64    `json:"injuries"`
	Vehicles            int64    `json:"vehicles"`
	MortalityRate       float64  `json:"mortality_rate"`
	DeathsPer100Injured float64  `json:"deaths_per_100_injured"`
	VehiclesPerAccident float64  `json:"vehicles_per_accident"`
	Missing             []string `json:"missing,omitempty"`
}

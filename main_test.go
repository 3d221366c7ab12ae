package main

import (
	"testing"
	"time"

	"github.com/pivolan/prf_dashboard/config"
	"github.com/pivolan/prf_dashboard/dataset"
	"github.com/pivolan/prf_dashboard/domain/models"
	"github.com/stretchr/testify/assert"
)

func testDataset() *dataset.Dataset {
	mk := func(y int, m time.Month, uf, region, city string, deaths, injuries int64) *models.Accident {
		return &models.Accident{
			Date: time.Date(y, m, 10, 0, 0, 0, 0, time.UTC), Year: y, Month: dataset.MonthName(m), Weekday: "Segunda-feira",
			State: uf, Region: region, Municipality: city, Road: "101", Km: "10", DayPart: "Manhã",
			AccidentType: "Colisão traseira", CauseGroup: "Pedestre", Classification: "Com Vítimas Feridas",
			DayPhase: "Pleno dia", Weather: "Céu Claro", WeatherGroup: "Bom", LaneType: "Dupla", LandUse: "Urbano",
			Latitude: -27.5, Longitude: -48.5, HasCoordinates: true,
			Deaths: deaths, Injuries: injuries, Vehicles: 2,
		}
	}
	return dataset.New([]*models.Accident{
		mk(2023, time.January, "SC", "Sul", "JOINVILLE", 1, 2),
		mk(2023, time.March, "SP", "Sudeste", "CAMPINAS", 0, 1),
		mk(2024, time.February, "SC", "Sul", "JOINVILLE", 2, 3),
		mk(2024, time.May, "PR", "Sul", "CURITIBA", 0, 0),
	}, dataset.AllColumnNames())
}

func testApp() *app {
	return newApp(&config.Config{SessionTTL: time.Hour, PublicURL: "https://painel.example/"}, testDataset())
}

func TestChatSessionIsStable(t *testing.T) {
	a := testApp()
	id := a.chatSession(42)
	assert.Equal(t, id, a.chatSession(42))
	assert.NotEqual(t, id, a.chatSession(43))
	assert.Equal(t, id, validSession(id))
}

package service

import "chronoflux-server/internal/models"

// builtinScenarios returns the shipped historical starting points.
// Seeded once at startup; the Create is a no-op when the name exists.
func builtinScenarios() []models.Scenario {
	return []models.Scenario{
		{
			Name:        "World War I",
			Description: "The Great War begins in Europe.",
			Period:      "Early 20th Century",
			StartYear:   1914,
			AIContext:   "Europe is a powder keg. Alliances are rigid. Nationalism is high.",
			InitialWorldState: models.InitialWorldState{
				Nations: []models.SeedNation{
					{
						Key:         "germany",
						Name:        "Germany",
						Government:  "Empire",
						Resources:   models.Resources{Military: 80, Economy: 70, Stability: 60, Influence: 70},
						Territories: []string{"Germany"},
					},
					{
						Key:         "france",
						Name:        "France",
						Government:  "Republic",
						Resources:   models.Resources{Military: 70, Economy: 60, Stability: 50, Influence: 60},
						Territories: []string{"France"},
					},
					{
						Key:         "russia",
						Name:        "Russia",
						Government:  "Empire",
						Resources:   models.Resources{Military: 60, Economy: 40, Stability: 30, Influence: 50},
						Territories: []string{"Russia"},
					},
					{
						Key:         "uk",
						Name:        "United Kingdom",
						Government:  "Monarchy",
						Resources:   models.Resources{Military: 90, Economy: 80, Stability: 80, Influence: 90},
						Territories: []string{"UK"},
					},
					{
						Key:         "austria",
						Name:        "Austria-Hungary",
						Government:  "Empire",
						Resources:   models.Resources{Military: 50, Economy: 40, Stability: 20, Influence: 40},
						Territories: []string{"Austria"},
					},
				},
				GlobalEvents: []string{"Assassination of Archduke Franz Ferdinand"},
			},
		},
		{
			Name:        "Cold War",
			Description: "The world is divided between East and West.",
			Period:      "Post-WWII",
			StartYear:   1947,
			AIContext:   "The Iron Curtain has descended. Nuclear proliferation is a threat.",
			InitialWorldState: models.InitialWorldState{
				Nations: []models.SeedNation{
					{
						Key:         "usa",
						Name:        "USA",
						Government:  "Democracy",
						Resources:   models.Resources{Military: 90, Economy: 95, Stability: 80, Influence: 90},
						Territories: []string{"USA"},
					},
					{
						Key:         "ussr",
						Name:        "USSR",
						Government:  "Communist State",
						Resources:   models.Resources{Military: 90, Economy: 60, Stability: 50, Influence: 80},
						Territories: []string{"USSR"},
					},
				},
				GlobalEvents: []string{"Truman Doctrine"},
			},
		},
		{
			Name:        "Ancient Rome",
			Description: "The Republic is crumbling.",
			Period:      "Antiquity",
			StartYear:   -44,
			AIContext:   "Caesar has been assassinated. Civil war looms.",
			InitialWorldState: models.InitialWorldState{
				Nations: []models.SeedNation{
					{
						Key:         "rome_octavian",
						Name:        "Rome (Octavian)",
						Government:  "Republic",
						Resources:   models.Resources{Military: 70, Economy: 60, Stability: 40, Influence: 70},
						Territories: []string{"Italy"},
					},
					{
						Key:         "rome_antony",
						Name:        "Rome (Antony)",
						Government:  "Republic",
						Resources:   models.Resources{Military: 70, Economy: 50, Stability: 40, Influence: 60},
						Territories: []string{"Egypt"},
					},
				},
				GlobalEvents: []string{"Ides of March"},
			},
		},
		{
			Name:        "Custom",
			Description: "A blank slate for your own history.",
			Period:      "Custom",
			StartYear:   2000,
			AIContext:   "A custom scenario.",
			InitialWorldState: models.InitialWorldState{
				Nations:      []models.SeedNation{},
				GlobalEvents: []string{},
			},
		},
	}
}

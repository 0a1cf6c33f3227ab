package registry

import "github.com/filmbill/filmbill/internal/model"

// chainBookingDomains lists the ticketing domains each chain controls.
// A booking URL pointing at a domain owned by a different chain than the
// venue being saved is contamination and gets nulled by the pipeline.
// Venue-agnostic platforms (eventive, dice, eventbrite) are deliberately
// absent: links to them are allowed from any venue.
var chainBookingDomains = map[string][]string{
	"cinelux": {"cinelux.co.uk", "tickets.cinelux.co.uk"},
	"parkway": {"parkwaycinemas.co.uk", "book.parkwaycinemas.co.uk"},
}

func f(v float64) *float64 { return &v }

// venueTable is the static venue configuration.  Order matters only for
// stable iteration in reports.  Canonical ids are permanent; when a venue
// rebrands, its old slug joins Aliases and the canonical id stays.
var venueTable = []Entry{
	{
		Venue: model.Venue{
			ID:        "eastlight",
			Name:      "Eastlight Cinema",
			ShortName: "Eastlight",
			Website:   "https://www.eastlightcinema.com",
			Address:   "184 Morning Lane, London E9 6LH",
			Features:  []string{"independent", "35mm"},
			Latitude:  f(51.5466),
			Longitude: f(-0.0502),
			Active:    true,
		},
		Aliases:         []string{"east-light", "eastlight-hackney"},
		ScraperID:       "eastlight",
		ScraperParams:   map[string]string{"programme_url": "https://www.eastlightcinema.com/api/programme.json"},
		OrchestrationID: "scrape-eastlight",
	},
	{
		Venue: model.Venue{
			ID:        "stadtkino",
			Name:      "Stadtkino am Kanal",
			ShortName: "Stadtkino",
			Website:   "https://www.stadtkino-kanal.de",
			Address:   "Kanalstraße 12, 10179 Berlin",
			Features:  []string{"independent", "repertory", "subtitled"},
			Latitude:  f(52.5110),
			Longitude: f(13.4210),
			Active:    true,
		},
		Aliases:         []string{"stadtkino-berlin"},
		ScraperID:       "stadtkino",
		ScraperParams:   map[string]string{"feed_url": "https://www.stadtkino-kanal.de/programm.txt", "timezone": "Europe/Berlin"},
		OrchestrationID: "scrape-stadtkino",
	},
	{
		Venue: model.Venue{
			ID:        "cinelux-astoria",
			Name:      "Cinelux Astoria",
			ShortName: "Astoria",
			Website:   "https://www.cinelux.co.uk/astoria",
			Address:   "62 Broadgate, Leeds LS1 8AL",
			Features:  []string{"chain"},
			Active:    true,
		},
		Aliases:         []string{"astoria", "cinelux_astoria"},
		ScraperID:       "cinelux",
		ScraperParams:   map[string]string{"site": "astoria"},
		OrchestrationID: "scrape-cinelux",
		Chain:           "cinelux",
	},
	{
		Venue: model.Venue{
			ID:        "cinelux-regent",
			Name:      "Cinelux Regent",
			ShortName: "Regent",
			Website:   "https://www.cinelux.co.uk/regent",
			Address:   "4 Regent Street, Sheffield S1 4DA",
			Features:  []string{"chain", "imax"},
			Active:    true,
		},
		Aliases:         []string{"regent"},
		ScraperID:       "cinelux",
		ScraperParams:   map[string]string{"site": "regent"},
		OrchestrationID: "scrape-cinelux",
		Chain:           "cinelux",
	},
	{
		Venue: model.Venue{
			ID:        "cinelux-grand",
			Name:      "Cinelux Grand",
			ShortName: "Grand",
			Website:   "https://www.cinelux.co.uk/grand",
			Address:   "19 Grand Parade, Brighton BN2 9QB",
			Features:  []string{"chain"},
			Active:    true,
		},
		Aliases:         []string{"grand", "cinelux_grand"},
		ScraperID:       "cinelux",
		ScraperParams:   map[string]string{"site": "grand"},
		OrchestrationID: "scrape-cinelux",
		Chain:           "cinelux",
	},
	{
		Venue: model.Venue{
			ID:        "parkway-camden",
			Name:      "Parkway Cinemas Camden",
			ShortName: "Parkway Camden",
			Website:   "https://www.parkwaycinemas.co.uk/camden",
			Address:   "14 Parkway, London NW1 7AA",
			Features:  []string{"chain", "dolby-atmos"},
			Active:    true,
		},
		Aliases:         []string{"parkway"},
		ScraperID:       "feed",
		ScraperParams:   map[string]string{"feed_url": "https://www.parkwaycinemas.co.uk/api/showtimes/camden.json"},
		OrchestrationID: "scrape-parkway",
		Chain:           "parkway",
	},
	{
		Venue: model.Venue{
			ID:        "rivoli",
			Name:      "Rivoli Picture House",
			ShortName: "Rivoli",
			Website:   "https://www.rivolipicturehouse.co.uk",
			Address:   "350 Brockley Road, London SE4 2BY",
			Features:  []string{"independent"},
			Active:    false, // closed for refurbishment, kept for history
		},
		Aliases:         []string{"rivoli-ballroom"},
		ScraperID:       "feed",
		ScraperParams:   map[string]string{"feed_url": "https://www.rivolipicturehouse.co.uk/showtimes.json"},
		OrchestrationID: "scrape-rivoli",
	},
}

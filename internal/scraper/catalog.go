package scraper

import (
	"fmt"

	"github.com/filmbill/filmbill/internal/registry"
)

// Catalog holds one constructed Scraper per registered venue, selected at
// startup by the registry's extraction-strategy assignment.  Dispatch is
// by canonical venue id, never by runtime type inspection.
type Catalog struct {
	jobs map[string]Scraper // canonical venue id -> job
}

// NewCatalog builds the full catalog from the registry.  It fails if any
// venue names a strategy the catalog does not know, so a registry typo is
// caught at startup instead of at the venue's first scheduled run.
func NewCatalog(client *Client, reg *registry.Registry) (*Catalog, error) {
	c := &Catalog{jobs: make(map[string]Scraper)}
	for _, v := range reg.Venues() {
		strategy, err := reg.ScraperID(v.ID)
		if err != nil {
			return nil, err
		}
		params := reg.ScraperParams(v.ID)

		var job Scraper
		switch strategy {
		case "eastlight":
			job = NewEastlight(client, v.ID, params["programme_url"])
		case "stadtkino":
			job = NewStadtkino(client, v.ID, params["feed_url"], params["timezone"])
		case "cinelux":
			job = NewCinelux(client, v.ID, params["site"])
		case "feed":
			job = NewFeed(client, v.ID, params["feed_url"])
		default:
			return nil, fmt.Errorf("venue %q: unknown extraction strategy %q", v.ID, strategy)
		}
		c.jobs[v.ID] = job
	}
	return c, nil
}

// ForVenue returns the extraction job for a canonical venue id.
func (c *Catalog) ForVenue(canonicalID string) (Scraper, error) {
	job, ok := c.jobs[canonicalID]
	if !ok {
		return nil, fmt.Errorf("no extraction job for venue %q", canonicalID)
	}
	return job, nil
}

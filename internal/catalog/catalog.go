package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"sparxfest/internal/model"
)

// Catalog is the injectable event reference data. It is read once at startup
// and treated as read-only afterwards; the registration and admin flows never
// mutate it. The schedule is presentational and deliberately not
// cross-validated against the event lists.
type Catalog struct {
	Technical    []model.Event       `yaml:"technical"`
	NonTechnical []model.Event       `yaml:"nonTechnical"`
	Schedule     []model.ScheduleDay `yaml:"schedule"`

	byName map[string]model.Event
}

func Load(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file %s: %w", path, err)
	}
	var c Catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file %s: %w", path, err)
	}
	if err := c.index(); err != nil {
		return nil, err
	}
	return &c, nil
}

// New builds a catalog from already-decoded data. Tests and embedders use
// this; the server uses Load.
func New(technical, nonTechnical []model.Event, schedule []model.ScheduleDay) (*Catalog, error) {
	c := &Catalog{Technical: technical, NonTechnical: nonTechnical, Schedule: schedule}
	if err := c.index(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) index() error {
	c.byName = make(map[string]model.Event, len(c.Technical)+len(c.NonTechnical))
	for _, e := range c.All() {
		if e.Name == "" {
			return fmt.Errorf("catalog entry with empty name")
		}
		if e.Fee < 0 {
			return fmt.Errorf("catalog entry %q has negative fee %d", e.Name, e.Fee)
		}
		if _, dup := c.byName[e.Name]; dup {
			return fmt.Errorf("duplicate catalog entry %q", e.Name)
		}
		c.byName[e.Name] = e
	}
	if len(c.byName) == 0 {
		return fmt.Errorf("catalog has no events")
	}
	return nil
}

// All returns the full list, technical first, in catalog order.
func (c *Catalog) All() []model.Event {
	all := make([]model.Event, 0, len(c.Technical)+len(c.NonTechnical))
	all = append(all, c.Technical...)
	all = append(all, c.NonTechnical...)
	return all
}

func (c *Catalog) Lookup(name string) (model.Event, bool) {
	e, ok := c.byName[name]
	return e, ok
}

// TotalFee sums the fees of the named events. Unknown names are returned
// instead of silently contributing zero, so callers can reject them.
func (c *Catalog) TotalFee(names []string) (int, []string) {
	total := 0
	var unknown []string
	for _, name := range names {
		e, ok := c.byName[name]
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		total += e.Fee
	}
	return total, unknown
}

func (c *Catalog) Days() []model.ScheduleDay {
	return c.Schedule
}

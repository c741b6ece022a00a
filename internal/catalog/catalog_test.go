package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sparxfest/internal/model"
)

func testCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := New(
		[]model.Event{
			{ID: "Code Trace", Name: "Code Trace", Fee: 50},
			{ID: "Technovision", Name: "Technovision", Fee: 80},
		},
		[]model.Event{
			{ID: "Scribble", Name: "Scribble", Fee: 0},
		},
		[]model.ScheduleDay{
			{Title: "Day 1", Events: []model.ScheduleItem{{Time: "10:00 AM", Title: "Opening"}}},
		},
	)
	require.NoError(t, err)
	return c
}

func TestTotalFeeSumsSelectedEvents(t *testing.T) {
	c := testCatalog(t)

	total, unknown := c.TotalFee([]string{"Code Trace", "Technovision"})
	assert.Equal(t, 130, total)
	assert.Empty(t, unknown)

	total, unknown = c.TotalFee([]string{"Scribble"})
	assert.Equal(t, 0, total)
	assert.Empty(t, unknown)

	total, unknown = c.TotalFee(nil)
	assert.Equal(t, 0, total)
	assert.Empty(t, unknown)
}

func TestTotalFeeReportsUnknownNames(t *testing.T) {
	c := testCatalog(t)

	total, unknown := c.TotalFee([]string{"Code Trace", "Robo Wars", "Quiz"})
	assert.Equal(t, 50, total)
	assert.Equal(t, []string{"Robo Wars", "Quiz"}, unknown)
}

func TestLookup(t *testing.T) {
	c := testCatalog(t)

	e, ok := c.Lookup("Technovision")
	require.True(t, ok)
	assert.Equal(t, 80, e.Fee)

	_, ok = c.Lookup("Robo Wars")
	assert.False(t, ok)
}

func TestAllKeepsCatalogOrder(t *testing.T) {
	c := testCatalog(t)

	var names []string
	for _, e := range c.All() {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"Code Trace", "Technovision", "Scribble"}, names)
}

func TestNewRejectsBadCatalogs(t *testing.T) {
	_, err := New([]model.Event{{Name: "A"}, {Name: "A"}}, nil, nil)
	assert.Error(t, err, "duplicate names")

	_, err = New([]model.Event{{Name: "A", Fee: -1}}, nil, nil)
	assert.Error(t, err, "negative fee")

	_, err = New(nil, nil, nil)
	assert.Error(t, err, "empty catalog")
}

func TestLoadParsesYAML(t *testing.T) {
	raw := `
technical:
  - id: "Code Trace"
    name: "Code Trace"
    fee: 50
    time: "Day 1 - 11:00 AM"
nonTechnical:
  - id: "Scribble"
    name: "Scribble"
    fee: 50
schedule:
  - title: "Day 1 - Thursday"
    events:
      - time: "10:00 AM"
        title: "Inauguration Ceremony"
`
	path := filepath.Join(t.TempDir(), "events.yaml")
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	c, err := Load(path)
	require.NoError(t, err)

	total, unknown := c.TotalFee([]string{"Code Trace", "Scribble"})
	assert.Equal(t, 100, total)
	assert.Empty(t, unknown)

	days := c.Days()
	require.Len(t, days, 1)
	assert.Equal(t, "Day 1 - Thursday", days[0].Title)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

package review

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sparxfest/internal/model"
)

func TestExportCSVHeaderOnlyWhenEmpty(t *testing.T) {
	data, err := ExportCSV(nil)
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, csvHeader, records[0])
}

func TestExportCSVRoundTripsAwkwardValues(t *testing.T) {
	regs := []model.Registration{
		{
			FullName:             `Doe, Jane "JD"`,
			Email:                "jane@college.edu",
			Phone:                "9876543210",
			College:              "SparxTech Institute",
			Year:                 "2nd",
			Branch:               "CSE",
			Events:               []string{"Code Trace", "Scribble"},
			TeamMembers:          "Amit\nRavi\r\nSneha",
			TotalFee:             100,
			PaymentMethod:        "upi",
			PaymentScreenshotURL: "https://img.example/abc.png",
			Timestamp:            "2026-02-10T10:00:00Z",
			Status:               "pending",
		},
	}

	data, err := ExportCSV(regs)
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)

	row := records[1]
	require.Len(t, row, len(csvHeader))
	assert.Equal(t, `Doe, Jane "JD"`, row[0])
	assert.Equal(t, "Code Trace; Scribble", row[6])
	assert.Equal(t, "Amit Ravi Sneha", row[7], "newlines flattened to spaces")
	assert.Equal(t, "100", row[8])
	assert.Equal(t, "2026-02-10T10:00:00Z", row[11])
	assert.Equal(t, "pending", row[12])
}

func TestExportCSVOneRowPerRegistration(t *testing.T) {
	regs := sampleRegs()
	data, err := ExportCSV(regs)
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, len(regs)+1)
}

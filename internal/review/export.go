package review

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"sparxfest/internal/model"
)

// ExportFilename is the download name the admin panel has always used.
const ExportFilename = "sparx_registrations.csv"

var csvHeader = []string{
	"Full Name", "Email", "Phone", "College", "Year", "Branch", "Events",
	"Team Members", "Total Fee", "Payment Method", "Screenshot URL",
	"Registration Date", "Status",
}

var newlineFlattener = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// ExportCSV renders the given (already filtered) rows as RFC 4180 CSV with
// the fixed header. List-valued fields are flattened: events join on "; ",
// newlines inside team members become spaces.
func ExportCSV(regs []model.Registration) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, reg := range regs {
		record := []string{
			reg.FullName,
			reg.Email,
			reg.Phone,
			reg.College,
			reg.Year,
			reg.Branch,
			strings.Join(reg.Events, "; "),
			newlineFlattener.Replace(reg.TeamMembers),
			fmt.Sprintf("%d", reg.TotalFee),
			reg.PaymentMethod,
			reg.PaymentScreenshotURL,
			reg.Timestamp,
			reg.Status,
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}
	return buf.Bytes(), nil
}

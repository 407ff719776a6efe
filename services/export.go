package services

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	errs "fee-portal/errors"
)

// exportSheet is the sheet name of the roster workbook.
const exportSheet = "Students"

// Export renders the roster to an xlsx workbook for download: one row per
// student with name, email, fee status and last update.
func (s *RosterService) Export(ctx context.Context) ([]byte, error) {
	students, err := s.Students(ctx)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, errs.E(errs.Internal, "error preparing export sheet", err)
	}

	headers := []string{"Name", "Email", "Fee Status", "Last Updated"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, errs.E(errs.Internal, "error addressing export cell", err)
		}
		if err := f.SetCellValue(exportSheet, cell, h); err != nil {
			return nil, errs.E(errs.Internal, "error writing export header", err)
		}
	}

	for r, st := range students {
		status := "PENDING"
		if st.FeesPaid {
			status = "PAID"
		}
		values := []interface{}{st.Name, st.Email, status, st.UpdatedAt}
		for c, v := range values {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return nil, errs.E(errs.Internal, "error addressing export cell", err)
			}
			if err := f.SetCellValue(exportSheet, cell, v); err != nil {
				return nil, errs.E(errs.Internal, fmt.Sprintf("error writing export row %d", r+2), err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, errs.E(errs.Internal, "error writing export workbook", err)
	}
	return buf.Bytes(), nil
}

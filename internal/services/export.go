package services

import (
	"fmt"
	"io"

	"github.com/bobby-s-dev/transit-air-quality/internal/models"
	"github.com/xuri/excelize/v2"
)

const defaultSheet = "Sheet1"

// ExportHeader returns the column names of every city sheet.
func ExportHeader() []string {
	header := []string{"date"}
	for _, p := range models.AllPollutants() {
		header = append(header, p.String(), p.String()+"_interpolated")
	}
	return append(header, "transit_change")
}

// WriteWorkbook writes the dataset as an xlsx workbook with one sheet per
// city and one row per day. Days without a value leave the cell empty.
func WriteWorkbook(d *Dataset, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, city := range models.AllCities() {
		sheet := city.DisplayName()
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, sheet); err != nil {
				return fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("create sheet %s: %w", sheet, err)
		}

		if err := writeCitySheet(f, sheet, d, city); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeCitySheet(f *excelize.File, sheet string, d *Dataset, city models.City) error {
	for col, name := range ExportHeader() {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return fmt.Errorf("write header %s: %w", sheet, err)
		}
	}

	series := make([]models.DailySeries, 0, len(models.AllPollutants()))
	for _, p := range models.AllPollutants() {
		s, err := d.PollutantSeries(city, p)
		if err != nil {
			return err
		}
		series = append(series, s)
	}
	mobility, err := d.MobilitySeries(city)
	if err != nil {
		return err
	}

	days := d.Start.DaysUntil(d.End) + 1
	for i := 0; i < days; i++ {
		date := d.Start.AddDays(i)
		row := make([]interface{}, 0, len(ExportHeader()))
		row = append(row, date.String())

		for _, s := range series {
			p, ok := s.Lookup(date)
			if ok && p.Known() {
				row = append(row, p.Value, p.Interpolated())
			} else {
				row = append(row, nil, false)
			}
		}
		if m, ok := mobility.Lookup(date); ok {
			row = append(row, m.Value)
		} else {
			row = append(row, nil)
		}

		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %s: %w", sheet, date, err)
		}
	}

	return nil
}

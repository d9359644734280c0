// Package report 生成给厨房的次日备餐报表。
package report

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/qs3c/rollbowl_go_server/internal/model/dto"
)

const (
	SheetSummary = "Summary"
	SheetDiners  = "Diners"
)

// ItemCount 按菜品统计的一行
type ItemCount struct {
	Item  string
	Count int
}

// SortedItems 按份数降序、同份数按名称升序
func SortedItems(items map[string]int) []ItemCount {
	rows := make([]ItemCount, 0, len(items))
	for item, n := range items {
		rows = append(rows, ItemCount{Item: item, Count: n})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Item < rows[j].Item
	})
	return rows
}

// BuildKitchenReport 生成 xlsx：Summary 为菜品份数，Diners 为用餐名单
func BuildKitchenReport(summary *dto.KitchenSummary, diners []dto.DinerInfo) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), SheetSummary); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	rows := [][]interface{}{
		{"Service date", summary.Date},
		{"Diners", summary.Total},
		{},
		{"Item", "Portions"},
	}
	for _, ic := range SortedItems(summary.Items) {
		rows = append(rows, []interface{}{ic.Item, ic.Count})
	}
	if err := writeRows(f, SheetSummary, rows); err != nil {
		return nil, err
	}

	if _, err := f.NewSheet(SheetDiners); err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	rows = [][]interface{}{{"User ID", "Name", "Phone", "Choice"}}
	for _, d := range diners {
		rows = append(rows, []interface{}{d.UserID, d.Name, d.Phone, d.Choice})
	}
	if err := writeRows(f, SheetDiners, rows); err != nil {
		return nil, err
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

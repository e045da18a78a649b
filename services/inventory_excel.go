package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/tealeg/xlsx"
	"gorm.io/gorm"
)

var (
	ErrEmptySpreadsheet   = errors.New("spreadsheet is empty or missing header row")
	ErrInvalidSpreadsheet = errors.New("file is not a readable xlsx spreadsheet")
)

var inventorySheetHeaders = []string{
	"ProductID", "Name", "Price", "RemovedFromStore", "Quantity", "QuantityForCartItems", "Committed",
}

type RowError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

type ImportResult struct {
	Created int        `json:"created_count"`
	Updated int        `json:"updated_count"`
	Skipped int        `json:"skipped_count"`
	Errors  []RowError `json:"errors,omitempty"`
}

// ImportInventory reads the first sheet in the export layout: product id in the
// first column, quantity in the fifth. Each row commits on its own.
func (s *InventoryService) ImportInventory(ctx context.Context, r io.ReaderAt, size int64) (*ImportResult, error) {
	xlFile, err := xlsx.OpenReaderAt(r, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSpreadsheet, err)
	}
	if len(xlFile.Sheets) == 0 || xlFile.Sheets[0].MaxRow < 2 {
		return nil, ErrEmptySpreadsheet
	}

	sheet := xlFile.Sheets[0]
	res := &ImportResult{}
	for i := 1; i < sheet.MaxRow; i++ {
		row := sheet.Rows[i]
		get := func(index int) string {
			if row != nil && index < len(row.Cells) {
				return strings.TrimSpace(row.Cells[index].String())
			}
			return ""
		}

		productID, err1 := strconv.ParseUint(get(0), 10, 64)
		quantity, err2 := strconv.Atoi(get(4))
		if err1 != nil || err2 != nil {
			res.Skipped++
			continue
		}

		created, err := s.upsertQuantity(ctx, uint(productID), quantity)
		switch {
		case err != nil:
			res.Skipped++
			res.Errors = append(res.Errors, RowError{Row: i + 1, Error: err.Error()})
		case created:
			res.Created++
		default:
			res.Updated++
		}
	}
	return res, nil
}

func (s *InventoryService) upsertQuantity(ctx context.Context, productID uint, quantity int) (bool, error) {
	created := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inv, err := lockInventory(tx, productID)
		if isNotFound(err) {
			created = true
			_, err = createInventory(tx, productID, quantity)
			return err
		}
		if err != nil {
			return err
		}
		return applyQuantity(tx, inv, quantity)
	})
	return created, err
}

// ExportInventory writes every product with its stock levels as an xlsx workbook.
func (s *InventoryService) ExportInventory(ctx context.Context, w io.Writer) error {
	var products []models.Product
	if err := s.db.WithContext(ctx).Preload("Inventory").Order("id").Find(&products).Error; err != nil {
		return fmt.Errorf("load products: %w", err)
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Inventory")
	if err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}

	header := sheet.AddRow()
	for _, h := range inventorySheetHeaders {
		header.AddCell().SetValue(h)
	}

	for _, p := range products {
		row := sheet.AddRow()
		row.AddCell().SetInt(int(p.ID))
		row.AddCell().SetString(p.Name)
		row.AddCell().SetString(p.Price.StringFixed(2))
		row.AddCell().SetBool(p.RemovedFromStore)
		if p.Inventory == nil {
			continue
		}
		row.AddCell().SetInt(p.Inventory.Quantity)
		row.AddCell().SetInt(p.Inventory.QuantityForCartItems)
		row.AddCell().SetInt(p.Inventory.Committed())
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("write spreadsheet: %w", err)
	}
	return nil
}

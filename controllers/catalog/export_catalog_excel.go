package catalogControllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tealeg/xlsx"

	"github.com/elvis-ci/Riviera/stores"
)

// GET /admin/catalog/export
func ExportCatalogToExcel(catalog *stores.CatalogStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		fragrances := catalog.List()

		file := xlsx.NewFile()
		sheet, err := file.AddSheet("Fragrances")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel sheet"})
			return
		}

		// Header row
		headers := []string{
			"ID", "Name", "Slug", "Category",
			"Price", "Discount", "DiscountPercent", "CurrentPrice",
			"Stock", "Image",
		}
		headerRow := sheet.AddRow()
		for _, h := range headers {
			headerRow.AddCell().SetValue(h)
		}

		// Data rows
		for _, f := range fragrances {
			row := sheet.AddRow()
			row.AddCell().SetValue(int(f.ID))
			row.AddCell().SetValue(f.Name)
			row.AddCell().SetValue(f.Slug)
			row.AddCell().SetValue(f.Category)
			row.AddCell().SetValue(f.Price)
			row.AddCell().SetValue(f.Discount)
			row.AddCell().SetValue(f.DiscountPercent)
			row.AddCell().SetValue(f.CurrentPrice)
			row.AddCell().SetValue(f.Stock)
			row.AddCell().SetValue(f.Image)
		}

		// Set response headers for download
		c.Header("Content-Disposition", "attachment; filename=fragrances.xlsx")
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Transfer-Encoding", "binary")
		c.Header("Expires", "0")

		if err := file.Write(c.Writer); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to write Excel file"})
			return
		}
	}
}

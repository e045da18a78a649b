package inventoryControllers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/controllers/respond"
	"github.com/junaidrashid-git/storefront-api/services"
)

// POST /inventory/import takes a multipart "file" in the export layout.
func ImportInventoryExcel(inventory *services.InventoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		excelFileHeader, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Excel file is required"})
			return
		}

		file, err := excelFileHeader.Open()
		if err != nil {
			respond.Error(c, err)
			return
		}
		defer file.Close()

		res, err := inventory.ImportInventory(c.Request.Context(), file, excelFileHeader.Size)
		if err != nil {
			respond.Error(c, err)
			return
		}
		log.Printf("📦 Inventory import: %d created, %d updated, %d skipped", res.Created, res.Updated, res.Skipped)
		c.JSON(http.StatusOK, res)
	}
}

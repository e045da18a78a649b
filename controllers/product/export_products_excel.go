package productcontroller

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/controllers/respond"
	"github.com/junaidrashid-git/storefront-api/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// GET /products/export (staff) downloads every product with its inventory.
func ExportProductsExcel(inventory *services.InventoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Buffer so a failure can still become a JSON error.
		var buf bytes.Buffer
		if err := inventory.ExportInventory(c.Request.Context(), &buf); err != nil {
			respond.Error(c, err)
			return
		}

		c.Header("Content-Disposition", "attachment; filename=products.xlsx")
		c.Header("Content-Transfer-Encoding", "binary")
		c.Header("Expires", "0")
		c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
	}
}

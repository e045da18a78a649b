package productcontroller

import (
	"time"

	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/pagination"
	"github.com/shopspring/decimal"
)

type CategoryView struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// ProductPublicView is what shoppers see.
type ProductPublicView struct {
	ID          uint            `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Categories  []CategoryView  `json:"categories"`
	InStock     bool            `json:"in_stock"`
}

// ProductStaffView adds the store flag and the inventory.
type ProductStaffView struct {
	ProductPublicView
	RemovedFromStore bool                     `json:"removed_from_store"`
	Inventory        *models.ProductInventory `json:"inventory"`
	CreatedAt        time.Time                `json:"created_at"`
	UpdatedAt        time.Time                `json:"updated_at"`
}

func newPublicView(p *models.Product) ProductPublicView {
	categories := make([]CategoryView, len(p.Categories))
	for i, c := range p.Categories {
		categories[i] = CategoryView{ID: c.ID, Name: c.Name}
	}
	return ProductPublicView{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Categories:  categories,
		InStock:     p.Inventory != nil && p.Inventory.QuantityForCartItems > 0,
	}
}

func newStaffView(p *models.Product) ProductStaffView {
	return ProductStaffView{
		ProductPublicView: newPublicView(p),
		RemovedFromStore:  p.RemovedFromStore,
		Inventory:         p.Inventory,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

func view(staff bool, p *models.Product) any {
	if staff {
		return newStaffView(p)
	}
	return newPublicView(p)
}

func viewPage(staff bool, page pagination.Page[models.Product]) pagination.Page[any] {
	out := pagination.Page[any]{
		Items: make([]any, len(page.Items)),
		Total: page.Total,
		Page:  page.Page,
		Size:  page.Size,
		Pages: page.Pages,
	}
	for i := range page.Items {
		out.Items[i] = view(staff, &page.Items[i])
	}
	return out
}

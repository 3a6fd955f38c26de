package mcp

import (
	"context"

	"intentions/internal/items/models"
)

type ItemService interface {
	ListItems(ctx context.Context) ([]*models.Item, error)
	SearchItems(ctx context.Context, q models.SearchQuery) ([]*models.Item, error)
	GetItem(ctx context.Context, id int64) (*models.Item, error)
	CreateItem(ctx context.Context, req *models.CreateItemRequest) (*models.Item, error)
	UpdateItem(ctx context.Context, id int64, req *models.UpdateItemRequest) (*models.Item, error)
	DeleteItem(ctx context.Context, id int64) (bool, error)
}

type itemRef struct {
	ItemID int64 `json:"item_id" jsonschema:"description=ID of the item"`
}

type itemUpdate struct {
	ItemID int64 `json:"item_id" jsonschema:"description=ID of the item to update"`
	models.UpdateItemRequest
}

// ItemTools exposes the items family.
func ItemTools(svc ItemService) []Tool {
	return []Tool{
		newTool("list_items", "List all items in creation order.",
			func(ctx context.Context, _ *noArgs) ([]*models.Item, error) {
				return svc.ListItems(ctx)
			}, asJSON[[]*models.Item]),
		newTool("search_items", "Search items by name substring, price range and availability.",
			func(ctx context.Context, a *models.SearchQuery) ([]*models.Item, error) {
				return svc.SearchItems(ctx, *a)
			}, asJSON[[]*models.Item]),
		newTool("get_item", "Get an item by ID.",
			func(ctx context.Context, a *itemRef) (*models.Item, error) {
				return svc.GetItem(ctx, a.ItemID)
			}, asJSON[*models.Item]),
		newTool("create_item", "Create an item with a name, a price and an optional description.",
			func(ctx context.Context, a *models.CreateItemRequest) (*models.Item, error) {
				return svc.CreateItem(ctx, a)
			}, asJSON[*models.Item]),
		newTool("update_item", "Update an item. Omitted fields are left unchanged.",
			func(ctx context.Context, a *itemUpdate) (*models.Item, error) {
				return svc.UpdateItem(ctx, a.ItemID, &a.UpdateItemRequest)
			}, asJSON[*models.Item]),
		newTool("delete_item", "Delete an item by ID.",
			func(ctx context.Context, a *itemRef) (string, error) {
				ok, err := svc.DeleteItem(ctx, a.ItemID)
				return confirm(ok, err, "Item", a.ItemID)
			}, asText),
	}
}

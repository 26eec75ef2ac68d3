package catalog

import "context"

// BuildServices ingests the JSON seed files into the store and builds
// the lookup services from what the database reports back, so the
// database stays the authority on what the agent serves.
func BuildServices(ctx context.Context, store *Store, ordersPath, productsPath string) (*OrderService, *ProductService, error) {
	orders, err := LoadOrders(ordersPath)
	if err != nil {
		return nil, nil, err
	}
	products, err := LoadProducts(productsPath)
	if err != nil {
		return nil, nil, err
	}

	if err := store.ImportOrders(ctx, orders); err != nil {
		return nil, nil, err
	}
	if err := store.ImportProducts(ctx, products); err != nil {
		return nil, nil, err
	}

	orders, err = store.Orders(ctx)
	if err != nil {
		return nil, nil, err
	}
	products, err = store.Products(ctx)
	if err != nil {
		return nil, nil, err
	}

	return NewOrderService(orders), NewProductService(products), nil
}

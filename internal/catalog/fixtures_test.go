package catalog

func strptr(s string) *string { return &s }

func testOrders() []Order {
	return []Order{
		{
			CustomerName:    " John Doe",
			Email:           "john.doe@example.com",
			OrderNumber:     "#W001",
			ProductsOrdered: []string{"SOBP001", "SOED003"},
			Status:          StatusDelivered,
			TrackingNumber:  strptr("TRK123456789"),
		},
		{
			CustomerName:    "Alice Johnson",
			Email:           "alice.johnson@example.com",
			OrderNumber:     "#W003",
			ProductsOrdered: []string{"SOTT006"},
			Status:          StatusFulfilled,
			TrackingNumber:  nil,
		},
		{
			CustomerName:    "Bob Brown",
			Email:           "bob.brown@example.com",
			OrderNumber:     "#W004",
			ProductsOrdered: []string{"SOIC005"},
			Status:          StatusError,
			TrackingNumber:  nil,
		},
	}
}

func testProducts() []Product {
	return []Product{
		{
			ProductName: "Bhavish's Backcountry Blaze Backpack",
			SKU:         "SOBP001",
			Inventory:   120,
			Description: "A rugged 45L pack built for multi-day hiking trips deep in the backcountry.",
			Tags:        []string{"Adventure", "Hiking", "Gear"},
		},
		{
			ProductName: "Summit Surge Energy Drink",
			SKU:         "SOED003",
			Inventory:   300,
			Description: "A citrus energy drink brewed to power alpine starts and long climbs.",
			Tags:        []string{"Food", "Energy"},
		},
		{
			ProductName: "Powder Phantom Skis",
			SKU:         "SOSK004",
			Inventory:   40,
			Description: "All-mountain skis tuned for deep powder, the heart of any skiing kit.",
			Tags:        []string{"Skiing", "Winter", "Gear"},
		},
		{
			ProductName: "Timberline Two-Person Tent",
			SKU:         "SOTT006",
			Inventory:   60,
			Description: "A storm-proof shelter that pitches in under three minutes.",
			Tags:        []string{"Camping", "Gear"},
		},
		{
			ProductName: "Campfire Cocoa Blend",
			SKU:         "SOCB009",
			Inventory:   210,
			Description: "Rich drinking chocolate for cold nights under the stars.",
			Tags:        []string{"Food", "Camping"},
		},
		{
			ProductName: "Lunar Lantern",
			SKU:         "SOLT010",
			Inventory:   0,
			Description: "A palm-sized lantern that floods camp with warm light.",
			Tags:        []string{"Camping", "Lighting"},
		},
	}
}

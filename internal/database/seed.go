package database

import "restore/internal/model"

// ReferenceProducts is the starter catalog loaded into an empty database.
func ReferenceProducts() []model.Product {
	return []model.Product{
		{
			Name:            "Wireless Bluetooth Headphones",
			Description:     "Premium over-ear headphones with active noise cancellation, 30-hour battery life, and superior sound quality. Perfect for music lovers and travelers.",
			Price:           19999,
			PictureURL:      "https://images.unsplash.com/photo-1505740420928-5e560c06d30e?w=400",
			Brand:           "Sony",
			Type:            "Electronics",
			QuantityInStock: 50,
		},
		{
			Name:            "Gaming Laptop - High Performance",
			Description:     "Powerful gaming laptop with RTX 4070 graphics, Intel i9 processor, 32GB RAM, and 1TB SSD. Handles the latest games at ultra settings.",
			Price:           189999,
			PictureURL:      "https://images.unsplash.com/photo-1603302576837-37561b2e2302?w=400",
			Brand:           "ASUS",
			Type:            "Electronics",
			QuantityInStock: 15,
		},
		{
			Name:            "Smart Watch - Fitness Tracker",
			Description:     "Advanced smartwatch with heart rate monitor, GPS tracking, sleep analysis, and 100+ workout modes. Syncs with iOS and Android smartphones.",
			Price:           24999,
			PictureURL:      "https://images.unsplash.com/photo-1579586337278-3befd40fd17a?w=400",
			Brand:           "Fitbit",
			Type:            "Electronics",
			QuantityInStock: 75,
		},
		{
			Name:            "4K Action Camera",
			Description:     "Waterproof action camera recording in 4K resolution. Includes image stabilization, slow motion, and mounting accessories for extreme sports.",
			Price:           27999,
			PictureURL:      "https://images.unsplash.com/photo-1526170375885-4d8ecf77b99f?w=400",
			Brand:           "GoPro",
			Type:            "Electronics",
			QuantityInStock: 40,
		},
		{
			Name:            "Wireless Gaming Mouse",
			Description:     "High-precision wireless gaming mouse with customizable RGB lighting, 16000 DPI sensor, and programmable buttons.",
			Price:           7999,
			PictureURL:      "https://images.unsplash.com/photo-1527814050087-3793815479db?w=400",
			Brand:           "Logitech",
			Type:            "Electronics",
			QuantityInStock: 100,
		},
		{
			Name:            "Mechanical Gaming Keyboard",
			Description:     "RGB mechanical keyboard with Cherry MX switches, aluminum frame, and customizable macros.",
			Price:           12999,
			PictureURL:      "https://images.unsplash.com/photo-1595225476474-87563907a212?w=400",
			Brand:           "Corsair",
			Type:            "Electronics",
			QuantityInStock: 60,
		},
		{
			Name:            "Running Shoes - Men's",
			Description:     "Lightweight athletic shoes designed for marathon runners. Breathable mesh upper, responsive cushioning, and grip for all terrains.",
			Price:           12999,
			PictureURL:      "https://images.unsplash.com/photo-1542291026-7eec264c27ff?w=400",
			Brand:           "Nike",
			Type:            "Sports & Outdoors",
			QuantityInStock: 80,
		},
		{
			Name:            "Yoga Mat - Eco Friendly",
			Description:     "Non-slip yoga mat made from sustainable materials. Extra thick for comfort, lightweight and portable.",
			Price:           3999,
			PictureURL:      "https://images.unsplash.com/photo-1601925260368-ae2f83cf8b7f?w=400",
			Brand:           "Manduka",
			Type:            "Sports & Outdoors",
			QuantityInStock: 120,
		},
		{
			Name:            "Camping Tent - 4 Person",
			Description:     "Spacious camping tent with easy setup, weather-resistant fabric, and good ventilation. Suited to family camping trips.",
			Price:           18999,
			PictureURL:      "https://images.unsplash.com/photo-1478131143081-80f7f84ca84d?w=400",
			Brand:           "Coleman",
			Type:            "Sports & Outdoors",
			QuantityInStock: 35,
		},
		{
			Name:            "Mountain Bike - 21 Speed",
			Description:     "Durable mountain bike with aluminum frame, 21-speed gear system, and front suspension for trails and off-road riding.",
			Price:           45999,
			PictureURL:      "https://images.unsplash.com/photo-1576435728678-68d0fbf94e91?w=400",
			Brand:           "Trek",
			Type:            "Sports & Outdoors",
			QuantityInStock: 25,
		},
	}
}

package services

import "tours-backend/internal/repository"

// Per-resource field whitelists: static configuration naming the fields a
// client may write, mapped to their stored names. Rating aggregates and
// password material are absent from every list. The secret flag stays
// writable on tours because tour writes are restricted to staff roles.

var TourWhitelist = repository.Whitelist{
	"name":          "name",
	"price":         "price",
	"priceDiscount": "price_discount",
	"durationDays":  "duration_days",
	"maxGroupSize":  "max_group_size",
	"difficulty":    "difficulty",
	"summary":       "summary",
	"description":   "description",
	"imageCover":    "image_cover",
	"images":        "images",
	"startDates":    "start_dates",
	"guides":        "guides",
	"secret":        "secret",
}

var ReviewCreateWhitelist = repository.Whitelist{
	"tourId": "tour_id",
	"rating": "rating",
	"text":   "text",
}

var ReviewUpdateWhitelist = repository.Whitelist{
	"rating": "rating",
	"text":   "text",
}

var UserUpdateWhitelist = repository.Whitelist{
	"name":   "name",
	"email":  "email",
	"photo":  "photo",
	"role":   "role",
	"active": "active",
}

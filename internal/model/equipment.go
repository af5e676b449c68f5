package model

import (
	"slices"
	"time"
)

// Equipment is a stocked equipment type within one partition. Name is
// unique per partition.
type Equipment struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Category     string    `db:"category" json:"category"`
	Quantity     int       `db:"quantity" json:"quantity"`
	Unit         string    `db:"unit" json:"unit"`
	Location     string    `db:"location" json:"location"`
	Condition    string    `db:"condition" json:"condition"`
	SerialNumber string    `db:"serial_number" json:"serialNumber,omitempty"`
	PhotoMIME    string    `db:"photo_mime" json:"photoMime,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// Equipment categories.
var Categories = []string{
	"power-tools",
	"hand-tools",
	"safety-equipment",
	"materials",
	"machinery",
	"electronic",
	"other",
}

// Units of measure.
var Units = []string{
	"pieces",
	"packets",
	"meters",
	"kilograms",
	"liters",
	"boxes",
	"sets",
}

// Equipment conditions.
var Conditions = []string{
	"new",
	"good",
	"fair",
	"needs_repair",
}

// LowStockThreshold is the quantity below which equipment is flagged.
const LowStockThreshold = 5

func ValidCategory(c string) bool  { return slices.Contains(Categories, c) }
func ValidUnit(u string) bool      { return slices.Contains(Units, u) }
func ValidCondition(c string) bool { return slices.Contains(Conditions, c) }

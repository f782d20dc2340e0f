package domain

import "github.com/shopspring/decimal"

// Artwork is the catalog row consumed by pricing. The table is owned by the
// hosted store; this service only reads it.
type Artwork struct {
	ID           string          `json:"id" gorm:"primaryKey;type:varchar(64)"`
	ArtistID     string          `json:"artist_id" gorm:"type:varchar(64);index"`
	Title        string          `json:"title"`
	Cost         decimal.Decimal `json:"cost" gorm:"type:numeric(12,2);not null"`
	Availability bool            `json:"availability"`
}

func (Artwork) TableName() string { return "artworks" }

// Purchasable reports whether the artwork can be checked out.
func (a *Artwork) Purchasable() bool {
	return a != nil && a.Availability && !a.Cost.IsNegative()
}

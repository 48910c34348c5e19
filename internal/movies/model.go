package movies

// Movie models a single catalog entry. The store-assigned ID is the row
// identity; ImdbID is the caller-facing key and may be renamed without the
// identity changing.
type Movie struct {
	ID     int64  `gorm:"column:id;primaryKey;autoIncrement"`
	ImdbID string `gorm:"column:imdb_id;size:20;not null;uniqueIndex:idx_movies_imdb_id"`
	Name   string `gorm:"column:name;size:255;not null"`
	Seen   bool   `gorm:"column:seen;not null;default:false"`
	Rating int    `gorm:"column:rating;not null;default:0"`
}

// TableName provides the explicit table binding for GORM.
func (Movie) TableName() string {
	return "movies"
}

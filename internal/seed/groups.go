package seed

import (
	"fmt"

	"blogfeed/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BuiltInGroup is a group every environment starts with.
type BuiltInGroup struct {
	Title       string
	Slug        string
	Description string
}

// BuiltInGroups are upserted by Groups.
var BuiltInGroups = []BuiltInGroup{
	{Title: "Announcements", Slug: "announcements", Description: "News about the blog itself."},
	{Title: "Cats", Slug: "cats", Description: "Photos and stories about cats."},
	{Title: "Travel", Slug: "travel", Description: "Trips, routes and places worth seeing."},
	{Title: "Books", Slug: "books", Description: "What we are reading."},
	{Title: "Programming", Slug: "programming", Description: "Code, tools and war stories."},
	{Title: "Food", Slug: "food", Description: "Recipes and restaurants."},
}

// Groups upserts the built-in groups by slug and returns them.
func Groups(db *gorm.DB) ([]models.Group, error) {
	out := make([]models.Group, 0, len(BuiltInGroups))
	for _, item := range BuiltInGroups {
		group := models.Group{Title: item.Title, Slug: item.Slug, Description: item.Description}
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "slug"}},
			DoUpdates: clause.AssignmentColumns([]string{"title", "description"}),
		}).Create(&group).Error
		if err != nil {
			return nil, fmt.Errorf("seed group %s: %w", item.Slug, err)
		}
		// Some drivers leave the id unset on the update path.
		if group.ID == 0 {
			if err := db.Where("slug = ?", item.Slug).First(&group).Error; err != nil {
				return nil, fmt.Errorf("reload group %s: %w", item.Slug, err)
			}
		}
		out = append(out, group)
	}
	return out, nil
}

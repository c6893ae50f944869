package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"io"
	"log"
	"os"

	"github.com/foodgram/backend/config"
	"github.com/foodgram/backend/internal/database"
	"github.com/foodgram/backend/internal/models"
	"gorm.io/gorm"
)

// Loads the ingredient and tag reference fixtures. Safe to run repeatedly:
// existing rows are left alone.
func main() {
	ingredientsPath := flag.String("ingredients", "data/ingredients.csv", "CSV file with name,measurement_unit rows")
	tagsPath := flag.String("tags", "data/tags.json", "JSON file with tag fixtures")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	n, err := loadIngredients(db, *ingredientsPath)
	if err != nil {
		log.Fatalf("Failed to load ingredients: %v", err)
	}
	log.Printf("Loaded %d ingredients", n)

	n, err = loadTags(db, *tagsPath)
	if err != nil {
		log.Fatalf("Failed to load tags: %v", err)
	}
	log.Printf("Loaded %d tags", n)
}

func loadIngredients(db *gorm.DB, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = 2

	count := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return count, err
		}

		ingredient := models.Ingredient{Name: record[0], MeasurementUnit: record[1]}
		if err := db.Where(
			"name = ? AND measurement_unit = ?", ingredient.Name, ingredient.MeasurementUnit,
		).FirstOrCreate(&ingredient).Error; err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

func loadTags(db *gorm.DB, path string) (int, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	var tags []struct {
		Name  string `json:"name"`
		Color string `json:"color"`
		Slug  string `json:"slug"`
	}
	if err := json.Unmarshal(content, &tags); err != nil {
		return 0, err
	}

	for i, t := range tags {
		tag := models.Tag{Name: t.Name, Color: t.Color, Slug: t.Slug}
		if err := db.Where("slug = ?", t.Slug).FirstOrCreate(&tag).Error; err != nil {
			return i, err
		}
	}
	return len(tags), nil
}

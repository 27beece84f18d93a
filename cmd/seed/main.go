package main

import (
	"fmt"

	"campus-market/internal/entity"
	"campus-market/internal/model"
	"campus-market/internal/repo/persistent"
	"campus-market/pkg/config"
	"campus-market/pkg/database"
	"campus-market/pkg/logger"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	log := logger.New()
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Error("Failed to connect to database: %v", err)
		panic(err)
	}

	if err := seedDatabase(db, log); err != nil {
		log.Error("Failed to seed database: %v", err)
		panic(err)
	}

	log.Info("Database seeded successfully!")
}

func seedDatabase(db *gorm.DB, log *logger.Logger) error {
	users := []model.UserModel{
		{Email: "alice@campus.test", Username: "alice", Campus: "woluwe", IsAdmin: false},
		{Email: "bob@campus.test", Username: "bob", Campus: "woluwe", IsAdmin: false},
		{Email: "carol@campus.test", Username: "carol", Campus: "montgomery", IsAdmin: false},
		{Email: "admin@campus.test", Username: "admin", Campus: "woluwe", IsAdmin: true},
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	for i := range users {
		users[i].Password = string(hash)
		if err := db.Where("email = ?", users[i].Email).FirstOrCreate(&users[i]).Error; err != nil {
			return fmt.Errorf("failed to seed user %s: %w", users[i].Email, err)
		}
	}
	log.Info("Seeded %d users", len(users))

	categories := []model.CategoryModel{
		{Name: "Books"},
		{Name: "Furniture"},
		{Name: "Electronics"},
		{Name: "Bikes"},
	}
	for i := range categories {
		if err := db.Where("name = ?", categories[i].Name).FirstOrCreate(&categories[i]).Error; err != nil {
			return fmt.Errorf("failed to seed category %s: %w", categories[i].Name, err)
		}
	}
	log.Info("Seeded %d categories", len(categories))

	addresses := []model.AddressModel{
		{Street: "Avenue Hippocrate 10", City: "Brussels", Campus: "woluwe"},
		{Street: "Avenue Mounier 83", City: "Brussels", Campus: "woluwe"},
		{Street: "Boulevard de la Woluwe 2", City: "Brussels", Campus: "montgomery"},
	}
	for i := range addresses {
		if err := db.Where("street = ?", addresses[i].Street).FirstOrCreate(&addresses[i]).Error; err != nil {
			return fmt.Errorf("failed to seed address %s: %w", addresses[i].Street, err)
		}
	}
	log.Info("Seeded %d addresses", len(addresses))

	postRepo := persistent.NewPostRepository(db)
	posts := []*entity.Post{
		{
			Nature:      entity.NatureForSale,
			State:       entity.StateApproved,
			Title:       "Anatomy textbook, 4th edition",
			Description: "Barely used, no annotations.",
			Price:       25,
			Places:      []string{addresses[0].ID},
			SellerID:    users[0].ID,
			CategoryID:  categories[0].ID,
		},
		{
			Nature:      entity.NatureGiveAway,
			State:       entity.StatePending,
			Title:       "Desk lamp",
			Description: "Works fine, moving out.",
			Places:      []string{addresses[1].ID},
			SellerID:    users[1].ID,
			CategoryID:  categories[1].ID,
		},
		{
			Nature:      entity.NatureForSale,
			State:       entity.StateClosed,
			Title:       "City bike",
			Description: "Sold to the first taker.",
			Price:       80,
			Places:      []string{addresses[2].ID},
			SellerID:    users[2].ID,
			CategoryID:  categories[3].ID,
		},
	}
	for _, post := range posts {
		var existing int64
		db.Model(&model.PostModel{}).Where("title = ? AND seller_id = ?", post.Title, post.SellerID).Count(&existing)
		if existing > 0 {
			continue
		}
		if err := postRepo.Save(post); err != nil {
			return fmt.Errorf("failed to seed post %q: %w", post.Title, err)
		}
	}
	log.Info("Seeded %d posts", len(posts))

	return nil
}

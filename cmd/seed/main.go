package main

import (
	"context"
	"fmt"
	"log"

	"smartstock/internal/inventory"
	"smartstock/internal/orders"
	"smartstock/internal/shared/config"
	"smartstock/internal/shared/database"
	"smartstock/internal/users"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type Seeder struct {
	db *database.DB
}

func main() {
	fmt.Println("🌱 Starting SmartStock Database Seeder...")

	cfg := config.Load("seed")

	db, err := database.InitDB(cfg,
		&users.User{},
		&inventory.Product{},
		&inventory.StockMovement{},
		&orders.Order{},
		&orders.OrderItem{},
	)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	seeder := &Seeder{db: db}

	fmt.Println("\n🧹 Cleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}
	fmt.Println("✅ Database cleaned successfully")

	fmt.Println("\n🌱 Seeding database...")
	if err := seeder.SeedAll(); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}
	fmt.Println("✅ Database seeded successfully")

	fmt.Println("\n🎉 Seeding completed! Database is ready for testing.")
}

// CleanDatabase truncates all tables in reverse dependency order.
func (s *Seeder) CleanDatabase() error {
	tables := []string{
		"stock_movements",
		"order_items",
		"orders",
		"products",
		"users",
	}

	tx := s.db.PostgreSQL.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	for _, table := range tables {
		fmt.Printf("  Truncating table: %s\n", table)
		if err := tx.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return tx.Commit().Error
}

// SeedAll seeds users and a starter product catalogue.
func (s *Seeder) SeedAll() error {
	ctx := context.Background()

	adminID, err := s.SeedUsers(ctx)
	if err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	if err := s.SeedProducts(ctx, adminID); err != nil {
		return fmt.Errorf("failed to seed products: %w", err)
	}

	return nil
}

// SeedUsers creates one account per role and returns the administrator ID.
func (s *Seeder) SeedUsers(ctx context.Context) (uuid.UUID, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte("Password123!"), bcrypt.DefaultCost)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to hash password: %w", err)
	}

	seedUsers := []users.User{
		{
			ID:        uuid.New(),
			Username:  "admin",
			FirstName: "Ada",
			LastName:  "Stone",
			Email:     "admin@smartstock.local",
			Password:  string(hash),
			Role:      users.RoleAdministrator,
			Active:    true,
		},
		{
			ID:        uuid.New(),
			Username:  "imanager",
			FirstName: "Iris",
			LastName:  "Mann",
			Email:     "inventory@smartstock.local",
			Password:  string(hash),
			Role:      users.RoleInventoryManager,
			Active:    true,
		},
		{
			ID:        uuid.New(),
			Username:  "sales",
			FirstName: "Sam",
			LastName:  "Field",
			Email:     "sales@smartstock.local",
			Password:  string(hash),
			Role:      users.RoleSalesStaff,
			Active:    true,
		},
	}

	for i := range seedUsers {
		if err := s.db.PostgreSQL.WithContext(ctx).Create(&seedUsers[i]).Error; err != nil {
			return uuid.Nil, fmt.Errorf("failed to create user %s: %w", seedUsers[i].Username, err)
		}
		fmt.Printf("  Created user: %s (%s)\n", seedUsers[i].Username, seedUsers[i].Role)
	}

	return seedUsers[0].ID, nil
}

// SeedProducts creates a small catalogue, including one product already
// below its reorder level so the low-stock report has something to show.
func (s *Seeder) SeedProducts(ctx context.Context, createdBy uuid.UUID) error {
	products := []inventory.Product{
		{
			ID:           uuid.New(),
			Name:         "Thermal Label Printer",
			SKU:          "PRN-0001",
			Description:  "Desktop thermal printer for shipping labels",
			Category:     "hardware",
			Price:        189.99,
			Quantity:     25,
			ReorderLevel: 5,
			CreatedBy:    createdBy,
		},
		{
			ID:           uuid.New(),
			Name:         "Barcode Scanner",
			SKU:          "SCN-0002",
			Description:  "Handheld 2D barcode scanner, USB",
			Category:     "hardware",
			Price:        74.50,
			Quantity:     40,
			ReorderLevel: 10,
			CreatedBy:    createdBy,
		},
		{
			ID:           uuid.New(),
			Name:         "Shipping Box Medium",
			SKU:          "BOX-0003",
			Description:  "Corrugated box, 40x30x20cm, pack of 25",
			Category:     "packaging",
			Price:        19.90,
			Quantity:     200,
			ReorderLevel: 50,
			CreatedBy:    createdBy,
		},
		{
			ID:           uuid.New(),
			Name:         "Pallet Wrap Film",
			SKU:          "WRP-0004",
			Description:  "Stretch film roll, 500mm x 300m",
			Category:     "packaging",
			Price:        12.75,
			Quantity:     3,
			ReorderLevel: 8,
			CreatedBy:    createdBy,
		},
	}

	for i := range products {
		if err := s.db.PostgreSQL.WithContext(ctx).Create(&products[i]).Error; err != nil {
			return fmt.Errorf("failed to create product %s: %w", products[i].SKU, err)
		}
		fmt.Printf("  Created product: %s (%s, qty %d)\n", products[i].Name, products[i].SKU, products[i].Quantity)
	}

	return nil
}

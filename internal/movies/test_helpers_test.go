package movies

import (
	"context"
	"testing"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to access sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&Movie{}); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}

	service, err := NewService(ServiceConfig{Database: db})
	if err != nil {
		t.Fatalf("failed to construct service: %v", err)
	}
	return service, db
}

func mustCreate(t *testing.T, service *Service, movie Movie) Movie {
	t.Helper()
	created, err := service.Create(context.Background(), movie)
	if err != nil {
		t.Fatalf("unexpected create error: %v", err)
	}
	return created
}

func mustGet(t *testing.T, service *Service, imdbID string) Movie {
	t.Helper()
	found, err := service.Get(context.Background(), imdbID)
	if err != nil {
		t.Fatalf("unexpected get error: %v", err)
	}
	if found == nil {
		t.Fatalf("expected movie %q to exist", imdbID)
	}
	return *found
}

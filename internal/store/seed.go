package store

import (
	"context"
	"fmt"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
)

const picsumURL = "https://picsum.photos/seed/%d/640/480"

// Seed fills an empty store with n generated products and returns how many were inserted.
// A store that already holds products is left untouched.
func Seed(ctx context.Context, s ProductStore, n int, faker *gofakeit.Faker) (int, error) {
	existing, err := s.FindAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to inspect store before seeding: %w", err)
	}
	if len(existing) > 0 {
		return 0, nil
	}
	for i := range n {
		product := Product{
			ID:        uuid.NewString(),
			Name:      faker.ProductName(),
			Price:     int64(faker.Number(1, 1000)),
			Image:     fmt.Sprintf(picsumURL, faker.Number(1, 1000)),
			IsBlocked: faker.Bool(),
		}
		if _, err := s.Insert(ctx, product); err != nil {
			return i, fmt.Errorf("failed to seed product %d: %w", i, err)
		}
	}
	return n, nil
}

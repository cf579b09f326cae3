package repository

import (
	"context"
	"fmt"
	"math/rand"
	"testing"
)

func benchStore(b *testing.B, players int) *TreapStore {
	b.Helper()
	ctx := context.Background()
	store := NewTreapStore(WithCapacityHint(players))
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < players; i++ {
		id := fmt.Sprintf("player-%06d", i)
		if err := store.SetRating(ctx, id, 1200+rng.Float64()*800, rng.Intn(40)); err != nil {
			b.Fatalf("seed store: %v", err)
		}
	}
	return store
}

func BenchmarkSetRating(b *testing.B) {
	ctx := context.Background()
	store := benchStore(b, 10_000)
	rng := rand.New(rand.NewSource(1))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		id := fmt.Sprintf("player-%06d", rng.Intn(10_000))
		_ = store.SetRating(ctx, id, 1200+rng.Float64()*800, i)
	}
}

func BenchmarkTopN(b *testing.B) {
	ctx := context.Background()
	store := benchStore(b, 10_000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := store.TopN(ctx, 100); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkRank(b *testing.B) {
	ctx := context.Background()
	store := benchStore(b, 10_000)
	rng := rand.New(rand.NewSource(2))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		id := fmt.Sprintf("player-%06d", rng.Intn(10_000))
		if _, err := store.Rank(ctx, id); err != nil {
			b.Fatal(err)
		}
	}
}

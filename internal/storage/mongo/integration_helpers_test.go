package mongo

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"
)

const defaultLocalIntegrationURI = "mongodb://localhost:27017"

func openMongoStoreForIntegrationTest(t *testing.T) *Store {
	t.Helper()

	candidates := []string{
		strings.TrimSpace(os.Getenv("CRM_MONGO_TEST_URI")),
		strings.TrimSpace(os.Getenv("CRM_MONGO_URI")),
		defaultLocalIntegrationURI,
	}

	seen := map[string]struct{}{}
	var openErrs []string
	for _, uri := range candidates {
		if uri == "" {
			continue
		}
		if _, ok := seen[uri]; ok {
			continue
		}
		seen[uri] = struct{}{}

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		store, err := Open(ctx, uri, "crm_test")
		cancel()
		if err == nil {
			t.Cleanup(func() {
				_ = store.Close(context.Background())
			})
			dropAllCollectionsForIntegrationTest(t, store)
			ensureCtx, ensureCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer ensureCancel()
			if err := store.EnsureIndexes(ensureCtx); err != nil {
				t.Fatalf("ensure indexes: %v", err)
			}
			return store
		}
		openErrs = append(openErrs, fmt.Sprintf("%s: %v", uri, err))
	}

	t.Skipf("mongo is not available for integration tests: %s", strings.Join(openErrs, " | "))
	return nil
}

func dropAllCollectionsForIntegrationTest(t *testing.T, store *Store) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, name := range []string{usersCollection, productsCollection, customersCollection, ordersCollection} {
		if err := store.Database().Collection(name).Drop(ctx); err != nil {
			t.Fatalf("drop collection %s: %v", name, err)
		}
	}
}

package utils

import (
	"context"
	"fmt"
	"time"

	"github.com/pocketbase/dbx"
)

// DatabaseHealthCheck runs a trivial query against db within a short deadline.
func DatabaseHealthCheck(ctx context.Context, db dbx.Builder) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	var one int
	if err := db.NewQuery("SELECT 1").WithContext(ctx).Row(&one); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	return nil
}

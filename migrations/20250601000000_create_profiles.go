package migrations

import (
	"context"
	"fmt"

	"github.com/techpostia/techpost/internal/models"
	"github.com/techpostia/techpost/internal/profile"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println(" [up] creating profiles")
		return profile.NewProfileRepository(db).InitializeDatabase(ctx)
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println(" [down] dropping profiles")
		_, err := db.NewDropTable().Model((*models.ProfileDB)(nil)).IfExists().Cascade().Exec(ctx)
		return err
	})
}

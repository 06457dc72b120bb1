package migrations

import (
	"context"
	"fmt"

	"github.com/techpostia/techpost/internal/models"
	"github.com/techpostia/techpost/internal/post"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println(" [up] creating posts")
		return post.NewPostRepository(db).InitializeDatabase(ctx)
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println(" [down] dropping posts")
		_, err := db.NewDropTable().Model((*models.PostDB)(nil)).IfExists().Exec(ctx)
		return err
	})
}

package migrations

import (
	"context"

	"github.com/uptrace/bun"
	"timed-quiz-service/internal/infra/sqlstore"
)

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			if _, err := db.NewCreateTable().
				Model((*sqlstore.UserRow)(nil)).
				IfNotExists().
				Exec(ctx); err != nil {
				return err
			}
			// One record per name pair; the store maps violations to a duplicate identity error.
			_, err := db.NewCreateIndex().
				Model((*sqlstore.UserRow)(nil)).
				Unique().
				Index("user_records_name_idx").
				Column("first_name", "last_name").
				IfNotExists().
				Exec(ctx)
			return err
		},
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.NewDropTable().Model((*sqlstore.UserRow)(nil)).IfExists().Exec(ctx)
			return err
		},
	)
}

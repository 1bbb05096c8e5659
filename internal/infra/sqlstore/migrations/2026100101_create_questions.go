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
				Model((*sqlstore.QuestionRow)(nil)).
				IfNotExists().
				Exec(ctx); err != nil {
				return err
			}
			_, err := db.NewCreateIndex().
				Model((*sqlstore.QuestionRow)(nil)).
				Index("questions_category_idx").
				Column("category").
				IfNotExists().
				Exec(ctx)
			return err
		},
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.NewDropTable().Model((*sqlstore.QuestionRow)(nil)).IfExists().Exec(ctx)
			return err
		},
	)
}

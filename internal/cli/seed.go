package cli

import (
	"context"
	"log"

	"github.com/spf13/cobra"
	"timed-quiz-service/internal/config"
	"timed-quiz-service/internal/infra/memory"
	"timed-quiz-service/internal/infra/sqlstore"
	"timed-quiz-service/internal/infra/sqlstore/migrations"
)

// NewSeedCmd loads questions from a YAML file into the SQL question table.
func NewSeedCmd(configPath *string) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load questions from a YAML file into the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), *configPath, file)
		},
	}
	cmd.Flags().StringVar(&file, "file", "config/questions.yaml", "YAML file with questions")
	return cmd
}

func runSeed(ctx context.Context, configPath, file string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	questions, err := memory.LoadQuestionFile(file)
	if err != nil {
		return err
	}

	driver, dsn, err := sqlTarget(cfg)
	if err != nil {
		return err
	}
	db, err := sqlstore.Open(driver, dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := migrations.Run(ctx, db); err != nil {
		return err
	}
	if err := sqlstore.NewQuestionStore(db).Insert(ctx, questions); err != nil {
		return err
	}
	log.Printf("seeded %d questions from %s", len(questions), file)
	return nil
}

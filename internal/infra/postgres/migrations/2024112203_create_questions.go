package migrations

import (
	"context"

	"github.com/uptrace/bun"

	"sustainability-quiz-service/internal/domain"
)

type questionRow struct {
	bun.BaseModel `bun:"table:questions"`

	ID         int      `bun:"id,pk"`
	Text       string   `bun:"text,notnull"`
	YesReasons []string `bun:"yes_reasons,array"`
	NoReasons  []string `bun:"no_reasons,array"`
}

// Creates the catalog table and seeds it with the built-in questions.
func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			if _, err := db.NewCreateTable().Model((*questionRow)(nil)).IfNotExists().Exec(ctx); err != nil {
				return err
			}
			catalog := domain.Catalog()
			rows := make([]questionRow, 0, len(catalog))
			for _, q := range catalog {
				rows = append(rows, questionRow{ID: q.ID, Text: q.Text, YesReasons: q.YesReasons, NoReasons: q.NoReasons})
			}
			_, err := db.NewInsert().Model(&rows).On("CONFLICT (id) DO NOTHING").Exec(ctx)
			return err
		},
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.NewDropTable().Model((*questionRow)(nil)).IfExists().Exec(ctx)
			return err
		},
	)
}

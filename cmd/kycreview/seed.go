package main

import (
	"fmt"

	"kycreview/internal/seed"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var seedCommand = &cli.Command{
	Name:  "seed",
	Usage: "Seed the database with sample review drafts",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "user-id",
			Aliases:  []string{"u"},
			Usage:    "Cognito subject that will own the drafts",
			Required: true,
		},
	},
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig(c)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		drafts, pool, err := connectDraftRepository(c.Context, cfg)
		if err != nil {
			return err
		}
		defer pool.Close()

		logrus.Info("Connected to database")

		ids, err := seed.SeedDrafts(c.Context, drafts, c.String("user-id"))
		if err != nil {
			return fmt.Errorf("failed to seed drafts: %w", err)
		}

		for _, id := range ids {
			logrus.WithField("draft_id", id).Infof("seeded /confirm-details/%s", id)
		}

		return nil
	},
}

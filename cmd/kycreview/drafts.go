package main

import (
	"fmt"
	"time"

	"kycreview/internal/utils"

	"github.com/k0kubun/pp"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var draftsCommand = &cli.Command{
	Name:  "drafts",
	Usage: "Inspect and clean up review drafts",
	Subcommands: []*cli.Command{
		{
			Name:  "new-id",
			Usage: "Print fresh draft IDs for the seed file",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:    "count",
					Aliases: []string{"c"},
					Value:   1,
				},
			},
			Action: func(c *cli.Context) error {
				for range c.Int("count") {
					fmt.Println(utils.NanoID())
				}
				return nil
			},
		},
		{
			Name:      "show",
			Usage:     "Pretty print a stored draft",
			ArgsUsage: "<draft id>",
			Action: func(c *cli.Context) error {
				id := c.Args().First()
				if id == "" {
					return fmt.Errorf("draft id is required")
				}

				cfg, err := loadConfig(c)
				if err != nil {
					return fmt.Errorf("failed to load config: %w", err)
				}

				drafts, pool, err := connectDraftRepository(c.Context, cfg)
				if err != nil {
					return err
				}
				defer pool.Close()

				draft, err := drafts.Draft(c.Context, id)
				if err != nil {
					return fmt.Errorf("failed to load draft %s: %w", id, err)
				}

				_, err = pp.Println(draft)
				return err
			},
		},
		{
			Name:  "purge",
			Usage: "Delete drafts that have not been touched for a while",
			Flags: []cli.Flag{
				&cli.DurationFlag{
					Name:  "older-than",
					Usage: "Age after which a draft is removed (defaults to DRAFT_MAX_AGE_HOURS)",
				},
			},
			Action: func(c *cli.Context) error {
				cfg, err := loadConfig(c)
				if err != nil {
					return fmt.Errorf("failed to load config: %w", err)
				}

				maxAge := c.Duration("older-than")
				if maxAge == 0 {
					maxAge = time.Duration(cfg.DraftMaxAgeHours) * time.Hour
				}

				drafts, pool, err := connectDraftRepository(c.Context, cfg)
				if err != nil {
					return err
				}
				defer pool.Close()

				purged, err := drafts.PurgeDraftsBefore(c.Context, time.Now().Add(-maxAge))
				if err != nil {
					return fmt.Errorf("failed to purge drafts: %w", err)
				}

				logrus.WithFields(logrus.Fields{
					"purged":     purged,
					"older_than": maxAge.String(),
				}).Info("purged review drafts")
				return nil
			},
		},
	},
}

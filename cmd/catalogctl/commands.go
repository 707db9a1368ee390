package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"go-offer-match/internal/app"
	"go-offer-match/internal/config"
	"go-offer-match/internal/handler"
	applog "go-offer-match/internal/logger"
	"go-offer-match/internal/model"
	"go-offer-match/internal/service"
)

// operator is the actor recorded on writes made from the CLI.
var operator = service.Actor{ID: "catalogctl", Name: "catalogctl"}

type runtime struct {
	services handler.Services
	log      *zap.Logger
	close    func() error
}

type opener func(envFile string) (*runtime, error)

func openRuntime(envFile string) (*runtime, error) {
	var files []string
	if envFile != "" {
		files = append(files, envFile)
	}
	cfg, err := config.Load(files...)
	if err != nil {
		return nil, err
	}
	log, err := applog.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	store, closeStore, err := app.OpenStore(cfg, log)
	if err != nil {
		return nil, err
	}
	return &runtime{
		services: app.NewServices(cfg, store, app.Options{}, log),
		log:      log,
		close: func() error {
			_ = log.Sync()
			return closeStore()
		},
	}, nil
}

// seedFile is the catalog seed document.
type seedFile struct {
	Products []model.ProductDraft `yaml:"products"`
}

func newRootCmd(open opener) *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:           "catalogctl",
		Short:         "Catalog and offer reconciliation chores",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", "", "optional .env file to load before the environment")

	// withRuntime opens the store for the duration of one command.
	withRuntime := func(run func(cmd *cobra.Command, args []string, rt *runtime) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			rt, err := open(envFile)
			if err != nil {
				return err
			}
			defer rt.close() //nolint:errcheck
			return run(cmd, args, rt)
		}
	}

	root.AddCommand(
		newSeedCmd(withRuntime),
		newIngestCmd(withRuntime),
		newResetPasswordCmd(withRuntime),
	)
	return root
}

type runtimeWrapper func(run func(cmd *cobra.Command, args []string, rt *runtime) error) func(*cobra.Command, []string) error

func newSeedCmd(with runtimeWrapper) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <catalog.yaml>",
		Short: "Insert catalog products whose SKU is not present yet",
		Args:  cobra.ExactArgs(1),
		RunE: with(func(cmd *cobra.Command, args []string, rt *runtime) error {
			drafts, err := readSeedFile(args[0])
			if err != nil {
				return err
			}
			res, err := rt.services.Catalog.Seed(cmd.Context(), drafts, operator)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %d, skipped %d\n", res.Created, res.Skipped)
			return nil
		}),
	}
}

func newIngestCmd(with runtimeWrapper) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <offers.json>",
		Short: "Reconcile a batch of supplier offer records",
		Args:  cobra.ExactArgs(1),
		RunE: with(func(cmd *cobra.Command, args []string, rt *runtime) error {
			records, err := readOfferFile(args[0])
			if err != nil {
				return err
			}
			res, err := rt.services.Ingestion.Ingest(cmd.Context(), records, operator)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, r := range res.Results {
				if r.Error != "" {
					fmt.Fprintf(out, "#%d failed: %s\n", r.Index, r.Error)
				}
			}
			fmt.Fprintf(out, "matched %d, needs review %d, unmatched %d, failed %d\n",
				res.Matched, res.NeedsReview, res.Unmatched, res.Failed)
			return nil
		}),
	}
}

func newResetPasswordCmd(with runtimeWrapper) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "reset-password <email>",
		Short: "Overwrite a user's password and end their sessions",
		Args:  cobra.ExactArgs(1),
		RunE: with(func(cmd *cobra.Command, args []string, rt *runtime) error {
			if err := rt.services.Auth.SetPassword(cmd.Context(), args[0], password); err != nil {
				return fmt.Errorf("reset password for %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "password for %s has been reset\n", args[0])
			return nil
		}),
	}
	cmd.Flags().StringVar(&password, "password", "", "new password (min 6 characters)")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func readSeedFile(path string) ([]model.ProductDraft, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc seedFile
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(doc.Products) == 0 {
		return nil, errors.New("seed file has no products")
	}
	return doc.Products, nil
}

// readOfferFile accepts the ingest request body or a bare array of records.
func readOfferFile(path string) ([]model.OfferRecord, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var records []model.OfferRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		var req handler.IngestRequest
		if err2 := json.Unmarshal(raw, &req); err2 != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		records = req.Offers
	}
	if len(records) == 0 {
		return nil, errors.New("offer file has no records")
	}
	return records, nil
}

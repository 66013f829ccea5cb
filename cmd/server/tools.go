package main

import (
	"context"
	"fmt"
	"time"

	"github.com/fitfactory/backend/internal/config"
	"github.com/fitfactory/backend/internal/repository"
	"github.com/fitfactory/backend/internal/service"
	"github.com/spf13/cobra"
)

func newCreateTableCmd() *cobra.Command {
	var tableName string

	cmd := &cobra.Command{
		Use:   "create-table",
		Short: "Creates the DynamoDB table and enables OTP expiry",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger("info")
			cfg := config.LoadDynamoDB()
			if tableName != "" {
				cfg.TableName = tableName
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
			defer cancel()

			client, err := initDynamoDB(ctx, &cfg, logger)
			if err != nil {
				return err
			}
			return repository.CreateTable(ctx, client, cfg.TableName, logger)
		},
	}

	cmd.Flags().StringVar(&tableName, "table", "", "table name (defaults to DYNAMODB_TABLE_NAME)")
	return cmd
}

func newGenSecretCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gen-secret",
		Short: "Prints a random 256-bit value for JWT_SECRET_KEY",
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, err := service.GenerateSecretKey()
			if err != nil {
				return fmt.Errorf("failed to generate secret: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), secret)
			return nil
		},
	}
}

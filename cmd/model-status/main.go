package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/yourusername/dinger/internal/config"
	"github.com/yourusername/dinger/internal/model"
)

var (
	configFile string
	logger     *logrus.Logger
	cfg        *config.Config
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
}

var rootCmd = &cobra.Command{
	Use:   "model-status",
	Short: "Check model service status",
	Long:  `Displays health status, active model version and cache configuration for the prediction model service.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		logger = logrus.New()
		logger.SetLevel(logrus.WarnLevel)
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		displayStatus()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func loadConfig() error {
	viper.SetConfigFile(configFile)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()
	viper.SetEnvPrefix("DINGER")

	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	cfg = &config.Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return nil
}

func displayStatus() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	fmt.Println("\nModel Service Status")
	fmt.Println("====================")

	client := model.NewHTTPClient(cfg.ModelService, logger)

	fmt.Print("Health: ")
	if err := client.HealthCheck(ctx); err != nil {
		fmt.Println("UNAVAILABLE")
		fmt.Printf("  Error: %v\n", err)
	} else {
		fmt.Println("ONLINE")

		status, err := client.Status(ctx)
		if err != nil {
			fmt.Printf("  Failed to fetch model status: %v\n", err)
		} else {
			fmt.Printf("Model Version: %s\n", status.ModelVersion)
			fmt.Printf("Trained At: %s\n", status.TrainedAt.Format(time.RFC3339))
			fmt.Printf("Training Samples: %d\n", status.Samples)
			for name, value := range status.Metrics {
				fmt.Printf("  %s: %.4f\n", name, value)
			}
		}
	}

	fmt.Println("\nConfiguration:")
	fmt.Printf("  Service URL: %s\n", cfg.ModelService.HTTPAddress)
	fmt.Printf("  Enabled: %v\n", cfg.ModelService.Enabled)
	fmt.Printf("  Request Timeout: %d seconds\n", cfg.ModelService.RequestTimeoutSeconds)
	fmt.Printf("  Cache TTL: %d seconds\n", cfg.ModelService.CacheTTLSeconds)
	fmt.Printf("  Cache Max Size: %d\n", cfg.ModelService.CacheMaxSize)
	fmt.Println()
}

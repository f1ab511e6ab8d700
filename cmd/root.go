package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/ergowatches/served/internal/models"
	"github.com/ergowatches/served/internal/simulator"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "served",
	Short: "Simulates dine-in table sessions under menu rotation and dynamic pricing",
	Long:  `served is a CLI tool that drives a rule-based menu engine through simulated wall-clock time: guests are seated at tables, order from whichever menus are currently rotated in at dynamically adjusted prices, split the bill proportionally, and settle. Every step is emitted as an event stream.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := models.LoadConfig(cfgFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		sim := simulator.NewSimulator(cfg)
		sim.Run()
	},
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is examples/config.json)")

	rootCmd.Flags().Int("seed", 42, "Random seed for the simulation")
	rootCmd.Flags().String("start-date", time.Now().Format(time.RFC3339), "Start date for the simulation")
	rootCmd.Flags().String("end-date", time.Now().AddDate(0, 0, 1).Format(time.RFC3339), "End date for the simulation")
	rootCmd.Flags().Int("tables", 12, "Number of tables in the dining room")
	rootCmd.Flags().Float64("occupancy-factor", 0.35, "Base probability of a free table being seated per minute at peak")
	rootCmd.Flags().Int("min-guests", 2, "Minimum guests seated per table")
	rootCmd.Flags().Int("max-guests", 6, "Maximum guests seated per table")
	rootCmd.Flags().String("catalog-file", "", "Catalog file with categories, items, rules and promo codes (generated when empty)")
	rootCmd.Flags().String("profile-path", "", "Path of the guest profile file (theme and favourites)")
	rootCmd.Flags().String("default-locale", "en", "Locale used when rendering item names")
	rootCmd.Flags().Bool("kafka-enabled", false, "Enable Kafka output")
	rootCmd.Flags().String("kafka-broker-list", "localhost:9092", "Kafka broker list")
	rootCmd.Flags().Bool("postgres-enabled", false, "Enable Postgres output")
	rootCmd.Flags().String("output-format", "", "File output format: json, csv or parquet")
	rootCmd.Flags().String("output-path", "", "Output directory (console output when empty)")
	rootCmd.Flags().Bool("continuous", false, "Run the simulation in continuous mode")

	viper.BindPFlags(rootCmd.Flags())
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath("examples")
		viper.SetConfigType("json")
		viper.SetConfigName("config")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

package main

import (
    "context"
    "fmt"
    "os"
    "strings"

    "github.com/apex/log"
    texthandler "github.com/apex/log/handlers/text"
    "github.com/spf13/cobra"
    "github.com/spf13/viper"

    "nrp/internal/app"
    "nrp/internal/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
    Use:   "nrpctl",
    Short: "Operate the restoration intake service",
    Long: `nrpctl runs maintenance tasks against the same store the server uses.

Settings come from the environment (or .env), an optional nrpctl.yaml and
flags, in increasing order of precedence.`,
    SilenceUsage: true,
    PersistentPreRun: func(cmd *cobra.Command, args []string) {
        log.SetHandler(texthandler.New(os.Stderr))
        if lvl, err := log.ParseLevel(viper.GetString("LOG_LEVEL")); err == nil {
            log.SetLevel(lvl)
        }
    },
}

func Execute() {
    if err := rootCmd.Execute(); err != nil {
        os.Exit(1)
    }
}

func init() {
    cobra.OnInitialize(initConfig)

    rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./nrpctl.yaml if present)")
    rootCmd.PersistentFlags().String("store", "", "store driver (postgres|sqlite3|mysql|memory)")
    rootCmd.PersistentFlags().String("database-url", "", "database URL or DSN")
    rootCmd.PersistentFlags().String("log-level", "warn", "log level")

    viper.BindPFlag("STORE_DRIVER", rootCmd.PersistentFlags().Lookup("store"))
    viper.BindPFlag("DATABASE_URL", rootCmd.PersistentFlags().Lookup("database-url"))
    viper.BindPFlag("LOG_LEVEL", rootCmd.PersistentFlags().Lookup("log-level"))

    rootCmd.AddCommand(migrateCmd, scoreCmd, seedCmd, complianceCmd, runDueCmd)
}

func initConfig() {
    viper.AutomaticEnv()
    if cfgFile != "" {
        viper.SetConfigFile(cfgFile)
    } else {
        viper.SetConfigName("nrpctl")
        viper.SetConfigType("yaml")
        viper.AddConfigPath(".")
    }
    if err := viper.ReadInConfig(); err != nil {
        if _, ok := err.(viper.ConfigFileNotFoundError); !ok || cfgFile != "" {
            fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
            os.Exit(1)
        }
    }
}

// loadConfig layers viper's flag and file values over the environment before
// the shared loader runs.
func loadConfig() (config.Config, error) {
    for _, key := range viper.AllKeys() {
        key = strings.ToUpper(key)
        if v := viper.GetString(key); v != "" {
            os.Setenv(key, v)
        }
    }
    return config.Load()
}

func openApp(ctx context.Context) (*app.App, error) {
    cfg, err := loadConfig()
    if err != nil { return nil, err }
    return app.New(ctx, cfg)
}

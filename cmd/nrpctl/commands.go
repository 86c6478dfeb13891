package main

import (
    "fmt"
    "os"

    "github.com/shopspring/decimal"
    "github.com/spf13/cobra"
    "gopkg.in/yaml.v3"

    "nrp/internal/app"
    "nrp/internal/domain"
    "nrp/internal/services/scoring"
)

var migrateCmd = &cobra.Command{
    Use:   "migrate",
    Short: "Apply pending schema migrations",
    RunE: func(cmd *cobra.Command, args []string) error {
        cfg, err := loadConfig()
        if err != nil { return err }
        store, err := app.OpenStore(cmd.Context(), cfg.StoreDriver, cfg.DatabaseURL)
        if err != nil { return err }
        defer store.Close()
        if err := app.Migrate(cmd.Context(), store); err != nil {
            return fmt.Errorf("migrate: %w", err)
        }
        fmt.Fprintln(cmd.OutOrStdout(), styles.ok.Render("schema up to date"))
        return nil
    },
}

type scoreOptions struct {
    service, urgency, property, area, ready, contact, description string
    value                                                          string
    insured, business, decisionMaker, photos                       bool
}

var scoreFlags scoreOptions

var scoreCmd = &cobra.Command{
    Use:   "score",
    Short: "Score an intake from flags and print the breakdown",
    Example: `  nrpctl score --service water_damage --urgency emergency --property residential \
      --value 900000 --insured --decision-maker`,
    RunE: func(cmd *cobra.Command, args []string) error {
        in, err := intakeFromFlags()
        if err != nil { return err }
        if err := in.ValidateEnums(); err != nil { return err }
        fmt.Fprintln(cmd.OutOrStdout(), renderScore(scoring.Evaluate(in)))
        return nil
    },
}

func intakeFromFlags() (domain.IntakeRecord, error) {
    f := scoreFlags
    in := domain.IntakeRecord{
        ServiceType:           domain.ServiceType(f.service),
        Urgency:               domain.Urgency(f.urgency),
        PropertyType:          domain.PropertyType(f.property),
        EstimatedAreaAffected: domain.AreaAffected(f.area),
        ReadyToStart:          domain.ReadyToStart(f.ready),
        ContactMethod:         domain.ContactMethod(f.contact),
        DamageDescription:     f.description,
        HasInsurance:          f.insured,
        IsBusinessProperty:    f.business,
        DecisionMaker:         f.decisionMaker,
        HasPhotos:             f.photos,
    }
    if f.value != "" {
        v, err := decimal.NewFromString(f.value)
        if err != nil { return in, fmt.Errorf("--value: %w", err) }
        in.PropertyValue = v
    }
    return in, nil
}

var seedFile string

var seedCmd = &cobra.Command{
    Use:   "seed",
    Short: "Upsert the contractor directory from a YAML file",
    RunE: func(cmd *cobra.Command, args []string) error {
        raw, err := os.ReadFile(seedFile)
        if err != nil { return err }
        var doc struct {
            Contractors []domain.Contractor `yaml:"contractors"`
        }
        if err := yaml.Unmarshal(raw, &doc); err != nil {
            return fmt.Errorf("parse %s: %w", seedFile, err)
        }
        a, err := openApp(cmd.Context())
        if err != nil { return err }
        defer a.Close()
        for _, c := range doc.Contractors {
            if c.ID == "" {
                return fmt.Errorf("contractor %q has no id", c.CompanyName)
            }
            if err := a.Store.UpsertContractor(cmd.Context(), c); err != nil {
                return fmt.Errorf("upsert %s: %w", c.ID, err)
            }
        }
        fmt.Fprintln(cmd.OutOrStdout(), styles.ok.Render(fmt.Sprintf("%d contractors loaded", len(doc.Contractors))))
        return nil
    },
}

var timeframe string

var complianceCmd = &cobra.Command{
    Use:   "compliance",
    Short: "Print the compliance snapshot",
    RunE: func(cmd *cobra.Command, args []string) error {
        a, err := openApp(cmd.Context())
        if err != nil { return err }
        defer a.Close()
        snap, err := a.Compliance.Summary(cmd.Context(), timeframe)
        if err != nil { return err }
        fmt.Fprintln(cmd.OutOrStdout(), renderCompliance(snap))
        return nil
    },
}

var runDueCmd = &cobra.Command{
    Use:   "run-due",
    Short: "Process every lifecycle job that is due, once",
    RunE: func(cmd *cobra.Command, args []string) error {
        a, err := openApp(cmd.Context())
        if err != nil { return err }
        defer a.Close()
        n, err := a.ProcessDue(cmd.Context())
        if err != nil { return err }
        fmt.Fprintln(cmd.OutOrStdout(), styles.ok.Render(fmt.Sprintf("%d jobs processed", n)))
        return nil
    },
}

func init() {
    fs := scoreCmd.Flags()
    fs.StringVar(&scoreFlags.service, "service", "", "service type, e.g. water_damage")
    fs.StringVar(&scoreFlags.urgency, "urgency", "", "emergency|urgent|soon|planning|routine")
    fs.StringVar(&scoreFlags.property, "property", "", "property type")
    fs.StringVar(&scoreFlags.area, "area", "", "estimated area affected")
    fs.StringVar(&scoreFlags.ready, "ready", "", "ready to start")
    fs.StringVar(&scoreFlags.contact, "contact-method", "", "phone|email|sms")
    fs.StringVar(&scoreFlags.description, "description", "", "free-text damage description")
    fs.StringVar(&scoreFlags.value, "value", "", "property value in AUD")
    fs.BoolVar(&scoreFlags.insured, "insured", false, "has insurance")
    fs.BoolVar(&scoreFlags.business, "business", false, "business property")
    fs.BoolVar(&scoreFlags.decisionMaker, "decision-maker", false, "caller is the decision maker")
    fs.BoolVar(&scoreFlags.photos, "photos", false, "photos supplied")

    seedCmd.Flags().StringVarP(&seedFile, "file", "f", "contractors.yaml", "contractor directory file")
    complianceCmd.Flags().StringVar(&timeframe, "timeframe", "30d", "7d|30d|90d|365d|all")
}

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/google/uuid"

	"ledger-recon/internal/app"
	"ledger-recon/internal/core"
)

// Run executes a one-shot CLI command and exits.
// args is os.Args[1:], with the subcommand name first.
func Run(ctx context.Context, svc app.ApplicationService, args []string) {
	switch args[0] {
	case "analyze", "ana", "a":
		result, err := svc.AnalyzeLedger(ctx)
		if err != nil {
			log.Fatalf("Analysis failed: %v", err)
		}
		if result.Snapshot.Error != "" {
			fmt.Fprintln(os.Stderr, "Ledger could not be analyzed:", result.Snapshot.Error)
			os.Exit(1)
		}
		printSnapshot(result)

	case "detect", "det", "d":
		result, err := svc.RunDetectionPass(ctx)
		if err != nil {
			log.Fatalf("Detection failed: %v", err)
		}
		printDetection(result)

	case "alerts", "al":
		status := core.AlertStatus("")
		if len(args) > 1 {
			status = core.AlertStatus(args[1])
		}
		result, err := svc.ListAlerts(ctx, status)
		if err != nil {
			log.Fatalf("Failed to list alerts: %v", err)
		}
		printAlertList(result.Alerts)

	case "alert":
		if len(args) < 2 {
			log.Fatal("Usage: app alert <alert-id>")
		}
		id := mustParseID(args[1])
		result, err := svc.GetAlert(ctx, id)
		if err != nil {
			log.Fatalf("Failed to load alert: %v", err)
		}
		printAlert(result)

	case "status":
		if len(args) < 3 {
			log.Fatal("Usage: app status <alert-id> <active|valide|corrige|rejete> [comment]")
		}
		req := app.UpdateAlertStatusRequest{
			AlertID: mustParseID(args[1]),
			Status:  core.AlertStatus(args[2]),
		}
		if len(args) > 3 {
			req.Commentaire = strings.Join(args[3:], " ")
		}
		if err := svc.UpdateAlertStatus(ctx, req); err != nil {
			log.Fatalf("Status update failed: %v", err)
		}
		fmt.Println("Alert updated.")

	case "correct", "cor", "c":
		if len(args) < 2 {
			log.Fatal("Usage: app correct <alert-id> < draft.json")
		}
		var draft core.CorrectionDraft
		if err := json.NewDecoder(os.Stdin).Decode(&draft); err != nil {
			log.Fatalf("Invalid JSON: %v", err)
		}
		result, err := svc.ApplyCorrection(ctx, app.CorrectionRequest{
			AlertID: mustParseID(args[1]),
			Draft:   &draft,
		})
		if err != nil {
			log.Fatalf("Correction failed: %v", err)
		}
		fmt.Printf("Document %s corrected (ref %s).\n", result.DocumentID, result.Ref)

	case "draft", "dr":
		if len(args) < 2 {
			log.Fatal("Usage: app draft <alert-id>")
		}
		result, err := svc.DraftCorrection(ctx, mustParseID(args[1]))
		if err != nil {
			log.Fatalf("Drafting failed: %v", err)
		}
		printDraft(result)

	case "config", "cfg":
		if len(args) > 1 && args[1] == "set" {
			var cfg core.DetectionConfig
			if err := json.NewDecoder(os.Stdin).Decode(&cfg); err != nil {
				log.Fatalf("Invalid JSON: %v", err)
			}
			if err := svc.UpdateConfig(ctx, cfg); err != nil {
				log.Fatalf("Config update failed: %v", err)
			}
			fmt.Println("Configuration saved.")
			return
		}
		result, err := svc.GetConfig(ctx)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(result.Config)

	case "dashboard", "dash":
		result, err := svc.GetDashboard(ctx)
		if err != nil {
			log.Fatalf("Failed to build dashboard: %v", err)
		}
		printDashboard(result.Dashboard)

	case "report", "rep", "r":
		result, err := svc.BuildReport(ctx)
		if err != nil {
			log.Fatalf("Failed to build report: %v", err)
		}
		printReport(result.Report)

	default:
		log.Fatalf("Unknown command: %s\nAvailable: analyze, detect, alerts, alert, status, correct, draft, config, dashboard, report", args[0])
	}
}

func mustParseID(s string) uuid.UUID {
	id, err := uuid.Parse(s)
	if err != nil {
		log.Fatalf("Invalid alert id %q: %v", s, err)
	}
	return id
}

func printSnapshot(result *app.AnalysisResult) {
	snap := result.Snapshot
	fmt.Println()
	fmt.Println(strings.Repeat("=", 62))
	fmt.Printf("  %-58s\n", "LEDGER ANALYSIS")
	fmt.Printf("  Document : %s\n", result.DocumentID)
	fmt.Printf("  Source   : %s\n", snap.SourceFile)
	fmt.Println(strings.Repeat("=", 62))
	fmt.Printf("  Entries      : %d\n", snap.EntryCount)
	fmt.Printf("  Accounts     : %d\n", len(snap.AccountDetails))
	fmt.Printf("  Total debit  : %s\n", core.FormatAmount(snap.TotalDebit))
	fmt.Printf("  Total credit : %s\n", core.FormatAmount(snap.TotalCredit))
	fmt.Printf("  Balance      : %s\n", core.FormatAmount(snap.Balance))
	if snap.DateAnalysis.PeriodStart != "" {
		fmt.Printf("  Period       : %s → %s\n", snap.DateAnalysis.PeriodStart, snap.DateAnalysis.PeriodEnd)
	}
	if len(snap.Anomalies) > 0 {
		fmt.Println(strings.Repeat("-", 62))
		fmt.Printf("  %d anomalies:\n", len(snap.Anomalies))
		for _, a := range snap.Anomalies {
			fmt.Printf("  - [%s] %s\n", a.Kind, a.Description)
		}
	}
	fmt.Println(strings.Repeat("=", 62))
}

func printDetection(result *app.DetectionResult) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 62))
	fmt.Printf("  %-58s\n", "DETECTION PASS")
	fmt.Printf("  Ledger    : %s\n", result.GLDocumentID)
	if result.RLDocumentID != (uuid.UUID{}) {
		fmt.Printf("  Statement : %s\n", result.RLDocumentID)
	}
	fmt.Println(strings.Repeat("=", 62))
	fmt.Printf("  Alerts : %d\n", len(result.Alerts))
	for _, sev := range []core.Severity{core.SeverityCritical, core.SeverityHigh, core.SeverityMedium, core.SeverityLow} {
		if n := result.BySeverity[sev]; n > 0 {
			fmt.Printf("    %-8s : %d\n", sev, n)
		}
	}
	fmt.Printf("  Risk   : %d/100 (%s)\n", result.Risk.Score, result.Risk.Level)
	fmt.Println(strings.Repeat("=", 62))
	printAlertList(result.Alerts)
}

func printAlertList(alerts []core.Alert) {
	if len(alerts) == 0 {
		fmt.Println("No alerts.")
		return
	}
	fmt.Printf("  %-36s %-8s %-24s %s\n", "ID", "SEVERITY", "KIND", "REF")
	fmt.Println(strings.Repeat("-", 90))
	for _, a := range alerts {
		fmt.Printf("  %-36s %-8s %-24s %s\n", a.ID, a.Severity, a.Kind, a.Ref)
	}
}

func printAlert(result *app.AlertResult) {
	a := result.Alert
	fmt.Printf("\nTITLE      : %s\n", a.Title)
	fmt.Printf("KIND       : %s\n", a.Kind)
	fmt.Printf("SEVERITY   : %s\n", a.Severity)
	fmt.Printf("STATUS     : %s\n", a.Status)
	fmt.Printf("REF        : %s\n", a.Ref)
	fmt.Printf("SOURCE     : %s\n", a.Source)
	if a.Montant != nil {
		fmt.Printf("MONTANT    : %s\n", core.FormatAmount(*a.Montant))
	}
	if a.Delta != nil {
		fmt.Printf("ÉCART      : %s\n", core.FormatAmount(*a.Delta))
	}
	fmt.Printf("DESCRIPTION: %s\n", a.Description)
	if a.Commentaire != "" {
		fmt.Printf("COMMENT    : %s\n", a.Commentaire)
	}
	if result.Guide != nil {
		fmt.Println("\nCORRECTIVE GUIDE:")
		fmt.Printf("  Action  : %s\n", result.Guide.Action)
		fmt.Printf("  Account : %s\n", result.Guide.SuggestedAccount)
		fmt.Printf("  Label   : %s\n", result.SuggestedLabel)
		fmt.Printf("  Counter : %s\n", result.Guide.CounterEntryHint)
	}
}

func printDraft(result *app.DraftResult) {
	d := result.Draft
	fmt.Printf("\nDRAFT FOR  : %s (%s)\n", result.Alert.Title, d.Ref)
	fmt.Printf("REASONING  : %s\n", d.Reasoning)
	fmt.Printf("CONFIDENCE : %.2f\n", d.Confidence)
	fmt.Println("ENTRIES:")
	for _, e := range d.Entries {
		fmt.Printf("  compte %-8s %-40s débit %10s  crédit %10s\n", e.Account, e.Label, e.Debit, e.Credit)
	}
	fmt.Println("\nPipe this draft back with: app correct <alert-id> < draft.json")
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(d)
}

func printDashboard(d core.Dashboard) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 62))
	fmt.Printf("  %-58s\n", "DASHBOARD")
	fmt.Println(strings.Repeat("=", 62))
	fmt.Printf("  Trésorerie    : %s\n", core.FormatAmount(d.Tresorerie.Balance))
	for _, acc := range d.Tresorerie.Accounts {
		fmt.Printf("    %-10s %-30s %15s\n", acc.Account, acc.Name, acc.Balance.StringFixed(2))
	}
	fmt.Printf("  Clients       : %s\n", core.FormatAmount(d.Clients.Total))
	fmt.Printf("  Fournisseurs  : %s\n", core.FormatAmount(d.Fournisseurs.Total))
	fmt.Printf("  TVA collectée : %s\n", core.FormatAmount(d.TVA.Collected))
	fmt.Printf("  TVA déductible: %s\n", core.FormatAmount(d.TVA.Deductible))
	fmt.Printf("  TVA à déclarer: %s\n", core.FormatAmount(d.TVA.ToDeclare))
	fmt.Println(strings.Repeat("=", 62))
}

func printReport(r core.ValidationReport) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 62))
	fmt.Printf("  %-58s\n", "VALIDATION REPORT")
	fmt.Println(strings.Repeat("=", 62))
	fmt.Printf("  Alerts : %d\n", r.Total)
	printCountMap("By status", statusCounts(r.ByStatus))
	printCountMap("By severity", severityCounts(r.BySeverity))
	fmt.Printf("  Risk   : %d/100 (%s)\n", r.Risk.Score, r.Risk.Level)
	fmt.Println("  Recommendations:")
	for _, rec := range r.Recommendations {
		fmt.Printf("  - %s\n", rec)
	}
	fmt.Println(strings.Repeat("=", 62))
}

func printCountMap(header string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fmt.Printf("  %s:\n", header)
	for _, k := range keys {
		fmt.Printf("    %-8s : %d\n", k, counts[k])
	}
}

func statusCounts(m map[core.AlertStatus]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[string(k)] = v
	}
	return out
}

func severityCounts(m map[core.Severity]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[string(k)] = v
	}
	return out
}

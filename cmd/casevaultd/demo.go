package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shelterpoint/casevault/pkg/casemgmt"
	"github.com/shelterpoint/casevault/pkg/client"
	"github.com/shelterpoint/casevault/pkg/config"
	"github.com/shelterpoint/casevault/pkg/consent"
	"github.com/shelterpoint/casevault/pkg/domain"
	"github.com/shelterpoint/casevault/pkg/hmis"
	"github.com/shelterpoint/casevault/pkg/ledger"
	"github.com/shelterpoint/casevault/pkg/observability"
	"github.com/shelterpoint/casevault/pkg/privacy"
	"github.com/shelterpoint/casevault/pkg/projections"
	"github.com/shelterpoint/casevault/pkg/runner"
	"github.com/shelterpoint/casevault/pkg/safety"
	"github.com/shelterpoint/casevault/pkg/store"
)

// runDemo walks one client through the command and query paths: create,
// consent, case, lethality screen, then a privacy-filtered read back.
func runDemo(ctx context.Context, cfg *config.Config, repos *Repositories,
	eventStore store.EventStore, consentLedger *projections.ConsentLedger,
	metrics *observability.Metrics, logger runner.Logger) error {

	meta := domain.EventMetadata{
		PrincipalID:   "worker-demo",
		CorrelationID: "demo-walkthrough",
	}

	// Command path: a new client with demographics.
	c, err := client.Create(client.Name{Family: "Doe", Given: "Jane"}, client.GenderFemale, nil, meta)
	if err != nil {
		return err
	}
	if err := c.UpdateRace([]hmis.Race{hmis.RaceAsian}, privacy.RaceFullDisclosure, meta); err != nil {
		return err
	}
	if err := c.RecordDVVictimStatus(true, meta); err != nil {
		return err
	}
	if err := repos.Clients.Save(c); err != nil {
		return err
	}
	logger.Info("client created", "client_id", c.ID(), "version", c.Version())

	// Consent to share with a partner agency, using the configured
	// default duration.
	grant, err := consent.Grant(consent.GrantCommand{
		ClientID:              c.ID(),
		Type:                  consent.InformationSharing,
		Purpose:               "housing referral coordination",
		RecipientOrganization: "Partner Housing Agency",
		GrantedBy:             "worker-demo",
		DurationMonths:        cfg.Consent.DefaultDurationMonths,
	}, meta)
	if err != nil {
		return err
	}
	if err := repos.Consents.Save(grant); err != nil {
		return err
	}
	logger.Info("consent granted",
		"consent_id", grant.ID(),
		"authorizes_share", grant.Authorizes("share assessment", "Partner Housing Agency"))

	// The read model folds the new consent from the durable log.
	if err := consentLedger.CatchUp(eventStore, 0); err != nil {
		return err
	}
	logger.Info("consent ledger view",
		"active_consents", len(consentLedger.ActiveForClient(c.ID(), time.Now())))

	// A case coordinating the client's services.
	kase, err := casemgmt.Open(c.ID(), "DV_ADVOCACY", casemgmt.PriorityHigh, "fleeing DV, needs housing", meta)
	if err != nil {
		return err
	}
	if err := kase.Assign("worker-demo", "Demo Worker", "case_manager", casemgmt.AssignmentPrimary, "", "supervisor-demo", meta); err != nil {
		return err
	}
	if err := repos.Cases.Save(kase); err != nil {
		return err
	}

	// Lethality screen with the configured cutoffs.
	assessment, err := safety.Begin(c.ID(), safety.ToolDangerAssessment, "worker-demo", "dv_advocate", meta)
	if err != nil {
		return err
	}
	if err := assessment.RecordResponses(map[string]bool{
		"choking_strangulation": true,
		"separation_recent":     true,
	}, meta); err != nil {
		return err
	}
	if err := repos.Assessments.Save(assessment); err != nil {
		return err
	}
	cutoffs := safety.CutoffsFor(safety.ToolDangerAssessment, cfg.Lethality)
	logger.Info("lethality screen",
		"score", assessment.Score(),
		"risk", assessment.RiskLevel(cutoffs),
		"immediate_intervention", assessment.RequiresImmediateIntervention(cutoffs))

	// Query path: reload and read demographics under several access
	// contexts. The instrumented store records the load itself.
	loaded, err := repos.Clients.Load(c.ID())
	if err != nil {
		return err
	}

	policy := privacy.NewPolicy()
	aliaser := privacy.NewAliaser([]byte(fmt.Sprintf("demo-alias-key-%d", time.Now().Year())))

	worker := privacy.NewAccessContext("worker-demo",
		privacy.WithRoles(privacy.RoleCaseWorker),
		privacy.WithAssignedClients(c.ID()))
	profile, err := loaded.DemographicProfile(worker, privacy.PurposeDirectService, policy, aliaser)
	if err != nil {
		return err
	}
	logger.Info("profile for assigned worker", "races", profile.Races, "notice", profile.Notice)

	researcher := privacy.NewAccessContext("researcher-demo",
		privacy.WithRoles(privacy.RoleResearcher))
	profile, err = loaded.DemographicProfile(researcher, privacy.PurposeResearch, policy, aliaser)
	if err != nil {
		return err
	}
	metrics.RecordRedaction(ctx, "research")
	logger.Info("profile for researcher", "races", profile.Races, "notice", profile.Notice)

	// Access without a role or assignment excludes demographics outright.
	profile, err = loaded.DemographicProfile(privacy.AnonymousContext(), privacy.PurposeDirectService, policy, aliaser)
	if err != nil {
		return err
	}
	if !profile.Included {
		metrics.RecordAccessDenial(ctx)
	}
	logger.Info("profile for anonymous caller", "included", profile.Included)

	// HUD export mappings filtered under VAWA consent.
	mappings := []privacy.FieldMapping{
		{MappingID: "m1", SourceField: "first_name", SourceEntity: "Client", TargetHUDElementID: "3.01"},
		{MappingID: "m2", SourceField: "dv_history", SourceEntity: "Client", TargetHUDElementID: "4.11",
			VAWASensitive: true, SuppressionBehavior: privacy.Suppress},
		{MappingID: "m3", SourceField: "shelter_location", SourceEntity: "Enrollment", TargetHUDElementID: "3.16",
			VAWASensitive: true, SuppressionBehavior: privacy.AggregateOnly},
	}
	permitted := privacy.FilterForVAWAConsent(mappings, privacy.SuppressionQuery{
		ClientID:   c.ID(),
		IsDVVictim: loaded.IsDVVictim(),
	})
	metrics.RecordReportingSuppressions(ctx, len(mappings)-len(permitted))
	logger.Info("hud export fields",
		"permitted", len(permitted),
		"suppressed", len(mappings)-len(permitted))

	// A VAWA-protected financial ledger and its landlord-safe view.
	fin, err := ledger.Create(c.ID(), "enroll-demo", "", "RRH Financial Assistance", true, "worker-demo", meta)
	if err != nil {
		return err
	}
	err = fin.RecordTransaction(uuid.NewString(), ledger.TxnRentPayment, decimal.RequireFromString("750.00"),
		"ESG", "4.01", "Monthly rent", "landlord-demo", "Oak Street Properties", nil, nil, "worker-demo", meta)
	if err != nil {
		return err
	}
	if err := repos.Ledgers.Save(fin); err != nil {
		return err
	}
	view := fin.LandlordView("landlord-demo")
	metrics.RecordLedgerRedaction(ctx, string(fin.Redaction()))
	logger.Info("landlord view",
		"level", fin.Redaction(),
		"transactions", view.TransactionCount(),
		"payment_total", view.PaymentTotal().String())

	return nil
}

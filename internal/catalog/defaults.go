package catalog

import "github.com/SpikeIreland/clarence-engine/internal/position"

func ptr(f float64) *float64 { return &f }

// defaultDefinitions is the built-in commercial-terms schedule. Each
// entry fixes the value kind for both parties and supplies the
// mediation rules with ranges and curated hybrids.
var defaultDefinitions = []Definition{
	{
		ItemID:          "payment_terms_days",
		GroupName:       "Commercial",
		DisplayName:     "Payment terms (days from invoice)",
		Kind:            position.KindNumber,
		Min:             ptr(7),
		Max:             ptr(90),
		Unit:            "days",
		CustomerDefault: position.NumInRange(60, 7, 90),
		ProviderDefault: position.NumInRange(30, 7, 90),
	},
	{
		ItemID:          "liability_cap_percent",
		GroupName:       "Commercial",
		DisplayName:     "Liability cap (% of annual charges)",
		Kind:            position.KindNumber,
		Min:             ptr(50),
		Max:             ptr(300),
		Unit:            "%",
		CustomerDefault: position.NumInRange(200, 50, 300),
		ProviderDefault: position.NumInRange(100, 50, 300),
	},
	{
		ItemID:          "price_review_notice_days",
		GroupName:       "Commercial",
		DisplayName:     "Price review notice period (days)",
		Kind:            position.KindNumber,
		Min:             ptr(30),
		Max:             ptr(180),
		Unit:            "days",
		CustomerDefault: position.NumInRange(120, 30, 180),
		ProviderDefault: position.NumInRange(60, 30, 180),
	},
	{
		ItemID:          "sla_service_credits",
		GroupName:       "Service Levels",
		DisplayName:     "Service credits for missed SLAs",
		Kind:            position.KindBool,
		CustomerDefault: position.Bool(true),
		ProviderDefault: position.Bool(false),
	},
	{
		ItemID:          "sla_uptime_percent",
		GroupName:       "Service Levels",
		DisplayName:     "Guaranteed uptime (%)",
		Kind:            position.KindNumber,
		Min:             ptr(95),
		Max:             ptr(100),
		Unit:            "%",
		CustomerDefault: position.NumInRange(99.9, 95, 100),
		ProviderDefault: position.NumInRange(99, 95, 100),
	},
	{
		ItemID:          "auto_renewal",
		GroupName:       "Term",
		DisplayName:     "Automatic renewal at expiry",
		Kind:            position.KindBool,
		CustomerDefault: position.Bool(false),
		ProviderDefault: position.Bool(true),
	},
	{
		ItemID:          "termination_notice_days",
		GroupName:       "Term",
		DisplayName:     "Termination notice period (days)",
		Kind:            position.KindNumber,
		Min:             ptr(30),
		Max:             ptr(365),
		Unit:            "days",
		CustomerDefault: position.NumInRange(90, 30, 365),
		ProviderDefault: position.NumInRange(180, 30, 365),
	},
	{
		ItemID:      "dispute_resolution",
		GroupName:   "Legal",
		DisplayName: "Dispute resolution mechanism",
		Kind:        position.KindLabel,
		Options:     []string{"courts", "arbitration", "mediation"},
		Hybrids: []string{
			"tiered: executive escalation, then mediation, then arbitration",
		},
		CustomerDefault: position.Lbl("courts"),
		ProviderDefault: position.Lbl("arbitration"),
	},
	{
		ItemID:      "ip_ownership",
		GroupName:   "Legal",
		DisplayName: "Ownership of developed IP",
		Kind:        position.KindLabel,
		Options:     []string{"customer", "provider", "joint"},
		Hybrids: []string{
			"customer owns deliverables, provider retains background IP with a broad licence",
		},
		CustomerDefault: position.Lbl("customer"),
		ProviderDefault: position.Lbl("provider"),
	},
	{
		ItemID:          "unlimited_data_liability",
		GroupName:       "Legal",
		DisplayName:     "Uncapped liability for data breaches",
		Kind:            position.KindBool,
		CustomerDefault: position.Bool(true),
		ProviderDefault: position.Bool(false),
	},
	{
		ItemID:      "governing_law",
		GroupName:   "Legal",
		DisplayName: "Governing law",
		Kind:        position.KindLabel,
		Options:     []string{"england_wales", "ireland", "new_york", "delaware"},
		// No sensible hybrid jurisdiction exists; mediation falls
		// back to defer-to-priority for this item.
		CustomerDefault: position.Lbl("england_wales"),
		ProviderDefault: position.Lbl("ireland"),
	},
	{
		ItemID:          "benchmarking_rights",
		GroupName:       "Commercial",
		DisplayName:     "Customer benchmarking rights",
		Kind:            position.KindBool,
		CustomerDefault: position.Bool(true),
		ProviderDefault: position.Bool(false),
	},
}

// defaultClauses is the intake clause catalogue. Summaries double as
// the text indexed for semantic search.
var defaultClauses = []Clause{
	{ClauseID: "payment-terms", Category: "Commercial", Title: "Payment Terms",
		Summary: "When invoices fall due, late payment interest, and disputed invoice handling."},
	{ClauseID: "liability-cap", Category: "Commercial", Title: "Limitation of Liability",
		Summary: "Caps each party's aggregate liability, usually as a multiple of annual charges."},
	{ClauseID: "price-review", Category: "Commercial", Title: "Price Review",
		Summary: "How and when charges can be revised, indexation and benchmarking triggers."},
	{ClauseID: "service-levels", Category: "Service Levels", Title: "Service Levels & Credits",
		Summary: "Uptime and response targets, measurement windows, and service credit remedies."},
	{ClauseID: "term-renewal", Category: "Term", Title: "Term & Renewal",
		Summary: "Initial term, renewal mechanics, and notice periods for non-renewal."},
	{ClauseID: "termination", Category: "Term", Title: "Termination Rights",
		Summary: "Termination for convenience and for cause, notice periods, exit assistance."},
	{ClauseID: "dispute-resolution", Category: "Legal", Title: "Dispute Resolution",
		Summary: "Escalation ladder, mediation, arbitration or court jurisdiction for disputes."},
	{ClauseID: "ip-rights", Category: "Legal", Title: "Intellectual Property",
		Summary: "Ownership and licensing of pre-existing and newly developed intellectual property."},
	{ClauseID: "data-protection", Category: "Legal", Title: "Data Protection",
		Summary: "Processor obligations, breach notification, and liability for data incidents."},
	{ClauseID: "governing-law", Category: "Legal", Title: "Governing Law",
		Summary: "Which jurisdiction's law governs the agreement and where claims are brought."},
}

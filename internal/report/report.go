// Package report renders assessment output for different audiences: an
// executive summary, a technical assessment, a proposal outline, and a
// portfolio comparison. Every figure comes straight off the breakdown; the
// templates add no numbers of their own.
package report

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/bldg-intel/odcv-cli/internal/profile"
	"github.com/bldg-intel/odcv-cli/internal/scoring"
)

// Generator renders reports. Now is injectable for deterministic output.
type Generator struct {
	printer *message.Printer
	now     func() time.Time
}

// New builds a Generator with US English number formatting.
func New() *Generator {
	return &Generator{
		printer: message.NewPrinter(language.AmericanEnglish),
		now:     time.Now,
	}
}

// WithClock overrides the report timestamp source.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// money formats a dollar amount with thousands separators.
func (g *Generator) money(v float64) string {
	return g.printer.Sprintf("$%.0f", v)
}

// ExecutiveSummary targets the C-suite: score, dollars, and next steps.
func (g *Generator) ExecutiveSummary(b *scoring.Breakdown, p *profile.BuildingProfile) string {
	var urgency, valueProp string
	switch b.Tier {
	case scoring.TierHigh:
		urgency = "immediate action recommended"
		valueProp = "exceptional ROI with minimal disruption"
	case scoring.TierMediumHigh:
		urgency = "strong candidate for Q1 implementation"
		valueProp = "proven technology with rapid payback"
	default:
		urgency = "consider as part of broader efficiency program"
		valueProp = "incremental improvements available"
	}

	var sb strings.Builder
	sb.WriteString("EXECUTIVE SUMMARY\n")
	sb.WriteString("================\n\n")
	fmt.Fprintf(&sb, "Building: %s\n", b.Address)
	fmt.Fprintf(&sb, "Opportunity Score: %d/100 (%s)\n\n", b.TotalScore, b.Tier)

	sb.WriteString("FINANCIAL IMPACT\n")
	if b.Financial != nil {
		fmt.Fprintf(&sb, "- Annual Savings: %s\n", g.money(b.Financial.AnnualSavings))
		fmt.Fprintf(&sb, "- Simple Payback: %.1f years\n", b.Financial.SimplePaybackYears)
		fmt.Fprintf(&sb, "- 10-Year NPV: %s\n", g.money(b.Financial.NPV))
	} else {
		sb.WriteString("- Building area unknown; dollar projection not available\n")
	}

	sb.WriteString("\nKEY FINDINGS\n")
	sb.WriteString(g.keyFindings(b, p))

	fmt.Fprintf(&sb, "\nRECOMMENDATION\nBased on our analysis, %s. This building presents %s.\n", urgency, valueProp)

	sb.WriteString("\nNEXT STEPS\n")
	sb.WriteString("1. Schedule technical assessment (2 hours)\n")
	sb.WriteString("2. Review implementation plan with facilities team\n")
	if b.Plan != nil {
		fmt.Fprintf(&sb, "3. Execute deployment (%d weeks)\n", b.Plan.DeploymentWeeks)
	} else {
		sb.WriteString("3. Execute deployment\n")
	}
	return sb.String()
}

// TechnicalReport targets the facilities team.
func (g *Generator) TechnicalReport(b *scoring.Breakdown, p *profile.BuildingProfile) string {
	var sb strings.Builder
	sb.WriteString("TECHNICAL ASSESSMENT REPORT\n")
	sb.WriteString("==========================\n\n")
	fmt.Fprintf(&sb, "Building: %s\n", b.Address)
	fmt.Fprintf(&sb, "Date: %s\n\n", g.now().Format("January 2, 2006"))

	sb.WriteString("SYSTEM COMPATIBILITY\n")
	sb.WriteString("-------------------\n")
	fmt.Fprintf(&sb, "- HVAC Type: %s\n", vavStatus(p))
	if b.Plan != nil {
		if strings.HasPrefix(b.Plan.IntegrationType, "BACnet") {
			sb.WriteString("- Building Automation: Yes - BACnet ready\n")
		} else {
			sb.WriteString("- Building Automation: Standalone system required\n")
		}
	}
	if p.HasDCV != nil && *p.HasDCV {
		sb.WriteString("- Current DCV: Upgrade from CO2-based\n")
	} else {
		sb.WriteString("- Current DCV: New installation\n")
	}

	if b.Plan != nil {
		sb.WriteString("\nDEPLOYMENT STRATEGY\n")
		sb.WriteString("------------------\n")
		fmt.Fprintf(&sb, "- Control Points: %s\n", b.Plan.ControlPoints)
		fmt.Fprintf(&sb, "- Sensor Locations: %s\n", b.Plan.SensorLocations)
		fmt.Fprintf(&sb, "- Integration Method: %s\n", b.Plan.IntegrationType)
		sb.WriteString("- Tenant Disruption: None - all work in mechanical spaces\n")

		sb.WriteString("\nIMPLEMENTATION DETAILS\n")
		sb.WriteString("---------------------\n")
		fmt.Fprintf(&sb, "- Sensor Count: %d units\n", b.Plan.SensorCount)
		fmt.Fprintf(&sb, "- AHU Count: %d air handlers\n", b.Plan.AHUCount)
		fmt.Fprintf(&sb, "- Deployment Timeline: %d weeks\n", b.Plan.DeploymentWeeks)
		fmt.Fprintf(&sb, "- Estimated Cost: %s\n", g.money(b.Plan.EstimatedCost))
		if b.Plan.CostPerSqFt > 0 {
			fmt.Fprintf(&sb, "- Cost per Sq Ft: $%.2f\n", b.Plan.CostPerSqFt)
		}
	}

	if b.Financial != nil {
		sb.WriteString("\nENERGY SAVINGS ANALYSIS\n")
		sb.WriteString("----------------------\n")
		fmt.Fprintf(&sb, "- Current HVAC Cost: %s\n", g.money(b.Financial.AnnualHVACCost))
		fmt.Fprintf(&sb, "- Projected Savings: %.0f%% reduction\n", b.SavingsPercent*100)
		fmt.Fprintf(&sb, "- Annual Dollar Savings: %s\n", g.money(b.Financial.AnnualSavings))
	}

	if b.Plan != nil {
		sb.WriteString("\nSYSTEM ARCHITECTURE\n")
		sb.WriteString("------------------\n")
		sb.WriteString("The system controls outdoor air (OA) dampers at the AHU level, not\nindividual VAV boxes. This approach:\n")
		fmt.Fprintf(&sb, "- Minimizes complexity (control %d points vs hundreds of VAV boxes)\n", b.Plan.AHUCount)
		sb.WriteString("- Eliminates tenant disruption (all work in mechanical rooms)\n")
		fmt.Fprintf(&sb, "- Enables rapid deployment (%d weeks vs months)\n", b.Plan.DeploymentWeeks)
		if strings.HasPrefix(b.Plan.IntegrationType, "BACnet") {
			sb.WriteString("- Provides centralized control via existing BMS\n")
		} else {
			sb.WriteString("- Provides centralized control via cloud platform\n")
		}
	}

	sb.WriteString("\nMEASUREMENT & VERIFICATION\n")
	sb.WriteString("-------------------------\n")
	sb.WriteString("Savings are measured through:\n")
	sb.WriteString("- Direct monitoring of outdoor air flow rates\n")
	sb.WriteString("- Occupancy tracking and correlation\n")
	sb.WriteString("- Comparison of pre/post installation energy consumption\n")
	sb.WriteString("- Weather-normalized analysis\n")
	if p.MeterCount != nil && *p.MeterCount > 0 {
		fmt.Fprintf(&sb, "- Existing %d energy meters enable precise tracking\n", *p.MeterCount)
	}
	return sb.String()
}

// ProposalOutline targets the sales team.
func (g *Generator) ProposalOutline(b *scoring.Breakdown, p *profile.BuildingProfile) string {
	var sb strings.Builder
	sb.WriteString("ODCV PROPOSAL OUTLINE\n")
	sb.WriteString("====================\n\n")
	fmt.Fprintf(&sb, "Building: %s\n\n", b.Address)

	sb.WriteString("1. EXECUTIVE SUMMARY\n")
	if b.Financial != nil {
		fmt.Fprintf(&sb, "   - %s annual savings\n", g.money(b.Financial.AnnualSavings))
		fmt.Fprintf(&sb, "   - %.1f year payback\n", b.Financial.SimplePaybackYears)
	}
	sb.WriteString("   - Zero tenant disruption\n\n")

	sb.WriteString("2. CURRENT SITUATION\n")
	if p.OccupancyPercent != nil {
		fmt.Fprintf(&sb, "   - Building operates at %.0f%% occupancy\n", *p.OccupancyPercent)
	} else {
		sb.WriteString("   - Building occupancy not reported\n")
	}
	fmt.Fprintf(&sb, "   - Energy grade: %s\n", orNA(p.EnergyGrade))
	sb.WriteString("   - Ventilating vacant spaces at full capacity\n\n")

	sb.WriteString("3. PROPOSED SOLUTION\n")
	sb.WriteString("   - Occupancy-based control at AHU level\n")
	if b.Plan != nil {
		fmt.Fprintf(&sb, "   - %d sensors total\n", b.Plan.SensorCount)
		fmt.Fprintf(&sb, "   - %s\n", b.Plan.IntegrationType)
	}
	sb.WriteString("\n")

	if b.Financial != nil && b.Plan != nil {
		sb.WriteString("4. FINANCIAL ANALYSIS\n")
		fmt.Fprintf(&sb, "   - Implementation cost: %s\n", g.money(b.Plan.EstimatedCost))
		fmt.Fprintf(&sb, "   - Annual savings: %s\n", g.money(b.Financial.AnnualSavings))
		fmt.Fprintf(&sb, "   - ROI: %.1f%%\n", b.Financial.ROIPercent)
		fmt.Fprintf(&sb, "   - 10-year NPV: %s\n\n", g.money(b.Financial.NPV))
	}

	if b.Plan != nil {
		sb.WriteString("5. IMPLEMENTATION PLAN\n")
		sb.WriteString("   - Week 1-2: Engineering and permits\n")
		fmt.Fprintf(&sb, "   - Week 3-%d: Installation\n", b.Plan.DeploymentWeeks)
		fmt.Fprintf(&sb, "   - Week %d: Commissioning\n", b.Plan.DeploymentWeeks+1)
		sb.WriteString("   - Ongoing: Performance monitoring\n\n")
	}

	sb.WriteString("6. NEXT STEPS\n")
	sb.WriteString("   - Technical site assessment\n")
	sb.WriteString("   - Final proposal with fixed pricing\n")
	sb.WriteString("   - Implementation timeline confirmation\n")
	return sb.String()
}

// Portfolio compares ranked buildings and summarizes the pipeline.
func (g *Generator) Portfolio(ranked []*scoring.Breakdown) string {
	var sb strings.Builder
	sb.WriteString("PORTFOLIO OPPORTUNITY ANALYSIS\n")
	sb.WriteString("==============================\n\n")
	fmt.Fprintf(&sb, "Date: %s\n", g.now().Format("January 2, 2006"))
	fmt.Fprintf(&sb, "Buildings Analyzed: %d\n\n", len(ranked))

	sb.WriteString("TOP OPPORTUNITIES\n")
	sb.WriteString("----------------\n")
	top := ranked
	if len(top) > 10 {
		top = top[:10]
	}
	for i, b := range top {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, displayName(b))
		fmt.Fprintf(&sb, "   Score: %d/100", b.TotalScore)
		if b.Financial != nil {
			fmt.Fprintf(&sb, " | Savings: %s/year | Payback: %.1f years",
				g.money(b.Financial.AnnualSavings), b.Financial.SimplePaybackYears)
		}
		sb.WriteString("\n")
		if len(b.Flags) > 0 {
			fmt.Fprintf(&sb, "   Key Factor: %s\n", b.Flags[0])
		}
	}

	var totalSavings float64
	var paybackSum float64
	var paybackCount, highPriority, quickWins int
	for _, b := range ranked {
		if b.TotalScore >= 80 {
			highPriority++
		}
		if b.Financial == nil {
			continue
		}
		totalSavings += b.Financial.AnnualSavings
		paybackSum += b.Financial.SimplePaybackYears
		paybackCount++
		if b.Financial.SimplePaybackYears < 3 {
			quickWins++
		}
	}

	sb.WriteString("\nPORTFOLIO SUMMARY\n")
	sb.WriteString("----------------\n")
	fmt.Fprintf(&sb, "- Total Annual Savings Potential: %s\n", g.money(totalSavings))
	if paybackCount > 0 {
		fmt.Fprintf(&sb, "- Average Payback Period: %.1f years\n", paybackSum/float64(paybackCount))
	}
	fmt.Fprintf(&sb, "- High-Priority Buildings (Score >=80): %d\n", highPriority)
	fmt.Fprintf(&sb, "- Quick Wins (Payback <3 years): %d\n", quickWins)
	return sb.String()
}

func (g *Generator) keyFindings(b *scoring.Breakdown, p *profile.BuildingProfile) string {
	var findings []string
	if p.OccupancyPercent != nil && *p.OccupancyPercent < 80 {
		findings = append(findings, "- Building operates at low occupancy, wasting energy on vacant spaces")
	}
	if p.EnergyGrade == "D" || p.EnergyGrade == "F" {
		findings = append(findings, fmt.Sprintf("- Energy grade %s indicates significant inefficiency", p.EnergyGrade))
	}
	if p.HasBMS != nil && *p.HasBMS {
		findings = append(findings, "- Existing BMS enables seamless integration")
	} else {
		findings = append(findings, "- Standalone ODCV system recommended")
	}
	findings = append(findings, fmt.Sprintf("- %.0f%% HVAC energy reduction achievable", b.SavingsPercent*100))
	return strings.Join(findings, "\n") + "\n"
}

func vavStatus(p *profile.BuildingProfile) string {
	switch {
	case p.HasVAV == nil:
		return "Unverified - confirm distribution type on site"
	case *p.HasVAV:
		return "Variable Air Volume (VAV)"
	default:
		return "Constant Air Volume (CAV) - incompatible"
	}
}

func displayName(b *scoring.Breakdown) string {
	if b.Address != "" {
		return b.Address
	}
	return string(b.BBL)
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

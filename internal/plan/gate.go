package plan

import "fmt"

// Feature names a plan-gated capability. The label is what upgrade prompts
// show to the clinic admin.
type Feature string

const (
	FeatureOnlinePayments Feature = "online-payments"
	FeatureCustomBranding Feature = "custom-branding"
	FeatureAuditLogs      Feature = "audit-logs"
	FeatureGoogleReviews  Feature = "google-reviews"
	FeatureEmbedReviews   Feature = "embed-reviews"
	FeatureBulkSlots      Feature = "bulk-slots"
	FeatureExports        Feature = "exports"
	FeatureReviews        Feature = "reviews"
)

// Label returns the human-readable feature name used in upgrade prompts.
func (f Feature) Label() string {
	switch f {
	case FeatureOnlinePayments:
		return "Online payments"
	case FeatureCustomBranding:
		return "Custom logo & banner branding"
	case FeatureAuditLogs:
		return "Audit logs"
	case FeatureGoogleReviews:
		return "Google reviews sync"
	case FeatureEmbedReviews:
		return "Embeddable review widget"
	case FeatureBulkSlots:
		return "Bulk slot creation"
	case FeatureExports:
		return "Excel & PDF exports"
	case FeatureReviews:
		return "Patient reviews"
	default:
		return string(f)
	}
}

// Result is the gate decision for one feature against one plan.
type Result struct {
	Allowed        bool   `json:"allowed"`
	Feature        string `json:"feature"`
	CurrentPlan    string `json:"currentPlan,omitempty"`
	UpgradeMessage string `json:"upgradeMessage,omitempty"`
}

// Gate compares a plan's flags against the requested feature. It is pure:
// no side effects, no network. A nil plan denies everything, so callers
// with an unavailable admin context fail closed.
func Gate(p *Plan, f Feature) Result {
	allowed := p != nil && enabled(p, f)
	res := Result{Allowed: allowed, Feature: f.Label()}
	if p != nil {
		res.CurrentPlan = p.Name
	}
	if !allowed {
		res.UpgradeMessage = upgradeMessage(p, f)
	}
	return res
}

func enabled(p *Plan, f Feature) bool {
	switch f {
	case FeatureOnlinePayments:
		return p.AllowOnlinePayments
	case FeatureCustomBranding:
		return p.AllowCustomBranding
	case FeatureAuditLogs:
		return p.EnableAuditLogs
	case FeatureGoogleReviews:
		return p.EnableGoogleReviews
	case FeatureEmbedReviews:
		return p.AllowEmbedReviews
	case FeatureBulkSlots:
		return p.EnableBulkSlots
	case FeatureExports:
		return p.EnableExports
	case FeatureReviews:
		return p.EnableReviews
	default:
		return false
	}
}

func upgradeMessage(p *Plan, f Feature) string {
	if p == nil || p.Name == "" {
		return fmt.Sprintf("%s requires a plan upgrade.", f.Label())
	}
	return fmt.Sprintf("%s is not included in the %s plan. Upgrade to unlock it.", f.Label(), p.Name)
}

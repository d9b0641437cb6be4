package plan

import (
	"strings"
	"testing"
)

func TestGateAllowed(t *testing.T) {
	p := &Plan{Name: "Growth", EnableExports: true, EnableAuditLogs: false}

	res := Gate(p, FeatureExports)
	if !res.Allowed {
		t.Fatal("exports should be allowed on Growth")
	}
	if res.UpgradeMessage != "" {
		t.Fatalf("allowed gate must not carry an upgrade message, got %q", res.UpgradeMessage)
	}

	res = Gate(p, FeatureAuditLogs)
	if res.Allowed {
		t.Fatal("audit logs should be denied on Growth")
	}
	if !strings.Contains(res.UpgradeMessage, "Audit logs") {
		t.Fatalf("upgrade message must name the feature, got %q", res.UpgradeMessage)
	}
	if !strings.Contains(res.UpgradeMessage, "Growth") {
		t.Fatalf("upgrade message must name the current plan, got %q", res.UpgradeMessage)
	}
}

func TestGateNilPlanFailsClosed(t *testing.T) {
	for _, f := range []Feature{
		FeatureOnlinePayments, FeatureCustomBranding, FeatureAuditLogs,
		FeatureGoogleReviews, FeatureEmbedReviews, FeatureBulkSlots,
		FeatureExports, FeatureReviews,
	} {
		res := Gate(nil, f)
		if res.Allowed {
			t.Errorf("nil plan must deny %q", f)
		}
		if res.UpgradeMessage == "" {
			t.Errorf("denied gate for %q must explain the upgrade", f)
		}
	}
}

func TestGateBrandingLabel(t *testing.T) {
	res := Gate(&Plan{Name: "Starter"}, FeatureCustomBranding)
	if res.Feature != "Custom logo & banner branding" {
		t.Fatalf("unexpected feature label %q", res.Feature)
	}
	if res.Allowed {
		t.Fatal("Starter without branding flag must be denied")
	}
}

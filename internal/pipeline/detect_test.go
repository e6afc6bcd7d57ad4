package pipeline

import "testing"

func TestDetectCommerceEmail(t *testing.T) {
	res := DetectCommerceEmail("Your order has shipped", "Order Total: $42.50\nTracking Number: 1Z999", "", 0.45)
	if !res.IsCommerce {
		t.Fatalf("expected commerce, score=%f", res.Score)
	}
	if res.Reason != "rules_positive" {
		t.Fatalf("reason = %q", res.Reason)
	}
}

func TestDetectNonCommerceEmail(t *testing.T) {
	res := DetectCommerceEmail("Lunch on Friday?", "See you at noon.", "", 0.45)
	if res.IsCommerce {
		t.Fatalf("expected non-commerce, score=%f", res.Score)
	}
	if res.Reason != "rules_negative" {
		t.Fatalf("reason = %q", res.Reason)
	}
}

func TestDetectTableBonus(t *testing.T) {
	text := "thanks for your order"
	base := DetectCommerceEmail("", text, "", 0.45)
	withTable := DetectCommerceEmail("", text, "<html><table><tr><td>x</td></tr></table></html>", 0.45)
	if withTable.Score <= base.Score {
		t.Fatalf("table bonus missing: %f <= %f", withTable.Score, base.Score)
	}
}

func TestDetectScoreCap(t *testing.T) {
	subject := "order invoice receipt tracking shipment payment total qty"
	res := DetectCommerceEmail(subject, subject+" $1 $2", "<table>", 0.45)
	if res.Score != 1 {
		t.Fatalf("score = %f, want capped at 1", res.Score)
	}
}

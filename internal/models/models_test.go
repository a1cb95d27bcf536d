package models

import "testing"

func TestTierForPoints(t *testing.T) {
	cases := []struct {
		points int
		want   LoyaltyTier
	}{
		{0, TierBronze},
		{499, TierBronze},
		{500, TierSilver},
		{1999, TierSilver},
		{2000, TierGold},
		{4999, TierGold},
		{5000, TierPlatinum},
	}

	for _, tc := range cases {
		if got := TierForPoints(tc.points); got != tc.want {
			t.Fatalf("TierForPoints(%d) = %s, want %s", tc.points, got, tc.want)
		}
	}
}

func TestCategoryDigital(t *testing.T) {
	if !CategoryGiftCard.Digital() {
		t.Fatalf("gift cards are digital")
	}
	if CategoryGame.Digital() || CategoryAccessory.Digital() || CategoryBundle.Digital() {
		t.Fatalf("physical categories must not be digital")
	}
}

func TestCartHelpers(t *testing.T) {
	cart := Cart{}
	if !cart.IsEmpty() || cart.TotalQuantity() != 0 {
		t.Fatalf("empty cart expected")
	}

	cart = Cart{"gt7": 2, "headset": 1}
	if cart.IsEmpty() {
		t.Fatalf("cart must not be empty")
	}
	if cart.TotalQuantity() != 3 {
		t.Fatalf("expected total quantity 3, got %d", cart.TotalQuantity())
	}
}

func TestShippingMethodValid(t *testing.T) {
	if !ShippingStandard.Valid() || !ShippingExpress.Valid() {
		t.Fatalf("known methods must be valid")
	}
	if ShippingMethod("teleport").Valid() {
		t.Fatalf("unknown method must be invalid")
	}
}

func TestOrderHasShippableItems(t *testing.T) {
	digital := &Order{Items: []OrderLine{{ProductID: "psn-gift-10", Category: CategoryGiftCard}}}
	if digital.HasShippableItems() {
		t.Fatalf("digital-only order has no shippable items")
	}

	mixed := &Order{Items: []OrderLine{
		{ProductID: "psn-gift-10", Category: CategoryGiftCard},
		{ProductID: "gt7", Category: CategoryGame},
	}}
	if !mixed.HasShippableItems() {
		t.Fatalf("order with physical items must be shippable")
	}
}

func TestNewEvent(t *testing.T) {
	event := NewEvent(EventTypeOrderFinalized, map[string]interface{}{"order_id": int64(1)})
	if event.ID.String() == "" {
		t.Fatalf("expected event id")
	}
	if event.Type != EventTypeOrderFinalized {
		t.Fatalf("unexpected type: %s", event.Type)
	}
	if event.Timestamp.IsZero() {
		t.Fatalf("expected timestamp set")
	}
}

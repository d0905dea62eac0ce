//go:build integration

package integration

import (
	"net/http"
	"testing"
)

const (
	sourdoughID = "4bbd3bc1-9c87-4465-b32a-4db6c6c0c90d" // 450p
	croissantID = "b1f9c2de-4cf8-4d2c-9a41-1df3b25b6a77" // 250p
)

func TestPlaceOrder(t *testing.T) {
	resp := doJSON(t, http.MethodPost, "/api/orders", orderRequest{
		Items: []orderItemRequest{
			{ProductID: sourdoughID, Qty: 1},
		},
		PickupDate:    pickupDate(),
		PickupTime:    "10:00",
		BagOptIn:      true,
		CustomerName:  "Ada Lovelace",
		CustomerEmail: "ada@example.com",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}

	placed := decodeJSON[placedOrderResponse](t, resp)
	if placed.OrderID == "" {
		t.Error("order_id is empty")
	}
	if placed.OrderNumber == 0 {
		t.Error("order_number is zero")
	}
	if placed.SubtotalPence != 450 {
		t.Errorf("subtotal = %d, want 450", placed.SubtotalPence)
	}
	if placed.BagFeePence != 70 {
		t.Errorf("bag fee = %d, want 70", placed.BagFeePence)
	}
	// GST 6% of 520, rounded: 31.
	if placed.TaxPence != 31 {
		t.Errorf("tax = %d, want 31", placed.TaxPence)
	}
	if placed.TotalPence != 551 {
		t.Errorf("total = %d, want 551", placed.TotalPence)
	}
	if placed.Status != "unpaid" {
		t.Errorf("status = %q, want unpaid", placed.Status)
	}

	// The placed order is retrievable with its item snapshot.
	detail := decodeJSON[orderDetailResponse](t, doGet(t, "/api/orders/"+placed.OrderID))
	if detail.OrderNumber != placed.OrderNumber {
		t.Errorf("lookup order_number = %d, want %d", detail.OrderNumber, placed.OrderNumber)
	}
	if len(detail.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(detail.Items))
	}
	if detail.Items[0].ProductSKU != "SRD-01" {
		t.Errorf("item sku = %q, want SRD-01", detail.Items[0].ProductSKU)
	}
}

func TestPlaceOrderIgnoresClientPrices(t *testing.T) {
	// The client claims the croissant costs a penny; the server reprices.
	resp := doJSON(t, http.MethodPost, "/api/orders", orderRequest{
		Items: []orderItemRequest{
			{ProductID: croissantID, Name: "Croissant", PricePence: 1, Qty: 2},
		},
		PickupDate:    pickupDate(),
		PickupTime:    "11:00",
		CustomerName:  "Grace Hopper",
		CustomerEmail: "grace@example.com",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}

	placed := decodeJSON[placedOrderResponse](t, resp)
	if placed.SubtotalPence != 500 {
		t.Errorf("subtotal = %d, want 500 (catalog price, not client price)", placed.SubtotalPence)
	}
	if placed.BagFeePence != 0 {
		t.Errorf("bag fee = %d, want 0 without opt-in", placed.BagFeePence)
	}
}

func TestPlaceOrderUnknownProduct(t *testing.T) {
	resp := doJSON(t, http.MethodPost, "/api/orders", orderRequest{
		Items:         []orderItemRequest{{ProductID: "no-such-product", Qty: 1}},
		PickupDate:    pickupDate(),
		PickupTime:    "10:00",
		CustomerName:  "Ada Lovelace",
		CustomerEmail: "ada@example.com",
	})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", resp.StatusCode)
	}
	body := decodeJSON[errorResponse](t, resp)
	if body.Error == "" {
		t.Error("error message is empty")
	}
}

func TestPlaceOrderValidation(t *testing.T) {
	date := pickupDate()

	cases := map[string]orderRequest{
		"empty basket": {
			PickupDate: date, PickupTime: "10:00",
			CustomerName: "A", CustomerEmail: "a@example.com",
		},
		"off-grid time": {
			Items:      []orderItemRequest{{ProductID: sourdoughID, Qty: 1}},
			PickupDate: date, PickupTime: "10:17",
			CustomerName: "A", CustomerEmail: "a@example.com",
		},
		"missing customer": {
			Items:      []orderItemRequest{{ProductID: sourdoughID, Qty: 1}},
			PickupDate: date, PickupTime: "10:00",
		},
		"bad email": {
			Items:      []orderItemRequest{{ProductID: sourdoughID, Qty: 1}},
			PickupDate: date, PickupTime: "10:00",
			CustomerName: "A", CustomerEmail: "not-an-email",
		},
		"date out of range": {
			Items:      []orderItemRequest{{ProductID: sourdoughID, Qty: 1}},
			PickupDate: "2030-01-07", PickupTime: "10:00",
			CustomerName: "A", CustomerEmail: "a@example.com",
		},
	}

	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			resp := doJSON(t, http.MethodPost, "/api/orders", req)
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", resp.StatusCode)
			}
			body := decodeJSON[errorResponse](t, resp)
			if body.Error == "" {
				t.Error("error message is empty")
			}
		})
	}
}

func TestSlotCapacity(t *testing.T) {
	// The default capacity is 5 active orders per slot. Use a dedicated slot
	// so other tests cannot interfere.
	date := pickupDate()
	const slot = "16:30"

	place := func() *http.Response {
		return doJSON(t, http.MethodPost, "/api/orders", orderRequest{
			Items:         []orderItemRequest{{ProductID: croissantID, Qty: 1}},
			PickupDate:    date,
			PickupTime:    slot,
			CustomerName:  "Slot Filler",
			CustomerEmail: "filler@example.com",
		})
	}

	for i := range 5 {
		resp := place()
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("order %d: status = %d, want 201", i+1, resp.StatusCode)
		}
		resp.Body.Close()
	}

	resp := place()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("6th order: status = %d, want 409", resp.StatusCode)
	}
	body := decodeJSON[errorResponse](t, resp)
	if body.Error == "" {
		t.Error("error message is empty")
	}

	// The availability endpoint reflects the full slot.
	avail := decodeJSON[availabilityResponse](t, doGet(t, "/api/availability?date="+date))
	for _, s := range avail.Slots {
		if s.Time == slot {
			if !s.Full || s.Remaining != 0 {
				t.Errorf("slot %s: full=%v remaining=%d, want full with 0 remaining", slot, s.Full, s.Remaining)
			}
			return
		}
	}
	t.Errorf("slot %s missing from availability response", slot)
}

func TestAdminOrderFlow(t *testing.T) {
	resp := doJSON(t, http.MethodPost, "/api/orders", orderRequest{
		Items:         []orderItemRequest{{ProductID: sourdoughID, Qty: 1}},
		PickupDate:    pickupDate(),
		PickupTime:    "14:00",
		CustomerName:  "Admin Flow",
		CustomerEmail: "flow@example.com",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("place: status = %d, want 201", resp.StatusCode)
	}
	placed := decodeJSON[placedOrderResponse](t, resp)

	// Walk the order forward through the lifecycle.
	for _, next := range []string{"preparing", "ready", "collected"} {
		resp := doJSON(t, http.MethodPatch, "/api/admin/orders/"+placed.OrderID,
			map[string]string{"status": next})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("transition to %s: status = %d, want 200", next, resp.StatusCode)
		}
		detail := decodeJSON[orderDetailResponse](t, resp)
		if detail.Status != next {
			t.Errorf("status = %q, want %q", detail.Status, next)
		}
	}

	// Collected is terminal.
	resp = doJSON(t, http.MethodPatch, "/api/admin/orders/"+placed.OrderID,
		map[string]string{"status": "cancelled"})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("terminal transition: status = %d, want 409", resp.StatusCode)
	}
	resp.Body.Close()
}

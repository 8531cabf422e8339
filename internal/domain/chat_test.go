package domain

import "testing"

func TestDeriveSender(t *testing.T) {
	tests := []struct {
		name       string
		customerID string
		senderID   string
		want       string
	}{
		{"customer sends", "C1", "C1", SenderCustomer},
		{"admin sends", "C1", "admin-1", SenderAdmin},
		{"other customer id counts as admin", "C1", "C2", SenderAdmin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveSender(tt.customerID, tt.senderID); got != tt.want {
				t.Errorf("DeriveSender(%q, %q) = %q, want %q", tt.customerID, tt.senderID, got, tt.want)
			}
		})
	}
}

func TestOrderNumber(t *testing.T) {
	tests := []struct {
		orderID string
		want    string
	}{
		{"order-2024-000123", "000123"},
		{"abcdef", "abcdef"},
		{"abc", "abc"},
		{"", ""},
		{"1234567", "234567"},
	}

	for _, tt := range tests {
		if got := OrderNumber(tt.orderID); got != tt.want {
			t.Errorf("OrderNumber(%q) = %q, want %q", tt.orderID, got, tt.want)
		}
	}
}

func TestChatRoom(t *testing.T) {
	chat := &Chat{ID: "abc"}
	if chat.RoomName() != "chat:abc" {
		t.Errorf("RoomName() = %q, want %q", chat.RoomName(), "chat:abc")
	}
	if ChatRoom("abc") != "chat:abc" {
		t.Errorf("ChatRoom(abc) = %q", ChatRoom("abc"))
	}
}

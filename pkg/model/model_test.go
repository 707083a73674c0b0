package model

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestImageURL(t *testing.T) {
	const backend = "http://localhost:5036"

	tests := []struct {
		name    string
		backend string
		raw     string
		want    string
	}{
		{name: "missing url", backend: backend, raw: "", want: PlaceholderImage},
		{name: "relative with slash", backend: backend, raw: "/images/x.png", want: "http://localhost:5036/images/x.png"},
		{name: "relative without slash", backend: backend, raw: "images/x.png", want: "http://localhost:5036/images/x.png"},
		{name: "backend with trailing slash", backend: backend + "/", raw: "/images/x.png", want: "http://localhost:5036/images/x.png"},
		{name: "absolute http", backend: backend, raw: "http://cdn.example.com/a.png", want: "http://cdn.example.com/a.png"},
		{name: "absolute https", backend: backend, raw: "https://cdn.example.com/a.png", want: "https://cdn.example.com/a.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ImageURL(tt.backend, tt.raw); got != tt.want {
				t.Fatalf("ImageURL(%q, %q) = %q, want %q", tt.backend, tt.raw, got, tt.want)
			}
		})
	}
}

func TestCartSubtotal(t *testing.T) {
	var cart Cart
	if err := json.Unmarshal([]byte(`{"items":[{"cartItemId":1,"price":10,"quantity":2}]}`), &cart); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got := FormatMoney(cart.Subtotal()); got != "20.00" {
		t.Fatalf("subtotal = %s, want 20.00", got)
	}

	cart.Items = append(cart.Items, CartItem{CartItemID: 2, Price: 0.1, Quantity: 3})
	if got := FormatMoney(cart.Subtotal()); got != "20.30" {
		t.Fatalf("subtotal = %s, want 20.30", got)
	}
	if cart.Count() != 5 {
		t.Fatalf("count = %d, want 5", cart.Count())
	}

	if got := FormatMoney(Cart{}.Subtotal()); got != "0.00" {
		t.Fatalf("empty subtotal = %s", got)
	}
}

func TestTimeUnmarshal(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
		zero bool
	}{
		{in: `"2024-05-01T10:30:00Z"`, want: time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)},
		{in: `"2024-05-01T10:30:00"`, want: time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)},
		{in: `"2024-05-01"`, want: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)},
		{in: `null`, zero: true},
		{in: `""`, zero: true},
	}
	for _, tt := range tests {
		var got Time
		if err := json.Unmarshal([]byte(tt.in), &got); err != nil {
			t.Fatalf("unmarshal %s: %v", tt.in, err)
		}
		if tt.zero {
			if !got.IsZero() {
				t.Fatalf("%s: expected zero time, got %v", tt.in, got)
			}
			continue
		}
		if !got.Equal(tt.want) {
			t.Fatalf("%s: got %v, want %v", tt.in, got.Time, tt.want)
		}
	}

	var bad Time
	if err := json.Unmarshal([]byte(`"not a date"`), &bad); err == nil {
		t.Fatalf("expected error for invalid date")
	}
}

func TestFormatDate(t *testing.T) {
	if FormatDate(Time{}) != "-" {
		t.Fatalf("zero date should render as -")
	}
	d := NewTime(time.Date(2024, 12, 25, 8, 0, 0, 0, time.UTC))
	if FormatDate(d) != "2024-12-25" {
		t.Fatalf("FormatDate = %s", FormatDate(d))
	}
	if FormatDateTime(d) != "2024-12-25 08:00" {
		t.Fatalf("FormatDateTime = %s", FormatDateTime(d))
	}
}

func TestAnnouncementInputOmitsTimesForLive(t *testing.T) {
	start := NewTime(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	end := NewTime(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))

	live, err := json.Marshal(NewAnnouncementInput(Announcement{Title: "t", Content: "c", Type: AnnouncementLive, StartTime: start, EndTime: end}))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(live), `"startTime":null`) || !strings.Contains(string(live), `"endTime":null`) {
		t.Fatalf("live announcement should send null times: %s", live)
	}

	timed, err := json.Marshal(NewAnnouncementInput(Announcement{Title: "t", Content: "c", Type: AnnouncementTimed, StartTime: start, EndTime: end}))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(timed), `"startTime":"2024-01-01T00:00:00Z"`) {
		t.Fatalf("timed announcement should carry start time: %s", timed)
	}
}

func TestAnnouncementRecordReshape(t *testing.T) {
	var rec AnnouncementRecord
	raw := `{"announcementId":7,"title":"Sale","content":"50% off","type":"Live","startTime":null,"endTime":null,"isActive":true}`
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	a := rec.ToAnnouncement()
	if a.ID != 7 || a.Title != "Sale" || !a.IsActive || a.Type != AnnouncementLive {
		t.Fatalf("unexpected reshape: %+v", a)
	}
}

func TestOrderStatusHelpers(t *testing.T) {
	orders := []Order{
		{OrderID: 1, Status: "Pending"},
		{OrderID: 2, Status: "Completed"},
		{OrderID: 3, Status: "completed"},
	}
	done := FilterOrders(orders, Order.IsCompleted)
	if len(done) != 2 {
		t.Fatalf("completed = %d, want 2", len(done))
	}
	pending := FilterOrders(orders, Order.IsPending)
	if len(pending) != 1 || pending[0].OrderID != 1 {
		t.Fatalf("pending = %+v", pending)
	}
}

func TestRoleValid(t *testing.T) {
	for _, r := range []Role{RoleAdmin, RoleStaff, RoleMember} {
		if !r.Valid() {
			t.Fatalf("%s should be valid", r)
		}
	}
	if Role("admin").Valid() || Role("").Valid() {
		t.Fatalf("roles are case sensitive and non-empty")
	}
}

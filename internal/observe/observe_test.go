package observe

import (
	"bytes"
	"log"
	"strings"
	"testing"

	"github.com/cimillas/ticketpool/internal/domain"
	"github.com/cimillas/ticketpool/internal/pool"
)

func TestLogObserver(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		verbose bool
		event   pool.Event
		want    []string
	}{
		{
			name: "added",
			event: pool.Event{
				Kind: pool.EventTicketAdded, PoolID: "p1", ActorID: "v1",
				Ticket: &domain.Ticket{Price: 12.5},
				Stats:  pool.Stats{Capacity: 10, TotalIssued: 4, Available: 2},
			},
			want: []string{"ticket added", "vendor=v1", "price=12.50", "available=2", "issued=4/10"},
		},
		{
			name: "sold",
			event: pool.Event{
				Kind: pool.EventTicketSold, PoolID: "p1", ActorID: "c1",
				Ticket: &domain.Ticket{TicketNumber: "TICKET - t1", Price: 3},
				Stats:  pool.Stats{Capacity: 10, Sold: 7},
			},
			want: []string{"ticket sold", "customer=c1", `ticket="TICKET - t1"`, "sold=7/10"},
		},
		{
			name:  "capacity reached",
			event: pool.Event{Kind: pool.EventCapacityReached, ActorID: "v2", Stats: pool.Stats{Capacity: 3}},
			want:  []string{"WARN:", "vendor=v2", "capacity=3"},
		},
		{
			name:  "sold out",
			event: pool.Event{Kind: pool.EventSoldOut, ActorID: "c9"},
			want:  []string{"WARN:", "no tickets left", "customer=c9"},
		},
		{
			name:    "waiting when verbose",
			verbose: true,
			event:   pool.Event{Kind: pool.EventCustomerWaiting, ActorID: "c3"},
			want:    []string{"waiting for tickets", "customer=c3"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			buf := &bytes.Buffer{}
			NewLogObserver(log.New(buf, "", 0), tt.verbose).Observe(tt.event)
			out := buf.String()
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Fatalf("expected log to contain %q, got %q", want, out)
				}
			}
		})
	}
}

func TestLogObserver_QuietWaiting(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	NewLogObserver(log.New(buf, "", 0), false).Observe(pool.Event{Kind: pool.EventCustomerWaiting})
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}
}

func TestMulti_ForwardsInOrderAndSkipsNil(t *testing.T) {
	t.Parallel()

	var got []string
	first := pool.ObserverFunc(func(e pool.Event) { got = append(got, "first:"+string(e.Kind)) })
	second := pool.ObserverFunc(func(e pool.Event) { got = append(got, "second:"+string(e.Kind)) })

	Multi(first, nil, second).Observe(pool.Event{Kind: pool.EventSoldOut})

	want := []string{"first:sold_out", "second:sold_out"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

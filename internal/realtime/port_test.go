package realtime

import (
	"net"
	"testing"

	"restaurant_chat/pkg/logger"
)

func reservePort(t *testing.T) (net.Listener, int) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to reserve port: %v", err)
	}
	return ln, ln.Addr().(*net.TCPAddr).Port
}

func freePort(t *testing.T) int {
	t.Helper()
	ln, port := reservePort(t)
	ln.Close()
	return port
}

func TestNegotiatePortSkipsOccupiedCandidate(t *testing.T) {
	busy, busyPort := reservePort(t)
	defer busy.Close()
	free := freePort(t)

	ln, port := NegotiatePort([]int{busyPort, free}, 8080, logger.New("error"))
	if ln == nil {
		t.Fatalf("expected dedicated listener, got fallback")
	}
	defer ln.Close()

	if port != free {
		t.Errorf("port = %d, want %d", port, free)
	}
}

func TestNegotiatePortFallsBackToPrimary(t *testing.T) {
	busy, busyPort := reservePort(t)
	defer busy.Close()

	ln, port := NegotiatePort([]int{busyPort}, 8080, logger.New("error"))
	if ln != nil {
		ln.Close()
		t.Fatalf("expected fallback, got dedicated listener on %d", port)
	}
	if port != 8080 {
		t.Errorf("fallback port = %d, want primary 8080", port)
	}
}

func TestNegotiatePortSkipsPrimaryPort(t *testing.T) {
	ln, port := NegotiatePort([]int{8080}, 8080, logger.New("error"))
	if ln != nil {
		ln.Close()
		t.Fatalf("candidate equal to primary must be skipped")
	}
	if port != 8080 {
		t.Errorf("fallback port = %d, want 8080", port)
	}
}

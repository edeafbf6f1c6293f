package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/tenaflow/tena-api/internal/models"
)

type textbelt struct {
	mu       sync.Mutex
	received []map[string]string
	fail     bool
}

func (tb *textbelt) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var body map[string]string
	_ = json.NewDecoder(r.Body).Decode(&body)
	tb.mu.Lock()
	tb.received = append(tb.received, body)
	tb.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if tb.fail {
		_, _ = w.Write([]byte(`{"success":false,"error":"Out of quota"}`))
		return
	}
	_, _ = w.Write([]byte(`{"success":true,"textId":"1"}`))
}

func TestNotificationServiceSends(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	tb := &textbelt{}
	srv := httptest.NewServer(tb)
	defer srv.Close()

	svc := NewNotificationService("key-123", srv.URL, zap.NewNop())
	require.True(t, svc.Enabled())

	patient := &models.User{Name: "Abebe", Phone: "+251911000000"}
	doctor := &models.Doctor{Name: "Dr. Tigist Haile"}
	booking := &models.Booking{
		AppointmentDate: time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC),
		AppointmentTime: "10:00",
		PaymentStatus:   models.PaymentVerified,
	}

	svc.BookingCreated(patient, doctor, booking)
	svc.PaymentReviewed(patient, booking)
	svc.BookingCancelled(&models.User{Name: "No Phone"}, booking)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, svc.Wait(ctx))
	svc.client.CloseIdleConnections()

	tb.mu.Lock()
	defer tb.mu.Unlock()
	require.Len(t, tb.received, 2)
	for _, body := range tb.received {
		assert.Equal(t, "+251911000000", body["phone"])
		assert.Equal(t, "key-123", body["key"])
	}
	messages := []string{tb.received[0]["message"], tb.received[1]["message"]}
	assert.Contains(t, messages, "TENA: your payment for the appointment on May 4, 2026 was verified. Your booking is confirmed.")
}

func TestNotificationServiceTextbeltFailure(t *testing.T) {
	srv := httptest.NewServer(&textbelt{fail: true})
	defer srv.Close()

	svc := NewNotificationService("key", srv.URL, zap.NewNop())
	err := svc.sendSMS(context.Background(), "+251911000000", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Out of quota")
	svc.client.CloseIdleConnections()
}

func TestNotificationServiceDisabled(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	svc := NewNotificationService("", "https://textbelt.invalid", zap.NewNop())
	assert.False(t, svc.Enabled())
	svc.BookingCancelled(&models.User{Phone: "+251911000000"}, &models.Booking{})
	require.NoError(t, svc.Wait(context.Background()))
}

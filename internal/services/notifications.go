package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tenaflow/tena-api/internal/models"
)

const smsTimeout = 10 * time.Second

// NotificationService sends booking SMS through Textbelt. Every send runs
// in its own goroutine; Wait blocks until the in-flight ones are done.
type NotificationService struct {
	apiKey string
	url    string
	client *http.Client
	log    *zap.Logger
	wg     sync.WaitGroup
}

// NewNotificationService returns a disabled service when apiKey is empty.
func NewNotificationService(apiKey, url string, log *zap.Logger) *NotificationService {
	return &NotificationService{
		apiKey: apiKey,
		url:    url,
		client: &http.Client{Timeout: smsTimeout},
		log:    log,
	}
}

func (s *NotificationService) Enabled() bool {
	return s.apiKey != "" && s.url != ""
}

func (s *NotificationService) BookingCreated(patient *models.User, doctor *models.Doctor, b *models.Booking) {
	s.notify(patient, fmt.Sprintf(
		"TENA: your appointment with %s on %s at %s is booked. Please complete payment to confirm it.",
		doctor.Name, b.AppointmentDate.Format("Jan 2, 2006"), b.AppointmentTime,
	))
}

func (s *NotificationService) BookingCancelled(patient *models.User, b *models.Booking) {
	s.notify(patient, fmt.Sprintf(
		"TENA: your appointment on %s at %s has been cancelled.",
		b.AppointmentDate.Format("Jan 2, 2006"), b.AppointmentTime,
	))
}

func (s *NotificationService) PaymentReviewed(patient *models.User, b *models.Booking) {
	msg := fmt.Sprintf("TENA: your payment for the appointment on %s was %s.",
		b.AppointmentDate.Format("Jan 2, 2006"), b.PaymentStatus)
	if b.PaymentStatus == models.PaymentVerified {
		msg += " Your booking is confirmed."
	}
	s.notify(patient, msg)
}

func (s *NotificationService) notify(patient *models.User, message string) {
	if !s.Enabled() {
		return
	}
	if patient == nil || patient.Phone == "" {
		s.log.Info("sms skipped, patient has no phone number")
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), smsTimeout)
		defer cancel()
		if err := s.sendSMS(ctx, patient.Phone, message); err != nil {
			s.log.Warn("sms not sent", zap.String("phone", patient.Phone), zap.Error(err))
			return
		}
		s.log.Info("sms sent", zap.String("phone", patient.Phone))
	}()
}

func (s *NotificationService) sendSMS(ctx context.Context, phone, message string) error {
	postBody, err := json.Marshal(map[string]string{
		"phone":   phone,
		"message": message,
		"key":     s.apiKey,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(postBody))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("textbelt request: %w", err)
	}
	defer resp.Body.Close()

	var result struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("textbelt response: %w", err)
	}
	if !result.Success {
		return fmt.Errorf("textbelt: %s", result.Error)
	}
	return nil
}

// Wait blocks until pending sends finish or ctx is done.
func (s *NotificationService) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

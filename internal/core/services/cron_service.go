package services

import (
	"context"
	"log"
	"time"

	"clinicdesk/internal/adapters/persistence/models"
	"clinicdesk/internal/adapters/persistence/repositories"

	"github.com/robfig/cron/v3"
)

// CronService runs the scheduled jobs: a morning digest of today's
// scheduled appointments for the front desk log, and a nightly purge of
// expired refresh tokens.
type CronService struct {
	cron             *cron.Cron
	apptRepo         repositories.AppointmentRepository
	refreshTokenRepo repositories.RefreshTokenRepository
}

// NewCronService creates a new cron service
func NewCronService(apptRepo repositories.AppointmentRepository, refreshTokenRepo repositories.RefreshTokenRepository) *CronService {
	return &CronService{
		cron:             cron.New(),
		apptRepo:         apptRepo,
		refreshTokenRepo: refreshTokenRepo,
	}
}

// Start registers the jobs and launches the scheduler
func (s *CronService) Start() {
	// Daily appointment digest at 08:30
	s.cron.AddFunc("30 8 * * *", s.logTodayAppointments)

	// Purge expired refresh tokens at 03:00
	s.cron.AddFunc("0 3 * * *", s.purgeExpiredTokens)

	s.cron.Start()
	log.Println("🚀 CronService started (digest 08:30, token purge 03:00)")
}

// Stop stops the scheduler, waiting for running jobs
func (s *CronService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("🛑 CronService stopped")
}

func (s *CronService) logTodayAppointments() {
	ctx := context.Background()
	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	appts, total, err := s.apptRepo.List(ctx, repositories.AppointmentFilter{
		Date:   &today,
		Status: models.ApptStatusScheduled,
	}, 0, 200)
	if err != nil {
		log.Printf("❌ Appointment digest query error: %v", err)
		return
	}

	log.Printf("📅 %d appointment(s) scheduled for %s", total, today.Format("2006-01-02"))
	for _, appt := range appts {
		log.Printf("📅 #%d doctor=%d patient=%d at %s", appt.ID, appt.DoctorID, appt.PatientID, appt.AppointmentTime)
	}
}

func (s *CronService) purgeExpiredTokens() {
	deleted, err := s.refreshTokenRepo.DeleteExpired(context.Background())
	if err != nil {
		log.Printf("❌ Token purge error: %v", err)
		return
	}
	if deleted > 0 {
		log.Printf("🗑️ Purged %d expired refresh tokens", deleted)
	}
}

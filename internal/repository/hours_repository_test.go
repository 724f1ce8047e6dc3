package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/iliyamo/salon-booking/internal/interval"
	"github.com/iliyamo/salon-booking/internal/model"
)

func TestListBusinessHoursParsesTimeColumns(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewBusinessHoursRepo(db, 0)
	now := time.Now().UTC()

	mock.ExpectQuery("FROM business_hours WHERE tenant_id = \\? AND weekday = \\? AND active = 1").
		WithArgs(uint64(1), 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "weekday", "start_time", "end_time", "active", "created_at", "updated_at"}).
			AddRow(1, 1, 1, "09:00:00", "12:00:00", true, now, now).
			AddRow(2, 1, 1, "13:00:00", "18:00:00", true, now, now))

	rows, err := repo.ListBusinessHours(context.Background(), 1, time.Monday, true)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[1].Window() != (interval.Interval{Start: interval.MustClock("13:00"), End: interval.MustClock("18:00")}) {
		t.Fatalf("unexpected window %s", rows[1].Window())
	}
	if rows[0].Weekday != time.Monday {
		t.Fatalf("unexpected weekday %s", rows[0].Weekday)
	}
}

func TestListBusinessHoursRejectsBadTime(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()
	repo := NewBusinessHoursRepo(db, 0)
	now := time.Now().UTC()

	mock.ExpectQuery("FROM business_hours").
		WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "weekday", "start_time", "end_time", "active", "created_at", "updated_at"}).
			AddRow(1, 1, 1, "09:00:30", "12:00:00", true, now, now))

	if _, err := repo.ListBusinessHours(context.Background(), 1, time.Monday, false); !errors.Is(err, interval.ErrInvalidClock) {
		t.Fatalf("expected ErrInvalidClock, got %v", err)
	}
}

func TestReplaceProfessionalHoursDay(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()
	repo := NewProfessionalHoursRepo(db, time.Second)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE professional_hours SET active = 0").
		WithArgs(uint64(1), uint64(3), 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO professional_hours").
		WithArgs(uint64(1), uint64(3), 2, "09:00:00", "13:00:00", true).
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectExec("INSERT INTO professional_hours").
		WithArgs(uint64(1), uint64(3), 2, "14:00:00", "19:00:00", true).
		WillReturnResult(sqlmock.NewResult(12, 1))
	mock.ExpectCommit()

	rows := []model.ProfessionalHours{
		{Start: interval.MustClock("09:00"), End: interval.MustClock("13:00"), Active: true},
		{Start: interval.MustClock("14:00"), End: interval.MustClock("19:00"), Active: true},
	}
	if err := repo.ReplaceProfessionalHoursDay(context.Background(), 1, 3, time.Tuesday, rows); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if rows[0].ID != 11 || rows[1].ID != 12 || rows[1].ProfessionalID != 3 {
		t.Fatalf("rows not filled: %+v", rows)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestReplaceBusinessHoursDayRollsBackOnInsertFailure(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()
	repo := NewBusinessHoursRepo(db, time.Second)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE business_hours SET active = 0").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("INSERT INTO business_hours").WillReturnError(errors.New("boom"))
	mock.ExpectRollback()

	rows := []model.BusinessHours{{Start: interval.MustClock("09:00"), End: interval.MustClock("17:00"), Active: true}}
	if err := repo.ReplaceBusinessHoursDay(context.Background(), 1, time.Friday, rows); err == nil {
		t.Fatalf("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPolicyRepoNotFound(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()
	repo := NewPolicyRepo(db, time.Second)

	mock.ExpectQuery("FROM booking_policies").WithArgs(uint64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"tenant_id"}))

	if _, err := repo.GetPolicy(context.Background(), 4); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPolicyRepoUpsert(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()
	repo := NewPolicyRepo(db, time.Second)

	mock.ExpectExec("ON DUPLICATE KEY UPDATE").
		WithArgs(uint64(4), 2, 30, true, 15, 24).
		WillReturnResult(sqlmock.NewResult(0, 1))

	p := &model.BookingPolicy{TenantID: 4, MinLeadHours: 2, MaxAdvanceDays: 30, SameDayAllowed: true, TurnIntervalMinutes: 15, MinCancelNoticeHours: 24}
	if err := repo.UpsertPolicy(context.Background(), p); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if p.UpdatedAt.IsZero() {
		t.Fatalf("updated_at not set")
	}
}

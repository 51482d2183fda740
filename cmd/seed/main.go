package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"studiobook/internal/database"
	"studiobook/internal/domain"
	"studiobook/internal/pkg/jwt"
	"studiobook/internal/repository"
	"studiobook/internal/stream"
)

func main() {
	ctx := context.Background()

	db, err := database.Connect("studiobook.db")
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running migrations...")
	if err := repository.Migrate(db); err != nil {
		log.Fatal("Migrate failed:", err)
	}

	// Cleanup old data (in safe order to avoid foreign key errors)
	log.Println("Cleaning old data...")
	db.Exec("DELETE FROM availability_entries")
	db.Exec("DELETE FROM bookings")
	db.Exec("DELETE FROM rooms")
	db.Exec("DELETE FROM studios")
	db.Exec("DELETE FROM users")

	broker := stream.NewBroker()
	defer broker.Close()

	users := repository.NewUserRepository(db)
	studios := repository.NewStudioRepository(db, broker)
	rooms := repository.NewRoomRepository(db, broker)
	entries := repository.NewAvailabilityRepository(db, broker)
	bookings := repository.NewBookingRepository(db, broker)

	// ================== USERS ==================
	log.Println("Creating users...")

	hourly := 45.0
	engineer := domain.User{
		ID:    uuid.NewString(),
		Email: "mira@studiobook.dev",
		Role:  domain.RoleEngineer,
		Name:  "Mira Chen",
		Phone: "+1 415 555 0142",
		EngineerSettings: &domain.EngineerSettings{
			InstantBookEnabled: true,
			HourlyRate:         &hourly,
			Genres:             []string{"hip-hop", "r&b"},
		},
	}
	engineer2 := domain.User{
		ID:    uuid.NewString(),
		Email: "theo@studiobook.dev",
		Role:  domain.RoleEngineer,
		Name:  "Theo Alvarez",
		EngineerSettings: &domain.EngineerSettings{
			InstantBookEnabled: false,
			Genres:             []string{"rock"},
		},
	}
	owner := domain.User{
		ID:    uuid.NewString(),
		Email: "dana@echoroom.dev",
		Role:  domain.RoleStudioOwner,
		Name:  "Dana Whitfield",
	}
	artist := domain.User{
		ID:    uuid.NewString(),
		Email: "kai@artists.dev",
		Role:  domain.RoleArtist,
		Name:  "Kai Morrow",
	}
	for _, u := range []*domain.User{&engineer, &engineer2, &owner, &artist} {
		if err := users.Create(ctx, u); err != nil {
			log.Fatal("user create failed:", err)
		}
		log.Printf("  %s (%s): %s", u.Name, u.Role, u.Email)
	}

	// ================== STUDIOS ==================
	log.Println("Creating studios...")

	weekdays := func(start, duration int, days ...int) []domain.HoursRange {
		out := make([]domain.HoursRange, 0, len(days))
		for _, d := range days {
			out = append(out, domain.HoursRange{Weekday: d, StartMinutes: start, DurationMinutes: duration})
		}
		return out
	}

	echoRoom := domain.Studio{
		ID:          uuid.NewString(),
		OwnerID:     owner.ID,
		Name:        "Echo Room",
		Description: "Two-room tracking studio with an SSL console",
		Address:     "318 Mission St",
		City:        "San Francisco",
		Schedule: domain.OperatingSchedule{
			// Mon-Fri 09:00-21:00, Sat 10:00-18:00
			RecurringHours: append(
				weekdays(9*60, 12*60, 1, 2, 3, 4, 5),
				weekdays(10*60, 8*60, 6)...,
			),
			BlackoutDates: []string{time.Now().UTC().AddDate(0, 0, 14).Format("2006-01-02")},
			TimeZoneID:    "America/Los_Angeles",
		},
		AutoApproveRequests: false,
		ApprovedEngineerIDs: []string{engineer.ID, engineer2.ID},
	}
	if err := studios.Create(ctx, &echoRoom); err != nil {
		log.Fatal("studio create failed:", err)
	}

	northLoop := domain.Studio{
		ID:      uuid.NewString(),
		OwnerID: owner.ID,
		Name:    "North Loop Audio",
		City:    "Minneapolis",
		Schedule: domain.OperatingSchedule{
			RecurringHours: weekdays(10*60, 10*60, 0, 1, 2, 3, 4, 5, 6),
			TimeZoneID:     "America/Chicago",
		},
		AutoApproveRequests: true,
		ApprovedEngineerIDs: []string{engineer.ID},
	}
	if err := studios.Create(ctx, &northLoop); err != nil {
		log.Fatal("studio create failed:", err)
	}

	// ================== ROOMS ==================
	log.Println("Creating rooms...")

	rate := func(v float64) *float64 { return &v }
	seedRooms := []domain.Room{
		{ID: uuid.NewString(), StudioID: echoRoom.ID, Name: "Control A", HourlyRate: rate(120), IsDefault: true, Amenities: []string{"SSL 4000", "vocal booth"}},
		{ID: uuid.NewString(), StudioID: echoRoom.ID, Name: "Control B", HourlyRate: rate(75)},
		{ID: uuid.NewString(), StudioID: northLoop.ID, Name: "Live Room", HourlyRate: rate(90), IsDefault: true},
	}
	for i := range seedRooms {
		if err := rooms.Create(ctx, &seedRooms[i]); err != nil {
			log.Fatal("room create failed:", err)
		}
	}

	// ================== AVAILABILITY ==================
	log.Println("Creating availability entries...")

	// Mira blocks out Sunday evenings every week.
	weekly := domain.AvailabilityEntry{
		ID:      uuid.NewString(),
		Kind:    domain.EntryRecurring,
		Scope:   domain.ScopeEngineer,
		OwnerID: engineer.ID,
		When:    domain.Recurring{Weekday: 0, StartMinutes: 17 * 60, DurationMinutes: 7 * 60},
		Notes:   "family time",
	}
	// Echo Room closes Control A tomorrow morning for maintenance.
	tomorrow := time.Now().UTC().AddDate(0, 0, 1).Truncate(24 * time.Hour)
	maintenance := domain.AvailabilityEntry{
		ID:       uuid.NewString(),
		Kind:     domain.EntryBlock,
		Scope:    domain.ScopeStudio,
		OwnerID:  echoRoom.ID,
		StudioID: echoRoom.ID,
		RoomID:   seedRooms[0].ID,
		When:     domain.Absolute{Start: tomorrow.Add(9 * time.Hour), End: tomorrow.Add(12 * time.Hour)},
		Notes:    "console maintenance",
	}
	for _, e := range []domain.AvailabilityEntry{weekly, maintenance} {
		entry := e
		entry.CreatedBy = entry.OwnerID
		if err := entries.Upsert(ctx, &entry); err != nil {
			log.Fatal("availability create failed:", err)
		}
	}

	// ================== BOOKINGS ==================
	log.Println("Creating bookings...")

	nextWeek := time.Now().UTC().AddDate(0, 0, 7).Truncate(24 * time.Hour)
	pending := domain.Booking{
		ID:              uuid.NewString(),
		ArtistID:        artist.ID,
		EngineerID:      engineer2.ID,
		StudioID:        echoRoom.ID,
		RoomID:          seedRooms[1].ID,
		RequestedStart:  nextWeek.Add(14 * time.Hour),
		RequestedEnd:    nextWeek.Add(18 * time.Hour),
		DurationMinutes: 240,
		Status:          domain.BookingPending,
		Approval: domain.Approval{
			RequiresStudioApproval:   true,
			RequiresEngineerApproval: true,
		},
		Notes: "EP vocal tracking",
	}
	if err := bookings.Create(ctx, &pending); err != nil {
		log.Fatal("booking create failed:", err)
	}

	confirmed := domain.Booking{
		ID:              uuid.NewString(),
		ArtistID:        artist.ID,
		EngineerID:      engineer.ID,
		StudioID:        northLoop.ID,
		RoomID:          seedRooms[2].ID,
		RequestedStart:  nextWeek.Add(34 * time.Hour),
		RequestedEnd:    nextWeek.Add(37 * time.Hour),
		DurationMinutes: 180,
		Status:          domain.BookingConfirmed,
		InstantBook:     true,
	}
	confirmed.ConfirmedStart = &confirmed.RequestedStart
	confirmed.ConfirmedEnd = &confirmed.RequestedEnd
	if err := bookings.Create(ctx, &confirmed); err != nil {
		log.Fatal("booking create failed:", err)
	}

	// Demo tokens so the API can be exercised right after seeding.
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "change-me-jwt-secret"
	}
	tokens := jwt.New(secret, 24*time.Hour)

	fmt.Println()
	log.Println("Seed completed! Demo tokens:")
	for _, u := range []domain.User{engineer, engineer2, owner, artist} {
		token, err := tokens.GenerateToken(u.ID, string(u.Role))
		if err != nil {
			log.Fatal("token generate failed:", err)
		}
		log.Printf("%-12s %-24s %s", u.Role, u.Email, token)
	}
}

package services

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/hotel-backoffice/database"
	"github.com/yeremiapane/hotel-backoffice/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var fixtureStart = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type recordedEvents struct {
	mu     sync.Mutex
	events []string
}

func (r *recordedEvents) Publish(event string, _ interface{}) {
	r.mu.Lock()
	r.events = append(r.events, event)
	r.mu.Unlock()
}

func (r *recordedEvents) Count(event string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e == event {
			n++
		}
	}
	return n
}

type recordedMail struct {
	mu   sync.Mutex
	sent []string
}

func (m *recordedMail) Send(to, subject, _ string) error {
	m.mu.Lock()
	m.sent = append(m.sent, to+": "+subject)
	m.mu.Unlock()
	return nil
}

func (m *recordedMail) Sent() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.sent...)
}

type fixture struct {
	db     *gorm.DB
	svc    *Services
	clock  *testClock
	events *recordedEvents
	mail   *recordedMail

	admin        models.User
	receptionist models.User
	housekeeper  models.User
	technician   models.User
	guest        models.User
	otherGuest   models.User

	standard models.RoomType
	suite    models.RoomType
	room101  models.Room
	room102  models.Room
	room201  models.Room
}

func actorOf(u models.User) Actor {
	return Actor{UserID: u.ID, Role: u.Role}
}

// day returns the fixture date offset by n days at midnight UTC.
func day(n int) time.Time {
	return time.Date(2026, 3, 10+n, 0, 0, 0, 0, time.UTC)
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.AutoMigrate(db))

	f := &fixture{
		db:     db,
		clock:  &testClock{t: fixtureStart},
		events: &recordedEvents{},
		mail:   &recordedMail{},
	}
	f.svc = New(db, Options{
		TaxRate:        0.10,
		InvoiceDueDays: 7,
		Events:         f.events,
		Mailer:         f.mail,
		Clock:          f.clock.Now,
	})

	users := []*models.User{
		{Name: "Ada Admin", Email: "admin@hotel.test", Role: models.RoleAdmin},
		{Name: "Rita Reception", Email: "desk@hotel.test", Role: models.RoleReceptionist},
		{Name: "Hana Housekeeping", Email: "hk@hotel.test", Role: models.RoleHousekeeping},
		{Name: "Theo Technician", Email: "tech@hotel.test", Role: models.RoleMaintenance},
		{Name: "Gina Guest", Email: "gina@guest.test", Role: models.RoleGuest},
		{Name: "Otto Guest", Email: "otto@guest.test", Role: models.RoleGuest},
	}
	for _, u := range users {
		u.Password = "x"
		u.IsActive = true
		require.NoError(t, db.Create(u).Error)
	}
	f.admin, f.receptionist, f.housekeeper = *users[0], *users[1], *users[2]
	f.technician, f.guest, f.otherGuest = *users[3], *users[4], *users[5]

	f.standard = models.RoomType{Name: "Standard", Slug: "standard", BasePrice: 80, Capacity: 2}
	f.suite = models.RoomType{Name: "Suite", Slug: "suite", BasePrice: 200, Capacity: 4}
	require.NoError(t, db.Create(&f.standard).Error)
	require.NoError(t, db.Create(&f.suite).Error)

	f.room101 = models.Room{RoomNumber: "101", Floor: 1, RoomTypeID: f.standard.ID, Status: models.RoomAvailable}
	f.room102 = models.Room{RoomNumber: "102", Floor: 1, RoomTypeID: f.standard.ID, Status: models.RoomAvailable}
	f.room201 = models.Room{RoomNumber: "201", Floor: 2, RoomTypeID: f.suite.ID, Status: models.RoomAvailable}
	for _, r := range []*models.Room{&f.room101, &f.room102, &f.room201} {
		require.NoError(t, db.Omit("RoomType").Create(r).Error)
	}
	return f
}

// book creates a reservation for the guest in room101.
func (f *fixture) book(t *testing.T, checkIn, checkOut time.Time) *models.Reservation {
	t.Helper()
	roomID := f.room101.ID
	r, err := f.svc.Reservations.Create(actorOf(f.guest), CreateReservationInput{
		RoomTypeID:     f.standard.ID,
		RoomID:         &roomID,
		CheckIn:        checkIn,
		CheckOut:       checkOut,
		NumberOfGuests: 2,
	})
	require.NoError(t, err)
	return r
}

// checkedIn books room101 from today for the given nights and checks the guest in.
func (f *fixture) checkedIn(t *testing.T, nights int) *models.Reservation {
	t.Helper()
	r := f.book(t, day(0), day(nights))
	desk := actorOf(f.receptionist)
	_, err := f.svc.Reservations.Confirm(desk, r.ID)
	require.NoError(t, err)
	r, err = f.svc.Reservations.CheckIn(desk, r.ID)
	require.NoError(t, err)
	return r
}

func (f *fixture) roomStatus(t *testing.T, id uint) string {
	t.Helper()
	var room models.Room
	require.NoError(t, f.db.First(&room, id).Error)
	return room.Status
}
